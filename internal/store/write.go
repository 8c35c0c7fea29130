package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"os"
	"sort"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/gexatlas/gexatlas/internal/matrix"
)

// Save writes a matrix to a new DuckDB file at path, replacing any existing
// file.
func Save(path string, m *matrix.Matrix) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	s, err := Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.WriteMatrix(m)
}

// WriteMatrix creates the matrix schema and batch-writes all four tables.
func (s *Store) WriteMatrix(m *matrix.Matrix) error {
	if err := s.createSchema(m); err != nil {
		return err
	}
	if err := s.writeTable("obs", "obs_idx", m.Obs); err != nil {
		return err
	}
	if err := s.writeTable("var", "var_idx", m.Var); err != nil {
		return err
	}
	if err := s.writeValues(m.X); err != nil {
		return err
	}
	return s.writeInfo(m.Info)
}

func (s *Store) createSchema(m *matrix.Matrix) error {
	for _, stmt := range []string{
		tableDDL("obs", "obs_idx", m.Obs.Columns()),
		tableDDL("var", "var_idx", m.Var.Columns()),
		`CREATE TABLE x ("row" BIGINT, col BIGINT, "value" DOUBLE)`,
		`CREATE TABLE info ("key" VARCHAR, "value" VARCHAR)`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

func tableDDL(table, indexCol string, columns []string) string {
	ddl := "CREATE TABLE " + quoteIdent(table) + " (" + quoteIdent(indexCol) + " VARCHAR"
	for _, col := range columns {
		ddl += ", " + quoteIdent(col) + " VARCHAR"
	}
	return ddl + ")"
}

// appender creates a DuckDB appender for a table on a raw connection.
func (s *Store) appender(table string, fn func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var app *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		app, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender for %s: %w", table, err)
	}
	defer app.Close()

	if err := fn(app); err != nil {
		return err
	}
	return app.Flush()
}

func (s *Store) writeTable(table, indexCol string, t *matrix.Table) error {
	return s.appender(table, func(app *goduckdb.Appender) error {
		columns := t.Columns()
		for i := 0; i < t.Len(); i++ {
			row := make([]driver.Value, 0, len(columns)+1)
			row = append(row, t.IndexAt(i))
			for _, col := range columns {
				row = append(row, t.Cell(i, col))
			}
			if err := appendRowCoerced(app, row); err != nil {
				return fmt.Errorf("append %s row %d: %w", table, i, err)
			}
		}
		return nil
	})
}

func (s *Store) writeValues(x matrix.Values) error {
	return s.appender("x", func(app *goduckdb.Appender) error {
		var appendErr error
		x.NonZero(func(r, c int, v float64) bool {
			if err := app.AppendRow(int64(r), int64(c), v); err != nil {
				appendErr = fmt.Errorf("append cell (%d,%d): %w", r, c, err)
				return false
			}
			return true
		})
		return appendErr
	})
}

func (s *Store) writeInfo(info map[string]string) error {
	return s.appender("info", func(app *goduckdb.Appender) error {
		for _, key := range sortedInfoKeys(info) {
			if err := app.AppendRow(key, info[key]); err != nil {
				return fmt.Errorf("append info %q: %w", key, err)
			}
		}
		return nil
	})
}

// appendRowCoerced appends a row, and on a rejected value coerces every cell
// to text and retries once before giving up.
func appendRowCoerced(app *goduckdb.Appender, row []driver.Value) error {
	if err := app.AppendRow(row...); err != nil {
		coerced := make([]driver.Value, len(row))
		for i, v := range row {
			coerced[i] = matrix.Stringify(v)
		}
		if retryErr := app.AppendRow(coerced...); retryErr != nil {
			return fmt.Errorf("after text coercion: %w", retryErr)
		}
	}
	return nil
}

func sortedInfoKeys(info map[string]string) []string {
	keys := make([]string, 0, len(info))
	for k := range info {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
