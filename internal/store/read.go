package store

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/gexatlas/gexatlas/internal/matrix"
)

// Load reads a matrix file written by Save. Non-zero cells come back in a
// compressed sparse representation; absent cells read as 0.
func Load(path string) (*matrix.Matrix, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat matrix file: %w", err)
	}

	s, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	return s.ReadMatrix()
}

// ReadMatrix reads all four tables back into a matrix.
func (s *Store) ReadMatrix() (*matrix.Matrix, error) {
	obs, err := s.readTable("obs")
	if err != nil {
		return nil, err
	}
	v, err := s.readTable("var")
	if err != nil {
		return nil, err
	}

	triples, err := s.readValues()
	if err != nil {
		return nil, err
	}
	x := matrix.NewCSR(obs.Len(), v.Len(), triples)

	m, err := matrix.New(x, obs, v)
	if err != nil {
		return nil, fmt.Errorf("assemble matrix: %w", err)
	}

	m.Info, err = s.readInfo()
	if err != nil {
		return nil, err
	}
	return m, nil
}

// readTable reads a metadata table; the first column is the row index.
func (s *Store) readTable(table string) (*matrix.Table, error) {
	rows, err := s.db.Query("SELECT * FROM " + quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("table %s has no columns", table)
	}

	var index []string
	cells := make([][]string, len(columns)-1)
	for rows.Next() {
		dest := make([]any, len(columns))
		for i := range dest {
			dest[i] = new(sql.NullString)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		index = append(index, dest[0].(*sql.NullString).String)
		for i := 1; i < len(dest); i++ {
			cells[i-1] = append(cells[i-1], dest[i].(*sql.NullString).String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}

	t, err := matrix.NewTable(index)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", table, err)
	}
	for i, col := range columns[1:] {
		if err := t.SetColumn(col, cells[i]); err != nil {
			return nil, fmt.Errorf("table %s: %w", table, err)
		}
	}
	return t, nil
}

func (s *Store) readValues() ([]matrix.Triple, error) {
	rows, err := s.db.Query(`SELECT "row", col, "value" FROM x`)
	if err != nil {
		return nil, fmt.Errorf("query x: %w", err)
	}
	defer rows.Close()

	var triples []matrix.Triple
	for rows.Next() {
		var r, c int64
		var v float64
		if err := rows.Scan(&r, &c, &v); err != nil {
			return nil, fmt.Errorf("scan x: %w", err)
		}
		triples = append(triples, matrix.Triple{Row: int(r), Col: int(c), Value: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate x: %w", err)
	}
	return triples, nil
}

func (s *Store) readInfo() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT "key", "value" FROM info`)
	if err != nil {
		return nil, fmt.Errorf("query info: %w", err)
	}
	defer rows.Close()

	info := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan info: %w", err)
		}
		info[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate info: %w", err)
	}
	return info, nil
}
