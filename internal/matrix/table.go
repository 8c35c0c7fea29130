package matrix

import (
	"fmt"
	"strconv"
)

// Table is a columnar metadata table over a string index: one row per sample
// (obs) or per gene (var). All cell values are text; Stringify coerces
// anything else on the way in.
type Table struct {
	index   []string
	rowPos  map[string]int
	columns []string
	data    map[string][]string
}

// NewTable creates a table over the given index values.
// Index values must be unique.
func NewTable(index []string) (*Table, error) {
	t := &Table{
		index:  append([]string(nil), index...),
		rowPos: make(map[string]int, len(index)),
		data:   make(map[string][]string),
	}
	for i, v := range index {
		if _, dup := t.rowPos[v]; dup {
			return nil, fmt.Errorf("duplicate index value %q", v)
		}
		t.rowPos[v] = i
	}
	return t, nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.index) }

// Index returns the row index values in order.
func (t *Table) Index() []string { return t.index }

// IndexAt returns the index value at a row position.
func (t *Table) IndexAt(i int) string { return t.index[i] }

// Pos returns the row position of an index value.
func (t *Table) Pos(idx string) (int, bool) {
	i, ok := t.rowPos[idx]
	return i, ok
}

// Columns returns the column names in insertion order.
func (t *Table) Columns() []string { return t.columns }

// HasColumn reports whether a column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.data[name]
	return ok
}

// AddColumn adds an empty column. Adding an existing column is a no-op.
func (t *Table) AddColumn(name string) {
	if _, ok := t.data[name]; ok {
		return
	}
	t.columns = append(t.columns, name)
	t.data[name] = make([]string, len(t.index))
}

// SetColumn replaces a column's values. len(values) must equal Len.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.index) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.index))
	}
	if _, ok := t.data[name]; !ok {
		t.columns = append(t.columns, name)
	}
	t.data[name] = append([]string(nil), values...)
	return nil
}

// ColumnValues returns a column's values in row order, or nil if absent.
func (t *Table) ColumnValues(name string) []string { return t.data[name] }

// Cell returns the value at (row, column); empty string if the column is absent.
func (t *Table) Cell(row int, col string) string {
	vals, ok := t.data[col]
	if !ok {
		return ""
	}
	return vals[row]
}

// SetCell stores a value at (row, column), creating the column if needed and
// coercing non-string values to text.
func (t *Table) SetCell(row int, col string, v any) {
	t.AddColumn(col)
	t.data[col][row] = Stringify(v)
}

// Stringify coerces a metadata value to its columnar text representation.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
