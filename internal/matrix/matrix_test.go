package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDense(t *testing.T) {
	d := NewDense(2, 3)
	d.Set(0, 0, 5)
	d.Set(1, 2, 7)

	rows, cols := d.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 5.0, d.At(0, 0))
	assert.Equal(t, 0.0, d.At(0, 1))

	var cells []Triple
	d.NonZero(func(r, c int, v float64) bool {
		cells = append(cells, Triple{r, c, v})
		return true
	})
	assert.Equal(t, []Triple{{0, 0, 5}, {1, 2, 7}}, cells)
}

func TestCSR(t *testing.T) {
	// Unordered triples with a zero that must be dropped.
	triples := []Triple{
		{Row: 1, Col: 2, Value: 3.5},
		{Row: 0, Col: 1, Value: 2},
		{Row: 1, Col: 0, Value: 0},
	}
	m := NewCSR(2, 3, triples)

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 3, cols)
	assert.Equal(t, 2, m.Stored())

	assert.Equal(t, 2.0, m.At(0, 1))
	assert.Equal(t, 3.5, m.At(1, 2))
	// Structurally absent cells read as zero.
	assert.Equal(t, 0.0, m.At(0, 0))
	assert.Equal(t, 0.0, m.At(1, 0))

	var cells []Triple
	m.NonZero(func(r, c int, v float64) bool {
		cells = append(cells, Triple{r, c, v})
		return true
	})
	assert.Equal(t, []Triple{{0, 1, 2}, {1, 2, 3.5}}, cells)
}

func TestCSREmpty(t *testing.T) {
	m := NewCSR(3, 2, nil)
	assert.Equal(t, 0, m.Stored())
	assert.Equal(t, 0.0, m.At(2, 1))
}

func TestColumn(t *testing.T) {
	m := NewCSR(3, 2, []Triple{{Row: 0, Col: 1, Value: 4}, {Row: 2, Col: 1, Value: 6}})
	assert.Equal(t, []float64{0, 0, 0}, Column(m, 0))
	assert.Equal(t, []float64{4, 0, 6}, Column(m, 1))
}

func TestTable(t *testing.T) {
	tab, err := NewTable([]string{"a", "b", "c"})
	require.NoError(t, err)

	require.NoError(t, tab.SetColumn("tissue", []string{"Lung", "Liver", "Lung"}))
	assert.Equal(t, []string{"tissue"}, tab.Columns())
	assert.Equal(t, "Liver", tab.Cell(1, "tissue"))
	assert.Equal(t, "", tab.Cell(1, "missing"))

	pos, ok := tab.Pos("c")
	require.True(t, ok)
	assert.Equal(t, 2, pos)

	// SetCell coerces non-string values to text.
	tab.SetCell(0, "age", 63)
	assert.Equal(t, "63", tab.Cell(0, "age"))
	assert.Equal(t, "", tab.Cell(1, "age"))
}

func TestTableDuplicateIndex(t *testing.T) {
	_, err := NewTable([]string{"a", "a"})
	assert.Error(t, err)
}

func TestTableColumnLengthMismatch(t *testing.T) {
	tab, err := NewTable([]string{"a", "b"})
	require.NoError(t, err)
	assert.Error(t, tab.SetColumn("x", []string{"only-one"}))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"s", "s"},
		{nil, ""},
		{3.5, "3.5"},
		{42, "42"},
		{true, "true"},
		{[]int{1, 2}, "[1 2]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.in))
	}
}

func TestNewDimensionChecks(t *testing.T) {
	obs, err := NewTable([]string{"s1", "s2"})
	require.NoError(t, err)
	v, err := NewTable([]string{"g1"})
	require.NoError(t, err)

	m, err := New(NewDense(2, 1), obs, v)
	require.NoError(t, err)
	assert.Equal(t, 2, m.NumSamples())
	assert.Equal(t, 1, m.NumGenes())

	_, err = New(NewDense(3, 1), obs, v)
	assert.Error(t, err)
	_, err = New(NewDense(2, 2), obs, v)
	assert.Error(t, err)
}
