// Package matrix defines the annotated expression matrix: a samples-by-genes
// value matrix bundled with per-sample and per-gene metadata tables.
package matrix

import "sort"

// Values is the storage-agnostic view of a samples-by-genes value matrix.
type Values interface {
	// Dims returns the number of rows (samples) and columns (genes).
	Dims() (rows, cols int)
	// At returns the value at a cell. Cells with no stored value read as 0.
	At(r, c int) float64
	// NonZero calls fn for every stored non-zero cell, in row-major order.
	// Iteration stops early if fn returns false.
	NonZero(fn func(r, c int, v float64) bool)
}

// Dense is a row-major dense value matrix.
type Dense struct {
	rows, cols int
	data       []float64
}

// NewDense creates a zero-filled dense matrix.
func NewDense(rows, cols int) *Dense {
	return &Dense{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// NewDenseData creates a dense matrix backed by row-major data.
// len(data) must equal rows*cols.
func NewDenseData(rows, cols int, data []float64) *Dense {
	if len(data) != rows*cols {
		panic("matrix: data length does not match dimensions")
	}
	return &Dense{rows: rows, cols: cols, data: data}
}

// Dims returns the matrix dimensions.
func (d *Dense) Dims() (int, int) { return d.rows, d.cols }

// At returns the value at a cell.
func (d *Dense) At(r, c int) float64 { return d.data[r*d.cols+c] }

// Set stores a value at a cell.
func (d *Dense) Set(r, c int, v float64) { d.data[r*d.cols+c] = v }

// NonZero calls fn for every non-zero cell in row-major order.
func (d *Dense) NonZero(fn func(r, c int, v float64) bool) {
	for r := 0; r < d.rows; r++ {
		for c := 0; c < d.cols; c++ {
			if v := d.data[r*d.cols+c]; v != 0 {
				if !fn(r, c, v) {
					return
				}
			}
		}
	}
}

// Triple is one stored cell of a sparse matrix.
type Triple struct {
	Row, Col int
	Value    float64
}

// CSR is a compressed sparse row matrix. Cells without a stored value are
// structurally absent and read as 0.
type CSR struct {
	rows, cols int
	rowPtr     []int
	colIdx     []int
	values     []float64
}

// NewCSR assembles a CSR matrix from accumulated triples. Zero-valued triples
// are dropped; the input slice may be in any order and is sorted in place.
func NewCSR(rows, cols int, triples []Triple) *CSR {
	kept := triples[:0]
	for _, t := range triples {
		if t.Value != 0 {
			kept = append(kept, t)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Row != kept[j].Row {
			return kept[i].Row < kept[j].Row
		}
		return kept[i].Col < kept[j].Col
	})

	m := &CSR{
		rows:   rows,
		cols:   cols,
		rowPtr: make([]int, rows+1),
		colIdx: make([]int, len(kept)),
		values: make([]float64, len(kept)),
	}
	for i, t := range kept {
		m.rowPtr[t.Row+1]++
		m.colIdx[i] = t.Col
		m.values[i] = t.Value
	}
	for r := 0; r < rows; r++ {
		m.rowPtr[r+1] += m.rowPtr[r]
	}
	return m
}

// Dims returns the matrix dimensions.
func (m *CSR) Dims() (int, int) { return m.rows, m.cols }

// At returns the value at a cell, or 0 when the cell is structurally absent.
func (m *CSR) At(r, c int) float64 {
	lo, hi := m.rowPtr[r], m.rowPtr[r+1]
	i := lo + sort.SearchInts(m.colIdx[lo:hi], c)
	if i < hi && m.colIdx[i] == c {
		return m.values[i]
	}
	return 0
}

// NonZero calls fn for every stored cell in row-major order.
func (m *CSR) NonZero(fn func(r, c int, v float64) bool) {
	for r := 0; r < m.rows; r++ {
		for i := m.rowPtr[r]; i < m.rowPtr[r+1]; i++ {
			if !fn(r, m.colIdx[i], m.values[i]) {
				return
			}
		}
	}
}

// Stored returns the number of stored cells.
func (m *CSR) Stored() int { return len(m.values) }

// Column extracts one column of a Values matrix as a dense slice.
func Column(v Values, c int) []float64 {
	rows, _ := v.Dims()
	out := make([]float64, rows)
	for r := 0; r < rows; r++ {
		out[r] = v.At(r, c)
	}
	return out
}
