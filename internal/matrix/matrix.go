package matrix

import "fmt"

// Matrix is an annotated expression matrix: values X (samples x genes), a
// per-sample metadata table Obs, a per-gene metadata table Var indexed by
// canonical gene identifier, and dataset-level key-value annotations Info.
type Matrix struct {
	X    Values
	Obs  *Table
	Var  *Table
	Info map[string]string
}

// New bundles values and metadata into a Matrix, checking that dimensions
// agree: X rows must match Obs length and X columns must match Var length.
func New(x Values, obs, v *Table) (*Matrix, error) {
	rows, cols := x.Dims()
	if rows != obs.Len() {
		return nil, fmt.Errorf("matrix has %d rows, obs has %d", rows, obs.Len())
	}
	if cols != v.Len() {
		return nil, fmt.Errorf("matrix has %d columns, var has %d", cols, v.Len())
	}
	return &Matrix{X: x, Obs: obs, Var: v, Info: make(map[string]string)}, nil
}

// NumSamples returns the number of sample rows.
func (m *Matrix) NumSamples() int { return m.Obs.Len() }

// NumGenes returns the number of gene columns.
func (m *Matrix) NumGenes() int { return m.Var.Len() }

// GeneIDs returns the canonical gene identifiers in column order.
func (m *Matrix) GeneIDs() []string { return m.Var.Index() }

// SampleIDs returns the sample identifiers in row order.
func (m *Matrix) SampleIDs() []string { return m.Obs.Index() }
