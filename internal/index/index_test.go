package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gexatlas/gexatlas/internal/matrix"
)

// testMatrix builds a small dataset with replicated donor/tissue pairs and a
// duplicate gene symbol.
func testMatrix(t *testing.T) *matrix.Matrix {
	t.Helper()

	obs, err := matrix.NewTable([]string{"s1", "s2", "s3", "s4", "s5"})
	require.NoError(t, err)
	require.NoError(t, obs.SetColumn("donor_id", []string{"D1", "D1", "D2", "D2", "D3"}))
	require.NoError(t, obs.SetColumn("tissue", []string{"Lung", "Lung", "NCI-H460 lung carcinoma", "Liver", "Liver"}))

	v, err := matrix.NewTable([]string{"ENSG00000000005", "ENSG00000000001", "ENSG00000000003"})
	require.NoError(t, err)
	// TP53 appears twice: the first occurrence must win.
	require.NoError(t, v.SetColumn("gene_symbol", []string{"TP53", "BRCA1", "TP53"}))

	x := matrix.NewDenseData(5, 3, []float64{
		5.0, 1.0, 0.0,
		6.0, 2.0, 0.5,
		7.0, 0.0, 1.5,
		8.0, 3.0, 2.5,
		9.0, 4.0, 3.5,
	})
	m, err := matrix.New(x, obs, v)
	require.NoError(t, err)
	return m
}

func testIndex(t *testing.T) *Index {
	t.Helper()
	return Build("test", testMatrix(t), DefaultConfig())
}

func TestBuildColumnDiscovery(t *testing.T) {
	ix := testIndex(t)

	assert.Equal(t, []string{"D1", "D2", "D3"}, ix.Donors())
	assert.Equal(t, []string{"Liver", "Lung", "NCI-H460 lung carcinoma"}, ix.Tissues())

	pos, ok := ix.GenePos("ENSG00000000003")
	require.True(t, ok)
	assert.Equal(t, 2, pos)
}

func TestBuildMissingAxes(t *testing.T) {
	obs, err := matrix.NewTable([]string{"s1"})
	require.NoError(t, err)
	v, err := matrix.NewTable([]string{"ENSG00000000001"})
	require.NoError(t, err)
	m, err := matrix.New(matrix.NewDense(1, 1), obs, v)
	require.NoError(t, err)

	ix := Build("bare", m, DefaultConfig())

	// Missing columns are not an error; filters on those axes just miss.
	assert.Empty(t, ix.Donors())
	assert.Empty(t, ix.Tissues())
	assert.Nil(t, ix.FilterSamples("D1", "", nil))
	assert.Nil(t, ix.FilterSamples("", "Lung", nil))

	// Without a symbol column, only identifier resolution works.
	_, ok := ix.Resolve("TP53")
	assert.False(t, ok)
	id, ok := ix.Resolve("ENSG00000000001")
	require.True(t, ok)
	assert.Equal(t, "ENSG00000000001", id)
}

func TestBuildSkipsEmptySymbols(t *testing.T) {
	obs, err := matrix.NewTable([]string{"s1"})
	require.NoError(t, err)
	v, err := matrix.NewTable([]string{"ENSG00000000001", "ENSG00000000002"})
	require.NoError(t, err)
	require.NoError(t, v.SetColumn("gene_symbol", []string{"", "KRAS"}))
	m, err := matrix.New(matrix.NewDense(1, 2), obs, v)
	require.NoError(t, err)

	ix := Build("gaps", m, DefaultConfig())

	_, ok := ix.Resolve("")
	assert.False(t, ok)
	id, ok := ix.Resolve("KRAS")
	require.True(t, ok)
	assert.Equal(t, "ENSG00000000002", id)
}
