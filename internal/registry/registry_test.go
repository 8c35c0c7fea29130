package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gexatlas/gexatlas/internal/index"
	"github.com/gexatlas/gexatlas/internal/matrix"
	"github.com/gexatlas/gexatlas/internal/store"
)

func writeDataset(t *testing.T, path string) {
	t.Helper()

	obs, err := matrix.NewTable([]string{"s1", "s2"})
	require.NoError(t, err)
	require.NoError(t, obs.SetColumn("donor_id", []string{"D1", "D2"}))
	require.NoError(t, obs.SetColumn("tissue", []string{"Lung", "Liver"}))

	v, err := matrix.NewTable([]string{"ENSG001"})
	require.NoError(t, err)

	x := matrix.NewDenseData(2, 1, []float64{3, 4})
	m, err := matrix.New(x, obs, v)
	require.NoError(t, err)
	require.NoError(t, store.Save(path, m))
}

func TestGetLazyLoad(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, filepath.Join(dir, "gtex_v8.duckdb"))
	r := New(dir, index.DefaultConfig())

	// First access discovers the file by stem and builds the index.
	d, err := r.Get("gtex")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Matrix.NumSamples())
	assert.Equal(t, []string{"Liver", "Lung"}, d.Index.Tissues())

	// Second access returns the cached dataset.
	again, err := r.Get("gtex")
	require.NoError(t, err)
	assert.Same(t, d, again)

	assert.Equal(t, []string{"gtex"}, r.Datasets())
}

func TestGetUnknownDataset(t *testing.T) {
	r := New(t.TempDir(), index.DefaultConfig())
	_, err := r.Get("nope")
	assert.ErrorIs(t, err, ErrUnknownDataset)
}

func TestLoadFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anything.duckdb")
	writeDataset(t, path)
	r := New(dir, index.DefaultConfig())

	// A file loads under a caller-chosen name, independent of its stem.
	d, err := r.LoadFile("custom", path)
	require.NoError(t, err)

	// Repeat loads of a present name are no-ops.
	again, err := r.LoadFile("custom", filepath.Join(dir, "would-not-even-open.duckdb"))
	require.NoError(t, err)
	assert.Same(t, d, again)
}

func TestReloadRebuildsIndex(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, filepath.Join(dir, "ds.duckdb"))
	r := New(dir, index.DefaultConfig())

	d, err := r.Get("ds")
	require.NoError(t, err)

	reloaded, err := r.Reload("ds")
	require.NoError(t, err)
	assert.NotSame(t, d, reloaded)

	// Reload yields the same lookup results as the first load.
	assert.Equal(t, d.Index.Tissues(), reloaded.Index.Tissues())
	assert.Equal(t, d.Index.Donors(), reloaded.Index.Donors())
}

func TestListAxes(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, filepath.Join(dir, "ds.duckdb"))
	r := New(dir, index.DefaultConfig())

	tissues, err := r.ListTissues("ds")
	require.NoError(t, err)
	assert.Equal(t, []string{"Liver", "Lung"}, tissues)

	donors, err := r.ListDonors("ds")
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "D2"}, donors)
}

func TestLoadAllReportsPerItem(t *testing.T) {
	dir := t.TempDir()
	writeDataset(t, filepath.Join(dir, "good.duckdb"))
	r := New(dir, index.DefaultConfig())

	outcomes := r.LoadAll([]string{"good", "missing"})
	assert.NoError(t, outcomes["good"])
	assert.ErrorIs(t, outcomes["missing"], ErrUnknownDataset)

	// The failed item never blocked the good one.
	assert.Equal(t, []string{"good"}, r.Datasets())
}

func TestAddInMemory(t *testing.T) {
	r := New(t.TempDir(), index.DefaultConfig())

	obs, err := matrix.NewTable([]string{"s1"})
	require.NoError(t, err)
	v, err := matrix.NewTable([]string{"ENSG001"})
	require.NoError(t, err)
	m, err := matrix.New(matrix.NewDense(1, 1), obs, v)
	require.NoError(t, err)

	d := r.Add("mem", m)
	assert.Same(t, d, r.Add("mem", m))

	got, err := r.Get("mem")
	require.NoError(t, err)
	assert.Same(t, d, got)
}
