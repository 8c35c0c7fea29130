package consolidate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gexatlas/gexatlas/internal/matrix"
)

// makeInput builds a one-row input dataset over the given genes.
func makeInput(t *testing.T, name, sample string, genes []string, symbols []string, values []float64) Input {
	t.Helper()

	obs, err := matrix.NewTable([]string{sample})
	require.NoError(t, err)
	require.NoError(t, obs.SetColumn("tissue", []string{"Lung"}))

	v, err := matrix.NewTable(genes)
	require.NoError(t, err)
	if symbols != nil {
		require.NoError(t, v.SetColumn("gene_symbol", symbols))
	}

	m, err := matrix.New(matrix.NewDenseData(1, len(genes), values), obs, v)
	require.NoError(t, err)
	return Input{Name: name, M: m}
}

func twoInputs(t *testing.T) []Input {
	t.Helper()
	return []Input{
		makeInput(t, "A", "a1", []string{"ENSG001", "ENSG002"}, []string{"G1", "SYM_A"}, []float64{1, 2}),
		makeInput(t, "B", "b1", []string{"ENSG002", "ENSG003"}, []string{"SYM_B", "G3"}, []float64{3, 4}),
	}
}

func TestConsolidateGeneUnion(t *testing.T) {
	out, stats, err := Consolidate(twoInputs(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"ENSG001", "ENSG002", "ENSG003"}, out.GeneIDs())
	assert.Equal(t, 2, out.NumSamples())
	assert.Equal(t, 3, stats.TotalGenes)
	assert.Equal(t, 2, stats.TotalSamples)
}

func TestConsolidateStructuralAbsence(t *testing.T) {
	out, _, err := Consolidate(twoInputs(t))
	require.NoError(t, err)

	// Row from A never measured ENSG003; row from B never measured ENSG001.
	assert.Equal(t, 0.0, out.X.At(0, 2))
	assert.Equal(t, 0.0, out.X.At(1, 0))

	// Absence is structural: those cells hold no stored value at all.
	csr := out.X.(*matrix.CSR)
	assert.Equal(t, 4, csr.Stored())
	csr.NonZero(func(r, c int, v float64) bool {
		if r == 0 {
			assert.NotEqual(t, 2, c)
		} else {
			assert.NotEqual(t, 0, c)
		}
		return true
	})

	// Measured values land at their translated column positions.
	assert.Equal(t, 1.0, out.X.At(0, 0))
	assert.Equal(t, 2.0, out.X.At(0, 1))
	assert.Equal(t, 3.0, out.X.At(1, 1))
	assert.Equal(t, 4.0, out.X.At(1, 2))
}

func TestConsolidatePresentIn(t *testing.T) {
	out, _, err := Consolidate(twoInputs(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "A;B", "B"}, out.Var.ColumnValues(ColPresentIn))
}

func TestConsolidateVarMergeFirstWriterWins(t *testing.T) {
	out, _, err := Consolidate(twoInputs(t))
	require.NoError(t, err)

	// ENSG002 has a symbol in both inputs; A came first and keeps it.
	g2, ok := out.Var.Pos("ENSG002")
	require.True(t, ok)
	assert.Equal(t, "SYM_A", out.Var.Cell(g2, "gene_symbol"))

	// Genes only one input annotated are filled from that input.
	g1, _ := out.Var.Pos("ENSG001")
	g3, _ := out.Var.Pos("ENSG003")
	assert.Equal(t, "G1", out.Var.Cell(g1, "gene_symbol"))
	assert.Equal(t, "G3", out.Var.Cell(g3, "gene_symbol"))
}

func TestConsolidateProvenance(t *testing.T) {
	out, _, err := Consolidate(twoInputs(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"A:a1", "B:b1"}, out.SampleIDs())
	assert.Equal(t, []string{"A", "B"}, out.Obs.ColumnValues(ColSourceDataset))
	assert.Equal(t, []string{"a1", "b1"}, out.Obs.ColumnValues(ColOriginalIndex))
	assert.Equal(t, []string{"A:a1", "B:b1"}, out.Obs.ColumnValues(ColCombinedIndex))

	// Row metadata is copied verbatim.
	assert.Equal(t, []string{"Lung", "Lung"}, out.Obs.ColumnValues("tissue"))
}

func TestConsolidateOverlapStats(t *testing.T) {
	_, stats, err := Consolidate(twoInputs(t))
	require.NoError(t, err)

	require.Len(t, stats.Overlaps, 1)
	ov := stats.Overlaps[0]
	assert.Equal(t, "A", ov.A)
	assert.Equal(t, "B", ov.B)
	assert.Equal(t, 1, ov.Common)
	assert.Equal(t, 50.0, ov.PctOfA)
	assert.Equal(t, 50.0, ov.PctOfB)

	assert.InDelta(t, 1.0/3.0, stats.Sparsity, 1e-9)
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, stats.InputSamples)
	assert.Equal(t, map[string]int{"A": 2, "B": 2}, stats.InputGenes)
}

func TestConsolidateEmbedsStats(t *testing.T) {
	out, stats, err := Consolidate(twoInputs(t))
	require.NoError(t, err)

	assert.Equal(t, "A;B", out.Info["source_datasets"])

	var decoded Stats
	require.NoError(t, json.Unmarshal([]byte(out.Info[InfoStatsKey]), &decoded))
	assert.Equal(t, stats.TotalGenes, decoded.TotalGenes)
	assert.Equal(t, stats.Overlaps, decoded.Overlaps)
}

func TestConsolidateZeroValuesNotStored(t *testing.T) {
	// A measured zero is stored the same way as absence: not at all.
	in := makeInput(t, "A", "a1", []string{"ENSG001", "ENSG002"}, nil, []float64{5, 0})
	out, stats, err := Consolidate([]Input{in})
	require.NoError(t, err)

	csr := out.X.(*matrix.CSR)
	assert.Equal(t, 1, csr.Stored())
	assert.Equal(t, 5.0, out.X.At(0, 0))
	assert.Equal(t, 0.0, out.X.At(0, 1))
	assert.InDelta(t, 0.5, stats.Sparsity, 1e-9)
}

func TestConsolidateRowCountPartition(t *testing.T) {
	inputs := []Input{
		makeInput(t, "A", "a1", []string{"ENSG001"}, nil, []float64{1}),
		makeInput(t, "B", "b1", []string{"ENSG001"}, nil, []float64{2}),
		makeInput(t, "C", "c1", []string{"ENSG002"}, nil, []float64{3}),
	}
	out, _, err := Consolidate(inputs)
	require.NoError(t, err)

	require.Equal(t, 3, out.NumSamples())
	sources := out.Obs.ColumnValues(ColSourceDataset)
	counts := map[string]int{}
	for _, s := range sources {
		counts[s]++
	}
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, counts)
}

func TestConsolidateNoInputs(t *testing.T) {
	_, _, err := Consolidate(nil)
	assert.ErrorIs(t, err, ErrNoInputs)
}
