// Package consolidate merges annotated expression matrices with partially
// overlapping gene sets into one sparse matrix over the union of genes,
// preserving per-sample provenance and per-pair overlap statistics.
package consolidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gexatlas/gexatlas/internal/matrix"
)

// ErrNoInputs is returned when consolidation is attempted over zero usable
// input matrices.
var ErrNoInputs = errors.New("no usable input datasets")

// Provenance columns added to every consolidated sample row.
const (
	ColSourceDataset = "source_dataset"
	ColOriginalIndex = "original_index"
	ColCombinedIndex = "combined_index"
)

// ColPresentIn is the var column recording which source datasets measured
// each gene, as a semicolon-joined list in input order.
const ColPresentIn = "present_in_datasets"

// InfoStatsKey is the info key the overlap/sparsity statistics block is
// embedded under, as JSON.
const InfoStatsKey = "consolidation_stats"

// Input is one named matrix to consolidate.
type Input struct {
	Name string
	M    *matrix.Matrix
}

// Consolidate merges the inputs into one matrix over the sorted union of
// their genes. Samples are concatenated in input order; a gene a source
// dataset never measured is structurally absent (no stored value) in every
// row from that dataset.
func Consolidate(inputs []Input) (*matrix.Matrix, *Stats, error) {
	if len(inputs) == 0 {
		return nil, nil, ErrNoInputs
	}

	union, globalPos := geneUnion(inputs)

	outVar, err := mergeVar(inputs, union, globalPos)
	if err != nil {
		return nil, nil, err
	}

	outObs, triples, totalRows, err := mergeSamples(inputs, globalPos)
	if err != nil {
		return nil, nil, err
	}

	x := matrix.NewCSR(totalRows, len(union), triples)
	out, err := matrix.New(x, outObs, outVar)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble consolidated matrix: %w", err)
	}

	stats := computeStats(inputs, totalRows, len(union), x.Stored())

	for _, in := range inputs {
		for k, v := range in.M.Info {
			if _, ok := out.Info[k]; !ok {
				out.Info[k] = v
			}
		}
	}
	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	out.Info["source_datasets"] = strings.Join(names, ";")
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return nil, nil, fmt.Errorf("encode consolidation stats: %w", err)
	}
	out.Info[InfoStatsKey] = string(statsJSON)

	return out, stats, nil
}

// geneUnion returns the sorted union of gene identifiers and their output
// column positions.
func geneUnion(inputs []Input) ([]string, map[string]int) {
	seen := make(map[string]struct{})
	var union []string
	for _, in := range inputs {
		for _, id := range in.M.GeneIDs() {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				union = append(union, id)
			}
		}
	}
	sort.Strings(union)

	pos := make(map[string]int, len(union))
	for i, id := range union {
		pos[id] = i
	}
	return union, pos
}

// mergeVar builds the output gene-metadata table: the present_in_datasets
// annotation plus every input var column, filled per gene from the first
// input (in input order) supplying a non-empty value.
func mergeVar(inputs []Input, union []string, globalPos map[string]int) (*matrix.Table, error) {
	outVar, err := matrix.NewTable(union)
	if err != nil {
		return nil, fmt.Errorf("gene union: %w", err)
	}

	presentIn := make([][]string, len(union))
	for _, in := range inputs {
		for _, id := range in.M.GeneIDs() {
			g := globalPos[id]
			presentIn[g] = append(presentIn[g], in.Name)
		}
	}
	joined := make([]string, len(union))
	for i, names := range presentIn {
		joined[i] = strings.Join(names, ";")
	}
	if err := outVar.SetColumn(ColPresentIn, joined); err != nil {
		return nil, err
	}

	for _, in := range inputs {
		for _, col := range in.M.Var.Columns() {
			outVar.AddColumn(col)
			values := in.M.Var.ColumnValues(col)
			for i, id := range in.M.GeneIDs() {
				if values[i] == "" {
					continue
				}
				g := globalPos[id]
				if outVar.Cell(g, col) == "" {
					outVar.SetCell(g, col, values[i])
				}
			}
		}
	}
	return outVar, nil
}

// mergeSamples concatenates all input sample rows, copying row metadata
// verbatim plus the three provenance columns, and accumulates sparse triples
// for every non-zero cell translated to output column positions.
func mergeSamples(inputs []Input, globalPos map[string]int) (*matrix.Table, []matrix.Triple, int, error) {
	var combined []string
	for _, in := range inputs {
		for _, idx := range in.M.SampleIDs() {
			combined = append(combined, in.Name+":"+idx)
		}
	}
	outObs, err := matrix.NewTable(combined)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("combined sample index: %w", err)
	}
	outObs.AddColumn(ColSourceDataset)
	outObs.AddColumn(ColOriginalIndex)
	outObs.AddColumn(ColCombinedIndex)

	var triples []matrix.Triple
	offset := 0
	for _, in := range inputs {
		localToGlobal := make([]int, in.M.NumGenes())
		for i, id := range in.M.GeneIDs() {
			localToGlobal[i] = globalPos[id]
		}

		for r, idx := range in.M.SampleIDs() {
			out := offset + r
			for _, col := range in.M.Obs.Columns() {
				outObs.SetCell(out, col, in.M.Obs.Cell(r, col))
			}
			outObs.SetCell(out, ColSourceDataset, in.Name)
			outObs.SetCell(out, ColOriginalIndex, idx)
			outObs.SetCell(out, ColCombinedIndex, combined[out])
		}

		rowOffset := offset
		in.M.X.NonZero(func(r, c int, v float64) bool {
			triples = append(triples, matrix.Triple{
				Row:   rowOffset + r,
				Col:   localToGlobal[c],
				Value: v,
			})
			return true
		})

		offset += in.M.NumSamples()
	}
	return outObs, triples, offset, nil
}
