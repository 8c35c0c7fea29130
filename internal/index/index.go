// Package index builds per-dataset lookup structures over an annotated
// expression matrix: gene identifier to column, gene symbol to identifier,
// and donor/tissue to sample rows.
package index

import (
	"sort"
	"strings"

	"github.com/gexatlas/gexatlas/internal/matrix"
)

// Config names the candidate metadata columns an index is built from.
// The first candidate present in a matrix wins; a missing axis just leaves
// that index absent.
type Config struct {
	// DonorColumns are candidate obs columns holding the donor identifier,
	// in priority order.
	DonorColumns []string
	// TissueColumns are candidate obs columns holding the tissue label.
	TissueColumns []string
	// SymbolColumns are candidate var columns holding the gene symbol.
	SymbolColumns []string
	// IDPrefix is the canonical gene identifier prefix convention,
	// matched case-insensitively (e.g. Ensembl's "ENS").
	IDPrefix string
}

// DefaultConfig returns the candidate column lists used across the known
// source datasets.
func DefaultConfig() Config {
	return Config{
		DonorColumns:  []string{"donor_id", "donor", "subject_id", "subject", "individual_id", "individual", "patient_id"},
		TissueColumns: []string{"tissue", "tissue_type", "tissue_general", "organ", "body_site", "cell_line"},
		SymbolColumns: []string{"gene_symbol", "symbol", "gene_name"},
		IDPrefix:      "ENS",
	}
}

// Index holds the lookup structures for one loaded dataset.
type Index struct {
	name string
	m    *matrix.Matrix
	cfg  Config

	genePos   map[string]int
	sortedIDs []string

	// symbolToID maps both the literal symbol and its lowercase form to a
	// gene identifier; first occurrence wins. Nil when the dataset has no
	// symbol column.
	symbolToID map[string]string

	donorCol  string
	donorRows map[string][]int

	tissueCol   string
	tissueRows  map[string][]int
	tissueLower map[string][]int
}

// Build constructs the index for one dataset. It never fails: missing
// metadata columns leave the corresponding index absent, and filters on that
// axis return no rows.
func Build(name string, m *matrix.Matrix, cfg Config) *Index {
	ix := &Index{
		name:    name,
		m:       m,
		cfg:     cfg,
		genePos: make(map[string]int, m.NumGenes()),
	}

	for i, id := range m.GeneIDs() {
		ix.genePos[id] = i
	}
	ix.sortedIDs = append(ix.sortedIDs, m.GeneIDs()...)
	sort.Strings(ix.sortedIDs)

	if col := firstColumn(m.Var, cfg.SymbolColumns); col != "" {
		ix.symbolToID = make(map[string]string)
		for i, sym := range m.Var.ColumnValues(col) {
			if sym == "" {
				continue
			}
			id := m.Var.IndexAt(i)
			if _, ok := ix.symbolToID[sym]; !ok {
				ix.symbolToID[sym] = id
			}
			lower := strings.ToLower(sym)
			if _, ok := ix.symbolToID[lower]; !ok {
				ix.symbolToID[lower] = id
			}
		}
	}

	if col := firstColumn(m.Obs, cfg.DonorColumns); col != "" {
		ix.donorCol = col
		ix.donorRows = rowsByValue(m.Obs.ColumnValues(col))
	}
	if col := firstColumn(m.Obs, cfg.TissueColumns); col != "" {
		ix.tissueCol = col
		ix.tissueRows = rowsByValue(m.Obs.ColumnValues(col))
		ix.tissueLower = make(map[string][]int, len(ix.tissueRows))
		for tissue, rows := range ix.tissueRows {
			lower := strings.ToLower(tissue)
			ix.tissueLower[lower] = append(ix.tissueLower[lower], rows...)
		}
		for _, rows := range ix.tissueLower {
			sort.Ints(rows)
		}
	}

	return ix
}

// Name returns the dataset name the index was built for.
func (ix *Index) Name() string { return ix.name }

// Matrix returns the matrix the index was built over.
func (ix *Index) Matrix() *matrix.Matrix { return ix.m }

// GenePos returns the column position of a canonical gene identifier.
func (ix *Index) GenePos(id string) (int, bool) {
	i, ok := ix.genePos[id]
	return i, ok
}

// Donors returns the indexed donor identifiers, sorted.
func (ix *Index) Donors() []string { return sortedKeys(ix.donorRows) }

// Tissues returns the indexed tissue labels, sorted.
func (ix *Index) Tissues() []string { return sortedKeys(ix.tissueRows) }

func firstColumn(t *matrix.Table, candidates []string) string {
	for _, c := range candidates {
		if t.HasColumn(c) {
			return c
		}
	}
	return ""
}

func rowsByValue(values []string) map[string][]int {
	rows := make(map[string][]int)
	for i, v := range values {
		if v == "" {
			continue
		}
		rows[v] = append(rows[v], i)
	}
	return rows
}

func sortedKeys(m map[string][]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
