// Package query answers gene-expression queries over loaded datasets:
// single-gene summary statistics and multi-gene, multi-sample matrices.
package query

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/gexatlas/gexatlas/internal/index"
	"github.com/gexatlas/gexatlas/internal/matrix"
	"github.com/gexatlas/gexatlas/internal/registry"
)

// DefaultCacheSize bounds the memoization cache.
const DefaultCacheSize = 4096

// Unprintable field and list separators for memoization keys.
const (
	keySep  = "\x1f"
	listSep = "\x1e"
)

// Engine resolves gene tokens, filters samples, and memoizes results.
// Not-found outcomes (unresolved gene, no matching rows) are normal: they
// come back as a nil result with a nil error.
type Engine struct {
	reg    *registry.Registry
	logger *zap.Logger
	policy index.RepresentativePolicy
	cache  *lru.Cache[string, any]
}

// New creates an engine over a registry with the default representative
// policy (first row) and memoization capacity.
func New(reg *registry.Registry) *Engine {
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, any](DefaultCacheSize)
	return &Engine{
		reg:    reg,
		logger: zap.NewNop(),
		policy: index.First{},
		cache:  cache,
	}
}

// SetLogger sets the logger used for not-found and skip events.
func (e *Engine) SetLogger(l *zap.Logger) {
	e.logger = l
}

// SetPolicy sets the representative-sample policy applied when a donor and
// tissue constraint leave multiple replicate rows.
func (e *Engine) SetPolicy(p index.RepresentativePolicy) {
	e.policy = p
}

// InvalidateCache drops every memoized result. Call it after a dataset is
// reloaded; cache keys carry only the query arguments, not the dataset
// generation, so stale results would otherwise survive a reload.
func (e *Engine) InvalidateCache() {
	e.cache.Purge()
}

// SetCacheSize replaces the memoization cache with an empty one bounded to
// size entries.
func (e *Engine) SetCacheSize(size int) error {
	cache, err := lru.New[string, any](size)
	if err != nil {
		return fmt.Errorf("resize query cache: %w", err)
	}
	e.cache = cache
	return nil
}

// ResolveGene maps a gene token to a dataset's canonical identifier.
func (e *Engine) ResolveGene(dataset, token string) (string, bool, error) {
	d, err := e.reg.Get(dataset)
	if err != nil {
		return "", false, err
	}
	id, ok := d.Index.Resolve(token)
	return id, ok, nil
}

// GeneExpression returns summary statistics for one gene over the samples
// matching the optional donor and tissue constraints. An unresolved gene or
// an empty row set returns (nil, nil).
func (e *Engine) GeneExpression(dataset, gene, donor, tissue string) (*Stats, error) {
	key := strings.Join([]string{"stats", dataset, gene, donor, tissue, e.policy.Name()}, keySep)
	if cached, ok := e.cache.Get(key); ok {
		return cached.(*Stats), nil
	}

	d, err := e.reg.Get(dataset)
	if err != nil {
		return nil, err
	}

	stats := e.geneExpression(d, gene, donor, tissue)
	e.cache.Add(key, stats)
	return stats, nil
}

func (e *Engine) geneExpression(d *registry.Dataset, gene, donor, tissue string) *Stats {
	id, ok := d.Index.Resolve(gene)
	if !ok {
		e.logger.Info("gene not resolved",
			zap.String("dataset", d.Name), zap.String("gene", gene))
		return nil
	}
	col, _ := d.Index.GenePos(id)

	rows := d.Index.FilterSamples(donor, tissue, e.policy)
	if len(rows) == 0 {
		e.logger.Info("no samples match",
			zap.String("dataset", d.Name),
			zap.String("donor", donor), zap.String("tissue", tissue))
		return nil
	}

	values := make([]float64, len(rows))
	for i, r := range rows {
		values[i] = d.Matrix.X.At(r, col)
	}
	return summarize(id, values)
}

// MatrixResult is a genes-by-samples query result. GeneIDs holds the
// resolved identifiers in column order, SampleIDs the sample identifiers in
// row order.
type MatrixResult struct {
	Values    *matrix.Dense
	GeneIDs   []string
	SampleIDs []string
}

// ExpressionMatrix returns expression values for many genes over the samples
// matching the constraint lists. Genes that do not resolve are logged and
// skipped. When both donor and tissue lists are given, the row set is the
// concatenation of per-pair filter results over their Cartesian product;
// overlapping constraints yield duplicate rows and are not deduplicated.
func (e *Engine) ExpressionMatrix(dataset string, genes, donors, tissues []string) (*MatrixResult, error) {
	key := strings.Join([]string{
		"matrix", dataset,
		strings.Join(genes, listSep),
		strings.Join(donors, listSep),
		strings.Join(tissues, listSep),
		e.policy.Name(),
	}, keySep)
	if cached, ok := e.cache.Get(key); ok {
		return cached.(*MatrixResult), nil
	}

	d, err := e.reg.Get(dataset)
	if err != nil {
		return nil, err
	}

	res := e.expressionMatrix(d, genes, donors, tissues)
	e.cache.Add(key, res)
	return res, nil
}

func (e *Engine) expressionMatrix(d *registry.Dataset, genes, donors, tissues []string) *MatrixResult {
	var ids []string
	var cols []int
	for _, gene := range genes {
		id, ok := d.Index.Resolve(gene)
		if !ok {
			e.logger.Info("gene excluded from matrix",
				zap.String("dataset", d.Name), zap.String("gene", gene))
			continue
		}
		col, _ := d.Index.GenePos(id)
		ids = append(ids, id)
		cols = append(cols, col)
	}

	rows := e.filterRows(d, donors, tissues)
	if len(ids) == 0 || len(rows) == 0 {
		return &MatrixResult{Values: matrix.NewDense(0, 0), GeneIDs: []string{}, SampleIDs: []string{}}
	}

	values := matrix.NewDense(len(rows), len(ids))
	samples := make([]string, len(rows))
	for i, r := range rows {
		samples[i] = d.Matrix.Obs.IndexAt(r)
		for j, c := range cols {
			values.Set(i, j, d.Matrix.X.At(r, c))
		}
	}
	return &MatrixResult{Values: values, GeneIDs: ids, SampleIDs: samples}
}

// filterRows concatenates filter results over the Cartesian product of the
// donor and tissue constraint lists. An empty list is one unconstrained
// element on that axis; both lists empty means all rows.
func (e *Engine) filterRows(d *registry.Dataset, donors, tissues []string) []int {
	if len(donors) == 0 && len(tissues) == 0 {
		return d.Index.FilterSamples("", "", e.policy)
	}
	if len(donors) == 0 {
		donors = []string{""}
	}
	if len(tissues) == 0 {
		tissues = []string{""}
	}

	var rows []int
	for _, donor := range donors {
		for _, tissue := range tissues {
			rows = append(rows, d.Index.FilterSamples(donor, tissue, e.policy)...)
		}
	}
	return rows
}
