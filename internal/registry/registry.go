// Package registry holds the loaded datasets and their indices for the life
// of a process. It is an explicit object rather than package state so tests
// and hosts control its lifetime.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/gexatlas/gexatlas/internal/index"
	"github.com/gexatlas/gexatlas/internal/matrix"
	"github.com/gexatlas/gexatlas/internal/store"
)

// ErrUnknownDataset is returned when a dataset name matches no loaded dataset
// and no discoverable file.
var ErrUnknownDataset = errors.New("unknown dataset")

// Dataset is one loaded annotated matrix with its built index.
type Dataset struct {
	Name   string
	Matrix *matrix.Matrix
	Index  *index.Index
}

// Registry caches loaded datasets by name. Population is lazy: the first Get
// for a name scans the data directory, loads the matrix, and builds its
// index. The check-and-populate step is mutex-guarded so concurrent first
// access cannot race on index construction.
type Registry struct {
	mu       sync.Mutex
	dataDir  string
	cfg      index.Config
	logger   *zap.Logger
	datasets map[string]*Dataset
}

// New creates an empty registry over a data directory.
func New(dataDir string, cfg index.Config) *Registry {
	return &Registry{
		dataDir:  dataDir,
		cfg:      cfg,
		logger:   zap.NewNop(),
		datasets: make(map[string]*Dataset),
	}
}

// SetLogger sets the logger used for load and lookup events.
func (r *Registry) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Get returns the dataset for a name, loading and indexing it on first
// access. The dataset file is discovered in the data directory by the
// name-derived stem pattern.
func (r *Registry) Get(name string) (*Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.datasets[name]; ok {
		return d, nil
	}

	path, ok := store.Discover(r.dataDir, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (no %s*.duckdb in %s)", ErrUnknownDataset, name, name, r.dataDir)
	}
	return r.loadLocked(name, path)
}

// LoadFile loads a specific file under a caller-chosen dataset name.
// Loading an already-present name is a no-op returning the cached dataset.
func (r *Registry) LoadFile(name, path string) (*Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.datasets[name]; ok {
		return d, nil
	}
	return r.loadLocked(name, path)
}

// Add registers an in-memory matrix under a dataset name, building its
// index. An already-present name is a no-op returning the cached dataset.
func (r *Registry) Add(name string, m *matrix.Matrix) *Dataset {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.datasets[name]; ok {
		return d
	}
	d := &Dataset{Name: name, Matrix: m, Index: index.Build(name, m, r.cfg)}
	r.datasets[name] = d
	return d
}

// Reload drops a dataset and loads it again from its file, rebuilding the
// index. This is the only way a cached index is invalidated. Reload does not
// reach into query engines: a caller holding an engine over this registry
// must call its InvalidateCache, or memoized results keep serving the
// pre-reload data.
func (r *Registry) Reload(name string) (*Dataset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.datasets, name)
	path, ok := store.Discover(r.dataDir, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDataset, name)
	}
	return r.loadLocked(name, path)
}

func (r *Registry) loadLocked(name, path string) (*Dataset, error) {
	m, err := store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset %q: %w", name, err)
	}
	d := &Dataset{Name: name, Matrix: m, Index: index.Build(name, m, r.cfg)}
	r.datasets[name] = d
	r.logger.Info("loaded dataset",
		zap.String("dataset", name),
		zap.String("path", path),
		zap.Int("samples", m.NumSamples()),
		zap.Int("genes", m.NumGenes()))
	return d, nil
}

// Datasets returns the loaded dataset names, sorted.
func (r *Registry) Datasets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.datasets))
	for name := range r.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListTissues returns the indexed tissue labels of a dataset, sorted.
func (r *Registry) ListTissues(name string) ([]string, error) {
	d, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return d.Index.Tissues(), nil
}

// ListDonors returns the indexed donor identifiers of a dataset, sorted.
func (r *Registry) ListDonors(name string) ([]string, error) {
	d, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return d.Index.Donors(), nil
}

// LoadAll loads many datasets by name and reports a per-name outcome. A
// failed load never aborts the batch.
func (r *Registry) LoadAll(names []string) map[string]error {
	out := make(map[string]error, len(names))
	for _, name := range names {
		_, err := r.Get(name)
		out[name] = err
		if err != nil {
			r.logger.Warn("skipping dataset", zap.String("dataset", name), zap.Error(err))
		}
	}
	return out
}
