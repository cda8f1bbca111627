package vector

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/semindex/internal/models"
)

// Store is the in-memory embedding store: index name -> (metadata, embeddings).
// The map of indices has its own lock; each index carries a readers-writer lock so
// scans run concurrently with each other but never alongside an add or delete on
// the same index.
type Store struct {
	mu      sync.RWMutex
	indices map[string]*index
	now     func() time.Time
}

type index struct {
	mu         sync.RWMutex
	info       models.IndexInfo
	embeddings map[string]*models.Embedding
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock overrides time.Now for CreatedAt/UpdatedAt bookkeeping.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore returns an empty store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		indices: make(map[string]*index),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIndex allocates an empty index. A name collision fails with ErrDuplicateIndex.
func (s *Store) CreateIndex(name string, dimension int, metric models.Metric) (*models.IndexInfo, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: index name is required", ErrInvalidArgument)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidArgument, dimension)
	}
	m, err := models.ParseMetric(string(metric))
	if err != nil || strings.TrimSpace(string(metric)) == "" {
		return nil, fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, metric)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indices[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateIndex, name)
	}
	now := s.now()
	idx := &index{
		info: models.IndexInfo{
			Name:      name,
			Dimension: dimension,
			Metric:    m,
			CreatedAt: now,
			UpdatedAt: now,
		},
		embeddings: make(map[string]*models.Embedding),
	}
	s.indices[name] = idx
	info := idx.info
	return &info, nil
}

// DropIndex removes an index and all of its embeddings.
func (s *Store) DropIndex(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indices[name]; !ok {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	}
	delete(s.indices, name)
	return nil
}

func (s *Store) lookup(name string) (*index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indices[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, name)
	}
	return idx, nil
}

// Add inserts or overwrites emb by id. The vector length must equal the index dimension.
func (s *Store) Add(indexName string, emb *models.Embedding) error {
	idx, err := s.lookup(indexName)
	if err != nil {
		return err
	}
	if emb.ID == "" {
		return fmt.Errorf("%w: embedding id is required", ErrInvalidArgument)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if len(emb.Vector) != idx.info.Dimension {
		return fmt.Errorf("%w: got %d, index %s expects %d",
			ErrDimensionMismatch, len(emb.Vector), indexName, idx.info.Dimension)
	}
	idx.embeddings[emb.ID] = emb.Clone()
	idx.touch(s.now())
	return nil
}

// Delete removes the embedding with the given id.
func (s *Store) Delete(indexName, id string) error {
	idx, err := s.lookup(indexName)
	if err != nil {
		return err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if _, ok := idx.embeddings[id]; !ok {
		return fmt.Errorf("%w: %s in %s", ErrVectorNotFound, id, indexName)
	}
	delete(idx.embeddings, id)
	idx.touch(s.now())
	return nil
}

func (idx *index) touch(now time.Time) {
	idx.info.TotalVectors = len(idx.embeddings)
	idx.info.UpdatedAt = now
}

// Get returns a copy of one embedding.
func (s *Store) Get(indexName, id string) (*models.Embedding, error) {
	idx, err := s.lookup(indexName)
	if err != nil {
		return nil, err
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	emb, ok := idx.embeddings[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrVectorNotFound, id, indexName)
	}
	return emb.Clone(), nil
}

// Stats returns a copy of the index metadata, or false when the index does not exist.
func (s *Store) Stats(name string) (*models.IndexInfo, bool) {
	idx, err := s.lookup(name)
	if err != nil {
		return nil, false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	info := idx.info
	return &info, true
}

// List returns metadata for every index, sorted by name.
func (s *Store) List() []*models.IndexInfo {
	s.mu.RLock()
	all := make([]*index, 0, len(s.indices))
	for _, idx := range s.indices {
		all = append(all, idx)
	}
	s.mu.RUnlock()

	out := make([]*models.IndexInfo, 0, len(all))
	for _, idx := range all {
		idx.mu.RLock()
		info := idx.info
		idx.mu.RUnlock()
		out = append(out, &info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// View runs fn under the index read lock with the embeddings sorted by id.
// fn must not retain or mutate the embeddings after it returns.
func (s *Store) View(name string, fn func(info models.IndexInfo, embeddings []*models.Embedding) error) error {
	idx, err := s.lookup(name)
	if err != nil {
		return err
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	embs := make([]*models.Embedding, 0, len(idx.embeddings))
	for _, e := range idx.embeddings {
		embs = append(embs, e)
	}
	sort.Slice(embs, func(i, j int) bool { return embs[i].ID < embs[j].ID })
	return fn(idx.info, embs)
}

// Export returns copies of the index metadata and embeddings, for snapshotting.
func (s *Store) Export(name string) (models.IndexInfo, []*models.Embedding, error) {
	var (
		info models.IndexInfo
		out  []*models.Embedding
	)
	err := s.View(name, func(i models.IndexInfo, embs []*models.Embedding) error {
		info = i
		out = make([]*models.Embedding, len(embs))
		for j, e := range embs {
			out[j] = e.Clone()
		}
		return nil
	})
	return info, out, err
}

// Restore replaces (or creates) an index from a snapshot. Every embedding must match
// the snapshot dimension; on error the store is left unchanged.
func (s *Store) Restore(info models.IndexInfo, embeddings []*models.Embedding) error {
	if info.Name == "" || info.Dimension <= 0 {
		return fmt.Errorf("%w: snapshot needs a name and a positive dimension", ErrInvalidArgument)
	}
	m, err := models.ParseMetric(string(info.Metric))
	if err != nil || strings.TrimSpace(string(info.Metric)) == "" {
		return fmt.Errorf("%w: unknown metric %q", ErrInvalidArgument, info.Metric)
	}
	info.Metric = m
	idx := &index{info: info, embeddings: make(map[string]*models.Embedding, len(embeddings))}
	for _, e := range embeddings {
		if len(e.Vector) != info.Dimension {
			return fmt.Errorf("%w: embedding %s has %d, index %s expects %d",
				ErrDimensionMismatch, e.ID, len(e.Vector), info.Name, info.Dimension)
		}
		idx.embeddings[e.ID] = e.Clone()
	}
	idx.info.TotalVectors = len(idx.embeddings)
	if idx.info.CreatedAt.IsZero() {
		idx.info.CreatedAt = s.now()
	}
	if idx.info.UpdatedAt.IsZero() {
		idx.info.UpdatedAt = idx.info.CreatedAt
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices[info.Name] = idx
	return nil
}
