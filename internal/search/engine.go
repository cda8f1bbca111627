// Package search runs semantic queries, clustering, recommendations, and trend and
// gap analysis over the embedding store.
package search

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/semindex/internal/config"
	"github.com/hyperjump/semindex/internal/embedding"
	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

// Engine ties the store to an embedder. It is safe for concurrent use; locking
// lives in the store, and embedder calls happen outside any lock.
type Engine struct {
	store    *vector.Store
	embedder embedding.Embedder
	config   *config.SearchConfig
	logger   *zap.Logger
	now      func() time.Time

	clusterSeed       *uint64
	clusterIterations int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock overrides time.Now for embedding timestamps and trend windows. Index
// CreatedAt and UpdatedAt come from the store's own clock (vector.WithClock).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithClusterSeed makes clustering reproducible. Every run starts from the same seed.
func WithClusterSeed(seed uint64) Option {
	return func(e *Engine) { e.clusterSeed = &seed }
}

// WithClusterIterations enables k-means refinement for up to n rounds.
func WithClusterIterations(n int) Option {
	return func(e *Engine) { e.clusterIterations = n }
}

// NewEngine creates an engine over store. cfg may be nil for default limits.
func NewEngine(store *vector.Store, embedder embedding.Embedder, cfg *config.SearchConfig, opts ...Option) *Engine {
	if cfg == nil {
		cfg = &config.SearchConfig{}
	}
	cfgCopy := *cfg
	cfg = &cfgCopy
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	e := &Engine{
		store:    store,
		embedder: embedder,
		config:   cfg,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying embedding store.
func (e *Engine) Store() *vector.Store {
	return e.store
}

// Embedder returns the embedder content and queries go through.
func (e *Engine) Embedder() embedding.Embedder {
	return e.embedder
}

// CreateIndex creates an empty index. An empty metric means cosine.
func (e *Engine) CreateIndex(name string, dimension int, metric string) (*models.IndexInfo, error) {
	m, err := models.ParseMetric(metric)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrInvalidArgument, err)
	}
	info, err := e.store.CreateIndex(name, dimension, m)
	if err != nil {
		return nil, err
	}
	e.logger.Info("index created",
		zap.String("index", info.Name),
		zap.Int("dimension", info.Dimension),
		zap.String("metric", string(info.Metric)))
	return info, nil
}

// DropIndex deletes an index and everything in it.
func (e *Engine) DropIndex(name string) error {
	if err := e.store.DropIndex(name); err != nil {
		return err
	}
	e.logger.Info("index dropped", zap.String("index", name))
	return nil
}

// GetIndexStats returns index metadata, or false when the index does not exist.
func (e *Engine) GetIndexStats(name string) (*models.IndexInfo, bool) {
	return e.store.Stats(name)
}

// ListIndices returns metadata for every index, sorted by name.
func (e *Engine) ListIndices() []*models.IndexInfo {
	return e.store.List()
}

// AddContent embeds input and stores it. A missing id gets a random UUID.
func (e *Engine) AddContent(ctx context.Context, indexName string, input *models.ContentInput) (*models.Embedding, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: content input is required", vector.ErrInvalidArgument)
	}
	ct, err := models.ParseContentType(string(input.ContentType))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrInvalidArgument, err)
	}
	info, ok := e.store.Stats(indexName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", vector.ErrIndexNotFound, indexName)
	}

	vec, err := e.embed(ctx, input.Content, ct, info.Dimension)
	if err != nil {
		return nil, err
	}

	id := input.ID
	if id == "" {
		id = uuid.New().String()
	}
	ts := input.Timestamp
	if ts.IsZero() {
		ts = e.now()
	}
	emb := &models.Embedding{
		ID:          id,
		Vector:      vec,
		Content:     input.Content,
		ContentType: ct,
		Metadata:    input.Metadata,
		Timestamp:   ts,
	}
	if err := e.store.Add(indexName, emb); err != nil {
		return nil, err
	}
	e.logger.Debug("content added", zap.String("index", indexName), zap.String("id", id))
	return emb, nil
}

// AddEmbedding stores a precomputed vector. A zero timestamp is set to now and a
// missing id gets a random UUID.
func (e *Engine) AddEmbedding(ctx context.Context, indexName string, emb *models.Embedding) (*models.Embedding, error) {
	if emb == nil {
		return nil, fmt.Errorf("%w: embedding is required", vector.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ct, err := models.ParseContentType(string(emb.ContentType))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vector.ErrInvalidArgument, err)
	}
	out := emb.Clone()
	out.ContentType = ct
	if out.ID == "" {
		out.ID = uuid.New().String()
	}
	if out.Timestamp.IsZero() {
		out.Timestamp = e.now()
	}
	if err := e.store.Add(indexName, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetEmbedding returns one stored embedding.
func (e *Engine) GetEmbedding(indexName, id string) (*models.Embedding, error) {
	return e.store.Get(indexName, id)
}

// DeleteEmbedding removes one embedding.
func (e *Engine) DeleteEmbedding(indexName, id string) error {
	if err := e.store.Delete(indexName, id); err != nil {
		return err
	}
	e.logger.Debug("embedding deleted", zap.String("index", indexName), zap.String("id", id))
	return nil
}

// embed calls the embedder and checks the result against the index dimension.
func (e *Engine) embed(ctx context.Context, content string, ct models.ContentType, dimension int) ([]float32, error) {
	vec, err := e.embedder.Embed(ctx, content, ct)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}
	if len(vec) != dimension {
		return nil, fmt.Errorf("%w: embedder produced %d, index expects %d", vector.ErrDimensionMismatch, len(vec), dimension)
	}
	return vec, nil
}

// clusterRand returns the source for one clustering run.
func (e *Engine) clusterRand() *rand.Rand {
	if e.clusterSeed != nil {
		return rand.New(rand.NewPCG(*e.clusterSeed, *e.clusterSeed))
	}
	return nil
}
