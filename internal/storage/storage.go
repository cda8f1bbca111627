// Package storage persists index snapshots so indices survive a restart.
package storage

import (
	"context"

	"github.com/hyperjump/semindex/internal/models"
)

// Snapshot is one index with all of its embeddings.
type Snapshot struct {
	Info       models.IndexInfo
	Embeddings []*models.Embedding
}

// Storage saves and restores whole-index snapshots. It is written by the caller at
// chosen points (shutdown, explicit save) and is not a write-ahead log.
type Storage interface {
	SaveIndex(ctx context.Context, info models.IndexInfo, embeddings []*models.Embedding) error
	LoadIndices(ctx context.Context) ([]*Snapshot, error)
	DeleteIndex(ctx context.Context, name string) error
	Close() error
}
