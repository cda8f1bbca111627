package search

import (
	"context"

	"github.com/hyperjump/semindex/internal/cluster"
	"github.com/hyperjump/semindex/internal/models"
)

// Cluster groups the index's embeddings into at most k clusters.
func (e *Engine) Cluster(ctx context.Context, indexName string, k int) ([]*models.Cluster, error) {
	var embs []*models.Embedding
	err := e.store.View(indexName, func(_ models.IndexInfo, all []*models.Embedding) error {
		embs = make([]*models.Embedding, len(all))
		for i, emb := range all {
			embs[i] = emb.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.kmeans(embs, k)
}

func (e *Engine) kmeans(embs []*models.Embedding, k int) ([]*models.Cluster, error) {
	return cluster.KMeans(embs, cluster.Options{
		K:             k,
		Rand:          e.clusterRand(),
		MaxIterations: e.clusterIterations,
	})
}
