package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

func clusterEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	ctx := context.Background()
	e := newTestEngine(t, opts...)
	_, err := e.CreateIndex("pts", 2, "dot_product")
	require.NoError(t, err)
	for _, emb := range []*models.Embedding{
		{ID: "a1", Vector: []float32{0, 0}, Content: "pricing plans"},
		{ID: "a2", Vector: []float32{0.2, 0}, Content: "pricing tiers"},
		{ID: "b1", Vector: []float32{9, 9}, Content: "refund requests"},
		{ID: "b2", Vector: []float32{9, 9.2}, Content: "refund policy"},
	} {
		_, err := e.AddEmbedding(ctx, "pts", emb)
		require.NoError(t, err)
	}
	return e
}

func TestEngine_Cluster(t *testing.T) {
	e := clusterEngine(t, WithClusterSeed(11), WithClusterIterations(10))
	clusters, err := e.Cluster(context.Background(), "pts", 2)
	require.NoError(t, err)

	members := 0
	for _, c := range clusters {
		members += len(c.Members)
		assert.NotEmpty(t, c.Topics)
		assert.GreaterOrEqual(t, c.Coherence, -1.0)
		assert.LessOrEqual(t, c.Coherence, 1.0)
	}
	assert.Equal(t, 4, members)
}

func TestEngine_Cluster_SeedReproducible(t *testing.T) {
	e := clusterEngine(t, WithClusterSeed(5))
	ctx := context.Background()
	first, err := e.Cluster(ctx, "pts", 3)
	require.NoError(t, err)
	second, err := e.Cluster(ctx, "pts", 3)
	require.NoError(t, err)
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Centroid, second[i].Centroid)
	}
}

func TestEngine_Cluster_Errors(t *testing.T) {
	e := clusterEngine(t)
	_, err := e.Cluster(context.Background(), "pts", 5)
	assert.True(t, errors.Is(err, vector.ErrInsufficientData))
	_, err = e.Cluster(context.Background(), "nope", 1)
	assert.True(t, errors.Is(err, vector.ErrIndexNotFound))
}
