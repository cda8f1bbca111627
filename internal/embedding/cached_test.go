package embedding

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/semindex/internal/models"
)

type countingEmbedder struct {
	calls atomic.Int32
}

func (c *countingEmbedder) Embed(_ context.Context, content string, _ models.ContentType) ([]float32, error) {
	c.calls.Add(1)
	return []float32{float32(len(content)), 1}, nil
}

func (c *countingEmbedder) Dimensions() int { return 2 }
func (c *countingEmbedder) Close() error    { return nil }

func TestCachedEmbedder(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachedEmbedder(inner, 10)
	ctx := context.Background()

	v1, err := e.Embed(ctx, "abc", models.ContentTypeText)
	require.NoError(t, err)
	v1[0] = 99 // caller mutation must not leak into the cache
	v2, err := e.Embed(ctx, "abc", models.ContentTypeText)
	require.NoError(t, err)
	assert.Equal(t, float32(3), v2[0])
	assert.Equal(t, int32(1), inner.calls.Load())

	// same content, different type is a separate entry
	_, err = e.Embed(ctx, "abc", models.ContentTypeDocument)
	require.NoError(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Equal(t, 2, e.Dimensions())
}

func TestNewCachedEmbedder_ZeroCapacity(t *testing.T) {
	inner := &countingEmbedder{}
	assert.Same(t, Embedder(inner), NewCachedEmbedder(inner, 0))
}

func TestCachedEmbedder_EvictsLeastRecentlyUsed(t *testing.T) {
	inner := &countingEmbedder{}
	e := NewCachedEmbedder(inner, 2).(*CachedEmbedder)
	ctx := context.Background()

	for _, content := range []string{"a", "b", "a", "c"} {
		_, err := e.Embed(ctx, content, models.ContentTypeText)
		require.NoError(t, err)
	}
	// "b" was least recently used when "c" arrived
	assert.Equal(t, CacheStats{Entries: 2, Hits: 1, Misses: 3}, e.Stats())

	_, err := e.Embed(ctx, "a", models.ContentTypeText)
	require.NoError(t, err)
	_, err = e.Embed(ctx, "b", models.ContentTypeText)
	require.NoError(t, err)
	assert.Equal(t, int32(4), inner.calls.Load())
}
