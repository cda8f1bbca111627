package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/internal/vector"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	e := NewMockEmbedder(64)
	ctx := context.Background()
	a, err := e.Embed(ctx, "Pricing plans for teams", models.ContentTypeText)
	require.NoError(t, err)
	b, err := e.Embed(ctx, "pricing PLANS, for teams!", models.ContentTypeText)
	require.NoError(t, err)
	assert.Len(t, a, 64)
	assert.Equal(t, a, b, "case and punctuation should not change the vector")

	sim, err := vector.Cosine(a, a)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sim, 1e-6)
}

func TestMockEmbedder_SharedWordsAreCloser(t *testing.T) {
	e := NewMockEmbedder(256)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "monthly pricing", models.ContentTypeText)
	near, _ := e.Embed(ctx, "pricing per month and monthly billing", models.ContentTypeText)
	far, _ := e.Embed(ctx, "onboarding checklist", models.ContentTypeText)
	simNear, _ := vector.Cosine(q, near)
	simFar, _ := vector.Cosine(q, far)
	assert.Greater(t, simNear, simFar)
}

func TestMockEmbedder_EmptyContent(t *testing.T) {
	e := NewMockEmbedder(8)
	v, err := e.Embed(context.Background(), "", models.ContentTypeImage)
	require.NoError(t, err)
	var nonZero int
	for _, x := range v {
		if x != 0 {
			nonZero++
		}
	}
	assert.Equal(t, 1, nonZero)
}

func TestMockEmbedder_DefaultDimensionsAndCancel(t *testing.T) {
	e := NewMockEmbedder(0)
	assert.Equal(t, 384, e.Dimensions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Embed(ctx, "x", models.ContentTypeText)
	assert.ErrorIs(t, err, context.Canceled)
}
