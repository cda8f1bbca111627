package embedding

import (
	"context"

	"github.com/hyperjump/semindex/internal/models"
	"github.com/hyperjump/semindex/pkg/utils"
)

// MockEmbedder is a deterministic embedder for tests and local runs. Each word is
// hashed into a bucket (a hashed bag of words), so texts sharing words land close
// together. It is not a semantic model.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns a unit-length bag-of-words vector. Any content type is accepted; for
// media the content is usually a path or caption.
func (e *MockEmbedder) Embed(ctx context.Context, content string, contentType models.ContentType) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	for _, w := range Words(content) {
		emb[int(tokenHash(w)%uint32(e.dimensions))]++
	}
	if isZero(emb) {
		// empty or punctuation-only content still gets a stable direction
		emb[int(tokenHash(string(contentType)+content)%uint32(e.dimensions))] = 1
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
