// Package embedding turns content into vectors via pluggable providers and caching.
package embedding

import (
	"context"
	"errors"

	"github.com/hyperjump/semindex/internal/models"
)

// ErrUnsupportedContentType is returned by providers that cannot embed a content type.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// Embedder produces vector embeddings for content. Implementations must be safe for
// concurrent use and should honour ctx cancellation on slow calls.
type Embedder interface {
	Embed(ctx context.Context, content string, contentType models.ContentType) ([]float32, error)
	Dimensions() int
	Close() error
}

// textOnly reports whether a text-model provider can embed contentType.
func textOnly(contentType models.ContentType) bool {
	return contentType == "" || contentType == models.ContentTypeText || contentType == models.ContentTypeDocument
}
