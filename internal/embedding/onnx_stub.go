//go:build !cgo

package embedding

import (
	"context"
	"errors"

	"github.com/hyperjump/semindex/internal/models"
)

var errNoONNX = errors.New("ONNX embedder requires cgo; build with CGO_ENABLED=1 and the onnxruntime library")

// ONNXEmbedder is unavailable without cgo; NewONNXEmbedder always fails.
type ONNXEmbedder struct{}

// NewONNXEmbedder reports that ONNX is not compiled in.
func NewONNXEmbedder(_ string, _, _ int) (*ONNXEmbedder, error) {
	return nil, errNoONNX
}

func (e *ONNXEmbedder) Embed(_ context.Context, _ string, _ models.ContentType) ([]float32, error) {
	return nil, errNoONNX
}

func (e *ONNXEmbedder) Dimensions() int { return 0 }

func (e *ONNXEmbedder) Close() error { return nil }
