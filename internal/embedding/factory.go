package embedding

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/semindex/internal/config"
)

// New builds the configured provider wrapped in an LRU cache. An ONNX model that
// cannot be loaded falls back to MockEmbedder with a warning, so a server without
// the runtime still starts.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var inner Embedder
	switch cfg.Provider {
	case config.ProviderMock, "":
		inner = NewMockEmbedder(cfg.Dimensions)
	case config.ProviderONNX:
		onnxEmbedder, err := NewONNXEmbedder(cfg.ModelPath, cfg.Dimensions, cfg.MaxTokens)
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using mock embedder", zap.Error(err))
			inner = NewMockEmbedder(cfg.Dimensions)
		} else {
			inner = onnxEmbedder
		}
	case config.ProviderOpenAI:
		openaiEmbedder, err := NewOpenAIEmbedder(OpenAIConfig{
			APIKey:     cfg.OpenAIAPIKey,
			Model:      cfg.OpenAIModel,
			Dimensions: cfg.Dimensions,
			MaxRetries: cfg.MaxRetries,
			Logger:     logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create openai embedder: %w", err)
		}
		inner = openaiEmbedder
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s (supported: mock, onnx, openai)", cfg.Provider)
	}
	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
