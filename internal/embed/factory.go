package embed

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookmind/bookmind/internal/config"
)

// NewEmbedder creates an embedder from configuration, with automatic
// fallback to the static embedder when Ollama is unavailable.
//
// Query embedding caching is always enabled; the cache also serves repeated
// book texts during a full reindex.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingsConfig) (Embedder, error) {
	var inner Embedder

	switch cfg.Provider {
	case "static":
		inner = NewStaticEmbedder()

	default: // "ollama"
		ollama, err := NewOllamaEmbedder(ctx, OllamaConfig{
			Host:       cfg.OllamaHost,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
			MaxRetries: cfg.MaxRetries,
		})
		if err != nil {
			slog.Warn("ollama unavailable, falling back to static embeddings",
				slog.String("host", cfg.OllamaHost),
				slog.String("model", cfg.Model),
				slog.String("error", err.Error()))
			inner = NewStaticEmbedder()
		} else {
			inner = ollama
		}
	}

	slog.Info("embedder ready",
		slog.String("model", inner.ModelName()),
		slog.Int("dimensions", inner.Dimensions()))

	return NewCachedEmbedder(inner, cfg.CacheSize), nil
}
