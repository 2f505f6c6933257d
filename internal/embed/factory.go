package embed

import (
	"fmt"
	"log/slog"
	"time"
)

// Options selects and configures an embedding provider.
type Options struct {
	Provider   string
	Endpoint   string
	Model      string
	Dimensions int
	Timeout    time.Duration
	CacheSize  int
	Logger     *slog.Logger
}

// New builds an embedder from configuration. Text embeddings are
// always wrapped in an LRU cache.
func New(opts Options) (Embedder, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	var inner Embedder
	switch opts.Provider {
	case "static":
		inner = NewStaticEmbedder(opts.Dimensions)
	case "http", "":
		inner = NewHTTPEmbedder(HTTPConfig{
			Endpoint:   opts.Endpoint,
			Model:      opts.Model,
			Dimensions: opts.Dimensions,
			Timeout:    opts.Timeout,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", opts.Provider)
	}

	opts.Logger.Debug("embedder_created",
		slog.String("provider", opts.Provider),
		slog.String("model", inner.ModelName()),
		slog.Int("dimensions", inner.Dimensions()))

	return NewCachedEmbedder(inner, opts.CacheSize)
}
