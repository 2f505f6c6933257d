// Package embed provides the embedding collaborator boundary: text and
// images map into one shared similarity space of fixed dimension D. The
// model itself is a black box behind the Embedder interface.
package embed

import (
	"context"
	"math"
	"time"
)

// Common embedding constants.
const (
	// DefaultDimensions matches CLIP ViT-B/32 output.
	DefaultDimensions = 512

	// DefaultTimeout is the per-request timeout for remote embedders.
	DefaultTimeout = 60 * time.Second

	// DefaultCacheSize is the default number of cached text embeddings.
	DefaultCacheSize = 1000
)

// Embedder generates vector embeddings for text and image files.
// Implementations never mix dimensions: every returned vector has
// exactly Dimensions() entries.
type Embedder interface {
	// EmbedText generates an embedding for a text query.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedImage generates an embedding for the image file at path.
	EmbedImage(ctx context.Context, path string) ([]float32, error)

	// Dimensions returns the embedding dimension D.
	Dimensions() int

	// ModelName returns the model identifier.
	ModelName() string

	// Available checks if the embedder is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// normalizeVector normalizes a vector to unit length.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}

	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}

	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}
