// Package embed defines the Embedder contract and ships a
// dependency-free default implementation, an HTTP-backed client, and a
// caching decorator that layers over any inner Embedder.
package embed

import (
	"context"
	"math"
)

// Embedder turns text into a fixed-width vector, with enough
// introspection for the vector index to validate dimension uniformity
// across everything it stores.
type Embedder interface {
	// Embed generates the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding width. Fixed per embedder
	// instance; every vector Embed returns has this width.
	Dimensions() int

	// ModelName returns a human-readable model identifier, used in cache
	// keys and CLI introspection.
	ModelName() string

	// Available reports whether the embedder is ready to serve requests.
	Available(ctx context.Context) bool

	// Close releases any held resources (HTTP connections, etc).
	Close() error
}

// normalizeVector normalizes a vector to unit length, matching cosine
// similarity's usual pre-normalization convention. Zero vectors are
// returned unchanged; internal/store's cosine computation handles the
// zero-magnitude case itself regardless.
func normalizeVector(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	if sumSquares == 0 {
		return v
	}
	mag := math.Sqrt(sumSquares)
	out := make([]float32, len(v))
	for i, val := range v {
		out[i] = float32(float64(val) / mag)
	}
	return out
}
