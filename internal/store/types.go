// Package store implements the vector index: a pluggable VectorDatabase
// contract over (embedding, frame_number, document_id, chunk_text,
// metadata) tuples with top-k cosine search, served by interchangeable
// memory, file, hnsw, sqlite, and qdrant backends.
package store

import (
	"context"
	"errors"
	"math"
	"sort"
)

// ErrUnsupported is returned by Delete/Clear on backends that do not
// support that optional capability.
var ErrUnsupported = errors.New("store: operation not supported by this backend")

// IndexEntry is the unit the index persists. Similarity is populated
// only on entries returned from Search.
type IndexEntry struct {
	ChunkText    string
	Embedding    []float32
	FrameNumber  int
	DocumentID   string
	Metadata     map[string]string
	Similarity   float32
}

// Description reports backend introspection for `qrvault info`.
type Description struct {
	Backend    string
	Dimensions int
	EntryCount int
}

// VectorDatabase is the index contract: upsert, search, and two
// optional capabilities (delete, clear). Every backend implements the
// same operations identically; callers never branch on concrete type.
type VectorDatabase interface {
	// Upsert appends entries. Append semantics are the baseline
	// guarantee; a backend may additionally deduplicate by
	// (document_id, frame_number), but callers (internal/vault) never
	// rely on that — the vault layer enforces true upsert itself via
	// delete-before-insert.
	Upsert(ctx context.Context, entries []IndexEntry) error

	// Search returns up to k entries ordered by descending cosine
	// similarity. k=0 and an empty store both return an empty slice,
	// never an error.
	Search(ctx context.Context, query []float32, k int) ([]IndexEntry, error)

	// Delete removes all entries for documentID. Optional capability;
	// backends that cannot support it return ErrUnsupported.
	Delete(ctx context.Context, documentID string) error

	// Clear removes every entry. Optional capability.
	Clear(ctx context.Context) error

	// Describe reports backend introspection.
	Describe(ctx context.Context) (Description, error)
}

// CosineSimilarity computes dot(a,b)/(||a||*||b||), defined as 0 when
// either vector has zero magnitude.
// Vectors of mismatched length are treated as similarity 0 rather than
// panicking, since a caller comparing across differently-dimensioned
// embedders is a configuration bug, not a crash.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(magA) * math.Sqrt(magB)))
}

// topK selects the k entries with highest Similarity from candidates,
// sorted descending, breaking ties by original order so each backend is
// deterministic.
func topK(candidates []IndexEntry, k int) []IndexEntry {
	if k <= 0 || len(candidates) == 0 {
		return []IndexEntry{}
	}

	sorted := make([]IndexEntry, len(candidates))
	copy(sorted, candidates)

	// Stable sort preserves insertion order for tied similarities,
	// giving each backend a deterministic (if arbitrary) tie-break.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Similarity > sorted[j].Similarity
	})

	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}
