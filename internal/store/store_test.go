package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity_IdenticalVectorsIsOne(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-6)
}

func TestCosineSimilarity_ZeroVectorIsZero(t *testing.T) {
	assert.Equal(t, float32(0), CosineSimilarity([]float32{0, 0, 0}, []float32{1, 2, 3}))
	assert.Equal(t, float32(0), CosineSimilarity(nil, nil))
}

func TestCosineSimilarity_OrthogonalIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
}

func TestCosineSimilarity_MismatchedLengthIsZero(t *testing.T) {
	assert.Equal(t, float32(0), CosineSimilarity([]float32{1, 2}, []float32{1, 2, 3}))
}

func runBackendContract(t *testing.T, newStore func() VectorDatabase) {
	t.Helper()
	ctx := context.Background()
	s := newStore()

	// Empty store search returns empty, not an error.
	results, err := s.Search(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// k=0 returns empty.
	entries := []IndexEntry{
		{ChunkText: "alpha", Embedding: []float32{1, 0, 0}, FrameNumber: 0, DocumentID: "doc-1"},
		{ChunkText: "beta", Embedding: []float32{0, 1, 0}, FrameNumber: 1, DocumentID: "doc-1"},
		{ChunkText: "gamma", Embedding: []float32{0, 0, 1}, FrameNumber: 2, DocumentID: "doc-2"},
	}
	require.NoError(t, s.Upsert(ctx, entries))

	results, err = s.Search(ctx, []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Top-1 nearest to [1,0,0] should be "alpha".
	results, err = s.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "alpha", results[0].ChunkText)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)

	// Top-k monotonicity: k=2 is a superset (prefix) of k=1.
	results2, err := s.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results2, 2)
	assert.Equal(t, results[0], results2[0])

	// Delete removes only the named document's entries.
	require.NoError(t, s.Delete(ctx, "doc-1"))
	desc, err := s.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, desc.EntryCount)

	require.NoError(t, s.Clear(ctx))
	desc, err = s.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, desc.EntryCount)
}

func TestMemoryStore_SatisfiesBackendContract(t *testing.T) {
	runBackendContract(t, func() VectorDatabase { return NewMemoryStore() })
}

func TestFileStore_SatisfiesBackendContract(t *testing.T) {
	dir := t.TempDir()
	runBackendContract(t, func() VectorDatabase {
		s, err := NewFileStore(filepath.Join(dir, "index.gob"))
		require.NoError(t, err)
		return s
	})
}

func TestFileStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.gob")

	s1, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Upsert(ctx, []IndexEntry{
		{ChunkText: "hello", Embedding: []float32{1, 0}, FrameNumber: 0, DocumentID: "d1"},
	}))

	s2, err := NewFileStore(path)
	require.NoError(t, err)
	desc, err := s2.Describe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, desc.EntryCount)
}

func TestMemoryStore_DeterministicTieBreak(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Upsert(ctx, []IndexEntry{
		{ChunkText: "a", Embedding: []float32{1, 0}, FrameNumber: 0, DocumentID: "d"},
		{ChunkText: "b", Embedding: []float32{1, 0}, FrameNumber: 1, DocumentID: "d"},
	}))

	r1, err := s.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	r2, err := s.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
