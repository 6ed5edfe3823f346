package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_SatisfiesBackendContract(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	runBackendContract(t, func() VectorDatabase { return s })
}

func TestEncodeDecodeEmbedding_RoundTrips(t *testing.T) {
	v := []float32{0.1, -0.2, 3.5, 0}
	decoded := decodeEmbedding(encodeEmbedding(v))
	require.Equal(t, v, decoded)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	s1, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s1.Upsert(ctx, []IndexEntry{
		{ChunkText: "hello", Embedding: []float32{1, 0}, FrameNumber: 0, DocumentID: "d1"},
	}))
	require.NoError(t, s1.Close())

	s2, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	desc, err := s2.Describe(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, desc.EntryCount)
}
