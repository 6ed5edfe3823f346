package retrieve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/qrvault/internal/embed"
	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
	"github.com/Aman-CERP/qrvault/internal/qr"
	"github.com/Aman-CERP/qrvault/internal/store"
	"github.com/Aman-CERP/qrvault/internal/video"
)

// fakeArtifact writes a placeholder file standing in for an MP4 and
// seeds db with one entry per chunk. The returned extract func serves
// real QR PNGs per frame number, so decode genuinely runs.
func fakeArtifact(t *testing.T, db store.VectorDatabase, embedder embed.Embedder, documentID string, chunks []string) (string, extractFunc) {
	t.Helper()

	path := filepath.Join(t.TempDir(), documentID+".mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o644))

	entries := make([]store.IndexEntry, len(chunks))
	for i, text := range chunks {
		vec, err := embedder.Embed(context.Background(), text)
		require.NoError(t, err)
		entries[i] = store.IndexEntry{
			ChunkText:   text,
			Embedding:   vec,
			FrameNumber: i,
			DocumentID:  documentID,
		}
	}
	require.NoError(t, db.Upsert(context.Background(), entries))

	extract := func(_ context.Context, videoPath string, frameNumber int, _ video.ExtractConfig) ([]byte, error) {
		if videoPath != path {
			return nil, errors.New("unknown artifact")
		}
		if frameNumber < 0 || frameNumber >= len(chunks) {
			return nil, errors.New("frame out of range")
		}
		return qr.Rasterize(chunks[frameNumber], qr.DefaultConfig())
	}
	return path, extract
}

func TestSearch_ReturnsChunksInSimilarityOrder(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()
	chunks := []string{
		"the quick brown fox jumps over the lazy dog",
		"an entirely unrelated passage about databases",
		"quick foxes and lazy dogs, revisited",
	}
	path, extract := fakeArtifact(t, db, embedder, "doc", chunks)

	r := New(embedder, db)
	r.extract = extract

	results, err := r.Search(context.Background(), chunks[0], path, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// A query identical to an indexed chunk ranks that chunk first,
	// with similarity bounded by [-1, 1].
	assert.Equal(t, chunks[0], results[0].ChunkText)
	for i, res := range results {
		assert.GreaterOrEqual(t, res.Similarity, float32(-1))
		assert.LessOrEqual(t, res.Similarity, float32(1))
		if i > 0 {
			assert.LessOrEqual(t, res.Similarity, results[i-1].Similarity)
		}
	}
}

func TestSearch_TopKPrefixMonotonicity(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()
	chunks := []string{"alpha beta gamma", "delta epsilon zeta", "eta theta iota", "kappa lambda mu"}
	path, extract := fakeArtifact(t, db, embedder, "doc", chunks)

	r := New(embedder, db)
	r.extract = extract

	small, err := r.Search(context.Background(), "beta gamma", path, 2)
	require.NoError(t, err)
	large, err := r.Search(context.Background(), "beta gamma", path, 4)
	require.NoError(t, err)

	require.Len(t, small, 2)
	require.Len(t, large, 4)
	for i := range small {
		assert.Equal(t, small[i].ChunkText, large[i].ChunkText)
	}
}

func TestSearch_CorruptedFrameIsSkippedNotFatal(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()
	chunks := []string{"first chunk of text", "second chunk of text", "third chunk of text"}
	path, extract := fakeArtifact(t, db, embedder, "doc", chunks)

	r := New(embedder, db)
	r.extract = func(ctx context.Context, videoPath string, frameNumber int, cfg video.ExtractConfig) ([]byte, error) {
		if frameNumber == 1 {
			return []byte("random bytes, not a png"), nil
		}
		return extract(ctx, videoPath, frameNumber, cfg)
	}

	results, err := r.Search(context.Background(), "chunk of text", path, 3)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	for _, res := range results {
		assert.NotEqual(t, 1, res.FrameNumber)
	}
}

func TestSearch_CacheTransparency(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()
	chunks := []string{"one fish", "two fish", "red fish"}
	path, extract := fakeArtifact(t, db, embedder, "doc", chunks)

	extractCalls := 0
	r := New(embedder, db)
	r.extract = func(ctx context.Context, videoPath string, frameNumber int, cfg video.ExtractConfig) ([]byte, error) {
		extractCalls++
		return extract(ctx, videoPath, frameNumber, cfg)
	}

	cold, err := r.Search(context.Background(), "red fish", path, 3)
	require.NoError(t, err)
	callsAfterCold := extractCalls

	warm, err := r.Search(context.Background(), "red fish", path, 3)
	require.NoError(t, err)

	// Identical results warm or cold, and the warm pass hit the cache
	// instead of re-extracting.
	assert.Equal(t, cold, warm)
	assert.Equal(t, callsAfterCold, extractCalls)
	assert.Equal(t, len(chunks), r.CacheStats().Size)
}

func TestSearch_VideoNotFoundBeforeAnyWork(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()

	r := New(embedder, db)
	_, err := r.Search(context.Background(), "anything", "/no/such/artifact.mp4", 3)
	require.Error(t, err)
	assert.Equal(t, vaulterrors.ErrCodeVideoNotFound, vaulterrors.GetCode(err))
}

func TestSearch_ZeroKAndEmptyStoreReturnEmpty(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()

	path := filepath.Join(t.TempDir(), "empty.mp4")
	require.NoError(t, os.WriteFile(path, []byte("mp4"), 0o644))

	r := New(embedder, db)

	results, err := r.Search(context.Background(), "query", path, 0)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = r.Search(context.Background(), "query", path, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchMultiple_MergesAndSortsAcrossArtifacts(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()

	pathA, extractA := fakeArtifact(t, db, embedder, "doc-a", []string{"shared phrase here", "filler text a"})
	pathB, extractB := fakeArtifact(t, db, embedder, "doc-b", []string{"shared phrase here too", "filler text b"})

	r := New(embedder, db)
	r.extract = func(ctx context.Context, videoPath string, frameNumber int, cfg video.ExtractConfig) ([]byte, error) {
		if videoPath == pathA {
			return extractA(ctx, videoPath, frameNumber, cfg)
		}
		return extractB(ctx, videoPath, frameNumber, cfg)
	}

	results, err := r.SearchMultiple(context.Background(), "shared phrase", []string{pathA, pathB}, 3)
	require.NoError(t, err)

	// Each path contributes up to k hits, merged by descending
	// similarity.
	assert.LessOrEqual(t, len(results), 6)
	assert.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Similarity, results[i-1].Similarity)
	}
}

func TestClearCache(t *testing.T) {
	embedder := embed.NewStaticEmbedder()
	db := store.NewMemoryStore()
	chunks := []string{"cached chunk"}
	path, extract := fakeArtifact(t, db, embedder, "doc", chunks)

	r := New(embedder, db, WithCacheSize(10))
	r.extract = extract

	_, err := r.Search(context.Background(), "cached chunk", path, 1)
	require.NoError(t, err)
	require.Equal(t, 1, r.CacheStats().Size)
	assert.Equal(t, 10, r.CacheStats().Capacity)

	r.ClearCache()
	assert.Equal(t, 0, r.CacheStats().Size)
}
