package chunk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsOverlapGreaterOrEqualSize(t *testing.T) {
	_, err := New(Config{ChunkSize: 10, ChunkOverlap: 10})
	require.Error(t, err)

	_, err = New(Config{ChunkSize: 10, ChunkOverlap: 20})
	require.Error(t, err)
}

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	_, err := New(Config{ChunkSize: 0, ChunkOverlap: 0})
	require.Error(t, err)
}

func TestChunk_SmallRoundTrip(t *testing.T) {
	c, err := New(Config{ChunkSize: 10, ChunkOverlap: 2})
	require.NoError(t, err)

	text := "abcdefghijklmnopqr" // 18 chars
	chunks, err := c.Chunk(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, 10, len(chunks[0].Text))

	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, 10, len(chunks[1].Text))

	assert.Equal(t, 2, chunks[2].Index)
	assert.Equal(t, 2, len(chunks[2].Text))

	assert.Equal(t, text, Reassemble(chunks, 2))
}

func TestChunk_EmptyInputYieldsZeroChunks(t *testing.T) {
	c, err := New(Config{ChunkSize: 10, ChunkOverlap: 2})
	require.NoError(t, err)

	chunks, err := c.Chunk(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunk_TextShorterThanWindowYieldsOneChunk(t *testing.T) {
	c, err := New(Config{ChunkSize: 500, ChunkOverlap: 50})
	require.NoError(t, err)

	chunks, err := c.Chunk(context.Background(), "short text")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "short text", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].StartOffset)
	assert.Equal(t, 10, chunks[0].EndOffset)
}

func TestChunk_FinalChunkNotPadded(t *testing.T) {
	c, err := New(Config{ChunkSize: 10, ChunkOverlap: 0})
	require.NoError(t, err)

	text := strings.Repeat("a", 25)
	chunks, err := c.Chunk(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, 10, len(chunks[0].Text))
	assert.Equal(t, 10, len(chunks[1].Text))
	assert.Equal(t, 5, len(chunks[2].Text))
}

func TestChunk_IndexEqualsFrameNumberOrdering(t *testing.T) {
	c, err := New(Config{ChunkSize: 4, ChunkOverlap: 1})
	require.NoError(t, err)

	chunks, err := c.Chunk(context.Background(), "0123456789")
	require.NoError(t, err)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.Index)
	}
}

func TestChunk_RespectsContextCancellation(t *testing.T) {
	c, err := New(Config{ChunkSize: 10, ChunkOverlap: 2})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Chunk(ctx, "some text")
	require.Error(t, err)
}

func TestReassemble_EmptyChunksYieldsEmptyString(t *testing.T) {
	assert.Equal(t, "", Reassemble(nil, 2))
}
