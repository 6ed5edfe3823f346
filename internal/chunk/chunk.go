// Package chunk slices a text document into an ordered sequence of
// overlapping byte windows with stable indices.
package chunk

import (
	"context"
	"strconv"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// Chunk is a contiguous substring of the source text. Index is equal to
// its eventual MP4 frame number; this equality is the frame-number
// stability invariant this whole module exists to uphold.
type Chunk struct {
	Text        string
	Index       int
	StartOffset int
	EndOffset   int
}

// Config controls the sliding window. Boundary discipline is bytes of
// the UTF-8 stream, not codepoints; a window may cut inside a multibyte
// rune, and the QR payload carries the raw bytes through unchanged.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// Chunker splits a document into an ordered, stable-indexed chunk sequence.
type Chunker interface {
	Chunk(ctx context.Context, text string) ([]*Chunk, error)
}

// SlidingWindowChunker emits a window of ChunkSize bytes advancing by a
// stride of ChunkSize-ChunkOverlap.
type SlidingWindowChunker struct {
	cfg Config
}

// New constructs a SlidingWindowChunker. ChunkOverlap must be strictly
// less than ChunkSize; a zero or negative stride would loop forever, so
// construction refuses to complete rather than defending against it at
// call time.
func New(cfg Config) (*SlidingWindowChunker, error) {
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, vaulterrors.ConfigError(
			"chunk_overlap must be strictly less than chunk_size", nil).
			WithDetail("chunk_size", strconv.Itoa(cfg.ChunkSize)).
			WithDetail("chunk_overlap", strconv.Itoa(cfg.ChunkOverlap))
	}
	if cfg.ChunkSize <= 0 {
		return nil, vaulterrors.ConfigError("chunk_size must be positive", nil)
	}
	return &SlidingWindowChunker{cfg: cfg}, nil
}

// Chunk implements Chunker. An empty document yields zero chunks; what
// that means for the artifact (a valid, empty MP4) is decided at the
// vault orchestration layer, not here.
func (c *SlidingWindowChunker) Chunk(ctx context.Context, text string) ([]*Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(text) == 0 {
		return nil, nil
	}

	stride := c.cfg.ChunkSize - c.cfg.ChunkOverlap
	var chunks []*Chunk

	for i, idx := 0, 0; i < len(text); i, idx = i+stride, idx+1 {
		end := i + c.cfg.ChunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, &Chunk{
			Text:        text[i:end],
			Index:       idx,
			StartOffset: i,
			EndOffset:   end,
		})
	}

	return chunks, nil
}

// Reassemble concatenates chunks in frame number order and removes the
// overlap region, reproducing the original text. Chunks must be sorted
// by Index and contiguous, as Chunk returns them; Reassemble does not
// sort or check them.
func Reassemble(chunks []*Chunk, overlap int) string {
	if len(chunks) == 0 {
		return ""
	}

	var out []byte
	for i, c := range chunks {
		if i == len(chunks)-1 {
			out = append(out, c.Text...)
			continue
		}
		trimmed := c.Text
		if len(trimmed) > overlap {
			trimmed = trimmed[:len(trimmed)-overlap]
		}
		out = append(out, trimmed...)
	}
	return string(out)
}

