// Package vault orchestrates the add/update/delete document lifecycle,
// binding the chunker, QR rasterizer, video muxer, embedder, and vector
// index into one atomic operation per document.
package vault

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/Aman-CERP/qrvault/internal/async"
	"github.com/Aman-CERP/qrvault/internal/chunk"
	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
	"github.com/Aman-CERP/qrvault/internal/embed"
	"github.com/Aman-CERP/qrvault/internal/qr"
	"github.com/Aman-CERP/qrvault/internal/store"
	"github.com/Aman-CERP/qrvault/internal/video"
)

// Vault drives the encode side of the pipeline: text in, (MP4, index
// entries) out, as one atomic AddDocument operation.
type Vault struct {
	chunker     *chunk.SlidingWindowChunker
	chunkCfg    chunk.Config
	qrCfg       qr.Config
	muxCfg      video.MuxConfig
	embedder    embed.Embedder
	db          store.VectorDatabase
	parallelism int
	scratchBase string
	ffprobePath string
	logger      *slog.Logger
}

// Option configures a Vault.
type Option func(*Vault)

// WithParallelism bounds the per-chunk rasterize+embed fan-out.
func WithParallelism(n int) Option {
	return func(v *Vault) {
		if n > 0 {
			v.parallelism = n
		}
	}
}

// WithScratchBaseDir sets the parent directory for per-encode scratch
// directories (default: os.TempDir()).
func WithScratchBaseDir(dir string) Option {
	return func(v *Vault) { v.scratchBase = dir }
}

// WithFFprobePath overrides the ffprobe binary Stats probes with
// (default: "ffprobe", resolved via PATH).
func WithFFprobePath(path string) Option {
	return func(v *Vault) {
		if path != "" {
			v.ffprobePath = path
		}
	}
}

// WithLogger sets the structured logger used for progress traces (batch
// adds log each document at debug level).
func WithLogger(logger *slog.Logger) Option {
	return func(v *Vault) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New constructs a Vault. chunkCfg, qrCfg, and muxCfg must already be
// validated by internal/config before reaching here.
func New(chunkCfg chunk.Config, qrCfg qr.Config, muxCfg video.MuxConfig, embedder embed.Embedder, db store.VectorDatabase, opts ...Option) (*Vault, error) {
	chunker, err := chunk.New(chunkCfg)
	if err != nil {
		return nil, err
	}

	v := &Vault{
		chunker:     chunker,
		chunkCfg:    chunkCfg,
		qrCfg:       qrCfg,
		muxCfg:      muxCfg,
		embedder:    embedder,
		db:          db,
		parallelism: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// chunkResult is one chunk's rasterize+embed fan-out output, reassembled
// by chunk index regardless of completion order.
type chunkResult struct {
	entry store.IndexEntry
}

// AddDocument runs the full chunk → rasterize+embed → mux → index
// pipeline for one document. Mux always precedes index upsert, so a
// failure partway through never leaves index entries pointing at frames
// that were never written — the reverse (an MP4 with no index) is
// recoverable by re-adding, since chunking is deterministic.
//
// Re-adding an existing documentID replaces its entries rather than
// doubling them: any existing entries are deleted before the new ones
// are inserted, even though VectorDatabase itself only promises append
// semantics.
func (v *Vault) AddDocument(ctx context.Context, documentID, text, videoPath string) error {
	chunks, err := v.chunker.Chunk(ctx, text)
	if err != nil {
		return err
	}

	// Fail fast before any scratch work if a chunk cannot fit a single QR
	// symbol at the configured ECL.
	for _, c := range chunks {
		if !qr.FitsSingleSymbol(c.Text, v.qrCfg) {
			return vaulterrors.PayloadTooLarge(
				"chunk exceeds single QR symbol capacity at the configured error correction level", nil).
				WithDetail("document_id", documentID).
				WithDetail("chunk_index", strconv.Itoa(c.Index))
		}
	}

	scratchDir, cleanup, err := video.NewScratchDir(v.scratchBase)
	if err != nil {
		return err
	}
	defer cleanup()

	// Rasterize and embed every chunk in a bounded parallel fan-out.
	results, err := async.Run(ctx, len(chunks), v.parallelism, func(ctx context.Context, i int) (chunkResult, error) {
		c := chunks[i]

		png, err := qr.Rasterize(c.Text, v.qrCfg)
		if err != nil {
			return chunkResult{}, err
		}
		if err := writeFrameFile(video.FramePath(scratchDir, c.Index, len(chunks)), png); err != nil {
			return chunkResult{}, err
		}

		vec, err := v.embedder.Embed(ctx, c.Text)
		if err != nil {
			return chunkResult{}, vaulterrors.EmbedderError("failed to embed chunk", err).
				WithDetail("document_id", documentID).
				WithDetail("chunk_index", strconv.Itoa(c.Index))
		}

		return chunkResult{entry: store.IndexEntry{
			ChunkText:   c.Text,
			Embedding:   vec,
			FrameNumber: c.Index,
			DocumentID:  documentID,
		}}, nil
	})
	if err != nil {
		return err
	}

	entries := make([]store.IndexEntry, len(results))
	for i, r := range results {
		entries[i] = r.entry
	}
	// video_fps rides on the first index entry's metadata so the
	// retriever's timestamp-seek fallback can recover the rate the
	// artifact was actually muxed at.
	if len(entries) > 0 {
		entries[0].Metadata = map[string]string{"video_fps": strconv.Itoa(v.muxCfg.FPS)}
	}

	// Mux the scratch frames into the artifact.
	if err := video.Mux(ctx, scratchDir, len(chunks), videoPath, v.muxCfg); err != nil {
		return err
	}

	// Index last: delete-before-insert enforces true upsert semantics.
	if err := v.db.Delete(ctx, documentID); err != nil && err != store.ErrUnsupported {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	if err := v.db.Upsert(ctx, entries); err != nil {
		return err
	}

	return nil
}

// UpdateDocument rewrites a document as one atomic operation — old
// entries deleted, MP4 rebuilt, new entries inserted — rather than
// leaving it as a two-call pattern the caller must sequence correctly.
func (v *Vault) UpdateDocument(ctx context.Context, documentID, text, videoPath string) error {
	return v.AddDocument(ctx, documentID, text, videoPath)
}

// DeleteDocument removes a document's index entries. The MP4 file itself
// is the caller's to remove: the vault has no record of which path a
// document's artifact lives at beyond what the caller passes to
// AddDocument.
func (v *Vault) DeleteDocument(ctx context.Context, documentID string) error {
	if err := v.db.Delete(ctx, documentID); err != nil && err != store.ErrUnsupported {
		return err
	}
	return nil
}

func writeFrameFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return vaulterrors.IOError("failed to write scratch frame file", err).
			WithDetail("path", path)
	}
	return nil
}

