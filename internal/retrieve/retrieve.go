// Package retrieve answers queries: embed the query, consult the vector
// index, pull the named frames out of the MP4, decode their QR payloads,
// and return reconstructed text with similarity scores — with a bounded
// LRU cache in front of the costly extract+decode step.
package retrieve

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"strconv"

	"github.com/Aman-CERP/qrvault/internal/embed"
	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
	"github.com/Aman-CERP/qrvault/internal/qr"
	"github.com/Aman-CERP/qrvault/internal/store"
	"github.com/Aman-CERP/qrvault/internal/video"
)

// SearchResult is one query hit: the stored chunk text (authoritative
// over the decoded frame payload), its cosine similarity to the query,
// and the frame/document coordinates it came from.
type SearchResult struct {
	ChunkText   string
	Similarity  float32
	FrameNumber int
	DocumentID  string
	Metadata    map[string]string
}

// extractFunc extracts one frame as PNG bytes; swapped out in tests so
// retrieval logic can be exercised without an ffmpeg binary.
type extractFunc func(ctx context.Context, videoPath string, frameNumber int, cfg video.ExtractConfig) ([]byte, error)

// Retriever answers semantic queries against (MP4, index) artifact
// pairs. The frame cache is per-instance, not global; concurrent Search
// calls on one Retriever are safe because the LRU is internally
// synchronized and everything else is read-only after New.
type Retriever struct {
	embedder   embed.Embedder
	db         store.VectorDatabase
	extractCfg video.ExtractConfig
	cache      *frameCache
	verbose    bool
	logger     *slog.Logger
	extract    extractFunc
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithCacheSize bounds the decoded-frame LRU (default 50).
func WithCacheSize(n int) Option {
	return func(r *Retriever) { r.cache = newFrameCache(n) }
}

// WithExtractConfig overrides the ffmpeg path and the video_fps used for
// timestamp-seek fallback.
func WithExtractConfig(cfg video.ExtractConfig) Option {
	return func(r *Retriever) { r.extractCfg = cfg }
}

// WithVerbose enables warning log lines for per-frame failures that are
// otherwise absorbed silently.
func WithVerbose(verbose bool) Option {
	return func(r *Retriever) { r.verbose = verbose }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New constructs a Retriever over an embedder and a vector index.
func New(embedder embed.Embedder, db store.VectorDatabase, opts ...Option) *Retriever {
	r := &Retriever{
		embedder:   embedder,
		db:         db,
		extractCfg: video.DefaultExtractConfig(),
		cache:      newFrameCache(DefaultFrameCacheSize),
		logger:     slog.Default(),
		extract:    video.Extract,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search embeds query, finds the top-k nearest chunks in the index, and
// resolves each hit's text through the frame cache or a fresh
// extract+decode against videoPath. Hits whose frame
// cannot be extracted or decoded are dropped from the results, never an
// error — one bad frame must not break a top-k query. Results stream
// out in descending-similarity hit order.
func (r *Retriever) Search(ctx context.Context, query, videoPath string, k int) ([]SearchResult, error) {
	// Missing artifacts fail up front, before any embed or index work.
	if _, err := os.Stat(videoPath); err != nil {
		return nil, vaulterrors.VideoNotFound("mp4 artifact not found at "+videoPath, err)
	}

	qVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, vaulterrors.EmbedderError("failed to embed query", err)
	}

	hits, err := r.db.Search(ctx, qVec, k)
	if err != nil {
		return nil, vaulterrors.IndexBackendError("index search failed", err)
	}

	results := make([]SearchResult, 0, len(hits))
	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, ok := r.resolveFrame(ctx, videoPath, hit)
		if !ok {
			continue
		}

		// The decoded payload is verified against the stored chunk text;
		// a mismatch is a soft warning, not an error, because the stored
		// chunk text is authoritative.
		if text != hit.ChunkText && r.verbose {
			r.logger.Warn("frame_payload_mismatch",
				slog.String("video_path", videoPath),
				slog.Int("frame_number", hit.FrameNumber),
				slog.String("document_id", hit.DocumentID))
		}

		results = append(results, SearchResult{
			ChunkText:   hit.ChunkText,
			Similarity:  hit.Similarity,
			FrameNumber: hit.FrameNumber,
			DocumentID:  hit.DocumentID,
			Metadata:    hit.Metadata,
		})
	}

	return results, nil
}

// resolveFrame returns the decoded text for one hit, consulting the
// cache first. A cold miss extracts the frame and decodes its QR; on any
// failure the hit is skipped (false) and, if verbose, a
// warning is logged. Successful decodes are cached even if the
// surrounding Search is about to be cancelled, so the work is not
// wasted.
func (r *Retriever) resolveFrame(ctx context.Context, videoPath string, hit store.IndexEntry) (string, bool) {
	if text, ok := r.cache.get(videoPath, hit.FrameNumber); ok {
		return text, true
	}

	cfg := r.extractCfg
	// The encode-time video_fps travels in index entry metadata; when a
	// hit carries it, it overrides the configured default for the
	// timestamp-seek fallback.
	if fps, err := strconv.Atoi(hit.Metadata["video_fps"]); err == nil && fps > 0 {
		cfg.FPS = fps
	}

	png, err := r.extract(ctx, videoPath, hit.FrameNumber, cfg)
	if err != nil {
		r.warnFrame("frame_extract_failed", videoPath, hit.FrameNumber, err)
		return "", false
	}

	text, err := qr.Decode(png)
	if err != nil {
		r.warnFrame("frame_decode_failed", videoPath, hit.FrameNumber, err)
		return "", false
	}

	r.cache.add(videoPath, hit.FrameNumber, text)
	return text, true
}

func (r *Retriever) warnFrame(event, videoPath string, frameNumber int, err error) {
	if !r.verbose {
		return
	}
	r.logger.Warn(event,
		slog.String("video_path", videoPath),
		slog.Int("frame_number", frameNumber),
		slog.String("error", err.Error()))
}

// SearchMultiple runs Search against each path and merges the result
// lists by descending similarity. Each path contributes up to k hits —
// this is deliberately not a single top-k across all paths.
func (r *Retriever) SearchMultiple(ctx context.Context, query string, videoPaths []string, k int) ([]SearchResult, error) {
	var merged []SearchResult
	for _, path := range videoPaths {
		results, err := r.Search(ctx, query, path, k)
		if err != nil {
			return nil, err
		}
		merged = append(merged, results...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Similarity > merged[j].Similarity
	})
	return merged, nil
}

// ClearCache empties the decoded-frame cache.
func (r *Retriever) ClearCache() {
	r.cache.clear()
}

// CacheStats reports the frame cache's {size, capacity}.
func (r *Retriever) CacheStats() CacheStats {
	return r.cache.stats()
}
