// Package qrvault is the public façade over the encode and retrieve
// halves of the pipeline: it wires a configuration, an embedder, and a
// vector index backend into one handle exposing add/search/stats/delete.
package qrvault

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/Aman-CERP/qrvault/internal/chunk"
	"github.com/Aman-CERP/qrvault/internal/config"
	"github.com/Aman-CERP/qrvault/internal/embed"
	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
	"github.com/Aman-CERP/qrvault/internal/qr"
	"github.com/Aman-CERP/qrvault/internal/retrieve"
	"github.com/Aman-CERP/qrvault/internal/store"
	"github.com/Aman-CERP/qrvault/internal/vault"
	"github.com/Aman-CERP/qrvault/internal/video"
)

// Document is one input to AddDocumentsBatch.
type Document = vault.BatchDocument

// SearchResult re-exports the retriever's result type.
type SearchResult = retrieve.SearchResult

// CacheStats re-exports the retriever's cache observability type.
type CacheStats = retrieve.CacheStats

// Stats re-exports the vault's on-demand document statistics.
type Stats = vault.Stats

// Vault is the combined read/write handle over one (MP4, index) artifact
// family. Construction validates configuration; all later failures are
// operation-scoped.
type Vault struct {
	cfg       *config.Config
	embedder  embed.Embedder
	db        store.VectorDatabase
	ownsDB    bool
	writer    *vault.Vault
	retriever *retrieve.Retriever
	logger    *slog.Logger
}

// Option configures an opened Vault.
type Option func(*openOptions)

type openOptions struct {
	logger      *slog.Logger
	scratchBase string
	db          store.VectorDatabase
}

// WithLogger routes progress traces and absorbed frame warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *openOptions) { o.logger = logger }
}

// WithScratchBaseDir overrides the parent directory for per-encode
// scratch directories.
func WithScratchBaseDir(dir string) Option {
	return func(o *openOptions) { o.scratchBase = dir }
}

// WithVectorDatabase bypasses cfg.Index backend selection and uses db
// directly, for callers that construct their own backend.
func WithVectorDatabase(db store.VectorDatabase) Option {
	return func(o *openOptions) { o.db = db }
}

// Open wires cfg and embedder into a ready Vault. The index backend is
// chosen from cfg.Index.Backend unless WithVectorDatabase supplies one.
func Open(ctx context.Context, cfg *config.Config, embedder embed.Embedder, opts ...Option) (*Vault, error) {
	if err := cfg.Validate(); err != nil {
		return nil, vaulterrors.ConfigError(err.Error(), err)
	}

	o := openOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	db := o.db
	ownsDB := false
	if db == nil {
		var err error
		db, err = openStore(ctx, cfg, embedder)
		if err != nil {
			return nil, err
		}
		ownsDB = true
	}

	chunkCfg := chunk.Config{
		ChunkSize:    cfg.Chunk.ChunkSize,
		ChunkOverlap: cfg.Chunk.ChunkOverlap,
	}
	qrCfg := qr.Config{
		ErrorCorrectionLevel: qr.ErrorCorrectionLevel(cfg.QR.ErrorCorrectionLevel),
		SizePX:               cfg.Video.ResolutionPX,
	}
	muxCfg := video.MuxConfig{
		FFmpegPath:   cfg.Video.FFmpegPath,
		FPS:          cfg.Video.FPS,
		ResolutionPX: cfg.Video.ResolutionPX,
		Codec:        "libx264",
	}

	writer, err := vault.New(chunkCfg, qrCfg, muxCfg, embedder, db,
		vault.WithParallelism(cfg.Runtime.Parallelism),
		vault.WithScratchBaseDir(o.scratchBase),
		vault.WithFFprobePath(cfg.Video.FFprobePath),
		vault.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}

	retriever := retrieve.New(embedder, db,
		retrieve.WithCacheSize(cfg.Runtime.MaxCacheSize),
		retrieve.WithExtractConfig(video.ExtractConfig{
			FFmpegPath: cfg.Video.FFmpegPath,
			FPS:        cfg.Video.FPS,
		}),
		retrieve.WithVerbose(cfg.Runtime.Verbose),
		retrieve.WithLogger(o.logger),
	)

	return &Vault{
		cfg:       cfg,
		embedder:  embedder,
		db:        db,
		ownsDB:    ownsDB,
		writer:    writer,
		retriever: retriever,
		logger:    o.logger,
	}, nil
}

// openStore builds the configured VectorDatabase backend.
func openStore(ctx context.Context, cfg *config.Config, embedder embed.Embedder) (store.VectorDatabase, error) {
	switch cfg.Index.Backend {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "file":
		if cfg.Index.Path == "" {
			return nil, vaulterrors.ConfigError("index.path is required for the file backend", nil)
		}
		return store.NewFileStore(cfg.Index.Path)
	case "hnsw":
		return store.NewHNSWStore(), nil
	case "sqlite":
		if cfg.Index.Path == "" {
			return nil, vaulterrors.ConfigError("index.path is required for the sqlite backend", nil)
		}
		return store.NewSQLiteStore(cfg.Index.Path)
	case "qdrant":
		host, port, err := splitEndpoint(cfg.Index.Endpoint)
		if err != nil {
			return nil, err
		}
		dims := cfg.Index.Dimensions
		if dims == 0 {
			dims = embedder.Dimensions()
		}
		return store.NewQdrantStore(ctx, store.QdrantConfig{
			Host:       host,
			Port:       port,
			Dimensions: dims,
		})
	default:
		return nil, vaulterrors.ConfigError("unknown index backend "+cfg.Index.Backend, nil)
	}
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "localhost", 6334, nil
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return "", 0, vaulterrors.ConfigError("index.endpoint must be host:port", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, vaulterrors.ConfigError("index.endpoint port must be numeric", err)
	}
	return host, port, nil
}

// AddDocument encodes text into an MP4 at videoPath and indexes its
// chunks under documentID.
func (v *Vault) AddDocument(ctx context.Context, documentID, text, videoPath string) error {
	return v.writer.AddDocument(ctx, documentID, text, videoPath)
}

// AddDocumentsBatch encodes documents sequentially, one scratch
// directory at a time.
func (v *Vault) AddDocumentsBatch(ctx context.Context, docs []Document) error {
	return v.writer.AddDocumentsBatch(ctx, docs)
}

// UpdateDocument rewrites a document: old index entries are replaced and
// the MP4 is rebuilt.
func (v *Vault) UpdateDocument(ctx context.Context, documentID, text, videoPath string) error {
	return v.writer.UpdateDocument(ctx, documentID, text, videoPath)
}

// DeleteDocument removes a document's index entries. Removing the MP4
// file is the caller's responsibility.
func (v *Vault) DeleteDocument(ctx context.Context, documentID string) error {
	return v.writer.DeleteDocument(ctx, documentID)
}

// Search answers a semantic query against one artifact.
func (v *Vault) Search(ctx context.Context, query, videoPath string, k int) ([]SearchResult, error) {
	return v.retriever.Search(ctx, query, videoPath, k)
}

// SearchMultiple answers a query across several artifacts, each
// contributing up to k hits, merged by descending similarity.
func (v *Vault) SearchMultiple(ctx context.Context, query string, videoPaths []string, k int) ([]SearchResult, error) {
	return v.retriever.SearchMultiple(ctx, query, videoPaths, k)
}

// Stats probes videoPath and re-chunks originalText to recompute the
// document's statistics.
func (v *Vault) Stats(ctx context.Context, originalText, videoPath string) (Stats, error) {
	return v.writer.Stats(ctx, originalText, videoPath)
}

// DescribeIndex reports backend kind, dimension, and entry count.
func (v *Vault) DescribeIndex(ctx context.Context) (store.Description, error) {
	return v.db.Describe(ctx)
}

// CacheStats reports the retriever's frame cache {size, capacity}.
func (v *Vault) CacheStats() CacheStats {
	return v.retriever.CacheStats()
}

// ClearCache empties the retriever's frame cache.
func (v *Vault) ClearCache() {
	v.retriever.ClearCache()
}

// Close releases the embedder and, when Open constructed the index
// backend itself, the backend's process-lifetime resources (sqlite
// database handle, qdrant gRPC connection). Backends injected via
// WithVectorDatabase remain owned by their constructor's caller.
func (v *Vault) Close() error {
	err := v.embedder.Close()
	if v.ownsDB {
		if closer, ok := v.db.(interface{ Close() error }); ok {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
	}
	return err
}
