package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Aman-CERP/qrvault/internal/config"
	"github.com/Aman-CERP/qrvault/internal/embed"
	"github.com/Aman-CERP/qrvault/pkg/qrvault"
)

// dataDirName is the per-project state directory.
const dataDirName = ".qrvault"

// loadConfig finds the project root (the nearest ancestor with a
// .qrvault.yaml, else the current directory) and loads its config.
func loadConfig() (*config.Config, string, error) {
	root, err := config.FindProjectRoot(".")
	if err != nil || root == "" {
		root, _ = os.Getwd()
	}

	cfg, err := config.Load(root)
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

// resolveEmbedder picks the embedder for this invocation: an HTTP
// embedder when QRVAULT_EMBED_ENDPOINT is set, else the deterministic
// static embedder. Either way it is wrapped in the LRU caching
// decorator so repeated chunks and queries embed once.
func resolveEmbedder() (embed.Embedder, error) {
	endpoint := os.Getenv("QRVAULT_EMBED_ENDPOINT")
	if endpoint == "" {
		return embed.NewCachedEmbedder(embed.NewStaticEmbedder(), embed.DefaultEmbeddingCacheSize), nil
	}

	dims := 0
	if v := os.Getenv("QRVAULT_EMBED_DIMENSIONS"); v != "" {
		dims, _ = strconv.Atoi(v)
	}

	inner, err := embed.NewHTTPEmbedder(embed.HTTPConfig{
		Endpoint:   endpoint,
		Model:      os.Getenv("QRVAULT_EMBED_MODEL"),
		APIKey:     os.Getenv("QRVAULT_EMBED_API_KEY"),
		Dimensions: dims,
	})
	if err != nil {
		return nil, err
	}
	return embed.NewCachedEmbedder(inner, embed.DefaultEmbeddingCacheSize), nil
}

// openVault wires config + embedder into a ready vault. The library's
// default index backend is the in-process memory store, which cannot
// survive across CLI invocations — so whenever the configured backend is
// memory (whether by default or named explicitly), the CLI substitutes
// the file backend under the project's data directory, keeping `add`
// visible to a later `search`.
func openVault(ctx context.Context) (*qrvault.Vault, *config.Config, error) {
	cfg, root, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	dataDir := filepath.Join(root, dataDirName)
	if cfg.Index.Backend == "memory" {
		cfg.Index.Backend = "file"
		cfg.Index.Path = filepath.Join(dataDir, "index.gob")
	}
	if cfg.Index.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Index.Path), 0o755); err != nil {
			return nil, nil, err
		}
	}

	embedder, err := resolveEmbedder()
	if err != nil {
		return nil, nil, err
	}

	v, err := qrvault.Open(ctx, cfg, embedder)
	if err != nil {
		_ = embedder.Close()
		return nil, nil, err
	}
	return v, cfg, nil
}
