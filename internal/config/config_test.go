package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, 500, cfg.Chunk.ChunkSize)
	assert.Equal(t, 50, cfg.Chunk.ChunkOverlap)
	assert.Equal(t, 1, cfg.Video.FPS)
	assert.Equal(t, 256, cfg.Video.ResolutionPX)
	assert.Equal(t, "M", cfg.QR.ErrorCorrectionLevel)
	assert.Equal(t, "memory", cfg.Index.Backend)
	assert.Equal(t, 50, cfg.Runtime.MaxCacheSize)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsOverlapGreaterOrEqualChunkSize(t *testing.T) {
	cfg := NewConfig()
	cfg.Chunk.ChunkSize = 10
	cfg.Chunk.ChunkOverlap = 10

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk_overlap")
}

func TestValidate_RejectsUnknownErrorCorrectionLevel(t *testing.T) {
	cfg := NewConfig()
	cfg.QR.ErrorCorrectionLevel = "Z"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qr_error_correction_level")
}

func TestValidate_UppercasesErrorCorrectionLevel(t *testing.T) {
	cfg := NewConfig()
	cfg.QR.ErrorCorrectionLevel = "q"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "Q", cfg.QR.ErrorCorrectionLevel)
}

func TestValidate_RejectsUnknownBackend(t *testing.T) {
	cfg := NewConfig()
	cfg.Index.Backend = "redis"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index.backend")
}

func TestValidate_RejectsNonPositiveCacheSize(t *testing.T) {
	cfg := NewConfig()
	cfg.Runtime.MaxCacheSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_cache_size")
}

func TestLoad_MergesProjectYAML(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
chunk:
  chunk_size: 1000
  chunk_overlap: 100
index:
  backend: file
  path: /tmp/qrvault.idx
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".qrvault.yaml"), []byte(yamlContent), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Chunk.ChunkSize)
	assert.Equal(t, 100, cfg.Chunk.ChunkOverlap)
	assert.Equal(t, "file", cfg.Index.Backend)
	assert.Equal(t, "/tmp/qrvault.idx", cfg.Index.Path)
	// Unset fields keep their defaults.
	assert.Equal(t, 1, cfg.Video.FPS)
}

func TestLoad_NoConfigFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.Chunk.ChunkSize)
}

func TestLoad_InvalidConfigReturnsConfigError(t *testing.T) {
	dir := t.TempDir()
	yamlContent := `
chunk:
  chunk_size: 10
  chunk_overlap: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".qrvault.yaml"), []byte(yamlContent), 0o644))

	_, err := Load(dir)
	require.Error(t, err)
}

func TestEnvOverrides_TakePrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	yamlContent := "chunk:\n  chunk_size: 1000\n  chunk_overlap: 100\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".qrvault.yaml"), []byte(yamlContent), 0o644))

	t.Setenv("QRVAULT_CHUNK_SIZE", "2000")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Chunk.ChunkSize)
}

func TestWriteYAML_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := NewConfig()
	cfg.Chunk.ChunkSize = 750
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(dir)
	require.NoError(t, err)
	// WriteYAML wrote a plain file, not a .qrvault.yaml, so Load won't
	// pick it up; verify the file itself round trips via loadYAML instead.
	require.NoError(t, loaded.loadYAML(path))
	assert.Equal(t, 750, loaded.Chunk.ChunkSize)
}

func TestFindProjectRoot_WalksUpToConfigFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".qrvault.yaml"), []byte("version: 1\n"), 0o644))

	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	found, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, found)
}

func TestFindProjectRoot_FallsBackToStartDir(t *testing.T) {
	dir := t.TempDir()

	found, err := FindProjectRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, found)
}
