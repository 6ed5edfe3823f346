// Package config loads and validates qrvault's configuration: defaults,
// then an optional YAML file found by walking up from a starting
// directory, then environment variable overrides, then validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// Config is qrvault's complete configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Chunk   ChunkConfig   `yaml:"chunk" json:"chunk"`
	Video   VideoConfig   `yaml:"video" json:"video"`
	QR      QRConfig      `yaml:"qr" json:"qr"`
	Index   IndexConfig   `yaml:"index" json:"index"`
	Runtime RuntimeConfig `yaml:"runtime" json:"runtime"`
}

// ChunkConfig configures the sliding-window chunker.
type ChunkConfig struct {
	// ChunkSize is the window size in bytes. Default 500.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`
	// ChunkOverlap is the overlap between consecutive windows; must be
	// strictly less than ChunkSize. Default 50.
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`
}

// VideoConfig configures muxing and frame extraction.
type VideoConfig struct {
	// FPS is the output MP4 frame rate, also used for timestamp<->frame
	// conversion on seek fallback. Default 1.
	FPS int `yaml:"video_fps" json:"video_fps"`
	// ResolutionPX is the square frame side length in pixels. Default 256.
	ResolutionPX int `yaml:"video_resolution" json:"video_resolution"`
	// FFmpegPath overrides the ffmpeg binary to invoke (default: "ffmpeg",
	// resolved via PATH).
	FFmpegPath string `yaml:"ffmpeg_path" json:"ffmpeg_path"`
	// FFprobePath overrides the ffprobe binary (default: "ffprobe").
	FFprobePath string `yaml:"ffprobe_path" json:"ffprobe_path"`
}

// QRConfig configures the rasterizer.
type QRConfig struct {
	// ErrorCorrectionLevel is one of L, M, Q, H. Default M.
	ErrorCorrectionLevel string `yaml:"qr_error_correction_level" json:"qr_error_correction_level"`
}

// IndexConfig selects and configures the vector index backend.
type IndexConfig struct {
	// Backend selects the VectorDatabase implementation: "memory" (exact,
	// the default), "file", "hnsw", "sqlite", or "qdrant".
	Backend string `yaml:"backend" json:"backend"`
	// Path is the backend's on-disk location (file/sqlite) or empty for
	// backends that need none (memory) or use Endpoint instead (qdrant).
	Path string `yaml:"path" json:"path"`
	// Endpoint is the host:port of an external backend (qdrant).
	Endpoint string `yaml:"endpoint" json:"endpoint"`
	// Dimensions is the embedding width given to backends that need it up
	// front (qdrant); 0 means use the embedder's Dimensions().
	Dimensions int `yaml:"dimensions" json:"dimensions"`
}

// RuntimeConfig configures ambient, cross-cutting behavior.
type RuntimeConfig struct {
	// Verbose emits progress traces and FrameDecodeWarning log lines.
	Verbose bool `yaml:"verbose" json:"verbose"`
	// MaxCacheSize is the retriever's LRU capacity for decoded frames.
	// Default 50.
	MaxCacheSize int `yaml:"max_cache_size" json:"max_cache_size"`
	// Parallelism bounds concurrent rasterize+embed fan-out during encode.
	Parallelism int `yaml:"parallelism" json:"parallelism"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Chunk: ChunkConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Video: VideoConfig{
			FPS:          1,
			ResolutionPX: 256,
			FFmpegPath:   "ffmpeg",
			FFprobePath:  "ffprobe",
		},
		QR: QRConfig{
			ErrorCorrectionLevel: "M",
		},
		Index: IndexConfig{
			Backend:    "memory",
			Dimensions: 0,
		},
		Runtime: RuntimeConfig{
			Verbose:      false,
			MaxCacheSize: 50,
			Parallelism:  4,
		},
	}
}

// configFileNames are tried in order, yaml before yml.
var configFileNames = []string{".qrvault.yaml", ".qrvault.yml"}

// Load builds a Config by starting from defaults, merging a project
// config file found under dir (if any), then applying QRVAULT_*
// environment overrides, then validating.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, vaulterrors.ConfigError(err.Error(), err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(dir string) error {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return vaulterrors.IOError(fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return vaulterrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if other.Chunk.ChunkSize != 0 {
		c.Chunk.ChunkSize = other.Chunk.ChunkSize
	}
	if other.Chunk.ChunkOverlap != 0 {
		c.Chunk.ChunkOverlap = other.Chunk.ChunkOverlap
	}
	if other.Video.FPS != 0 {
		c.Video.FPS = other.Video.FPS
	}
	if other.Video.ResolutionPX != 0 {
		c.Video.ResolutionPX = other.Video.ResolutionPX
	}
	if other.Video.FFmpegPath != "" {
		c.Video.FFmpegPath = other.Video.FFmpegPath
	}
	if other.Video.FFprobePath != "" {
		c.Video.FFprobePath = other.Video.FFprobePath
	}
	if other.QR.ErrorCorrectionLevel != "" {
		c.QR.ErrorCorrectionLevel = other.QR.ErrorCorrectionLevel
	}
	if other.Index.Backend != "" {
		c.Index.Backend = other.Index.Backend
	}
	if other.Index.Path != "" {
		c.Index.Path = other.Index.Path
	}
	if other.Index.Endpoint != "" {
		c.Index.Endpoint = other.Index.Endpoint
	}
	if other.Index.Dimensions != 0 {
		c.Index.Dimensions = other.Index.Dimensions
	}
	if other.Runtime.Verbose {
		c.Runtime.Verbose = true
	}
	if other.Runtime.MaxCacheSize != 0 {
		c.Runtime.MaxCacheSize = other.Runtime.MaxCacheSize
	}
	if other.Runtime.Parallelism != 0 {
		c.Runtime.Parallelism = other.Runtime.Parallelism
	}
}

// applyEnvOverrides applies QRVAULT_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QRVAULT_CHUNK_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunk.ChunkSize = n
		}
	}
	if v := os.Getenv("QRVAULT_CHUNK_OVERLAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Chunk.ChunkOverlap = n
		}
	}
	if v := os.Getenv("QRVAULT_VIDEO_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Video.FPS = n
		}
	}
	if v := os.Getenv("QRVAULT_ECL"); v != "" {
		c.QR.ErrorCorrectionLevel = strings.ToUpper(v)
	}
	if v := os.Getenv("QRVAULT_INDEX_BACKEND"); v != "" {
		c.Index.Backend = v
	}
	if v := os.Getenv("QRVAULT_VERBOSE"); v != "" {
		c.Runtime.Verbose = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate enforces the construction-time invariants. Construction
// refuses to complete on an invalid config rather than deferring the
// failure to the first operation that trips over it.
func (c *Config) Validate() error {
	if c.Chunk.ChunkOverlap >= c.Chunk.ChunkSize {
		return fmt.Errorf("chunk_overlap (%d) must be strictly less than chunk_size (%d)", c.Chunk.ChunkOverlap, c.Chunk.ChunkSize)
	}
	if c.Chunk.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Chunk.ChunkSize)
	}

	validECL := map[string]bool{"L": true, "M": true, "Q": true, "H": true}
	if !validECL[strings.ToUpper(c.QR.ErrorCorrectionLevel)] {
		return fmt.Errorf("qr_error_correction_level must be one of L, M, Q, H, got %q", c.QR.ErrorCorrectionLevel)
	}
	c.QR.ErrorCorrectionLevel = strings.ToUpper(c.QR.ErrorCorrectionLevel)

	if c.Video.FPS <= 0 {
		return fmt.Errorf("video_fps must be positive, got %d", c.Video.FPS)
	}
	if c.Video.ResolutionPX <= 0 {
		return fmt.Errorf("video_resolution must be positive, got %d", c.Video.ResolutionPX)
	}

	validBackend := map[string]bool{"memory": true, "file": true, "hnsw": true, "sqlite": true, "qdrant": true}
	if !validBackend[c.Index.Backend] {
		return fmt.Errorf("index.backend must be one of memory, file, hnsw, sqlite, qdrant, got %q", c.Index.Backend)
	}

	if c.Runtime.MaxCacheSize <= 0 {
		return fmt.Errorf("max_cache_size must be positive, got %d", c.Runtime.MaxCacheSize)
	}
	if c.Runtime.Parallelism <= 0 {
		return fmt.Errorf("runtime.parallelism must be positive, got %d", c.Runtime.Parallelism)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file, used by `qrvault config init`.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return vaulterrors.InternalError("failed to marshal config", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return vaulterrors.IOError(fmt.Sprintf("failed to write config file %s", path), err)
	}
	return nil
}

// FindProjectRoot walks upward from startDir looking for a qrvault
// config file.
func FindProjectRoot(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range configFileNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir, nil
		}
		dir = parent
	}
}
