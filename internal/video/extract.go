package video

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// ExtractConfig controls single-frame extraction.
type ExtractConfig struct {
	// FFmpegPath is the ffmpeg binary to invoke. Default "ffmpeg".
	FFmpegPath string
	// FPS is the rate the artifact was muxed at; required for the
	// timestamp-seek fallback's frame/fps conversion. Persisted alongside
	// the artifact by the vault layer, since the muxer is the only writer
	// of this fact.
	FPS int
}

// DefaultExtractConfig returns the extraction defaults.
func DefaultExtractConfig() ExtractConfig {
	return ExtractConfig{FFmpegPath: "ffmpeg", FPS: 1}
}

// Extract pulls the single decoded frame at frameNumber (0-indexed,
// presentation order) out of the MP4 at videoPath, returning it as
// PNG-encoded bytes.
//
// Extract first tries frame-index seeking via ffmpeg's select filter
// (exact, fps-independent); if that produces
// no output (older ffmpeg builds, unusual container indexing) it falls
// back to frame_number/fps timestamp seeking with a half-frame-period
// bias so the requested timestamp lands inside the target frame rather
// than its neighbour.
func Extract(ctx context.Context, videoPath string, frameNumber int, cfg ExtractConfig) ([]byte, error) {
	if cfg.FFmpegPath == "" {
		cfg = DefaultExtractConfig()
	}

	if _, err := os.Stat(videoPath); err != nil {
		return nil, vaulterrors.VideoNotFound(
			fmt.Sprintf("mp4 artifact not found at %s", videoPath), err)
	}

	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return nil, vaulterrors.EncoderNotFound("ffmpeg binary not found on PATH", err).
			WithDetail("ffmpeg_path", cfg.FFmpegPath)
	}

	png, err := extractByFrameIndex(ctx, videoPath, frameNumber, cfg)
	if err == nil && len(png) > 0 {
		return png, nil
	}

	return extractByTimestamp(ctx, videoPath, frameNumber, cfg)
}

func extractByFrameIndex(ctx context.Context, videoPath string, frameNumber int, cfg ExtractConfig) ([]byte, error) {
	selectExpr := fmt.Sprintf("eq(n\\,%d)", frameNumber)
	args := []string{
		"-i", videoPath,
		"-vf", "select=" + selectExpr,
		"-vsync", "0",
		"-frames:v", "1",
		"-f", "image2",
		"-vcodec", "png",
		"pipe:1",
	}
	return runExtract(ctx, cfg.FFmpegPath, args)
}

func extractByTimestamp(ctx context.Context, videoPath string, frameNumber int, cfg ExtractConfig) ([]byte, error) {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 1
	}
	// Half-frame-period bias lands the seek inside the target frame's
	// presentation window instead of rounding onto a neighbour.
	timestamp := (float64(frameNumber) + 0.5) / float64(fps)

	args := []string{
		"-ss", fmt.Sprintf("%.6f", timestamp),
		"-i", videoPath,
		"-frames:v", "1",
		"-f", "image2",
		"-vcodec", "png",
		"pipe:1",
	}

	png, err := runExtract(ctx, cfg.FFmpegPath, args)
	if err != nil {
		return nil, err
	}
	if len(png) == 0 {
		return nil, vaulterrors.EncoderFailed(
			fmt.Sprintf("ffmpeg produced no frame output for frame %d", frameNumber), nil)
	}
	return png, nil
}

func runExtract(ctx context.Context, ffmpegPath string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, vaulterrors.EncoderFailed("ffmpeg failed to extract frame", err).
			WithDetail("stderr", lastLines(stderr.String(), 20))
	}

	return stdout.Bytes(), nil
}
