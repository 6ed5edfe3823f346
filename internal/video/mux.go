package video

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// MuxConfig controls the external encoder invocation. Defaults: H.264,
// 1 fps, square resolution matching the rasterizer's output.
type MuxConfig struct {
	// FFmpegPath is the ffmpeg binary to invoke, resolved via PATH if a
	// bare name (default "ffmpeg").
	FFmpegPath string
	// FPS is the output frame rate. Low frame rates keep the stream
	// key-frame-heavy, so every frame stays independently decodable.
	FPS int
	// ResolutionPX is the square output side length in pixels; must
	// match the rasterizer's output dimensions.
	ResolutionPX int
	// Codec is the video codec to encode with. Default "libx264".
	Codec string
}

// DefaultMuxConfig returns the muxing defaults.
func DefaultMuxConfig() MuxConfig {
	return MuxConfig{
		FFmpegPath:   "ffmpeg",
		FPS:          1,
		ResolutionPX: 256,
		Codec:        "libx264",
	}
}

// Mux concatenates the frameCount PNG frames already materialised in
// scratchDir (by FramePath's naming convention) into an MP4 at
// outputPath. The N-th file in lexicographic scratch order becomes the
// N-th presented frame; no filter here may drop, duplicate, or reorder
// frames, or the index's frame numbers stop addressing their chunks.
//
// On success the caller still owns removing scratchDir (see
// NewScratchDir); on failure any partial output at outputPath is removed
// before the error is returned, so a failed mux never publishes a
// partial MP4.
func Mux(ctx context.Context, scratchDir string, frameCount int, outputPath string, cfg MuxConfig) error {
	if cfg.FFmpegPath == "" {
		cfg = DefaultMuxConfig()
	}

	if _, err := exec.LookPath(cfg.FFmpegPath); err != nil {
		return vaulterrors.EncoderNotFound(
			"ffmpeg binary not found on PATH", err).
			WithDetail("ffmpeg_path", cfg.FFmpegPath).
			WithSuggestion("install ffmpeg or set video.ffmpeg_path")
	}

	if frameCount == 0 {
		return muxEmpty(ctx, outputPath, cfg)
	}

	scale := strconv.Itoa(cfg.ResolutionPX)
	vf := "scale=" + scale + ":" + scale + ":force_original_aspect_ratio=decrease,pad=" +
		scale + ":" + scale + ":(ow-iw)/2:(oh-ih)/2:white,format=yuv420p"

	args := []string{
		"-y",
		"-framerate", strconv.Itoa(cfg.FPS),
		"-i", framePattern(scratchDir, frameCount),
		"-vf", vf,
		"-c:v", cfg.Codec,
		"-pix_fmt", "yuv420p",
		"-an",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, cfg.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(outputPath)
		return vaulterrors.EncoderFailed(
			"ffmpeg failed to mux frames into mp4", err).
			WithDetail("stderr", lastLines(stderr.String(), 20))
	}

	return nil
}

// muxEmpty produces a valid, empty MP4 container for a zero-chunk
// document, keeping an empty add a successful no-op. ffmpeg's lavfi
// "color" source with "-frames:v 0" would refuse to write a usable
// container, so instead a synthetic white source is trimmed with "-t 0",
// yielding a zero-duration, zero-frame but structurally valid MP4.
func muxEmpty(ctx context.Context, outputPath string, cfg MuxConfig) error {
	scale := strconv.Itoa(cfg.ResolutionPX)
	args := []string{
		"-y",
		"-f", "lavfi",
		"-i", "color=c=white:s=" + scale + "x" + scale + ":r=" + strconv.Itoa(cfg.FPS),
		"-t", "0",
		"-c:v", cfg.Codec,
		"-pix_fmt", "yuv420p",
		"-an",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, cfg.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(outputPath)
		return vaulterrors.EncoderFailed("ffmpeg failed to write empty mp4 container", err).
			WithDetail("stderr", lastLines(stderr.String(), 20))
	}
	return nil
}


func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
