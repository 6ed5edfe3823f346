package video

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strconv"
	"strings"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// ProbeResult is what Probe reports about an artifact, feeding
// internal/vault's Stats.
type ProbeResult struct {
	DurationSeconds float64
	SizeBytes       int64
	FrameCount      int
	FPS             float64
}

type ffprobeStream struct {
	NbFrames     string `json:"nb_frames"`
	RFrameRate   string `json:"r_frame_rate"`
	AvgFrameRate string `json:"avg_frame_rate"`
}

type ffprobeFormat struct {
	Duration string `json:"duration"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  ffprobeFormat   `json:"format"`
}

// Probe runs ffprobe against path and stats the file for size, returning
// duration, frame count, fps, and on-disk size.
func Probe(ctx context.Context, path string, ffprobePath string) (ProbeResult, error) {
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	info, err := os.Stat(path)
	if err != nil {
		return ProbeResult{}, vaulterrors.VideoNotFound("mp4 artifact not found", err)
	}

	if _, err := exec.LookPath(ffprobePath); err != nil {
		return ProbeResult{}, vaulterrors.EncoderNotFound("ffprobe binary not found on PATH", err).
			WithDetail("ffprobe_path", ffprobePath)
	}

	args := []string{
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=nb_frames,r_frame_rate,avg_frame_rate:format=duration",
		"-of", "json",
		path,
	}

	cmd := exec.CommandContext(ctx, ffprobePath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return ProbeResult{}, vaulterrors.EncoderFailed("ffprobe failed to inspect mp4", err).
			WithDetail("stderr", lastLines(stderr.String(), 20))
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		return ProbeResult{}, vaulterrors.EncoderFailed("failed to parse ffprobe json output", err)
	}

	result := ProbeResult{SizeBytes: info.Size()}
	if d, err := strconv.ParseFloat(strings.TrimSpace(parsed.Format.Duration), 64); err == nil {
		result.DurationSeconds = d
	}

	if len(parsed.Streams) > 0 {
		s := parsed.Streams[0]
		if n, err := strconv.Atoi(strings.TrimSpace(s.NbFrames)); err == nil {
			result.FrameCount = n
		}
		rate := s.RFrameRate
		if rate == "" {
			rate = s.AvgFrameRate
		}
		if fps, ok := parseRational(rate); ok {
			result.FPS = fps
		}
	}

	return result, nil
}

// parseRational parses ffprobe's "N/D" frame-rate fraction strings.
func parseRational(s string) (float64, bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, false
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0, false
	}
	return num / den, true
}
