package preflight

import (
	"fmt"
	"os/exec"
)

// CheckFFmpeg verifies the ffmpeg binary used for muxing frames into an
// MP4 is on PATH — required, since there is no pure-Go fallback for
// video muxing in this stack.
func (c *Checker) CheckFFmpeg() CheckResult {
	result := CheckResult{Name: "ffmpeg", Required: true}

	path, err := exec.LookPath(c.ffmpegPath)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%q not found on PATH", c.ffmpegPath)
		result.Details = "install ffmpeg (e.g. apt install ffmpeg, brew install ffmpeg)"
		return result
	}

	result.Status = StatusPass
	result.Message = path
	return result
}

// CheckFFprobe verifies ffprobe, used to inspect muxed videos for Stats
// reporting. It ships alongside ffmpeg in virtually every distribution,
// so its absence is a warning rather than a hard failure: add/search
// still work without it, only the stats command fails.
func (c *Checker) CheckFFprobe() CheckResult {
	result := CheckResult{Name: "ffprobe", Required: false}

	path, err := exec.LookPath("ffprobe")
	if err != nil {
		result.Status = StatusWarn
		result.Message = "\"ffprobe\" not found on PATH"
		result.Details = "stats command will be unable to report video duration or frame count"
		return result
	}

	result.Status = StatusPass
	result.Message = path
	return result
}
