// Package video muxes a sequence of QR bitmaps into a frame-addressable
// MP4 and extracts individual frames back out by seeking, spawning a
// fresh external ffmpeg/ffprobe subprocess per invocation rather than
// sharing a long-lived codec process.
package video

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// NewScratchDir creates a unique, per-encode scratch directory under
// baseDir (os.TempDir() if empty), named with a random UUID suffix so
// concurrent encodes never collide. The returned cleanup func removes
// it; callers must invoke it on every exit path — success, error, or
// cancellation.
func NewScratchDir(baseDir string) (string, func(), error) {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", nil, vaulterrors.IOError("failed to create scratch base directory", err)
	}

	dir := filepath.Join(baseDir, "qrvault-scratch-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", nil, vaulterrors.IOError("failed to create scratch directory", err)
	}

	cleanup := func() { _ = os.RemoveAll(dir) }
	return dir, cleanup, nil
}

// framePadWidth returns the zero-pad width sufficient to
// lexicographically sort totalFrames frame filenames in presentation
// order. A minimum of 5 digits keeps small documents' filenames stable
// in width if they later grow.
func framePadWidth(totalFrames int) int {
	width := len(strconv.Itoa(maxInt(totalFrames-1, 0)))
	if width < 5 {
		width = 5
	}
	return width
}

// FramePath returns the scratch-directory path for frame index i, given
// the total frame count (which determines the zero-pad width).
func FramePath(scratchDir string, index, totalFrames int) string {
	width := framePadWidth(totalFrames)
	return filepath.Join(scratchDir, fmt.Sprintf("frame_%0*d.png", width, index))
}

// framePattern returns ffmpeg's printf-style glob for the scratch
// directory's frame files, e.g. "frame_%05d.png".
func framePattern(scratchDir string, totalFrames int) string {
	width := framePadWidth(totalFrames)
	return filepath.Join(scratchDir, fmt.Sprintf("frame_%%0%dd.png", width))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
