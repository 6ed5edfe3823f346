package preflight

import (
	"fmt"
	"syscall"
)

// A 256x256 QR frame PNG runs a few KiB, but the scratch directory
// holds every frame of a document at once and the muxed MP4 lands next
// to it, so the floor is sized for a six-figure-frame encode rather
// than a single frame.
const (
	diskFloorBytes       = 256 << 20 // hard minimum
	diskComfortableBytes = 1 << 30   // below this, warn
)

// CheckDiskSpace verifies the filesystem holding path has room for
// scratch frames plus the muxed artifact.
func (c *Checker) CheckDiskSpace(path string) CheckResult {
	result := CheckResult{Name: "disk_space", Required: true}

	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to stat filesystem: %v", err)
		return result
	}

	free := stat.Bavail * uint64(stat.Bsize)

	switch {
	case free < diskFloorBytes:
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s free, need at least %s for scratch frames and output", humanSize(free), humanSize(diskFloorBytes))
	case free < diskComfortableBytes:
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("%s free; large documents may not fit their scratch directories", humanSize(free))
	default:
		result.Status = StatusPass
		result.Message = fmt.Sprintf("%s free", humanSize(free))
	}
	return result
}

// humanSize renders a byte count in the unit that keeps it readable.
func humanSize(n uint64) string {
	switch {
	case n >= 1<<40:
		return fmt.Sprintf("%.1f TiB", float64(n)/(1<<40))
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GiB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.0f MiB", float64(n)/(1<<20))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
