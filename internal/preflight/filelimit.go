package preflight

import (
	"fmt"
	"syscall"
)

// Each in-flight chunk of the encode fan-out holds a scratch PNG open
// while ffmpeg invocations hold stdin/stdout/stderr pipes, so the
// descriptor floor scales with the configured parallelism on top of a
// base allowance for the index backend and log files.
const (
	fdBaseline     = 64
	fdPerWorker    = 16
	fdComfortLevel = 1024
)

// CheckFileDescriptors verifies the soft RLIMIT_NOFILE leaves enough
// headroom for a parallelism-wide encode. Below the computed floor the
// check fails; between the floor and a comfortable 1024 it only warns,
// since small encodes will still succeed.
func (c *Checker) CheckFileDescriptors() CheckResult {
	result := CheckResult{Name: "file_descriptors", Required: true}

	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("failed to read RLIMIT_NOFILE: %v", err)
		return result
	}

	required := uint64(fdBaseline + fdPerWorker*c.parallelism)
	current := rLimit.Cur

	switch {
	case current < required:
		result.Status = StatusFail
		result.Message = fmt.Sprintf("soft limit %d, need %d for a %d-way encode fan-out", current, required, c.parallelism)
		result.Details = "raise the limit (ulimit -n) or lower runtime.parallelism"
	case current < fdComfortLevel:
		result.Status = StatusWarn
		result.Message = fmt.Sprintf("soft limit %d is tight; %d or more recommended", current, fdComfortLevel)
	default:
		result.Status = StatusPass
		result.Message = fmt.Sprintf("soft limit %d (need %d)", current, required)
	}
	return result
}
