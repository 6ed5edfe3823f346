package preflight

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status CheckStatus
		want   string
	}{
		{StatusPass, "PASS"},
		{StatusWarn, "WARN"},
		{StatusFail, "FAIL"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.String())
		})
	}
}

func TestCheckResult_IsCritical(t *testing.T) {
	tests := []struct {
		name     string
		result   CheckResult
		expected bool
	}{
		{"required pass is not critical", CheckResult{Status: StatusPass, Required: true}, false},
		{"required fail is critical", CheckResult{Status: StatusFail, Required: true}, true},
		{"optional fail is not critical", CheckResult{Status: StatusFail, Required: false}, false},
		{"required warn is not critical", CheckResult{Status: StatusWarn, Required: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.IsCritical())
		})
	}
}

func TestChecker_New(t *testing.T) {
	checker := New()
	assert.NotNil(t, checker)
	assert.False(t, checker.verbose)
	assert.Equal(t, "ffmpeg", checker.ffmpegPath)
}

func TestChecker_NewWithOptions(t *testing.T) {
	buf := &bytes.Buffer{}
	checker := New(WithVerbose(true), WithOutput(buf), WithFFmpegPath("/usr/bin/ffmpeg"))

	assert.True(t, checker.verbose)
	assert.Equal(t, buf, checker.output)
	assert.Equal(t, "/usr/bin/ffmpeg", checker.ffmpegPath)
}

func TestChecker_HasCriticalFailures(t *testing.T) {
	checker := New()

	tests := []struct {
		name     string
		results  []CheckResult
		expected bool
	}{
		{"no results", []CheckResult{}, false},
		{"all pass", []CheckResult{{Status: StatusPass, Required: true}, {Status: StatusPass, Required: true}}, false},
		{"warning only", []CheckResult{{Status: StatusPass, Required: true}, {Status: StatusWarn, Required: false}}, false},
		{"optional failure", []CheckResult{{Status: StatusPass, Required: true}, {Status: StatusFail, Required: false}}, false},
		{"required failure", []CheckResult{{Status: StatusPass, Required: true}, {Status: StatusFail, Required: true}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.HasCriticalFailures(tt.results))
		})
	}
}

func TestChecker_CheckWritePermissions_Writable(t *testing.T) {
	tmpDir := t.TempDir()

	checker := New()
	result := checker.CheckWritePermissions(tmpDir)

	assert.Equal(t, StatusPass, result.Status)
	assert.Equal(t, "write_permissions", result.Name)
	assert.True(t, result.Required)
}

func TestChecker_CheckWritePermissions_ReadOnly(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("Skipping read-only test when running as root")
	}

	tmpDir := t.TempDir()
	readOnlyDir := filepath.Join(tmpDir, "readonly")
	require.NoError(t, os.Mkdir(readOnlyDir, 0o555))
	defer func() { _ = os.Chmod(readOnlyDir, 0o755) }()

	checker := New()
	result := checker.CheckWritePermissions(readOnlyDir)

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "permission denied")
}

func TestChecker_RunAll_ReturnsAllChecks(t *testing.T) {
	tmpDir := t.TempDir()
	checker := New()

	ctx := context.Background()
	results := checker.RunAll(ctx, tmpDir)

	assert.NotEmpty(t, results)

	checkNames := make(map[string]bool)
	for _, r := range results {
		checkNames[r.Name] = true
	}

	assert.True(t, checkNames["disk_space"], "disk_space check missing")
	assert.True(t, checkNames["write_permissions"], "write_permissions check missing")
	assert.True(t, checkNames["file_descriptors"], "file_descriptors check missing")
	assert.True(t, checkNames["ffmpeg"], "ffmpeg check missing")
	assert.True(t, checkNames["ffprobe"], "ffprobe check missing")
}

func TestChecker_PrintResults(t *testing.T) {
	results := []CheckResult{
		{Name: "disk_space", Status: StatusPass, Message: "50 GB free"},
		{Name: "ffprobe", Status: StatusWarn, Message: "not found"},
		{Name: "ffmpeg", Status: StatusFail, Message: "not found", Required: true},
	}

	buf := &bytes.Buffer{}
	checker := New(WithOutput(buf))

	checker.PrintResults(results)

	output := buf.String()
	assert.Contains(t, output, "[PASS]")
	assert.Contains(t, output, "[WARN]")
	assert.Contains(t, output, "[FAIL]")
	assert.Contains(t, output, "disk_space")
}

func TestChecker_SummaryStatus(t *testing.T) {
	checker := New()

	tests := []struct {
		name     string
		results  []CheckResult
		expected string
	}{
		{"all pass", []CheckResult{{Status: StatusPass}, {Status: StatusPass}}, "ready"},
		{"with warnings", []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}, "ready_with_warnings"},
		{"with critical failure", []CheckResult{{Status: StatusPass}, {Status: StatusFail, Required: true}}, "failed"},
		{"with optional failure", []CheckResult{{Status: StatusPass}, {Status: StatusFail, Required: false}}, "ready_with_warnings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, checker.SummaryStatus(tt.results))
		})
	}
}

func TestChecker_CheckFFmpeg_NotFound(t *testing.T) {
	checker := New(WithFFmpegPath("qrvault-definitely-not-a-real-binary"))
	result := checker.CheckFFmpeg()
	assert.Equal(t, StatusFail, result.Status)
	assert.True(t, result.Required)
}

func TestChecker_CheckFileDescriptors_ReportsConfiguredFanOut(t *testing.T) {
	checker := New(WithParallelism(8))
	result := checker.CheckFileDescriptors()

	assert.Equal(t, "file_descriptors", result.Name)
	assert.True(t, result.Required)
	assert.NotEmpty(t, result.Message)
	if result.Status == StatusFail {
		assert.Contains(t, result.Message, "8-way")
	}
}

func TestChecker_CheckDiskSpace_ReportsFreeSpace(t *testing.T) {
	checker := New()
	result := checker.CheckDiskSpace(t.TempDir())

	assert.Equal(t, "disk_space", result.Name)
	assert.True(t, result.Required)
	assert.Contains(t, result.Message, "free")
}

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", humanSize(512))
	assert.Equal(t, "256 MiB", humanSize(256<<20))
	assert.Equal(t, "1.0 GiB", humanSize(1<<30))
	assert.Equal(t, "1.5 TiB", humanSize(3<<39))
}
