package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

func TestWriter_Successf(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Successf("encoded %s", "notes.mp4")

	assert.Contains(t, buf.String(), "✅")
	assert.Contains(t, buf.String(), "encoded notes.mp4")
}

func TestWriter_Warningf(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Warningf("could not remove %s", "old.mp4")

	assert.Contains(t, buf.String(), "⚠️")
	assert.Contains(t, buf.String(), "could not remove old.mp4")
}

func TestWriter_Infof_Indents(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Infof("chunks: %d", 3)

	assert.Equal(t, "   chunks: 3\n", buf.String())
}

func TestWriter_Error_RendersVaultError(t *testing.T) {
	buf := &bytes.Buffer{}
	err := vaulterrors.VideoNotFound("mp4 artifact not found", nil).
		WithSuggestion("check the --video path")
	New(buf).Error(err)

	out := buf.String()
	assert.Contains(t, out, "mp4 artifact not found")
	assert.Contains(t, out, "check the --video path")
	assert.Contains(t, out, vaulterrors.ErrCodeVideoNotFound)
}

func TestWriter_Error_NilIsSilent(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Error(nil)
	assert.Empty(t, buf.String())
}

func TestWriter_Hit_FormatsRankScoreAndChunk(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Hit(1, 0.8213, "meeting-notes", 4, "  decision: ship friday  ")

	out := buf.String()
	assert.Contains(t, out, " 1. [0.8213] meeting-notes  frame 4")
	assert.Contains(t, out, "      decision: ship friday")
}

func TestWriter_Hit_IndentsEveryChunkLine(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).Hit(2, 0.5, "doc", 0, "line one\nline two")

	for _, line := range []string{"line one", "line two"} {
		assert.Contains(t, buf.String(), "      "+line)
	}
}

func TestWriter_HitCount(t *testing.T) {
	buf := &bytes.Buffer{}
	New(buf).HitCount(0)
	assert.Equal(t, "no results\n", buf.String())

	buf.Reset()
	New(buf).HitCount(5)
	assert.Equal(t, "5 result(s)\n", buf.String())
}

func TestWriter_Field_AlignsLabels(t *testing.T) {
	buf := &bytes.Buffer{}
	w := New(buf)
	w.Field("chunks", 3)
	w.Field("compression ratio", "2.10x")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	// Both values start at the same column.
	assert.Equal(t, strings.Index(lines[0], "3"), strings.Index(lines[1], "2.10x"))
}
