// Package output renders qrvault's CLI surfaces: encode summaries,
// ranked search hits with similarity scores, stats/info field tables,
// and structured VaultError reports.
package output

import (
	"fmt"
	"io"
	"strings"

	vaulterrors "github.com/Aman-CERP/qrvault/internal/errors"
)

// fieldWidth aligns the label column of Field output across the stats
// and info commands.
const fieldWidth = 18

// Writer renders CLI output for one command invocation.
type Writer struct {
	out io.Writer
}

// New creates a Writer over out.
func New(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Successf prints a completed-operation line.
func (w *Writer) Successf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "✅ %s\n", fmt.Sprintf(format, args...))
}

// Warningf prints a non-fatal condition the user should know about.
func (w *Writer) Warningf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "⚠️  %s\n", fmt.Sprintf(format, args...))
}

// Infof prints an indented detail line under a preceding status.
func (w *Writer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, "   %s\n", fmt.Sprintf(format, args...))
}

// Error renders err. VaultErrors print their message, hint, and code;
// anything else prints its message under the generic internal error code.
func (w *Writer) Error(err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprint(w.out, vaulterrors.FormatForCLI(err))
}

// Hit prints one search result: rank, similarity, source coordinates,
// then the chunk text indented underneath.
func (w *Writer) Hit(rank int, similarity float32, documentID string, frameNumber int, chunkText string) {
	_, _ = fmt.Fprintf(w.out, "%2d. [%.4f] %s  frame %d\n", rank, similarity, documentID, frameNumber)
	for _, line := range strings.Split(strings.TrimSpace(chunkText), "\n") {
		_, _ = fmt.Fprintf(w.out, "      %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// HitCount prints the trailing result-count summary of a search.
func (w *Writer) HitCount(n int) {
	if n == 0 {
		_, _ = fmt.Fprintln(w.out, "no results")
		return
	}
	_, _ = fmt.Fprintf(w.out, "%d result(s)\n", n)
}

// Field prints one aligned "label: value" row of a stats or info table.
func (w *Writer) Field(label string, value any) {
	_, _ = fmt.Fprintf(w.out, "%-*s %v\n", fieldWidth, label+":", value)
}
