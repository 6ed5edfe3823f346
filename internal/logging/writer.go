package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RotatingWriter appends to a single active log file and, when a write
// would push it past the size cap, renames the file aside with a
// timestamp suffix and starts fresh. Only the newest `keep` archives
// are retained.
type RotatingWriter struct {
	mu       sync.Mutex
	path     string
	capBytes int64
	keep     int
	syncEach bool
	f        *os.File
	size     int64
}

// NewRotatingWriter creates a rotating log writer at path with a cap of
// maxSizeMB megabytes and at most maxFiles rotated archives. Per-write
// fsync is on by default so the tail of the log survives a hard kill
// mid-encode.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:     path,
		capBytes: int64(maxSizeMB) << 20,
		keep:     maxFiles,
		syncEach: true,
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetImmediateSync toggles fsync after every write.
func (w *RotatingWriter) SetImmediateSync(enabled bool) {
	w.mu.Lock()
	w.syncEach = enabled
	w.mu.Unlock()
}

// Write implements io.Writer, rotating first when the record would push
// the active file past its cap.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size+int64(len(p)) > w.capBytes {
		if err := w.rotate(); err != nil {
			// Rotation trouble must not lose the record; keep writing to
			// the oversized file and complain on stderr.
			_, _ = fmt.Fprintf(os.Stderr, "qrvault: log rotation: %v\n", err)
		}
	}

	n, err := w.f.Write(p)
	w.size += int64(n)
	if err == nil && w.syncEach {
		_ = w.f.Sync()
	}
	return n, err
}

// Sync flushes the active file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	return w.f.Sync()
}

// Close closes the active file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.f == nil {
		return nil
	}
	err := w.f.Close()
	w.f = nil
	return err
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}

	w.f = f
	w.size = info.Size()
	return nil
}

// rotate renames vault.log to vault-<timestamp>.log, prunes archives
// beyond the keep count, and reopens a fresh active file.
func (w *RotatingWriter) rotate() error {
	if w.f != nil {
		if err := w.f.Close(); err != nil {
			return fmt.Errorf("close active log: %w", err)
		}
		w.f = nil
	}

	if err := os.Rename(w.path, w.archiveName(time.Now())); err != nil {
		return fmt.Errorf("archive log file: %w", err)
	}
	w.pruneArchives()

	w.size = 0
	return w.open()
}

// archiveName derives the rotated filename for one instant; nanosecond
// precision keeps consecutive rotations from colliding.
func (w *RotatingWriter) archiveName(now time.Time) string {
	ext := filepath.Ext(w.path)
	stem := strings.TrimSuffix(w.path, ext)
	return stem + "-" + now.UTC().Format("20060102T150405.000000000") + ext
}

// pruneArchives removes the oldest archives beyond the keep count. The
// timestamp format is fixed-width, so lexicographic order is age order.
func (w *RotatingWriter) pruneArchives() {
	ext := filepath.Ext(w.path)
	stem := strings.TrimSuffix(w.path, ext)

	archives, err := filepath.Glob(stem + "-*" + ext)
	if err != nil || len(archives) <= w.keep {
		return
	}

	sort.Strings(archives)
	for _, old := range archives[:len(archives)-w.keep] {
		_ = os.Remove(old)
	}
}
