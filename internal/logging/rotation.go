package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotationConfig holds configuration for log rotation.
type RotationConfig struct {
	// MaxSizeMB is the size at which the log file rotates. 0 never rotates.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept as path.1 .. path.N.
	// 0 truncates the file in place instead.
	MaxBackups int
}

// DefaultRotationConfig returns a RotationConfig with sensible defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSizeMB:  10,
		MaxBackups: 3,
	}
}

// RotatingWriter appends to a log file and rotates it by size. It is safe
// for concurrent use.
type RotatingWriter struct {
	mu    sync.Mutex
	path  string
	limit int64
	keep  int
	f     *os.File
	size  int64
}

// NewRotatingWriter opens path for appending, creating its directory.
func NewRotatingWriter(path string, config RotationConfig) (*RotatingWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := &RotatingWriter{
		path:  path,
		limit: int64(config.MaxSizeMB) << 20,
		keep:  config.MaxBackups,
	}
	if err := w.reopen(os.O_APPEND); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) reopen(mode int) error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|mode, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.f, w.size = f, info.Size()
	return nil
}

// Write implements io.Writer. A record is never split across files.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return 0, errors.New("log file is closed")
	}
	if w.limit > 0 && w.size > 0 && w.size+int64(len(p)) > w.limit {
		// A failed rename leaves the current file open; keep appending to it.
		if err := w.rotate(); err != nil && w.f == nil {
			return 0, err
		}
	}

	n, err := w.f.Write(p)
	w.size += int64(n)
	return n, err
}

// rotate shifts path.N-1 -> path.N down to path -> path.1, dropping the
// oldest backup. Must be called with mu held.
func (w *RotatingWriter) rotate() error {
	if err := w.f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	w.f = nil

	if w.keep <= 0 {
		return w.reopen(os.O_TRUNC)
	}

	_ = os.Remove(w.backup(w.keep))
	for i := w.keep - 1; i >= 1; i-- {
		_ = os.Rename(w.backup(i), w.backup(i+1))
	}
	if err := os.Rename(w.path, w.backup(1)); err != nil {
		if reopenErr := w.reopen(os.O_APPEND); reopenErr != nil {
			return reopenErr
		}
		return fmt.Errorf("failed to rotate log file: %w", err)
	}
	return w.reopen(os.O_TRUNC)
}

func (w *RotatingWriter) backup(n int) string {
	return fmt.Sprintf("%s.%d", w.path, n)
}

// Close syncs and closes the file. It is safe to call more than once;
// later writes fail.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.f == nil {
		return nil
	}
	f := w.f
	w.f = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

// Size returns the size of the active log file in bytes.
func (w *RotatingWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Path returns the path of the active log file.
func (w *RotatingWriter) Path() string {
	return w.path
}
