// Package watch signals when files in a work tree change so the sync loop
// can cut its sleep short. It never runs a cycle itself.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Iron-Ham/lfslocker/internal/logging"
)

// DefaultDebounce coalesces the burst of events editors emit for one save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher watches a work tree recursively and emits debounced wake-ups.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string

	ignorePaths []string
	debounce    time.Duration
	logger      *logging.Logger

	wake     chan struct{}
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a wake-up is emitted.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithIgnore adds directory or file base names to skip.
func WithIgnore(names ...string) Option {
	return func(w *Watcher) {
		w.ignorePaths = append(w.ignorePaths, names...)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// New creates a watcher for root. Call Start to begin watching.
func New(root string, opts ...Option) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:     fw,
		root:        filepath.Clean(root),
		ignorePaths: []string{".git"},
		debounce:    DefaultDebounce,
		logger:      logging.NopLogger(),
		wake:        make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start adds the work tree to the watch list and starts the event loop.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.root); err != nil {
		return err
	}
	w.watchDirRecursive(w.root)

	w.wg.Add(1)
	go w.watchLoop()
	return nil
}

// Wake delivers at most one pending signal after a burst of changes.
func (w *Watcher) Wake() <-chan struct{} {
	return w.wake
}

// Stop ends the event loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
		w.wg.Wait()
	})
}

// watchDirRecursive adds all non-ignored subdirectories under root.
func (w *Watcher) watchDirRecursive(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path != root && w.ignored(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			if err := w.watcher.Add(path); err != nil {
				w.logger.Debug("cannot watch directory", "path", path, "error", err)
			}
		}
		return nil
	})
}

func (w *Watcher) watchLoop() {
	defer w.wg.Done()

	debounceTimer := time.NewTimer(w.debounce)
	if !debounceTimer.Stop() {
		<-debounceTimer.C
	}
	defer debounceTimer.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.watchDirRecursive(event.Name)
				}
			}
			debounceTimer.Reset(w.debounce)

		case <-debounceTimer.C:
			select {
			case w.wake <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("file watcher error", "error", err)
		}
	}
}

// ignored reports whether any component of path below root is ignored.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		rel = path
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, ignore := range w.ignorePaths {
			if part == ignore {
				return true
			}
		}
	}
	return false
}
