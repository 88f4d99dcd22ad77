// Package watcher reports when the catalog file changes after the index was built.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// CatalogWatcher watches a single catalog file. The index is never rebuilt online, so a change
// only marks the loaded catalog as stale until the process restarts.
type CatalogWatcher struct {
	path       string
	onChange   func(path string, op fsnotify.Op)
	debounce   time.Duration
	watcher    *fsnotify.Watcher
	mu         sync.Mutex
	timer      *time.Timer
	stale      bool
	lastChange time.Time
	done       chan struct{}
	started    bool
	stopOnce   sync.Once
	logger     *zap.Logger
}

// WatcherOption configures a CatalogWatcher.
type WatcherOption func(*CatalogWatcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) WatcherOption {
	return func(w *CatalogWatcher) { w.logger = l }
}

// WithDebounce sets how long events are coalesced before a change is reported.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *CatalogWatcher) { w.debounce = d }
}

// WithOnChange sets a callback invoked once per debounced change.
func WithOnChange(fn func(path string, op fsnotify.Op)) WatcherOption {
	return func(w *CatalogWatcher) { w.onChange = fn }
}

// NewCatalogWatcher creates a watcher for the catalog file at path.
func NewCatalogWatcher(path string, opts ...WatcherOption) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}
	w := &CatalogWatcher{
		path:     filepath.Clean(abs),
		debounce: defaultDebounce,
		done:     make(chan struct{}),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start starts watching. It runs until ctx is cancelled or Stop is called.
// The parent directory is watched so that editors replacing the file are noticed.
func (w *CatalogWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.watcher = watcher
	w.started = true
	w.logger.Debug("catalog watcher starting", zap.String("path", w.path))
	go w.run(ctx, watcher)
	return nil
}

func (w *CatalogWatcher) run(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("catalog watcher error", zap.Error(err))
			}
		}
	}
}

func (w *CatalogWatcher) handleEvent(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != w.path {
		return
	}
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("catalog watcher event", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	op := ev.Op
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		w.stale = true
		w.lastChange = time.Now()
		onChange := w.onChange
		w.mu.Unlock()
		w.logger.Info("catalog changed on disk; restart to rebuild the index",
			zap.String("path", w.path), zap.String("op", op.String()))
		if onChange != nil {
			onChange(w.path, op)
		}
	})
}

// Stale reports whether the catalog changed since the watcher started, and when.
func (w *CatalogWatcher) Stale() (bool, time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stale, w.lastChange
}

// Path returns the watched catalog path.
func (w *CatalogWatcher) Path() string {
	return w.path
}

// Stop stops the watcher and releases resources.
func (w *CatalogWatcher) Stop() {
	w.mu.Lock()
	if !w.started || w.watcher == nil {
		w.mu.Unlock()
		return
	}
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	_ = w.watcher.Close()
	w.watcher = nil
	w.started = false
	w.mu.Unlock()
	w.stopOnce.Do(func() { close(w.done) })
}
