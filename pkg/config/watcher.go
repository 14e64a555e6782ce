package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads the configuration singleton whenever the config file
// changes on disk. It watches the file's directory rather than the file
// itself: editors and config-management tools typically replace a
// config file via write-then-rename, which fsnotify observes as the
// watched inode disappearing, not as a write to it.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	fsw *fsnotify.Watcher

	mu      sync.Mutex
	timer   *time.Timer
	stopped chan struct{}
}

// NewWatcher creates a Watcher for the config file at path. debounce
// coalesces a burst of filesystem events (e.g. the write-then-rename
// above) into a single reload attempt.
func NewWatcher(path string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	dir := filepath.Dir(path)
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config watcher: watching %q: %w", dir, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
		stopped:  make(chan struct{}),
	}, nil
}

// Run blocks, reloading the configuration on every debounced change to
// the watched file, until ctx is cancelled or Stop is called. A reload
// failure is logged and the previously active configuration keeps
// serving; Run never returns because of a bad edit.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.stopped:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			w.scheduleReload()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if err := Reload(w.path); err != nil {
			w.logger.Warn("config reload failed, keeping previous configuration",
				"path", w.path, "error", err)
			return
		}
		w.logger.Info("configuration reloaded", "path", w.path)
	})
}

// Stop terminates Run and releases the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	close(w.stopped)
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fsw.Close()
}
