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

// DefaultDebounceInterval is how long the watcher waits after the last
// observed change before reloading, so editors that write in several steps
// trigger a single reload.
const DefaultDebounceInterval = 200 * time.Millisecond

// Watcher watches a configuration file for changes and triggers reloads.
// It implements debouncing to prevent reload storms.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the configuration file at path.
func NewWatcher(path string, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		debounce: DefaultDebounceInterval,
		logger:   logger.With("component", "config.watcher"),
	}
}

// Watch blocks, reloading the configuration after each change to the watched
// file and invoking onReload with the result. A file that fails to load or
// validate is logged and skipped; the previous configuration stays in effect.
// Watch returns when ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// rename-based atomic writes (the common editor and deploy pattern) are
// observed.
func (w *Watcher) Watch(ctx context.Context, onReload func(*Config)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("config watcher started", "path", w.path)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reload(onReload)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(onReload func(*Config)) {
	cfg, err := LoadConfigWithEnvOverrides(w.path)
	if err != nil {
		w.logger.Error("config reload failed, keeping previous configuration",
			"path", w.path,
			"error", err,
		)
		return
	}

	w.logger.Info("configuration reloaded", "path", w.path)
	onReload(cfg)
}
