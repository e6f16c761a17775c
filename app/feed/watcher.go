package feed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// ChangeHandler is told about sources whose file was written or removed.
// config is nil for removed sources.
type ChangeHandler func(name string, config *Config)

// Watcher reloads source configs into a ConfigCache when files in its
// directory change. Rapid writes to one file are debounced.
type Watcher struct {
	cache    *ConfigCache
	onChange ChangeHandler
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

func NewWatcher(cache *ConfigCache, onChange ChangeHandler) *Watcher {
	return &Watcher{
		cache:    cache,
		onChange: onChange,
		debounce: defaultDebounce,
		pending:  make(map[string]time.Time),
	}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.cache.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.cache.Dir(), err)
	}

	slog.Info("Watching source configs", "dir", w.cache.Dir())

	ticker := time.NewTicker(max(w.debounce/3, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("Source watcher error", "error", err)

		case now := <-ticker.C:
			w.flush(now)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !strings.HasSuffix(event.Name, configExt) {
		return
	}
	name := nameFromPath(event.Name)

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.mu.Lock()
		w.pending[name] = time.Now()
		w.mu.Unlock()

	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.mu.Lock()
		delete(w.pending, name)
		w.mu.Unlock()

		if w.cache.Remove(name) {
			slog.Info("Source config removed", "source", name, "file", filepath.Base(event.Name))
			if w.onChange != nil {
				w.onChange(name, nil)
			}
		}
	}
}

// flush reloads sources whose last write is older than the debounce window.
func (w *Watcher) flush(now time.Time) {
	var ready []string

	w.mu.Lock()
	for name, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, name)
			delete(w.pending, name)
		}
	}
	w.mu.Unlock()

	for _, name := range ready {
		config, err := w.cache.LoadConfig(name)
		if err != nil {
			slog.Error("Failed to reload source config", "source", name, "error", err)
			continue
		}

		slog.Info("Source config reloaded", "source", name, "enabled", config.Settings.Enabled)
		if w.onChange != nil {
			w.onChange(name, config)
		}
	}
}
