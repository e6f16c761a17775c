package feed

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recordedChange struct {
	name    string
	removed bool
}

func TestWatcher_ReloadsAndRemoves(t *testing.T) {
	tempDir := t.TempDir()
	cache := NewConfigCache(tempDir)

	var mu sync.Mutex
	var changes []recordedChange
	watcher := NewWatcher(cache, func(name string, config *Config) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, recordedChange{name: name, removed: config == nil})
	})
	watcher.debounce = 30 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(tempDir, "weekly.yml")
	if err := os.WriteFile(path, []byte("url: \"https://example.com/weekly.csv\"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		_, err := cache.GetConfig("weekly")
		return err == nil
	})

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool {
		return cache.GetConfigCount() == 0
	})

	mu.Lock()
	defer mu.Unlock()
	if len(changes) < 2 {
		t.Fatalf("Expected at least 2 change notifications, got %v", changes)
	}
	if changes[0].name != "weekly" || changes[0].removed {
		t.Errorf("Expected first change to load 'weekly', got %+v", changes[0])
	}
	last := changes[len(changes)-1]
	if last.name != "weekly" || !last.removed {
		t.Errorf("Expected last change to remove 'weekly', got %+v", last)
	}
}

func TestWatcher_IgnoresOtherFilesAndInvalidConfigs(t *testing.T) {
	tempDir := t.TempDir()
	cache := NewConfigCache(tempDir)
	watcher := NewWatcher(cache, nil)
	watcher.debounce = 0

	watcher.pending["broken"] = time.Now()
	writeConfig(t, tempDir, "broken.yml", "settings:\n  enabled: true\n")
	watcher.flush(time.Now())

	if cache.GetConfigCount() != 0 {
		t.Errorf("Expected invalid config to be skipped, got %d configs", cache.GetConfigCount())
	}
	if len(watcher.pending) != 0 {
		t.Errorf("Expected pending reloads to be drained, got %v", watcher.pending)
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	cache := NewConfigCache(filepath.Join(t.TempDir(), "missing"))
	watcher := NewWatcher(cache, nil)

	if err := watcher.Run(context.Background()); err == nil {
		t.Error("Expected error when the sources directory does not exist")
	}
}

func waitFor(t *testing.T, condition func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}
