package gallery

import (
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestIsMatchedFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/data/a.png", true},
		{"/data/A.PNG", true},
		{"/data/a.csv", true},
		{"/data/notes.txt", false},
		{"/data/.hidden.png", false},
		{"/data/.thumbnails/a_thumb.jpg", false},
		{"/data/archive.png.bak", false},
	}

	for _, tt := range tests {
		if got := isMatchedFile(tt.path); got != tt.want {
			t.Errorf("isMatchedFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestEventType(t *testing.T) {
	tests := []struct {
		op   fsnotify.Op
		want string
	}{
		{fsnotify.Create, "create"},
		{fsnotify.Write, "write"},
		{fsnotify.Remove, "remove"},
		{fsnotify.Rename, "rename"},
		{fsnotify.Chmod, "chmod"},
		{0, "unknown"},
	}

	for _, tt := range tests {
		if got := eventType(tt.op); got != tt.want {
			t.Errorf("eventType(%v) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

// TestWatcherInvalidatesOnChange populates the cache, writes a new PNG,
// and waits for the watcher to drop the cache.
func TestWatcherInvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", "png-a")
	service := newTestService(t, dir, time.Hour)

	if _, err := service.ScanFiles(true); err != nil {
		t.Fatalf("ScanFiles() error: %v", err)
	}
	if !service.CacheStats().IsCached {
		t.Fatal("cache not populated")
	}

	watcher := NewWatcher(service)
	watcher.Start()
	defer watcher.Stop()

	// Give the watch loop a moment to register before touching the dir.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, dir, "b.png", "png-b")

	deadline := time.After(3 * time.Second)
	for service.CacheStats().IsCached {
		select {
		case <-deadline:
			t.Fatal("cache still populated after file change")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

// TestWatcherIgnoresUnmatchedFiles checks that clutter in the data
// directory does not flush the cache.
func TestWatcherIgnoresUnmatchedFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", "png-a")
	service := newTestService(t, dir, time.Hour)

	if _, err := service.ScanFiles(true); err != nil {
		t.Fatalf("ScanFiles() error: %v", err)
	}

	watcher := NewWatcher(service)
	watcher.Start()
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	writeFile(t, dir, "notes.txt", "scribbles")
	writeFile(t, dir, ".hidden.png", "dotfile")

	time.Sleep(300 * time.Millisecond)

	if !service.CacheStats().IsCached {
		t.Error("cache flushed by unmatched file changes")
	}
}

func TestWatcherStopTerminates(t *testing.T) {
	dir := t.TempDir()
	service := newTestService(t, dir, time.Hour)

	watcher := NewWatcher(service)
	watcher.Start()

	done := make(chan struct{})
	go func() {
		watcher.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not return")
	}
}
