package gallery

import (
	"path/filepath"
	"strings"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/metrics"

	"github.com/fsnotify/fsnotify"
)

// Watcher invalidates the scan cache as soon as a matched file changes,
// so the TTL rarely has to do the work of noticing edits. The cache's
// TTL and fingerprint checks remain authoritative; the watcher is only
// an eagerness optimization.
type Watcher struct {
	service  *Service
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWatcher creates a Watcher that invalidates service's cache on
// changes to PNG or CSV files in its data directory.
func NewWatcher(service *Service) *Watcher {
	return &Watcher{
		service:  service,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins watching in a background goroutine. Failure to set up the
// watcher is logged, not fatal: the cache still self-heals via TTL and
// fingerprint checks.
func (w *Watcher) Start() {
	go w.run()
}

// Stop terminates the watch loop and waits for it to exit.
func (w *Watcher) Stop() {
	close(w.stopChan)
	<-w.doneChan
}

func (w *Watcher) run() {
	defer close(w.doneChan)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("Failed to create file watcher: %v", err)
		metrics.WatcherErrors.Inc()
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	if err := watcher.Add(w.service.Dir()); err != nil {
		logging.Error("Failed to watch %s: %v", w.service.Dir(), err)
		metrics.WatcherErrors.Inc()
		return
	}
	logging.Debug("Watcher started on %s", w.service.Dir())

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("Watcher error: %v", err)
			metrics.WatcherErrors.Inc()

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isMatchedFile(event.Name) {
		return
	}

	metrics.WatcherEventsTotal.WithLabelValues(eventType(event.Op)).Inc()
	logging.Debug("Watcher: %s %s, invalidating scan cache", eventType(event.Op), event.Name)
	w.service.InvalidateCache()
}

// isMatchedFile reports whether the path names a file the scanner would
// pick up. Thumbnail artifacts and other clutter never invalidate.
func isMatchedFile(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".png" || ext == ".csv"
}

func eventType(op fsnotify.Op) string {
	switch {
	case op&fsnotify.Create != 0:
		return "create"
	case op&fsnotify.Write != 0:
		return "write"
	case op&fsnotify.Remove != 0:
		return "remove"
	case op&fsnotify.Rename != 0:
		return "rename"
	case op&fsnotify.Chmod != 0:
		return "chmod"
	default:
		return "unknown"
	}
}
