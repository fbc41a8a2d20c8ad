package gallery

import (
	"sync"
	"time"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/metrics"
	"gallery-viewer/internal/workers"
)

// Warmer periodically pre-generates thumbnails for every PNG in the data
// directory so first page loads hit warm artifacts. Requests never wait
// on the warmer; a request for a cold thumbnail simply generates it
// inline as usual.
type Warmer struct {
	service  *Service
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWarmer creates a Warmer that runs a warm pass every interval.
func NewWarmer(service *Service, interval time.Duration) *Warmer {
	return &Warmer{
		service:  service,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start runs an immediate warm pass and then one per interval, in a
// background goroutine.
func (w *Warmer) Start() {
	go w.loop()
}

// Stop terminates the warm loop and waits for the current pass to finish.
func (w *Warmer) Stop() {
	close(w.stopChan)
	<-w.doneChan
}

func (w *Warmer) loop() {
	defer close(w.doneChan)

	w.warm()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.warm()
		case <-w.stopChan:
			return
		}
	}
}

// warm generates any missing or stale thumbnails using an I/O-sized
// worker pool.
func (w *Warmer) warm() {
	start := time.Now()

	matches, err := w.service.ScanFiles(true)
	if err != nil {
		logging.Warn("Thumbnail warmer: scan failed: %v", err)
		return
	}
	if len(matches) == 0 {
		return
	}

	paths := make(chan string, len(matches))
	for _, m := range matches {
		paths <- m.PNGFile.Path
	}
	close(paths)

	workerCount := workers.ForIO(8)

	var wg sync.WaitGroup
	var failed int64
	var failedMu sync.Mutex

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range paths {
				if _, err := w.service.Thumbnail(path); err != nil {
					logging.Debug("Thumbnail warmer: %s: %v", path, err)
					failedMu.Lock()
					failed++
					failedMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	metrics.WarmerRunsTotal.Inc()
	metrics.WarmerLastRunDuration.Set(time.Since(start).Seconds())

	logging.Info("Thumbnail warm pass: %d files, %d failed, %d workers, %v",
		len(matches), failed, workerCount, time.Since(start))
}
