package metrics

import (
	"time"

	"gallery-viewer/internal/logging"
)

// StatsProvider supplies current cache statistics for gauge export.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the values the collector publishes.
type Stats struct {
	CachedItems     int
	CacheAgeSeconds float64
	ThumbnailCount  int
}

// Collector periodically pulls stats from a provider and updates the
// corresponding gauges.
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()

	ScanCachedItems.Set(float64(stats.CachedItems))
	ScanCacheAge.Set(stats.CacheAgeSeconds)
	ThumbnailCacheCount.Set(float64(stats.ThumbnailCount))

	logging.Debug("Metrics collected: cached=%d, age=%.1fs, thumbnails=%d",
		stats.CachedItems, stats.CacheAgeSeconds, stats.ThumbnailCount)
}
