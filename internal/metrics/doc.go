// Package metrics defines the Prometheus metrics exported by the gallery
// viewer: HTTP request counts and latencies, directory scan and cache
// behavior, thumbnail generation, and background watcher/warmer activity.
//
// Metrics are registered at import time via promauto. InitializeMetrics
// pre-populates label combinations so dashboards see every series from
// the first scrape, and Collector periodically exports cache gauges.
package metrics
