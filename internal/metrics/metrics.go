package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_viewer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_viewer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_viewer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Scan and cache metrics
var (
	ScanOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_viewer_scan_operations_total",
			Help: "Total number of directory scan operations",
		},
		[]string{"file_type", "status"},
	)

	ScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_viewer_scan_duration_seconds",
			Help:    "Directory scan duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"file_type"},
	)

	ScanFilesFound = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gallery_viewer_scan_files_found",
			Help:    "Number of files returned by scan operations",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"file_type"},
	)

	ScanCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_viewer_scan_cache_hits_total",
			Help: "Total number of scan cache hits",
		},
	)

	ScanCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_viewer_scan_cache_misses_total",
			Help: "Total number of scan cache misses",
		},
	)

	ScanCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_viewer_scan_cache_invalidations_total",
			Help: "Total number of explicit scan cache invalidations",
		},
	)

	ScanCachedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_viewer_scan_cached_items",
			Help: "Number of file pairings in the scan cache",
		},
	)

	ScanCacheAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_viewer_scan_cache_age_seconds",
			Help: "Age of the cached scan result in seconds",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_viewer_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gallery_viewer_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_viewer_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_viewer_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_viewer_thumbnail_cache_count",
			Help: "Number of thumbnail artifacts in the cache directory",
		},
	)
)

// Warmer metrics
var (
	WarmerRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_viewer_warmer_runs_total",
			Help: "Total number of thumbnail warm passes",
		},
	)

	WarmerLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gallery_viewer_warmer_last_run_duration_seconds",
			Help: "Duration of the last thumbnail warm pass in seconds",
		},
	)
)

// Watcher metrics
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gallery_viewer_watcher_events_total",
			Help: "Total number of filesystem watcher events on matched files",
		},
		[]string{"event_type"},
	)

	WatcherErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gallery_viewer_watcher_errors_total",
			Help: "Total number of filesystem watcher errors",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gallery_viewer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
