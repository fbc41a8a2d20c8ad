package metrics

// InitializeMetrics pre-populates expected label combinations so every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, fileType := range []string{"png", "csv"} {
		for _, status := range []string{"success", "error"} {
			ScanOperationsTotal.WithLabelValues(fileType, status)
		}
		ScanDuration.WithLabelValues(fileType)
		ScanFilesFound.WithLabelValues(fileType)
	}

	for _, status := range []string{"success", "error"} {
		ThumbnailGenerationsTotal.WithLabelValues(status)
	}

	for _, eventType := range []string{"create", "write", "remove", "rename", "chmod", "unknown"} {
		WatcherEventsTotal.WithLabelValues(eventType)
	}
}
