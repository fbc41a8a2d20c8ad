package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gallery-viewer/internal/gallery"
	"gallery-viewer/internal/handlers"
	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/metrics"
	"gallery-viewer/internal/middleware"
	"gallery-viewer/internal/startup"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	// Initialize the gallery service
	thumbs := gallery.NewThumbnailGenerator(config.ThumbnailDir, config.ThumbnailMaxWidth, config.ThumbnailMaxHeight)
	service, err := gallery.NewService(config.DataDir, config.CacheTTL, thumbs)
	if err != nil {
		startup.LogFatal("Failed to initialize gallery service: %v", err)
	}

	// Background workers
	var watcher *gallery.Watcher
	if config.WatchFiles {
		watcher = gallery.NewWatcher(service)
		watcher.Start()
	}

	var warmer *gallery.Warmer
	if config.WarmThumbnails {
		warmer = gallery.NewWarmer(service, config.ThumbnailInterval)
		warmer.Start()
	}

	// Metrics
	var collector *metrics.Collector
	if config.MetricsEnabled {
		metrics.InitializeMetrics()
		metrics.SetAppInfo(startup.Version, startup.Commit, runtime.Version())
		collector = metrics.NewCollector(serviceStats{service}, 30*time.Second)
		collector.Start()
		go serveMetrics(config.MetricsPort)
	}

	// Initialize handlers and router
	h := handlers.New(service)
	router := setupRouter(h)
	startup.LogHTTPRoutes(router)

	// Middleware chain: metrics innermost, then request logging, CORS
	// outermost so preflight requests short-circuit early.
	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	handler = gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins(config.CORSOrigins),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type"}),
	)(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, watcher, warmer, collector)

	// Start server
	startup.LogServerStarted(config.Port, config.MetricsPort, config.MetricsEnabled, time.Since(startTime))
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func setupRouter(h *handlers.Handlers) *mux.Router {
	r := mux.NewRouter()

	// Health routes
	r.HandleFunc("/", h.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", h.LivenessCheck).Methods("GET", "HEAD")

	// API routes
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", h.ListFiles).Methods("GET")
	api.HandleFunc("/image/{filename}", h.GetImage).Methods("GET")
	api.HandleFunc("/thumbnail/{filename}", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/download/{filename}", h.DownloadCSV).Methods("GET")
	api.HandleFunc("/stats", h.GetStats).Methods("GET")
	api.HandleFunc("/rescan", h.TriggerRescan).Methods("POST")

	return r
}

// serviceStats adapts the gallery service to the metrics collector.
type serviceStats struct {
	service *gallery.Service
}

func (s serviceStats) GetStats() metrics.Stats {
	stats := s.service.CacheStats()
	return metrics.Stats{
		CachedItems:     stats.CachedItems,
		CacheAgeSeconds: stats.CacheAgeSeconds,
		ThumbnailCount:  stats.ThumbnailCount,
	}
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		logging.Error("Metrics server error: %v", err)
	}
}

func handleShutdown(srv *http.Server, watcher *gallery.Watcher, warmer *gallery.Warmer, collector *metrics.Collector) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if watcher != nil {
		startup.LogShutdownStep("Stopping file watcher")
		watcher.Stop()
		startup.LogShutdownStepComplete("File watcher stopped")
	}

	if warmer != nil {
		startup.LogShutdownStep("Stopping thumbnail warmer")
		warmer.Stop()
		startup.LogShutdownStepComplete("Thumbnail warmer stopped")
	}

	if collector != nil {
		startup.LogShutdownStep("Stopping metrics collector")
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	startup.LogShutdownComplete()
}
