package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gallery-viewer/internal/logging"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Config holds all application configuration
type Config struct {
	DataDir            string
	Port               string
	MetricsPort        string
	CacheTTL           time.Duration
	ThumbnailMaxWidth  int
	ThumbnailMaxHeight int
	ThumbnailInterval  time.Duration
	WatchFiles         bool
	WarmThumbnails     bool
	CORSOrigins        []string
	LogHealthChecks    bool
	MetricsEnabled     bool

	// Derived paths
	ThumbnailDir string
}

// LoadConfig loads and validates configuration from environment
// variables, with a .env file auto-loaded when present.
func LoadConfig() (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	dataDir := getEnv("DATA_DIR", "./data")
	port := getEnv("PORT", "9000")
	metricsPort := getEnv("METRICS_PORT", "9090")
	cacheTTLStr := getEnv("CACHE_TTL", "300")
	maxWidth := getEnvInt("THUMBNAIL_MAX_WIDTH", 400)
	maxHeight := getEnvInt("THUMBNAIL_MAX_HEIGHT", 400)
	thumbnailIntervalStr := getEnv("THUMBNAIL_INTERVAL", "6h")
	watchFiles := getEnvBool("WATCH_FILES", true)
	warmThumbnails := getEnvBool("WARM_THUMBNAILS", true)
	corsOrigins := splitOrigins(getEnv("CORS_ORIGINS", "*"))
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)

	logging.Info("  DATA_DIR:             %s", dataDir)
	logging.Info("  PORT:                 %s", port)
	logging.Info("  METRICS_PORT:         %s", metricsPort)
	logging.Info("  METRICS_ENABLED:      %v", metricsEnabled)
	logging.Info("  CACHE_TTL:            %s", cacheTTLStr)
	logging.Info("  THUMBNAIL_MAX_WIDTH:  %d", maxWidth)
	logging.Info("  THUMBNAIL_MAX_HEIGHT: %d", maxHeight)
	logging.Info("  THUMBNAIL_INTERVAL:   %s", thumbnailIntervalStr)
	logging.Info("  WATCH_FILES:          %v", watchFiles)
	logging.Info("  WARM_THUMBNAILS:      %v", warmThumbnails)
	logging.Info("  CORS_ORIGINS:         %s", strings.Join(corsOrigins, ","))
	logging.Info("  LOG_HEALTH_CHECKS:    %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())

	cacheTTL, err := parseTTL(cacheTTLStr)
	if err != nil {
		logging.Warn("  Invalid CACHE_TTL %q, using default: 300s", cacheTTLStr)
		cacheTTL = 300 * time.Second
	}

	thumbnailInterval, err := time.ParseDuration(thumbnailIntervalStr)
	if err != nil {
		logging.Warn("  Invalid THUMBNAIL_INTERVAL, using default: 6h")
		thumbnailInterval = 6 * time.Hour
	}

	if maxWidth <= 0 || maxHeight <= 0 {
		logging.Warn("  Invalid thumbnail dimensions %dx%d, using default: 400x400", maxWidth, maxHeight)
		maxWidth, maxHeight = 400, 400
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	dataDir, err = filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	logging.Info("  Data directory (absolute): %s", dataDir)

	config := &Config{
		DataDir:            dataDir,
		Port:               port,
		MetricsPort:        metricsPort,
		CacheTTL:           cacheTTL,
		ThumbnailMaxWidth:  maxWidth,
		ThumbnailMaxHeight: maxHeight,
		ThumbnailInterval:  thumbnailInterval,
		WatchFiles:         watchFiles,
		WarmThumbnails:     warmThumbnails,
		CORSOrigins:        corsOrigins,
		LogHealthChecks:    logHealthChecks,
		MetricsEnabled:     metricsEnabled,
		ThumbnailDir:       filepath.Join(dataDir, ".thumbnails"),
	}

	// The data directory is created when missing; an unusable one is the
	// single fatal startup condition.
	if err := ensureDirectory(dataDir, "data"); err != nil {
		return nil, fmt.Errorf("data directory error: %w", err)
	}

	if err := ensureDirectory(config.ThumbnailDir, "thumbnail"); err != nil {
		return nil, fmt.Errorf("thumbnail directory error: %w", err)
	}

	logging.Debug("  Testing thumbnail directory write access...")
	if err := testWriteAccess(config.ThumbnailDir); err != nil {
		return nil, fmt.Errorf("thumbnail directory is not writable: %w", err)
	}
	logging.Info("  [OK] Thumbnail directory is writable")

	return config, nil
}

// parseTTL accepts either a Go duration string ("5m") or a plain number
// of seconds ("300"), matching the deployment convention of a
// seconds-valued CACHE_TTL.
func parseTTL(value string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, fmt.Errorf("negative TTL: %d", seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative TTL: %s", d)
	}
	return d, nil
}

func splitOrigins(value string) []string {
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return origins
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: pathTemplate})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))
		for _, route := range routes {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}

	logging.Info("  HTTP logging enabled")
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(port, metricsPort string, metricsEnabled bool, startupDuration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:  %v", startupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application: http://0.0.0.0:%s", port)
	if metricsEnabled {
		logging.Info("    Metrics:     http://0.0.0.0:%s/metrics", metricsPort)
	} else {
		logging.Info("    Metrics:     DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
   ______       ____                    _    ___
  / ____/___ _ / / /___  _______  __   | |  / (_)__ _      _____  _____
 / / __/ __ '// / / _ \/ ___/ / / /   | | / / / _ \ | /| / / _ \/ ___/
/ /_/ / /_/ // / /  __/ /  / /_/ /    | |/ / /  __/ |/ |/ /  __/ /
\____/\__,_//_/_/\___/_/   \__, /     |___/_/\___/|__/|__/\___/_/
                          /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Write access was confirmed regardless
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
