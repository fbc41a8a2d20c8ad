package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/metrics"
)

// Service is the synchronous core API consumed by the HTTP boundary. It
// owns the scan cache: scanning, pairing, staleness checking, and
// thumbnail generation all hang off it.
type Service struct {
	dir     string
	ttl     time.Duration
	scanner *Scanner
	thumbs  *ThumbnailGenerator

	// Cache state. All three fields are replaced together under mu so a
	// reader can never observe matches from one scan paired with the
	// fingerprint or timestamp of another.
	mu          sync.Mutex
	matches     []FileMatch
	scannedAt   time.Time
	fingerprint string
}

// NewService creates a Service for dir. The directory must exist and be a
// directory; anything else is a startup error, not a per-request one.
func NewService(dir string, ttl time.Duration, thumbs *ThumbnailGenerator) (*Service, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("data directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data directory %s is not a directory", dir)
	}

	return &Service{
		dir:     dir,
		ttl:     ttl,
		scanner: NewScanner(dir),
		thumbs:  thumbs,
	}, nil
}

// Dir returns the data directory the service scans.
func (s *Service) Dir() string {
	return s.dir
}

// ScanFiles returns the paired file listing. With useCache, a cached
// result is returned as long as it is younger than the TTL and the
// directory fingerprint has not changed; either condition failing forces
// a fresh scan. With useCache false a fresh scan always runs.
//
// The whole check-validity, rescan, replace sequence holds one lock, so
// the stored state is always the output of a single coherent scan.
func (s *Service) ScanFiles(useCache bool) ([]FileMatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if useCache && s.cacheValidLocked() {
		logging.Debug("Scan cache hit (%d items)", len(s.matches))
		metrics.ScanCacheHits.Inc()
		return s.matches, nil
	}
	metrics.ScanCacheMisses.Inc()

	return s.rescanLocked()
}

// cacheValidLocked reports whether the stored scan result may be reused.
// The TTL check runs first because fingerprinting costs a directory
// listing; both checks can independently force a rescan.
func (s *Service) cacheValidLocked() bool {
	if s.matches == nil {
		return false
	}

	if time.Since(s.scannedAt) >= s.ttl {
		logging.Debug("Scan cache expired (age %v, ttl %v)", time.Since(s.scannedAt), s.ttl)
		return false
	}

	current, err := Fingerprint(s.dir)
	if err != nil {
		logging.Warn("Fingerprint check failed, treating cache as stale: %v", err)
		return false
	}
	if current != s.fingerprint {
		logging.Debug("Directory fingerprint changed, cache is stale")
		return false
	}

	return true
}

// rescanLocked performs a fresh scan and replaces the cache wholesale.
func (s *Service) rescanLocked() ([]FileMatch, error) {
	start := time.Now()

	pngs, err := s.scanner.ScanImages()
	if err != nil {
		return nil, fmt.Errorf("scanning images: %w", err)
	}
	csvs, err := s.scanner.ScanData()
	if err != nil {
		return nil, fmt.Errorf("scanning data files: %w", err)
	}

	matches := MatchFiles(pngs, csvs)

	fingerprint, err := Fingerprint(s.dir)
	if err != nil {
		return nil, fmt.Errorf("fingerprinting directory: %w", err)
	}

	s.matches = matches
	s.scannedAt = time.Now()
	s.fingerprint = fingerprint

	logging.Info("Scanned %s: %d PNG files (%d with CSV) in %v",
		s.dir, len(matches), countWithCSV(matches), time.Since(start))

	return matches, nil
}

// InvalidateCache drops the cached scan result unconditionally. The next
// ScanFiles call will rescan regardless of TTL or fingerprint.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.matches = nil
	s.scannedAt = time.Time{}
	s.fingerprint = ""

	metrics.ScanCacheInvalidations.Inc()
	logging.Debug("Scan cache invalidated")
}

// Thumbnail returns the cached or freshly generated thumbnail for the
// given source image path.
func (s *Service) Thumbnail(srcPath string) ([]byte, error) {
	return s.thumbs.Thumbnail(srcPath)
}

// CacheStats reports cache state for the stats endpoint and the metrics
// collector.
func (s *Service) CacheStats() CacheStats {
	s.mu.Lock()
	stats := CacheStats{
		IsCached:        s.matches != nil,
		CacheTTLSeconds: s.ttl.Seconds(),
		CachedItems:     len(s.matches),
	}
	if s.matches != nil {
		stats.CacheAgeSeconds = time.Since(s.scannedAt).Seconds()
	}
	s.mu.Unlock()

	stats.ThumbnailCount = s.thumbs.CachedCount()
	return stats
}

func countWithCSV(matches []FileMatch) int {
	n := 0
	for _, m := range matches {
		if m.HasCSV {
			n++
		}
	}
	return n
}

// IsPNG reports whether name has the primary image extension.
func IsPNG(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".png")
}

// IsCSV reports whether name has the companion data extension.
func IsCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
