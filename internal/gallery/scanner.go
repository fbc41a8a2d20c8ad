package gallery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/metrics"
)

// Scanner enumerates PNG and CSV files in a single data directory.
type Scanner struct {
	dir string
}

// NewScanner creates a Scanner for the given directory.
func NewScanner(dir string) *Scanner {
	return &Scanner{dir: dir}
}

// ScanImages returns a FileInfo for every PNG file in the directory.
// Ordering is not guaranteed; callers must sort or index themselves.
func (s *Scanner) ScanImages() ([]FileInfo, error) {
	return s.scanByExtension(".png", FileTypePNG)
}

// ScanData returns a FileInfo for every CSV file in the directory.
func (s *Scanner) ScanData() ([]FileInfo, error) {
	return s.scanByExtension(".csv", FileTypeCSV)
}

// scanByExtension lists files whose extension matches ext, comparing the
// extension case-insensitively but never the rest of the name. Matches
// resolving to the same canonical path are emitted once, so a
// case-insensitive filesystem surfacing the same inode as both a.png and
// A.PNG yields a single record.
func (s *Scanner) scanByExtension(ext string, fileType FileType) ([]FileInfo, error) {
	start := time.Now()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		metrics.ScanOperationsTotal.WithLabelValues(string(fileType), "error").Inc()
		return nil, fmt.Errorf("failed to read directory %s: %w", s.dir, err)
	}

	seen := make(map[string]struct{})
	var files []FileInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())

		canonical, err := filepath.EvalSymlinks(path)
		if err != nil {
			// Entry vanished between listing and resolution; skip it.
			logging.Debug("Scanner: skipping %s: %v", path, err)
			continue
		}
		if _, dup := seen[canonical]; dup {
			logging.Debug("Scanner: duplicate match for %s, already seen as %s", path, canonical)
			continue
		}
		seen[canonical] = struct{}{}

		info, err := entry.Info()
		if err != nil {
			logging.Debug("Scanner: failed to stat %s: %v", path, err)
			continue
		}

		files = append(files, newFileInfo(path, info, fileType))
	}

	metrics.ScanOperationsTotal.WithLabelValues(string(fileType), "success").Inc()
	metrics.ScanDuration.WithLabelValues(string(fileType)).Observe(time.Since(start).Seconds())
	metrics.ScanFilesFound.WithLabelValues(string(fileType)).Observe(float64(len(files)))

	return files, nil
}
