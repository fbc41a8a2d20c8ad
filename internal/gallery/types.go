package gallery

import (
	"os"
	"time"
)

// FileType identifies the role of a file in the gallery.
type FileType string

const (
	// FileTypePNG is a primary image file
	FileTypePNG FileType = "png"
	// FileTypeCSV is a companion tabular data file
	FileTypeCSV FileType = "csv"
)

// FileInfo describes a single file found during a scan. It is built from
// one stat call and never updated afterwards.
type FileInfo struct {
	Name         string    `json:"name"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
	FileType     FileType  `json:"file_type"`
}

// newFileInfo builds a FileInfo from a stat result.
func newFileInfo(path string, info os.FileInfo, fileType FileType) FileInfo {
	return FileInfo{
		Name:         info.Name(),
		Path:         path,
		Size:         info.Size(),
		LastModified: info.ModTime(),
		FileType:     fileType,
	}
}

// FileMatch pairs a PNG file with its like-named CSV companion, if one
// exists. HasCSV is always consistent with CSVFile being non-nil.
type FileMatch struct {
	PNGFile FileInfo  `json:"png_file"`
	CSVFile *FileInfo `json:"csv_file"`
	HasCSV  bool      `json:"has_csv"`
}

// CacheStats reports the state of the scan cache and thumbnail cache.
type CacheStats struct {
	IsCached        bool    `json:"is_cached"`
	CacheAgeSeconds float64 `json:"cache_age_seconds"`
	CacheTTLSeconds float64 `json:"cache_ttl_seconds"`
	CachedItems     int     `json:"cached_items"`
	ThumbnailCount  int     `json:"thumbnail_count"`
}
