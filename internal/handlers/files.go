package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"gallery-viewer/internal/gallery"
	"gallery-viewer/internal/logging"

	"github.com/gorilla/mux"
)

// FileListResponse is the body of GET /api/files.
type FileListResponse struct {
	Files      []gallery.FileMatch `json:"files"`
	TotalCount int                 `json:"total_count"`
}

// ListFiles returns the paired file listing. A refresh=1 query parameter
// bypasses the scan cache.
func (h *Handlers) ListFiles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	useCache := true
	switch r.URL.Query().Get("refresh") {
	case "1", "true":
		useCache = false
	}

	matches, err := h.service.ScanFiles(useCache)
	if err != nil {
		logging.Error("Error scanning files: %v", err)
		writeJSONError(w, "Failed to scan files", err.Error(), http.StatusInternalServerError)
		return
	}

	logging.Debug("ListFiles: %d PNG files in %v", len(matches), time.Since(start))

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, FileListResponse{
		Files:      matches,
		TotalCount: len(matches),
	})
}

// GetImage serves a PNG file from the data directory.
func (h *Handlers) GetImage(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	path, ok := h.resolveFile(w, filename, gallery.IsPNG, "Only PNG files are allowed")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "image/png")
	http.ServeFile(w, r, path)
}

// GetThumbnail serves the cached or freshly generated thumbnail for a
// PNG file.
func (h *Handlers) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	path, ok := h.resolveFile(w, filename, gallery.IsPNG, "Only PNG files are allowed")
	if !ok {
		return
	}

	thumb, err := h.service.Thumbnail(path)
	if err != nil {
		logging.Error("Error serving thumbnail %s: %v", filename, err)
		writeJSONError(w, "Internal server error", "Failed to generate thumbnail", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(thumb); err != nil {
		logging.Error("failed to write thumbnail response: %v", err)
	}
}

// DownloadCSV serves a CSV file as an attachment download.
func (h *Handlers) DownloadCSV(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	path, ok := h.resolveFile(w, filename, gallery.IsCSV, "Only CSV files are allowed")
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(path)))
	http.ServeFile(w, r, path)
}

// GetStats reports scan cache and thumbnail cache statistics.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, h.service.CacheStats())
}

// TriggerRescan drops the scan cache and performs a fresh scan.
func (h *Handlers) TriggerRescan(w http.ResponseWriter, _ *http.Request) {
	h.service.InvalidateCache()

	matches, err := h.service.ScanFiles(false)
	if err != nil {
		logging.Error("Error rescanning files: %v", err)
		writeJSONError(w, "Failed to scan files", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{
		"status":      "rescanned",
		"total_count": len(matches),
	})
}

// resolveFile validates the untrusted filename, checks existence, and
// checks the extension, writing the appropriate error response itself.
// The validation failure is reported as a generic forbidden so the
// response discloses nothing about the filesystem. Check order follows
// the API contract: forbidden, then not found, then wrong type.
func (h *Handlers) resolveFile(w http.ResponseWriter, filename string, extOK func(string) bool, extMessage string) (string, bool) {
	path, err := gallery.ValidateFilename(h.dataDir, filename)
	if err != nil {
		logging.Warn("Rejected filename %q: %v", filename, err)
		writeJSONError(w, "Forbidden", "Access to this resource is forbidden", http.StatusForbidden)
		return "", false
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSONError(w, "Resource not found", fmt.Sprintf("File not found: %s", filename), http.StatusNotFound)
		} else {
			logging.Error("Error accessing %s: %v", filename, err)
			writeJSONError(w, "Internal server error", "Failed to access file", http.StatusInternalServerError)
		}
		return "", false
	}

	if !extOK(filename) {
		logging.Debug("Rejected %s: %v", filename, gallery.ErrWrongType)
		writeJSONError(w, "Bad request", extMessage, http.StatusBadRequest)
		return "", false
	}

	return path, true
}
