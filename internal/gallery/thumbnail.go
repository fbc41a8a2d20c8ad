package gallery

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gallery-viewer/internal/logging"
	"gallery-viewer/internal/metrics"

	"github.com/disintegration/imaging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// jpegQuality is the fixed encode quality for preview thumbnails.
const jpegQuality = 85

// ThumbnailGenerator produces downscaled JPEG previews of source images,
// persisted to a sidecar cache directory. Artifacts are keyed by the
// source file's base name and refreshed whenever the source's
// modification time advances past the artifact's.
type ThumbnailGenerator struct {
	cacheDir  string
	maxWidth  int
	maxHeight int
	mu        sync.Mutex
}

// NewThumbnailGenerator creates a generator writing artifacts to
// cacheDir, which must already exist and be writable.
func NewThumbnailGenerator(cacheDir string, maxWidth, maxHeight int) *ThumbnailGenerator {
	logging.Debug("ThumbnailGenerator: cache dir %s, max %dx%d", cacheDir, maxWidth, maxHeight)
	return &ThumbnailGenerator{
		cacheDir:  cacheDir,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}
}

// Thumbnail returns the JPEG thumbnail bytes for srcPath, generating and
// caching the artifact if it is missing or older than the source. The
// fast path returns the cached bytes without decoding the source.
func (t *ThumbnailGenerator) Thumbnail(srcPath string) ([]byte, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source image %s: %w", filepath.Base(srcPath), ErrNotFound)
		}
		return nil, fmt.Errorf("failed to stat source image %s: %w", filepath.Base(srcPath), err)
	}

	cachePath := t.cachePath(srcPath)

	if data, ok := t.readFresh(cachePath, srcInfo.ModTime()); ok {
		logging.Debug("Thumbnail cache hit: %s", srcPath)
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Another request may have generated it while we waited on the lock.
	if data, ok := t.readFresh(cachePath, srcInfo.ModTime()); ok {
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	data, err := t.generate(srcPath, cachePath)
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()

	return data, nil
}

// cachePath derives the deterministic artifact location for a source
// image: <stem>_thumb.jpg inside the cache directory.
func (t *ThumbnailGenerator) cachePath(srcPath string) string {
	base := filepath.Base(srcPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(t.cacheDir, stem+"_thumb.jpg")
}

// readFresh returns the cached artifact bytes if the artifact exists and
// is at least as new as the source.
func (t *ThumbnailGenerator) readFresh(cachePath string, srcModTime time.Time) ([]byte, bool) {
	info, err := os.Stat(cachePath)
	if err != nil || info.ModTime().Before(srcModTime) {
		return nil, false
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	return data, true
}

// generate decodes, flattens, resizes, and encodes the source image, then
// persists the artifact. The write's mtime becomes the freshness marker.
func (t *ThumbnailGenerator) generate(srcPath, cachePath string) ([]byte, error) {
	start := time.Now()
	logging.Debug("Thumbnail generating: %s", srcPath)

	img, err := decodeImage(srcPath)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", filepath.Base(srcPath), err)
	}

	thumb := imaging.Fit(flattenOpaque(img), t.maxWidth, t.maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail for %s: %w", filepath.Base(srcPath), err)
	}

	if err := os.WriteFile(cachePath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to cache thumbnail for %s: %w", filepath.Base(srcPath), err)
	}

	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	logging.Debug("Thumbnail cached: %s (%d bytes in %v)", cachePath, buf.Len(), time.Since(start))

	return buf.Bytes(), nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, err
	}

	logging.Debug("Decoded %s image: %s", format, path)
	return img, nil
}

// flattenOpaque composites images carrying transparency (alpha channels,
// or palettes with transparent entries) onto an opaque white background,
// since JPEG cannot represent transparency. Opaque images pass through
// untouched. The overlay expands paletted images to full color before
// compositing, so indexed PNGs come out with a clean background instead
// of a black one.
func flattenOpaque(img image.Image) image.Image {
	if op, ok := img.(interface{ Opaque() bool }); ok && op.Opaque() {
		return img
	}

	bounds := img.Bounds()
	background := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(background, img, image.Pt(0, 0), 1.0)
}

// CachedCount returns the number of artifacts currently in the cache
// directory.
func (t *ThumbnailGenerator) CachedCount() int {
	entries, err := os.ReadDir(t.cacheDir)
	if err != nil {
		return 0
	}

	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), "_thumb.jpg") {
			n++
		}
	}
	return n
}
