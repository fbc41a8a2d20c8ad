package gallery

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", name, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", name, err)
	}
	return path
}

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func newTestGenerator(t *testing.T) (*ThumbnailGenerator, string, string) {
	t.Helper()

	dir := t.TempDir()
	cacheDir := filepath.Join(dir, ".thumbnails")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatalf("Failed to create cache dir: %v", err)
	}
	return NewThumbnailGenerator(cacheDir, 400, 400), dir, cacheDir
}

func TestThumbnail_GeneratesScaledJPEG(t *testing.T) {
	gen, dir, cacheDir := newTestGenerator(t)
	src := writePNG(t, dir, "chart.png", solidImage(800, 600, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

	data, err := gen.Thumbnail(src)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode thumbnail: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("thumbnail format = %q, want jpeg", format)
	}
	if cfg.Width > 400 || cfg.Height > 400 {
		t.Errorf("thumbnail size = %dx%d, want within 400x400", cfg.Width, cfg.Height)
	}
	if cfg.Width != 400 || cfg.Height != 300 {
		t.Errorf("thumbnail size = %dx%d, want 400x300 (aspect preserved)", cfg.Width, cfg.Height)
	}

	if _, err := os.Stat(filepath.Join(cacheDir, "chart_thumb.jpg")); err != nil {
		t.Errorf("cached artifact missing: %v", err)
	}
}

func TestThumbnail_SmallSourceNotUpscaled(t *testing.T) {
	gen, dir, _ := newTestGenerator(t)
	src := writePNG(t, dir, "small.png", solidImage(100, 50, color.NRGBA{R: 200, G: 0, B: 0, A: 255}))

	data, err := gen.Thumbnail(src)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode thumbnail: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("thumbnail size = %dx%d, want 100x50 (no upscale)", cfg.Width, cfg.Height)
	}
}

// TestThumbnail_ServesCachedArtifact proves the fast path reads the
// artifact back instead of re-decoding the source: a sentinel written
// over the cached file, with a fresh mtime, is what the next call
// returns.
func TestThumbnail_ServesCachedArtifact(t *testing.T) {
	gen, dir, cacheDir := newTestGenerator(t)
	src := writePNG(t, dir, "chart.png", solidImage(64, 64, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

	if _, err := gen.Thumbnail(src); err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}

	sentinel := []byte("sentinel, not a real jpeg")
	artifact := filepath.Join(cacheDir, "chart_thumb.jpg")
	if err := os.WriteFile(artifact, sentinel, 0o644); err != nil {
		t.Fatalf("Failed to overwrite artifact: %v", err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(artifact, future, future); err != nil {
		t.Fatalf("Failed to set artifact mtime: %v", err)
	}

	data, err := gen.Thumbnail(src)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if !bytes.Equal(data, sentinel) {
		t.Error("second Thumbnail() regenerated instead of serving the cached artifact")
	}
}

// TestThumbnail_RegeneratesWhenSourceNewer ages the artifact behind the
// source and expects a fresh generation.
func TestThumbnail_RegeneratesWhenSourceNewer(t *testing.T) {
	gen, dir, cacheDir := newTestGenerator(t)
	src := writePNG(t, dir, "chart.png", solidImage(64, 64, color.NRGBA{R: 10, G: 20, B: 30, A: 255}))

	if _, err := gen.Thumbnail(src); err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}

	sentinel := []byte("stale sentinel")
	artifact := filepath.Join(cacheDir, "chart_thumb.jpg")
	if err := os.WriteFile(artifact, sentinel, 0o644); err != nil {
		t.Fatalf("Failed to overwrite artifact: %v", err)
	}
	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(artifact, past, past); err != nil {
		t.Fatalf("Failed to set artifact mtime: %v", err)
	}

	data, err := gen.Thumbnail(src)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}
	if bytes.Equal(data, sentinel) {
		t.Error("stale artifact served instead of regenerating")
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("regenerated thumbnail does not decode: %v", err)
	}
}

// TestThumbnail_FlattensTransparency renders transparent sources and
// expects a white background in the JPEG, both for alpha-channel images
// and for paletted images with a transparent entry.
func TestThumbnail_FlattensTransparency(t *testing.T) {
	transparent := image.NewNRGBA(image.Rect(0, 0, 32, 32))

	paletted := image.NewPaletted(image.Rect(0, 0, 32, 32), color.Palette{
		color.NRGBA{R: 0, G: 0, B: 0, A: 0},
		color.NRGBA{R: 255, G: 0, B: 0, A: 255},
	})
	// Every pixel stays at index 0, the transparent entry.

	tests := []struct {
		name string
		img  image.Image
	}{
		{"alpha channel", transparent},
		{"transparent palette", paletted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, dir, _ := newTestGenerator(t)
			src := writePNG(t, dir, "clear.png", tt.img)

			data, err := gen.Thumbnail(src)
			if err != nil {
				t.Fatalf("Thumbnail() error: %v", err)
			}

			img, err := jpeg.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("Failed to decode thumbnail: %v", err)
			}

			r, g, b, _ := img.At(16, 16).RGBA()
			const nearWhite = 0xF000
			if r < nearWhite || g < nearWhite || b < nearWhite {
				t.Errorf("center pixel = (%d, %d, %d), want near-white background", r>>8, g>>8, b>>8)
			}
		})
	}
}

func TestThumbnail_OpaqueSourceKeepsColor(t *testing.T) {
	gen, dir, _ := newTestGenerator(t)
	src := writePNG(t, dir, "red.png", solidImage(32, 32, color.NRGBA{R: 200, G: 0, B: 0, A: 255}))

	data, err := gen.Thumbnail(src)
	if err != nil {
		t.Fatalf("Thumbnail() error: %v", err)
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode thumbnail: %v", err)
	}

	r, g, b, _ := img.At(16, 16).RGBA()
	if r>>8 < 150 || g>>8 > 80 || b>>8 > 80 {
		t.Errorf("center pixel = (%d, %d, %d), want red", r>>8, g>>8, b>>8)
	}
}

func TestThumbnail_MissingSource(t *testing.T) {
	gen, dir, _ := newTestGenerator(t)

	_, err := gen.Thumbnail(filepath.Join(dir, "absent.png"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Thumbnail() error = %v, want ErrNotFound", err)
	}
}

func TestThumbnail_CorruptSource(t *testing.T) {
	gen, dir, cacheDir := newTestGenerator(t)
	src := writeFile(t, dir, "broken.png", "not an image at all")

	if _, err := gen.Thumbnail(src); err == nil {
		t.Error("Thumbnail() on corrupt source succeeded, want error")
	}

	if _, err := os.Stat(filepath.Join(cacheDir, "broken_thumb.jpg")); !os.IsNotExist(err) {
		t.Error("corrupt source left an artifact in the cache")
	}
}

func TestCachedCount(t *testing.T) {
	gen, dir, cacheDir := newTestGenerator(t)

	if n := gen.CachedCount(); n != 0 {
		t.Errorf("CachedCount() = %d on empty cache, want 0", n)
	}

	for _, name := range []string{"a.png", "b.png"} {
		src := writePNG(t, dir, name, solidImage(16, 16, color.NRGBA{R: 1, G: 2, B: 3, A: 255}))
		if _, err := gen.Thumbnail(src); err != nil {
			t.Fatalf("Thumbnail(%s) error: %v", name, err)
		}
	}

	// Unrelated files in the cache dir are not artifacts.
	writeFile(t, cacheDir, "notes.txt", "ignore me")

	if n := gen.CachedCount(); n != 2 {
		t.Errorf("CachedCount() = %d, want 2", n)
	}
}
