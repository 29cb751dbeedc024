package imageio

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestPNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x * 50)})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestLoadNormalizesGrayToOpaqueNRGBA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.png")
	writeTestPNG(t, path)

	img, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
		t.Fatalf("unexpected bounds: %v", img.Bounds())
	}
	_, _, _, a := img.At(2, 2).RGBA()
	if a != 0xffff {
		t.Fatalf("expected fully opaque pixel, got alpha %d", a)
	}
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSavePreviewWebPWritesFile(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "preview.webp")
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	if err := SavePreviewWebP(out, img); err != nil {
		t.Fatalf("SavePreviewWebP: %v", err)
	}
	if info, err := os.Stat(out); err != nil || info.Size() == 0 {
		t.Fatalf("expected a non-empty output file, err=%v", err)
	}
}
