package quantize

import (
	"math/rand"
	"testing"

	"bookmark-generator/internal/colorspace"
)

func makeImage(w, h int, pick func(x, y int) colorspace.Color) Image {
	return Image{Width: w, Height: h, At: pick}
}

func TestQuantizeTwoColorsConverge(t *testing.T) {
	red := colorspace.Color{R: 255, A: 1}
	blue := colorspace.Color{B: 255, A: 1}
	img := makeImage(20, 20, func(x, y int) colorspace.Color {
		if x < 10 {
			return red
		}
		return blue
	})
	samples := make([]colorspace.Color, 0, 200)
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			samples = append(samples, img.At(x, y))
		}
	}

	res, err := Quantize(img, samples, 2, rand.New(rand.NewSource(1)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Image.Palette) != 2 {
		t.Fatalf("expected 2 palette colors, got %d", len(res.Image.Palette))
	}
	if res.Truncated {
		t.Fatal("should not report truncation with two well-separated clusters")
	}
	// Blue has lower luminance than red (0.0722 vs 0.2126 weight), so it
	// must sort first.
	if res.Image.Palette[0] != blue {
		t.Fatalf("expected blue first by luminance, got %v", res.Image.Palette[0])
	}
}

func TestQuantizeTruncatesWhenTooFewColors(t *testing.T) {
	solid := colorspace.Color{R: 128, G: 128, B: 128, A: 1}
	img := makeImage(8, 8, func(x, y int) colorspace.Color { return solid })
	samples := []colorspace.Color{solid, solid, solid}

	res, err := Quantize(img, samples, 5, rand.New(rand.NewSource(2)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Truncated {
		t.Fatal("expected truncation when only one distinct sample color exists")
	}
	if len(res.Image.Palette) != 1 {
		t.Fatalf("expected a single-color palette, got %d", len(res.Image.Palette))
	}
}

func TestQuantizeVoidPixelsGetVoidIndex(t *testing.T) {
	img := makeImage(4, 4, func(x, y int) colorspace.Color {
		if x == 0 {
			return colorspace.Color{A: 0}
		}
		return colorspace.Color{R: 200, A: 1}
	})
	samples := []colorspace.Color{{R: 200, A: 1}, {R: 200, A: 1}}

	res, err := Quantize(img, samples, 1, rand.New(rand.NewSource(3)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for y := 0; y < 4; y++ {
		idx := res.Image.Indices[y*4+0]
		if idx != VoidIndex {
			t.Fatalf("expected void index at column 0, got %d", idx)
		}
		if res.Image.HeightMap[y*4+0] != 0 {
			t.Fatalf("expected zero height for void pixel")
		}
	}
}

func TestQuantizeYieldCancellation(t *testing.T) {
	img := makeImage(4, 4, func(x, y int) colorspace.Color { return colorspace.Color{R: uint8(x * 20), A: 1} })
	samples := []colorspace.Color{{R: 10, A: 1}, {R: 200, A: 1}}
	cancelErr := rand.New(rand.NewSource(4))
	_, err := Quantize(img, samples, 2, cancelErr, func(progress float64, message string, iteration int) error {
		return errCancelled
	})
	if err != errCancelled {
		t.Fatalf("expected cancellation error, got %v", err)
	}
}

var errCancelled = errCancel{}

type errCancel struct{}

func (errCancel) Error() string { return "cancelled" }
