package sampler

import (
	"math/rand"
	"testing"

	"bookmark-generator/internal/colorspace"
)

func solidImage(w, h int, c colorspace.Color) Image {
	return Image{
		Width: w, Height: h,
		At: func(x, y int) colorspace.Color { return c },
	}
}

func TestSampleDeterministic(t *testing.T) {
	img := solidImage(64, 64, colorspace.Color{R: 10, G: 20, B: 30, A: 1})
	s1 := Sample(img, rand.New(rand.NewSource(42)))
	s2 := Sample(img, rand.New(rand.NewSource(42)))
	if len(s1) != len(s2) {
		t.Fatalf("sample counts differ: %d vs %d", len(s1), len(s2))
	}
	for i := range s1 {
		if s1[i] != s2[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, s1[i], s2[i])
		}
	}
}

func TestSampleSkipsVoid(t *testing.T) {
	img := Image{
		Width: 10, Height: 10,
		At: func(x, y int) colorspace.Color {
			if x < 5 {
				return colorspace.Color{A: 0}
			}
			return colorspace.Color{R: 200, A: 1}
		},
	}
	out := Sample(img, rand.New(rand.NewSource(1)))
	for _, c := range out {
		if c.IsVoid() {
			t.Fatal("sample should never include a void pixel")
		}
	}
}

func TestSampleBoundedByMax(t *testing.T) {
	img := solidImage(200, 200, colorspace.Color{R: 1, A: 1})
	out := Sample(img, rand.New(rand.NewSource(7)))
	if len(out) > MaxSamples {
		t.Fatalf("sample count %d exceeds MaxSamples %d", len(out), MaxSamples)
	}
}
