package colorspace

import "testing"

func TestLuminanceOrdering(t *testing.T) {
	black := Color{R: 0, G: 0, B: 0, A: 1}
	white := Color{R: 255, G: 255, B: 255, A: 1}
	if Luminance(black) >= Luminance(white) {
		t.Fatalf("expected black luminance < white luminance, got %f >= %f", Luminance(black), Luminance(white))
	}
}

func TestIsVoid(t *testing.T) {
	if !(Color{A: 0.4}).IsVoid() {
		t.Fatal("alpha 0.4 should be void")
	}
	if (Color{A: 0.6}).IsVoid() {
		t.Fatal("alpha 0.6 should not be void")
	}
}

func TestSortPaletteByLuminanceIdempotent(t *testing.T) {
	colors := []Color{
		{R: 200, G: 200, B: 200, A: 1},
		{R: 10, G: 10, B: 10, A: 1},
		{R: 100, G: 100, B: 100, A: 1},
	}
	sorted, perm := SortPaletteByLuminance(colors)
	for i := 1; i < len(sorted); i++ {
		if Luminance(sorted[i-1]) > Luminance(sorted[i]) {
			t.Fatalf("not sorted ascending at %d", i)
		}
	}
	if perm[0] != 1 {
		t.Fatalf("expected darkest original index 1 first, got perm=%v", perm)
	}

	sorted2, perm2 := SortPaletteByLuminance(sorted)
	for i := range perm2 {
		if perm2[i] != i {
			t.Fatalf("re-sort should be identity permutation, got %v", perm2)
		}
	}
	for i := range sorted2 {
		if sorted2[i] != sorted[i] {
			t.Fatalf("re-sort changed order at %d", i)
		}
	}
}

func TestDistanceSqZeroForSameColor(t *testing.T) {
	c := Color{R: 50, G: 60, B: 70, A: 1}
	if DistanceSq(c, c) != 0 {
		t.Fatal("distance to self should be zero")
	}
}
