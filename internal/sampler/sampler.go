// Package sampler draws a bounded, reproducible subset of pixels from a
// source image for the quantizer's k-means fit, using stratified grid
// sampling with a uniform-random remainder (spec.md section 4.1).
package sampler

import (
	"math/rand"

	"bookmark-generator/internal/colorspace"
)

// MaxSamples is the upper bound on the number of pixels drawn, independent
// of image size.
const MaxSamples = 10000

// Image is the minimal read-only view the sampler needs over a decoded
// RGBA8 pixel buffer; internal/pipeline adapts the host's buffer to this.
type Image struct {
	Width, Height int
	// At returns the color at pixel (x, y).
	At func(x, y int) colorspace.Color
}

// Sample draws up to MaxSamples pixels from img, skipping (and redrawing
// in place of) void pixels. It divides the image into a sqrt(N) x sqrt(N)
// grid of tiles and picks one uniformly random pixel per tile; if fewer
// tiles exist than MaxSamples, the remainder is filled by uniform sampling
// without replacement. Deterministic given rng, so the orchestrator can
// reproduce a run exactly from its seed.
func Sample(img Image, rng *rand.Rand) []colorspace.Color {
	total := img.Width * img.Height
	if total == 0 {
		return nil
	}
	target := MaxSamples
	if total < target {
		target = total
	}

	out := make([]colorspace.Color, 0, target)
	seen := make(map[int]bool, target*2)

	side := isqrt(target)
	if side < 1 {
		side = 1
	}
	tileW := float64(img.Width) / float64(side)
	tileH := float64(img.Height) / float64(side)

	drawFromTile := func(tx, ty int) (colorspace.Color, int, bool) {
		x0 := int(float64(tx) * tileW)
		y0 := int(float64(ty) * tileH)
		x1 := int(float64(tx+1) * tileW)
		y1 := int(float64(ty+1) * tileH)
		if x1 <= x0 {
			x1 = x0 + 1
		}
		if y1 <= y0 {
			y1 = y0 + 1
		}
		if x1 > img.Width {
			x1 = img.Width
		}
		if y1 > img.Height {
			y1 = img.Height
		}
		if x1 <= x0 || y1 <= y0 {
			return colorspace.Color{}, 0, false
		}
		w := x1 - x0
		h := y1 - y0
		// Re-draw within the tile a bounded number of times to skip void
		// pixels without looping forever on an all-void tile.
		for attempt := 0; attempt < w*h; attempt++ {
			x := x0 + rng.Intn(w)
			y := y0 + rng.Intn(h)
			idx := y*img.Width + x
			if seen[idx] {
				continue
			}
			c := img.At(x, y)
			if c.IsVoid() {
				continue
			}
			return c, idx, true
		}
		return colorspace.Color{}, 0, false
	}

	for ty := 0; ty < side && len(out) < target; ty++ {
		for tx := 0; tx < side && len(out) < target; tx++ {
			c, idx, ok := drawFromTile(tx, ty)
			if !ok {
				continue
			}
			seen[idx] = true
			out = append(out, c)
		}
	}

	// Fill the remainder with uniform-random draws without replacement.
	maxAttempts := target * 50
	for attempt := 0; len(out) < target && attempt < maxAttempts; attempt++ {
		x := rng.Intn(img.Width)
		y := rng.Intn(img.Height)
		idx := y*img.Width + x
		if seen[idx] {
			continue
		}
		c := img.At(x, y)
		if c.IsVoid() {
			seen[idx] = true
			continue
		}
		seen[idx] = true
		out = append(out, c)
	}

	return out
}

func isqrt(n int) int {
	if n <= 0 {
		return 0
	}
	r := 1
	for r*r <= n {
		r++
	}
	return r - 1
}
