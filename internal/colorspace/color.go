// Package colorspace implements the RGB/luminance utilities shared by the
// sampler, the quantizer, and the pipeline: linearized-sRGB
// luminance, squared Euclidean RGB distance, and perceptual Lab distance.
package colorspace

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an (R, G, B, A) color with channels in [0,255] and alpha in [0,1].
type Color struct {
	R, G, B uint8
	A       float64
}

// VoidAlpha is the alpha threshold below which a pixel is treated as void
// rather than a color (spec: "Alpha below 0.5 is treated as void").
const VoidAlpha = 0.5

// IsVoid reports whether c's alpha falls below the void threshold.
func (c Color) IsVoid() bool {
	return c.A < VoidAlpha
}

// srgbToLinear is a precomputed channel lookup avoiding a pow() call per
// pixel per channel on the hot quantization/assignment path.
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		v := float64(i) / 255.0
		if v <= 0.04045 {
			srgbToLinear[i] = v / 12.92
		} else {
			srgbToLinear[i] = math.Pow((v+0.055)/1.055, 2.4)
		}
	}
}

// Luminance returns the Rec. 709 relative luminance of c computed on
// linearized sRGB channels, per the palette ordering rule in the spec:
// luminance(c) = 0.2126*R + 0.7152*G + 0.0722*B on linearized sRGB.
func Luminance(c Color) float64 {
	r := srgbToLinear[c.R]
	g := srgbToLinear[c.G]
	b := srgbToLinear[c.B]
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// DistanceSq returns the squared Euclidean distance between two colors in
// raw (non-linearized) RGB space, as used by k-means assignment.
func DistanceSq(a, b Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return dr*dr + dg*dg + db*db
}

// LabDistance returns the perceptual (CIE Lab) distance between two colors.
// Used by the quantizer's empty-cluster reseeding heuristic, where raw
// RGB distance poorly
// reflects how distinguishable two printed colors actually look.
func LabDistance(a, b Color) float64 {
	ca := colorful.Color{R: float64(a.R) / 255.0, G: float64(a.G) / 255.0, B: float64(a.B) / 255.0}
	cb := colorful.Color{R: float64(b.R) / 255.0, G: float64(b.G) / 255.0, B: float64(b.B) / 255.0}
	return ca.DistanceLab(cb)
}

// SortPaletteByLuminance sorts colors ascending by Luminance (darkest
// first) and returns the permutation applied: perm[newIndex] = oldIndex.
// Stable so that equal-luminance colors keep their relative order, which
// makes the sort idempotent — re-sorting an already-sorted palette leaves
// indices unchanged (spec invariant: "reapplying luminance sort leaves
// indices unchanged").
func SortPaletteByLuminance(colors []Color) (sorted []Color, perm []int) {
	n := len(colors)
	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	lum := make([]float64, n)
	for i, c := range colors {
		lum[i] = Luminance(c)
	}
	// Stable insertion sort: n is at most 8 (colorCount bound), so this
	// is both simple and fast; no allocation beyond the output slices.
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && lum[perm[j-1]] > lum[perm[j]] {
			perm[j-1], perm[j] = perm[j], perm[j-1]
			j--
		}
	}
	sorted = make([]Color, n)
	for i, p := range perm {
		sorted[i] = colors[p]
	}
	return sorted, perm
}
