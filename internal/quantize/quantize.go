// Package quantize implements k-means color quantization in RGB space:
// k-means++ seeding, iterate-to-convergence on a sample set, full-image
// nearest-centroid assignment, and luminance palette ordering (spec.md
// section 4.2). The k-means++ seeding/assignment/convergence loop is
// grounded on the retrieval pack's jmylchreest/tinct k-means extractor.
package quantize

import (
	"math"
	"math/rand"

	"bookmark-generator/internal/colorspace"
)

const (
	// MaxIterations bounds the k-means refinement loop.
	MaxIterations = 50
	// ConvergenceThreshold is the mean centroid displacement (RGB units)
	// below which iteration stops early.
	ConvergenceThreshold = 0.1
	// AssignChunk is the pixel count between cancellation/progress yields
	// during full-image assignment.
	AssignChunk = 10000
)

// QuantizedImage is the output of quantization: a per-pixel palette index
// (255 marks a void pixel) and a derived per-pixel height in [0,1].
type QuantizedImage struct {
	Width, Height int
	Indices       []uint8 // len = Width*Height; 255 = void
	Palette       []colorspace.Color
	HeightMap     []float32 // len = Width*Height; 0 for void pixels
}

// VoidIndex marks a pixel with no assigned layer.
const VoidIndex = 255

// Result additionally reports whether the palette had to be truncated
// because fewer distinct colors survived than requested (spec.md's
// InsufficientColors diagnostic — recoverable, never fatal).
type Result struct {
	Image              QuantizedImage
	Truncated          bool
	RequestedColors    int
	MeanQuantizeError  float64
}

// Image is the minimal read-only pixel source the quantizer needs.
type Image struct {
	Width, Height int
	At            func(x, y int) colorspace.Color
}

// Yield is called between k-means iterations and every AssignChunk pixels
// during full-image assignment. progress is in [0,1]; a non-nil return
// aborts quantization (e.g. context.Canceled).
type Yield func(progress float64, message string, iteration int) error

// Quantize runs k-means with colorCount clusters on samples, then assigns
// every non-void pixel of img to its nearest centroid, sorts the palette
// by ascending luminance, and derives the height map.
func Quantize(img Image, samples []colorspace.Color, colorCount int, rng *rand.Rand, yield Yield) (Result, error) {
	if len(samples) == 0 {
		return Result{Image: QuantizedImage{Width: img.Width, Height: img.Height,
			Indices: allVoid(img.Width * img.Height)}}, nil
	}

	uniqueCount := countUnique(samples)
	k := colorCount
	truncated := false
	if uniqueCount < k {
		k = uniqueCount
		truncated = true
	}
	if k < 1 {
		k = 1
	}

	centroids := seedKMeansPlusPlus(samples, k, rng)

	assignments := make([]int, len(samples))
	for iter := 0; iter < MaxIterations; iter++ {
		for i, s := range samples {
			assignments[i] = nearest(s, centroids)
		}

		newCentroids, moved := recalculate(samples, assignments, centroids, rng)
		displacement := 0.0
		for i := range centroids {
			displacement += math.Sqrt(colorspace.DistanceSq(centroids[i], newCentroids[i]))
		}
		displacement /= float64(len(centroids))
		centroids = newCentroids
		_ = moved

		if yield != nil {
			if err := yield(float64(iter+1)/float64(MaxIterations), "quantize: k-means iteration", iter+1); err != nil {
				return Result{}, err
			}
		}

		if displacement < ConvergenceThreshold {
			break
		}
	}

	// Full-image assignment.
	n := img.Width * img.Height
	indices := make([]uint8, n)
	var sumErrSq float64
	var countAssigned int
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			i := y*img.Width + x
			c := img.At(x, y)
			if c.IsVoid() {
				indices[i] = VoidIndex
				continue
			}
			ci := nearest(c, centroids)
			indices[i] = uint8(ci)
			sumErrSq += colorspace.DistanceSq(c, centroids[ci])
			countAssigned++

			if yield != nil && i > 0 && i%AssignChunk == 0 {
				if err := yield(float64(i)/float64(n), "quantize: assigning pixels", 0); err != nil {
					return Result{}, err
				}
			}
		}
	}

	palette, perm := colorspace.SortPaletteByLuminance(centroids)
	// oldToNew[old] = new index, inverse of perm (perm[new] = old).
	oldToNew := make([]int, len(perm))
	for newIdx, oldIdx := range perm {
		oldToNew[oldIdx] = newIdx
	}
	for i, idx := range indices {
		if idx == VoidIndex {
			continue
		}
		indices[i] = uint8(oldToNew[idx])
	}

	heightMap := make([]float32, n)
	denom := float32(1)
	if len(palette) > 1 {
		denom = float32(len(palette) - 1)
	}
	for i, idx := range indices {
		if idx == VoidIndex {
			continue
		}
		heightMap[i] = float32(idx) / denom
	}

	meanErr := 0.0
	if countAssigned > 0 {
		meanErr = math.Sqrt(sumErrSq / float64(countAssigned))
	}

	return Result{
		Image: QuantizedImage{
			Width: img.Width, Height: img.Height,
			Indices: indices, Palette: palette, HeightMap: heightMap,
		},
		Truncated:         truncated,
		RequestedColors:   colorCount,
		MeanQuantizeError: meanErr,
	}, nil
}

func allVoid(n int) []uint8 {
	out := make([]uint8, n)
	for i := range out {
		out[i] = VoidIndex
	}
	return out
}

func countUnique(samples []colorspace.Color) int {
	seen := make(map[colorspace.Color]bool, len(samples))
	for _, s := range samples {
		seen[s] = true
	}
	return len(seen)
}

func nearest(c colorspace.Color, centroids []colorspace.Color) int {
	best := 0
	bestDist := math.MaxFloat64
	for i, cen := range centroids {
		d := colorspace.DistanceSq(c, cen)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// seedKMeansPlusPlus picks k initial centroids: the first uniformly at
// random, each subsequent one with probability proportional to its
// squared distance to the nearest already-chosen centroid.
func seedKMeansPlusPlus(samples []colorspace.Color, k int, rng *rand.Rand) []colorspace.Color {
	centroids := make([]colorspace.Color, 0, k)
	centroids = append(centroids, samples[rng.Intn(len(samples))])

	for len(centroids) < k {
		distances := make([]float64, len(samples))
		total := 0.0
		for i, s := range samples {
			minDist := math.MaxFloat64
			for _, c := range centroids {
				d := colorspace.DistanceSq(s, c)
				if d < minDist {
					minDist = d
				}
			}
			distances[i] = minDist
			total += minDist
		}
		if total == 0 {
			// All remaining samples coincide with chosen centroids;
			// any sample is as good as another.
			centroids = append(centroids, samples[rng.Intn(len(samples))])
			continue
		}
		target := rng.Float64() * total
		cumulative := 0.0
		chosen := len(samples) - 1
		for i, d := range distances {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, samples[chosen])
	}
	return centroids
}

// recalculate averages assigned samples into new centroids. Empty
// clusters are reseeded to the sample with the largest distance to its
// current centroid (spec.md: "Empty clusters are reseeded to the sample
// with the largest distance to its current centroid").
func recalculate(samples []colorspace.Color, assignments []int, prev []colorspace.Color, rng *rand.Rand) ([]colorspace.Color, []int) {
	k := len(prev)
	sumR := make([]float64, k)
	sumG := make([]float64, k)
	sumB := make([]float64, k)
	counts := make([]int, k)

	for i, s := range samples {
		c := assignments[i]
		sumR[c] += float64(s.R)
		sumG[c] += float64(s.G)
		sumB[c] += float64(s.B)
		counts[c]++
	}

	out := make([]colorspace.Color, k)
	for c := 0; c < k; c++ {
		if counts[c] > 0 {
			out[c] = colorspace.Color{
				R: uint8(sumR[c] / float64(counts[c])),
				G: uint8(sumG[c] / float64(counts[c])),
				B: uint8(sumB[c] / float64(counts[c])),
				A: 1,
			}
			continue
		}
		// Empty cluster: find the sample perceptually farthest from its
		// own centroid. Lab distance, not raw RGB, since the point of
		// reseeding is to pick a visually distinct new color.
		worst := -1
		worstDist := -1.0
		for i, s := range samples {
			d := colorspace.LabDistance(s, prev[assignments[i]])
			if d > worstDist {
				worstDist = d
				worst = i
			}
		}
		if worst < 0 {
			worst = rng.Intn(len(samples))
		}
		out[c] = samples[worst]
	}
	return out, counts
}
