// Package region extracts, per palette layer, the connected pixel
// components that contour tracing will later outline (spec.md section
// 4.3). Layers accumulate monotonically downward: a pixel with palette
// index i belongs to every layer mask from 0 up to i, mirroring how the
// physical print stacks layer 0 at the bottom and layer i on top of it.
// The flood-fill labeling and area-threshold filtering are adapted
// directly from the teacher's RemoveSmallClusters.
package region

import "bookmark-generator/internal/quantize"

// MinComponentArea is the minimum pixel count a connected component must
// have to survive on its own; smaller components are merged into a
// neighboring component or dropped to the layer below.
const MinComponentArea = 10

// ComponentID identifies a component within its layer; IDs are arena
// indices into Layer.Components, not globally unique across layers.
type ComponentID int

// Component is one 4-connected group of same-layer pixels.
type Component struct {
	ID                     ComponentID
	Pixels                 []int // flat y*width+x indices
	MinX, MinY, MaxX, MaxY int
	cx, cy                 int // precomputed centroid, pixel coordinates
}

func (c *Component) Area() int { return len(c.Pixels) }

// CentroidManhattan returns the Manhattan distance between c's and o's
// centroids, used to pick the nearest merge target for a too-small
// component.
func (c *Component) CentroidManhattan(o *Component) int {
	d := c.cx - o.cx
	if d < 0 {
		d = -d
	}
	dy := c.cy - o.cy
	if dy < 0 {
		dy = -dy
	}
	return d + dy
}

// Layer holds the final mask and surviving components for one palette
// index after small-component filtering.
type Layer struct {
	Index      int
	Mask       []bool // len = width*height
	Components []Component
}

// Extraction is the full per-layer region decomposition of a quantized
// image.
type Extraction struct {
	Width, Height int
	Layers        []Layer
}

// Yield reports extraction progress, called both once per completed
// layer and periodically every yieldPixelInterval pixels visited within
// a layer's flood fill, so a single large layer stays cancellable.
type Yield func(progress float64, message string) error

// yieldPixelInterval bounds how many pixels label() visits between
// cancellation checks, so one oversized layer can't run uncancellable.
const yieldPixelInterval = 100000

// Extract builds the monotone per-layer masks from a quantized image's
// palette indices and labels/filters each layer's connected components.
func Extract(q quantize.QuantizedImage, yield Yield) (Extraction, error) {
	w, h := q.Width, q.Height
	numLayers := len(q.Palette)
	ext := Extraction{Width: w, Height: h, Layers: make([]Layer, 0, numLayers)}

	for l := 0; l < numLayers; l++ {
		mask := make([]bool, w*h)
		for i, idx := range q.Indices {
			if idx != quantize.VoidIndex && int(idx) >= l {
				mask[i] = true
			}
		}

		layerYield := func(visited int) error {
			if yield == nil {
				return nil
			}
			sub := float64(visited) / float64(w*h)
			progress := (float64(l) + sub) / float64(numLayers)
			return yield(progress, "region: labeling layer")
		}

		comps, err := label(mask, w, h, layerYield)
		if err != nil {
			return Extraction{}, err
		}
		comps = filterSmall(mask, comps, w, h)

		ext.Layers = append(ext.Layers, Layer{Index: l, Mask: mask, Components: comps})

		if yield != nil {
			if err := yield(float64(l+1)/float64(numLayers), "region: extracting layer"); err != nil {
				return Extraction{}, err
			}
		}
	}

	return ext, nil
}

// label performs iterative-stack 4-connected flood fill over mask,
// returning one Component per connected group of true pixels. yield, if
// non-nil, is called every yieldPixelInterval visited pixels so a
// single oversized layer stays cancellable.
func label(mask []bool, w, h int, yield func(visited int) error) ([]Component, error) {
	visited := make([]bool, w*h)
	var comps []Component
	stack := make([]int, 0, 256)
	visitCount := 0

	for start := 0; start < w*h; start++ {
		if !mask[start] || visited[start] {
			continue
		}

		stack = stack[:0]
		stack = append(stack, start)
		visited[start] = true

		var pixels []int
		minX, minY := w, h
		maxX, maxY := -1, -1
		var sumX, sumY int

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			cy := cur / w
			cx := cur % w
			pixels = append(pixels, cur)
			sumX += cx
			sumY += cy
			if cx < minX {
				minX = cx
			}
			if cx > maxX {
				maxX = cx
			}
			if cy < minY {
				minY = cy
			}
			if cy > maxY {
				maxY = cy
			}

			visitCount++
			if yield != nil && visitCount%yieldPixelInterval == 0 {
				if err := yield(visitCount); err != nil {
					return nil, err
				}
			}

			neighbors := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
			for _, d := range neighbors {
				nx, ny := cx+d[0], cy+d[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				ni := ny*w + nx
				if mask[ni] && !visited[ni] {
					visited[ni] = true
					stack = append(stack, ni)
				}
			}
		}

		c := Component{
			ID: ComponentID(len(comps)), Pixels: pixels,
			MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY,
		}
		c.cx = sumX / len(pixels)
		c.cy = sumY / len(pixels)
		comps = append(comps, c)
	}

	return comps, nil
}

// filterSmall merges components under MinComponentArea into the nearest
// (by centroid Manhattan distance) qualifying component in the same
// layer; if no such component exists, the small component's pixels are
// dropped from mask (falling through to whatever lower layer already
// covers them, by monotone accumulation).
func filterSmall(mask []bool, comps []Component, w, _ int) []Component {
	big := make([]int, 0, len(comps))
	for i, c := range comps {
		if c.Area() >= MinComponentArea {
			big = append(big, i)
		}
	}

	if len(big) == 0 {
		for _, c := range comps {
			for _, p := range c.Pixels {
				mask[p] = false
			}
		}
		return nil
	}

	kept := make([]Component, 0, len(big))
	keptIndex := make(map[int]int, len(big))
	for _, bi := range big {
		keptIndex[bi] = len(kept)
		kept = append(kept, comps[bi])
	}

	for _, c := range comps {
		if c.Area() >= MinComponentArea {
			continue
		}
		nearest := -1
		nearestDist := -1
		for _, bi := range big {
			d := c.CentroidManhattan(&comps[bi])
			if nearest < 0 || d < nearestDist {
				nearest = bi
				nearestDist = d
			}
		}
		ki := keptIndex[nearest]
		kept[ki].Pixels = append(kept[ki].Pixels, c.Pixels...)
		for _, p := range c.Pixels {
			px, py := p%w, p/w
			if px < kept[ki].MinX {
				kept[ki].MinX = px
			}
			if px > kept[ki].MaxX {
				kept[ki].MaxX = px
			}
			if py < kept[ki].MinY {
				kept[ki].MinY = py
			}
			if py > kept[ki].MaxY {
				kept[ki].MaxY = py
			}
		}
	}

	for idx := range kept {
		kept[idx].ID = ComponentID(idx)
	}
	return kept
}
