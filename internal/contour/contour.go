// Package contour traces the boundaries of a region mask into closed
// polygons using marching squares, then simplifies each polygon with
// Ramer-Douglas-Peucker (spec.md section 4.4). No marching-squares
// example exists anywhere in the retrieval pack, so this is written in
// the teacher's explicit flat-index numerical style seen throughout
// internal/raster (loop-driven, no recursion, epsilon-guarded
// comparisons).
package contour

import "bookmark-generator/internal/mathutil"

// Polygon is one closed contour loop. Outer boundaries are wound
// counter-clockwise (positive signed area); holes are wound clockwise
// (negative signed area).
type Polygon struct {
	Points []mathutil.Vec2
	Hole   bool
}

// MinVertices is the fewest points a simplified polygon may keep; loops
// that simplify below this are discarded as noise.
const MinVertices = 3

// densityWindow is the half-width (in pixels) of the neighborhood used
// to disambiguate marching-squares saddle cells; wider than the 2x2 cell
// itself so the choice reflects the surrounding region, not just the
// tied corners.
const densityWindow = 1

// Trace extracts and simplifies every closed contour in mask (w x h),
// with the RDP tolerance driven by minFeatureSize (spec.md's tolerance =
// minFeatureSize/4). Loops left with fewer than MinVertices points after
// simplification are dropped; no other size filtering is applied.
func Trace(mask []bool, w, h int, minFeatureSize float64) []Polygon {
	segs := marchingSquares(mask, w, h)
	loops := chain(segs)

	tolerance := minFeatureSize / 4
	polys := make([]Polygon, 0, len(loops))
	for _, loop := range loops {
		simplified := simplifyRDP(loop, tolerance)
		if len(simplified) < MinVertices {
			continue
		}
		polys = append(polys, Polygon{Points: simplified})
	}

	classifyHoles(polys)
	return polys
}

type point struct{ x, y float64 }

type segment struct{ a, b point }

// value samples the mask at pixel (gx, gy), treating anything outside
// the image as unfilled so boundary pixels still close their contour.
func value(mask []bool, w, h, gx, gy int) bool {
	if gx < 0 || gx >= w || gy < 0 || gy >= h {
		return false
	}
	return mask[gy*w+gx]
}

// density estimates the local fill fraction in a window around cell
// (cx, cy), used only to disambiguate the saddle cases (5 and 10).
func density(mask []bool, w, h, cx, cy int) float64 {
	count, total := 0, 0
	for gy := cy - densityWindow; gy <= cy+densityWindow+1; gy++ {
		for gx := cx - densityWindow; gx <= cx+densityWindow+1; gx++ {
			total++
			if value(mask, w, h, gx, gy) {
				count++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// marchingSquares walks every cell of the padded (w+1)x(h+1) corner grid
// (corners at pixel centers, with an implicit false ring one pixel
// beyond the mask's edge so shapes touching the image boundary still
// close) and emits the contour segment(s) for each non-trivial case.
func marchingSquares(mask []bool, w, h int) []segment {
	var segs []segment

	for cy := -1; cy < h; cy++ {
		for cx := -1; cx < w; cx++ {
			tl := value(mask, w, h, cx, cy)
			tr := value(mask, w, h, cx+1, cy)
			br := value(mask, w, h, cx+1, cy+1)
			bl := value(mask, w, h, cx, cy+1)

			c := 0
			if tl {
				c |= 1
			}
			if tr {
				c |= 2
			}
			if br {
				c |= 4
			}
			if bl {
				c |= 8
			}
			if c == 0 || c == 15 {
				continue
			}

			top := point{float64(cx) + 0.5, float64(cy)}
			right := point{float64(cx) + 1, float64(cy) + 0.5}
			bottom := point{float64(cx) + 0.5, float64(cy) + 1}
			left := point{float64(cx), float64(cy) + 0.5}

			switch c {
			case 1:
				segs = append(segs, segment{left, top})
			case 2:
				segs = append(segs, segment{top, right})
			case 3:
				segs = append(segs, segment{left, right})
			case 4:
				segs = append(segs, segment{right, bottom})
			case 5:
				if density(mask, w, h, cx, cy) >= 0.5 {
					segs = append(segs, segment{left, bottom}, segment{right, top})
				} else {
					segs = append(segs, segment{left, top}, segment{right, bottom})
				}
			case 6:
				segs = append(segs, segment{top, bottom})
			case 7:
				segs = append(segs, segment{left, bottom})
			case 8:
				segs = append(segs, segment{bottom, left})
			case 9:
				segs = append(segs, segment{bottom, top})
			case 10:
				if density(mask, w, h, cx, cy) >= 0.5 {
					segs = append(segs, segment{top, left}, segment{bottom, right})
				} else {
					segs = append(segs, segment{top, right}, segment{bottom, left})
				}
			case 11:
				segs = append(segs, segment{bottom, right})
			case 12:
				segs = append(segs, segment{right, left})
			case 13:
				segs = append(segs, segment{right, top})
			case 14:
				segs = append(segs, segment{top, left})
			}
		}
	}

	return segs
}

// key quantizes a point onto the half-integer contour lattice so
// matching endpoints hash identically despite floating-point storage.
func key(p point) int64 {
	const scale = 2 // all coordinates are integers or integers+0.5
	gx := int64(p.x*scale + 0.5)
	gy := int64(p.y*scale + 0.5)
	return gx*1_000_003 + gy
}

// chain links marching-squares segments endpoint-to-endpoint into closed
// polygon loops.
func chain(segs []segment) [][]mathutil.Vec2 {
	byStart := make(map[int64][]int, len(segs))
	used := make([]bool, len(segs))
	for i, s := range segs {
		k := key(s.a)
		byStart[k] = append(byStart[k], i)
	}

	var loops [][]mathutil.Vec2
	for i := range segs {
		if used[i] {
			continue
		}
		start := segs[i].a
		var pts []mathutil.Vec2
		cur := i
		for {
			used[cur] = true
			pts = append(pts, mathutil.Vec2{segs[cur].a.x, segs[cur].a.y})
			next := segs[cur].b
			if key(next) == key(start) {
				break
			}
			candidates := byStart[key(next)]
			found := -1
			for _, ci := range candidates {
				if !used[ci] {
					found = ci
					break
				}
			}
			if found < 0 {
				// Dangling chain (shouldn't happen for a closed mask
				// boundary); close it off with what we have.
				break
			}
			cur = found
		}
		if len(pts) >= MinVertices {
			loops = append(loops, pts)
		}
	}
	return loops
}

// signedArea returns the polygon's signed area via the shoelace
// formula; positive means counter-clockwise.
func signedArea(pts []mathutil.Vec2) float64 {
	sum := 0.0
	n := len(pts)
	for i := 0; i < n; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

func reverse(pts []mathutil.Vec2) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// pointInPolygon is the standard even-odd ray-casting test.
func pointInPolygon(p mathutil.Vec2, poly []mathutil.Vec2) bool {
	inside := false
	n := len(poly)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := poly[i], poly[j]
		if (pi[1] > p[1]) != (pj[1] > p[1]) &&
			p[0] < (pj[0]-pi[0])*(p[1]-pi[1])/(pj[1]-pi[1])+pi[0] {
			inside = !inside
		}
	}
	return inside
}

// Group pairs an outer boundary with the holes nested directly inside
// it, the shape internal/triangulate expects.
type Group struct {
	Outer Polygon
	Holes []Polygon
}

// GroupByOuter partitions Trace's flat polygon list into one Group per
// outer boundary, attaching each hole to its innermost enclosing outer
// polygon.
func GroupByOuter(polys []Polygon) []Group {
	var groups []Group
	outerIndex := make(map[int]int) // original poly index -> group index
	for i, p := range polys {
		if p.Hole {
			continue
		}
		outerIndex[i] = len(groups)
		groups = append(groups, Group{Outer: p})
	}
	for _, p := range polys {
		if !p.Hole || len(p.Points) == 0 {
			continue
		}
		owner := -1
		bestArea := -1.0
		for j, op := range polys {
			if op.Hole || len(op.Points) == 0 {
				continue
			}
			if pointInPolygon(p.Points[0], op.Points) {
				area := signedArea(op.Points)
				if area < 0 {
					area = -area
				}
				if owner < 0 || area < bestArea {
					owner = j
					bestArea = area
				}
			}
		}
		if owner < 0 {
			continue // an orphan hole with no enclosing outer; drop it
		}
		gi := outerIndex[owner]
		groups[gi].Holes = append(groups[gi].Holes, p)
	}
	return groups
}

// classifyHoles determines, for every polygon, whether it lies inside
// another polygon of the same set (a hole) or not (an outer boundary),
// and forces the corresponding winding direction (CCW for outer, CW for
// holes) regardless of the raw marching-squares trace direction.
func classifyHoles(polys []Polygon) {
	for i := range polys {
		holeOf := -1
		bestArea := -1.0
		for j := range polys {
			if i == j || len(polys[j].Points) == 0 {
				continue
			}
			if pointInPolygon(polys[i].Points[0], polys[j].Points) {
				area := signedArea(polys[j].Points)
				if area < 0 {
					area = -area
				}
				if holeOf < 0 || area < bestArea {
					holeOf = j
					bestArea = area
				}
			}
		}
		polys[i].Hole = holeOf >= 0

		area := signedArea(polys[i].Points)
		if polys[i].Hole && area > 0 {
			reverse(polys[i].Points)
		} else if !polys[i].Hole && area < 0 {
			reverse(polys[i].Points)
		}
	}
}
