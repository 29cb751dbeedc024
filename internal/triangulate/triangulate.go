// Package triangulate converts a simplified polygon-with-holes into a
// triangle mesh via hole bridging and ear clipping (spec.md section
// 4.5). No constrained-triangulation or Delaunay library appears
// anywhere in the retrieval pack, so this is hand-written; the
// winding/cross-product/epsilon-guard idiom follows the teacher's
// internal/raster/triangle.go.
package triangulate

import (
	"errors"

	"bookmark-generator/internal/mathutil"
)

// MinTriangleArea rejects degenerate triangles produced by bridging
// channels or near-collinear ears.
const MinTriangleArea = 1e-6

// ErrTooFewVertices is returned when the outer ring has fewer than 3
// vertices.
var ErrTooFewVertices = errors.New("triangulate: polygon has fewer than 3 vertices")

// Triangle holds indices into the vertex slice returned alongside it.
type Triangle [3]int

// Triangulate bridges each hole into outer (which must be wound CCW;
// each hole must be wound CW, per contour.Trace's convention) and ear-
// clips the resulting simple polygon. It returns the combined vertex
// list and the CCW-wound triangles indexing it.
func Triangulate(outer []mathutil.Vec2, holes [][]mathutil.Vec2) ([]mathutil.Vec2, []Triangle, error) {
	if len(outer) < 3 {
		return nil, nil, ErrTooFewVertices
	}

	merged := append([]mathutil.Vec2(nil), outer...)
	for _, hole := range holes {
		if len(hole) < 3 {
			continue
		}
		merged = bridgeHole(merged, hole)
	}

	tris := earClip(merged)
	return merged, tris, nil
}

// bridgeHole connects hole into merged via the shortest vertex-to-vertex
// segment that crosses no edge of either ring, splicing the hole's
// vertices into merged at that point so the result is a single simple
// polygon.
type bridgeCandidate struct {
	mi, hi int
	distSq float64
}

func bridgeHole(merged, hole []mathutil.Vec2) []mathutil.Vec2 {
	candidates := make([]bridgeCandidate, 0, len(merged)*len(hole))
	for mi, mp := range merged {
		for hi, hp := range hole {
			candidates = append(candidates, bridgeCandidate{mi, hi, mp.DistSq(hp)})
		}
	}
	// Selection over the full candidate list, shortest first, is simplest
	// and the vertex counts here (bookmark silhouettes, not scanned
	// meshes) stay small enough that an O(n^2 log n) sort is cheap.
	sortCandidates(candidates)

	for _, c := range candidates {
		a, b := merged[c.mi], hole[c.hi]
		if !crossesAnyEdge(a, b, merged) && !crossesAnyEdge(a, b, hole) {
			return spliceHole(merged, hole, c.mi, c.hi)
		}
	}
	// No crossing-free bridge found (degenerate input); fall back to the
	// nearest pair even if it touches an edge at an endpoint.
	c := candidates[0]
	return spliceHole(merged, hole, c.mi, c.hi)
}

func sortCandidates(c []bridgeCandidate) {
	for i := 1; i < len(c); i++ {
		for j := i; j > 0 && c[j-1].distSq > c[j].distSq; j-- {
			c[j-1], c[j] = c[j], c[j-1]
		}
	}
}

func spliceHole(merged, hole []mathutil.Vec2, mi, hi int) []mathutil.Vec2 {
	out := make([]mathutil.Vec2, 0, len(merged)+len(hole)+2)
	out = append(out, merged[:mi+1]...)
	out = append(out, hole[hi:]...)
	out = append(out, hole[:hi+1]...)
	out = append(out, merged[mi])
	out = append(out, merged[mi+1:]...)
	return out
}

// crossesAnyEdge reports whether segment a-b properly crosses any edge
// of ring, ignoring edges incident to a or b themselves (shared
// endpoints are allowed to touch).
func crossesAnyEdge(a, b mathutil.Vec2, ring []mathutil.Vec2) bool {
	n := len(ring)
	for i := 0; i < n; i++ {
		p1 := ring[i]
		p2 := ring[(i+1)%n]
		if p1 == a || p1 == b || p2 == a || p2 == b {
			continue
		}
		if segmentsIntersect(a, b, p1, p2) {
			return true
		}
	}
	return false
}

func segmentsIntersect(p1, p2, p3, p4 mathutil.Vec2) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}
	return false
}

func direction(a, b, c mathutil.Vec2) float64 {
	return b.Sub(a).Cross(c.Sub(a))
}

// earClip triangulates a simple (possibly self-touching, but not self-
// crossing) polygon assumed wound CCW.
func earClip(poly []mathutil.Vec2) []Triangle {
	n := len(poly)
	if n < 3 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	var tris []Triangle
	guard := 0
	maxGuard := n * n
	for len(idx) > 2 && guard < maxGuard {
		guard++
		clipped := false
		for i := 0; i < len(idx); i++ {
			prev := idx[(i-1+len(idx))%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]

			if !isConvex(poly[prev], poly[cur], poly[next]) {
				continue
			}
			if anyVertexInside(poly, idx, prev, cur, next) {
				continue
			}

			area := triangleArea(poly[prev], poly[cur], poly[next])
			if area >= MinTriangleArea {
				tris = append(tris, Triangle{prev, cur, next})
			}

			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break // no ear found; remaining vertices are degenerate
		}
	}
	return tris
}

func isConvex(a, b, c mathutil.Vec2) bool {
	return b.Sub(a).Cross(c.Sub(b)) > 0
}

func triangleArea(a, b, c mathutil.Vec2) float64 {
	area := b.Sub(a).Cross(c.Sub(a)) / 2
	if area < 0 {
		area = -area
	}
	return area
}

func anyVertexInside(poly []mathutil.Vec2, idx []int, prev, cur, next int) bool {
	a, b, c := poly[prev], poly[cur], poly[next]
	for _, vi := range idx {
		if vi == prev || vi == cur || vi == next {
			continue
		}
		// Bridge splicing duplicates vertices; a copy of a corner is not
		// inside the ear.
		if p := poly[vi]; p == a || p == b || p == c {
			continue
		}
		if pointInTriangle(poly[vi], a, b, c) {
			return true
		}
	}
	return false
}

func pointInTriangle(p, a, b, c mathutil.Vec2) bool {
	d1 := direction(a, b, p)
	d2 := direction(b, c, p)
	d3 := direction(c, a, p)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}
