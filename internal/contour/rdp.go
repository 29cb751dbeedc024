package contour

import "bookmark-generator/internal/mathutil"

// simplifyRDP reduces a closed polyline with the Ramer-Douglas-Peucker
// algorithm: points within tolerance of the chord connecting their
// neighbors are dropped. Closed loops are opened at the far end of their
// longest edge (that vertex starts and ends the opened polyline), then
// the loop is re-closed and the opening vertex is itself dropped when it
// lies within tolerance of the chord between its kept neighbors.
func simplifyRDP(loop []mathutil.Vec2, tolerance float64) []mathutil.Vec2 {
	if len(loop) <= MinVertices {
		return loop
	}

	splitAt := longestEdgeStart(loop)
	rotated := make([]mathutil.Vec2, len(loop)+1)
	for i := 0; i <= len(loop); i++ {
		rotated[i] = loop[(splitAt+i)%len(loop)]
	}

	kept := rdp(rotated, tolerance)
	// Drop the duplicated closing point; it is re-added implicitly since
	// Polygon.Points represents a closed loop without repeating the
	// first vertex.
	if len(kept) > 1 && kept[0] == kept[len(kept)-1] {
		kept = kept[:len(kept)-1]
	}
	if n := len(kept); n > MinVertices && perpendicularDistance(kept[0], kept[n-1], kept[1]) <= tolerance {
		kept = kept[1:]
	}
	return kept
}

func longestEdgeStart(loop []mathutil.Vec2) int {
	best := 0
	bestLen := -1.0
	for i := range loop {
		j := (i + 1) % len(loop)
		d := loop[i].DistSq(loop[j])
		if d > bestLen {
			bestLen = d
			best = i
		}
	}
	return (best + 1) % len(loop)
}

func rdp(points []mathutil.Vec2, tolerance float64) []mathutil.Vec2 {
	if len(points) < 3 {
		return points
	}
	first, last := points[0], points[len(points)-1]

	maxDist := -1.0
	maxIdx := -1
	for i := 1; i < len(points)-1; i++ {
		d := perpendicularDistance(points[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist <= tolerance {
		return []mathutil.Vec2{first, last}
	}

	left := rdp(points[:maxIdx+1], tolerance)
	right := rdp(points[maxIdx:], tolerance)
	return append(left[:len(left)-1], right...)
}

func perpendicularDistance(p, a, b mathutil.Vec2) float64 {
	ab := b.Sub(a)
	length := ab.Len()
	if length == 0 {
		return p.Sub(a).Len()
	}
	// |AP x AB| / |AB|
	ap := p.Sub(a)
	cross := ap.Cross(ab)
	if cross < 0 {
		cross = -cross
	}
	return cross / length
}
