// Package mesh holds the arena-style geometry arrays shared by every
// pipeline stage downstream of triangulation, and implements prism
// extrusion (spec.md section 4.6): each triangulated layer silhouette
// becomes a solid slab with a bottom cap, top cap, and stitched side
// walls, plus the rounded-rectangle base plate beneath all layers. The
// flat vertex/triangle array shape mirrors the teacher's
// internal/bmd.Mesh; corner-arc generation uses mathutil.Vec2.Rotate.
package mesh

import (
	"math"

	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/triangulate"
)

// VertexID, ComponentID and LayerID are arena indices, not pointers; no
// vertex or component ever back-references its owner.
type VertexID int
type ComponentID int
type LayerID int

// Triangle holds three VertexID indices into a Geometry's Vertices,
// wound so the surface normal (via Vec3.Cross of its edges) points
// outward.
type Triangle [3]VertexID

// Geometry is one printable solid: a flat vertex array and the
// triangles indexing it.
type Geometry struct {
	Vertices  []mathutil.Vec3
	Triangles []Triangle
}

func (g *Geometry) addVertex(v mathutil.Vec3) VertexID {
	g.Vertices = append(g.Vertices, v)
	return VertexID(len(g.Vertices) - 1)
}

func (g *Geometry) addTriangle(a, b, c VertexID) {
	g.Triangles = append(g.Triangles, Triangle{a, b, c})
}

// Merge appends other's vertices and triangles (index-shifted) into g.
func (g *Geometry) Merge(other Geometry) {
	offset := VertexID(len(g.Vertices))
	g.Vertices = append(g.Vertices, other.Vertices...)
	for _, t := range other.Triangles {
		g.Triangles = append(g.Triangles, Triangle{t[0] + offset, t[1] + offset, t[2] + offset})
	}
}

// ExtrudeComponent prisms a triangulated 2D silhouette between z0 and z1
// (mm), given the outer loop, its holes (for side-wall stitching), and
// the 2D triangulation of the same silhouette (for the caps).
func ExtrudeComponent(outer []mathutil.Vec2, holes [][]mathutil.Vec2, verts2D []mathutil.Vec2, tris2D []triangulate.Triangle, z0, z1 float64) Geometry {
	var g Geometry

	bottomIDs := make([]VertexID, len(verts2D))
	topIDs := make([]VertexID, len(verts2D))
	for i, p := range verts2D {
		bottomIDs[i] = g.addVertex(mathutil.Vec3{p[0], p[1], z0})
		topIDs[i] = g.addVertex(mathutil.Vec3{p[0], p[1], z1})
	}

	for _, t := range tris2D {
		// Top cap keeps the triangulation's CCW winding (normal +Z).
		g.addTriangle(topIDs[t[0]], topIDs[t[1]], topIDs[t[2]])
		// Bottom cap reverses winding so its normal points -Z.
		g.addTriangle(bottomIDs[t[0]], bottomIDs[t[2]], bottomIDs[t[1]])
	}

	stitchRing(&g, outer, verts2D, bottomIDs, topIDs)
	for _, hole := range holes {
		stitchRing(&g, hole, verts2D, bottomIDs, topIDs)
	}

	return g
}

// stitchRing emits the side walls for one boundary loop (outer or
// hole) of the silhouette, matching ring points back to their index in
// verts2D by value (RDP-simplified rings share exact coordinates with
// the triangulated vertex list they came from).
func stitchRing(g *Geometry, ring []mathutil.Vec2, verts2D []mathutil.Vec2, bottomIDs, topIDs []VertexID) {
	n := len(ring)
	if n < 2 {
		return
	}
	idx := make([]int, n)
	for i, p := range ring {
		idx[i] = indexOf(verts2D, p)
	}

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := idx[i], idx[j]
		if a < 0 || b < 0 {
			continue
		}
		// Outer ring is CCW; a quad wall a(bottom)->b(bottom)->b(top)->a(top)
		// faces outward for a CCW ring and inward for a CW (hole) ring,
		// which is exactly the orientation each needs.
		g.addTriangle(bottomIDs[a], bottomIDs[b], topIDs[b])
		g.addTriangle(bottomIDs[a], topIDs[b], topIDs[a])
	}
}

func indexOf(verts []mathutil.Vec2, p mathutil.Vec2) int {
	for i, v := range verts {
		if v == p {
			return i
		}
	}
	return -1
}

// RoundedRectBase builds the base plate: a rounded rectangle of size
// width x height (mm), corner radius r, extruded from 0 to thickness.
// Corner arcs use max(8, r*4) segments per corner, generated with
// Vec2.Rotate the way the teacher generates any radial geometry. r == 0
// is a plain rectangle (one vertex per corner), not a degenerate arc:
// rotating a zero-length radius vector produces the same point for
// every sample, and earClip can never clip an ear between coincident
// neighbors, so a zero radius must skip arc generation entirely.
func RoundedRectBase(width, height, r, thickness float64) Geometry {
	if r > width/2 {
		r = width / 2
	}
	if r > height/2 {
		r = height / 2
	}

	var outline []mathutil.Vec2
	if r <= 0 {
		hw, hh := width/2, height/2
		outline = []mathutil.Vec2{{hw, hh}, {-hw, hh}, {-hw, -hh}, {hw, -hh}}
	} else {
		segments := int(math.Max(8, r*4))
		outline = roundedRectOutline(width, height, r, segments)
	}

	verts2D, tris2D, err := triangulate.Triangulate(outline, nil)
	if err != nil {
		return Geometry{}
	}
	return ExtrudeComponent(outline, nil, verts2D, tris2D, 0, thickness)
}

// roundedRectOutline returns the CCW polygon of a rounded rectangle
// centered at the origin, built from four corner arcs joined by
// straight edges.
func roundedRectOutline(width, height, r float64, segments int) []mathutil.Vec2 {
	hw, hh := width/2, height/2
	centers := [4]mathutil.Vec2{
		{hw - r, hh - r},   // top-right
		{-hw + r, hh - r},  // top-left
		{-hw + r, -hh + r}, // bottom-left
		{hw - r, -hh + r},  // bottom-right
	}
	// Each corner sweeps a quarter turn starting from the angle that
	// continues smoothly from the previous straight edge.
	startAngles := [4]float64{0, math.Pi / 2, math.Pi, 3 * math.Pi / 2}

	var pts []mathutil.Vec2
	for c := 0; c < 4; c++ {
		center := centers[c]
		start := startAngles[c]
		for s := 0; s <= segments; s++ {
			angle := start + (math.Pi/2)*(float64(s)/float64(segments))
			offset := mathutil.Vec2{r, 0}.Rotate(angle)
			pts = append(pts, center.Add(offset))
		}
	}
	return pts
}
