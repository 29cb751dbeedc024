package mesh

import (
	"math"
	"testing"

	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/triangulate"
)

func TestExtrudeComponentWatertightSquare(t *testing.T) {
	outer := []mathutil.Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	verts2D, tris2D, err := triangulate.Triangulate(outer, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := ExtrudeComponent(outer, nil, verts2D, tris2D, 0, 2)

	// A closed prism has exactly 2 cap triangles * 2 + 2 wall triangles
	// per edge * 4 edges = 4 + 8 = 12 triangles.
	if len(g.Triangles) != 12 {
		t.Fatalf("expected 12 triangles for an extruded square, got %d", len(g.Triangles))
	}

	// Every edge must be shared by exactly two triangles (watertight).
	edgeCount := make(map[[2]VertexID]int)
	for _, tri := range g.Triangles {
		edges := [3][2]VertexID{
			{tri[0], tri[1]}, {tri[1], tri[2]}, {tri[2], tri[0]},
		}
		for _, e := range edges {
			key := e
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			edgeCount[key]++
		}
	}
	for e, c := range edgeCount {
		if c != 2 {
			t.Fatalf("edge %v shared by %d triangles, want 2", e, c)
		}
	}
}

func TestRoundedRectBaseProducesGeometry(t *testing.T) {
	g := RoundedRectBase(40, 10, 2, 1.5)
	if len(g.Vertices) == 0 || len(g.Triangles) == 0 {
		t.Fatal("expected non-empty base geometry")
	}
	for _, v := range g.Vertices {
		if v[2] != 0 && math.Abs(v[2]-1.5) > 1e-9 {
			t.Fatalf("base vertex z should be 0 or thickness, got %f", v[2])
		}
	}
}

func TestRoundedRectBaseZeroRadiusIsPlainRectangle(t *testing.T) {
	g := RoundedRectBase(50, 150, 0, 2.0)
	if len(g.Vertices) != 8 {
		t.Fatalf("expected 8 vertices for a zero-radius base, got %d", len(g.Vertices))
	}
	if len(g.Triangles) != 12 {
		t.Fatalf("expected 12 triangles for a zero-radius base, got %d", len(g.Triangles))
	}
}

func TestRoundedRectBaseClampsOversizedRadius(t *testing.T) {
	g := RoundedRectBase(4, 4, 100, 1)
	if len(g.Vertices) == 0 {
		t.Fatal("expected geometry even when radius is clamped to half the smaller dimension")
	}
}
