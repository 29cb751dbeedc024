package validate

import (
	"testing"

	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/mesh"
	"bookmark-generator/internal/region"
)

func closedTetrahedron() mesh.Geometry {
	v := []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	return mesh.Geometry{
		Vertices: v,
		Triangles: []mesh.Triangle{
			{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {2, 0, 3},
		},
	}
}

func TestValidateWatertightPasses(t *testing.T) {
	ext := region.Extraction{Width: 1, Height: 1, Layers: []region.Layer{
		{Index: 0, Mask: []bool{true}},
	}}
	report := Validate(ext, closedTetrahedron(), 0.1, DefaultMinWallThickness, 0.5)
	if !report.Printable() {
		t.Fatalf("expected a closed tetrahedron to be watertight, issues: %+v", report.Issues)
	}
}

func TestValidateOpenMeshFails(t *testing.T) {
	v := []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	g := mesh.Geometry{Vertices: v, Triangles: []mesh.Triangle{{0, 1, 2}}}
	ext := region.Extraction{Width: 1, Height: 1, Layers: []region.Layer{{Index: 0, Mask: []bool{true}}}}
	report := Validate(ext, g, 0.1, DefaultMinWallThickness, 0.5)
	if report.Printable() {
		t.Fatal("a single open triangle must not be reported printable")
	}
}

func TestValidateMonotonicityViolationIsFatal(t *testing.T) {
	ext := region.Extraction{
		Width: 2, Height: 1,
		Layers: []region.Layer{
			{Index: 0, Mask: []bool{true, false}},
			{Index: 1, Mask: []bool{false, true}}, // not a subset of layer 0
		},
	}
	report := Validate(ext, closedTetrahedron(), 0.1, DefaultMinWallThickness, 0.5)
	if report.Printable() {
		t.Fatal("expected monotonicity violation to be fatal")
	}
}

func TestValidateThinComponentWarns(t *testing.T) {
	// A 1-pixel-wide, 20-pixel-tall sliver should read as thinner than
	// the default minimum wall thickness once scaled to millimeters.
	w, h := 3, 20
	pixels := make([]int, 0, h)
	for y := 0; y < h; y++ {
		pixels = append(pixels, y*w+1)
	}
	comp := region.Component{ID: 0, Pixels: pixels, MinX: 1, MaxX: 1, MinY: 0, MaxY: h - 1}
	ext := region.Extraction{
		Width: w, Height: h,
		Layers: []region.Layer{{Index: 0, Mask: make([]bool, w*h), Components: []region.Component{comp}}},
	}
	report := Validate(ext, closedTetrahedron(), 0.1, DefaultMinWallThickness, 0.1)
	foundWarning := false
	for _, i := range report.Issues {
		if i.Severity == Warning {
			foundWarning = true
		}
	}
	if !foundWarning {
		t.Fatal("expected a warning for a sliver-thin component")
	}
}
