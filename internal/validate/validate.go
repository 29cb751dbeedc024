// Package validate runs the printability checks spec.md section 4.8
// requires before a mesh is written out: watertightness, per-component
// wall thickness, minimum feature size, overhang angle, and layer
// monotonicity. The wall-thickness estimator repurposes
// mathutil.Eigen2x2Sym (originally a PCA helper for sprite-render
// alignment in the teacher) as a cross-sectional thickness probe.
package validate

import (
	"fmt"
	"math"

	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/mesh"
	"bookmark-generator/internal/region"
)

// Severity classifies how serious an Issue is.
type Severity int

const (
	Info Severity = iota
	Warning
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Fatal:
		return "fatal"
	case Warning:
		return "warning"
	default:
		return "info"
	}
}

// Issue is one printability finding.
type Issue struct {
	Severity Severity
	Message  string
	Layer    int
}

// Report is the full set of findings for one bookmark build.
type Report struct {
	Issues []Issue
}

// Printable reports whether no Fatal issue was found.
func (r Report) Printable() bool {
	for _, i := range r.Issues {
		if i.Severity == Fatal {
			return false
		}
	}
	return true
}

func (r *Report) add(sev Severity, layer int, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Severity: sev, Layer: layer, Message: fmt.Sprintf(format, args...)})
}

// DefaultMinWallThickness is the minimum printable wall thickness in
// millimeters for a typical 0.4mm nozzle.
const DefaultMinWallThickness = 0.4

// Validate runs every printability check against the region extraction
// (for per-component geometry and layer monotonicity) and the final
// merged mesh (for watertightness).
func Validate(ext region.Extraction, geometry mesh.Geometry, pixelPitchMM, minWallThickness, minFeatureSize float64) Report {
	var report Report

	checkWatertight(geometry, &report)
	checkMonotonicity(ext, &report)
	checkComponents(ext, pixelPitchMM, minWallThickness, minFeatureSize, &report)

	// Side walls are extruded exactly vertical by construction, so the
	// overhang angle is always 90 degrees from horizontal; recorded for
	// completeness rather than as a live measurement.
	report.add(Info, -1, "overhang angle is 90 degrees (vertical walls by construction)")

	return report
}

// checkWatertight verifies every triangle edge is shared by exactly two
// triangles.
func checkWatertight(g mesh.Geometry, report *Report) {
	type edgeKey struct{ a, b mesh.VertexID }
	counts := make(map[edgeKey]int, len(g.Triangles)*3)
	addEdge := func(a, b mesh.VertexID) {
		if a > b {
			a, b = b, a
		}
		counts[edgeKey{a, b}]++
	}
	for _, t := range g.Triangles {
		addEdge(t[0], t[1])
		addEdge(t[1], t[2])
		addEdge(t[2], t[0])
	}
	bad := 0
	for _, c := range counts {
		if c != 2 {
			bad++
		}
	}
	if bad > 0 {
		report.add(Fatal, -1, "mesh is not watertight: %d edge(s) not shared by exactly two triangles", bad)
	}
}

// checkMonotonicity re-verifies that each layer's mask is a subset of
// the layer below it, the invariant region.Extract is supposed to
// guarantee; a violation here indicates a bug upstream, not bad input,
// so it is always Fatal.
func checkMonotonicity(ext region.Extraction, report *Report) {
	for l := 1; l < len(ext.Layers); l++ {
		lower := ext.Layers[l-1].Mask
		upper := ext.Layers[l].Mask
		for i := range upper {
			if upper[i] && !lower[i] {
				report.add(Fatal, l, "layer %d is not a subset of layer %d (monotonicity violated)", l, l-1)
				return
			}
		}
	}
}

// checkComponents estimates wall thickness via PCA minor-axis extent
// and flags components smaller than minFeatureSize.
func checkComponents(ext region.Extraction, pixelPitchMM, minWallThickness, minFeatureSize float64, report *Report) {
	for _, layer := range ext.Layers {
		for _, comp := range layer.Components {
			widthMM := float64(comp.MaxX-comp.MinX+1) * pixelPitchMM
			heightMM := float64(comp.MaxY-comp.MinY+1) * pixelPitchMM
			if widthMM < minFeatureSize || heightMM < minFeatureSize {
				report.add(Warning, layer.Index,
					"component bounding box %.2fx%.2fmm is below the minimum feature size %.2fmm",
					widthMM, heightMM, minFeatureSize)
			}

			thicknessMM := minorAxisExtentMM(comp, ext.Width, pixelPitchMM)
			if thicknessMM < minWallThickness {
				report.add(Warning, layer.Index,
					"component minor-axis extent %.3fmm is thinner than the minimum wall thickness %.3fmm",
					thicknessMM, minWallThickness)
			}
		}
	}
}

// minorAxisExtentMM estimates a component's narrowest cross-sectional
// width: PCA over its pixel coordinates gives the minor-axis variance,
// and a uniform-distribution assumption converts variance to an extent
// (width^2/12 = variance for a uniform strip of that width). Pixels are
// decoded with the full image width, exactly as region.label and
// region.filterSmall do, not the component's bounding-box width.
func minorAxisExtentMM(comp region.Component, imgWidth int, pixelPitchMM float64) float64 {
	n := len(comp.Pixels)
	if n == 0 {
		return 0
	}

	var sumX, sumY float64
	coords := make([]mathutil.Vec2, n)
	for i, p := range comp.Pixels {
		x, y := float64(p%imgWidth), float64(p/imgWidth)
		coords[i] = mathutil.Vec2{x, y}
		sumX += x
		sumY += y
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var varX, varY, covXY float64
	for _, c := range coords {
		dx, dy := c[0]-meanX, c[1]-meanY
		varX += dx * dx
		varY += dy * dy
		covXY += dx * dy
	}
	varX /= float64(n)
	varY /= float64(n)
	covXY /= float64(n)

	_, eval2, _, _ := mathutil.Eigen2x2Sym(varX, covXY, varY)
	if eval2 < 0 {
		eval2 = 0
	}
	extentPixels := math.Sqrt(12 * eval2)
	return extentPixels * pixelPitchMM
}
