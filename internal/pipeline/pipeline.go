// Package pipeline sequences color quantization through printability
// validation into one bookmark build (spec.md section 4, "Pipeline").
// Cancellation and timeout follow context.Context; progress reporting
// is adapted from the teacher's internal/batch.Run ticker-driven
// reporter, pushed from explicit yield points instead of polled on a
// timer so the caller hears about real work, not wall-clock ticks.
// Resource-budget downscaling reuses internal/postprocess/supersample.go's
// golang.org/x/image/draw scaling call, swapped to BiLinear per spec.
package pipeline

import (
	"context"
	"image"
	"math"
	"math/rand"

	"golang.org/x/image/draw"

	"bookmark-generator/internal/colorspace"
	"bookmark-generator/internal/contour"
	"bookmark-generator/internal/mathutil"
	"bookmark-generator/internal/mesh"
	"bookmark-generator/internal/quantize"
	"bookmark-generator/internal/region"
	"bookmark-generator/internal/sampler"
	"bookmark-generator/internal/simplify"
	"bookmark-generator/internal/triangulate"
	"bookmark-generator/internal/validate"
)

// bytesPerPixelEstimate accounts for every scratch buffer a job holds
// at peak (source pixels, quantized indices, height map, per-layer
// masks, contour/triangle staging) for the resource-budget check.
const bytesPerPixelEstimate = 64

// MaxImageDimension is the largest source width or height accepted in
// either axis; larger images are rejected outright rather than
// silently downscaled, so the caller knows their input was out of
// bounds instead of getting an unexpected resolution.
const MaxImageDimension = 4096

// Result is everything a successful Run produces.
type Result struct {
	Geometry mesh.Geometry
	Palette  []colorspace.Color
	Report   validate.Report
}

// Run executes the full pipeline against src, honoring ctx for
// cancellation and params.Timeout for a wall-clock deadline.
func Run(ctx context.Context, src image.Image, params Params, sink ProgressSink) (Result, error) {
	resolved, err := params.Resolve()
	if err != nil {
		return Result{}, err
	}
	sink = sinkOrNop(sink)

	ctx, cancel := context.WithTimeout(ctx, resolved.Timeout)
	defer cancel()

	srcBounds := src.Bounds()
	if srcBounds.Dx() > MaxImageDimension || srcBounds.Dy() > MaxImageDimension {
		return Result{}, &Error{Kind: UnsupportedImage, Err: errf("image %dx%d exceeds the maximum supported dimension of %dx%d",
			srcBounds.Dx(), srcBounds.Dy(), MaxImageDimension, MaxImageDimension)}
	}

	src = downscaleToBudget(src, resolved.MemoryBudgetBytes, sink)
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return Result{}, &Error{Kind: UnsupportedImage, Err: errf("image has zero width or height")}
	}
	pixelPitchMM := resolved.WidthMM / float64(w)

	rng := rand.New(rand.NewSource(resolved.Seed))
	at := func(x, y int) colorspace.Color { return colorAt(src, bounds, x, y) }

	if err := checkCancelled(ctx); err != nil {
		return Result{}, err
	}
	samples := sampler.Sample(sampler.Image{Width: w, Height: h, At: at}, rng)
	sink.Emit(ProgressEvent{Stage: StageSampling, Progress: 1, Message: "sampling: collected pixels"})

	quantYield := func(progress float64, message string, _ int) error {
		sink.Emit(ProgressEvent{Stage: StageQuantize, Progress: progress, Message: message})
		return checkCancelled(ctx)
	}
	quantResult, err := quantize.Quantize(quantize.Image{Width: w, Height: h, At: at}, samples, resolved.ColorCount, rng, quantYield)
	if err != nil {
		return Result{}, wrapCancelled(err)
	}
	if quantResult.Truncated {
		sink.Emit(ProgressEvent{Stage: StageQuantize, Progress: 1,
			Message: "quantize: palette truncated to fewer colors than requested"})
	}

	regionYield := func(progress float64, message string) error {
		sink.Emit(ProgressEvent{Stage: StageRegion, Progress: progress, Message: message})
		return checkCancelled(ctx)
	}
	ext, err := region.Extract(quantResult.Image, regionYield)
	if err != nil {
		return Result{}, wrapCancelled(err)
	}

	geometry, err := buildGeometry(ctx, ext, resolved, pixelPitchMM, sink)
	if err != nil {
		return Result{}, err
	}

	sink.Emit(ProgressEvent{Stage: StageSimplify, Progress: 0, Message: "simplify: welding vertices"})
	geometry = simplify.Weld(geometry, simplify.WeldTolerance)
	if err := checkCancelled(ctx); err != nil {
		return Result{}, err
	}
	geometry = simplify.Simplify(geometry, resolved.SimplificationRatio, resolved.MaxVertices, resolved.MinFeatureSizeMM)
	sink.Emit(ProgressEvent{Stage: StageSimplify, Progress: 1, Message: "simplify: done"})

	sink.Emit(ProgressEvent{Stage: StageValidate, Progress: 0, Message: "validate: checking printability"})
	report := validate.Validate(ext, geometry, pixelPitchMM, resolved.MinWallThicknessMM, resolved.MinFeatureSizeMM)
	sink.Emit(ProgressEvent{Stage: StageValidate, Progress: 1, Message: "validate: done"})

	if !report.Printable() {
		return Result{Geometry: geometry, Palette: quantResult.Image.Palette, Report: report},
			&Error{Kind: Unprintable, Err: errf("%d fatal printability issue(s)", countFatal(report))}
	}

	sink.Emit(ProgressEvent{Stage: StageDone, Progress: 1, Message: "done"})
	return Result{Geometry: geometry, Palette: quantResult.Image.Palette, Report: report}, nil
}

// buildGeometry traces, triangulates, and extrudes every layer's
// components, then adds the rounded-rectangle base plate beneath them.
func buildGeometry(ctx context.Context, ext region.Extraction, p Params, pixelPitchMM float64, sink ProgressSink) (mesh.Geometry, error) {
	var geometry mesh.Geometry

	for _, layer := range ext.Layers {
		if err := checkCancelled(ctx); err != nil {
			return mesh.Geometry{}, err
		}

		sink.Emit(ProgressEvent{Stage: StageContour, Progress: 0, Message: "contour: tracing layer"})
		polys := contour.Trace(layer.Mask, ext.Width, ext.Height, p.MinFeatureSizeMM/pixelPitchMM)
		groups := contour.GroupByOuter(polys)

		z0 := p.BaseThicknessMM + float64(layer.Index)*p.LayerThicknessMM
		z1 := z0 + p.LayerThicknessMM

		for _, grp := range groups {
			outerMM := scalePoints(grp.Outer.Points, pixelPitchMM, p.WidthMM, p.HeightMM, ext.Width, ext.Height)
			holesMM := make([][]mathutil.Vec2, len(grp.Holes))
			for i, hpoly := range grp.Holes {
				holesMM[i] = scalePoints(hpoly.Points, pixelPitchMM, p.WidthMM, p.HeightMM, ext.Width, ext.Height)
			}

			verts2D, tris2D, err := triangulate.Triangulate(outerMM, holesMM)
			if err != nil {
				continue // degenerate silhouette (too few vertices after RDP); skip
			}
			sink.Emit(ProgressEvent{Stage: StageTriangulate, Progress: 1, Message: "triangulate: layer component"})

			comp := mesh.ExtrudeComponent(outerMM, holesMM, verts2D, tris2D, z0, z1)
			sink.Emit(ProgressEvent{Stage: StageExtrude, Progress: 1, Message: "extrude: layer component"})
			geometry.Merge(comp)
		}
	}

	base := mesh.RoundedRectBase(p.WidthMM, p.HeightMM, p.CornerRadiusMM, p.BaseThicknessMM)
	geometry.Merge(base)

	return geometry, nil
}

// scalePoints converts contour points (in pixel-grid coordinates,
// origin at the image's top-left) into millimeter coordinates centered
// on the bookmark, flipping Y since image rows grow downward while the
// printable coordinate frame grows up. The flip mirrors the loop, so the
// point order is reversed to keep its winding direction.
func scalePoints(pts []mathutil.Vec2, pixelPitchMM, widthMM, heightMM float64, imgW, imgH int) []mathutil.Vec2 {
	out := make([]mathutil.Vec2, len(pts))
	for i, p := range pts {
		x := p[0]*pixelPitchMM - widthMM/2
		y := heightMM/2 - p[1]*pixelPitchMM
		out[i] = mathutil.Vec2{x, y}
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func downscaleToBudget(src image.Image, budgetBytes int64, sink ProgressSink) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	estimated := int64(w) * int64(h) * bytesPerPixelEstimate
	if estimated <= budgetBytes || budgetBytes <= 0 {
		return src
	}

	scale := math.Sqrt(float64(budgetBytes) / float64(estimated))
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	sink.Emit(ProgressEvent{Stage: StageSampling, Progress: 0,
		Message: "pipeline: downscaling source image to fit the memory budget"})

	dst := image.NewNRGBA(image.Rect(0, 0, newW, newH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
	return dst
}

func colorAt(img image.Image, bounds image.Rectangle, x, y int) colorspace.Color {
	r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	return colorspace.Color{
		R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8),
		A: float64(a) / 65535.0,
	}
}

func checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return &Error{Kind: Cancelled, Err: ctx.Err()}
	default:
		return nil
	}
}

func wrapCancelled(err error) error {
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Kind: Cancelled, Err: err}
}

func countFatal(r validate.Report) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == validate.Fatal {
			n++
		}
	}
	return n
}
