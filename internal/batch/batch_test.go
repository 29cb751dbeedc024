package batch

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookmark-generator/internal/pipeline"
)

func writeSamplePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if x < 10 {
				img.Set(x, y, color.NRGBA{R: 220, G: 20, B: 20, A: 255})
			} else {
				img.Set(x, y, color.NRGBA{R: 20, G: 20, B: 220, A: 255})
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func TestRunProcessesJobsAndWritesSTL(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "swatch.png")
	writeSamplePNG(t, inputPath)

	cfg := Config{
		OutputDir: dir,
		Params: pipeline.Params{
			ColorCount:          2,
			WidthMM:             20,
			HeightMM:            30,
			CornerRadiusMM:      1,
			SimplificationRatio: 1.0,
			Timeout:             5 * time.Second,
		},
		Workers: 2,
	}
	jobs := []Job{{Name: "swatch", InputPath: inputPath}}

	results := Run(context.Background(), cfg, jobs)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Success {
		t.Fatalf("expected success, got error: %s", results[0].Error)
	}

	if _, err := os.Stat(filepath.Join(dir, "swatch.stl")); err != nil {
		t.Fatalf("expected STL output file: %v", err)
	}
}

func TestRunReportsMissingInputAsError(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{OutputDir: dir, Workers: 1}
	jobs := []Job{{Name: "missing", InputPath: filepath.Join(dir, "nope.png")}}

	results := Run(context.Background(), cfg, jobs)
	if results[0].Success {
		t.Fatal("expected failure for a missing input file")
	}
}

func TestWriteManifestRecordsEachJob(t *testing.T) {
	dir := t.TempDir()
	jobs := []Job{{Name: "a", InputPath: "a.png"}, {Name: "b", InputPath: "b.png"}}
	results := []Result{{Name: "a", Success: true}, {Name: "b", Error: "boom"}}

	path := filepath.Join(dir, "manifest.json")
	if err := WriteManifest(path, jobs, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		t.Fatalf("expected a non-empty manifest file, err=%v", err)
	}
}
