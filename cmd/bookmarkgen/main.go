// Command bookmarkgen turns a photo into a 3D-printable bookmark mesh,
// wiring imageio -> pipeline -> stlwrite. Flag layout and the
// config-then-flags-then-defaults resolution order follow the teacher's
// cmd/render/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookmark-generator/internal/batch"
	"bookmark-generator/internal/config"
	"bookmark-generator/internal/imageio"
	"bookmark-generator/internal/pipeline"
	"bookmark-generator/internal/stlwrite"
)

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	imagePath := flag.String("image", "", "Path to a single source image")
	imageDir := flag.String("images", "", "Directory of source images to batch process")
	outputDir := flag.String("output", "", "Output directory (default: alongside the input)")
	colorCount := flag.Int("colors", 0, "Palette size, 2-8 (default: 6)")
	widthMM := flag.Float64("width", 0, "Bookmark width in millimeters (default: 70)")
	heightMM := flag.Float64("height", 0, "Bookmark height in millimeters (default: 150)")
	workers := flag.Int("workers", 0, "Number of worker goroutines for batch mode (default: NumCPU)")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	inputPath := *imagePath
	if inputPath == "" {
		inputPath = *imageDir
	}

	cfg.Resolve(config.Flags{
		InputPath:  inputPath,
		OutputDir:  *outputDir,
		ColorCount: *colorCount,
		WidthMM:    *widthMM,
		HeightMM:   *heightMM,
		Workers:    *workers,
	})

	if *imagePath == "" && *imageDir == "" {
		fmt.Fprintln(os.Stderr, "Error: provide -image <file> or -images <dir>")
		os.Exit(1)
	}

	params := pipeline.Params{
		ColorCount:          cfg.ColorCount,
		LayerThicknessMM:    cfg.LayerThicknessMM,
		BaseThicknessMM:     cfg.BaseThicknessMM,
		WidthMM:             cfg.WidthMM,
		HeightMM:            cfg.HeightMM,
		CornerRadiusMM:      cfg.CornerRadiusMM,
		MinWallThicknessMM:  cfg.MinWallThicknessMM,
		MinFeatureSizeMM:    cfg.MinFeatureSizeMM,
		SimplificationRatio: cfg.SimplificationRatio,
	}

	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output directory: %v\n", err)
		os.Exit(1)
	}

	if *imageDir != "" {
		runBatch(cfg, params, *imageDir)
		return
	}
	runSingle(cfg, params, *imagePath)
}

func runSingle(cfg config.Config, params pipeline.Params, imagePath string) {
	fmt.Printf("Bookmark Generator: %s\n", imagePath)
	fmt.Printf("Colors: %d, Size: %.1fx%.1fmm\n", params.ColorCount, params.WidthMM, params.HeightMM)
	fmt.Println("------------------------------------------------------------")

	img, err := imageio.Load(imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading image: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := pipeline.Run(ctx, img, params, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building mesh: %v\n", err)
		os.Exit(1)
	}

	name := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	outPath := filepath.Join(cfg.OutputDir, name+".stl")
	if err := stlwrite.WriteFile(outPath, result.Geometry); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing STL: %v\n", err)
		os.Exit(1)
	}

	elapsed := time.Since(start)
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())
	fmt.Printf("Vertices: %d, Triangles: %d\n", len(result.Geometry.Vertices), len(result.Geometry.Triangles))
	for _, issue := range result.Report.Issues {
		fmt.Printf("  [%s] %s\n", issue.Severity, issue.Message)
	}
	fmt.Printf("STL: %s\n", outPath)
}

func runBatch(cfg config.Config, params pipeline.Params, dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image directory: %v\n", err)
		os.Exit(1)
	}

	var jobs []batch.Job
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch ext {
		case ".png", ".jpg", ".jpeg", ".webp", ".tga":
			name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
			jobs = append(jobs, batch.Job{Name: name, InputPath: filepath.Join(dir, e.Name())})
		}
	}

	if len(jobs) == 0 {
		fmt.Println("No images to process.")
		return
	}

	fmt.Printf("Bookmark Generator (batch): %d images, %d workers\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()
	params.Timeout = 60 * time.Second
	results := batch.Run(context.Background(), batch.Config{
		OutputDir: cfg.OutputDir,
		Params:    params,
		Workers:   cfg.Workers,
	}, jobs)
	elapsed := time.Since(start)

	success, failed := 0, 0
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
		}
	}

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs. Succeeded: %d/%d\n", elapsed.Seconds(), success, len(jobs))
	if failed > 0 {
		fmt.Printf("Failed (%d):\n", failed)
		for _, r := range results {
			if !r.Success {
				fmt.Printf("  %s: %s\n", r.Name, r.Error)
			}
		}
	}

	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, jobs, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
