// Package batch runs the bookmark pipeline across many source images
// with a worker pool, adapted from the teacher's batch.Run: the same
// atomic.Int64 progress counter and time.Ticker reporter, retargeted
// from per-item BMD rendering to per-image pipeline.Run calls.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"bookmark-generator/internal/imageio"
	"bookmark-generator/internal/pipeline"
	"bookmark-generator/internal/stlwrite"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Params    pipeline.Params
	Workers   int
}

// Job names one source image to process.
type Job struct {
	Name      string // base name used for output files, no extension
	InputPath string
}

// Result holds the outcome of processing one job.
type Result struct {
	Name    string
	Success bool
	Error   string
}

// Run processes every job using a worker pool, writing an STL file per
// job into cfg.OutputDir.
func Run(ctx context.Context, cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Printf("  [%d/%d] %.1f images/sec\n", p, total, rate)
				}
			}
		}
	}()

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(ctx, cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(ctx context.Context, cfg Config, job Job) Result {
	img, err := imageio.Load(job.InputPath)
	if err != nil {
		return Result{Name: job.Name, Error: err.Error()}
	}

	result, err := pipeline.Run(ctx, img, cfg.Params, pipeline.NopSink{})
	if err != nil {
		return Result{Name: job.Name, Error: err.Error()}
	}

	outPath := filepath.Join(cfg.OutputDir, job.Name+".stl")
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return Result{Name: job.Name, Error: err.Error()}
	}
	if err := stlwrite.WriteFile(outPath, result.Geometry); err != nil {
		return Result{Name: job.Name, Error: fmt.Sprintf("stl write: %v", err)}
	}

	return Result{Name: job.Name, Success: true}
}
