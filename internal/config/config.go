// Package config resolves bookmark build settings from a JSON config
// file layered under CLI flags, following the teacher's
// Config.Resolve(Flags) override pattern: file values first, then any
// non-zero flag wins, then defaults fill whatever is still unset.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all configurable paths and build settings for one run.
type Config struct {
	// Paths
	InputPath string `json:"input_path"`
	OutputDir string `json:"output_dir"`

	// Geometry settings (millimeters unless noted)
	ColorCount          int     `json:"color_count"`
	LayerThicknessMM    float64 `json:"layer_thickness_mm"`
	BaseThicknessMM     float64 `json:"base_thickness_mm"`
	WidthMM             float64 `json:"width_mm"`
	HeightMM            float64 `json:"height_mm"`
	CornerRadiusMM      float64 `json:"corner_radius_mm"`
	MinWallThicknessMM  float64 `json:"min_wall_thickness_mm"`
	MinFeatureSizeMM    float64 `json:"min_feature_size_mm"`
	SimplificationRatio float64 `json:"simplification_ratio"`

	// Run settings
	Workers int `json:"workers"`
}

// Load reads a JSON config file and returns Config. Fields not set in
// the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	InputPath  string
	OutputDir  string
	ColorCount int
	WidthMM    float64
	HeightMM   float64
	Workers    int
}

// Resolve fills in any empty fields with auto-detected or hardcoded
// defaults. CLI flags take priority over a loaded config file.
func (c *Config) Resolve(flags Flags) {
	if flags.InputPath != "" {
		c.InputPath = flags.InputPath
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.ColorCount > 0 {
		c.ColorCount = flags.ColorCount
	}
	if flags.WidthMM > 0 {
		c.WidthMM = flags.WidthMM
	}
	if flags.HeightMM > 0 {
		c.HeightMM = flags.HeightMM
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.OutputDir == "" {
		c.OutputDir = detectOutputDir(c.InputPath)
	}

	if c.ColorCount <= 0 {
		c.ColorCount = 6
	}
	if c.LayerThicknessMM <= 0 {
		c.LayerThicknessMM = 0.2
	}
	if c.BaseThicknessMM <= 0 {
		c.BaseThicknessMM = 1.0
	}
	if c.WidthMM <= 0 {
		c.WidthMM = 70
	}
	if c.HeightMM <= 0 {
		c.HeightMM = 150
	}
	if c.CornerRadiusMM <= 0 {
		c.CornerRadiusMM = 2
	}
	if c.MinWallThicknessMM <= 0 {
		c.MinWallThicknessMM = 0.4
	}
	if c.MinFeatureSizeMM <= 0 {
		c.MinFeatureSizeMM = 0.4
	}
	if c.SimplificationRatio <= 0 {
		c.SimplificationRatio = 0.5
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// detectOutputDir places output alongside the source image when no
// output directory was given.
func detectOutputDir(inputPath string) string {
	if inputPath == "" {
		return "."
	}
	return filepath.Dir(inputPath)
}
