// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

// config.go reduces the New API footprint using functional options.
// See: http://dave.cheney.net/2014/10/17/functional-options-for-friendly-apis

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gazed/tiler/parallel"
	"github.com/gazed/tiler/selection"
)

// Config contains the tiling attributes that can be set before running
// the tiler.
type Config struct {
	tileCount        int     // soft upper bound on selected tiles.
	overdrawFactor   float64 // budget for mean projected-area overdraw.
	peakOverdraw     float64 // per-direction overdraw budget.
	peakFovDegrees   float64 // field of view of each sampling cone.
	peakSamples      int     // number of sampled view directions.
	headboxRadius    float64 // radius of the viewing volume.
	skyboxRadius     float64 // half side length of the outer cube.
	workers          int     // worker pool size.
	minLevel         int     // minimum subdivision depth to consider.
	maxLevel         int     // maximum subdivision depth to consider.
	selectionSolver  selection.Solver
}

// configDefaults provides reasonable defaults so the tiler runs even
// if no configuration attributes are set.
var configDefaults = Config{
	tileCount:      1000,  // generous tile budget.
	overdrawFactor: 4,     // mean overdraw budget.
	peakOverdraw:   1000,  // effectively unbounded peak overdraw.
	peakFovDegrees: 90,    // quarter-sphere sampling cones.
	peakSamples:    100,   // sampled view directions.
	headboxRadius:  0.5,   // half-meter viewing volume.
	skyboxRadius:   200,   // scene bounds.
	minLevel:       3,     // at least 4^3 * 6 cells for a full scene.
	maxLevel:       7,     // finest cells considered.
}

// Attr defines optional tiling attributes that can be used to
// configure the tiler.
//
//	t := tiler.New(
//	   tiler.TileCount(200),
//	   tiler.OverdrawFactor(2.5),
//	   tiler.SubdivisionLevels(1, 2),
//	)
type Attr func(*Config) // type for attribute overrides.

// TileCount sets the soft upper bound on the number of selected tiles.
// The budget on the triangle weight dimension is twice this value.
func TileCount(count int) Attr {
	return func(c *Config) { c.tileCount = count }
}

// OverdrawFactor sets the budget for mean projected-area overdraw.
func OverdrawFactor(factor float64) Attr {
	return func(c *Config) { c.overdrawFactor = factor }
}

// PeakOverdrawFactor sets the per-direction overdraw budget.
func PeakOverdrawFactor(factor float64) Attr {
	return func(c *Config) { c.peakOverdraw = factor }
}

// PeakOverdrawFOV sets the field of view, in degrees, of the cones
// used to sample peak overdraw.
func PeakOverdrawFOV(degrees float64) Attr {
	return func(c *Config) { c.peakFovDegrees = degrees }
}

// PeakOverdrawSamples sets the number of view directions sampled when
// bounding peak overdraw.
func PeakOverdrawSamples(samples int) Attr {
	return func(c *Config) { c.peakSamples = samples }
}

// HeadboxRadius sets the radius of the origin-centered sphere of
// allowed eye positions.
func HeadboxRadius(radius float64) Attr {
	return func(c *Config) { c.headboxRadius = radius }
}

// SkyboxRadius sets the half side length of the origin-centered cube
// bounding all geometry.
func SkyboxRadius(radius float64) Attr {
	return func(c *Config) { c.skyboxRadius = radius }
}

// Workers sets the worker pool size. The default is one worker per
// available CPU.
func Workers(count int) Attr {
	return func(c *Config) { c.workers = count }
}

// SubdivisionLevels sets the inclusive subdivision depth range whose
// cells become selection groups.
func SubdivisionLevels(min, max int) Attr {
	return func(c *Config) { c.minLevel, c.maxLevel = min, max }
}

// SelectionSolver replaces the default greedy selection solver.
func SelectionSolver(solver selection.Solver) Attr {
	return func(c *Config) { c.selectionSolver = solver }
}

// yamlConfig mirrors Config for parameter files. Pointer fields
// distinguish absent keys from zero values.
type yamlConfig struct {
	TileCount       *int     `yaml:"tile_count"`
	OverdrawFactor  *float64 `yaml:"overdraw_factor"`
	PeakOverdraw    *float64 `yaml:"peak_overdraw_factor"`
	PeakFovDegrees  *float64 `yaml:"peak_overdraw_field_of_view_degrees"`
	PeakSamples     *int     `yaml:"peak_overdraw_samples"`
	HeadboxRadius   *float64 `yaml:"headbox_radius"`
	SkyboxRadius    *float64 `yaml:"skybox_radius"`
	ThreadCount     *int     `yaml:"thread_count"`
	MinSubdivision  *int     `yaml:"min_subdivision_level"`
	MaxSubdivision  *int     `yaml:"max_subdivision_level"`
}

// LoadAttrs parses a YAML parameter file into an attribute override.
// Only the recognized fields present in the document are applied.
func LoadAttrs(r io.Reader) (Attr, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("tiler: reading parameters: %w", err)
	}
	var parsed yamlConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("tiler: parsing parameters: %w", err)
	}
	return func(c *Config) {
		if parsed.TileCount != nil {
			c.tileCount = *parsed.TileCount
		}
		if parsed.OverdrawFactor != nil {
			c.overdrawFactor = *parsed.OverdrawFactor
		}
		if parsed.PeakOverdraw != nil {
			c.peakOverdraw = *parsed.PeakOverdraw
		}
		if parsed.PeakFovDegrees != nil {
			c.peakFovDegrees = *parsed.PeakFovDegrees
		}
		if parsed.PeakSamples != nil {
			c.peakSamples = *parsed.PeakSamples
		}
		if parsed.HeadboxRadius != nil {
			c.headboxRadius = *parsed.HeadboxRadius
		}
		if parsed.SkyboxRadius != nil {
			c.skyboxRadius = *parsed.SkyboxRadius
		}
		if parsed.ThreadCount != nil {
			c.workers = *parsed.ThreadCount
		}
		if parsed.MinSubdivision != nil {
			c.minLevel = *parsed.MinSubdivision
		}
		if parsed.MaxSubdivision != nil {
			c.maxLevel = *parsed.MaxSubdivision
		}
	}, nil
}

// resolve finalizes a configuration, applying defaults for unset
// attributes and panicking on nonsensical combinations.
func (c *Config) resolve() {
	if c.workers <= 0 {
		c.workers = parallel.WorkerDefault()
	}
	if c.minLevel < 0 || c.maxLevel < c.minLevel {
		panic(fmt.Sprintf("tiler.Config: invalid subdivision levels %d-%d",
			c.minLevel, c.maxLevel))
	}
	if c.maxLevel > maxSubdivisionDepth {
		panic(fmt.Sprintf("tiler.Config: subdivision level %d beyond maximum %d",
			c.maxLevel, maxSubdivisionDepth))
	}
	if c.selectionSolver == nil {
		c.selectionSolver = selection.NewGreedy()
	}
}
