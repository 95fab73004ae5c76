// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"log/slog"

	"github.com/gazed/tiler/math/lin"
	"github.com/gazed/tiler/parallel"
	"github.com/gazed/tiler/selection"
)

// Tiler generates tiles to approximate the geometry sampled by a
// point set.
type Tiler interface {
	Run(ps *PointSet) []Tile
}

// Tuning constants for the default candidate pipeline.
const (

	// maxPointsPerFit caps the points used per disk fitting
	// optimization. Decreasing this increases speed at a loss of
	// quality.
	maxPointsPerFit = 250

	// maxPartitionsPerCell is the maximum number of tiles offered per
	// cell. Higher allows more flexibility in the selection, but
	// beyond 8 is past the point of diminishing returns; running time
	// is roughly linear in this value.
	maxPartitionsPerCell = 8

	// tangentialFactor scales the convexity-aiding tangential term
	// during inner fitting iterations.
	tangentialFactor = 0.01

	// Cell bounds are dilated so neighbouring tiles overlap roughly
	// one and a half source pixels.
	inputPixelsPerDegree = 11
	dilationFactor       = 1.5
)

// SelectionTiler considers all cells of a hierarchical subdivision
// within a depth range to:
//  1. generate candidate tile sets per cell, and
//  2. select the best candidates by encoding the choice as a budgeted
//     selection problem.
type SelectionTiler struct {
	cfg       Config
	sub       Subdivision
	generator CandidateTileGenerator
	weights   TileWeightModel
	maxWeight []float64

	// One robustifier per pooled generator, polled after each run for
	// the once-per-run reinitialization warning.
	robustifiers []*RobustReinitializing
}

// New creates a SelectionTiler configured by the given attributes.
func New(attrs ...Attr) *SelectionTiler {
	cfg := configDefaults
	for _, attr := range attrs {
		if attr != nil {
			attr(&cfg)
		}
	}
	cfg.resolve()

	dilationRadians := dilationFactor * lin.PIx2 / (inputPixelsPerDegree * 360)
	sub := NewBoundsDilatingSubdivision(dilationRadians, NewCubemapSubdivision(cfg.maxLevel))

	t := &SelectionTiler{cfg: cfg, sub: sub}

	minDepth, maxDepth := depthRangeFor(cfg.headboxRadius, cfg.skyboxRadius)

	// Early fitting iterations include the tangential term for a more
	// convex problem; the final assignment drops it, better reflecting
	// the visual distortion of the final geometry. Analogous to
	// graduated non-convexity.
	diskSolver := func() GeometrySolver {
		return NewSubsetGeometrySolver(maxPointsPerFit,
			NewRailDiskSolver(tangentialFactor, sub, minDepth, maxDepth))
	}
	planeSolver := func() GeometrySolver {
		return NewRailDiskSolver(0, sub, minDepth, maxDepth)
	}

	factory := func() CandidateTileGenerator {
		splitting := NewPartitionSplitting(diskSolver())
		refitting := NewGeometryModelRefinement(1, diskSolver())
		assignment := NewPointExchange(1, diskSolver())
		finalAssignment := NewPointExchange(1, planeSolver())
		initialization := NewDepthBasedRedistribution(diskSolver())

		// All steps use the disk objective except the final assignment,
		// so the candidate partitions sent to selection are scored
		// without the tangential term.
		regular := NewSequential(splitting, refitting, assignment, refitting, finalAssignment)
		initial := NewSequential(initialization, refitting)
		reinitializing := NewHierarchical(2, initial,
			NewSequential(splitting, refitting, assignment, refitting, finalAssignment))

		robustifier := NewRobustReinitializing(reinitializing, regular)
		t.robustifiers = append(t.robustifiers, robustifier)

		return NewExhaustiveCandidateTileGenerator(maxPartitionsPerCell,
			robustifier, planeSolver(), NewRailTileResolver(sub))
	}
	t.generator = NewParallelCandidateTileGenerator(cfg.workers, factory)

	t.weights = NewCombinedTileWeightModel(
		TriangleCountTileWeightModel{},
		ProjectedAreaTileWeightModel{},
		NewDirectionalOverdrawTileWeightModel(cfg.peakSamples,
			lin.Rad(cfg.peakFovDegrees), cfg.headboxRadius))

	// The budget vector must match the weight model dimensions.
	t.maxWeight = make([]float64, 0, 2+cfg.peakSamples)
	t.maxWeight = append(t.maxWeight, float64(cfg.tileCount)*2)
	t.maxWeight = append(t.maxWeight, cfg.overdrawFactor)
	for i := 0; i < cfg.peakSamples; i++ {
		t.maxWeight = append(t.maxWeight, cfg.peakOverdraw)
	}
	return t
}

// Run is the library entry point for one-shot use: it tiles the point
// set with a tiler configured by the given attributes.
func Run(ps *PointSet, attrs ...Attr) []Tile {
	return New(attrs...).Run(ps)
}

// Run implements Tiler. It never fails on valid configurations:
// numerically hopeless candidates are dropped, empty cells contribute
// nothing, and the selection degrades by omitting cells rather than
// exceeding its budgets.
func (t *SelectionTiler) Run(ps *PointSet) []Tile {
	ps.validate()
	t.sub.Init(ps)

	cells := CellsInDepthRange(t.sub, t.cfg.minLevel, t.cfg.maxLevel)
	perCell := make([][]CandidateTiles, len(cells))
	t.generator.Init(ps)
	t.generator.Generate(ps, t.sub, cells, perCell)

	// Weigh every alternative in parallel. Alternatives whose weight
	// evaluation fails are dropped.
	type flatAlt struct {
		cell, alt int
		weight    []float64
		ok        bool
	}
	var flat []flatAlt
	for ci := range perCell {
		for ai := range perCell[ci] {
			flat = append(flat, flatAlt{cell: ci, alt: ai})
		}
	}
	dims := t.weights.Dimension()
	parallel.BalancedFor(t.cfg.workers, len(flat), func(i int) error {
		f := &flat[i]
		f.weight = make([]float64, dims)
		f.ok = true
		for ti := range perCell[f.cell][f.alt].Tiles {
			tileWeight := make([]float64, dims)
			if !t.weights.TileWeight(&perCell[f.cell][f.alt].Tiles[ti], tileWeight) {
				f.ok = false
				break
			}
			for d := range f.weight {
				f.weight[d] += tileWeight[d]
			}
		}
		return nil
	})

	// Assemble the selection problem. Each cell is a group; each of
	// its surviving candidates an alternative.
	problem := &selection.Problem{
		Groups:    make([][]selection.Alternative, len(cells)),
		MaxWeight: t.maxWeight,
	}
	refs := make([][]*CandidateTiles, len(cells))
	for i := range flat {
		f := &flat[i]
		if !f.ok {
			continue
		}
		candidate := &perCell[f.cell][f.alt]
		problem.Groups[f.cell] = append(problem.Groups[f.cell], selection.Alternative{
			Cost:   candidate.TotalCost(),
			Weight: f.weight,
		})
		refs[f.cell] = append(refs[f.cell], candidate)
	}

	chosen := t.cfg.selectionSolver.Solve(problem)

	var tiles []Tile
	for group, alt := range chosen {
		if alt >= 0 {
			tiles = append(tiles, refs[group][alt].Tiles...)
		}
	}

	if count := t.pollReinitializations(); count > 0 {
		slog.Warn("tiler: restarted clustering after numerical failure",
			"restarts", count)
	}
	return tiles
}

// pollReinitializations sums and resets the per-worker restart
// counters so each run warns at most once.
func (t *SelectionTiler) pollReinitializations() int64 {
	var total int64
	for _, r := range t.robustifiers {
		total += r.Reinitializations.Swap(0)
	}
	return total
}
