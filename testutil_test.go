// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

// Shared helpers for the tiler tests: a trivial geometry solver over
// point indices, stage spies, and partitioning expectations.

import (
	"math"
	"sort"
	"testing"

	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
)

// fakeGeometrySolver optimizes models so the absolute distance of each
// point's *index* to the x-coordinate of the model center is minimized.
// Cheap and fully deterministic, which is all stage tests need.
type fakeGeometrySolver struct {
	ps *PointSet
}

func (s *fakeGeometrySolver) Init(ps *PointSet) { s.ps = ps }

func (s *fakeGeometrySolver) InitializeModel(point int, model *GeometryModel) {
	model.Center = lin.V3{X: float64(point)}
	model.Normal = lin.V3{Z: 1}
}

func (s *fakeGeometrySolver) FitModel(points []int, model *GeometryModel) bool {
	if len(points) == 0 {
		return false
	}
	mean := 0.0
	for _, point := range points {
		mean += float64(point)
	}
	model.Center.X = mean / float64(len(points))
	return true
}

func (s *fakeGeometrySolver) ComputeError(point int, model *GeometryModel) float64 {
	return math.Abs(float64(point) - model.Center.X)
}

// invalidGeometrySolver returns infinite error for every point.
type invalidGeometrySolver struct {
	fakeGeometrySolver
}

func (s *invalidGeometrySolver) ComputeError(point int, model *GeometryModel) float64 {
	return math.Inf(1)
}

// countingStage tracks how many times it has been invoked.
type countingStage struct {
	initCount int
	runCount  int
}

func (st *countingStage) Init(ps *PointSet)                        { st.initCount++ }
func (st *countingStage) Run(ps *PointSet, parts []BuildPartition) { st.runCount++ }

// indexPointSet holds points p[i] = (i, 0, i), matching the fake
// solver's index-based metric.
func indexPointSet(id, count int) *PointSet {
	ps := &PointSet{ID: id, Positions: make([]lin.V3, count)}
	for i := range ps.Positions {
		ps.Positions[i] = lin.V3{X: float64(i), Z: float64(i)}
	}
	return ps
}

// seedPartitioning distributes all point indices round robin over the
// given number of partitions.
func seedPartitioning(solver GeometrySolver, partitionCount, pointCount int) []BuildPartition {
	parts := make([]BuildPartition, partitionCount)
	for i := range parts {
		parts[i] = NewBuildPartition(NewGeometryModel())
	}
	for point := 0; point < pointCount; point++ {
		bp := &parts[point%partitionCount]
		if bp.Empty() {
			solver.InitializeModel(point, bp.Model())
		}
		bp.AddPoint(point, solver.ComputeError(point, bp.Model()))
	}
	return parts
}

// expectAllPointsPresent asserts every index in [0, pointCount) is
// assigned to exactly one partition.
func expectAllPointsPresent(t *testing.T, parts []BuildPartition, pointCount int) {
	t.Helper()
	var all []int
	for i := range parts {
		all = append(all, parts[i].Points()...)
	}
	if len(all) != pointCount {
		t.Fatalf("partitioning holds %d points, not %d", len(all), pointCount)
	}
	sort.Ints(all)
	for i, point := range all {
		if point != i {
			t.Fatalf("point %d is missing or duplicated", i)
		}
	}
}

// expectNoDuplicatePoints asserts no point is assigned twice.
func expectNoDuplicatePoints(t *testing.T, parts []BuildPartition) {
	t.Helper()
	seen := map[int]bool{}
	for i := range parts {
		for _, point := range parts[i].Points() {
			if seen[point] {
				t.Fatalf("point %d appears in multiple partitions", point)
			}
			seen[point] = true
		}
	}
}

// totalError sums the per-point error of a partitioning under the
// given solver.
func totalError(solver GeometrySolver, parts []BuildPartition) float64 {
	total := 0.0
	for i := range parts {
		for _, point := range parts[i].Points() {
			total += solver.ComputeError(point, parts[i].Model())
		}
	}
	return total
}

// expectTilesCoverPoints asserts rays from the origin to every point
// intersect at least one tile.
func expectTilesCoverPoints(t *testing.T, tiles []Tile, points []lin.V3) {
	t.Helper()
	var verts []lin.V3
	var indices []int
	for ti := range tiles {
		base := len(verts)
		verts = append(verts, tiles[ti].Quad[0], tiles[ti].Quad[1],
			tiles[ti].Quad[2], tiles[ti].Quad[3])
		indices = append(indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	rt := geometry.NewRaytracer(verts, indices)

	missed := 0
	var origin lin.V3
	for pi := range points {
		if _, ok := rt.FirstHit(&origin, &points[pi], math.Inf(1)); !ok {
			missed++
		}
	}
	if missed > 0 {
		t.Errorf("%d of %d points are not covered by any tile", missed, len(points))
	}
}
