// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"math"
	"testing"

	"github.com/gazed/tiler/math/lin"
)

// planarPointSet builds a grid of points on the plane z = depth within
// the +Z cube face.
func planarPointSet(id int, depth float64) *PointSet {
	ps := &PointSet{ID: id}
	for x := -5; x <= 5; x++ {
		for y := -5; y <= 5; y++ {
			ps.Positions = append(ps.Positions, lin.V3{
				X: float64(x) * 0.1 * depth,
				Y: float64(y) * 0.1 * depth,
				Z: depth,
			})
		}
	}
	return ps
}

// newTestDiskSolver builds a solver over a depth-1 subdivision with
// the default depth range.
func newTestDiskSolver(tangential float64, ps *PointSet) (*RailDiskSolver, Subdivision) {
	sub := NewCubemapSubdivision(1)
	minDepth, maxDepth := depthRangeFor(0.5, 200)
	solver := NewRailDiskSolver(tangential, sub, minDepth, maxDepth)
	solver.Init(ps)
	return solver, sub
}

func TestInitializeModel(t *testing.T) {
	ps := planarPointSet(1, 4)
	solver, _ := newTestDiskSolver(0.01, ps)

	var model GeometryModel
	solver.InitializeModel(7, &model)
	if !model.Center.Eq(&ps.Positions[7]) {
		t.Errorf("center %s is not the point %s", model.Center.Dump(), ps.Positions[7].Dump())
	}
	if !lin.Aeq(model.Normal.Len(), 1) {
		t.Errorf("normal %s is not unit length", model.Normal.Dump())
	}
	var dir lin.V3
	dir.Set(&ps.Positions[7]).Unit()
	if !model.Normal.Aeq(&dir) {
		t.Errorf("normal %s does not face the point direction %s",
			model.Normal.Dump(), dir.Dump())
	}
}

func TestFitModelRecoversPlane(t *testing.T) {
	ps := planarPointSet(2, 4)

	// Fit with the pure plane objective so the exact plane is the
	// minimizer.
	solver, sub := newTestDiskSolver(0, ps)

	// All test points project to the middle of the +Z face.
	cell := 5
	all := sub.PointsInCell(cell)
	if len(all) != len(ps.Positions) {
		t.Fatalf("expected all points on the +Z face, found %d", len(all))
	}

	model := NewGeometryModel()
	model.Cell = cell
	solver.InitializeModel(all[0], &model)
	if !solver.FitModel(all, &model) {
		t.Fatalf("fitting a clean plane failed")
	}

	// The fit plane contains the points: per-point errors are tiny.
	for _, point := range all {
		if err := solver.ComputeError(point, &model); err > 1e-6 {
			t.Errorf("point %d error %g after fitting its own plane", point, err)
		}
	}

	// The normal is the plane normal, up to sign.
	if got := math.Abs(model.Normal.Z); got < 0.999 {
		t.Errorf("fit normal %s is not +-Z", model.Normal.Dump())
	}
}

func TestFitModelTooFewPoints(t *testing.T) {
	ps := planarPointSet(3, 4)
	solver, _ := newTestDiskSolver(0.01, ps)

	model := NewGeometryModel()
	model.Cell = 5
	solver.InitializeModel(0, &model)
	saved := model
	if solver.FitModel([]int{0, 1}, &model) {
		t.Errorf("fitting two points should fail")
	}
	if !model.Eq(&saved) {
		t.Errorf("failed fit should leave the model unchanged")
	}
}

func TestComputeErrorOnPlane(t *testing.T) {
	ps := planarPointSet(4, 4)
	solver, _ := newTestDiskSolver(0.01, ps)

	// A model exactly on the plane of the points: zero radial error
	// for the center point.
	model := NewGeometryModel()
	model.Cell = 5
	model.Center = lin.V3{Z: 4}
	model.Normal = lin.V3{Z: 1}

	for i := range ps.Positions {
		err := solver.ComputeError(i, &model)

		// The plane contains every point, so only the tangential term
		// remains, bounded by the grid extent.
		radialOnly := NewRailDiskSolver(0, solver.sub, solver.minDepth, solver.maxDepth)
		radialOnly.Init(ps)
		if radial := radialOnly.ComputeError(i, &model); radial > 1e-12 {
			t.Errorf("point %d radial error %g on its own plane", i, radial)
		}
		if err < radialOnly.ComputeError(i, &model) {
			t.Errorf("tangential term should not reduce the error")
		}
	}
}

func TestComputeErrorDegenerate(t *testing.T) {
	ps := planarPointSet(5, 4)
	solver, _ := newTestDiskSolver(0, ps)

	// A plane through the origin parallel to the point rays produces a
	// non-finite error.
	model := NewGeometryModel()
	model.Cell = 5
	model.Center = lin.V3{}
	model.Normal = lin.V3{X: 1}

	point := 60 // grid center: position (0, 0, 4), orthogonal to the normal.
	if err := solver.ComputeError(point, &model); lin.IsFinite(err) {
		t.Errorf("degenerate model error %g should be non-finite", err)
	}
}

func TestSubsetSolverCapsFitInput(t *testing.T) {
	recorder := &fitRecordingSolver{}
	subset := NewSubsetGeometrySolver(10, recorder)

	points := make([]int, 100)
	for i := range points {
		points[i] = i
	}
	var model GeometryModel
	subset.FitModel(points, &model)
	if len(recorder.lastFit) != 10 {
		t.Fatalf("subset passed %d points, not 10", len(recorder.lastFit))
	}

	// Strided sampling spans the whole input.
	if recorder.lastFit[0] != 0 || recorder.lastFit[9] != 90 {
		t.Errorf("subset points %v do not stride the input", recorder.lastFit)
	}

	// Small inputs pass through untouched.
	subset.FitModel(points[:5], &model)
	if len(recorder.lastFit) != 5 {
		t.Errorf("small input passed %d points, not 5", len(recorder.lastFit))
	}
}

// fitRecordingSolver records the points of the last FitModel call.
type fitRecordingSolver struct {
	fakeGeometrySolver
	lastFit []int
}

func (s *fitRecordingSolver) FitModel(points []int, model *GeometryModel) bool {
	s.lastFit = append(s.lastFit[:0], points...)
	return true
}
