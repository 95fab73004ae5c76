// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"math"

	"github.com/gazed/tiler/math/lin"
)

// RailDiskSolver treats each GeometryModel as a disk, with two point
// terms in the cost function:
//  1. A plane-projection term penalizing the radial distance from a
//     point to its projection on the disk.
//  2. A tangential term penalizing the distance from the center of the
//     disk to the projection of points onto the disk's plane.
//
// In both cases the projection intersects the origin->point ray with
// the disk's plane. A third, point-independent soft constraint keeps
// the plane's intersections with the rails of the model's subdivision
// cell inside a depth range.
//
// Running early iterations with a non-zero tangential factor and the
// final refinement with a zero factor trades convexity for fidelity,
// analogous to graduated non-convexity.
type RailDiskSolver struct {
	tangentialFactor float64     // scales the tangential term.
	sub              Subdivision // supplies the rails of the model's cell.
	minDepth         float64     // rail depths below this are penalized.
	maxDepth         float64     // rail depths above this are penalized.
	ps               *PointSet   // the current point set in use.
}

// NewRailDiskSolver creates a solver. The depth range bounds the
// unpenalized rail intersection distances.
func NewRailDiskSolver(tangentialFactor float64, sub Subdivision, minDepth, maxDepth float64) *RailDiskSolver {
	return &RailDiskSolver{
		tangentialFactor: tangentialFactor,
		sub:              sub,
		minDepth:         minDepth,
		maxDepth:         maxDepth,
	}
}

// Init implements GeometrySolver.
func (s *RailDiskSolver) Init(ps *PointSet) {
	s.ps = ps
	s.sub.Init(ps)
}

// InitializeModel implements GeometrySolver: the disk sits at the
// point, facing the origin.
func (s *RailDiskSolver) InitializeModel(point int, model *GeometryModel) {
	model.Center = s.ps.Positions[point]
	model.Normal = model.Center
	model.Normal.Unit()
}

// ComputeError implements GeometrySolver: the squared plane-projection
// residual plus the scaled squared tangential residual. The rail
// penalty is intentionally absent: it is a property of the model, not
// of individual points, and is only applied in FitModel.
func (s *RailDiskSolver) ComputeError(point int, model *GeometryModel) float64 {
	p := &s.ps.Positions[point]
	centerDotNormal := model.Center.Dot(&model.Normal)
	pointDotNormal := p.Dot(&model.Normal)
	weight := s.ps.weight(point)

	radial := centerDotNormal/pointDotNormal - 1
	total := radial * radial * weight

	if s.tangentialFactor != 0 {
		t := centerDotNormal / pointDotNormal
		dx := p.X*t - model.Center.X
		dy := p.Y*t - model.Center.Y
		dz := p.Z*t - model.Center.Z
		tangential := (dx*dx + dy*dy + dz*dz) * weight
		total += tangential * 2 * s.tangentialFactor * s.tangentialFactor
	}
	return total
}

// FitModel implements GeometrySolver. The previously estimated normal
// and a depth-weighted mean of the point positions seed the solve.
func (s *RailDiskSolver) FitModel(points []int, model *GeometryModel) bool {
	if len(points) < 3 {
		return false
	}

	mean := initialCenterPoint(s.ps, points)
	params := [6]float64{
		model.Normal.X, model.Normal.Y, model.Normal.Z,
		mean.X, mean.Y, mean.Z,
	}

	blocks := make([]costFunction, 0, 3)
	blocks = append(blocks, &planeProjectionCost{ps: s.ps, points: points})
	if s.tangentialFactor != 0 {
		blocks = append(blocks, &scaledCost{
			fn:    &tangentialDiskCost{ps: s.ps, points: points},
			scale: 2 * s.tangentialFactor * s.tangentialFactor,
		})
	}
	blocks = append(blocks, &scaledCost{
		fn: &railPenaltyCost{
			rails:    s.sub.CellRails(model.Cell),
			minDepth: s.minDepth,
			maxDepth: s.maxDepth,
		},
		scale: float64(len(points)),
	})

	problem := newLMProblem(blocks...)
	if !problem.solve(&params) {
		return false
	}

	var normal lin.V3
	normal.SetS(params[0], params[1], params[2])
	if normal.Len() == 0 || !normal.IsFinite() ||
		!lin.IsFinite(params[3]) || !lin.IsFinite(params[4]) || !lin.IsFinite(params[5]) {
		return false
	}
	model.Normal = *normal.Unit()
	model.Center.SetS(params[3], params[4], params[5])
	return true
}

// depthRangeFor returns the unpenalized rail depth range for the given
// viewing volume and scene bounds. The near limit is scaled down to
// support grazing-angle geometry which may enter the headbox; the far
// limit is scaled by sqrt(3) since the range applies to ray distances
// rather than an axis-aligned box.
func depthRangeFor(headboxRadius, skyboxRadius float64) (min, max float64) {
	return 0.01 * headboxRadius, math.Sqrt(3) * skyboxRadius
}
