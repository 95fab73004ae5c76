// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"github.com/gazed/tiler/math/lin"
)

// GeometrySolver fits GeometryModels to points for partitioning. Both
// ComputeError and FitModel use the same underlying error-metric, which
// may be convex or non-convex.
type GeometrySolver interface {

	// Init performs any initialization required for fitting models
	// against the given point set.
	Init(ps *PointSet)

	// InitializeModel initializes a model which fits the point with
	// the given index. Constant time.
	InitializeModel(point int, model *GeometryModel)

	// FitModel fits a model to the given points. The previously
	// estimated model is the starting point and is updated in place.
	// It returns false if no model could be fit, e.g. because there
	// are fewer than three points or the solve failed; the model is
	// then unchanged.
	FitModel(points []int, model *GeometryModel) bool

	// ComputeError returns an error-metric measuring the deviation of
	// the given point from the model. Non-finite values indicate an
	// ill-conditioned model.
	ComputeError(point int, model *GeometryModel) float64
}

// SubsetGeometrySolver accelerates another GeometrySolver by fitting
// against a bounded, strided subset of the points in each FitModel
// call. Error evaluation is unchanged.
type SubsetGeometrySolver struct {
	maxPoints int
	delegate  GeometrySolver
	scratch   []int
}

// NewSubsetGeometrySolver caps FitModel input at maxPoints.
func NewSubsetGeometrySolver(maxPoints int, delegate GeometrySolver) *SubsetGeometrySolver {
	return &SubsetGeometrySolver{maxPoints: maxPoints, delegate: delegate}
}

// Init implements GeometrySolver.
func (s *SubsetGeometrySolver) Init(ps *PointSet) { s.delegate.Init(ps) }

// InitializeModel implements GeometrySolver.
func (s *SubsetGeometrySolver) InitializeModel(point int, model *GeometryModel) {
	s.delegate.InitializeModel(point, model)
}

// ComputeError implements GeometrySolver.
func (s *SubsetGeometrySolver) ComputeError(point int, model *GeometryModel) float64 {
	return s.delegate.ComputeError(point, model)
}

// FitModel implements GeometrySolver by sampling points at a stride of
// approximately len/maxPoints and delegating.
func (s *SubsetGeometrySolver) FitModel(points []int, model *GeometryModel) bool {
	count := len(points)
	if count <= s.maxPoints {
		return s.delegate.FitModel(points, model)
	}
	scale := float64(count) / float64(s.maxPoints)
	s.scratch = s.scratch[:0]
	for i := 0; i < s.maxPoints; i++ {
		s.scratch = append(s.scratch, points[int(float64(i)*scale)])
	}
	return s.delegate.FitModel(s.scratch, model)
}

// initialCenterPoint returns a weighted average of the points of
// interest with weights scaled by inverse depth, favouring points
// closer to the origin.
func initialCenterPoint(ps *PointSet, points []int) lin.V3 {
	var mean lin.V3
	totalWeight := 0.0
	for _, i := range points {
		p := &ps.Positions[i]
		weight := ps.weight(i) / p.Len()
		mean.X += p.X * weight
		mean.Y += p.Y * weight
		mean.Z += p.Z * weight
		totalWeight += weight
	}
	return *mean.Div(totalWeight)
}
