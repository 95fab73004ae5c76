// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"math"
	"sort"

	"github.com/gazed/tiler/parallel"
)

// pointError pairs a point index with the cost of assigning it to a
// partition's GeometryModel.
type pointError struct {
	point int     // index of a point in a PointSet, -1 for none.
	err   float64 // model error for that point.
}

// BuildPartition is an intermediate representation of one cluster of
// points with extra metadata about the points assigned to it. Points
// are handled by their integer index in a PointSet.
//
// The error bookkeeping is incremental: the total, worst-fit, and
// best-fit values are maintained as points are added. To enforce
// deterministic results regardless of the order points are added from
// multiple goroutines, ties on the worst-fit point resolve to the
// larger point index and ties on the best-fit point to the smaller.
type BuildPartition struct {
	model        GeometryModel
	pointIndices []int
	worstFit     pointError
	bestFit      pointError
	totalError   float64
}

// NewBuildPartition creates an empty partition with the given model.
func NewBuildPartition(model GeometryModel) BuildPartition {
	bp := BuildPartition{model: model}
	bp.Clear()
	return bp
}

// Model returns the partition's geometry model for reading or updating.
func (bp *BuildPartition) Model() *GeometryModel { return &bp.model }

// Empty returns whether the partition has no points.
func (bp *BuildPartition) Empty() bool { return len(bp.pointIndices) == 0 }

// Size returns the number of points in the partition.
func (bp *BuildPartition) Size() int { return len(bp.pointIndices) }

// Points returns the indices of the points in this partition. The
// returned slice is owned by the partition and valid until the next
// mutation.
func (bp *BuildPartition) Points() []int { return bp.pointIndices }

// WorstFitPoint returns the index of the point with the greatest error,
// or -1 when the partition is empty.
func (bp *BuildPartition) WorstFitPoint() int { return bp.worstFit.point }

// BestFitPoint returns the index of the point with the least error,
// or -1 when the partition is empty.
func (bp *BuildPartition) BestFitPoint() int { return bp.bestFit.point }

// TotalError returns the total error of all points in this partition.
func (bp *BuildPartition) TotalError() float64 { return bp.totalError }

// Clear removes all points from this partition. The model is kept.
func (bp *BuildPartition) Clear() {
	bp.pointIndices = bp.pointIndices[:0]
	bp.worstFit = pointError{point: -1, err: math.Inf(-1)}
	bp.bestFit = pointError{point: -1, err: math.Inf(1)}
	bp.totalError = 0
}

// AddPoint adds a point with the given model error to this partition.
func (bp *BuildPartition) AddPoint(point int, err float64) {
	bp.pointIndices = append(bp.pointIndices, point)
	if err > bp.worstFit.err || (err == bp.worstFit.err && point > bp.worstFit.point) {
		bp.worstFit = pointError{point: point, err: err}
	}
	if err < bp.bestFit.err || (err == bp.bestFit.err && point < bp.bestFit.point) {
		bp.bestFit = pointError{point: point, err: err}
	}
	bp.totalError += err
}

// Canonicalize puts the partition into canonical form by sorting all
// point indices. This ensures determinism when points were added from
// different goroutines. Canonicalize is idempotent.
func (bp *BuildPartition) Canonicalize() {
	sort.Ints(bp.pointIndices)
}

// Eq returns true when two partitions have the same model and the same
// set of points, regardless of point insertion order.
func (bp *BuildPartition) Eq(rhs *BuildPartition) bool {
	if !bp.model.Eq(&rhs.model) {
		return false
	}
	if len(bp.pointIndices) != len(rhs.pointIndices) {
		return false
	}
	a := append([]int(nil), bp.pointIndices...)
	b := append([]int(nil), rhs.pointIndices...)
	sort.Ints(a)
	sort.Ints(b)
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CanonicalizePartitions canonicalizes multiple partitions in parallel.
func CanonicalizePartitions(workers int, partitions []BuildPartition) {
	parallel.For(workers, len(partitions), func(i int) error {
		partitions[i].Canonicalize()
		return nil
	})
}
