// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

// stages are composable operators that mutate a partitioning of points
// toward a local cost minimum. Stages that touch partitions from
// multiple goroutines canonicalize afterwards so that results are
// deterministic regardless of scheduling.

import (
	"container/heap"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/rand"

	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
	"github.com/gazed/tiler/parallel"
)

// PartitionerStage mutates a partitioning of a point subset. Stages
// never add or remove entries of the partition slice.
type PartitionerStage interface {

	// Init prepares the stage and its solvers for a point set.
	Init(ps *PointSet)

	// Run mutates the given partitioning.
	Run(ps *PointSet, partitions []BuildPartition)
}

// ============================================================================

// RandomizedInitialization clears all partitions and seeds each with
// model parameters derived from a distinct randomly-selected point.
// This stage considers all points in the point set.
type RandomizedInitialization struct {
	workers int
	solver  GeometrySolver
	random  *rand.Rand
}

// NewRandomizedInitialization seeds its generator deterministically so
// repeated runs shuffle identically.
func NewRandomizedInitialization(workers int, solver GeometrySolver) *RandomizedInitialization {
	return &RandomizedInitialization{
		workers: workers,
		solver:  solver,
		random:  rand.New(rand.NewSource(0x5eed)),
	}
}

// Init implements PartitionerStage.
func (st *RandomizedInitialization) Init(ps *PointSet) { st.solver.Init(ps) }

// Run implements PartitionerStage.
func (st *RandomizedInitialization) Run(ps *PointSet, partitions []BuildPartition) {
	indices := make([]int, len(ps.Positions))
	for i := range indices {
		indices[i] = i
	}
	st.random.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	count := len(partitions)
	if len(indices) < count {
		count = len(indices)
	}
	for i := range partitions {
		partitions[i].Clear()
	}
	parallel.For(st.workers, count, func(bp int) error {
		st.solver.InitializeModel(indices[bp], partitions[bp].Model())
		return nil
	})
}

// ============================================================================

// GeometryModelRefinement refits the model of each partition to the
// points currently assigned to it, then re-adds those points with their
// updated errors. A failed fit falls back to reinitializing the model
// from the partition's first point. This stage only considers points in
// the existing partitioning.
type GeometryModelRefinement struct {
	workers int
	solver  GeometrySolver
}

// NewGeometryModelRefinement returns the stage.
func NewGeometryModelRefinement(workers int, solver GeometrySolver) *GeometryModelRefinement {
	return &GeometryModelRefinement{workers: workers, solver: solver}
}

// Init implements PartitionerStage.
func (st *GeometryModelRefinement) Init(ps *PointSet) { st.solver.Init(ps) }

// Run implements PartitionerStage.
func (st *GeometryModelRefinement) Run(ps *PointSet, partitions []BuildPartition) {
	parallel.For(st.workers, len(partitions), func(i int) error {
		bp := &partitions[i]
		if bp.Empty() {
			return nil
		}
		model := bp.Model()
		if !st.solver.FitModel(bp.Points(), model) {
			st.solver.InitializeModel(bp.Points()[0], model)
		}

		points := append([]int(nil), bp.Points()...)
		bp.Clear()
		for _, point := range points {
			bp.AddPoint(point, st.solver.ComputeError(point, model))
		}
		return nil
	})
	CanonicalizePartitions(st.workers, partitions)
}

// ============================================================================

// GreedyPointAssignment clears all partitions and assigns every point
// in the point set to the lowest-error partition among the partitions
// whose centers are nearest by direction. Points with no finite-error
// neighbouring partition are dropped for this iteration; a later
// exchange pass can reclaim them. This stage considers all points in
// the point set.
type GreedyPointAssignment struct {
	workers    int
	neighbours int
	solver     GeometrySolver
}

// NewGreedyPointAssignment considers the given number of neighbouring
// partitions per point.
func NewGreedyPointAssignment(workers, neighbours int, solver GeometrySolver) *GreedyPointAssignment {
	return &GreedyPointAssignment{workers: workers, neighbours: neighbours, solver: solver}
}

// Init implements PartitionerStage.
func (st *GreedyPointAssignment) Init(ps *PointSet) { st.solver.Init(ps) }

// Run implements PartitionerStage.
func (st *GreedyPointAssignment) Run(ps *PointSet, partitions []BuildPartition) {
	centers := make([]lin.V3, len(partitions))
	for i := range partitions {
		centers[i] = partitions[i].Model().Center
		centers[i].Unit()
	}
	tree := geometry.NewKdTree3(centers)

	for i := range partitions {
		partitions[i].Clear()
	}

	locks := make([]sync.Mutex, len(partitions))
	parallel.For(st.workers, st.workers, func(tid int) error {
		var neighbours []int
		var query lin.V3
		for point := tid; point < len(ps.Positions); point += st.workers {
			query.Set(&ps.Positions[point]).Unit()
			tree.Knn(&query, st.neighbours, &neighbours)

			best := -1
			bestError := math.MaxFloat64
			for _, pi := range neighbours {
				err := st.solver.ComputeError(point, partitions[pi].Model())
				if err < bestError {
					best, bestError = pi, err
				}
			}
			if best < 0 {
				// No partition can take this point on this iteration.
				// The point has another chance if the partitioner has
				// time to run another pass.
				continue
			}
			locks[best].Lock()
			partitions[best].AddPoint(point, bestError)
			locks[best].Unlock()
		}
		return nil
	})
	CanonicalizePartitions(st.workers, partitions)
}

// ============================================================================

// partitionHeap is a max-heap of partitions keyed by total error.
type partitionHeap []*BuildPartition

func (h partitionHeap) Len() int            { return len(h) }
func (h partitionHeap) Less(i, j int) bool  { return h[i].TotalError() > h[j].TotalError() }
func (h partitionHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *partitionHeap) Push(x interface{}) { *h = append(*h, x.(*BuildPartition)) }
func (h *partitionHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// PartitionSplitting finds all empty partitions and uses them to
// subdivide the non-empty partitions with the highest total error. If
// there are no empty partitions this stage does nothing. This stage
// only considers points in the existing partitioning.
type PartitionSplitting struct {
	minimumPoints int // partitions smaller than this are never split.
	solver        GeometrySolver
}

// NewPartitionSplitting returns the stage.
func NewPartitionSplitting(solver GeometrySolver) *PartitionSplitting {
	return &PartitionSplitting{minimumPoints: 2, solver: solver}
}

// Init implements PartitionerStage.
func (st *PartitionSplitting) Init(ps *PointSet) { st.solver.Init(ps) }

// split re-seeds the empty partition from the original's worst-fit
// point, then reassigns each of the original's points to whichever of
// the two scores it lower.
func (st *PartitionSplitting) split(original, empty *BuildPartition) {
	model := empty.Model()
	*model = *original.Model()
	st.solver.InitializeModel(original.WorstFitPoint(), model)
	empty.Clear()

	points := append([]int(nil), original.Points()...)
	original.Clear()
	for _, point := range points {
		errOriginal := st.solver.ComputeError(point, original.Model())
		errNew := st.solver.ComputeError(point, model)
		if errNew < errOriginal {
			empty.AddPoint(point, errNew)
		} else {
			original.AddPoint(point, errOriginal)
		}
	}
}

// Run implements PartitionerStage.
func (st *PartitionSplitting) Run(ps *PointSet, partitions []BuildPartition) {
	var candidates partitionHeap
	var dead []*BuildPartition
	for i := range partitions {
		if partitions[i].Empty() {
			dead = append(dead, &partitions[i])
		} else {
			candidates = append(candidates, &partitions[i])
		}
	}
	heap.Init(&candidates)

	for _, revive := range dead {
		if candidates.Len() == 0 {
			return
		}
		worst := heap.Pop(&candidates).(*BuildPartition)
		if worst.Size() < st.minimumPoints {
			continue // too small to split.
		}
		st.split(worst, revive)
		heap.Push(&candidates, worst)
		heap.Push(&candidates, revive)
	}
}

// ============================================================================

// PointExchange pulls all points from all partitions and reassigns
// each to the partition that scores it lowest. If every partition has
// infinite error for a point, the first partition takes it; other
// stages compensate for that case. This stage only considers points in
// the existing partitioning.
type PointExchange struct {
	workers int
	solver  GeometrySolver

	// Cached between runs to reuse the allocation.
	relevantPoints []int
}

// NewPointExchange returns the stage.
func NewPointExchange(workers int, solver GeometrySolver) *PointExchange {
	return &PointExchange{workers: workers, solver: solver}
}

// Init implements PartitionerStage.
func (st *PointExchange) Init(ps *PointSet) { st.solver.Init(ps) }

// bestPartition returns the index of the partition with the least
// error for the point, defaulting to the first partition when all
// errors are infinite.
func (st *PointExchange) bestPartition(partitions []BuildPartition, point int) (int, float64) {
	best := 0
	bestError := math.Inf(1)
	for i := range partitions {
		if err := st.solver.ComputeError(point, partitions[i].Model()); err < bestError {
			best, bestError = i, err
		}
	}
	return best, bestError
}

// Run implements PartitionerStage.
func (st *PointExchange) Run(ps *PointSet, partitions []BuildPartition) {
	st.relevantPoints = st.relevantPoints[:0]
	for i := range partitions {
		st.relevantPoints = append(st.relevantPoints, partitions[i].Points()...)
		partitions[i].Clear()
	}

	locks := make([]sync.Mutex, len(partitions))
	parallel.For(st.workers, len(st.relevantPoints), func(i int) error {
		point := st.relevantPoints[i]
		best, err := st.bestPartition(partitions, point)
		locks[best].Lock()
		partitions[best].AddPoint(point, err)
		locks[best].Unlock()
		return nil
	})
	CanonicalizePartitions(st.workers, partitions)
}

// ============================================================================

// DepthBasedRedistribution pulls all points from the partitioning,
// orders them by distance from the origin, splits them into equal-size
// contiguous ranges, and reinitializes partition i from the first point
// of range i before assigning the range to it. It is the deterministic
// fall-back initializer. This stage only considers points in the
// existing partitioning.
type DepthBasedRedistribution struct {
	solver GeometrySolver

	// Cached between runs to reuse the allocation.
	relevantPoints []int
}

// NewDepthBasedRedistribution returns the stage.
func NewDepthBasedRedistribution(solver GeometrySolver) *DepthBasedRedistribution {
	return &DepthBasedRedistribution{solver: solver}
}

// Init implements PartitionerStage.
func (st *DepthBasedRedistribution) Init(ps *PointSet) { st.solver.Init(ps) }

// Run implements PartitionerStage.
func (st *DepthBasedRedistribution) Run(ps *PointSet, partitions []BuildPartition) {
	st.relevantPoints = st.relevantPoints[:0]
	for i := range partitions {
		st.relevantPoints = append(st.relevantPoints, partitions[i].Points()...)
		partitions[i].Clear()
	}

	pointCount := len(st.relevantPoints)
	partitionCount := len(partitions)
	if pointCount == 0 || partitionCount == 0 {
		return
	}

	depthLess := func(lhs, rhs int) bool {
		return ps.Positions[lhs].LenSqr() < ps.Positions[rhs].LenSqr()
	}
	switch {
	case partitionCount == 1:
		// No ordering needed to fill a single partition.
	case partitionCount == 2 && pointCount >= 3:
		// The two-partition case is very common and only needs the
		// points ordered about the median, with correct first and last
		// elements for the range representatives.
		st.selectMedian(ps, depthLess)
		minIdx, maxIdx := 0, 0
		for i := 1; i < pointCount; i++ {
			if depthLess(st.relevantPoints[i], st.relevantPoints[minIdx]) {
				minIdx = i
			}
			if depthLess(st.relevantPoints[maxIdx], st.relevantPoints[i]) {
				maxIdx = i
			}
		}
		st.relevantPoints[0], st.relevantPoints[minIdx] =
			st.relevantPoints[minIdx], st.relevantPoints[0]
		st.relevantPoints[pointCount-1], st.relevantPoints[maxIdx] =
			st.relevantPoints[maxIdx], st.relevantPoints[pointCount-1]
	default:
		sort.Slice(st.relevantPoints, func(i, j int) bool {
			return depthLess(st.relevantPoints[i], st.relevantPoints[j])
		})
	}

	for i := 0; i < partitionCount; i++ {
		low := i * pointCount / partitionCount
		high := (i + 1) * pointCount / partitionCount
		if high > pointCount {
			high = pointCount
		}
		representative := low
		if representative > pointCount-1 {
			representative = pointCount - 1
		}
		model := partitions[i].Model()
		st.solver.InitializeModel(st.relevantPoints[representative], model)
		for _, point := range st.relevantPoints[low:high] {
			partitions[i].AddPoint(point, st.solver.ComputeError(point, model))
		}
	}
	CanonicalizePartitions(1, partitions)
}

// selectMedian partially orders relevantPoints so the median element is
// in place and everything before it compares lower.
func (st *DepthBasedRedistribution) selectMedian(ps *PointSet, less func(lhs, rhs int) bool) {
	target := len(st.relevantPoints) / 2
	lo, hi := 0, len(st.relevantPoints)-1
	for lo < hi {
		pivot := st.relevantPoints[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for less(st.relevantPoints[i], pivot) {
				i++
			}
			for less(pivot, st.relevantPoints[j]) {
				j--
			}
			if i <= j {
				st.relevantPoints[i], st.relevantPoints[j] =
					st.relevantPoints[j], st.relevantPoints[i]
				i++
				j--
			}
		}
		if target <= j {
			hi = j
		} else if target >= i {
			lo = i
		} else {
			return
		}
	}
}

// ============================================================================

// RobustReinitializing guards another stage against numerical
// collapse: if any partition's total error is non-finite, the whole
// partitioning is rebuilt by the reinitializing stage; otherwise the
// regular stage runs.
type RobustReinitializing struct {
	reinitializing PartitionerStage
	regular        PartitionerStage

	// Reinitializations counts rebuilds of partitionings larger than
	// one; single-partition rebuilds are the normal first iteration.
	Reinitializations atomic.Int64
}

// NewRobustReinitializing returns the stage.
func NewRobustReinitializing(reinitializing, regular PartitionerStage) *RobustReinitializing {
	return &RobustReinitializing{reinitializing: reinitializing, regular: regular}
}

// Init implements PartitionerStage.
func (st *RobustReinitializing) Init(ps *PointSet) {
	st.reinitializing.Init(ps)
	st.regular.Init(ps)
}

// Run implements PartitionerStage.
func (st *RobustReinitializing) Run(ps *PointSet, partitions []BuildPartition) {
	mustReinitialize := false
	for i := range partitions {
		if !lin.IsFinite(partitions[i].TotalError()) {
			mustReinitialize = true
			if len(partitions) > 1 {
				st.Reinitializations.Add(1)
			}
			break
		}
	}
	if mustReinitialize {
		st.reinitializing.Run(ps, partitions)
	} else {
		st.regular.Run(ps, partitions)
	}
}

// ============================================================================

// Sequential runs a fixed sequence of sub-stages in order.
type Sequential struct {
	children []PartitionerStage
}

// NewSequential returns the composite stage.
func NewSequential(children ...PartitionerStage) *Sequential {
	return &Sequential{children: children}
}

// Init implements PartitionerStage.
func (st *Sequential) Init(ps *PointSet) {
	for _, child := range st.children {
		child.Init(ps)
	}
}

// Run implements PartitionerStage.
func (st *Sequential) Run(ps *PointSet, partitions []BuildPartition) {
	for _, child := range st.children {
		child.Run(ps, partitions)
	}
}

// Iterative runs a sub-stage a predetermined number of times.
type Iterative struct {
	iterations int
	child      PartitionerStage
}

// NewIterative returns the composite stage.
func NewIterative(iterations int, child PartitionerStage) *Iterative {
	return &Iterative{iterations: iterations, child: child}
}

// Init implements PartitionerStage.
func (st *Iterative) Init(ps *PointSet) { st.child.Init(ps) }

// Run implements PartitionerStage.
func (st *Iterative) Run(ps *PointSet, partitions []BuildPartition) {
	for i := 0; i < st.iterations; i++ {
		st.child.Run(ps, partitions)
	}
}

// Hierarchical starts with a small prefix of active partitions, runs
// the initial sub-stage, then repeatedly doubles the active prefix
// (clamped to the full count) and runs the iterative sub-stage until
// every partition is active.
type Hierarchical struct {
	initialCount int
	initial      PartitionerStage
	iterative    PartitionerStage
}

// NewHierarchical returns the composite stage. A negative initial
// count panics.
func NewHierarchical(initialCount int, initial, iterative PartitionerStage) *Hierarchical {
	if initialCount < 0 {
		panic("tiler.NewHierarchical: initial partition count must be non-negative")
	}
	return &Hierarchical{initialCount: initialCount, initial: initial, iterative: iterative}
}

// Init implements PartitionerStage.
func (st *Hierarchical) Init(ps *PointSet) {
	st.initial.Init(ps)
	st.iterative.Init(ps)
}

// Run implements PartitionerStage.
func (st *Hierarchical) Run(ps *PointSet, partitions []BuildPartition) {
	finalCount := len(partitions)
	if finalCount == 0 {
		return
	}

	var allPoints []int
	for i := range partitions {
		allPoints = append(allPoints, partitions[i].Points()...)
		partitions[i].Clear()
	}

	active := st.initialCount
	if active > finalCount {
		active = finalCount
	}

	// Start with everything in the first partition.
	for _, point := range allPoints {
		partitions[0].AddPoint(point, 0)
	}

	st.initial.Run(ps, partitions[:active])
	for active < finalCount {
		add := active
		if active+add > finalCount {
			add = finalCount - active
		}
		if add == 0 {
			panic("tiler.Hierarchical: initial partition count must be positive")
		}
		active += add
		st.iterative.Run(ps, partitions[:active])
	}
}
