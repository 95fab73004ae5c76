// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/gazed/tiler/parallel"
)

// CandidateTiles is one k-tile alternative fit to the points of a
// single subdivision cell.
type CandidateTiles struct {

	// Tiles of the alternative, in no particular order.
	Tiles []Tile

	// Costs holds the geometric reconstruction error of each tile.
	Costs []float64
}

// TotalCost returns the summed reconstruction error of the candidate.
func (c *CandidateTiles) TotalCost() float64 {
	total := 0.0
	for _, cost := range c.Costs {
		total += cost
	}
	return total
}

// CandidateTileGenerator produces candidate tiles for cells of a
// Subdivision. Implementations are not goroutine safe unless stated
// otherwise.
type CandidateTileGenerator interface {

	// Init primes the generator for a point set so acceleration
	// structures can be reused over multiple Generate calls.
	Init(ps *PointSet)

	// Generate computes candidate tile sets for each of the given
	// cells. cells and perCell are parallel: perCell[i] receives the
	// candidates for cells[i].
	Generate(ps *PointSet, sub Subdivision, cells []int, perCell [][]CandidateTiles)
}

// ============================================================================

// ExhaustiveCandidateTileGenerator incrementally computes candidate
// clusterings of each cell's points into 1..maxPartitions tiles. The
// child partitioner is rerun as the partition count grows, so each
// k-sized candidate starts from the (k-1)-sized clustering.
type ExhaustiveCandidateTileGenerator struct {
	maxPartitions int
	child         PartitionerStage
	solver        GeometrySolver
	resolver      TileResolver

	// Scratch partitions cached across cells.
	partitions []BuildPartition
}

// NewExhaustiveCandidateTileGenerator wires a generator. The child
// partitioner must use every partition passed to it and must never add
// or remove partitions.
func NewExhaustiveCandidateTileGenerator(maxPartitions int, child PartitionerStage,
	solver GeometrySolver, resolver TileResolver) *ExhaustiveCandidateTileGenerator {
	return &ExhaustiveCandidateTileGenerator{
		maxPartitions: maxPartitions,
		child:         child,
		solver:        solver,
		resolver:      resolver,
	}
}

// Init implements CandidateTileGenerator.
func (g *ExhaustiveCandidateTileGenerator) Init(ps *PointSet) {
	g.solver.Init(ps)
	g.child.Init(ps)
	g.resolver.Init(ps)
}

// toCandidateTiles converts the non-empty partitions to tiles,
// returning an empty candidate when any tile is ill-formed.
func (g *ExhaustiveCandidateTileGenerator) toCandidateTiles(partitions []BuildPartition) CandidateTiles {
	var candidate CandidateTiles
	for i := range partitions {
		bp := &partitions[i]
		if bp.Empty() {
			continue
		}
		tile, ok := g.resolver.Resolve(bp)
		if !ok {
			return CandidateTiles{}
		}
		candidate.Tiles = append(candidate.Tiles, tile)
		candidate.Costs = append(candidate.Costs, bp.TotalError())
	}
	return candidate
}

// Generate implements CandidateTileGenerator.
func (g *ExhaustiveCandidateTileGenerator) Generate(ps *PointSet, sub Subdivision,
	cells []int, perCell [][]CandidateTiles) {

	g.resolver.Init(ps)
	g.child.Init(ps)
	for ci, cell := range cells {
		candidates := perCell[ci][:0]

		pointsToPartition := sub.PointsInCell(cell)
		if len(pointsToPartition) == 0 {
			// No points: the empty set is the single valid choice.
			perCell[ci] = append(candidates, CandidateTiles{})
			continue
		}

		baseModel := NewGeometryModel()
		baseModel.Cell = cell
		g.partitions = g.partitions[:0]
		g.partitions = append(g.partitions, NewBuildPartition(baseModel))
		for _, point := range pointsToPartition {
			g.partitions[0].AddPoint(point, math.Inf(1))
		}

		for count := 1; count <= g.maxPartitions; count++ {
			g.child.Run(ps, g.partitions)

			// A child partitioner that grows or shrinks the slice is a
			// wiring error, not a runtime condition.
			if len(g.partitions) != count {
				panic(fmt.Sprintf("tiler.ExhaustiveCandidateTileGenerator: child "+
					"partitioner changed the partition count from %d to %d",
					count, len(g.partitions)))
			}

			if candidate := g.toCandidateTiles(g.partitions); len(candidate.Tiles) > 0 {
				candidates = append(candidates, candidate)
			}
			g.partitions = append(g.partitions, NewBuildPartition(baseModel))
		}
		perCell[ci] = candidates
	}
}

// ============================================================================

// ParallelCandidateTileGenerator fans cells out over a pool of
// generators, one per worker. Pool members are stateful caches, each
// used by one worker at a time.
type ParallelCandidateTileGenerator struct {
	generators []CandidateTileGenerator
}

// NewParallelCandidateTileGenerator builds a pool with the factory.
// The factory must return instances that can run concurrently with
// each other.
func NewParallelCandidateTileGenerator(workers int,
	factory func() CandidateTileGenerator) *ParallelCandidateTileGenerator {
	p := &ParallelCandidateTileGenerator{generators: make([]CandidateTileGenerator, workers)}
	for i := range p.generators {
		p.generators[i] = factory()
	}
	return p
}

// Init implements CandidateTileGenerator.
func (p *ParallelCandidateTileGenerator) Init(ps *PointSet) {
	for _, g := range p.generators {
		g.Init(ps)
	}
}

// Generate implements CandidateTileGenerator. Cells are treated as a
// stack with a shared cursor; each worker pops and processes cells into
// the corresponding output slot.
func (p *ParallelCandidateTileGenerator) Generate(ps *PointSet, sub Subdivision,
	cells []int, perCell [][]CandidateTiles) {

	var cursor atomic.Int64
	parallel.For(len(p.generators), len(p.generators), func(tid int) error {
		generator := p.generators[tid]
		for {
			current := int(cursor.Add(1)) - 1
			if current >= len(cells) {
				return nil
			}
			generator.Generate(ps, sub, cells[current:current+1], perCell[current:current+1])
		}
	})
}
