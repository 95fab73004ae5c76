// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"fmt"

	"github.com/gazed/tiler/math/lin"
)

// TileResolver converts a BuildPartition into a Tile: from the
// implicit geometry of a partition to the explicit geometry of a quad.
type TileResolver interface {

	// Init must be called before Resolve. Resolvers may use it to
	// prime acceleration structures from the points.
	Init(ps *PointSet)

	// Resolve returns the partition's tile and true, or false when the
	// partition's model produces an ill-formed tile.
	Resolve(bp *BuildPartition) (Tile, bool)
}

// RailTileResolver generates tile quads by intersecting the
// partition's plane with its subdivision cell's rails.
type RailTileResolver struct {
	sub Subdivision
}

// NewRailTileResolver returns a resolver over the given subdivision.
func NewRailTileResolver(sub Subdivision) *RailTileResolver {
	return &RailTileResolver{sub: sub}
}

// Init implements TileResolver.
func (tr *RailTileResolver) Init(ps *PointSet) { tr.sub.Init(ps) }

// Resolve implements TileResolver. Failure means a rail missed the
// plane entirely or hit it at a non-finite coordinate.
func (tr *RailTileResolver) Resolve(bp *BuildPartition) (Tile, bool) {
	model := bp.Model()
	if model.Cell < 0 {
		panic(fmt.Sprintf("tiler.RailTileResolver: partition model has invalid cell %d", model.Cell))
	}
	rails := tr.sub.CellRails(model.Cell)
	plane := model.Plane()

	var tile Tile
	tile.Cell = model.Cell
	var origin lin.V3
	for i := range rails {
		t, hit := plane.IntersectRay(&origin, &rails[i])
		if !hit {
			return Tile{}, false
		}
		tile.Quad[i].Scale(&rails[i], t)
	}
	if !tile.Quad.IsFinite() {
		return Tile{}, false
	}
	return tile, true
}
