// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"testing"

	"github.com/gazed/tiler/math/lin"
)

func TestRailResolverProducesTileOnPlane(t *testing.T) {
	ps := planarPointSet(10, 4)
	sub := NewCubemapSubdivision(1)
	sub.Init(ps)
	resolver := NewRailTileResolver(sub)
	resolver.Init(ps)

	model := NewGeometryModel()
	model.Cell = 5 // +Z face root.
	model.Center = lin.V3{Z: 4}
	model.Normal = lin.V3{Z: 1}
	bp := NewBuildPartition(model)
	bp.AddPoint(0, 0)

	tile, ok := resolver.Resolve(&bp)
	if !ok {
		t.Fatalf("resolving a well-formed partition failed")
	}
	if tile.Cell != 5 {
		t.Errorf("tile cell was %d, not 5", tile.Cell)
	}

	// Every corner lies on the partition plane.
	plane := model.Plane()
	for i := range tile.Quad {
		if !lin.AeqZ(plane.Distance(&tile.Quad[i])) {
			t.Errorf("corner %d is %f off the plane", i, plane.Distance(&tile.Quad[i]))
		}
	}

	// Corners lie along the cell rails in order.
	rails := sub.CellRails(5)
	for i := range tile.Quad {
		var dir lin.V3
		dir.Set(&tile.Quad[i]).Unit()
		if !dir.Aeq(&rails[i]) {
			t.Errorf("corner %d direction %s is not rail %s", i, dir.Dump(), rails[i].Dump())
		}
	}
}

func TestRailResolverDegeneratePlane(t *testing.T) {
	ps := planarPointSet(11, 4)
	sub := NewCubemapSubdivision(1)
	sub.Init(ps)
	resolver := NewRailTileResolver(sub)
	resolver.Init(ps)

	// A plane through the origin: every rail starts on the plane or
	// points along it, so resolution must fail.
	model := NewGeometryModel()
	model.Cell = 5
	model.Center = lin.V3{}
	model.Normal = lin.V3{Z: 1}
	bp := NewBuildPartition(model)
	bp.AddPoint(0, 0)

	if _, ok := resolver.Resolve(&bp); ok {
		t.Errorf("a plane through the origin should not resolve")
	}
}

func TestRailResolverPlaneBehindCell(t *testing.T) {
	ps := planarPointSet(12, 4)
	sub := NewCubemapSubdivision(1)
	sub.Init(ps)
	resolver := NewRailTileResolver(sub)
	resolver.Init(ps)

	// A plane on the -Z side: the +Z rails intersect at negative t.
	model := NewGeometryModel()
	model.Cell = 5
	model.Center = lin.V3{Z: -4}
	model.Normal = lin.V3{Z: 1}
	bp := NewBuildPartition(model)
	bp.AddPoint(0, 0)

	if _, ok := resolver.Resolve(&bp); ok {
		t.Errorf("a plane behind the cell should not resolve")
	}
}
