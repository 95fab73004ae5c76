// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

import (
	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
)

// GeometryModel is the implicit representation of a prospective tile:
// the parameters of the planar proxy geometry used to represent a set
// of points.
type GeometryModel struct {

	// Cell is the Subdivision cell in which this model lives,
	// or -1 when the model is not yet bound to a cell.
	Cell int

	// Center of this piece of geometry. The precise definition is left
	// to the GeometrySolver fitting the model.
	Center lin.V3

	// Normal of the plane for this piece of proxy geometry.
	// Unit length.
	Normal lin.V3
}

// NewGeometryModel returns an unbound model with a default +Z normal.
func NewGeometryModel() GeometryModel {
	return GeometryModel{Cell: -1, Normal: lin.V3{Z: 1}}
}

// Plane returns the planar representation of this surface proxy:
// the plane through Center with normal Normal.
func (m *GeometryModel) Plane() geometry.Plane {
	return geometry.PlaneFromPoint(&m.Center, &m.Normal)
}

// Eq returns true if the two models have the same cell, center,
// and normal.
func (m *GeometryModel) Eq(a *GeometryModel) bool {
	return m.Cell == a.Cell && m.Center.Eq(&a.Center) && m.Normal.Eq(&a.Normal)
}

// Tile is the explicit rendering primitive produced by the tiler:
// a planar quad spanning its subdivision cell.
type Tile struct {

	// Cell is the Subdivision cell from which this tile was generated.
	Cell int

	// Quad holds the tile corners in counter-clockwise order relative
	// to the surface normal.
	Quad geometry.Quad
}
