// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package tiler approximates the geometry sampled by a dense point
// cloud with a small, bounded set of planar quads. Points are
// partitioned by direction from the origin using a cubemap quadtree,
// candidate quad clusterings are fit per cell with a non-linear
// least-squares disk solver, and a budgeted selection over all
// candidates picks the final tiles.
//
// The caller supplies the PointSet; texturing the resulting tiles is
// the job of a downstream baking pipeline.
package tiler

import (
	"github.com/gazed/tiler/math/lin"
)

// InvalidPointSetID is a PointSet.ID value which must never be used for
// a valid point set. It marks caches as unprimed.
const InvalidPointSetID = -1

// Color is an RGB color sample associated with a point.
type Color struct {
	R, G, B float64
}

// PointSet is an unowning structure-of-arrays of a point cloud. The
// caller retains ownership of all slices and must keep them alive and
// unchanged for the duration of a tiling call.
//
// The optional slices are either empty or the same length as Positions.
type PointSet struct {

	// ID uniquely identifies this point set. It is used to invalidate
	// cached acceleration structures when the same structures are
	// reused over multiple point sets.
	ID int

	// Positions of all points.
	Positions []lin.V3

	// Normals of all points, or empty if no normals are available.
	Normals []lin.V3

	// Colors of all points, or empty if no colors are available.
	Colors []Color

	// Weights of all points, or empty if no weights are available.
	// Weights scale the error-metric evaluated for each point. Higher
	// weight places more importance on accurate reconstruction of
	// those points.
	Weights []float64
}

// validate panics with a diagnostic when the optional slices do not
// match the positions. Mismatched spans are a programming error.
func (ps *PointSet) validate() {
	count := len(ps.Positions)
	if len(ps.Normals) != 0 && len(ps.Normals) != count {
		panic("tiler.PointSet: normals length does not match positions")
	}
	if len(ps.Colors) != 0 && len(ps.Colors) != count {
		panic("tiler.PointSet: colors length does not match positions")
	}
	if len(ps.Weights) != 0 && len(ps.Weights) != count {
		panic("tiler.PointSet: weights length does not match positions")
	}
}

// weight returns the error weight of point i, one when no weights were
// supplied.
func (ps *PointSet) weight(i int) float64 {
	if len(ps.Weights) == 0 {
		return 1
	}
	return ps.Weights[i]
}
