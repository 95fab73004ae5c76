// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package geometry provides the geometric primitives used to approximate
// point clouds with planar proxy geometry: planes, triangles, quads,
// 2D convex hulls, spherical Fibonacci point sets, a k-d tree for
// nearest-neighbour queries, and a small triangle-mesh raytracer.
//
// Package geometry is provided as part of the tiler scene approximation
// library.
package geometry

import (
	"math"

	"github.com/gazed/tiler/math/lin"
)

// IntersectRaySphere calculates the closest intersection of the ray
// starting at start with direction dir against an origin-centered sphere
// of the given radius. The ray direction is expected to be unit length.
// It returns the ray distance of the intersection and true when the ray
// hits the sphere.
//
// See: http://en.wikipedia.org/wiki/Line–sphere_intersection
func IntersectRaySphere(radius float64, start, dir *lin.V3) (t float64, hit bool) {
	// vector from the ray start to the sphere center at the origin.
	scx, scy, scz := -start.X, -start.Y, -start.Z
	d0 := dir.X*scx + dir.Y*scy + dir.Z*scz
	if d0 < 0 {
		return 0, false // sphere is behind the ray.
	}
	radius2 := radius * radius
	d1 := (scx*scx + scy*scy + scz*scz) - d0*d0
	if d1 > radius2 {
		return 0, false // ray passes outside the sphere.
	}
	return d0 - math.Sqrt(radius2-d1), true
}
