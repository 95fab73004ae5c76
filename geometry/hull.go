// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

// hull computes 2D convex hulls using Andrew's monotone chain.
//     http://en.wikibooks.org/wiki/Algorithm_Implementation/Geometry/Convex_hull/Monotone_chain

import (
	"sort"

	"github.com/gazed/tiler/math/lin"
)

// leftTurn returns true when walking a->b->c turns counter-clockwise.
func leftTurn(a, b, c *lin.V2) bool {
	var ab, bc lin.V2
	ab.Sub(b, a)
	bc.Sub(c, b)
	return ab.CrossS(&bc) > 0
}

// appendAndTrim adds point p to the tentative hull, then keeps removing
// the next to last point until the last three points form a left turn.
func appendAndTrim(p lin.V2, hull []lin.V2) []lin.V2 {
	hull = append(hull, p)
	for len(hull) > 2 {
		n := len(hull)
		if leftTurn(&hull[n-3], &hull[n-2], &hull[n-1]) {
			break
		}
		hull[n-2] = hull[n-1] // delete the middle point.
		hull = hull[:n-1]
	}
	return hull
}

// ConvexHull returns the convex hull of the given 2D points with hull
// vertices in counter-clockwise order. The returned hull is empty when
// the input is degenerate: fewer than three points, or all points
// collinear.
func ConvexHull(points []lin.V2) []lin.V2 {
	if len(points) < 3 {
		return nil
	}

	// Order the points (x,y)-lexicographically.
	sorted := make([]lin.V2, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	// Walk counter-clockwise, leaving the hull interior on the left.
	// The upper hull walks right to left, the lower hull left to right.
	var upper, lower []lin.V2
	for i := len(sorted) - 1; i >= 0; i-- {
		upper = appendAndTrim(sorted[i], upper)
	}
	for i := 0; i < len(sorted); i++ {
		lower = appendAndTrim(sorted[i], lower)
	}

	// With collinear input both chains collapse to a single segment:
	// four points total counting the duplicated endpoints.
	if len(upper)+len(lower) < 5 {
		return nil
	}

	// Concatenate the chains, dropping the last point of each since it
	// duplicates the first point of the other.
	hull := make([]lin.V2, 0, len(upper)+len(lower)-2)
	hull = append(hull, upper[:len(upper)-1]...)
	hull = append(hull, lower[:len(lower)-1]...)
	return hull
}
