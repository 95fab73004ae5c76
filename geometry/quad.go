// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

import (
	"github.com/gazed/tiler/math/lin"
)

// Quad is four corner points. Corners are expected in counter-clockwise
// order when looking at the visible side:
//
//	3--------2
//	|        |
//	|        |
//	0--------1
type Quad [4]lin.V3

// IsFinite returns true if every coordinate of every corner is a finite
// value, false if any are Inf or NaN.
func (q *Quad) IsFinite() bool {
	return q[0].IsFinite() && q[1].IsFinite() && q[2].IsFinite() && q[3].IsFinite()
}

// Center returns the mean of the four corner points.
func (q *Quad) Center() lin.V3 {
	var c lin.V3
	c.Add(&q[0], &q[1])
	c.Add(&c, &q[2])
	c.Add(&c, &q[3])
	return *c.Scale(&c, 0.25)
}

// Bilerp returns the bilinear interpolation of the quad corners at the
// given parameters in [0,1]². Parameter (0,0) returns corner 0 and
// parameter (1,0) returns corner 1.
func (q *Quad) Bilerp(x, y float64) (p lin.V3) {
	var low, high lin.V3
	low.Lerp(&q[0], &q[1], x)
	high.Lerp(&q[3], &q[2], x)
	p.Lerp(&low, &high, y)
	return p
}
