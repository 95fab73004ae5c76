// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

import (
	"github.com/gazed/tiler/math/lin"
)

// Triangle is three corner points. Corners are expected in
// counter-clockwise order when looking at the visible side.
type Triangle [3]lin.V3

// Normal returns the unit normal vector of the triangle, pointing in
// the direction of the visible halfspace for counter-clockwise corners.
func (t *Triangle) Normal() lin.V3 {
	var u, v, n lin.V3
	u.Sub(&t[1], &t[0])
	v.Sub(&t[2], &t[0])
	n.Cross(&u, &v)
	return *n.Unit()
}

// Bounds returns the axis-aligned bounding box of the triangle as its
// minimum and maximum corner points.
func (t *Triangle) Bounds() (min, max lin.V3) {
	min, max = t[0], t[0]
	for i := 1; i < 3; i++ {
		if t[i].X < min.X {
			min.X = t[i].X
		}
		if t[i].Y < min.Y {
			min.Y = t[i].Y
		}
		if t[i].Z < min.Z {
			min.Z = t[i].Z
		}
		if t[i].X > max.X {
			max.X = t[i].X
		}
		if t[i].Y > max.Y {
			max.Y = t[i].Y
		}
		if t[i].Z > max.Z {
			max.Z = t[i].Z
		}
	}
	return min, max
}

// Barycentric returns the barycentric coordinates of point p relative
// to the triangle. The three coordinates always sum to one for finite
// results; degenerate triangles produce non-finite coordinates.
func (t *Triangle) Barycentric(p *lin.V3) (b lin.V3) {
	var u, v, pt lin.V3
	u.Sub(&t[1], &t[0])
	v.Sub(&t[2], &t[0])
	pt.Sub(p, &t[0])
	d00 := u.Dot(&u)
	d01 := u.Dot(&v)
	d11 := v.Dot(&v)
	d20 := pt.Dot(&u)
	d21 := pt.Dot(&v)
	denom := d00*d11 - d01*d01
	b.Y = (d11*d20 - d01*d21) / denom
	b.Z = (d00*d21 - d01*d20) / denom
	b.X = 1 - b.Y - b.Z
	return b
}

// FromBarycentric returns the point corresponding to the given
// barycentric coordinates b relative to the triangle.
func (t *Triangle) FromBarycentric(b *lin.V3) (p lin.V3) {
	p.X = t[0].X*b.X + t[1].X*b.Y + t[2].X*b.Z
	p.Y = t[0].Y*b.X + t[1].Y*b.Y + t[2].Y*b.Z
	p.Z = t[0].Z*b.X + t[1].Z*b.Y + t[2].Z*b.Z
	return p
}

// BarycentricInside returns whether the given barycentric coordinates
// represent a point within the associated triangle.
func BarycentricInside(b *lin.V3) bool {
	return b.X >= 0 && b.X <= 1 && b.Y >= 0 && b.Y <= 1 && b.Z >= 0 && b.Z <= 1
}
