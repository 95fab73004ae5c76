// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

// plane stores an infinite plane in constant-normal form and answers
// the distance, projection, and ray questions needed when turning
// implicit planar proxies into explicit quads.

import (
	"math"

	"github.com/gazed/tiler/math/lin"
)

// Plane stores a plane based on the plane equation p·n + d == 0 as a
// unit-length normal vector n and the scalar value d. The zero value is
// an invalid plane with a zero normal.
type Plane struct {
	normal lin.V3  // unit length plane normal.
	d      float64 // signed distance to the origin along -normal.
}

// NewPlane creates a plane from a normal vector and the scalar d of the
// plane equation. The normal is normalized internally; d is rescaled to
// match. A zero normal panics as there is no valid plane to create.
func NewPlane(normal *lin.V3, d float64) Plane {
	lenSqr := normal.LenSqr()
	if lenSqr == 0 {
		panic("geometry.NewPlane: zero normal")
	}
	p := Plane{normal: *normal, d: d}
	if lenSqr != 1 {
		length := math.Sqrt(lenSqr)
		p.normal.Div(length)
		p.d /= length
	}
	return p
}

// PlaneFromPoint creates a plane containing the given point with the
// given normal direction. The normal is normalized internally.
func PlaneFromPoint(point, normal *lin.V3) Plane {
	p := Plane{normal: *normal}
	p.normal.Unit()
	p.d = -p.normal.Dot(point)
	return p
}

// PlaneFromTriangle creates the plane of the given counter-clockwise
// triangle. The plane normal has positive signed distance to points in
// the triangle's visible halfspace.
func PlaneFromTriangle(t *Triangle) Plane {
	var u, v, n lin.V3
	u.Sub(&t[1], &t[0])
	v.Sub(&t[2], &t[0])
	n.Cross(&u, &v)
	return PlaneFromPoint(&t[0], &n)
}

// Normal returns the unit length plane normal.
func (p *Plane) Normal() lin.V3 { return p.normal }

// D returns the scalar value d of the plane equation p·n + d == 0.
func (p *Plane) D() float64 { return p.d }

// IsValid returns false if the plane is degenerate (zero normal).
func (p *Plane) IsValid() bool { return p.normal.LenSqr() != 0 }

// Distance returns the signed distance from the plane to the point.
// Positive values are in the direction of the normal.
func (p *Plane) Distance(point *lin.V3) float64 {
	return p.normal.Dot(point) + p.d
}

// Project updates point v to be the projection of the given point onto
// the plane along the plane normal. The updated vector v is returned.
// Vector v may be the same as point.
func (p *Plane) Project(v, point *lin.V3) *lin.V3 {
	dist := p.Distance(point)
	v.X = point.X - p.normal.X*dist
	v.Y = point.Y - p.normal.Y*dist
	v.Z = point.Z - p.normal.Z*dist
	return v
}

// IntersectRay intersects the plane with the ray defined by origin and
// direction. It returns the ray distance of the intersection and true
// when a valid intersection (t > 0) exists. Rays parallel to the plane
// and rays starting on the plane do not intersect it.
func (p *Plane) IntersectRay(origin, direction *lin.V3) (t float64, hit bool) {
	normalDotDirection := p.normal.Dot(direction)
	if normalDotDirection == 0 {
		return 0, false // ray is parallel to the plane.
	}
	t = -p.Distance(origin) / normalDotDirection
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// Reverse returns the plane with reverse orientation. The plane's
// geometry is the same but the normal points in the opposite direction.
func (p *Plane) Reverse() Plane {
	return Plane{normal: lin.V3{X: -p.normal.X, Y: -p.normal.Y, Z: -p.normal.Z}, d: -p.d}
}

// Transform returns the plane transformed with the given matrix. The
// matrix is applied to the plane-equation coefficients (n, d), so the
// caller must supply the normal matrix (the inverse-transpose of the
// point transform); this method does not compute it.
func (p *Plane) Transform(normalMatrix *lin.M4) Plane {
	nx, ny, nz, d := normalMatrix.MultMv4(p.normal.X, p.normal.Y, p.normal.Z, p.d)
	return NewPlane(&lin.V3{X: nx, Y: ny, Z: nz}, d)
}

// Tangent returns a normalized vector tangent to the plane. The tangent
// is derived from the unit basis vector whose projection onto the
// normal has the smallest magnitude.
func (p *Plane) Tangent() lin.V3 {
	axis := 0
	smallest := math.Abs(p.normal.X)
	if ay := math.Abs(p.normal.Y); ay < smallest {
		axis, smallest = 1, ay
	}
	if az := math.Abs(p.normal.Z); az < smallest {
		axis = 2
	}

	// Orthogonalize the basis vector against the normal. Since the
	// normal is unit length the projection is just the normal scaled by
	// its component on the chosen axis.
	var tangent lin.V3
	tangent.Scale(&p.normal, -p.normal.Comp(axis))
	tangent.SetComp(axis, tangent.Comp(axis)+1)
	return *tangent.Unit()
}
