// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package lin

// Vector performs the 2 and 3 element vector math needed when fitting
// and clustering 3D point clouds.

import (
	"fmt"
	"math"
)

// V2 is a 2 element vector. This can also be used as a point.
type V2 struct {
	X float64 // increments as X moves right on a cube face.
	Y float64 // increments as Y moves up on a cube face.
}

// V3 is a 3 element vector. This can also be used as a point.
type V3 struct {
	X float64 // increments as X moves to the right.
	Y float64 // increments as Y moves up from bottom left.
	Z float64 // increments as Z moves out of the screen (right handed view space).
}

// Eq (==) returns true if each element in the vector v has the same value
// as the corresponding element in vector a.
func (v *V2) Eq(a *V2) bool { return v.X == a.X && v.Y == a.Y }

// Eq (==) returns true if each element in the vector v has the same value
// as the corresponding element in vector a.
func (v *V3) Eq(a *V3) bool { return v.Z == a.Z && v.Y == a.Y && v.X == a.X }

// Aeq (~=) almost-equals returns true if all the elements in vector v have
// essentially the same value as the corresponding elements in vector a.
func (v *V2) Aeq(a *V2) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) }

// Aeq (~=) almost-equals returns true if all the elements in vector v have
// essentially the same value as the corresponding elements in vector a.
func (v *V3) Aeq(a *V3) bool { return Aeq(v.X, a.X) && Aeq(v.Y, a.Y) && Aeq(v.Z, a.Z) }

// GetS returns the vector elements as individual scalar values.
func (v *V2) GetS() (x, y float64) { return v.X, v.Y }

// GetS returns the vector elements as individual scalar values.
func (v *V3) GetS() (x, y, z float64) { return v.X, v.Y, v.Z }

// SetS (=) explicitly sets the vector elements using the given scalar
// values. The updated vector v is returned.
func (v *V2) SetS(x, y float64) *V2 {
	v.X, v.Y = x, y
	return v
}

// SetS (=) explicitly sets the vector elements using the given scalar
// values. The updated vector v is returned.
func (v *V3) SetS(x, y, z float64) *V3 {
	v.X, v.Y, v.Z = x, y, z
	return v
}

// Set (=, copy, clone) assigns all the elements of vector a to the
// corresponding elements of vector v. The updated vector v is returned.
func (v *V2) Set(a *V2) *V2 {
	v.X, v.Y = a.X, a.Y
	return v
}

// Set (=, copy, clone) assigns all the elements of vector a to the
// corresponding elements of vector v. The updated vector v is returned.
func (v *V3) Set(a *V3) *V3 {
	v.X, v.Y, v.Z = a.X, a.Y, a.Z
	return v
}

// Comp returns the vector element for the given axis index 0:X, 1:Y, 2:Z.
// Out of range axis values panic.
func (v *V3) Comp(axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	}
	panic(fmt.Sprintf("lin.V3:Comp invalid axis %d", axis))
}

// SetComp sets the vector element for the given axis index 0:X, 1:Y, 2:Z.
// The updated vector v is returned. Out of range axis values panic.
func (v *V3) SetComp(axis int, value float64) *V3 {
	switch axis {
	case 0:
		v.X = value
	case 1:
		v.Y = value
	case 2:
		v.Z = value
	default:
		panic(fmt.Sprintf("lin.V3:SetComp invalid axis %d", axis))
	}
	return v
}

// MajorAxis returns the axis index 0:X, 1:Y, 2:Z of the vector element
// with the largest absolute value. Ties return the lower axis index.
func (v *V3) MajorAxis() int {
	axis, max := 0, math.Abs(v.X)
	if ay := math.Abs(v.Y); ay > max {
		axis, max = 1, ay
	}
	if az := math.Abs(v.Z); az > max {
		axis = 2
	}
	return axis
}

// Add (+=) adds vectors a and b storing the results in v.
// Vector v may be used as one or both of the parameters.
// The updated vector v is returned.
func (v *V2) Add(a, b *V2) *V2 {
	v.X, v.Y = a.X+b.X, a.Y+b.Y
	return v
}

// Add (+=) adds vectors a and b storing the results in v.
// Vector v may be used as one or both of the parameters.
// The updated vector v is returned.
func (v *V3) Add(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X+b.X, a.Y+b.Y, a.Z+b.Z
	return v
}

// Sub (-=) subtracts vector b from vector a storing the results in v.
// Vector v may be used as one or both of the parameters.
// The updated vector v is returned.
func (v *V2) Sub(a, b *V2) *V2 {
	v.X, v.Y = a.X-b.X, a.Y-b.Y
	return v
}

// Sub (-=) subtracts vector b from vector a storing the results in v.
// Vector v may be used as one or both of the parameters.
// The updated vector v is returned.
func (v *V3) Sub(a, b *V3) *V3 {
	v.X, v.Y, v.Z = a.X-b.X, a.Y-b.Y, a.Z-b.Z
	return v
}

// Scale (*=) updates the elements in vector v by multiplying the
// corresponding elements in vector a by the given scalar value.
// The updated vector v is returned.
func (v *V2) Scale(a *V2, s float64) *V2 {
	v.X, v.Y = a.X*s, a.Y*s
	return v
}

// Scale (*=) updates the elements in vector v by multiplying the
// corresponding elements in vector a by the given scalar value.
// The updated vector v is returned.
func (v *V3) Scale(a *V3, s float64) *V3 {
	v.X, v.Y, v.Z = a.X*s, a.Y*s, a.Z*s
	return v
}

// Div (/= inverse-scale) divides each element in v by the given scalar value.
// The updated vector v is returned. Vector v is not changed if scalar s is zero.
func (v *V2) Div(s float64) *V2 {
	if s != 0 {
		inv := 1 / s
		v.X, v.Y = v.X*inv, v.Y*inv
	}
	return v
}

// Div (/= inverse-scale) divides each element in v by the given scalar value.
// The updated vector v is returned. Vector v is not changed if scalar s is zero.
func (v *V3) Div(s float64) *V3 {
	if s != 0 {
		inv := 1 / s
		v.X, v.Y, v.Z = v.X*inv, v.Y*inv, v.Z*inv
	}
	return v
}

// Dot vector v with input vector a. Both vectors v and a are unchanged.
// Algebraically the dot product is the sum of the products of the
// corresponding elements of the two vectors.
func (v *V2) Dot(a *V2) float64 { return v.X*a.X + v.Y*a.Y }

// Dot vector v with input vector a. Same behaviour as V2.Dot().
func (v *V3) Dot(a *V3) float64 { return v.X*a.X + v.Y*a.Y + v.Z*a.Z }

// Len returns the length of vector v. Vector length is the square root of
// the dot product. The calling vector v is unchanged.
func (v *V2) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Len returns the length of vector v. Same behaviour as V2.Len().
func (v *V3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// LenSqr returns the length of vector v squared.
// The calling vector v is unchanged.
func (v *V2) LenSqr() float64 { return v.Dot(v) }

// LenSqr returns the length of vector v squared.
// The calling vector v is unchanged.
func (v *V3) LenSqr() float64 { return v.Dot(v) }

// Dist returns the distance between vector end-points v and a.
// Both vectors (points) v and a are unchanged.
func (v *V2) Dist(a *V2) float64 { return math.Sqrt(v.DistSqr(a)) }

// DistSqr returns the distance squared between vector end-points v and a.
// Both vectors (points) v and a are unchanged.
func (v *V2) DistSqr(a *V2) float64 {
	dx, dy := a.X-v.X, a.Y-v.Y
	return dx*dx + dy*dy
}

// Dist returns the distance between vector end-points v and a.
// Both vectors (points) v and a are unchanged.
func (v *V3) Dist(a *V3) float64 { return math.Sqrt(v.DistSqr(a)) }

// DistSqr returns the distance squared between vector end-points v and a.
// Both vectors (points) v and a are unchanged.
func (v *V3) DistSqr(a *V3) float64 {
	dx, dy, dz := a.X-v.X, a.Y-v.Y, a.Z-v.Z
	return dx*dx + dy*dy + dz*dz
}

// Unit updates vector v such that its length is 1.
// Calling vector v is unchanged if its length is zero.
// The updated vector v is returned.
func (v *V2) Unit() *V2 {
	length := v.Len()
	if length != 0 {
		return v.Div(length)
	}
	return v
}

// Unit updates vector v such that its length is 1.
// Same behaviour as V2.Unit().
func (v *V3) Unit() *V3 {
	length := v.Len()
	if length != 0 {
		return v.Div(length)
	}
	return v
}

// Cross updates vector v to be the cross product of vectors a and b.
// The cross product vector is perpendicular to both a and b.
// Vector v may be used as one or both of the parameters.
// The updated vector v is returned.
func (v *V3) Cross(a, b *V3) *V3 {
	x := a.Y*b.Z - a.Z*b.Y
	y := a.Z*b.X - a.X*b.Z
	z := a.X*b.Y - a.Y*b.X
	v.X, v.Y, v.Z = x, y, z
	return v
}

// CrossS returns the scalar (z component of the) cross product of the
// 2D vectors v and a. Both vectors v and a are unchanged.
func (v *V2) CrossS(a *V2) float64 { return v.X*a.Y - v.Y*a.X }

// Lerp updates vector v to be the linear interpolation between vectors
// a and b at the given fraction. Vector v is set to vector a for fraction 0
// and to vector b for fraction 1. The updated vector v is returned.
func (v *V3) Lerp(a, b *V3, fraction float64) *V3 {
	v.X = (b.X-a.X)*fraction + a.X
	v.Y = (b.Y-a.Y)*fraction + a.Y
	v.Z = (b.Z-a.Z)*fraction + a.Z
	return v
}

// IsFinite returns true if every element of vector v is a finite value.
func (v *V2) IsFinite() bool { return IsFinite(v.X) && IsFinite(v.Y) }

// IsFinite returns true if every element of vector v is a finite value.
func (v *V3) IsFinite() bool { return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z) }

// Dump the vector to a human readable string for debugging.
func (v *V2) Dump() string { return fmt.Sprintf("{%2.9f %2.9f}", v.X, v.Y) }

// Dump the vector to a human readable string for debugging.
func (v *V3) Dump() string { return fmt.Sprintf("{%2.9f %2.9f %2.9f}", v.X, v.Y, v.Z) }

// NewV2 creates and returns a new zero vector (point).
func NewV2() *V2 { return &V2{} }

// NewV3 creates and returns a new zero vector (point).
func NewV3() *V3 { return &V3{} }
