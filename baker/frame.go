// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package baker holds the framework consumed by texture baking
// pipelines built on the tiler: frames wrap produced tiles with draw
// order and texture coordinates, implicit silhouettes classify 2D
// points as solid or freespace, and the ray classifier assigns the
// rays of a sampled scene to the frames they texture.
//
// Package baker is provided as part of the tiler scene approximation
// library.
package baker

import (
	"sort"

	"github.com/gazed/tiler/geometry"
	"github.com/gazed/tiler/math/lin"
)

// Frame is a textured quad in the baked scene.
type Frame struct {

	// Quad holds the corners in counter-clockwise order.
	Quad geometry.Quad

	// DrawOrder orders frames back to front for renderers without a
	// depth buffer: higher draw order renders later.
	DrawOrder int

	// TexcoordW holds the homogeneous w of the texture coordinate at
	// each corner, supporting projective texturing of trapezoids.
	TexcoordW [4]float64
}

// Eq returns true when two frames have the same draw order and quad.
func (f *Frame) Eq(a *Frame) bool {
	if f.DrawOrder != a.DrawOrder {
		return false
	}
	for i := range f.Quad {
		if !f.Quad[i].Eq(&a.Quad[i]) {
			return false
		}
	}
	return true
}

// PlaneFromFrame returns the plane of the frame's quad.
func PlaneFromFrame(f *Frame) geometry.Plane {
	tri := geometry.Triangle{f.Quad[0], f.Quad[1], f.Quad[2]}
	return geometry.PlaneFromTriangle(&tri)
}

// InitializeApproximateDrawOrder assigns draw orders so frames closer
// to the origin draw later. Distance from the origin is a proxy for
// visibility ordering; it is approximate but adequate in practice.
func InitializeApproximateDrawOrder(frames []Frame) {
	type frameCenter struct {
		frame   int
		distSqr float64
	}
	centers := make([]frameCenter, len(frames))
	for i := range frames {
		center := frames[i].Quad.Center()
		centers[i] = frameCenter{frame: i, distSqr: center.LenSqr()}
	}
	// Descending distance: the farthest frame draws first. Stable so
	// draw orders are deterministic on ties.
	sort.SliceStable(centers, func(i, j int) bool {
		return centers[i].distSqr > centers[j].distSqr
	})
	for order, fc := range centers {
		frames[fc.frame].DrawOrder = order
	}
}

// tangentBasis is the orthonormal frame of a plane anchored at a point
// on it: world = anchor + x·tangent + y·cotangent + z·normal.
type tangentBasis struct {
	anchor    lin.V3
	tangent   lin.V3
	cotangent lin.V3
	normal    lin.V3
}

func newTangentBasis(plane *geometry.Plane, anchor *lin.V3) tangentBasis {
	basis := tangentBasis{anchor: *anchor}
	basis.normal = plane.Normal()
	basis.tangent = plane.Tangent()
	basis.cotangent.Cross(&basis.normal, &basis.tangent).Unit()
	return basis
}

// toTangent returns the tangent-space coordinates of a world point.
func (b *tangentBasis) toTangent(world *lin.V3) lin.V3 {
	var rel lin.V3
	rel.Sub(world, &b.anchor)
	return lin.V3{X: rel.Dot(&b.tangent), Y: rel.Dot(&b.cotangent), Z: rel.Dot(&b.normal)}
}

// toWorld returns the world point of tangent-space coordinates.
func (b *tangentBasis) toWorld(p *lin.V3) lin.V3 {
	world := b.anchor
	world.X += p.X*b.tangent.X + p.Y*b.cotangent.X + p.Z*b.normal.X
	world.Y += p.X*b.tangent.Y + p.Y*b.cotangent.Y + p.Z*b.normal.Y
	world.Z += p.X*b.tangent.Z + p.Y*b.cotangent.Z + p.Z*b.normal.Z
	return world
}

// DilateFrame scales the frame's quad outward from its center so each
// vertex moves approximately one screenspace pixel at the given
// resolution (pixels per unit angle). It returns false when the frame
// is degenerate and no finite scale exists.
//
// The scale factor is a loose heuristic. Too little dilation produces
// noticeable cracks while extra dilation is nearly imperceptible, so
// precision is unimportant here.
func DilateFrame(resolution float64, f *Frame) bool {
	center := f.Quad.Center()
	plane := PlaneFromFrame(f)

	var scales [4]float64
	for i := range f.Quad {
		var toEye, toCenter lin.V3
		toEye.Set(&f.Quad[i]) // eye is the origin.
		toCenter.Sub(&f.Quad[i], &center)
		scale := 1 + toEye.Len()/(toCenter.Len()*resolution)
		if !lin.IsFinite(scale) {
			return false
		}
		scales[i] = scale
	}

	basis := newTangentBasis(&plane, &center)
	var dilated geometry.Quad
	for i := range f.Quad {
		p := basis.toTangent(&f.Quad[i])
		p.Scale(&p, scales[i])
		dilated[i] = basis.toWorld(&p)
	}
	f.Quad = dilated
	return true
}

// frameTriangles returns the two world triangles of the frame's quad
// and the matching homogeneous texture-coordinate triangles:
//
//	3----2
//	|   /|
//	|  / |
//	| /  |
//	0----1
func frameTriangles(f *Frame) (tri1, tri1tex, tri2, tri2tex geometry.Triangle) {
	w := f.TexcoordW
	tri1 = geometry.Triangle{f.Quad[0], f.Quad[1], f.Quad[2]}
	tri1tex = geometry.Triangle{
		{X: 0, Y: 0, Z: w[0]},
		{X: w[1], Y: 0, Z: w[1]},
		{X: w[2], Y: w[2], Z: w[2]},
	}
	tri2 = geometry.Triangle{f.Quad[0], f.Quad[2], f.Quad[3]}
	tri2tex = geometry.Triangle{
		{X: 0, Y: 0, Z: w[0]},
		{X: w[2], Y: w[2], Z: w[2]},
		{X: 0, Y: w[3], Z: w[3]},
	}
	return tri1, tri1tex, tri2, tri2tex
}

// WorldToFrame maps a world point on the frame's quad to homogeneous
// frame texture coordinates. It returns false when the point lies in
// neither of the quad's triangles.
func WorldToFrame(f *Frame, world *lin.V3) (lin.V3, bool) {
	tri1, tri1tex, tri2, tri2tex := frameTriangles(f)

	bary := tri1.Barycentric(world)
	if geometry.BarycentricInside(&bary) {
		return tri1tex.FromBarycentric(&bary), true
	}
	bary = tri2.Barycentric(world)
	if geometry.BarycentricInside(&bary) {
		return tri2tex.FromBarycentric(&bary), true
	}
	return lin.V3{}, false
}

// FrameToWorld maps homogeneous frame texture coordinates back to the
// world point on the quad. It returns false when the coordinates lie
// in neither texture triangle.
func FrameToWorld(f *Frame, frameSpace *lin.V3) (lin.V3, bool) {
	tri1, tri1tex, tri2, tri2tex := frameTriangles(f)

	bary := tri1tex.Barycentric(frameSpace)
	if geometry.BarycentricInside(&bary) {
		return tri1.FromBarycentric(&bary), true
	}
	bary = tri2tex.Barycentric(frameSpace)
	if geometry.BarycentricInside(&bary) {
		return tri2.FromBarycentric(&bary), true
	}
	return lin.V3{}, false
}

// FreespaceRayToFrameSpace intersects a freespace ray with the frame's
// plane and returns the 2D frame-space point of the intersection.
func FreespaceRayToFrameSpace(f *Frame, start, direction *lin.V3) (lin.V2, bool) {
	plane := PlaneFromFrame(f)
	t, hit := plane.IntersectRay(start, direction)
	if !hit {
		return lin.V2{}, false
	}
	var hitPoint lin.V3
	hitPoint.Scale(direction, t).Add(&hitPoint, start)
	return dehomogenize(f, &hitPoint)
}

// SolidRayToFrameSpace projects a solid sample at end through the
// origin onto the frame and returns the 2D frame-space point. The ray
// start is unused: the origin->end ray is what textures the frame.
func SolidRayToFrameSpace(f *Frame, start, end *lin.V3) (lin.V2, bool) {
	plane := PlaneFromFrame(f)
	var origin lin.V3
	t, hit := plane.IntersectRay(&origin, end)
	if !hit {
		return lin.V2{}, false
	}
	var hitPoint lin.V3
	hitPoint.Scale(end, t)
	return dehomogenize(f, &hitPoint)
}

// dehomogenize maps a world point on the frame to 2D frame space.
func dehomogenize(f *Frame, world *lin.V3) (lin.V2, bool) {
	hom, ok := WorldToFrame(f, world)
	if !ok {
		return lin.V2{}, false
	}
	return lin.V2{X: hom.X / hom.Z, Y: hom.Y / hom.Z}, true
}
