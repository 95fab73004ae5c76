// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

// raytracer answers ray queries against a triangle mesh using a
// bounding volume hierarchy. The hierarchy is built once, is immutable
// afterwards, and may be queried concurrently from multiple goroutines.
//     http://en.wikipedia.org/wiki/Bounding_volume_hierarchy
//     http://en.wikipedia.org/wiki/Möller–Trumbore_intersection_algorithm

import (
	"math"
	"sort"

	"github.com/gazed/tiler/math/lin"
)

// Hit is a single ray-triangle intersection.
type Hit struct {
	T        float64 // ray distance of the intersection.
	Triangle int     // index of the intersected triangle.
}

// Raytracer holds a triangle mesh and its bounding volume hierarchy.
type Raytracer struct {
	verts []lin.V3
	tris  []int32   // three vertex indices per triangle.
	order []int32   // triangle indices referenced by leaf nodes.
	nodes []bvhNode // node 0 is the root for non-empty meshes.
}

// bvhNode is one node of the hierarchy. Leaf nodes have count > 0 and
// reference a range of the triangle order slice.
type bvhNode struct {
	min, max     lin.V3
	left, right  int32 // child node indices for interior nodes.
	start, count int32 // triangle range for leaf nodes.
}

// leafSize is the number of triangles at which subdivision stops.
const leafSize = 4

// NewRaytracer builds a hierarchy over the mesh described by the vertex
// buffer and the index buffer. The index buffer length must be a
// multiple of three; anything else panics. Both buffers are copied.
func NewRaytracer(vertices []lin.V3, indices []int) *Raytracer {
	if len(indices)%3 != 0 {
		panic("geometry.NewRaytracer: index buffer length must be a multiple of 3")
	}
	r := &Raytracer{
		verts: append([]lin.V3(nil), vertices...),
		tris:  make([]int32, len(indices)),
	}
	for i, index := range indices {
		r.tris[i] = int32(index)
	}

	triCount := len(indices) / 3
	if triCount == 0 {
		return r
	}
	r.order = make([]int32, triCount)
	centroids := make([]lin.V3, triCount)
	for i := 0; i < triCount; i++ {
		r.order[i] = int32(i)
		a, b, c := r.triangle(int32(i))
		centroids[i].Add(a, b)
		centroids[i].Add(&centroids[i], c)
		centroids[i].Div(3)
	}
	r.nodes = make([]bvhNode, 0, 2*triCount)
	r.build(0, triCount, centroids)
	return r
}

// triangle returns the three vertices of the given triangle.
func (r *Raytracer) triangle(tri int32) (a, b, c *lin.V3) {
	return &r.verts[r.tris[tri*3]], &r.verts[r.tris[tri*3+1]], &r.verts[r.tris[tri*3+2]]
}

// build creates a node bounding the order range [start, start+count),
// splitting it at the centroid median of the widest axis. It returns
// the node index.
func (r *Raytracer) build(start, count int, centroids []lin.V3) int32 {
	node := bvhNode{left: -1, right: -1}
	node.min.SetS(math.Inf(1), math.Inf(1), math.Inf(1))
	node.max.SetS(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	var cmin, cmax lin.V3
	cmin, cmax = node.min, node.max
	for _, tri := range r.order[start : start+count] {
		a, b, c := r.triangle(tri)
		for _, v := range [3]*lin.V3{a, b, c} {
			growBounds(&node.min, &node.max, v)
		}
		growBounds(&cmin, &cmax, &centroids[tri])
	}

	index := int32(len(r.nodes))
	r.nodes = append(r.nodes, node)
	if count <= leafSize {
		r.nodes[index].start = int32(start)
		r.nodes[index].count = int32(count)
		return index
	}

	var extent lin.V3
	axis := extent.Sub(&cmax, &cmin).MajorAxis()
	tris := r.order[start : start+count]
	sort.Slice(tris, func(i, j int) bool {
		return centroids[tris[i]].Comp(axis) < centroids[tris[j]].Comp(axis)
	})
	mid := count / 2
	left := r.build(start, mid, centroids)
	right := r.build(start+mid, count-mid, centroids)
	r.nodes[index].left = left
	r.nodes[index].right = right
	return index
}

func growBounds(min, max, p *lin.V3) {
	if p.X < min.X {
		min.X = p.X
	}
	if p.Y < min.Y {
		min.Y = p.Y
	}
	if p.Z < min.Z {
		min.Z = p.Z
	}
	if p.X > max.X {
		max.X = p.X
	}
	if p.Y > max.Y {
		max.Y = p.Y
	}
	if p.Z > max.Z {
		max.Z = p.Z
	}
}

// hitBounds checks the ray against an axis aligned box over [0, tMax].
// Zero direction components are handled without producing NaN.
func hitBounds(min, max, origin, dir *lin.V3, tMax float64) bool {
	tNear, tFar := 0.0, tMax
	for axis := 0; axis < 3; axis++ {
		o, d := origin.Comp(axis), dir.Comp(axis)
		lo, hi := min.Comp(axis), max.Comp(axis)
		if d == 0 {
			if o < lo || o > hi {
				return false
			}
			continue
		}
		t0 := (lo - o) / d
		t1 := (hi - o) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tNear {
			tNear = t0
		}
		if t1 < tFar {
			tFar = t1
		}
		if tNear > tFar {
			return false
		}
	}
	return true
}

// intersectTriangle runs Möller–Trumbore against one triangle. Rays
// starting on the triangle (t == 0) do not intersect.
func (r *Raytracer) intersectTriangle(tri int32, origin, dir *lin.V3) (float64, bool) {
	const eps = 1e-12
	a, b, c := r.triangle(tri)
	var edge1, edge2, pvec, tvec, qvec lin.V3
	edge1.Sub(b, a)
	edge2.Sub(c, a)
	pvec.Cross(dir, &edge2)
	det := edge1.Dot(&pvec)
	if det > -eps && det < eps {
		return 0, false
	}
	inv := 1 / det
	tvec.Sub(origin, a)
	u := tvec.Dot(&pvec) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	qvec.Cross(&tvec, &edge1)
	v := dir.Dot(&qvec) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := edge2.Dot(&qvec) * inv
	if t <= 0 {
		return 0, false
	}
	return t, true
}

// FirstHit returns the nearest intersection along the ray with distance
// no greater than tMax. It returns false when nothing is hit.
func (r *Raytracer) FirstHit(origin, dir *lin.V3, tMax float64) (Hit, bool) {
	best := Hit{T: tMax, Triangle: -1}
	if len(r.nodes) == 0 {
		return best, false
	}
	var stack [64]int32
	top := 0
	stack[top] = 0
	top++
	for top > 0 {
		top--
		node := &r.nodes[stack[top]]
		if !hitBounds(&node.min, &node.max, origin, dir, best.T) {
			continue
		}
		if node.count > 0 {
			for _, tri := range r.order[node.start : node.start+node.count] {
				if t, ok := r.intersectTriangle(tri, origin, dir); ok && t <= best.T {
					best = Hit{T: t, Triangle: int(tri)}
				}
			}
			continue
		}
		stack[top] = node.left
		top++
		stack[top] = node.right
		top++
	}
	return best, best.Triangle >= 0
}

// AllHits resets hits to every intersection along the unbounded ray.
// The intersections are in no particular order.
func (r *Raytracer) AllHits(origin, dir *lin.V3, hits *[]Hit) {
	*hits = (*hits)[:0]
	if len(r.nodes) == 0 {
		return
	}
	inf := math.Inf(1)
	var stack [64]int32
	top := 0
	stack[top] = 0
	top++
	for top > 0 {
		top--
		node := &r.nodes[stack[top]]
		if !hitBounds(&node.min, &node.max, origin, dir, inf) {
			continue
		}
		if node.count > 0 {
			for _, tri := range r.order[node.start : node.start+node.count] {
				if t, ok := r.intersectTriangle(tri, origin, dir); ok {
					*hits = append(*hits, Hit{T: t, Triangle: int(tri)})
				}
			}
			continue
		}
		stack[top] = node.left
		top++
		stack[top] = node.right
		top++
	}
}

// CountHits returns the number of intersections along the ray with
// distance no greater than tMax, stopping traversal early once maxCount
// intersections have been found.
func (r *Raytracer) CountHits(origin, dir *lin.V3, tMax float64, maxCount int) int {
	count := 0
	if len(r.nodes) == 0 || maxCount <= 0 {
		return count
	}
	var stack [64]int32
	top := 0
	stack[top] = 0
	top++
	for top > 0 {
		top--
		node := &r.nodes[stack[top]]
		if !hitBounds(&node.min, &node.max, origin, dir, tMax) {
			continue
		}
		if node.count > 0 {
			for _, tri := range r.order[node.start : node.start+node.count] {
				if t, ok := r.intersectTriangle(tri, origin, dir); ok && t <= tMax {
					count++
					if count >= maxCount {
						return count
					}
				}
			}
			continue
		}
		stack[top] = node.left
		top++
		stack[top] = node.right
		top++
	}
	return count
}
