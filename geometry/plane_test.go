// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

import (
	"testing"

	"github.com/gazed/tiler/math/lin"
)

func TestPlaneNormalizes(t *testing.T) {
	p := NewPlane(&lin.V3{X: 0, Y: 0, Z: 10}, 20)
	n := p.Normal()
	if !n.Aeq(&lin.V3{X: 0, Y: 0, Z: 1}) {
		t.Errorf("normal %s was not normalized", n.Dump())
	}
	if !lin.Aeq(p.D(), 2) {
		t.Errorf("d was %f, not rescaled to 2", p.D())
	}
}

func TestPlaneFromPointDistance(t *testing.T) {
	point := &lin.V3{X: 1, Y: 2, Z: 3}
	p := PlaneFromPoint(point, &lin.V3{X: 0, Y: 1, Z: 0})
	if !lin.AeqZ(p.Distance(point)) {
		t.Errorf("point on plane has distance %f", p.Distance(point))
	}
	above := &lin.V3{X: 5, Y: 4, Z: -2}
	if !lin.Aeq(p.Distance(above), 2) {
		t.Errorf("distance was %f, not 2", p.Distance(above))
	}
}

func TestPlaneFromTriangleContainsVertices(t *testing.T) {
	tri := &Triangle{
		{X: 1, Y: 0.5, Z: -0.25},
		{X: -3, Y: 2, Z: 1},
		{X: 0.5, Y: -1, Z: 4},
	}
	p := PlaneFromTriangle(tri)
	for i, v := range tri {
		if !lin.AeqZ(p.Distance(&v)) {
			t.Errorf("vertex %d has distance %f from its own plane", i, p.Distance(&v))
		}
	}
}

func TestPlaneProject(t *testing.T) {
	p := PlaneFromPoint(&lin.V3{X: 0, Y: 0, Z: 2}, &lin.V3{X: 0, Y: 0, Z: 1})
	var projected lin.V3
	p.Project(&projected, &lin.V3{X: 3, Y: -4, Z: 7})
	want := &lin.V3{X: 3, Y: -4, Z: 2}
	if !projected.Aeq(want) {
		t.Errorf("projected to %s, not %s", projected.Dump(), want.Dump())
	}
}

func TestPlaneIntersectRay(t *testing.T) {
	p := PlaneFromPoint(&lin.V3{X: 0, Y: 0, Z: 5}, &lin.V3{X: 0, Y: 0, Z: 1})
	hit, ok := p.IntersectRay(&lin.V3{}, &lin.V3{X: 0, Y: 0, Z: 1})
	if !ok || !lin.Aeq(hit, 5) {
		t.Errorf("intersection was %f %t, not 5 true", hit, ok)
	}

	// Rays pointing away from the plane miss it.
	if _, ok = p.IntersectRay(&lin.V3{}, &lin.V3{X: 0, Y: 0, Z: -1}); ok {
		t.Errorf("ray pointing away should not intersect")
	}

	// Rays parallel to the plane miss it.
	if _, ok = p.IntersectRay(&lin.V3{}, &lin.V3{X: 1, Y: 0, Z: 0}); ok {
		t.Errorf("parallel ray should not intersect")
	}

	// Rays starting on the plane miss it.
	if _, ok = p.IntersectRay(&lin.V3{X: 0, Y: 0, Z: 5}, &lin.V3{X: 0, Y: 0, Z: 1}); ok {
		t.Errorf("ray starting on the plane should not intersect")
	}
}

func TestPlaneReverse(t *testing.T) {
	p := PlaneFromPoint(&lin.V3{X: 0, Y: 0, Z: 5}, &lin.V3{X: 0, Y: 0, Z: 1})
	r := p.Reverse()
	point := &lin.V3{X: 0, Y: 0, Z: 7}
	if !lin.Aeq(p.Distance(point), -r.Distance(point)) {
		t.Errorf("reversed distance %f should negate %f", r.Distance(point), p.Distance(point))
	}
}

func TestPlaneTangent(t *testing.T) {
	planes := []Plane{
		PlaneFromPoint(&lin.V3{}, &lin.V3{X: 0, Y: 0, Z: 1}),
		PlaneFromPoint(&lin.V3{X: 1, Y: 2, Z: 3}, &lin.V3{X: 1, Y: 1, Z: 1}),
		PlaneFromPoint(&lin.V3{}, &lin.V3{X: -0.3, Y: 0.9, Z: 0.1}),
	}
	for i, p := range planes {
		tangent := p.Tangent()
		normal := p.Normal()
		if !lin.Aeq(tangent.Len(), 1) {
			t.Errorf("plane %d tangent %s is not unit length", i, tangent.Dump())
		}
		if !lin.AeqZ(tangent.Dot(&normal)) {
			t.Errorf("plane %d tangent %s is not orthogonal to the normal", i, tangent.Dump())
		}
	}
}

func TestPlaneTransform(t *testing.T) {
	p := PlaneFromPoint(&lin.V3{X: 0, Y: 0, Z: 2}, &lin.V3{X: 0, Y: 0, Z: 1})

	// Identity leaves the plane untouched.
	same := p.Transform(&lin.M4I)
	n := same.Normal()
	if !n.Aeq(&lin.V3{Z: 1}) || !lin.Aeq(same.D(), p.D()) {
		t.Errorf("identity transform changed the plane to %s %f", n.Dump(), same.D())
	}

	// Translating by +3z moves the plane to z = 5. The normal matrix
	// of a translation T carries d' = d - n·t.
	translate := lin.M4I
	translate.Wz = -3
	moved := p.Transform(&translate)
	if !lin.Aeq(moved.Distance(&lin.V3{Z: 5}), 0) {
		t.Errorf("translated plane does not contain z=5, distance %f",
			moved.Distance(&lin.V3{Z: 5}))
	}
}

func TestRaySphere(t *testing.T) {
	start := &lin.V3{X: 0, Y: 0, Z: -5}
	dir := &lin.V3{X: 0, Y: 0, Z: 1}
	hit, ok := IntersectRaySphere(2, start, dir)
	if !ok || !lin.Aeq(hit, 3) {
		t.Errorf("intersection was %f %t, not 3 true", hit, ok)
	}

	// A ray that misses.
	if _, ok = IntersectRaySphere(2, &lin.V3{X: 5, Y: 0, Z: -5}, dir); ok {
		t.Errorf("offset ray should miss the sphere")
	}

	// A ray pointing away.
	if _, ok = IntersectRaySphere(2, start, &lin.V3{X: 0, Y: 0, Z: -1}); ok {
		t.Errorf("ray pointing away should miss the sphere")
	}
}
