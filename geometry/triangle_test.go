// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

import (
	"testing"

	"github.com/gazed/tiler/math/lin"
)

func TestTriangleNormal(t *testing.T) {
	tri := &Triangle{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}}
	n := tri.Normal()
	want := &lin.V3{X: 0, Y: 0, Z: 1}
	if !n.Aeq(want) {
		t.Errorf("normal was %s, not %s", n.Dump(), want.Dump())
	}
}

func TestTriangleBounds(t *testing.T) {
	tri := &Triangle{{X: -1, Y: 2, Z: 0}, {X: 1, Y: 0, Z: -3}, {X: 0, Y: 5, Z: 2}}
	min, max := tri.Bounds()
	wantMin, wantMax := &lin.V3{X: -1, Y: 0, Z: -3}, &lin.V3{X: 1, Y: 5, Z: 2}
	if !min.Eq(wantMin) || !max.Eq(wantMax) {
		t.Errorf("bounds %s %s, not %s %s", min.Dump(), max.Dump(), wantMin.Dump(), wantMax.Dump())
	}
}

func TestBarycentricVertices(t *testing.T) {
	tri := &Triangle{{X: 0, Y: 0, Z: 0}, {X: 2, Y: 0, Z: 0}, {X: 0, Y: 2, Z: 0}}
	wants := []lin.V3{{X: 1}, {Y: 1}, {Z: 1}}
	for i := range tri {
		b := tri.Barycentric(&tri[i])
		if !b.Aeq(&wants[i]) {
			t.Errorf("vertex %d barycentric was %s, not %s", i, b.Dump(), wants[i].Dump())
		}
	}
}

func TestBarycentricRoundTrip(t *testing.T) {
	tri := &Triangle{{X: 0.5, Y: -1, Z: 2}, {X: 3, Y: 0.25, Z: -1}, {X: -2, Y: 2, Z: 0}}
	coords := []lin.V3{
		{X: 1, Y: 0, Z: 0},
		{X: 0.25, Y: 0.25, Z: 0.5},
		{X: 0.1, Y: 0.6, Z: 0.3},
		{X: -0.5, Y: 1, Z: 0.5}, // outside the triangle, still sums to 1.
	}
	for i, b := range coords {
		point := tri.FromBarycentric(&b)
		back := tri.Barycentric(&point)
		if !back.Aeq(&b) {
			t.Errorf("coords %d round tripped to %s, not %s", i, back.Dump(), b.Dump())
		}
	}
}

func TestBarycentricInside(t *testing.T) {
	inside := &lin.V3{X: 0.25, Y: 0.25, Z: 0.5}
	outside := &lin.V3{X: -0.5, Y: 1, Z: 0.5}
	if !BarycentricInside(inside) {
		t.Errorf("%s should be inside", inside.Dump())
	}
	if BarycentricInside(outside) {
		t.Errorf("%s should be outside", outside.Dump())
	}
}

func TestQuadBilerp(t *testing.T) {
	q := &Quad{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	corners := []struct {
		x, y float64
		want lin.V3
	}{
		{0, 0, lin.V3{X: 0, Y: 0}},
		{1, 0, lin.V3{X: 2, Y: 0}},
		{1, 1, lin.V3{X: 2, Y: 2}},
		{0, 1, lin.V3{X: 0, Y: 2}},
		{0.5, 0.5, lin.V3{X: 1, Y: 1}},
	}
	for i, c := range corners {
		got := q.Bilerp(c.x, c.y)
		if !got.Aeq(&c.want) {
			t.Errorf("case %d interpolated to %s, not %s", i, got.Dump(), c.want.Dump())
		}
	}
}
