// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package lin

import (
	"math"
	"testing"
)

// While the functions below are not complicated, they are foundational such
// that it is better to test each one of them than have the bugs discovered
// later from other code. Where applicable, check that the output vector can
// also be used as one or both of the input vectors.

const format = "%s is not the expected %s"

func TestSetV3(t *testing.T) {
	v, a := &V3{}, &V3{1, 2, 3}
	if !v.Set(a).Eq(a) {
		t.Errorf("%s is not the same as %s", v.Dump(), a.Dump())
	}
}

func TestAddV3(t *testing.T) {
	v, a, want := &V3{1, 2, 3}, &V3{2, 3, 4}, &V3{3, 5, 7}
	if !v.Add(v, a).Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestSubV3(t *testing.T) {
	v, a, want := &V3{1, 2, 3}, &V3{2, 4, 6}, &V3{-1, -2, -3}
	if !v.Sub(v, a).Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestScaleV3(t *testing.T) {
	v, want := &V3{1, 2, 3}, &V3{2, 4, 6}
	if !v.Scale(v, 2).Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestDivV3(t *testing.T) {
	v, want := &V3{2, 4, 6}, &V3{1, 2, 3}
	if !v.Div(2).Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestDivZeroV3(t *testing.T) {
	v, want := &V3{2, 4, 6}, &V3{2, 4, 6}
	if !v.Div(0).Eq(want) {
		t.Errorf("dividing by zero should not change %s", v.Dump())
	}
}

func TestDotV3(t *testing.T) {
	v, a := &V3{1, 2, 3}, &V3{4, 5, 6}
	if v.Dot(a) != 32 {
		t.Errorf("dot product was %f, not 32", v.Dot(a))
	}
}

func TestLenV3(t *testing.T) {
	v := &V3{3, 4, 0}
	if v.Len() != 5 {
		t.Errorf("length was %f, not 5", v.Len())
	}
}

func TestUnitV3(t *testing.T) {
	v := &V3{3, 4, 0}
	if !Aeq(v.Unit().Len(), 1) {
		t.Errorf("unit length was %f, not 1", v.Len())
	}
}

func TestUnitZeroV3(t *testing.T) {
	v, want := &V3{}, &V3{}
	if !v.Unit().Eq(want) {
		t.Errorf("normalizing zero should leave %s unchanged", v.Dump())
	}
}

func TestCrossV3(t *testing.T) {
	v, a, b, want := &V3{}, &V3{1, 0, 0}, &V3{0, 1, 0}, &V3{0, 0, 1}
	if !v.Cross(a, b).Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestCrossOverwriteV3(t *testing.T) {
	v, b, want := &V3{1, 0, 0}, &V3{0, 1, 0}, &V3{0, 0, 1}
	if !v.Cross(v, b).Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestLerpV3(t *testing.T) {
	v, a, b, want := &V3{}, &V3{0, 0, 0}, &V3{2, 4, 6}, &V3{1, 2, 3}
	if !v.Lerp(a, b, 0.5).Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestCompV3(t *testing.T) {
	v := &V3{1, 2, 3}
	if v.Comp(0) != 1 || v.Comp(1) != 2 || v.Comp(2) != 3 {
		t.Errorf("component access failed for %s", v.Dump())
	}
}

func TestSetCompV3(t *testing.T) {
	v, want := &V3{}, &V3{1, 2, 3}
	v.SetComp(0, 1).SetComp(1, 2).SetComp(2, 3)
	if !v.Eq(want) {
		t.Errorf(format, v.Dump(), want.Dump())
	}
}

func TestMajorAxisV3(t *testing.T) {
	cases := []struct {
		v    V3
		axis int
	}{
		{V3{1, 0, 0}, 0},
		{V3{0, -2, 1}, 1},
		{V3{0.1, 0.2, -0.3}, 2},
		{V3{1, 1, 1}, 0}, // ties pick the lower axis.
	}
	for _, c := range cases {
		if got := c.v.MajorAxis(); got != c.axis {
			t.Errorf("major axis of %s was %d, not %d", c.v.Dump(), got, c.axis)
		}
	}
}

func TestIsFiniteV3(t *testing.T) {
	v := &V3{1, 2, 3}
	if !v.IsFinite() {
		t.Errorf("%s should be finite", v.Dump())
	}
	v.Y = math.Inf(1)
	if v.IsFinite() {
		t.Errorf("%s should not be finite", v.Dump())
	}
	v.Y = math.NaN()
	if v.IsFinite() {
		t.Errorf("%s should not be finite", v.Dump())
	}
}

func TestCrossSV2(t *testing.T) {
	a, b := &V2{1, 0}, &V2{0, 1}
	if a.CrossS(b) != 1 {
		t.Errorf("2D cross was %f, not 1", a.CrossS(b))
	}
	if b.CrossS(a) != -1 {
		t.Errorf("2D cross was %f, not -1", b.CrossS(a))
	}
}

func TestDistV2(t *testing.T) {
	a, b := &V2{1, 1}, &V2{4, 5}
	if a.Dist(b) != 5 {
		t.Errorf("distance was %f, not 5", a.Dist(b))
	}
}

func TestFrac(t *testing.T) {
	if !Aeq(Frac(1.25), 0.25) {
		t.Errorf("frac(1.25) was %f", Frac(1.25))
	}
	if !Aeq(Frac(-0.25), 0.75) {
		t.Errorf("frac(-0.25) was %f", Frac(-0.25))
	}
}
