// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

import (
	"testing"

	"github.com/gazed/tiler/math/lin"
)

func TestFibonacciPointsOnSphere(t *testing.T) {
	const n = 1000
	for i := 0; i < n; i++ {
		p := FibonacciSpherePoint(n, 0, i)
		if !lin.Aeq(p.Len(), 1) {
			t.Errorf("point %d has length %f", i, p.Len())
		}
	}
}

func TestFibonacciInverseRoundTrip(t *testing.T) {
	counts := []int{1, 2, 17, 100, 1024}
	scramblers := []float64{0, 0.5, 2.1, 5.9}
	for _, n := range counts {
		for _, scrambler := range scramblers {
			for i := 0; i < n; i++ {
				p := FibonacciSpherePoint(n, scrambler, i)
				back := InverseFibonacciSphere(n, scrambler, &p)
				if back != i {
					t.Errorf("n=%d scrambler=%f: point %d inverted to %d", n, scrambler, i, back)
				}
			}
		}
	}
}

func TestFibonacciInverseNearby(t *testing.T) {
	// The inverse mapping of an arbitrary direction returns a point
	// whose distance is comparable to the true closest point, verified
	// against a linear scan.
	const n = 200
	dirs := []lin.V3{
		{X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1},
		{X: -0.5, Y: 0.25, Z: 0.75},
		{X: 0.1, Y: -0.9, Z: 0.2},
	}
	for di := range dirs {
		dir := dirs[di]
		dir.Unit()
		got := InverseFibonacciSphere(n, 0, &dir)
		gotPoint := FibonacciSpherePoint(n, 0, got)
		var diff lin.V3
		gotDist := diff.Sub(&gotPoint, &dir).Len()

		bestDist := 1e30
		for i := 0; i < n; i++ {
			p := FibonacciSpherePoint(n, 0, i)
			if d := diff.Sub(&p, &dir).Len(); d < bestDist {
				bestDist = d
			}
		}
		if gotDist > bestDist*2+lin.Epsilon {
			t.Errorf("direction %d mapped %f away, closest is %f", di, gotDist, bestDist)
		}
	}
}
