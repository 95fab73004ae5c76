// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package geometry

// fibonacci generates near-uniform direction samples on the unit sphere
// and maps directions back to sample indices. Based on the method from
// "Spherical Fibonacci Mapping" (Keinert et. al, 2015).

import (
	"math"

	"github.com/gazed/tiler/math/lin"
)

// kPhi is the golden ratio.
var kPhi = (1.0 + math.Sqrt(5.0)) / 2.0

// FibonacciSpherePoint generates the i'th point, starting with i=0, on
// the unit sphere from a set of numPoints total points. The resulting
// points are quick to compute and close to uniformly-sampling the
// sphere.
//
// The scrambler should be a random angle uniformly distributed over
// [0, 2·Pi], held constant for all points in a single point set.
func FibonacciSpherePoint(numPoints int, scrambler float64, i int) lin.V3 {
	if numPoints <= 0 || i >= numPoints {
		panic("geometry.FibonacciSpherePoint: index out of range")
	}
	di := float64(i)
	phi := lin.PIx2*lin.Frac(di*(kPhi-1.0)) + scrambler
	cosTheta := 1.0 - (2.0*di+1.0)/float64(numPoints)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)
	return lin.V3{
		X: math.Cos(phi) * sinTheta,
		Y: math.Sin(phi) * sinTheta,
		Z: cosTheta,
	}
}

// fibonacciSphereCell returns the indices of the 4 closest points on the
// sphere to the given unit direction vector, identified by inverting
// the local 2x2 Fibonacci lattice around the query.
func fibonacciSphereCell(numPoints int, scrambler float64, dir *lin.V3) (cell [4]int) {
	n := float64(numPoints)
	phi := math.Min(math.Atan2(dir.Y, dir.X), lin.PI) - scrambler
	cosTheta := dir.Z

	k := math.Max(2.0, math.Floor(
		math.Log(n*lin.PI*math.Sqrt(5.0)*(1.0-cosTheta*cosTheta))/
			math.Log(kPhi*kPhi)))

	fk := math.Pow(kPhi, k) / math.Sqrt(5.0)
	f0 := math.Round(fk)
	f1 := math.Round(fk * kPhi)

	// The local lattice basis and its inverse.
	b00 := lin.PIx2*lin.Frac((f0+1.0)*(kPhi-1.0)) - lin.PIx2*(kPhi-1.0)
	b01 := lin.PIx2*lin.Frac((f1+1.0)*(kPhi-1.0)) - lin.PIx2*(kPhi-1.0)
	b10 := -2.0 * f0 / n
	b11 := -2.0 * f1 / n
	det := b00*b11 - b01*b10

	qx := phi
	qy := cosTheta - (1.0 - 1.0/n)
	c0 := math.Floor((b11*qx - b01*qy) / det)
	c1 := math.Floor((-b10*qx + b00*qy) / det)

	for s := 0; s < 4; s++ {
		ct := b10*(float64(s%2)+c0) + b11*(float64(s/2)+c1) + (1.0 - 1.0/n)
		if ct > 1.0 {
			ct = 2.0 - ct
		} else if ct < -1.0 {
			ct = -2.0 - ct
		}
		i := int(math.Floor(n*0.5 - ct*n*0.5))
		if i < 0 {
			i = 0
		}
		if i >= numPoints {
			i = numPoints - 1
		}
		cell[s] = i
	}
	return cell
}

// InverseFibonacciSphere returns the index of the Fibonacci sphere
// point which is closest to the given unit direction vector. It is
// self-consistent with FibonacciSpherePoint: mapping a generated point
// returns the index that generated it.
func InverseFibonacciSphere(numPoints int, scrambler float64, dir *lin.V3) int {
	cell := fibonacciSphereCell(numPoints, scrambler, dir)
	best := cell[0]
	bestDist := math.Inf(1)
	var diff lin.V3
	for _, index := range cell {
		point := FibonacciSpherePoint(numPoints, scrambler, index)
		dist := diff.Sub(&point, dir).LenSqr()
		if dist < bestDist {
			bestDist = dist
			best = index
		}
	}
	return best
}
