// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

// costfn holds the residual terms of the disk fitting problem. Each
// term evaluates residuals, and optionally an analytic jacobian, at a
// parameter vector laid out as:
//
//	params = {normal.X, normal.Y, normal.Z, center.X, center.Y, center.Z}

import (
	"math"

	"github.com/gazed/tiler/math/lin"
)

// costFunction is a residual block of the non-linear least-squares
// problem. evaluate fills one residual per entry of r and, when jac is
// non-nil, the row-major len(r)x6 jacobian. It returns false when any
// produced value is non-finite, which the solver treats as an
// infeasible step.
type costFunction interface {
	residualCount() int
	evaluate(params *[6]float64, r []float64, jac []float64) bool
}

// allFinite reports whether every value in the slice is finite.
func allFinite(values []float64) bool {
	for _, v := range values {
		if !lin.IsFinite(v) {
			return false
		}
	}
	return true
}

// ============================================================================

// planeProjectionCost models the radial displacement of points from
// their projection onto the plane. For each point of interest the
// residual is
//
//	(center·n / p·n - 1) · sqrt(weight)
//
// which equals (1 - tHit)·sqrt(weight) where tHit intersects the
// origin->p ray with the plane.
type planeProjectionCost struct {
	ps     *PointSet
	points []int
}

func (pc *planeProjectionCost) residualCount() int { return len(pc.points) }

func (pc *planeProjectionCost) evaluate(params *[6]float64, r []float64, jac []float64) bool {
	nx, ny, nz := params[0], params[1], params[2]
	cx, cy, cz := params[3], params[4], params[5]
	for row, poi := range pc.points {
		p := &pc.ps.Positions[poi]
		centerDotNormal := cx*nx + cy*ny + cz*nz
		pointDotNormal := p.X*nx + p.Y*ny + p.Z*nz
		weight := math.Sqrt(pc.ps.weight(poi))
		r[row] = (centerDotNormal/pointDotNormal - 1) * weight
		if !lin.IsFinite(r[row]) {
			return false
		}
	}
	if jac == nil {
		return true
	}
	for row, poi := range pc.points {
		p := &pc.ps.Positions[poi]
		px, py, pz := p.X, p.Y, p.Z
		pDotN := px*nx + py*ny + pz*nz
		pDotN2 := pDotN * pDotN
		weight := math.Sqrt(pc.ps.weight(poi))

		// The partial derivatives below were derived symbolically.
		j := jac[row*6:]
		j[0] = (-(cy * ny * px) - cz*nz*px + cx*ny*py + cx*nz*pz) / pDotN2
		j[1] = (-((cx*nx + cz*nz) * py) + cy*(nx*px+nz*pz)) / pDotN2
		j[2] = (cz*(nx*px+ny*py) - (cx*nx+cy*ny)*pz) / pDotN2
		j[3] = nx / pDotN
		j[4] = ny / pDotN
		j[5] = nz / pDotN
		for d := 0; d < 6; d++ {
			j[d] *= weight
			if !lin.IsFinite(j[d]) {
				return false
			}
		}
	}
	return true
}

// ============================================================================

// tangentialDiskCost measures the distance on the plane between the
// disk center and the projection of each point onto the plane, where
// the projection intersects the origin->point ray with the plane. The
// term keeps early fitting iterations closer to convex; it is excluded
// during final refinement.
type tangentialDiskCost struct {
	ps     *PointSet
	points []int
}

func (tc *tangentialDiskCost) residualCount() int { return len(tc.points) }

func (tc *tangentialDiskCost) evaluate(params *[6]float64, r []float64, jac []float64) bool {
	nx, ny, nz := params[0], params[1], params[2]
	cx, cy, cz := params[3], params[4], params[5]
	for row, poi := range tc.points {
		p := &tc.ps.Positions[poi]
		centerDotNormal := cx*nx + cy*ny + cz*nz
		pointDotNormal := p.X*nx + p.Y*ny + p.Z*nz
		t := centerDotNormal / pointDotNormal
		dx := p.X*t - cx
		dy := p.Y*t - cy
		dz := p.Z*t - cz
		r[row] = math.Sqrt(dx*dx+dy*dy+dz*dz) * math.Sqrt(tc.ps.weight(poi))
		if !lin.IsFinite(r[row]) {
			return false
		}
	}
	if jac != nil {
		return numericJacobian(tc, params, jac)
	}
	return true
}

// numericJacobian fills jac with central differences of fn's residuals.
// Used by terms without a closed-form derivative.
func numericJacobian(fn costFunction, params *[6]float64, jac []float64) bool {
	count := fn.residualCount()
	plus := make([]float64, count)
	minus := make([]float64, count)
	for d := 0; d < 6; d++ {
		step := 1e-7 * math.Max(math.Abs(params[d]), 1)
		perturbed := *params
		perturbed[d] = params[d] + step
		if !fn.evaluate(&perturbed, plus, nil) {
			return false
		}
		perturbed[d] = params[d] - step
		if !fn.evaluate(&perturbed, minus, nil) {
			return false
		}
		inv := 1 / (2 * step)
		for row := 0; row < count; row++ {
			jac[row*6+d] = (plus[row] - minus[row]) * inv
			if !lin.IsFinite(jac[row*6+d]) {
				return false
			}
		}
	}
	return true
}

// ============================================================================

// railPenaltyCost adds a quadratic penalty when the intersection of the
// plane with the cell's rails falls outside the allowed depth range.
// Put simply, this penalizes grazing-angle planes and enforces that
// resulting planes intersect the rails at finite values.
//
// A pair of one-sided residuals is produced for each corner ray:
//
//	max(minDepth - tHit, 0)
//	max(tHit - maxDepth, 0)
//
// where tHit intersects the corner ray with the plane.
type railPenaltyCost struct {
	rails    Rails
	minDepth float64
	maxDepth float64
}

func (rc *railPenaltyCost) residualCount() int { return 8 }

func (rc *railPenaltyCost) evaluate(params *[6]float64, r []float64, jac []float64) bool {
	var n, c lin.V3
	n.SetS(params[0], params[1], params[2]).Unit()
	c.SetS(params[3], params[4], params[5])
	cDotN := c.Dot(&n)

	row := 0
	for corner := 0; corner < 4; corner++ {
		rail := &rc.rails[corner]
		rDotN := rail.Dot(&n)
		rayDepth := cDotN / rDotN
		r[row] = math.Max(rc.minDepth-rayDepth, 0)
		row++
		r[row] = math.Max(rayDepth-rc.maxDepth, 0)
		row++
	}
	if !allFinite(r) {
		return false
	}
	if jac == nil {
		return true
	}

	ji := 0
	for corner := 0; corner < 4; corner++ {
		rail := &rc.rails[corner]
		rDotN := rail.Dot(&n)
		rayDepth := cDotN / rDotN

		// Gradient of the near penalty:
		//   residual = minDepth - c·n / r·n
		// is
		//   d/dn = r·(c·n)/(r·n)² - c/(r·n),  d/dc = -n/(r·n)
		var dn, dc lin.V3
		if rayDepth < rc.minDepth {
			dn.Scale(rail, cDotN/(rDotN*rDotN))
			var cOverRDotN lin.V3
			cOverRDotN.Scale(&c, 1/rDotN)
			dn.Sub(&dn, &cOverRDotN)
			dc.Scale(&n, -1/rDotN)
		}
		jac[ji+0], jac[ji+1], jac[ji+2] = dn.X, dn.Y, dn.Z
		jac[ji+3], jac[ji+4], jac[ji+5] = dc.X, dc.Y, dc.Z
		ji += 6

		// Gradient of the far penalty, the negation of the near form.
		dn.SetS(0, 0, 0)
		dc.SetS(0, 0, 0)
		if rayDepth > rc.maxDepth {
			dn.Scale(rail, -cDotN/(rDotN*rDotN))
			var cOverRDotN lin.V3
			cOverRDotN.Scale(&c, 1/rDotN)
			dn.Add(&dn, &cOverRDotN)
			dc.Scale(&n, 1/rDotN)
		}
		jac[ji+0], jac[ji+1], jac[ji+2] = dn.X, dn.Y, dn.Z
		jac[ji+3], jac[ji+4], jac[ji+5] = dc.X, dc.Y, dc.Z
		ji += 6
	}
	return allFinite(jac[:ji])
}

// ============================================================================

// scaledCost wraps another term, multiplying its squared cost by a
// constant factor: residuals and jacobian rows scale by sqrt(factor).
type scaledCost struct {
	fn    costFunction
	scale float64
}

func (sc *scaledCost) residualCount() int { return sc.fn.residualCount() }

func (sc *scaledCost) evaluate(params *[6]float64, r []float64, jac []float64) bool {
	if !sc.fn.evaluate(params, r, jac) {
		return false
	}
	root := math.Sqrt(sc.scale)
	for i := range r {
		r[i] *= root
	}
	if jac != nil {
		for i := range jac[:len(r)*6] {
			jac[i] *= root
		}
	}
	return true
}
