// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package tiler

// lm solves the small dense non-linear least-squares problems produced
// when fitting disks to points: six parameters, a few hundred
// residuals. A Levenberg-Marquardt trust region over the normal
// equations is plenty at this size.
//     http://en.wikipedia.org/wiki/Levenberg–Marquardt_algorithm

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	lmMaxIterations   = 60
	lmInitialLambda   = 1e-4
	lmMaxLambda       = 1e15
	lmGradientTol     = 1e-12
	lmRelativeCostTol = 1e-9
)

// lmProblem gathers residual blocks over a shared parameter vector.
type lmProblem struct {
	blocks []costFunction

	// Flat evaluation buffers reused across iterations.
	residuals []float64
	jacobian  []float64
}

func newLMProblem(blocks ...costFunction) *lmProblem {
	count := 0
	for _, b := range blocks {
		count += b.residualCount()
	}
	return &lmProblem{
		blocks:    blocks,
		residuals: make([]float64, count),
		jacobian:  make([]float64, count*6),
	}
}

// evaluate fills the stacked residuals, and the stacked jacobian when
// withJacobian is set, returning the squared cost. It returns false
// when any block produces a non-finite value.
func (p *lmProblem) evaluate(params *[6]float64, withJacobian bool) (cost float64, ok bool) {
	row := 0
	for _, b := range p.blocks {
		count := b.residualCount()
		r := p.residuals[row : row+count]
		var jac []float64
		if withJacobian {
			jac = p.jacobian[row*6 : (row+count)*6]
		}
		if !b.evaluate(params, r, jac) {
			return 0, false
		}
		row += count
	}
	for _, r := range p.residuals {
		cost += r * r
	}
	return cost, true
}

// solve minimizes the summed squared residuals starting from params,
// updating params in place. It returns false when the initial
// evaluation fails; numerical failures later on terminate the descent
// at the last accepted parameters.
func (p *lmProblem) solve(params *[6]float64) bool {
	m := len(p.residuals)
	if m == 0 {
		return false
	}

	cost, ok := p.evaluate(params, true)
	if !ok {
		return false
	}

	hessian := mat.NewSymDense(6, nil)
	damped := mat.NewSymDense(6, nil)
	gradient := mat.NewVecDense(6, nil)
	step := mat.NewVecDense(6, nil)
	var chol mat.Cholesky

	lambda := lmInitialLambda
	for iter := 0; iter < lmMaxIterations; iter++ {
		// Normal equations: hessian = JᵀJ, gradient = Jᵀr.
		for a := 0; a < 6; a++ {
			g := 0.0
			for row := 0; row < m; row++ {
				g += p.jacobian[row*6+a] * p.residuals[row]
			}
			gradient.SetVec(a, g)
			for b := a; b < 6; b++ {
				h := 0.0
				for row := 0; row < m; row++ {
					h += p.jacobian[row*6+a] * p.jacobian[row*6+b]
				}
				hessian.SetSym(a, b, h)
			}
		}
		if mat.Norm(gradient, 2) < lmGradientTol {
			return true
		}

		// Damp, solve, and test the step, growing the damping until a
		// feasible improving step appears.
		accepted := false
		for lambda < lmMaxLambda {
			for a := 0; a < 6; a++ {
				for b := a; b < 6; b++ {
					h := hessian.At(a, b)
					if a == b {
						diag := h
						if diag <= 0 {
							diag = 1e-12
						}
						h += lambda * diag
					}
					damped.SetSym(a, b, h)
				}
			}
			if !chol.Factorize(damped) {
				lambda *= 10
				continue
			}
			if err := chol.SolveVecTo(step, gradient); err != nil {
				lambda *= 10
				continue
			}

			var candidate [6]float64
			for d := 0; d < 6; d++ {
				candidate[d] = params[d] - step.AtVec(d)
			}
			newCost, ok := p.evaluate(&candidate, false)
			if !ok || newCost >= cost {
				lambda *= 10
				continue
			}

			// Accept.
			*params = candidate
			improvement := cost - newCost
			cost = newCost
			lambda = math.Max(lambda/3, 1e-12)
			accepted = true
			if improvement < lmRelativeCostTol*cost+1e-16 {
				return true
			}
			break
		}
		if !accepted {
			// No feasible step remains. The current parameters are the
			// best found.
			return true
		}

		// Refresh the jacobian at the accepted parameters.
		if _, ok := p.evaluate(params, true); !ok {
			return true
		}
	}
	return true
}
