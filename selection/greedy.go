// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package selection

// greedy is a deterministic cost/weight trade solver. It is not
// optimal, but it is fast, never exceeds the budget, and degrades by
// dropping groups rather than failing.

import (
	"math"
)

// Greedy is a reference Solver. It seeds each group with its lightest
// alternative, drops selections while the seed is over budget, then
// repeatedly applies the upgrade with the best cost decrease per unit
// of added weight until no upgrade fits.
type Greedy struct{}

// NewGreedy returns a Greedy solver.
func NewGreedy() *Greedy { return &Greedy{} }

// Solve implements Solver.
func (s *Greedy) Solve(p *Problem) []int {
	p.Validate()
	dims := len(p.MaxWeight)
	chosen := make([]int, len(p.Groups))
	total := make([]float64, dims)

	// Seed with the lightest alternative per group: smallest first
	// weight component, ties to lowest cost, then lowest index.
	for g, group := range p.Groups {
		chosen[g] = -1
		best := -1
		for a := range group {
			if best < 0 || lighter(&group[a], &group[best]) {
				best = a
			}
		}
		if best >= 0 {
			chosen[g] = best
			addWeight(total, group[best].Weight, 1)
		}
	}

	// If the seed selection is infeasible, drop the selection that
	// contributes the most to the most-violated dimension until the
	// remainder fits. Fewer tiles than requested, never more.
	for {
		violated := worstDimension(total, p.MaxWeight)
		if violated < 0 {
			break
		}
		drop := -1
		heaviest := 0.0
		for g, a := range chosen {
			if a < 0 {
				continue
			}
			if w := p.Groups[g][a].Weight[violated]; drop < 0 || w > heaviest {
				drop, heaviest = g, w
			}
		}
		if drop < 0 {
			break // nothing selected, nothing to drop.
		}
		addWeight(total, p.Groups[drop][chosen[drop]].Weight, -1)
		chosen[drop] = -1
	}

	// Upgrade pass: swap in alternatives that reduce cost, best
	// cost-per-added-weight first, while the budget allows.
	for {
		bestGroup, bestAlt := -1, -1
		bestScore := 0.0
		for g, group := range p.Groups {
			current := chosen[g]
			if current < 0 {
				continue
			}
			for a := range group {
				if a == current {
					continue
				}
				gain := p.Groups[g][current].Cost - group[a].Cost
				if gain <= 0 {
					continue
				}
				if !fitsSwap(total, p.MaxWeight, p.Groups[g][current].Weight, group[a].Weight) {
					continue
				}
				score := gain / (1 + addedWeight(p.Groups[g][current].Weight, group[a].Weight))
				if score > bestScore {
					bestGroup, bestAlt, bestScore = g, a, score
				}
			}
		}
		if bestGroup < 0 {
			return chosen
		}
		addWeight(total, p.Groups[bestGroup][chosen[bestGroup]].Weight, -1)
		addWeight(total, p.Groups[bestGroup][bestAlt].Weight, 1)
		chosen[bestGroup] = bestAlt
	}
}

// lighter orders alternatives by first weight component, then cost.
func lighter(a, b *Alternative) bool {
	if len(a.Weight) > 0 && a.Weight[0] != b.Weight[0] {
		return a.Weight[0] < b.Weight[0]
	}
	return a.Cost < b.Cost
}

func addWeight(total, weight []float64, sign float64) {
	for d := range total {
		total[d] += weight[d] * sign
	}
}

// worstDimension returns the most-violated budget dimension, or -1 if
// the total fits.
func worstDimension(total, budget []float64) int {
	worst, excess := -1, 0.0
	for d := range total {
		if over := total[d] - budget[d]; over > excess {
			worst, excess = d, over
		}
	}
	return worst
}

// fitsSwap reports whether replacing the old weight with the new weight
// keeps the running total within budget.
func fitsSwap(total, budget, old, new []float64) bool {
	for d := range total {
		if total[d]-old[d]+new[d] > budget[d] {
			return false
		}
	}
	return true
}

// addedWeight sums the positive weight increases of a swap, giving the
// denominator of the upgrade score.
func addedWeight(old, new []float64) float64 {
	added := 0.0
	for d := range old {
		added += math.Max(new[d]-old[d], 0)
	}
	return added
}
