// SPDX-FileCopyrightText : © 2024-2025 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package selection describes the budgeted choice problem produced by
// the tiler: a set of groups, each offering alternatives with a
// reconstruction cost and a multi-dimensional resource weight, and a
// per-dimension weight budget. A solver picks at most one alternative
// per group to minimize total cost while keeping the summed weight of
// everything chosen within the budget.
//
// The solver itself is a replaceable collaborator. The Greedy solver in
// this package is a deterministic reference implementation; callers
// with stronger requirements can plug in their own.
//
// Package selection is provided as part of the tiler scene
// approximation library.
package selection

import "fmt"

// Alternative is one choice within a group.
type Alternative struct {
	Cost   float64   // reconstruction cost of choosing this alternative.
	Weight []float64 // resource weight, one value per budget dimension.
}

// Problem is a complete selection problem. Every alternative's weight
// vector must have the same length as MaxWeight.
type Problem struct {
	Groups    [][]Alternative // alternatives per group; groups may be empty.
	MaxWeight []float64       // per-dimension budget for the summed weight.
}

// Solver chooses at most one alternative per group. The returned slice
// has one entry per group: the chosen alternative index, or -1 when the
// group contributes nothing. Any returned selection satisfies the
// budget: the chosen weights sum to at most MaxWeight per dimension.
type Solver interface {
	Solve(p *Problem) []int
}

// Validate panics with a diagnostic if the problem is malformed. A
// weight vector whose length differs from the budget is a programming
// error, not a recoverable condition.
func (p *Problem) Validate() {
	for g, group := range p.Groups {
		for a, alt := range group {
			if len(alt.Weight) != len(p.MaxWeight) {
				panic(fmt.Sprintf(
					"selection.Problem: group %d alternative %d has weight dimension %d, budget has %d",
					g, a, len(alt.Weight), len(p.MaxWeight)))
			}
		}
	}
}
