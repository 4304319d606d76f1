// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package subsetsum enumerates multisets of at most a given number of values
// whose sum lies within a tolerance below a target.
package subsetsum

import (
	"cmp"
	"iter"
	"slices"
)

const (
	// DefaultMaxSolutions is the number of solutions after which Solve stops.
	DefaultMaxSolutions = 10_000

	// DefaultMaxSteps bounds the number of search nodes Solve expands.
	DefaultMaxSteps = 2_000_000
)

// Solution is a multiset of values whose sum is within [target-tolerance,
// target]. Values are in non-increasing order.
type Solution struct {
	Sum    int64
	Count  int
	Values []int64
}

// Solver enumerates solutions with a bounded depth first search. The zero
// value uses the package defaults.
type Solver struct {
	// MaxSolutions stops the search after this many solutions.
	MaxSolutions int

	// MaxSteps stops the search after this many node expansions.
	MaxSteps int
}

// Solve runs a Solver with the default bounds.
func Solve(target, tolerance int64, maxCount int,
	values []int64) iter.Seq[Solution] {

	return Solver{}.Solve(target, tolerance, maxCount, values)
}

// Solve returns the solutions for target among values, each value usable
// any number of times, with at most maxCount values per solution. Solutions
// using larger values are produced first. The values slice is not modified.
func (s Solver) Solve(target, tolerance int64, maxCount int,
	values []int64) iter.Seq[Solution] {

	maxSolutions := s.MaxSolutions
	if maxSolutions <= 0 {
		maxSolutions = DefaultMaxSolutions
	}
	maxSteps := s.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	lower := max(target-tolerance, 1)
	usable := prepare(values, target)

	return func(yield func(Solution) bool) {
		if maxCount <= 0 || len(usable) == 0 || target <= 0 {
			return
		}

		var (
			path    = make([]int64, 0, maxCount)
			found   int
			steps   int
			stopped bool
		)

		var search func(start int, sum int64)
		search = func(start int, sum int64) {
			for i := start; i < len(usable) && !stopped; i++ {
				steps++
				if steps > maxSteps {
					stopped = true
					return
				}

				v := usable[i]
				next := sum + v
				if next > target {
					continue
				}

				// Values are descending, so if filling every
				// remaining slot with v can't reach the lower
				// bound neither can any smaller value.
				slots := int64(maxCount - len(path))
				if sum+v*slots < lower {
					return
				}

				path = append(path, v)
				if next >= lower {
					found++
					sol := Solution{
						Sum:    next,
						Count:  len(path),
						Values: slices.Clone(path),
					}
					if !yield(sol) || found >= maxSolutions {
						stopped = true
						return
					}
				}
				if len(path) < maxCount {
					search(i, next)
				}
				path = path[:len(path)-1]
			}
		}
		search(0, 0)
	}
}

// prepare returns the distinct positive values not above target, largest
// first.
func prepare(values []int64, target int64) []int64 {
	usable := make([]int64, 0, len(values))
	for _, v := range values {
		if v > 0 && v <= target {
			usable = append(usable, v)
		}
	}
	slices.SortFunc(usable, func(a, b int64) int {
		return cmp.Compare(b, a)
	})
	return slices.Compact(usable)
}
