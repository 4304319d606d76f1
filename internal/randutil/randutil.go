// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package randutil provides the uniform selection, shuffling and grouping
// primitives used by the mixer. Every function draws from the passed
// generator only, so a seeded generator gives reproducible results.
package randutil

import (
	"errors"
	"math/rand/v2"
	"slices"
)

// ErrTooFewElements is returned when a sequence can not be split into the
// requested number of non-empty groups.
var ErrTooFewElements = errors.New("too few elements for requested groups")

// sharedSource reads from the process-wide generator of math/rand/v2.
type sharedSource struct{}

func (sharedSource) Uint64() uint64 { return rand.Uint64() }

// NewShared returns a generator backed by the process-wide random source.
func NewShared() *rand.Rand {
	return rand.New(sharedSource{})
}

// NewSeeded returns a deterministic generator for the given seed.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Element returns a uniformly chosen element of s. The generator is not
// consumed and false is returned when s is empty.
func Element[T any](r *rand.Rand, s []T) (T, bool) {
	if len(s) == 0 {
		var zero T
		return zero, false
	}
	return s[r.IntN(len(s))], true
}

// Shuffle permutes s in place.
func Shuffle[T any](r *rand.Rand, s []T) {
	r.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

// RandomGroups shuffles a copy of s and cuts it at n-1 distinct random
// positions, returning n non-empty groups of random sizes.
func RandomGroups[T any](r *rand.Rand, s []T, n int) ([][]T, error) {
	if n <= 0 || len(s) < n {
		return nil, ErrTooFewElements
	}

	shuffled := slices.Clone(s)
	Shuffle(r, shuffled)

	// Cut points are drawn from 1..len-1 so no group is empty.
	cuts := r.Perm(len(s) - 1)[:n-1]
	for i := range cuts {
		cuts[i]++
	}
	slices.Sort(cuts)

	groups := make([][]T, 0, n)
	start := 0
	for _, cut := range cuts {
		groups = append(groups, shuffled[start:cut:cut])
		start = cut
	}
	groups = append(groups, shuffled[start:])

	return groups, nil
}
