// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package denom builds and exposes the standard denomination ladder shared
// by all participants of a coinjoin round.
package denom

import (
	"cmp"
	"slices"
)

// Ladder is an immutable, duplicate-free sequence of denominations ordered
// from the largest to the smallest creation cost (EffectiveCost). Outputs of
// equal cost are ordered by descending EffectiveAmount, so the one that is
// cheaper to spend comes first. Every greedy strategy in the mixer walks the
// ladder in this order.
type Ladder struct {
	outputs []Output
	index   map[Output]struct{}
}

// compareDescending orders outputs largest first, see Ladder.
func compareDescending(a, b Output) int {
	if c := cmp.Compare(b.EffectiveCost(), a.EffectiveCost()); c != 0 {
		return c
	}
	if c := cmp.Compare(b.EffectiveAmount(), a.EffectiveAmount()); c != 0 {
		return c
	}
	return cmp.Compare(a.ScriptType, b.ScriptType)
}

// NewLadder sorts and deduplicates outputs into a ladder.
func NewLadder(outputs []Output) *Ladder {
	l := &Ladder{
		outputs: make([]Output, 0, len(outputs)),
		index:   make(map[Output]struct{}, len(outputs)),
	}
	for _, o := range outputs {
		if _, ok := l.index[o]; ok {
			continue
		}
		l.index[o] = struct{}{}
		l.outputs = append(l.outputs, o)
	}
	slices.SortFunc(l.outputs, compareDescending)

	return l
}

// Len returns the number of denominations.
func (l *Ladder) Len() int {
	return len(l.outputs)
}

// Outputs returns a copy of the denominations, largest first.
func (l *Ladder) Outputs() []Output {
	return slices.Clone(l.outputs)
}

// Contains returns whether o is one of the denominations.
func (l *Ladder) Contains(o Output) bool {
	_, ok := l.index[o]
	return ok
}

// Smallest returns the denomination with the lowest creation cost. False is
// returned for an empty ladder.
func (l *Ladder) Smallest() (Output, bool) {
	if len(l.outputs) == 0 {
		return Output{}, false
	}
	return l.outputs[len(l.outputs)-1], true
}

// Filter returns the ladder of denominations for which keep returns true.
func (l *Ladder) Filter(keep func(Output) bool) *Ladder {
	kept := make([]Output, 0, len(l.outputs))
	for _, o := range l.outputs {
		if keep(o) {
			kept = append(kept, o)
		}
	}
	return NewLadder(kept)
}

// ByEffectiveAmount returns the denominations ordered by descending
// EffectiveAmount, ties broken toward the output cheaper to spend.
func (l *Ladder) ByEffectiveAmount() []Output {
	sorted := slices.Clone(l.outputs)
	slices.SortStableFunc(sorted, func(a, b Output) int {
		if c := cmp.Compare(b.EffectiveAmount(), a.EffectiveAmount()); c != 0 {
			return c
		}
		return cmp.Compare(a.InputFee(), b.InputFee())
	})
	return sorted
}
