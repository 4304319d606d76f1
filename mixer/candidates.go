// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
	"github.com/btcsuite/btcmix/internal/randutil"
	"github.com/btcsuite/btcmix/subsetsum"
	"github.com/btcsuite/btcmix/txsizes"
)

// ensemblePasses is the number of randomized decompositions tried per
// participant.
const ensemblePasses = 100

// Candidate is one possible set of outputs for a participant.
type Candidate struct {
	// Outputs are the outputs of the candidate, largest first.
	Outputs []denom.Output

	// Cost is the value the participant loses with this candidate: the
	// lifetime fees of the outputs plus any value left to the miners.
	Cost btcutil.Amount
}

// Change returns the total amount of the outputs that are not in ladder.
func (c *Candidate) Change(ladder *denom.Ladder) btcutil.Amount {
	var change btcutil.Amount
	for _, o := range c.Outputs {
		if !ladder.Contains(o) {
			change += o.Amount
		}
	}
	return change
}

// largest returns the largest output amount of the candidate.
func (c *Candidate) largest() btcutil.Amount {
	var amount btcutil.Amount
	for _, o := range c.Outputs {
		amount = max(amount, o.Amount)
	}
	return amount
}

// mixed returns whether the candidate pays to both native segwit types.
func (c *Candidate) mixed() bool {
	var wpkh, tr bool
	for _, o := range c.Outputs {
		switch o.ScriptType {
		case txsizes.P2WPKH:
			wpkh = true
		case txsizes.P2TR:
			tr = true
		}
	}
	return wpkh && tr
}

// CanonicalKey identifies a candidate by its output amounts regardless of
// their order.
func CanonicalKey(outputs []denom.Output) string {
	amounts := make([]int64, len(outputs))
	for i, o := range outputs {
		amounts[i] = int64(o.Amount)
	}
	slices.Sort(amounts)

	var sb strings.Builder
	for i, a := range amounts {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(a, 10))
	}
	return sb.String()
}

// candidateSet collects candidates in insertion order, dropping any whose
// canonical key was already seen.
type candidateSet struct {
	keys       map[string]struct{}
	candidates []Candidate
}

func newCandidateSet() *candidateSet {
	return &candidateSet{keys: make(map[string]struct{})}
}

func (s *candidateSet) add(c Candidate) {
	key := CanonicalKey(c.Outputs)
	if _, ok := s.keys[key]; ok {
		return
	}
	s.keys[key] = struct{}{}
	s.candidates = append(s.candidates, c)
}

// decomposition holds the state shared by the candidate generators of a
// single participant.
type decomposition struct {
	m    *Mixer
	rand *rand.Rand

	// denoms is the filtered ladder, largest first.
	denoms []denom.Output

	sum            btcutil.Amount
	availableVsize int
	maxOutputs     int
}

// fits applies the look-ahead rule: d may only be added if, after adding
// it, there is still room for a change output whenever the remainder would
// need one.
func (d *decomposition) fits(o denom.Output, remaining btcutil.Amount,
	remainingVsize int) bool {

	if remaining < o.EffectiveCost()+d.m.changeFloor() {
		return remainingVsize >= o.VSize()
	}
	return remainingVsize >= o.VSize()+d.m.changeType.OutputVSize()
}

// full returns whether a selection of count outputs leaves room only for a
// change output.
func (d *decomposition) full(count int) bool {
	return count >= d.maxOutputs-1
}

// finish turns the remainder of a selection into change or loss and costs
// the result.
func (d *decomposition) finish(outputs []denom.Output,
	remaining btcutil.Amount) Candidate {

	// Below the floor the remainder is lost, unless nothing could be
	// selected and everything goes to a single change output.
	var loss btcutil.Amount
	change, err := d.m.newChange(remaining)
	if err == nil &&
		(remaining >= d.m.changeFloor() || len(outputs) == 0) {

		outputs = append(outputs, change)
	} else {
		loss = remaining
	}

	return Candidate{
		Outputs: outputs,
		Cost:    loss + CalculateCost(outputs),
	}
}

// naive greedily takes the largest denominations that fit.
func (d *decomposition) naive() Candidate {
	var (
		outputs        []denom.Output
		remaining      = d.sum
		remainingVsize = d.availableVsize
	)

outer:
	for _, o := range d.denoms {
		for o.EffectiveCost() <= remaining {
			if !d.fits(o, remaining, remainingVsize) {
				break outer
			}

			outputs = append(outputs, o)
			remaining -= o.EffectiveCost()
			remainingVsize -= o.VSize()

			if d.full(len(outputs)) {
				break outer
			}
		}
	}

	return d.finish(outputs, remaining)
}

// ensemble builds a randomized decomposition. Every step picks a random
// denomination worth between a third of the remainder and the remainder.
func (d *decomposition) ensemble() Candidate {
	var (
		outputs        []denom.Output
		remaining      = d.sum
		remainingVsize = d.availableVsize
		band           []denom.Output
	)

	for {
		lower := remaining / 3
		band = band[:0]
		for _, o := range d.denoms {
			cost := o.EffectiveCost()
			if cost <= remaining && cost >= lower {
				band = append(band, o)
			}
		}

		o, ok := randutil.Element(d.rand, band)
		if !ok {
			o, ok = d.largestWithin(remaining)
		}
		if !ok || !d.fits(o, remaining, remainingVsize) {
			break
		}

		outputs = append(outputs, o)
		remaining -= o.EffectiveCost()
		remainingVsize -= o.VSize()

		if d.full(len(outputs)) {
			break
		}
	}

	return d.finish(outputs, remaining)
}

// largestWithin returns the largest denomination costing at most amount.
func (d *decomposition) largestWithin(
	amount btcutil.Amount) (denom.Output, bool) {

	for _, o := range d.denoms {
		if o.EffectiveCost() <= amount {
			return o, true
		}
	}
	return denom.Output{}, false
}

// changeless yields the decompositions that spend the inputs on
// denominations only, losing at most the change floor to the miners.
func (d *decomposition) changeless(yield func(Candidate)) {
	if d.maxOutputs <= 1 {
		return
	}

	byCost := make(map[int64]denom.Output)
	var values []int64
	for _, o := range d.denoms {
		cost := int64(o.EffectiveCost())
		if cost > int64(d.sum) {
			continue
		}
		if _, ok := byCost[cost]; ok {
			continue
		}
		byCost[cost] = o
		values = append(values, cost)
	}

	solutions := subsetsum.Solve(int64(d.sum), int64(d.m.changeFloor()),
		min(d.maxOutputs, maxChangelessOutputs), values)

	for sol := range solutions {
		outputs := make([]denom.Output, 0, len(sol.Values))
		var (
			total btcutil.Amount
			vsize int
		)
		for _, v := range sol.Values {
			o := byCost[v]
			outputs = append(outputs, o)
			total += o.EffectiveCost()
			vsize += o.VSize()
		}
		if vsize > d.availableVsize {
			continue
		}

		yield(Candidate{
			Outputs: outputs,
			Cost:    d.sum - total + CalculateCost(outputs),
		})
	}
}

// candidates generates every candidate of the participant, deduplicated.
func (d *decomposition) candidates() []Candidate {
	set := newCandidateSet()
	set.add(d.naive())
	for range ensemblePasses {
		set.add(d.ensemble())
	}
	d.changeless(set.add)

	return set.candidates
}
