// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
	"github.com/btcsuite/btcmix/internal/randutil"
	"github.com/btcsuite/btcmix/txsizes"
	"github.com/davecgh/go-spew/spew"
)

// minChangeTolerance is the change amount that is always considered close
// enough to the best candidate.
const minChangeTolerance btcutil.Amount = 100_000

// ParticipantResult is the decomposition of a single participant.
type ParticipantResult struct {
	// Index is the position of the participant in the round.
	Index int

	// Outputs are the outputs the participant registers.
	Outputs []denom.Output

	// Leftover is the part of the inputs no output covers, which is paid
	// to the miners.
	Leftover btcutil.Amount
}

// Decompose picks the outputs for a participant with the given input
// effective values. The outputs are drawn from ladder, plus at most one
// change output, and together take at most availableVsize vbytes.
func (m *Mixer) Decompose(inputs []btcutil.Amount, ladder *denom.Ladder,
	availableVsize int) (*ParticipantResult, error) {

	return m.decompose(m.rand, inputs, ladder, availableVsize)
}

func (m *Mixer) decompose(r *rand.Rand, inputs []btcutil.Amount,
	ladder *denom.Ladder, availableVsize int) (*ParticipantResult, error) {

	var sum btcutil.Amount
	for _, in := range inputs {
		sum += in
	}

	smallest, ok := ladder.Smallest()
	if !ok || smallest.EffectiveCost() > sum {
		str := fmt.Sprintf("inputs worth %d can not pay for the "+
			"smallest denomination", int64(sum))
		return nil, mixError(ErrInsufficientFunds, str, nil)
	}

	maxOutputs := min(availableVsize/txsizes.SmallestOutputVSize(),
		maxOutputsPerParticipant)

	d := &decomposition{
		m:              m,
		rand:           r,
		denoms:         ladder.Outputs(),
		sum:            sum,
		availableVsize: availableVsize,
		maxOutputs:     maxOutputs,
	}

	candidates := d.candidates()
	log.Tracef("Candidates for inputs worth %d: %v", int64(sum),
		newLogClosure(func() string {
			return spew.Sdump(candidates)
		}))

	best := m.selectCandidate(r, candidates, ladder, sum)
	log.Debugf("Selected %v for inputs worth %d", best.Outputs, int64(sum))

	if err := m.checkDecomposition(best.Outputs, sum,
		availableVsize); err != nil {

		return nil, err
	}

	var total btcutil.Amount
	for _, o := range best.Outputs {
		total += o.EffectiveCost()
	}

	return &ParticipantResult{
		Outputs:  best.Outputs,
		Leftover: sum - total,
	}, nil
}

// selectCandidate ranks the candidates and randomly picks one of the
// candidates that are close to the best.
func (m *Mixer) selectCandidate(r *rand.Rand, candidates []Candidate,
	ladder *denom.Ladder, sum btcutil.Amount) Candidate {

	change := func(c *Candidate) btcutil.Amount {
		return c.Change(ladder)
	}

	changeless := slices.DeleteFunc(slices.Clone(candidates),
		func(c Candidate) bool {
			return change(&c) != 0
		})
	changeAvoided := len(changeless) > 0
	if changeAvoided {
		candidates = changeless
	}

	randutil.Shuffle(r, candidates)
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		if c := cmp.Compare(change(&a), change(&b)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}
		switch {
		case a.mixed() && !b.mixed():
			return -1
		case !a.mixed() && b.mixed():
			return 1
		}
		return 0
	})

	band := toleranceBand(candidates, ladder, sum, changeAvoided)

	// Pick the largest output first so that candidates sharing it do
	// not crowd out the others.
	var largest []btcutil.Amount
	for _, c := range band {
		if l := c.largest(); !slices.Contains(largest, l) {
			largest = append(largest, l)
		}
	}
	amount, _ := randutil.Element(r, largest)

	finalists := slices.DeleteFunc(band, func(c Candidate) bool {
		return c.largest() != amount
	})
	pick, _ := randutil.Element(r, finalists)

	return pick
}

// toleranceBand returns the candidates close enough to the first, which must
// be the best. Changeless candidates may cost up to 20% more than the best.
// Otherwise the change may be up to 10% of sum, 120% of the best change or
// minChangeTolerance, whichever is largest.
func toleranceBand(candidates []Candidate, ladder *denom.Ladder,
	sum btcutil.Amount, changeless bool) []Candidate {

	best := candidates[0]
	bestChange := best.Change(ladder)

	var band []Candidate
	for _, c := range candidates {
		if changeless {
			if c.Cost*5 <= best.Cost*6 {
				band = append(band, c)
			}
			continue
		}

		ch := c.Change(ladder)
		if ch*10 <= sum || ch*5 <= bestChange*6 ||
			ch <= minChangeTolerance {

			band = append(band, c)
		}
	}
	return band
}

// checkDecomposition verifies a participant's outputs neither create value,
// lose more than a change output could recover nor exceed the vsize budget.
func (m *Mixer) checkDecomposition(outputs []denom.Output,
	sum btcutil.Amount, availableVsize int) error {

	var (
		total btcutil.Amount
		vsize int
	)
	for _, o := range outputs {
		total += o.EffectiveCost()
		vsize += o.VSize()
	}

	switch {
	case total > sum:
		str := fmt.Sprintf("outputs cost %d but inputs are worth %d",
			int64(total), int64(sum))
		return mixError(ErrValueCreated, str, nil)

	case sum-total > m.changeFloor():
		str := fmt.Sprintf("outputs cost %d of %d, losing more than "+
			"%d", int64(total), int64(sum), int64(m.changeFloor()))
		return mixError(ErrValueLost, str, nil)

	case vsize > availableVsize:
		str := fmt.Sprintf("outputs take %d vbytes, only %d available",
			vsize, availableVsize)
		return mixError(ErrVsizeExceeded, str, nil)
	}

	return nil
}
