// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"cmp"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
)

// FilterDenominations reduces the ladder to the denominations the round's
// inputs can actually produce. Only denominations that at least two distinct
// inputs break down into survive, so no output amount of the round points
// at a single participant. The survivors are thinned so that neighbouring
// denominations are not too close to each other.
func (m *Mixer) FilterDenominations(
	inputs []btcutil.Amount) (*denom.Ladder, error) {

	if len(inputs) < 2 {
		return nil, mixError(ErrTooFewInputs, "at least two inputs are "+
			"needed to filter denominations", nil)
	}

	// The second largest input caps the denominations: anything larger
	// could only come from one input.
	sorted := slices.Clone(inputs)
	slices.SortFunc(sorted, func(a, b btcutil.Amount) int {
		return cmp.Compare(b, a)
	})
	maxDenom := sorted[1]

	restricted := m.ladder.Filter(func(o denom.Output) bool {
		return o.EffectiveCost() <= maxDenom
	}).ByEffectiveAmount()

	counts := make(map[denom.Output]int)
	for _, input := range inputs {
		seen := make(map[denom.Output]struct{})
		for _, d := range m.breakDown(input, restricted) {
			if _, ok := seen[d]; ok {
				continue
			}
			seen[d] = struct{}{}
			counts[d]++
		}
	}

	var popular []denom.Output
	for _, d := range restricted {
		if counts[d] >= 2 {
			popular = append(popular, d)
		}
	}
	popular = denom.NewLadder(popular).Outputs()
	kept := thinDenominations(popular)

	log.Debugf("Filtered %d denominations down to %d (%d popular) for "+
		"%d inputs", m.ladder.Len(), len(kept), len(popular),
		len(inputs))

	return denom.NewLadder(kept), nil
}

// thinDenominations keeps a denomination only if it is sufficiently smaller
// than the last kept one. The i-th of n denominations must not exceed
// 2n/(3n-i) of the last kept amount, so the required gap shrinks towards
// the small end. The input must be ordered largest first.
func thinDenominations(popular []denom.Output) []denom.Output {
	var (
		kept []denom.Output
		n    = btcutil.Amount(len(popular))
		k    = n
	)
	for _, d := range popular {
		if len(kept) == 0 ||
			d.Amount*(2*n+k) <= kept[len(kept)-1].Amount*2*n {

			kept = append(kept, d)
		}
		k--
	}
	return kept
}

// breakDown greedily splits an input into the given denominations, which
// must be ordered by decreasing effective amount. A remainder above the
// change floor would become change and is not part of the result.
func (m *Mixer) breakDown(input btcutil.Amount,
	denoms []denom.Output) []denom.Output {

	floor := m.changeFloor()
	remaining := input

	var outputs []denom.Output
	for _, d := range denoms {
		if d.Amount < m.minReasonable || remaining < floor {
			break
		}
		for d.EffectiveCost() <= remaining {
			outputs = append(outputs, d)
			remaining -= d.EffectiveCost()
		}
	}
	return outputs
}
