// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package denom

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
)

// ErrEmptyLadder is returned when no standard amount lies within the
// requested bounds.
var ErrEmptyLadder = errors.New("no denomination within bounds")

// series lists the multiplier and base of every geometric amount series the
// standard denominations are drawn from.
var series = []struct {
	mult int64
	base int64
}{
	{1, 2},  // 1, 2, 4, 8, ...
	{1, 3},  // 1, 3, 9, 27, ...
	{2, 3},  // 2, 6, 18, 54, ...
	{1, 10}, // 1, 10, 100, ...
	{2, 10}, // 2, 20, 200, ...
	{5, 10}, // 5, 50, 500, ...
}

// StandardAmounts returns every standard amount in [min, max], largest first.
func StandardAmounts(minAmount, maxAmount btcutil.Amount) []btcutil.Amount {
	seen := make(map[btcutil.Amount]struct{})
	var amounts []btcutil.Amount
	for _, s := range series {
		for v := s.mult; v <= int64(maxAmount); v *= s.base {
			if v >= int64(minAmount) {
				if _, ok := seen[btcutil.Amount(v)]; !ok {
					seen[btcutil.Amount(v)] = struct{}{}
					amounts = append(amounts, btcutil.Amount(v))
				}
			}
			if v > math.MaxInt64/s.base {
				break
			}
		}
	}

	slices.SortFunc(amounts, func(a, b btcutil.Amount) int {
		return cmp.Compare(b, a)
	})

	return amounts
}

// Build creates the denomination ladder for one round: one output per
// standard amount in [min, max] and per script type.
func Build(minAmount, maxAmount btcutil.Amount, feeRate unit.SatPerVByte,
	scriptTypes []txsizes.ScriptType) (*Ladder, error) {

	amounts := StandardAmounts(minAmount, maxAmount)

	outputs := make([]Output, 0, len(amounts)*len(scriptTypes))
	for _, amount := range amounts {
		for _, st := range scriptTypes {
			outputs = append(outputs, NewOutput(amount, st, feeRate))
		}
	}
	if len(outputs) == 0 {
		return nil, ErrEmptyLadder
	}

	ladder := NewLadder(outputs)
	log.Debugf("Built %d denominations from %d standard amounts in "+
		"[%v, %v] at %v", ladder.Len(), len(amounts), minAmount,
		maxAmount, feeRate)

	return ladder, nil
}
