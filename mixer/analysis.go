// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
)

// Stats summarizes the privacy and cost of a mixed round.
type Stats struct {
	Participants  int
	Outputs       int
	ChangeOutputs int

	// TotalOutput is the sum of all output amounts.
	TotalOutput btcutil.Amount

	// TotalLeftover is the value all participants left to the miners
	// beyond the output fees.
	TotalLeftover btcutil.Amount

	// TotalFees is the fee paid to create all outputs.
	TotalFees btcutil.Amount

	// AnonymitySets maps every output amount to the number of outputs of
	// that amount.
	AnonymitySets map[btcutil.Amount]int

	// MedianAnonymitySet is the median anonymity set over all outputs.
	MedianAnonymitySet int

	// UniqueOutputs is the number of outputs whose amount no other output
	// shares.
	UniqueOutputs int
}

// UniqueShare returns the share of outputs that are unique in the round.
func (s *Stats) UniqueShare() float64 {
	if s.Outputs == 0 {
		return 0
	}
	return float64(s.UniqueOutputs) / float64(s.Outputs)
}

// Analyze computes the statistics of a round. Outputs not in ladder are
// counted as change.
func Analyze(roundLog *RoundLog, ladder *denom.Ladder) Stats {
	stats := Stats{
		Participants:  len(roundLog.Leftovers),
		Outputs:       len(roundLog.Outputs),
		AnonymitySets: make(map[btcutil.Amount]int),
	}

	for _, o := range roundLog.Outputs {
		if ladder == nil || !ladder.Contains(o) {
			stats.ChangeOutputs++
		}
		stats.TotalOutput += o.Amount
		stats.TotalFees += o.Fee()
		stats.AnonymitySets[o.Amount]++
	}
	for _, l := range roundLog.Leftovers {
		stats.TotalLeftover += l
	}

	sizes := make([]int, 0, len(roundLog.Outputs))
	for _, o := range roundLog.Outputs {
		size := stats.AnonymitySets[o.Amount]
		if size == 1 {
			stats.UniqueOutputs++
		}
		sizes = append(sizes, size)
	}
	if len(sizes) > 0 {
		slices.Sort(sizes)
		stats.MedianAnonymitySet = sizes[len(sizes)/2]
	}

	return stats
}
