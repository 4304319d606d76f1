// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
	"github.com/btcsuite/btcmix/internal/randutil"
	"github.com/btcsuite/btcmix/txsizes"
	"github.com/stretchr/testify/require"
)

// p2wpkhLadder returns a ladder of P2WPKH outputs of the given amounts at
// 1 sat/vb.
func p2wpkhLadder(amounts ...btcutil.Amount) *denom.Ladder {
	outputs := make([]denom.Output, len(amounts))
	for i, a := range amounts {
		outputs[i] = denom.NewOutput(a, txsizes.P2WPKH, oneSatPerVByte)
	}
	return denom.NewLadder(outputs)
}

// requireValidResult checks the invariants every decomposition must hold.
func requireValidResult(t *testing.T, m *Mixer, res *ParticipantResult,
	sum btcutil.Amount, availableVsize int) {

	t.Helper()

	var (
		total btcutil.Amount
		vsize int
	)
	for _, o := range res.Outputs {
		total += o.EffectiveCost()
		vsize += o.VSize()
	}

	require.LessOrEqual(t, total, sum)
	require.Equal(t, sum-total, res.Leftover)
	require.LessOrEqual(t, res.Leftover,
		m.MinReasonableOutputAmount()+m.ChangeFee())
	require.LessOrEqual(t, vsize, availableVsize)
	require.LessOrEqual(t, len(res.Outputs), maxOutputsPerParticipant)
}

// TestDecomposeChangeless checks that participants whose inputs match the
// denominations get no change.
func TestDecomposeChangeless(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 7)

	// Costs of 5,000,000 and 50,000 at 1 sat/vb.
	ladder := p2wpkhLadder(4_999_969, 49_969)

	for _, sum := range []btcutil.Amount{10_000_000, 10_050_000} {
		res, err := m.Decompose([]btcutil.Amount{sum}, ladder, 1000)
		require.NoError(t, err)
		requireValidResult(t, m, res, sum, 1000)

		for _, o := range res.Outputs {
			require.True(t, ladder.Contains(o), "change output %v", o)
		}
		require.Zero(t, res.Leftover)
	}
}

// TestDecomposeInsufficientFunds ensures participants that can not afford
// the smallest denomination are rejected.
func TestDecomposeInsufficientFunds(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 1)

	// The only denomination costs 1000.
	ladder := p2wpkhLadder(969)
	_, err := m.Decompose([]btcutil.Amount{400, 500}, ladder, 1000)
	require.True(t, IsError(err, ErrInsufficientFunds), err)
	require.False(t, ErrInsufficientFunds.Fatal())

	_, err = m.Decompose([]btcutil.Amount{1_000_000}, denom.NewLadder(nil),
		1000)
	require.True(t, IsError(err, ErrInsufficientFunds), err)
}

// TestDecomposeBoundedLeftover decomposes an amount that can not be matched
// exactly.
func TestDecomposeBoundedLeftover(t *testing.T) {
	t.Parallel()

	ladder := p2wpkhLadder(500_000, 50_000, 5_000)
	for seed := uint64(0); seed < 10; seed++ {
		m := newTestMixer(t, seed)

		res, err := m.Decompose([]btcutil.Amount{555_555}, ladder, 1000)
		require.NoError(t, err)
		requireValidResult(t, m, res, 555_555, 1000)
	}

	// A budget for three outputs caps the decomposition.
	m := newTestMixer(t, 1)
	res, err := m.Decompose([]btcutil.Amount{555_555}, ladder, 93)
	require.NoError(t, err)
	requireValidResult(t, m, res, 555_555, 93)
	require.LessOrEqual(t, len(res.Outputs), 3)
}

// TestDecomposeValidation checks the invariant checks on decompositions.
func TestDecomposeValidation(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 1)
	outputs := []denom.Output{
		denom.NewOutput(500_000, txsizes.P2WPKH, oneSatPerVByte),
		denom.NewOutput(50_000, txsizes.P2WPKH, oneSatPerVByte),
	}

	require.NoError(t, m.checkDecomposition(outputs, 550_062, 62))

	err := m.checkDecomposition(outputs, 550_061, 62)
	require.True(t, IsError(err, ErrValueCreated), err)
	require.True(t, ErrValueCreated.Fatal())

	err = m.checkDecomposition(outputs, 550_062+m.changeFloor()+1, 62)
	require.True(t, IsError(err, ErrValueLost), err)

	err = m.checkDecomposition(outputs, 550_062, 61)
	require.True(t, IsError(err, ErrVsizeExceeded), err)
}

// TestSelectPrefersChangeless ensures a changeless candidate wins over any
// candidate with change, however cheap.
func TestSelectPrefersChangeless(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 3)
	ladder := p2wpkhLadder(500_000, 50_000)
	denoms := ladder.Outputs()

	changeless := Candidate{
		Outputs: []denom.Output{denoms[0], denoms[1]},
		Cost:    10_000,
	}
	change, err := m.newChange(50_000)
	require.NoError(t, err)
	withChange := Candidate{
		Outputs: []denom.Output{denoms[0], change},
		Cost:    1,
	}

	for range 20 {
		pick := m.selectCandidate(randutil.NewSeeded(5),
			[]Candidate{withChange, changeless}, ladder, 550_062)
		require.Equal(t, changeless, pick)
	}
}

// TestSelectToleranceBand checks that only candidates within 120% of the
// best cost are picked.
func TestSelectToleranceBand(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 3)
	ladder := p2wpkhLadder(500_000, 200_000, 100_000, 50_000)
	denoms := ladder.Outputs()

	best := Candidate{
		Outputs: []denom.Output{denoms[0], denoms[3]},
		Cost:    1000,
	}
	near := Candidate{
		Outputs: []denom.Output{denoms[1], denoms[1],
			denoms[2], denoms[3]},
		Cost: 1200,
	}
	far := Candidate{
		Outputs: []denom.Output{denoms[2], denoms[2]},
		Cost:    1201,
	}

	seen := make(map[string]int)
	r := randutil.NewSeeded(11)
	for range 200 {
		pick := m.selectCandidate(r, []Candidate{far, near, best},
			ladder, 550_062)
		seen[CanonicalKey(pick.Outputs)]++
	}

	require.Len(t, seen, 2)
	require.NotZero(t, seen[CanonicalKey(best.Outputs)])
	require.NotZero(t, seen[CanonicalKey(near.Outputs)])
	require.Zero(t, seen[CanonicalKey(far.Outputs)])
}

// TestToleranceBandChange checks the three limits on the change of a
// candidate compared to the best one.
func TestToleranceBandChange(t *testing.T) {
	t.Parallel()

	ladder := p2wpkhLadder(1_000_000)

	changeOf := func(amounts ...btcutil.Amount) []Candidate {
		candidates := make([]Candidate, len(amounts))
		for i, a := range amounts {
			candidates[i] = Candidate{
				Outputs: []denom.Output{denom.NewOutput(
					a, txsizes.P2WPKH, oneSatPerVByte,
				)},
				Cost:    btcutil.Amount(i),
			}
		}
		return candidates
	}

	tests := []struct {
		name    string
		sum     btcutil.Amount
		changes []btcutil.Amount
		want    []btcutil.Amount
	}{
		{
			// 10% of 3,000,000 beats 120% of the best change.
			name:    "share of inputs",
			sum:     3_000_000,
			changes: []btcutil.Amount{200_000, 300_000, 300_001},
			want:    []btcutil.Amount{200_000, 300_000},
		},
		{
			name:    "relative to best",
			sum:     1_000_000,
			changes: []btcutil.Amount{200_000, 240_000, 240_001},
			want:    []btcutil.Amount{200_000, 240_000},
		},
		{
			name:    "absolute minimum",
			sum:     500_000,
			changes: []btcutil.Amount{50_000, 100_000, 100_001},
			want:    []btcutil.Amount{50_000, 100_000},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			candidates := changeOf(test.changes...)
			band := toleranceBand(candidates, ladder, test.sum, false)

			got := make([]btcutil.Amount, len(band))
			for i, c := range band {
				got[i] = c.Change(ladder)
			}
			require.Equal(t, test.want, got)
		})
	}
}

// TestDecomposeOutputCap ensures a participant never registers more than
// ten outputs, even with vsize to spare.
func TestDecomposeOutputCap(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 5)

	// Costs 10,000 at 1 sat/vb, a greedy split would need 100.
	ladder := p2wpkhLadder(9_969)
	sum := btcutil.Amount(1_000_000)

	for range 10 {
		res, err := m.Decompose([]btcutil.Amount{sum}, ladder, 10_000)
		require.NoError(t, err)
		requireValidResult(t, m, res, sum, 10_000)
		require.LessOrEqual(t, len(res.Outputs), 10)
	}
}
