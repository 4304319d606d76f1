// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"context"
	"errors"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/txsizes"
	"github.com/stretchr/testify/require"
)

// testParticipants returns a round in which every input amount is
// registered twice so that the filtered ladder is never empty.
func testParticipants() [][]Input {
	wpkh := func(a btcutil.Amount) Input {
		return NewInput(a, txsizes.P2WPKH, oneSatPerVByte)
	}
	tr := func(a btcutil.Amount) Input {
		return NewInput(a, txsizes.P2TR, oneSatPerVByte)
	}

	return [][]Input{
		{wpkh(1_000_000), wpkh(250_000)},
		{wpkh(1_000_000)},
		{wpkh(250_000), tr(2_000_000)},
		{tr(2_000_000)},
		{wpkh(777_777), tr(60_000)},
		{wpkh(777_777), tr(60_000)},
	}
}

func countInputs(participants [][]Input) int {
	var n int
	for _, p := range participants {
		n += len(p)
	}
	return n
}

func sumInputs(inputs []Input) btcutil.Amount {
	var sum btcutil.Amount
	for _, in := range inputs {
		sum += in.EffectiveValue
	}
	return sum
}

// TestCompleteMixInvariants checks every participant result of a round.
func TestCompleteMixInvariants(t *testing.T) {
	t.Parallel()

	participants := testParticipants()
	perInput, err := PerInputVsizeAllowance(countInputs(participants))
	require.NoError(t, err)

	for seed := uint64(0); seed < 10; seed++ {
		m := newTestMixer(t, seed)

		var n int
		for res, err := range m.CompleteMix(participants) {
			require.NoError(t, err)
			require.Equal(t, n, res.Index)

			inputs := participants[res.Index]
			requireValidResult(t, m, res, sumInputs(inputs),
				AvailableOutputVsize(inputs, perInput))
			n++
		}
		require.Equal(t, len(participants), n)
	}
}

// TestMixRoundDeterministic ensures a fixed seed reproduces a round.
func TestMixRoundDeterministic(t *testing.T) {
	t.Parallel()

	participants := testParticipants()

	first, err := newTestMixer(t, 99).MixRound(participants)
	require.NoError(t, err)
	second, err := newTestMixer(t, 99).MixRound(participants)
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Len(t, first.Leftovers, len(participants))
	require.NotNil(t, first.Denominations)
}

// TestCompleteMixParallel ensures the concurrent orchestrator gives the
// same round as the sequential one, whatever the number of workers.
func TestCompleteMixParallel(t *testing.T) {
	t.Parallel()

	participants := testParticipants()
	want, err := newTestMixer(t, 5).MixRound(participants)
	require.NoError(t, err)

	for _, workers := range []int{0, 1, 4, 16} {
		got, err := newTestMixer(t, 5).CompleteMixParallel(
			context.Background(), participants, workers,
		)
		require.NoError(t, err)
		require.Equal(t, want, got, "workers %d", workers)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = newTestMixer(t, 5).CompleteMixParallel(ctx, participants, 2)
	require.True(t, errors.Is(err, context.Canceled), err)
}

// TestCompleteMixStopsOnError ensures iteration ends with the first failing
// participant.
func TestCompleteMixStopsOnError(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 1)
	participants := [][]Input{
		{NewInput(1_000_000, txsizes.P2WPKH, oneSatPerVByte)},
		{NewInput(1_000, txsizes.P2WPKH, oneSatPerVByte)},
		{NewInput(1_000_000, txsizes.P2WPKH, oneSatPerVByte)},
	}

	var (
		results []*ParticipantResult
		errs    []error
	)
	for res, err := range m.CompleteMix(participants) {
		results = append(results, res)
		errs = append(errs, err)
	}

	require.Len(t, results, 2)
	require.NotNil(t, results[0])
	require.NoError(t, errs[0])
	require.Nil(t, results[1])
	require.True(t, IsError(errs[1], ErrInsufficientFunds), errs[1])

	_, err := m.MixRound(participants)
	require.True(t, IsError(err, ErrInsufficientFunds), err)

	// A round of a single input can not be filtered.
	for res, err := range m.CompleteMix(participants[:1]) {
		require.Nil(t, res)
		require.True(t, IsError(err, ErrTooFewInputs), err)
	}
}

// TestRandomInputGroups checks grouping of a pool of inputs.
func TestRandomInputGroups(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 1)

	var pool []Input
	for range 10 {
		pool = append(pool,
			NewInput(1_000_000, txsizes.P2WPKH, oneSatPerVByte))
	}

	groups, err := m.RandomInputGroups(pool, 3)
	require.NoError(t, err)
	require.Len(t, groups, 3)
	require.Equal(t, len(pool), countInputs(groups))

	// No group of these inputs can pay for a 5000 sat output.
	small := []Input{
		{EffectiveValue: 1000, ScriptType: txsizes.P2WPKH},
		{EffectiveValue: 1000, ScriptType: txsizes.P2WPKH},
		{EffectiveValue: 1000, ScriptType: txsizes.P2WPKH},
	}
	_, err = m.RandomInputGroups(small, 2)
	require.True(t, IsError(err, ErrGroupingExhausted), err)
	require.True(t, ErrGroupingExhausted.Fatal())

	_, err = m.RandomInputGroups(small, 4)
	require.True(t, IsError(err, ErrTooFewInputs), err)
}
