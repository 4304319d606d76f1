// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"context"
	"fmt"
	"iter"
	"math/rand/v2"
	"runtime"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
	"github.com/btcsuite/btcmix/internal/randutil"
	"golang.org/x/sync/errgroup"
)

// maxGroupingAttempts bounds the number of random input groupings tried by
// RandomInputGroups.
const maxGroupingAttempts = 1000

// RoundLog collects the outputs and leftovers of a round.
type RoundLog struct {
	// Denominations is the filtered ladder the round was decomposed
	// with.
	Denominations *denom.Ladder

	// Outputs are the outputs of all participants in registration order.
	Outputs []denom.Output

	// Leftovers holds the leftover of every participant.
	Leftovers []btcutil.Amount
}

// Append adds the result of a participant to the log.
func (l *RoundLog) Append(r *ParticipantResult) {
	l.Outputs = append(l.Outputs, r.Outputs...)
	l.Leftovers = append(l.Leftovers, r.Leftover)
}

// roundPlan holds what is computed once for a whole round.
type roundPlan struct {
	ladder   *denom.Ladder
	perInput int
}

func (m *Mixer) planRound(participants [][]Input) (*roundPlan, error) {
	var (
		all   []btcutil.Amount
		total int
	)
	for _, inputs := range participants {
		all = append(all, effectiveValues(inputs)...)
		total += len(inputs)
	}

	ladder, err := m.FilterDenominations(all)
	if err != nil {
		return nil, err
	}
	perInput, err := PerInputVsizeAllowance(total)
	if err != nil {
		return nil, err
	}

	log.Debugf("Planned round of %d participants, %d inputs: %d vbytes "+
		"per input, %d denominations", len(participants), total,
		perInput, ladder.Len())

	return &roundPlan{ladder: ladder, perInput: perInput}, nil
}

// deriveRand returns a random source seeded from the mixer's source.
func (m *Mixer) deriveRand() *rand.Rand {
	return rand.New(rand.NewPCG(m.rand.Uint64(), m.rand.Uint64()))
}

// decomposeParticipant decomposes participant i of a planned round.
func (m *Mixer) decomposeParticipant(r *rand.Rand, plan *roundPlan, i int,
	inputs []Input) (*ParticipantResult, error) {

	available := AvailableOutputVsize(inputs, plan.perInput)
	res, err := m.decompose(r, effectiveValues(inputs), plan.ladder,
		available)
	if err != nil {
		return nil, fmt.Errorf("participant %d: %w", i, err)
	}
	res.Index = i
	return res, nil
}

// CompleteMix decomposes every participant of a round. The denominations
// are filtered once when iteration starts, then one result is yielded per
// participant in registration order. Iteration stops after the first error,
// which is yielded with a nil result.
//
// Every participant draws from its own random source, derived in order from
// the mixer's source, so CompleteMix and CompleteMixParallel agree under a
// fixed seed.
func (m *Mixer) CompleteMix(
	participants [][]Input) iter.Seq2[*ParticipantResult, error] {

	return func(yield func(*ParticipantResult, error) bool) {
		plan, err := m.planRound(participants)
		if err != nil {
			yield(nil, err)
			return
		}

		m.mix(plan, participants)(yield)
	}
}

// mix lazily decomposes the participants of a planned round.
func (m *Mixer) mix(plan *roundPlan,
	participants [][]Input) iter.Seq2[*ParticipantResult, error] {

	return func(yield func(*ParticipantResult, error) bool) {
		for i, inputs := range participants {
			res, err := m.decomposeParticipant(
				m.deriveRand(), plan, i, inputs,
			)
			if !yield(res, err) || err != nil {
				return
			}
		}
	}
}

// MixRound decomposes every participant and collects the results.
func (m *Mixer) MixRound(participants [][]Input) (*RoundLog, error) {
	plan, err := m.planRound(participants)
	if err != nil {
		return nil, err
	}

	roundLog := &RoundLog{Denominations: plan.ladder}
	for res, err := range m.mix(plan, participants) {
		if err != nil {
			return nil, err
		}
		roundLog.Append(res)
	}
	return roundLog, nil
}

// CompleteMixParallel decomposes the participants with up to workers
// goroutines. A workers value of zero or less uses GOMAXPROCS. The results
// are identical to CompleteMix under the same seed.
func (m *Mixer) CompleteMixParallel(ctx context.Context,
	participants [][]Input, workers int) (*RoundLog, error) {

	plan, err := m.planRound(participants)
	if err != nil {
		return nil, err
	}

	sources := make([]*rand.Rand, len(participants))
	for i := range sources {
		sources[i] = m.deriveRand()
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]*ParticipantResult, len(participants))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, inputs := range participants {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := m.decomposeParticipant(
				sources[i], plan, i, inputs,
			)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	roundLog := &RoundLog{Denominations: plan.ladder}
	for _, res := range results {
		roundLog.Append(res)
	}
	return roundLog, nil
}

// RandomInputGroups splits inputs into groupCount random groups, each worth
// at least the smallest reasonable denomination.
func (m *Mixer) RandomInputGroups(inputs []Input,
	groupCount int) ([][]Input, error) {

	smallest, err := m.CalculateSmallestReasonableEffectiveDenomination()
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxGroupingAttempts; attempt++ {
		groups, err := randutil.RandomGroups(m.rand, inputs, groupCount)
		if err != nil {
			return nil, mixError(ErrTooFewInputs, "unable to group "+
				"inputs", err)
		}

		if allGroupsReach(groups, smallest) {
			log.Debugf("Grouped %d inputs into %d groups after %d "+
				"attempts", len(inputs), groupCount, attempt+1)
			return groups, nil
		}
	}

	str := fmt.Sprintf("no grouping of %d inputs into %d groups worth "+
		"at least %d each found in %d attempts", len(inputs),
		groupCount, int64(smallest), maxGroupingAttempts)
	return nil, mixError(ErrGroupingExhausted, str, nil)
}

func allGroupsReach(groups [][]Input, amount btcutil.Amount) bool {
	for _, g := range groups {
		var sum btcutil.Amount
		for _, in := range g {
			sum += in.EffectiveValue
		}
		if sum < amount {
			return false
		}
	}
	return true
}
