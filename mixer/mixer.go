// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mixer decomposes the registered inputs of coinjoin participants
// into standard denomination outputs.
//
// A Mixer is created once per round. It fixes the fee rate, the output
// bounds, the denomination ladder and the script type every change output of
// the round uses. Decomposing a participant never mutates the Mixer, the
// caller assembles the round from the returned results.
package mixer

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
	"github.com/btcsuite/btcmix/internal/randutil"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
)

// Config holds the round parameters a Mixer is created from.
type Config struct {
	// FeeRate is the mining fee rate of the round.
	FeeRate unit.SatPerVByte

	// MinAllowedOutputAmount and MaxAllowedOutputAmount bound the amount
	// of every denomination output.
	MinAllowedOutputAmount btcutil.Amount
	MaxAllowedOutputAmount btcutil.Amount

	// AllowedOutputTypes lists the script types outputs may pay to.
	AllowedOutputTypes []txsizes.ScriptType

	// Rand is the source of all random decisions. A nil Rand uses the
	// process wide generator, a seeded Rand makes rounds reproducible.
	Rand *rand.Rand
}

// validate checks the config for values no round can be built from.
func (c *Config) validate() error {
	if c.FeeRate.IsZero() || c.FeeRate.Sign() < 0 {
		return mixError(ErrInvalidConfig, "fee rate must be positive",
			nil)
	}
	if len(c.AllowedOutputTypes) == 0 {
		return mixError(ErrInvalidConfig, "no allowed output script "+
			"types", nil)
	}
	for _, st := range c.AllowedOutputTypes {
		if !st.IsOutputType() {
			str := fmt.Sprintf("script type %v is not allowed for "+
				"outputs", st)
			return mixError(ErrInvalidConfig, str, nil)
		}
	}
	if c.MinAllowedOutputAmount < 0 ||
		c.MinAllowedOutputAmount > c.MaxAllowedOutputAmount {

		str := fmt.Sprintf("invalid output bounds [%d, %d]",
			int64(c.MinAllowedOutputAmount),
			int64(c.MaxAllowedOutputAmount))
		return mixError(ErrInvalidConfig, str, nil)
	}
	return nil
}

// Mixer decomposes participant inputs for a single round.
type Mixer struct {
	feeRate       unit.SatPerVByte
	allowedTypes  []txsizes.ScriptType
	minReasonable btcutil.Amount
	maxAllowed    btcutil.Amount

	// maxPairType is the allowed script type with the largest combined
	// input and output vsize.
	maxPairType txsizes.ScriptType

	changeType txsizes.ScriptType
	changeFee  btcutil.Amount

	ladder *denom.Ladder
	rand   *rand.Rand
}

// New creates a Mixer for a round with the given config.
func New(cfg Config) (*Mixer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := cfg.Rand
	if r == nil {
		r = randutil.NewShared()
	}

	m := &Mixer{
		feeRate:      cfg.FeeRate,
		allowedTypes: slices.Clone(cfg.AllowedOutputTypes),
		maxAllowed:   cfg.MaxAllowedOutputAmount,
		rand:         r,
	}

	maxPair := 0
	for _, st := range m.allowedTypes {
		if v := st.InputVSize() + st.OutputVSize(); v > maxPair {
			maxPair = v
			m.maxPairType = st
		}
	}
	m.minReasonable = max(cfg.MinAllowedOutputAmount,
		m.feeRate.FeeForVSize(unit.VByte(maxPair)))

	// The config has at least one allowed type, so the draw always
	// succeeds.
	m.changeType, _ = randutil.Element(m.rand, m.allowedTypes)
	m.changeFee = m.feeRate.FeeForVSize(
		unit.VByte(m.changeType.OutputVSize()),
	)

	ladder, err := denom.Build(m.minReasonable, m.maxAllowed, m.feeRate,
		m.allowedTypes)
	if err != nil {
		return nil, mixError(ErrInvalidConfig, "unable to build "+
			"denominations", err)
	}
	m.ladder = ladder

	log.Debugf("Created mixer: fee rate %v, min reasonable output %d, "+
		"change type %v, %d denominations", m.feeRate,
		int64(m.minReasonable), m.changeType, m.ladder.Len())

	return m, nil
}

// FeeRate returns the fee rate of the round.
func (m *Mixer) FeeRate() unit.SatPerVByte {
	return m.feeRate
}

// Denominations returns the full denomination ladder of the round, before
// any input based filtering.
func (m *Mixer) Denominations() *denom.Ladder {
	return m.ladder
}

// MinReasonableOutputAmount is the smallest output amount worth creating:
// the larger of the configured minimum and the cost to create and later
// spend the most expensive allowed output type.
func (m *Mixer) MinReasonableOutputAmount() btcutil.Amount {
	return m.minReasonable
}

// MaxAllowedOutputAmount returns the configured maximum output amount.
func (m *Mixer) MaxAllowedOutputAmount() btcutil.Amount {
	return m.maxAllowed
}

// ChangeScriptType returns the script type used for every change output of
// the round.
func (m *Mixer) ChangeScriptType() txsizes.ScriptType {
	return m.changeType
}

// ChangeFee is the fee to create a change output of the round.
func (m *Mixer) ChangeFee() btcutil.Amount {
	return m.changeFee
}

// changeFloor is the smallest remainder that is turned into change rather
// than left to the miners.
func (m *Mixer) changeFloor() btcutil.Amount {
	return m.minReasonable + m.changeFee
}

// newChange creates a change output worth effectiveValue.
func (m *Mixer) newChange(effectiveValue btcutil.Amount) (denom.Output,
	error) {

	return denom.NewChangeOutput(effectiveValue, m.changeType, m.feeRate)
}

// CalculateCost returns the fees the outputs cost over their lifetime, that
// is the fee to create each output and the fee to later spend it.
func CalculateCost(outputs []denom.Output) btcutil.Amount {
	var cost btcutil.Amount
	for _, o := range outputs {
		cost += o.Fee() + o.InputFee()
	}
	return cost
}

// CalculateSmallestReasonableEffectiveDenomination returns the effective
// cost of the smallest denomination of the most expensive allowed script
// type. An input group below this value can not get any output.
func (m *Mixer) CalculateSmallestReasonableEffectiveDenomination() (
	btcutil.Amount, error) {

	ladder, err := denom.Build(m.minReasonable, m.maxAllowed, m.feeRate,
		[]txsizes.ScriptType{m.maxPairType})
	if err != nil {
		return 0, mixError(ErrInvalidConfig, "unable to build "+
			"denominations", err)
	}

	smallest, _ := ladder.Smallest()
	return smallest.EffectiveCost(), nil
}

// Input is an input registered by a participant.
type Input struct {
	// EffectiveValue is the value of the input net of the fee to spend
	// it in the coinjoin.
	EffectiveValue btcutil.Amount

	// ScriptType is the type of the script the input spends.
	ScriptType txsizes.ScriptType
}

// NewInput creates an Input spending a coin worth amount.
func NewInput(amount btcutil.Amount, scriptType txsizes.ScriptType,
	feeRate unit.SatPerVByte) Input {

	fee := feeRate.FeeForVSize(unit.VByte(scriptType.InputVSize()))
	return Input{EffectiveValue: amount - fee, ScriptType: scriptType}
}

// effectiveValues returns the effective value of every input.
func effectiveValues(inputs []Input) []btcutil.Amount {
	values := make([]btcutil.Amount, len(inputs))
	for i, in := range inputs {
		values[i] = in.EffectiveValue
	}
	return values
}
