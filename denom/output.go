// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package denom

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
)

// ErrChangeBelowFee describes a change value too small to pay for its own
// output.
var ErrChangeBelowFee = errors.New("change does not cover its fee")

// Output is a coinjoin output, either a standard denomination or a change
// output. The fees are fixed when the output is created, so two outputs built
// with the same fee rate compare equal iff amount and script type match.
type Output struct {
	// Amount is the value the output carries.
	Amount btcutil.Amount

	// ScriptType is the type of script the output pays to.
	ScriptType txsizes.ScriptType

	fee      btcutil.Amount
	inputFee btcutil.Amount
}

// NewOutput creates an output of the given amount and script type.
func NewOutput(amount btcutil.Amount, scriptType txsizes.ScriptType,
	feeRate unit.SatPerVByte) Output {

	return Output{
		Amount:     amount,
		ScriptType: scriptType,
		fee: feeRate.FeeForVSize(
			unit.NewVByte(uint64(scriptType.OutputVSize())),
		),
		inputFee: feeRate.FeeForVSize(
			unit.NewVByte(uint64(scriptType.InputVSize())),
		),
	}
}

// NewChangeOutput creates an output whose effective cost equals
// effectiveValue, that is the creation fee is paid out of the value.
// ErrChangeBelowFee is returned if nothing would be left after the fee.
func NewChangeOutput(effectiveValue btcutil.Amount,
	scriptType txsizes.ScriptType,
	feeRate unit.SatPerVByte) (Output, error) {

	o := NewOutput(0, scriptType, feeRate)
	if effectiveValue <= o.fee {
		return Output{}, fmt.Errorf("%w: %v can not pay the %v fee of "+
			"a %v output", ErrChangeBelowFee, effectiveValue, o.fee,
			scriptType)
	}
	o.Amount = effectiveValue - o.fee
	return o, nil
}

// Fee is the mining fee paid to create the output.
func (o Output) Fee() btcutil.Amount {
	return o.fee
}

// InputFee is the mining fee the owner pays when the output is later spent.
func (o Output) InputFee() btcutil.Amount {
	return o.inputFee
}

// EffectiveCost is what a participant has to supply to create the output.
func (o Output) EffectiveCost() btcutil.Amount {
	return o.Amount + o.fee
}

// EffectiveAmount is the value of the output net of its future spend cost.
func (o Output) EffectiveAmount() btcutil.Amount {
	return o.Amount - o.inputFee
}

// VSize is the number of vbytes the output adds to the transaction.
func (o Output) VSize() int {
	return o.ScriptType.OutputVSize()
}

// String returns the amount in satoshis followed by the script type.
func (o Output) String() string {
	return fmt.Sprintf("%d(%v)", int64(o.Amount), o.ScriptType)
}
