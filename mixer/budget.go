// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"math"

	"github.com/btcsuite/btcmix/txsizes"
)

const (
	// MaxVsizeCredentialValue is the most vbytes a single input can
	// allocate to the outputs of its owner.
	MaxVsizeCredentialValue = 255

	// maxOutputsPerParticipant caps the number of outputs a single
	// participant may register.
	maxOutputsPerParticipant = 10

	// maxChangelessOutputs caps the number of outputs a changeless
	// decomposition may use.
	maxChangelessOutputs = 8
)

// MaxTransactionVSize is the largest standard coinjoin transaction.
const MaxTransactionVSize = txsizes.MaxStandardTxVSize

// SharedOverhead is the vsize of the transaction fields no participant pays
// for. The counts are sized for any number of inputs and outputs a standard
// transaction can hold.
var SharedOverhead = txsizes.SharedOverheadVSize(
	math.MaxUint16, math.MaxUint16,
)

// PerInputVsizeAllowance returns the number of vbytes every input of a
// round with totalInputs inputs is entitled to.
func PerInputVsizeAllowance(totalInputs int) (int, error) {
	if totalInputs <= 0 {
		return 0, mixError(ErrTooFewInputs, "round has no inputs", nil)
	}

	return min((MaxTransactionVSize-SharedOverhead)/totalInputs,
		MaxVsizeCredentialValue), nil
}

// AvailableOutputVsize returns the vbytes a participant can spend on
// outputs: the allowance of each of its inputs minus what the input itself
// takes.
func AvailableOutputVsize(inputs []Input, perInput int) int {
	var available int
	for _, in := range inputs {
		available += perInput - in.ScriptType.InputVSize()
	}
	return available
}
