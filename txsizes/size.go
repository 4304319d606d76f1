// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txsizes provides worst case virtual size estimates for the inputs
// and outputs a coinjoin participant registers.
package txsizes

import (
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcmix/pkg/unit"
)

// Worst case script and input/output size estimates.
const (
	// RedeemP2PKHSigScriptSize is the worst case (largest) serialize size
	// of a transaction input script that redeems a compressed P2PKH output.
	RedeemP2PKHSigScriptSize = 1 + 73 + 1 + 33

	// P2PKHPkScriptSize is the size of a transaction output script that
	// pays to a compressed pubkey hash.
	P2PKHPkScriptSize = 1 + 1 + 1 + 20 + 1 + 1

	// RedeemP2PKHInputSize is the worst case (largest) serialize size of a
	// transaction input redeeming a compressed P2PKH output.  It is
	// calculated as:
	//
	//   - 32 bytes previous tx
	//   - 4 bytes output index
	//   - 1 byte compact int encoding value 107
	//   - 108 bytes signature script
	//   - 4 bytes sequence
	RedeemP2PKHInputSize = 32 + 4 + 1 + RedeemP2PKHSigScriptSize + 4

	// P2WPKHPkScriptSize is the size of a transaction output script that
	// pays to a witness pubkey hash.
	P2WPKHPkScriptSize = 1 + 1 + 20

	// RedeemP2WPKHInputSize is the worst case size of the non-witness part
	// of an input redeeming a P2WPKH output. The redeem script for P2WPKH
	// spends MUST be empty.
	RedeemP2WPKHInputSize = 32 + 4 + 1 + 4

	// P2TRPkScriptSize is the size of a transaction output script that
	// pays to a taproot pubkey.
	P2TRPkScriptSize = 1 + 1 + 32

	// RedeemP2TRInputSize is the worst case size of the non-witness part of
	// an input redeeming a P2TR output with a key path spend.
	RedeemP2TRInputSize = 32 + 4 + 1 + 4

	// NestedP2WPKHPkScriptSize is the size of a transaction output script
	// that pays to a pay-to-witness-key hash nested in P2SH (P2SH-P2WPKH).
	NestedP2WPKHPkScriptSize = 1 + 1 + 20 + 1

	// RedeemNestedP2WPKHScriptSize is the worst case size of a transaction
	// input script that redeems a P2SH-P2WPKH output.
	RedeemNestedP2WPKHScriptSize = 1 + 1 + 1 + 20

	// RedeemNestedP2WPKHInputSize is the worst case size of the non-witness
	// part of an input redeeming a P2SH-P2WPKH output.
	RedeemNestedP2WPKHInputSize = 32 + 4 + 1 +
		RedeemNestedP2WPKHScriptSize + 4

	// RedeemP2WPKHInputWitnessWeight is the worst case weight of
	// a witness for spending P2WPKH and nested P2WPKH outputs. It
	// is calculated as:
	//
	//   - 1 wu compact int encoding value 2 (number of items)
	//   - 1 wu compact int encoding value 73
	//   - 72 wu DER signature + 1 wu sighash
	//   - 1 wu compact int encoding value 33
	//   - 33 wu serialized compressed pubkey
	RedeemP2WPKHInputWitnessWeight = 1 + 1 + 73 + 1 + 33

	// RedeemP2TRInputWitnessWeight is the worst case weight of
	// a witness for spending P2TR outputs. It is calculated as:
	//
	//   - 1 wu compact int encoding value 1 (number of items)
	//   - 1 wu compact int encoding value 65
	//   - 64 wu BIP-340 schnorr signature + 1 wu sighash
	RedeemP2TRInputWitnessWeight = 1 + 1 + 65

	// MaxStandardTxWeight is the largest weight a transaction may have and
	// still be relayed by default policy.
	MaxStandardTxWeight = 400_000

	// MaxStandardTxVSize is MaxStandardTxWeight expressed in vbytes.
	MaxStandardTxVSize = MaxStandardTxWeight / blockchain.WitnessScaleFactor
)

// outputSize returns the serialize size of an output carrying a script of
// the given length.
func outputSize(pkScriptSize int) int {
	// 8 bytes output value, compact int script length, script.
	return 8 + wire.VarIntSerializeSize(uint64(pkScriptSize)) + pkScriptSize
}

// inputVirtualSize rounds the witness weight of an input up to whole vbytes
// and adds it to the base size.
func inputVirtualSize(baseSize, witnessWeight int) int {
	witness := unit.NewWeightUnit(uint64(witnessWeight)).ToVB()
	return baseSize + int(witness)
}

// SharedOverheadVSize returns the vsize of the transaction fields that no
// participant owns: version, locktime, the input and output counts sized for
// the given maxima, and the segwit marker and flag.
func SharedOverheadVSize(maxInputs, maxOutputs int) int {
	// Version 4 bytes + LockTime 4 bytes.
	size := 8 +
		wire.VarIntSerializeSize(uint64(maxInputs)) +
		wire.VarIntSerializeSize(uint64(maxOutputs))

	// The marker and flag add 2 weight units, which is rounded up to a full
	// vbyte.
	return inputVirtualSize(size, 2)
}
