// Copyright (c) 2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txsizes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/txscript"
)

// ScriptType identifies the kind of script an input spends or an output pays
// to. Only the types with known worst case sizes are supported.
type ScriptType uint8

const (
	// P2WPKH is a native segwit v0 pay-to-witness-pubkey-hash script.
	P2WPKH ScriptType = iota

	// P2TR is a segwit v1 pay-to-taproot script spent via the key path.
	P2TR

	// NestedP2WPKH is a P2WPKH script nested in P2SH.
	NestedP2WPKH

	// P2PKH is a legacy pay-to-pubkey-hash script with a compressed key.
	P2PKH
)

// ErrUnknownScriptType is returned when a script can not be mapped to one of
// the supported script types.
var ErrUnknownScriptType = errors.New("unknown script type")

var scriptTypeNames = map[ScriptType]string{
	P2WPKH:       "p2wpkh",
	P2TR:         "p2tr",
	NestedP2WPKH: "nested",
	P2PKH:        "p2pkh",
}

// String returns the short lower case name of the script type.
func (s ScriptType) String() string {
	if name, ok := scriptTypeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scripttype(%d)", uint8(s))
}

// InputVSize returns the number of vbytes an input spending an output of this
// type adds to a transaction.
func (s ScriptType) InputVSize() int {
	switch s {
	case P2WPKH:
		return inputVirtualSize(
			RedeemP2WPKHInputSize, RedeemP2WPKHInputWitnessWeight,
		)

	case P2TR:
		return inputVirtualSize(
			RedeemP2TRInputSize, RedeemP2TRInputWitnessWeight,
		)

	case NestedP2WPKH:
		return inputVirtualSize(
			RedeemNestedP2WPKHInputSize,
			RedeemP2WPKHInputWitnessWeight,
		)

	default:
		return RedeemP2PKHInputSize
	}
}

// OutputVSize returns the number of vbytes an output of this type adds to a
// transaction.
func (s ScriptType) OutputVSize() int {
	switch s {
	case P2WPKH:
		return outputSize(P2WPKHPkScriptSize)
	case P2TR:
		return outputSize(P2TRPkScriptSize)
	case NestedP2WPKH:
		return outputSize(NestedP2WPKHPkScriptSize)
	default:
		return outputSize(P2PKHPkScriptSize)
	}
}

// IsOutputType returns whether coinjoin outputs may be created with this
// script type. Only native segwit outputs are allowed.
func (s ScriptType) IsOutputType() bool {
	return s == P2WPKH || s == P2TR
}

// ParseScriptType maps a script type name as returned by String back to its
// ScriptType. "taproot" and "p2sh-p2wpkh" are accepted as aliases.
func ParseScriptType(name string) (ScriptType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "p2wpkh", "wpkh":
		return P2WPKH, nil
	case "p2tr", "taproot", "tr":
		return P2TR, nil
	case "nested", "p2sh-p2wpkh":
		return NestedP2WPKH, nil
	case "p2pkh", "pkh":
		return P2PKH, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownScriptType, name)
	}
}

// ScriptTypeFromPkScript classifies an output script. A P2SH script is
// assumed to be a nested P2WPKH.
func ScriptTypeFromPkScript(pkScript []byte) (ScriptType, error) {
	switch {
	case txscript.IsPayToScriptHash(pkScript):
		return NestedP2WPKH, nil
	case txscript.IsPayToWitnessPubKeyHash(pkScript):
		return P2WPKH, nil
	case txscript.IsPayToTaproot(pkScript):
		return P2TR, nil
	case txscript.IsPayToPubKeyHash(pkScript):
		return P2PKH, nil
	default:
		return 0, ErrUnknownScriptType
	}
}

// SmallestOutputVSize returns the smallest vsize any allowed output type can
// have.
func SmallestOutputVSize() int {
	return min(P2WPKH.OutputVSize(), P2TR.OutputVSize())
}
