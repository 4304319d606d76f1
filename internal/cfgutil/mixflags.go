// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cfgutil

import (
	"strings"

	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
)

// FeeRateFlag embeds a unit.SatPerVByte and implements the flags.Marshaler
// and Unmarshaler interfaces so it can be used as a config struct field.
type FeeRateFlag struct {
	unit.SatPerVByte
}

// NewFeeRateFlag creates a FeeRateFlag with a default fee rate.
func NewFeeRateFlag(defaultValue unit.SatPerVByte) *FeeRateFlag {
	return &FeeRateFlag{defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (f *FeeRateFlag) MarshalFlag() (string, error) {
	return f.FloatString(2), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (f *FeeRateFlag) UnmarshalFlag(value string) error {
	rate, err := unit.ParseSatPerVByte(value)
	if err != nil {
		return err
	}
	f.SatPerVByte = rate
	return nil
}

// ScriptTypesFlag is a comma separated list of output script types that
// implements the flags.Marshaler and Unmarshaler interfaces.
type ScriptTypesFlag struct {
	Types []txsizes.ScriptType
}

// NewScriptTypesFlag creates a ScriptTypesFlag with default script types.
func NewScriptTypesFlag(defaultValue ...txsizes.ScriptType) *ScriptTypesFlag {
	return &ScriptTypesFlag{Types: defaultValue}
}

// MarshalFlag satisfies the flags.Marshaler interface.
func (s *ScriptTypesFlag) MarshalFlag() (string, error) {
	names := make([]string, len(s.Types))
	for i, st := range s.Types {
		names[i] = st.String()
	}
	return strings.Join(names, ","), nil
}

// UnmarshalFlag satisfies the flags.Unmarshaler interface.
func (s *ScriptTypesFlag) UnmarshalFlag(value string) error {
	var types []txsizes.ScriptType
	for _, name := range strings.Split(value, ",") {
		st, err := txsizes.ParseScriptType(name)
		if err != nil {
			return err
		}
		types = append(types, st)
	}
	s.Types = types
	return nil
}
