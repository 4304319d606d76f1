// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/denom"
	"github.com/btcsuite/btcmix/internal/randutil"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
	"github.com/stretchr/testify/require"
)

// oneSatPerVByte is the fee rate most tests use so that fees equal vsizes.
var oneSatPerVByte = unit.NewSatPerVByte(1, 1)

// testConfig returns a valid config with a seeded random source.
func testConfig(seed uint64) Config {
	return Config{
		FeeRate:                oneSatPerVByte,
		MinAllowedOutputAmount: 5000,
		MaxAllowedOutputAmount: btcutil.SatoshiPerBitcoin,
		AllowedOutputTypes: []txsizes.ScriptType{
			txsizes.P2WPKH, txsizes.P2TR,
		},
		Rand: randutil.NewSeeded(seed),
	}
}

func newTestMixer(t *testing.T, seed uint64) *Mixer {
	t.Helper()

	m, err := New(testConfig(seed))
	require.NoError(t, err)
	return m
}

// TestNewInvalidConfig ensures invalid round parameters are rejected.
func TestNewInvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{
			name:   "no fee rate",
			modify: func(c *Config) { c.FeeRate = unit.SatPerVByte{} },
		},
		{
			name: "zero fee rate",
			modify: func(c *Config) {
				c.FeeRate = unit.NewSatPerVByte(0, 1)
			},
		},
		{
			name:   "no script types",
			modify: func(c *Config) { c.AllowedOutputTypes = nil },
		},
		{
			name: "legacy output type",
			modify: func(c *Config) {
				c.AllowedOutputTypes = []txsizes.ScriptType{
					txsizes.P2PKH,
				}
			},
		},
		{
			name: "min above max",
			modify: func(c *Config) {
				c.MinAllowedOutputAmount = 2 * btcutil.SatoshiPerBitcoin
			},
		},
		{
			name: "no denomination above fees",
			modify: func(c *Config) {
				c.MinAllowedOutputAmount = 7
				c.MaxAllowedOutputAmount = 7
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig(1)
			test.modify(&cfg)

			_, err := New(cfg)
			require.Error(t, err)
			require.True(t, IsError(err, ErrInvalidConfig), err)
		})
	}
}

// TestConstructionDerivations checks the values fixed when a mixer is
// created.
func TestConstructionDerivations(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 1)

	// P2TR has the largest input plus output vsize of 101 vbytes, which
	// is below the configured minimum at 1 sat/vb.
	require.Equal(t, btcutil.Amount(5000), m.MinReasonableOutputAmount())
	require.Contains(t, []txsizes.ScriptType{txsizes.P2WPKH, txsizes.P2TR},
		m.ChangeScriptType())
	require.Equal(t, btcutil.Amount(m.ChangeScriptType().OutputVSize()),
		m.ChangeFee())

	smallest, ok := m.Denominations().Smallest()
	require.True(t, ok)
	require.Equal(t, btcutil.Amount(5000), smallest.Amount)

	// At 100 sat/vb the fees dominate the configured minimum.
	cfg := testConfig(1)
	cfg.FeeRate = unit.NewSatPerVByte(100, 1)
	cfg.AllowedOutputTypes = []txsizes.ScriptType{txsizes.P2TR}
	m, err := New(cfg)
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(10100), m.MinReasonableOutputAmount())
	require.Equal(t, txsizes.P2TR, m.ChangeScriptType())
	require.Equal(t, btcutil.Amount(4300), m.ChangeFee())
}

// TestCalculateCost checks the lifetime fee of a set of outputs.
func TestCalculateCost(t *testing.T) {
	t.Parallel()

	rate := unit.NewSatPerVByte(2, 1)
	outputs := []denom.Output{
		denom.NewOutput(1000, txsizes.P2WPKH, rate),
		denom.NewOutput(1000, txsizes.P2TR, rate),
	}

	// P2WPKH: 2*31 + 2*69, P2TR: 2*43 + 2*58.
	require.Equal(t, btcutil.Amount(200+202), CalculateCost(outputs))
	require.Zero(t, CalculateCost(nil))
}

// TestSmallestReasonableDenomination checks the threshold input groups
// have to reach.
func TestSmallestReasonableDenomination(t *testing.T) {
	t.Parallel()

	m := newTestMixer(t, 1)

	// 5000 sat paid to the costlier P2TR output.
	smallest, err := m.CalculateSmallestReasonableEffectiveDenomination()
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(5043), smallest)
}

// TestNewInput ensures the spend fee is netted out of an input.
func TestNewInput(t *testing.T) {
	t.Parallel()

	in := NewInput(100_000, txsizes.P2WPKH, unit.NewSatPerVByte(3, 1))
	require.Equal(t, btcutil.Amount(100_000-3*69), in.EffectiveValue)
	require.Equal(t, txsizes.P2WPKH, in.ScriptType)
}

// TestVsizeBudget checks the per input allowance and participant budget.
func TestVsizeBudget(t *testing.T) {
	t.Parallel()

	require.Equal(t, 15, SharedOverhead)
	require.Equal(t, 100_000, MaxTransactionVSize)

	perInput, err := PerInputVsizeAllowance(1)
	require.NoError(t, err)
	require.Equal(t, MaxVsizeCredentialValue, perInput)

	perInput, err = PerInputVsizeAllowance(1000)
	require.NoError(t, err)
	require.Equal(t, (100_000-15)/1000, perInput)

	_, err = PerInputVsizeAllowance(0)
	require.True(t, IsError(err, ErrTooFewInputs))

	inputs := []Input{
		{EffectiveValue: 1000, ScriptType: txsizes.P2WPKH},
		{EffectiveValue: 1000, ScriptType: txsizes.P2TR},
	}
	require.Equal(t, (255-69)+(255-58), AvailableOutputVsize(inputs, 255))
}

// TestErrorCodes checks error code names and fatality.
func TestErrorCodes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ErrValueLost", ErrValueLost.String())
	require.Equal(t, "Unknown ErrorCode (99)", ErrorCode(99).String())

	require.False(t, ErrInsufficientFunds.Fatal())
	require.False(t, ErrInvalidConfig.Fatal())
	require.True(t, ErrValueCreated.Fatal())
	require.True(t, ErrVsizeExceeded.Fatal())
	require.True(t, ErrGroupingExhausted.Fatal())

	err := mixError(ErrValueLost, "lost", nil)
	require.Equal(t, "lost", err.Error())
	require.True(t, IsError(err, ErrValueLost))
	require.False(t, IsError(err, ErrValueCreated))
}
