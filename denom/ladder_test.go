package denom

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
	"github.com/stretchr/testify/require"
)

var oneSatPerVByte = unit.NewSatPerVByte(1, 1)

func TestOutputCosts(t *testing.T) {
	t.Parallel()

	o := NewOutput(100_000, txsizes.P2TR, unit.NewSatPerVByte(2, 1))
	require.EqualValues(t, 86, o.Fee())
	require.EqualValues(t, 116, o.InputFee())
	require.EqualValues(t, 100_086, o.EffectiveCost())
	require.EqualValues(t, 99_884, o.EffectiveAmount())
	require.Equal(t, 43, o.VSize())
	require.Equal(t, "100000(p2tr)", o.String())

	change, err := NewChangeOutput(50_000, txsizes.P2WPKH, oneSatPerVByte)
	require.NoError(t, err)
	require.EqualValues(t, 49_969, change.Amount)
	require.EqualValues(t, 50_000, change.EffectiveCost())

	require.Equal(t, NewOutput(49_969, txsizes.P2WPKH, oneSatPerVByte),
		change)

	// A value at or below the fee leaves nothing for the output.
	for _, v := range []btcutil.Amount{0, 30, 31} {
		_, err := NewChangeOutput(v, txsizes.P2WPKH, oneSatPerVByte)
		require.ErrorIs(t, err, ErrChangeBelowFee, v)
	}
	_, err = NewChangeOutput(32, txsizes.P2WPKH, oneSatPerVByte)
	require.NoError(t, err)
}

func TestStandardAmounts(t *testing.T) {
	t.Parallel()

	amounts := StandardAmounts(1000, 10_000)
	expected := []btcutil.Amount{
		10_000, 8192, 6561, 5000, 4374, 4096, 2187, 2048, 2000, 1458,
		1024, 1000,
	}
	require.Equal(t, expected, amounts)

	require.Empty(t, StandardAmounts(1025, 1026))
}

func TestBuildLadderOrdering(t *testing.T) {
	t.Parallel()

	ladder, err := Build(1000, 10_000, oneSatPerVByte,
		[]txsizes.ScriptType{txsizes.P2WPKH, txsizes.P2TR})
	require.NoError(t, err)
	require.Equal(t, 24, ladder.Len())

	outputs := ladder.Outputs()
	for i := 1; i < len(outputs); i++ {
		require.GreaterOrEqual(t, outputs[i-1].EffectiveCost(),
			outputs[i].EffectiveCost())
	}

	require.Equal(t, NewOutput(10_000, txsizes.P2TR, oneSatPerVByte),
		ladder.Outputs()[0])

	smallest, ok := ladder.Smallest()
	require.True(t, ok)
	require.Equal(t, NewOutput(1000, txsizes.P2WPKH, oneSatPerVByte),
		smallest)

	require.True(t, ladder.Contains(smallest))
	require.False(t, ladder.Contains(
		NewOutput(1001, txsizes.P2WPKH, oneSatPerVByte),
	))

	// Mutating the returned copy leaves the ladder untouched.
	outputs[0] = smallest
	require.NotEqual(t, smallest, ladder.Outputs()[0])

	_, err = Build(1025, 1026, oneSatPerVByte,
		[]txsizes.ScriptType{txsizes.P2WPKH})
	require.ErrorIs(t, err, ErrEmptyLadder)
}

func TestLadderTieBreak(t *testing.T) {
	t.Parallel()

	// Both cost 1043 to create, the P2WPKH one is worth more once spent.
	wpkh := NewOutput(1012, txsizes.P2WPKH, oneSatPerVByte)
	tr := NewOutput(1000, txsizes.P2TR, oneSatPerVByte)
	require.Equal(t, wpkh.EffectiveCost(), tr.EffectiveCost())

	ladder := NewLadder([]Output{tr, wpkh, tr})
	require.Equal(t, 2, ladder.Len())
	require.Equal(t, wpkh, ladder.Outputs()[0])
	require.Equal(t, tr, ladder.Outputs()[1])

	byAmount := ladder.ByEffectiveAmount()
	require.Equal(t, []Output{wpkh, tr}, byAmount)

	// Both are worth 1000 once spent, the P2TR one costs less to spend
	// even though it costs more to create.
	spendWpkh := NewOutput(1000, txsizes.P2WPKH, oneSatPerVByte)
	spendTr := NewOutput(1000, txsizes.P2TR, oneSatPerVByte)
	wpkhSpend := NewOutput(1000+spendWpkh.InputFee(), txsizes.P2WPKH,
		oneSatPerVByte)
	trSpend := NewOutput(1000+spendTr.InputFee(), txsizes.P2TR,
		oneSatPerVByte)
	require.Equal(t, wpkhSpend.EffectiveAmount(), trSpend.EffectiveAmount())
	require.Less(t, trSpend.InputFee(), wpkhSpend.InputFee())
	require.Less(t, wpkhSpend.EffectiveCost(), trSpend.EffectiveCost())

	byAmount = NewLadder([]Output{wpkhSpend, trSpend}).ByEffectiveAmount()
	require.Equal(t, []Output{trSpend, wpkhSpend}, byAmount)

	filtered := ladder.Filter(func(o Output) bool {
		return o.ScriptType == txsizes.P2TR
	})
	require.Equal(t, 1, filtered.Len())
	require.True(t, filtered.Contains(tr))

	_, ok := NewLadder(nil).Smallest()
	require.False(t, ok)
}
