// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcmix/internal/cfgutil"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/roundstore"
	"github.com/btcsuite/btcmix/txsizes"
	"github.com/stretchr/testify/require"
)

const testRound = `
1000000 250000
1000000
250000 2000000:p2tr
2000000:p2tr
777777 60000:p2tr
777777 60000:p2tr
`

func testCLIConfig(t *testing.T) *config {
	t.Helper()

	dir := t.TempDir()
	inputFile := filepath.Join(dir, "round.txt")
	require.NoError(t, os.WriteFile(inputFile, []byte(testRound), 0600))

	return &config{
		InputFile: inputFile,
		FeeRate:   cfgutil.NewFeeRateFlag(unit.NewSatPerVByte(1, 1)),
		MinOutput: cfgutil.NewAmountFlag(defaultMinOutput),
		MaxOutput: cfgutil.NewAmountFlag(defaultMaxOutput),
		ScriptTypes: cfgutil.NewScriptTypesFlag(
			txsizes.P2WPKH, txsizes.P2TR,
		),
		Seed:    7,
		DataDir: filepath.Join(dir, "data"),
	}
}

func TestRunRound(t *testing.T) {
	t.Parallel()

	cfg := testCLIConfig(t)

	var sequential bytes.Buffer
	cfg.Workers = 1
	require.NoError(t, runRound(context.Background(), cfg, &sequential))
	require.Contains(t, sequential.String(), "Participants:         6\n")

	// The concurrent path reproduces the sequential round.
	var parallel bytes.Buffer
	cfg.Workers = 3
	require.NoError(t, runRound(context.Background(), cfg, &parallel))
	require.Equal(t, sequential.String(), parallel.String())

	store, err := roundstore.Open(filepath.Join(cfg.DataDir,
		defaultDbFilename))
	require.NoError(t, err)
	defer store.Close()

	var rounds int
	err = store.ForEachRound(func(r *roundstore.Record) error {
		rounds++
		require.Len(t, r.Leftovers, 6)
		require.Equal(t, int64(1000), int64(r.FeeRate))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, rounds)
}

func TestRunRoundGroups(t *testing.T) {
	t.Parallel()

	cfg := testCLIConfig(t)
	cfg.Groups = 3
	cfg.NoStore = true

	var report bytes.Buffer
	require.NoError(t, runRound(context.Background(), cfg, &report))
	require.Contains(t, report.String(), "Participants:         3\n")

	_, err := os.Stat(cfg.DataDir)
	require.True(t, os.IsNotExist(err))
}
