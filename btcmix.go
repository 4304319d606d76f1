// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/internal/randutil"
	"github.com/btcsuite/btcmix/mixer"
	"github.com/btcsuite/btcmix/roundstore"
)

func main() {
	// Work around defer not working after os.Exit.
	if err := btcmixMain(); err != nil {
		os.Exit(1)
	}
}

// btcmixMain is a work-around main function that is required since deferred
// functions (such as log flushing) are not called with calls to os.Exit.
// Instead, main runs this function and checks for a non-nil error, at which
// point any defers have already run, and if the error is non-nil, the program
// can be exited with an error exit status.
func btcmixMain() error {
	// Load configuration and parse command line.  This function also
	// initializes logging and configures it accordingly.
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() {
		if logRotator != nil {
			logRotator.Close()
		}
	}()

	ctx, cancel := interruptContext()
	defer cancel()

	if err := runRound(ctx, cfg, os.Stdout); err != nil {
		log.Errorf("Unable to mix round: %v", err)
		return err
	}
	return nil
}

// newRand returns the random source for the round.
func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return randutil.NewShared()
	}
	return randutil.NewSeeded(seed)
}

// runRound mixes the round described by cfg and writes a report to w.
func runRound(ctx context.Context, cfg *config, w io.Writer) error {
	f, err := os.Open(cfg.InputFile)
	if err != nil {
		return err
	}
	participants, err := parseParticipants(f, cfg.FeeRate.SatPerVByte)
	f.Close()
	if err != nil {
		return fmt.Errorf("unable to read %s: %w", cfg.InputFile, err)
	}

	m, err := mixer.New(mixer.Config{
		FeeRate:                cfg.FeeRate.SatPerVByte,
		MinAllowedOutputAmount: cfg.MinOutput.Amount,
		MaxAllowedOutputAmount: cfg.MaxOutput.Amount,
		AllowedOutputTypes:     cfg.ScriptTypes.Types,
		Rand:                   newRand(cfg.Seed),
	})
	if err != nil {
		return err
	}

	if cfg.Groups > 0 {
		participants, err = m.RandomInputGroups(
			flattenInputs(participants), cfg.Groups,
		)
		if err != nil {
			return err
		}
	}

	log.Infof("Mixing %d participants at %v", len(participants),
		m.FeeRate())

	var roundLog *mixer.RoundLog
	if cfg.Workers == 1 {
		roundLog, err = m.MixRound(participants)
	} else {
		roundLog, err = m.CompleteMixParallel(ctx, participants,
			cfg.Workers)
	}
	if err != nil {
		return err
	}

	writeReport(w, roundLog)

	if cfg.NoStore {
		return nil
	}
	return storeRound(cfg, m, roundLog)
}

// storeRound saves the round in the round store of the data directory.
func storeRound(cfg *config, m *mixer.Mixer, roundLog *mixer.RoundLog) error {
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return err
	}

	store, err := roundstore.Open(filepath.Join(cfg.DataDir,
		defaultDbFilename))
	if err != nil {
		return err
	}
	defer store.Close()

	record := roundstore.NewRecord(roundLog, m.FeeRate(), time.Now())
	id, err := store.PutRound(record)
	if err != nil {
		return err
	}

	log.Infof("Stored round %d", id)
	return nil
}

// writeReport prints the outputs of a round and its statistics.
func writeReport(w io.Writer, roundLog *mixer.RoundLog) {
	stats := mixer.Analyze(roundLog, roundLog.Denominations)

	fmt.Fprintf(w, "Participants:         %d\n", stats.Participants)
	fmt.Fprintf(w, "Outputs:              %d (%d change)\n", stats.Outputs,
		stats.ChangeOutputs)
	fmt.Fprintf(w, "Total output:         %v\n", stats.TotalOutput)
	fmt.Fprintf(w, "Output fees:          %v\n", stats.TotalFees)
	fmt.Fprintf(w, "Leftover to miners:   %v\n", stats.TotalLeftover)
	fmt.Fprintf(w, "Median anonymity set: %d\n", stats.MedianAnonymitySet)
	fmt.Fprintf(w, "Unique outputs:       %d (%.1f%%)\n",
		stats.UniqueOutputs, 100*stats.UniqueShare())

	amounts := make([]btcutil.Amount, 0, len(stats.AnonymitySets))
	for amount := range stats.AnonymitySets {
		amounts = append(amounts, amount)
	}
	slices.Sort(amounts)
	slices.Reverse(amounts)

	fmt.Fprintln(w)
	for _, amount := range amounts {
		fmt.Fprintf(w, "%14d sat  x%d\n", int64(amount),
			stats.AnonymitySets[amount])
	}
}
