// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/internal/cfgutil"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
	flags "github.com/jessevdk/go-flags"
)

const (
	defaultLogLevel    = "info"
	defaultLogDirname  = "logs"
	defaultLogFilename = "btcmix.log"
	defaultDbFilename  = "rounds.db"

	defaultMinOutput btcutil.Amount = 5000
	defaultMaxOutput btcutil.Amount = 1000 * btcutil.SatoshiPerBitcoin
)

var (
	defaultAppDataDir = btcutil.AppDataDir("btcmix", false)
	defaultLogDir     = filepath.Join(defaultAppDataDir, defaultLogDirname)
	defaultFeeRate    = unit.NewSatPerVByte(2, 1)

	// minRelayFeeRate is the default minimum relay fee rate of bitcoind
	// and btcd.
	minRelayFeeRate = unit.NewSatPerVByte(1, 1)
)

type config struct {
	InputFile   string                   `short:"i" long:"inputs" description:"File listing the inputs of the round, one participant per line"`
	FeeRate     *cfgutil.FeeRateFlag     `long:"feerate" description:"Mining fee rate of the round in sat/vB"`
	MinOutput   *cfgutil.AmountFlag      `long:"minoutput" description:"Smallest allowed output amount in BTC (or with a sat suffix)"`
	MaxOutput   *cfgutil.AmountFlag      `long:"maxoutput" description:"Largest allowed output amount in BTC (or with a sat suffix)"`
	ScriptTypes *cfgutil.ScriptTypesFlag `long:"scripttypes" description:"Comma separated output script types {p2wpkh, p2tr}"`
	Seed        uint64                   `long:"seed" description:"Seed for a reproducible round, 0 draws a random round"`
	Groups      int                      `long:"groups" description:"Pool all inputs and split them randomly into this many participants"`
	Workers     int                      `long:"workers" description:"Number of participants decomposed concurrently, 0 uses all cores"`
	DataDir     string                   `short:"b" long:"datadir" description:"Directory to store mixed rounds"`
	LogDir      string                   `long:"logdir" description:"Directory to log output"`
	NoStore     bool                     `long:"nostore" description:"Do not store the mixed round"`
	DebugLevel  string                   `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
}

// loadConfig initializes and parses the config using command line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Parse CLI options and overwrite/add any specified options
//  3. Validate the options and initialize logging
func loadConfig() (*config, []string, error) {
	cfg := config{
		FeeRate:   cfgutil.NewFeeRateFlag(defaultFeeRate),
		MinOutput: cfgutil.NewAmountFlag(defaultMinOutput),
		MaxOutput: cfgutil.NewAmountFlag(defaultMaxOutput),
		ScriptTypes: cfgutil.NewScriptTypesFlag(
			txsizes.P2WPKH, txsizes.P2TR,
		),
		DataDir:    defaultAppDataDir,
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.Parse()
	if err != nil {
		var e *flags.Error
		if !errors.As(err, &e) || e.Type != flags.ErrHelp {
			parser.WriteHelp(os.Stderr)
		}
		return nil, nil, err
	}

	funcName := "loadConfig"
	usageMessage := fmt.Sprintf("Use %s -h to show usage",
		filepath.Base(os.Args[0]))

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", supportedSubsystems())
		os.Exit(0)
	}

	if err := parseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		err := fmt.Errorf("%s: %v", funcName, err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	if cfg.InputFile == "" {
		err := fmt.Errorf("%s: an input file must be given with "+
			"--inputs", funcName)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}
	cfg.InputFile = cfgutil.CleanAndExpandPath(cfg.InputFile)
	exists, err := cfgutil.FileExists(cfg.InputFile)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		err := fmt.Errorf("%s: input file %s does not exist",
			funcName, cfg.InputFile)
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if cfg.Groups < 0 || cfg.Workers < 0 {
		err := fmt.Errorf("%s: --groups and --workers may not be "+
			"negative", funcName)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, nil, err
	}

	cfg.DataDir = cfgutil.CleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = cfgutil.CleanAndExpandPath(cfg.LogDir)

	// Initialize the log rotator only after the log level has been
	// validated so an invalid level does not leave an empty log file.
	err = initLogRotator(filepath.Join(cfg.LogDir, defaultLogFilename))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, nil, err
	}

	if cfg.FeeRate.LessThan(minRelayFeeRate) {
		log.Warnf("Fee rate %v is below the default minimum relay fee "+
			"rate of %v, the transaction may not propagate",
			cfg.FeeRate.SatPerVByte, minRelayFeeRate)
	}

	return &cfg, remainingArgs, nil
}
