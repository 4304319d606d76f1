// Copyright (c) 2015-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/roundstore"
	"github.com/jessevdk/go-flags"
)

var datadir = btcutil.AppDataDir("btcmix", false)

// Flags.
var opts = struct {
	Force  bool   `short:"f" description:"Force removal without prompt"`
	Drop   bool   `long:"drop" description:"Drop all stored rounds"`
	Round  uint64 `long:"round" description:"Only show the round with this id"`
	DbPath string `long:"db" description:"Path to round database"`
}{
	DbPath: filepath.Join(datadir, "rounds.db"),
}

func init() {
	_, err := flags.Parse(&opts)
	if err != nil {
		os.Exit(1)
	}
}

func yes(s string) bool {
	switch s {
	case "y", "Y", "yes", "Yes":
		return true
	default:
		return false
	}
}

func no(s string) bool {
	switch s {
	case "n", "N", "no", "No":
		return true
	default:
		return false
	}
}

func main() {
	os.Exit(mainInt())
}

func mainInt() int {
	fmt.Println("Database path:", opts.DbPath)
	_, err := os.Stat(opts.DbPath)
	if os.IsNotExist(err) {
		fmt.Println("Database file does not exist")
		return 1
	}

	if opts.Drop && !confirmDrop() {
		return 0
	}

	store, err := roundstore.Open(opts.DbPath)
	if err != nil {
		fmt.Println("Failed to open database:", err)
		return 1
	}
	defer store.Close()

	if opts.Drop {
		fmt.Println("Dropping stored rounds")
		if err := store.DropRounds(); err != nil {
			fmt.Println("Failed to drop rounds:", err)
			return 1
		}
		return 0
	}

	if opts.Round != 0 {
		r, err := store.FetchRound(opts.Round)
		if err != nil {
			fmt.Println(err)
			return 1
		}
		printRound(r, true)
		return 0
	}

	err = store.ForEachRound(func(r *roundstore.Record) error {
		printRound(r, false)
		return nil
	})
	if err != nil {
		fmt.Println("Failed to read rounds:", err)
		return 1
	}
	return 0
}

func confirmDrop() bool {
	for !opts.Force {
		fmt.Print("Drop all stored rounds? [y/N] ")

		scanner := bufio.NewScanner(bufio.NewReader(os.Stdin))
		if !scanner.Scan() {
			// Exit on EOF.
			return false
		}
		resp := scanner.Text()
		if yes(resp) {
			break
		}
		if no(resp) || resp == "" {
			return false
		}

		fmt.Println("Enter yes or no.")
	}
	return true
}

func printRound(r *roundstore.Record, outputs bool) {
	var leftover btcutil.Amount
	for _, l := range r.Leftovers {
		leftover += l
	}

	fmt.Printf("Round %d  %s  %v  %d participants  %d outputs  "+
		"%v leftover\n", r.ID, r.Created.Format("2006-01-02 15:04:05"),
		r.SatPerVByte(), len(r.Leftovers), len(r.Outputs), leftover)

	if !outputs {
		return
	}
	for _, o := range r.Outputs {
		fmt.Printf("  %14d sat  %v\n", int64(o.Amount), o.ScriptType)
	}
}
