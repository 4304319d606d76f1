// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/mixer"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
)

// parseParticipants reads the inputs of every participant of a round.  Each
// non-empty line lists the inputs of one participant as satoshi amounts, each
// optionally followed by a colon and the script type it spends, either by
// name or as the hex encoded pkScript of the spent output.  The type
// defaults to p2wpkh.  Everything after a # is ignored.
//
//	# three participants
//	150000 2500000:p2tr
//	99000:nested
//	40000:0014751e76e8199196d454941c45d1b3a323f1433bd6
func parseParticipants(r io.Reader,
	feeRate unit.SatPerVByte) ([][]mixer.Input, error) {

	var participants [][]mixer.Input

	scanner := bufio.NewScanner(r)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		inputs := make([]mixer.Input, 0, len(fields))
		for _, field := range fields {
			in, err := parseInput(field, feeRate)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			inputs = append(inputs, in)
		}
		participants = append(participants, inputs)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return participants, nil
}

// parseInput parses a single amount[:scripttype] field.
func parseInput(field string, feeRate unit.SatPerVByte) (mixer.Input, error) {
	amountStr, typeStr, hasType := strings.Cut(field, ":")

	amount, err := strconv.ParseInt(amountStr, 10, 64)
	if err != nil || amount <= 0 {
		return mixer.Input{}, fmt.Errorf("invalid input amount %q",
			amountStr)
	}

	scriptType := txsizes.P2WPKH
	if hasType {
		scriptType, err = parseScriptType(typeStr)
		if err != nil {
			return mixer.Input{}, err
		}
	}

	in := mixer.NewInput(btcutil.Amount(amount), scriptType, feeRate)
	if in.EffectiveValue <= 0 {
		return mixer.Input{}, fmt.Errorf("input of %d sat does not "+
			"cover its %v spend fee", amount, feeRate)
	}
	return in, nil
}

// parseScriptType accepts a script type name or a hex encoded pkScript.
func parseScriptType(s string) (txsizes.ScriptType, error) {
	scriptType, err := txsizes.ParseScriptType(s)
	if err == nil {
		return scriptType, nil
	}

	pkScript, hexErr := hex.DecodeString(s)
	if hexErr != nil {
		return 0, err
	}
	scriptType, err = txsizes.ScriptTypeFromPkScript(pkScript)
	if err != nil {
		return 0, fmt.Errorf("pkScript %s: %w", s, err)
	}
	return scriptType, nil
}

// flattenInputs pools the inputs of all participants.
func flattenInputs(participants [][]mixer.Input) []mixer.Input {
	var inputs []mixer.Input
	for _, p := range participants {
		inputs = append(inputs, p...)
	}
	return inputs
}
