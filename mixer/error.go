// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mixer

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of error.
type ErrorCode int

// These constants are used to identify a specific MixError.
const (
	// ErrInvalidConfig indicates the mixer was constructed with invalid
	// round parameters.
	ErrInvalidConfig ErrorCode = iota

	// ErrInsufficientFunds indicates a participant registered less value
	// than the cheapest denomination costs. The participant should be
	// excluded from the round before it is retried.
	ErrInsufficientFunds

	// ErrTooFewInputs indicates a round does not have enough inputs to
	// derive a shared denomination ladder or vsize budget.
	ErrTooFewInputs

	// ErrValueCreated indicates a decomposition whose outputs cost more
	// than the participant's inputs provide.
	ErrValueCreated

	// ErrValueLost indicates a decomposition that leaves more value to the
	// miners than a change output could have recovered.
	ErrValueLost

	// ErrVsizeExceeded indicates a decomposition whose outputs do not fit
	// the participant's vsize allowance.
	ErrVsizeExceeded

	// ErrGroupingExhausted indicates no random grouping of inputs gave
	// every group enough value within the attempt budget.
	ErrGroupingExhausted
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInvalidConfig:     "ErrInvalidConfig",
	ErrInsufficientFunds: "ErrInsufficientFunds",
	ErrTooFewInputs:      "ErrTooFewInputs",
	ErrValueCreated:      "ErrValueCreated",
	ErrValueLost:         "ErrValueLost",
	ErrVsizeExceeded:     "ErrVsizeExceeded",
	ErrGroupingExhausted: "ErrGroupingExhausted",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Fatal returns whether an error of this kind must abort the whole round.
// Invariant violations are never recoverable by dropping the participant.
func (e ErrorCode) Fatal() bool {
	switch e {
	case ErrValueCreated, ErrValueLost, ErrVsizeExceeded,
		ErrGroupingExhausted:

		return true
	default:
		return false
	}
}

// MixError provides a single type for errors that can happen while
// decomposing amounts for a round.
type MixError struct {
	ErrorCode   ErrorCode // Describes the kind of error
	Description string    // Human readable description of the issue
	Err         error     // Underlying error
}

// Error satisfies the error interface and prints human-readable errors.
func (e MixError) Error() string {
	if e.Err != nil {
		return e.Description + ": " + e.Err.Error()
	}
	return e.Description
}

// Unwrap returns the underlying error, if any.
func (e MixError) Unwrap() error {
	return e.Err
}

// mixError creates a MixError given a set of arguments.
func mixError(c ErrorCode, desc string, err error) MixError {
	return MixError{ErrorCode: c, Description: desc, Err: err}
}

// IsError returns whether err is a MixError with a matching error code.
func IsError(err error, code ErrorCode) bool {
	var e MixError
	return errors.As(err, &e) && e.ErrorCode == code
}
