// Copyright (c) 2026 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package roundstore

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcmix/mixer"
	"github.com/btcsuite/btcmix/pkg/unit"
	"github.com/btcsuite/btcmix/txsizes"
)

// recordVersion is the serialization version of a round record.
const recordVersion = 1

// Output is a stored round output.
type Output struct {
	Amount     btcutil.Amount
	ScriptType txsizes.ScriptType
}

// Record is a mixed round as kept in the store.
type Record struct {
	// ID is assigned by PutRound.
	ID uint64

	// Created is when the round was mixed, with second precision.
	Created time.Time

	// FeeRate is the fee rate of the round in sat/kvB.
	FeeRate btcutil.Amount

	Outputs   []Output
	Leftovers []btcutil.Amount
}

// NewRecord creates a record of a mixed round.
func NewRecord(roundLog *mixer.RoundLog, feeRate unit.SatPerVByte,
	created time.Time) *Record {

	r := &Record{
		Created:   created.Truncate(time.Second),
		FeeRate:   feeRate.FeePerKVByte().FeeForVSize(1000),
		Outputs:   make([]Output, len(roundLog.Outputs)),
		Leftovers: append([]btcutil.Amount(nil), roundLog.Leftovers...),
	}
	for i, o := range roundLog.Outputs {
		r.Outputs[i] = Output{Amount: o.Amount, ScriptType: o.ScriptType}
	}
	return r
}

// SatPerVByte returns the fee rate of the round in sat/vB.
func (r *Record) SatPerVByte() unit.SatPerVByte {
	return unit.NewSatPerKVByte(r.FeeRate, 1000).FeePerVByte()
}

// serializeRecord encodes a record as
//
//	[0]      version
//	[1:9]    creation time, unix seconds
//	[9:17]   fee rate, sat/kvB
//	[17:21]  output count
//	         outputs, 8 byte amount followed by 1 byte script type
//	         4 byte leftover count
//	         leftovers, 8 bytes each
//
// All integers are big endian.
func serializeRecord(r *Record) []byte {
	size := 1 + 8 + 8 + 4 + len(r.Outputs)*9 + 4 + len(r.Leftovers)*8
	buf := make([]byte, 0, size)

	buf = append(buf, recordVersion)
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.Created.Unix()))
	buf = binary.BigEndian.AppendUint64(buf, uint64(r.FeeRate))

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Outputs)))
	for _, o := range r.Outputs {
		buf = binary.BigEndian.AppendUint64(buf, uint64(o.Amount))
		buf = append(buf, byte(o.ScriptType))
	}

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(r.Leftovers)))
	for _, l := range r.Leftovers {
		buf = binary.BigEndian.AppendUint64(buf, uint64(l))
	}

	return buf
}

// deserializeRecord decodes a record written by serializeRecord.
func deserializeRecord(id uint64, v []byte) (*Record, error) {
	const headerSize = 1 + 8 + 8 + 4

	if len(v) < headerSize {
		str := fmt.Sprintf("round %d: short record of %d bytes", id,
			len(v))
		return nil, storeError(ErrData, str, nil)
	}
	if v[0] != recordVersion {
		str := fmt.Sprintf("round %d: unknown record version %d", id,
			v[0])
		return nil, storeError(ErrUnknownVersion, str, nil)
	}

	r := &Record{
		ID:      id,
		Created: time.Unix(int64(binary.BigEndian.Uint64(v[1:9])), 0),
		FeeRate: btcutil.Amount(binary.BigEndian.Uint64(v[9:17])),
	}

	numOutputs := int(binary.BigEndian.Uint32(v[17:21]))
	v = v[headerSize:]
	if len(v) < numOutputs*9+4 {
		str := fmt.Sprintf("round %d: record too short for %d outputs",
			id, numOutputs)
		return nil, storeError(ErrData, str, nil)
	}

	r.Outputs = make([]Output, numOutputs)
	for i := range r.Outputs {
		r.Outputs[i] = Output{
			Amount:     btcutil.Amount(binary.BigEndian.Uint64(v)),
			ScriptType: txsizes.ScriptType(v[8]),
		}
		v = v[9:]
	}

	numLeftovers := int(binary.BigEndian.Uint32(v))
	v = v[4:]
	if len(v) != numLeftovers*8 {
		str := fmt.Sprintf("round %d: expected %d leftover bytes, "+
			"got %d", id, numLeftovers*8, len(v))
		return nil, storeError(ErrData, str, nil)
	}

	r.Leftovers = make([]btcutil.Amount, numLeftovers)
	for i := range r.Leftovers {
		r.Leftovers[i] = btcutil.Amount(binary.BigEndian.Uint64(v))
		v = v[8:]
	}

	return r, nil
}
