// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

// Field is one labeled byte range of a serialized transaction.
type Field struct {
	// Name identifies the field, for example "input 0 sequence".
	Name string

	// Offset is the position of the first byte of Raw in the full
	// serialization.
	Offset int

	// Raw holds the exact bytes written for the field.
	Raw []byte

	// Value is a human readable rendering of Raw.
	Value string
}

// Breakdown is the ordered list of fields making up a serialized
// transaction.  Concatenating the Raw bytes of every field reproduces the
// output of Serialize.
type Breakdown []Field

// Bytes concatenates the raw bytes of every field.
func (b Breakdown) Bytes() []byte {
	var n int
	for _, f := range b {
		n += len(f.Raw)
	}
	out := make([]byte, 0, n)
	for _, f := range b {
		out = append(out, f.Raw...)
	}
	return out
}

// Breakdown returns the labeled byte ranges of the transaction serialized
// with Serialize.
func (msg *MsgTx) Breakdown() Breakdown {
	enc := txEncoder{w: io.Discard, record: true}
	_ = msg.encode(&enc, true)
	return enc.fields
}

// txEncoder writes transaction fields to w, optionally recording each one.
// The first write error is sticky and later writes are dropped.
type txEncoder struct {
	w      io.Writer
	off    int
	record bool
	fields Breakdown
	err    error
}

func (e *txEncoder) put(name, value string, raw []byte) {
	if e.err != nil || len(raw) == 0 {
		return
	}
	if _, err := e.w.Write(raw); err != nil {
		e.err = err
		return
	}
	if e.record {
		e.fields = append(e.fields, Field{
			Name:   name,
			Offset: e.off,
			Raw:    raw,
			Value:  value,
		})
	}
	e.off += len(raw)
}

func (e *txEncoder) putVarInt(name string, val uint64) {
	e.put(name, strconv.FormatUint(val, 10), AppendVarInt(nil, val))
}

func (e *txEncoder) putVarBytes(name string, b []byte) {
	e.putVarInt(name+" length", uint64(len(b)))
	e.put(name, hex.EncodeToString(b), b)
}

// encode is the single serialization path shared by Serialize,
// SerializeNoWitness and Breakdown.
func (msg *MsgTx) encode(e *txEncoder, witness bool) error {
	e.put("version", strconv.FormatInt(int64(msg.Version), 10),
		littleEndian.AppendUint32(nil, uint32(msg.Version)))

	// If the encoding flag is set and the transaction has witness data,
	// then the marker and flag bytes are written before the inputs.
	doWitness := witness && msg.HasWitness()
	if doWitness {
		e.put("marker", "segwit marker", []byte{TxFlagMarker})
		e.put("flag", "segwit flag", []byte{WitnessFlag})
	}

	e.putVarInt("input count", uint64(len(msg.TxIn)))
	for i, ti := range msg.TxIn {
		prefix := fmt.Sprintf("input %d ", i)
		op := &ti.PreviousOutPoint
		e.put(prefix+"previous txid", op.Hash.String(), op.Hash[:])
		e.put(prefix+"previous output index",
			strconv.FormatUint(uint64(op.Index), 10),
			littleEndian.AppendUint32(nil, op.Index))
		e.putVarBytes(prefix+"scriptSig", ti.SignatureScript)
		e.put(prefix+"sequence", fmt.Sprintf("0x%08x", ti.Sequence),
			littleEndian.AppendUint32(nil, ti.Sequence))
	}

	e.putVarInt("output count", uint64(len(msg.TxOut)))
	for i, to := range msg.TxOut {
		prefix := fmt.Sprintf("output %d ", i)
		e.put(prefix+"amount", strconv.FormatInt(to.Value, 10)+" sat",
			littleEndian.AppendUint64(nil, uint64(to.Value)))
		e.putVarBytes(prefix+"scriptPubKey", to.PkScript)
	}

	if doWitness {
		for i, ti := range msg.TxIn {
			prefix := fmt.Sprintf("input %d witness", i)
			e.putVarInt(prefix+" item count", uint64(len(ti.Witness)))
			for j, item := range ti.Witness {
				e.putVarBytes(fmt.Sprintf("%s %d", prefix, j), item)
			}
		}
	}

	e.put("locktime", strconv.FormatUint(uint64(msg.LockTime), 10),
		littleEndian.AppendUint32(nil, msg.LockTime))

	return e.err
}
