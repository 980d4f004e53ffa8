// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"

	"github.com/landaverdend/btcwebtools/chainhash"
)

const (
	// TxVersion is the current latest supported transaction version.
	TxVersion = 1

	// MaxTxInSequenceNum is the maximum sequence number the sequence field
	// of a transaction input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff

	// WitnessScaleFactor determines the level of "discount" witness data
	// receives compared to "base" data.
	WitnessScaleFactor = 4

	// TxFlagMarker is the first byte of the FLAG field in a bitcoin tx
	// message.  It allows decoders to distinguish a regular serialized
	// transaction from one that would require a different parsing logic.
	TxFlagMarker = 0x00

	// WitnessFlag is a flag specific to witness encoding.  If the TxFlagMarker
	// is encountered followed by the WitnessFlag, then it indicates a
	// transaction has witness data.
	WitnessFlag = 0x01
)

const (
	// minTxInPayload is the minimum payload size for a transaction input.
	// PreviousOutPoint.Hash + PreviousOutPoint.Index 4 bytes + Varint for
	// SignatureScript length 1 byte + Sequence 4 bytes.
	minTxInPayload = 9 + chainhash.HashSize

	// minTxOutPayload is the minimum payload size for a transaction output.
	// Value 8 bytes + Varint for PkScript length 1 byte.
	minTxOutPayload = 9
)

// OutPoint defines a bitcoin data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new bitcoin transaction outpoint point with the
// provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxWitness defines the witness for a TxIn.  A witness is to be interpreted
// as a slice of byte slices, or a stack with one or many elements.
type TxWitness [][]byte

// SerializeSize returns the number of bytes it would take to serialize the
// transaction input's witness.
func (t TxWitness) SerializeSize() int {
	// A varint to signal the number of elements the witness has.
	n := VarIntSerializeSize(uint64(len(t)))

	// For each element in the witness, we'll need a varint to signal the
	// size of the element, then finally the number of bytes the element
	// itself comprises.
	for _, witItem := range t {
		n += VarIntSerializeSize(uint64(len(witItem)))
		n += len(witItem)
	}

	return n
}

// TxIn defines a bitcoin transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Witness          TxWitness
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction input, excluding its witness.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of SignatureScript +
	// SignatureScript bytes.
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript)
}

// NewTxIn returns a new bitcoin transaction input with the provided
// previous outpoint point and signature script with a default sequence of
// MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte, witness [][]byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Witness:          witness,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a bitcoin transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of PkScript +
	// PkScript bytes.
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new bitcoin transaction output with the provided
// transaction value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// MsgTx represents a bitcoin transaction in either the legacy or the
// segregated witness encoding.  Scripts are kept as raw bytes; parsing them
// into commands is left to the txscript package.
//
// Use the AddTxIn and AddTxOut functions to build up the list of transaction
// inputs and outputs.
type MsgTx struct {
	Version  int32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// NewMsgTx returns a new bitcoin tx message with the given version and no
// transaction inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// NewMsgTxFromBytes decodes a complete serialized transaction.  Bytes left
// over after the locktime are an error.
func NewMsgTxFromBytes(b []byte) (*MsgTx, error) {
	r := NewByteReader(b)

	var msg MsgTx
	if err := msg.Deserialize(r); err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		str := fmt.Sprintf("%d trailing bytes after locktime at offset %d",
			r.Len(), r.Offset())
		return nil, messageError("NewMsgTxFromBytes", str)
	}

	return &msg, nil
}

// NewMsgTxFromHex decodes a hex encoded serialized transaction.
func NewMsgTxFromHex(s string) (*MsgTx, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		str := fmt.Sprintf("invalid transaction hex: %v", err)
		return nil, messageError("NewMsgTxFromHex", str)
	}
	return NewMsgTxFromBytes(b)
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// TxHash generates the Hash for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	return chainhash.DoubleHashRaw(msg.SerializeNoWitness)
}

// WitnessHash generates the hash of the transaction serialized according to
// the new witness serialization defined in BIP0141 and BIP0144.  The final
// output is used within the Segregated Witness commitment of all the witnesses
// within a block.  If a transaction has no witness data, then the witness
// hash, is the same as its txid.
func (msg *MsgTx) WitnessHash() chainhash.Hash {
	if msg.HasWitness() {
		return chainhash.DoubleHashRaw(msg.Serialize)
	}

	return msg.TxHash()
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	newTx := MsgTx{
		Version:  msg.Version,
		TxIn:     make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:    make([]*TxOut, 0, len(msg.TxOut)),
		LockTime: msg.LockTime,
	}

	for _, oldTxIn := range msg.TxIn {
		newTxIn := TxIn{
			PreviousOutPoint: oldTxIn.PreviousOutPoint,
			SignatureScript:  cloneBytes(oldTxIn.SignatureScript),
			Sequence:         oldTxIn.Sequence,
		}

		if len(oldTxIn.Witness) != 0 {
			newTxIn.Witness = make([][]byte, len(oldTxIn.Witness))
			for i, oldItem := range oldTxIn.Witness {
				newTxIn.Witness[i] = cloneBytes(oldItem)
			}
		}

		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	for _, oldTxOut := range msg.TxOut {
		newTx.TxOut = append(newTx.TxOut, &TxOut{
			Value:    oldTxOut.Value,
			PkScript: cloneBytes(oldTxOut.PkScript),
		})
	}

	return &newTx
}

// cloneBytes returns a copy of b, or nil when b is empty.
func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// IsCoinBase determines whether or not a transaction is a coinbase.  A
// coinbase is a special transaction created by miners that has no inputs.
// This is represented in the block chain by a transaction with a single input
// that has a previous output transaction index set to the maximum value along
// with a zero hash.
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}

	prevOut := &msg.TxIn[0].PreviousOutPoint
	return prevOut.Index == MaxPrevOutIndex &&
		prevOut.Hash == chainhash.Hash{}
}

// HasWitness returns false if none of the inputs within the transaction
// contain witness data, true false otherwise.
func (msg *MsgTx) HasWitness() bool {
	for _, txIn := range msg.TxIn {
		if len(txIn.Witness) != 0 {
			return true
		}
	}

	return false
}

// Deserialize decodes a transaction from r into the receiver.  Both the
// legacy encoding and the BIP0144 witness encoding are accepted; which one
// was read is reflected by HasWitness.
func (msg *MsgTx) Deserialize(r *ByteReader) error {
	version, err := r.ReadUint32()
	if err != nil {
		return err
	}
	msg.Version = int32(version)

	count, err := r.ReadVarInt()
	if err != nil {
		return err
	}

	// A count of zero (meaning no TxIn's to the uninitiated) means that the
	// value is a TxFlagMarker, and hence indicates the presence of a flag.
	var segwit bool
	if count == TxFlagMarker {
		flag, err := r.ReadByte()
		if err != nil {
			return err
		}
		if flag != WitnessFlag {
			str := fmt.Sprintf("witness tx but flag byte is %x", flag)
			return messageError("MsgTx.Deserialize", str)
		}
		segwit = true

		count, err = r.ReadVarInt()
		if err != nil {
			return err
		}
	}

	// Prevent more input transactions than could possibly fit into the
	// remaining bytes.
	if count > uint64(r.Len()/minTxInPayload) {
		str := fmt.Sprintf("too many input transactions to fit into "+
			"remaining %d bytes [count %d]", r.Len(), count)
		return messageError("MsgTx.Deserialize", str)
	}

	msg.TxIn = make([]*TxIn, count)
	for i := range msg.TxIn {
		ti := new(TxIn)
		if err := readTxIn(r, ti); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	count, err = r.ReadVarInt()
	if err != nil {
		return err
	}
	if count > uint64(r.Len()/minTxOutPayload) {
		str := fmt.Sprintf("too many output transactions to fit into "+
			"remaining %d bytes [count %d]", r.Len(), count)
		return messageError("MsgTx.Deserialize", str)
	}

	msg.TxOut = make([]*TxOut, count)
	for i := range msg.TxOut {
		to := new(TxOut)
		if err := readTxOut(r, to); err != nil {
			return err
		}
		msg.TxOut[i] = to
	}

	// If the transaction's flag byte isn't 0x00 at this point, then one or
	// more of its inputs has accompanying witness data.
	if segwit {
		for _, txin := range msg.TxIn {
			witCount, err := r.ReadVarInt()
			if err != nil {
				return err
			}

			// Every witness item carries at least a one byte length
			// prefix.
			if witCount > uint64(r.Len()) {
				str := fmt.Sprintf("too many witness items to fit "+
					"into remaining %d bytes [count %d]",
					r.Len(), witCount)
				return messageError("MsgTx.Deserialize", str)
			}

			if witCount == 0 {
				continue
			}
			txin.Witness = make([][]byte, witCount)
			for j := range txin.Witness {
				txin.Witness[j], err = r.ReadVarBytes("script witness item")
				if err != nil {
					return err
				}
			}
		}

		// A marker with no witness data behind it cannot be produced by
		// Serialize, so it would not round trip.
		if !msg.HasWitness() {
			return messageError("MsgTx.Deserialize",
				"witness flag set but all witnesses are empty")
		}
	}

	msg.LockTime, err = r.ReadUint32()
	return err
}

// readTxIn reads the next sequence of bytes from r as a transaction input.
func readTxIn(r *ByteReader, ti *TxIn) error {
	hash, err := r.ReadN(chainhash.HashSize)
	if err != nil {
		return err
	}
	copy(ti.PreviousOutPoint.Hash[:], hash)

	ti.PreviousOutPoint.Index, err = r.ReadUint32()
	if err != nil {
		return err
	}

	ti.SignatureScript, err = r.ReadVarBytes("transaction input signature script")
	if err != nil {
		return err
	}

	ti.Sequence, err = r.ReadUint32()
	return err
}

// readTxOut reads the next sequence of bytes from r as a transaction output.
func readTxOut(r *ByteReader, to *TxOut) error {
	value, err := r.ReadUint64()
	if err != nil {
		return err
	}
	to.Value = int64(value)

	to.PkScript, err = r.ReadVarBytes("transaction output public key script")
	return err
}

// Serialize encodes the transaction to w using the witness encoding when any
// input carries witness data and the legacy encoding otherwise.
func (msg *MsgTx) Serialize(w io.Writer) error {
	return msg.encode(&txEncoder{w: w}, true)
}

// SerializeNoWitness encodes the transaction to w in an identical manner to
// Serialize, however even if the source transaction has inputs with witness
// data, the old serialization format will still be used.
func (msg *MsgTx) SerializeNoWitness(w io.Writer) error {
	return msg.encode(&txEncoder{w: w}, false)
}

// Bytes returns the serialized form of the transaction in bytes.
func (msg *MsgTx) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	_ = msg.Serialize(buf)
	return buf.Bytes()
}

// Hex returns the lowercase hex encoding of Bytes.
func (msg *MsgTx) Hex() string {
	return hex.EncodeToString(msg.Bytes())
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction.
func (msg *MsgTx) SerializeSize() int {
	n := msg.baseSize()

	if msg.HasWitness() {
		// The marker, and flag fields take up two additional bytes.
		n += 2

		// Additionally, factor in the serialized size of each of the
		// witnesses for each txin.
		for _, txin := range msg.TxIn {
			n += txin.Witness.SerializeSize()
		}
	}

	return n
}

// SerializeSizeStripped returns the number of bytes it would take to serialize
// the transaction, excluding any included witness data.
func (msg *MsgTx) SerializeSizeStripped() int {
	return msg.baseSize()
}

// Weight returns the BIP0141 weight of the transaction: three times the
// stripped size plus the full size.
func (msg *MsgTx) Weight() int {
	return msg.baseSize()*(WitnessScaleFactor-1) + msg.SerializeSize()
}

// VSize returns the virtual size of the transaction, its weight divided by
// the witness scale factor and rounded up.
func (msg *MsgTx) VSize() int {
	return (msg.Weight() + WitnessScaleFactor - 1) / WitnessScaleFactor
}

// baseSize returns the serialized size of the transaction without accounting
// for any witness data.
func (msg *MsgTx) baseSize() int {
	// Version 4 bytes + LockTime 4 bytes + Serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}

	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}

	return n
}
