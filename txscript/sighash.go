// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/landaverdend/btcwebtools/chainhash"
	"github.com/landaverdend/btcwebtools/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is used
	// to identify which outputs are signed.
	sigHashMask = 0x1f
)

// String returns the hash type in the form used by script disassemblers,
// for example "ALL|ANYONECANPAY".
func (t SigHashType) String() string {
	var base string
	switch t & sigHashMask {
	case SigHashAll:
		base = "ALL"
	case SigHashNone:
		base = "NONE"
	case SigHashSingle:
		base = "SINGLE"
	default:
		base = fmt.Sprintf("0x%02x", uint32(t&sigHashMask))
	}
	if t&SigHashAnyOneCanPay != 0 {
		base += "|ANYONECANPAY"
	}
	return base
}

// removeOpcode removes every non-data command with the given opcode from a
// serialized script.  Scripts that fail to parse are returned unchanged.
func removeOpcode(script []byte, op byte) []byte {
	cmds, err := parseCommands(script, false)
	if err != nil {
		return script
	}

	var result []byte
	for _, cmd := range cmds {
		if !cmd.isData && cmd.Opcode == op {
			continue
		}
		result = cmd.appendTo(result)
	}
	return result
}

// removeOpcodeByData will return the script minus any pushes of the exact
// data passed.  Scripts that fail to parse are returned unchanged.
func removeOpcodeByData(script []byte, data []byte) []byte {
	if len(data) == 0 || !bytes.Contains(script, data) {
		return script
	}

	cmds, err := parseCommands(script, false)
	if err != nil {
		return script
	}

	var result []byte
	for _, cmd := range cmds {
		if cmd.isData && bytes.Equal(cmd.Data, data) {
			continue
		}
		result = cmd.appendTo(result)
	}
	return result
}

// CalcSignatureHash computes the legacy signature hash for input idx of tx
// using script as the subscript.  OP_CODESEPARATOR opcodes are removed from
// script first.
//
// A SigHashSingle signature for an input with no corresponding output
// commits to the value 1, mirroring a long standing consensus quirk.
func CalcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	// The SigHashSingle signature type signs only the corresponding input
	// and output (the output with the same index number as the input).
	//
	// Since transactions can have more inputs than outputs, this means it
	// is improper to use SigHashSingle on input indices that don't have a
	// corresponding output.
	//
	// A bug in the original Satoshi client implementation means specifying
	// an index that is out of range results in a signature hash of 1 (as a
	// uint256 little endian).
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:], nil
	}

	// Remove all instances of OP_CODESEPARATOR from the script.
	script = removeOpcode(script, OP_CODESEPARATOR)

	// Make a shallow copy of the transaction, zeroing out the script for
	// all inputs that are not currently being processed.
	txCopy := tx.Copy()
	for i := range txCopy.TxIn {
		txCopy.TxIn[i].Witness = nil
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = script
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0] // Empty slice.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		// Resize output array to up to and including requested index.
		txCopy.TxOut = txCopy.TxOut[:idx+1]

		// All but current output get zeroed out.
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}

		// Sequence on all other inputs is 0, too.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// Consensus treats undefined hashtypes like normal SigHashAll
		// for purposes of hash generation.
		fallthrough
	case SigHashOld:
		fallthrough
	case SigHashAll:
		// Nothing special here.
	}
	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	// The final hash is the double sha256 of both the serialized modified
	// transaction and the hash type (encoded as a 4-byte little-endian
	// value) appended.
	var wbuf bytes.Buffer
	wbuf.Grow(txCopy.SerializeSizeStripped() + 4)
	if err := txCopy.SerializeNoWitness(&wbuf); err != nil {
		return nil, err
	}
	var hashTypeBytes [4]byte
	binary.LittleEndian.PutUint32(hashTypeBytes[:], uint32(hashType))
	wbuf.Write(hashTypeBytes[:])
	return chainhash.DoubleHashB(wbuf.Bytes()), nil
}
