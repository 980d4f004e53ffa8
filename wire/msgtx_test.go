// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/landaverdend/btcwebtools/chainhash"
	"github.com/stretchr/testify/require"
)

// legacyTxHex is a mainnet P2PKH spend with one input and two outputs.
const legacyTxHex = "0100000001813f79011acb80925dfe69b3def355fe914bd1d96a3f5f" +
	"71bf8303c6a989c7d1000000006b483045022100ed81ff192e75a3fd2304004dcadb746f" +
	"a5e24c5031ccfcf21320b0277457c98f02207a986d955c6e0cb35d446a89d3f56100f4d7" +
	"f67801c31967743a9c8e10615bed01210349fc4e631e3624a545de3f89f5d8684c7b8138" +
	"bd94bdd531d2e213bf016b278afeffffff02a135ef01000000001976a914bc3b654dca7e" +
	"56b04dca18f2566cdaf02e8d9ada88ac99c39800000000001976a9141c4bc762dd5423e3" +
	"32166702cb75f40df79fea1288ac19430600"

// Parts of a version 2 P2WPKH spend with a two item witness.
var (
	segwitSig    = "30" + strings.Repeat("44", 70)
	segwitPubKey = "02" + strings.Repeat("55", 32)
	segwitTxHex  = "02000000" + "0001" + "01" +
		strings.Repeat("ab", 32) + "01000000" + "00" + "fdffffff" +
		"01" + "a086010000000000" + "16" + "0014" + strings.Repeat("11", 20) +
		"02" + "47" + segwitSig + "21" + segwitPubKey +
		"00000000"
)

func hexToBytes(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic("invalid hex in source file: " + s)
	}
	return b
}

// TestLegacyTx decodes a known legacy transaction and checks every field.
func TestLegacyTx(t *testing.T) {
	t.Parallel()

	tx, err := NewMsgTxFromHex(legacyTxHex)
	require.NoError(t, err)

	require.EqualValues(t, 1, tx.Version)
	require.False(t, tx.HasWitness())
	require.False(t, tx.IsCoinBase())
	require.EqualValues(t, 410393, tx.LockTime)

	require.Len(t, tx.TxIn, 1)
	in := tx.TxIn[0]
	require.Equal(t,
		"d1c789a9c60383bf715f3f6ad9d14b91fe55f3deb369fe5d9280cb1a01793f81",
		in.PreviousOutPoint.Hash.String())
	require.EqualValues(t, 0, in.PreviousOutPoint.Index)
	require.EqualValues(t, 0xfffffffe, in.Sequence)
	require.Len(t, in.SignatureScript, 107)
	require.Equal(t, byte(0x48), in.SignatureScript[0])

	require.Len(t, tx.TxOut, 2)
	require.EqualValues(t, 32454049, tx.TxOut[0].Value)
	require.Equal(t, "76a914bc3b654dca7e56b04dca18f2566cdaf02e8d9ada88ac",
		hex.EncodeToString(tx.TxOut[0].PkScript))
	require.EqualValues(t, 10011545, tx.TxOut[1].Value)
	require.Equal(t, "76a9141c4bc762dd5423e332166702cb75f40df79fea1288ac",
		hex.EncodeToString(tx.TxOut[1].PkScript))

	require.Equal(t, legacyTxHex, tx.Hex())
	require.Equal(t, 226, tx.SerializeSize())
	require.Equal(t, tx.SerializeSize(), tx.SerializeSizeStripped())
	require.Equal(t, 904, tx.Weight())
	require.Equal(t, 226, tx.VSize())

	// Without witness data both hashes commit to the same bytes.
	require.Equal(t, chainhash.DoubleHashH(hexToBytes(legacyTxHex)), tx.TxHash())
	require.Equal(t, tx.TxHash(), tx.WitnessHash())
}

// TestSegwitTx decodes a witness transaction and checks the witness stack.
func TestSegwitTx(t *testing.T) {
	t.Parallel()

	tx, err := NewMsgTxFromHex(segwitTxHex)
	require.NoError(t, err)

	require.EqualValues(t, 2, tx.Version)
	require.True(t, tx.HasWitness())
	require.Len(t, tx.TxIn, 1)
	require.Empty(t, tx.TxIn[0].SignatureScript)
	require.EqualValues(t, 0xfffffffd, tx.TxIn[0].Sequence)
	require.EqualValues(t, 1, tx.TxIn[0].PreviousOutPoint.Index)

	wit := tx.TxIn[0].Witness
	require.Len(t, wit, 2)
	require.Len(t, wit[0], 71)
	require.Len(t, wit[1], 33)
	require.Equal(t, segwitSig, hex.EncodeToString(wit[0]))
	require.Equal(t, segwitPubKey, hex.EncodeToString(wit[1]))

	require.Len(t, tx.TxOut, 1)
	require.EqualValues(t, 100000, tx.TxOut[0].Value)

	require.Equal(t, segwitTxHex, tx.Hex())
	require.Equal(t, 191, tx.SerializeSize())
	require.Equal(t, 82, tx.SerializeSizeStripped())
	require.Equal(t, 437, tx.Weight())
	require.Equal(t, 110, tx.VSize())

	// The txid commits to the stripped encoding only.
	var stripped bytes.Buffer
	require.NoError(t, tx.SerializeNoWitness(&stripped))
	require.Len(t, stripped.Bytes(), 82)
	require.Equal(t, chainhash.DoubleHashH(stripped.Bytes()), tx.TxHash())
	require.NotEqual(t, tx.TxHash(), tx.WitnessHash())
}

// TestTxDecodeErrors performs negative tests against decoding malformed
// transactions.
func TestTxDecodeErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        string
		outOfBnds bool
	}{{
		name: "invalid hex",
		in:   "01000000zz",
	}, {
		name:      "truncated version",
		in:        "010000",
		outOfBnds: true,
	}, {
		name:      "truncated locktime",
		in:        legacyTxHex[:len(legacyTxHex)-2],
		outOfBnds: true,
	}, {
		name: "trailing bytes",
		in:   legacyTxHex + "00",
	}, {
		name: "bad witness flag",
		in:   "01000000" + "0002" + segwitTxHex[12:],
	}, {
		name: "marker with empty witnesses",
		in: "02000000" + "0001" + "01" + strings.Repeat("ab", 32) +
			"01000000" + "00" + "fdffffff" + "00" + "00" + "00000000",
	}, {
		name: "input count larger than payload",
		in:   "01000000" + "fdff00" + strings.Repeat("00", 40),
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			_, err := NewMsgTxFromHex(test.in)
			require.Error(t, err)

			if test.outOfBnds {
				require.ErrorIs(t, err, ErrOutOfBounds)
				return
			}
			var msgErr *MessageError
			require.True(t, errors.As(err, &msgErr), "got %v", err)
		})
	}
}

// TestTxBreakdown ensures the labeled fields tile the serialization.
func TestTxBreakdown(t *testing.T) {
	t.Parallel()

	for _, txHex := range []string{legacyTxHex, segwitTxHex} {
		tx, err := NewMsgTxFromHex(txHex)
		require.NoError(t, err)

		fields := tx.Breakdown()
		require.Equal(t, txHex, hex.EncodeToString(fields.Bytes()))

		off := 0
		for _, f := range fields {
			require.Equal(t, off, f.Offset, f.Name)
			off += len(f.Raw)
		}

		require.Equal(t, "version", fields[0].Name)
		last := fields[len(fields)-1]
		require.Equal(t, "locktime", last.Name)
	}

	tx, err := NewMsgTxFromHex(legacyTxHex)
	require.NoError(t, err)
	fields := tx.Breakdown()
	require.Equal(t, "410393", fields[len(fields)-1].Value)
	require.Equal(t, "input 0 sequence", fields[6].Name)
	require.Equal(t, "0xfffffffe", fields[6].Value)
}

// TestTxCopy ensures a copied transaction shares no memory with its source.
func TestTxCopy(t *testing.T) {
	t.Parallel()

	tx, err := NewMsgTxFromHex(segwitTxHex)
	require.NoError(t, err)

	dup := tx.Copy()
	require.Equal(t, tx.Hex(), dup.Hex())

	dup.TxIn[0].Witness[0][0] ^= 0xff
	dup.TxOut[0].PkScript[0] ^= 0xff
	dup.TxIn[0].SignatureScript = []byte{0x51}

	require.Equal(t, segwitTxHex, tx.Hex())
	require.NotEqual(t, tx.Hex(), dup.Hex())
}

// TestIsCoinBase tests the coinbase detection rules.
func TestIsCoinBase(t *testing.T) {
	t.Parallel()

	coinbase := NewMsgTx(TxVersion)
	coinbase.AddTxIn(NewTxIn(NewOutPoint(&chainhash.Hash{}, MaxPrevOutIndex),
		[]byte{0x04, 0xff, 0xff, 0x00, 0x1d}, nil))
	coinbase.AddTxOut(NewTxOut(5000000000, []byte{0x51}))
	require.True(t, coinbase.IsCoinBase())

	// Round trip through the wire encoding.
	decoded, err := NewMsgTxFromBytes(coinbase.Bytes())
	require.NoError(t, err)
	require.True(t, decoded.IsCoinBase())

	notCoinbase := coinbase.Copy()
	notCoinbase.TxIn[0].PreviousOutPoint.Index = 0
	require.False(t, notCoinbase.IsCoinBase())

	twoInputs := coinbase.Copy()
	twoInputs.AddTxIn(coinbase.TxIn[0])
	require.False(t, twoInputs.IsCoinBase())
}
