// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/landaverdend/btcwebtools/chainhash"
	"github.com/landaverdend/btcwebtools/wire"
)

// legacyTxHex is a mainnet transaction spending one pay-to-pubkey-hash
// output whose script is p2pkhScriptHex.
const legacyTxHex = "0100000001813f79011acb80925dfe69b3def355fe914bd1d96a3f5f" +
	"71bf8303c6a989c7d1000000006b483045022100ed81ff192e75a3fd2304004dcadb746f" +
	"a5e24c5031ccfcf21320b0277457c98f02207a986d955c6e0cb35d446a89d3f56100f4d7" +
	"f67801c31967743a9c8e10615bed01210349fc4e631e3624a545de3f89f5d8684c7b8138" +
	"bd94bdd531d2e213bf016b278afeffffff02a135ef01000000001976a914bc3b654dca7e" +
	"56b04dca18f2566cdaf02e8d9ada88ac99c39800000000001976a9141c4bc762dd5423e3" +
	"32166702cb75f40df79fea1288ac19430600"

// legacySigHash is the SIGHASH_ALL signature hash of input 0 of legacyTxHex.
const legacySigHash = "27e0c5994dec7824e56dec6b2fcb342eb7cdb0d0957c2fce9882f715e85d81a6"

// legacyTxContext returns the context for input 0 of legacyTxHex.
func legacyTxContext(t *testing.T) *TxContext {
	t.Helper()

	tx, err := wire.NewMsgTxFromHex(legacyTxHex)
	require.NoError(t, err)

	prevOuts := []PrevOut{{
		PkScript:   hexToBytes(p2pkhScriptHex),
		Value:      42505594,
		ScriptType: "p2pkh",
	}}
	txCtx, err := NewTxContext(tx, prevOuts, 0)
	require.NoError(t, err)
	return txCtx
}

// TestCalcSignatureHash ensures the legacy signature hash matches the hash
// the input's signature was made over.
func TestCalcSignatureHash(t *testing.T) {
	t.Parallel()

	txCtx := legacyTxContext(t)
	hash, err := CalcSignatureHash(hexToBytes(p2pkhScriptHex), SigHashAll,
		txCtx.Tx, 0)
	require.NoError(t, err)
	require.Equal(t, legacySigHash, hex.EncodeToString(hash))

	// Code separators are not committed to.
	withSep := append([]byte{OP_CODESEPARATOR},
		hexToBytes(p2pkhScriptHex)...)
	hash, err = CalcSignatureHash(withSep, SigHashAll, txCtx.Tx, 0)
	require.NoError(t, err)
	require.Equal(t, legacySigHash, hex.EncodeToString(hash))

	// Computing the hash leaves the transaction untouched.
	require.Equal(t, legacyTxHex, txCtx.Tx.Hex())

	// Each hash type commits to something different.
	seen := map[string]SigHashType{}
	for _, hashType := range []SigHashType{SigHashAll, SigHashNone,
		SigHashSingle, SigHashAll | SigHashAnyOneCanPay,
		SigHashNone | SigHashAnyOneCanPay} {

		hash, err := CalcSignatureHash(hexToBytes(p2pkhScriptHex),
			hashType, txCtx.Tx, 0)
		require.NoError(t, err)
		prev, dup := seen[string(hash)]
		require.False(t, dup, "%v and %v hash the same", prev, hashType)
		seen[string(hash)] = hashType
	}

	_, err = CalcSignatureHash(nil, SigHashAll, txCtx.Tx, 1)
	require.True(t, IsErrorCode(err, ErrInvalidIndex))
}

// TestCalcSignatureHashSingleBug ensures SIGHASH_SINGLE without a matching
// output hashes to one.
func TestCalcSignatureHashSingleBug(t *testing.T) {
	t.Parallel()

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 0}, nil, nil))
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Index: 1}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{OP_TRUE}))

	hash, err := CalcSignatureHash([]byte{OP_TRUE}, SigHashSingle, tx, 1)
	require.NoError(t, err)

	want := make([]byte, chainhash.HashSize)
	want[0] = 0x01
	require.Equal(t, want, hash)
}

// TestSigHashTypeString ensures hash types print the way disassemblers show
// them.
func TestSigHashTypeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   SigHashType
		want string
	}{
		{SigHashAll, "ALL"},
		{SigHashNone, "NONE"},
		{SigHashSingle, "SINGLE"},
		{SigHashAll | SigHashAnyOneCanPay, "ALL|ANYONECANPAY"},
		{SigHashOld, "0x00"},
	}
	for _, test := range tests {
		require.Equal(t, test.want, test.in.String())
	}
}

// TestRemoveOpcodeByData ensures only pushes of the exact data are removed.
func TestRemoveOpcodeByData(t *testing.T) {
	t.Parallel()

	script := hexToBytes("0201025102010352")
	require.Equal(t, hexToBytes("51020103"+"52"),
		removeOpcodeByData(script, []byte{1, 2}))
	require.Equal(t, script, removeOpcodeByData(script, []byte{9}))
	require.Equal(t, hexToBytes("0201025102010352"),
		removeOpcode(script, OP_CODESEPARATOR))
	require.Equal(t, hexToBytes("02010202010352"),
		removeOpcode(script, OP_1))
}

// TestCheckSigLegacy runs the pay-to-pubkey-hash input of the legacy
// transaction.
func TestCheckSigLegacy(t *testing.T) {
	t.Parallel()

	for _, include := range []bool{false, true} {
		txCtx := legacyTxContext(t)
		s, err := BuildUnlockingScript(txCtx, include)
		require.NoError(t, err)

		sigCache := NewSigCache(10)
		vm, err := NewEngine(s, txCtx, WithSigCache(sigCache))
		require.NoError(t, err)
		require.Equal(t, StrategyStandard, vm.Strategy())

		status, err := vm.Run()
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, status)

		sig := s.Command(0)
		if include {
			sig = s.Command(1)
		}
		require.True(t, sig.IsData())

		var hash chainhash.Hash
		copy(hash[:], hexToBytes(legacySigHash))
		pubKey := txCtx.TxIn().SignatureScript[len(txCtx.TxIn().SignatureScript)-33:]
		require.True(t, sigCache.Exists(hash, sig.Data[:len(sig.Data)-1],
			pubKey))

		// A second run is served by the cache.
		vm.Reset()
		status, err = vm.Run()
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, status)
	}
}

// TestCheckSigTampered ensures a signature over different transaction data
// does not verify.
func TestCheckSigTampered(t *testing.T) {
	t.Parallel()

	txCtx := legacyTxContext(t)
	txCtx.Tx.LockTime++

	s, err := BuildUnlockingScript(txCtx, false)
	require.NoError(t, err)
	vm, err := NewEngine(s, txCtx)
	require.NoError(t, err)

	status, err := vm.Run()
	require.Equal(t, StatusFailure, status)
	require.True(t, IsErrorCode(err, ErrEvalFalse), "got %v", err)

	// OP_CHECKSIGVERIFY fails on the spot.
	sigCmds, err := ParseScript(txCtx.TxIn().SignatureScript, false)
	require.NoError(t, err)
	cmds := append(sigCmds.Commands(),
		OpcodeCommand(OP_CHECKSIGVERIFY), OpcodeCommand(OP_TRUE))
	s, err = NewScript(cmds)
	require.NoError(t, err)
	vm, err = NewEngine(s, txCtx)
	require.NoError(t, err)
	_, err = vm.Run()
	require.True(t, IsErrorCode(err, ErrCheckSigVerify), "got %v", err)
}
