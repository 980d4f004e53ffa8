// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/require"

	"github.com/landaverdend/btcwebtools/chainhash"
	"github.com/landaverdend/btcwebtools/wire"
)

// newKeys returns n freshly generated private keys.
func newKeys(t *testing.T, n int) []*btcec.PrivateKey {
	t.Helper()

	keys := make([]*btcec.PrivateKey, n)
	for i := range keys {
		key, err := btcec.NewPrivateKey()
		require.NoError(t, err)
		keys[i] = key
	}
	return keys
}

// appendPush appends the canonical push of each item to script.
func appendPush(script []byte, items ...[]byte) []byte {
	for _, item := range items {
		script = DataCommand(item).appendTo(script)
	}
	return script
}

// multiSigScript returns an m-of-len(keys) multisig script.
func multiSigScript(m int, keys []*btcec.PrivateKey) []byte {
	script := []byte{byte(OP_1 - 1 + m)}
	for _, key := range keys {
		script = appendPush(script, key.PubKey().SerializeCompressed())
	}
	return append(script, byte(OP_1-1+len(keys)), OP_CHECKMULTISIG)
}

// spendTx returns a one input transaction to be signed.
func spendTx() *wire.MsgTx {
	prevHash := chainhash.DoubleHashH([]byte("previous"))
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash, 0), nil, nil))
	tx.AddTxOut(wire.NewTxOut(90000, hexToBytes(p2pkhScriptHex)))
	return tx
}

// sign returns a SIGHASH_ALL signature of input 0 of tx over subScript.
func sign(t *testing.T, key *btcec.PrivateKey, subScript []byte,
	tx *wire.MsgTx) []byte {

	t.Helper()

	hash, err := CalcSignatureHash(subScript, SigHashAll, tx, 0)
	require.NoError(t, err)
	return append(ecdsa.Sign(key, hash).Serialize(), byte(SigHashAll))
}

// sectionKinds returns the kinds of the sections of s in order.
func sectionKinds(s *Script) []SectionKind {
	var kinds []SectionKind
	for _, sec := range s.Sections() {
		kinds = append(kinds, sec.Kind)
	}
	return kinds
}

// TestCheckMultiSig ensures signatures must match the public keys in order.
func TestCheckMultiSig(t *testing.T) {
	t.Parallel()

	keys := newKeys(t, 3)
	pkScript := multiSigScript(2, keys)

	tests := []struct {
		name    string
		signers []int
		want    []byte
	}{
		{"in order", []int{0, 1}, []byte{1}},
		{"skipping a key", []int{0, 2}, []byte{1}},
		{"out of order", []int{1, 0}, nil},
		{"same key twice", []int{1, 1}, nil},
	}

	for _, test := range tests {
		tx := spendTx()
		scriptSig := []byte{OP_0}
		for _, signer := range test.signers {
			scriptSig = appendPush(scriptSig,
				sign(t, keys[signer], pkScript, tx))
		}
		tx.TxIn[0].SignatureScript = scriptSig

		txCtx, err := NewTxContext(tx, []PrevOut{{
			PkScript:   pkScript,
			ScriptType: "multisig",
		}}, 0)
		require.NoError(t, err)

		s, err := BuildUnlockingScript(txCtx, false)
		require.NoError(t, err)
		require.Equal(t, []SectionKind{SectionScriptSig, SectionPubKey},
			sectionKinds(s))

		// A trailing OP_1 leaves the multisig result on the stack.
		cmds := append(s.Commands(), OpcodeCommand(OP_1))
		withResult, err := NewScript(cmds, s.Sections()...)
		require.NoError(t, err)
		vm, err := NewEngine(withResult, txCtx)
		require.NoError(t, err)
		_, err = vm.Run()
		require.True(t, IsErrorCode(err, ErrCleanStack), test.name)
		require.Equal(t, [][]byte{test.want, {1}}, vm.GetStack(),
			test.name)

		vm, err = NewEngine(s, txCtx)
		require.NoError(t, err)
		status, _ := vm.Run()
		if test.want != nil {
			require.Equal(t, StatusSuccess, status, test.name)
		} else {
			require.Equal(t, StatusFailure, status, test.name)
		}
	}
}

// TestCheckMultiSigCounts ensures malformed key and signature counts fail.
func TestCheckMultiSigCounts(t *testing.T) {
	t.Parallel()

	txCtx, err := NewTxContext(spendTx(), nil, 0)
	require.NoError(t, err)

	tests := []struct {
		name    string
		asm     string
		errCode ErrorCode
	}{
		{"too many keys", "0 0 21 OP_CHECKMULTISIG",
			ErrInvalidPubKeyCount},
		{"negative keys", "0 0 -1 OP_CHECKMULTISIG",
			ErrInvalidPubKeyCount},
		{"more sigs than keys", "0 0x01 0x01 2 0x01 0x02 1 " +
			"OP_CHECKMULTISIG", ErrInvalidSignatureCount},
		{"missing dummy", "0 0 OP_CHECKMULTISIG", ErrStackUnderflow},
		{"verify", "0 0 0 OP_CHECKMULTISIGVERIFY 0 OP_NOT", -1},
	}

	for _, test := range tests {
		s, err := CompileAsm(test.asm, txCtx, false)
		require.NoError(t, err, test.name)
		vm, err := NewEngine(s, txCtx)
		require.NoError(t, err)

		status, err := vm.Run()
		if test.errCode < 0 {
			require.Equal(t, StatusSuccess, status, "%s: %v",
				test.name, err)
			continue
		}
		require.True(t, IsErrorCode(err, test.errCode), "%s: %v",
			test.name, err)
	}
}

// TestPayToScriptHash runs a multisig redeem script through the P2SH
// strategy.
func TestPayToScriptHash(t *testing.T) {
	t.Parallel()

	keys := newKeys(t, 2)
	redeem := multiSigScript(1, keys)
	pkScript := appendPush([]byte{OP_HASH160}, chainhash.Hash160(redeem))
	pkScript = append(pkScript, OP_EQUAL)

	for _, include := range []bool{false, true} {
		tx := spendTx()
		sig := sign(t, keys[1], redeem, tx)
		tx.TxIn[0].SignatureScript = appendPush([]byte{OP_0}, sig, redeem)

		txCtx, err := NewTxContext(tx, []PrevOut{{
			PkScript:   pkScript,
			ScriptType: "p2sh",
		}}, 0)
		require.NoError(t, err)

		s, err := BuildUnlockingScript(txCtx, include)
		require.NoError(t, err)
		require.Equal(t, []SectionKind{SectionScriptSig, SectionPubKey,
			SectionRedeem}, sectionKinds(s))

		vm, err := NewEngine(s, txCtx)
		require.NoError(t, err)
		require.Equal(t, StrategyP2SH, vm.Strategy())
		status, err := vm.Run()
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, status)
	}

	// A redeem script that does not hash to the output fails when the
	// redeem section starts.
	tx := spendTx()
	other := multiSigScript(1, keys[:1])
	tx.TxIn[0].SignatureScript = appendPush([]byte{OP_0},
		sign(t, keys[0], other, tx), other)
	txCtx, err := NewTxContext(tx, []PrevOut{{PkScript: pkScript}}, 0)
	require.NoError(t, err)

	s, err := BuildUnlockingScript(txCtx, false)
	require.NoError(t, err)
	vm, err := NewEngine(s, txCtx)
	require.NoError(t, err)
	status, err := vm.Run()
	require.Equal(t, StatusFailure, status)
	require.True(t, IsErrorCode(err, ErrEvalFalse), "got %v", err)
	redeemSec, ok := s.SectionAt(vm.PC())
	require.True(t, ok)
	require.Equal(t, SectionRedeem, redeemSec.Kind)

	// The redeem script must be the last push of the scriptSig.
	tx.TxIn[0].SignatureScript = []byte{OP_0, OP_DROP}
	_, err = BuildUnlockingScript(txCtx, false)
	require.True(t, IsErrorCode(err, ErrMalformedEncoding))
}

// TestPayToWitnessScriptHash ensures the witness script only sees the
// witness items.
func TestPayToWitnessScriptHash(t *testing.T) {
	t.Parallel()

	witnessScript := []byte{OP_2, OP_EQUAL}
	pkScript := appendPush([]byte{OP_0}, chainhash.HashB(witnessScript))

	for _, include := range []bool{false, true} {
		tx := spendTx()
		tx.TxIn[0].Witness = wire.TxWitness{{0x02}, witnessScript}
		txCtx, err := NewTxContext(tx, []PrevOut{{
			PkScript:   pkScript,
			ScriptType: "v0_p2wsh",
		}}, 0)
		require.NoError(t, err)

		s, err := BuildUnlockingScript(txCtx, include)
		require.NoError(t, err)
		require.Equal(t, []SectionKind{SectionPubKey,
			SectionWitnessScript}, sectionKinds(s))

		vm, err := NewEngine(s, txCtx)
		require.NoError(t, err)
		require.Equal(t, StrategyP2WSH, vm.Strategy())
		status, err := vm.Run()
		require.NoError(t, err)
		require.Equal(t, StatusSuccess, status)
	}

	tx := spendTx()
	tx.TxIn[0].Witness = wire.TxWitness{{0x02}, {OP_3, OP_EQUAL}}
	txCtx, err := NewTxContext(tx, []PrevOut{{PkScript: pkScript}}, 0)
	require.NoError(t, err)
	_, err = BuildUnlockingScript(txCtx, false)
	require.True(t, IsErrorCode(err, ErrWitnessProgramMismatch))

	tx.TxIn[0].Witness = nil
	_, err = BuildUnlockingScript(txCtx, false)
	require.True(t, IsErrorCode(err, ErrWitnessProgramMismatch))
}

// TestPayToWitnessPubKeyHash ensures the key hash template is built from the
// witness program.
func TestPayToWitnessPubKeyHash(t *testing.T) {
	t.Parallel()

	pubKey := newKeys(t, 1)[0].PubKey().SerializeCompressed()
	program := chainhash.Hash160(pubKey)
	pkScript := appendPush([]byte{OP_0}, program)
	fakeSig := hexToBytes("300602010102010101")

	tx := spendTx()
	tx.TxIn[0].Witness = wire.TxWitness{fakeSig, pubKey}
	txCtx, err := NewTxContext(tx, []PrevOut{{
		PkScript:   pkScript,
		ScriptType: "v0_p2wpkh",
	}}, 0)
	require.NoError(t, err)

	s, err := BuildUnlockingScript(txCtx, false)
	require.NoError(t, err)
	require.Equal(t, []SectionKind{SectionWitness, SectionPubKey},
		sectionKinds(s))

	want := appendPush(nil, fakeSig, pubKey)
	want = append(want, OP_DUP, OP_HASH160)
	want = appendPush(want, program)
	want = append(want, OP_EQUALVERIFY, OP_CHECKSIG)
	require.Equal(t, want, s.Serialize())

	vm, err := NewEngine(s, txCtx)
	require.NoError(t, err)
	status, err := vm.Run()
	require.NoError(t, err)
	require.Equal(t, StatusSuccess, status)

	s, err = BuildUnlockingScript(txCtx, true)
	require.NoError(t, err)
	require.Equal(t, 10, s.Len())
	require.Equal(t, want, s.Serialize())
}

// TestBuildUnlockingScriptErrors ensures unsupported inputs are reported.
func TestBuildUnlockingScriptErrors(t *testing.T) {
	t.Parallel()

	// Coinbase inputs have nothing to unlock.
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{},
		wire.MaxPrevOutIndex), []byte{0x03, 0x01, 0x02, 0x03}, nil))
	coinbase.AddTxOut(wire.NewTxOut(5000000000, hexToBytes(p2pkhScriptHex)))
	txCtx, err := NewTxContext(coinbase, nil, 0)
	require.NoError(t, err)
	s, err := BuildUnlockingScript(txCtx, false)
	require.NoError(t, err)
	require.Zero(t, s.Len())
	require.Equal(t, []SectionKind{SectionCoinbase}, sectionKinds(s))

	tests := []struct {
		name     string
		prevOuts []PrevOut
		errCode  ErrorCode
	}{
		{"unknown previous output", nil, ErrMissingTxContext},
		{"null data", []PrevOut{{
			PkScript:   hexToBytes("6a04deadbeef"),
			ScriptType: "op_return",
		}}, ErrUnsupportedScriptType},
		{"taproot", []PrevOut{{
			PkScript:   append([]byte{OP_1, OP_DATA_32}, make([]byte, 32)...),
			ScriptType: "v1_p2tr",
		}}, ErrUnsupportedScriptType},
		{"nonstandard", []PrevOut{{
			PkScript: []byte{OP_TRUE},
		}}, ErrUnsupportedScriptType},
	}
	for _, test := range tests {
		txCtx, err := NewTxContext(spendTx(), test.prevOuts, 0)
		require.NoError(t, err)
		_, err = BuildUnlockingScript(txCtx, false)
		require.True(t, IsErrorCode(err, test.errCode), "%s: %v",
			test.name, err)
	}
}
