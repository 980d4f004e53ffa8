// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package explorer

import (
	"encoding/hex"
	"fmt"

	"github.com/landaverdend/btcwebtools/txscript"
	"github.com/landaverdend/btcwebtools/wire"
)

// TxStatus represents transaction confirmation status.
type TxStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height,omitempty"`
	BlockHash   string `json:"block_hash,omitempty"`
	BlockTime   int64  `json:"block_time,omitempty"`
}

// TxInfo represents transaction information from the API.
type TxInfo struct {
	TxID     string   `json:"txid"`
	Version  int32    `json:"version"`
	LockTime uint32   `json:"locktime"`
	Size     int      `json:"size"`
	Weight   int      `json:"weight"`
	Fee      int64    `json:"fee"`
	Vin      []TxVin  `json:"vin"`
	Vout     []TxVout `json:"vout"`
	Status   TxStatus `json:"status"`
}

// TxVin represents a transaction input.  PrevOut is nil for coinbase
// inputs.
type TxVin struct {
	TxID         string   `json:"txid"`
	Vout         uint32   `json:"vout"`
	PrevOut      *TxVout  `json:"prevout,omitempty"`
	ScriptSig    string   `json:"scriptsig"`
	ScriptSigAsm string   `json:"scriptsig_asm"`
	Witness      []string `json:"witness,omitempty"`
	Sequence     uint32   `json:"sequence"`
	IsCoinbase   bool     `json:"is_coinbase"`
}

// TxVout represents a transaction output.
type TxVout struct {
	ScriptPubKey     string `json:"scriptpubkey"`
	ScriptPubKeyAsm  string `json:"scriptpubkey_asm"`
	ScriptPubKeyType string `json:"scriptpubkey_type"`
	ScriptPubKeyAddr string `json:"scriptpubkey_address,omitempty"`
	Value            int64  `json:"value"`
}

// UTXO represents an unspent transaction output.
type UTXO struct {
	TxID   string   `json:"txid"`
	Vout   uint32   `json:"vout"`
	Status TxStatus `json:"status"`
	Value  int64    `json:"value"`
}

// TxResult is a fetched transaction with the explorer's metadata.
type TxResult struct {
	Hex  string
	Info *TxInfo
}

// MsgTx decodes the raw transaction.
func (r *TxResult) MsgTx() (*wire.MsgTx, error) {
	return wire.NewMsgTxFromHex(r.Hex)
}

// PrevOuts returns the outputs spent by each input as reported by the
// explorer.  Inputs without a previous output, such as the coinbase input,
// get an empty PrevOut.
func (r *TxResult) PrevOuts() ([]txscript.PrevOut, error) {
	prevOuts := make([]txscript.PrevOut, len(r.Info.Vin))
	for i, vin := range r.Info.Vin {
		if vin.PrevOut == nil {
			continue
		}
		pkScript, err := hex.DecodeString(vin.PrevOut.ScriptPubKey)
		if err != nil {
			return nil, fmt.Errorf("input %d: invalid previous output "+
				"script: %w", i, err)
		}
		prevOuts[i] = txscript.PrevOut{
			PkScript:   pkScript,
			Value:      vin.PrevOut.Value,
			ScriptType: vin.PrevOut.ScriptPubKeyType,
		}
	}
	return prevOuts, nil
}

// TxContext decodes the transaction and returns the context for input idx.
func (r *TxResult) TxContext(idx int) (*txscript.TxContext, error) {
	tx, err := r.MsgTx()
	if err != nil {
		return nil, err
	}
	prevOuts, err := r.PrevOuts()
	if err != nil {
		return nil, err
	}
	return txscript.NewTxContext(tx, prevOuts, idx)
}
