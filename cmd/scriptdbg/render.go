// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/davecgh/go-spew/spew"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/landaverdend/btcwebtools/txscript"
	"github.com/landaverdend/btcwebtools/wire"
)

// maxCellHex bounds how many hex characters of a field are shown per cell.
const maxCellHex = 72

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func shortHex(b []byte) string {
	s := hex.EncodeToString(b)
	if len(s) > maxCellHex {
		return s[:maxCellHex-3] + "..."
	}
	return s
}

// renderTx writes a summary of tx followed by its byte breakdown.
func renderTx(w io.Writer, tx *wire.MsgTx, prevOuts []txscript.PrevOut) {
	var in, out btcutil.Amount
	haveIn := prevOuts != nil
	for _, prevOut := range prevOuts {
		in += btcutil.Amount(prevOut.Value)
	}
	for _, txOut := range tx.TxOut {
		out += btcutil.Amount(txOut.Value)
	}

	hash := tx.TxHash()
	summary := newTable(w, "transaction")
	summary.AppendRows([]table.Row{
		{"txid", hash.String()},
		{"size", fmt.Sprintf("%d bytes, %d vbytes", tx.SerializeSize(), tx.VSize())},
		{"inputs", len(tx.TxIn)},
		{"outputs", fmt.Sprintf("%d, %v", len(tx.TxOut), out)},
	})
	if haveIn {
		summary.AppendRow(table.Row{"fee", in - out})
	}
	summary.Render()

	breakdown := newTable(w, "serialization")
	breakdown.AppendHeader(table.Row{"offset", "field", "raw", "value"})
	for _, f := range tx.Breakdown() {
		breakdown.AppendRow(table.Row{f.Offset, f.Name, shortHex(f.Raw),
			f.Value})
	}
	breakdown.Render()
}

// renderStack writes the items of a stack, top first.
func renderStack(w io.Writer, title string, items [][]byte) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"#", "hex", "number"})
	for i := len(items) - 1; i >= 0; i-- {
		num := ""
		if n, err := txscript.DecodeNumber(items[i]); err == nil {
			num = fmt.Sprint(n)
		}
		t.AppendRow(table.Row{len(items) - 1 - i, shortHex(items[i]), num})
	}
	if len(items) == 0 {
		t.AppendRow(table.Row{"", "(empty)", ""})
	}
	t.Render()
}

// renderScript writes the formatted script being executed.
func renderScript(w io.Writer, vm *txscript.Engine) error {
	formatted, err := vm.Script().Format()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%v strategy, %d commands\n%s\n", vm.Strategy(),
		vm.Script().Len(), formatted)
	return nil
}

// renderStep writes the command about to execute and the stacks after the
// previous step.
func renderStep(w io.Writer, step int, disasm string, snap txscript.Snapshot) {
	fmt.Fprintf(w, "step %d: %s\n", step, disasm)
	renderStack(w, "stack", snap.Stack)
	if len(snap.AltStack) > 0 {
		renderStack(w, "alt stack", snap.AltStack)
	}
}

// renderResult writes the final status of the engine.
func renderResult(w io.Writer, snap txscript.Snapshot) {
	fmt.Fprintf(w, "status: %v\n", snap.Status)
	if snap.Err != nil {
		fmt.Fprintf(w, "error: %v\n", snap.Err)
	}
	renderStack(w, "final stack", snap.Stack)
}

// dumpState writes the full engine state.
func dumpState(w io.Writer, snap txscript.Snapshot) {
	cfg := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	cfg.Fdump(w, snap)
}
