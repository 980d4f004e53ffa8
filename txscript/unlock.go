// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"

	"github.com/landaverdend/btcwebtools/chainhash"
)

// scriptAssembler concatenates command lists into one sectioned script.
type scriptAssembler struct {
	include  bool
	cmds     []Command
	sections []Section
}

// add appends cmds as a new section.
func (a *scriptAssembler) add(kind SectionKind, desc string, cmds []Command) {
	start := len(a.cmds)
	a.cmds = append(a.cmds, cmds...)
	a.sections = append(a.sections, Section{
		Kind:        kind,
		Start:       start,
		End:         len(a.cmds),
		Description: desc,
	})
}

// parse parses raw with the assembler's push opcode setting.
func (a *scriptAssembler) parse(raw []byte) ([]Command, error) {
	s, err := ParseScript(raw, a.include)
	if err != nil {
		return nil, err
	}
	return s.cmds, nil
}

// push returns the commands pushing each item, each preceded by its push
// opcode when the assembler keeps them.
func (a *scriptAssembler) push(items ...[]byte) []Command {
	var cmds []Command
	for _, item := range items {
		data := DataCommand(item)
		if a.include && len(item) > 0 {
			cmds = append(cmds, Command{Opcode: data.Opcode,
				display: true})
		}
		cmds = append(cmds, data)
	}
	return cmds
}

// script builds the assembled script.
func (a *scriptAssembler) script() (*Script, error) {
	return NewScript(a.cmds, a.sections...)
}

// BuildUnlockingScript combines the unlocking data of the input selected by
// txCtx with the script of the output it spends into one script whose
// sections record where each part came from.  The spent output's script
// type is taken from its ScriptType name, stripped of any witness version
// prefix, or derived from the script when the name is missing.
func BuildUnlockingScript(txCtx *TxContext, includePushOpcode bool) (*Script, error) {
	a := &scriptAssembler{include: includePushOpcode}

	if txCtx.Tx.IsCoinBase() {
		a.add(SectionCoinbase, "no unlocking script (coinbase)", nil)
		return a.script()
	}

	prevOut, ok := txCtx.PrevOut()
	if !ok {
		str := fmt.Sprintf("previous output of input %d is unknown",
			txCtx.InputIndex)
		return nil, scriptError(ErrMissingTxContext, str)
	}

	class := ScriptClassFromName(prevOut.ScriptType)
	if class == NonStandardTy {
		class = GetScriptClass(prevOut.PkScript)
	}
	log.Debugf("Building %v unlocking script for input %d", class,
		txCtx.InputIndex)

	txIn := txCtx.TxIn()
	switch class {
	case PubKeyTy, PubKeyHashTy, MultiSigTy:
		sigCmds, err := a.parse(txIn.SignatureScript)
		if err != nil {
			return nil, err
		}
		pkCmds, err := a.parse(prevOut.PkScript)
		if err != nil {
			return nil, err
		}
		a.add(SectionScriptSig, "scriptSig", sigCmds)
		a.add(SectionPubKey, "scriptPubKey ("+class.String()+")", pkCmds)

	case ScriptHashTy:
		sigCmds, err := a.parse(txIn.SignatureScript)
		if err != nil {
			return nil, err
		}
		if len(sigCmds) == 0 || !sigCmds[len(sigCmds)-1].isData {
			str := fmt.Sprintf("scriptSig of input %d does not end "+
				"with a redeem script push", txCtx.InputIndex)
			return nil, scriptError(ErrMalformedEncoding, str)
		}
		redeem := sigCmds[len(sigCmds)-1].Data
		redeemCmds, err := a.parse(redeem)
		if err != nil {
			return nil, err
		}
		pkCmds, err := a.parse(prevOut.PkScript)
		if err != nil {
			return nil, err
		}
		a.add(SectionScriptSig, "scriptSig", sigCmds)
		a.add(SectionPubKey, "scriptPubKey (scripthash)", pkCmds)
		a.add(SectionRedeem, "redeem script", redeemCmds)

	case WitnessV0PubKeyHashTy:
		_, program, _ := witnessProgramOf(prevOut.PkScript)
		a.add(SectionWitness, "witness", a.push(txIn.Witness...))

		pkCmds := []Command{OpcodeCommand(OP_DUP),
			OpcodeCommand(OP_HASH160)}
		pkCmds = append(pkCmds, a.push(program)...)
		pkCmds = append(pkCmds, OpcodeCommand(OP_EQUALVERIFY),
			OpcodeCommand(OP_CHECKSIG))
		a.add(SectionPubKey, "pubkey hash template (witness_v0_keyhash)",
			pkCmds)

	case WitnessV0ScriptHashTy:
		_, program, _ := witnessProgramOf(prevOut.PkScript)
		witness := txIn.Witness
		if len(witness) == 0 {
			str := fmt.Sprintf("input %d spends a witness script "+
				"hash but has no witness", txCtx.InputIndex)
			return nil, scriptError(ErrWitnessProgramMismatch, str)
		}
		witnessScript := witness[len(witness)-1]
		if !bytes.Equal(chainhash.HashB(witnessScript), program) {
			str := fmt.Sprintf("witness script hash %x does not "+
				"match witness program %x",
				chainhash.HashB(witnessScript), program)
			return nil, scriptError(ErrWitnessProgramMismatch, str)
		}

		pkCmds, err := a.parse(prevOut.PkScript)
		if err != nil {
			return nil, err
		}
		wsCmds, err := a.parse(witnessScript)
		if err != nil {
			return nil, err
		}
		a.add(SectionPubKey, "scriptPubKey (witness_v0_scripthash)",
			pkCmds)
		a.add(SectionWitnessScript, "witness items and witness script",
			append(a.push(witness[:len(witness)-1]...), wsCmds...))

	default:
		str := fmt.Sprintf("unable to build an unlocking script for "+
			"%q (%v) outputs", prevOut.ScriptType, class)
		return nil, scriptError(ErrUnsupportedScriptType, str)
	}

	return a.script()
}

// witnessProgramOf returns the version and program of a witness output
// script.
func witnessProgramOf(script []byte) (int, []byte, bool) {
	cmds, err := parseCommands(script, false)
	if err != nil {
		return 0, nil, false
	}
	return witnessProgram(cmds)
}
