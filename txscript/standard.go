// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
)

// ScriptClass is an enumeration for the list of standard types of script.
type ScriptClass byte

// Classes of script payment known about in the blockchain.
const (
	NonStandardTy         ScriptClass = iota // None of the recognized forms.
	PubKeyTy                                 // Pay pubkey.
	PubKeyHashTy                             // Pay pubkey hash.
	ScriptHashTy                             // Pay to script hash.
	WitnessV0PubKeyHashTy                    // Pay to witness pubkey hash.
	WitnessV0ScriptHashTy                    // Pay to witness script hash.
	MultiSigTy                               // Multi signature.
	NullDataTy                               // Empty data-only (provably prunable).
)

// scriptClassToName houses the human-readable strings which describe each
// script class.
var scriptClassToName = []string{
	NonStandardTy:         "nonstandard",
	PubKeyTy:              "pubkey",
	PubKeyHashTy:          "pubkeyhash",
	ScriptHashTy:          "scripthash",
	WitnessV0PubKeyHashTy: "witness_v0_keyhash",
	WitnessV0ScriptHashTy: "witness_v0_scripthash",
	MultiSigTy:            "multisig",
	NullDataTy:            "nulldata",
}

// String implements the Stringer interface by returning the name of
// the enum script class. If the enum is invalid then "Invalid" will be
// returned.
func (t ScriptClass) String() string {
	if int(t) >= len(scriptClassToName) {
		return "Invalid"
	}
	return scriptClassToName[t]
}

// scriptTypeNames maps the script type names used by block explorers to
// script classes.
var scriptTypeNames = map[string]ScriptClass{
	"p2pk":      PubKeyTy,
	"p2pkh":     PubKeyHashTy,
	"p2sh":      ScriptHashTy,
	"p2wpkh":    WitnessV0PubKeyHashTy,
	"p2wsh":     WitnessV0ScriptHashTy,
	"multisig":  MultiSigTy,
	"op_return": NullDataTy,
}

// witnessVersionPrefix matches the "v0_" style prefix explorers put on
// segwit script type names.
var witnessVersionPrefix = regexp.MustCompile(`^v\d+_`)

// ScriptClassFromName returns the script class for an explorer script type
// name such as "p2pkh" or "v0_p2wsh", or one of the names ScriptClass.String
// returns.  Unknown names map to NonStandardTy.
func ScriptClassFromName(name string) ScriptClass {
	name = witnessVersionPrefix.ReplaceAllString(strings.ToLower(name), "")
	if class, ok := scriptTypeNames[name]; ok {
		return class
	}
	for class, className := range scriptClassToName {
		if className == name {
			return ScriptClass(class)
		}
	}
	return NonStandardTy
}

// isSmallInt returns whether or not the opcode is considered a small integer,
// which is an OP_0, or OP_1 through OP_16.
func isSmallInt(cmd Command) bool {
	return !cmd.isData && (cmd.Opcode == OP_0 ||
		(cmd.Opcode >= OP_1 && cmd.Opcode <= OP_16))
}

// asSmallInt returns the passed opcode, which must be true according to
// isSmallInt(), as an integer.
func asSmallInt(op byte) int {
	if op == OP_0 {
		return 0
	}

	return int(op - (OP_1 - 1))
}

// isPubkey returns true if the script passed is a pay-to-pubkey transaction,
// false otherwise.
func isPubkey(cmds []Command) bool {
	// Valid pubkeys are either 33 or 65 bytes.
	return len(cmds) == 2 && cmds[0].isData &&
		(len(cmds[0].Data) == 33 || len(cmds[0].Data) == 65) &&
		!cmds[1].isData && cmds[1].Opcode == OP_CHECKSIG
}

// isPubkeyHash returns true if the script passed is a pay-to-pubkey-hash
// transaction, false otherwise.
func isPubkeyHash(cmds []Command) bool {
	return len(cmds) == 5 &&
		!cmds[0].isData && cmds[0].Opcode == OP_DUP &&
		!cmds[1].isData && cmds[1].Opcode == OP_HASH160 &&
		cmds[2].isData && len(cmds[2].Data) == 20 &&
		!cmds[3].isData && cmds[3].Opcode == OP_EQUALVERIFY &&
		!cmds[4].isData && cmds[4].Opcode == OP_CHECKSIG
}

// isScriptHash returns true if the script passed is a pay-to-script-hash
// transaction, false otherwise.
func isScriptHash(cmds []Command) bool {
	return len(cmds) == 3 &&
		!cmds[0].isData && cmds[0].Opcode == OP_HASH160 &&
		cmds[1].isData && len(cmds[1].Data) == 20 &&
		!cmds[2].isData && cmds[2].Opcode == OP_EQUAL
}

// witnessProgram returns the version and program of a witness output
// script.
func witnessProgram(cmds []Command) (int, []byte, bool) {
	if len(cmds) != 2 || !isSmallInt(cmds[0]) || !cmds[1].isData {
		return 0, nil, false
	}
	n := len(cmds[1].Data)
	if n < 2 || n > 40 {
		return 0, nil, false
	}
	return asSmallInt(cmds[0].Opcode), cmds[1].Data, true
}

// isMultiSig returns true if the passed script is a multisig transaction,
// false otherwise.
func isMultiSig(cmds []Command) bool {
	// The absolute minimum is 1 pubkey:
	// OP_0/OP_1-16 <pubkey> OP_1 OP_CHECKMULTISIG
	l := len(cmds)
	if l < 4 {
		return false
	}
	if !isSmallInt(cmds[0]) || !isSmallInt(cmds[l-2]) {
		return false
	}
	if cmds[l-1].isData || cmds[l-1].Opcode != OP_CHECKMULTISIG {
		return false
	}

	// Verify the number of pubkeys specified matches the actual number
	// of pubkeys provided.
	if l-2-1 != asSmallInt(cmds[l-2].Opcode) {
		return false
	}

	for _, cmd := range cmds[1 : l-2] {
		// Valid pubkeys are either 33 or 65 bytes.
		if !cmd.isData || (len(cmd.Data) != 33 && len(cmd.Data) != 65) {
			return false
		}
	}
	return true
}

// isNullData returns true if the passed script is a null data transaction,
// false otherwise.
func isNullData(cmds []Command) bool {
	// A nulldata transaction is either a single OP_RETURN or an
	// OP_RETURN followed by pushes.
	if len(cmds) == 0 || cmds[0].isData || cmds[0].Opcode != OP_RETURN {
		return false
	}
	for _, cmd := range cmds[1:] {
		if !cmd.isData && !isSmallInt(cmd) {
			return false
		}
	}
	return true
}

// typeOfScript returns the type of the script being inspected from the known
// standard types.
func typeOfScript(cmds []Command) ScriptClass {
	switch {
	case isPubkey(cmds):
		return PubKeyTy
	case isPubkeyHash(cmds):
		return PubKeyHashTy
	case isScriptHash(cmds):
		return ScriptHashTy
	case isMultiSig(cmds):
		return MultiSigTy
	case isNullData(cmds):
		return NullDataTy
	}

	if version, program, ok := witnessProgram(cmds); ok && version == 0 {
		switch len(program) {
		case 20:
			return WitnessV0PubKeyHashTy
		case 32:
			return WitnessV0ScriptHashTy
		}
	}
	return NonStandardTy
}

// GetScriptClass returns the class of the script passed.
//
// NonStandardTy will be returned when the script does not parse.
func GetScriptClass(script []byte) ScriptClass {
	cmds, err := parseCommands(script, false)
	if err != nil {
		return NonStandardTy
	}
	return typeOfScript(cmds)
}

// PayToAddrScript creates a new script to pay a transaction output to the
// specified address.
func PayToAddrScript(addr btcutil.Address) ([]byte, error) {
	var cmds []Command
	switch addr := addr.(type) {
	case *btcutil.AddressPubKeyHash:
		cmds = []Command{
			OpcodeCommand(OP_DUP),
			OpcodeCommand(OP_HASH160),
			DataCommand(addr.ScriptAddress()),
			OpcodeCommand(OP_EQUALVERIFY),
			OpcodeCommand(OP_CHECKSIG),
		}

	case *btcutil.AddressScriptHash:
		cmds = []Command{
			OpcodeCommand(OP_HASH160),
			DataCommand(addr.ScriptAddress()),
			OpcodeCommand(OP_EQUAL),
		}

	case *btcutil.AddressPubKey:
		cmds = []Command{
			DataCommand(addr.ScriptAddress()),
			OpcodeCommand(OP_CHECKSIG),
		}

	case *btcutil.AddressWitnessPubKeyHash:
		cmds = []Command{
			OpcodeCommand(OP_0),
			DataCommand(addr.ScriptAddress()),
		}

	case *btcutil.AddressWitnessScriptHash:
		cmds = []Command{
			OpcodeCommand(OP_0),
			DataCommand(addr.ScriptAddress()),
		}

	default:
		str := fmt.Sprintf("unable to generate payment script for "+
			"unsupported address type %T", addr)
		return nil, scriptError(ErrUnsupportedScriptType, str)
	}

	s, err := NewScript(cmds)
	if err != nil {
		return nil, err
	}
	return s.Serialize(), nil
}
