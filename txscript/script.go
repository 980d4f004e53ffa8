// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/landaverdend/btcwebtools/wire"
)

// These are the constants specified for maximums in individual scripts.
const (
	MaxScriptSize         = 10000 // Max bytes in a parsed script.
	MaxScriptElementSize  = 520   // Max bytes pushable to the stack.
	MaxPubKeysPerMultiSig = 20    // Multisig can't have more sigs than this.
)

// Command is one entry of a parsed script: either an opcode or a data push.
//
// Data commands remember the opcode that introduced them on the wire so a
// parsed script serializes back to the exact bytes it was parsed from.
type Command struct {
	// Opcode is the opcode value of a non-data command.  For data commands
	// it is the push opcode used on the wire.
	Opcode byte

	// Data is the pushed payload of a data command.
	Data []byte

	isData bool

	// display marks a push opcode kept in the list only so it can be
	// shown.  Its bytes are written by the data command that follows.
	display bool
}

// OpcodeCommand returns a command executing op.
func OpcodeCommand(op byte) Command {
	return Command{Opcode: op}
}

// DataCommand returns a command pushing data using the smallest push opcode
// able to carry it.
func DataCommand(data []byte) Command {
	return Command{Opcode: canonicalPushOpcode(len(data)), Data: data, isData: true}
}

// IsData reports whether the command pushes data.
func (c Command) IsData() bool {
	return c.isData
}

// IsDisplayOnly reports whether the command is a push opcode retained for
// display ahead of the data it announces.
func (c Command) IsDisplayOnly() bool {
	return c.display
}

// String renders the command as an opcode mnemonic, or as hex for data.
func (c Command) String() string {
	if c.isData {
		return hex.EncodeToString(c.Data)
	}
	return opcodeName(c.Opcode)
}

// appendTo writes the wire encoding of the command to b.
func (c Command) appendTo(b []byte) []byte {
	switch {
	case c.display:
		return b

	case !c.isData:
		return append(b, c.Opcode)
	}

	n := len(c.Data)
	switch c.Opcode {
	case OP_PUSHDATA1:
		b = append(b, OP_PUSHDATA1, byte(n))
	case OP_PUSHDATA2:
		b = append(b, OP_PUSHDATA2, byte(n), byte(n>>8))
	case OP_PUSHDATA4:
		b = append(b, OP_PUSHDATA4, byte(n), byte(n>>8), byte(n>>16),
			byte(n>>24))
	default:
		b = append(b, c.Opcode)
	}
	return append(b, c.Data...)
}

// pushDataWidth returns the number of little-endian length bytes that follow
// an OP_PUSHDATA opcode.
func pushDataWidth(op byte) int {
	switch op {
	case OP_PUSHDATA1:
		return 1
	case OP_PUSHDATA2:
		return 2
	}
	return 4
}

// canonicalPushOpcode returns the smallest push opcode for a payload of n
// bytes.
func canonicalPushOpcode(n int) byte {
	switch {
	case n <= OP_DATA_75:
		return byte(n)
	case n <= 0xff:
		return OP_PUSHDATA1
	case n <= 0xffff:
		return OP_PUSHDATA2
	default:
		return OP_PUSHDATA4
	}
}

// SectionKind labels the origin of a range of commands in a combined
// unlocking script.
type SectionKind uint8

const (
	SectionScriptSig SectionKind = iota
	SectionPubKey
	SectionRedeem
	SectionWitness
	SectionWitnessScript
	SectionCoinbase
)

var sectionKindStrings = map[SectionKind]string{
	SectionScriptSig:     "scriptsig",
	SectionPubKey:        "pubkey",
	SectionRedeem:        "redeem",
	SectionWitness:       "witness",
	SectionWitnessScript: "witnessScript",
	SectionCoinbase:      "coinbase",
}

// String returns the SectionKind as a human-readable name.
func (k SectionKind) String() string {
	if s, ok := sectionKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown SectionKind (%d)", uint8(k))
}

// Section is the half-open command range [Start, End) of a script that came
// from one source.
type Section struct {
	Kind        SectionKind
	Start       int
	End         int
	Description string
}

// Script is an immutable parsed script.  The jump table pairing every
// OP_IF, OP_NOTIF and OP_ELSE with the OP_ELSE or OP_ENDIF that closes it is
// computed on construction.  A Script whose source changes is re-parsed
// rather than mutated.
type Script struct {
	cmds      []Command
	sections  []Section
	jumpTable map[int]int
}

// ParseScript parses raw script bytes.  When includePushOpcode is set every
// push opcode is kept as a display-only command ahead of its data.
func ParseScript(raw []byte, includePushOpcode bool) (*Script, error) {
	if len(raw) > MaxScriptSize {
		str := fmt.Sprintf("script size %d is larger than max allowed "+
			"size %d", len(raw), MaxScriptSize)
		return nil, scriptError(ErrScriptTooLong, str)
	}

	cmds, err := parseCommands(raw, includePushOpcode)
	if err != nil {
		return nil, err
	}

	s, err := NewScript(cmds)
	if err != nil {
		return nil, err
	}

	// Serialization must be the exact inverse of parsing.
	if ser := s.Serialize(); !bytes.Equal(ser, raw) {
		str := fmt.Sprintf("script re-serializes to %d bytes, parsed "+
			"from %d", len(ser), len(raw))
		return nil, scriptError(ErrInternal, str)
	}

	return s, nil
}

// ParseScriptHex is ParseScript for a hex encoded script.
func ParseScriptHex(s string, includePushOpcode bool) (*Script, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		str := fmt.Sprintf("invalid script hex: %v", err)
		return nil, scriptError(ErrMalformedEncoding, str)
	}
	return ParseScript(raw, includePushOpcode)
}

// ReadScript reads a varint length-prefixed script from r.
func ReadScript(r *wire.ByteReader, includePushOpcode bool) (*Script, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		str := fmt.Sprintf("unable to read script length: %v", err)
		return nil, scriptError(ErrMalformedEncoding, str)
	}
	if n > uint64(r.Len()) {
		str := fmt.Sprintf("script length %d exceeds the %d bytes "+
			"remaining", n, r.Len())
		return nil, scriptError(ErrLengthMismatch, str)
	}

	raw, _ := r.ReadN(int(n))
	return ParseScript(raw, includePushOpcode)
}

// NewScript builds a script from commands, optionally annotated with
// sections.  Element sizes and conditional nesting are validated; the total
// size limit is left to ParseScript since combined unlocking scripts may
// legitimately exceed it.
func NewScript(cmds []Command, sections ...Section) (*Script, error) {
	for i, cmd := range cmds {
		if cmd.isData && len(cmd.Data) > MaxScriptElementSize {
			str := fmt.Sprintf("element size %d at command %d is "+
				"larger than max allowed size %d", len(cmd.Data),
				i, MaxScriptElementSize)
			return nil, scriptError(ErrScriptTooLong, str)
		}
	}

	prev := 0
	for _, sec := range sections {
		if sec.Start < prev || sec.End < sec.Start || sec.End > len(cmds) {
			str := fmt.Sprintf("section %v [%d, %d) is out of order "+
				"or out of range", sec.Kind, sec.Start, sec.End)
			return nil, scriptError(ErrInternal, str)
		}
		prev = sec.End
	}

	jumpTable, err := buildJumpTable(cmds)
	if err != nil {
		return nil, err
	}

	return &Script{
		cmds:      cmds,
		sections:  sections,
		jumpTable: jumpTable,
	}, nil
}

// parseCommands splits raw into commands.  On failure the commands parsed
// before the malformed push are returned along with the error.
func parseCommands(raw []byte, includePushOpcode bool) ([]Command, error) {
	var cmds []Command
	for i := 0; i < len(raw); {
		op := raw[i]
		i++

		var n int
		switch {
		case op >= OP_DATA_1 && op <= OP_DATA_75:
			n = int(op)

		case op == OP_PUSHDATA1 || op == OP_PUSHDATA2 ||
			op == OP_PUSHDATA4:

			width := pushDataWidth(op)
			if len(raw)-i < width {
				str := fmt.Sprintf("opcode %s at offset %d requires "+
					"%d length bytes, only %d remain",
					opcodeName(op), i-1, width, len(raw)-i)
				return cmds, scriptError(ErrLengthMismatch, str)
			}
			var l uint64
			for j := 0; j < width; j++ {
				l |= uint64(raw[i+j]) << (8 * j)
			}
			i += width
			if l > uint64(len(raw)) {
				l = uint64(len(raw)) + 1
			}
			n = int(l)

		default:
			cmds = append(cmds, OpcodeCommand(op))
			continue
		}

		if len(raw)-i < n {
			str := fmt.Sprintf("opcode %s at offset %d pushes %d "+
				"bytes, only %d remain", opcodeName(op),
				i-1, n, len(raw)-i)
			return cmds, scriptError(ErrLengthMismatch, str)
		}

		if includePushOpcode {
			cmds = append(cmds, Command{Opcode: op, display: true})
		}
		cmds = append(cmds, Command{
			Opcode: op,
			Data:   raw[i : i+n : i+n],
			isData: true,
		})
		i += n
	}

	return cmds, nil
}

// frameKind distinguishes an open OP_IF/OP_NOTIF from an open OP_ELSE while
// building the jump table.
type frameKind uint8

const (
	frameConditional frameKind = iota
	frameUnconditional
)

type controlFrame struct {
	kind frameKind
	idx  int
}

// buildJumpTable pairs conditional opcodes in a single left to right pass.
// OP_IF and OP_NOTIF map to their OP_ELSE, or to their OP_ENDIF when there
// is no OP_ELSE.  OP_ELSE maps to its OP_ENDIF.
func buildJumpTable(cmds []Command) (map[int]int, error) {
	jumpTable := make(map[int]int)
	var frames []controlFrame

	for i, cmd := range cmds {
		if cmd.isData || cmd.display {
			continue
		}

		switch cmd.Opcode {
		case OP_IF, OP_NOTIF:
			frames = append(frames, controlFrame{frameConditional, i})

		case OP_ELSE:
			if len(frames) == 0 {
				str := fmt.Sprintf("OP_ELSE at command %d has no "+
					"open OP_IF", i)
				return nil, scriptError(ErrDanglingElse, str)
			}
			top := frames[len(frames)-1]
			if top.kind != frameConditional {
				str := fmt.Sprintf("OP_ELSE at command %d follows "+
					"OP_ELSE at command %d", i, top.idx)
				return nil, scriptError(ErrDanglingElse, str)
			}
			jumpTable[top.idx] = i
			frames[len(frames)-1] = controlFrame{frameUnconditional, i}

		case OP_ENDIF:
			if len(frames) == 0 {
				str := fmt.Sprintf("OP_ENDIF at command %d has no "+
					"open OP_IF", i)
				return nil, scriptError(ErrUnbalancedConditional, str)
			}
			top := frames[len(frames)-1]
			frames = frames[:len(frames)-1]
			jumpTable[top.idx] = i
		}
	}

	if len(frames) != 0 {
		str := fmt.Sprintf("%d conditional(s) opened at command %d "+
			"never closed", len(frames), frames[0].idx)
		return nil, scriptError(ErrUnbalancedConditional, str)
	}

	return jumpTable, nil
}

// Len returns the number of commands.
func (s *Script) Len() int {
	return len(s.cmds)
}

// Command returns the command at index i.
func (s *Script) Command(i int) Command {
	return s.cmds[i]
}

// Commands returns a copy of the command list.
func (s *Script) Commands() []Command {
	cmds := make([]Command, len(s.cmds))
	copy(cmds, s.cmds)
	return cmds
}

// Sections returns a copy of the section annotations.
func (s *Script) Sections() []Section {
	secs := make([]Section, len(s.sections))
	copy(secs, s.sections)
	return secs
}

// SectionAt returns the section containing command index i.
func (s *Script) SectionAt(i int) (Section, bool) {
	for _, sec := range s.sections {
		if i >= sec.Start && i < sec.End {
			return sec, true
		}
	}
	return Section{}, false
}

// section returns the first section of the given kind.
func (s *Script) section(kind SectionKind) (Section, bool) {
	for _, sec := range s.sections {
		if sec.Kind == kind {
			return sec, true
		}
	}
	return Section{}, false
}

// JumpTarget returns the index an OP_IF, OP_NOTIF or OP_ELSE at index i
// jumps to.
func (s *Script) JumpTarget(i int) (int, bool) {
	target, ok := s.jumpTable[i]
	return target, ok
}

// Serialize returns the wire encoding of the script without a length
// prefix.
func (s *Script) Serialize() []byte {
	return s.serializeRange(0, len(s.cmds))
}

// serializeRange encodes the commands in [start, end).
func (s *Script) serializeRange(start, end int) []byte {
	var b []byte
	for _, cmd := range s.cmds[start:end] {
		b = cmd.appendTo(b)
	}
	return b
}

// SerializeWithLength returns the wire encoding prefixed by its varint
// length, the form used inside transactions.
func (s *Script) SerializeWithLength() []byte {
	raw := s.Serialize()
	return append(wire.AppendVarInt(nil, uint64(len(raw))), raw...)
}

// Hex returns the hex encoding of Serialize.
func (s *Script) Hex() string {
	return hex.EncodeToString(s.Serialize())
}

// Equal reports whether both scripts hold the same commands.  Sections are
// not compared.
func (s *Script) Equal(other *Script) bool {
	if len(s.cmds) != len(other.cmds) {
		return false
	}
	for i := range s.cmds {
		a, b := s.cmds[i], other.cmds[i]
		if a.isData != b.isData || a.display != b.display ||
			a.Opcode != b.Opcode || !bytes.Equal(a.Data, b.Data) {

			return false
		}
	}
	return true
}

// Format renders the script one command per line with its index.  Every
// section starts with a header line naming it.
func (s *Script) Format() (string, error) {
	var b strings.Builder
	writeHeaders := func(i int) {
		for _, sec := range s.sections {
			if sec.Start == i {
				fmt.Fprintf(&b, "# %v: %s\n", sec.Kind,
					sec.Description)
			}
		}
	}

	for i, cmd := range s.cmds {
		writeHeaders(i)
		if !cmd.isData && !isKnownOpcode(cmd.Opcode) {
			str := fmt.Sprintf("unknown opcode 0x%02x at command %d",
				cmd.Opcode, i)
			return "", scriptError(ErrUnknownOpcode, str)
		}
		fmt.Fprintf(&b, "%4d  %s\n", i, cmd)
	}
	writeHeaders(len(s.cmds))

	return b.String(), nil
}

// DisasmString formats a disassembled script for one line printing.  When the
// script fails to parse, the returned string will contain the disassembled
// script up to the point the failure occurred along with the string '[error]'
// appended.  In addition, the reason the script failed to parse is returned
// if the caller wants more information about the failure.
func DisasmString(raw []byte) (string, error) {
	cmds, err := parseCommands(raw, false)

	var b strings.Builder
	for i, cmd := range cmds {
		if i > 0 {
			b.WriteByte(' ')
		}
		disasmCommand(&b, cmd)
	}

	if err != nil {
		if len(cmds) > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("[error]")
	}
	return b.String(), err
}

// disasmCommand writes the compact form of a command: small integers as
// numbers, data as hex and other opcodes by name.
func disasmCommand(b *strings.Builder, cmd Command) {
	if cmd.isData {
		b.WriteString(hex.EncodeToString(cmd.Data))
		return
	}
	name := cmd.String()
	if repl, ok := opcodeOnelineRepls[name]; ok {
		name = repl
	}
	b.WriteString(name)
}
