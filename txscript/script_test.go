// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/landaverdend/btcwebtools/wire"
)

const p2pkhScriptHex = "76a914a802fc56c704ce87c42d7c92eb75e7896bdc41ae88ac"

// TestParseScriptRoundTrip ensures serialization is the exact inverse of
// parsing, with and without retained push opcodes.
func TestParseScriptRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hex  string
	}{
		{"empty", ""},
		{"p2pkh", p2pkhScriptHex},
		{"small ints", "00515f60"},
		{"conditionals", "516352675368"},
		{"pushdata1", "4c4c" + strings.Repeat("ab", 76)},
		{"non-minimal pushdata1", "4c02abcd"},
		{"pushdata2", "4d0001" + strings.Repeat("cd", 256)},
		{"pushdata4", "4e03000000010203"},
		{"max element", "4d0802" + strings.Repeat("ef", 520)},
		{"unknown opcode", "ba"},
	}

	for _, test := range tests {
		raw := hexToBytes(test.hex)
		for _, include := range []bool{false, true} {
			s, err := ParseScript(raw, include)
			require.NoError(t, err, test.name)
			require.Equal(t, test.hex, s.Hex(), test.name)

			r := wire.NewByteReader(s.SerializeWithLength())
			s2, err := ReadScript(r, include)
			require.NoError(t, err, test.name)
			require.True(t, s.Equal(s2), test.name)
			require.Zero(t, r.Len(), test.name)
		}
	}
}

// TestParseScriptPushOpcodes ensures retained push opcodes precede their data
// as display only commands.
func TestParseScriptPushOpcodes(t *testing.T) {
	t.Parallel()

	raw := hexToBytes(p2pkhScriptHex)

	s, err := ParseScript(raw, false)
	require.NoError(t, err)
	require.Equal(t, 5, s.Len())
	require.True(t, s.Command(2).IsData())
	require.Len(t, s.Command(2).Data, 20)

	s, err = ParseScript(raw, true)
	require.NoError(t, err)
	require.Equal(t, 6, s.Len())
	require.True(t, s.Command(2).IsDisplayOnly())
	require.Equal(t, byte(OP_DATA_20), s.Command(2).Opcode)
	require.True(t, s.Command(3).IsData())
}

// TestParseScriptErrors ensures malformed scripts are rejected with the
// expected error codes.
func TestParseScriptErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hex  string
		code ErrorCode
	}{
		{"truncated push", "050102", ErrLengthMismatch},
		{"missing pushdata1 length", "4c", ErrLengthMismatch},
		{"truncated pushdata2 length", "4d01", ErrLengthMismatch},
		{"truncated pushdata2 data", "4d0300abcd", ErrLengthMismatch},
		{"huge pushdata4", "4effffffff00", ErrLengthMismatch},
		{"oversized element", "4d0902" + strings.Repeat("ef", 521),
			ErrScriptTooLong},
		{"missing endif", "5163516751", ErrUnbalancedConditional},
		{"else without if", "67", ErrDanglingElse},
		{"double else", "51636767 68", ErrDanglingElse},
		{"endif without if", "68", ErrUnbalancedConditional},
		{"endif closes else twice", "5163676868", ErrUnbalancedConditional},
	}

	for _, test := range tests {
		_, err := ParseScriptHex(strings.ReplaceAll(test.hex, " ", ""),
			false)
		require.True(t, IsErrorCode(err, test.code),
			"%s: got %v, want %v", test.name, err, test.code)
	}

	_, err := ParseScriptHex("zz", false)
	require.True(t, IsErrorCode(err, ErrMalformedEncoding))

	_, err = ParseScript(make([]byte, MaxScriptSize+1), false)
	require.True(t, IsErrorCode(err, ErrScriptTooLong))
}

// TestReadScriptLength ensures the declared length must fit in the remaining
// bytes.
func TestReadScriptLength(t *testing.T) {
	t.Parallel()

	r := wire.NewByteReader(hexToBytes("055151"))
	_, err := ReadScript(r, false)
	require.True(t, IsErrorCode(err, ErrLengthMismatch))

	r = wire.NewByteReader(hexToBytes("02515100"))
	s, err := ReadScript(r, false)
	require.NoError(t, err)
	require.Equal(t, "5151", s.Hex())
	require.Equal(t, 1, r.Len())
}

// TestJumpTable ensures conditionals are paired with their targets,
// including deeply nested ones.
func TestJumpTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hex   string
		jumps map[int]int
	}{
		{
			name:  "if endif",
			hex:   "516368",
			jumps: map[int]int{1: 2},
		},
		{
			name:  "if else endif",
			hex:   "516352675368",
			jumps: map[int]int{1: 3, 3: 5},
		},
		{
			name:  "notif else endif",
			hex:   "516452675368",
			jumps: map[int]int{1: 3, 3: 5},
		},
		{
			// OP_1 IF OP_2 IF <00> IF <0420> ENDIF <6969> OP_3
			// ENDIF ELSE OP_1 IF <3039> ENDIF ENDIF
			name: "three levels",
			hex:  "516352630100630204206802696953686751630230396868",
			jumps: map[int]int{
				1: 11, 3: 10, 5: 7, 11: 16, 13: 15,
			},
		},
		{
			name: "four levels",
			hex:  "5163636363686868 6768",
			jumps: map[int]int{
				1: 8, 2: 7, 3: 6, 4: 5, 8: 9,
			},
		},
	}

	for _, test := range tests {
		s, err := ParseScriptHex(strings.ReplaceAll(test.hex, " ", ""),
			false)
		require.NoError(t, err, test.name)
		require.Equal(t, test.jumps, s.jumpTable, test.name)

		for from, to := range test.jumps {
			got, ok := s.JumpTarget(from)
			require.True(t, ok, test.name)
			require.Equal(t, to, got, test.name)
		}
	}
}

// TestDataCommand ensures the smallest push opcode is picked.
func TestDataCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size   int
		opcode byte
		prefix string
	}{
		{0, OP_0, "00"},
		{1, OP_DATA_1, "01"},
		{75, OP_DATA_75, "4b"},
		{76, OP_PUSHDATA1, "4c4c"},
		{255, OP_PUSHDATA1, "4cff"},
		{256, OP_PUSHDATA2, "4d0001"},
	}

	for _, test := range tests {
		data := make([]byte, test.size)
		cmd := DataCommand(data)
		require.Equal(t, test.opcode, cmd.Opcode)

		s, err := NewScript([]Command{cmd})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(s.Hex(), test.prefix))
		require.Len(t, s.Serialize(), len(test.prefix)/2+test.size)
	}
}

// TestNewScriptSections ensures section ranges must be ordered and in
// range.
func TestNewScriptSections(t *testing.T) {
	t.Parallel()

	cmds := []Command{OpcodeCommand(OP_1), OpcodeCommand(OP_1)}

	s, err := NewScript(cmds,
		Section{Kind: SectionScriptSig, Start: 0, End: 1},
		Section{Kind: SectionPubKey, Start: 1, End: 2},
	)
	require.NoError(t, err)
	sec, ok := s.SectionAt(1)
	require.True(t, ok)
	require.Equal(t, SectionPubKey, sec.Kind)
	_, ok = s.SectionAt(2)
	require.False(t, ok)

	_, err = NewScript(cmds, Section{Kind: SectionPubKey, Start: 0, End: 3})
	require.True(t, IsErrorCode(err, ErrInternal))

	_, err = NewScript(cmds,
		Section{Kind: SectionPubKey, Start: 1, End: 2},
		Section{Kind: SectionRedeem, Start: 0, End: 1},
	)
	require.True(t, IsErrorCode(err, ErrInternal))
}

// TestFormat ensures the multi-line rendering and its unknown opcode check.
func TestFormat(t *testing.T) {
	t.Parallel()

	s, err := ParseScriptHex(p2pkhScriptHex, false)
	require.NoError(t, err)
	got, err := s.Format()
	require.NoError(t, err)
	want := "   0  OP_DUP\n" +
		"   1  OP_HASH160\n" +
		"   2  a802fc56c704ce87c42d7c92eb75e7896bdc41ae\n" +
		"   3  OP_EQUALVERIFY\n" +
		"   4  OP_CHECKSIG\n"
	require.Equal(t, want, got)

	s, err = NewScript([]Command{OpcodeCommand(OP_1), OpcodeCommand(OP_1)},
		Section{Kind: SectionScriptSig, Start: 0, End: 1,
			Description: "scriptSig"},
		Section{Kind: SectionPubKey, Start: 1, End: 2,
			Description: "scriptPubKey"},
	)
	require.NoError(t, err)
	got, err = s.Format()
	require.NoError(t, err)
	require.Equal(t, "# scriptsig: scriptSig\n   0  OP_1\n"+
		"# pubkey: scriptPubKey\n   1  OP_1\n", got)

	s, err = ParseScriptHex("51ba", false)
	require.NoError(t, err)
	_, err = s.Format()
	require.True(t, IsErrorCode(err, ErrUnknownOpcode))
}

// TestDisasmString ensures the one-line disassembly, including the partial
// output for scripts that fail to parse.
func TestDisasmString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hex     string
		want    string
		wantErr bool
	}{
		{
			name: "p2pkh",
			hex:  p2pkhScriptHex,
			want: "OP_DUP OP_HASH160 a802fc56c704ce87c42d7c92eb75e" +
				"7896bdc41ae OP_EQUALVERIFY OP_CHECKSIG",
		},
		{
			name: "small ints",
			hex:  "004f5160",
			want: "0 -1 1 16",
		},
		{
			name: "unknown",
			hex:  "ba",
			want: "OP_UNKNOWN186",
		},
		{
			name:    "truncated",
			hex:     "0201",
			want:    "[error]",
			wantErr: true,
		},
		{
			name:    "truncated after opcode",
			hex:     "510302",
			want:    "1 [error]",
			wantErr: true,
		},
	}

	for _, test := range tests {
		got, err := DisasmString(hexToBytes(test.hex))
		require.Equal(t, test.want, got, test.name)
		if test.wantErr {
			require.Error(t, err, test.name)
		} else {
			require.NoError(t, err, test.name)
		}
	}
}
