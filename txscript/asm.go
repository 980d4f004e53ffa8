// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// stripComments removes // comments from every line of text.
func stripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

// asmTokens splits assembly text into whitespace separated tokens.
type asmTokens struct {
	toks []string
	pos  int
}

func (t *asmTokens) next() (string, bool) {
	if t.pos >= len(t.toks) {
		return "", false
	}
	tok := t.toks[t.pos]
	t.pos++
	return tok, true
}

// decodeHexToken decodes a 0x prefixed token.
func decodeHexToken(tok string) ([]byte, error) {
	b, err := hex.DecodeString(tok[2:])
	if err != nil {
		str := fmt.Sprintf("invalid hex token %q: %v", tok, err)
		return nil, scriptError(ErrMalformedEncoding, str)
	}
	return b, nil
}

// pushedData reads the hex token that must follow a push-length opcode
// announcing n bytes.
func (t *asmTokens) pushedData(opTok string, n int) ([]byte, error) {
	tok, ok := t.next()
	if !ok || !strings.HasPrefix(strings.ToLower(tok), "0x") {
		str := fmt.Sprintf("%s must be followed by %d bytes of hex "+
			"data", opTok, n)
		return nil, scriptError(ErrPushLengthMismatch, str)
	}
	data, err := decodeHexToken(tok)
	if err != nil {
		return nil, err
	}
	if len(data) != n {
		str := fmt.Sprintf("%s announces %d bytes but %s is %d bytes",
			opTok, n, tok, len(data))
		return nil, scriptError(ErrPushLengthMismatch, str)
	}
	return data, nil
}

// Assemble compiles assembly text into raw script bytes.
//
// Tokens are separated by whitespace and // starts a comment running to the
// end of the line.  A token is one of:
//
//   - an opcode mnemonic such as OP_DUP, matched case-insensitively
//   - raw hex bytes prefixed by 0x, written to the script as is
//   - a decimal integer, compiled to its minimal push
//
// A push-length opcode, whether written as OP_DATA_N or as a single 0x01
// to 0x4b byte, must be followed by a hex token of exactly N bytes.
func Assemble(text string) ([]byte, error) {
	t := &asmTokens{toks: strings.Fields(stripComments(text))}

	var raw []byte
	for {
		tok, ok := t.next()
		if !ok {
			break
		}
		lower := strings.ToLower(tok)

		switch {
		case strings.HasPrefix(lower, "op_"):
			op, ok := OpcodeByName[strings.ToUpper(tok)]
			if !ok {
				str := fmt.Sprintf("unrecognized opcode %q", tok)
				return nil, scriptError(ErrUnrecognizedOpcode, str)
			}
			if op >= OP_DATA_1 && op <= OP_DATA_75 {
				data, err := t.pushedData(tok, int(op))
				if err != nil {
					return nil, err
				}
				raw = append(raw, op)
				raw = append(raw, data...)
				continue
			}
			raw = append(raw, op)

		case strings.HasPrefix(lower, "0x"):
			b, err := decodeHexToken(tok)
			if err != nil {
				return nil, err
			}
			if len(b) == 1 && b[0] >= OP_DATA_1 && b[0] <= OP_DATA_75 {
				data, err := t.pushedData(tok, int(b[0]))
				if err != nil {
					return nil, err
				}
				raw = append(raw, b[0])
				raw = append(raw, data...)
				continue
			}
			raw = append(raw, b...)

		default:
			n, err := strconv.ParseInt(tok, 10, 64)
			if err != nil {
				str := fmt.Sprintf("unrecognized token %q", tok)
				return nil, scriptError(ErrUnrecognizedOpcode, str)
			}
			raw = appendNumberPush(raw, n)
		}
	}

	// Raw hex may still announce pushes the script does not carry.
	cmds, err := parseCommands(raw, false)
	if err != nil {
		str := fmt.Sprintf("compiled script is truncated: %v", err)
		return nil, scriptError(ErrPushLengthMismatch, str)
	}
	if _, err := buildJumpTable(cmds); err != nil {
		return nil, err
	}

	return raw, nil
}

// appendNumberPush appends the shortest push of n.
func appendNumberPush(raw []byte, n int64) []byte {
	switch {
	case n == 0:
		return append(raw, OP_0)
	case n == -1:
		return append(raw, OP_1NEGATE)
	case n >= 1 && n <= 16:
		return append(raw, byte(OP_1-1+n))
	}
	return DataCommand(EncodeNumber(n)).appendTo(raw)
}

// CompileAsm assembles text and parses the result.  Scripts that check
// signatures can only be compiled against a transaction.
func CompileAsm(text string, txCtx *TxContext, includePushOpcode bool) (*Script, error) {
	raw, err := Assemble(text)
	if err != nil {
		return nil, err
	}

	s, err := ParseScript(raw, includePushOpcode)
	if err != nil {
		return nil, err
	}

	if txCtx == nil {
		if op, ok := needsTx(s); ok {
			str := fmt.Sprintf("script contains %s but no transaction "+
				"was supplied", opcodeName(op))
			return nil, scriptError(ErrMissingTxContext, str)
		}
	}
	return s, nil
}
