// Copyright (c) 2015-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"math/big"
)

const (
	// maxNumberLen is the longest byte string DecodeNumber accepts.  Eight
	// bytes of sign-magnitude cover every int64 except math.MinInt64.
	maxNumberLen = 8

	// maxBoolAndOperandLen is the operand length cap enforced by
	// OP_BOOLAND, matching the consensus 4-byte limit on numeric operands.
	maxBoolAndOperandLen = 4
)

// EncodeNumber returns the number serialized as a little endian with a sign
// bit, the encoding Script uses for numeric stack items.
//
// Example encodings:
//
//	   127 -> [0x7f]
//	  -127 -> [0xff]
//	   128 -> [0x80 0x00]
//	  -128 -> [0x80 0x80]
//	   129 -> [0x81 0x00]
//	  -129 -> [0x81 0x80]
//	   256 -> [0x00 0x01]
//	  -256 -> [0x00 0x81]
//	 32767 -> [0xff 0x7f]
//	-32767 -> [0xff 0xff]
//	 32768 -> [0x00 0x80 0x00]
//	-32768 -> [0x00 0x80 0x80]
//
// Zero encodes as an empty byte slice.
func EncodeNumber(n int64) []byte {
	if n == 0 {
		return nil
	}

	// Take the absolute value and keep track of whether it was originally
	// negative.  The uint64 negation handles math.MinInt64.
	isNegative := n < 0
	abs := uint64(n)
	if isNegative {
		abs = -abs
	}

	// Encode to little endian.  The maximum number of encoded bytes is 9
	// (8 bytes for max int64 plus a potential byte for sign extension).
	result := make([]byte, 0, 9)
	for abs > 0 {
		result = append(result, byte(abs&0xff))
		abs >>= 8
	}

	// When the most significant byte already has the high bit set, an
	// additional high byte is required to indicate whether the number is
	// negative or positive.  The additional byte is removed when converting
	// back to an integral and its high bit is used to denote the sign.
	//
	// Otherwise, when the most significant byte does not already have the
	// high bit set, use it to indicate the value is negative, if needed.
	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if isNegative {
			extraByte = 0x80
		}
		result = append(result, extraByte)

	} else if isNegative {
		result[len(result)-1] |= 0x80
	}

	return result
}

// DecodeNumber interprets v as a little endian sign-magnitude number.  An
// empty slice decodes to zero.  Inputs longer than eight bytes fail with
// ErrNumberTooBig.  The input is never modified.
func DecodeNumber(v []byte) (int64, error) {
	if len(v) > maxNumberLen {
		str := fmt.Sprintf("numeric value encoded as %x is %d bytes "+
			"which exceeds the max allowed of %d", v, len(v),
			maxNumberLen)
		return 0, scriptError(ErrNumberTooBig, str)
	}

	// Zero is encoded as an empty byte slice.
	if len(v) == 0 {
		return 0, nil
	}

	// Decode from little endian.
	var result uint64
	for i, val := range v {
		result |= uint64(val) << uint8(8*i)
	}

	// When the most significant byte of the input bytes has the sign bit
	// set, the result is negative.  So, remove the sign bit from the result
	// and make it negative.
	signBit := uint64(0x80) << uint8(8*(len(v)-1))
	if result&signBit != 0 {
		result &^= signBit
		return -int64(result), nil
	}

	return int64(result), nil
}

// decodeBig is the arbitrary width form of DecodeNumber used by the
// arithmetic opcodes so that no intermediate value wraps.  It works on a
// reversed copy of v.
func decodeBig(v []byte) *big.Int {
	if len(v) == 0 {
		return new(big.Int)
	}

	be := make([]byte, len(v))
	for i := range v {
		be[len(v)-1-i] = v[i]
	}

	negative := be[0]&0x80 != 0
	be[0] &= 0x7f

	num := new(big.Int).SetBytes(be)
	if negative {
		num.Neg(num)
	}
	return num
}

// encodeBig is the arbitrary width form of EncodeNumber.
func encodeBig(v *big.Int) []byte {
	if v.IsInt64() {
		return EncodeNumber(v.Int64())
	}

	// Int.Bytes trims leading zeros and drops the sign.
	be := v.Bytes()
	result := make([]byte, len(be), len(be)+1)
	for i := range be {
		result[len(be)-1-i] = be[i]
	}

	if result[len(result)-1]&0x80 != 0 {
		extraByte := byte(0x00)
		if v.Sign() < 0 {
			extraByte = 0x80
		}
		result = append(result, extraByte)

	} else if v.Sign() < 0 {
		result[len(result)-1] |= 0x80
	}

	return result
}

// isEncodedZero reports whether v is one of the two encodings OP_IF and
// OP_NOTIF treat as false: the empty string or a single zero byte.
func isEncodedZero(v []byte) bool {
	return len(v) == 0 || (len(v) == 1 && v[0] == 0x00)
}

// asBool gets the boolean value of the byte array.  Any encoding of zero,
// including negative zero, is false.
func asBool(t []byte) bool {
	for i := range t {
		if t[i] != 0 {
			// Negative 0 is also considered false.
			if i == len(t)-1 && t[i] == 0x80 {
				return false
			}
			return true
		}
	}
	return false
}

// fromBool converts a boolean into the appropriate byte array.
func fromBool(v bool) []byte {
	if v {
		return []byte{1}
	}
	return nil
}
