// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// littleEndian is a convenience variable since binary.LittleEndian is quite
// long.
var littleEndian = binary.LittleEndian

// errNonCanonicalVarInt is the common format string used for non-canonically
// encoded variable length integer errors.
var errNonCanonicalVarInt = "non-canonical varint %x - discriminant %x must " +
	"encode a value greater than %x"

// ByteReader is a cursor over an in-memory byte slice.  Every read either
// returns exactly the number of bytes asked for and advances the cursor, or
// fails with ErrOutOfBounds and leaves the cursor where it was.
//
// Slices returned by ReadN and Peek alias the underlying buffer and must be
// treated as read only.
type ByteReader struct {
	buf []byte
	off int
}

// NewByteReader returns a ByteReader positioned at the start of b.
func NewByteReader(b []byte) *ByteReader {
	return &ByteReader{buf: b}
}

// Len returns the number of unread bytes.
func (r *ByteReader) Len() int {
	return len(r.buf) - r.off
}

// Offset returns the number of bytes consumed so far.
func (r *ByteReader) Offset() int {
	return r.off
}

// Peek returns the next n bytes without advancing the cursor.
func (r *ByteReader) Peek(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d",
			ErrOutOfBounds, n, r.off, r.Len())
	}
	return r.buf[r.off : r.off+n], nil
}

// ReadN returns the next n bytes and advances the cursor past them.
func (r *ByteReader) ReadN(n int) ([]byte, error) {
	b, err := r.Peek(n)
	if err != nil {
		return nil, err
	}
	r.off += n
	return b, nil
}

// ReadByte reads a single byte.  It satisfies io.ByteReader.
func (r *ByteReader) ReadByte() (byte, error) {
	b, err := r.ReadN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a little-endian uint16.
func (r *ByteReader) ReadUint16() (uint16, error) {
	b, err := r.ReadN(2)
	if err != nil {
		return 0, err
	}
	return littleEndian.Uint16(b), nil
}

// ReadUint32 reads a little-endian uint32.
func (r *ByteReader) ReadUint32() (uint32, error) {
	b, err := r.ReadN(4)
	if err != nil {
		return 0, err
	}
	return littleEndian.Uint32(b), nil
}

// ReadUint64 reads a little-endian uint64.
func (r *ByteReader) ReadUint64() (uint64, error) {
	b, err := r.ReadN(8)
	if err != nil {
		return 0, err
	}
	return littleEndian.Uint64(b), nil
}

// ReadVarInt reads a variable length integer and returns it as a uint64.
// Values that were not encoded with the shortest possible form are
// rejected so that a decoded transaction always re-encodes to the same
// bytes.
func (r *ByteReader) ReadVarInt() (uint64, error) {
	start := r.off
	discriminant, err := r.ReadByte()
	if err != nil {
		return 0, err
	}

	var rv uint64
	switch discriminant {
	case 0xff:
		sv, err := r.ReadUint64()
		if err != nil {
			r.off = start
			return 0, err
		}
		rv = sv

		// The encoding is not canonical if the value could have been
		// encoded using fewer bytes.
		min := uint64(0x100000000)
		if rv < min {
			r.off = start
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				errNonCanonicalVarInt, rv, discriminant, min))
		}

	case 0xfe:
		sv, err := r.ReadUint32()
		if err != nil {
			r.off = start
			return 0, err
		}
		rv = uint64(sv)

		min := uint64(0x10000)
		if rv < min {
			r.off = start
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				errNonCanonicalVarInt, rv, discriminant, min))
		}

	case 0xfd:
		sv, err := r.ReadUint16()
		if err != nil {
			r.off = start
			return 0, err
		}
		rv = uint64(sv)

		min := uint64(0xfd)
		if rv < min {
			r.off = start
			return 0, messageError("ReadVarInt", fmt.Sprintf(
				errNonCanonicalVarInt, rv, discriminant, min))
		}

	default:
		rv = uint64(discriminant)
	}

	return rv, nil
}

// ReadVarBytes reads a variable length byte array.  A byte array is encoded
// as a varInt containing the length of the array followed by the bytes
// themselves.  The returned slice is a copy, so callers may keep it.
func (r *ByteReader) ReadVarBytes(fieldName string) ([]byte, error) {
	start := r.off
	count, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}

	if count > uint64(r.Len()) {
		r.off = start
		return nil, fmt.Errorf("%w: %s is %d bytes, only %d remain",
			ErrOutOfBounds, fieldName, count, r.Len())
	}

	b, _ := r.ReadN(int(count))
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, val uint64) error {
	_, err := w.Write(AppendVarInt(nil, val))
	return err
}

// AppendVarInt appends the variable length encoding of val to b.
func AppendVarInt(b []byte, val uint64) []byte {
	switch {
	case val < 0xfd:
		return append(b, uint8(val))

	case val <= math.MaxUint16:
		b = append(b, 0xfd)
		return littleEndian.AppendUint16(b, uint16(val))

	case val <= math.MaxUint32:
		b = append(b, 0xfe)
		return littleEndian.AppendUint32(b, uint32(val))

	default:
		b = append(b, 0xff)
		return littleEndian.AppendUint64(b, val)
	}
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	// The value is small enough to be represented by itself, so it's
	// just 1 byte.
	if val < 0xfd {
		return 1
	}

	// Discriminant 1 byte plus 2 bytes for the uint16.
	if val <= math.MaxUint16 {
		return 3
	}

	// Discriminant 1 byte plus 4 bytes for the uint32.
	if val <= math.MaxUint32 {
		return 5
	}

	// Discriminant 1 byte plus 8 bytes for the uint64.
	return 9
}

// WriteVarBytes serializes a variable length byte array to w as a varInt
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, bytes []byte) error {
	if err := WriteVarInt(w, uint64(len(bytes))); err != nil {
		return err
	}
	_, err := w.Write(bytes)
	return err
}
