// Copyright (c) 2013-2015 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds is returned by ByteReader when a read asks for more bytes
// than remain in the underlying buffer.
var ErrOutOfBounds = errors.New("read out of bounds")

// MessageError describes an issue with a transaction encoding.  It is used to
// indicate the raw bytes do not describe a well-formed transaction, such as a
// non-canonical varint, a count that cannot fit in the remaining input, or
// trailing bytes after the locktime.
//
// Truncated input is reported as ErrOutOfBounds instead so callers can tell
// the two apart with errors.Is.
type MessageError struct {
	Func        string // Function name
	Description string // Human readable description of the issue
}

// Error satisfies the error interface and prints human-readable errors.
func (e *MessageError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("%v: %v", e.Func, e.Description)
	}
	return e.Description
}

// messageError creates an error for the given function and description.
func messageError(f string, desc string) *MessageError {
	return &MessageError{Func: f, Description: desc}
}
