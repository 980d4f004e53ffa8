// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2019 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"
	"fmt"
)

// ErrorCode identifies a kind of script error.
type ErrorCode int

// These constants are used to identify a specific Error.
const (
	// ErrInternal is returned if internal consistency checks fail.  In
	// practice this error should never be seen as it would mean there is an
	// error in the engine logic.
	ErrInternal ErrorCode = iota

	// ---------------------------------------
	// Failures related to parsing scripts.
	// ---------------------------------------

	// ErrMalformedEncoding is returned when script or number bytes cannot
	// be decoded, for example invalid hex or a truncated length prefix.
	ErrMalformedEncoding

	// ErrScriptTooLong is returned when a script exceeds MaxScriptSize or
	// pushes an element larger than MaxScriptElementSize.
	ErrScriptTooLong

	// ErrPushLengthMismatch is returned when a push opcode is not followed
	// by exactly the number of data bytes it announces.
	ErrPushLengthMismatch

	// ErrLengthMismatch is returned when a length-prefixed script does not
	// consume exactly the announced number of bytes.
	ErrLengthMismatch

	// ErrUnbalancedConditional is returned when an OP_ENDIF is encountered
	// with no open conditional, or when conditionals are still open at the
	// end of the script.
	ErrUnbalancedConditional

	// ErrDanglingElse is returned when an OP_ELSE has no open OP_IF or
	// OP_NOTIF to attach to, including a second OP_ELSE at the same depth.
	ErrDanglingElse

	// ErrUnknownOpcode is returned when formatting or executing an opcode
	// value that has no definition.
	ErrUnknownOpcode

	// ErrUnrecognizedOpcode is returned by the assembler for an OP_ token
	// that does not name an opcode.
	ErrUnrecognizedOpcode

	// ErrUnsupportedScriptType is returned when no unlocking script can be
	// built for the previous output's script type.
	ErrUnsupportedScriptType

	// ErrWitnessProgramMismatch is returned when a P2WSH witness script
	// does not hash to the witness program it is spending.
	ErrWitnessProgramMismatch

	// ErrMissingTxContext is returned when a script needs a transaction to
	// verify signatures or locktimes and none was supplied.
	ErrMissingTxContext

	// ErrInvalidIndex is returned when an input index is out of range for
	// the transaction.
	ErrInvalidIndex

	// ---------------------------------------
	// Failures related to final execution state.
	// ---------------------------------------

	// ErrEvalFalse is returned when the script evaluated without error but
	// terminated with a false top stack element.
	ErrEvalFalse

	// ErrCleanStack is returned when the script terminated with a stack
	// that does not hold exactly one element.
	ErrCleanStack

	// ---------------------------------------
	// Failures related to failed operations.
	// ---------------------------------------

	// ErrVerify is returned when OP_VERIFY is encountered in a script and
	// the top item on the data stack does not evaluate to true.
	ErrVerify

	// ErrEqualVerify is returned when OP_EQUALVERIFY is encountered in a
	// script and the top item on the data stack does not evaluate to true.
	ErrEqualVerify

	// ErrNumEqualVerify is returned when OP_NUMEQUALVERIFY is encountered
	// in a script and the top item on the data stack does not evaluate to
	// true.
	ErrNumEqualVerify

	// ErrCheckSigVerify is returned when OP_CHECKSIGVERIFY is encountered
	// in a script and the top item on the data stack does not evaluate to
	// true.
	ErrCheckSigVerify

	// ErrCheckMultiSigVerify is returned when OP_CHECKMULTISIGVERIFY is
	// encountered in a script and the top item on the data stack does not
	// evaluate to true.
	ErrCheckMultiSigVerify

	// ---------------------------------------
	// Failures related to improper use of opcodes.
	// ---------------------------------------

	// ErrDisabledOpcode is returned when a disabled opcode is encountered
	// in a script.
	ErrDisabledOpcode

	// ErrReservedOpcode is returned when an opcode marked as reserved
	// is encountered in a script.
	ErrReservedOpcode

	// ErrEarlyReturn is returned when OP_RETURN is executed in the script.
	ErrEarlyReturn

	// ErrStackUnderflow is returned when an opcode requires more items on
	// the stack than are present.
	ErrStackUnderflow

	// ErrInvalidStackOperation is returned when a stack operation is
	// given an argument it cannot act on, such as a negative OP_PICK
	// index.
	ErrInvalidStackOperation

	// ErrNumberTooBig is returned when an operand is longer than the
	// opcode accepts.
	ErrNumberTooBig

	// ErrInvalidPubKeyCount is returned when the number of public keys
	// specified for a multsig is either negative or greater than
	// MaxPubKeysPerMultiSig.
	ErrInvalidPubKeyCount

	// ErrInvalidSignatureCount is returned when the number of signatures
	// specified for a multisig is either negative or greater than the
	// number of public keys.
	ErrInvalidSignatureCount

	// ErrUnsatisfiedLockTime is returned when a locktime or sequence
	// check fails.
	ErrUnsatisfiedLockTime

	// numErrorCodes is the maximum error code number used in tests.  This
	// entry MUST be the last entry in the enum.
	numErrorCodes
)

// Map of ErrorCode values back to their constant names for pretty printing.
var errorCodeStrings = map[ErrorCode]string{
	ErrInternal:               "ErrInternal",
	ErrMalformedEncoding:      "ErrMalformedEncoding",
	ErrScriptTooLong:          "ErrScriptTooLong",
	ErrPushLengthMismatch:     "ErrPushLengthMismatch",
	ErrLengthMismatch:         "ErrLengthMismatch",
	ErrUnbalancedConditional:  "ErrUnbalancedConditional",
	ErrDanglingElse:           "ErrDanglingElse",
	ErrUnknownOpcode:          "ErrUnknownOpcode",
	ErrUnrecognizedOpcode:     "ErrUnrecognizedOpcode",
	ErrUnsupportedScriptType:  "ErrUnsupportedScriptType",
	ErrWitnessProgramMismatch: "ErrWitnessProgramMismatch",
	ErrMissingTxContext:       "ErrMissingTxContext",
	ErrInvalidIndex:           "ErrInvalidIndex",
	ErrEvalFalse:              "ErrEvalFalse",
	ErrCleanStack:             "ErrCleanStack",
	ErrVerify:                 "ErrVerify",
	ErrEqualVerify:            "ErrEqualVerify",
	ErrNumEqualVerify:         "ErrNumEqualVerify",
	ErrCheckSigVerify:         "ErrCheckSigVerify",
	ErrCheckMultiSigVerify:    "ErrCheckMultiSigVerify",
	ErrDisabledOpcode:         "ErrDisabledOpcode",
	ErrReservedOpcode:         "ErrReservedOpcode",
	ErrEarlyReturn:            "ErrEarlyReturn",
	ErrStackUnderflow:         "ErrStackUnderflow",
	ErrInvalidStackOperation:  "ErrInvalidStackOperation",
	ErrNumberTooBig:           "ErrNumberTooBig",
	ErrInvalidPubKeyCount:     "ErrInvalidPubKeyCount",
	ErrInvalidSignatureCount:  "ErrInvalidSignatureCount",
	ErrUnsatisfiedLockTime:    "ErrUnsatisfiedLockTime",
}

// String returns the ErrorCode as a human-readable name.
func (e ErrorCode) String() string {
	if s := errorCodeStrings[e]; s != "" {
		return s
	}
	return fmt.Sprintf("Unknown ErrorCode (%d)", int(e))
}

// Error identifies a script-related error.  It is used to indicate three
// classes of errors:
//  1. Script parse failures, which are returned from construction and mean
//     no Script value was produced
//  2. Execution failures, which move an Engine to StatusFailure
//  3. Failures in the helpers that build or classify scripts
//
// The caller can use type assertions to determine if an error is an Error and
// access the ErrorCode field to ascertain the specific reason for the error.
type Error struct {
	ErrorCode   ErrorCode
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// scriptError creates an Error given a set of arguments.
func scriptError(c ErrorCode, desc string) Error {
	return Error{ErrorCode: c, Description: desc}
}

// IsErrorCode returns whether or not the provided error is a script error with
// the provided error code.
func IsErrorCode(err error, c ErrorCode) bool {
	var serr Error
	return errors.As(err, &serr) && serr.ErrorCode == c
}
