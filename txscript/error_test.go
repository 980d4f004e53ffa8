// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrorCodeStringer tests the stringized output for the ErrorCode type.
func TestErrorCodeStringer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrInternal, "ErrInternal"},
		{ErrLengthMismatch, "ErrLengthMismatch"},
		{ErrDanglingElse, "ErrDanglingElse"},
		{ErrMissingTxContext, "ErrMissingTxContext"},
		{ErrCleanStack, "ErrCleanStack"},
		{ErrUnsatisfiedLockTime, "ErrUnsatisfiedLockTime"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer added.
	require.Len(t, errorCodeStrings, int(numErrorCodes),
		"one or more error codes are missing a string")

	for _, test := range tests {
		require.Equal(t, test.want, test.in.String())
	}
}

// TestError tests the error output for the Error type.
func TestError(t *testing.T) {
	t.Parallel()

	err := scriptError(ErrEvalFalse, "false stack entry")
	require.Equal(t, "false stack entry", err.Error())
	require.True(t, IsErrorCode(err, ErrEvalFalse))
	require.False(t, IsErrorCode(err, ErrVerify))

	wrapped := fmt.Errorf("step: %w", err)
	require.True(t, IsErrorCode(wrapped, ErrEvalFalse))
	require.False(t, IsErrorCode(fmt.Errorf("plain"), ErrEvalFalse))
}
