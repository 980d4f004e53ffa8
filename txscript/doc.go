// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements a step-debuggable bitcoin transaction script
engine.

This package provides data structures and functions to parse, assemble,
disassemble and execute bitcoin transaction scripts one command at a time.

# Script Overview

Bitcoin transaction scripts are written in a stack-base, FORTH-like language.

The bitcoin script language consists of a number of opcodes which fall into
several categories such pushing and popping data to and from the stack,
performing basic arithmetic, conditional branching, comparing hashes, and
checking cryptographic signatures.  Scripts are processed from left to right
and intentionally do not provide loops.

# Debugging

A Script is parsed once and carries a jump table pairing its conditional
opcodes, so an Engine moves its program counter directly to the branch a
condition selects.  Scripts built by BuildUnlockingScript are split into
sections (scriptSig, pubkey, redeem, witness script) and the engine picks a
step strategy from them that moves stack items between sections the way
pay-to-script-hash and pay-to-witness-script-hash spends require.

Signatures are checked with the legacy signature hash.  Inputs of segregated
witness transactions are not verified and their signature checks always
succeed.

# Errors

Errors returned by this package are of type txscript.Error.  This allows the
caller to programmatically determine the specific error by examining the
ErrorCode field of the type asserted txscript.Error while still providing rich
error messages with contextual information.  A convenience function named
IsErrorCode is also provided to allow callers to easily check for a specific
error code.  See ErrorCode in the package documentation for a full list.
*/
package txscript
