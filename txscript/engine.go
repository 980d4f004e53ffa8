// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/landaverdend/btcwebtools/wire"
)

// LockTimeThreshold is the number below which a lock time is interpreted to
// be a block number.  Since an average of one block is generated per 10
// minutes, this allows blocks for about 9,512 years.
const LockTimeThreshold = 5e8 // Tue Nov 5 00:53:20 1985 UTC

// Status is the execution state of an Engine.
type Status uint8

const (
	StatusNotStarted Status = iota
	StatusRunning
	StatusSuccess
	StatusFailure
)

var statusStrings = map[Status]string{
	StatusNotStarted: "NotStarted",
	StatusRunning:    "Running",
	StatusSuccess:    "Success",
	StatusFailure:    "Failure",
}

// String returns the Status as a human-readable name.
func (s Status) String() string {
	if str, ok := statusStrings[s]; ok {
		return str
	}
	return fmt.Sprintf("Unknown Status (%d)", uint8(s))
}

// IsTerminal reports whether no further steps can change the status.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// PrevOut describes the output spent by a transaction input.
type PrevOut struct {
	PkScript []byte
	Value    int64

	// ScriptType is the script type name reported by the data source,
	// for example "p2pkh" or "v0_p2wsh".  It may be empty, in which case
	// the type is derived from PkScript.
	ScriptType string
}

// TxContext is the transaction an engine evaluates signatures and lock times
// against.
type TxContext struct {
	Tx         *wire.MsgTx
	PrevOuts   []PrevOut
	InputIndex int
}

// NewTxContext returns a context for input idx of tx.  prevOuts is either
// nil or holds one entry per input.
func NewTxContext(tx *wire.MsgTx, prevOuts []PrevOut, idx int) (*TxContext, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("transaction input index %d is negative or "+
			">= %d", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}
	if prevOuts != nil && len(prevOuts) != len(tx.TxIn) {
		str := fmt.Sprintf("%d previous outputs supplied for %d inputs",
			len(prevOuts), len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	return &TxContext{Tx: tx, PrevOuts: prevOuts, InputIndex: idx}, nil
}

// TxIn returns the input being evaluated.
func (c *TxContext) TxIn() *wire.TxIn {
	return c.Tx.TxIn[c.InputIndex]
}

// PrevOut returns the output spent by the input being evaluated, if known.
func (c *TxContext) PrevOut() (PrevOut, bool) {
	if c.PrevOuts == nil {
		return PrevOut{}, false
	}
	return c.PrevOuts[c.InputIndex], true
}

// EngineOption configures optional Engine behavior.
type EngineOption func(*Engine)

// WithSigCache makes the engine remember verified signatures in sigCache.
func WithSigCache(sigCache *SigCache) EngineOption {
	return func(vm *Engine) {
		vm.sigCache = sigCache
	}
}

// Engine is a step-debuggable virtual machine that executes scripts.
//
// An engine owns its stacks exclusively.  Callers restart a session with
// Reset rather than editing engine state.
type Engine struct {
	script   *Script
	txCtx    *TxContext
	strategy stepStrategy
	sigCache *SigCache

	dstack stack // data stack
	astack stack // alt stack

	// redeemStack is the stack saved by the P2SH strategy for the redeem
	// script to run against.
	redeemStack [][]byte

	pc          int
	lastCodeSep int
	status      Status
	err         error
}

// requireTx returns an error when op needs a transaction and the engine has
// none.
func (vm *Engine) requireTx(op *opcode) error {
	if vm.txCtx == nil {
		str := fmt.Sprintf("%s requires a transaction context",
			op.name)
		return scriptError(ErrMissingTxContext, str)
	}
	return nil
}

// jump moves the program counter to the jump table target of the
// conditional at the current position.  The engine advances past the
// target afterwards.
func (vm *Engine) jump() error {
	target, ok := vm.script.jumpTable[vm.pc]
	if !ok {
		str := fmt.Sprintf("no jump target for command %d", vm.pc)
		return scriptError(ErrInternal, str)
	}
	vm.pc = target
	return nil
}

// Step executes the command at the program counter and returns the
// resulting status.  Once the engine has reached a terminal status Step does
// nothing.
func (vm *Engine) Step() Status {
	if vm.status.IsTerminal() {
		return vm.status
	}
	vm.status = StatusRunning

	if vm.pc < vm.script.Len() {
		if err := vm.strategy.step(vm); err != nil {
			vm.fail(err)
			return vm.status
		}
	}

	if vm.pc >= vm.script.Len() {
		vm.finish()
	}
	return vm.status
}

// Run steps the engine until it reaches a terminal status and returns it
// along with the error that caused a failure, if any.
func (vm *Engine) Run() (Status, error) {
	// Every step moves the program counter forward, so the script length
	// bounds the number of steps.
	for i := 0; i <= vm.script.Len() && !vm.status.IsTerminal(); i++ {
		vm.Step()
	}
	return vm.status, vm.err
}

// Reset returns the engine to its initial state so the script can be run
// again.
func (vm *Engine) Reset() {
	vm.dstack.Reset()
	vm.astack.Reset()
	vm.redeemStack = nil
	vm.pc = 0
	vm.lastCodeSep = -1
	vm.status = StatusNotStarted
	vm.err = nil
}

// fail moves the engine to StatusFailure.
func (vm *Engine) fail(err error) {
	log.Debugf("Script failed at command %d: %v", vm.pc, err)
	vm.status = StatusFailure
	vm.err = err
}

// finish decides the terminal status once the program counter has passed the
// last command.  The stack must hold exactly one item, which is consumed
// and must be true.
func (vm *Engine) finish() {
	if depth := vm.dstack.Depth(); depth != 1 {
		str := fmt.Sprintf("stack contains %d items after script "+
			"execution, expected exactly 1", depth)
		vm.fail(scriptError(ErrCleanStack, str))
		return
	}

	v, _ := vm.dstack.PopByteArray()
	if !asBool(v) {
		vm.fail(scriptError(ErrEvalFalse, "false stack entry at end of "+
			"script execution"))
		return
	}

	vm.status = StatusSuccess
}

// executeCommand runs the command at the program counter and advances it.
func (vm *Engine) executeCommand() error {
	log.Tracef("%v", newLogClosure(func() string {
		dis, err := vm.DisasmPC()
		if err != nil {
			return fmt.Sprintf("stepping (%v)", err)
		}
		return fmt.Sprintf("stepping %v", dis)
	}))

	cmd := vm.script.cmds[vm.pc]
	if cmd.isData {
		vm.dstack.PushByteArray(cmd.Data)
		vm.pc++
		return nil
	}

	op := &opcodeArrayRef[cmd.Opcode]
	if op.opfunc == nil {
		str := fmt.Sprintf("attempt to execute unknown opcode 0x%02x",
			cmd.Opcode)
		return scriptError(ErrUnknownOpcode, str)
	}
	if depth := vm.dstack.Depth(); depth < op.minStack {
		str := fmt.Sprintf("%s requires %d stack items, have %d",
			op.name, op.minStack, depth)
		return scriptError(ErrStackUnderflow, str)
	}

	if err := op.opfunc(op, vm); err != nil {
		return err
	}

	// A retained push-length opcode has already pushed the data command
	// that follows it.
	if cmd.Opcode >= OP_DATA_1 && cmd.Opcode <= OP_DATA_75 {
		vm.pc += 2
	} else {
		vm.pc++
	}

	log.Tracef("%v", newLogClosure(func() string {
		var dstr, astr string

		// Log the non-empty stacks when tracing.
		if vm.dstack.Depth() != 0 {
			dstr = "Stack:\n" + spew.Sdump(vm.dstack.Items())
		}
		if vm.astack.Depth() != 0 {
			astr = "AltStack:\n" + spew.Sdump(vm.astack.Items())
		}

		return dstr + astr
	}))

	return nil
}

// subScript returns the serialized script signatures commit to for the
// command at the program counter.  Within a pubkey, redeem or witness
// script section that is the section itself, otherwise the spent output's
// script, falling back to the whole script.  Commands up to the last
// executed OP_CODESEPARATOR are excluded.
func (vm *Engine) subScript() []byte {
	if sec, ok := vm.script.SectionAt(vm.pc); ok {
		switch sec.Kind {
		case SectionPubKey, SectionRedeem, SectionWitnessScript:
			start := sec.Start
			if vm.lastCodeSep >= start {
				start = vm.lastCodeSep + 1
			}
			return vm.script.serializeRange(start, sec.End)
		}
	}

	if prevOut, ok := vm.txCtx.PrevOut(); ok && len(prevOut.PkScript) > 0 &&
		vm.lastCodeSep < 0 {

		return prevOut.PkScript
	}

	return vm.script.serializeRange(vm.lastCodeSep+1, vm.script.Len())
}

// DisasmPC returns the string for the disassembly of the command pointed to
// by the program counter, prefixed by its section.
func (vm *Engine) DisasmPC() (string, error) {
	if vm.pc >= vm.script.Len() {
		str := fmt.Sprintf("program counter %d is past the end of the "+
			"script (%d commands)", vm.pc, vm.script.Len())
		return "", scriptError(ErrInvalidIndex, str)
	}

	prefix := "script"
	if sec, ok := vm.script.SectionAt(vm.pc); ok {
		prefix = sec.Kind.String()
	}
	return fmt.Sprintf("%s:%04d: %v", prefix, vm.pc,
		vm.script.cmds[vm.pc]), nil
}

// Snapshot is a copy of the engine state for display.
type Snapshot struct {
	PC       int
	Status   Status
	Err      error
	Command  *Command
	Section  *Section
	Stack    [][]byte
	AltStack [][]byte
}

// Snapshot returns a copy of the current engine state.
func (vm *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		PC:       vm.pc,
		Status:   vm.status,
		Err:      vm.err,
		Stack:    vm.dstack.Items(),
		AltStack: vm.astack.Items(),
	}
	if vm.pc < vm.script.Len() {
		cmd := vm.script.cmds[vm.pc]
		snap.Command = &cmd
	}
	if sec, ok := vm.script.SectionAt(vm.pc); ok {
		snap.Section = &sec
	}
	return snap
}

// PC returns the index of the next command to execute.
func (vm *Engine) PC() int {
	return vm.pc
}

// Status returns the execution status.
func (vm *Engine) Status() Status {
	return vm.status
}

// Err returns the error that moved the engine to StatusFailure.
func (vm *Engine) Err() error {
	return vm.err
}

// Script returns the script being executed.
func (vm *Engine) Script() *Script {
	return vm.script
}

// Strategy returns the step strategy chosen for the script.
func (vm *Engine) Strategy() StrategyKind {
	return vm.strategy.kind()
}

// GetStack returns the contents of the primary stack as an array. where the
// last item in the array is the top of the stack.
func (vm *Engine) GetStack() [][]byte {
	return vm.dstack.Items()
}

// GetAltStack returns the contents of the alternate stack as an array where
// the last item in the array is the top of the stack.
func (vm *Engine) GetAltStack() [][]byte {
	return vm.astack.Items()
}

// needsTx reports whether any command of script can only run against a
// transaction.
func needsTx(script *Script) (byte, bool) {
	for _, cmd := range script.cmds {
		if cmd.isData || cmd.display {
			continue
		}
		switch cmd.Opcode {
		case OP_CHECKSIG, OP_CHECKSIGVERIFY, OP_CHECKMULTISIG,
			OP_CHECKMULTISIGVERIFY:

			return cmd.Opcode, true
		}
	}
	return 0, false
}

// NewEngine returns a new script engine for script.  txCtx may be nil for
// scripts that do not check signatures.  The step strategy is picked from the
// script sections.
func NewEngine(script *Script, txCtx *TxContext, opts ...EngineOption) (*Engine, error) {
	if txCtx == nil {
		if op, ok := needsTx(script); ok {
			str := fmt.Sprintf("script contains %s but no transaction "+
				"was supplied", opcodeName(op))
			return nil, scriptError(ErrMissingTxContext, str)
		}
	}

	vm := &Engine{
		script:   script,
		txCtx:    txCtx,
		strategy: newStepStrategy(script),
	}
	for _, opt := range opts {
		opt(vm)
	}
	vm.Reset()

	log.Debugf("New %v engine for %d commands", vm.strategy.kind(),
		script.Len())
	return vm, nil
}
