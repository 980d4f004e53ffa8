// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
)

// StrategyKind identifies how an engine moves the stack between script
// sections.
type StrategyKind uint8

const (
	// StrategyStandard executes commands without touching the stack at
	// section boundaries.
	StrategyStandard StrategyKind = iota

	// StrategyP2SH runs the redeem script against the stack the
	// signature script left, once the pubkey script has checked the
	// redeem script hash.
	StrategyP2SH

	// StrategyP2WSH runs the witness script against the witness items
	// only.
	StrategyP2WSH
)

var strategyKindStrings = map[StrategyKind]string{
	StrategyStandard: "standard",
	StrategyP2SH:     "p2sh",
	StrategyP2WSH:    "p2wsh",
}

// String returns the StrategyKind as a human-readable name.
func (k StrategyKind) String() string {
	if s, ok := strategyKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown StrategyKind (%d)", uint8(k))
}

// stepStrategy executes the command at the program counter, adjusting the
// stacks first when the command opens a section.
type stepStrategy interface {
	kind() StrategyKind
	step(vm *Engine) error
}

// newStepStrategy picks the strategy for the sections script carries.
func newStepStrategy(script *Script) stepStrategy {
	if _, ok := script.section(SectionRedeem); ok {
		return p2shStrategy{}
	}
	if _, ok := script.section(SectionWitnessScript); ok {
		return p2wshStrategy{}
	}
	return standardStrategy{}
}

// sectionStart returns the kind of the section starting at the program
// counter.
func sectionStart(vm *Engine) (SectionKind, bool) {
	sec, ok := vm.script.SectionAt(vm.pc)
	if !ok || sec.Start != vm.pc {
		return 0, false
	}
	return sec.Kind, true
}

type standardStrategy struct{}

func (standardStrategy) kind() StrategyKind {
	return StrategyStandard
}

func (standardStrategy) step(vm *Engine) error {
	return vm.executeCommand()
}

type p2shStrategy struct{}

func (p2shStrategy) kind() StrategyKind {
	return StrategyP2SH
}

// step saves the stack below the serialized redeem script when the pubkey
// script starts.  When the redeem script starts, the pubkey script result
// is checked and the saved stack restored.
func (p2shStrategy) step(vm *Engine) error {
	kind, ok := sectionStart(vm)
	switch {
	case ok && kind == SectionPubKey:
		items := vm.dstack.Items()
		if len(items) > 0 {
			items = items[:len(items)-1]
		}
		vm.redeemStack = items

	case ok && kind == SectionRedeem:
		verified, err := vm.dstack.PopBool()
		if err != nil {
			return err
		}
		if !verified {
			return scriptError(ErrEvalFalse, "redeem script hash "+
				"mismatch")
		}

		vm.dstack.Reset()
		for _, item := range vm.redeemStack {
			vm.dstack.PushByteArray(item)
		}
		log.Debugf("Restored %d items for the redeem script",
			len(vm.redeemStack))
	}

	return vm.executeCommand()
}

type p2wshStrategy struct{}

func (p2wshStrategy) kind() StrategyKind {
	return StrategyP2WSH
}

// step clears the stack when the witness script section starts so only the
// witness items it pushes are visible to the witness script.
func (p2wshStrategy) step(vm *Engine) error {
	if kind, ok := sectionStart(vm); ok && kind == SectionWitnessScript {
		log.Debugf("Clearing %d stack items for the witness script",
			vm.dstack.Depth())
		vm.dstack.Reset()
	}

	return vm.executeCommand()
}
