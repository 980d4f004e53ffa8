// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// scriptdbg steps through the scripts of a bitcoin transaction input, or a
// standalone script, printing the stacks after every instruction.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
	"github.com/landaverdend/btcwebtools/internal/log"
	"github.com/landaverdend/btcwebtools/internal/version"
	"github.com/landaverdend/btcwebtools/txscript"
)

// dbgLog is the logger for the command itself.
var dbgLog = log.DbugLog

// run executes the session described by cfg and writes it to w.  It
// returns the final status of the engine.
func run(ctx context.Context, cfg *config, w io.Writer,
	newSource func(context.Context, *config) (txSource, error)) (txscript.Status, error) {

	txCtx, err := loadTxContext(ctx, cfg, newSource)
	if err != nil {
		return txscript.StatusNotStarted, err
	}
	if txCtx != nil {
		renderTx(w, txCtx.Tx, txCtx.PrevOuts)
		fmt.Fprintf(w, "input %d\n", txCtx.InputIndex)
	}

	script, err := buildScript(cfg, txCtx)
	if err != nil {
		return txscript.StatusNotStarted, err
	}

	var opts []txscript.EngineOption
	if cfg.SigCacheSize > 0 {
		sigCache := txscript.NewSigCache(cfg.SigCacheSize)
		opts = append(opts, txscript.WithSigCache(sigCache))
	}
	vm, err := txscript.NewEngine(script, txCtx, opts...)
	if err != nil {
		return txscript.StatusNotStarted, err
	}
	if err := renderScript(w, vm); err != nil {
		return txscript.StatusNotStarted, err
	}

	for step := 1; !vm.Status().IsTerminal(); step++ {
		if cfg.Steps > 0 && step > cfg.Steps {
			dbgLog.Infof("Stopped after %d steps", cfg.Steps)
			break
		}
		if err := ctx.Err(); err != nil {
			return vm.Status(), err
		}

		disasm, err := vm.DisasmPC()
		if err != nil {
			// Only the final clean stack check remains.
			disasm = "end of script"
		}
		vm.Step()
		renderStep(w, step, disasm, vm.Snapshot())
	}

	snap := vm.Snapshot()
	renderResult(w, snap)
	if cfg.Dump {
		dumpState(w, snap)
	}
	return snap.Status, nil
}

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() int {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		var e *flags.Error
		switch {
		case errors.Is(err, errShowVersion):
			fmt.Println("scriptdbg version", version.String())
			return 0
		case errors.As(err, &e) && e.Type == flags.ErrHelp:
			fmt.Println(err)
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := log.InitLogRotator(filepath.Join(cfg.LogDir,
		defaultLogFilename)); err != nil {

		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer log.LogRotator.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	status, err := run(ctx, cfg, os.Stdout, newTxSource)
	if err != nil {
		dbgLog.Errorf("%v", err)
		return 1
	}
	if status != txscript.StatusSuccess {
		return 2
	}
	return 0
}

func main() {
	os.Exit(realMain())
}
