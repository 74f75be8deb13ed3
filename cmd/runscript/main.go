// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// runscript is a small utility for executing scripts against the script
// engine from the command line.  It is primarily useful for debugging
// scripts: it can disassemble a script, execute it with the standard
// validation flags, and optionally trace every step of execution.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/btcsuite/btclog"
	flags "github.com/jessevdk/go-flags"

	"github.com/sproutbtc/sproutd/txscript"
)

// config defines the configuration options for runscript.
type config struct {
	Script      string `short:"s" long:"script" description:"Hex-encoded script to execute" required:"true"`
	Disassemble bool   `short:"d" long:"disasm" description:"Disassemble the script instead of executing it"`
	Verbose     bool   `short:"v" long:"verbose" description:"Trace each step of script execution"`
	NoMinimal   bool   `long:"nominimaldata" description:"Do not require minimally encoded data pushes"`
	NoClean     bool   `long:"nocleanstack" description:"Do not require a clean stack after execution"`
}

// scriptFlags returns the script validation flags implied by the config.
func (cfg *config) scriptFlags() txscript.ScriptFlags {
	var scriptFlags txscript.ScriptFlags
	if !cfg.NoMinimal {
		scriptFlags |= txscript.ScriptVerifyMinimalData
	}
	if !cfg.NoClean {
		scriptFlags |= txscript.ScriptVerifyCleanStack
	}
	return scriptFlags
}

// printStack dumps the contents of an engine stack to stdout with the given
// label.  The end of the slice is the top of the stack.
func printStack(label string, stack [][]byte) {
	fmt.Printf("%s (%d items):\n", label, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		item := stack[i]
		if len(item) == 0 {
			fmt.Println("  <empty>")
			continue
		}
		fmt.Printf("  %x\n", item)
	}
}

// realMain drives the utility.  It is separate from main so deferred
// functions run before the process exits with a failure code.
func realMain() error {
	var cfg config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return err
	}

	script, err := hex.DecodeString(cfg.Script)
	if err != nil {
		return fmt.Errorf("invalid script hex: %w", err)
	}

	// Disassembly does not need an engine.
	if cfg.Disassemble {
		disasm, err := txscript.DisasmString(script)
		fmt.Println(disasm)
		return err
	}

	// Route script engine tracing to stdout when requested.
	if cfg.Verbose {
		backend := btclog.NewBackend(os.Stdout)
		logger := backend.Logger("SCRP")
		logger.SetLevel(btclog.LevelTrace)
		txscript.UseLogger(logger)
	}

	vm, err := txscript.NewEngine(script, cfg.scriptFlags())
	if err != nil {
		return err
	}

	execErr := vm.Execute()
	if execErr != nil {
		fmt.Printf("script FAILED: %v\n", execErr)
	} else {
		fmt.Println("script OK")
	}

	printStack("final stack", vm.GetStack())
	if altStack := vm.GetAltStack(); len(altStack) > 0 {
		printStack("final alt stack", altStack)
	}

	if execErr != nil {
		os.Exit(1)
	}
	return nil
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
