// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"testing"
)

// TestCondStack exercises the conditional execution stack directly to ensure
// branch tracking behaves across nesting, swaps, and pops.
func TestCondStack(t *testing.T) {
	t.Parallel()

	var cs condStack
	if !cs.branchExecuting() {
		t.Fatal("empty conditional stack must be executing")
	}
	if cs.depth() != 0 {
		t.Fatalf("empty conditional stack depth %d", cs.depth())
	}

	// Entering a true branch keeps execution live.
	cs.push(OpCondTrue)
	if !cs.branchExecuting() {
		t.Fatal("true branch must be executing")
	}

	// A nested false branch disables execution until it ends.
	cs.push(OpCondFalse)
	if cs.branchExecuting() {
		t.Fatal("false branch must not be executing")
	}
	if cs.depth() != 2 {
		t.Fatalf("depth %d, want 2", cs.depth())
	}

	// Swapping the false branch (OP_ELSE) re-enables execution.
	elseOp := &opcodeArray[OP_ELSE]
	endifOp := &opcodeArray[OP_ENDIF]
	if err := cs.swap(elseOp); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if !cs.branchExecuting() {
		t.Fatal("swapped branch must be executing")
	}

	// A skip entry never becomes executable, even after a swap.
	cs.push(OpCondSkip)
	if cs.branchExecuting() {
		t.Fatal("skip branch must not be executing")
	}
	if err := cs.swap(elseOp); err != nil {
		t.Fatalf("swap skip: %v", err)
	}
	if cs.branchExecuting() {
		t.Fatal("swapped skip branch must not be executing")
	}

	// Unwind everything.
	for i := 0; i < 3; i++ {
		if err := cs.pop(endifOp); err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
	}
	if !cs.branchExecuting() {
		t.Fatal("unwound conditional stack must be executing")
	}

	// Pop and swap without a matching conditional must fail.
	if err := cs.pop(endifOp); !IsErrorKind(err, ErrUnbalancedConditional) {
		t.Fatalf("pop on empty stack: %v", err)
	}
	if err := cs.swap(elseOp); !IsErrorKind(err, ErrUnbalancedConditional) {
		t.Fatalf("swap on empty stack: %v", err)
	}
}
