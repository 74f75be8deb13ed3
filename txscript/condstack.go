// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"
)

// Conditional execution constants.
const (
	OpCondFalse = 0
	OpCondTrue  = 1
	OpCondSkip  = 2
)

// condStack tracks the state of nested conditional execution introduced by
// OP_IF and OP_NOTIF.  Each entry is one of the OpCond constants above.  A
// Skip entry marks a conditional nested inside a branch that is itself not
// executing, so its own opcodes must be skipped regardless of the data
// stack.
//
// The stack must be empty once the script ends; anything left over means an
// OP_IF was never terminated by a matching OP_ENDIF.
type condStack struct {
	conditions []int
}

// depth returns the number of open conditionals.
func (c *condStack) depth() int {
	return len(c.conditions)
}

// branchExecuting returns whether or not the current conditional branch is
// actively executing.  For example, when the data stack has a false value
// and an OP_IF is encountered, the branch is inactive until an OP_ELSE or
// OP_ENDIF is encountered.  It properly handles nested conditionals.
func (c *condStack) branchExecuting() bool {
	if len(c.conditions) == 0 {
		return true
	}
	return c.conditions[len(c.conditions)-1] == OpCondTrue
}

// push adds a new conditional marker for an OP_IF or OP_NOTIF.
//
// Conditional stack transformation: [...] -> [... cond]
func (c *condStack) push(cond int) {
	c.conditions = append(c.conditions, cond)
}

// pop removes the marker belonging to a terminated conditional block.  An
// error is returned when there is no open conditional, which means an
// OP_ENDIF was encountered without a matching OP_IF.
//
// Conditional stack transformation: [... cond] -> [...]
func (c *condStack) pop(op *opcode) error {
	if len(c.conditions) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	c.conditions = c.conditions[:len(c.conditions)-1]
	return nil
}

// swap inverts the top conditional marker for an OP_ELSE.  A skip marker is
// left untouched since it indicates the conditional is nested in a branch
// that is not executing.  An error is returned when there is no open
// conditional.
//
// Conditional stack transformation: [... cond] -> [... !cond]
func (c *condStack) swap(op *opcode) error {
	if len(c.conditions) == 0 {
		str := fmt.Sprintf("encountered opcode %s with no matching "+
			"opcode to begin conditional execution", op.name)
		return scriptError(ErrUnbalancedConditional, str)
	}

	conditionalIdx := len(c.conditions) - 1
	switch c.conditions[conditionalIdx] {
	case OpCondTrue:
		c.conditions[conditionalIdx] = OpCondFalse
	case OpCondFalse:
		c.conditions[conditionalIdx] = OpCondTrue
	case OpCondSkip:
		// Value doesn't change in skip since it indicates this opcode
		// is nested in a non-executed branch.
	}
	return nil
}
