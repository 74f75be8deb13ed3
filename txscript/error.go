// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"
)

// ErrorKind identifies a kind of script error.  It is wrapped in an Error
// so callers can programmatically determine the specific failure via
// errors.Is while still getting a contextual description.
type ErrorKind string

// These constants are used to identify a specific ErrorKind.
const (
	// ------------------------------------------
	// Failures related to malformed scripts.
	// ------------------------------------------

	// ErrScriptTooShort is returned when a data push opcode declares more
	// bytes than remain in the script.
	ErrScriptTooShort = ErrorKind("ErrScriptTooShort")

	// ErrScriptTooLong is returned when a script is larger than
	// MaxScriptSize, either at engine construction or while assembling a
	// script with a ScriptBuilder.
	ErrScriptTooLong = ErrorKind("ErrScriptTooLong")

	// ErrUnknownOpcode is returned when an opcode with no defined behavior
	// is encountered on an executing branch.
	ErrUnknownOpcode = ErrorKind("ErrUnknownOpcode")

	// ErrReservedOpcode is returned when an opcode marked as reserved is
	// encountered on an executing branch.
	ErrReservedOpcode = ErrorKind("ErrReservedOpcode")

	// ErrDisabledOpcode is returned when a disabled opcode is encountered
	// anywhere in the script, including branches that are not executed.
	ErrDisabledOpcode = ErrorKind("ErrDisabledOpcode")

	// ------------------------------------------
	// Failures related to stack discipline.
	// ------------------------------------------

	// ErrStackUnderflow is returned when an opcode requires more items on
	// the data or alternate stack than are present.
	ErrStackUnderflow = ErrorKind("ErrStackUnderflow")

	// ErrInvalidValue is returned when a stack element is interpreted as a
	// number but its encoding occupies more bytes than allowed.
	ErrInvalidValue = ErrorKind("ErrInvalidValue")

	// ErrMinimalData is returned when the minimal data flag is set and a
	// stack element interpreted as a number is not minimally encoded.
	ErrMinimalData = ErrorKind("ErrMinimalData")

	// ErrElementTooBig is returned when the size of an element to be
	// pushed to the stack exceeds MaxScriptElementSize.
	ErrElementTooBig = ErrorKind("ErrElementTooBig")

	// ErrStackOverflow is returned when the combined depth of the data and
	// alternate stacks exceeds MaxStackSize.
	ErrStackOverflow = ErrorKind("ErrStackOverflow")

	// ErrInvalidStackOperation is returned when a stack operation is
	// attempted with an argument that is out of its acceptable range, such
	// as rolling to a negative depth.
	ErrInvalidStackOperation = ErrorKind("ErrInvalidStackOperation")

	// ------------------------------------------
	// Failures related to flow discipline.
	// ------------------------------------------

	// ErrUnbalancedConditional is returned when an OP_ELSE or OP_ENDIF is
	// encountered without a matching OP_IF or OP_NOTIF, or when the
	// conditional stack is not empty once the script ends.
	ErrUnbalancedConditional = ErrorKind("ErrUnbalancedConditional")

	// ------------------------------------------
	// Script-defined outcomes.  These are expected results under the
	// control of the script author rather than implementation bugs.
	// ------------------------------------------

	// ErrVerifyFailed is returned when OP_VERIFY, OP_EQUALVERIFY, or
	// OP_NUMEQUALVERIFY pops a false element.
	ErrVerifyFailed = ErrorKind("ErrVerifyFailed")

	// ErrEarlyReturn is returned when OP_RETURN is executed.  The stacks
	// are left untouched so callers may inspect whatever the script placed
	// on them before bailing out.
	ErrEarlyReturn = ErrorKind("ErrEarlyReturn")

	// ------------------------------------------
	// Failures related to final execution state.
	// ------------------------------------------

	// ErrScriptUnfinished is returned when CheckErrorCondition is called
	// on a script that has not finished executing.
	ErrScriptUnfinished = ErrorKind("ErrScriptUnfinished")

	// ErrInvalidProgramCounter is returned when an attempt to step the
	// engine is made once the script has already been fully executed.
	ErrInvalidProgramCounter = ErrorKind("ErrInvalidProgramCounter")

	// ErrEmptyStack is returned when the script completed without error
	// but the data stack is empty, leaving no verdict to inspect.
	ErrEmptyStack = ErrorKind("ErrEmptyStack")

	// ErrEvalFalse is returned when the script completed without error but
	// terminated with a false top stack element.
	ErrEvalFalse = ErrorKind("ErrEvalFalse")

	// ErrCleanStack is returned when the ScriptVerifyCleanStack flag is
	// set and more than one element remains after execution.
	ErrCleanStack = ErrorKind("ErrCleanStack")

	// ------------------------------------------
	// Failures related to exceeding limits or improper API usage.
	// ------------------------------------------

	// ErrTooManyOperations is returned when a script contains more than
	// MaxOpsPerScript opcodes that do not push data.
	ErrTooManyOperations = ErrorKind("ErrTooManyOperations")

	// ErrInvalidFlags is returned when the flags passed to NewEngine
	// contain an invalid combination.
	ErrInvalidFlags = ErrorKind("ErrInvalidFlags")

	// ErrInvalidIndex is returned when an out-of-bounds index is passed to
	// a function.
	ErrInvalidIndex = ErrorKind("ErrInvalidIndex")

	// ErrNonPushOnly is returned when the ScriptVerifySigPushOnly flag is
	// set and the unlocking portion of the script performs operations
	// other than pushing data.
	ErrNonPushOnly = ErrorKind("ErrNonPushOnly")

	// ErrDiscourageUpgradableNOPs is returned when the
	// ScriptDiscourageUpgradableNops flag is set and one of the upgradable
	// NOP opcodes is encountered.
	ErrDiscourageUpgradableNOPs = ErrorKind("ErrDiscourageUpgradableNOPs")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies a script-related error.  It has full support for the
// standard library errors.Is and errors.As functions.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// scriptError creates an Error given a set of arguments.
func scriptError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

// IsErrorKind returns whether or not the provided error is a script error
// with the provided error kind.
func IsErrorKind(err error, kind ErrorKind) bool {
	var scriptErr Error
	return errors.As(err, &scriptErr) && errors.Is(scriptErr.Err, kind)
}
