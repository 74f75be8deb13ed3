// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"
	"fmt"

	"github.com/sproutbtc/sproutd/txscript"
)

// RuleError identifies a rule violation.  It is used to indicate that
// processing of a transaction failed due to one of the many validation
// rules.  The caller can use type assertions to determine if a failure was
// specifically due to a rule violation and use the Err field to access the
// underlying error, which will be either a TxRuleError or a
// txscript.Error.
type RuleError struct {
	Err error
}

// Error satisfies the error interface and prints human-readable errors.
func (e RuleError) Error() string {
	if e.Err == nil {
		return "<nil>"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying wrapped error.
func (e RuleError) Unwrap() error {
	return e.Err
}

// TxRuleError identifies a rule violation related to a transaction.  It is
// used to indicate that processing of a transaction failed due to one of the
// many validation rules.
type TxRuleError struct {
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e TxRuleError) Error() string {
	return e.Description
}

// txRuleError creates an underlying TxRuleError with the given description
// and returns a RuleError that encapsulates it.
func txRuleError(format string, args ...interface{}) RuleError {
	return RuleError{
		Err: TxRuleError{Description: fmt.Sprintf(format, args...)},
	}
}

// chainRuleError returns a RuleError that encapsulates the given error, which
// is expected to come from script validation.
func chainRuleError(err error) RuleError {
	return RuleError{Err: err}
}

// IsRuleError returns whether or not the passed error is a RuleError,
// unwrapping as needed.
func IsRuleError(err error) bool {
	var rerr RuleError
	return errors.As(err, &rerr)
}

// IsScriptError returns whether or not the passed error ultimately stems from
// a script execution failure.
func IsScriptError(err error) bool {
	var serr txscript.Error
	return errors.As(err, &serr)
}
