// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"golang.org/x/crypto/ripemd160"
)

// ScriptFlags is a bitmask defining additional operations or tests that will
// be done when executing a script pair.
type ScriptFlags uint32

const (
	// ScriptBip16 defines whether the bip16 threshold has passed and thus
	// pay-to-script hash transactions will be fully validated.
	ScriptBip16 ScriptFlags = 1 << iota

	// ScriptStrictMultiSig defines whether to verify the stack item
	// used by CHECKMULTISIG is zero length.
	ScriptStrictMultiSig

	// ScriptDiscourageUpgradableNops defines whether to verify that
	// NOP1 through NOP10 are reserved for future soft-fork upgrades.  This
	// flag must not be used for consensus critical code nor applied to
	// blocks as this flag is only for stricter standard transaction
	// checks.  This flag is only applied when the above opcodes are
	// executed.
	ScriptDiscourageUpgradableNops

	// ScriptVerifyCheckLockTimeVerify defines whether to verify that
	// a transaction output is spendable based on the locktime.
	ScriptVerifyCheckLockTimeVerify

	// ScriptVerifyCheckSequenceVerify defines whether to allow execution
	// pathways of a script to be restricted based on the age of the output
	// being spent.
	ScriptVerifyCheckSequenceVerify

	// ScriptVerifyCleanStack defines that the stack must contain only
	// one stack element after evaluation and that the element must be
	// true if interpreted as a boolean.
	ScriptVerifyCleanStack

	// ScriptVerifyDERSignatures defines that signatures are required
	// to compily with the DER format.
	ScriptVerifyDERSignatures

	// ScriptVerifyLowS defines that signtures are required to comply with
	// the DER format and whose S value is <= order / 2.
	ScriptVerifyLowS

	// ScriptVerifyMinimalData defines that signatures must use the
	// smallest push operator. This is both rules 3 and 4 of BIP0062.
	ScriptVerifyMinimalData

	// ScriptVerifyNullFail defines that signatures must be empty if
	// a CHECKSIG or CHECKMULTISIG operation fails.
	ScriptVerifyNullFail

	// ScriptVerifySigPushOnly defines that signature scripts must contain
	// only pushed data.  This is rule 2 of BIP0062.
	ScriptVerifySigPushOnly

	// ScriptVerifyStrictEncoding defines that signature scripts and
	// public keys must follow the strict encoding requirements.
	ScriptVerifyStrictEncoding

	// ScriptVerifyWitness defines whether or not to verify a transaction
	// output using a witness program template.
	ScriptVerifyWitness

	// ScriptVerifyDiscourageUpgradeableWitnessProgram makes witness
	// program with versions 2-16 non-standard.
	ScriptVerifyDiscourageUpgradeableWitnessProgram

	// ScriptVerifyMinimalIf makes a script with an OP_IF/OP_NOTIF whose
	// operand is anything other than empty vector or [0x01] non-standard.
	ScriptVerifyMinimalIf

	// ScriptVerifyWitnessPubKeyType makes a script within a check-sig
	// operation whose public key isn't serialized in a compressed format
	// non-standard.
	ScriptVerifyWitnessPubKeyType

	// ScriptVerifyTaproot defines whether or not to verify a transaction
	// output using the new taproot validation rules.
	ScriptVerifyTaproot

	// ScriptVerifyDiscourageUpgradeableTaprootVersion defines whether or
	// not to consider any new/unknown taproot leaf versions as
	// non-standard.
	ScriptVerifyDiscourageUpgradeableTaprootVersion
)

// scriptFlagsMask is the set of all defined script flags.  Any bits outside
// this mask are rejected by the engine constructor.
const scriptFlagsMask = ScriptBip16 |
	ScriptStrictMultiSig |
	ScriptDiscourageUpgradableNops |
	ScriptVerifyCheckLockTimeVerify |
	ScriptVerifyCheckSequenceVerify |
	ScriptVerifyCleanStack |
	ScriptVerifyDERSignatures |
	ScriptVerifyLowS |
	ScriptVerifyMinimalData |
	ScriptVerifyNullFail |
	ScriptVerifySigPushOnly |
	ScriptVerifyStrictEncoding |
	ScriptVerifyWitness |
	ScriptVerifyDiscourageUpgradeableWitnessProgram |
	ScriptVerifyMinimalIf |
	ScriptVerifyWitnessPubKeyType |
	ScriptVerifyTaproot |
	ScriptVerifyDiscourageUpgradeableTaprootVersion

// HashFunc is the signature of the hash collaborator invoked by OP_HASH160.
// It receives the raw popped element and returns the digest to push.
type HashFunc func([]byte) []byte

// SigVerifier is the signature of the verification collaborator invoked by
// OP_CHECKSIG.  It receives the raw signature and public key elements and
// reports whether the signature is valid.  The engine itself performs no
// elliptic curve math.
type SigVerifier func(sig, pubKey []byte) bool

// defaultHash160 implements the standard bitcoin hash160, which is
// ripemd160(sha256(data)).
func defaultHash160(buf []byte) []byte {
	sha := sha256.Sum256(buf)
	h := ripemd160.New()
	h.Write(sha[:])
	return h.Sum(nil)
}

// Engine is the virtual machine that executes scripts.
//
// The engine runs a single immutable script buffer which the caller has
// already assembled, classically the concatenation of an input's signature
// script and the referenced output's public key script.  It is created per
// execution and must not be reused for another script.
type Engine struct {
	// The following fields are set when the engine is created and must
	// not be changed afterwards.  The entries of the signature cache are
	//
	// flags specifies the additional flags which modify the execution
	// behavior of the engine.
	//
	// script houses the raw script bytes the engine executes.  It is
	// never mutated.
	//
	// hash160 and sigVerifier are the injected collaborators used by
	// OP_HASH160 and OP_CHECKSIG respectively.
	flags       ScriptFlags
	script      []byte
	hash160     HashFunc
	sigVerifier SigVerifier

	// tokenizer provides the token stream of the script being executed
	// and doubles as state tracking for the program counter.
	tokenizer ScriptTokenizer

	// The following fields house the execution state of the engine.
	dstack    stack
	astack    stack
	condStack condStack
	numOps    int
}

// hasFlag returns whether the script engine instance has the passed flag
// set.
func (vm *Engine) hasFlag(flag ScriptFlags) bool {
	return vm.flags&flag == flag
}

// executeOpcode performs execution on the passed opcode.  It takes into
// account whether or not it is hidden by conditionals, but some rules still
// must be tested in this case.
func (vm *Engine) executeOpcode(op *opcode, data []byte) error {
	// Disabled opcodes are fail on program counter.
	if isOpcodeDisabled(op.value) {
		str := fmt.Sprintf("attempt to execute disabled opcode %s",
			op.name)
		return scriptError(ErrDisabledOpcode, str)
	}

	// Note that this includes OP_RESERVED which counts as a push
	// operation.
	if op.value > OP_16 {
		vm.numOps++
		if vm.numOps > MaxOpsPerScript {
			str := fmt.Sprintf("exceeded max operation limit of %d",
				MaxOpsPerScript)
			return scriptError(ErrTooManyOperations, str)
		}
	} else if len(data) > MaxScriptElementSize {
		str := fmt.Sprintf("element size %d exceeds max allowed size %d",
			len(data), MaxScriptElementSize)
		return scriptError(ErrElementTooBig, str)
	}

	// Nothing left to do when this is not a conditional opcode and it is
	// not in an executing branch.
	if !vm.condStack.branchExecuting() && !isOpcodeConditional(op.value) {
		return nil
	}

	// Ensure all executed data push opcodes use the minimal encoding when
	// the minimal data verification flag is set.
	if vm.dstack.verifyMinimalData && op.value <= OP_PUSHDATA4 {
		if err := checkMinimalDataPush(op, data); err != nil {
			return err
		}
	}

	return op.opfunc(op, data, vm)
}

// Step executes the next instruction and moves the program counter to the
// next opcode in the script.  Step will return true in the case that the
// last opcode was successfully executed.
//
// The result of calling Step or any other method is undefined if an error
// is returned.
func (vm *Engine) Step() (done bool, err error) {
	// Attempt to parse the next opcode from the current script.
	if !vm.tokenizer.Next() {
		// Note that due to the fact that all scripts are checked for
		// parse failures before this point, tokenizer errors here can
		// only happen on a truncated data push.
		if err := vm.tokenizer.Err(); err != nil {
			return true, err
		}

		str := fmt.Sprintf("attempt to step beyond script index %d",
			vm.tokenizer.ByteIndex())
		return true, scriptError(ErrInvalidProgramCounter, str)
	}

	// Execute the opcode while taking into account several things such as
	// disabled opcodes, illegal opcodes, maximum allowed operations per
	// script, maximum script element sizes, and conditionals.
	err = vm.executeOpcode(vm.tokenizer.op, vm.tokenizer.Data())
	if err != nil {
		return true, err
	}

	// The number of elements in the combination of the data and alt
	// stacks must not exceed the maximum number of stack elements
	// allowed.
	combinedStackSize := vm.dstack.Depth() + vm.astack.Depth()
	if combinedStackSize > MaxStackSize {
		str := fmt.Sprintf("combined stack size %d > max allowed %d",
			combinedStackSize, MaxStackSize)
		return false, scriptError(ErrStackOverflow, str)
	}

	// The script is done when the program counter has consumed the final
	// opcode, at which point the conditional execution stack must be
	// empty.
	if vm.tokenizer.Done() {
		if vm.condStack.depth() != 0 {
			return true, scriptError(ErrUnbalancedConditional,
				"end of script reached in conditional execution")
		}
		return true, nil
	}

	return false, nil
}

// Execute will execute all scripts in the script engine and return either
// nil for successful validation or an error if one occurred.
func (vm *Engine) Execute() (err error) {
	done := false
	for !done {
		log.Tracef("%v", newLogClosure(func() string {
			dis, err := vm.DisasmPC()
			if err != nil {
				return fmt.Sprintf("stepping - failed to disasm pc: %v",
					err)
			}
			return fmt.Sprintf("stepping %v", dis)
		}))

		done, err = vm.Step()
		if err != nil {
			return err
		}
		log.Tracef("%v", newLogClosure(func() string {
			var dstr, astr string

			// Log the non-empty stacks when tracing.
			if vm.dstack.Depth() != 0 {
				dstr = "Stack:\n" + vm.dstack.String()
			}
			if vm.astack.Depth() != 0 {
				astr = "AltStack:\n" + vm.astack.String()
			}

			return dstr + astr
		}))
	}

	return vm.CheckErrorCondition(true)
}

// CheckErrorCondition returns nil if the running script has ended and was
// successful, leaving a true boolean on the stack.  An error otherwise,
// including if the script has not finished.
func (vm *Engine) CheckErrorCondition(finalScript bool) error {
	// Check execution is actually done by ensuring the program counter is
	// past the end of the script.
	if !vm.tokenizer.Done() {
		return scriptError(ErrScriptUnfinished,
			"error check when script unfinished")
	}

	// The final script must end with exactly one data stack item when the
	// verify clean stack flag is set.
	if finalScript && vm.hasFlag(ScriptVerifyCleanStack) &&
		vm.dstack.Depth() != 1 {

		str := fmt.Sprintf("stack must contain exactly one item (contains %d)",
			vm.dstack.Depth())
		return scriptError(ErrCleanStack, str)
	} else if vm.dstack.Depth() < 1 {
		return scriptError(ErrEmptyStack,
			"stack empty at end of script execution")
	}

	v, err := vm.dstack.PeekBool(0)
	if err != nil {
		return err
	}
	if !v {
		// Log interesting data.
		log.Tracef("%v", newLogClosure(func() string {
			var buf strings.Builder
			buf.WriteString("scripts failed:\n")
			dis, _ := vm.DisasmScript()
			buf.WriteString(dis)
			return buf.String()
		}))
		return scriptError(ErrEvalFalse,
			"false stack entry at end of script execution")
	}
	return nil
}

// DisasmPC returns the string for the disassembly of the opcode that will be
// next to execute when Step is called.
func (vm *Engine) DisasmPC() (string, error) {
	// Create a copy of the current tokenizer and parse the next opcode in
	// the copy to avoid mutating the current one.
	peekTokenizer := vm.tokenizer
	pc := peekTokenizer.ByteIndex()
	if !peekTokenizer.Next() {
		// Note that due to the fact that all scripts are checked for
		// parse failures before this point, an error here can only be
		// a truncated data push.
		if err := peekTokenizer.Err(); err != nil {
			return "", err
		}

		// Note that this should be impossible to hit in practice
		// because the only way it could happen would be for the final
		// opcode of a script to already be parsed without the script
		// having completed.
		return "", scriptError(ErrInvalidProgramCounter,
			"program counter beyond script length")
	}

	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("%04x:", pc))
	disasmOpcode(&buf, peekTokenizer.op, peekTokenizer.Data(), false)
	return buf.String(), nil
}

// DisasmScript returns the disassembly string for the script being executed,
// one opcode per line.
func (vm *Engine) DisasmScript() (string, error) {
	var disbuf strings.Builder
	tokenizer := MakeScriptTokenizer(vm.script)
	for !tokenizer.Done() {
		pc := tokenizer.ByteIndex()
		if !tokenizer.Next() {
			break
		}
		disbuf.WriteString(fmt.Sprintf("%04x:", pc))
		disasmOpcode(&disbuf, tokenizer.op, tokenizer.Data(), false)
		disbuf.WriteByte('\n')
	}
	if err := tokenizer.Err(); err != nil {
		return "", err
	}
	return disbuf.String(), nil
}

// GetStack returns the contents of the primary stack as an array where the
// last item in the array is the top of the stack.
func (vm *Engine) GetStack() [][]byte {
	return getStack(&vm.dstack)
}

// SetStack sets the contents of the primary stack to the contents of the
// provided array where the last item in the array will be the top of the
// stack.
func (vm *Engine) SetStack(data [][]byte) {
	setStack(&vm.dstack, data)
}

// GetAltStack returns the contents of the alternate stack as an array where
// the last item in the array is the top of the stack.
func (vm *Engine) GetAltStack() [][]byte {
	return getStack(&vm.astack)
}

// SetAltStack sets the contents of the alternate stack to the contents of
// the provided array where the last item in the array will be the top of the
// stack.
func (vm *Engine) SetAltStack(data [][]byte) {
	setStack(&vm.astack, data)
}

// getStack returns the contents of stack as a byte array bottom up.
func getStack(stack *stack) [][]byte {
	array := make([][]byte, stack.Depth())
	for i := range array {
		// PeekByteArray can't fail due to overflow, already checked.
		array[len(array)-i-1], _ = stack.PeekByteArray(int32(i))
	}
	return array
}

// setStack sets the stack to the contents of the array where the last item
// in the array is the top item in the stack.
func setStack(stack *stack, data [][]byte) {
	// This can not error.  Only errors are for invalid arguments.
	_ = stack.DropN(stack.Depth())

	for i := range data {
		stack.PushByteArray(data[i])
	}
}

// EngineOption describes a functional option that can be passed to NewEngine
// in order to modify the collaborators the engine is created with.
type EngineOption func(*Engine)

// WithHash160 overrides the hash collaborator used by OP_HASH160.  The
// default is ripemd160(sha256(data)).
func WithHash160(h HashFunc) EngineOption {
	return func(vm *Engine) {
		vm.hash160 = h
	}
}

// WithSigVerifier sets the signature verification collaborator used by
// OP_CHECKSIG.  Without one, signature checks fail closed and OP_CHECKSIG
// pushes false.
func WithSigVerifier(v SigVerifier) EngineOption {
	return func(vm *Engine) {
		vm.sigVerifier = v
	}
}

// NewEngine returns a new script engine for the provided script which the
// caller has typically assembled as the concatenation of a signature script
// and the public key script it spends.  The flags modify the behavior of the
// script engine according to the description provided by each flag.
func NewEngine(script []byte, flags ScriptFlags, opts ...EngineOption) (*Engine, error) {
	if flags&^scriptFlagsMask != 0 {
		str := fmt.Sprintf("invalid script flags 0x%x", uint32(flags))
		return nil, scriptError(ErrInvalidFlags, str)
	}

	if len(script) > MaxScriptSize {
		str := fmt.Sprintf("script size %d is larger than max allowed "+
			"size %d", len(script), MaxScriptSize)
		return nil, scriptError(ErrScriptTooLong, str)
	}

	vm := Engine{
		flags:     flags,
		script:    script,
		hash160:   defaultHash160,
		tokenizer: MakeScriptTokenizer(script),
	}
	for _, opt := range opts {
		opt(&vm)
	}

	// The signature script must only contain data pushes when the
	// associated flag is set.
	if vm.hasFlag(ScriptVerifySigPushOnly) && !IsPushOnlyScript(script) {
		return nil, scriptError(ErrNonPushOnly,
			"script is not push only")
	}

	vm.dstack.verifyMinimalData = vm.hasFlag(ScriptVerifyMinimalData)
	vm.astack.verifyMinimalData = vm.hasFlag(ScriptVerifyMinimalData)

	return &vm, nil
}
