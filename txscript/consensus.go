// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

const (
	// MaxScriptSize is the maximum allowed length of a raw script.
	MaxScriptSize = 10000

	// MaxScriptElementSize is the maximum allowed size of an element
	// pushed onto the stack.
	MaxScriptElementSize = 520

	// MaxStackSize is the maximum combined depth of the data and
	// alternate stacks during execution.
	MaxStackSize = 1000

	// MaxOpsPerScript is the maximum number of non-push operations a
	// script may contain.
	MaxOpsPerScript = 201
)
