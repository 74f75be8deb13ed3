// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package mempool provides a policy-enforcing pool for unconfirmed transactions.

A key responsibility of the bitcoin network is mining transactions into
blocks.  In order to facilitate this, the mining process relies on having a
readily-available source of transactions to include in a block that is being
solved.  At a high level, this package satisfies that requirement by providing
an in-memory pool of fully validated transactions.

Transactions submitted to the pool pass through several gates before they are
admitted: structural sanity checks including a maximum serialized size,
rejection of standalone coinbase transactions, duplicate detection against
both the pool and a cache of recently rejected hashes, and execution of every
input signature script through the script engine with the configured
validation flags.

# Errors

Errors returned by this package are of type mempool.RuleError.  The RuleError
wraps either a TxRuleError for policy violations or a txscript.Error when a
script failed to execute, which allows the caller to react differently
depending on the underlying cause.
*/
package mempool
