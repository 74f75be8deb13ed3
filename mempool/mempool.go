// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"sync"
	"time"

	"github.com/decred/dcrd/lru"

	"github.com/sproutbtc/sproutd/chainhash"
	"github.com/sproutbtc/sproutd/txscript"
	"github.com/sproutbtc/sproutd/wire"
)

const (
	// DefaultMaxTxSize is the default maximum serialized size, in bytes,
	// of a transaction the pool will accept.
	DefaultMaxTxSize = 100000

	// rejectedTxCacheSize is the number of recently rejected transaction
	// hashes to remember so repeated submissions can be rejected without
	// re-running validation.
	rejectedTxCacheSize = 5000
)

// Policy houses the configurable policy options related to which transactions
// are accepted to the pool.
type Policy struct {
	// MaxTxSize is the maximum allowed serialized size, in bytes, of a
	// transaction.  Zero means DefaultMaxTxSize.
	MaxTxSize int

	// ScriptFlags are the script validation flags applied when executing
	// the signature script of each transaction input.
	ScriptFlags txscript.ScriptFlags
}

// Config is a descriptor containing the memory pool configuration.
type Config struct {
	// Policy defines the various mempool configuration options related
	// to policy.
	Policy Policy

	// SigVerifier defines the signature verification function handed to
	// the script engine.  It may be nil, in which case any script that
	// reaches a signature check will evaluate it as unsigned.
	SigVerifier txscript.SigVerifier
}

// TxDesc is a descriptor containing a transaction in the mempool along with
// additional metadata.
type TxDesc struct {
	// Tx is the transaction associated with the entry.
	Tx *wire.MsgTx

	// Added is the time when the entry was added to the pool.
	Added time.Time
}

// TxPool is used as a source of transactions that need to be mined into
// blocks and relayed to other peers.  It is safe for concurrent access from
// multiple peers.
type TxPool struct {
	lastUpdated int64 // last time pool was updated

	mtx  sync.RWMutex
	cfg  Config
	pool map[chainhash.Hash]*TxDesc

	// rejectedTxns caches the hashes of transactions that were recently
	// rejected so the expensive validation work is not repeated for
	// duplicate submissions.
	rejectedTxns lru.Cache
}

// isCoinBase determines whether or not a transaction is a coinbase.  A
// coinbase is a special transaction created by miners that has no inputs.
// This is represented in the block chain by a transaction with a single input
// that has a previous output transaction index set to the maximum value along
// with a zero hash.
func isCoinBase(tx *wire.MsgTx) bool {
	if len(tx.TxIn) != 1 {
		return false
	}

	prevOut := &tx.TxIn[0].PreviousOutPoint
	if prevOut.Index != wire.MaxPrevOutIndex || prevOut.Hash != (chainhash.Hash{}) {
		return false
	}

	return true
}

// checkTransactionSanity performs the context free checks on a transaction
// which do not require any other state.
func (mp *TxPool) checkTransactionSanity(tx *wire.MsgTx) error {
	// A transaction must have at least one input.
	if len(tx.TxIn) == 0 {
		return txRuleError("transaction has no inputs")
	}

	// A transaction must have at least one output.
	if len(tx.TxOut) == 0 {
		return txRuleError("transaction has no outputs")
	}

	// A transaction must not exceed the maximum allowed size when
	// serialized.
	maxTxSize := mp.cfg.Policy.MaxTxSize
	if maxTxSize == 0 {
		maxTxSize = DefaultMaxTxSize
	}
	serializedLen := tx.SerializeSize()
	if serializedLen > maxTxSize {
		return txRuleError("transaction size of %v is larger than max "+
			"allowed size of %v", serializedLen, maxTxSize)
	}

	// Output values must not be negative.
	for _, txOut := range tx.TxOut {
		if txOut.Value < 0 {
			return txRuleError("transaction output has negative "+
				"value of %v", txOut.Value)
		}
	}

	return nil
}

// validateInputScripts executes the signature script of every input using the
// configured script flags and signature verifier.  Any execution failure is
// converted into a rule error that wraps the underlying script error.
func (mp *TxPool) validateInputScripts(tx *wire.MsgTx, txHash *chainhash.Hash) error {
	for i, txIn := range tx.TxIn {
		vm, err := txscript.NewEngine(txIn.SignatureScript,
			mp.cfg.Policy.ScriptFlags,
			txscript.WithSigVerifier(mp.cfg.SigVerifier))
		if err != nil {
			return chainRuleError(err)
		}

		if err := vm.Execute(); err != nil {
			log.Debugf("Transaction %v input %d script failed: %v",
				txHash, i, err)
			return chainRuleError(err)
		}
	}
	return nil
}

// isTransactionInPool returns whether or not the passed transaction already
// exists in the main pool.
//
// This function MUST be called with the mempool lock held (for reads).
func (mp *TxPool) isTransactionInPool(hash *chainhash.Hash) bool {
	_, exists := mp.pool[*hash]
	return exists
}

// IsTransactionInPool returns whether or not the passed transaction already
// exists in the main pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) IsTransactionInPool(hash *chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.isTransactionInPool(hash)
}

// HaveTransaction returns whether or not the passed transaction already
// exists in the main pool or was recently rejected.
//
// This function is safe for concurrent access.
func (mp *TxPool) HaveTransaction(hash *chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return mp.isTransactionInPool(hash) || mp.rejectedTxns.Contains(*hash)
}

// maybeAcceptTransaction is the internal function which implements the public
// MaybeAcceptTransaction.  See the comment for MaybeAcceptTransaction for
// more details.
//
// This function MUST be called with the mempool lock held (for writes).
func (mp *TxPool) maybeAcceptTransaction(tx *wire.MsgTx) (*TxDesc, error) {
	txHash := tx.TxHash()

	// Don't accept transactions which were recently rejected.  This avoids
	// repeating expensive script validation for transactions that are
	// submitted multiple times.
	if mp.rejectedTxns.Contains(txHash) {
		return nil, txRuleError("transaction %v was recently rejected",
			txHash)
	}

	// Don't accept the transaction if it already exists in the pool.  This
	// applies to orphan transactions as well.  This check is intended to
	// be a quick check to weed out duplicates.
	if mp.isTransactionInPool(&txHash) {
		return nil, txRuleError("already have transaction %v", txHash)
	}

	// Perform preliminary sanity checks on the transaction.
	if err := mp.checkTransactionSanity(tx); err != nil {
		mp.rejectedTxns.Add(txHash)
		return nil, err
	}

	// A standalone transaction must not be a coinbase transaction.
	if isCoinBase(tx) {
		mp.rejectedTxns.Add(txHash)
		return nil, txRuleError("transaction %v is an individual "+
			"coinbase", txHash)
	}

	// Verify the input scripts execute successfully.
	if err := mp.validateInputScripts(tx, &txHash); err != nil {
		mp.rejectedTxns.Add(txHash)
		return nil, err
	}

	// Add the transaction to the pool.
	txD := &TxDesc{
		Tx:    tx,
		Added: time.Now(),
	}
	mp.pool[txHash] = txD
	mp.lastUpdated = time.Now().Unix()

	log.Debugf("Accepted transaction %v (pool size: %v)", txHash,
		len(mp.pool))
	return txD, nil
}

// MaybeAcceptTransaction is the main workhorse for handling insertion of new
// free-standing transactions into a memory pool.  It includes functionality
// such as rejecting duplicate transactions, ensuring transactions follow all
// rules, and verifying input scripts.
//
// This function is safe for concurrent access.
func (mp *TxPool) MaybeAcceptTransaction(tx *wire.MsgTx) (*TxDesc, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	return mp.maybeAcceptTransaction(tx)
}

// RemoveTransaction removes the passed transaction from the mempool.
//
// This function is safe for concurrent access.
func (mp *TxPool) RemoveTransaction(hash *chainhash.Hash) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()

	if _, exists := mp.pool[*hash]; exists {
		delete(mp.pool, *hash)
		mp.lastUpdated = time.Now().Unix()
	}
}

// FetchTransaction returns the requested transaction from the transaction
// pool.  This only fetches from the main transaction pool and does not include
// recently rejected transactions.
//
// This function is safe for concurrent access.
func (mp *TxPool) FetchTransaction(hash *chainhash.Hash) (*wire.MsgTx, error) {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	if txD, exists := mp.pool[*hash]; exists {
		return txD.Tx, nil
	}

	return nil, txRuleError("transaction is not in the pool")
}

// Count returns the number of transactions in the main pool.  It does not
// include recently rejected transactions.
//
// This function is safe for concurrent access.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return len(mp.pool)
}

// TxHashes returns a slice of hashes for all of the transactions in the
// memory pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxHashes() []*chainhash.Hash {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	hashes := make([]*chainhash.Hash, len(mp.pool))
	i := 0
	for hash := range mp.pool {
		hashCopy := hash
		hashes[i] = &hashCopy
		i++
	}

	return hashes
}

// TxDescs returns a slice of descriptors for all the transactions in the
// pool.  The descriptors are to be treated as read only.
//
// This function is safe for concurrent access.
func (mp *TxPool) TxDescs() []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	descs := make([]*TxDesc, len(mp.pool))
	i := 0
	for _, desc := range mp.pool {
		descs[i] = desc
		i++
	}

	return descs
}

// LastUpdated returns the last time a transaction was added to or removed
// from the main pool.
//
// This function is safe for concurrent access.
func (mp *TxPool) LastUpdated() time.Time {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	return time.Unix(mp.lastUpdated, 0)
}

// New returns a new memory pool for validating and storing standalone
// transactions until they are mined into a block.
func New(cfg *Config) *TxPool {
	return &TxPool{
		cfg:          *cfg,
		pool:         make(map[chainhash.Hash]*TxDesc),
		rejectedTxns: lru.NewCache(rejectedTxCacheSize),
	}
}
