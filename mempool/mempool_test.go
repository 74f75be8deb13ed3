// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sproutbtc/sproutd/chainhash"
	"github.com/sproutbtc/sproutd/txscript"
	"github.com/sproutbtc/sproutd/wire"
)

// newTestPool returns a pool with the provided configuration, applying a
// default policy when cfg is nil.
func newTestPool(cfg *Config) *TxPool {
	if cfg == nil {
		cfg = &Config{
			Policy: Policy{
				ScriptFlags: txscript.ScriptVerifyCleanStack,
			},
		}
	}
	return New(cfg)
}

// testTx returns a transaction spending a fake previous output with the given
// signature script.  The nonce perturbs the output value so each call yields
// a distinct transaction hash.
func testTx(sigScript []byte, nonce int64) *wire.MsgTx {
	prevHash := chainhash.HashH([]byte{byte(nonce)})
	tx := wire.NewMsgTx(wire.TxVersion)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0},
		SignatureScript:  sigScript,
		Sequence:         wire.MaxTxInSequenceNum,
	})
	tx.AddTxOut(&wire.TxOut{
		Value:    1000 + nonce,
		PkScript: []byte{txscript.OP_TRUE},
	})
	return tx
}

// TestAcceptTransaction ensures a valid transaction is accepted and visible
// through all of the pool accessors.
func TestAcceptTransaction(t *testing.T) {
	mp := newTestPool(nil)

	tx := testTx([]byte{txscript.OP_1}, 1)
	txHash := tx.TxHash()

	txD, err := mp.MaybeAcceptTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, tx, txD.Tx)

	require.Equal(t, 1, mp.Count())
	require.True(t, mp.IsTransactionInPool(&txHash))
	require.True(t, mp.HaveTransaction(&txHash))

	fetched, err := mp.FetchTransaction(&txHash)
	require.NoError(t, err)
	require.Equal(t, tx, fetched)

	hashes := mp.TxHashes()
	require.Len(t, hashes, 1)
	require.True(t, hashes[0].IsEqual(&txHash))

	descs := mp.TxDescs()
	require.Len(t, descs, 1)
	require.Equal(t, tx, descs[0].Tx)
	require.False(t, descs[0].Added.IsZero())
	require.False(t, mp.LastUpdated().IsZero())

	// A duplicate submission must be rejected as a rule violation.
	_, err = mp.MaybeAcceptTransaction(tx)
	require.Error(t, err)
	require.True(t, IsRuleError(err))
}

// TestRejectInvalidTransactions exercises the policy gates with transactions
// that violate each of them.
func TestRejectInvalidTransactions(t *testing.T) {
	tests := []struct {
		name string
		tx   func() *wire.MsgTx
	}{
		{
			name: "no inputs",
			tx: func() *wire.MsgTx {
				tx := testTx([]byte{txscript.OP_1}, 2)
				tx.TxIn = nil
				return tx
			},
		},
		{
			name: "no outputs",
			tx: func() *wire.MsgTx {
				tx := testTx([]byte{txscript.OP_1}, 3)
				tx.TxOut = nil
				return tx
			},
		},
		{
			name: "negative output value",
			tx: func() *wire.MsgTx {
				tx := testTx([]byte{txscript.OP_1}, 4)
				tx.TxOut[0].Value = -1
				return tx
			},
		},
		{
			name: "standalone coinbase",
			tx: func() *wire.MsgTx {
				tx := testTx([]byte{txscript.OP_1}, 5)
				tx.TxIn[0].PreviousOutPoint = wire.OutPoint{
					Hash:  chainhash.Hash{},
					Index: wire.MaxPrevOutIndex,
				}
				return tx
			},
		},
	}

	for _, test := range tests {
		mp := newTestPool(nil)
		_, err := mp.MaybeAcceptTransaction(test.tx())
		require.Errorf(t, err, "%s: expected rejection", test.name)
		require.Truef(t, IsRuleError(err), "%s: expected rule error, "+
			"got %v", test.name, err)
		require.Equal(t, 0, mp.Count())
	}
}

// TestRejectOversizeTransaction ensures the maximum serialized size policy is
// enforced.
func TestRejectOversizeTransaction(t *testing.T) {
	mp := newTestPool(&Config{
		Policy: Policy{MaxTxSize: 100},
	})

	bigScript := bytes.Repeat([]byte{txscript.OP_1}, 101)
	_, err := mp.MaybeAcceptTransaction(testTx(bigScript, 6))
	require.Error(t, err)
	require.True(t, IsRuleError(err))
}

// TestRejectScriptFailure ensures a transaction whose input script fails to
// execute is rejected with an error that exposes the script failure, and that
// the rejection is remembered.
func TestRejectScriptFailure(t *testing.T) {
	mp := newTestPool(nil)

	tx := testTx([]byte{txscript.OP_RETURN}, 7)
	txHash := tx.TxHash()

	_, err := mp.MaybeAcceptTransaction(tx)
	require.Error(t, err)
	require.True(t, IsRuleError(err))
	require.True(t, IsScriptError(err))
	require.True(t, txscript.IsErrorKind(err, txscript.ErrEarlyReturn))

	// The rejection is cached: the pool does not contain the transaction
	// but still reports having seen it, and a resubmission fails fast.
	require.False(t, mp.IsTransactionInPool(&txHash))
	require.True(t, mp.HaveTransaction(&txHash))

	_, err = mp.MaybeAcceptTransaction(tx)
	require.Error(t, err)
	require.True(t, IsRuleError(err))
	require.False(t, IsScriptError(err))
}

// TestSignatureVerifier ensures the configured signature verifier is handed
// through to the script engine.
func TestSignatureVerifier(t *testing.T) {
	sig := []byte{0x01, 0x02, 0x03}
	pubKey := []byte{0x04, 0x05, 0x06, 0x07}

	builder := txscript.NewScriptBuilder()
	builder.AddData(sig).AddData(pubKey).AddOp(txscript.OP_CHECKSIG)
	sigScript, err := builder.Script()
	require.NoError(t, err)

	// With a verifier that accepts, the transaction is admitted.
	var gotSig, gotPubKey []byte
	mp := newTestPool(&Config{
		Policy: Policy{ScriptFlags: txscript.ScriptVerifyCleanStack},
		SigVerifier: func(sig, pubKey []byte) bool {
			gotSig = sig
			gotPubKey = pubKey
			return true
		},
	})
	_, err = mp.MaybeAcceptTransaction(testTx(sigScript, 8))
	require.NoError(t, err)
	require.Equal(t, sig, gotSig)
	require.Equal(t, pubKey, gotPubKey)

	// Without a verifier every signature check evaluates to false.
	mp = newTestPool(&Config{
		Policy: Policy{ScriptFlags: txscript.ScriptVerifyCleanStack},
	})
	_, err = mp.MaybeAcceptTransaction(testTx(sigScript, 9))
	require.Error(t, err)
	require.True(t, txscript.IsErrorKind(err, txscript.ErrEvalFalse))
}

// TestRemoveTransaction ensures transactions can be removed from the pool.
func TestRemoveTransaction(t *testing.T) {
	mp := newTestPool(nil)

	tx := testTx([]byte{txscript.OP_1}, 10)
	txHash := tx.TxHash()

	_, err := mp.MaybeAcceptTransaction(tx)
	require.NoError(t, err)
	require.Equal(t, 1, mp.Count())

	mp.RemoveTransaction(&txHash)
	require.Equal(t, 0, mp.Count())
	require.False(t, mp.IsTransactionInPool(&txHash))

	// Removing a transaction that is not in the pool is a no-op.
	mp.RemoveTransaction(&txHash)
	require.Equal(t, 0, mp.Count())
}
