// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters.
//
// In addition to the main bitcoin network, which is intended for the transfer
// of monetary value, there also exists the test network (version 3) which is
// used for testing purposes.  Callers pick which parameters govern a node by
// selecting the appropriate Params instance.
package chaincfg

import (
	"github.com/sproutbtc/sproutd/chainhash"
	"github.com/sproutbtc/sproutd/wire"
)

// Params defines a bitcoin network by its parameters.  These parameters may be
// used by applications to differentiate networks as well as addresses and keys
// for one network from those intended for use on another network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *wire.MsgBlock

	// GenesisHash is the starting block hash.
	GenesisHash *chainhash.Hash

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32
}

// MainNetParams defines the network parameters for the main bitcoin network.
var MainNetParams = Params{
	Name:         "mainnet",
	GenesisBlock: &genesisBlock,
	GenesisHash:  &genesisHash,
	PowLimitBits: 0x1d00ffff,
}

// TestNet3Params defines the network parameters for the test bitcoin network
// (version 3).  Not to be confused with the regression test network, this
// network is sometimes simply called "testnet".
var TestNet3Params = Params{
	Name:         "testnet3",
	GenesisBlock: &testNet3GenesisBlock,
	GenesisHash:  &testNet3GenesisHash,
	PowLimitBits: 0x1d00ffff,
}
