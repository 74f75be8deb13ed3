// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
)

// TestGenesisBlockHash tests that the genesis block hash for each network
// matches the expected value computed from the actual serialized block data.
func TestGenesisBlockHash(t *testing.T) {
	tests := []struct {
		name   string
		params *Params
	}{
		{"mainnet", &MainNetParams},
		{"testnet3", &TestNet3Params},
	}

	for _, test := range tests {
		hash := test.params.GenesisBlock.BlockHash()
		if !test.params.GenesisHash.IsEqual(&hash) {
			t.Errorf("%s: genesis hash does not match expected "+
				"value - got %v, want %v", test.name,
				spew.Sprint(hash),
				spew.Sprint(test.params.GenesisHash))
		}
	}
}

// TestGenesisMerkleRoot ensures the merkle root recorded in each genesis
// header matches the hash of the coinbase transaction it carries.
func TestGenesisMerkleRoot(t *testing.T) {
	tests := []struct {
		name   string
		params *Params
	}{
		{"mainnet", &MainNetParams},
		{"testnet3", &TestNet3Params},
	}

	for _, test := range tests {
		block := test.params.GenesisBlock
		if len(block.Transactions) != 1 {
			t.Fatalf("%s: genesis block must have exactly one "+
				"transaction", test.name)
		}

		merkleRoot := block.Transactions[0].TxHash()
		if block.Header.MerkleRoot != merkleRoot {
			t.Errorf("%s: merkle root mismatch - got %v, want %v",
				test.name, spew.Sprint(block.Header.MerkleRoot),
				spew.Sprint(merkleRoot))
		}
	}
}
