// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/sproutbtc/sproutd/chainhash"
)

// mainNetGenesisHeader is the header of the first block in the block chain
// for the main network.
var mainNetGenesisHeader = BlockHeader{
	Version:    1,
	PrevBlock:  chainhash.Hash{},
	MerkleRoot: mainNetGenesisMerkleRoot,
	Timestamp:  time.Unix(0x495fab29, 0), // 2009-01-03 18:15:05 +0000 UTC
	Bits:       0x1d00ffff,
	Nonce:      0x7c2bac1d, // 2083236893
}

// mainNetGenesisMerkleRoot is the hash of the first transaction in the genesis
// block for the main network.
var mainNetGenesisMerkleRoot = chainhash.Hash{
	0x3b, 0xa3, 0xed, 0xfd, 0x7a, 0x7b, 0x12, 0xb2,
	0x7a, 0xc7, 0x2c, 0x3e, 0x67, 0x76, 0x8f, 0x61,
	0x7f, 0xc8, 0x1b, 0xc3, 0x88, 0x8a, 0x51, 0x32,
	0x3a, 0x9f, 0xb8, 0xaa, 0x4b, 0x1e, 0x5e, 0x4a,
}

// TestBlockHeader tests the BlockHeader API.
func TestBlockHeader(t *testing.T) {
	nonce := uint32(0x9962e301)

	hashStr := "3ba27aa200b1cecaad478d2b00432346c3f1f3986da1afd33e506"
	prevHash, err := chainhash.NewHashFromStr(hashStr)
	if err != nil {
		t.Errorf("NewHashFromStr: %v", err)
	}

	merkleHashStr := "14a0810ac680a3eb3f82edc878cea25ec41d6b790744e5daeef"
	merkleHash, err := chainhash.NewHashFromStr(merkleHashStr)
	if err != nil {
		t.Errorf("NewHashFromStr: %v", err)
	}

	bits := uint32(0x1d00ffff)
	bh := NewBlockHeader(1, prevHash, merkleHash, bits, nonce)

	// Ensure we get the same data back out.
	if !bh.PrevBlock.IsEqual(prevHash) {
		t.Errorf("NewBlockHeader: wrong prev hash - got %v, want %v",
			spew.Sprint(bh.PrevBlock), spew.Sprint(prevHash))
	}
	if !bh.MerkleRoot.IsEqual(merkleHash) {
		t.Errorf("NewBlockHeader: wrong merkle root - got %v, want %v",
			spew.Sprint(bh.MerkleRoot), spew.Sprint(merkleHash))
	}
	if bh.Bits != bits {
		t.Errorf("NewBlockHeader: wrong bits - got %v, want %v",
			bh.Bits, bits)
	}
	if bh.Nonce != nonce {
		t.Errorf("NewBlockHeader: wrong nonce - got %v, want %v",
			bh.Nonce, nonce)
	}
}

// TestBlockHeaderSerialize tests BlockHeader serialize and deserialize.
func TestBlockHeaderSerialize(t *testing.T) {
	var buf bytes.Buffer
	err := mainNetGenesisHeader.Serialize(&buf)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	if buf.Len() != blockHeaderLen {
		t.Errorf("Serialize: wrong length - got %d, want %d",
			buf.Len(), blockHeaderLen)
	}

	var bh BlockHeader
	err = bh.Deserialize(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if !reflect.DeepEqual(bh, mainNetGenesisHeader) {
		t.Errorf("Deserialize: mismatched headers - got %v, want %v",
			spew.Sdump(&bh), spew.Sdump(&mainNetGenesisHeader))
	}
}

// TestBlockHash ensures BlockHash returns the expected hash for the main
// network genesis block.
func TestBlockHash(t *testing.T) {
	wantHashStr := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	wantHash, err := chainhash.NewHashFromStr(wantHashStr)
	if err != nil {
		t.Fatalf("NewHashFromStr: %v", err)
	}

	blockHash := mainNetGenesisHeader.BlockHash()
	if !blockHash.IsEqual(wantHash) {
		t.Errorf("BlockHash: wrong hash - got %v, want %v",
			spew.Sprint(blockHash), spew.Sprint(wantHash))
	}
}
