// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockdb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/sproutbtc/sproutd/chainhash"
	"github.com/sproutbtc/sproutd/wire"
)

var (
	// ErrBlockNotFound indicates the requested block hash does not exist
	// in the database.
	ErrBlockNotFound = errors.New("block not found")

	// ErrTipNotSet indicates the database does not have a best chain tip
	// yet, which only happens before the genesis block is stored.
	ErrTipNotSet = errors.New("chain tip not set")

	// ErrDbClosed indicates an operation was attempted against a closed
	// database.
	ErrDbClosed = errors.New("database is closed")
)

// Key namespaces.  Every record in the underlying leveldb store is prefixed
// with one of these so unrelated record types can never collide.
var (
	// blockKeyPrefix + block hash -> serialized block
	blockKeyPrefix = []byte("blk")

	// heightKeyPrefix + big-endian height -> block hash
	//
	// Big endian is used so iterating the namespace visits blocks in
	// height order.
	heightKeyPrefix = []byte("hgt")

	// tipKey -> block hash + little-endian height of the best chain tip
	tipKey = []byte("meta-tip")
)

// BlockDB provides persistent storage of blocks keyed by their hash along
// with a height index and the best chain tip.  It is safe for concurrent
// access.
type BlockDB struct {
	mtx    sync.RWMutex
	ldb    *leveldb.DB
	closed bool
}

// blockKey returns the database key for the serialized block with the given
// hash.
func blockKey(hash *chainhash.Hash) []byte {
	key := make([]byte, 0, len(blockKeyPrefix)+chainhash.HashSize)
	key = append(key, blockKeyPrefix...)
	key = append(key, hash[:]...)
	return key
}

// heightKey returns the database key for the hash of the block at the given
// height.
func heightKey(height uint32) []byte {
	key := make([]byte, len(heightKeyPrefix)+4)
	copy(key, heightKeyPrefix)
	binary.BigEndian.PutUint32(key[len(heightKeyPrefix):], height)
	return key
}

// Open opens the block database at the provided path, creating it when it
// does not already exist.  A corrupted database is recovered when possible.
func Open(dbPath string) (*BlockDB, error) {
	opts := &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     8 * opt.MiB,
		WriteBuffer:            8 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	}

	ldb, err := leveldb.OpenFile(dbPath, opts)
	if ldberrors.IsCorrupted(err) {
		log.Warnf("Block database corrupted, attempting recovery: %v",
			err)
		ldb, err = leveldb.RecoverFile(dbPath, opts)
	}
	if err != nil {
		return nil, err
	}

	log.Infof("Block database opened at %s", dbPath)
	return &BlockDB{ldb: ldb}, nil
}

// Close cleanly shuts down the database.  All subsequent operations return
// ErrDbClosed.
func (db *BlockDB) Close() error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	if db.closed {
		return ErrDbClosed
	}
	db.closed = true

	log.Infof("Block database closed")
	return db.ldb.Close()
}

// PutBlock stores the serialization of the provided block at the given height
// and atomically updates the best chain tip to it.  The block record, height
// index entry, and tip record are committed in a single batch so a crash can
// never leave the tip pointing at a missing block.
func (db *BlockDB) PutBlock(height uint32, block *wire.MsgBlock) error {
	db.mtx.Lock()
	defer db.mtx.Unlock()

	if db.closed {
		return ErrDbClosed
	}

	var serialized bytes.Buffer
	serialized.Grow(block.SerializeSize())
	if err := block.Serialize(&serialized); err != nil {
		return err
	}
	blockHash := block.BlockHash()

	tipRecord := make([]byte, chainhash.HashSize+4)
	copy(tipRecord, blockHash[:])
	binary.LittleEndian.PutUint32(tipRecord[chainhash.HashSize:], height)

	batch := new(leveldb.Batch)
	batch.Put(blockKey(&blockHash), serialized.Bytes())
	batch.Put(heightKey(height), blockHash[:])
	batch.Put(tipKey, tipRecord)

	if err := db.ldb.Write(batch, nil); err != nil {
		return err
	}

	log.Debugf("Stored block %v (height %d, %d bytes)", blockHash,
		height, serialized.Len())
	return nil
}

// FetchBlock returns the block with the given hash.  ErrBlockNotFound is
// returned when no such block exists.
func (db *BlockDB) FetchBlock(hash *chainhash.Hash) (*wire.MsgBlock, error) {
	serialized, err := db.FetchRawBlock(hash)
	if err != nil {
		return nil, err
	}

	var block wire.MsgBlock
	if err := block.Deserialize(bytes.NewReader(serialized)); err != nil {
		return nil, err
	}
	return &block, nil
}

// FetchRawBlock returns the raw serialized bytes of the block with the given
// hash.  ErrBlockNotFound is returned when no such block exists.
func (db *BlockDB) FetchRawBlock(hash *chainhash.Hash) ([]byte, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	if db.closed {
		return nil, ErrDbClosed
	}

	serialized, err := db.ldb.Get(blockKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return serialized, nil
}

// HasBlock returns whether or not a block with the given hash exists in the
// database.
func (db *BlockDB) HasBlock(hash *chainhash.Hash) (bool, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	if db.closed {
		return false, ErrDbClosed
	}

	return db.ldb.Has(blockKey(hash), nil)
}

// FetchHashByHeight returns the hash of the block at the given height in the
// best chain.  ErrBlockNotFound is returned when there is no block at that
// height.
func (db *BlockDB) FetchHashByHeight(height uint32) (*chainhash.Hash, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	if db.closed {
		return nil, ErrDbClosed
	}

	serialized, err := db.ldb.Get(heightKey(height), nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrBlockNotFound
	}
	if err != nil {
		return nil, err
	}
	return chainhash.NewHash(serialized)
}

// Tip returns the hash and height of the best chain tip.  ErrTipNotSet is
// returned before any block has been stored.
func (db *BlockDB) Tip() (*chainhash.Hash, uint32, error) {
	db.mtx.RLock()
	defer db.mtx.RUnlock()

	if db.closed {
		return nil, 0, ErrDbClosed
	}

	serialized, err := db.ldb.Get(tipKey, nil)
	if err == leveldb.ErrNotFound {
		return nil, 0, ErrTipNotSet
	}
	if err != nil {
		return nil, 0, err
	}
	if len(serialized) != chainhash.HashSize+4 {
		return nil, 0, ErrTipNotSet
	}

	hash, err := chainhash.NewHash(serialized[:chainhash.HashSize])
	if err != nil {
		return nil, 0, err
	}
	height := binary.LittleEndian.Uint32(serialized[chainhash.HashSize:])
	return hash, height, nil
}
