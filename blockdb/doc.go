// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockdb provides persistent block storage backed by leveldb.
//
// Blocks are stored keyed by their block hash with an additional index from
// block height to hash for the best chain, plus a single metadata record
// tracking the best chain tip.  All records belonging to a block are written
// atomically in one batch.
package blockdb
