// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sproutbtc/sproutd/blockdb"
	"github.com/sproutbtc/sproutd/chaincfg"
	"github.com/sproutbtc/sproutd/internal/log"
	"github.com/sproutbtc/sproutd/mempool"
	"github.com/sproutbtc/sproutd/txscript"
)

// standardScriptFlags are the script validation flags applied to transactions
// admitted to the memory pool.
const standardScriptFlags = txscript.ScriptVerifyMinimalData |
	txscript.ScriptVerifyCleanStack |
	txscript.ScriptDiscourageUpgradableNops

// sproutdMain is the real main function for sproutd.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func sproutdMain() error {
	// Load configuration and parse command line.
	cfg, activeNetParams, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize logging and setup deferred flushing to ensure all
	// outstanding messages are written on shutdown.
	logFile := filepath.Join(cfg.LogDir, defaultLogFilename)
	if err := log.InitLogRotator(logFile); err != nil {
		return err
	}
	defer log.LogRotator.Close()
	log.SetLogLevels(cfg.DebugLevel)

	srvrLog := log.SproutdLog
	srvrLog.Infof("Version %s", version())

	// Load the block database.
	dbPath := filepath.Join(cfg.DataDir, "blocks")
	srvrLog.Infof("Loading block database from %s", dbPath)
	db, err := blockdb.Open(dbPath)
	if err != nil {
		srvrLog.Errorf("%v", err)
		return err
	}
	defer func() {
		srvrLog.Infof("Gracefully shutting down the database...")
		db.Close()
	}()

	// Insert the genesis block when the database does not have a best
	// chain yet.
	if err := maybeBootstrapGenesis(db, activeNetParams); err != nil {
		srvrLog.Errorf("%v", err)
		return err
	}

	tipHash, tipHeight, err := db.Tip()
	if err != nil {
		srvrLog.Errorf("%v", err)
		return err
	}
	srvrLog.Infof("Block database loaded with chain tip %v (height %d)",
		tipHash, tipHeight)

	// Create the transaction memory pool.
	txPool := mempool.New(&mempool.Config{
		Policy: mempool.Policy{
			MaxTxSize:   mempool.DefaultMaxTxSize,
			ScriptFlags: standardScriptFlags,
		},
	})
	srvrLog.Infof("Transaction memory pool initialized (%d transactions)",
		txPool.Count())

	// Wait until the interrupt signal is received from an OS signal such
	// as SIGINT (Ctrl+C).
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	srvrLog.Infof("Received interrupt signal, shutting down...")
	return nil
}

// maybeBootstrapGenesis stores the genesis block for the active network when
// the database is empty.
func maybeBootstrapGenesis(db *blockdb.BlockDB, params *chaincfg.Params) error {
	_, _, err := db.Tip()
	if err == nil {
		return nil
	}
	if !errors.Is(err, blockdb.ErrTipNotSet) {
		return err
	}

	log.SproutdLog.Infof("Block database empty, inserting genesis block %v",
		params.GenesisHash)
	return db.PutBlock(0, params.GenesisBlock)
}

func main() {
	// Work around defer not working after os.Exit()
	if err := sproutdMain(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
