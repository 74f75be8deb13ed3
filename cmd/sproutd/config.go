// Copyright (c) 2024 The sproutd developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flags "github.com/jessevdk/go-flags"

	"github.com/sproutbtc/sproutd/chaincfg"
	"github.com/sproutbtc/sproutd/internal/log"
)

const (
	defaultLogLevel    = "info"
	defaultDataDirname = "data"
	defaultLogDirname  = "logs"
	defaultLogFilename = "sproutd.log"
)

var (
	defaultDataDir = filepath.Join(sproutdHomeDir(), defaultDataDirname)
	defaultLogDir  = filepath.Join(sproutdHomeDir(), defaultLogDirname)
)

// config defines the configuration options for sproutd.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`
	DataDir     string `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir      string `long:"logdir" description:"Directory to log output"`
	TestNet3    bool   `long:"testnet" description:"Use the test network"`
	DebugLevel  string `short:"d" long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
}

// sproutdHomeDir returns an OS appropriate home directory for sproutd.
func sproutdHomeDir() string {
	// Search for Windows APPDATA first.  This won't exist on POSIX OSes.
	appData := os.Getenv("APPDATA")
	if appData != "" {
		return filepath.Join(appData, "sproutd")
	}

	// Fall back to standard HOME directory that works for most POSIX OSes.
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".sproutd")
	}

	// In the worst case, use the current directory.
	return "."
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(sproutdHomeDir())
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

// netName returns the name used for data and log directories of the given
// network parameters.
func netName(params *chaincfg.Params) string {
	return params.Name
}

// loadConfig initializes and parses the config using command line options.
func loadConfig() (*config, *chaincfg.Params, error) {
	cfg := config{
		DataDir:    defaultDataDir,
		LogDir:     defaultLogDir,
		DebugLevel: defaultLogLevel,
	}

	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	// Show the version and exit if the version flag was specified.
	if cfg.ShowVersion {
		appName := filepath.Base(os.Args[0])
		appName = strings.TrimSuffix(appName, filepath.Ext(appName))
		fmt.Printf("%s version %s\n", appName, version())
		os.Exit(0)
	}

	// Choose the active network parameters.
	activeNetParams := &chaincfg.MainNetParams
	if cfg.TestNet3 {
		activeNetParams = &chaincfg.TestNet3Params
	}

	// Validate debug log level.
	if !log.ValidLogLevel(cfg.DebugLevel) {
		str := "the specified debug level [%v] is invalid"
		return nil, nil, fmt.Errorf(str, cfg.DebugLevel)
	}

	// Append the network type to the data and log directories so it is
	// "namespaced" per network.
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.DataDir = filepath.Join(cfg.DataDir, netName(activeNetParams))
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, netName(activeNetParams))

	return &cfg, activeNetParams, nil
}
