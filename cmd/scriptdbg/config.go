// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/go-socks/socks"
	flags "github.com/jessevdk/go-flags"
	"github.com/landaverdend/btcwebtools/electrum"
	"github.com/landaverdend/btcwebtools/explorer"
	"github.com/landaverdend/btcwebtools/internal/log"
)

const (
	defaultConfigFilename = "scriptdbg.conf"
	defaultLogFilename    = "scriptdbg.log"
	defaultCacheDirname   = "txcache"
	defaultBackend        = "esplora"
	defaultCacheDB        = "leveldb"
	defaultCacheSize      = 500
	defaultSigCacheSize   = 1000
	defaultTransport      = "ssl"
	defaultDebugLevel     = "info"
	defaultTimeout        = 30 * time.Second
)

var (
	defaultHomeDir    = btcutil.AppDataDir("scriptdbg", false)
	defaultConfigFile = filepath.Join(defaultHomeDir, defaultConfigFilename)
	defaultLogDir     = filepath.Join(defaultHomeDir, "logs")
	defaultCacheDir   = filepath.Join(defaultHomeDir, defaultCacheDirname)

	knownBackends   = []string{"esplora", "electrum"}
	knownTransports = []string{"tcp", "ssl", "ws"}
	knownCacheDBs   = []string{"leveldb", "pebble", "memory"}
)

// config defines the configuration options for scriptdbg.
//
// See loadConfig for details on the configuration load process.
type config struct {
	ConfigFile  string `short:"C" long:"configfile" description:"Path to configuration file"`
	ShowVersion bool   `short:"V" long:"version" description:"Display version information and exit"`

	Tx       string   `long:"tx" description:"Raw transaction hex to debug"`
	TxID     string   `long:"txid" description:"Transaction id to fetch and debug"`
	Input    int      `short:"i" long:"input" description:"Index of the input whose scripts are executed"`
	Script   string   `long:"script" description:"Script hex to execute instead of the input's unlocking and locking scripts"`
	Asm      string   `long:"asm" description:"Script assembly to execute instead of the input's unlocking and locking scripts"`
	PrevOuts []string `long:"prevout" description:"Spent output as <pkscript hex>:<value in satoshi>, one per input in order; replaces fetching them"`
	PushOps  bool     `long:"pushopcodes" description:"Keep push opcodes as separate display-only steps"`
	TestNet  bool     `long:"testnet" description:"Use the test network"`

	Backend           string        `long:"backend" description:"Transaction source {esplora, electrum}"`
	EsploraURL        string        `long:"esploraurl" description:"Base URL of the Esplora API for the selected network"`
	ElectrumServers   []string      `long:"electrumserver" description:"Electrum server host:port or ws url; may be repeated"`
	ElectrumTransport string        `long:"electrumtransport" description:"Electrum transport {tcp, ssl, ws}"`
	Proxy             string        `long:"proxy" description:"Connect via SOCKS5 proxy (eg. 127.0.0.1:9050)"`
	ProxyUser         string        `long:"proxyuser" description:"Username for proxy server"`
	ProxyPass         string        `long:"proxypass" default-mask:"-" description:"Password for proxy server"`
	Timeout           time.Duration `long:"timeout" description:"Timeout for network requests"`

	CacheSize    int    `long:"cachesize" description:"Number of fetched transactions kept in memory"`
	CacheDir     string `long:"cachedir" description:"Directory of the persistent transaction cache"`
	CacheDB      string `long:"cachedb" description:"Persistent cache backend {leveldb, pebble, memory}"`
	SigCacheSize uint   `long:"sigcachesize" description:"Number of verified signatures to remember"`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems"`
	LogDir     string `long:"logdir" description:"Directory to log output"`

	Steps int  `short:"n" long:"steps" description:"Stop after this many steps; 0 runs to completion"`
	Dump  bool `long:"dump" description:"Dump the full engine state after the last step"`
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	path = os.ExpandEnv(path)

	if !strings.HasPrefix(path, "~") {
		return filepath.Clean(path)
	}

	// Expand initial ~ to the current user's home directory, or ~otheruser
	// to otheruser's home directory.  On Windows, both forward and backward
	// slashes can be used.
	path = path[1:]

	var pathSeparators string
	if runtime.GOOS == "windows" {
		pathSeparators = string(os.PathSeparator) + "/"
	} else {
		pathSeparators = string(os.PathSeparator)
	}

	userName := ""
	if i := strings.IndexAny(path, pathSeparators); i != -1 {
		userName = path[:i]
		path = path[i:]
	}

	homeDir := ""
	var u *user.User
	var err error
	if userName == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(userName)
	}
	if err == nil {
		homeDir = u.HomeDir
	}
	// Fallback to CWD if user lookup fails or user has no home directory.
	if homeDir == "" {
		homeDir = "."
	}

	return filepath.Join(homeDir, path)
}

// oneOf reports whether s is one of choices.
func oneOf(s string, choices []string) bool {
	for _, c := range choices {
		if s == c {
			return true
		}
	}
	return false
}

// proxy returns the SOCKS proxy to dial through, or nil.
func (cfg *config) proxy() *socks.Proxy {
	if cfg.Proxy == "" {
		return nil
	}
	return &socks.Proxy{
		Addr:     cfg.Proxy,
		Username: cfg.ProxyUser,
		Password: cfg.ProxyPass,
	}
}

// explorerConfig returns the explorer client settings.  The Esplora URL
// applies to the network selected with --testnet.
func (cfg *config) explorerConfig() *explorer.Config {
	c := &explorer.Config{
		RequestTimeout: cfg.Timeout,
		Proxy:          cfg.proxy(),
	}
	if cfg.EsploraURL != "" {
		if cfg.TestNet {
			c.TestnetURL = cfg.EsploraURL
		} else {
			c.MainnetURL = cfg.EsploraURL
		}
	}
	return c
}

// poolConfig returns the Electrum pool settings.
func (cfg *config) poolConfig() *electrum.PoolConfig {
	return &electrum.PoolConfig{
		Servers:     cfg.ElectrumServers,
		Transport:   electrum.TransportType(cfg.ElectrumTransport),
		Proxy:       cfg.proxy(),
		DialTimeout: cfg.Timeout,
	}
}

// errShowVersion is returned by loadConfig when --version was given.
var errShowVersion = errors.New("show version")

// loadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options.  Command line options always take precedence.
func loadConfig(args []string) (*config, error) {
	cfg := config{
		ConfigFile:        defaultConfigFile,
		Backend:           defaultBackend,
		ElectrumTransport: defaultTransport,
		Timeout:           defaultTimeout,
		CacheSize:         defaultCacheSize,
		CacheDB:           defaultCacheDB,
		CacheDir:          defaultCacheDir,
		SigCacheSize:      defaultSigCacheSize,
		DebugLevel:        defaultDebugLevel,
		LogDir:            defaultLogDir,
	}

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified.  Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := cfg
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var e *flags.Error
		if errors.As(err, &e) && e.Type == flags.ErrHelp {
			return nil, err
		}
	}
	if preCfg.ShowVersion {
		return nil, errShowVersion
	}

	// Load additional config from file.  A missing file is only an error
	// when it was named explicitly.
	parser := flags.NewParser(&cfg, flags.Default)
	configFile := cleanAndExpandPath(preCfg.ConfigFile)
	err = flags.NewIniParser(parser).ParseFile(configFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) ||
			preCfg.ConfigFile != defaultConfigFile {

			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Parse command line options again to ensure they take precedence.
	remainingArgs, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(remainingArgs) > 0 {
		return nil, fmt.Errorf("unexpected arguments %v", remainingArgs)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.CacheDir = cleanAndExpandPath(cfg.CacheDir)

	return &cfg, nil
}

// validate checks the parsed options for conflicts and unknown choices.
func (cfg *config) validate() error {
	const funcName = "loadConfig"

	switch {
	case cfg.Tx != "" && cfg.TxID != "":
		return fmt.Errorf("%s: --tx and --txid can't be used together",
			funcName)
	case cfg.Script != "" && cfg.Asm != "":
		return fmt.Errorf("%s: --script and --asm can't be used "+
			"together", funcName)
	case cfg.Tx == "" && cfg.TxID == "" && cfg.Script == "" && cfg.Asm == "":
		return fmt.Errorf("%s: one of --tx, --txid, --script or --asm "+
			"is required", funcName)
	case cfg.Input < 0:
		return fmt.Errorf("%s: --input must not be negative", funcName)
	case cfg.Steps < 0:
		return fmt.Errorf("%s: --steps must not be negative", funcName)
	}

	if !oneOf(cfg.Backend, knownBackends) {
		return fmt.Errorf("%s: the specified backend [%v] is invalid "+
			"-- supported backends %v", funcName, cfg.Backend,
			knownBackends)
	}
	if !oneOf(cfg.ElectrumTransport, knownTransports) {
		return fmt.Errorf("%s: the specified electrum transport [%v] "+
			"is invalid -- supported transports %v", funcName,
			cfg.ElectrumTransport, knownTransports)
	}
	if !oneOf(cfg.CacheDB, knownCacheDBs) {
		return fmt.Errorf("%s: the specified cache database [%v] is "+
			"invalid -- supported databases %v", funcName,
			cfg.CacheDB, knownCacheDBs)
	}
	if cfg.TxID != "" && cfg.Backend == "electrum" &&
		len(cfg.ElectrumServers) == 0 {

		return fmt.Errorf("%s: the electrum backend requires at least "+
			"one --electrumserver", funcName)
	}

	if err := log.ParseAndSetDebugLevels(cfg.DebugLevel); err != nil {
		return fmt.Errorf("%s: %w", funcName, err)
	}

	return nil
}
