// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/landaverdend/btcwebtools/database/engine"
	"github.com/landaverdend/btcwebtools/database/engine/leveldb"
	"github.com/landaverdend/btcwebtools/database/engine/pebbledb"
	"github.com/landaverdend/btcwebtools/electrum"
	"github.com/landaverdend/btcwebtools/explorer"
	"github.com/landaverdend/btcwebtools/txcache"
	"github.com/landaverdend/btcwebtools/txscript"
	"github.com/landaverdend/btcwebtools/wire"
)

// txSource fetches a transaction together with the outputs its inputs
// spend.
type txSource interface {
	fetch(ctx context.Context, txid string) (*wire.MsgTx, []txscript.PrevOut, error)
	Close() error
}

// esploraSource fetches through the block explorer REST API.
type esploraSource struct {
	client  *explorer.Client
	testnet bool
	closer  func() error
}

func (s *esploraSource) fetch(ctx context.Context, txid string) (*wire.MsgTx, []txscript.PrevOut, error) {
	res, err := s.client.FetchTransaction(ctx, txid, s.testnet)
	if err != nil {
		return nil, nil, err
	}
	tx, err := res.MsgTx()
	if err != nil {
		return nil, nil, err
	}
	prevOuts, err := res.PrevOuts()
	if err != nil {
		return nil, nil, err
	}
	return tx, prevOuts, nil
}

func (s *esploraSource) Close() error {
	return s.closer()
}

// electrumSource fetches from a pool of Electrum servers.
type electrumSource struct {
	pool *electrum.Pool
}

func (s *electrumSource) fetch(ctx context.Context, txid string) (*wire.MsgTx, []txscript.PrevOut, error) {
	tx, err := s.pool.TransactionGet(ctx, txid)
	if err != nil {
		return nil, nil, err
	}
	prevOuts, err := s.pool.FetchPrevOuts(ctx, tx)
	if err != nil {
		return nil, nil, err
	}
	return tx, prevOuts, nil
}

func (s *electrumSource) Close() error {
	return s.pool.Close()
}

// openCache returns the transaction cache selected by the config along with
// a function that releases it.
func openCache(cfg *config) (txcache.Cache, func() error, error) {
	if cfg.CacheDB == "memory" {
		return txcache.NewFIFO(cfg.CacheSize), func() error { return nil }, nil
	}

	dbPath := filepath.Join(cfg.CacheDir, cfg.CacheDB)
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, nil, err
	}

	var (
		db  engine.Engine
		err error
	)
	switch cfg.CacheDB {
	case "leveldb":
		db, err = leveldb.NewDB(dbPath, false)
	case "pebble":
		db, err = pebbledb.NewDB(dbPath, false, 0, 0)
	default:
		err = fmt.Errorf("unknown cache database %q", cfg.CacheDB)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open cache %s: %w", dbPath, err)
	}
	dbgLog.Debugf("Opened %s transaction cache at %s", cfg.CacheDB, dbPath)

	cache := txcache.NewPersistent(db, cfg.CacheSize)
	return cache, cache.Close, nil
}

// newTxSource returns the configured transaction source.
func newTxSource(ctx context.Context, cfg *config) (txSource, error) {
	switch cfg.Backend {
	case "electrum":
		pool, err := electrum.NewPool(ctx, cfg.poolConfig())
		if err != nil {
			return nil, err
		}
		return &electrumSource{pool: pool}, nil

	default:
		cache, closer, err := openCache(cfg)
		if err != nil {
			return nil, err
		}
		ecfg := cfg.explorerConfig()
		ecfg.Cache = cache
		return &esploraSource{
			client:  explorer.NewClient(ecfg),
			testnet: cfg.TestNet,
			closer:  closer,
		}, nil
	}
}

// parsePrevOut parses a <pkscript hex>:<value> pair.
func parsePrevOut(s string) (txscript.PrevOut, error) {
	i := strings.LastIndexByte(s, ':')
	if i < 0 {
		return txscript.PrevOut{}, fmt.Errorf("prevout %q is not "+
			"<pkscript hex>:<value>", s)
	}
	pkScript, err := hex.DecodeString(s[:i])
	if err != nil {
		return txscript.PrevOut{}, fmt.Errorf("prevout %q: %w", s, err)
	}
	value, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || value < 0 {
		return txscript.PrevOut{}, fmt.Errorf("prevout %q: invalid "+
			"value", s)
	}
	return txscript.PrevOut{PkScript: pkScript, Value: value}, nil
}

// loadTxContext returns the context for the configured transaction input,
// or nil when no transaction was given.
func loadTxContext(ctx context.Context, cfg *config,
	newSource func(context.Context, *config) (txSource, error)) (*txscript.TxContext, error) {

	var (
		tx       *wire.MsgTx
		prevOuts []txscript.PrevOut
		err      error
	)
	switch {
	case cfg.Tx != "":
		tx, err = wire.NewMsgTxFromHex(strings.TrimSpace(cfg.Tx))
		if err != nil {
			return nil, err
		}

	case cfg.TxID != "":
		src, err := newSource(ctx, cfg)
		if err != nil {
			return nil, err
		}
		defer src.Close()

		tx, prevOuts, err = src.fetch(ctx, cfg.TxID)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", cfg.TxID, err)
		}

	default:
		return nil, nil
	}

	if len(cfg.PrevOuts) > 0 {
		if len(cfg.PrevOuts) != len(tx.TxIn) {
			return nil, fmt.Errorf("%d prevouts given for %d inputs",
				len(cfg.PrevOuts), len(tx.TxIn))
		}
		prevOuts = make([]txscript.PrevOut, len(cfg.PrevOuts))
		for i, s := range cfg.PrevOuts {
			prevOuts[i], err = parsePrevOut(s)
			if err != nil {
				return nil, err
			}
		}
	}

	return txscript.NewTxContext(tx, prevOuts, cfg.Input)
}

// buildScript returns the script to execute.
func buildScript(cfg *config, txCtx *txscript.TxContext) (*txscript.Script, error) {
	switch {
	case cfg.Script != "":
		return txscript.ParseScriptHex(strings.TrimSpace(cfg.Script),
			cfg.PushOps)
	case cfg.Asm != "":
		return txscript.CompileAsm(cfg.Asm, txCtx, cfg.PushOps)
	default:
		return txscript.BuildUnlockingScript(txCtx, cfg.PushOps)
	}
}
