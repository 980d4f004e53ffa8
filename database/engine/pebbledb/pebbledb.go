// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package pebbledb implements the key/value engine on pebble.
package pebbledb

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/bloom"

	"github.com/landaverdend/btcwebtools/database/engine"
)

var (
	ErrDbClosed         = errors.New("pebbledb: closed")
	ErrTxClosed         = errors.New("pebbledb: transaction already closed")
	ErrSnapshotReleased = errors.New("pebbledb: snapshot released")
)

const (
	// DefaultCache is the block cache size in MiB.
	DefaultCache = 16

	// DefaultHandles is the number of open files pebble may keep.
	DefaultHandles = 16
)

// NewDB opens the database at dbPath with a block cache of cache MiB and at
// most handles open files.  Non-positive values select the defaults.  When
// create is set the database must not exist yet.
func NewDB(dbPath string, create bool, cache, handles int) (engine.Engine, error) {
	if cache <= 0 {
		cache = DefaultCache
	}
	if handles <= 0 {
		handles = DefaultHandles
	}

	// Cached transactions are small, so the smaller levels suffice.
	blockCache := pebble.NewCache(int64(cache * 1024 * 1024))
	defer blockCache.Unref()
	opts := &pebble.Options{
		Cache:                    blockCache,
		ErrorIfExists:            create,
		MaxOpenFiles:             handles,
		MaxConcurrentCompactions: runtime.NumCPU,
		Levels: []pebble.LevelOptions{
			{TargetFileSize: 2 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 4 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 8 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
			{TargetFileSize: 16 * 1024 * 1024, FilterPolicy: bloom.FilterPolicy(10)},
		},
	}
	opts.Experimental.ReadSamplingMultiplier = -1
	dbEngine, err := pebble.Open(dbPath, opts)
	if err != nil {
		return nil, err
	}

	return &DB{DB: dbEngine}, nil
}

// DB is a pebble backed engine.Engine.
type DB struct {
	*pebble.DB

	closed atomic.Bool
}

// setClosed sets the closed flag and returns true if it was not already set.
func (db *DB) setClosed() bool {
	return !db.closed.Swap(true)
}

func (db *DB) isClosed() bool {
	return db.closed.Load()
}

// Transaction returns a write batch.
func (db *DB) Transaction() (engine.Transaction, error) {
	if db.isClosed() {
		return nil, ErrDbClosed
	}
	return &Transaction{Batch: db.DB.NewBatch()}, nil
}

// Snapshot returns a read only view of the committed data.
func (db *DB) Snapshot() (engine.Snapshot, error) {
	if db.isClosed() {
		return nil, ErrDbClosed
	}
	return &Snapshot{Snapshot: db.DB.NewSnapshot()}, nil
}

// Close closes the database.  Closing twice returns ErrDbClosed.
func (db *DB) Close() error {
	if !db.setClosed() {
		return ErrDbClosed
	}
	return db.DB.Close()
}
