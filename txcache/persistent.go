// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txcache

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/landaverdend/btcwebtools/database/engine"
	"github.com/landaverdend/btcwebtools/wire"
)

// entryKeyPrefix prefixes the database keys of cached entries.
var entryKeyPrefix = []byte("tx/")

// Persistent is a Cache that keeps every entry in a key/value engine and the
// most recently inserted ones in a FIFO in front of it.
type Persistent struct {
	mem *FIFO
	db  engine.Engine
}

// NewPersistent returns a cache storing entries in db with up to maxEntries
// of them held in memory.  The cache owns db and closes it on Close.
func NewPersistent(db engine.Engine, maxEntries int) *Persistent {
	return &Persistent{mem: NewFIFO(maxEntries), db: db}
}

func dbKey(key string) []byte {
	return append(append([]byte(nil), entryKeyPrefix...), key...)
}

// encodeEntry serializes entry as the raw transaction bytes followed by the
// metadata, each with a varint length prefix.
func encodeEntry(entry *Entry) ([]byte, error) {
	raw, err := hex.DecodeString(entry.Hex)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %w", err)
	}

	var buf bytes.Buffer
	if err := wire.WriteVarBytes(&buf, raw); err != nil {
		return nil, err
	}
	if err := wire.WriteVarBytes(&buf, entry.Info); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeEntry is the inverse of encodeEntry.
func decodeEntry(b []byte) (*Entry, error) {
	r := wire.NewByteReader(b)
	raw, err := r.ReadVarBytes("raw transaction")
	if err != nil {
		return nil, err
	}
	info, err := r.ReadVarBytes("transaction metadata")
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%d trailing bytes after cache entry",
			r.Len())
	}
	return &Entry{Hex: hex.EncodeToString(raw), Info: info}, nil
}

// Get returns the entry cached under key, loading it from the database when
// it is not held in memory.
func (c *Persistent) Get(key string) (*Entry, bool) {
	if entry, ok := c.mem.Get(key); ok {
		return entry, true
	}

	entry, err := c.load(key)
	if err != nil {
		if !errors.Is(err, engine.ErrNotFound) {
			log.Warnf("Unable to load %s: %v", key, err)
		}
		return nil, false
	}

	c.mem.Put(key, entry)
	return entry, true
}

func (c *Persistent) load(key string) (*Entry, error) {
	snapshot, err := c.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snapshot.Release()

	b, err := snapshot.Get(dbKey(key))
	if err != nil {
		return nil, err
	}
	return decodeEntry(b)
}

// Put caches entry under key in memory and in the database.  A database
// failure is logged and leaves the in-memory copy in place.
func (c *Persistent) Put(key string, entry *Entry) {
	c.mem.Put(key, entry)
	if err := c.store(key, entry); err != nil {
		log.Warnf("Unable to store %s: %v", key, err)
	}
}

func (c *Persistent) store(key string, entry *Entry) error {
	b, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	tx, err := c.db.Transaction()
	if err != nil {
		return err
	}
	if err := tx.Put(dbKey(key), b); err != nil {
		tx.Discard()
		return err
	}
	return tx.Commit()
}

// Keys returns the keys of every entry in the database in key order.
func (c *Persistent) Keys() ([]string, error) {
	snapshot, err := c.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snapshot.Release()

	iter := snapshot.NewIterator(engine.BytesPrefix(entryKeyPrefix))
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, strings.TrimPrefix(string(iter.Key()),
			string(entryKeyPrefix)))
	}
	return keys, iter.Error()
}

// Close closes the database.
func (c *Persistent) Close() error {
	return c.db.Close()
}
