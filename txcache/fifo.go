// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txcache

import (
	"sync"
)

// Entry is a cached explorer response for one transaction.
type Entry struct {
	// Hex is the raw transaction hex.
	Hex string

	// Info is the transaction metadata JSON exactly as the explorer
	// returned it.
	Info []byte
}

// Key returns the cache key of txid on the selected network.
func Key(txid string, testnet bool) string {
	if testnet {
		return txid + "-testnet"
	}
	return txid + "-mainnet"
}

// Cache stores explorer responses by key.
type Cache interface {
	Get(key string) (*Entry, bool)
	Put(key string, entry *Entry)
}

// FIFO is a bounded Cache that evicts the entry inserted first.  Putting a
// key that is already cached replaces its entry but keeps its place in the
// eviction order.
//
// FIFO is safe for concurrent access.
type FIFO struct {
	mtx        sync.Mutex
	maxEntries int
	entries    map[string]*Entry
	order      []string
}

// NewFIFO returns a FIFO holding at most maxEntries entries.  A FIFO with a
// non-positive limit stores nothing.
func NewFIFO(maxEntries int) *FIFO {
	return &FIFO{
		maxEntries: maxEntries,
		entries:    make(map[string]*Entry),
	}
}

// Get returns the entry cached under key.
func (c *FIFO) Get(key string) (*Entry, bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	entry, ok := c.entries[key]
	return entry, ok
}

// Put caches entry under key, evicting the oldest entries beyond the limit.
func (c *FIFO) Put(key string, entry *Entry) {
	if c.maxEntries <= 0 {
		return
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = entry
		return
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
	for len(c.order) > c.maxEntries {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		log.Tracef("Evicted %s", oldest)
	}
}

// Len returns the number of cached entries.
func (c *FIFO) Len() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return len(c.entries)
}
