// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pebbledb

import (
	"github.com/cockroachdb/pebble"
)

// Transaction adapts a pebble batch to engine.Transaction.
type Transaction struct {
	*pebble.Batch
	released bool
}

func (t *Transaction) Put(key, value []byte) error {
	if t.released {
		return ErrTxClosed
	}
	return t.Batch.Set(key, value, pebble.NoSync)
}

func (t *Transaction) Delete(key []byte) error {
	if t.released {
		return ErrTxClosed
	}
	return t.Batch.Delete(key, pebble.NoSync)
}

func (t *Transaction) Discard() {
	if !t.released {
		t.released = true
		t.Batch.Close()
	}
}

// Commit writes the batch durably.  The batch can not be used afterwards.
func (t *Transaction) Commit() error {
	if t.released {
		return ErrTxClosed
	}
	t.released = true
	defer t.Batch.Close()
	return t.Batch.Commit(pebble.Sync)
}
