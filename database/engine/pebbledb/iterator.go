// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pebbledb

import (
	"github.com/cockroachdb/pebble"

	"github.com/landaverdend/btcwebtools/database/engine"
)

// Iterator adapts a pebble iterator to engine.Iterator.  An Iterator that
// failed to open reports the failure from Error and yields nothing.
type Iterator struct {
	*pebble.Iterator
	released bool
	err      error
}

func (i *Iterator) usable() bool {
	return i.Iterator != nil && !i.released
}

func (i *Iterator) First() bool {
	return i.usable() && i.Iterator.First()
}

func (i *Iterator) Last() bool {
	return i.usable() && i.Iterator.Last()
}

func (i *Iterator) Seek(key []byte) bool {
	return i.usable() && i.Iterator.SeekGE(key)
}

func (i *Iterator) Next() bool {
	return i.usable() && i.Iterator.Next()
}

func (i *Iterator) Prev() bool {
	return i.usable() && i.Iterator.Prev()
}

func (i *Iterator) Valid() bool {
	return i.usable() && i.Iterator.Valid()
}

// Key returns nil once the iterator is exhausted.
func (i *Iterator) Key() []byte {
	if !i.Valid() {
		return nil
	}
	return i.Iterator.Key()
}

// Value returns nil once the iterator is exhausted.
func (i *Iterator) Value() []byte {
	if !i.Valid() {
		return nil
	}
	return i.Iterator.Value()
}

func (i *Iterator) Release() {
	if !i.released {
		i.released = true
		if i.Iterator != nil {
			i.Iterator.Close()
		}
	}
}

func (i *Iterator) Error() error {
	switch {
	case i.err != nil:
		return i.err
	case i.released:
		return engine.ErrIterReleased
	}
	return i.Iterator.Error()
}
