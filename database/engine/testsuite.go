// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSuiteEngine runs the behavior every Engine implementation must share
// against engines created by newEngine.
func TestSuiteEngine(t *testing.T, newEngine func() Engine) {
	t.Run("TransactionSnapshot", func(t *testing.T) {
		engine := newEngine()
		defer engine.Close()

		tx, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")

		key := []byte("tx/4a5e1e4b-mainnet")
		value := []byte{0x01, 0x00, 0x00, 0x00}
		err = tx.Put(key, value)
		require.NoErrorf(t, err, "failed to put data into transaction")

		// Uncommitted writes are not visible.
		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		has, err := snapshot.Has(key)
		require.NoErrorf(t, err, "failed to check if key exists in snapshot")
		require.Falsef(t, has, "expected key to not exist in snapshot")

		gotValue, err := snapshot.Get(key)
		require.ErrorIs(t, err, ErrNotFound)
		require.Nil(t, gotValue, "expected to get nil value from snapshot")
		snapshot.Release()

		err = tx.Commit()
		require.NoErrorf(t, err, "failed to commit transaction")

		snapshot, err = engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		gotValue, err = snapshot.Get(key)
		require.NoErrorf(t, err, "failed to get value from snapshot")
		require.Equalf(t, value, gotValue, "snapshot value mismatch")
		snapshot.Release()

		// Deletes go through a transaction too.
		tx, err = engine.Transaction()
		require.NoError(t, err)
		require.NoError(t, tx.Delete(key))
		require.NoError(t, tx.Commit())

		snapshot, err = engine.Snapshot()
		require.NoError(t, err)
		has, err = snapshot.Has(key)
		require.NoError(t, err)
		require.False(t, has)
		snapshot.Release()
	})

	t.Run("TransactionIterator", func(t *testing.T) {
		mixed := map[string]string{
			"tx/aa-mainnet": "1",
			"tx/aa-testnet": "2",
			"tx/bb-mainnet": "3",
			"utxo/cc":       "4",
		}
		for _, test := range []struct {
			kvs       map[string]string
			ranges    *Range
			expectkvs [][2]string
		}{
			{
				kvs:       mixed,
				ranges:    BytesPrefix([]byte("tx/")),
				expectkvs: [][2]string{{"tx/aa-mainnet", "1"}, {"tx/aa-testnet", "2"}, {"tx/bb-mainnet", "3"}},
			},
			{
				kvs:       mixed,
				ranges:    BytesPrefix([]byte("tx/aa")),
				expectkvs: [][2]string{{"tx/aa-mainnet", "1"}, {"tx/aa-testnet", "2"}},
			},
			{
				kvs:       mixed,
				ranges:    &Range{Start: []byte("tx/ab"), Limit: []byte("utxo/")},
				expectkvs: [][2]string{{"tx/bb-mainnet", "3"}},
			},
			{
				kvs:       mixed,
				ranges:    BytesPrefix([]byte("block/")),
				expectkvs: nil,
			},
			{
				kvs:       mixed,
				ranges:    &Range{Start: []byte("tx/aa-mainnet"), Limit: []byte("tx/aa-mainnet")},
				expectkvs: nil,
			},
		} {
			engine := newEngine()
			defer engine.Close()

			tx, err := engine.Transaction()
			require.NoErrorf(t, err, "failed to create transaction")
			for k, v := range test.kvs {
				err = tx.Put([]byte(k), []byte(v))
				require.NoErrorf(t, err, "failed to put data into transaction")
			}
			err = tx.Commit()
			require.NoErrorf(t, err, "failed to commit transaction")

			snapshot, err := engine.Snapshot()
			require.NoErrorf(t, err, "failed to create snapshot")

			iter := snapshot.NewIterator(test.ranges)
			var idx int
			for iter.Next() {
				if idx >= len(test.expectkvs) {
					require.FailNowf(t, "unexpected key-value pair", "key: %s, value: %s", iter.Key(), iter.Value())
				}

				require.Equalf(t, []byte(test.expectkvs[idx][0]), iter.Key(), "key mismatch")
				require.Equalf(t, []byte(test.expectkvs[idx][1]), iter.Value(), "value mismatch")
				idx++
			}
			require.Equalf(t, len(test.expectkvs), idx, "key-value pair count mismatch")

			iter.Release()
			snapshot.Release()
		}
	})

	t.Run("DbClose", func(t *testing.T) {
		engine := newEngine()

		transaction, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")

		transaction.Discard()
		transaction.Discard() // multiple calls to discard should be safe
		err = transaction.Commit()
		require.Errorf(t, err, "expected to get error when committing discarded transaction")

		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		iterator := snapshot.NewIterator(&Range{})
		require.NoErrorf(t, iterator.Error(), "failed to create iterator")
		iterator.Release()
		iterator.Release() // multiple calls to release should be safe

		snapshot.Release()
		snapshot.Release() // multiple calls to release should be safe
		_, err = snapshot.Get([]byte("key"))
		require.Errorf(t, err, "expected to get error when getting value from released snapshot")

		err = engine.Close()
		require.NoErrorf(t, err, "failed to close engine")

		err = engine.Close()
		require.Errorf(t, err, "expected to get error when closing closed engine")

		_, err = engine.Transaction()
		require.Errorf(t, err, "expected to get error when creating transaction from closed engine")

		_, err = engine.Snapshot()
		require.Errorf(t, err, "expected to get error when creating snapshot from closed engine")
	})
}
