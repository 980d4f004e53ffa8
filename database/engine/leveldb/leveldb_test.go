// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package leveldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/landaverdend/btcwebtools/database/engine"
)

func TestSuiteLevelDB(t *testing.T) {
	engine.TestSuiteEngine(t, func() engine.Engine {
		dbPath := filepath.Join(t.TempDir(), "leveldb-testsuite")

		leveldb, err := NewDB(dbPath, true)
		require.NoErrorf(t, err, "failed to create leveldb")
		return leveldb
	})
}

func TestReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "leveldb-reopen")

	db, err := NewDB(dbPath, true)
	require.NoError(t, err)
	tx, err := db.Transaction()
	require.NoError(t, err)
	require.NoError(t, tx.Put([]byte("k"), []byte("v")))
	require.NoError(t, tx.Commit())
	require.NoError(t, db.Close())

	// Creating over an existing database fails, opening it does not.
	_, err = NewDB(dbPath, true)
	require.Error(t, err)

	db, err = NewDB(dbPath, false)
	require.NoError(t, err)
	defer db.Close()

	snapshot, err := db.Snapshot()
	require.NoError(t, err)
	defer snapshot.Release()
	v, err := snapshot.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}
