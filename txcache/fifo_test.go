// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txcache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	require.Equal(t, "abcd-mainnet", Key("abcd", false))
	require.Equal(t, "abcd-testnet", Key("abcd", true))
}

// TestFIFOEviction ensures the first inserted entry is evicted first and a
// re-put keeps the original position.
func TestFIFOEviction(t *testing.T) {
	c := NewFIFO(2)

	a := &Entry{Hex: "aa"}
	b := &Entry{Hex: "bb"}
	c.Put("a", a)
	c.Put("b", b)
	require.Equal(t, 2, c.Len())

	// Updating a does not make it the newest entry.
	a2 := &Entry{Hex: "a2"}
	c.Put("a", a2)
	got, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, a2, got)

	c.Put("c", &Entry{Hex: "cc"})
	require.Equal(t, 2, c.Len())
	_, ok = c.Get("a")
	require.False(t, ok)
	_, ok = c.Get("b")
	require.True(t, ok)
	_, ok = c.Get("c")
	require.True(t, ok)
}

func TestFIFODisabled(t *testing.T) {
	c := NewFIFO(0)
	c.Put("a", &Entry{Hex: "aa"})
	_, ok := c.Get("a")
	require.False(t, ok)
	require.Zero(t, c.Len())
}

func TestFIFOConcurrent(t *testing.T) {
	c := NewFIFO(50)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("%d-%d", i, j)
				c.Put(key, &Entry{Hex: "00"})
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	require.Equal(t, 50, c.Len())
}
