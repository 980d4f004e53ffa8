// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package electrum

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/landaverdend/btcwebtools/chainhash"
	"github.com/landaverdend/btcwebtools/wire"
	"github.com/stretchr/testify/require"
)

// parentTx returns a transaction with two outputs for child transactions
// to spend.
func parentTx(lockTime uint32) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&chainhash.Hash{1}, 0),
		[]byte{0x51}, nil))
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x51}))
	tx.AddTxOut(wire.NewTxOut(2000, []byte{0x00, 0x14,
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}))
	tx.LockTime = lockTime
	return tx
}

// txServer returns a fake server that serves txs by id.
func txServer(t *testing.T, txs ...*wire.MsgTx) *fakeServer {
	byID := make(map[string]string)
	for _, tx := range txs {
		byID[tx.TxHash().String()] = tx.Hex()
	}

	s := newFakeServer()
	s.handlers["blockchain.transaction.get"] = func(p []json.RawMessage) (interface{}, error) {
		raw, ok := byID[firstParam(t, p)]
		if !ok {
			return nil, &RPCError{Code: 2, Message: "missing transaction"}
		}
		return raw, nil
	}
	return s
}

// TestPoolRoundRobin ensures nodes are handed out in turn, shut down nodes
// are skipped and a closed pool refuses further use.
func TestPoolRoundRobin(t *testing.T) {
	s := newFakeServer()
	a, b, c := pipeNode(t, s), pipeNode(t, s), pipeNode(t, s)
	p := NewPoolFromNodes(a, b, c)
	require.Equal(t, 3, p.Len())

	for _, want := range []*Node{a, b, c, a} {
		n, err := p.Node()
		require.NoError(t, err)
		require.Same(t, want, n)
	}

	b.Close()
	for _, want := range []*Node{c, a, c} {
		n, err := p.Node()
		require.NoError(t, err)
		require.Same(t, want, n)
	}

	require.NoError(t, p.Close())
	_, err := p.Node()
	require.ErrorIs(t, err, ErrPoolClosed)
	require.ErrorIs(t, p.Close(), ErrPoolClosed)
	require.Error(t, a.Err())

	_, err = NewPoolFromNodes().Node()
	require.ErrorIs(t, err, ErrNoNodes)
}

// TestPoolFetchPrevOuts ensures the outputs spent by a transaction are
// resolved from their parents.
func TestPoolFetchPrevOuts(t *testing.T) {
	p1, p2 := parentTx(1), parentTx(2)
	s := txServer(t, p1, p2)
	p := NewPoolFromNodes(pipeNode(t, s), pipeNode(t, s))
	ctx := context.Background()

	h1, h2 := p1.TxHash(), p2.TxHash()
	child := wire.NewMsgTx(2)
	child.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&h1, 1), nil, nil))
	child.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&h2, 0), nil, nil))
	child.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&h1, 0), nil, nil))
	child.AddTxOut(wire.NewTxOut(2500, []byte{0x51}))

	prevOuts, err := p.FetchPrevOuts(ctx, child)
	require.NoError(t, err)
	require.Len(t, prevOuts, 3)
	require.Equal(t, int64(2000), prevOuts[0].Value)
	require.Equal(t, p1.TxOut[1].PkScript, prevOuts[0].PkScript)
	require.Equal(t, int64(1000), prevOuts[1].Value)
	require.Equal(t, int64(1000), prevOuts[2].Value)

	got, err := p.TransactionGet(ctx, h2.String())
	require.NoError(t, err)
	require.Equal(t, p2.Hex(), got.Hex())

	// Spending an output the parent does not have.
	child.TxIn[0].PreviousOutPoint.Index = 5
	_, err = p.FetchPrevOuts(ctx, child)
	require.Error(t, err)

	// Unknown parent.
	child.TxIn[0].PreviousOutPoint.Hash = chainhash.Hash{9}
	_, err = p.FetchPrevOuts(ctx, child)
	var rpcErr *RPCError
	require.ErrorAs(t, err, &rpcErr)
}

// TestNewPoolTCP dials a listening fake server and skips one that refuses
// connections.
func TestNewPoolTCP(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s := newFakeServer()
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			go s.serveConn(conn)
		}
	}()

	refused, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	refusedAddr := refused.Addr().String()
	refused.Close()

	ctx := context.Background()
	p, err := NewPool(ctx, &PoolConfig{
		Servers:   []string{l.Addr().String(), refusedAddr},
		Transport: TransportTCP,
	})
	require.NoError(t, err)
	defer p.Close()
	require.Equal(t, 1, p.Len())

	n, err := p.Node()
	require.NoError(t, err)
	require.NoError(t, n.Ping(ctx))

	_, err = NewPool(ctx, &PoolConfig{
		Servers:   []string{refusedAddr},
		Transport: TransportTCP,
	})
	require.ErrorIs(t, err, ErrNoNodes)

	_, err = NewPool(ctx, &PoolConfig{})
	require.ErrorIs(t, err, ErrNoNodes)
}

// TestNewPoolWebSocket exercises the WebSocket transport against an
// in-process server.
func TestNewPoolWebSocket(t *testing.T) {
	tx := parentTx(7)
	s := txServer(t, tx)

	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter,
		r *http.Request) {

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			reply, err := s.respond(msg)
			if err != nil {
				return
			}
			err = conn.WriteMessage(websocket.TextMessage, reply)
			if err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	p, err := NewPool(ctx, &PoolConfig{
		Servers:   []string{"ws://" + strings.TrimPrefix(srv.URL, "http://")},
		Transport: TransportWS,
	})
	require.NoError(t, err)
	defer p.Close()

	hash := tx.TxHash()
	got, err := p.TransactionGet(ctx, hash.String())
	require.NoError(t, err)
	require.Equal(t, tx.Hex(), got.Hex())
}
