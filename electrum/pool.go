// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package electrum

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/btcsuite/go-socks/socks"
	"github.com/landaverdend/btcwebtools/txscript"
	"github.com/landaverdend/btcwebtools/wire"
	"golang.org/x/sync/errgroup"
)

const defaultDialTimeout = 15 * time.Second

var (
	// ErrPoolClosed is returned by a pool after Close.
	ErrPoolClosed = errors.New("electrum pool closed")

	// ErrNoNodes is returned when no server in the pool is usable.
	ErrNoNodes = errors.New("no electrum servers available")
)

// TransportType selects how a pool connects to its servers.
type TransportType string

const (
	TransportTCP TransportType = "tcp"
	TransportSSL TransportType = "ssl"
	TransportWS  TransportType = "ws"
)

// PoolConfig holds the configuration for a Pool.
type PoolConfig struct {
	// Servers lists host:port addresses, or ws:// and wss:// urls for the
	// WebSocket transport.
	Servers []string

	// Transport is the transport used for every server.
	Transport TransportType

	// TLSConfig is used by the ssl transport and wss:// urls.
	TLSConfig *tls.Config

	// Proxy routes connections through a SOCKS5 proxy when set.
	Proxy *socks.Proxy

	// DialTimeout bounds the connection and version handshake of each
	// server.
	DialTimeout time.Duration
}

// Pool is a fixed set of connected nodes handed out round-robin.
type Pool struct {
	mtx    sync.Mutex
	nodes  []*Node
	next   int
	closed bool
}

// dial connects one node with the configured transport and negotiates the
// protocol version.
func dial(ctx context.Context, cfg *PoolConfig, addr string) (*Node, error) {
	n := NewNode()

	var err error
	switch cfg.Transport {
	case TransportTCP, "":
		err = n.ConnectTCP(ctx, addr, cfg.Proxy)
	case TransportSSL:
		err = n.ConnectSSL(ctx, addr, cfg.TLSConfig, cfg.Proxy)
	case TransportWS:
		url := addr
		if !strings.HasPrefix(url, "ws://") &&
			!strings.HasPrefix(url, "wss://") {

			url = "wss://" + url
		}
		err = n.ConnectWS(ctx, url, cfg.TLSConfig, cfg.Proxy)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
	if err != nil {
		return nil, err
	}

	software, proto, err := n.ServerVersion(ctx)
	if err != nil {
		n.Close()
		return nil, fmt.Errorf("%s: %w", addr, err)
	}
	log.Infof("Connected to %s (%s, protocol %s)", addr, software, proto)

	return n, nil
}

// NewPool dials every configured server concurrently.  Servers that fail
// to connect are logged and skipped; an error is returned only when none
// connect.
func NewPool(ctx context.Context, cfg *PoolConfig) (*Pool, error) {
	if len(cfg.Servers) == 0 {
		return nil, ErrNoNodes
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}

	nodes := make([]*Node, len(cfg.Servers))
	errs := make([]error, len(cfg.Servers))

	var g errgroup.Group
	for i, addr := range cfg.Servers {
		i, addr := i, addr
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			nodes[i], errs[i] = dial(dctx, cfg, addr)
			if errs[i] != nil {
				log.Warnf("Unable to connect to %s: %v", addr,
					errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	p := &Pool{}
	for _, n := range nodes {
		if n != nil {
			p.nodes = append(p.nodes, n)
		}
	}
	if len(p.nodes) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoNodes, errors.Join(errs...))
	}

	return p, nil
}

// NewPoolFromNodes returns a pool over already connected nodes.
func NewPoolFromNodes(nodes ...*Node) *Pool {
	return &Pool{nodes: nodes}
}

// Node returns the next healthy node in round-robin order.
func (p *Pool) Node() (*Node, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	for i := 0; i < len(p.nodes); i++ {
		n := p.nodes[p.next]
		p.next = (p.next + 1) % len(p.nodes)
		if n.Err() == nil {
			return n, nil
		}
	}
	return nil, ErrNoNodes
}

// Len returns the number of nodes in the pool.
func (p *Pool) Len() int {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return len(p.nodes)
}

// TransactionGet fetches a raw transaction from the next node.
func (p *Pool) TransactionGet(ctx context.Context, txid string) (*wire.MsgTx, error) {
	n, err := p.Node()
	if err != nil {
		return nil, err
	}
	rawHex, err := n.TransactionGet(ctx, txid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", n.Address, err)
	}
	raw, err := decodeHex(rawHex)
	if err != nil {
		return nil, err
	}
	tx, err := wire.NewMsgTxFromBytes(raw)
	if err != nil {
		return nil, err
	}
	if hash := tx.TxHash(); !strings.EqualFold(hash.String(), txid) {
		return nil, fmt.Errorf("%s returned transaction %v for %s",
			n.Address, hash, txid)
	}
	return tx, nil
}

// FetchPrevOuts resolves the output spent by every input of tx by fetching
// each parent transaction once.  Coinbase inputs get an empty PrevOut.
func (p *Pool) FetchPrevOuts(ctx context.Context, tx *wire.MsgTx) ([]txscript.PrevOut, error) {
	prevOuts := make([]txscript.PrevOut, len(tx.TxIn))
	if tx.IsCoinBase() {
		return prevOuts, nil
	}

	var txids []string
	seen := make(map[string]struct{})
	for _, txIn := range tx.TxIn {
		txid := txIn.PreviousOutPoint.Hash.String()
		if _, ok := seen[txid]; !ok {
			seen[txid] = struct{}{}
			txids = append(txids, txid)
		}
	}

	fetched := make([]*wire.MsgTx, len(txids))
	g, gctx := errgroup.WithContext(ctx)
	for i, txid := range txids {
		i, txid := i, txid
		g.Go(func() error {
			parent, err := p.TransactionGet(gctx, txid)
			if err != nil {
				return err
			}
			fetched[i] = parent
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	parents := make(map[string]*wire.MsgTx, len(txids))
	for i, txid := range txids {
		parents[txid] = fetched[i]
	}

	for i, txIn := range tx.TxIn {
		op := txIn.PreviousOutPoint
		parent := parents[op.Hash.String()]
		if op.Index >= uint32(len(parent.TxOut)) {
			return nil, fmt.Errorf("input %d spends missing output %v",
				i, op)
		}
		txOut := parent.TxOut[op.Index]
		prevOuts[i] = txscript.PrevOut{
			PkScript: txOut.PkScript,
			Value:    txOut.Value,
		}
	}
	return prevOuts, nil
}

// Close disconnects every node.  Further use of the pool returns
// ErrPoolClosed.
func (p *Pool) Close() error {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	p.closed = true
	for _, n := range p.nodes {
		n.Close()
	}
	return nil
}
