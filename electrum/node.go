// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package electrum

import (
	"context"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/go-socks/socks"
	"github.com/landaverdend/btcwebtools/chainhash"
	"github.com/landaverdend/btcwebtools/txscript"
)

const (
	// ClientName is reported to servers in server.version.
	ClientName = "btcwebtools"

	// ProtocolVersion is the Electrum protocol version requested.
	ProtocolVersion = "1.4"
)

var (
	// ErrNodeConnected is returned when connecting a node that already
	// has a transport.
	ErrNodeConnected = errors.New("node already connected")

	// ErrNodeNotConnected is returned for requests on a node without a
	// transport.
	ErrNodeNotConnected = errors.New("node not connected")

	// ErrNodeShutdown is returned for requests pending or issued after
	// the node's connection was lost or closed.
	ErrNodeShutdown = errors.New("node shut down")
)

// RPCError is an error object returned by the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error satisfies the error interface.
func (e *RPCError) Error() string {
	return fmt.Sprintf("electrum error %d: %s", e.Code, e.Message)
}

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	ID     *uint64         `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

// Node is a connection to a single Electrum server.  Requests may be issued
// concurrently; responses are matched by id.
type Node struct {
	Address string

	mtx       sync.Mutex
	transport Transport
	handlers  map[uint64]chan *response
	nextID    uint64
	err       error
	quit      chan struct{}
}

// NewNode creates a new unconnected node.
func NewNode() *Node {
	return &Node{
		handlers: make(map[uint64]chan *response),
		quit:     make(chan struct{}),
	}
}

// Connect attaches an established transport to the node.
func (n *Node) Connect(addr string, transport Transport) error {
	n.mtx.Lock()
	if n.transport != nil {
		n.mtx.Unlock()
		return ErrNodeConnected
	}
	n.Address = addr
	n.transport = transport
	n.mtx.Unlock()

	go n.listen()
	return nil
}

// ConnectTCP creates a new TCP connection to the specified address.
func (n *Node) ConnectTCP(ctx context.Context, addr string, proxy *socks.Proxy) error {
	if n.connected() {
		return ErrNodeConnected
	}
	transport, err := NewTCPTransport(ctx, addr, proxy)
	if err != nil {
		return err
	}
	return n.connectOrClose(addr, transport)
}

// ConnectSSL creates a new TLS connection to the specified address.
func (n *Node) ConnectSSL(ctx context.Context, addr string, config *tls.Config,
	proxy *socks.Proxy) error {

	if n.connected() {
		return ErrNodeConnected
	}
	transport, err := NewSSLTransport(ctx, addr, config, proxy)
	if err != nil {
		return err
	}
	return n.connectOrClose(addr, transport)
}

// ConnectWS creates a new WebSocket connection to the specified url.
func (n *Node) ConnectWS(ctx context.Context, url string, config *tls.Config,
	proxy *socks.Proxy) error {

	if n.connected() {
		return ErrNodeConnected
	}
	transport, err := NewWSTransport(ctx, url, config, proxy)
	if err != nil {
		return err
	}
	return n.connectOrClose(url, transport)
}

func (n *Node) connectOrClose(addr string, transport Transport) error {
	if err := n.Connect(addr, transport); err != nil {
		transport.Close()
		return err
	}
	return nil
}

func (n *Node) connected() bool {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.transport != nil
}

// Err returns the error that shut the node down, if any.
func (n *Node) Err() error {
	n.mtx.Lock()
	defer n.mtx.Unlock()
	return n.err
}

// shutdown records err, fails every pending request and closes the
// transport.  Only the first call has an effect.
func (n *Node) shutdown(err error) {
	n.mtx.Lock()
	if n.err != nil {
		n.mtx.Unlock()
		return
	}
	n.err = err
	close(n.quit)
	transport := n.transport
	n.mtx.Unlock()

	if transport != nil {
		transport.Close()
	}
}

// Close disconnects the node.
func (n *Node) Close() error {
	n.shutdown(ErrNodeShutdown)
	return nil
}

// listen processes messages from the server.
func (n *Node) listen() {
	for {
		select {
		case err := <-n.transport.Errors():
			log.Warnf("Connection to %s lost: %v", n.Address, err)
			n.shutdown(fmt.Errorf("%w: %v", ErrNodeShutdown, err))
			return

		case msg := <-n.transport.Responses():
			resp := &response{}
			if err := json.Unmarshal(msg, resp); err != nil {
				log.Errorf("Undecodable message from %s: %v",
					n.Address, err)
				continue
			}
			if resp.ID == nil {
				log.Debugf("Ignoring notification %q from %s",
					resp.Method, n.Address)
				continue
			}

			n.mtx.Lock()
			c, ok := n.handlers[*resp.ID]
			delete(n.handlers, *resp.ID)
			n.mtx.Unlock()

			if !ok {
				log.Debugf("Unsolicited response id %d from %s",
					*resp.ID, n.Address)
				continue
			}
			c <- resp

		case <-n.quit:
			return
		}
	}
}

// request makes a request to the server and unmarshals the result into v.
func (n *Node) request(ctx context.Context, method string, params []interface{},
	v interface{}) error {

	if params == nil {
		params = []interface{}{}
	}

	c := make(chan *response, 1)
	n.mtx.Lock()
	if n.transport == nil {
		n.mtx.Unlock()
		return ErrNodeNotConnected
	}
	if n.err != nil {
		err := n.err
		n.mtx.Unlock()
		return err
	}
	id := n.nextID
	n.nextID++
	n.handlers[id] = c
	transport := n.transport
	n.mtx.Unlock()

	unregister := func() {
		n.mtx.Lock()
		delete(n.handlers, id)
		n.mtx.Unlock()
	}

	body, err := json.Marshal(&request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		unregister()
		return err
	}
	if err := transport.SendMessage(append(body, delim)); err != nil {
		unregister()
		return fmt.Errorf("send %s: %w", method, err)
	}

	var resp *response
	select {
	case resp = <-c:
	case <-ctx.Done():
		unregister()
		return ctx.Err()
	case <-n.quit:
		unregister()
		return n.Err()
	}

	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		rpcErr := &RPCError{}
		if err := json.Unmarshal(resp.Error, rpcErr); err != nil {
			// Some servers send a bare string.
			var msg string
			if json.Unmarshal(resp.Error, &msg) != nil {
				msg = string(resp.Error)
			}
			rpcErr = &RPCError{Message: msg}
		}
		return rpcErr
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Result, v); err != nil {
		return fmt.Errorf("decode %s result: %w", method, err)
	}
	return nil
}

// ServerVersion negotiates the protocol version and returns the server
// software and protocol version strings.
func (n *Node) ServerVersion(ctx context.Context) (string, string, error) {
	var result []string
	err := n.request(ctx, "server.version",
		[]interface{}{ClientName, ProtocolVersion}, &result)
	if err != nil {
		return "", "", err
	}
	if len(result) != 2 {
		return "", "", fmt.Errorf("server.version returned %d values",
			len(result))
	}
	return result[0], result[1], nil
}

// Ping checks the connection is alive.
func (n *Node) Ping(ctx context.Context) error {
	return n.request(ctx, "server.ping", nil, nil)
}

// TransactionGet returns the raw transaction (hex-encoded) for the given
// txid.
func (n *Node) TransactionGet(ctx context.Context, txid string) (string, error) {
	var result string
	err := n.request(ctx, "blockchain.transaction.get",
		[]interface{}{txid}, &result)
	return result, err
}

// ListUnspentResult is an unspent output returned by
// blockchain.scripthash.listunspent.
type ListUnspentResult struct {
	Hash   string `json:"tx_hash"`
	Pos    uint32 `json:"tx_pos"`
	Height int64  `json:"height"`
	Value  int64  `json:"value"`
}

// ScriptHashListUnspent lists the unspent outputs paying to scriptHash.
func (n *Node) ScriptHashListUnspent(ctx context.Context,
	scriptHash string) ([]*ListUnspentResult, error) {

	var result []*ListUnspentResult
	err := n.request(ctx, "blockchain.scripthash.listunspent",
		[]interface{}{scriptHash}, &result)
	return result, err
}

// AddressListUnspent is a wrapper around ScriptHashListUnspent for an
// address on the given network.
func (n *Node) AddressListUnspent(ctx context.Context, address string,
	params *chaincfg.Params) ([]*ListUnspentResult, error) {

	scriptHash, err := AddressToScriptHash(address, params)
	if err != nil {
		return nil, err
	}
	return n.ScriptHashListUnspent(ctx, scriptHash)
}

// Balance is the result of blockchain.scripthash.get_balance.
type Balance struct {
	Confirmed   btcutil.Amount `json:"confirmed"`
	Unconfirmed btcutil.Amount `json:"unconfirmed"`
}

// ScriptHashGetBalance returns the balance of a script hash.
func (n *Node) ScriptHashGetBalance(ctx context.Context,
	scriptHash string) (*Balance, error) {

	result := &Balance{}
	err := n.request(ctx, "blockchain.scripthash.get_balance",
		[]interface{}{scriptHash}, result)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ScriptHash returns the Electrum script hash of pkScript: the sha256 of
// the script in reversed byte order, hex encoded.
func ScriptHash(pkScript []byte) string {
	hash := chainhash.HashH(pkScript)
	return hash.String()
}

// AddressToScriptHash decodes address for params and returns the script
// hash of its output script.
func AddressToScriptHash(address string, params *chaincfg.Params) (string, error) {
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil {
		return "", err
	}
	if !addr.IsForNet(params) {
		return "", fmt.Errorf("address %s is not for %s", address,
			params.Name)
	}
	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return "", err
	}
	return ScriptHash(pkScript), nil
}

// decodeHex is a helper for results carrying hex strings.
func decodeHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex from server: %w", err)
	}
	return b, nil
}
