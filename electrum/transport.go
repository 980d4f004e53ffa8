// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package electrum

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"

	"github.com/btcsuite/go-socks/socks"
	"github.com/gorilla/websocket"
)

// delim terminates every JSON-RPC message on stream transports.
const delim = byte('\n')

// maxMessageSize bounds a single response line.
const maxMessageSize = 32 * 1024 * 1024

// Transport carries newline-delimited JSON-RPC messages to and from an
// Electrum server.
type Transport interface {
	// SendMessage writes one complete message.
	SendMessage([]byte) error

	// Responses delivers each message received from the server.
	Responses() <-chan []byte

	// Errors delivers the error that terminated the read loop.  At most
	// one error is sent.
	Errors() <-chan error

	// Close shuts the connection down.
	Close() error
}

// dialer returns the function used to open raw connections, routing them
// through proxy when it is set.
func dialer(proxy *socks.Proxy) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if proxy != nil {
		return func(_ context.Context, network, addr string) (net.Conn, error) {
			return proxy.Dial(network, addr)
		}
	}
	var d net.Dialer
	return d.DialContext
}

// TCPTransport is a Transport over a plain or TLS stream connection.
type TCPTransport struct {
	conn      net.Conn
	responses chan []byte
	errors    chan error
	quit      chan struct{}
	closeOnce sync.Once
	writeMtx  sync.Mutex
}

// newConnTransport wraps an established connection and starts its read
// loop.
func newConnTransport(conn net.Conn) *TCPTransport {
	t := &TCPTransport{
		conn:      conn,
		responses: make(chan []byte),
		errors:    make(chan error, 1),
		quit:      make(chan struct{}),
	}
	go t.listen()
	return t
}

// NewTCPTransport dials addr over plain TCP, optionally through a SOCKS
// proxy.
func NewTCPTransport(ctx context.Context, addr string,
	proxy *socks.Proxy) (*TCPTransport, error) {

	conn, err := dialer(proxy)(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return newConnTransport(conn), nil
}

// NewSSLTransport dials addr and performs a TLS handshake using config.
func NewSSLTransport(ctx context.Context, addr string, config *tls.Config,
	proxy *socks.Proxy) (*TCPTransport, error) {

	raw, err := dialer(proxy)(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	if config == nil {
		config = &tls.Config{}
	} else {
		config = config.Clone()
	}
	if config.ServerName == "" {
		host, _, err := net.SplitHostPort(addr)
		if err == nil {
			config.ServerName = host
		}
	}

	conn := tls.Client(raw, config)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", addr, err)
	}
	return newConnTransport(conn), nil
}

// SendMessage writes body to the connection.
func (t *TCPTransport) SendMessage(body []byte) error {
	log.Tracef("%s <- %s", t.conn.RemoteAddr(), body)

	t.writeMtx.Lock()
	defer t.writeMtx.Unlock()
	_, err := t.conn.Write(body)
	return err
}

func (t *TCPTransport) listen() {
	defer t.conn.Close()

	reader := bufio.NewReaderSize(t.conn, 64*1024)
	for {
		line, err := readLine(reader)
		if err != nil {
			log.Debugf("%s read error: %v", t.conn.RemoteAddr(), err)
			t.errors <- err
			return
		}
		log.Tracef("%s -> %s", t.conn.RemoteAddr(), line)

		select {
		case t.responses <- line:
		case <-t.quit:
			return
		}
	}
}

// readLine reads one delimited message, enforcing maxMessageSize.
func readLine(r *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := r.ReadSlice(delim)
		line = append(line, chunk...)
		if len(line) > maxMessageSize {
			return nil, fmt.Errorf("message exceeds %d bytes",
				maxMessageSize)
		}
		switch err {
		case nil:
			return line, nil
		case bufio.ErrBufferFull:
			continue
		default:
			return nil, err
		}
	}
}

// Responses returns the channel of received messages.
func (t *TCPTransport) Responses() <-chan []byte {
	return t.responses
}

// Errors returns the channel the read loop reports its terminal error on.
func (t *TCPTransport) Errors() <-chan error {
	return t.errors
}

// Close closes the underlying connection.
func (t *TCPTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.quit)
		err = t.conn.Close()
	})
	return err
}

// WSTransport is a Transport over a WebSocket connection.  Each message is
// sent as a single text frame.
type WSTransport struct {
	conn      *websocket.Conn
	responses chan []byte
	errors    chan error
	quit      chan struct{}
	closeOnce sync.Once
	writeMtx  sync.Mutex
}

// NewWSTransport dials the ws:// or wss:// url.
func NewWSTransport(ctx context.Context, url string, config *tls.Config,
	proxy *socks.Proxy) (*WSTransport, error) {

	d := websocket.Dialer{
		NetDialContext:  dialer(proxy),
		TLSClientConfig: config,
	}
	conn, resp, err := d.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	conn.SetReadLimit(maxMessageSize)

	t := &WSTransport{
		conn:      conn,
		responses: make(chan []byte),
		errors:    make(chan error, 1),
		quit:      make(chan struct{}),
	}
	go t.listen()
	return t, nil
}

// SendMessage writes body as one text frame.
func (t *WSTransport) SendMessage(body []byte) error {
	log.Tracef("%s <- %s", t.conn.RemoteAddr(), body)

	t.writeMtx.Lock()
	defer t.writeMtx.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, body)
}

func (t *WSTransport) listen() {
	defer t.conn.Close()

	for {
		_, msg, err := t.conn.ReadMessage()
		if err != nil {
			log.Debugf("%s read error: %v", t.conn.RemoteAddr(), err)
			t.errors <- err
			return
		}
		log.Tracef("%s -> %s", t.conn.RemoteAddr(), msg)

		select {
		case t.responses <- msg:
		case <-t.quit:
			return
		}
	}
}

// Responses returns the channel of received messages.
func (t *WSTransport) Responses() <-chan []byte {
	return t.responses
}

// Errors returns the channel the read loop reports its terminal error on.
func (t *WSTransport) Errors() <-chan error {
	return t.errors
}

// Close sends a close frame and closes the connection.
func (t *WSTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.quit)
		t.writeMtx.Lock()
		_ = t.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		t.writeMtx.Unlock()
		err = t.conn.Close()
	})
	return err
}
