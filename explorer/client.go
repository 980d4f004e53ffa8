// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/go-socks/socks"
	"github.com/landaverdend/btcwebtools/chainhash"
	"github.com/landaverdend/btcwebtools/txcache"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultMainnetURL is the default mainnet block explorer API.
	DefaultMainnetURL = "https://mempool.space/api"

	// DefaultTestnetURL is the default testnet block explorer API.
	DefaultTestnetURL = "https://mempool.space/testnet/api"

	defaultRequestTimeout = 30 * time.Second
	defaultMaxRetries     = 3
)

var (
	// ErrTxNotFound is returned when a transaction cannot be found.
	ErrTxNotFound = errors.New("transaction not found")

	// ErrInvalidTxID is returned for strings that are not transaction ids.
	ErrInvalidTxID = errors.New("invalid transaction id")

	// ErrInvalidAddress is returned when an address does not decode for
	// the requested network.
	ErrInvalidAddress = errors.New("invalid address")
)

// Config holds the configuration for the explorer client.
type Config struct {
	// MainnetURL and TestnetURL are the base URLs of the Esplora style
	// APIs used for each network.
	MainnetURL string
	TestnetURL string

	// RequestTimeout is the timeout for individual HTTP requests.
	RequestTimeout time.Duration

	// MaxRetries is the maximum number of retries for failed requests.
	MaxRetries int

	// Proxy routes requests through a SOCKS5 proxy when set.
	Proxy *socks.Proxy

	// Cache stores fetched transactions.  Nil disables caching.
	Cache txcache.Cache
}

// Client fetches transactions and unspent outputs from a block explorer.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient returns a client for the given config.  Zero values are
// replaced by defaults.
func NewClient(cfg *Config) *Client {
	c := *cfg
	if c.MainnetURL == "" {
		c.MainnetURL = DefaultMainnetURL
	}
	if c.TestnetURL == "" {
		c.TestnetURL = DefaultTestnetURL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = defaultMaxRetries
	}
	c.MainnetURL = strings.TrimSuffix(c.MainnetURL, "/")
	c.TestnetURL = strings.TrimSuffix(c.TestnetURL, "/")

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.Proxy != nil {
		proxy := c.Proxy
		transport.Proxy = nil
		transport.DialContext = func(_ context.Context, network,
			addr string) (net.Conn, error) {

			return proxy.Dial(network, addr)
		}
	}

	return &Client{
		cfg: c,
		httpClient: &http.Client{
			Timeout:   c.RequestTimeout,
			Transport: transport,
		},
	}
}

func (c *Client) baseURL(testnet bool) string {
	if testnet {
		return c.cfg.TestnetURL
	}
	return c.cfg.MainnetURL
}

// doRequest performs a request, retrying transport failures.
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	var lastErr error
	for i := 0; i <= c.cfg.MaxRetries; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			log.Debugf("Request to %s failed (attempt %d): %v", url,
				i+1, err)
			if i < c.cfg.MaxRetries {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(time.Duration(i+1) * 100 * time.Millisecond):
				}
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w",
		c.cfg.MaxRetries+1, lastErr)
}

// doGet performs a GET request and returns the response body.
func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrTxNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("API returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

// FetchTransaction returns the raw hex and explorer metadata for txid.
// Results are served from and stored to the configured cache.
func (c *Client) FetchTransaction(ctx context.Context, txid string,
	testnet bool) (*TxResult, error) {

	if _, err := chainhash.NewHashFromStr(txid); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxID, txid)
	}
	txid = strings.ToLower(txid)

	key := txcache.Key(txid, testnet)
	if c.cfg.Cache != nil {
		if entry, ok := c.cfg.Cache.Get(key); ok {
			var info TxInfo
			if err := json.Unmarshal(entry.Info, &info); err == nil {
				log.Tracef("Cache hit for %s", key)
				return &TxResult{Hex: entry.Hex, Info: &info}, nil
			}
			log.Warnf("Discarding undecodable cache entry %s", key)
		}
	}

	base := c.baseURL(testnet)
	var (
		rawHex  []byte
		rawInfo []byte
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rawHex, err = c.doGet(gctx, base+"/tx/"+txid+"/hex")
		return err
	})
	g.Go(func() error {
		var err error
		rawInfo, err = c.doGet(gctx, base+"/tx/"+txid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var info TxInfo
	if err := json.Unmarshal(rawInfo, &info); err != nil {
		return nil, fmt.Errorf("failed to decode transaction: %w", err)
	}
	result := &TxResult{
		Hex:  strings.TrimSpace(string(rawHex)),
		Info: &info,
	}

	if c.cfg.Cache != nil {
		c.cfg.Cache.Put(key, &txcache.Entry{
			Hex:  result.Hex,
			Info: rawInfo,
		})
	}
	log.Debugf("Fetched transaction %s", key)

	return result, nil
}

// FetchUTXOs returns the unspent outputs paying to address.
func (c *Client) FetchUTXOs(ctx context.Context, address string,
	testnet bool) ([]UTXO, error) {

	params := &chaincfg.MainNetParams
	if testnet {
		params = &chaincfg.TestNet3Params
	}
	addr, err := btcutil.DecodeAddress(address, params)
	if err != nil || !addr.IsForNet(params) {
		return nil, fmt.Errorf("%w: %q for %s", ErrInvalidAddress,
			address, params.Name)
	}

	url := c.baseURL(testnet) + "/address/" + addr.EncodeAddress() + "/utxo"
	body, err := c.doGet(ctx, url)
	if err != nil {
		return nil, err
	}

	var utxos []UTXO
	if err := json.Unmarshal(body, &utxos); err != nil {
		return nil, fmt.Errorf("failed to decode utxos: %w", err)
	}

	return utxos, nil
}
