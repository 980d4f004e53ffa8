// Copyright (c) 2024 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package explorer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/landaverdend/btcwebtools/txcache"
	"github.com/stretchr/testify/require"
)

const (
	testTxID = "d1c789a9c60383bf715f3f6ad9d14b91fe55f3deb369fe5d9280cb1a01793f81"

	testTxHex = "0100000001813f79011acb80925dfe69b3def355fe914bd1d96a3f5f" +
		"71bf8303c6a989c7d1000000006b483045022100ed81ff192e75a3fd2304004dcadb746f" +
		"a5e24c5031ccfcf21320b0277457c98f02207a986d955c6e0cb35d446a89d3f56100f4d7" +
		"f67801c31967743a9c8e10615bed01210349fc4e631e3624a545de3f89f5d8684c7b8138" +
		"bd94bdd531d2e213bf016b278afeffffff02a135ef01000000001976a914bc3b654dca7e" +
		"56b04dca18f2566cdaf02e8d9ada88ac99c39800000000001976a9141c4bc762dd5423e3" +
		"32166702cb75f40df79fea1288ac19430600"

	testPkScript = "76a914a802fc56c704ce87c42d7c92eb75e7896bdc41ae88ac"
)

func testTxInfo() *TxInfo {
	return &TxInfo{
		TxID:     "a9b1e5f1bde1e3e0e9e2b2cf49a5e1a8f1c1b8a5c4c6e0e2f1f6a5d3b6e1f2a0",
		Version:  1,
		LockTime: 410393,
		Vin: []TxVin{{
			TxID: testTxID,
			PrevOut: &TxVout{
				ScriptPubKey:     testPkScript,
				ScriptPubKeyType: "p2pkh",
				Value:            42505594,
			},
			Sequence: 0xfffffffe,
		}},
		Vout: []TxVout{
			{ScriptPubKeyType: "p2pkh", Value: 32454049},
			{ScriptPubKeyType: "p2pkh", Value: 10011545},
		},
	}
}

// testServer serves testTxHex for testTxID under both network prefixes and
// counts the requests it receives.
type testServer struct {
	*httptest.Server
	hits atomic.Int32
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	info, err := json.Marshal(testTxInfo())
	require.NoError(t, err)

	ts := &testServer{}
	mux := http.NewServeMux()
	for _, prefix := range []string{"/main", "/test"} {
		mux.HandleFunc(prefix+"/tx/"+testTxID+"/hex",
			func(w http.ResponseWriter, r *http.Request) {
				ts.hits.Add(1)
				_, _ = w.Write([]byte(testTxHex + "\n"))
			})
		mux.HandleFunc(prefix+"/tx/"+testTxID,
			func(w http.ResponseWriter, r *http.Request) {
				ts.hits.Add(1)
				_, _ = w.Write(info)
			})
	}
	mux.HandleFunc("/main/address/1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa/utxo",
		func(w http.ResponseWriter, r *http.Request) {
			ts.hits.Add(1)
			_, _ = w.Write([]byte(`[{"txid":"` + testTxID + `",` +
				`"vout":1,"status":{"confirmed":true,` +
				`"block_height":410394},"value":10011545}]`))
		})
	mux.HandleFunc("/main/tx/", func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		http.Error(w, "Transaction not found", http.StatusNotFound)
	})
	mux.HandleFunc("/test/address/", func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(ts *testServer, cache txcache.Cache) *Client {
	return NewClient(&Config{
		MainnetURL: ts.URL + "/main/",
		TestnetURL: ts.URL + "/test",
		MaxRetries: 1,
		Cache:      cache,
	})
}

// TestFetchTransaction ensures transactions are fetched, decoded and served
// from the cache on the second request.
func TestFetchTransaction(t *testing.T) {
	ts := newTestServer(t)
	cache := txcache.NewFIFO(10)
	c := newTestClient(ts, cache)
	ctx := context.Background()

	res, err := c.FetchTransaction(ctx, testTxID, false)
	require.NoError(t, err)
	require.Equal(t, testTxHex, res.Hex)
	require.Equal(t, uint32(410393), res.Info.LockTime)
	require.EqualValues(t, 2, ts.hits.Load())

	_, ok := cache.Get(testTxID + "-mainnet")
	require.True(t, ok)

	again, err := c.FetchTransaction(ctx, testTxID, false)
	require.NoError(t, err)
	require.Equal(t, res.Hex, again.Hex)
	require.Equal(t, res.Info, again.Info)
	require.EqualValues(t, 2, ts.hits.Load())

	// The same id on the other network is a separate entry.
	_, err = c.FetchTransaction(ctx, testTxID, true)
	require.NoError(t, err)
	require.EqualValues(t, 4, ts.hits.Load())
	require.Equal(t, 2, cache.Len())
}

// TestFetchTransactionContext ensures a fetched transaction yields a usable
// script context.
func TestFetchTransactionContext(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(ts, nil)

	res, err := c.FetchTransaction(context.Background(), testTxID, false)
	require.NoError(t, err)

	tx, err := res.MsgTx()
	require.NoError(t, err)
	require.Len(t, tx.TxIn, 1)
	require.Len(t, tx.TxOut, 2)

	txCtx, err := res.TxContext(0)
	require.NoError(t, err)
	prevOut, ok := txCtx.PrevOut()
	require.True(t, ok)
	require.Equal(t, int64(42505594), prevOut.Value)
	require.Equal(t, "p2pkh", prevOut.ScriptType)

	_, err = res.TxContext(1)
	require.Error(t, err)
}

// TestFetchTransactionErrors ensures invalid ids are rejected locally and
// missing transactions map to ErrTxNotFound.
func TestFetchTransactionErrors(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(ts, txcache.NewFIFO(10))
	ctx := context.Background()

	for _, txid := range []string{"", "abcd", testTxID[:63] + "z",
		testTxID + "00"} {

		_, err := c.FetchTransaction(ctx, txid, false)
		require.ErrorIs(t, err, ErrInvalidTxID, txid)
	}
	require.Zero(t, ts.hits.Load())

	missing := "00000000000000000000000000000000000000000000000000000000000000ff"
	_, err := c.FetchTransaction(ctx, missing, false)
	require.ErrorIs(t, err, ErrTxNotFound)
}

// TestFetchUTXOs ensures unspent outputs are decoded and addresses are
// validated against the requested network.
func TestFetchUTXOs(t *testing.T) {
	ts := newTestServer(t)
	c := newTestClient(ts, nil)
	ctx := context.Background()

	utxos, err := c.FetchUTXOs(ctx, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", false)
	require.NoError(t, err)
	require.Equal(t, []UTXO{{
		TxID: testTxID,
		Vout: 1,
		Status: TxStatus{
			Confirmed:   true,
			BlockHeight: 410394,
		},
		Value: 10011545,
	}}, utxos)

	_, err = c.FetchUTXOs(ctx, "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", true)
	require.ErrorIs(t, err, ErrInvalidAddress)

	_, err = c.FetchUTXOs(ctx, "not an address", false)
	require.ErrorIs(t, err, ErrInvalidAddress)

	testAddr, err := btcutil.NewAddressPubKeyHash(make([]byte, 20),
		&chaincfg.TestNet3Params)
	require.NoError(t, err)
	_, err = c.FetchUTXOs(ctx, testAddr.EncodeAddress(), true)
	require.ErrorContains(t, err, "status 500")
}

// TestPrevOutsCoinbase ensures inputs without a previous output produce an
// empty PrevOut.
func TestPrevOutsCoinbase(t *testing.T) {
	res := &TxResult{Info: &TxInfo{Vin: []TxVin{{IsCoinbase: true}}}}
	prevOuts, err := res.PrevOuts()
	require.NoError(t, err)
	require.Len(t, prevOuts, 1)
	require.Nil(t, prevOuts[0].PkScript)

	res.Info.Vin[0].PrevOut = &TxVout{ScriptPubKey: "zz"}
	_, err = res.PrevOuts()
	require.Error(t, err)
}
