// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/landaverdend/btcwebtools/electrum"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig([]string{"--asm", "1 1 OP_EQUAL"})
	require.NoError(t, err)
	require.Equal(t, "1 1 OP_EQUAL", cfg.Asm)
	require.Equal(t, defaultBackend, cfg.Backend)
	require.Equal(t, defaultCacheSize, cfg.CacheSize)
	require.Equal(t, defaultTimeout, cfg.Timeout)
	require.Equal(t, uint(defaultSigCacheSize), cfg.SigCacheSize)
	require.Nil(t, cfg.proxy())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "scriptdbg.conf")
	contents := "[Application Options]\n" +
		"backend=electrum\n" +
		"electrumserver=one.example:50002\n" +
		"electrumserver=two.example:50002\n" +
		"electrumtransport=tcp\n" +
		"proxy=127.0.0.1:9050\n" +
		"timeout=5s\n" +
		"cachedb=pebble\n"
	require.NoError(t, os.WriteFile(configFile, []byte(contents), 0600))

	cfg, err := loadConfig([]string{"-C", configFile, "--txid",
		"aa", "--electrumtransport=ws"})
	require.NoError(t, err)
	require.Equal(t, "electrum", cfg.Backend)
	require.Equal(t, "pebble", cfg.CacheDB)

	// Command line options take precedence.
	require.Equal(t, "ws", cfg.ElectrumTransport)

	pcfg := cfg.poolConfig()
	require.Equal(t, []string{"one.example:50002", "two.example:50002"},
		pcfg.Servers)
	require.Equal(t, electrum.TransportWS, pcfg.Transport)
	require.Equal(t, 5*time.Second, pcfg.DialTimeout)
	require.NotNil(t, pcfg.Proxy)
	require.Equal(t, "127.0.0.1:9050", pcfg.Proxy.Addr)

	_, err = loadConfig([]string{"-C", filepath.Join(dir, "missing.conf"),
		"--asm", "1"})
	require.Error(t, err)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no source", nil},
		{"tx and txid", []string{"--tx", "00", "--txid", "aa"}},
		{"script and asm", []string{"--script", "51", "--asm", "1"}},
		{"negative input", []string{"--tx", "00", "--input", "-1"}},
		{"negative steps", []string{"--asm", "1", "--steps", "-2"}},
		{"unknown backend", []string{"--asm", "1", "--backend", "rpc"}},
		{"unknown transport", []string{"--asm", "1", "--electrumtransport", "udp"}},
		{"unknown cache", []string{"--asm", "1", "--cachedb", "bolt"}},
		{"electrum without servers", []string{"--txid", "aa", "--backend", "electrum"}},
		{"bad debug level", []string{"--asm", "1", "--debuglevel", "loud"}},
		{"unknown flag", []string{"--asm", "1", "--bogus"}},
		{"extra argument", []string{"--asm", "1", "extra"}},
	}
	for _, test := range tests {
		_, err := loadConfig(test.args)
		require.Error(t, err, test.name)
	}

	_, err := loadConfig([]string{"--version"})
	require.ErrorIs(t, err, errShowVersion)
}

func TestExplorerConfig(t *testing.T) {
	cfg := &config{EsploraURL: "http://localhost:3002", TestNet: true}
	ecfg := cfg.explorerConfig()
	require.Equal(t, "http://localhost:3002", ecfg.TestnetURL)
	require.Empty(t, ecfg.MainnetURL)

	cfg.TestNet = false
	ecfg = cfg.explorerConfig()
	require.Equal(t, "http://localhost:3002", ecfg.MainnetURL)
	require.Empty(t, ecfg.TestnetURL)
}
