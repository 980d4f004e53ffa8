// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// mainNetGenesisHash is the hash of the first block in the block chain for
// the main network (genesis block), in wire order.
var mainNetGenesisHash = Hash([HashSize]byte{
	0x6f, 0xe2, 0x8c, 0x0a, 0xb6, 0xf1, 0xb3, 0x72,
	0xc1, 0xa6, 0xa2, 0x46, 0xae, 0x63, 0xf7, 0x4f,
	0x93, 0x1e, 0x83, 0x65, 0xe1, 0x5a, 0x08, 0x9c,
	0x68, 0xd6, 0x19, 0x00, 0x00, 0x00, 0x00, 0x00,
})

// TestHashString tests the stringized output for hashes.
func TestHashString(t *testing.T) {
	t.Parallel()

	want := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"
	require.Equal(t, want, mainNetGenesisHash.String())

	// String must not reverse the receiver in place.
	require.Equal(t, byte(0x6f), mainNetGenesisHash[0])
}

// TestNewHashFromStr executes tests against the NewHashFromStr function.
func TestNewHashFromStr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want *Hash
		err  bool
	}{{
		name: "genesis hash",
		in:   "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		want: &mainNetGenesisHash,
	}, {
		name: "short string",
		in:   "19d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f",
		err:  true,
	}, {
		name: "too long",
		in:   "01234567890123456789012345678901234567890123456789012345678912345",
		err:  true,
	}, {
		name: "invalid hex",
		in:   "abcdefg000000000000000000000000000000000000000000000000000000000",
		err:  true,
	}}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			got, err := NewHashFromStr(test.in)
			if test.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.True(t, got.IsEqual(test.want))
			require.Equal(t, test.in, got.String())
		})
	}
}

// TestHashFuncs ensures the hash functions which perform hash(b) and
// hash(hash(b)) and ripemd160(hash(b)) produce the expected digests.
func TestHashFuncs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fn   func([]byte) []byte
		in   string
		want string
	}{{
		name: "sha256 empty",
		fn:   HashB,
		in:   "",
		want: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
	}, {
		name: "hash256 zero byte",
		fn:   Hash256,
		in:   "00",
		want: "1406e05881e299367766d313e26c05564ec91bf721d31726bd6e46e60689539a",
	}, {
		name: "hash160 zero byte",
		fn:   Hash160,
		in:   "00",
		want: "9f7fd096d37ed2c0e3f7f0cfc924beef4ffceb68",
	}, {
		name: "ripemd160 empty",
		fn:   Ripemd160,
		in:   "",
		want: "9c1185a5c5e9fc54612808977ee8f548b2258d31",
	}}

	for _, test := range tests {
		in, err := hex.DecodeString(test.in)
		require.NoError(t, err)

		got := test.fn(in)
		require.Equal(t, test.want, hex.EncodeToString(got), test.name)
	}

	// The Hash returning variants must agree with the byte variants.
	in := []byte{0x00}
	h := DoubleHashH(in)
	require.Equal(t, DoubleHashB(in), h[:])
}
