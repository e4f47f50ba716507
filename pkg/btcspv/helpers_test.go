package btcspv

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func mustDigest(t *testing.T, s string) Hash256Digest {
	t.Helper()
	d, err := NewHash256Digest(mustHex(t, s))
	require.NoError(t, err)
	return d
}

// A version 2 transaction with one legacy and one witness input, and six
// outputs: p2pkh, p2sh, p2wpkh, p2wsh, OP_RETURN "hello world" and a bare
// OP_1.
const (
	fixtureVersion = "02000000"
	fixtureIn0     = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f0100000048471111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111111fdffffff"
	fixtureIn1     = "202122232425262728292a2b2c2d2e2f303132333435363738393a3b3c3d3e3f0300000000ffffffff"
	fixtureVin     = "02" + fixtureIn0 + fixtureIn1
	fixtureOutPKH  = "a0860100000000001976a914aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa88ac"
	fixtureOutSH   = "400d03000000000017a914bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb87"
	fixtureOutWPKH = "e093040000000000160014cccccccccccccccccccccccccccccccccccccccc"
	fixtureOutWSH  = "801a060000000000220020dddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddddd"
	fixtureOutOpRe = "00000000000000000d6a0b68656c6c6f20776f726c64"
	fixtureOutBare = "88130000000000000151"
	fixtureVout    = "06" + fixtureOutPKH + fixtureOutSH + fixtureOutWPKH + fixtureOutWSH + fixtureOutOpRe + fixtureOutBare
	fixtureLock    = "00000000"
	fixtureTxIDLE  = "96f03dc7ca25c118ad3973896e71979b74bd423e8b52d3e5c69d8992cb3305de"
)

// Consecutive mainnet headers at bits 0x172819a1.
const (
	mainnetHeader0 = "0000002044f2432df0e5b61161259717e975a0d9583f9536d53f020000000000000000007209f58088422fc42c5849f910c29ec174fbf89bf4fb25b5600d024773ee5a5e6c339c5ba1192817c6ed8f78"
	mainnetHeader1 = "0000002073bd2184edd9c4fc76642ea6754ee40136970efc10c4190000000000000000000296ef123ea96da5cf695f22bf7d94be87d49db1ad7ac371ac43c4da4161c8c216349c5ba11928170d38782b"
	mainnetDigest0 = "73bd2184edd9c4fc76642ea6754ee40136970efc10c419000000000000000000"
	mainnetDiff    = uint64(7019199231177)

	// an early mainnet header at difficulty 1
	diff1Header = "0100000055bd840a78798ad0da853f68974f3d183e2bd1db6a842c1feecf222a00000000ff104ccb05421ab93e63f8c3ce5c2c2e9dbb37de2764b3a3175c8166562cac7d51b96a49ffff001d283e9e70"
)

func bigOf(u Uint256) *big.Int {
	return new(big.Int).SetBytes(u[:])
}
