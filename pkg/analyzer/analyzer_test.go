package analyzer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/types"
)

func TestAddressFromPayload(t *testing.T) {
	cases := []struct {
		name    string
		typ     btcspv.OutputType
		payload []byte
		network string
		want    string
	}{
		{"p2pkh", btcspv.PKH, bytes.Repeat([]byte{0xaa}, 20), "mainnet", "1GZQKjsC97yasxRj1wtYf5rC61AxpR1zmr"},
		{"p2pkh zero", btcspv.PKH, make([]byte, 20), "mainnet", "1111111111111111111114oLvT2"},
		{"p2sh", btcspv.SH, bytes.Repeat([]byte{0xbb}, 20), "mainnet", "3JofBMeFc2zRZDfdYLeJ3ihF9E5UXRZAH7"},
		{"p2wpkh", btcspv.WPKH, bytes.Repeat([]byte{0xcc}, 20), "mainnet", "bc1qenxvenxvenxvenxvenxvenxvenxvenxvx46avd"},
		{"p2wsh", btcspv.WSH, bytes.Repeat([]byte{0xdd}, 32), "mainnet", "bc1qmhwamhwamhwamhwamhwamhwamhwamhwamhwamhwamhwamhwamhwspg3e3j"},
		{"p2pkh testnet", btcspv.PKH, bytes.Repeat([]byte{0xaa}, 20), "testnet", "mw5McnxAx9Qqf4uLjWrvV14WwzmfgiQ9PX"},
		{"p2wpkh testnet", btcspv.WPKH, bytes.Repeat([]byte{0xcc}, 20), "testnet", "tb1qenxvenxvenxvenxvenxvenxvenxvenxvvnpwh7"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddressFromPayload(tc.typ, tc.payload, tc.network)
			require.NotNil(t, got)
			require.Equal(t, tc.want, *got)
		})
	}

	require.Nil(t, AddressFromPayload(btcspv.OpReturn, []byte("hello"), "mainnet"))
	require.Nil(t, AddressFromPayload(btcspv.Nonstandard, nil, "mainnet"))
	require.Nil(t, AddressFromPayload(btcspv.WPKH, make([]byte, 19), "mainnet"))
}

func TestDisassembleScript(t *testing.T) {
	r := require.New(t)
	p2pkh := append(append([]byte{0x76, 0xa9, 0x14}, bytes.Repeat([]byte{0xaa}, 20)...), 0x88, 0xac)
	r.Equal("OP_DUP OP_HASH160 aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa OP_EQUALVERIFY OP_CHECKSIG", DisassembleScript(p2pkh))

	opReturn := append([]byte{0x6a, 0x0b}, []byte("hello world")...)
	r.Equal("OP_RETURN 68656c6c6f20776f726c64", DisassembleScript(opReturn))

	r.Equal("", DisassembleScript(nil))
	r.Contains(DisassembleScript([]byte{0x6a, 0x05, 0x01}), "[error]")
}

func TestParseOpReturn(t *testing.T) {
	r := require.New(t)

	text, protocol := ParseOpReturn([]byte("hello world"))
	r.NotNil(text)
	r.Equal("hello world", *text)
	r.Equal("unknown", protocol)

	text, protocol = ParseOpReturn([]byte{0x01, 0x09, 0xf9, 0x11, 0x02, 0xff})
	r.Nil(text)
	r.Equal("opentimestamps", protocol)

	_, protocol = ParseOpReturn([]byte("omni\x00\x00"))
	r.Equal("omni", protocol)

	text, protocol = ParseOpReturn(nil)
	r.Nil(text)
	r.Equal("unknown", protocol)
}

func TestTimelocks(t *testing.T) {
	r := require.New(t)
	r.Equal("none", GetLocktimeType(0))
	r.Equal("block_height", GetLocktimeType(499999999))
	r.Equal("unix_timestamp", GetLocktimeType(500000000))

	r.Equal(types.RelativeTimelock{}, RelativeTimelockFromSequence(0xffffffff))
	r.Equal(types.RelativeTimelock{}, RelativeTimelockFromSequence(0xfffffffd))
	r.Equal(types.RelativeTimelock{Enabled: true, Type: "blocks", Value: 144}, RelativeTimelockFromSequence(144))
	r.Equal(types.RelativeTimelock{Enabled: true, Type: "time", Value: 1024}, RelativeTimelockFromSequence(1<<22|2))

	r.True(IsRBFSignaling([]uint32{0xffffffff, 0xfffffffd}))
	r.False(IsRBFSignaling([]uint32{0xffffffff, 0xfffffffe}))
	r.False(IsRBFSignaling(nil))
}

func TestWarnings(t *testing.T) {
	r := require.New(t)

	outputs := []types.OutputInfo{
		{OutputType: "p2wpkh", ValueSats: 100000},
		{OutputType: "op_return", ValueSats: 0},
	}
	r.Equal([]types.Warning{{Code: "OP_RETURN_PRESENT"}}, OutputWarnings(outputs))

	outputs = append(outputs, types.OutputInfo{OutputType: "nonstandard", ValueSats: 5000})
	outputs = append(outputs, types.OutputInfo{OutputType: "p2pkh", ValueSats: 545})
	r.Equal([]types.Warning{
		{Code: "DUST_OUTPUT"},
		{Code: "NONSTANDARD_OUTPUT"},
		{Code: "OP_RETURN_PRESENT"},
	}, OutputWarnings(outputs))

	r.Empty(InputWarnings(false))
	r.NotNil(InputWarnings(false))
	r.Equal([]types.Warning{{Code: "RBF_SIGNALING"}}, InputWarnings(true))

	r.Empty(ProofWarnings(3, 2))
	r.Equal([]types.Warning{{Code: "INDEX_UNRELIABLE"}}, ProofWarnings(4, 2))
	r.Empty(ProofWarnings(0, 0))
	r.Equal([]types.Warning{{Code: "INDEX_UNRELIABLE"}}, ProofWarnings(1, 0))
}
