package btcspv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeCompactInt(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		value uint64
		width int
		code  ErrorCode
	}{
		{name: "zero", in: "00", value: 0, width: 1},
		{name: "max single byte", in: "fc", value: 0xfc, width: 1},
		{name: "u16 min", in: "fdfd00", value: 0xfd, width: 3},
		{name: "u16 max", in: "fdffff", value: 0xffff, width: 3},
		{name: "u32 min", in: "fe00000100", value: 0x10000, width: 5},
		{name: "u64 min", in: "ff0000000001000000", value: 0x100000000, width: 9},
		{name: "trailing bytes ignored", in: "fdfd00aabb", value: 0xfd, width: 3},
		{name: "empty", in: "", code: CodeInsufficientBytes},
		{name: "truncated u16", in: "fd01", code: CodeInsufficientBytes},
		{name: "truncated u64", in: "ff00000000", code: CodeInsufficientBytes},
		{name: "non-minimal u16", in: "fdfc00", code: CodeNonCanonical},
		{name: "non-minimal u32", in: "feffff0000", code: CodeNonCanonical},
		{name: "non-minimal u64", in: "ffffffffff00000000", code: CodeNonCanonical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := require.New(t)
			ci, err := DecodeCompactInt(mustHex(t, tc.in))
			if tc.code != "" {
				r.Error(err)
				r.Equal(tc.code, CodeOf(err))
				return
			}
			r.NoError(err)
			r.Equal(tc.value, ci.Value)
			r.Equal(tc.width, ci.Width)
		})
	}
}

func TestCompactIntWidthBoundaries(t *testing.T) {
	r := require.New(t)
	for _, v := range []uint64{0, 0xfc, 0xfd, 0xffff, 0x10000, 0xffffffff, 0x100000000, ^uint64(0)} {
		enc := EncodeCompactInt(v)
		r.Len(enc, CompactIntWidth(v))
		r.Equal(CompactIntWidth(v)-1, CompactIntDataLength(enc[0]))

		ci, err := DecodeCompactInt(enc)
		r.NoError(err)
		r.Equal(v, ci.Value)
		r.Equal(len(enc), ci.Width)
	}
}

func TestCompactIntNonCanonicalIsMatchable(t *testing.T) {
	_, err := DecodeCompactInt([]byte{0xfd, 0x01, 0x00})
	require.True(t, errors.Is(err, ErrNonCanonical))
	require.False(t, errors.Is(err, ErrInsufficientBytes))
}
