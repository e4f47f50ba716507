package btcspv

import (
	"bytes"
	"encoding/hex"
)

// Uint256 is an unsigned 256-bit integer stored big-endian. Arithmetic is
// fixed width: results that do not fit are truncated to the low 256 bits.
type Uint256 [32]byte

// Uint256FromLE builds a Uint256 from 32 little-endian bytes.
func Uint256FromLE(le []byte) (Uint256, error) {
	var u Uint256
	if len(le) != len(u) {
		return u, spvErr(CodeBadLength, "Uint256FromLE", "expected 32 bytes, got %d", len(le))
	}
	View(le).ReverseInto(u[:])
	return u, nil
}

// Uint256FromBE builds a Uint256 from 32 big-endian bytes.
func Uint256FromBE(be []byte) (Uint256, error) {
	var u Uint256
	if len(be) != len(u) {
		return u, spvErr(CodeBadLength, "Uint256FromBE", "expected 32 bytes, got %d", len(be))
	}
	copy(u[:], be)
	return u, nil
}

// LE returns the little-endian byte form.
func (u Uint256) LE() [32]byte {
	var out [32]byte
	View(u[:]).ReverseInto(out[:])
	return out
}

// IsZero reports whether u is zero.
func (u Uint256) IsZero() bool {
	return u == Uint256{}
}

// Cmp returns -1, 0 or +1.
func (u Uint256) Cmp(o Uint256) int {
	return bytes.Compare(u[:], o[:])
}

// MulUint32 multiplies by m one byte at a time from the least significant
// end. Carry out of the top byte is discarded.
func (u Uint256) MulUint32(m uint32) Uint256 {
	var out Uint256
	var carry uint64
	for i := len(u) - 1; i >= 0; i-- {
		cur := carry + uint64(u[i])*uint64(m)
		out[i] = byte(cur)
		carry = cur >> 8
	}
	return out
}

// DivUint32 divides by d using long division from the most significant byte
// and returns the quotient and remainder. d must be non-zero.
func (u Uint256) DivUint32(d uint32) (Uint256, uint32) {
	var out Uint256
	var rem uint64
	for i := 0; i < len(u); i++ {
		cur := rem<<8 | uint64(u[i])
		out[i] = byte(cur / uint64(d))
		rem = cur % uint64(d)
	}
	return out, uint32(rem)
}

// Hex returns the big-endian hex form.
func (u Uint256) Hex() string {
	return hex.EncodeToString(u[:])
}
