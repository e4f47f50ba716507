package btcspv

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/ripemd160"
)

// Hash256Digest is a 32-byte double-sha256 digest in the byte order it was
// produced (little-endian as far as Bitcoin display is concerned).
type Hash256Digest [32]byte

// Hash160Digest is a 20-byte ripemd160(sha256(x)) digest.
type Hash160Digest [20]byte

// NewHash256Digest copies exactly 32 bytes into a digest.
func NewHash256Digest(b []byte) (Hash256Digest, error) {
	var h Hash256Digest
	if len(b) != len(h) {
		return h, spvErr(CodeBadLength, "NewHash256Digest", "expected 32 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// NewHash160Digest copies exactly 20 bytes into a digest.
func NewHash160Digest(b []byte) (Hash160Digest, error) {
	var h Hash160Digest
	if len(b) != len(h) {
		return h, spvErr(CodeBadLength, "NewHash160Digest", "expected 20 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Reversed flips the byte order (LE <-> BE).
func (h Hash256Digest) Reversed() Hash256Digest {
	var out Hash256Digest
	View(h[:]).ReverseInto(out[:])
	return out
}

// IsZero reports whether every byte is zero.
func (h Hash256Digest) IsZero() bool {
	return h == Hash256Digest{}
}

// Hex returns the digest as plain hex in its stored byte order.
func (h Hash256Digest) Hex() string {
	return hex.EncodeToString(h[:])
}

// MarshalJSON encodes as 0x-prefixed hex.
func (h Hash256Digest) MarshalJSON() ([]byte, error) {
	return []byte(`"0x` + hex.EncodeToString(h[:]) + `"`), nil
}

// UnmarshalJSON accepts hex with or without a 0x prefix.
func (h *Hash256Digest) UnmarshalJSON(b []byte) error {
	buf, err := decodeJSONHex(b)
	if err != nil {
		return err
	}
	d, err := NewHash256Digest(buf)
	if err != nil {
		return err
	}
	*h = d
	return nil
}

// HexBytes is a byte string that travels through JSON as 0x-prefixed hex.
type HexBytes []byte

// MarshalJSON encodes as 0x-prefixed hex.
func (h HexBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"0x` + hex.EncodeToString(h) + `"`), nil
}

// UnmarshalJSON accepts hex with or without a 0x prefix.
func (h *HexBytes) UnmarshalJSON(b []byte) error {
	buf, err := decodeJSONHex(b)
	if err != nil {
		return err
	}
	*h = buf
	return nil
}

func decodeJSONHex(b []byte) ([]byte, error) {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return nil, fmt.Errorf("expected a JSON string, got %s", b)
	}
	return DecodeHex(string(b[1 : len(b)-1]))
}

// DecodeHex decodes hex, tolerating a 0x prefix.
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

// Sha256 is a single sha256.
func Sha256(b []byte) Hash256Digest {
	return sha256.Sum256(b)
}

// Ripemd160 is a single ripemd160.
func Ripemd160(b []byte) Hash160Digest {
	var out Hash160Digest
	h := ripemd160.New()
	h.Write(b)
	copy(out[:], h.Sum(nil))
	return out
}

// Hash160 is ripemd160(sha256(b)), used for addresses.
func Hash160(b []byte) Hash160Digest {
	s := sha256.Sum256(b)
	return Ripemd160(s[:])
}

// Hash256 is sha256(sha256(b)), used for txids, block hashes and merkle nodes.
func Hash256(b []byte) Hash256Digest {
	return Hash256Digest(chainhash.DoubleHashH(b))
}

// Hash256MerkleStep hashes the concatenation of two 32-byte nodes without
// building the concatenation in memory.
func Hash256MerkleStep(a, b []byte) Hash256Digest {
	first := sha256.New()
	first.Write(a)
	first.Write(b)
	var mid [32]byte
	first.Sum(mid[:0])
	return sha256.Sum256(mid[:])
}
