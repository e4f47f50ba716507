package validatespv

import (
	"crypto/sha256"
	"fmt"

	"spv-lens/pkg/btcspv"
)

// Distinguished results of HeaderChainWorkCode. No real chain accumulates
// this much work, so they cannot collide with a legitimate total.
const (
	WorkCodeBadLength    uint64 = 0xffffffffffffffff
	WorkCodeInvalidChain uint64 = 0xfffffffffffffffe
	WorkCodeLowWork      uint64 = 0xfffffffffffffffd
)

// Header chain failures. They also match btcspv.ErrBadLength,
// btcspv.ErrInvalidChain and btcspv.ErrLowWork under errors.Is.
var (
	ErrHeaderChainBadLength = &btcspv.Error{Code: btcspv.CodeBadLength, Op: "ValidateHeaderChain", Msg: "header chain length is not a multiple of 80"}
	ErrHeaderChainInvalid   = &btcspv.Error{Code: btcspv.CodeInvalidChain, Op: "ValidateHeaderChain", Msg: "header does not reference the previous header"}
	ErrHeaderChainLowWork   = &btcspv.Error{Code: btcspv.CodeLowWork, Op: "ValidateHeaderChain", Msg: "header hash is not below its target"}
)

// Prove checks that txid is committed to by merkleRoot, given the sibling
// hashes from leaf to root. A block with a single transaction has the txid as
// its root and no siblings.
//
// index is not a reliable indicator of the transaction's position in the
// block.
func Prove(txid, merkleRoot btcspv.Hash256Digest, intermediateNodes btcspv.View, index uint64) bool {
	if txid == merkleRoot && index == 0 && len(intermediateNodes) == 0 {
		return true
	}
	return btcspv.VerifyMerklePath(txid, intermediateNodes, merkleRoot, index)
}

// CalculateTxID returns the little-endian txid of a transaction given its
// non-witness parts.
func CalculateTxID(version, vin, vout, locktime btcspv.View) btcspv.Hash256Digest {
	h := sha256.New()
	h.Write(version)
	h.Write(vin)
	h.Write(vout)
	h.Write(locktime)
	var first [32]byte
	h.Sum(first[:0])
	return sha256.Sum256(first[:])
}

// ValidateHeaderWork reports whether a block hash (little-endian, as produced
// by hashing) is strictly below the big-endian target. The all-zero digest is
// rejected.
func ValidateHeaderWork(digestLE btcspv.Hash256Digest, target btcspv.Uint256) bool {
	if digestLE.IsZero() {
		return false
	}
	value, _ := btcspv.Uint256FromLE(digestLE[:])
	return value.Cmp(target) < 0
}

// ValidateHeaderPrevHash reports whether header names prevHashLE as its
// parent.
func ValidateHeaderPrevHash(header btcspv.View, prevHashLE btcspv.Hash256Digest) bool {
	prev, err := btcspv.ExtractPrevBlockHashLE(header)
	if err != nil {
		return false
	}
	return prev == prevHashLE
}

// ValidateHeaderChain checks that headers is a sequence of linked headers each
// meeting its own target, and returns the sum of their difficulties.
//
// The sum is a plain uint64 and wraps on overflow.
func ValidateHeaderChain(headers btcspv.View) (uint64, error) {
	if len(headers)%btcspv.HeaderSize != 0 {
		return 0, ErrHeaderChainBadLength
	}

	var work uint64
	var prevDigest btcspv.Hash256Digest
	for i := 0; i < len(headers)/btcspv.HeaderSize; i++ {
		header := headers[i*btcspv.HeaderSize : (i+1)*btcspv.HeaderSize]

		if i != 0 && !ValidateHeaderPrevHash(header, prevDigest) {
			return 0, fmt.Errorf("header %d: %w", i, ErrHeaderChainInvalid)
		}

		target, err := btcspv.ExtractTarget(header)
		if err != nil {
			return 0, fmt.Errorf("header %d: %w", i, err)
		}
		difficulty := btcspv.CalculateDifficulty(target)
		digest := btcspv.Hash256(header)
		if difficulty == 0 || !ValidateHeaderWork(digest, target) {
			return 0, fmt.Errorf("header %d: %w", i, ErrHeaderChainLowWork)
		}

		work += difficulty
		prevDigest = digest
	}

	return work, nil
}

// HeaderChainWorkCode is ValidateHeaderChain folded into a single integer:
// the accumulated work, or one of the WorkCode sentinels.
func HeaderChainWorkCode(headers btcspv.View) uint64 {
	work, err := ValidateHeaderChain(headers)
	if err == nil {
		return work
	}
	switch btcspv.CodeOf(err) {
	case btcspv.CodeBadLength:
		return WorkCodeBadLength
	case btcspv.CodeInvalidChain:
		return WorkCodeInvalidChain
	default:
		return WorkCodeLowWork
	}
}
