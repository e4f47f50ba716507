package btcspv

import "encoding/binary"

// HeaderSize is the serialized size of a block header.
const HeaderSize = 80

// Header field offsets.
const (
	prevHashOffset   = 4
	merkleRootOffset = 36
	timestampOffset  = 68
	bitsOffset       = 72
	nonceOffset      = 76
)

// diff1Numerator is the difficulty-1 target's top 8 bytes scaled so that a
// target with bits 0x1d00ffff yields 1.
const diff1Numerator = 0xffff000000000000

// RawHeader is a copied 80-byte header.
type RawHeader [HeaderSize]byte

// NewRawHeader copies exactly 80 bytes into a RawHeader.
func NewRawHeader(b []byte) (RawHeader, error) {
	var h RawHeader
	if len(b) != HeaderSize {
		return h, spvErr(CodeBadLength, "NewRawHeader", "expected %d bytes, got %d", HeaderSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// MarshalJSON encodes as 0x-prefixed hex.
func (h RawHeader) MarshalJSON() ([]byte, error) {
	return HexBytes(h[:]).MarshalJSON()
}

// UnmarshalJSON accepts hex with or without a 0x prefix.
func (h *RawHeader) UnmarshalJSON(b []byte) error {
	buf, err := decodeJSONHex(b)
	if err != nil {
		return err
	}
	raw, err := NewRawHeader(buf)
	if err != nil {
		return err
	}
	*h = raw
	return nil
}

// headerField returns a fixed field of the header at the front of header.
// Longer inputs are accepted so the first header of a chain can be read in
// place.
func headerField(op string, header View, off, n int) (View, error) {
	if len(header) < HeaderSize {
		return NullView, shortErr(op, HeaderSize, len(header))
	}
	return header.Slice(off, n)
}

func headerDigest(op string, header View, off int) (Hash256Digest, error) {
	v, err := headerField(op, header, off, 32)
	if err != nil {
		return Hash256Digest{}, err
	}
	var h Hash256Digest
	copy(h[:], v)
	return h, nil
}

func headerUint32(op string, header View, off int) (uint32, error) {
	v, err := headerField(op, header, off, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(v), nil
}

// ExtractVersion returns the header version.
func ExtractVersion(header View) (uint32, error) {
	return headerUint32("ExtractVersion", header, 0)
}

// ExtractPrevBlockHashLE returns the parent block hash as stored.
func ExtractPrevBlockHashLE(header View) (Hash256Digest, error) {
	return headerDigest("ExtractPrevBlockHashLE", header, prevHashOffset)
}

// ExtractPrevBlockHashBE returns the parent block hash in display order.
func ExtractPrevBlockHashBE(header View) (Hash256Digest, error) {
	le, err := ExtractPrevBlockHashLE(header)
	return le.Reversed(), err
}

// ExtractMerkleRootLE returns the merkle root as stored.
func ExtractMerkleRootLE(header View) (Hash256Digest, error) {
	return headerDigest("ExtractMerkleRootLE", header, merkleRootOffset)
}

// ExtractMerkleRootBE returns the merkle root in display order.
func ExtractMerkleRootBE(header View) (Hash256Digest, error) {
	le, err := ExtractMerkleRootLE(header)
	return le.Reversed(), err
}

// ExtractTimestampLE returns the 4 timestamp bytes.
func ExtractTimestampLE(header View) (View, error) {
	return headerField("ExtractTimestampLE", header, timestampOffset, 4)
}

// ExtractTimestamp returns the header time in unix seconds.
func ExtractTimestamp(header View) (uint32, error) {
	return headerUint32("ExtractTimestamp", header, timestampOffset)
}

// ExtractBits returns the compact target encoding.
func ExtractBits(header View) (uint32, error) {
	return headerUint32("ExtractBits", header, bitsOffset)
}

// ExtractNonce returns the header nonce.
func ExtractNonce(header View) (uint32, error) {
	return headerUint32("ExtractNonce", header, nonceOffset)
}

// ExtractTargetLE expands the compact bits into a little-endian 256-bit
// target. An exponent outside [3, 32] cannot be placed in 32 bytes and yields
// a zero target, which every work check rejects.
func ExtractTargetLE(header View) ([32]byte, error) {
	var target [32]byte
	bits, err := headerField("ExtractTargetLE", header, bitsOffset, 4)
	if err != nil {
		return target, err
	}
	exponent := int(bits[3])
	if exponent < 3 || exponent > 32 {
		return target, nil
	}
	copy(target[exponent-3:exponent], bits[:3])
	return target, nil
}

// ExtractTarget returns the header target as a big-endian integer.
func ExtractTarget(header View) (Uint256, error) {
	le, err := ExtractTargetLE(header)
	if err != nil {
		return Uint256{}, err
	}
	return Uint256FromLE(le[:])
}

// CalculateDifficulty returns the difficulty of a target relative to the
// difficulty-1 target, using the target's bytes [4,12) as a big-endian
// divisor. A zero divisor yields 0.
func CalculateDifficulty(target Uint256) uint64 {
	divisor := binary.BigEndian.Uint64(target[4:12])
	if divisor == 0 {
		return 0
	}
	return diff1Numerator / divisor
}

// ExtractDifficulty returns the difficulty encoded in the header's bits.
func ExtractDifficulty(header View) (uint64, error) {
	target, err := ExtractTarget(header)
	if err != nil {
		return 0, err
	}
	return CalculateDifficulty(target), nil
}

// HeaderHash returns the block hash (hash256 of the first 80 bytes), as
// stored, i.e. little-endian.
func HeaderHash(header View) (Hash256Digest, error) {
	if len(header) < HeaderSize {
		return Hash256Digest{}, shortErr("HeaderHash", HeaderSize, len(header))
	}
	return Hash256(header[:HeaderSize]), nil
}
