package btcspv

import (
	"encoding/binary"
	"math"
)

// InputType classifies a transaction input by its scriptSig.
type InputType int

const (
	InputNone     InputType = 0
	Legacy        InputType = 1
	Compatibility InputType = 2 // witness program nested in P2SH
	Witness       InputType = 3
)

func (t InputType) String() string {
	switch t {
	case Legacy:
		return "legacy"
	case Compatibility:
		return "compatibility"
	case Witness:
		return "witness"
	default:
		return "none"
	}
}

// Input layout offsets.
const (
	outpointSize    = 36
	scriptSigOffset = 36
)

// IsLegacyInput reports whether the input carries a non-empty scriptSig.
func IsLegacyInput(txin View) (bool, error) {
	if len(txin) < scriptSigOffset+1 {
		return false, shortErr("IsLegacyInput", scriptSigOffset+1, len(txin))
	}
	return txin[scriptSigOffset] != 0, nil
}

// ExtractScriptSigLen decodes the scriptSig length prefix.
func ExtractScriptSigLen(txin View) (CompactInt, error) {
	if len(txin) < scriptSigOffset+1 {
		return CompactInt{}, shortErr("ExtractScriptSigLen", scriptSigOffset+1, len(txin))
	}
	return DecodeCompactInt(txin[scriptSigOffset:])
}

// DetermineInputLength returns the serialized size of the input at the front
// of txin: outpoint, length-prefixed scriptSig and sequence.
func DetermineInputLength(txin View) (uint64, error) {
	ci, err := ExtractScriptSigLen(txin)
	if err != nil {
		return 0, err
	}
	return addLength("DetermineInputLength", ci.Value, outpointSize+uint64(ci.Width)+4)
}

// ExtractScriptSig returns the scriptSig including its length prefix.
func ExtractScriptSig(txin View) (View, error) {
	ci, err := ExtractScriptSigLen(txin)
	if err != nil {
		return NullView, err
	}
	total, err := addLength("ExtractScriptSig", ci.Value, uint64(ci.Width))
	if err != nil {
		return NullView, err
	}
	n, err := spanLen("ExtractScriptSig", total, len(txin)-scriptSigOffset)
	if err != nil {
		return NullView, err
	}
	return txin.Slice(scriptSigOffset, n)
}

// ExtractScriptSigBody returns the scriptSig without its length prefix.
func ExtractScriptSigBody(txin View) (View, error) {
	ci, err := ExtractScriptSigLen(txin)
	if err != nil {
		return NullView, err
	}
	n, err := spanLen("ExtractScriptSigBody", ci.Value, len(txin)-scriptSigOffset-ci.Width)
	if err != nil {
		return NullView, err
	}
	return txin.Slice(scriptSigOffset+ci.Width, n)
}

// ExtractSequenceLE returns the 4 sequence bytes, little-endian. Works for
// both legacy and witness inputs since a witness input has an empty scriptSig.
func ExtractSequenceLE(txin View) (View, error) {
	length, err := DetermineInputLength(txin)
	if err != nil {
		return NullView, err
	}
	if length > uint64(len(txin)) {
		return NullView, shortErr("ExtractSequenceLE", clampInt(length), len(txin))
	}
	return txin.Slice(int(length)-4, 4)
}

// ExtractSequence returns the sequence number.
func ExtractSequence(txin View) (uint32, error) {
	le, err := ExtractSequenceLE(txin)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(le), nil
}

// ExtractOutpoint returns the 36-byte outpoint (txid LE and output index LE).
func ExtractOutpoint(txin View) (View, error) {
	return txin.Slice(0, outpointSize)
}

// ExtractInputTxIDLE returns the spent transaction's id, little-endian.
func ExtractInputTxIDLE(txin View) (Hash256Digest, error) {
	v, err := txin.Slice(0, 32)
	if err != nil {
		return Hash256Digest{}, err
	}
	var h Hash256Digest
	copy(h[:], v)
	return h, nil
}

// ExtractInputTxID returns the spent transaction's id in display order.
func ExtractInputTxID(txin View) (Hash256Digest, error) {
	le, err := ExtractInputTxIDLE(txin)
	if err != nil {
		return Hash256Digest{}, err
	}
	return le.Reversed(), nil
}

// ExtractTxIndexLE returns the 4 bytes of the spent output index.
func ExtractTxIndexLE(txin View) (View, error) {
	return txin.Slice(32, 4)
}

// ExtractTxIndex returns the spent output index.
func ExtractTxIndex(txin View) (uint32, error) {
	le, err := ExtractTxIndexLE(txin)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(le), nil
}

// DetermineInputType classifies an input. A nested witness input spends
// P2SH-P2WSH or P2SH-P2WPKH and its scriptSig is a single push of the
// witness program.
func DetermineInputType(txin View) (InputType, error) {
	legacy, err := IsLegacyInput(txin)
	if err != nil {
		return InputNone, err
	}
	if !legacy {
		return Witness, nil
	}
	body, err := ExtractScriptSigBody(txin)
	if err != nil {
		return InputNone, err
	}
	switch {
	case len(body) == 35 && body[0] == 0x22 && body[1] == 0x00 && body[2] == 0x20:
		return Compatibility, nil
	case len(body) == 23 && body[0] == 0x16 && body[1] == 0x00 && body[2] == 0x14:
		return Compatibility, nil
	}
	return Legacy, nil
}

// spanLen converts a decoded length into an int after checking it fits in the
// available bytes.
func spanLen(op string, n uint64, avail int) (int, error) {
	if avail < 0 || n > uint64(avail) {
		return 0, shortErr(op, clampInt(n), avail)
	}
	return int(n), nil
}

// addLength returns n+fixed, failing instead of wrapping on hostile lengths.
func addLength(op string, n, fixed uint64) (uint64, error) {
	if n > math.MaxUint64-fixed {
		return 0, spvErr(CodeOutOfRange, op, "declared length %d overflows", n)
	}
	return n + fixed, nil
}

func clampInt(n uint64) int {
	const maxInt = int(^uint(0) >> 1)
	if n > uint64(maxInt) {
		return maxInt
	}
	return int(n)
}
