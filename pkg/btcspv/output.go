package btcspv

import "encoding/binary"

// OutputType classifies a transaction output by its scriptPubkey.
type OutputType int

const (
	OutputNone  OutputType = 0
	WPKH        OutputType = 1
	WSH         OutputType = 2
	OpReturn    OutputType = 3
	PKH         OutputType = 4
	SH          OutputType = 5
	Nonstandard OutputType = 6
)

func (t OutputType) String() string {
	switch t {
	case WPKH:
		return "p2wpkh"
	case WSH:
		return "p2wsh"
	case OpReturn:
		return "op_return"
	case PKH:
		return "p2pkh"
	case SH:
		return "p2sh"
	case Nonstandard:
		return "nonstandard"
	default:
		return "none"
	}
}

const (
	valueSize       = 8
	opReturnOpcode  = 0x6a
	outputTagOffset = 8
	outputTagSize   = 3
)

// ExtractOutputScriptLen decodes the scriptPubkey length prefix.
func ExtractOutputScriptLen(txout View) (CompactInt, error) {
	if len(txout) < valueSize+1 {
		return CompactInt{}, shortErr("ExtractOutputScriptLen", valueSize+1, len(txout))
	}
	return DecodeCompactInt(txout[valueSize:])
}

// DetermineOutputLength returns the serialized size of the output at the
// front of txout: value and length-prefixed scriptPubkey.
func DetermineOutputLength(txout View) (uint64, error) {
	ci, err := ExtractOutputScriptLen(txout)
	if err != nil {
		return 0, err
	}
	return addLength("DetermineOutputLength", ci.Value, valueSize+uint64(ci.Width))
}

// ExtractValueLE returns the 8 value bytes, little-endian.
func ExtractValueLE(txout View) (View, error) {
	return txout.Slice(0, valueSize)
}

// ExtractValue returns the output value in satoshis.
func ExtractValue(txout View) (uint64, error) {
	le, err := ExtractValueLE(txout)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(le), nil
}

// ExtractScriptPubkey returns the scriptPubkey without its length prefix.
func ExtractScriptPubkey(txout View) (View, error) {
	ci, err := ExtractOutputScriptLen(txout)
	if err != nil {
		return NullView, err
	}
	n, err := spanLen("ExtractScriptPubkey", ci.Value, len(txout)-valueSize-ci.Width)
	if err != nil {
		return NullView, err
	}
	return txout.Slice(valueSize+ci.Width, n)
}

// ExtractOpReturnData returns the data pushed by an OP_RETURN output whose
// script is OP_RETURN followed by a single direct push.
func ExtractOpReturnData(txout View) (View, error) {
	const op = "ExtractOpReturnData"
	if len(txout) < 11 {
		return NullView, shortErr(op, 11, len(txout))
	}
	if txout[9] != opReturnOpcode {
		return NullView, spvErr(CodeUnrecognizedScript, op, "opcode 0x%02x is not OP_RETURN", txout[9])
	}
	dataLen := int(txout[10])
	if len(txout) < 11+dataLen {
		return NullView, shortErr(op, 11+dataLen, len(txout))
	}
	return txout.Slice(11, dataLen)
}

// ExtractHash returns the hash payload of a standard output: the 20 or 32
// byte witness program of a P2WPKH/P2WSH output, or the 20-byte hash of a
// P2PKH/P2SH output. Anything else fails.
func ExtractHash(txout View) (View, error) {
	const op = "ExtractHash"
	if len(txout) < outputTagOffset+outputTagSize {
		return NullView, shortErr(op, outputTagOffset+outputTagSize, len(txout))
	}
	tag := txout[outputTagOffset : outputTagOffset+outputTagSize]
	if int(tag[0])+9 != len(txout) {
		return NullView, spvErr(CodeStructuralMismatch, op, "script length %d does not match output length %d", tag[0], len(txout))
	}

	// witness: OP_0 <push>
	if tag[1] == 0 {
		payloadLen := int(tag[0]) - 2
		if int(tag[2]) != payloadLen || (tag[2] != 0x20 && tag[2] != 0x14) {
			return NullView, spvErr(CodeUnrecognizedScript, op, "malformed witness program")
		}
		return txout.Slice(11, payloadLen)
	}

	// P2PKH: OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG
	if tag[0] == 0x19 && tag[1] == 0x76 && tag[2] == 0xa9 {
		n := len(txout)
		if txout[11] != 0x14 || txout[n-2] != 0x88 || txout[n-1] != 0xac {
			return NullView, spvErr(CodeUnrecognizedScript, op, "malformed p2pkh script")
		}
		return txout.Slice(12, 20)
	}

	// P2SH: OP_HASH160 <20> OP_EQUAL
	if tag[0] == 0x17 && tag[1] == 0xa9 && tag[2] == 0x14 {
		if txout[len(txout)-1] != 0x87 {
			return NullView, spvErr(CodeUnrecognizedScript, op, "malformed p2sh script")
		}
		return txout.Slice(11, 20)
	}

	return NullView, spvErr(CodeUnrecognizedScript, op, "nonstandard or OP_RETURN output")
}

// DetermineOutputType classifies an output and returns its payload: the
// hash for standard outputs, the pushed data for OP_RETURN, or an empty view
// for nonstandard scripts.
func DetermineOutputType(txout View) (OutputType, View, error) {
	length, err := DetermineOutputLength(txout)
	if err != nil {
		return OutputNone, NullView, err
	}
	if length != uint64(len(txout)) {
		return OutputNone, NullView, spvErr(CodeStructuralMismatch, "DetermineOutputType", "output is %d bytes, encodes %d", len(txout), length)
	}

	if data, err := ExtractOpReturnData(txout); err == nil {
		return OpReturn, data, nil
	}
	payload, err := ExtractHash(txout)
	if err != nil {
		return Nonstandard, txout[len(txout):], nil
	}
	switch {
	case txout[9] == 0x00 && len(payload) == 32:
		return WSH, payload, nil
	case txout[9] == 0x00:
		return WPKH, payload, nil
	case txout[9] == 0x76:
		return PKH, payload, nil
	default:
		return SH, payload, nil
	}
}
