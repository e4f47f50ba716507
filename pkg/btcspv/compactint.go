package btcspv

import "encoding/binary"

// CompactInt is a decoded Bitcoin CompactSize integer.
type CompactInt struct {
	Value uint64
	Width int // total encoded bytes: 1, 3, 5 or 9
}

// CompactIntDataLength returns how many payload bytes follow a tag byte.
func CompactIntDataLength(tag byte) int {
	switch tag {
	case 0xfd:
		return 2
	case 0xfe:
		return 4
	case 0xff:
		return 8
	default:
		return 0
	}
}

// CompactIntWidth returns the minimal total encoded width of v.
func CompactIntWidth(v uint64) int {
	switch {
	case v <= 0xfc:
		return 1
	case v <= 0xffff:
		return 3
	case v <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// DecodeCompactInt reads a CompactSize integer from the front of b. Encodings
// that are wider than necessary are rejected with CodeNonCanonical.
func DecodeCompactInt(b View) (CompactInt, error) {
	const op = "DecodeCompactInt"
	if len(b) < 1 {
		return CompactInt{}, shortErr(op, 1, len(b))
	}
	dataLen := CompactIntDataLength(b[0])
	if dataLen == 0 {
		return CompactInt{Value: uint64(b[0]), Width: 1}, nil
	}
	if len(b) < 1+dataLen {
		return CompactInt{}, shortErr(op, 1+dataLen, len(b))
	}

	var v uint64
	switch dataLen {
	case 2:
		v = uint64(binary.LittleEndian.Uint16(b[1:3]))
	case 4:
		v = uint64(binary.LittleEndian.Uint32(b[1:5]))
	default:
		v = binary.LittleEndian.Uint64(b[1:9])
	}

	if CompactIntWidth(v) != 1+dataLen {
		return CompactInt{}, spvErr(CodeNonCanonical, op, "value %d encoded in %d bytes", v, 1+dataLen)
	}
	return CompactInt{Value: v, Width: 1 + dataLen}, nil
}

// AppendCompactInt appends the minimal encoding of v to dst.
func AppendCompactInt(dst []byte, v uint64) []byte {
	switch CompactIntWidth(v) {
	case 1:
		return append(dst, byte(v))
	case 3:
		dst = append(dst, 0xfd)
		return binary.LittleEndian.AppendUint16(dst, uint16(v))
	case 5:
		dst = append(dst, 0xfe)
		return binary.LittleEndian.AppendUint32(dst, uint32(v))
	default:
		dst = append(dst, 0xff)
		return binary.LittleEndian.AppendUint64(dst, v)
	}
}

// EncodeCompactInt returns the minimal encoding of v.
func EncodeCompactInt(v uint64) []byte {
	return AppendCompactInt(make([]byte, 0, CompactIntWidth(v)), v)
}
