package utils

import (
	"encoding/hex"
	"errors"
	"strings"
)

// HexToBytes converts hex string to bytes with validation. A leading 0x is
// accepted and surrounding whitespace is ignored.
func HexToBytes(hexStr string) ([]byte, error) {
	hexStr = strings.TrimSpace(hexStr)
	hexStr = strings.TrimPrefix(strings.TrimPrefix(hexStr, "0x"), "0X")
	if len(hexStr)%2 != 0 {
		return nil, errors.New("invalid hex string: odd length")
	}
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// BytesToHex is the 0x-prefixed counterpart of HexToBytes
func BytesToHex(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// XORDecode decodes XOR-obfuscated data (used for blk*.dat)
func XORDecode(data []byte, key []byte) []byte {
	if len(key) == 0 {
		return data
	}
	allZero := true
	for _, b := range key {
		if b != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		return data
	}
	result := make([]byte, len(data))
	for i := range data {
		result[i] = data[i] ^ key[i%len(key)]
	}
	return result
}
