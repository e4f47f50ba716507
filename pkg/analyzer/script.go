package analyzer

import (
	"bytes"
	"unicode/utf8"

	"github.com/btcsuite/btcd/txscript"
)

// DisassembleScript converts script bytes to one-line ASM. A script that
// fails to parse is disassembled up to the bad opcode and marked [error].
func DisassembleScript(script []byte) string {
	if len(script) == 0 {
		return ""
	}
	asm, _ := txscript.DisasmString(script)
	return asm
}

// ParseOpReturn interprets the data pushed by an OP_RETURN output: UTF-8 text
// when the bytes are valid UTF-8, and a well-known protocol tag.
func ParseOpReturn(data []byte) (dataUtf8 *string, protocol string) {
	if len(data) > 0 && utf8.Valid(data) {
		str := string(data)
		dataUtf8 = &str
	}

	switch {
	case len(data) >= 4 && bytes.Equal(data[:4], []byte("omni")):
		protocol = "omni"
	case len(data) >= 5 && bytes.Equal(data[:5], []byte{0x01, 0x09, 0xf9, 0x11, 0x02}):
		protocol = "opentimestamps"
	default:
		protocol = "unknown"
	}

	return dataUtf8, protocol
}
