package btcspv

import (
	"errors"
	"fmt"
)

// ErrorCode classifies why a decode or validation step failed.
type ErrorCode string

const (
	CodeInsufficientBytes  ErrorCode = "INSUFFICIENT_BYTES"
	CodeNonCanonical       ErrorCode = "NON_CANONICAL"
	CodeOutOfRange         ErrorCode = "OUT_OF_RANGE"
	CodeStructuralMismatch ErrorCode = "STRUCTURAL_MISMATCH"
	CodeUnrecognizedScript ErrorCode = "UNRECOGNIZED_SCRIPT"
	CodeBadLength          ErrorCode = "BAD_LENGTH"
	CodeInvalidChain       ErrorCode = "INVALID_CHAIN"
	CodeLowWork            ErrorCode = "LOW_WORK"
)

// Sentinels for errors.Is. Any *Error with the same code matches.
var (
	ErrInsufficientBytes  = &Error{Code: CodeInsufficientBytes}
	ErrNonCanonical       = &Error{Code: CodeNonCanonical}
	ErrOutOfRange         = &Error{Code: CodeOutOfRange}
	ErrStructuralMismatch = &Error{Code: CodeStructuralMismatch}
	ErrUnrecognizedScript = &Error{Code: CodeUnrecognizedScript}
	ErrBadLength          = &Error{Code: CodeBadLength}
	ErrInvalidChain       = &Error{Code: CodeInvalidChain}
	ErrLowWork            = &Error{Code: CodeLowWork}
)

// Error is returned by every extractor and validator in this package.
type Error struct {
	Code ErrorCode
	Op   string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op == "" && e.Msg == "":
		return string(e.Code)
	case e.Op == "":
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, e.Msg)
}

// Is matches on Code only so callers can compare against the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func spvErr(code ErrorCode, op, format string, args ...any) error {
	return &Error{Code: code, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func shortErr(op string, need, have int) error {
	return spvErr(CodeInsufficientBytes, op, "need %d bytes, have %d", need, have)
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e.Code
	}
	return ""
}
