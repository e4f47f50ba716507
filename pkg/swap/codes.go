package swap

import "github.com/pkg/errors"

// Code is the integer a swap evaluation exits with. Zero is success.
type Code int

const (
	CodeSuccess            Code = 0
	CodeEncoding           Code = -2
	CodeSyscall            Code = -3
	CodeWitnessSize        Code = -22
	CodeBadWitness         Code = -100
	CodeBadVin             Code = -101
	CodeBadVout            Code = -102
	CodeInvalidMerkleProof Code = -103
	CodeInvalidHeaderChain Code = -104
	CodeLowWorkHeaderChain Code = -105
	CodeNotEnoughWork      Code = -106
	CodeWrongPayee         Code = -107
	CodeNotEnoughCapacity  Code = -108
	CodeWrongListing       Code = -109
)

// Evaluation failures. Each maps to one Code.
var (
	ErrEncoding           = errors.New("malformed args")
	ErrSyscall            = errors.New("host load failed")
	ErrWitnessSize        = errors.New("witness too large")
	ErrBadWitness         = errors.New("malformed witness")
	ErrBadVin             = errors.New("invalid vin")
	ErrBadVout            = errors.New("invalid vout")
	ErrInvalidMerkleProof = errors.New("transaction is not in the first header's block")
	ErrInvalidHeaderChain = errors.New("headers do not form a chain")
	ErrLowWorkHeaderChain = errors.New("header does not meet its target")
	ErrNotEnoughWork      = errors.New("header chain work below requirement")
	ErrWrongPayee         = errors.New("OP_RETURN payee does not match the output lock")
	ErrNotEnoughCapacity  = errors.New("output capacity below listed value")
	ErrWrongListing       = errors.New("first input does not spend the listed outpoint")
)

var codes = map[error]Code{
	ErrEncoding:           CodeEncoding,
	ErrSyscall:            CodeSyscall,
	ErrWitnessSize:        CodeWitnessSize,
	ErrBadWitness:         CodeBadWitness,
	ErrBadVin:             CodeBadVin,
	ErrBadVout:            CodeBadVout,
	ErrInvalidMerkleProof: CodeInvalidMerkleProof,
	ErrInvalidHeaderChain: CodeInvalidHeaderChain,
	ErrLowWorkHeaderChain: CodeLowWorkHeaderChain,
	ErrNotEnoughWork:      CodeNotEnoughWork,
	ErrWrongPayee:         CodeWrongPayee,
	ErrNotEnoughCapacity:  CodeNotEnoughCapacity,
	ErrWrongListing:       CodeWrongListing,
}

// CodeOf maps the cause of err to its Code. Errors that did not come from
// this package report CodeSyscall.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	if code, ok := codes[errors.Cause(err)]; ok {
		return code
	}
	return CodeSyscall
}

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeEncoding:
		return "ERROR_ENCODING"
	case CodeSyscall:
		return "ERROR_SYSCALL"
	case CodeWitnessSize:
		return "ERROR_WITNESS_SIZE"
	case CodeBadWitness:
		return "ERROR_BAD_WITNESS"
	case CodeBadVin:
		return "ERROR_BAD_VIN"
	case CodeBadVout:
		return "ERROR_BAD_VOUT"
	case CodeInvalidMerkleProof:
		return "ERROR_INVALID_MERKLE_PROOF"
	case CodeInvalidHeaderChain:
		return "ERROR_INVALID_HEADER_CHAIN"
	case CodeLowWorkHeaderChain:
		return "ERROR_LOW_WORK_HEADER_CHAIN"
	case CodeNotEnoughWork:
		return "ERROR_NOT_ENOUGH_WORK"
	case CodeWrongPayee:
		return "ERROR_WRONG_PAYEE"
	case CodeNotEnoughCapacity:
		return "ERROR_NOT_ENOUGH_OUTPUT_CAPACITY"
	case CodeWrongListing:
		return "ERROR_WRONG_LISTING"
	}
	return "UNKNOWN"
}
