package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"spv-lens/pkg/analyzer"
	"spv-lens/pkg/swap"
	"spv-lens/pkg/types"
	"spv-lens/pkg/validatespv"
)

// LoadProofFile reads an SPV proof serialized as JSON.
func LoadProofFile(path string) (*validatespv.SPVProof, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read proof: %w", err)
	}
	var proof validatespv.SPVProof
	if err := json.Unmarshal(data, &proof); err != nil {
		return nil, fmt.Errorf("failed to parse proof JSON: %w", err)
	}
	return &proof, nil
}

// VerifyProof validates proof and describes the outcome. An invalid proof
// is reported in the output with its error code.
func VerifyProof(proof *validatespv.SPVProof) *types.ProofOutput {
	header := proof.ConfirmingHeader
	depth := len(proof.IntermediateNodes) / 32
	out := &types.ProofOutput{
		OK:        true,
		Txid:      proof.TxID.Hex(),
		BlockHash: header.Hash.Hex(),
		Height:    header.Height,
		Warnings:  analyzer.ProofWarnings(uint64(proof.Index), depth),
	}
	if err := proof.Validate(); err != nil {
		out.Error = ErrorInfo(err, "INVALID_PROOF")
		return out
	}
	out.Valid = true
	return out
}

// SwapResult renders the outcome of a swap evaluation.
func SwapResult(err error) *types.SwapOutput {
	code := swap.CodeOf(err)
	out := &types.SwapOutput{OK: err == nil, Code: int(code), Result: code.String()}
	if err != nil {
		out.Error = &types.ErrorInfo{Code: code.String(), Message: err.Error()}
	}
	return out
}
