package parser

import (
	"encoding/hex"
	"fmt"

	"spv-lens/pkg/analyzer"
	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/types"
	"spv-lens/pkg/utils"
	"spv-lens/pkg/validatespv"
)

// ParseHeader decodes a single 80-byte header
func ParseHeader(headerHex string) (*types.HeaderOutput, error) {
	raw, err := utils.HexToBytes(headerHex)
	if err != nil {
		return nil, fmt.Errorf("invalid header hex: %w", err)
	}
	if len(raw) != btcspv.HeaderSize {
		return nil, fmt.Errorf("header must be %d bytes, got %d: %w", btcspv.HeaderSize, len(raw), btcspv.ErrBadLength)
	}
	out := describeHeader(raw)
	return &out, nil
}

// describeHeader fills a HeaderOutput from a header already known to be 80
// bytes, so the extractors cannot fail.
func describeHeader(raw btcspv.View) types.HeaderOutput {
	digest, _ := btcspv.HeaderHash(raw)
	version, _ := btcspv.ExtractVersion(raw)
	prevBE, _ := btcspv.ExtractPrevBlockHashBE(raw)
	rootLE, _ := btcspv.ExtractMerkleRootLE(raw)
	timestamp, _ := btcspv.ExtractTimestamp(raw)
	bits, _ := btcspv.ExtractBits(raw)
	nonce, _ := btcspv.ExtractNonce(raw)
	target, _ := btcspv.ExtractTarget(raw)

	return types.HeaderOutput{
		OK:            true,
		Raw:           hex.EncodeToString(raw),
		BlockHash:     digest.Reversed().Hex(),
		BlockHashLE:   digest.Hex(),
		Version:       version,
		PrevBlockHash: prevBE.Hex(),
		MerkleRoot:    rootLE.Reversed().Hex(),
		MerkleRootLE:  rootLE.Hex(),
		Timestamp:     timestamp,
		Bits:          fmt.Sprintf("%08x", bits),
		Nonce:         nonce,
		Target:        target.Hex(),
		Difficulty:    btcspv.CalculateDifficulty(target),
		WorkValid:     validatespv.ValidateHeaderWork(digest, target),
	}
}

// ParseHeaderChain validates a concatenation of headers. A chain that fails
// validation is reported in the output, not as an error; only undecodable
// hex is an error.
func ParseHeaderChain(headersHex string) (*types.ChainOutput, error) {
	raw, err := utils.HexToBytes(headersHex)
	if err != nil {
		return nil, fmt.Errorf("invalid headers hex: %w", err)
	}

	headers := make([]types.HeaderOutput, 0, len(raw)/btcspv.HeaderSize)
	for off := 0; off+btcspv.HeaderSize <= len(raw); off += btcspv.HeaderSize {
		headers = append(headers, describeHeader(raw[off:off+btcspv.HeaderSize]))
	}

	out := &types.ChainOutput{
		HeaderCount: len(headers),
		WorkCode:    fmt.Sprintf("0x%016x", validatespv.HeaderChainWorkCode(raw)),
		Headers:     headers,
	}

	work, err := validatespv.ValidateHeaderChain(raw)
	if err != nil {
		out.Error = ErrorInfo(err, "INVALID_HEADER_CHAIN")
		return out, nil
	}
	if len(headers) == 0 {
		out.Error = &types.ErrorInfo{Code: string(btcspv.CodeBadLength), Message: "no headers"}
		return out, nil
	}

	out.OK = true
	out.TotalWork = work
	out.TipHash = headers[len(headers)-1].BlockHash
	return out, nil
}

// Prove checks a merkle inclusion proof. txid and root are little-endian, as
// hashed; nodes is the concatenated sibling path.
func Prove(txidHex, rootHex, nodesHex string, index uint64) (*types.ProveOutput, error) {
	txid, err := decodeDigest("txid", txidHex)
	if err != nil {
		return nil, err
	}
	root, err := decodeDigest("merkle root", rootHex)
	if err != nil {
		return nil, err
	}
	nodes, err := utils.HexToBytes(nodesHex)
	if err != nil {
		return nil, fmt.Errorf("invalid intermediate nodes hex: %w", err)
	}
	if len(nodes)%32 != 0 {
		return nil, fmt.Errorf("intermediate nodes must be a multiple of 32 bytes, got %d: %w", len(nodes), btcspv.ErrBadLength)
	}

	depth := len(nodes) / 32
	return &types.ProveOutput{
		OK:         true,
		Valid:      validatespv.Prove(txid, root, nodes, index),
		Txid:       txid.Reversed().Hex(),
		MerkleRoot: root.Reversed().Hex(),
		Index:      index,
		Depth:      depth,
		Warnings:   analyzer.ProofWarnings(index, depth),
	}, nil
}

// Retarget computes the target of the next difficulty period
func Retarget(previousTargetHex string, firstTimestamp, secondTimestamp uint32) (*types.RetargetOutput, error) {
	buf, err := utils.HexToBytes(previousTargetHex)
	if err != nil {
		return nil, fmt.Errorf("invalid target hex: %w", err)
	}
	if len(buf) == 0 || len(buf) > 32 {
		return nil, fmt.Errorf("target must be 1 to 32 bytes, got %d: %w", len(buf), btcspv.ErrBadLength)
	}
	padded := make([]byte, 32)
	copy(padded[32-len(buf):], buf)
	previous, err := btcspv.Uint256FromBE(padded)
	if err != nil {
		return nil, err
	}

	next := btcspv.RetargetAlgorithm(previous, firstTimestamp, secondTimestamp)
	elapsed := secondTimestamp - firstTimestamp
	return &types.RetargetOutput{
		OK:              true,
		PreviousTarget:  previous.Hex(),
		NewTarget:       next.Hex(),
		FirstTimestamp:  firstTimestamp,
		SecondTimestamp: secondTimestamp,
		ElapsedSeconds:  elapsed,
		Difficulty:      btcspv.CalculateDifficulty(next),
	}, nil
}

func decodeDigest(name, s string) (btcspv.Hash256Digest, error) {
	buf, err := utils.HexToBytes(s)
	if err != nil {
		return btcspv.Hash256Digest{}, fmt.Errorf("invalid %s hex: %w", name, err)
	}
	d, err := btcspv.NewHash256Digest(buf)
	if err != nil {
		return btcspv.Hash256Digest{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

// ErrorInfo renders err for JSON output. Errors from the verification core
// keep their code; anything else gets fallback.
func ErrorInfo(err error, fallback string) *types.ErrorInfo {
	code := string(btcspv.CodeOf(err))
	if code == "" {
		code = fallback
	}
	return &types.ErrorInfo{Code: code, Message: err.Error()}
}
