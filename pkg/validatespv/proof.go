package validatespv

import (
	"errors"
	"fmt"

	"spv-lens/pkg/btcspv"
)

// Proof and header consistency failures.
var (
	ErrHeaderHashLE       = errors.New("hash_le is not the hash256 of the raw header")
	ErrHeaderHashBE       = errors.New("hash is not the byte-reversed hash_le")
	ErrHeaderMerkleRootLE = errors.New("merkle_root_le does not match the raw header")
	ErrHeaderMerkleRootBE = errors.New("merkle_root is not the byte-reversed merkle_root_le")
	ErrHeaderPrevHashLE   = errors.New("prevhash_le does not match the raw header")
	ErrHeaderPrevHash     = errors.New("prevhash is not the byte-reversed prevhash_le")

	ErrProofVin         = errors.New("vin is not valid")
	ErrProofVout        = errors.New("vout is not valid")
	ErrProofTxID        = errors.New("version, vin, vout and locktime do not hash to tx_id_le")
	ErrProofTxIDBE      = errors.New("tx_id is not the byte-reversed tx_id_le")
	ErrProofMerkleProof = errors.New("merkle proof is not valid")
)

// BitcoinHeader is a raw header plus the values derived from it. The derived
// fields are redundant and Validate checks they agree with Raw.
type BitcoinHeader struct {
	Raw          btcspv.RawHeader     `json:"raw"`
	Hash         btcspv.Hash256Digest `json:"hash"`
	HashLE       btcspv.Hash256Digest `json:"hash_le"`
	Height       uint32               `json:"height"`
	PrevHash     btcspv.Hash256Digest `json:"prevhash"`
	PrevHashLE   btcspv.Hash256Digest `json:"prevhash_le"`
	MerkleRoot   btcspv.Hash256Digest `json:"merkle_root"`
	MerkleRootLE btcspv.Hash256Digest `json:"merkle_root_le"`
}

// HeaderFromRaw derives every field of a BitcoinHeader from raw.
func HeaderFromRaw(raw btcspv.RawHeader, height uint32) BitcoinHeader {
	digest := btcspv.Hash256(raw[:])
	prevLE, _ := btcspv.ExtractPrevBlockHashLE(raw[:])
	rootLE, _ := btcspv.ExtractMerkleRootLE(raw[:])
	return BitcoinHeader{
		Raw:          raw,
		Hash:         digest.Reversed(),
		HashLE:       digest,
		Height:       height,
		PrevHash:     prevLE.Reversed(),
		PrevHashLE:   prevLE,
		MerkleRoot:   rootLE.Reversed(),
		MerkleRootLE: rootLE,
	}
}

// HeaderFromHex parses an 80-byte hex header, with or without 0x.
func HeaderFromHex(s string, height uint32) (BitcoinHeader, error) {
	buf, err := btcspv.DecodeHex(s)
	if err != nil {
		return BitcoinHeader{}, fmt.Errorf("decode header hex: %w", err)
	}
	raw, err := btcspv.NewRawHeader(buf)
	if err != nil {
		return BitcoinHeader{}, err
	}
	return HeaderFromRaw(raw, height), nil
}

// Validate checks the derived fields against Raw.
func (b BitcoinHeader) Validate() error {
	if btcspv.Hash256(b.Raw[:]) != b.HashLE {
		return ErrHeaderHashLE
	}
	if b.Hash.Reversed() != b.HashLE {
		return ErrHeaderHashBE
	}

	rootLE, err := btcspv.ExtractMerkleRootLE(b.Raw[:])
	if err != nil {
		return err
	}
	if rootLE != b.MerkleRootLE {
		return ErrHeaderMerkleRootLE
	}
	if b.MerkleRoot.Reversed() != b.MerkleRootLE {
		return ErrHeaderMerkleRootBE
	}

	prevLE, err := btcspv.ExtractPrevBlockHashLE(b.Raw[:])
	if err != nil {
		return err
	}
	if prevLE != b.PrevHashLE {
		return ErrHeaderPrevHashLE
	}
	if b.PrevHash.Reversed() != b.PrevHashLE {
		return ErrHeaderPrevHash
	}
	return nil
}

// SPVProof ties a transaction to a block header through a merkle path.
type SPVProof struct {
	Version           btcspv.HexBytes      `json:"version"`
	Vin               btcspv.HexBytes      `json:"vin"`
	Vout              btcspv.HexBytes      `json:"vout"`
	Locktime          btcspv.HexBytes      `json:"locktime"`
	TxID              btcspv.Hash256Digest `json:"tx_id"`
	TxIDLE            btcspv.Hash256Digest `json:"tx_id_le"`
	Index             uint32               `json:"index"`
	ConfirmingHeader  BitcoinHeader        `json:"confirming_header"`
	IntermediateNodes btcspv.HexBytes      `json:"intermediate_nodes"`
}

// NewSPVProof assembles a proof and fills in the txid fields.
func NewSPVProof(version, vin, vout, locktime []byte, index uint32, header BitcoinHeader, nodes []byte) SPVProof {
	txid := CalculateTxID(version, vin, vout, locktime)
	return SPVProof{
		Version:           version,
		Vin:               vin,
		Vout:              vout,
		Locktime:          locktime,
		TxID:              txid.Reversed(),
		TxIDLE:            txid,
		Index:             index,
		ConfirmingHeader:  header,
		IntermediateNodes: nodes,
	}
}

// Validate checks the transaction structure, its txid, the confirming header
// and the merkle path, in that order.
func (s SPVProof) Validate() error {
	if err := btcspv.CheckVin(btcspv.View(s.Vin)); err != nil {
		return fmt.Errorf("%w: %w", ErrProofVin, err)
	}
	if err := btcspv.CheckVout(btcspv.View(s.Vout)); err != nil {
		return fmt.Errorf("%w: %w", ErrProofVout, err)
	}

	if s.calculateTxID() != s.TxIDLE {
		return ErrProofTxID
	}
	if s.TxID.Reversed() != s.TxIDLE {
		return ErrProofTxIDBE
	}

	if err := s.ConfirmingHeader.Validate(); err != nil {
		return err
	}

	if !Prove(s.TxIDLE, s.ConfirmingHeader.MerkleRootLE, btcspv.View(s.IntermediateNodes), uint64(s.Index)) {
		return ErrProofMerkleProof
	}
	return nil
}

func (s SPVProof) calculateTxID() btcspv.Hash256Digest {
	return CalculateTxID(btcspv.View(s.Version), btcspv.View(s.Vin), btcspv.View(s.Vout), btcspv.View(s.Locktime))
}
