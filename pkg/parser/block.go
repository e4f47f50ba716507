package parser

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/utils"
	"spv-lens/pkg/validatespv"

	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// maxBlockRecord bounds the size field of a blk*.dat record.
const maxBlockRecord = wire.MaxBlockPayload

// ErrMerkleRootMismatch is returned when a block's transactions do not hash
// to the merkle root in its header.
var ErrMerkleRootMismatch = errors.New("computed merkle root does not match header")

// ReadBlockFile reads the first block of a blk*.dat file. xorPath names the
// node's obfuscation key file and may be empty.
func ReadBlockFile(blkPath, xorPath string) ([]byte, error) {
	var xorKey []byte
	if xorPath != "" {
		key, err := os.ReadFile(xorPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read XOR key: %w", err)
		}
		xorKey = key
	}

	blkData, err := os.ReadFile(blkPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read block file: %w", err)
	}
	blkData = utils.XORDecode(blkData, xorKey)

	block, err := ReadBlockRecord(bytes.NewReader(blkData))
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("block file is empty or truncated")
		}
		return nil, err
	}
	return block, nil
}

// ReadBlockRecord reads one record of a blk*.dat stream: 4 bytes of network
// magic, a little-endian uint32 size, then the serialized block.
func ReadBlockRecord(r io.Reader) ([]byte, error) {
	var prefix [8]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(prefix[4:])
	if size < btcspv.HeaderSize || size > maxBlockRecord {
		return nil, fmt.Errorf("block record size %d out of range", size)
	}

	block := make([]byte, size)
	if _, err := io.ReadFull(r, block); err != nil {
		return nil, fmt.Errorf("failed to read block body: %w", err)
	}
	return block, nil
}

// DecodeBlock deserializes a raw block. The merkle root is checked when a
// proof is built from it.
func DecodeBlock(raw []byte) (*wire.MsgBlock, error) {
	var block wire.MsgBlock
	if err := block.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to parse block: %w", err)
	}
	if len(block.Transactions) == 0 {
		return nil, errors.New("block has no transactions")
	}
	return &block, nil
}

// BuildProof builds the SPV proof of the transaction at txIndex. A zero
// height is replaced by the BIP34 height in the coinbase, when present.
func BuildProof(block *wire.MsgBlock, txIndex int, height uint32) (*validatespv.SPVProof, error) {
	if txIndex < 0 || txIndex >= len(block.Transactions) {
		return nil, fmt.Errorf("transaction index %d out of range, block has %d", txIndex, len(block.Transactions))
	}

	txs := make([]*btcutil.Tx, len(block.Transactions))
	for i, tx := range block.Transactions {
		txs[i] = btcutil.NewTx(tx)
	}
	store := blockchain.BuildMerkleTreeStore(txs, false)
	root := store[len(store)-1]
	if root == nil || *root != block.Header.MerkleRoot {
		return nil, fmt.Errorf("block %s: %w", block.BlockHash(), ErrMerkleRootMismatch)
	}

	var stripped bytes.Buffer
	if err := block.Transactions[txIndex].SerializeNoWitness(&stripped); err != nil {
		return nil, fmt.Errorf("failed to serialize transaction: %w", err)
	}
	parts, err := SplitTransaction(stripped.Bytes())
	if err != nil {
		return nil, fmt.Errorf("transaction %d: %w", txIndex, err)
	}

	var headerBuf bytes.Buffer
	if err := block.Header.Serialize(&headerBuf); err != nil {
		return nil, fmt.Errorf("failed to serialize header: %w", err)
	}
	raw, err := btcspv.NewRawHeader(headerBuf.Bytes())
	if err != nil {
		return nil, err
	}

	if height == 0 {
		height = coinbaseHeight(block)
	}
	header := validatespv.HeaderFromRaw(raw, height)
	proof := validatespv.NewSPVProof(parts.Version, parts.Vin, parts.Vout, parts.Locktime,
		uint32(txIndex), header, merklePath(store, len(txs), txIndex))
	return &proof, nil
}

// BuildProofForTxID is BuildProof with the transaction located by its
// display-order txid.
func BuildProofForTxID(block *wire.MsgBlock, txid string, height uint32) (*validatespv.SPVProof, error) {
	want, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return nil, fmt.Errorf("invalid txid: %w", err)
	}
	for i, tx := range block.Transactions {
		if tx.TxHash() == *want {
			return BuildProof(block, i, height)
		}
	}
	return nil, fmt.Errorf("transaction %s not in block %s", txid, block.BlockHash())
}

// merklePath collects the siblings of leaf index from a tree built by
// BuildMerkleTreeStore. A missing right sibling means the node is paired
// with itself.
func merklePath(store []*chainhash.Hash, leaves, index int) []byte {
	width := nextPowerOfTwo(leaves)
	path := make([]byte, 0, 32*log2(width))
	offset := 0
	for ; width > 1; width /= 2 {
		sibling := store[offset+(index^1)]
		if sibling == nil {
			sibling = store[offset+index]
		}
		path = append(path, sibling[:]...)
		offset += width
		index >>= 1
	}
	return path
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

func log2(n int) int {
	k := 0
	for n > 1 {
		n >>= 1
		k++
	}
	return k
}

// coinbaseHeight reads the BIP34 height pushed at the start of the coinbase
// scriptSig. Blocks before version 2 carry none and yield 0.
func coinbaseHeight(block *wire.MsgBlock) uint32 {
	if block.Header.Version < 2 || len(block.Transactions[0].TxIn) == 0 {
		return 0
	}
	scriptSig := block.Transactions[0].TxIn[0].SignatureScript
	if len(scriptSig) < 2 {
		return 0
	}

	pushLen := int(scriptSig[0])
	if pushLen < 1 || pushLen > 4 || 1+pushLen > len(scriptSig) {
		return 0
	}

	var height uint32
	for i, b := range scriptSig[1 : 1+pushLen] {
		height |= uint32(b) << (8 * i)
	}
	return height
}
