package parser

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/stretchr/testify/require"

	"spv-lens/pkg/btcspv"
)

// merkleRoot computes the merkle root level by level, pairing the last hash
// with itself on odd levels.
func merkleRoot(hashes []chainhash.Hash) chainhash.Hash {
	if len(hashes) == 1 {
		return hashes[0]
	}
	var next []chainhash.Hash
	for i := 0; i < len(hashes); i += 2 {
		left := hashes[i]
		right := hashes[i]
		if i+1 < len(hashes) {
			right = hashes[i+1]
		}
		next = append(next, chainhash.DoubleHashH(append(left[:], right[:]...)))
	}
	return merkleRoot(next)
}

func testBlock(t *testing.T, n int) *wire.MsgBlock {
	t.Helper()
	p2wpkh := append([]byte{0x00, 0x14}, bytes.Repeat([]byte{0xcc}, 20)...)

	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: math.MaxUint32},
		// BIP34 height 200000
		SignatureScript: []byte{0x03, 0x40, 0x0d, 0x03, 0x2f, 0x73, 0x70, 0x76, 0x2f},
		Sequence:        wire.MaxTxInSequenceNum,
	})
	coinbase.AddTxOut(wire.NewTxOut(625000000, p2wpkh))
	txs := []*wire.MsgTx{coinbase}

	for i := 1; i < n; i++ {
		tx := wire.NewMsgTx(2)
		prev := chainhash.Hash{byte(i), 0x42}
		in := wire.NewTxIn(wire.NewOutPoint(&prev, uint32(i)), nil, nil)
		if i%2 == 1 {
			in.Witness = wire.TxWitness{bytes.Repeat([]byte{0x30}, 71), bytes.Repeat([]byte{0x02}, 33)}
		} else {
			in.SignatureScript = []byte{0x51}
		}
		tx.AddTxIn(in)
		tx.AddTxOut(wire.NewTxOut(int64(1000*i), p2wpkh))
		tx.LockTime = uint32(i)
		txs = append(txs, tx)
	}

	hashes := make([]chainhash.Hash, len(txs))
	for i, tx := range txs {
		hashes[i] = tx.TxHash()
	}
	root := merkleRoot(hashes)

	header := wire.NewBlockHeader(0x20000000, &chainhash.Hash{0x01}, &root, 0x207fffff, 7)
	header.Timestamp = time.Unix(1600000000, 0)
	block := wire.NewMsgBlock(header)
	for _, tx := range txs {
		require.NoError(t, block.AddTransaction(tx))
	}
	return block
}

func writeBlockFile(t *testing.T, block *wire.MsgBlock, key []byte) (string, string) {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, block.Serialize(&body))

	record := []byte{0xf9, 0xbe, 0xb4, 0xd9}
	record = binary.LittleEndian.AppendUint32(record, uint32(body.Len()))
	record = append(record, body.Bytes()...)
	for i := range record {
		record[i] ^= key[i%len(key)]
	}

	dir := t.TempDir()
	blkPath := filepath.Join(dir, "blk00000.dat")
	xorPath := filepath.Join(dir, "xor.dat")
	require.NoError(t, os.WriteFile(blkPath, record, 0o644))
	require.NoError(t, os.WriteFile(xorPath, key, 0o644))
	return blkPath, xorPath
}

func TestReadBlockFile(t *testing.T) {
	r := require.New(t)
	block := testBlock(t, 3)
	blkPath, xorPath := writeBlockFile(t, block, []byte{0x5a, 0x17, 0x00, 0xe3, 0x81, 0x2c, 0x99, 0x04})

	raw, err := ReadBlockFile(blkPath, xorPath)
	r.NoError(err)
	decoded, err := DecodeBlock(raw)
	r.NoError(err)
	r.Equal(block.BlockHash(), decoded.BlockHash())
	r.Len(decoded.Transactions, 3)

	_, err = ReadBlockFile(blkPath, "")
	r.Error(err, "still obfuscated")

	_, err = ReadBlockFile(filepath.Join(t.TempDir(), "missing.dat"), "")
	r.Error(err)

	empty := filepath.Join(t.TempDir(), "empty.dat")
	r.NoError(os.WriteFile(empty, nil, 0o644))
	_, err = ReadBlockFile(empty, "")
	r.EqualError(err, "block file is empty or truncated")
}

func TestBuildProof(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 7} {
		block := testBlock(t, n)
		for i := 0; i < n; i++ {
			proof, err := BuildProof(block, i, 0)
			require.NoError(t, err, "block of %d, tx %d", n, i)
			require.NoError(t, proof.Validate(), "block of %d, tx %d", n, i)

			want := block.Transactions[i].TxHash()
			require.Equal(t, want[:], proof.TxIDLE[:])
			require.Equal(t, uint32(200000), proof.ConfirmingHeader.Height)
			require.Equal(t, uint32(i), proof.Index)
		}
	}
}

func TestBuildProofPaths(t *testing.T) {
	r := require.New(t)
	block := testBlock(t, 3)

	single, err := BuildProof(testBlock(t, 1), 0, 9)
	r.NoError(err)
	r.Empty(single.IntermediateNodes)
	r.Equal(uint32(9), single.ConfirmingHeader.Height)

	// the third of three transactions is paired with itself
	last, err := BuildProof(block, 2, 0)
	r.NoError(err)
	r.Len(last.IntermediateNodes, 64)
	own := block.Transactions[2].TxHash()
	r.Equal(own[:], []byte(last.IntermediateNodes[:32]))

	byID, err := BuildProofForTxID(block, block.Transactions[1].TxHash().String(), 0)
	r.NoError(err)
	r.Equal(uint32(1), byID.Index)

	_, err = BuildProofForTxID(block, chainhash.Hash{0xff}.String(), 0)
	r.Error(err)
	_, err = BuildProof(block, 3, 0)
	r.Error(err)
}

func TestBuildProofRejectsBadMerkleRoot(t *testing.T) {
	block := testBlock(t, 3)
	block.Header.MerkleRoot[0] ^= 0xff
	_, err := BuildProof(block, 1, 0)
	require.ErrorIs(t, err, ErrMerkleRootMismatch)
}

func TestProofHeaderMatchesBlock(t *testing.T) {
	r := require.New(t)
	block := testBlock(t, 2)
	proof, err := BuildProof(block, 1, 0)
	r.NoError(err)

	hash := block.BlockHash()
	r.Equal(hash[:], proof.ConfirmingHeader.HashLE[:])
	bits, err := btcspv.ExtractBits(proof.ConfirmingHeader.Raw[:])
	r.NoError(err)
	r.Equal(uint32(0x207fffff), bits)
}
