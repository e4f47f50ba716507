package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"spv-lens/pkg/swap"
)

func TestLoadAndVerifyProof(t *testing.T) {
	r := require.New(t)
	block := testBlock(t, 5)
	proof, err := BuildProof(block, 3, 0)
	r.NoError(err)

	path := filepath.Join(t.TempDir(), "proof.json")
	data, err := json.Marshal(proof)
	r.NoError(err)
	r.NoError(os.WriteFile(path, data, 0o644))

	loaded, err := LoadProofFile(path)
	r.NoError(err)
	r.Equal(*proof, *loaded)

	out := VerifyProof(loaded)
	r.True(out.OK)
	r.True(out.Valid)
	r.Nil(out.Error)
	r.Equal(proof.TxID.Hex(), out.Txid)
	r.Equal(block.BlockHash().String(), out.BlockHash)
	r.Equal(uint32(200000), out.Height)

	loaded.Index = 2
	out = VerifyProof(loaded)
	r.False(out.Valid)
	r.Equal("INVALID_PROOF", out.Error.Code)

	_, err = LoadProofFile(filepath.Join(t.TempDir(), "missing.json"))
	r.Error(err)
	r.NoError(os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadProofFile(path)
	r.Error(err)
}

func TestSwapResult(t *testing.T) {
	out := SwapResult(nil)
	require.True(t, out.OK)
	require.Equal(t, "SUCCESS", out.Result)
	require.Nil(t, out.Error)

	out = SwapResult(errors.Wrap(swap.ErrWrongPayee, "payee mismatch"))
	require.False(t, out.OK)
	require.Equal(t, -107, out.Code)
	require.Equal(t, "ERROR_WRONG_PAYEE", out.Error.Code)
}
