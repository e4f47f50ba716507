package server

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/store"
	"spv-lens/pkg/types"
	"spv-lens/pkg/validatespv"
)

// Payment at index 1 of a three-transaction block under header0, with
// header1 on top. Both headers are at difficulty 1.
const (
	payVersion  = "02000000"
	payVin      = "0142424242424242424242424242424242424242424242424242424242424242420700000000ffffffff"
	payVout     = "0250c3000000000000160014cccccccccccccccccccccccccccccccccccccccc0000000000000000166a14a0a1a2a3a4a5a6a7a8a9aaabacadaeafb0b1b2b3"
	payLocktime = "00000000"
	payNodes    = "bf5d3affb73efd2ec6c36ad3112dd933efed63c4e1cbffcfa88e2759c144f2d8217e3bcbdf2b41c1e380eb09a7f854278b5608b0d5c1edf07df2185219600a3e"
	header0     = "00000020000000000000000000000000000000000000000000000000000000000000000078462b214e1b13c31a6e797644deb35d5d06b3cad242743bcea563aff86046b700105e5fffff7f1ef7230100"
	header1     = "000000209f46eca4d9235cf893834b0df70a0b13ebd26e5cb9892adc7e59e429fd100000111111111111111111111111111111111111111111111111111111111111111158125e5fffff7f1eeb0e0300"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func testProof(t *testing.T) validatespv.SPVProof {
	t.Helper()
	header, err := validatespv.HeaderFromHex(header0, 42)
	require.NoError(t, err)
	return validatespv.NewSPVProof(mustHex(t, payVersion), mustHex(t, payVin), mustHex(t, payVout),
		mustHex(t, payLocktime), 1, header, mustHex(t, payNodes))
}

func newServer(t *testing.T, withStore bool) (*Server, *store.DB) {
	t.Helper()
	opts := Options{Logger: zap.NewNop(), Network: "mainnet"}
	if withStore {
		db, err := store.Open(t.TempDir(), zap.NewNop())
		require.NoError(t, err)
		t.Cleanup(func() { _ = db.Close() })
		opts.Store = db
	}
	return New(opts), opts.Store
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthAndFallback(t *testing.T) {
	s, _ := newServer(t, false)

	w := do(t, s, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"ok":true,"store":false}`, w.Body.String())

	w = do(t, s, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "SPV Lens")
}

func TestHeaderRoutes(t *testing.T) {
	r := require.New(t)
	s, _ := newServer(t, false)

	w := do(t, s, http.MethodPost, "/api/header", map[string]string{"header": header0})
	r.Equal(http.StatusOK, w.Code)
	header := decode[types.HeaderOutput](t, w)
	r.True(header.OK)
	r.True(header.WorkValid)
	r.Equal(uint64(1), header.Difficulty)

	w = do(t, s, http.MethodPost, "/api/header", map[string]string{"header": header0[:100]})
	r.Equal(http.StatusBadRequest, w.Code)
	failed := decode[errorOutput](t, w)
	r.False(failed.OK)
	r.Equal(string(btcspv.CodeBadLength), failed.Error.Code)

	w = do(t, s, http.MethodPost, "/api/headers/validate", map[string]string{"headers": header0 + header1})
	r.Equal(http.StatusOK, w.Code)
	chain := decode[types.ChainOutput](t, w)
	r.True(chain.OK)
	r.Equal(uint64(2), chain.TotalWork)

	w = do(t, s, http.MethodPost, "/api/headers/validate", map[string]string{"headers": header1 + header0})
	r.Equal(http.StatusOK, w.Code)
	chain = decode[types.ChainOutput](t, w)
	r.False(chain.OK)
	r.Equal(string(btcspv.CodeInvalidChain), chain.Error.Code)
}

func TestHeaderChainStored(t *testing.T) {
	s, db := newServer(t, true)
	w := do(t, s, http.MethodPost, "/api/headers/validate",
		map[string]any{"headers": header0 + header1, "height": 7, "store": true})
	require.Equal(t, http.StatusOK, w.Code)

	stored, ok, err := db.Header(btcspv.Hash256(mustHex(t, header1)))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(8), stored.Height)
	require.Equal(t, uint64(2), stored.Work)
}

func TestProveRoute(t *testing.T) {
	r := require.New(t)
	s, _ := newServer(t, false)
	proof := testProof(t)

	req := map[string]any{
		"txid":               proof.TxIDLE.Hex(),
		"merkle_root":        proof.ConfirmingHeader.MerkleRootLE.Hex(),
		"intermediate_nodes": payNodes,
		"index":              1,
	}
	w := do(t, s, http.MethodPost, "/api/prove", req)
	r.Equal(http.StatusOK, w.Code)
	out := decode[types.ProveOutput](t, w)
	r.True(out.Valid)
	r.Equal(proof.TxID.Hex(), out.Txid)
	r.Equal(2, out.Depth)

	req["index"] = 0
	out = decode[types.ProveOutput](t, do(t, s, http.MethodPost, "/api/prove", req))
	r.True(out.OK)
	r.False(out.Valid)

	req["intermediate_nodes"] = payNodes[:10]
	w = do(t, s, http.MethodPost, "/api/prove", req)
	r.Equal(http.StatusBadRequest, w.Code)
}

func TestProofStoreRoundTrip(t *testing.T) {
	r := require.New(t)
	s, _ := newServer(t, true)
	proof := testProof(t)

	w := do(t, s, http.MethodPost, "/api/proof/verify", map[string]any{"proof": proof, "store": true})
	r.Equal(http.StatusOK, w.Code)
	out := decode[types.ProofOutput](t, w)
	r.True(out.Valid)
	r.True(out.Stored)
	r.Equal(uint32(42), out.Height)

	w = do(t, s, http.MethodGet, "/api/proof/"+proof.TxID.Hex(), nil)
	r.Equal(http.StatusOK, w.Code)
	got := decode[types.ProofOutput](t, w)
	r.True(got.Valid)
	r.NotNil(got.Proof)
	r.Equal(proof, *got.Proof)

	w = do(t, s, http.MethodGet, "/api/proof/"+strings.Repeat("00", 32), nil)
	r.Equal(http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodGet, "/api/proof/zz", nil)
	r.Equal(http.StatusBadRequest, w.Code)
}

func TestProofConfirmations(t *testing.T) {
	r := require.New(t)
	s, _ := newServer(t, true)
	proof := testProof(t)

	w := do(t, s, http.MethodPost, "/api/proof/verify", map[string]any{"proof": proof, "store": true})
	r.Equal(http.StatusOK, w.Code)
	w = do(t, s, http.MethodPost, "/api/headers/validate",
		map[string]any{"headers": header0 + header1, "height": 42, "store": true})
	r.Equal(http.StatusOK, w.Code)

	path := "/api/proof/" + proof.TxID.Hex() + "?tip="
	tip1 := btcspv.Hash256(mustHex(t, header1)).Reversed().Hex()
	w = do(t, s, http.MethodGet, path+tip1, nil)
	r.Equal(http.StatusOK, w.Code)
	out := decode[types.ProofOutput](t, w)
	r.NotNil(out.Confirmations)
	r.Equal(uint32(2), *out.Confirmations)

	w = do(t, s, http.MethodGet, path+proof.ConfirmingHeader.Hash.Hex(), nil)
	r.Equal(http.StatusOK, w.Code)
	out = decode[types.ProofOutput](t, w)
	r.Equal(uint32(1), *out.Confirmations)

	w = do(t, s, http.MethodGet, "/api/proof/"+proof.TxID.Hex(), nil)
	r.Nil(decode[types.ProofOutput](t, w).Confirmations)

	w = do(t, s, http.MethodGet, path+strings.Repeat("11", 32), nil)
	r.Equal(http.StatusNotFound, w.Code)
	r.Equal("UNKNOWN_TIP", decode[errorOutput](t, w).Error.Code)

	w = do(t, s, http.MethodGet, path+"abcd", nil)
	r.Equal(http.StatusBadRequest, w.Code)
}

func TestInvalidProofNotStored(t *testing.T) {
	r := require.New(t)
	s, _ := newServer(t, true)
	proof := testProof(t)
	proof.Index = 0

	w := do(t, s, http.MethodPost, "/api/proof/verify", map[string]any{"proof": proof, "store": true})
	r.Equal(http.StatusOK, w.Code)
	out := decode[types.ProofOutput](t, w)
	r.False(out.Valid)
	r.False(out.Stored)
	r.NotNil(out.Error)

	w = do(t, s, http.MethodGet, "/api/proof/"+proof.TxID.Hex(), nil)
	r.Equal(http.StatusNotFound, w.Code)
}

func TestProofLookupWithoutStore(t *testing.T) {
	s, _ := newServer(t, false)
	w := do(t, s, http.MethodGet, "/api/proof/"+strings.Repeat("00", 32), nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSwapRoute(t *testing.T) {
	r := require.New(t)
	s, _ := newServer(t, false)

	witness := "02" + header0 + header1 + "02" + payNodes + "01000000" + payVersion + payVin + payVout + payLocktime
	req := map[string]any{
		"args":      "e803000000000000" + "0000000000000002" + strings.Repeat("42", 32) + "07000000",
		"witness":   witness,
		"lock_hash": "a0a1a2a3a4a5a6a7a8a9aaabacadaeafb0b1b2b3" + strings.Repeat("00", 12),
		"capacity":  1000,
	}
	out := decode[types.SwapOutput](t, do(t, s, http.MethodPost, "/api/swap", req))
	r.True(out.OK)
	r.Equal(0, out.Code)
	r.Equal("SUCCESS", out.Result)

	req["capacity"] = 999
	out = decode[types.SwapOutput](t, do(t, s, http.MethodPost, "/api/swap", req))
	r.False(out.OK)
	r.Equal(-108, out.Code)
	r.Equal("ERROR_NOT_ENOUGH_OUTPUT_CAPACITY", out.Error.Code)

	req["witness"] = "xyz"
	w := do(t, s, http.MethodPost, "/api/swap", req)
	r.Equal(http.StatusBadRequest, w.Code)
}

func TestBadRequests(t *testing.T) {
	s, _ := newServer(t, false)

	w := do(t, s, http.MethodPost, "/api/vin", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "INVALID_JSON", decode[errorOutput](t, w).Error.Code)

	w = do(t, s, http.MethodPost, "/api/vin", map[string]string{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, s, http.MethodPost, "/api/vin", map[string]string{"vin": payVin + "00"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, string(btcspv.CodeStructuralMismatch), decode[errorOutput](t, w).Error.Code)
}

func TestVinVoutRoutes(t *testing.T) {
	r := require.New(t)
	s, _ := newServer(t, false)

	vin := decode[types.VinOutput](t, do(t, s, http.MethodPost, "/api/vin", map[string]string{"vin": payVin}))
	r.True(vin.OK)
	r.Equal(uint64(1), vin.InputCount)
	r.Equal(uint32(7), vin.Inputs[0].Vout)

	vout := decode[types.VoutOutput](t, do(t, s, http.MethodPost, "/api/vout", map[string]string{"vout": payVout}))
	r.True(vout.OK)
	r.Equal([]string{"p2wpkh", "op_return"}, vout.VoutScriptTypes)
	r.Equal("bc1qenxvenxvenxvenxvenxvenxvenxvenxvx46avd", *vout.Outputs[0].Address)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newServer(t, false)
	do(t, s, http.MethodPost, "/api/header", map[string]string{"header": header0})

	w := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `spv_api_requests_total{method="POST",path="/api/header",status="200"} 1`)
}
