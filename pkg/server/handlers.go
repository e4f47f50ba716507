package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/parser"
	"spv-lens/pkg/swap"
	"spv-lens/pkg/types"
	"spv-lens/pkg/utils"
	"spv-lens/pkg/validatespv"
)

type vinRequest struct {
	Vin string `json:"vin" binding:"required"`
}

type voutRequest struct {
	Vout    string `json:"vout" binding:"required"`
	Network string `json:"network"`
}

type splitRequest struct {
	RawTx string `json:"raw_tx" binding:"required"`
}

type headerRequest struct {
	Header string `json:"header" binding:"required"`
}

type headerChainRequest struct {
	Headers string `json:"headers" binding:"required"`
	Height  uint32 `json:"height"`
	Store   bool   `json:"store"`
}

type proveRequest struct {
	Txid              string `json:"txid" binding:"required"`
	MerkleRoot        string `json:"merkle_root" binding:"required"`
	IntermediateNodes string `json:"intermediate_nodes"`
	Index             uint64 `json:"index"`
}

type verifyProofRequest struct {
	Proof *validatespv.SPVProof `json:"proof" binding:"required"`
	Store bool                  `json:"store"`
}

type retargetRequest struct {
	PreviousTarget  string `json:"previous_target" binding:"required"`
	FirstTimestamp  uint32 `json:"first_timestamp"`
	SecondTimestamp uint32 `json:"second_timestamp"`
}

type swapRequest struct {
	Args     string `json:"args" binding:"required"`
	Witness  string `json:"witness" binding:"required"`
	LockHash string `json:"lock_hash" binding:"required"`
	Capacity uint64 `json:"capacity"`
}

type errorOutput struct {
	OK    bool             `json:"ok"`
	Error *types.ErrorInfo `json:"error"`
}

func abort(c *gin.Context, status int, info *types.ErrorInfo) {
	_ = c.Error(fmt.Errorf("%s: %s", info.Code, info.Message))
	c.JSON(status, errorOutput{OK: false, Error: info})
}

// bind decodes the JSON body into req, answering 400 on failure.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abort(c, http.StatusBadRequest, &types.ErrorInfo{Code: "INVALID_JSON", Message: err.Error()})
		return false
	}
	return true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "store": s.store != nil})
}

func (s *Server) handleVin(c *gin.Context) {
	var req vinRequest
	if !bind(c, &req) {
		return
	}
	out, err := parser.ParseVin(req.Vin)
	if err != nil {
		abort(c, http.StatusBadRequest, parser.ErrorInfo(err, "INVALID_VIN"))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleVout(c *gin.Context) {
	var req voutRequest
	if !bind(c, &req) {
		return
	}
	network := req.Network
	if network == "" {
		network = s.network
	}
	out, err := parser.ParseVout(req.Vout, network)
	if err != nil {
		abort(c, http.StatusBadRequest, parser.ErrorInfo(err, "INVALID_VOUT"))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSplit(c *gin.Context) {
	var req splitRequest
	if !bind(c, &req) {
		return
	}
	out, err := parser.ParseRawTransaction(req.RawTx)
	if err != nil {
		abort(c, http.StatusBadRequest, parser.ErrorInfo(err, "INVALID_TX"))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleHeader(c *gin.Context) {
	var req headerRequest
	if !bind(c, &req) {
		return
	}
	out, err := parser.ParseHeader(req.Header)
	if err != nil {
		abort(c, http.StatusBadRequest, parser.ErrorInfo(err, "INVALID_HEADER"))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleHeaderChain(c *gin.Context) {
	var req headerChainRequest
	if !bind(c, &req) {
		return
	}
	out, err := parser.ParseHeaderChain(req.Headers)
	if err != nil {
		abort(c, http.StatusBadRequest, parser.ErrorInfo(err, "INVALID_HEADERS"))
		return
	}
	s.metrics.Verification("header_chain", out.OK)

	if out.OK && req.Store && s.store != nil {
		raw, _ := utils.HexToBytes(req.Headers)
		if _, err := s.store.PutHeaderChain(raw, req.Height); err != nil {
			s.logger.Error("store header chain", zap.Error(err))
			abort(c, http.StatusInternalServerError, &types.ErrorInfo{Code: "STORE_ERROR", Message: err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleProve(c *gin.Context) {
	var req proveRequest
	if !bind(c, &req) {
		return
	}
	out, err := parser.Prove(req.Txid, req.MerkleRoot, req.IntermediateNodes, req.Index)
	if err != nil {
		abort(c, http.StatusBadRequest, parser.ErrorInfo(err, "INVALID_PROOF"))
		return
	}
	s.metrics.Verification("merkle", out.Valid)
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleVerifyProof(c *gin.Context) {
	var req verifyProofRequest
	if !bind(c, &req) {
		return
	}
	out := parser.VerifyProof(req.Proof)
	s.metrics.Verification("proof", out.Valid)

	if out.Valid && req.Store && s.store != nil {
		if err := s.store.PutProof(*req.Proof); err != nil {
			s.logger.Error("store proof", zap.String("txid", out.Txid), zap.Error(err))
			abort(c, http.StatusInternalServerError, &types.ErrorInfo{Code: "STORE_ERROR", Message: err.Error()})
			return
		}
		out.Stored = true
	}
	c.JSON(http.StatusOK, out)
}

// handleGetProof returns a stored proof by display-order txid. With
// ?tip=<block hash> it also counts confirmations up to that stored header.
func (s *Server) handleGetProof(c *gin.Context) {
	if s.store == nil {
		abort(c, http.StatusServiceUnavailable, &types.ErrorInfo{Code: "STORE_DISABLED", Message: "no data dir configured"})
		return
	}
	txid, ok := reversedHash(c.Param("txid"))
	if !ok {
		abort(c, http.StatusBadRequest, &types.ErrorInfo{Code: "INVALID_TXID", Message: "txid must be 32 bytes of hex"})
		return
	}

	proof, ok, err := s.store.Proof(txid)
	if err != nil {
		s.logger.Error("load proof", zap.String("txid", c.Param("txid")), zap.Error(err))
		abort(c, http.StatusInternalServerError, &types.ErrorInfo{Code: "STORE_ERROR", Message: err.Error()})
		return
	}
	if !ok {
		abort(c, http.StatusNotFound, &types.ErrorInfo{Code: "NOT_FOUND", Message: "no proof stored for " + c.Param("txid")})
		return
	}

	out := parser.VerifyProof(proof)
	out.Stored = true
	out.Proof = proof

	if tipParam := c.Query("tip"); tipParam != "" {
		tip, ok := reversedHash(tipParam)
		if !ok {
			abort(c, http.StatusBadRequest, &types.ErrorInfo{Code: "INVALID_TIP", Message: "tip must be 32 bytes of hex"})
			return
		}
		if !s.store.HeaderKnown(tip) {
			abort(c, http.StatusNotFound, &types.ErrorInfo{Code: "UNKNOWN_TIP", Message: "no header stored for " + tipParam})
			return
		}
		n, err := s.store.Confirmations(txid, tip)
		if err != nil {
			s.logger.Error("count confirmations", zap.String("txid", c.Param("txid")), zap.Error(err))
			abort(c, http.StatusInternalServerError, &types.ErrorInfo{Code: "STORE_ERROR", Message: err.Error()})
			return
		}
		out.Confirmations = &n
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleRetarget(c *gin.Context) {
	var req retargetRequest
	if !bind(c, &req) {
		return
	}
	out, err := parser.Retarget(req.PreviousTarget, req.FirstTimestamp, req.SecondTimestamp)
	if err != nil {
		abort(c, http.StatusBadRequest, parser.ErrorInfo(err, "INVALID_TARGET"))
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSwap(c *gin.Context) {
	var req swapRequest
	if !bind(c, &req) {
		return
	}
	args, ok := decodeField(c, "args", req.Args)
	if !ok {
		return
	}
	witness, ok := decodeField(c, "witness", req.Witness)
	if !ok {
		return
	}
	lockHash, ok := decodeField(c, "lock_hash", req.LockHash)
	if !ok {
		return
	}

	out := parser.SwapResult(swap.Evaluate(swap.StaticHost{
		Args:       args,
		Witness:    witness,
		LockHashes: [][]byte{lockHash},
		Capacities: []uint64{req.Capacity},
	}))
	s.metrics.Verification("swap", out.OK)
	c.JSON(http.StatusOK, out)
}

func decodeField(c *gin.Context, name, value string) ([]byte, bool) {
	buf, err := utils.HexToBytes(value)
	if err != nil {
		abort(c, http.StatusBadRequest, &types.ErrorInfo{Code: "INVALID_HEX", Message: name + ": " + err.Error()})
		return nil, false
	}
	return buf, true
}

// reversedHash parses a display-order hash into the little-endian form the
// store keys on.
func reversedHash(value string) (btcspv.Hash256Digest, bool) {
	buf, err := utils.HexToBytes(value)
	if err != nil || len(buf) != 32 {
		return btcspv.Hash256Digest{}, false
	}
	d, err := btcspv.NewHash256Digest(buf)
	if err != nil {
		return btcspv.Hash256Digest{}, false
	}
	return d.Reversed(), true
}
