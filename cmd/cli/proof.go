package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"spv-lens/pkg/parser"
	"spv-lens/pkg/swap"
	"spv-lens/pkg/utils"
	"spv-lens/pkg/validatespv"
)

var (
	buildXorPath string
	buildRaw     bool
	buildTx      string
	buildHeight  uint32
	buildOut     string
)

func init() {
	rootCmd.AddCommand(verifyProofCmd)
	rootCmd.AddCommand(buildProofCmd)
	rootCmd.AddCommand(swapCmd)
	rootCmd.AddCommand(swapWitnessCmd)

	buildProofCmd.Flags().StringVar(&buildXorPath, "xor", "", "obfuscation key file (xor.dat)")
	buildProofCmd.Flags().BoolVar(&buildRaw, "raw", false, "file holds a bare serialized block, not a blk*.dat record")
	buildProofCmd.Flags().StringVar(&buildTx, "tx", "0", "transaction index or txid")
	buildProofCmd.Flags().Uint32Var(&buildHeight, "height", 0, "block height (default: BIP34 coinbase height)")
	buildProofCmd.Flags().StringVarP(&buildOut, "out", "o", "", "also write the proof JSON here")
}

var verifyProofCmd = &cobra.Command{
	Use:   "verify-proof <proof.json>",
	Short: "Validate an SPV proof file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proof, err := parser.LoadProofFile(args[0])
		if err != nil {
			return fail("INVALID_PROOF_FILE", err)
		}
		out := parser.VerifyProof(proof)
		logger.Debug("proof checked", zap.String("txid", out.Txid), zap.Bool("valid", out.Valid))
		return emit(out, out.Valid)
	},
}

var buildProofCmd = &cobra.Command{
	Use:   "build-proof <block_file>",
	Short: "Build the SPV proof of a transaction from a full block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if buildRaw {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = parser.ReadBlockFile(args[0], buildXorPath)
		}
		if err != nil {
			return fail("FILE_NOT_FOUND", err)
		}

		block, err := parser.DecodeBlock(raw)
		if err != nil {
			return fail("INVALID_BLOCK", err)
		}
		logger.Debug("block decoded",
			zap.String("hash", block.BlockHash().String()),
			zap.Int("transactions", len(block.Transactions)),
		)

		var proof *validatespv.SPVProof
		if index, perr := strconv.Atoi(buildTx); perr == nil {
			proof, err = parser.BuildProof(block, index, buildHeight)
		} else {
			proof, err = parser.BuildProofForTxID(block, buildTx, buildHeight)
		}
		if err != nil {
			return fail("INVALID_BLOCK", err)
		}
		if err := proof.Validate(); err != nil {
			return failWith("INVALID_PROOF", err)
		}

		if buildOut != "" {
			data, _ := json.MarshalIndent(proof, "", "  ")
			if err := os.WriteFile(buildOut, data, 0644); err != nil {
				return fail("IO_ERROR", fmt.Errorf("failed to write proof: %w", err))
			}
		}
		return emit(proof, true)
	},
}

var swapCmd = &cobra.Command{
	Use:   "swap <args_hex> <witness_hex> <lock_hash_hex> <capacity>",
	Short: "Evaluate an SPV swap against a fixed output cell",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		var host swap.StaticHost
		var lockHash []byte
		for i, dst := range []*[]byte{&host.Args, &host.Witness, &lockHash} {
			buf, err := utils.HexToBytes(args[i])
			if err != nil {
				return fail("INVALID_HEX", err)
			}
			*dst = buf
		}
		capacity, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fail("INVALID_ARGS", err)
		}
		host.LockHashes = [][]byte{lockHash}
		host.Capacities = []uint64{capacity}

		out := parser.SwapResult(swap.Evaluate(host))
		return emit(out, out.OK)
	},
}

var swapWitnessCmd = &cobra.Command{
	Use:   "swap-witness <proof.json> [headers_hex]",
	Short: "Encode a swap witness from a proof and the headers built on it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		proof, err := parser.LoadProofFile(args[0])
		if err != nil {
			return fail("INVALID_PROOF_FILE", err)
		}
		var headers []byte
		if len(args) == 2 {
			if headers, err = utils.HexToBytes(args[1]); err != nil {
				return fail("INVALID_HEX", err)
			}
		}
		w, err := swap.NewWitness(*proof, headers)
		if err != nil {
			return fail("INVALID_WITNESS", err)
		}
		encoded, err := w.Encode()
		if err != nil {
			return fail("INVALID_WITNESS", err)
		}
		return emit(map[string]any{"ok": true, "witness": utils.BytesToHex(encoded)}, true)
	},
}
