package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"spv-lens/pkg/parser"
)

func init() {
	rootCmd.AddCommand(parseVinCmd)
	rootCmd.AddCommand(parseVoutCmd)
	rootCmd.AddCommand(splitTxCmd)
	rootCmd.AddCommand(parseHeaderCmd)
	rootCmd.AddCommand(validateChainCmd)
	rootCmd.AddCommand(proveCmd)
	rootCmd.AddCommand(retargetCmd)
}

var parseVinCmd = &cobra.Command{
	Use:   "parse-vin <vin_hex>",
	Short: "Decode a length-prefixed input vector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := parser.ParseVin(args[0])
		if err != nil {
			return failWith("INVALID_VIN", err)
		}
		return emit(out, true)
	},
}

var parseVoutCmd = &cobra.Command{
	Use:   "parse-vout <vout_hex>",
	Short: "Decode a length-prefixed output vector",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := parser.ParseVout(args[0], network)
		if err != nil {
			return failWith("INVALID_VOUT", err)
		}
		return emit(out, true)
	},
}

var splitTxCmd = &cobra.Command{
	Use:   "split-tx <raw_tx_hex>",
	Short: "Split a serialized transaction into version, vin, vout and locktime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := parser.ParseRawTransaction(args[0])
		if err != nil {
			return failWith("INVALID_TX", err)
		}
		return emit(out, true)
	},
}

var parseHeaderCmd = &cobra.Command{
	Use:   "parse-header <header_hex>",
	Short: "Decode an 80-byte block header",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := parser.ParseHeader(args[0])
		if err != nil {
			return failWith("INVALID_HEADER", err)
		}
		return emit(out, true)
	},
}

var validateChainCmd = &cobra.Command{
	Use:   "validate-header-chain <headers_hex>",
	Short: "Check that concatenated headers link and meet their targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := parser.ParseHeaderChain(args[0])
		if err != nil {
			return failWith("INVALID_HEADERS", err)
		}
		logger.Debug("header chain checked")
		return emit(out, out.OK)
	},
}

var proveCmd = &cobra.Command{
	Use:   "prove <txid_le> <merkle_root_le> <intermediate_nodes> <index>",
	Short: "Check a merkle inclusion proof",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return fail("INVALID_ARGS", err)
		}
		out, err := parser.Prove(args[0], args[1], args[2], index)
		if err != nil {
			return failWith("INVALID_PROOF", err)
		}
		return emit(out, out.Valid)
	},
}

var retargetCmd = &cobra.Command{
	Use:   "retarget <previous_target_hex> <first_timestamp> <second_timestamp>",
	Short: "Compute the target of the next difficulty period",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		first, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			return fail("INVALID_ARGS", err)
		}
		second, err := strconv.ParseUint(args[2], 10, 32)
		if err != nil {
			return fail("INVALID_ARGS", err)
		}
		out, err := parser.Retarget(args[0], uint32(first), uint32(second))
		if err != nil {
			return failWith("INVALID_TARGET", err)
		}
		return emit(out, true)
	},
}
