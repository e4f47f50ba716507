package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"spv-lens/pkg/logging"
	"spv-lens/pkg/parser"
	"spv-lens/pkg/types"
)

var (
	network string
	verbose bool
	logger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "spv-lens",
	Short:         "Bitcoin SPV proof parsing and verification",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		l, err := logging.New(logging.Config{Level: level})
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&network, "network", "mainnet", "network for address derivation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
}

// cliError carries the code printed in the error object.
type cliError struct {
	code string
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func fail(code string, err error) error {
	return &cliError{code: code, err: err}
}

// failWith keeps the verification code of err when it has one.
func failWith(fallback string, err error) error {
	info := parser.ErrorInfo(err, fallback)
	return &cliError{code: info.Code, err: err}
}

// errReported means the result was already printed with ok=false.
var errReported = errors.New("reported")

// emit prints v as JSON. A result that is not ok still prints, then the
// process exits non-zero.
func emit(v any, ok bool) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail("IO_ERROR", err)
	}
	fmt.Println(string(out))
	if !ok {
		return errReported
	}
	return nil
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err == nil {
		return
	}
	if !errors.Is(err, errReported) {
		code := "INVALID_ARGS"
		var ce *cliError
		if errors.As(err, &ce) {
			code = ce.code
		}
		printError(code, err.Error())
	}
	os.Exit(1)
}

func printError(code, message string) {
	type errorOutput struct {
		OK    bool             `json:"ok"`
		Error *types.ErrorInfo `json:"error"`
	}
	errOutput := errorOutput{
		OK: false,
		Error: &types.ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
	errJSON, _ := json.Marshal(errOutput)
	fmt.Println(string(errJSON))
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
