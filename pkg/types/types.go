package types

import "spv-lens/pkg/validatespv"

// VinOutput represents the JSON output for a parsed input vector
type VinOutput struct {
	OK           bool        `json:"ok"`
	InputCount   uint64      `json:"input_count"`
	Inputs       []InputInfo `json:"inputs"`
	RbfSignaling bool        `json:"rbf_signaling"`
	Warnings     []Warning   `json:"warnings"`
	Error        *ErrorInfo  `json:"error,omitempty"`
}

// InputInfo represents a single input of a vin
type InputInfo struct {
	N                int              `json:"n"`
	Txid             string           `json:"txid"`
	TxidLE           string           `json:"txid_le"`
	Vout             uint32           `json:"vout"`
	Sequence         uint32           `json:"sequence"`
	ScriptSigHex     string           `json:"script_sig_hex"`
	ScriptAsm        string           `json:"script_asm"`
	InputType        string           `json:"input_type"`
	LengthBytes      uint64           `json:"length_bytes"`
	RelativeTimelock RelativeTimelock `json:"relative_timelock"`
}

// RelativeTimelock represents BIP68 relative timelock
type RelativeTimelock struct {
	Enabled bool   `json:"enabled"`
	Type    string `json:"type,omitempty"`
	Value   uint32 `json:"value,omitempty"`
}

// VoutOutput represents the JSON output for a parsed output vector
type VoutOutput struct {
	OK              bool         `json:"ok"`
	OutputCount     uint64       `json:"output_count"`
	TotalValueSats  uint64       `json:"total_value_sats"`
	Outputs         []OutputInfo `json:"outputs"`
	VoutScriptTypes []string     `json:"vout_script_types"`
	Warnings        []Warning    `json:"warnings"`
	Error           *ErrorInfo   `json:"error,omitempty"`
}

// OutputInfo represents a single output of a vout
type OutputInfo struct {
	N                int     `json:"n"`
	ValueSats        uint64  `json:"value_sats"`
	ScriptPubkeyHex  string  `json:"script_pubkey_hex"`
	ScriptAsm        string  `json:"script_asm"`
	OutputType       string  `json:"output_type"`
	PayloadHex       string  `json:"payload_hex,omitempty"`
	Address          *string `json:"address"`
	OpReturnDataUtf8 *string `json:"op_return_data_utf8,omitempty"`
	OpReturnProtocol string  `json:"op_return_protocol,omitempty"`
}

// HeaderOutput represents a decoded block header
type HeaderOutput struct {
	OK            bool       `json:"ok"`
	Raw           string     `json:"raw,omitempty"`
	BlockHash     string     `json:"block_hash,omitempty"`
	BlockHashLE   string     `json:"block_hash_le,omitempty"`
	Version       uint32     `json:"version"`
	PrevBlockHash string     `json:"prev_block_hash,omitempty"`
	MerkleRoot    string     `json:"merkle_root,omitempty"`
	MerkleRootLE  string     `json:"merkle_root_le,omitempty"`
	Timestamp     uint32     `json:"timestamp"`
	Bits          string     `json:"bits,omitempty"`
	Nonce         uint32     `json:"nonce"`
	Target        string     `json:"target,omitempty"`
	Difficulty    uint64     `json:"difficulty"`
	WorkValid     bool       `json:"work_valid"`
	Error         *ErrorInfo `json:"error,omitempty"`
}

// ChainOutput represents the result of validating a header chain
type ChainOutput struct {
	OK          bool           `json:"ok"`
	HeaderCount int            `json:"header_count"`
	TotalWork   uint64         `json:"total_work"`
	WorkCode    string         `json:"work_code"`
	TipHash     string         `json:"tip_hash,omitempty"`
	Headers     []HeaderOutput `json:"headers"`
	Error       *ErrorInfo     `json:"error,omitempty"`
}

// ProveOutput represents the result of a merkle inclusion check
type ProveOutput struct {
	OK         bool       `json:"ok"`
	Valid      bool       `json:"valid"`
	Txid       string     `json:"txid"`
	MerkleRoot string     `json:"merkle_root"`
	Index      uint64     `json:"index"`
	Depth      int        `json:"depth"`
	Warnings   []Warning  `json:"warnings"`
	Error      *ErrorInfo `json:"error,omitempty"`
}

// TransactionParts represents a serialized transaction split into the pieces
// a proof carries
type TransactionParts struct {
	OK           bool       `json:"ok"`
	Segwit       bool       `json:"segwit"`
	Txid         string     `json:"txid,omitempty"`
	TxidLE       string     `json:"txid_le,omitempty"`
	Version      string     `json:"version,omitempty"`
	Vin          string     `json:"vin,omitempty"`
	Vout         string     `json:"vout,omitempty"`
	Locktime     string     `json:"locktime,omitempty"`
	LocktimeType string     `json:"locktime_type,omitempty"`
	Error        *ErrorInfo `json:"error,omitempty"`
}

// RetargetOutput represents a difficulty retarget computation
type RetargetOutput struct {
	OK              bool       `json:"ok"`
	PreviousTarget  string     `json:"previous_target"`
	NewTarget       string     `json:"new_target"`
	FirstTimestamp  uint32     `json:"first_timestamp"`
	SecondTimestamp uint32     `json:"second_timestamp"`
	ElapsedSeconds  uint32     `json:"elapsed_seconds"`
	Difficulty      uint64     `json:"difficulty"`
	Error           *ErrorInfo `json:"error,omitempty"`
}

// ProofOutput represents the verification result of a full SPV proof
type ProofOutput struct {
	OK            bool                  `json:"ok"`
	Valid         bool                  `json:"valid"`
	Txid          string                `json:"txid,omitempty"`
	BlockHash     string                `json:"block_hash,omitempty"`
	Height        uint32                `json:"height"`
	Stored        bool                  `json:"stored"`
	Confirmations *uint32               `json:"confirmations,omitempty"`
	Proof         *validatespv.SPVProof `json:"proof,omitempty"`
	Warnings      []Warning             `json:"warnings"`
	Error         *ErrorInfo            `json:"error,omitempty"`
}

// SwapOutput represents the outcome of a swap evaluation
type SwapOutput struct {
	OK     bool       `json:"ok"`
	Code   int        `json:"code"`
	Result string     `json:"result"`
	Error  *ErrorInfo `json:"error,omitempty"`
}

// Warning represents a proof or transaction warning
type Warning struct {
	Code string `json:"code"`
}

// ErrorInfo represents an error response
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
