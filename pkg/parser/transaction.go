package parser

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"spv-lens/pkg/analyzer"
	"spv-lens/pkg/btcspv"
	"spv-lens/pkg/types"
	"spv-lens/pkg/utils"
	"spv-lens/pkg/validatespv"

	"github.com/btcsuite/btcd/wire"
)

// ParseVin decodes a length-prefixed input vector into structured output
func ParseVin(vinHex string) (*types.VinOutput, error) {
	vin, err := utils.HexToBytes(vinHex)
	if err != nil {
		return nil, fmt.Errorf("invalid vin hex: %w", err)
	}
	if err := btcspv.CheckVin(vin); err != nil {
		return nil, fmt.Errorf("invalid vin: %w", err)
	}

	count, _ := btcspv.DecodeCompactInt(vin)
	inputs := make([]types.InputInfo, 0, count.Value)
	sequences := make([]uint32, 0, count.Value)

	rest := btcspv.View(vin[count.Width:])
	for i := 0; uint64(i) < count.Value; i++ {
		length, err := btcspv.DetermineInputLength(rest)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		txin := rest[:length]
		rest = rest[length:]

		info, err := describeInput(i, txin)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		inputs = append(inputs, info)
		sequences = append(sequences, info.Sequence)
	}

	rbf := analyzer.IsRBFSignaling(sequences)
	return &types.VinOutput{
		OK:           true,
		InputCount:   count.Value,
		Inputs:       inputs,
		RbfSignaling: rbf,
		Warnings:     analyzer.InputWarnings(rbf),
	}, nil
}

func describeInput(n int, txin btcspv.View) (types.InputInfo, error) {
	txid, err := btcspv.ExtractInputTxID(txin)
	if err != nil {
		return types.InputInfo{}, err
	}
	vout, err := btcspv.ExtractTxIndex(txin)
	if err != nil {
		return types.InputInfo{}, err
	}
	sequence, err := btcspv.ExtractSequence(txin)
	if err != nil {
		return types.InputInfo{}, err
	}
	scriptSig, err := btcspv.ExtractScriptSigBody(txin)
	if err != nil {
		return types.InputInfo{}, err
	}
	inputType, err := btcspv.DetermineInputType(txin)
	if err != nil {
		return types.InputInfo{}, err
	}

	return types.InputInfo{
		N:                n,
		Txid:             txid.Hex(),
		TxidLE:           txid.Reversed().Hex(),
		Vout:             vout,
		Sequence:         sequence,
		ScriptSigHex:     hex.EncodeToString(scriptSig),
		ScriptAsm:        analyzer.DisassembleScript(scriptSig),
		InputType:        inputType.String(),
		LengthBytes:      uint64(len(txin)),
		RelativeTimelock: analyzer.RelativeTimelockFromSequence(sequence),
	}, nil
}

// ParseVout decodes a length-prefixed output vector into structured output.
// Addresses are derived for network.
func ParseVout(voutHex, network string) (*types.VoutOutput, error) {
	vout, err := utils.HexToBytes(voutHex)
	if err != nil {
		return nil, fmt.Errorf("invalid vout hex: %w", err)
	}
	if err := btcspv.CheckVout(vout); err != nil {
		return nil, fmt.Errorf("invalid vout: %w", err)
	}

	count, _ := btcspv.DecodeCompactInt(vout)
	outputs := make([]types.OutputInfo, 0, count.Value)
	scriptTypes := make([]string, 0, count.Value)
	var total uint64

	rest := btcspv.View(vout[count.Width:])
	for i := 0; uint64(i) < count.Value; i++ {
		length, err := btcspv.DetermineOutputLength(rest)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		txout := rest[:length]
		rest = rest[length:]

		info, err := describeOutput(i, txout, network)
		if err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		outputs = append(outputs, info)
		scriptTypes = append(scriptTypes, info.OutputType)
		total += info.ValueSats
	}

	return &types.VoutOutput{
		OK:              true,
		OutputCount:     count.Value,
		TotalValueSats:  total,
		Outputs:         outputs,
		VoutScriptTypes: scriptTypes,
		Warnings:        analyzer.OutputWarnings(outputs),
	}, nil
}

func describeOutput(n int, txout btcspv.View, network string) (types.OutputInfo, error) {
	value, err := btcspv.ExtractValue(txout)
	if err != nil {
		return types.OutputInfo{}, err
	}
	script, err := btcspv.ExtractScriptPubkey(txout)
	if err != nil {
		return types.OutputInfo{}, err
	}
	outputType, payload, err := btcspv.DetermineOutputType(txout)
	if err != nil {
		return types.OutputInfo{}, err
	}

	info := types.OutputInfo{
		N:               n,
		ValueSats:       value,
		ScriptPubkeyHex: hex.EncodeToString(script),
		ScriptAsm:       analyzer.DisassembleScript(script),
		OutputType:      outputType.String(),
		PayloadHex:      hex.EncodeToString(payload),
		Address:         analyzer.AddressFromPayload(outputType, payload, network),
	}
	if outputType == btcspv.OpReturn {
		info.OpReturnDataUtf8, info.OpReturnProtocol = analyzer.ParseOpReturn(payload)
	}
	return info, nil
}

// TxParts is a serialized transaction split into the fields a proof carries.
// Witness data is dropped.
type TxParts struct {
	Version  []byte
	Vin      []byte
	Vout     []byte
	Locktime []byte
	Segwit   bool
}

// TxID returns the little-endian txid of the parts.
func (p TxParts) TxID() btcspv.Hash256Digest {
	return validatespv.CalculateTxID(p.Version, p.Vin, p.Vout, p.Locktime)
}

// SplitTransaction splits a legacy or segwit serialization into version,
// vin, vout and locktime. The whole buffer must be consumed.
func SplitTransaction(raw []byte) (TxParts, error) {
	if len(raw) < 10 {
		return TxParts{}, errors.New("transaction too short")
	}
	parts := TxParts{Version: raw[:4]}
	offset := 4
	if raw[4] == 0x00 && raw[5] == 0x01 {
		parts.Segwit = true
		offset = 6
	}

	vinLen, err := btcspv.DetermineVinLength(raw[offset:])
	if err != nil {
		return TxParts{}, fmt.Errorf("vin: %w", err)
	}
	parts.Vin = raw[offset : offset+int(vinLen)]
	offset += int(vinLen)

	voutLen, err := btcspv.DetermineVoutLength(raw[offset:])
	if err != nil {
		return TxParts{}, fmt.Errorf("vout: %w", err)
	}
	parts.Vout = raw[offset : offset+int(voutLen)]
	offset += int(voutLen)

	if parts.Segwit {
		inputs, _ := btcspv.DecodeCompactInt(parts.Vin)
		for i := uint64(0); i < inputs.Value; i++ {
			n, err := witnessSpan(raw[offset:])
			if err != nil {
				return TxParts{}, fmt.Errorf("witness %d: %w", i, err)
			}
			offset += n
		}
	}

	if len(raw)-offset != 4 {
		return TxParts{}, fmt.Errorf("expected 4 locktime bytes, have %d", len(raw)-offset)
	}
	parts.Locktime = raw[offset:]
	return parts, nil
}

// witnessSpan returns the serialized size of one input's witness stack.
func witnessSpan(buf btcspv.View) (int, error) {
	items, err := btcspv.DecodeCompactInt(buf)
	if err != nil {
		return 0, err
	}
	offset := items.Width
	for i := uint64(0); i < items.Value; i++ {
		if offset >= len(buf) {
			return 0, btcspv.ErrInsufficientBytes
		}
		item, err := btcspv.DecodeCompactInt(buf[offset:])
		if err != nil {
			return 0, err
		}
		if item.Value > uint64(len(buf)-offset-item.Width) {
			return 0, btcspv.ErrInsufficientBytes
		}
		offset += item.Width + int(item.Value)
	}
	return offset, nil
}

// ParseRawTransaction splits a raw transaction hex into the parts a proof
// carries, cross-checking the txid against btcd's deserializer.
func ParseRawTransaction(rawHex string) (*types.TransactionParts, error) {
	raw, err := utils.HexToBytes(rawHex)
	if err != nil {
		return nil, fmt.Errorf("invalid raw_tx hex: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("failed to deserialize transaction: %w", err)
	}

	parts, err := SplitTransaction(raw)
	if err != nil {
		return nil, err
	}
	txid := parts.TxID()
	if hash := tx.TxHash(); !bytes.Equal(hash[:], txid[:]) {
		return nil, fmt.Errorf("txid mismatch: split gives %s, btcd gives %s", txid.Reversed().Hex(), hash)
	}

	return &types.TransactionParts{
		OK:           true,
		Segwit:       parts.Segwit,
		Txid:         txid.Reversed().Hex(),
		TxidLE:       txid.Hex(),
		Version:      hex.EncodeToString(parts.Version),
		Vin:          hex.EncodeToString(parts.Vin),
		Vout:         hex.EncodeToString(parts.Vout),
		Locktime:     hex.EncodeToString(parts.Locktime),
		LocktimeType: analyzer.GetLocktimeType(tx.LockTime),
	}, nil
}
