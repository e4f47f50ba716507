package analyzer

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"spv-lens/pkg/btcspv"
)

// NetParams maps a network name to its chain parameters. Anything other than
// mainnet is treated as testnet.
func NetParams(network string) *chaincfg.Params {
	switch network {
	case "mainnet", "":
		return &chaincfg.MainNetParams
	case "regtest":
		return &chaincfg.RegressionNetParams
	case "signet":
		return &chaincfg.SigNetParams
	default:
		return &chaincfg.TestNet3Params
	}
}

// AddressFromPayload derives a Bitcoin address from the hash extracted out of
// an output. Returns nil if the output type has no address (OP_RETURN,
// nonstandard) or the payload has the wrong size.
func AddressFromPayload(outputType btcspv.OutputType, payload []byte, network string) *string {
	netParams := NetParams(network)

	var addr btcutil.Address
	var err error

	switch outputType {
	case btcspv.PKH:
		addr, err = btcutil.NewAddressPubKeyHash(payload, netParams)
	case btcspv.SH:
		addr, err = btcutil.NewAddressScriptHashFromHash(payload, netParams)
	case btcspv.WPKH:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(payload, netParams)
	case btcspv.WSH:
		addr, err = btcutil.NewAddressWitnessScriptHash(payload, netParams)
	default:
		return nil
	}

	if err != nil {
		return nil
	}

	addrStr := addr.EncodeAddress()
	return &addrStr
}
