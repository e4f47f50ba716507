package analyzer

import "spv-lens/pkg/types"

const (
	sequenceFinal        = 0xffffffff
	sequenceDisableFlag  = 1 << 31
	sequenceTypeFlag     = 1 << 22
	sequenceLocktimeMask = 0x0000ffff
	locktimeThreshold    = 500000000
)

// GetLocktimeType determines if locktime is block height, timestamp, or none
func GetLocktimeType(locktime uint32) string {
	switch {
	case locktime == 0:
		return "none"
	case locktime < locktimeThreshold:
		return "block_height"
	default:
		return "unix_timestamp"
	}
}

// RelativeTimelockFromSequence decodes a BIP68 relative timelock. Time-based
// locks are reported in seconds.
func RelativeTimelockFromSequence(sequence uint32) types.RelativeTimelock {
	if sequence&sequenceDisableFlag != 0 {
		return types.RelativeTimelock{}
	}
	value := sequence & sequenceLocktimeMask
	if sequence&sequenceTypeFlag != 0 {
		return types.RelativeTimelock{Enabled: true, Type: "time", Value: value * 512}
	}
	return types.RelativeTimelock{Enabled: true, Type: "blocks", Value: value}
}

// IsRBFSignaling checks if any sequence signals BIP125 replaceability
func IsRBFSignaling(sequences []uint32) bool {
	for _, seq := range sequences {
		if seq < sequenceFinal-1 {
			return true
		}
	}
	return false
}
