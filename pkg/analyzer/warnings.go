package analyzer

import "spv-lens/pkg/types"

const dustLimitSats = 546

// OutputWarnings creates the warning array for a parsed vout
func OutputWarnings(outputs []types.OutputInfo) []types.Warning {
	warnings := make([]types.Warning, 0)

	var dust, nonstandard, opReturn bool
	for _, out := range outputs {
		switch out.OutputType {
		case "op_return":
			opReturn = true
			continue
		case "nonstandard":
			nonstandard = true
		}
		if out.ValueSats < dustLimitSats {
			dust = true
		}
	}

	if dust {
		warnings = append(warnings, types.Warning{Code: "DUST_OUTPUT"})
	}
	if nonstandard {
		warnings = append(warnings, types.Warning{Code: "NONSTANDARD_OUTPUT"})
	}
	if opReturn {
		warnings = append(warnings, types.Warning{Code: "OP_RETURN_PRESENT"})
	}
	return warnings
}

// InputWarnings creates the warning array for a parsed vin
func InputWarnings(rbfSignaling bool) []types.Warning {
	warnings := make([]types.Warning, 0)
	if rbfSignaling {
		warnings = append(warnings, types.Warning{Code: "RBF_SIGNALING"})
	}
	return warnings
}

// ProofWarnings flags a merkle proof whose index has bits set above the path
// depth. Those bits are never read, so the index does not pin down the
// transaction's position.
func ProofWarnings(index uint64, depth int) []types.Warning {
	warnings := make([]types.Warning, 0)
	if depth < 64 && index>>uint(depth) != 0 {
		warnings = append(warnings, types.Warning{Code: "INDEX_UNRELIABLE"})
	}
	return warnings
}
