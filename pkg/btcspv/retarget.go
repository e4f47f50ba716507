package btcspv

// RetargetPeriod is the expected duration of a 2016-block difficulty period.
const RetargetPeriod = 1209600

// RetargetAlgorithm computes the target for the next difficulty period the
// way Bitcoin does: scale the previous target by the elapsed time of the
// period, clamped to [period/4, period*4], then divide by the period.
//
// elapsed is second-first as uint32, so a second timestamp earlier than the
// first wraps around and is clamped to the upper bound. The multiplication
// keeps only the low 256 bits of the product; targets large enough to
// overflow are truncated rather than saturated.
func RetargetAlgorithm(previousTarget Uint256, firstTimestamp, secondTimestamp uint32) Uint256 {
	elapsed := secondTimestamp - firstTimestamp
	if elapsed < RetargetPeriod/4 {
		elapsed = RetargetPeriod / 4
	}
	if elapsed > RetargetPeriod*4 {
		elapsed = RetargetPeriod * 4
	}

	next, _ := previousTarget.MulUint32(elapsed).DivUint32(RetargetPeriod)
	return next
}
