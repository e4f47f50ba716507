package btcspv

// lengthFunc reports the size of the element at the front of a buffer.
type lengthFunc func(View) (uint64, error)

// vectorCount decodes the element count at the front of a vin or vout. A zero
// count is rejected: it is never a valid vector and collides with the segwit
// marker byte.
func vectorCount(op string, vec View) (CompactInt, error) {
	count, err := DecodeCompactInt(vec)
	if err != nil {
		return CompactInt{}, err
	}
	if count.Value == 0 {
		return CompactInt{}, spvErr(CodeStructuralMismatch, op, "vector declares zero elements")
	}
	return count, nil
}

// extractAtIndex walks the vector element by element until it reaches index.
// Elements are variable length so there is no random access.
func extractAtIndex(op string, vec View, index uint64, elemLen lengthFunc) (View, error) {
	count, err := vectorCount(op, vec)
	if err != nil {
		return NullView, err
	}
	if index >= count.Value {
		return NullView, spvErr(CodeOutOfRange, op, "index %d, vector has %d elements", index, count.Value)
	}

	offset := uint64(count.Width)
	var length uint64
	for i := uint64(0); i <= index; i++ {
		if offset >= uint64(len(vec)) {
			return NullView, shortErr(op, clampInt(offset)+1, len(vec))
		}
		length, err = elemLen(vec[offset:])
		if err != nil {
			return NullView, err
		}
		if i != index {
			offset, err = addLength(op, length, offset)
			if err != nil {
				return NullView, err
			}
		}
	}

	end, err := addLength(op, length, offset)
	if err != nil {
		return NullView, err
	}
	if end > uint64(len(vec)) {
		return NullView, shortErr(op, clampInt(end), len(vec))
	}
	return vec.Slice(int(offset), int(length))
}

// vectorLength walks every element and returns the offset where the last one
// ends. Bytes after that offset are not examined.
func vectorLength(op string, vec View, elemLen lengthFunc) (uint64, error) {
	count, err := vectorCount(op, vec)
	if err != nil {
		return 0, err
	}

	offset := uint64(count.Width)
	for i := uint64(0); i < count.Value; i++ {
		if offset >= uint64(len(vec)) {
			return 0, spvErr(CodeStructuralMismatch, op, "vector ends after %d of %d elements", i, count.Value)
		}
		length, err := elemLen(vec[offset:])
		if err != nil {
			return 0, err
		}
		offset, err = addLength(op, length, offset)
		if err != nil {
			return 0, err
		}
	}

	if offset > uint64(len(vec)) {
		return 0, shortErr(op, clampInt(offset), len(vec))
	}
	return offset, nil
}

// checkVector requires the last element to end exactly at the end of the
// buffer.
func checkVector(op string, vec View, elemLen lengthFunc) error {
	end, err := vectorLength(op, vec, elemLen)
	if err != nil {
		return err
	}
	if end != uint64(len(vec)) {
		return spvErr(CodeStructuralMismatch, op, "elements span %d bytes, vector is %d", end, len(vec))
	}
	return nil
}

// DetermineVinLength returns the size of the vin at the front of buf, which
// may continue past it.
func DetermineVinLength(buf View) (uint64, error) {
	return vectorLength("DetermineVinLength", buf, DetermineInputLength)
}

// DetermineVoutLength returns the size of the vout at the front of buf.
func DetermineVoutLength(buf View) (uint64, error) {
	return vectorLength("DetermineVoutLength", buf, DetermineOutputLength)
}

// ExtractInputAtIndex returns the input at index within a vin.
func ExtractInputAtIndex(vin View, index uint64) (View, error) {
	return extractAtIndex("ExtractInputAtIndex", vin, index, DetermineInputLength)
}

// ExtractOutputAtIndex returns the output at index within a vout.
func ExtractOutputAtIndex(vout View, index uint64) (View, error) {
	return extractAtIndex("ExtractOutputAtIndex", vout, index, DetermineOutputLength)
}

// CheckVin reports why vin is not a well-formed input vector, or nil.
func CheckVin(vin View) error {
	return checkVector("CheckVin", vin, DetermineInputLength)
}

// CheckVout reports why vout is not a well-formed output vector, or nil.
func CheckVout(vout View) error {
	return checkVector("CheckVout", vout, DetermineOutputLength)
}

// ValidateVin checks that vin is a count followed by exactly that many inputs
// and nothing else.
func ValidateVin(vin View) bool {
	return CheckVin(vin) == nil
}

// ValidateVout checks that vout is a count followed by exactly that many
// outputs and nothing else.
func ValidateVout(vout View) bool {
	return CheckVout(vout) == nil
}
