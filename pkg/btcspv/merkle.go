package btcspv

// VerifyHash256Merkle checks a packed proof of the form
// leaf || sibling_0 || ... || sibling_k-1 || root, each 32 bytes, for the
// leaf at index. A 32-byte proof (leaf is the root) is valid; a 64-byte proof
// is never valid.
//
// The index is not a reliable position: a different sibling path can make the
// same leaf verify at another index.
func VerifyHash256Merkle(proof View, index uint64) bool {
	if proof.IsNull() || len(proof)%32 != 0 {
		return false
	}
	switch len(proof) {
	case 0:
		return false
	case 32:
		return true
	case 64:
		return false
	}

	var leaf Hash256Digest
	copy(leaf[:], proof[:32])
	return foldPath(leaf, proof[32:len(proof)-32], proof[len(proof)-32:], index)
}

// VerifyMerklePath is VerifyHash256Merkle with the leaf, the siblings and the
// root passed separately, so the packed proof never has to be assembled.
// nodes must hold at least one sibling.
func VerifyMerklePath(leaf Hash256Digest, nodes View, root Hash256Digest, index uint64) bool {
	if nodes.IsNull() || len(nodes) == 0 || len(nodes)%32 != 0 {
		return false
	}
	return foldPath(leaf, nodes, root[:], index)
}

func foldPath(current Hash256Digest, nodes View, root []byte, index uint64) bool {
	idx := index
	for off := 0; off+32 <= len(nodes); off += 32 {
		sibling := nodes[off : off+32]
		if idx&1 == 1 {
			current = Hash256MerkleStep(sibling, current[:])
		} else {
			current = Hash256MerkleStep(current[:], sibling)
		}
		idx >>= 1
	}
	return View(current[:]).EqualBytes(root)
}
