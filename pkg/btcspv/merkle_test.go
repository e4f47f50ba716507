package btcspv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Five leaves hash256(0x00) .. hash256(0x04); odd levels duplicate their last
// node.
const merkleRoot5 = "f4113849d628f7c3bc91cc0ff785a6aee3ee236c1c912b28cc09c44f9f97b748"

var merklePaths5 = []string{
	"9c12cfdc04c74584d787ac3d23772132c18524bc7ab28dec4219b8fc5b425f705469b9f8688bf3332b52548d8c9b1e3f055d44919e817b139c0c1223e821c8e11d4a332a2169f979bff323bb634d4cc71cadb94a41f0554b1c9db3ab8d02d47f",
	"1406e05881e299367766d313e26c05564ec91bf721d31726bd6e46e60689539a5469b9f8688bf3332b52548d8c9b1e3f055d44919e817b139c0c1223e821c8e11d4a332a2169f979bff323bb634d4cc71cadb94a41f0554b1c9db3ab8d02d47f",
	"c942a06c127c2c18022677e888020afb174208d299354f3ecfedb124a1f3fa454bbe83bc38ebe2bcc7520d234139df1c0eb9ffa51f83eab1c5129b5b906b76551d4a332a2169f979bff323bb634d4cc71cadb94a41f0554b1c9db3ab8d02d47f",
	"1cc3adea40ebfd94433ac004777d68150cce9db4c771bc7de1b297a7b795bbba4bbe83bc38ebe2bcc7520d234139df1c0eb9ffa51f83eab1c5129b5b906b76551d4a332a2169f979bff323bb634d4cc71cadb94a41f0554b1c9db3ab8d02d47f",
	"214e63bf41490e67d34476778f6707aa6c8d2c8dccdf78ae11e40ee9f91e89a77a865936b43ec09e83f8696e0239022a534be584736312a0bc62aff9451cb3fbe32f5701a0115a2b4dc72f526af1614c592c19ee95cfcb0535961e0767baf78e",
}

func packedProof(t *testing.T, index int) []byte {
	t.Helper()
	leaf := Hash256([]byte{byte(index)})
	proof := append([]byte{}, leaf[:]...)
	proof = append(proof, mustHex(t, merklePaths5[index])...)
	return append(proof, mustHex(t, merkleRoot5)...)
}

func TestVerifyHash256Merkle(t *testing.T) {
	r := require.New(t)
	for i := range merklePaths5 {
		proof := packedProof(t, i)
		r.True(VerifyHash256Merkle(proof, uint64(i)), "index %d", i)
	}
	for i := 0; i < 4; i++ {
		r.False(VerifyHash256Merkle(packedProof(t, i), uint64(i^1)), "index %d with flipped parity", i)
	}

	// the last leaf of an odd level is paired with itself, so its parity
	// bit carries no information
	r.True(VerifyHash256Merkle(packedProof(t, 4), 5))
}

func TestVerifyHash256MerkleBitFlips(t *testing.T) {
	r := require.New(t)
	proof := packedProof(t, 2)
	for byteIdx := 32; byteIdx < len(proof); byteIdx += 7 {
		tampered := append([]byte{}, proof...)
		tampered[byteIdx] ^= 0x01
		r.False(VerifyHash256Merkle(tampered, 2), "flip at byte %d", byteIdx)
	}
}

func TestVerifyHash256MerkleLengths(t *testing.T) {
	r := require.New(t)
	leaf := Hash256([]byte{7})

	r.True(VerifyHash256Merkle(leaf[:], 0), "a lone leaf is its own root")
	r.False(VerifyHash256Merkle(append(leaf[:], leaf[:]...), 0), "two nodes never verify")
	r.False(VerifyHash256Merkle(packedProof(t, 0)[:100], 0))
	r.False(VerifyHash256Merkle(nil, 0))
	r.False(VerifyHash256Merkle([]byte{}, 0))
}

func TestVerifyMerklePath(t *testing.T) {
	r := require.New(t)
	root := mustDigest(t, merkleRoot5)
	for i := range merklePaths5 {
		leaf := Hash256([]byte{byte(i)})
		r.True(VerifyMerklePath(leaf, mustHex(t, merklePaths5[i]), root, uint64(i)))
	}

	leaf := Hash256([]byte{0})
	r.False(VerifyMerklePath(leaf, nil, root, 0))
	r.False(VerifyMerklePath(leaf, mustHex(t, merklePaths5[0])[:40], root, 0))
}
