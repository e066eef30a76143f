// Package chainhash provides deterministic content hashing used to derive
// fixture identifiers in tests, and the corruption-detecting checksum the
// blob store's state namespace prepends to every snapshot payload.
package chainhash

import (
	"golang.org/x/crypto/sha3"

	"github.com/fortiblox/ledgerstore/internal/types"

	"github.com/zeebo/blake3"
)

// ComputeBlockHash derives a BlockHash from raw block bytes.
func ComputeBlockHash(data []byte) types.BlockHash {
	h := blake3.New()
	h.Write(data)
	var out types.BlockHash
	copy(out[:], h.Sum(nil))
	return out
}

// ComputeTxId derives a TxId from raw transaction bytes.
func ComputeTxId(data []byte) types.TxId {
	h := blake3.New()
	h.Write(data)
	var out types.TxId
	copy(out[:], h.Sum(nil))
	return out
}

// ChecksumSize is the length in bytes of a Checksum.
const ChecksumSize = 32

// Checksum computes a content checksum for corruption detection. It is
// intentionally a different hash function from ComputeBlockHash/ComputeTxId
// (SHA3-256 rather than BLAKE3) so a checksum mismatch can never be confused
// with a legitimate content-addressed key collision.
func Checksum(data []byte) [ChecksumSize]byte {
	return sha3.Sum256(data)
}
