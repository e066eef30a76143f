package engine

import (
	"encoding/binary"
	"strings"

	"github.com/fortiblox/ledgerstore/internal/types"
)

const (
	indexPrefix        = "index_"
	staterefPrefix     = "stateref_"
	staterefByAddrPfx  = "stateref_by_addr_"
	staterefByBlockPfx = "stateref_by_block_"
	noncePrefix        = "nonce_"

	stagedBucketName      = "staged_txids"
	stagedByTxIdBucket    = "staged_by_txid"
	canonBucketName       = "canon"
)

var canonKey = []byte("chainId")

func indexBucket(c types.ChainId) []byte        { return []byte(indexPrefix + c.Hex()) }
func staterefBucket(c types.ChainId) []byte     { return []byte(staterefPrefix + c.Hex()) }
func staterefByAddrBucket(c types.ChainId) []byte {
	return []byte(staterefByAddrPfx + c.Hex())
}
func staterefByBlockBucket(c types.ChainId) []byte {
	return []byte(staterefByBlockPfx + c.Hex())
}
func nonceBucket(c types.ChainId) []byte { return []byte(noncePrefix + c.Hex()) }

// chainIdFromIndexBucket recovers a ChainId from an "index_<hex>" bucket
// name, or ok=false if name does not carry that prefix or a valid ChainId.
func chainIdFromIndexBucket(name []byte) (types.ChainId, bool) {
	s := string(name)
	if !strings.HasPrefix(s, indexPrefix) {
		return types.ChainId{}, false
	}
	c, err := types.ChainIdFromHex(strings.TrimPrefix(s, indexPrefix))
	if err != nil {
		return types.ChainId{}, false
	}
	return c, true
}

func be64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func parseBE64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// staterefCompositeKey is the primary key for a state-ref record, enforcing
// uniqueness on (address, blockHash).
func staterefCompositeKey(a types.Address, h types.BlockHash) []byte {
	return []byte(a.Hex() + h.Hex())
}

// staterefRecord is the fixed-width encoding stored under the primary
// stateref_<chain> bucket: address(20) || blockIndexBE(8) || blockHash(32).
type staterefRecord struct {
	Address    types.Address
	BlockIndex int64
	BlockHash  types.BlockHash
}

func encodeStaterefRecord(r staterefRecord) []byte {
	buf := make([]byte, types.AddressSize+8+types.HashSize)
	copy(buf, r.Address.Bytes())
	binary.BigEndian.PutUint64(buf[types.AddressSize:], uint64(r.BlockIndex))
	copy(buf[types.AddressSize+8:], r.BlockHash.Bytes())
	return buf
}


// staterefByAddrKey orders records for a single address by ascending
// blockIndex, letting a reverse cursor walk produce descending order.
func staterefByAddrKey(a types.Address, blockIndex int64) []byte {
	buf := make([]byte, types.AddressSize+8)
	copy(buf, a.Bytes())
	binary.BigEndian.PutUint64(buf[types.AddressSize:], uint64(blockIndex))
	return buf
}

// staterefByBlockKey orders records by ascending blockIndex first, so a
// fork copy can bound its scan with a single Seek to the upper index.
func staterefByBlockKey(blockIndex int64, a types.Address, h types.BlockHash) []byte {
	buf := make([]byte, 8+types.AddressSize+types.HashSize)
	binary.BigEndian.PutUint64(buf, uint64(blockIndex))
	copy(buf[8:], a.Bytes())
	copy(buf[8+types.AddressSize:], h.Bytes())
	return buf
}
