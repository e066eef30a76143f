// Package types defines the core identifier types shared across the storage
// engine: chain, block, transaction and address identifiers.
//
// These are fixed-size byte arrays with hex as the canonical wire/disk
// encoding and base58 offered as a human-readable String() form.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size constants for the identifier types.
const (
	ChainIdSize = 16
	HashSize    = 32
	TxIdSize    = 32
	AddressSize = 20
)

var (
	// ErrInvalidChainId is returned when a chain id has invalid length.
	ErrInvalidChainId = errors.New("invalid chain id: must be 16 bytes")

	// ErrInvalidBlockHash is returned when a block hash has invalid length.
	ErrInvalidBlockHash = errors.New("invalid block hash: must be 32 bytes")

	// ErrInvalidTxId is returned when a transaction id has invalid length.
	ErrInvalidTxId = errors.New("invalid tx id: must be 32 bytes")

	// ErrInvalidAddress is returned when an address has invalid length.
	ErrInvalidAddress = errors.New("invalid address: must be 20 bytes")
)

// ChainId identifies a chain. Distinct chains are fully isolated across all
// per-chain collections maintained by the engine.
type ChainId [ChainIdSize]byte

// ChainIdFromHex parses a hex-encoded chain id.
func ChainIdFromHex(s string) (ChainId, error) {
	var c ChainId
	data, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("hex decode: %w", err)
	}
	if len(data) != ChainIdSize {
		return c, ErrInvalidChainId
	}
	copy(c[:], data)
	return c, nil
}

// ChainIdFromBytes creates a ChainId from a byte slice.
func ChainIdFromBytes(b []byte) (ChainId, error) {
	var c ChainId
	if len(b) != ChainIdSize {
		return c, ErrInvalidChainId
	}
	copy(c[:], b)
	return c, nil
}

// Hex returns the lowercase hex encoding, the canonical wire/disk form.
func (c ChainId) Hex() string { return hex.EncodeToString(c[:]) }

// String returns the base58-encoded representation, for logging.
func (c ChainId) String() string { return base58.Encode(c[:]) }

// IsZero returns true if the chain id is all zeros.
func (c ChainId) IsZero() bool { return c == ChainId{} }

// Bytes returns the chain id as a byte slice.
func (c ChainId) Bytes() []byte { return c[:] }

// BlockHash is a 32-byte digest uniquely identifying a block and its state
// snapshot in the blob store.
type BlockHash [HashSize]byte

// BlockHashFromHex parses a hex-encoded block hash.
func BlockHashFromHex(s string) (BlockHash, error) {
	var h BlockHash
	data, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("hex decode: %w", err)
	}
	if len(data) != HashSize {
		return h, ErrInvalidBlockHash
	}
	copy(h[:], data)
	return h, nil
}

// BlockHashFromBytes creates a BlockHash from a byte slice.
func BlockHashFromBytes(b []byte) (BlockHash, error) {
	var h BlockHash
	if len(b) != HashSize {
		return h, ErrInvalidBlockHash
	}
	copy(h[:], b)
	return h, nil
}

// Hex returns the lowercase hex encoding, the canonical wire/disk form.
func (h BlockHash) Hex() string { return hex.EncodeToString(h[:]) }

// String returns the base58-encoded representation, for logging.
func (h BlockHash) String() string { return base58.Encode(h[:]) }

// IsZero returns true if the hash is all zeros.
func (h BlockHash) IsZero() bool { return h == BlockHash{} }

// Bytes returns the hash as a byte slice.
func (h BlockHash) Bytes() []byte { return h[:] }

// TxId is a 32-byte transaction identifier, globally unique across chains.
type TxId [TxIdSize]byte

// TxIdFromHex parses a hex-encoded transaction id.
func TxIdFromHex(s string) (TxId, error) {
	var t TxId
	data, err := hex.DecodeString(s)
	if err != nil {
		return t, fmt.Errorf("hex decode: %w", err)
	}
	if len(data) != TxIdSize {
		return t, ErrInvalidTxId
	}
	copy(t[:], data)
	return t, nil
}

// TxIdFromBytes creates a TxId from a byte slice.
func TxIdFromBytes(b []byte) (TxId, error) {
	var t TxId
	if len(b) != TxIdSize {
		return t, ErrInvalidTxId
	}
	copy(t[:], b)
	return t, nil
}

// Hex returns the lowercase hex encoding, the canonical wire/disk form.
func (t TxId) Hex() string { return hex.EncodeToString(t[:]) }

// String returns the base58-encoded representation, for logging.
func (t TxId) String() string { return base58.Encode(t[:]) }

// IsZero returns true if the tx id is all zeros.
func (t TxId) IsZero() bool { return t == TxId{} }

// Bytes returns the tx id as a byte slice.
func (t TxId) Bytes() []byte { return t[:] }

// Address is a 20-byte account identifier. It appears as a key in nonce and
// state-reference records.
type Address [AddressSize]byte

// AddressFromHex parses a hex-encoded address.
func AddressFromHex(s string) (Address, error) {
	var a Address
	data, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("hex decode: %w", err)
	}
	if len(data) != AddressSize {
		return a, ErrInvalidAddress
	}
	copy(a[:], data)
	return a, nil
}

// AddressFromBytes creates an Address from a byte slice.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressSize {
		return a, ErrInvalidAddress
	}
	copy(a[:], b)
	return a, nil
}

// Hex returns the lowercase hex encoding, the canonical wire/disk form.
func (a Address) Hex() string { return hex.EncodeToString(a[:]) }

// String returns the base58-encoded representation, for logging.
func (a Address) String() string { return base58.Encode(a[:]) }

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool { return a == Address{} }

// Bytes returns the address as a byte slice.
func (a Address) Bytes() []byte { return a[:] }

// Less reports whether a sorts before other in ascending byte order, used by
// ListAddresses to return a deterministically ordered result.
func (a Address) Less(other Address) bool {
	for i := range a {
		if a[i] != other[i] {
			return a[i] < other[i]
		}
	}
	return false
}
