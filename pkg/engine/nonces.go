package engine

import (
	"encoding/binary"
	"fmt"

	"github.com/fortiblox/ledgerstore/internal/types"
	"github.com/fortiblox/ledgerstore/pkg/collections"
)

// NonceEntry is one (address, nonce) pair yielded by ListTxNonces.
type NonceEntry struct {
	Address types.Address
	Nonce   int64
}

// GetTxNonce returns the current nonce for (chain, address), or 0 if no
// record exists.
func (e *Engine) GetTxNonce(c types.ChainId, address types.Address) (int64, error) {
	var nonce int64
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(nonceBucket(c))
		if b == nil {
			return nil
		}
		v := b.Get(address.Bytes())
		if v == nil {
			return nil
		}
		nonce = int64(binary.BigEndian.Uint64(v))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("get tx nonce: %w", err)
	}
	return nonce, nil
}

// IncreaseTxNonce upserts current+delta for (chain, signer). The read of the
// current value and the upsert run inside one write transaction, so
// concurrent increases for the same (chain, address) are applied one after
// another rather than overwriting each other.
func (e *Engine) IncreaseTxNonce(c types.ChainId, signer types.Address, delta int64) error {
	err := e.db.Update(func(tx collections.Tx) error {
		b, berr := tx.CreateBucketIfNotExists(nonceBucket(c))
		if berr != nil {
			return berr
		}
		var current int64
		if v := b.Get(signer.Bytes()); v != nil {
			current = int64(binary.BigEndian.Uint64(v))
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(current+delta))
		return b.Put(signer.Bytes(), buf)
	})
	if err != nil {
		return fmt.Errorf("increase tx nonce: %w", err)
	}
	return nil
}

// ListTxNonces yields (address, nonce) for every record on chain c whose
// nonce is strictly positive.
func (e *Engine) ListTxNonces(c types.ChainId) ([]NonceEntry, error) {
	var out []NonceEntry
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(nonceBucket(c))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			addr, aerr := types.AddressFromBytes(k)
			if aerr != nil {
				continue
			}
			nonce := int64(binary.BigEndian.Uint64(v))
			if nonce <= 0 {
				continue
			}
			out = append(out, NonceEntry{Address: addr, Nonce: nonce})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list tx nonces: %w", err)
	}
	return out, nil
}
