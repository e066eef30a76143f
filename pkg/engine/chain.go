package engine

import (
	"fmt"

	"github.com/fortiblox/ledgerstore/internal/types"
	"github.com/fortiblox/ledgerstore/pkg/collections"
)

// ListChainIds returns every ChainId that has ever had an index collection
// created, recovered by scanning bucket names for the index_ prefix.
func (e *Engine) ListChainIds() ([]types.ChainId, error) {
	var out []types.ChainId
	err := e.db.View(func(tx collections.Tx) error {
		return tx.ForEachBucketName(func(name []byte) error {
			if c, ok := chainIdFromIndexBucket(name); ok {
				out = append(out, c)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list chain ids: %w", err)
	}
	return out, nil
}

// DeleteChainId drops the index, state-ref (including its secondary-index
// buckets), and nonce collections for c. Blocks, transactions, and state
// snapshots are shared content-addressed data and are left untouched.
func (e *Engine) DeleteChainId(c types.ChainId) error {
	err := e.db.Update(func(tx collections.Tx) error {
		for _, name := range [][]byte{
			indexBucket(c),
			staterefBucket(c),
			staterefByAddrBucket(c),
			staterefByBlockBucket(c),
			nonceBucket(c),
		} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete chain %s: %w", c, err)
	}
	return nil
}

// GetCanonicalChainId reads the singleton canonical-chain pointer.
func (e *Engine) GetCanonicalChainId() (types.ChainId, bool, error) {
	var (
		id types.ChainId
		ok bool
	)
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket([]byte(canonBucketName))
		if b == nil {
			return nil
		}
		v := b.Get(canonKey)
		if v == nil {
			return nil
		}
		parsed, perr := types.ChainIdFromBytes(v)
		if perr != nil {
			return perr
		}
		id, ok = parsed, true
		return nil
	})
	if err != nil {
		return types.ChainId{}, false, fmt.Errorf("get canonical chain id: %w", err)
	}
	return id, ok, nil
}

// SetCanonicalChainId upserts the singleton canonical-chain pointer.
func (e *Engine) SetCanonicalChainId(c types.ChainId) error {
	err := e.db.Update(func(tx collections.Tx) error {
		b, berr := tx.CreateBucketIfNotExists([]byte(canonBucketName))
		if berr != nil {
			return berr
		}
		return b.Put(canonKey, c.Bytes())
	})
	if err != nil {
		return fmt.Errorf("set canonical chain id: %w", err)
	}
	return nil
}
