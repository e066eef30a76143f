package engine

import (
	"fmt"

	"github.com/fortiblox/ledgerstore/internal/types"
	"github.com/fortiblox/ledgerstore/pkg/collections"
)

// PutTransaction serializes and atomically writes tx. Re-putting identical
// content for the same TxId is a no-op.
func (e *Engine) PutTransaction(tx types.Transaction) error {
	if err := e.txs.Put(tx); err != nil {
		return fmt.Errorf("put transaction: %w", err)
	}
	return nil
}

// GetTransaction returns the raw serialized bytes for id, or ok=false if
// absent.
func (e *Engine) GetTransaction(id types.TxId) ([]byte, bool, error) {
	data, ok, err := e.txs.Get(id)
	if err != nil {
		return nil, false, fmt.Errorf("get transaction: %w", err)
	}
	return data, ok, nil
}

// DeleteTransaction removes id, reporting whether it was present.
func (e *Engine) DeleteTransaction(id types.TxId) (bool, error) {
	ok, err := e.txs.Delete(id)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	return ok, nil
}

// CountTransactions returns the cached transaction count. The cache is
// maintained incrementally by PutTransaction and DeleteTransaction, and
// primed by a full directory walk the one time an on-disk engine is opened.
func (e *Engine) CountTransactions() int64 {
	return e.txs.Count()
}

// IterateTransactionIds returns every TxId currently in the store.
func (e *Engine) IterateTransactionIds() ([]types.TxId, error) {
	it, err := e.txs.Iterate()
	if err != nil {
		return nil, fmt.Errorf("iterate transaction ids: %w", err)
	}
	var out []types.TxId
	for it.Next() {
		out = append(out, it.TxId())
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction ids: %w", err)
	}
	return out, nil
}

// StageTransactionIds adds each id in ids to the staged (mempool) set,
// skipping any already staged.
func (e *Engine) StageTransactionIds(ids []types.TxId) error {
	err := e.db.Update(func(tx collections.Tx) error {
		staged, serr := tx.CreateBucketIfNotExists([]byte(stagedBucketName))
		if serr != nil {
			return serr
		}
		byTxId, ierr := tx.CreateBucketIfNotExists([]byte(stagedByTxIdBucket))
		if ierr != nil {
			return ierr
		}
		for _, id := range ids {
			if byTxId.Get(id.Bytes()) != nil {
				continue
			}
			seq, serr := staged.NextSequence()
			if serr != nil {
				return serr
			}
			key := be64(seq)
			if err := staged.Put(key, id.Bytes()); err != nil {
				return err
			}
			if err := byTxId.Put(id.Bytes(), key); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("stage transaction ids: %w", err)
	}
	return nil
}

// UnstageTransactionIds removes each id in ids from the staged set.
func (e *Engine) UnstageTransactionIds(ids []types.TxId) error {
	err := e.db.Update(func(tx collections.Tx) error {
		staged := tx.Bucket([]byte(stagedBucketName))
		byTxId := tx.Bucket([]byte(stagedByTxIdBucket))
		if staged == nil || byTxId == nil {
			return nil
		}
		for _, id := range ids {
			key := byTxId.Get(id.Bytes())
			if key == nil {
				continue
			}
			if err := staged.Delete(append([]byte(nil), key...)); err != nil {
				return err
			}
			if err := byTxId.Delete(id.Bytes()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unstage transaction ids: %w", err)
	}
	return nil
}

// IterateStagedTransactionIds returns every currently staged TxId, each
// appearing at most once.
func (e *Engine) IterateStagedTransactionIds() ([]types.TxId, error) {
	var out []types.TxId
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket([]byte(stagedBucketName))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		seen := make(map[[types.TxIdSize]byte]bool)
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			id, err := types.TxIdFromBytes(v)
			if err != nil {
				continue
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate staged transaction ids: %w", err)
	}
	return out, nil
}
