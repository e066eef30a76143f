package engine

import (
	"bytes"
	"fmt"

	"github.com/fortiblox/ledgerstore/internal/types"
	"github.com/fortiblox/ledgerstore/pkg/collections"
)

// CountIndex returns the number of blocks recorded in c's chain order.
func (e *Engine) CountIndex(c types.ChainId) (int64, error) {
	var n int64
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(indexBucket(c))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count index: %w", err)
	}
	return n, nil
}

// IndexBlockHash returns the block hash at chain position i. A negative i
// is interpreted modulo the chain length: the effective index is i+count;
// if still negative, the result is absent.
func (e *Engine) IndexBlockHash(c types.ChainId, i int64) (types.BlockHash, bool, error) {
	var (
		hash types.BlockHash
		ok   bool
	)
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(indexBucket(c))
		if b == nil {
			return nil
		}
		if i < 0 {
			count, cerr := countBucket(b)
			if cerr != nil {
				return cerr
			}
			i += count
			if i < 0 {
				return nil
			}
		}
		v := b.Get(be64(uint64(i + 1)))
		if v == nil {
			return nil
		}
		h, herr := types.BlockHashFromBytes(v)
		if herr != nil {
			return herr
		}
		hash, ok = h, true
		return nil
	})
	if err != nil {
		return types.BlockHash{}, false, fmt.Errorf("index block hash: %w", err)
	}
	return hash, ok, nil
}

func countBucket(b collections.Bucket) (int64, error) {
	var n int64
	cur := b.Cursor()
	for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
		n++
	}
	return n, nil
}

// IterateIndexes yields block hashes for c in chain order, skipping offset
// entries and yielding at most limit (0 meaning unbounded).
func (e *Engine) IterateIndexes(c types.ChainId, offset, limit int64) ([]types.BlockHash, error) {
	var out []types.BlockHash
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(indexBucket(c))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		var skipped, yielded int64
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && yielded >= limit {
				break
			}
			h, herr := types.BlockHashFromBytes(v)
			if herr != nil {
				return herr
			}
			out = append(out, h)
			yielded++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}
	return out, nil
}

// AppendIndex records h at the next chain position and returns the
// zero-based height at which it was placed.
func (e *Engine) AppendIndex(c types.ChainId, h types.BlockHash) (int64, error) {
	var height int64
	err := e.db.Update(func(tx collections.Tx) error {
		b, berr := tx.CreateBucketIfNotExists(indexBucket(c))
		if berr != nil {
			return berr
		}
		id, serr := b.NextSequence()
		if serr != nil {
			return serr
		}
		if err := b.Put(be64(id), h.Bytes()); err != nil {
			return err
		}
		height = int64(id) - 1
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("append index: %w", err)
	}
	return height, nil
}

// DeleteIndex removes any index record for hash h, reporting whether one
// was found.
func (e *Engine) DeleteIndex(c types.ChainId, h types.BlockHash) (bool, error) {
	var deleted bool
	err := e.db.Update(func(tx collections.Tx) error {
		b := tx.Bucket(indexBucket(c))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		var toDelete [][]byte
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			if bytes.Equal(v, h.Bytes()) {
				toDelete = append(toDelete, append([]byte(nil), k...))
			}
		}
		for _, k := range toDelete {
			if err := b.Delete(k); err != nil {
				return err
			}
			deleted = true
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete index: %w", err)
	}
	return deleted, nil
}

// ForkBlockIndexes copies from src into dst every index record encountered
// in order up to but not including the first occurrence of branchPoint,
// then appends branchPoint. The result is that dst's chain equals src's
// prefix ending at branchPoint.
func (e *Engine) ForkBlockIndexes(src, dst types.ChainId, branchPoint types.BlockHash) error {
	var prefix []types.BlockHash
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(indexBucket(src))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			h, herr := types.BlockHashFromBytes(v)
			if herr != nil {
				return herr
			}
			if h == branchPoint {
				break
			}
			prefix = append(prefix, h)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fork block indexes: read source: %w", err)
	}

	for _, h := range prefix {
		if _, err := e.AppendIndex(dst, h); err != nil {
			return fmt.Errorf("fork block indexes: copy prefix: %w", err)
		}
	}
	if _, err := e.AppendIndex(dst, branchPoint); err != nil {
		return fmt.Errorf("fork block indexes: append branch point: %w", err)
	}
	return nil
}
