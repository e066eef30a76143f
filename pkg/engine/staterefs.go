package engine

import (
	"bytes"
	"fmt"

	"github.com/fortiblox/ledgerstore/internal/types"
	"github.com/fortiblox/ledgerstore/pkg/collections"
)

// StateRefEntry is one (blockHash, blockIndex) pair yielded by
// IterateStateReferences.
type StateRefEntry struct {
	BlockHash  types.BlockHash
	BlockIndex int64
}

const unboundedHighest = int64(1<<63 - 1)

// IterateStateReferences yields (blockHash, blockIndex) pairs for address on
// chain c within [lowestIndex, highestIndex] inclusive, in descending
// blockIndex order, up to limit records (0 meaning unbounded). Defaults:
// lowestIndex 0, highestIndex unbounded (pass a negative highestIndex to
// select the default, since 0 is itself a valid block index), limit
// unbounded.
func (e *Engine) IterateStateReferences(c types.ChainId, address types.Address, highestIndex, lowestIndex, limit int64) ([]StateRefEntry, error) {
	if highestIndex < 0 {
		highestIndex = unboundedHighest
	}
	if highestIndex < lowestIndex {
		return nil, argErr("highestIndex", "must be >= lowestIndex")
	}

	var out []StateRefEntry
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(staterefByAddrBucket(c))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		target := staterefByAddrKey(address, highestIndex)
		k, v := cur.Seek(target)
		if k == nil || !bytes.Equal(k, target) {
			k, v = cur.Prev()
		}
		var count int64
		for k != nil {
			if !bytes.HasPrefix(k, address.Bytes()) {
				break
			}
			idx := int64(parseBE64(k[types.AddressSize:]))
			if idx < lowestIndex {
				break
			}
			if idx <= highestIndex {
				h, herr := types.BlockHashFromBytes(v)
				if herr != nil {
					return herr
				}
				out = append(out, StateRefEntry{BlockHash: h, BlockIndex: idx})
				count++
				if limit > 0 && count >= limit {
					break
				}
			}
			k, v = cur.Prev()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate state references: %w", err)
	}
	return out, nil
}

// StoreStateReference inserts, for each address not already having a record
// for blockHash, a new state-ref entry. Serialized per-chain to close the
// pre-query-then-insert race that a bare bucket check-then-put would allow
// under concurrent callers.
func (e *Engine) StoreStateReference(c types.ChainId, addresses []types.Address, blockHash types.BlockHash, blockIndex int64) error {
	mu := e.staterefMutex(c.Hex())
	mu.Lock()
	defer mu.Unlock()

	err := e.db.Update(func(tx collections.Tx) error {
		primary, perr := tx.CreateBucketIfNotExists(staterefBucket(c))
		if perr != nil {
			return perr
		}
		byAddr, aerr := tx.CreateBucketIfNotExists(staterefByAddrBucket(c))
		if aerr != nil {
			return aerr
		}
		byBlock, berr := tx.CreateBucketIfNotExists(staterefByBlockBucket(c))
		if berr != nil {
			return berr
		}

		for _, addr := range addresses {
			ck := staterefCompositeKey(addr, blockHash)
			if primary.Get(ck) != nil {
				continue
			}
			rec := staterefRecord{Address: addr, BlockIndex: blockIndex, BlockHash: blockHash}
			if err := primary.Put(ck, encodeStaterefRecord(rec)); err != nil {
				return err
			}
			if err := byAddr.Put(staterefByAddrKey(addr, blockIndex), blockHash.Bytes()); err != nil {
				return err
			}
			if err := byBlock.Put(staterefByBlockKey(blockIndex, addr, blockHash), []byte{}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store state reference: %w", err)
	}
	return nil
}

// ForkStateReferences bulk-copies from src into dst every state-ref with
// blockIndex <= branchIndex, maintaining the same secondary indexes on dst.
// If, after copying, dst holds no records and src's chain index is empty,
// it fails as a not-found source chain.
func (e *Engine) ForkStateReferences(src, dst types.ChainId, branchIndex int64) error {
	err := e.db.Update(func(tx collections.Tx) error {
		srcByBlock := tx.Bucket(staterefByBlockBucket(src))
		dstPrimary, perr := tx.CreateBucketIfNotExists(staterefBucket(dst))
		if perr != nil {
			return perr
		}
		dstByAddr, aerr := tx.CreateBucketIfNotExists(staterefByAddrBucket(dst))
		if aerr != nil {
			return aerr
		}
		dstByBlock, berr := tx.CreateBucketIfNotExists(staterefByBlockBucket(dst))
		if berr != nil {
			return berr
		}

		if srcByBlock != nil {
			cur := srcByBlock.Cursor()
			for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
				idx := int64(parseBE64(k[:8]))
				if idx > branchIndex {
					break
				}
				addr, aerr := types.AddressFromBytes(k[8 : 8+types.AddressSize])
				if aerr != nil {
					return aerr
				}
				h, herr := types.BlockHashFromBytes(k[8+types.AddressSize:])
				if herr != nil {
					return herr
				}

				ck := staterefCompositeKey(addr, h)
				rec := staterefRecord{Address: addr, BlockIndex: idx, BlockHash: h}
				if err := dstPrimary.Put(ck, encodeStaterefRecord(rec)); err != nil {
					return err
				}
				if err := dstByAddr.Put(staterefByAddrKey(addr, idx), h.Bytes()); err != nil {
					return err
				}
				if err := dstByBlock.Put(staterefByBlockKey(idx, addr, h), []byte{}); err != nil {
					return err
				}
			}
		}

		dstEmpty := true
		dc := dstPrimary.Cursor()
		if k, _ := dc.First(); k != nil {
			dstEmpty = false
		}
		if !dstEmpty {
			return nil
		}

		srcIndex := tx.Bucket(indexBucket(src))
		srcIndexEmpty := true
		if srcIndex != nil {
			if k, _ := srcIndex.Cursor().First(); k != nil {
				srcIndexEmpty = false
			}
		}
		if srcIndexEmpty {
			return argErr("src", "chain not found")
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("fork state references: %w", err)
	}
	return nil
}

// ListAddresses returns the distinct addresses appearing in any state-ref
// of chain c, in ascending address order.
func (e *Engine) ListAddresses(c types.ChainId) ([]types.Address, error) {
	var out []types.Address
	err := e.db.View(func(tx collections.Tx) error {
		b := tx.Bucket(staterefByAddrBucket(c))
		if b == nil {
			return nil
		}
		cur := b.Cursor()
		var last types.Address
		haveLast := false
		for k, _ := cur.First(); k != nil; k, _ = cur.Next() {
			addr, err := types.AddressFromBytes(k[:types.AddressSize])
			if err != nil {
				return err
			}
			if haveLast && addr == last {
				continue
			}
			out = append(out, addr)
			last, haveLast = addr, true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return out, nil
}
