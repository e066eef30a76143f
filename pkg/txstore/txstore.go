// Package txstore is the filesystem-backed transaction store: one file per
// transaction at <2-hex-shard>/<62-hex-remainder> under a store root, written
// atomically via temp-file-and-rename. The same code path serves both the
// on-disk engine (backed by an OS-rooted directory) and the in-memory engine
// (backed by an in-memory tree), because both substrates implement the same
// small vfs.FS capability set.
package txstore

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/fortiblox/ledgerstore/internal/types"
	"github.com/fortiblox/ledgerstore/internal/vfs"
)

const (
	shardLen     = 2
	remainderLen = 62
)

// Store is the transaction store.
type Store struct {
	fs    vfs.FS
	count atomic.Int64
}

// New wraps fsys as a transaction store. Call Recount once after opening an
// existing on-disk store so the cached count reflects prior contents.
func New(fsys vfs.FS) *Store {
	return &Store{fs: fsys}
}

func shardPath(id types.TxId) (dir, name, full string) {
	h := id.Hex()
	dir = h[:shardLen]
	name = h[shardLen:]
	full = dir + "/" + name
	return
}

// Put serializes tx and writes it atomically. Re-putting identical content
// for the same TxId leaves the stored bytes and the cached count unchanged:
// the rename replaces the destination with the same content. If the rename
// fails while the destination already holds data of the same size, the
// temp file is discarded and the call reports success.
func (s *Store) Put(tx types.Transaction) error {
	data, err := tx.Marshal()
	if err != nil {
		return fmt.Errorf("marshal transaction: %w", err)
	}

	dir, _, full := shardPath(tx.TxId())
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create shard dir: %w", err)
	}

	suffix, err := s.fs.TempName()
	if err != nil {
		return fmt.Errorf("generate temp name: %w", err)
	}
	tmpPath := dir + "/." + suffix + ".tmp"

	wrote := false
	defer func() {
		if !wrote {
			_ = s.fs.Remove(tmpPath)
		}
	}()

	if err := s.fs.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	alreadyExisted, err := s.fs.Exists(full)
	if err != nil {
		return fmt.Errorf("stat destination: %w", err)
	}

	if err := s.fs.Rename(tmpPath, full); err != nil {
		size, sizeErr := s.fs.Size(full)
		if sizeErr == nil && size == int64(len(data)) {
			// A concurrent writer committed identical content first.
			wrote = true
			return nil
		}
		return fmt.Errorf("rename temp file: %w", err)
	}
	wrote = true

	if !alreadyExisted {
		s.count.Add(1)
	}
	return nil
}

// Get returns the raw serialized bytes for id, or ok=false if absent.
func (s *Store) Get(id types.TxId) (data []byte, ok bool, err error) {
	_, _, full := shardPath(id)
	data, err = s.fs.ReadFile(full)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) || errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

// Delete removes id's file, reporting whether it was present.
func (s *Store) Delete(id types.TxId) (bool, error) {
	_, _, full := shardPath(id)
	existed, err := s.fs.Exists(full)
	if err != nil {
		return false, err
	}
	if !existed {
		return false, nil
	}
	if err := s.fs.Remove(full); err != nil {
		return false, err
	}
	s.count.Add(-1)
	return true, nil
}

// Count returns the cached transaction count, maintained incrementally by
// Put and Delete. Call Recount after opening an existing on-disk store.
func (s *Store) Count() int64 {
	return s.count.Load()
}

// Recount performs a full directory walk and resets the cached count. This
// is the O(N) fallback for reestablishing an accurate count; it should only
// be needed once, right after opening an existing store.
func (s *Store) Recount() (int64, error) {
	ids, err := s.scan()
	if err != nil {
		return 0, err
	}
	n := int64(len(ids))
	s.count.Store(n)
	return n, nil
}

// Iterate returns an iterator over every valid TxId in the store. The whole
// directory tree is scanned once, before Iterate returns; the iterator then
// steps through that result. Invalid directory entries (wrong-length shard names, stray temp
// files, non-hex names) are silently skipped, since they are always the
// residue of a partial write left behind by a crashed Put.
func (s *Store) Iterate() (*Iterator, error) {
	ids, err := s.scan()
	if err != nil {
		return nil, err
	}
	return &Iterator{ids: ids, idx: -1}, nil
}

func (s *Store) scan() ([]types.TxId, error) {
	shardEntries, err := s.fs.ReadDir("")
	if err != nil {
		return nil, fmt.Errorf("read store root: %w", err)
	}

	var ids []types.TxId
	for _, se := range shardEntries {
		if !se.IsDir || len(se.Name) != shardLen {
			continue
		}
		if _, err := hex.DecodeString(se.Name); err != nil {
			continue
		}

		fileEntries, err := s.fs.ReadDir(se.Name)
		if err != nil {
			return nil, fmt.Errorf("read shard %s: %w", se.Name, err)
		}
		for _, fe := range fileEntries {
			if fe.IsDir || len(fe.Name) != remainderLen {
				continue
			}
			id, err := types.TxIdFromHex(se.Name + fe.Name)
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Iterator lazily yields TxId values produced by a completed directory scan.
type Iterator struct {
	ids []types.TxId
	idx int
}

// Next advances the iterator, returning false once exhausted.
func (it *Iterator) Next() bool {
	it.idx++
	return it.idx < len(it.ids)
}

// TxId returns the value produced by the most recent Next call.
func (it *Iterator) TxId() types.TxId {
	return it.ids[it.idx]
}

// Err always returns nil; scan errors surface from Iterate itself.
func (it *Iterator) Err() error {
	return nil
}
