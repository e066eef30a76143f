// Package blobstore provides the content-addressed key-value surface used
// for block bodies and per-block state snapshots.
//
// Two namespaces share one BadgerDB instance: "block" for raw block
// payloads and "state" for per-block state snapshots. Put is idempotent and
// first-writer-wins, appropriate for immutable block bodies; Replace is an
// unconditional overwrite, used only by the state namespace so a recomputed
// snapshot can always replace the previous one.
package blobstore

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
)

// Namespace names recognized by the store.
const (
	NamespaceBlock = "block"
	NamespaceState = "state"
)

// ErrClosed is returned when operating on a closed store.
var ErrClosed = errors.New("blobstore: closed")

// Config holds blob store configuration.
type Config struct {
	// Path is the directory for the BadgerDB files. Ignored if InMemory.
	Path string

	// InMemory selects Badger's in-memory mode; no files are written.
	InMemory bool

	// SyncWrites trades durability for throughput when false.
	SyncWrites bool

	// ValueLogFileSize is the size of each Badger value log file.
	ValueLogFileSize int64
}

// DefaultConfig returns the default on-disk configuration for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:             path,
		InMemory:         false,
		SyncWrites:       false,
		ValueLogFileSize: 256 << 20,
	}
}

// DefaultMemoryConfig returns the default in-memory configuration.
func DefaultMemoryConfig() Config {
	return Config{InMemory: true, SyncWrites: false}
}

// Store is the blob store, backed by BadgerDB.
type Store struct {
	db     *badger.DB
	closed atomic.Bool
}

// Open creates or opens a blob store per cfg.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithLogger(nil)

	if cfg.ValueLogFileSize > 0 {
		opts = opts.WithValueLogFileSize(cfg.ValueLogFileSize)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	return &Store{db: db}, nil
}

func key(namespace, hash string) []byte {
	return []byte(namespace + "/" + hash)
}

// Put writes data under namespace/hash unless an entry already exists, in
// which case the call is a no-op that still reports success.
func (s *Store) Put(namespace, hash string, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key(namespace, hash))
		if err == nil {
			return nil // already present: first-writer-wins no-op.
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key(namespace, hash), data)
	})
}

// Replace unconditionally overwrites namespace/hash with data.
func (s *Store) Replace(namespace, hash string, data []byte) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(namespace, hash), data)
	})
}

// Get returns the bytes stored under namespace/hash, or ok=false if absent.
func (s *Store) Get(namespace, hash string) (data []byte, ok bool, err error) {
	if s.closed.Load() {
		return nil, false, ErrClosed
	}

	err = s.db.View(func(txn *badger.Txn) error {
		item, gerr := txn.Get(key(namespace, hash))
		if errors.Is(gerr, badger.ErrKeyNotFound) {
			return nil
		}
		if gerr != nil {
			return gerr
		}
		ok = true
		return item.Value(func(val []byte) error {
			data = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return data, ok, nil
}

// Delete removes namespace/hash. It reports whether an entry was present.
func (s *Store) Delete(namespace, hash string) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}

	var existed bool
	err := s.db.Update(func(txn *badger.Txn) error {
		_, gerr := txn.Get(key(namespace, hash))
		if errors.Is(gerr, badger.ErrKeyNotFound) {
			return nil
		}
		if gerr != nil {
			return gerr
		}
		existed = true
		return txn.Delete(key(namespace, hash))
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

// List returns a lazy iterator over every hash stored in namespace. The
// caller must Close the iterator when done.
func (s *Store) List(namespace string) (*HashIterator, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	txn := s.db.NewTransaction(false)
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)

	prefix := []byte(namespace + "/")
	it.Seek(prefix)

	return &HashIterator{txn: txn, it: it, prefix: prefix}, nil
}

// Count returns the number of entries in namespace.
func (s *Store) Count(namespace string) (int, error) {
	it, err := s.List(namespace)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	n := 0
	for it.Next() {
		n++
	}
	return n, it.Err()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// HashIterator lazily yields hash strings from one namespace.
type HashIterator struct {
	txn     *badger.Txn
	it      *badger.Iterator
	prefix  []byte
	started bool
	current string
	err     error
	closed  bool
}

// Next advances the iterator. It returns false at end of sequence or on
// error; check Err after a false return to distinguish the two.
func (h *HashIterator) Next() bool {
	if h.closed || h.err != nil {
		return false
	}
	if h.started {
		h.it.Next()
	}
	h.started = true

	if !h.it.ValidForPrefix(h.prefix) {
		return false
	}

	key := h.it.Item().KeyCopy(nil)
	h.current = string(bytes.TrimPrefix(key, h.prefix))
	return true
}

// Hash returns the hash string produced by the most recent Next call.
func (h *HashIterator) Hash() string { return h.current }

// Err returns the first error encountered during iteration, if any.
func (h *HashIterator) Err() error { return h.err }

// Close releases the iterator's underlying transaction. Safe to call
// multiple times.
func (h *HashIterator) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.it.Close()
	h.txn.Discard()
	return nil
}
