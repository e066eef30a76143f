// Package engine is the storage engine facade: the single stateful object a
// node holds for the lifetime of one storage location, composing the blob
// store, transaction store, and indexed collections behind roughly forty
// operations grouped by domain (chains, indices, transactions, blocks,
// states, state-references, nonces, staging).
package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fortiblox/ledgerstore/internal/vfs"
	"github.com/fortiblox/ledgerstore/pkg/blobstore"
	"github.com/fortiblox/ledgerstore/pkg/collections"
	"github.com/fortiblox/ledgerstore/pkg/txstore"
)

// Filenames within an on-disk storage root.
const (
	dbFileName    = "index.ldb"
	blobsDirName  = "blobs"
	txDirName     = "tx"
)

// Options configures both the document database and the blob store at open.
type Options struct {
	// Journal, CacheSize, Flush and ReadOnly configure the document
	// database (index.ldb). See collections.Options for their meaning.
	Journal   bool
	CacheSize int
	Flush     bool
	ReadOnly  bool

	// SyncWrites and ValueLogFileSize configure the blob store.
	SyncWrites       bool
	ValueLogFileSize int64
}

// DefaultOptions returns durable on-disk defaults.
func DefaultOptions() Options {
	return Options{
		Journal:          true,
		CacheSize:        50000,
		Flush:            true,
		ReadOnly:         false,
		SyncWrites:       false,
		ValueLogFileSize: 256 << 20,
	}
}

func (o Options) collectionsOptions() collections.Options {
	return collections.Options{
		Journal:   o.Journal,
		CacheSize: o.CacheSize,
		Flush:     o.Flush,
		ReadOnly:  o.ReadOnly,
	}
}

// Engine is the storage engine facade. The zero value is not usable; obtain
// one via Open or OpenMemory.
type Engine struct {
	db    collections.DB
	blobs *blobstore.Store
	txs   *txstore.Store

	blockLock blockLock

	staterefMu   sync.Mutex
	staterefLock map[string]*sync.Mutex

	memFS *vfs.MemFS

	closed atomic.Bool
}

// Open opens (creating if absent) an on-disk storage location at path.
func Open(path string, opts Options) (*Engine, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	db, err := collections.Open(filepath.Join(path, dbFileName), opts.collectionsOptions())
	if err != nil {
		return nil, fmt.Errorf("open document database: %w", err)
	}

	blobCfg := blobstore.DefaultConfig(filepath.Join(path, blobsDirName))
	blobCfg.SyncWrites = opts.SyncWrites
	if opts.ValueLogFileSize > 0 {
		blobCfg.ValueLogFileSize = opts.ValueLogFileSize
	}
	blobs, err := blobstore.Open(blobCfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	fsys := vfs.NewOSFS(filepath.Join(path, txDirName))
	if err := os.MkdirAll(filepath.Join(path, txDirName), 0o755); err != nil {
		blobs.Close()
		db.Close()
		return nil, fmt.Errorf("create transaction root: %w", err)
	}
	txs := txstore.New(fsys)
	if _, err := txs.Recount(); err != nil {
		blobs.Close()
		db.Close()
		return nil, fmt.Errorf("count existing transactions: %w", err)
	}

	return newEngine(db, blobs, txs, nil), nil
}

// OpenMemory opens an in-memory storage location. No files are created and
// Close leaves nothing behind on disk.
func OpenMemory(opts Options) (*Engine, error) {
	db, err := collections.OpenMemory(opts.collectionsOptions())
	if err != nil {
		return nil, fmt.Errorf("open document database: %w", err)
	}

	blobs, err := blobstore.Open(blobstore.DefaultMemoryConfig())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	memFS := vfs.NewMemFS()
	txs := txstore.New(memFS)

	return newEngine(db, blobs, txs, memFS), nil
}

func newEngine(db collections.DB, blobs *blobstore.Store, txs *txstore.Store, memFS *vfs.MemFS) *Engine {
	return &Engine{
		db:           db,
		blobs:        blobs,
		txs:          txs,
		memFS:        memFS,
		staterefLock: make(map[string]*sync.Mutex),
	}
}

// Close releases the document database, the blob store, and (for an
// in-memory engine) drops the reference to the in-memory filesystem so it
// can be garbage-collected.
func (e *Engine) Close() error {
	if e.closed.Swap(true) {
		return nil
	}
	var firstErr error
	if err := e.db.Close(); err != nil {
		firstErr = fmt.Errorf("close document database: %w", err)
	}
	if err := e.blobs.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close blob store: %w", err)
	}
	e.memFS = nil
	return firstErr
}

// staterefMutex returns the per-chain mutex serializing StoreStateReference,
// closing the pre-query-then-bulk-insert race documented for that operation.
func (e *Engine) staterefMutex(hex string) *sync.Mutex {
	e.staterefMu.Lock()
	defer e.staterefMu.Unlock()
	m, ok := e.staterefLock[hex]
	if !ok {
		m = &sync.Mutex{}
		e.staterefLock[hex] = m
	}
	return m
}

// blockLock is an upgradable readers-writer lock guarding the block-blob
// surface. A dedicated upgrade mutex serializes read-to-write transitions so
// at most one goroutine is upgrading at a time, avoiding the livelock a
// plain sync.RWMutex has no defense against.
type blockLock struct {
	mu        sync.RWMutex
	upgradeMu sync.Mutex
}

func (l *blockLock) RLock()   { l.mu.RLock() }
func (l *blockLock) RUnlock() { l.mu.RUnlock() }
func (l *blockLock) Lock()    { l.mu.Lock() }
func (l *blockLock) Unlock()  { l.mu.Unlock() }

// Upgrade transitions the calling goroutine's held read lock to the write
// lock. Callers must hold the read lock before calling Upgrade, and must
// call Downgrade (not Unlock) to return to holding the read lock.
func (l *blockLock) Upgrade() {
	l.mu.RUnlock()
	l.upgradeMu.Lock()
	l.mu.Lock()
}

// Downgrade reverses Upgrade, returning the calling goroutine to holding
// the read lock it started with.
func (l *blockLock) Downgrade() {
	l.mu.Unlock()
	l.mu.RLock()
	l.upgradeMu.Unlock()
}
