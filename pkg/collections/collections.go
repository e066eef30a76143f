// Package collections is the indexed document-collection layer: named
// buckets with byte-string keys and values, auto-incrementing primary keys,
// and ordered cursors for range scans. It is the substrate the engine builds
// its chain index, staged-transaction queue, and nonce table on top of.
//
// Two backends implement the same DB/Tx/Bucket/Cursor surface: a BoltDB
// adapter for on-disk mode, and a from-scratch adapter for in-memory mode.
// Callers write backend-agnostic code against the interfaces in this file.
package collections

// DB is an opened collection store.
type DB interface {
	// View runs fn in a read-only transaction.
	View(fn func(Tx) error) error
	// Update runs fn in a read-write transaction. Backends serialize
	// Update calls against each other, matching BoltDB's single-writer model.
	Update(fn func(Tx) error) error
	// Close releases the store's resources.
	Close() error
}

// Tx is a transaction against a DB.
type Tx interface {
	// Bucket returns the named bucket, or nil if it does not exist.
	Bucket(name []byte) Bucket
	// CreateBucketIfNotExists returns the named bucket, creating it first
	// if needed. Valid only inside an Update transaction.
	CreateBucketIfNotExists(name []byte) (Bucket, error)
	// DeleteBucket removes the named bucket. It is not an error if the
	// bucket does not exist.
	DeleteBucket(name []byte) error
	// ForEachBucketName calls fn once per existing bucket name, in
	// ascending byte order, stopping at the first error.
	ForEachBucketName(fn func(name []byte) error) error
}

// Bucket is a single named collection of key-value pairs.
type Bucket interface {
	// Get returns the value stored under key, or nil if absent. The
	// returned slice is only valid for the lifetime of the transaction.
	Get(key []byte) []byte
	// Put stores value under key, replacing any existing value.
	Put(key, value []byte) error
	// Delete removes key. It is not an error if key does not exist.
	Delete(key []byte) error
	// NextSequence returns a bucket-scoped, monotonically increasing
	// integer suitable for use as an auto-incrementing primary key.
	NextSequence() (uint64, error)
	// Cursor returns a cursor positioned before the first key.
	Cursor() Cursor
}

// Cursor iterates a bucket's keys in ascending byte order.
type Cursor interface {
	First() (key, value []byte)
	Last() (key, value []byte)
	Next() (key, value []byte)
	Prev() (key, value []byte)
	// Seek moves to the first key greater than or equal to key.
	Seek(key []byte) (foundKey, value []byte)
}

// Options configures a DB regardless of backend.
type Options struct {
	// Journal enables the backend's write-ahead durability bookkeeping.
	// On the BoltDB backend this maps to syncing the freelist; the
	// in-memory backend ignores it, since it has nothing to journal.
	Journal bool

	// CacheSize is a hint for the backend's memory-mapped working set,
	// expressed in pages. Zero selects the backend's own default.
	CacheSize int

	// Flush forces every write transaction to be durable on commit.
	// Disabling it trades durability for throughput.
	Flush bool

	// ReadOnly opens the store without acquiring the backend's write lock.
	ReadOnly bool
}

// DefaultOptions returns durable, journaled defaults.
func DefaultOptions() Options {
	return Options{
		Journal:   true,
		CacheSize: 0,
		Flush:     true,
		ReadOnly:  false,
	}
}
