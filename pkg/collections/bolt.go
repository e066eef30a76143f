package collections

import (
	"fmt"

	bolt "go.etcd.io/bbolt"
)

// boltPageSize mirrors BoltDB's own default OS page size assumption, used to
// translate Options.CacheSize (in pages) into an initial mmap size hint.
const boltPageSize = 4096

// Open opens (creating if necessary) a BoltDB-backed store at path.
func Open(path string, opts Options) (DB, error) {
	bopts := &bolt.Options{
		NoSync:         !opts.Flush,
		NoFreelistSync: !opts.Journal,
		ReadOnly:       opts.ReadOnly,
	}
	if opts.CacheSize > 0 {
		bopts.InitialMmapSize = opts.CacheSize * boltPageSize
	}

	db, err := bolt.Open(path, 0o600, bopts)
	if err != nil {
		return nil, fmt.Errorf("open bolt store: %w", err)
	}
	return &boltDB{db: db}, nil
}

type boltDB struct {
	db *bolt.DB
}

func (b *boltDB) View(fn func(Tx) error) error {
	return b.db.View(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (b *boltDB) Update(fn func(Tx) error) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

func (b *boltDB) Close() error {
	return b.db.Close()
}

type boltTx struct {
	tx *bolt.Tx
}

func (t *boltTx) Bucket(name []byte) Bucket {
	b := t.tx.Bucket(name)
	if b == nil {
		return nil
	}
	return &boltBucket{b: b}
}

func (t *boltTx) CreateBucketIfNotExists(name []byte) (Bucket, error) {
	b, err := t.tx.CreateBucketIfNotExists(name)
	if err != nil {
		return nil, fmt.Errorf("create bucket %q: %w", name, err)
	}
	return &boltBucket{b: b}, nil
}

func (t *boltTx) DeleteBucket(name []byte) error {
	err := t.tx.DeleteBucket(name)
	if err != nil && err != bolt.ErrBucketNotFound {
		return fmt.Errorf("delete bucket %q: %w", name, err)
	}
	return nil
}

func (t *boltTx) ForEachBucketName(fn func(name []byte) error) error {
	return t.tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
		return fn(name)
	})
}

type boltBucket struct {
	b *bolt.Bucket
}

func (b *boltBucket) Get(key []byte) []byte { return b.b.Get(key) }

func (b *boltBucket) Put(key, value []byte) error { return b.b.Put(key, value) }

func (b *boltBucket) Delete(key []byte) error { return b.b.Delete(key) }

func (b *boltBucket) NextSequence() (uint64, error) { return b.b.NextSequence() }

func (b *boltBucket) Cursor() Cursor { return &boltCursor{c: b.b.Cursor()} }

type boltCursor struct {
	c *bolt.Cursor
}

func (c *boltCursor) First() ([]byte, []byte)          { return c.c.First() }
func (c *boltCursor) Last() ([]byte, []byte)           { return c.c.Last() }
func (c *boltCursor) Next() ([]byte, []byte)           { return c.c.Next() }
func (c *boltCursor) Prev() ([]byte, []byte)           { return c.c.Prev() }
func (c *boltCursor) Seek(key []byte) ([]byte, []byte) { return c.c.Seek(key) }

var _ DB = (*boltDB)(nil)
