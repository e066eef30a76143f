package collections

import (
	"bytes"
	"sort"
	"sync"
)

// OpenMemory returns a store that never touches disk. opts is accepted for
// symmetry with Open but otherwise ignored: there is nothing to journal or
// mmap for a map-backed store.
func OpenMemory(_ Options) (DB, error) {
	return &memDB{buckets: make(map[string]*memBucket)}, nil
}

type memDB struct {
	mu      sync.RWMutex
	buckets map[string]*memBucket
}

func (m *memDB) View(fn func(Tx) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memTx{db: m})
}

func (m *memDB) Update(fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{db: m})
}

func (m *memDB) Close() error { return nil }

type memTx struct {
	db *memDB
}

func (t *memTx) Bucket(name []byte) Bucket {
	b, ok := t.db.buckets[string(name)]
	if !ok {
		return nil
	}
	return b
}

func (t *memTx) CreateBucketIfNotExists(name []byte) (Bucket, error) {
	key := string(name)
	b, ok := t.db.buckets[key]
	if !ok {
		b = &memBucket{vals: make(map[string][]byte)}
		t.db.buckets[key] = b
	}
	return b, nil
}

func (t *memTx) DeleteBucket(name []byte) error {
	delete(t.db.buckets, string(name))
	return nil
}

func (t *memTx) ForEachBucketName(fn func(name []byte) error) error {
	names := make([]string, 0, len(t.db.buckets))
	for n := range t.db.buckets {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := fn([]byte(n)); err != nil {
			return err
		}
	}
	return nil
}

// memBucket keeps keys sorted explicitly rather than relying on Go's map
// iteration order, so Cursor can offer the same ascending-order guarantee
// BoltDB gives for free.
type memBucket struct {
	keys [][]byte
	vals map[string][]byte
	seq  uint64
}

func (b *memBucket) search(key []byte) int {
	return sort.Search(len(b.keys), func(i int) bool {
		return bytes.Compare(b.keys[i], key) >= 0
	})
}

func (b *memBucket) Get(key []byte) []byte {
	return b.vals[string(key)]
}

func (b *memBucket) Put(key, value []byte) error {
	k := append([]byte(nil), key...)
	v := append([]byte(nil), value...)
	if _, exists := b.vals[string(k)]; !exists {
		i := b.search(k)
		b.keys = append(b.keys, nil)
		copy(b.keys[i+1:], b.keys[i:])
		b.keys[i] = k
	}
	b.vals[string(k)] = v
	return nil
}

func (b *memBucket) Delete(key []byte) error {
	ks := string(key)
	if _, exists := b.vals[ks]; !exists {
		return nil
	}
	delete(b.vals, ks)
	i := b.search(key)
	if i < len(b.keys) && bytes.Equal(b.keys[i], key) {
		b.keys = append(b.keys[:i], b.keys[i+1:]...)
	}
	return nil
}

func (b *memBucket) NextSequence() (uint64, error) {
	b.seq++
	return b.seq, nil
}

func (b *memBucket) Cursor() Cursor {
	return &memCursor{b: b, idx: -1}
}

// memCursor tracks its position by index into the bucket's sorted key
// slice. Positions past either end clamp to len(keys), so Prev after running
// off the end via Next returns the last key, while Next after running off
// the front via Prev returns nil. The engine only performs the former.
type memCursor struct {
	b   *memBucket
	idx int
}

func (c *memCursor) at(i int) ([]byte, []byte) {
	if i < 0 || i >= len(c.b.keys) {
		c.idx = len(c.b.keys)
		return nil, nil
	}
	c.idx = i
	k := c.b.keys[i]
	return k, c.b.vals[string(k)]
}

func (c *memCursor) First() ([]byte, []byte) { return c.at(0) }
func (c *memCursor) Last() ([]byte, []byte)  { return c.at(len(c.b.keys) - 1) }
func (c *memCursor) Next() ([]byte, []byte)  { return c.at(c.idx + 1) }
func (c *memCursor) Prev() ([]byte, []byte)  { return c.at(c.idx - 1) }

func (c *memCursor) Seek(key []byte) ([]byte, []byte) {
	return c.at(c.b.search(key))
}

var _ DB = (*memDB)(nil)
