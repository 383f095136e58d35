package table

import (
	"errors"
	"sync"
)

// DefaultSize is the bucket count used when no explicit size is configured.
const DefaultSize = 256

var (
	// ErrNotFound indicates the key has no entry in the table.
	ErrNotFound = errors.New("table: key not found")

	// ErrBufferTooSmall indicates the destination buffer cannot hold the
	// stored value. The accompanying length reports the required size.
	ErrBufferTooSmall = errors.New("table: buffer too small")
)

// entry is one key/value record plus its collision-chain link.
type entry struct {
	key   string
	value []byte
	next  *entry
}

// Table is a fixed-size bucketed hash table mapping string keys to byte values.
//
// Table provides thread-safe insert-or-replace, lookup, and removal. Keys
// hashing to the same bucket are chained in a singly-linked list; chain order
// is unspecified. At most one live entry exists per distinct key.
//
// All operations are serialized by a single mutex covering the whole table.
// This is deliberately coarse: correctness under concurrent callers matters,
// throughput under contention does not.
type Table struct {
	mu      sync.Mutex
	buckets []*entry
	count   int
}

// New creates a [Table] with the given bucket count.
//
// The bucket count is fixed for the table's lifetime; the table is never
// resized. A size of zero or less falls back to [DefaultSize].
func New(size int) *Table {
	if size <= 0 {
		size = DefaultSize
	}
	return &Table{buckets: make([]*entry, size)}
}

// hash computes the bucket index for a key using the djb2 string hash
// (seed 5381, multiplier 33 over the key bytes, reduced mod bucket count).
func (t *Table) hash(key string) int {
	h := uint32(5381)
	for i := 0; i < len(key); i++ {
		h = h*33 + uint32(key[i])
	}
	return int(h % uint32(len(t.buckets)))
}

// Put inserts a new entry for key or replaces the value of an existing one.
//
// The value is copied; the caller's slice is never retained. A replace
// installs a fresh buffer rather than writing into the old one, so a value
// handed out before the lock was taken is never mutated underneath a reader.
// Zero-length values are legal and distinct from an absent key.
func (t *Table) Put(key string, value []byte) {
	stored := make([]byte, len(value))
	copy(stored, value)

	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.hash(key)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			e.value = stored
			return
		}
	}

	t.buckets[idx] = &entry{key: key, value: stored, next: t.buckets[idx]}
	t.count++
}

// Get looks up key and copies its value into dst.
//
// The return value is the number of bytes that were (or would be) written:
//
//   - Key absent: returns 0 and [ErrNotFound].
//   - dst is nil, or len(dst) is less than the stored length: returns the
//     required length and [ErrBufferTooSmall]; dst is left unmodified.
//     Passing nil is the size-query mode of the two-call protocol.
//   - Otherwise: copies the value into dst and returns the exact length
//     written with a nil error.
func (t *Table) Get(key string, dst []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.hash(key)
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			if dst == nil || len(dst) < len(e.value) {
				return len(e.value), ErrBufferTooSmall
			}
			copy(dst, e.value)
			return len(e.value), nil
		}
	}

	return 0, ErrNotFound
}

// Delete removes the entry for key.
//
// Returns [ErrNotFound] if the key has no entry; the table is unchanged in
// that case.
func (t *Table) Delete(key string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.hash(key)
	var prev *entry
	for e := t.buckets[idx]; e != nil; e = e.next {
		if e.key == key {
			if prev != nil {
				prev.next = e.next
			} else {
				t.buckets[idx] = e.next
			}
			t.count--
			return nil
		}
		prev = e
	}

	return ErrNotFound
}

// Len returns the number of live entries in the table.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

// Keys returns a snapshot of all keys currently in the table.
//
// Order is unspecified. The returned slice is a copy; modifications do not
// affect the table.
func (t *Table) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	keys := make([]string, 0, t.count)
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			keys = append(keys, e.key)
		}
	}
	return keys
}

// Clear removes all entries, releasing every chain.
func (t *Table) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.buckets {
		t.buckets[i] = nil
	}
	t.count = 0
}
