package ditto

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nickrobinson/ditto/internal/registry"
	"github.com/nickrobinson/ditto/internal/table"
)

// version is the static library version reported by [Version].
const version = "1.0.0"

// Version returns the ditto library version string.
//
// The value is independent of any [Store] instance and safe to call at any
// time, including before the first Open and after the last Close.
func Version() string {
	return version
}

// Store is an in-process, in-memory key-value store with change notification.
//
// A Store owns exactly one keyed table and one subscription registry. Stores
// are independently instantiable: a process may hold any number of them, and
// closing one never affects another. A Store must not be copied after
// creation; share the pointer instead.
//
// The typical lifecycle is:
//
//	store, err := ditto.Open("app-cache")
//	if err != nil {
//	    slog.Error("failed to open store", "error", err)
//	    os.Exit(1)
//	}
//	defer store.Close()
//
//	_ = store.Put("greeting", []byte("hello"))
//
// # Concurrency
//
// All entry points are synchronous calls on the caller's goroutine; the
// store starts no goroutines of its own. Concurrent calls into the same
// Store are memory-safe: the table and the subscription registry each guard
// their full state behind one exclusive lock. The locking is deliberately
// coarse — correctness under concurrent use is guaranteed, throughput under
// heavy contention is not a design goal.
//
// For a single key, a Put or Delete that returns before another operation
// begins is visible to that later operation. Change notification fan-out for
// a mutation happens after the mutation is applied and before the mutating
// call returns, so a handler observing a notification for key K is
// guaranteed that a subsequent Get of K sees the new state.
//
// # Durability
//
// A Store is purely in-memory. Nothing survives process exit; the path given
// to [Open] identifies the store in logs and is never touched on disk.
type Store struct {
	path     string
	logger   *slog.Logger
	table    *table.Table
	registry *registry.Registry

	closed    atomic.Bool
	closeOnce sync.Once
}

// Open creates a [Store] identified by path.
//
// The path names the store for logging and diagnostics only; ditto has no
// persistence and never reads or writes the filesystem. An empty path
// returns [ErrInvalidArgument].
//
// Options are applied in order; see [WithTableSize], [WithMaxSubscriptions],
// [WithLogger], and [WithChangeHandler]. Defaults: 256 hash buckets, 100
// subscription slots, [slog.Default] logging.
//
// Call [Store.Close] when done to release all entries and subscriptions.
func Open(path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrInvalidArgument)
	}

	cfg := &storeConfig{
		tableSize:        table.DefaultSize,
		maxSubscriptions: registry.DefaultCapacity,
		logger:           slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	s := &Store{
		path:     path,
		logger:   cfg.logger,
		table:    table.New(cfg.tableSize),
		registry: registry.New(cfg.maxSubscriptions, cfg.logger),
	}

	// handlers registered at open time go through the same capacity
	// accounting as later Subscribe calls
	for _, h := range cfg.handlers {
		if _, err := s.Subscribe(h); err != nil {
			return nil, fmt.Errorf("failed to register change handler: %w", err)
		}
	}

	s.logger.Debug("store opened",
		"path", path,
		"table_size", cfg.tableSize,
		"max_subscriptions", cfg.maxSubscriptions,
	)
	return s, nil
}

// Close tears down the store, releasing every entry and every subscription.
//
// Close is idempotent: repeated calls are safe no-ops. It never blocks
// indefinitely — at worst it waits for an in-flight operation to release an
// internal lock. After Close, every other operation returns [ErrClosed].
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.table.Clear()
		s.registry.Clear()
		s.logger.Debug("store closed", "path", s.path)
	})
}

// Put inserts a value for key or replaces the existing one.
//
// The value is copied; the caller's slice is never retained and may be
// reused immediately. A nil or empty value stores a zero-length value,
// which is legal and distinct from the key being absent.
//
// On success, every active subscription is notified with the key before Put
// returns. See [ChangeHandler] for the fan-out contract.
func (s *Store) Put(key string, value []byte) error {
	if s == nil {
		return fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}

	s.table.Put(key, value)
	s.logger.Debug("put", "path", s.path, "key", key, "len", len(value))

	// fan-out runs after the table lock is released; a handler may mutate
	// this same store without deadlocking
	s.registry.Notify(key)
	return nil
}

// Get looks up key and copies its value into dst, returning the number of
// bytes written.
//
// Get implements a two-call buffer negotiation protocol:
//
//   - If the key is absent, Get returns 0 and [ErrNotFound].
//   - If dst is nil, or shorter than the stored value, Get returns the
//     required length and [ErrBufferTooSmall] without modifying dst.
//     Passing nil is the size-query mode.
//   - Otherwise Get copies the value into dst and returns the exact length
//     written with a nil error.
//
// Callers should treat [ErrBufferTooSmall] as "try again with this size",
// not as a failure:
//
//	n, err := store.Get("k", nil)
//	if errors.Is(err, ditto.ErrBufferTooSmall) {
//	    buf := make([]byte, n)
//	    n, err = store.Get("k", buf)
//	}
func (s *Store) Get(key string, dst []byte) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if err := validateKey(key); err != nil {
		return 0, err
	}

	n, err := s.table.Get(key, dst)
	switch {
	case errors.Is(err, table.ErrNotFound):
		return 0, ErrNotFound
	case errors.Is(err, table.ErrBufferTooSmall):
		return n, ErrBufferTooSmall
	}
	return n, err
}

// Delete removes the entry for key.
//
// Returns [ErrNotFound] if the key is absent; the store is unchanged in
// that case. On success, every active subscription is notified with the key
// before Delete returns.
func (s *Store) Delete(key string) error {
	if s == nil {
		return fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	if s.closed.Load() {
		return ErrClosed
	}
	if err := validateKey(key); err != nil {
		return err
	}

	if err := s.table.Delete(key); err != nil {
		return ErrNotFound
	}
	s.logger.Debug("delete", "path", s.path, "key", key)

	s.registry.Notify(key)
	return nil
}

// Subscribe registers a [ChangeHandler] to be invoked on every successful
// mutation, and returns the subscription's id.
//
// Returns [ErrNoCapacity] when every subscription slot is taken (default
// capacity 100, see [WithMaxSubscriptions]); release slots with
// [Store.Unsubscribe]. A nil handler returns [ErrInvalidArgument].
func (s *Store) Subscribe(h ChangeHandler) (SubscriptionID, error) {
	if s == nil {
		return 0, fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	if s.closed.Load() {
		return 0, ErrClosed
	}
	if h == nil {
		return 0, fmt.Errorf("%w: nil change handler", ErrInvalidArgument)
	}

	id, err := s.registry.Subscribe(h.OnChange)
	if err != nil {
		return 0, ErrNoCapacity
	}
	return SubscriptionID(id), nil
}

// Unsubscribe releases the subscription with the given id.
//
// After Unsubscribe returns, no further mutation invokes that subscription's
// handler. Returns [ErrNotFound] for an unknown id, including a second
// release of an already-released one.
func (s *Store) Unsubscribe(id SubscriptionID) error {
	if s == nil {
		return fmt.Errorf("%w: nil store", ErrInvalidArgument)
	}
	if s.closed.Load() {
		return ErrClosed
	}

	if err := s.registry.Unsubscribe(int64(id)); err != nil {
		return ErrNotFound
	}
	return nil
}

// Path returns the identifier this store was opened with.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of keys currently stored.
func (s *Store) Len() int {
	return s.table.Len()
}

// Keys returns a snapshot of all keys currently stored, in unspecified order.
//
// The returned slice is a copy; modifying it does not affect the store.
func (s *Store) Keys() []string {
	return s.table.Keys()
}

// Subscriptions returns the number of active subscriptions.
func (s *Store) Subscriptions() int {
	return s.registry.Len()
}

// validateKey rejects the key forms the store never accepts: empty strings
// and strings containing a NUL byte.
func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidArgument)
	}
	if strings.IndexByte(key, 0) >= 0 {
		return fmt.Errorf("%w: key cannot contain NUL", ErrInvalidArgument)
	}
	return nil
}
