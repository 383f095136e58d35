package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity is the subscription limit used when none is configured.
const DefaultCapacity = 100

var (
	// ErrNoCapacity indicates every subscription slot is taken.
	ErrNoCapacity = errors.New("registry: no free subscription slot")

	// ErrNotFound indicates no active subscription has the given id.
	ErrNotFound = errors.New("registry: subscription not found")
)

// Handler is invoked with the affected key after each successful mutation.
//
// Handlers run synchronously on whichever goroutine performed the mutation,
// not the one that registered them. They must be safe to call from arbitrary
// goroutines and must not block; a slow handler delays the mutating caller.
type Handler func(key string)

// subscription is one active (id, handler) registration.
type subscription struct {
	id      int64
	handler Handler
}

// Registry is a bounded set of active subscriptions with synchronous fan-out.
//
// Subscriptions are held in a map keyed by id, with a separate slice
// preserving registration order so fan-out visits handlers in the order they
// subscribed. Ids are allocated from a monotonically increasing counter
// starting at 1 and are never reassigned to a different registration.
//
// Registry is safe for concurrent use. Its lock is never held while a
// handler runs: Notify snapshots the active set, releases the lock, then
// invokes. A handler that re-enters Subscribe, Unsubscribe, or the owning
// store therefore cannot deadlock; registry changes made during fan-out
// affect subsequent notifications, not the in-flight one.
type Registry struct {
	mu       sync.Mutex
	subs     map[int64]*subscription
	order    []int64
	nextID   int64
	capacity int
	logger   *slog.Logger
}

// New creates a [Registry] holding at most capacity subscriptions.
//
// A capacity of zero or less falls back to [DefaultCapacity]. A nil logger
// falls back to [slog.Default]; the logger only sees recovered handler panics.
func New(capacity int, logger *slog.Logger) *Registry {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		subs:     make(map[int64]*subscription),
		nextID:   1,
		capacity: capacity,
		logger:   logger,
	}
}

// Subscribe registers a handler and returns its subscription id.
//
// Returns [ErrNoCapacity] when the registry is full; capacity is freed by
// [Registry.Unsubscribe]. Ids are unique among active subscriptions and a
// released id is never handed to a later registration.
func (r *Registry) Subscribe(h Handler) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.subs) >= r.capacity {
		return 0, ErrNoCapacity
	}

	id := r.nextID
	r.nextID++

	r.subs[id] = &subscription{id: id, handler: h}
	r.order = append(r.order, id)
	return id, nil
}

// Unsubscribe releases the subscription with the given id.
//
// Returns [ErrNotFound] if no active subscription has that id, including a
// second release of an already-released id.
func (r *Registry) Unsubscribe(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.subs[id]; !ok {
		return ErrNotFound
	}

	delete(r.subs, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Notify invokes every active handler with key, in registration order.
//
// The active set is snapshotted under the lock and invoked after the lock is
// released, so handlers may re-enter the registry. A handler registered or
// released while fan-out is in flight takes effect from the next mutation.
func (r *Registry) Notify(key string) {
	r.mu.Lock()
	handlers := make([]Handler, 0, len(r.order))
	for _, id := range r.order {
		handlers = append(handlers, r.subs[id].handler)
	}
	r.mu.Unlock()

	for _, h := range handlers {
		r.invokeSafe(h, key)
	}
}

// invokeSafe calls a handler with panic recovery.
// If the handler panics, the full stack trace is logged with a correlation ID
// and fan-out continues with the remaining handlers.
func (r *Registry) invokeSafe(h Handler, key string) {
	defer func() {
		if rec := recover(); rec != nil {
			correlationID := uuid.NewString()
			r.logger.Error("change handler panic",
				"correlation_id", correlationID,
				"key", key,
				"panic", fmt.Sprintf("%v", rec),
				"stack", string(debug.Stack()),
			)
		}
	}()
	h(key)
}

// Len returns the number of active subscriptions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// Clear releases every active subscription. Ids already handed out are not
// reused afterwards; the allocation counter keeps advancing.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = make(map[int64]*subscription)
	r.order = nil
}
