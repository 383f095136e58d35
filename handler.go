package ditto

// SubscriptionID identifies one active change subscription on a [Store].
//
// Ids are allocated from a monotonically increasing counter starting at 1.
// No two simultaneously active subscriptions share an id, and a released id
// is never reassigned to a later registration.
type SubscriptionID int64

// ChangeHandler receives change notifications from a [Store].
//
// OnChange is invoked with the affected key after every successful Put or
// Delete, before the mutating call returns. It runs synchronously on
// whichever goroutine performed the mutation — not the goroutine that
// registered the handler — so implementations must be safe to run on
// arbitrary goroutines and must not rely on state tied to registration time.
//
// Handlers must be non-blocking; a slow handler delays the mutating caller
// and every handler registered after it. Long-running work should be handed
// to a separate goroutine.
//
// Handlers may re-enter the store that is notifying them: calling
// [Store.Get], [Store.Put], [Store.Delete], [Store.Subscribe], or
// [Store.Unsubscribe] from inside OnChange is safe and cannot deadlock.
// Mutations made during fan-out trigger their own (nested) fan-out; an
// unconditional Put from a handler will therefore recurse without bound.
//
// A panic inside OnChange is recovered and logged with a correlation id;
// it does not propagate to the mutating caller and does not prevent the
// remaining handlers from running.
type ChangeHandler interface {
	OnChange(key string)
}

// ChangeHandlerFunc adapts an ordinary function to the [ChangeHandler]
// interface, the way [net/http.HandlerFunc] adapts handlers.
//
// Per-subscriber context travels in the closure:
//
//	logger := slog.Default()
//	id, err := store.Subscribe(ditto.ChangeHandlerFunc(func(key string) {
//	    logger.Info("changed", "key", key)
//	}))
type ChangeHandlerFunc func(key string)

// OnChange calls f(key).
func (f ChangeHandlerFunc) OnChange(key string) {
	f(key)
}
