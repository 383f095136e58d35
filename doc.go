// Package ditto provides an embeddable, in-process, in-memory key-value
// store with synchronous change notification.
//
// ditto is designed as an SDK-first library: a host application (a mobile
// or desktop app, a daemon, a test harness) embeds a [Store] as its local
// data layer and observes mutations through registered [ChangeHandler]
// subscriptions instead of polling. The store is purely in-memory — nothing
// survives process exit — and a single process may hold any number of
// independent stores.
//
// # Quick Start
//
// Open a store, write and read a value, and observe the change:
//
//	store, err := ditto.Open("app-cache")
//	if err != nil {
//	    slog.Error("failed to open store", "error", err)
//	    os.Exit(1)
//	}
//	defer store.Close()
//
//	id, _ := store.Subscribe(ditto.ChangeHandlerFunc(func(key string) {
//	    slog.Info("changed", "key", key)
//	}))
//	defer store.Unsubscribe(id)
//
//	_ = store.Put("greeting", []byte("hello")) // handler fires before Put returns
//
// # Configuration
//
// ditto uses the functional options pattern for configuration:
//
//	store, err := ditto.Open("app-cache",
//	    ditto.WithTableSize(1024),
//	    ditto.WithMaxSubscriptions(8),
//	    ditto.WithLogger(logger),
//	)
//
// # Reading values
//
// [Store.Get] copies values into a caller-provided buffer and implements a
// two-call size negotiation protocol: an undersized (or nil) buffer yields
// the required length together with [ErrBufferTooSmall], and the caller
// retries with an adequately sized buffer. The error is a normal,
// recoverable condition, not a failure.
//
//	n, err := store.Get("greeting", nil) // size query
//	if errors.Is(err, ditto.ErrBufferTooSmall) {
//	    buf := make([]byte, n)
//	    n, err = store.Get("greeting", buf)
//	}
//
// # Change notification
//
// Every successful Put or Delete notifies all active subscriptions with the
// affected key, synchronously, before the mutating call returns. Handlers
// run on the mutating goroutine and must be non-blocking; see
// [ChangeHandler] for the full contract, including re-entrancy rules and
// panic recovery.
//
// # Architecture
//
// ditto consists of two internal packages:
//
//   - internal/table: Fixed-size bucketed hash table guarded by one mutex
//   - internal/registry: Bounded subscription set with synchronous fan-out
//
// The internal packages are not part of the public API and may change
// without notice. A cobra CLI under cmd/ditto offers config validation and
// a workload runner for trying the store from the command line.
package ditto
