package ditto

import (
	"errors"
	"log/slog"
)

// storeConfig holds mutable state during Store construction.
type storeConfig struct {
	tableSize        int
	maxSubscriptions int
	logger           *slog.Logger
	handlers         []ChangeHandler
}

// Option is a function that configures a [Store] during [Open].
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [Open] in a type-safe, extensible way.
// Options return an error if validation fails.
//
// Built-in options: [WithTableSize], [WithMaxSubscriptions], [WithLogger],
// [WithChangeHandler].
type Option func(*storeConfig) error

// WithTableSize sets the number of hash buckets in the store's table.
//
// The bucket count is fixed for the store's lifetime; the table is never
// resized. Lookup cost grows with chain length, so size the table for the
// expected key count. Defaults to 256 if not specified.
//
// Example:
//
//	store, err := ditto.Open("cache", ditto.WithTableSize(1024))
//
// Returns an error if the size is zero or negative.
func WithTableSize(n int) Option {
	return func(cfg *storeConfig) error {
		if n <= 0 {
			return errors.New("table size must be positive")
		}
		cfg.tableSize = n
		return nil
	}
}

// WithMaxSubscriptions sets the subscription capacity of the store.
//
// Subscribe returns [ErrNoCapacity] once this many subscriptions are active;
// capacity is freed by Unsubscribe. Defaults to 100 if not specified.
//
// Example:
//
//	store, err := ditto.Open("cache", ditto.WithMaxSubscriptions(8))
//
// Returns an error if the capacity is zero or negative.
func WithMaxSubscriptions(n int) Option {
	return func(cfg *storeConfig) error {
		if n <= 0 {
			return errors.New("max subscriptions must be positive")
		}
		cfg.maxSubscriptions = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the store.
//
// This allows SDK consumers to control where logs are written and in what
// format. The store logs lifecycle events and mutations at Debug level and
// recovered handler panics at Error level. If not specified, [slog.Default]
// is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	store, err := ditto.Open("cache", ditto.WithLogger(logger))
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *storeConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithChangeHandler registers a [ChangeHandler] at open time.
//
// Equivalent to calling [Store.Subscribe] immediately after [Open]; the
// handler occupies a subscription slot and counts against the capacity set
// by [WithMaxSubscriptions]. May be given multiple times; handlers are
// notified in registration order.
//
// Example:
//
//	store, err := ditto.Open("cache",
//	    ditto.WithChangeHandler(ditto.ChangeHandlerFunc(func(key string) {
//	        slog.Info("changed", "key", key)
//	    })),
//	)
//
// Nil handlers are silently ignored.
func WithChangeHandler(h ChangeHandler) Option {
	return func(cfg *storeConfig) error {
		if h == nil {
			return nil // no-op for nil handler (safe to call)
		}
		cfg.handlers = append(cfg.handlers, h)
		return nil
	}
}
