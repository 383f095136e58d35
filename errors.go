package ditto

import "errors"

// Sentinel errors returned by [Store] operations. Compare with [errors.Is].
//
// Every failure is reported as a status to the immediate caller; no operation
// partially applies its effect on error. [ErrBufferTooSmall] in particular is
// a recoverable condition, not a fault: retry [Store.Get] with a buffer of
// the reported length.
var (
	// ErrInvalidArgument indicates a nil handle, empty or NUL-containing key,
	// or nil handler where one is required.
	ErrInvalidArgument = errors.New("ditto: invalid argument")

	// ErrNotFound indicates an absent key (Get, Delete) or an unknown
	// subscription id (Unsubscribe).
	ErrNotFound = errors.New("ditto: not found")

	// ErrBufferTooSmall indicates the destination passed to Get cannot hold
	// the stored value. Get returns the required length alongside this error.
	ErrBufferTooSmall = errors.New("ditto: buffer too small")

	// ErrNoCapacity indicates the subscription table is full. Capacity is
	// freed by Unsubscribe; hitting the limit is a normal, reportable
	// condition rather than a fault.
	ErrNoCapacity = errors.New("ditto: subscription capacity exhausted")

	// ErrClosed indicates the store has been closed. All operations on a
	// closed store fail with this error; Close itself remains safe to repeat.
	ErrClosed = errors.New("ditto: store is closed")
)
