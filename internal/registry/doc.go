// Package registry provides the change-notification subscriber registry for ditto.
//
// This package is internal to ditto and manages the bounded set of active
// subscriptions attached to a store. Every successful mutation fans out to
// all active subscriptions synchronously, on the mutating goroutine, before
// the mutation call returns to its caller.
//
// The main components are:
//
//   - [Registry]: Bounded subscription set with id allocation and fan-out
//   - [Handler]: The function invoked with the affected key on each mutation
//   - [ErrNoCapacity]: Returned by Subscribe when every slot is taken
//   - [ErrNotFound]: Returned by Unsubscribe for an unknown or released id
//
// Fan-out snapshots the active handlers and releases the registry lock before
// invoking any of them, so a handler may safely re-enter the registry (or the
// store that owns it). Handler panics are recovered and logged with a
// correlation id; they never propagate to the mutating caller.
//
// Users of the ditto library should not need to interact with this package
// directly. Subscriptions are managed through [ditto.Store].
package registry
