// Package table provides the hashed key-value storage for ditto.
//
// This package is internal to ditto and implements the bucketed hash table
// that backs every store: a fixed-size array of singly-linked entry chains,
// guarded by a single mutex. The bucket count is fixed at construction and
// the table is never resized, which keeps lookup cost proportional to chain
// length for the moderate key counts ditto targets.
//
// The main components are:
//
//   - [Table]: The bucketed hash table with Put/Get/Delete operations
//   - [ErrNotFound]: Returned when a key has no entry
//   - [ErrBufferTooSmall]: Returned by Get when the destination cannot hold the value
//
// Get implements a buffer-size negotiation protocol: callers that pass an
// undersized (or nil) destination receive the required length together with
// [ErrBufferTooSmall], and can retry with an adequately sized buffer.
//
// Users of the ditto library should not need to interact with this package
// directly. Storage is managed internally by [ditto.Store].
package table
