// Package db defines the key-value storage abstraction used throughout
// melodot: a flat byte-string keyspace with prefix iteration and
// optimistic-concurrency write transactions. Concrete backends (pebbledb,
// inmemory) and the prefixeddb wrapper implement this contract.
package db

import "errors"

// Supported backend type names, used by cmd/melodot-node when constructing
// the database from configuration.
const (
	TypePebble = "pebble"
	TypeMemory = "memory"
)

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// ErrConflict is returned by WriteTx.Commit when a key read during the
// transaction's lifetime was modified by another writer before commit.
var ErrConflict = errors.New("write conflict")

// Options configures the construction of a Database.
type Options struct {
	// Path is the on-disk directory for persistent backends. Ignored by
	// in-memory backends.
	Path string
}

// Database is a key-value store that supports point reads, prefix scans and
// atomic write transactions. Implementations must be safe for concurrent
// use by multiple goroutines.
type Database interface {
	// Get returns the value stored for key, or ErrKeyNotFound.
	Get(key []byte) ([]byte, error)
	// Iterate calls callback for every key with the given prefix, in
	// ascending key order, stopping early if callback returns false. Keys
	// passed to callback have the prefix stripped only when iterating a
	// prefixed view; the root Database passes the full key.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
	// WriteTx starts a new write transaction.
	WriteTx() WriteTx
	// Close releases underlying resources.
	Close() error
	// Compact requests the backend to reclaim space from deleted/overwritten
	// keys. Implementations for which this is a no-op must still return nil.
	Compact() error
}

// WriteTx is an atomic, optimistic-concurrency write transaction. A
// transaction that reads a key and later finds, at Commit time, that the
// key's version changed concurrently, fails with ErrConflict rather than
// silently clobbering the write.
type WriteTx interface {
	// Get reads a key as of the transaction's view, including the
	// transaction's own uncommitted writes.
	Get(key []byte) ([]byte, error)
	// Iterate scans keys with the given prefix as of the transaction's view.
	Iterate(prefix []byte, callback func(key, value []byte) bool) error
	// Set stages a key write.
	Set(key, value []byte) error
	// Delete stages a key deletion.
	Delete(key []byte) error
	// Apply merges the staged writes of other into this transaction.
	Apply(other WriteTx) error
	// Commit applies all staged writes atomically, or returns ErrConflict.
	Commit() error
	// Discard abandons the transaction. Safe to call after Commit or
	// repeatedly; only the first call has effect.
	Discard()
}

// unwrapper is implemented by WriteTx wrappers (such as the prefixeddb
// transaction) that need to recover the innermost concrete transaction, for
// example to Apply across two transactions created by the same backend.
type unwrapper interface {
	Unwrap() WriteTx
}

// UnwrapWriteTx walks through any wrapping layers (prefixeddb, ...) and
// returns the innermost concrete WriteTx implementation.
func UnwrapWriteTx(tx WriteTx) WriteTx {
	for {
		u, ok := tx.(unwrapper)
		if !ok {
			return tx
		}
		tx = u.Unwrap()
	}
}
