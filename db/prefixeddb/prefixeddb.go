// Package prefixeddb wraps a db.Database so that every key it sees is
// transparently namespaced under a fixed prefix. Melodot uses this to give
// each on-disk index (confidence, samples, sidecars, farming state) its own
// sub-keyspace within a single backing Database instance.
package prefixeddb

import (
	"bytes"

	"github.com/melodot/melodot/db"
)

// PrefixedDatabase is a db.Database view restricted to keys under prefix.
type PrefixedDatabase struct {
	parent db.Database
	prefix []byte
}

var _ db.Database = (*PrefixedDatabase)(nil)

// NewPrefixedDatabase returns a view of parent namespaced under prefix. The
// prefix is copied; multiple namespaces can be derived from the same parent
// without interfering with each other.
func NewPrefixedDatabase(parent db.Database, prefix []byte) *PrefixedDatabase {
	return &PrefixedDatabase{parent: parent, prefix: bytes.Clone(prefix)}
}

func (d *PrefixedDatabase) fullKey(key []byte) []byte {
	return append(bytes.Clone(d.prefix), key...)
}

func (d *PrefixedDatabase) Get(key []byte) ([]byte, error) {
	return d.parent.Get(d.fullKey(key))
}

func (d *PrefixedDatabase) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return d.parent.Iterate(d.fullKey(prefix), func(k, v []byte) bool {
		return callback(k[len(d.prefix):], v)
	})
}

func (d *PrefixedDatabase) WriteTx() db.WriteTx {
	return &prefixedWriteTx{tx: d.parent.WriteTx(), prefix: d.prefix}
}

func (d *PrefixedDatabase) Close() error   { return d.parent.Close() }
func (d *PrefixedDatabase) Compact() error { return d.parent.Compact() }

type prefixedWriteTx struct {
	tx     db.WriteTx
	prefix []byte
}

var _ db.WriteTx = (*prefixedWriteTx)(nil)

func (tx *prefixedWriteTx) fullKey(key []byte) []byte {
	return append(bytes.Clone(tx.prefix), key...)
}

func (tx *prefixedWriteTx) Get(key []byte) ([]byte, error) {
	return tx.tx.Get(tx.fullKey(key))
}

func (tx *prefixedWriteTx) Iterate(prefix []byte, callback func(key, value []byte) bool) error {
	return tx.tx.Iterate(tx.fullKey(prefix), func(k, v []byte) bool {
		return callback(k[len(tx.prefix):], v)
	})
}

func (tx *prefixedWriteTx) Set(key, value []byte) error {
	return tx.tx.Set(tx.fullKey(key), value)
}

func (tx *prefixedWriteTx) Delete(key []byte) error {
	return tx.tx.Delete(tx.fullKey(key))
}

// Apply only supports merging another transaction of the same namespace,
// since the underlying Set calls would otherwise double-prefix the keys.
func (tx *prefixedWriteTx) Apply(other db.WriteTx) error {
	o, ok := other.(*prefixedWriteTx)
	if !ok || !bytes.Equal(o.prefix, tx.prefix) {
		return tx.tx.Apply(db.UnwrapWriteTx(other))
	}
	return tx.tx.Apply(o.tx)
}

func (tx *prefixedWriteTx) Commit() error { return tx.tx.Commit() }
func (tx *prefixedWriteTx) Discard()      { tx.tx.Discard() }

// Unwrap returns the wrapped transaction, used by db.UnwrapWriteTx.
func (tx *prefixedWriteTx) Unwrap() db.WriteTx { return tx.tx }
