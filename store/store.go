// Package store lays out melodot's persisted key-value schema: one
// prefixed view per index (confidence records, samples, sidecars,
// farming pieces, X-buckets, Z-matches) over a single shared
// db.Database, following the node's own db/prefixeddb-over-db.Database
// layering.
package store

import (
	"github.com/melodot/melodot/db"
	"github.com/melodot/melodot/db/prefixeddb"
)

// Key prefixes, one per index, matching spec.md §4.H's storage layout
// table.
var (
	confidencePrefix = []byte("conf/")
	samplePrefix     = []byte("sample/")
	sidecarPrefix    = []byte("sidecar/")
	piecePrefix      = []byte("piece/")
	xValuePrefix     = []byte("x/")
	zValuePrefix     = []byte("z/")
)

// Store bundles the prefixed views of a single backing database.
type Store struct {
	Confidence db.Database
	Sample     db.Database
	Sidecar    db.Database
	Piece      db.Database
	XValue     db.Database
	ZValue     db.Database
}

// New derives a Store's prefixed views from a single shared database.
func New(database db.Database) *Store {
	return &Store{
		Confidence: prefixeddb.NewPrefixedDatabase(database, confidencePrefix),
		Sample:     prefixeddb.NewPrefixedDatabase(database, samplePrefix),
		Sidecar:    prefixeddb.NewPrefixedDatabase(database, sidecarPrefix),
		Piece:      prefixeddb.NewPrefixedDatabase(database, piecePrefix),
		XValue:     prefixeddb.NewPrefixedDatabase(database, xValuePrefix),
		ZValue:     prefixeddb.NewPrefixedDatabase(database, zValuePrefix),
	}
}
