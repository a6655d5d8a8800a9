// Package dbfactory constructs a db.Database from a backend type name,
// mirroring the teacher's metadb selection switch but restricted to the two
// backends melodot actually ships: pebble for persistent nodes and memory
// for tests and ephemeral farming simulations.
package dbfactory

import (
	"cmp"
	"fmt"
	"os"
	"testing"

	"github.com/melodot/melodot/db"
	"github.com/melodot/melodot/db/inmemory"
	"github.com/melodot/melodot/db/pebbledb"
)

// New opens a db.Database of the given backend type rooted at dir.
func New(typ, dir string) (db.Database, error) {
	switch typ {
	case db.TypePebble:
		return pebbledb.New(db.Options{Path: dir})
	case db.TypeMemory:
		return inmemory.New(db.Options{Path: dir})
	default:
		return nil, fmt.Errorf("invalid db type %q: available types are %q and %q", typ, db.TypePebble, db.TypeMemory)
	}
}

// ForTest returns the backend type to use in tests, defaulting to memory
// unless overridden via the MELODOT_DB_TYPE environment variable.
func ForTest() string {
	return cmp.Or(os.Getenv("MELODOT_DB_TYPE"), db.TypeMemory)
}

// NewTest opens a fresh Database for test tb, closing it on cleanup.
func NewTest(tb testing.TB) db.Database {
	database, err := New(ForTest(), tb.TempDir())
	if err != nil {
		tb.Fatal(err)
	}
	tb.Cleanup(func() {
		if err := database.Close(); err != nil {
			tb.Error(err)
		}
	})
	return database
}
