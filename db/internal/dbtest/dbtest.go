// Package dbtest holds backend-agnostic test suites exercised against every
// db.Database implementation (pebbledb, inmemory), so each backend is
// checked against the exact same contract.
package dbtest

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/melodot/melodot/db"
)

// TestWriteTx exercises basic Get/Set/Delete/Commit semantics.
func TestWriteTx(t *testing.T, database db.Database) {
	c := qt.New(t)

	tx := database.WriteTx()
	c.Assert(tx.Set([]byte("a"), []byte("1")), qt.IsNil)
	c.Assert(tx.Set([]byte("b"), []byte("2")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	v, err := database.Get([]byte("a"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("1"))

	tx2 := database.WriteTx()
	c.Assert(tx2.Delete([]byte("a")), qt.IsNil)
	c.Assert(tx2.Commit(), qt.IsNil)

	_, err = database.Get([]byte("a"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)
}

// TestIterate exercises prefix-scoped iteration ordering.
func TestIterate(t *testing.T, database db.Database) {
	c := qt.New(t)

	tx := database.WriteTx()
	for _, k := range []string{"x/1", "x/2", "x/3", "y/1"} {
		c.Assert(tx.Set([]byte(k), []byte(k)), qt.IsNil)
	}
	c.Assert(tx.Commit(), qt.IsNil)

	var got []string
	err := database.Iterate([]byte("x/"), func(k, v []byte) bool {
		got = append(got, string(k))
		return true
	})
	c.Assert(err, qt.IsNil)
	c.Assert(got, qt.DeepEquals, []string{"x/1", "x/2", "x/3"})
}

// TestWriteTxApply exercises merging one transaction's writes into another.
func TestWriteTxApply(t *testing.T, database db.Database) {
	c := qt.New(t)

	tx1 := database.WriteTx()
	c.Assert(tx1.Set([]byte("k1"), []byte("v1")), qt.IsNil)

	tx2 := database.WriteTx()
	c.Assert(tx2.Set([]byte("k2"), []byte("v2")), qt.IsNil)

	c.Assert(tx1.Apply(tx2), qt.IsNil)
	c.Assert(tx1.Commit(), qt.IsNil)

	v, err := database.Get([]byte("k1"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("v1"))

	v, err = database.Get([]byte("k2"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("v2"))
}

// TestWriteTxApplyPrefixed exercises committing a write through a prefixed
// view of the database and reading it back through the same view.
func TestWriteTxApplyPrefixed(t *testing.T, database db.Database, prefixed db.Database) {
	c := qt.New(t)

	ptx := prefixed.WriteTx()
	c.Assert(ptx.Set([]byte("k"), []byte("v")), qt.IsNil)
	c.Assert(ptx.Commit(), qt.IsNil)

	v, err := prefixed.Get([]byte("k"))
	c.Assert(err, qt.IsNil)
	c.Assert(v, qt.DeepEquals, []byte("v"))
}

// TestConcurrentWriteTx asserts that two transactions racing on the same key
// produce exactly one winner and one ErrConflict.
func TestConcurrentWriteTx(t *testing.T, database db.Database) {
	c := qt.New(t)

	tx1 := database.WriteTx()
	tx2 := database.WriteTx()

	_, err := tx1.Get([]byte("k"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)
	_, err = tx2.Get([]byte("k"))
	c.Assert(err, qt.Equals, db.ErrKeyNotFound)

	c.Assert(tx1.Set([]byte("k"), []byte("from-tx1")), qt.IsNil)
	c.Assert(tx1.Commit(), qt.IsNil)

	c.Assert(tx2.Set([]byte("k"), []byte("from-tx2")), qt.IsNil)
	c.Assert(tx2.Commit(), qt.Equals, db.ErrConflict)
}
