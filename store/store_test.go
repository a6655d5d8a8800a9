package store

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/melodot/melodot/db/dbfactory"
)

func TestPrefixedViewsAreIndependent(t *testing.T) {
	c := qt.New(t)
	s := New(dbfactory.NewTest(t))

	key := []byte("same-key")
	tx := s.Sidecar.WriteTx()
	c.Assert(tx.Set(key, []byte("sidecar-value")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	tx = s.Piece.WriteTx()
	c.Assert(tx.Set(key, []byte("piece-value")), qt.IsNil)
	c.Assert(tx.Commit(), qt.IsNil)

	v, err := s.Sidecar.Get(key)
	c.Assert(err, qt.IsNil)
	c.Assert(string(v), qt.Equals, "sidecar-value")

	v, err = s.Piece.Get(key)
	c.Assert(err, qt.IsNil)
	c.Assert(string(v), qt.Equals, "piece-value")
}

func TestAllSixViewsPresent(t *testing.T) {
	c := qt.New(t)
	s := New(dbfactory.NewTest(t))

	c.Assert(s.Confidence, qt.IsNotNil)
	c.Assert(s.Sample, qt.IsNotNil)
	c.Assert(s.Sidecar, qt.IsNotNil)
	c.Assert(s.Piece, qt.IsNotNil)
	c.Assert(s.XValue, qt.IsNotNil)
	c.Assert(s.ZValue, qt.IsNotNil)
}
