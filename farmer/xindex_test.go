package farmer

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/db/dbfactory"
)

func TestXIndexInsertAndLookup(t *testing.T) {
	c := qt.New(t)
	database := dbfactory.NewTest(t)
	idx, err := NewXIndex(database, 16)
	c.Assert(err, qt.IsNil)

	var scalar fr.Element
	scalar.SetUint64(5)
	cell := PlotCell{
		Metadata: CellMetadata{PieceIndex: 1, Position: PiecePosition{Row: 0, Column: 0}},
		Position: PiecePosition{Row: 0, Column: 0},
		Scalar:   scalar,
		XValue:   ComputeXValue(FarmerId("farmer-z"), scalar),
		YPos:     YPosLeft,
	}

	existing, err := idx.Insert(cell)
	c.Assert(err, qt.IsNil)
	c.Assert(len(existing), qt.Equals, 0)

	bucket, err := idx.Bucket(cell.XValue)
	c.Assert(err, qt.IsNil)
	c.Assert(len(bucket), qt.Equals, 1)
	c.Assert(bucket[0].Position, qt.DeepEquals, cell.Position)
	c.Assert(bucket[0].Scalar, qt.DeepEquals, cell.Scalar)
}

func TestXIndexDetectsSecondInsertAsCollision(t *testing.T) {
	c := qt.New(t)
	database := dbfactory.NewTest(t)
	idx, err := NewXIndex(database, 16)
	c.Assert(err, qt.IsNil)

	var scalar fr.Element
	scalar.SetUint64(9)
	x := ComputeXValue(FarmerId("farmer-z"), scalar)

	first := PlotCell{Position: PiecePosition{Row: 0, Column: 0}, Scalar: scalar, XValue: x, YPos: YPosLeft}
	second := PlotCell{Position: PiecePosition{Row: 0, Column: 1}, Scalar: scalar, XValue: x, YPos: YPosRight}

	_, err = idx.Insert(first)
	c.Assert(err, qt.IsNil)

	existing, err := idx.Insert(second)
	c.Assert(err, qt.IsNil)
	c.Assert(len(existing), qt.Equals, 1)
	c.Assert(existing[0].Position, qt.DeepEquals, first.Position)
}

func TestXIndexMissingBucketReturnsNil(t *testing.T) {
	c := qt.New(t)
	database := dbfactory.NewTest(t)
	idx, err := NewXIndex(database, 16)
	c.Assert(err, qt.IsNil)

	var x XValue
	copy(x[:], []byte("unused-bucket-key"))
	bucket, err := idx.Bucket(x)
	c.Assert(err, qt.IsNil)
	c.Assert(bucket, qt.IsNil)
}
