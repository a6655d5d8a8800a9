package farmer

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/db/dbfactory"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
	"github.com/melodot/melodot/store"
)

func testIndexes(t testing.TB) (*XIndex, *ZIndex) {
	st := store.New(dbfactory.NewTest(t))
	xindex, err := NewXIndex(st.XValue, 64)
	qt.Assert(t, err, qt.IsNil)
	return xindex, NewZIndex(st.ZValue)
}

func testSetup(t testing.TB) *kzg.Setup {
	s, err := kzg.NewInsecureTestSetup(t.Name(), kzg.NumG1Powers)
	qt.Assert(t, err, qt.IsNil)
	return s
}

func randomPoly(c *qt.C, n int) []fr.Element {
	poly := make([]fr.Element, n)
	for i := range poly {
		_, err := poly[i].SetRandom()
		c.Assert(err, qt.IsNil)
	}
	return poly
}

func plotSegments(c *qt.C, setup *kzg.Setup, row uint32) []segment.Segment {
	poly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	segments, err := segment.PolyToSegmentVec(setup, poly, row)
	c.Assert(err, qt.IsNil)
	return segments
}

func TestSaveComputesXValuePerCell(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	segments := plotSegments(c, setup, 0)

	farmerID := FarmerId("farmer-a")
	piece := NewPiece(1, farmerID, kzg.ChunkCount)
	xindex, zindex := testIndexes(t)
	c.Assert(piece.Save(segments, xindex, zindex), qt.IsNil)

	c.Assert(len(piece.Cells), qt.Equals, kzg.ChunkCount*kzg.SegmentLength)
	for _, cell := range piece.Cells {
		c.Assert(cell.XValue, qt.DeepEquals, ComputeXValue(farmerID, cell.Scalar))
	}
}

func TestYPosAlternatesByAbsoluteIndex(t *testing.T) {
	c := qt.New(t)
	c.Assert(YPosOf(0), qt.Equals, YPosLeft)
	c.Assert(YPosOf(1), qt.Equals, YPosRight)
	c.Assert(YPosOf(2), qt.Equals, YPosLeft)
}

func TestSaveDetectsXValueCollisionAcrossRows(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	// Build two rows from the same poly, so every scalar appears in both
	// rows and each cell collides with its twin on X-value.
	poly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	segmentsA, err := segment.PolyToSegmentVec(setup, poly, 0)
	c.Assert(err, qt.IsNil)
	segmentsB, err := segment.PolyToSegmentVec(setup, poly, 1)
	c.Assert(err, qt.IsNil)

	farmerID := FarmerId("farmer-b")

	// segmentsA and segmentsB hold identical scalars at identical piece
	// rows (PolyToSegmentVec indexes Position.X by chunk, independent of
	// the row argument), so plotting both makes every cell collide with
	// its own duplicate and records one Z-entry per cell.
	piece := NewPiece(1, farmerID, kzg.ChunkCount)
	combined := append(append([]segment.Segment{}, segmentsA...), segmentsB...)
	xindex, zindex := testIndexes(t)
	c.Assert(piece.Save(combined, xindex, zindex), qt.IsNil)

	c.Assert(len(piece.ZEntries) > 0, qt.IsTrue)
	for _, z := range piece.ZEntries {
		c.Assert(z.Z, qt.DeepEquals, ComputeZValue(z.Left.Metadata, z.Right.Metadata, z.Left.Scalar, z.Right.Scalar))
	}
}

func TestZEntryOrdersLeftRightByYPosRegardlessOfPlotOrder(t *testing.T) {
	c := qt.New(t)

	var scalar fr.Element
	scalar.SetUint64(7)

	leftCell := PlotCell{
		Metadata: CellMetadata{PieceIndex: 1, Position: PiecePosition{Row: 0, Column: 0}},
		Position: PiecePosition{Row: 0, Column: 0}, // absolute index 0 -> YPosLeft
		Scalar:   scalar,
		YPos:     YPosOf(0),
	}
	rightCell := PlotCell{
		Metadata: CellMetadata{PieceIndex: 1, Position: PiecePosition{Row: 0, Column: 1}},
		Position: PiecePosition{Row: 0, Column: 1}, // absolute index 1 -> YPosRight
		Scalar:   scalar,
		YPos:     YPosOf(1),
	}

	entryOwnLeft := buildZEntry(leftCell, rightCell)
	entryOwnRight := buildZEntry(rightCell, leftCell)

	c.Assert(entryOwnLeft.Left.Position, qt.DeepEquals, leftCell.Position)
	c.Assert(entryOwnLeft.Right.Position, qt.DeepEquals, rightCell.Position)
	c.Assert(entryOwnRight.Left.Position, qt.DeepEquals, leftCell.Position)
	c.Assert(entryOwnRight.Right.Position, qt.DeepEquals, rightCell.Position)
	c.Assert(entryOwnLeft.Z, qt.DeepEquals, entryOwnRight.Z)
}

func TestGetCellAndFindZEntry(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	segments := plotSegments(c, setup, 0)

	piece := NewPiece(1, FarmerId("farmer-c"), kzg.ChunkCount)
	xindex, zindex := testIndexes(t)
	c.Assert(piece.Save(segments, xindex, zindex), qt.IsNil)

	first := piece.Cells[0]
	found, ok := piece.GetCell(first.Position)
	c.Assert(ok, qt.IsTrue)
	c.Assert(found, qt.DeepEquals, first)

	_, ok = piece.GetCell(PiecePosition{Row: 999, Column: 999})
	c.Assert(ok, qt.IsFalse)

	if len(piece.ZEntries) > 0 {
		z := piece.ZEntries[0]
		entry, ok := piece.FindZEntry(z.Z)
		c.Assert(ok, qt.IsTrue)
		c.Assert(entry, qt.DeepEquals, z)
	}
}
