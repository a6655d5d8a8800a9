package farmer

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

func TestLeadingZeroBits(t *testing.T) {
	c := qt.New(t)
	c.Assert(leadingZeroBits([]byte{0x00, 0x0f}), qt.Equals, 12)
	c.Assert(leadingZeroBits([]byte{0xff}), qt.Equals, 0)
	c.Assert(leadingZeroBits([]byte{0x00, 0x00}), qt.Equals, 16)
}

func TestSubTargetSatisfiedAlwaysTrueAtOne(t *testing.T) {
	c := qt.New(t)
	c.Assert(subTargetSatisfied([]byte("anything"), 1), qt.IsTrue)
	c.Assert(subTargetSatisfied([]byte("anything"), 0), qt.IsTrue)
}

func TestSolutionVerifyAcceptsGenuineCells(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	poly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	commitment, err := kzg.Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	segments, err := segment.PolyToSegmentVec(setup, poly, 0)
	c.Assert(err, qt.IsNil)

	preCell := PreCell{Seg: segments[0], CellOffset: 0}
	left := Cell{Metadata: WinCellMetadata{BlockNumber: 10}, Seg: segments[1], CellOffset: 1}
	right := Cell{Metadata: WinCellMetadata{BlockNumber: 11}, Seg: segments[2], CellOffset: 2}

	farmerID := FarmerId("farmer-x")
	sol := NewSolution([]byte("prev-block-hash"), farmerID, preCell, left, right)

	ok, err := sol.Verify(setup, farmerID, commitment, commitment, commitment, []byte("hash-10"), []byte("hash-11"), 0, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}

func TestSolutionVerifyRejectsWrongFarmerID(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	poly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	commitment, err := kzg.Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	segments, err := segment.PolyToSegmentVec(setup, poly, 0)
	c.Assert(err, qt.IsNil)

	preCell := PreCell{Seg: segments[0], CellOffset: 0}
	left := Cell{Seg: segments[1], CellOffset: 1}
	right := Cell{Seg: segments[2], CellOffset: 2}
	sol := NewSolution([]byte("prev"), FarmerId("farmer-x"), preCell, left, right)

	ok, err := sol.Verify(setup, FarmerId("someone-else"), commitment, commitment, commitment, nil, nil, 0, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestSolutionVerifyRejectsWrongCommitment(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	poly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	commitment, err := kzg.Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	otherPoly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	otherCommitment, err := kzg.Commit(setup, otherPoly)
	c.Assert(err, qt.IsNil)

	segments, err := segment.PolyToSegmentVec(setup, poly, 0)
	c.Assert(err, qt.IsNil)

	preCell := PreCell{Seg: segments[0], CellOffset: 0}
	left := Cell{Seg: segments[1], CellOffset: 1}
	right := Cell{Seg: segments[2], CellOffset: 2}
	farmerID := FarmerId("farmer-x")
	sol := NewSolution([]byte("prev"), farmerID, preCell, left, right)

	ok, err := sol.Verify(setup, farmerID, otherCommitment, commitment, commitment, nil, nil, 0, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestSolutionVerifyRejectsInsufficientLeadingZeros(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	poly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	commitment, err := kzg.Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	segments, err := segment.PolyToSegmentVec(setup, poly, 0)
	c.Assert(err, qt.IsNil)

	preCell := PreCell{Seg: segments[0], CellOffset: 0}
	left := Cell{Seg: segments[1], CellOffset: 1}
	right := Cell{Seg: segments[2], CellOffset: 2}
	farmerID := FarmerId("farmer-x")
	sol := NewSolution([]byte("prev"), farmerID, preCell, left, right)

	ok, err := sol.Verify(setup, farmerID, commitment, commitment, commitment, nil, nil, 256, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}
