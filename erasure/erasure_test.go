package erasure

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/blob"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

func testSetup(t testing.TB) *kzg.Setup {
	s, err := kzg.NewInsecureTestSetup(t.Name(), kzg.NumG1Powers)
	qt.Assert(t, err, qt.IsNil)
	return s
}

func randomEvals(c *qt.C, n int) []fr.Element {
	evals := make([]fr.Element, n)
	for i := range evals {
		_, err := evals[i].SetRandom()
		c.Assert(err, qt.IsNil)
	}
	return evals
}

func TestExtendPolyDoublesLength(t *testing.T) {
	c := qt.New(t)
	poly := randomEvals(c, blob.FieldElementsPerBlob)

	extended, err := ExtendPoly(poly)
	c.Assert(err, qt.IsNil)
	c.Assert(len(extended), qt.Equals, 2*blob.FieldElementsPerBlob)
}

func TestOrderSegmentsRowPlacesContentAtColumnOffsets(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomEvals(c, blob.FieldElementsPerBlob)

	segments, err := segment.PolyToSegmentVec(setup, poly, 7)
	c.Assert(err, qt.IsNil)

	ordered, err := OrderSegmentsRow(7, segments)
	c.Assert(err, qt.IsNil)
	c.Assert(len(ordered), qt.Equals, 2*blob.FieldElementsPerBlob)

	for _, s := range segments {
		base := int(s.Position.X) * kzg.SegmentLength
		for i := 0; i < kzg.SegmentLength; i++ {
			c.Assert(ordered[base+i], qt.Not(qt.IsNil))
			c.Assert(*ordered[base+i], qt.DeepEquals, s.Content[i])
		}
	}
}

func TestOrderSegmentsRowRejectsWrongRow(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomEvals(c, blob.FieldElementsPerBlob)

	segments, err := segment.PolyToSegmentVec(setup, poly, 1)
	c.Assert(err, qt.IsNil)

	_, err = OrderSegmentsRow(2, segments)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestOrderSegmentsRowRejectsDuplicateColumn(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomEvals(c, blob.FieldElementsPerBlob)

	segments, err := segment.PolyToSegmentVec(setup, poly, 0)
	c.Assert(err, qt.IsNil)
	dup := append(segments, segments[0])

	_, err = OrderSegmentsRow(0, dup)
	c.Assert(err, qt.Not(qt.IsNil))
}

func elem(v uint64) fr.Element {
	var e fr.Element
	e.SetUint64(v)
	return e
}

func TestOrderSegmentsColIndexesByY(t *testing.T) {
	c := qt.New(t)
	const numRows = 4
	cells := []segment.Cell{
		{Data: elem(11), Position: segment.Position{X: 3, Y: 0}},
		{Data: elem(22), Position: segment.Position{X: 3, Y: 2}},
	}

	ordered, err := OrderSegmentsCol(3, cells, numRows)
	c.Assert(err, qt.IsNil)
	c.Assert(len(ordered), qt.Equals, 2*numRows)
	c.Assert(*ordered[0], qt.DeepEquals, elem(11))
	c.Assert(*ordered[2], qt.DeepEquals, elem(22))
	c.Assert(ordered[1], qt.IsNil)
}

func TestOrderSegmentsColRejectsWrongColumn(t *testing.T) {
	c := qt.New(t)
	cells := []segment.Cell{{Data: elem(1), Position: segment.Position{X: 5, Y: 0}}}

	_, err := OrderSegmentsCol(6, cells, 4)
	c.Assert(err, qt.Not(qt.IsNil))
}

func TestRecoverReconstructsMissingEntries(t *testing.T) {
	c := qt.New(t)
	evals := randomEvals(c, 8)

	extended, err := kzg.ExtendEvaluations(evals)
	c.Assert(err, qt.IsNil)
	c.Assert(len(extended), qt.Equals, 16)

	sparse := make([]*fr.Element, len(extended))
	// keep only every other entry plus enough to satisfy the threshold.
	for i := 0; i < len(extended); i += 2 {
		v := extended[i]
		sparse[i] = &v
	}

	recovered, err := Recover(sparse)
	c.Assert(err, qt.IsNil)
	c.Assert(len(recovered), qt.Equals, len(extended))
	for i := range extended {
		c.Assert(recovered[i], qt.DeepEquals, extended[i], qt.Commentf("index %d", i))
	}
}

func TestRecoverFailsWithTooFewEntries(t *testing.T) {
	c := qt.New(t)
	sparse := make([]*fr.Element, 16)
	v := fr.NewElement(1)
	sparse[0] = &v

	_, err := Recover(sparse)
	c.Assert(err, qt.Not(qt.IsNil))
}
