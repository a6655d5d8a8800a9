package kzg

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

func testSetup(t testing.TB) *Setup {
	s, err := NewInsecureTestSetup(t.Name(), NumG1Powers)
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

func TestCommitmentRoundTrip(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomPoly(c, 8)

	commitment, err := Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	affine, err := commitment.ToAffine()
	c.Assert(err, qt.IsNil)
	c.Assert(CommitmentFromAffine(affine), qt.Equals, commitment)
}

func TestCommitEmptyPolynomial(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	_, err := Commit(setup, nil)
	c.Assert(err, qt.ErrorMatches, ".*empty polynomial.*")
}

func TestSingleProofRoundTrip(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomPoly(c, 16)

	commitment, err := Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	var z fr.Element
	z.SetUint64(7)

	proof, y, err := ComputeProofSingle(setup, poly, z)
	c.Assert(err, qt.IsNil)
	c.Assert(y, qt.DeepEquals, EvalPoly(poly, z))

	ok, err := CheckProofSingle(setup, commitment, z, y, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}

func TestSingleProofRejectsWrongValue(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomPoly(c, 16)

	commitment, err := Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	var z fr.Element
	z.SetUint64(7)
	proof, y, err := ComputeProofSingle(setup, poly, z)
	c.Assert(err, qt.IsNil)

	var wrongY fr.Element
	wrongY.Add(&y, &fr.Element{1})

	ok, err := CheckProofSingle(setup, commitment, z, wrongY, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestMultiProofRoundTrip(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomPoly(c, 64)

	commitment, err := Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	xs := make([]fr.Element, SegmentLength)
	for i := range xs {
		xs[i].SetUint64(uint64(100 + i))
	}

	proof, ys, err := ComputeProofMulti(setup, poly, xs)
	c.Assert(err, qt.IsNil)
	c.Assert(len(ys), qt.Equals, SegmentLength)

	ok, err := CheckProofMulti(setup, commitment, xs, ys, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}

func TestMultiProofRejectsTamperedValue(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	poly := randomPoly(c, 64)

	commitment, err := Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	xs := make([]fr.Element, SegmentLength)
	for i := range xs {
		xs[i].SetUint64(uint64(200 + i))
	}
	proof, ys, err := ComputeProofMulti(setup, poly, xs)
	c.Assert(err, qt.IsNil)

	ys[0].Add(&ys[0], &fr.Element{1})

	ok, err := CheckProofMulti(setup, commitment, xs, ys, proof)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestAllProofsCoverEveryChunk(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	const chunkCount = ChunkCount
	const maxWidth = chunkCount * SegmentLength
	poly := randomPoly(c, maxWidth)

	commitment, err := Commit(setup, poly)
	c.Assert(err, qt.IsNil)

	proofs, err := AllProofs(setup, poly, maxWidth, chunkCount)
	c.Assert(err, qt.IsNil)
	c.Assert(len(proofs), qt.Equals, chunkCount)

	for i := 0; i < chunkCount; i++ {
		xs, err := chunkPoints(maxWidth, chunkCount, uint64(i))
		c.Assert(err, qt.IsNil)
		ys := make([]fr.Element, len(xs))
		for j, x := range xs {
			ys[j] = EvalPoly(poly, x)
		}
		ok, err := CheckProofMulti(setup, commitment, xs, ys, proofs[i])
		c.Assert(err, qt.IsNil)
		c.Assert(ok, qt.IsTrue, qt.Commentf("chunk %d failed to verify", i))
	}
}

func TestVerifyBlobsProofBatch(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	const n = 5
	openings := make([]BatchOpening, n)
	for i := 0; i < n; i++ {
		poly := randomPoly(c, 8)
		commitment, err := Commit(setup, poly)
		c.Assert(err, qt.IsNil)

		var z fr.Element
		z.SetUint64(uint64(10 + i))
		proof, y, err := ComputeProofSingle(setup, poly, z)
		c.Assert(err, qt.IsNil)

		openings[i] = BatchOpening{Commitment: commitment, Z: z, Y: y, Proof: proof}
	}

	var challenge fr.Element
	_, err := challenge.SetRandom()
	c.Assert(err, qt.IsNil)

	ok, err := VerifyBlobsProofBatch(setup, openings, challenge)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
}

func TestVerifyBlobsProofBatchRejectsBadOpening(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)

	const n = 3
	openings := make([]BatchOpening, n)
	for i := 0; i < n; i++ {
		poly := randomPoly(c, 8)
		commitment, err := Commit(setup, poly)
		c.Assert(err, qt.IsNil)

		var z fr.Element
		z.SetUint64(uint64(20 + i))
		proof, y, err := ComputeProofSingle(setup, poly, z)
		c.Assert(err, qt.IsNil)

		openings[i] = BatchOpening{Commitment: commitment, Z: z, Y: y, Proof: proof}
	}
	openings[1].Y.Add(&openings[1].Y, &fr.Element{1})

	var challenge fr.Element
	_, err := challenge.SetRandom()
	c.Assert(err, qt.IsNil)

	ok, err := VerifyBlobsProofBatch(setup, openings, challenge)
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsFalse)
}

func TestExtendEvaluationsDoublesLength(t *testing.T) {
	c := qt.New(t)
	evals := randomPoly(c, 8)

	extended, err := ExtendEvaluations(evals)
	c.Assert(err, qt.IsNil)
	c.Assert(len(extended), qt.Equals, 16)
}

func TestInterpolateMatchesEvalPoly(t *testing.T) {
	c := qt.New(t)
	poly := randomPoly(c, 5)

	xs := make([]fr.Element, 5)
	ys := make([]fr.Element, 5)
	for i := range xs {
		xs[i].SetUint64(uint64(i + 1))
		ys[i] = EvalPoly(poly, xs[i])
	}

	interp, err := Interpolate(xs, ys)
	c.Assert(err, qt.IsNil)

	var probe fr.Element
	probe.SetUint64(42)
	c.Assert(EvalPoly(interp, probe), qt.DeepEquals, EvalPoly(poly, probe))
}

func TestBitreverseLimitedIsInvolution(t *testing.T) {
	c := qt.New(t)
	for i := uint64(0); i < 16; i++ {
		r, err := BitreverseLimited(16, i)
		c.Assert(err, qt.IsNil)
		r2, err := BitreverseLimited(16, r)
		c.Assert(err, qt.IsNil)
		c.Assert(r2, qt.Equals, i)
	}
}

func TestBitreverseLimitedRejectsNonPowerOfTwo(t *testing.T) {
	c := qt.New(t)
	_, err := BitreverseLimited(6, 0)
	c.Assert(err, qt.Not(qt.IsNil))
}
