package kzg

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// ComputeProofSingle computes an opening proof that poly(z) = y, where y is
// returned alongside the proof for the caller's convenience.
//
// The proof is the commitment to the quotient q(X) = (poly(X) - y) / (X - z).
// Grounded on the pairing-based opening proof shape used throughout the
// ecosystem (see other_examples' crate-crypto/go-kzg-4844 kzg_verify.go,
// itself adapted from gnark-crypto's ecc/bls12-381/fr/kzg package).
func ComputeProofSingle(setup *Setup, poly []fr.Element, z fr.Element) (Proof, fr.Element, error) {
	y := EvalPoly(poly, z)

	num := make([]fr.Element, len(poly))
	copy(num, poly)
	num[0].Sub(&num[0], &y)

	den := []fr.Element{{}, {}}
	den[0].Neg(&z)
	den[1].SetOne()

	quotient, err := DivideExact(num, den)
	if err != nil {
		return Proof{}, fr.Element{}, fmt.Errorf("kzg: ComputeProofSingle: %w", err)
	}
	qCommit, err := commitG1(setup, quotient)
	if err != nil {
		return Proof{}, fr.Element{}, err
	}
	return ProofFromAffine(qCommit), y, nil
}

// CheckProofSingle verifies that commitment opens to y at point z via proof,
// using the pairing check:
//
//	e(C - [y]G1, G2gen) * e(-proof, [tau]G2 - [z]G2) == 1
func CheckProofSingle(setup *Setup, commitment Commitment, z, y fr.Element, proof Proof) (bool, error) {
	c, err := commitment.ToAffine()
	if err != nil {
		return false, err
	}
	q, err := proof.ToAffine()
	if err != nil {
		return false, err
	}

	yG1 := scalarMulG1(setup.G1Gen(), y)
	var lhsG1 bls12381.G1Affine
	lhsG1.Sub(&c, &yG1)

	zG2 := scalarMulG2(setup.G2Gen(), z)
	var rhsG2 bls12381.G2Affine
	rhsG2.Sub(&setup.G2Alpha(), &zG2)

	var negQ bls12381.G1Affine
	negQ.Neg(&q)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsG1, negQ},
		[]bls12381.G2Affine{setup.G2Gen(), rhsG2},
	)
	if err != nil {
		return false, fmt.Errorf("kzg: CheckProofSingle: %w", err)
	}
	return ok, nil
}

// ComputeProofMulti computes a multi-point opening proof for poly at the
// SegmentLength points xs, returning the proof together with the claimed
// evaluations ys = poly(xs[i]).
//
// q(X) = (poly(X) - I(X)) / Z(X), where I interpolates (xs, ys) and Z is
// their vanishing polynomial. This generalizes ComputeProofSingle from one
// point to SegmentLength points; it is the FK20-equivalent multi-proof this
// package implements via direct interpolation and division rather than the
// literal Toeplitz-matrix fast algorithm (functionally equivalent, O(n^2)
// instead of O(n log n), acceptable at SegmentLength = 16).
func ComputeProofMulti(setup *Setup, poly []fr.Element, xs []fr.Element) (Proof, []fr.Element, error) {
	ys := make([]fr.Element, len(xs))
	for i, x := range xs {
		ys[i] = EvalPoly(poly, x)
	}

	interp, err := Interpolate(xs, ys)
	if err != nil {
		return Proof{}, nil, fmt.Errorf("kzg: ComputeProofMulti: %w", err)
	}
	vanishing := VanishingPolynomial(xs)

	num := make([]fr.Element, len(poly))
	copy(num, poly)
	for i, c := range interp {
		num[i].Sub(&num[i], &c)
	}

	quotient, err := DivideExact(num, vanishing)
	if err != nil {
		return Proof{}, nil, fmt.Errorf("kzg: ComputeProofMulti: %w", err)
	}
	qCommit, err := commitG1(setup, quotient)
	if err != nil {
		return Proof{}, nil, err
	}
	return ProofFromAffine(qCommit), ys, nil
}

// CheckProofMulti verifies a multi-point opening of commitment at points xs
// with claimed values ys, via:
//
//	e(C - [I(tau)]G1, G2gen) * e(-proof, [Z(tau)]G2) == 1
//
// where I interpolates (xs, ys) and Z is their vanishing polynomial. Both
// are recomputed from xs/ys and committed against setup, so no precomputed
// per-chunk state is required.
func CheckProofMulti(setup *Setup, commitment Commitment, xs, ys []fr.Element, proof Proof) (bool, error) {
	if len(xs) != len(ys) {
		return false, fmt.Errorf("kzg: CheckProofMulti: mismatched xs/ys lengths %d/%d", len(xs), len(ys))
	}
	c, err := commitment.ToAffine()
	if err != nil {
		return false, err
	}
	q, err := proof.ToAffine()
	if err != nil {
		return false, err
	}

	interp, err := Interpolate(xs, ys)
	if err != nil {
		return false, err
	}
	iCommit, err := commitG1(setup, interp)
	if err != nil {
		return false, err
	}
	var lhsG1 bls12381.G1Affine
	lhsG1.Sub(&c, &iCommit)

	vanishing := VanishingPolynomial(xs)
	zCommit, err := commitG2(setup, vanishing)
	if err != nil {
		return false, err
	}

	var negQ bls12381.G1Affine
	negQ.Neg(&q)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{lhsG1, negQ},
		[]bls12381.G2Affine{setup.G2Gen(), zCommit},
	)
	if err != nil {
		return false, fmt.Errorf("kzg: CheckProofMulti: %w", err)
	}
	return ok, nil
}

// AllProofs computes a multi-point opening proof for every one of chunkCount
// chunks of poly, evaluated over a domain of size maxWidth (typically twice
// the blob's field-element count, i.e. the extended polynomial's domain).
// Returns one Proof per chunk, in chunk-index order.
func AllProofs(setup *Setup, poly []fr.Element, maxWidth, chunkCount uint64) ([]Proof, error) {
	proofs := make([]Proof, chunkCount)
	for i := uint64(0); i < chunkCount; i++ {
		xs, err := chunkPoints(maxWidth, chunkCount, i)
		if err != nil {
			return nil, fmt.Errorf("kzg: AllProofs: chunk %d: %w", i, err)
		}
		proof, _, err := ComputeProofMulti(setup, poly, xs)
		if err != nil {
			return nil, fmt.Errorf("kzg: AllProofs: chunk %d: %w", i, err)
		}
		proofs[i] = proof
	}
	return proofs, nil
}
