package kzg

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// BatchOpening is one commitment/point/value/proof quadruple to be checked
// as part of a batch.
type BatchOpening struct {
	Commitment Commitment
	Z          fr.Element
	Y          fr.Element
	Proof      Proof
}

// VerifyBlobsProofBatch verifies many independent single-point openings at
// once, folding them into two pairings instead of one pairing pair per
// opening. Ported from the crate-crypto/go-kzg-4844 BatchVerifyMultiPoints
// reference (see kzg/proof.go's CheckProofSingle doc comment for the
// single-opening form this generalizes), adapted to take an explicit
// randomness source so callers can supply Fiat-Shamir-derived challenges
// instead of crypto/rand.
func VerifyBlobsProofBatch(setup *Setup, openings []BatchOpening, challenge fr.Element) (bool, error) {
	n := len(openings)
	if n == 0 {
		return true, nil
	}
	if n == 1 {
		return CheckProofSingle(setup, openings[0].Commitment, openings[0].Z, openings[0].Y, openings[0].Proof)
	}

	randomNumbers := computePowers(challenge, n)

	quotients := make([]bls12381.G1Affine, n)
	commitments := make([]bls12381.G1Affine, n)
	for i, o := range openings {
		q, err := o.Proof.ToAffine()
		if err != nil {
			return false, err
		}
		c, err := o.Commitment.ToAffine()
		if err != nil {
			return false, err
		}
		quotients[i] = q
		commitments[i] = c
	}

	config := ecc.MultiExpConfig{}
	var foldedQuotients bls12381.G1Affine
	if _, err := foldedQuotients.MultiExp(quotients, randomNumbers, config); err != nil {
		return false, fmt.Errorf("kzg: VerifyBlobsProofBatch: fold quotients: %w", err)
	}

	var foldedCommitments bls12381.G1Affine
	if _, err := foldedCommitments.MultiExp(commitments, randomNumbers, config); err != nil {
		return false, fmt.Errorf("kzg: VerifyBlobsProofBatch: fold commitments: %w", err)
	}

	var foldedEvaluations fr.Element
	for i, o := range openings {
		var term fr.Element
		term.Mul(&o.Y, &randomNumbers[i])
		foldedEvaluations.Add(&foldedEvaluations, &term)
	}
	foldedEvalCommit := scalarMulG1(setup.G1Gen(), foldedEvaluations)

	var lhs bls12381.G1Affine
	lhs.Sub(&foldedCommitments, &foldedEvalCommit)

	pointsQuotients := make([]fr.Element, n)
	for i, o := range openings {
		pointsQuotients[i].Mul(&randomNumbers[i], &o.Z)
	}
	var foldedPointsQuotients bls12381.G1Affine
	if _, err := foldedPointsQuotients.MultiExp(quotients, pointsQuotients, config); err != nil {
		return false, fmt.Errorf("kzg: VerifyBlobsProofBatch: fold point-quotients: %w", err)
	}
	lhs.Add(&lhs, &foldedPointsQuotients)

	var negQuotients bls12381.G1Affine
	negQuotients.Neg(&foldedQuotients)

	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{lhs, negQuotients},
		[]bls12381.G2Affine{setup.G2Gen(), setup.G2Alpha()},
	)
	if err != nil {
		return false, fmt.Errorf("kzg: VerifyBlobsProofBatch: %w", err)
	}
	return ok, nil
}

// computePowers returns [1, x, x^2, ..., x^(n-1)].
func computePowers(x fr.Element, n int) []fr.Element {
	powers := make([]fr.Element, n)
	if n == 0 {
		return powers
	}
	powers[0].SetOne()
	for i := 1; i < n; i++ {
		powers[i].Mul(&powers[i-1], &x)
	}
	return powers
}
