package kzg

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Commit computes the KZG commitment to poly (coefficient form, low degree
// first): `C = [poly(tau)]G1 = sum_i poly[i] * [tau^i]G1`, evaluated as a
// multi-exponentiation against the setup's G1 powers.
func Commit(setup *Setup, poly []fr.Element) (Commitment, error) {
	g1, err := commitG1(setup, poly)
	if err != nil {
		return Commitment{}, err
	}
	return CommitmentFromAffine(g1), nil
}

func commitG1(setup *Setup, poly []fr.Element) (bls12381.G1Affine, error) {
	var zero bls12381.G1Affine
	if len(poly) == 0 {
		return setup.G1Gen(), fmt.Errorf("kzg: cannot commit to an empty polynomial")
	}
	if len(poly) > len(setup.g1Powers) {
		return zero, fmt.Errorf("kzg: polynomial degree %d exceeds setup max degree %d", len(poly)-1, setup.MaxDegree())
	}
	var result bls12381.G1Affine
	if _, err := result.MultiExp(setup.g1Powers[:len(poly)], poly, ecc.MultiExpConfig{}); err != nil {
		return zero, fmt.Errorf("kzg: commit multi-exp: %w", err)
	}
	return result, nil
}

// commitG2 computes sum_i poly[i] * [tau^i]G2, used by multi-proof
// verification to fold the vanishing polynomial into G2.
func commitG2(setup *Setup, poly []fr.Element) (bls12381.G2Affine, error) {
	var zero bls12381.G2Affine
	if len(poly) > len(setup.g2Powers) {
		return zero, fmt.Errorf("kzg: polynomial degree %d exceeds G2 setup max degree %d", len(poly)-1, len(setup.g2Powers)-1)
	}
	var result bls12381.G2Affine
	if _, err := result.MultiExp(setup.g2Powers[:len(poly)], poly, ecc.MultiExpConfig{}); err != nil {
		return zero, fmt.Errorf("kzg: commit G2 multi-exp: %w", err)
	}
	return result, nil
}

// scalarMulG1 computes [s]P for a scalar s given as an fr.Element.
func scalarMulG1(p bls12381.G1Affine, s fr.Element) bls12381.G1Affine {
	var sBig big.Int
	s.BigInt(&sBig)
	var out bls12381.G1Affine
	out.ScalarMultiplication(&p, &sBig)
	return out
}

func scalarMulG2(p bls12381.G2Affine, s fr.Element) bls12381.G2Affine {
	var sBig big.Int
	s.BigInt(&sBig)
	var out bls12381.G2Affine
	out.ScalarMultiplication(&p, &sBig)
	return out
}
