// Package kzg implements the field/group primitives and KZG polynomial
// commitment operations that back melodot's data-availability blobs:
// scalar and commitment encoding, trusted-setup handling, and single- and
// multi-point opening proofs over BLS12-381.
package kzg

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

const (
	// SegmentLength is the number of scalars carried by one Segment, and the
	// number of points opened by a single multi-proof.
	SegmentLength = 16

	// ChunkCount is the number of chunks a blob's extended polynomial is
	// split into for sampling. The reference implementation this is ported
	// from computes `2 ^ 4` as a bitwise XOR (yielding 6), a known bug;
	// melodot always uses the intended value, 16.
	ChunkCount = 16

	// NumG1Powers bounds the degree of polynomials melodot can commit to.
	NumG1Powers = 32768

	// NumG2Powers bounds the degree of vanishing polynomials melodot can
	// verify multi-point openings against; must exceed SegmentLength.
	NumG2Powers = 65
)

// ScalarSize is the canonical encoded size of a BLS12-381 scalar field
// element.
const ScalarSize = fr.Bytes

// CommitmentSize and ProofSize are the encoded size of a compressed
// BLS12-381 G1 point.
const (
	CommitmentSize = bls12381.SizeOfG1AffineCompressed
	ProofSize      = bls12381.SizeOfG1AffineCompressed
)

// Scalar is a BLS12-381 scalar field element in canonical encoding.
type Scalar = fr.Element

// Commitment is a compressed KZG commitment: one G1 point.
type Commitment [CommitmentSize]byte

// Proof is a compressed KZG opening proof: one G1 point.
type Proof [ProofSize]byte

// point decompresses a Commitment or Proof into an affine G1 point.
func point(b []byte) (bls12381.G1Affine, error) {
	var p bls12381.G1Affine
	if len(b) != CommitmentSize {
		return p, fmt.Errorf("kzg: expected %d bytes, got %d", CommitmentSize, len(b))
	}
	if _, err := p.SetBytes(b); err != nil {
		return p, fmt.Errorf("kzg: invalid G1 point: %w", err)
	}
	return p, nil
}

// ToAffine decompresses a Commitment into an affine G1 point.
func (c Commitment) ToAffine() (bls12381.G1Affine, error) { return point(c[:]) }

// ToAffine decompresses a Proof into an affine G1 point.
func (p Proof) ToAffine() (bls12381.G1Affine, error) { return point(p[:]) }

// fromAffine compresses an affine G1 point.
func fromAffine(p bls12381.G1Affine) [CommitmentSize]byte {
	return p.Bytes()
}

// CommitmentFromAffine compresses a G1 point into a Commitment.
func CommitmentFromAffine(p bls12381.G1Affine) Commitment { return Commitment(fromAffine(p)) }

// ProofFromAffine compresses a G1 point into a Proof.
func ProofFromAffine(p bls12381.G1Affine) Proof { return Proof(fromAffine(p)) }
