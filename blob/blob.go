// Package blob implements the fixed-width scalar vectors melodot commits
// to: byte <-> field-element conversion, padding, and KZG commitment.
package blob

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/kzg"
)

// FieldElementsPerBlob is melodot's blob width, chosen so that a blob's
// extended (2x) evaluation domain splits evenly into exactly ChunkCount
// segments of SegmentLength scalars each: extending FieldElementsPerBlob
// evaluations doubles them to ChunkCount*SegmentLength.
const FieldElementsPerBlob = kzg.ChunkCount * kzg.SegmentLength / 2

// BytesPerFieldElement is the canonical encoded size of one scalar.
const BytesPerFieldElement = kzg.ScalarSize

// BytesPerBlob is the exact byte length TryFromBytes requires.
const BytesPerBlob = BytesPerFieldElement * FieldElementsPerBlob

// Blob is an ordered sequence of exactly FieldElementsPerBlob scalars.
type Blob []fr.Element

// TryFromBytes parses data into a Blob. data must be exactly BytesPerBlob
// long; every BytesPerFieldElement-byte chunk must be a canonical in-field
// scalar encoding.
func TryFromBytes(data []byte) (Blob, error) {
	if len(data) != BytesPerBlob {
		return nil, fmt.Errorf("blob: invalid byte length, expected %d got %d", BytesPerBlob, len(data))
	}
	return fromBytes(data)
}

// TryFromBytesPad parses data into a Blob, zero-padding on the right to
// FieldElementsPerBlob scalars when data is shorter than BytesPerBlob. data
// longer than BytesPerBlob is an error.
func TryFromBytesPad(data []byte) (Blob, error) {
	if len(data) > BytesPerBlob {
		return nil, fmt.Errorf("blob: invalid byte length, expected at most %d got %d", BytesPerBlob, len(data))
	}
	scalars, err := fromBytes(data)
	if err != nil {
		return nil, err
	}
	if len(scalars) < FieldElementsPerBlob {
		padded := make(Blob, FieldElementsPerBlob)
		copy(padded, scalars)
		return padded, nil
	}
	return scalars, nil
}

func fromBytes(data []byte) (Blob, error) {
	if len(data)%BytesPerFieldElement != 0 {
		return nil, fmt.Errorf("blob: byte length %d is not a multiple of %d", len(data), BytesPerFieldElement)
	}
	n := len(data) / BytesPerFieldElement
	scalars := make(Blob, n)
	for i := 0; i < n; i++ {
		chunk := data[i*BytesPerFieldElement : (i+1)*BytesPerFieldElement]
		if err := setCanonical(&scalars[i], chunk); err != nil {
			return nil, fmt.Errorf("blob: field element %d: %w", i, err)
		}
	}
	return scalars, nil
}

// setCanonical parses b as a big-endian scalar and rejects values that are
// not strictly less than the field modulus, matching the "every scalar is
// in-field" invariant.
func setCanonical(e *fr.Element, b []byte) error {
	v := new(big.Int).SetBytes(b)
	if v.Cmp(fr.Modulus()) >= 0 {
		return fmt.Errorf("value is not a canonical field element")
	}
	e.SetBigInt(v)
	return nil
}

// Bytes serializes the blob back to its canonical byte encoding; the
// inverse of TryFromBytes for exact-length blobs.
func (b Blob) Bytes() []byte {
	out := make([]byte, len(b)*BytesPerFieldElement)
	for i, e := range b {
		be := e.Bytes()
		copy(out[i*BytesPerFieldElement:], be[:])
	}
	return out
}

// Polynomial returns the coefficient-form polynomial this blob's scalars
// represent as evaluations, trimmed of trailing zero coefficients but
// never shorter than one element.
func (b Blob) Polynomial() ([]fr.Element, error) {
	coeffs, err := kzg.CoeffsFromEvaluations([]fr.Element(b))
	if err != nil {
		return nil, fmt.Errorf("blob: polynomial: %w", err)
	}
	return normalize(coeffs), nil
}

// normalize trims trailing zero coefficients, keeping at least one element.
func normalize(poly []fr.Element) []fr.Element {
	i := len(poly)
	for i > 1 && poly[i-1].IsZero() {
		i--
	}
	return poly[:i]
}

// Commit returns the evaluation-form KZG commitment to the blob: the
// commitment to the polynomial whose evaluations on the canonical domain
// equal the blob's scalars.
func (b Blob) Commit(setup *kzg.Setup) (kzg.Commitment, error) {
	poly, err := b.Polynomial()
	if err != nil {
		return kzg.Commitment{}, err
	}
	return kzg.Commit(setup, poly)
}
