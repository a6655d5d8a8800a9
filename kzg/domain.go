package kzg

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
)

// chunkPoints returns the SegmentLength opening points assigned to
// chunkIndex out of chunkCount chunks of a polynomial evaluated over a
// domain of size maxWidth, per spec.md's multi-proof index mapping:
//
//	domain_pos = bitreverse_limited(chunk_count, chunk_index)
//	x_j        = ω ^ (domain_pos + j * chunk_count),   j in [0, SegmentLength)
//
// where ω is the maxWidth-th root of unity. Equivalently, chunk i's points
// are the coset of the chunk_count-index subgroup starting at the
// bit-reversal of i.
func chunkPoints(maxWidth, chunkCount, chunkIndex uint64) ([]fr.Element, error) {
	if maxWidth%chunkCount != 0 {
		return nil, fmt.Errorf("kzg: chunkPoints: maxWidth %d not divisible by chunkCount %d", maxWidth, chunkCount)
	}
	n := maxWidth / chunkCount
	if n != SegmentLength {
		return nil, fmt.Errorf("kzg: chunkPoints: maxWidth/chunkCount must equal SegmentLength (%d), got %d", SegmentLength, n)
	}
	domainPos, err := BitreverseLimited(chunkCount, chunkIndex)
	if err != nil {
		return nil, err
	}

	domain := fft.NewDomain(maxWidth)
	var base fr.Element
	base.Exp(domain.Generator, new(big.Int).SetUint64(domainPos))

	var step fr.Element
	step.Exp(domain.Generator, new(big.Int).SetUint64(chunkCount))

	points := make([]fr.Element, n)
	points[0] = base
	for j := uint64(1); j < n; j++ {
		points[j].Mul(&points[j-1], &step)
	}
	return points, nil
}

// ChunkPoints is the exported form of chunkPoints, used by callers (segment
// verification) that need the same domain points AllProofs committed
// against without recomputing AllProofs itself.
func ChunkPoints(maxWidth, chunkCount, chunkIndex uint64) ([]fr.Element, error) {
	return chunkPoints(maxWidth, chunkCount, chunkIndex)
}
