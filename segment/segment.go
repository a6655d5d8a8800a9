// Package segment implements melodot's sampling unit: a SegmentLength-wide
// slice of an extended blob's evaluations together with the multi-opening
// proof that ties it to a commitment.
package segment

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/kzg"
)

// Position locates a segment (or, with Offset, a single cell) within the
// blob/row grid: Y selects which row (commitment), X selects the segment
// column.
type Position struct {
	X uint32
	Y uint32
}

// Segment is one SegmentLength-wide chunk of an extended blob's evaluations,
// together with the multi-opening proof against the row's commitment.
type Segment struct {
	Position Position
	Content  [kzg.SegmentLength]fr.Element
	Proof    kzg.Proof
}

// Cell is a single scalar within a segment, addressed by its absolute
// column position.
type Cell struct {
	Data     fr.Element
	Position Position
}

// PolyToSegmentVec computes every segment of row's extended evaluation
// domain, twice poly's length. poly is in coefficient form (the form
// kzg.Commit takes). Chunk i holds poly's values at the SegmentLength points
// kzg.ChunkPoints assigns to it, in that order, together with the
// multi-opening proof over those points, packaged as a Segment positioned
// at (i, row).
func PolyToSegmentVec(setup *kzg.Setup, poly []fr.Element, row uint32) ([]Segment, error) {
	extended, err := kzg.ExtendEvaluations(poly)
	if err != nil {
		return nil, fmt.Errorf("segment: PolyToSegmentVec: %w", err)
	}
	maxWidth := uint64(len(extended))
	chunkCount := maxWidth / kzg.SegmentLength
	if chunkCount != kzg.ChunkCount {
		return nil, fmt.Errorf("segment: PolyToSegmentVec: poly length %d yields %d chunks, expected %d", len(poly), chunkCount, kzg.ChunkCount)
	}

	proofs, err := kzg.AllProofs(setup, poly, maxWidth, chunkCount)
	if err != nil {
		return nil, fmt.Errorf("segment: PolyToSegmentVec: %w", err)
	}

	segments := make([]Segment, chunkCount)
	for i := uint64(0); i < chunkCount; i++ {
		xs, err := kzg.ChunkPoints(maxWidth, chunkCount, i)
		if err != nil {
			return nil, fmt.Errorf("segment: PolyToSegmentVec: %w", err)
		}
		var content [kzg.SegmentLength]fr.Element
		for j := range content {
			content[j] = kzg.EvalPoly(poly, xs[j])
		}
		segments[i] = Segment{
			Position: Position{X: uint32(i), Y: row},
			Content:  content,
			Proof:    proofs[i],
		}
	}
	return segments, nil
}

// Verify checks that s was opened against commitment at the domain points
// its Position.X selects, using the same bitreverse mapping PolyToSegmentVec
// committed against. It is the only authoritative test that a received
// segment belongs to the claimed commitment; positions and content are
// otherwise untrusted input.
func (s Segment) Verify(setup *kzg.Setup, commitment kzg.Commitment, chunkCount uint64) (bool, error) {
	maxWidth := chunkCount * kzg.SegmentLength
	xs, err := kzg.ChunkPoints(maxWidth, chunkCount, uint64(s.Position.X))
	if err != nil {
		return false, fmt.Errorf("segment: Verify: %w", err)
	}
	return kzg.CheckProofMulti(setup, commitment, xs, s.Content[:], s.Proof)
}

// GetCellByOffset returns the cell at offset within the segment, with its
// absolute column position computed from the segment's own position.
func (s Segment) GetCellByOffset(offset int) Cell {
	x := s.Position.X*kzg.SegmentLength + uint32(offset)
	return Cell{Data: s.Content[offset], Position: Position{X: x, Y: s.Position.Y}}
}

// GetCellByIndex returns the cell identified by an absolute column index
// within this segment (index % SegmentLength must fall within the segment).
func (s Segment) GetCellByIndex(index int) Cell {
	return s.GetCellByOffset(index % kzg.SegmentLength)
}

// GetAllCells returns every cell in the segment, in offset order.
func (s Segment) GetAllCells() []Cell {
	cells := make([]Cell, kzg.SegmentLength)
	for i := 0; i < kzg.SegmentLength; i++ {
		cells[i] = s.GetCellByOffset(i)
	}
	return cells
}
