package farmer

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

// WinCellMetadata records which block a win-cell's segment was plotted
// from, so its block hash and row commitment can be looked up on chain.
type WinCellMetadata struct {
	BlockNumber uint64
}

// Bytes is WinCellMetadata's canonical encoding.
func (m WinCellMetadata) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], m.BlockNumber)
	return b[:]
}

// PreCell is the segment a farmer offers as the solution's pre-cell
// challenge response: a full segment, its offset within it, and the
// position CommitmentFromPosition resolves the expected row commitment
// from.
type PreCell struct {
	Seg        segment.Segment
	CellOffset int
}

// Scalar returns the pre-cell's challenge scalar.
func (p PreCell) Scalar() fr.Element {
	return p.Seg.GetCellByOffset(p.CellOffset).Data
}

// Cell is one win-cell (left or right) offered as part of a solution: the
// segment proving the cell's membership, which offset within it the win
// scalar sits at, and the block the segment was plotted from.
type Cell struct {
	Metadata   WinCellMetadata
	Seg        segment.Segment
	CellOffset int
}

// Scalar returns the win-cell's scalar.
func (c Cell) Scalar() fr.Element {
	return c.Seg.GetCellByOffset(c.CellOffset).Data
}

// Solution is a farmer's proposed mining solution: a pre-cell challenge
// response, and the left/right win-cells of a plotted collision, bound
// together by the previous block's hash and the claiming farmer's id.
type Solution struct {
	PreBlockHash []byte
	FarmerID     FarmerId
	PreCell      PreCell
	WinCellLeft  Cell
	WinCellRight Cell
}

// NewSolution assembles a Solution from its components. It performs no
// verification; call Verify for that.
func NewSolution(preBlockHash []byte, farmerID FarmerId, preCell PreCell, winCellLeft, winCellRight Cell) Solution {
	return Solution{
		PreBlockHash: preBlockHash,
		FarmerID:     farmerID,
		PreCell:      preCell,
		WinCellLeft:  winCellLeft,
		WinCellRight: winCellRight,
	}
}

// hash computes Hash(pre_block_hash || farmer_id || pre_cell_scalar ||
// win_left_scalar || win_right_scalar || win_block_hash_left ||
// win_block_hash_right), the value the mining difficulty predicates are
// evaluated against. Folding in the two win-cells' block hashes binds the
// solution to the chain's actual history, not just to the scalars a
// dishonest farmer could otherwise replay against a different block pair.
func (s Solution) hash(winBlockHashLeft, winBlockHashRight []byte) []byte {
	h := sha256.New()
	h.Write(s.PreBlockHash)
	h.Write(s.FarmerID)
	pre := s.PreCell.Scalar().Bytes()
	h.Write(pre[:])
	left := s.WinCellLeft.Scalar().Bytes()
	h.Write(left[:])
	right := s.WinCellRight.Scalar().Bytes()
	h.Write(right[:])
	h.Write(winBlockHashLeft)
	h.Write(winBlockHashRight)
	return h.Sum(nil)
}

// leadingZeroBits counts the leading zero bits of b, most significant byte
// first.
func leadingZeroBits(b []byte) int {
	count := 0
	for _, by := range b {
		if by == 0 {
			count += 8
			continue
		}
		count += bits.LeadingZeros8(by)
		break
	}
	return count
}

// subTargetSatisfied reports whether sha256(h) interpreted as a big-endian
// unsigned integer falls at or below the target implied by subTarget: a
// subTarget of 1 admits every hash, larger values narrow the accepted range
// proportionally, mirroring a secondary difficulty divisor applied on top
// of the leading-zero-bits predicate.
func subTargetSatisfied(h []byte, subTarget uint64) bool {
	if subTarget <= 1 {
		return true
	}
	secondary := sha256.Sum256(h)
	// secondary <= (2^256 - 1) / subTarget, computed a byte at a time to
	// avoid pulling in math/big for a single comparison.
	var maxDivided [32]byte
	for i := range maxDivided {
		maxDivided[i] = 0xff
	}
	quotient := divideBytesBySmall(maxDivided, subTarget)
	return bytes.Compare(secondary[:], quotient) <= 0
}

// divideBytesBySmall divides the big-endian unsigned integer in v by d,
// returning the big-endian quotient of the same length.
func divideBytesBySmall(v [32]byte, d uint64) []byte {
	out := make([]byte, len(v))
	var rem uint64
	for i, by := range v {
		cur := rem<<8 | uint64(by)
		out[i] = byte(cur / d)
		rem = cur % d
	}
	return out
}

// Verify checks a solution against the row commitments its cells claim to
// belong to and the identity claiming it: each of the three segments must
// carry a genuine multi-opening proof against its commitment, the claiming
// farmerID must match the solution's own FarmerID, and the solution hash —
// now bound to the win-cells' actual block hashes — must satisfy both the
// leading-zero-bits predicate and the secondary sub-target predicate.
func (s Solution) Verify(setup *kzg.Setup, farmerID FarmerId, preCommit, leftCommit, rightCommit kzg.Commitment, winBlockHashLeft, winBlockHashRight []byte, leadingZeros uint32, subTarget uint64) (bool, error) {
	if !bytes.Equal(s.FarmerID, farmerID) {
		return false, nil
	}

	ok, err := s.PreCell.Seg.Verify(setup, preCommit, kzg.ChunkCount)
	if err != nil {
		return false, fmt.Errorf("farmer: Verify: pre-cell: %w", err)
	}
	if !ok {
		return false, nil
	}

	ok, err = s.WinCellLeft.Seg.Verify(setup, leftCommit, kzg.ChunkCount)
	if err != nil {
		return false, fmt.Errorf("farmer: Verify: win-cell left: %w", err)
	}
	if !ok {
		return false, nil
	}

	ok, err = s.WinCellRight.Seg.Verify(setup, rightCommit, kzg.ChunkCount)
	if err != nil {
		return false, fmt.Errorf("farmer: Verify: win-cell right: %w", err)
	}
	if !ok {
		return false, nil
	}

	h := s.hash(winBlockHashLeft, winBlockHashRight)
	if leadingZeroBits(h) < int(leadingZeros) {
		return false, nil
	}
	return subTargetSatisfied(h, subTarget), nil
}
