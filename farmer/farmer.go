// Package farmer implements melodot's proof-of-space farming: plotting a
// piece's cells into X-value buckets, detecting colliding siblings and
// recording them as Z-value entries, and assembling/verifying the mining
// solutions built from those entries.
package farmer

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

// FarmerId identifies the account a piece was plotted for. It is a 32-byte
// hash of the account's address, supplied by the caller
// (FarmerIDFromSigner derives one from a signing key).
type FarmerId []byte

// PiecePosition locates a cell within a piece by row and column, mirroring
// segment.Position but kept distinct: a piece's row/column numbering is
// plot-local, not a blob-wide segment grid reference.
type PiecePosition struct {
	Row    uint32
	Column uint32
}

// CellMetadata identifies one plotted cell: which piece it came from, and
// its position within that piece.
type CellMetadata struct {
	PieceIndex uint64
	Position   PiecePosition
}

// Bytes is CellMetadata's canonical encoding, used as hash input.
func (m CellMetadata) Bytes() []byte {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], m.PieceIndex)
	binary.BigEndian.PutUint32(b[8:12], m.Position.Row)
	binary.BigEndian.PutUint32(b[12:16], m.Position.Column)
	return b[:]
}

// YPos tags which half of a colliding pair a cell plays: the low bit of a
// cell's absolute index within its piece. Left cells always contribute the
// left-hand argument to a Z-value hash, right cells the right-hand one.
type YPos bool

const (
	YPosLeft  YPos = false
	YPosRight YPos = true
)

// YPosOf derives a cell's YPos tag from its absolute index within the
// piece (row*columns + column).
func YPosOf(absoluteIndex uint64) YPos {
	if absoluteIndex&1 == 1 {
		return YPosRight
	}
	return YPosLeft
}

// XValue is the bucket key cells with matching X-values collide under.
type XValue [32]byte

// ComputeXValue derives a cell's X-value as Hash(farmer_id || scalar_bytes).
func ComputeXValue(farmerID FarmerId, scalar fr.Element) XValue {
	h := sha256.New()
	h.Write(farmerID)
	b := scalar.Bytes()
	h.Write(b[:])
	var out XValue
	copy(out[:], h.Sum(nil))
	return out
}

// ZValue binds a colliding (left, right) pair: Hash(left_meta || right_meta
// || left_scalar || right_scalar). Argument order always follows each
// side's YPos tag, never which cell was plotted first.
type ZValue [32]byte

// ComputeZValue derives the Z-value binding a left/right colliding pair.
func ComputeZValue(leftMeta, rightMeta CellMetadata, leftScalar, rightScalar fr.Element) ZValue {
	h := sha256.New()
	h.Write(leftMeta.Bytes())
	h.Write(rightMeta.Bytes())
	lb := leftScalar.Bytes()
	rb := rightScalar.Bytes()
	h.Write(lb[:])
	h.Write(rb[:])
	var out ZValue
	copy(out[:], h.Sum(nil))
	return out
}

// PlotCell is one plotted scalar together with its piece-local position
// and derived X-value.
type PlotCell struct {
	Metadata CellMetadata
	Position PiecePosition
	Scalar   fr.Element
	XValue   XValue
	YPos     YPos
}

// ZEntry records one materialized collision: the left and right cells whose
// X-values matched, keyed by the Z-value they hash to.
type ZEntry struct {
	Left  PlotCell
	Right PlotCell
	Z     ZValue
}

// PieceMetadata describes a piece's shape: how many segment rows and
// columns of cells it plots (sized so piece.Columns == kzg.SegmentLength).
type PieceMetadata struct {
	PieceIndex uint64
	Rows       uint32
	Columns    uint32
}

// Piece is one farmer's plotted copy of a set of segments: every cell's
// scalar, X-value and the Z-value collisions found while plotting it.
type Piece struct {
	Metadata PieceMetadata
	FarmerID FarmerId
	Cells    []PlotCell
	ZEntries []ZEntry
	// Segments holds the originating segments, one per piece row, so a
	// mined solution can attach the multi-opening proof a win-cell needs
	// for on-chain verification. Indexed by PiecePosition.Row.
	Segments map[uint32]segment.Segment
}

// NewPiece builds an (empty, unplotted) piece shell for rows segment rows
// of kzg.SegmentLength-wide columns.
func NewPiece(pieceIndex uint64, farmerID FarmerId, rows uint32) *Piece {
	return &Piece{
		Metadata: PieceMetadata{PieceIndex: pieceIndex, Rows: rows, Columns: kzg.SegmentLength},
		FarmerID: farmerID,
	}
}

// absoluteIndex returns a cell's flat index within the piece, used to
// derive its YPos tag.
func absoluteIndex(meta PieceMetadata, pos PiecePosition) uint64 {
	return uint64(pos.Row)*uint64(meta.Columns) + uint64(pos.Column)
}

// Save plots every cell of the given segments into the piece: it computes
// each cell's X-value, inserts it into xindex (the persisted x/ bucket
// index, shared across every piece this farmer has ever plotted), and for
// every sibling already occupying that bucket — from this piece or any
// earlier one — materializes a Z-entry binding the pair and appends it to
// zindex. A bucket can hold more than one prior sibling, so a single new
// cell may close out several Z-entries at once.
func (p *Piece) Save(segments []segment.Segment, xindex *XIndex, zindex *ZIndex) error {
	if len(segments) == 0 {
		return fmt.Errorf("farmer: Save: no segments to plot")
	}

	if p.Segments == nil {
		p.Segments = make(map[uint32]segment.Segment, len(segments))
	}
	for _, seg := range segments {
		row := seg.Position.X
		if row >= p.Metadata.Rows {
			return fmt.Errorf("farmer: Save: segment row %d exceeds piece rows %d", row, p.Metadata.Rows)
		}
		p.Segments[row] = seg
		for col := 0; col < kzg.SegmentLength; col++ {
			pos := PiecePosition{Row: row, Column: uint32(col)}
			meta := CellMetadata{PieceIndex: p.Metadata.PieceIndex, Position: pos}
			scalar := seg.Content[col]
			x := ComputeXValue(p.FarmerID, scalar)
			yPos := YPosOf(absoluteIndex(p.Metadata, pos))

			cell := PlotCell{Metadata: meta, Position: pos, Scalar: scalar, XValue: x, YPos: yPos}
			p.Cells = append(p.Cells, cell)

			existing, err := xindex.Insert(cell)
			if err != nil {
				return fmt.Errorf("farmer: Save: %w", err)
			}
			for _, sibling := range existing {
				entry := buildZEntry(cell, sibling)
				p.ZEntries = append(p.ZEntries, entry)
				if err := zindex.Append(entry.Z, entry.Left.Metadata, entry.Right.Metadata); err != nil {
					return fmt.Errorf("farmer: Save: %w", err)
				}
			}
		}
	}
	return nil
}

// buildZEntry orders own and match by their YPos tags (Left contributes the
// left-hand Z-value argument, Right the right-hand one) regardless of
// which cell was plotted first.
func buildZEntry(own, match PlotCell) ZEntry {
	var left, right PlotCell
	if own.YPos == YPosLeft {
		left, right = own, match
	} else {
		left, right = match, own
	}
	z := ComputeZValue(left.Metadata, right.Metadata, left.Scalar, right.Scalar)
	return ZEntry{Left: left, Right: right, Z: z}
}

// GetCell returns the cell plotted at pos, if any.
func (p *Piece) GetCell(pos PiecePosition) (PlotCell, bool) {
	for _, c := range p.Cells {
		if c.Position == pos {
			return c, true
		}
	}
	return PlotCell{}, false
}

// FindZEntry returns the Z-entry whose Z-value equals z, if any has been
// plotted.
func (p *Piece) FindZEntry(z ZValue) (ZEntry, bool) {
	for _, e := range p.ZEntries {
		if e.Z == z {
			return e, true
		}
	}
	return ZEntry{}, false
}
