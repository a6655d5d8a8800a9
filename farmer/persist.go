package farmer

import (
	"encoding/binary"
	"fmt"

	"github.com/melodot/melodot/db"
)

// Encode serializes a Piece into melodot's length-prefixed wire format:
// metadata, the farmer id, the plotted cells (reusing the x-bucket cell
// codec), then the Z-entries.
func (p Piece) Encode() []byte {
	out := make([]byte, 0, 16+4+len(p.FarmerID))

	var metaBuf [16]byte
	binary.BigEndian.PutUint64(metaBuf[0:8], p.Metadata.PieceIndex)
	binary.BigEndian.PutUint32(metaBuf[8:12], p.Metadata.Rows)
	binary.BigEndian.PutUint32(metaBuf[12:16], p.Metadata.Columns)
	out = append(out, metaBuf[:]...)

	out = appendCellsUint32(out, uint32(len(p.FarmerID)))
	out = append(out, p.FarmerID...)

	out = append(out, encodePlotCells(p.Cells)...)
	out = append(out, encodeZEntries(p.ZEntries)...)
	return out
}

// DecodePiece parses Encode's wire format back into a Piece. Segments is
// left nil: a decoded Piece retains its plotted cells and Z-entries but not
// the originating segments, which callers reload from their own segment
// store when mining.
func DecodePiece(data []byte) (Piece, error) {
	var p Piece
	pos := 0

	if pos+16 > len(data) {
		return p, fmt.Errorf("farmer: DecodePiece: truncated metadata")
	}
	p.Metadata.PieceIndex = binary.BigEndian.Uint64(data[pos : pos+8])
	p.Metadata.Rows = binary.BigEndian.Uint32(data[pos+8 : pos+12])
	p.Metadata.Columns = binary.BigEndian.Uint32(data[pos+12 : pos+16])
	pos += 16

	farmerIDLen, err := readCellsUint32(data, &pos)
	if err != nil {
		return p, fmt.Errorf("farmer: DecodePiece: farmer id length: %w", err)
	}
	if pos+int(farmerIDLen) > len(data) {
		return p, fmt.Errorf("farmer: DecodePiece: truncated farmer id")
	}
	p.FarmerID = FarmerId(append([]byte{}, data[pos:pos+int(farmerIDLen)]...))
	pos += int(farmerIDLen)

	cells, n, err := decodePlotCellsAt(data, pos)
	if err != nil {
		return p, fmt.Errorf("farmer: DecodePiece: cells: %w", err)
	}
	p.Cells = cells
	pos = n

	entries, n, err := decodeZEntriesAt(data, pos)
	if err != nil {
		return p, fmt.Errorf("farmer: DecodePiece: z-entries: %w", err)
	}
	p.ZEntries = entries
	pos = n

	if pos != len(data) {
		return p, fmt.Errorf("farmer: DecodePiece: %d trailing bytes", len(data)-pos)
	}
	return p, nil
}

// encodeZEntries and decodeZEntriesAt serialize the Z-entry list: a count,
// then per entry the left cell, right cell (each via the plot-cell codec)
// and the 32-byte Z-value.
func encodeZEntries(entries []ZEntry) []byte {
	out := appendCellsUint32(nil, uint32(len(entries)))
	for _, e := range entries {
		out = append(out, encodePlotCells([]PlotCell{e.Left})...)
		out = append(out, encodePlotCells([]PlotCell{e.Right})...)
		out = append(out, e.Z[:]...)
	}
	return out
}

func decodeZEntriesAt(data []byte, pos int) ([]ZEntry, int, error) {
	count, err := readCellsUint32(data, &pos)
	if err != nil {
		return nil, pos, fmt.Errorf("count: %w", err)
	}
	entries := make([]ZEntry, count)
	for i := range entries {
		left, n, err := decodePlotCellsAt(data, pos)
		if err != nil {
			return nil, pos, fmt.Errorf("entry %d left: %w", i, err)
		}
		if len(left) != 1 {
			return nil, pos, fmt.Errorf("entry %d left: expected 1 cell, got %d", i, len(left))
		}
		pos = n

		right, n, err := decodePlotCellsAt(data, pos)
		if err != nil {
			return nil, pos, fmt.Errorf("entry %d right: %w", i, err)
		}
		if len(right) != 1 {
			return nil, pos, fmt.Errorf("entry %d right: expected 1 cell, got %d", i, len(right))
		}
		pos = n

		if pos+32 > len(data) {
			return nil, pos, fmt.Errorf("entry %d: truncated z-value", i)
		}
		var z ZValue
		copy(z[:], data[pos:pos+32])
		pos += 32

		entries[i] = ZEntry{Left: left[0], Right: right[0], Z: z}
	}
	return entries, pos, nil
}

// Save persists p under its piece index, overwriting any previous record.
func Save(database db.Database, p Piece) error {
	key := pieceKey(p.Metadata.PieceIndex)
	tx := database.WriteTx()
	if err := tx.Set(key, p.Encode()); err != nil {
		tx.Discard()
		return fmt.Errorf("farmer: Save: %w", err)
	}
	return tx.Commit()
}

// Load fetches and decodes the Piece stored under pieceIndex, if any.
func Load(database db.Database, pieceIndex uint64) (Piece, bool, error) {
	raw, err := database.Get(pieceKey(pieceIndex))
	if err == db.ErrKeyNotFound {
		return Piece{}, false, nil
	}
	if err != nil {
		return Piece{}, false, fmt.Errorf("farmer: Load: %w", err)
	}
	p, err := DecodePiece(raw)
	if err != nil {
		return Piece{}, false, fmt.Errorf("farmer: Load: %w", err)
	}
	return p, true, nil
}

func pieceKey(pieceIndex uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], pieceIndex)
	return b[:]
}
