package farmer

import (
	"encoding/binary"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/melodot/melodot/db"
)

// XIndex fronts the x/ key-value prefix (store/ owns the actual prefixed
// view) with a bounded in-memory cache of recently-plotted X-value
// buckets: Piece.Save scans for same-X siblings on every insert, and a
// large farm's hot working set does not fit comfortably in repeated KV
// round-trips.
type XIndex struct {
	db    db.Database
	cache *lru.Cache[XValue, []PlotCell]
}

// NewXIndex wraps database (expected to be a store/-provided x/ prefixed
// view) with a cache holding up to size recently-touched buckets.
func NewXIndex(database db.Database, size int) (*XIndex, error) {
	cache, err := lru.New[XValue, []PlotCell](size)
	if err != nil {
		return nil, fmt.Errorf("farmer: NewXIndex: %w", err)
	}
	return &XIndex{db: database, cache: cache}, nil
}

// Bucket returns every cell already plotted under x, consulting the cache
// before falling back to the backing store.
func (idx *XIndex) Bucket(x XValue) ([]PlotCell, error) {
	if cells, ok := idx.cache.Get(x); ok {
		return cells, nil
	}

	raw, err := idx.db.Get(x[:])
	if err == db.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("farmer: Bucket: %w", err)
	}
	cells, err := decodePlotCells(raw)
	if err != nil {
		return nil, fmt.Errorf("farmer: Bucket: %w", err)
	}
	idx.cache.Add(x, cells)
	return cells, nil
}

// Insert appends cell to its X-value bucket and persists the updated
// bucket, returning the bucket's prior contents (the siblings cell may
// have collided with).
func (idx *XIndex) Insert(cell PlotCell) ([]PlotCell, error) {
	existing, err := idx.Bucket(cell.XValue)
	if err != nil {
		return nil, err
	}
	updated := append(append([]PlotCell{}, existing...), cell)

	tx := idx.db.WriteTx()
	if err := tx.Set(cell.XValue[:], encodePlotCells(updated)); err != nil {
		tx.Discard()
		return nil, fmt.Errorf("farmer: Insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("farmer: Insert: %w", err)
	}
	idx.cache.Add(cell.XValue, updated)
	return existing, nil
}

func encodePlotCells(cells []PlotCell) []byte {
	out := make([]byte, 0, 4+len(cells)*89)
	out = appendCellsUint32(out, uint32(len(cells)))
	for _, c := range cells {
		out = append(out, c.Metadata.Bytes()...)    // 16 bytes
		out = appendCellsUint32(out, c.Position.Row) // 4 bytes
		out = appendCellsUint32(out, c.Position.Column) // 4 bytes
		sb := c.Scalar.Bytes()
		out = append(out, sb[:]...) // 32 bytes
		out = append(out, c.XValue[:]...) // 32 bytes
		if c.YPos {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}
	return out
}

func decodePlotCells(data []byte) ([]PlotCell, error) {
	cells, pos, err := decodePlotCellsAt(data, 0)
	if err != nil {
		return nil, err
	}
	if pos != len(data) {
		return nil, fmt.Errorf("%d trailing bytes", len(data)-pos)
	}
	return cells, nil
}

// decodePlotCellsAt decodes a count-prefixed cell list starting at pos
// within a larger buffer, returning the position immediately after the
// parsed cells instead of requiring the buffer to end there.
func decodePlotCellsAt(data []byte, pos int) ([]PlotCell, int, error) {
	count, err := readCellsUint32(data, &pos)
	if err != nil {
		return nil, pos, fmt.Errorf("cell count: %w", err)
	}
	cells := make([]PlotCell, count)
	for i := range cells {
		cell, n, err := decodeOnePlotCell(data, pos)
		if err != nil {
			return nil, pos, fmt.Errorf("cell %d: %w", i, err)
		}
		cells[i] = cell
		pos = n
	}
	return cells, pos, nil
}

func decodeOnePlotCell(data []byte, pos int) (PlotCell, int, error) {
	if pos+16 > len(data) {
		return PlotCell{}, pos, fmt.Errorf("truncated metadata")
	}
	pieceIndex := binary.BigEndian.Uint64(data[pos : pos+8])
	metaRow := binary.BigEndian.Uint32(data[pos+8 : pos+12])
	metaCol := binary.BigEndian.Uint32(data[pos+12 : pos+16])
	pos += 16

	row, err := readCellsUint32(data, &pos)
	if err != nil {
		return PlotCell{}, pos, fmt.Errorf("row: %w", err)
	}
	col, err := readCellsUint32(data, &pos)
	if err != nil {
		return PlotCell{}, pos, fmt.Errorf("column: %w", err)
	}

	if pos+32 > len(data) {
		return PlotCell{}, pos, fmt.Errorf("truncated scalar")
	}
	var scalar fr.Element
	scalar.SetBytes(data[pos : pos+32])
	pos += 32

	if pos+32 > len(data) {
		return PlotCell{}, pos, fmt.Errorf("truncated x-value")
	}
	var x XValue
	copy(x[:], data[pos:pos+32])
	pos += 32

	if pos >= len(data) {
		return PlotCell{}, pos, fmt.Errorf("truncated y-pos")
	}
	yPos := YPos(data[pos] != 0)
	pos++

	cell := PlotCell{
		Metadata: CellMetadata{PieceIndex: pieceIndex, Position: PiecePosition{Row: metaRow, Column: metaCol}},
		Position: PiecePosition{Row: row, Column: col},
		Scalar:   scalar,
		XValue:   x,
		YPos:     yPos,
	}
	return cell, pos, nil
}

func appendCellsUint32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

func readCellsUint32(data []byte, pos *int) (uint32, error) {
	if *pos+4 > len(data) {
		return 0, fmt.Errorf("truncated uint32")
	}
	v := binary.BigEndian.Uint32(data[*pos : *pos+4])
	*pos += 4
	return v, nil
}
