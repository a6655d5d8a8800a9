package farmer

import (
	"encoding/binary"
	"fmt"

	"github.com/melodot/melodot/db"
)

// ZIndex fronts the z/ key-value prefix (store/ owns the actual prefixed
// view): the persisted map from a Z-value to every (left, right) metadata
// pair that was found to hash to it while plotting.
type ZIndex struct {
	db db.Database
}

// NewZIndex wraps database (expected to be a store/-provided z/ prefixed
// view).
func NewZIndex(database db.Database) *ZIndex {
	return &ZIndex{db: database}
}

// CellMetadataPair is one recorded (left, right) collision under a Z-value
// bucket.
type CellMetadataPair struct {
	Left  CellMetadata
	Right CellMetadata
}

// Append records one more (left, right) pair under z, alongside any pairs
// already recorded there.
func (idx *ZIndex) Append(z ZValue, left, right CellMetadata) error {
	existing, err := idx.Lookup(z)
	if err != nil {
		return err
	}
	updated := append(existing, CellMetadataPair{Left: left, Right: right})

	tx := idx.db.WriteTx()
	if err := tx.Set(z[:], encodeMetadataPairs(updated)); err != nil {
		tx.Discard()
		return fmt.Errorf("farmer: ZIndex.Append: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("farmer: ZIndex.Append: %w", err)
	}
	return nil
}

// Lookup returns every (left, right) pair recorded under z.
func (idx *ZIndex) Lookup(z ZValue) ([]CellMetadataPair, error) {
	raw, err := idx.db.Get(z[:])
	if err == db.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("farmer: ZIndex.Lookup: %w", err)
	}
	return decodeMetadataPairs(raw)
}

func encodeMetadataPairs(pairs []CellMetadataPair) []byte {
	out := make([]byte, 0, 4+len(pairs)*32)
	out = appendCellsUint32(out, uint32(len(pairs)))
	for _, p := range pairs {
		out = append(out, p.Left.Bytes()...)
		out = append(out, p.Right.Bytes()...)
	}
	return out
}

func decodeMetadataPairs(data []byte) ([]CellMetadataPair, error) {
	pos := 0
	count, err := readCellsUint32(data, &pos)
	if err != nil {
		return nil, fmt.Errorf("pair count: %w", err)
	}
	pairs := make([]CellMetadataPair, count)
	for i := range pairs {
		left, n, err := decodeOneCellMetadata(data, pos)
		if err != nil {
			return nil, fmt.Errorf("pair %d left: %w", i, err)
		}
		pos = n
		right, n, err := decodeOneCellMetadata(data, pos)
		if err != nil {
			return nil, fmt.Errorf("pair %d right: %w", i, err)
		}
		pos = n
		pairs[i] = CellMetadataPair{Left: left, Right: right}
	}
	if pos != len(data) {
		return nil, fmt.Errorf("%d trailing bytes", len(data)-pos)
	}
	return pairs, nil
}

func decodeOneCellMetadata(data []byte, pos int) (CellMetadata, int, error) {
	if pos+16 > len(data) {
		return CellMetadata{}, pos, fmt.Errorf("truncated metadata")
	}
	pieceIndex := binary.BigEndian.Uint64(data[pos : pos+8])
	row := binary.BigEndian.Uint32(data[pos+8 : pos+12])
	col := binary.BigEndian.Uint32(data[pos+12 : pos+16])
	meta := CellMetadata{PieceIndex: pieceIndex, Position: PiecePosition{Row: row, Column: col}}
	return meta, pos + 16, nil
}
