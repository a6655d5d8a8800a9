package sampling

import (
	"encoding/binary"
	"fmt"

	"github.com/melodot/melodot/db"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

// Encode serializes c into melodot's length-prefixed wire format: a u32
// sample count, one (position-x u32, position-y u32, availability byte)
// record per sample, a u32 commitment count, then one CommitmentSize-byte
// record per commitment. There is no SCALE library in this dependency
// tree, so this hand-rolled codec stands in for it; every other concern in
// this package reaches for a real library where one exists.
func (c Confidence) Encode() []byte {
	out := make([]byte, 0, 4+len(c.Samples)*9+4+len(c.Commitments)*kzg.CommitmentSize)

	out = appendUint32(out, uint32(len(c.Samples)))
	for _, s := range c.Samples {
		out = appendUint32(out, s.Position.X)
		out = appendUint32(out, s.Position.Y)
		if s.IsAvailable {
			out = append(out, 1)
		} else {
			out = append(out, 0)
		}
	}

	out = appendUint32(out, uint32(len(c.Commitments)))
	for _, cm := range c.Commitments {
		out = append(out, cm[:]...)
	}
	return out
}

// Decode parses the Encode wire format back into a Confidence.
func Decode(data []byte) (Confidence, error) {
	var c Confidence
	pos := 0

	sampleCount, err := readUint32(data, &pos)
	if err != nil {
		return c, fmt.Errorf("sampling: Decode: sample count: %w", err)
	}
	c.Samples = make([]Sample, sampleCount)
	for i := range c.Samples {
		x, err := readUint32(data, &pos)
		if err != nil {
			return c, fmt.Errorf("sampling: Decode: sample %d x: %w", i, err)
		}
		y, err := readUint32(data, &pos)
		if err != nil {
			return c, fmt.Errorf("sampling: Decode: sample %d y: %w", i, err)
		}
		if pos >= len(data) {
			return c, fmt.Errorf("sampling: Decode: sample %d: truncated", i)
		}
		available := data[pos] != 0
		pos++
		c.Samples[i] = Sample{Position: segment.Position{X: x, Y: y}, IsAvailable: available}
	}

	commitCount, err := readUint32(data, &pos)
	if err != nil {
		return c, fmt.Errorf("sampling: Decode: commitment count: %w", err)
	}
	c.Commitments = make([]kzg.Commitment, commitCount)
	for i := range c.Commitments {
		if pos+kzg.CommitmentSize > len(data) {
			return c, fmt.Errorf("sampling: Decode: commitment %d: truncated", i)
		}
		copy(c.Commitments[i][:], data[pos:pos+kzg.CommitmentSize])
		pos += kzg.CommitmentSize
	}

	if pos != len(data) {
		return c, fmt.Errorf("sampling: Decode: %d trailing bytes", len(data)-pos)
	}
	return c, nil
}

func appendUint32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

func readUint32(data []byte, pos *int) (uint32, error) {
	if *pos+4 > len(data) {
		return 0, fmt.Errorf("truncated uint32")
	}
	v := binary.BigEndian.Uint32(data[*pos : *pos+4])
	*pos += 4
	return v, nil
}

// Save persists c under id, overwriting any previous record.
func (c Confidence) Save(database db.Database, id ConfidenceId) error {
	tx := database.WriteTx()
	if err := tx.Set(id, c.Encode()); err != nil {
		tx.Discard()
		return fmt.Errorf("sampling: Save: %w", err)
	}
	return tx.Commit()
}

// Load fetches and decodes the Confidence record stored under id, if any.
// It returns (Confidence{}, false, nil) when no record exists.
func Load(database db.Database, id ConfidenceId) (Confidence, bool, error) {
	raw, err := database.Get(id)
	if err == db.ErrKeyNotFound {
		return Confidence{}, false, nil
	}
	if err != nil {
		return Confidence{}, false, fmt.Errorf("sampling: Load: %w", err)
	}
	c, err := Decode(raw)
	if err != nil {
		return Confidence{}, false, fmt.Errorf("sampling: Load: %w", err)
	}
	return c, true, nil
}

// Remove deletes the Confidence record stored under id, if any.
func Remove(database db.Database, id ConfidenceId) error {
	tx := database.WriteTx()
	if err := tx.Delete(id); err != nil {
		tx.Discard()
		return fmt.Errorf("sampling: Remove: %w", err)
	}
	return tx.Commit()
}
