// Package sampling implements melodot's availability confidence engine:
// random sample selection, the Permill-based confidence metric, the
// Pending -> Verified sample state machine, and segment verification
// against a blob's commitments.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/melodot/melodot/blob"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

// SamplesPerBlob is the number of distinct sampling positions along a
// blob's column axis.
const SamplesPerBlob = blob.FieldElementsPerBlob / kzg.ChunkCount

// AvailabilityThreshold is the confidence value above which a blob is
// declared available.
var AvailabilityThreshold = NewPermill(800_000)

// ConfidenceId identifies a persisted Confidence record; its bytes are
// used directly as the record's store key.
type ConfidenceId []byte

// BlockConfidenceId keys a confidence record by block hash alone.
func BlockConfidenceId(blockHash []byte) ConfidenceId {
	id := make(ConfidenceId, len(blockHash))
	copy(id, blockHash)
	return id
}

// AppConfidenceId keys a confidence record by (appID, blockNum): appID
// first so records for the same app sort contiguously, blockNum appended
// as 8 little-endian bytes.
func AppConfidenceId(blockNum uint64, appID []byte) ConfidenceId {
	id := make(ConfidenceId, 0, len(appID)+8)
	id = append(id, appID...)
	var blockNumBytes [8]byte
	binary.LittleEndian.PutUint64(blockNumBytes[:], blockNum)
	return append(id, blockNumBytes[:]...)
}

// Sample is one sampled position within a Confidence record, together with
// whether it has been verified available. is_availability only ever moves
// false -> true (Pending -> Verified); it is never reset.
type Sample struct {
	Position    segment.Position
	IsAvailable bool
}

// SetAvailable marks the sample verified. It is idempotent.
func (s *Sample) SetAvailable() { s.IsAvailable = true }

// Key returns this sample's per-store key: block_num (8 LE bytes) ‖
// app_id_be (4 BE bytes) ‖ position (X, Y as 4 BE bytes each) — kept
// distinct from the owning Confidence record's key so individual sample
// outcomes can be stored or fetched out of band.
func (s Sample) Key(blockNum uint64, appID uint32) []byte {
	key := make([]byte, 0, 8+4+8)
	var blockNumBytes [8]byte
	binary.LittleEndian.PutUint64(blockNumBytes[:], blockNum)
	key = append(key, blockNumBytes[:]...)

	var appIDBytes [4]byte
	binary.BigEndian.PutUint32(appIDBytes[:], appID)
	key = append(key, appIDBytes[:]...)

	var posBytes [8]byte
	binary.BigEndian.PutUint32(posBytes[0:4], s.Position.X)
	binary.BigEndian.PutUint32(posBytes[4:8], s.Position.Y)
	return append(key, posBytes[:]...)
}

// Confidence tracks the sampling outcomes that back one blob's
// availability judgment, alongside the row commitments samples are
// verified against.
type Confidence struct {
	Samples     []Sample
	Commitments []kzg.Commitment
}

// Value computes 1 - base^k where k is the number of samples verified
// available, using saturating Permill fixed-point arithmetic.
func (c Confidence) Value(base Permill) Permill {
	successCount := 0
	for _, s := range c.Samples {
		if s.IsAvailable {
			successCount++
		}
	}
	return calculateConfidence(successCount, base)
}

// ExceedsThreshold reports whether c.Value(base) is strictly greater than
// threshold.
func (c Confidence) ExceedsThreshold(base, threshold Permill) bool {
	return c.Value(base) > threshold
}

func calculateConfidence(successCount int, base Permill) Permill {
	return PermillOne.Sub(base.SaturatingPow(successCount))
}

// SetSample chooses n distinct sampling positions uniformly at random,
// x in [0, SamplesPerBlob) and y in [0, len(commitments)), and replaces
// c.Samples with one un-verified Sample per position. Positions are never
// resampled within a Confidence record: each call starts from scratch.
func (c *Confidence) SetSample(n int) error {
	if len(c.Commitments) == 0 {
		return fmt.Errorf("sampling: SetSample: no commitments to sample against")
	}
	seen := make(map[segment.Position]bool, n)
	positions := make([]segment.Position, 0, n)

	for len(positions) < n {
		x, err := randUint32(SamplesPerBlob)
		if err != nil {
			return fmt.Errorf("sampling: SetSample: %w", err)
		}
		y, err := randUint32(uint32(len(c.Commitments)))
		if err != nil {
			return fmt.Errorf("sampling: SetSample: %w", err)
		}
		pos := segment.Position{X: x, Y: y}
		if seen[pos] {
			continue
		}
		seen[pos] = true
		positions = append(positions, pos)
	}

	samples := make([]Sample, len(positions))
	for i, pos := range positions {
		samples[i] = Sample{Position: pos}
	}
	c.Samples = samples
	return nil
}

// SetSampleSuccess marks the sample at position verified, if present.
func (c *Confidence) SetSampleSuccess(position segment.Position) {
	for i := range c.Samples {
		if c.Samples[i].Position == position {
			c.Samples[i].SetAvailable()
			return
		}
	}
}

// VerifySample checks seg against the commitment its position's row
// selects, returning false (not an error) when the row is out of range.
func (c Confidence) VerifySample(setup *kzg.Setup, position segment.Position, seg segment.Segment) (bool, error) {
	if int(position.Y) >= len(c.Commitments) {
		return false, nil
	}
	return seg.Verify(setup, c.Commitments[position.Y], kzg.ChunkCount)
}

func randUint32(bound uint32) (uint32, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(bound)))
	if err != nil {
		return 0, err
	}
	return uint32(n.Uint64()), nil
}
