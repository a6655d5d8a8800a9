// Package sidecar binds the off-chain blob bytes of a data-availability
// transaction to its on-chain metadata (hash, length, KZG commitments and
// proofs), and drives the record through its ingestion lifecycle: observed
// on tx import, fetched from the DHT, verified against the commitments,
// and marked Success or Failed.
package sidecar

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/melodot/melodot/kzg"
)

// Status is the terminal outcome of a Sidecar's verification. The zero
// value (via a nil *Status on Sidecar) means verification has not
// happened yet.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailed
)

func (s Status) String() string {
	if s == StatusSuccess {
		return "Success"
	}
	return "Failed"
}

// Metadata is the on-chain-supplied description of a blob transaction's
// data: its encoded length, its hash (which doubles as the Sidecar's id),
// and the per-row KZG commitments and opening proofs the runtime
// extractor returned alongside it.
type Metadata struct {
	DataLen     uint64
	BlobsHash   []byte
	Commitments []kzg.Commitment
	Proofs      []kzg.Proof
}

// Sidecar ties blob bytes to their on-chain Metadata. Blobs is nil until
// the bytes arrive from the DHT; Status is nil until verification has run.
type Sidecar struct {
	Metadata Metadata
	Blobs    []byte
	Status   *Status
}

// ID is the Sidecar's identity: its data hash, doubling as its store key
// and its DHT lookup key (via dht.KademliaKeyFromSidecarID).
func (s Sidecar) ID() []byte {
	return s.Metadata.BlobsHash
}

// NewPending constructs a freshly-observed Sidecar: metadata known, blobs
// and status unset.
func NewPending(meta Metadata) Sidecar {
	return Sidecar{Metadata: meta}
}

// checkArrival validates arrived bytes against the metadata's declared
// length and hash, per the ingestion lifecycle's step 3. Exported as
// Metadata.Matches so the RPC submission path can run the same check in
// reverse, against locally-supplied bytes rather than DHT-arrived ones.
func checkArrival(meta Metadata, data []byte) bool {
	return meta.Matches(data)
}

// Matches reports whether data is the blob this Metadata describes: its
// length equals DataLen and its hash equals BlobsHash.
func (meta Metadata) Matches(data []byte) bool {
	if uint64(len(data)) != meta.DataLen {
		return false
	}
	sum := sha256.Sum256(data)
	return bytes.Equal(sum[:], meta.BlobsHash)
}

// rowBlobSize is the encoded size, in bytes, of one row's reconstructed
// blob: ChunkCount*SegmentLength scalars, each kzg.ScalarSize bytes.
const rowBlobSize = kzg.ChunkCount * kzg.SegmentLength * kzg.ScalarSize

// splitRows slices data into one rowBlobSize chunk per declared
// commitment, failing if the lengths don't line up.
func splitRows(meta Metadata, data []byte) ([][]byte, error) {
	want := len(meta.Commitments) * rowBlobSize
	if len(data) != want {
		return nil, fmt.Errorf("sidecar: splitRows: expected %d bytes for %d rows, got %d", want, len(meta.Commitments), len(data))
	}
	rows := make([][]byte, len(meta.Commitments))
	for i := range rows {
		rows[i] = data[i*rowBlobSize : (i+1)*rowBlobSize]
	}
	return rows, nil
}

// Encode serializes a Sidecar to melodot's length-prefixed wire format.
func (s Sidecar) Encode() []byte {
	var out []byte
	out = appendUint64(out, s.Metadata.DataLen)
	out = appendBytes(out, s.Metadata.BlobsHash)
	out = appendUint32(out, uint32(len(s.Metadata.Commitments)))
	for _, c := range s.Metadata.Commitments {
		out = append(out, c[:]...)
	}
	out = appendUint32(out, uint32(len(s.Metadata.Proofs)))
	for _, p := range s.Metadata.Proofs {
		out = append(out, p[:]...)
	}
	if s.Blobs == nil {
		out = append(out, 0)
	} else {
		out = append(out, 1)
		out = appendBytes(out, s.Blobs)
	}
	if s.Status == nil {
		out = append(out, 0)
	} else {
		out = append(out, 1, byte(*s.Status))
	}
	return out
}

// Decode parses Encode's wire format back into a Sidecar.
func Decode(data []byte) (Sidecar, error) {
	var s Sidecar
	pos := 0

	dataLen, n, err := readUint64(data, pos)
	if err != nil {
		return s, fmt.Errorf("sidecar: Decode: data_len: %w", err)
	}
	s.Metadata.DataLen = dataLen
	pos = n

	hash, n, err := readBytes(data, pos)
	if err != nil {
		return s, fmt.Errorf("sidecar: Decode: blobs_hash: %w", err)
	}
	s.Metadata.BlobsHash = hash
	pos = n

	commitCount, n, err := readUint32(data, pos)
	if err != nil {
		return s, fmt.Errorf("sidecar: Decode: commitment count: %w", err)
	}
	pos = n
	s.Metadata.Commitments = make([]kzg.Commitment, commitCount)
	for i := range s.Metadata.Commitments {
		if pos+kzg.CommitmentSize > len(data) {
			return s, fmt.Errorf("sidecar: Decode: truncated commitment %d", i)
		}
		copy(s.Metadata.Commitments[i][:], data[pos:pos+kzg.CommitmentSize])
		pos += kzg.CommitmentSize
	}

	proofCount, n, err := readUint32(data, pos)
	if err != nil {
		return s, fmt.Errorf("sidecar: Decode: proof count: %w", err)
	}
	pos = n
	s.Metadata.Proofs = make([]kzg.Proof, proofCount)
	for i := range s.Metadata.Proofs {
		if pos+kzg.ProofSize > len(data) {
			return s, fmt.Errorf("sidecar: Decode: truncated proof %d", i)
		}
		copy(s.Metadata.Proofs[i][:], data[pos:pos+kzg.ProofSize])
		pos += kzg.ProofSize
	}

	if pos >= len(data) {
		return s, fmt.Errorf("sidecar: Decode: truncated blobs flag")
	}
	hasBlobs := data[pos] != 0
	pos++
	if hasBlobs {
		blobs, n, err := readBytes(data, pos)
		if err != nil {
			return s, fmt.Errorf("sidecar: Decode: blobs: %w", err)
		}
		s.Blobs = blobs
		pos = n
	}

	if pos >= len(data) {
		return s, fmt.Errorf("sidecar: Decode: truncated status flag")
	}
	hasStatus := data[pos] != 0
	pos++
	if hasStatus {
		if pos >= len(data) {
			return s, fmt.Errorf("sidecar: Decode: truncated status")
		}
		st := Status(data[pos])
		s.Status = &st
		pos++
	}

	if pos != len(data) {
		return s, fmt.Errorf("sidecar: Decode: %d trailing bytes", len(data)-pos)
	}
	return s, nil
}

func appendUint64(out []byte, v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return append(out, b[:]...)
}

func appendUint32(out []byte, v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return append(out, b[:]...)
}

func appendBytes(out []byte, b []byte) []byte {
	out = appendUint32(out, uint32(len(b)))
	return append(out, b...)
}

func readUint64(data []byte, pos int) (uint64, int, error) {
	if pos+8 > len(data) {
		return 0, pos, fmt.Errorf("truncated uint64")
	}
	return binary.BigEndian.Uint64(data[pos : pos+8]), pos + 8, nil
}

func readUint32(data []byte, pos int) (uint32, int, error) {
	if pos+4 > len(data) {
		return 0, pos, fmt.Errorf("truncated uint32")
	}
	return binary.BigEndian.Uint32(data[pos : pos+4]), pos + 4, nil
}

func readBytes(data []byte, pos int) ([]byte, int, error) {
	l, pos, err := readUint32(data, pos)
	if err != nil {
		return nil, pos, err
	}
	if pos+int(l) > len(data) {
		return nil, pos, fmt.Errorf("truncated byte slice")
	}
	return append([]byte{}, data[pos:pos+int(l)]...), pos + int(l), nil
}
