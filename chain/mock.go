package chain

import (
	"context"
	"sync"

	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

var (
	_ Extractor              = &MockChain{}
	_ AppDataApi              = &MockChain{}
	_ CommitmentFromPosition = &MockChain{}
	_ BlockHashes            = &MockChain{}
)

// MockChain implements Extractor, AppDataApi, CommitmentFromPosition and
// BlockHashes in memory, standing in for the host blockchain in tests and
// local development.
type MockChain struct {
	mu sync.Mutex

	// pending maps an encoded extrinsic (used verbatim as a lookup key)
	// to the ExtractedTx entries Extract should return for it.
	pending map[string][]ExtractedTx
	// calls maps an encoded call to the single ExtractedTx GetBlobTxParam
	// should return for it.
	calls map[string]ExtractedTx
	// commitments maps (blockNumber, position) to a row commitment.
	commitments map[commitKey]kzg.Commitment
	// blockHashes maps a block number to the hash it produced.
	blockHashes map[uint64][]byte
}

type commitKey struct {
	blockNumber uint64
	position    segment.Position
}

// NewMockChain constructs an empty MockChain.
func NewMockChain() *MockChain {
	return &MockChain{
		pending:     make(map[string][]ExtractedTx),
		calls:       make(map[string]ExtractedTx),
		commitments: make(map[commitKey]kzg.Commitment),
		blockHashes: make(map[uint64][]byte),
	}
}

// SetExtraction registers the ExtractedTx entries Extract should return for
// encodedExtrinsic.
func (m *MockChain) SetExtraction(encodedExtrinsic []byte, txs []ExtractedTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending[string(encodedExtrinsic)] = txs
}

// Extract implements Extractor.
func (m *MockChain) Extract(_ context.Context, encodedExtrinsic []byte) ([]ExtractedTx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending[string(encodedExtrinsic)], nil
}

// SetCall registers the ExtractedTx GetBlobTxParam should return for call.
func (m *MockChain) SetCall(call []byte, tx ExtractedTx) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[string(call)] = tx
}

// GetBlobTxParam implements AppDataApi.
func (m *MockChain) GetBlobTxParam(_ context.Context, call []byte) (*ExtractedTx, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tx, ok := m.calls[string(call)]
	if !ok {
		return nil, false, nil
	}
	return &tx, true, nil
}

// SetCommitment registers the row commitment resolved at (blockNumber,
// position).
func (m *MockChain) SetCommitment(blockNumber uint64, position segment.Position, commitment kzg.Commitment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitments[commitKey{blockNumber, position}] = commitment
}

// Commitments implements CommitmentFromPosition.
func (m *MockChain) Commitments(_ context.Context, blockNumber uint64, position segment.Position) (kzg.Commitment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.commitments[commitKey{blockNumber, position}]
	if !ok {
		return kzg.Commitment{}, false, nil
	}
	return c, true, nil
}

// SetBlockHash registers the hash block number produced.
func (m *MockChain) SetBlockHash(blockNumber uint64, hash []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blockHashes[blockNumber] = hash
}

// BlockHash implements BlockHashes.
func (m *MockChain) BlockHash(_ context.Context, blockNumber uint64) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.blockHashes[blockNumber]
	if !ok {
		return nil, false, nil
	}
	return h, true, nil
}
