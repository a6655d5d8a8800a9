package dht

import (
	"context"
	"errors"
	"sync"

	ds "github.com/ipfs/go-datastore"
)

var _ DasDht = &MockDht{}

// ErrNotFound is returned by MockDht.Get for an unknown key.
var ErrNotFound = errors.New("dht: key not found")

// MockDht is an in-memory DasDht, standing in for a real content-addressed
// network in tests and local development. It stores values in a
// go-datastore map store keyed by the raw CID bytes KademliaKeyFromSidecarID
// produces, the same key-value boundary a real libp2p-kad-dht content
// router would sit behind.
type MockDht struct {
	mu    sync.Mutex
	store ds.Datastore
}

// NewMockDht constructs an empty MockDht.
func NewMockDht() *MockDht {
	return &MockDht{store: ds.NewMapDatastore()}
}

// Put implements DasDht.
func (m *MockDht) Put(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(value))
	copy(buf, value)
	return m.store.Put(ctx, ds.NewKey(string(key)), buf)
}

// Get implements DasDht.
func (m *MockDht) Get(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, err := m.store.Get(ctx, ds.NewKey(string(key)))
	if err == ds.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}
