package dht

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestKademliaKeyFromSidecarIDIsDeterministic(t *testing.T) {
	c := qt.New(t)
	id := []byte("0123456789abcdef0123456789abcdef")

	k1, err := KademliaKeyFromSidecarID(id)
	c.Assert(err, qt.IsNil)
	k2, err := KademliaKeyFromSidecarID(id)
	c.Assert(err, qt.IsNil)
	c.Assert(k1, qt.DeepEquals, k2)

	other, err := KademliaKeyFromSidecarID([]byte("different-id"))
	c.Assert(err, qt.IsNil)
	c.Assert(k1, qt.Not(qt.DeepEquals), other)
}

func TestMockDhtPutGet(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	m := NewMockDht()

	_, err := m.Get(ctx, []byte("missing"))
	c.Assert(err, qt.Equals, ErrNotFound)

	c.Assert(m.Put(ctx, []byte("key"), []byte("value")), qt.IsNil)
	v, err := m.Get(ctx, []byte("key"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(v), qt.Equals, "value")
}
