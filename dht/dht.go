// Package dht narrows the content-addressed network melodot's sidecar
// ingestion fetches blob bytes from down to a minimal capability
// interface, and derives the Kademlia keys sidecars are looked up under
// via standard CIDv1 content addressing.
package dht

import (
	"context"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// DasDht is the narrow capability a DHT-backed network must provide:
// publishing bytes under a key, and fetching them back.
type DasDht interface {
	Put(ctx context.Context, key []byte, value []byte) error
	Get(ctx context.Context, key []byte) ([]byte, error)
}

// KademliaKeyFromSidecarID derives the DHT lookup key for a sidecar id
// (its data_hash): a CIDv1 raw-codec, sha2-256 content identifier, encoded
// to bytes. sidecarID is already a sha256 digest (data_hash = H(data)), so
// it is wrapped with Encode rather than re-hashed with Sum. Wrapping the
// raw id as a CID keeps melodot's keys interoperable with any
// go-libp2p-kad-dht-backed provider, rather than using the bare hash as an
// opaque byte string.
func KademliaKeyFromSidecarID(sidecarID []byte) ([]byte, error) {
	mh, err := multihash.Encode(sidecarID, multihash.SHA2_256)
	if err != nil {
		return nil, err
	}
	c := cid.NewCidV1(cid.Raw, mh)
	return c.Bytes(), nil
}
