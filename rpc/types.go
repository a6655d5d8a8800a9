package rpc

import (
	"context"

	"github.com/melodot/melodot/types"
)

// BlobTxStatus is das_submitBlobTx's response: the hash of the submitted
// extrinsic, and an optional error string for failures that happen after
// the extrinsic is already accepted (most notably a DHT publish failure,
// which is never a hard error since the on-chain side is already
// committed).
type BlobTxStatus struct {
	TxHash types.HexBytes `json:"txHash"`
	Err    *string        `json:"err,omitempty"`
}

// ExtrinsicDecoder splits an opaque encoded extrinsic into the two shapes
// das_submitBlobTx needs: an opaque handle a TxPusher can submit, and the
// call payload chain.AppDataApi inspects for blob-tx parameters. Two
// separate decode steps, and two separate error codes, mirror the
// original node decoding the same bytes twice for two different purposes.
type ExtrinsicDecoder interface {
	DecodeTx(extrinsic []byte) (any, error)
	DecodeCall(extrinsic []byte) ([]byte, error)
}

// TxPusher submits a decoded transaction to the host chain's pending-
// transaction pool.
type TxPusher interface {
	Push(ctx context.Context, tx any) (txHash []byte, err error)
}
