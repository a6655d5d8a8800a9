// Package chain narrows the host blockchain's runtime-API surface that
// melodot's off-chain components depend on down to four small capability
// interfaces: extracting DA metadata from a pending extrinsic, looking up
// a row's commitment, the overlapping AppDataApi blob-tx lookup, and
// resolving a block number to the hash claim verification binds a
// solution to. The host chain's own execution (consensus, pallet storage,
// block production) is out of scope; these interfaces exist so the rest
// of the module can be built and tested against an in-memory mock instead
// of a real runtime.
package chain

import (
	"context"

	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

// ExtractedTx is what a runtime's Extractor returns for one DA-carrying
// extrinsic: the hash and length of the off-chain blob bytes it
// references, together with the row commitments and multi-opening proofs
// published on chain for it.
type ExtractedTx struct {
	DataHash    []byte
	DataLen     uint64
	Commitments []kzg.Commitment
	Proofs      [][]byte
}

// Extractor decodes an encoded extrinsic's DA metadata, mirroring the
// runtime API call `Extractor::extract(encoded_xt) -> Option<Vec<(...)>>`.
// It returns (nil, nil) when the extrinsic carries no DA metadata.
type Extractor interface {
	Extract(ctx context.Context, encodedExtrinsic []byte) ([]ExtractedTx, error)
}

// AppDataApi resolves a call's blob-transaction parameters, mirroring
// `AppDataApi::get_blob_tx_param(call) -> Option<(data_hash, data_len,
// commitments, proofs)>`.
type AppDataApi interface {
	GetBlobTxParam(ctx context.Context, call []byte) (*ExtractedTx, bool, error)
}

// CommitmentFromPosition resolves the row commitment published at a given
// block for a given segment position, mirroring
// `CommitmentFromPosition::commitments(block_num, position) ->
// Option<Commitment>`.
type CommitmentFromPosition interface {
	Commitments(ctx context.Context, blockNumber uint64, position segment.Position) (kzg.Commitment, bool, error)
}

// BlockHashes resolves the block hash a given block number produced,
// mirroring the runtime API call `frame_system::block_hash(block_number)
// -> Option<Hash>`. A claim binds its win-cells to the hashes of the
// blocks they were drawn from; this is how that binding is checked
// against the chain's actual history.
type BlockHashes interface {
	BlockHash(ctx context.Context, blockNumber uint64) ([]byte, bool, error)
}
