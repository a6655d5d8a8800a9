package farmer

import (
	"context"
	"fmt"

	"github.com/melodot/melodot/chain"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/types"
)

// ClaimInput is what a claimant submits for a claim to be processed: the
// account claiming the reward, the block the claim is made at, and the
// mined Solution being claimed against.
type ClaimInput struct {
	FarmerID    FarmerId
	Account     string
	BlockNumber uint64
	Solution    Solution
}

// ProcessClaim verifies and registers a claim, mirroring the on-chain claim
// extrinsic: it resolves the previous block number, looks up the three row
// commitments the solution's cells claim to belong to, resolves the
// win-cells' block hashes, checks the solution against all of that, and
// finally registers the claim in registry. It returns the reward credited
// on success, or one of ErrInvalidSolution, ErrPreCommitNotFound,
// ErrWinCommitNotFound, ErrMaxClaimantsReached, ErrAlreadyClaimed,
// ErrStorageLimitReached or ErrBlockNumberUnderflow on failure.
func ProcessClaim(
	ctx context.Context,
	setup *kzg.Setup,
	commitments chain.CommitmentFromPosition,
	blockHashes chain.BlockHashes,
	registry *ClaimRegistry,
	in ClaimInput,
	leadingZeros uint32,
	subTarget uint64,
) (*types.BigInt, error) {
	preBlockNum, err := PreviousBlockNumber(in.BlockNumber)
	if err != nil {
		return nil, err
	}

	preCommit, ok, err := commitments.Commitments(ctx, preBlockNum, in.Solution.PreCell.Seg.Position)
	if err != nil {
		return nil, fmt.Errorf("farmer: ProcessClaim: pre-commit lookup: %w", err)
	}
	if !ok {
		return nil, ErrPreCommitNotFound
	}

	leftCommit, ok, err := commitments.Commitments(ctx, in.Solution.WinCellLeft.Metadata.BlockNumber, in.Solution.WinCellLeft.Seg.Position)
	if err != nil {
		return nil, fmt.Errorf("farmer: ProcessClaim: left win-commit lookup: %w", err)
	}
	if !ok {
		return nil, ErrWinCommitNotFound
	}

	rightCommit, ok, err := commitments.Commitments(ctx, in.Solution.WinCellRight.Metadata.BlockNumber, in.Solution.WinCellRight.Seg.Position)
	if err != nil {
		return nil, fmt.Errorf("farmer: ProcessClaim: right win-commit lookup: %w", err)
	}
	if !ok {
		return nil, ErrWinCommitNotFound
	}

	winHashLeft, ok, err := blockHashes.BlockHash(ctx, in.Solution.WinCellLeft.Metadata.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("farmer: ProcessClaim: left win-cell block hash: %w", err)
	}
	if !ok {
		return nil, ErrWinCommitNotFound
	}

	winHashRight, ok, err := blockHashes.BlockHash(ctx, in.Solution.WinCellRight.Metadata.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("farmer: ProcessClaim: right win-cell block hash: %w", err)
	}
	if !ok {
		return nil, ErrWinCommitNotFound
	}

	valid, err := in.Solution.Verify(setup, in.FarmerID, preCommit, leftCommit, rightCommit, winHashLeft, winHashRight, leadingZeros, subTarget)
	if err != nil {
		return nil, fmt.Errorf("farmer: ProcessClaim: %w", err)
	}
	if !valid {
		return nil, ErrInvalidSolution
	}

	if err := registry.Claim(in.BlockNumber, in.Account); err != nil {
		return nil, err
	}
	return registry.RewardAmount(), nil
}
