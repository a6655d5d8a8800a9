package farmer

import (
	"errors"
	"sync"

	"github.com/melodot/melodot/types"
)

// Errors returned by ClaimRegistry.Claim and ProcessClaim, mirroring the
// on-chain claim extrinsic's error set.
var (
	ErrMaxClaimantsReached  = errors.New("farmer: max claimants reached for this block")
	ErrAlreadyClaimed       = errors.New("farmer: account already claimed this block")
	ErrBlockNumberUnderflow = errors.New("farmer: no block precedes genesis")
	ErrInvalidSolution      = errors.New("farmer: solution failed verification")
	ErrPreCommitNotFound    = errors.New("farmer: pre-cell row commitment not found on chain")
	ErrWinCommitNotFound    = errors.New("farmer: win-cell row commitment not found on chain")
	ErrStorageLimitReached  = errors.New("farmer: claimant storage limit reached for this block")
)

// ClaimRegistry tracks which accounts have claimed a mining reward at each
// block number, enforcing MaxClaimantsPerBlock and the once-per-account
// rule an on-chain ClaimantsForBlock storage map would enforce.
type ClaimRegistry struct {
	mu                   sync.Mutex
	maxClaimantsPerBlock int
	claimants            map[uint64]map[string]bool
	rewardAmount         *types.BigInt
}

// NewClaimRegistry constructs an empty registry with the given per-block
// claimant cap and the reward amount credited to every successful claim.
func NewClaimRegistry(maxClaimantsPerBlock int, rewardAmount *types.BigInt) *ClaimRegistry {
	return &ClaimRegistry{
		maxClaimantsPerBlock: maxClaimantsPerBlock,
		claimants:            make(map[uint64]map[string]bool),
		rewardAmount:         rewardAmount,
	}
}

// RewardAmount returns the amount credited to each successful claim.
func (r *ClaimRegistry) RewardAmount() *types.BigInt {
	return r.rewardAmount
}

// Claim registers account as having claimed at blockNumber, failing if the
// block's claimant cap is already reached or the account already claimed
// this block.
func (r *ClaimRegistry) Claim(blockNumber uint64, account string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.claimants[blockNumber]
	if set == nil {
		set = make(map[string]bool)
		r.claimants[blockNumber] = set
	}
	if set[account] {
		return ErrAlreadyClaimed
	}
	if len(set) >= r.maxClaimantsPerBlock {
		return ErrMaxClaimantsReached
	}
	// Belt-and-suspenders: the bounded claimant set's capacity is the same
	// maxClaimantsPerBlock constant already checked above, so this can
	// never actually trigger. Kept because the on-chain pallet keeps the
	// same redundant check on its BoundedVec::try_push.
	if len(set) >= r.maxClaimantsPerBlock {
		return ErrStorageLimitReached
	}
	set[account] = true
	return nil
}

// ClaimantCount returns how many accounts have claimed at blockNumber.
func (r *ClaimRegistry) ClaimantCount(blockNumber uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.claimants[blockNumber])
}

// HasClaimed reports whether account already claimed at blockNumber.
func (r *ClaimRegistry) HasClaimed(blockNumber uint64, account string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.claimants[blockNumber][account]
}

// PreviousBlockNumber returns now-1, failing with ErrBlockNumberUnderflow at
// the genesis block.
func PreviousBlockNumber(now uint64) (uint64, error) {
	if now == 0 {
		return 0, ErrBlockNumberUnderflow
	}
	return now - 1, nil
}
