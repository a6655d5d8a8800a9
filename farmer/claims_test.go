package farmer

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/melodot/melodot/types"
)

func TestClaimRegistryEnforcesPerBlockCap(t *testing.T) {
	c := qt.New(t)
	reg := NewClaimRegistry(2, types.NewInt(1))

	c.Assert(reg.Claim(10, "alice"), qt.IsNil)
	c.Assert(reg.Claim(10, "bob"), qt.IsNil)

	err := reg.Claim(10, "carol")
	c.Assert(err, qt.Equals, ErrMaxClaimantsReached)
	c.Assert(reg.ClaimantCount(10), qt.Equals, 2)
}

func TestClaimRegistryRejectsDoubleClaim(t *testing.T) {
	c := qt.New(t)
	reg := NewClaimRegistry(5, types.NewInt(1))

	c.Assert(reg.Claim(1, "alice"), qt.IsNil)
	err := reg.Claim(1, "alice")
	c.Assert(err, qt.Equals, ErrAlreadyClaimed)
}

func TestClaimRegistryTracksBlocksIndependently(t *testing.T) {
	c := qt.New(t)
	reg := NewClaimRegistry(1, types.NewInt(1))

	c.Assert(reg.Claim(1, "alice"), qt.IsNil)
	c.Assert(reg.Claim(2, "alice"), qt.IsNil)
	c.Assert(reg.HasClaimed(1, "alice"), qt.IsTrue)
	c.Assert(reg.HasClaimed(2, "alice"), qt.IsTrue)
	c.Assert(reg.HasClaimed(3, "alice"), qt.IsFalse)
}

func TestClaimRegistryReportsConfiguredRewardAmount(t *testing.T) {
	c := qt.New(t)
	reward := types.NewInt(42)
	reg := NewClaimRegistry(5, reward)
	c.Assert(reg.RewardAmount(), qt.Equals, reward)
}

func TestPreviousBlockNumber(t *testing.T) {
	c := qt.New(t)
	n, err := PreviousBlockNumber(10)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, uint64(9))

	_, err = PreviousBlockNumber(0)
	c.Assert(err, qt.Equals, ErrBlockNumberUnderflow)
}
