package farmer

import (
	"context"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/melodot/melodot/chain"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
	"github.com/melodot/melodot/types"
)

func testSolution(c *qt.C, setup *kzg.Setup, farmerID FarmerId) (Solution, kzg.Commitment) {
	poly := randomPoly(c, kzg.ChunkCount*kzg.SegmentLength/2)
	commitment, err := kzg.Commit(setup, poly)
	c.Assert(err, qt.IsNil)
	segments, err := segment.PolyToSegmentVec(setup, poly, 0)
	c.Assert(err, qt.IsNil)

	preCell := PreCell{Seg: segments[0], CellOffset: 0}
	left := Cell{Metadata: WinCellMetadata{BlockNumber: 10}, Seg: segments[1], CellOffset: 1}
	right := Cell{Metadata: WinCellMetadata{BlockNumber: 11}, Seg: segments[2], CellOffset: 2}
	sol := NewSolution([]byte("prev-block-hash"), farmerID, preCell, left, right)
	return sol, commitment
}

func testChainWithCommitments(sol Solution, commitment kzg.Commitment) *chain.MockChain {
	mc := chain.NewMockChain()
	mc.SetCommitment(11, sol.PreCell.Seg.Position, commitment)
	mc.SetCommitment(sol.WinCellLeft.Metadata.BlockNumber, sol.WinCellLeft.Seg.Position, commitment)
	mc.SetCommitment(sol.WinCellRight.Metadata.BlockNumber, sol.WinCellRight.Seg.Position, commitment)
	mc.SetBlockHash(sol.WinCellLeft.Metadata.BlockNumber, []byte("hash-left"))
	mc.SetBlockHash(sol.WinCellRight.Metadata.BlockNumber, []byte("hash-right"))
	return mc
}

func TestProcessClaimSucceeds(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	farmerID := FarmerId("claimant-a")
	sol, commitment := testSolution(c, setup, farmerID)
	mc := testChainWithCommitments(sol, commitment)

	registry := NewClaimRegistry(10, types.NewInt(100))
	in := ClaimInput{FarmerID: farmerID, Account: "claimant-a", BlockNumber: 12, Solution: sol}

	reward, err := ProcessClaim(context.Background(), setup, mc, mc, registry, in, 0, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(reward.String(), qt.Equals, types.NewInt(100).String())
	c.Assert(registry.HasClaimed(12, "claimant-a"), qt.IsTrue)
}

func TestProcessClaimRejectsMismatchedFarmerID(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	farmerID := FarmerId("claimant-b")
	sol, commitment := testSolution(c, setup, farmerID)
	mc := testChainWithCommitments(sol, commitment)

	registry := NewClaimRegistry(10, types.NewInt(100))
	in := ClaimInput{FarmerID: FarmerId("impersonator"), Account: "impersonator", BlockNumber: 12, Solution: sol}

	_, err := ProcessClaim(context.Background(), setup, mc, mc, registry, in, 0, 1)
	c.Assert(err, qt.Equals, ErrInvalidSolution)
}

func TestProcessClaimReportsMissingPreCommit(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	farmerID := FarmerId("claimant-c")
	sol, _ := testSolution(c, setup, farmerID)
	mc := chain.NewMockChain()

	registry := NewClaimRegistry(10, types.NewInt(100))
	in := ClaimInput{FarmerID: farmerID, Account: "claimant-c", BlockNumber: 12, Solution: sol}

	_, err := ProcessClaim(context.Background(), setup, mc, mc, registry, in, 0, 1)
	c.Assert(err, qt.Equals, ErrPreCommitNotFound)
}

func TestProcessClaimReportsBlockNumberUnderflowAtGenesis(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	farmerID := FarmerId("claimant-d")
	sol, _ := testSolution(c, setup, farmerID)
	mc := chain.NewMockChain()

	registry := NewClaimRegistry(10, types.NewInt(100))
	in := ClaimInput{FarmerID: farmerID, Account: "claimant-d", BlockNumber: 0, Solution: sol}

	_, err := ProcessClaim(context.Background(), setup, mc, mc, registry, in, 0, 1)
	c.Assert(err, qt.Equals, ErrBlockNumberUnderflow)
}

func TestProcessClaimRejectsDoubleClaim(t *testing.T) {
	c := qt.New(t)
	setup := testSetup(t)
	farmerID := FarmerId("claimant-e")
	sol, commitment := testSolution(c, setup, farmerID)
	mc := testChainWithCommitments(sol, commitment)

	registry := NewClaimRegistry(10, types.NewInt(100))
	in := ClaimInput{FarmerID: farmerID, Account: "claimant-e", BlockNumber: 12, Solution: sol}

	_, err := ProcessClaim(context.Background(), setup, mc, mc, registry, in, 0, 1)
	c.Assert(err, qt.IsNil)

	_, err = ProcessClaim(context.Background(), setup, mc, mc, registry, in, 0, 1)
	c.Assert(err, qt.Equals, ErrAlreadyClaimed)
}
