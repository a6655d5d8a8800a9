package farmer

import "crypto/sha256"

// DerivePreCellChallenge maps a previous block's hash to the X-value bucket
// a farmer must answer from: Hash(pre_block_hash), read as an X-value.
func DerivePreCellChallenge(preBlockHash []byte) XValue {
	return XValue(sha256.Sum256(preBlockHash))
}

// Mine searches p for a plotted cell landing in the challenge bucket and a
// Z-entry whose combined hash with that cell satisfies the leading-zero and
// sub-target predicates, returning the first solution found. blockHashOf
// resolves a block number to the hash the win-cells' difficulty hash binds
// to, mirroring the same local-chain-view lookup blockOf performs for block
// numbers themselves. It reports (Solution{}, false) when no combination in
// this piece satisfies the predicates.
func (p *Piece) Mine(preBlockHash []byte, farmerID FarmerId, blockOf func(row uint32) uint64, blockHashOf func(blockNumber uint64) []byte, leadingZeros uint32, subTarget uint64) (Solution, bool) {
	challenge := DerivePreCellChallenge(preBlockHash)

	var preCandidates []PlotCell
	for _, c := range p.Cells {
		if c.XValue == challenge {
			preCandidates = append(preCandidates, c)
		}
	}
	if len(preCandidates) == 0 {
		return Solution{}, false
	}

	for _, preCandidate := range preCandidates {
		preCell, ok := p.buildPreCell(preCandidate)
		if !ok {
			continue
		}
		for _, z := range p.ZEntries {
			left, ok := p.buildWinCell(z.Left, blockOf)
			if !ok {
				continue
			}
			right, ok := p.buildWinCell(z.Right, blockOf)
			if !ok {
				continue
			}
			sol := NewSolution(preBlockHash, farmerID, preCell, left, right)
			if !solutionSatisfiesLocally(sol, blockHashOf(left.Metadata.BlockNumber), blockHashOf(right.Metadata.BlockNumber), leadingZeros, subTarget) {
				continue
			}
			return sol, true
		}
	}
	return Solution{}, false
}

// solutionSatisfiesLocally checks the difficulty predicates alone, skipping
// the commitment-membership checks Verify also performs: a miner already
// knows its own plotted cells are genuine, and has no remote commitments to
// check against until it submits the claim on chain.
func solutionSatisfiesLocally(s Solution, winBlockHashLeft, winBlockHashRight []byte, leadingZeros uint32, subTarget uint64) bool {
	h := s.hash(winBlockHashLeft, winBlockHashRight)
	if leadingZeroBits(h) < int(leadingZeros) {
		return false
	}
	return subTargetSatisfied(h, subTarget)
}

// buildPreCell and buildWinCell attach the segment a plotted cell's row
// came from, so the resulting PreCell/Cell can carry the multi-opening
// proof its on-chain verification needs.
func (p *Piece) buildPreCell(c PlotCell) (PreCell, bool) {
	seg, ok := p.Segments[c.Position.Row]
	if !ok {
		return PreCell{}, false
	}
	return PreCell{Seg: seg, CellOffset: int(c.Position.Column)}, true
}

func (p *Piece) buildWinCell(c PlotCell, blockOf func(row uint32) uint64) (Cell, bool) {
	seg, ok := p.Segments[c.Position.Row]
	if !ok {
		return Cell{}, false
	}
	return Cell{
		Metadata:   WinCellMetadata{BlockNumber: blockOf(c.Position.Row)},
		Seg:        seg,
		CellOffset: int(c.Position.Column),
	}, true
}
