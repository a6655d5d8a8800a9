// Package erasure implements melodot's 2-D Reed-Solomon erasure coder: row
// extension via the DAS FFT trick, column/row ordering of received segments
// into dense, possibly-sparse evaluation vectors, and polynomial-based
// recovery of missing entries from any sufficient subset.
package erasure

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr/fft"
	"github.com/melodot/melodot/blob"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/segment"
)

// ExtendPoly doubles poly's evaluation domain via the DAS FFT extension.
// The result is in natural domain order: the even-indexed entries equal
// poly's own evaluations and the odd-indexed entries carry the Reed-Solomon
// redundancy used for sampling; the first half of the result is not poly's
// own evaluations.
func ExtendPoly(poly []fr.Element) ([]fr.Element, error) {
	extended, err := kzg.ExtendEvaluations(poly)
	if err != nil {
		return nil, fmt.Errorf("erasure: ExtendPoly: %w", err)
	}
	return extended, nil
}

// OrderSegmentsRow packages segments that all share Position.Y == row into
// a dense vector of length 2*blob.FieldElementsPerBlob, placing each
// segment's SegmentLength scalars at the offsets its Position.X selects and
// leaving every other slot nil. It fails on cross-row segments, duplicate
// columns, or a column index out of range.
func OrderSegmentsRow(row uint32, segments []segment.Segment) ([]*fr.Element, error) {
	const width = 2 * blob.FieldElementsPerBlob
	out := make([]*fr.Element, width)
	seen := make(map[uint32]bool, len(segments))

	for _, s := range segments {
		if s.Position.Y != row {
			return nil, fmt.Errorf("erasure: OrderSegmentsRow: segment at row %d does not match requested row %d", s.Position.Y, row)
		}
		if seen[s.Position.X] {
			return nil, fmt.Errorf("erasure: OrderSegmentsRow: duplicate column %d", s.Position.X)
		}
		seen[s.Position.X] = true

		base := int(s.Position.X) * kzg.SegmentLength
		if base+kzg.SegmentLength > width {
			return nil, fmt.Errorf("erasure: OrderSegmentsRow: column %d out of range", s.Position.X)
		}
		for i := 0; i < kzg.SegmentLength; i++ {
			v := s.Content[i]
			out[base+i] = &v
		}
	}
	return out, nil
}

// OrderSegmentsCol packages cells that all share Position.X == col into a
// dense vector of length 2*numRows, indexed by each cell's Position.Y (the
// resolved reading of the reference implementation's ambiguous `.x`/`.y`
// indexing — see DESIGN.md Open Question 2). It fails on cross-column
// cells, duplicate rows, or a row index out of range.
func OrderSegmentsCol(col uint32, cells []segment.Cell, numRows int) ([]*fr.Element, error) {
	width := 2 * numRows
	out := make([]*fr.Element, width)
	seen := make(map[uint32]bool, len(cells))

	for _, cell := range cells {
		if cell.Position.X != col {
			return nil, fmt.Errorf("erasure: OrderSegmentsCol: cell at column %d does not match requested column %d", cell.Position.X, col)
		}
		if seen[cell.Position.Y] {
			return nil, fmt.Errorf("erasure: OrderSegmentsCol: duplicate row %d", cell.Position.Y)
		}
		seen[cell.Position.Y] = true

		if int(cell.Position.Y) >= width {
			return nil, fmt.Errorf("erasure: OrderSegmentsCol: row %d out of range", cell.Position.Y)
		}
		v := cell.Data
		out[cell.Position.Y] = &v
	}
	return out, nil
}

// Recover reconstructs every entry of a dense evaluation vector of length
// 2k (as produced by OrderSegmentsRow/Col) from any k or more known
// entries, via polynomial interpolation over the 2k-th roots of unity. It
// returns a new, fully populated vector; sparse input is left untouched.
func Recover(sparse []*fr.Element) ([]fr.Element, error) {
	domainSize := len(sparse)
	if domainSize == 0 || domainSize%2 != 0 {
		return nil, fmt.Errorf("erasure: Recover: vector length %d must be even", domainSize)
	}
	k := domainSize / 2

	domain := fft.NewDomain(uint64(domainSize))
	xs := make([]fr.Element, 0, k)
	ys := make([]fr.Element, 0, k)
	for i, v := range sparse {
		if v == nil {
			continue
		}
		xs = append(xs, domainPoint(domain, i))
		ys = append(ys, *v)
		if len(xs) == k {
			break
		}
	}
	if len(xs) < k {
		return nil, fmt.Errorf("erasure: Recover: have %d known entries, need at least %d", len(xs), k)
	}

	poly, err := kzg.Interpolate(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("erasure: Recover: %w", err)
	}

	full := make([]fr.Element, domainSize)
	for i := range full {
		if sparse[i] != nil {
			full[i] = *sparse[i]
			continue
		}
		full[i] = kzg.EvalPoly(poly, domainPoint(domain, i))
	}
	return full, nil
}

// domainPoint returns the domain's generator raised to index, i.e. the
// evaluation point associated with slot index in a natural-order (not
// bit-reversed) dense vector of the domain's size — the same convention
// kzg.ExtendEvaluations' output and kzg.ChunkPoints' domain use.
func domainPoint(domain *fft.Domain, index int) fr.Element {
	var x fr.Element
	x.Exp(domain.Generator, new(big.Int).SetUint64(uint64(index)))
	return x
}
