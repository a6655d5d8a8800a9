package kzg

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Setup is the process-wide trusted-setup handle: powers of a toxic-waste
// scalar tau in both groups, `[tau^i]G1` for i in [0, NumG1Powers) and
// `[tau^i]G2` for i in [0, NumG2Powers). It is immutable after construction
// and safe to share by reference across every goroutine that commits or
// verifies.
type Setup struct {
	g1Powers []bls12381.G1Affine
	g2Powers []bls12381.G2Affine
}

// MaxDegree returns the highest polynomial degree this setup can commit to.
func (s *Setup) MaxDegree() int { return len(s.g1Powers) - 1 }

// G1Gen and G2Gen return the group generators used throughout this package.
func (s *Setup) G1Gen() bls12381.G1Affine { return s.g1Powers[0] }
func (s *Setup) G2Gen() bls12381.G2Affine { return s.g2Powers[0] }

// G2Alpha returns `[tau]G2`, used by single-point opening verification.
func (s *Setup) G2Alpha() bls12381.G2Affine { return s.g2Powers[1] }

// NewInsecureTestSetup derives a deterministic, INSECURE setup for
// development and tests: the toxic-waste scalar `tau` is not discarded, it
// is derived from seed by hashing, so two calls with the same seed produce
// the same setup and two different seeds are independent. Never use this
// setup outside of tests.
//
// Grounded on gnark-crypto's own test helper pattern of building a KZG SRS
// from a known `alpha` (see ecc/bls12-381/fr/kzg's NewSRS test usage); the
// node's production setup comes from LoadSetup instead.
func NewInsecureTestSetup(seed string, maxScalars int) (*Setup, error) {
	if maxScalars < SegmentLength {
		maxScalars = SegmentLength
	}
	h := sha256.Sum256([]byte("melodot-insecure-test-setup:" + seed))
	var tau fr.Element
	tau.SetBytes(h[:])
	return buildSetup(tau, maxScalars+1, NumG2Powers)
}

func buildSetup(tau fr.Element, numG1, numG2 int) (*Setup, error) {
	_, _, g1Aff, g2Aff := bls12381.Generators()

	g1Powers := make([]bls12381.G1Affine, numG1)
	g2Powers := make([]bls12381.G2Affine, numG2)

	var acc fr.Element
	acc.SetOne()
	for i := 0; i < numG1 || i < numG2; i++ {
		var accBig big.Int
		acc.BigInt(&accBig)
		if i < numG1 {
			g1Powers[i].ScalarMultiplication(&g1Aff, &accBig)
		}
		if i < numG2 {
			g2Powers[i].ScalarMultiplication(&g2Aff, &accBig)
		}
		acc.Mul(&acc, &tau)
	}
	return &Setup{g1Powers: g1Powers, g2Powers: g2Powers}, nil
}

// LoadSetup reads a production trusted setup from disk: one line of hex per
// G1 power followed by one line of hex per G2 power, matching the format
// the node's own config.KZGTrustedSetup embed expects. No such artifact
// ships in this environment; callers should fall back to
// NewInsecureTestSetup for development.
func LoadSetup(path string) (*Setup, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("kzg: open trusted setup: %w", err)
	}
	defer f.Close()

	var g1Powers []bls12381.G1Affine
	var g2Powers []bls12381.G2Affine

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 1024), 1024*1024)
	section := &g1Powers
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if line == "--g2--" {
			section = nil
			continue
		}
		if section == &g1Powers {
			var p bls12381.G1Affine
			b, err := decodeHexLine(line, CommitmentSize)
			if err != nil {
				return nil, err
			}
			if _, err := p.SetBytes(b); err != nil {
				return nil, fmt.Errorf("kzg: invalid G1 power: %w", err)
			}
			g1Powers = append(g1Powers, p)
		} else {
			var p bls12381.G2Affine
			b, err := decodeHexLine(line, bls12381.SizeOfG2AffineCompressed)
			if err != nil {
				return nil, err
			}
			if _, err := p.SetBytes(b); err != nil {
				return nil, fmt.Errorf("kzg: invalid G2 power: %w", err)
			}
			g2Powers = append(g2Powers, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("kzg: read trusted setup: %w", err)
	}
	if len(g1Powers) == 0 || len(g2Powers) < 2 {
		return nil, fmt.Errorf("kzg: trusted setup file %q is incomplete", path)
	}
	return &Setup{g1Powers: g1Powers, g2Powers: g2Powers}, nil
}

func decodeHexLine(line string, size int) ([]byte, error) {
	b, err := hex.DecodeString(line)
	if err != nil || len(b) != size {
		return nil, fmt.Errorf("kzg: malformed trusted setup line: %q", line)
	}
	return b, nil
}
