package sidecar

import (
	"crypto/sha256"

	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/melodot/melodot/kzg"
)

// blobToPoly decodes a row's raw bytes into its scalars, which
// VerifyBlobsProofBatch reads as the row polynomial's coefficients.
func blobToPoly(blob []byte) []fr.Element {
	poly := make([]fr.Element, len(blob)/kzg.ScalarSize)
	for i := range poly {
		poly[i].SetBytes(blob[i*kzg.ScalarSize : (i+1)*kzg.ScalarSize])
	}
	return poly
}

// rowChallenge derives the per-row Fiat-Shamir evaluation point from its
// commitment and blob bytes, the same hash-then-reduce pattern
// kzg/setup.go uses to derive tau from the trusted-setup seed: there is no
// ceremony transcript here to draw a challenge from, so one is built from
// the data being verified itself.
func rowChallenge(commitment kzg.Commitment, blob []byte) fr.Element {
	h := sha256.New()
	h.Write(commitment[:])
	h.Write(blob)
	var z fr.Element
	z.SetBytes(h.Sum(nil))
	return z
}

// batchChallenge folds every row's commitment and proof into the single
// randomness kzg.VerifyBlobsProofBatch needs to combine openings into one
// pairing check.
func batchChallenge(commitments []kzg.Commitment, proofs []kzg.Proof) fr.Element {
	h := sha256.New()
	for _, c := range commitments {
		h.Write(c[:])
	}
	for _, p := range proofs {
		h.Write(p[:])
	}
	var r fr.Element
	r.SetBytes(h.Sum(nil))
	return r
}

// VerifyBlobsProofBatch reconstructs each row's polynomial from raw blob
// bytes and checks the whole batch of KZG openings against meta's
// commitments and proofs in one pairing check.
func VerifyBlobsProofBatch(setup *kzg.Setup, meta Metadata, blobs [][]byte) (bool, error) {
	if len(blobs) != len(meta.Commitments) || len(blobs) != len(meta.Proofs) {
		return false, nil
	}

	openings := make([]kzg.BatchOpening, len(blobs))
	for i, blob := range blobs {
		poly := blobToPoly(blob)
		z := rowChallenge(meta.Commitments[i], blob)
		openings[i] = kzg.BatchOpening{
			Commitment: meta.Commitments[i],
			Z:          z,
			Y:          kzg.EvalPoly(poly, z),
			Proof:      meta.Proofs[i],
		}
	}

	r := batchChallenge(meta.Commitments, meta.Proofs)
	return kzg.VerifyBlobsProofBatch(setup, openings, r)
}
