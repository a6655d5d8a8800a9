package sidecar

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/melodot/melodot/chain"
	"github.com/melodot/melodot/db"
	"github.com/melodot/melodot/dht"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// TxObserver drives a Sidecar's ingestion lifecycle as extracted blob
// transactions arrive: create the pending record, request the bytes from
// the DHT, and verify them against the runtime-supplied commitments once
// they show up.
type TxObserver struct {
	db    db.Database
	dht   dht.DasDht
	setup *kzg.Setup
	fetch singleflight.Group
}

// NewTxObserver wires a TxObserver against a sidecar/-prefixed database
// view, a DHT client and the process-wide KZG setup.
func NewTxObserver(database db.Database, d dht.DasDht, setup *kzg.Setup) *TxObserver {
	return &TxObserver{db: database, dht: d, setup: setup}
}

// ObserveBatch runs Observe concurrently over every extracted transaction
// in a block, the fan-out pattern a block-import hook would drive: many
// sidecars can be fetched from and verified against the DHT at once,
// independent of each other. The first observation error cancels the rest.
func (o *TxObserver) ObserveBatch(ctx context.Context, txs []chain.ExtractedTx) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, tx := range txs {
		tx := tx
		g.Go(func() error {
			return o.Observe(gctx, tx)
		})
	}
	return g.Wait()
}

// Observe implements the ingestion lifecycle's steps 1-2: create a pending
// Sidecar the first time data_hash is seen, then, for any Sidecar whose
// status is still unset, attempt to fetch its bytes from the DHT and run
// verification if they've arrived. A DHT miss is not an error: the bytes
// may simply not have propagated yet, and a later Observe call (or a
// background retry loop) will pick the record back up.
func (o *TxObserver) Observe(ctx context.Context, tx chain.ExtractedTx) error {
	jobID := uuid.New()
	meta := Metadata{
		DataLen:     tx.DataLen,
		BlobsHash:   tx.DataHash,
		Commitments: tx.Commitments,
		Proofs:      proofsFromBytes(tx.Proofs),
	}
	dataHashHex := fmt.Sprintf("%x", meta.BlobsHash)
	log.Infow("sidecar ingestion observed", "job_id", jobID, "data_hash", dataHashHex)

	sc, ok, err := Load(o.db, meta.BlobsHash)
	if err != nil {
		return fmt.Errorf("sidecar: Observe: %w", err)
	}
	if !ok {
		sc = NewPending(meta)
		if err := Save(o.db, sc); err != nil {
			return fmt.Errorf("sidecar: Observe: %w", err)
		}
	}

	if sc.Status != nil {
		return nil
	}

	key, err := dht.KademliaKeyFromSidecarID(sc.ID())
	if err != nil {
		return fmt.Errorf("sidecar: Observe: %w", err)
	}
	// singleflight collapses concurrent fetches of the same data_hash (an
	// ObserveBatch fan-out seeing the same tx extracted twice, or two
	// concurrent blocks referencing the same blob) into a single DHT
	// round trip.
	v, err, _ := o.fetch.Do(dataHashHex, func() (any, error) {
		return o.dht.Get(ctx, key)
	})
	if err == dht.ErrNotFound {
		return nil
	}
	if err != nil {
		log.Warnw("sidecar dht fetch failed", "job_id", jobID, "data_hash", dataHashHex, "err", err)
		return nil
	}

	return o.onArrival(ctx, sc, v.([]byte))
}

// onArrival implements the ingestion lifecycle's steps 3-4.
func (o *TxObserver) onArrival(_ context.Context, sc Sidecar, data []byte) error {
	if !checkArrival(sc.Metadata, data) {
		failed := StatusFailed
		sc.Status = &failed
		return Save(o.db, sc)
	}

	rows, err := splitRows(sc.Metadata, data)
	if err != nil {
		failed := StatusFailed
		sc.Status = &failed
		return Save(o.db, sc)
	}

	ok, err := VerifyBlobsProofBatch(o.setup, sc.Metadata, rows)
	if err != nil {
		return fmt.Errorf("sidecar: onArrival: %w", err)
	}

	status := StatusFailed
	if ok {
		status = StatusSuccess
	}
	sc.Blobs = data
	sc.Status = &status
	return Save(o.db, sc)
}

func proofsFromBytes(raw [][]byte) []kzg.Proof {
	proofs := make([]kzg.Proof, len(raw))
	for i, p := range raw {
		if len(p) == kzg.ProofSize {
			copy(proofs[i][:], p)
		}
	}
	return proofs
}
