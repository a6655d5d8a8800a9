package sidecar

import (
	"fmt"

	"github.com/melodot/melodot/db"
)

// Save persists sc under its id (data_hash), overwriting any previous
// record.
func Save(database db.Database, sc Sidecar) error {
	tx := database.WriteTx()
	if err := tx.Set(sc.ID(), sc.Encode()); err != nil {
		tx.Discard()
		return fmt.Errorf("sidecar: Save: %w", err)
	}
	return tx.Commit()
}

// Load fetches and decodes the Sidecar stored under dataHash, if any.
func Load(database db.Database, dataHash []byte) (Sidecar, bool, error) {
	raw, err := database.Get(dataHash)
	if err == db.ErrKeyNotFound {
		return Sidecar{}, false, nil
	}
	if err != nil {
		return Sidecar{}, false, fmt.Errorf("sidecar: Load: %w", err)
	}
	sc, err := Decode(raw)
	if err != nil {
		return Sidecar{}, false, fmt.Errorf("sidecar: Load: %w", err)
	}
	return sc, true, nil
}
