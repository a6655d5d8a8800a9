package config

import (
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/log"
)

// LoadKZGSetup resolves the process-wide KZG trusted setup: if path is
// non-empty it is loaded via kzg.LoadSetup and any load failure is
// returned; otherwise an insecure, deterministically-derived setup is built
// instead.
// No production trusted-setup artifact ships with this module; operators
// who need one must supply its path explicitly.
func LoadKZGSetup(path string) (*kzg.Setup, error) {
	if path == "" {
		log.Warnw("no KZG trusted setup configured, deriving an insecure test setup", "seed", "melodot-dev")
		return kzg.NewInsecureTestSetup("melodot-dev", kzg.NumG1Powers)
	}
	setup, err := kzg.LoadSetup(path)
	if err != nil {
		return nil, err
	}
	return setup, nil
}
