// Package fs persists mixtures as JSON files in per-split folders,
// matching the layout downstream training jobs read.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"saladgen/pkg/common"
)

// MixtureStore writes one <mixture name>.json file per mixture under
// <dir>/<split>/.
type MixtureStore struct {
	dir string
}

// NewMixtureStore creates the output folder tree and returns the store.
func NewMixtureStore(dir string) (*MixtureStore, error) {
	for _, split := range common.Splits() {
		if err := os.MkdirAll(filepath.Join(dir, string(split)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output folder: %w", err)
		}
	}
	return &MixtureStore{dir: dir}, nil
}

// SaveMixture serializes the mixture into its split folder.
func (s *MixtureStore) SaveMixture(ctx context.Context, split common.Split, mixture *common.Mixture) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(mixture)
	if err != nil {
		return fmt.Errorf("failed to serialize mixture %s: %w", mixture.Name(), err)
	}
	path := filepath.Join(s.dir, string(split), mixture.Name()+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write mixture %s: %w", mixture.Name(), err)
	}
	return nil
}
