// Package cas implements the persisted fingerprint store.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultPath is the fingerprint file written next to the build spec.
const DefaultPath = ".fcomp_state.json"

var _ ports.FingerprintStore = (*Store)(nil)

// Store implements ports.FingerprintStore using a flat JSON file.
type Store struct {
	path string
}

// NewStore creates a FingerprintStore backed by the file at the given path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Load reads the persisted snapshot. A missing file yields an empty
// snapshot; an unreadable or unparsable one is an error, because building
// against an ambiguous cache state silently is unsafe.
func (s *Store) Load() (*domain.Snapshot, error) {
	//nolint:gosec // Path is cleaned and provided by trusted caller
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.NewSnapshot(), nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreUnavailable, err.Error()), "path", s.path)
	}

	snap := domain.NewSnapshot()
	if len(data) == 0 {
		return snap, nil
	}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrStoreUnavailable, err.Error()), "path", s.path)
	}
	if snap.Sources == nil {
		snap.Sources = make(map[string]string)
	}
	if snap.Modules == nil {
		snap.Modules = make(map[string]string)
	}
	return snap, nil
}

// Save writes the snapshot to a temporary file and renames it into place.
// The rename is atomic, so a crash mid-save leaves the previous snapshot
// intact.
func (s *Store) Save(snap *domain.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal fingerprint snapshot")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create fingerprint store directory"), "path", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temporary fingerprint file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to write fingerprint snapshot")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to close temporary fingerprint file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to replace fingerprint store"), "path", s.path)
	}
	return nil
}
