package ports

import "go.trai.ch/fcomp/internal/core/domain"

// FingerprintStore persists fingerprint snapshots across runs.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type FingerprintStore interface {
	// Load reads the persisted snapshot. A missing file yields an empty
	// snapshot, not an error.
	Load() (*domain.Snapshot, error)

	// Save atomically replaces the persisted snapshot. A crash mid-save
	// never corrupts the previous one.
	Save(snap *domain.Snapshot) error
}
