package ports

import "go.trai.ch/fcomp/internal/core/domain"

// ConfigLoader loads the build specification.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the specification at the given path ("-" for stdin, ""
	// for the default location) and returns targets in deterministic
	// order.
	Load(path string) ([]domain.Target, error)
}
