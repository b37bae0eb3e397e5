// Package ports defines the core interfaces for the application.
package ports

import (
	"io"

	"go.trai.ch/fcomp/internal/core/domain"
)

// Scanner extracts the module interface of a source file.
//
// Implementations are best-effort static scanners, not full parsers: an
// unrecognized construct is ignored rather than reported. A missed `use`
// only loses parallelism or incrementality; it must never invent a
// dependency that does not exist.
//
//go:generate go run go.uber.org/mock/mockgen -source=scanner.go -destination=mocks/mock_scanner.go -package=mocks
type Scanner interface {
	// Scan reads source text and returns the modules it defines, the modules
	// it uses, and its line count.
	Scan(r io.Reader) (domain.ModuleInterface, error)
}
