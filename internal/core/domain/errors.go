package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrSpecMalformed is returned when the build specification cannot be
	// parsed or a target record is missing required fields.
	ErrSpecMalformed = zerr.New("build specification malformed")

	// ErrDuplicateModule is returned when two targets define the same module.
	ErrDuplicateModule = zerr.New("module defined by multiple targets")

	// ErrCycleDetected is returned when the target dependency graph contains
	// a cycle.
	ErrCycleDetected = zerr.New("dependency cycle detected")

	// ErrTargetNotFound is returned when a requested target is not in the
	// graph.
	ErrTargetNotFound = zerr.New("target not found")

	// ErrCompilationFailed aggregates per-target compiler failures for a run.
	ErrCompilationFailed = zerr.New("compilation failed")

	// ErrStoreUnavailable is returned when the fingerprint store cannot be
	// read or written. An ambiguous cache state is unsafe to build on.
	ErrStoreUnavailable = zerr.New("fingerprint store unavailable")
)

// IsConfigError reports whether err is a pre-execution configuration error,
// as opposed to a per-target compilation failure. Configuration errors abort
// the run before any compile command is issued.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrSpecMalformed) ||
		errors.Is(err, ErrDuplicateModule) ||
		errors.Is(err, ErrCycleDetected)
}
