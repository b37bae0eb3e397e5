package ports

import "context"

// Result holds the outcome of a finished compiler invocation.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Executor runs compiler invocations.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Run executes argv in dir and returns its captured output and exit
	// code. A non-zero exit is reported through Result, not the error; the
	// error is reserved for spawn-level failures.
	Run(ctx context.Context, argv []string, dir string) (Result, error)
}
