// Package shell provides the compiler process executor.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"

	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec. Output is captured, not
// streamed: the scheduling loop decides what to surface and when, so that
// concurrent compilations do not interleave on the terminal.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{logger: logger}
}

// Run executes argv in dir. The process inherits the parent environment.
// Context cancellation kills the process; a non-zero exit is reported via
// Result, not as an error.
func (e *Executor) Run(ctx context.Context, argv []string, dir string) (ports.Result, error) {
	if len(argv) == 0 {
		return ports.Result{}, zerr.New("empty compile command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // Command comes from the build spec
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := ports.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, zerr.With(zerr.Wrap(err, "failed to start compiler"), "command", argv[0])
	}
	return res, nil
}
