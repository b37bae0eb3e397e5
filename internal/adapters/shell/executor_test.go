package shell_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fcomp/internal/adapters/logger"
	"go.trai.ch/fcomp/internal/adapters/shell"
)

func TestExecutor_Run_Success(t *testing.T) {
	e := shell.NewExecutor(logger.New())

	res, err := e.Run(context.Background(), []string{"sh", "-c", "echo out; echo err >&2"}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestExecutor_Run_NonZeroExit(t *testing.T) {
	e := shell.NewExecutor(logger.New())

	res, err := e.Run(context.Background(), []string{"sh", "-c", "echo broken >&2; exit 3"}, t.TempDir())
	require.NoError(t, err, "a non-zero exit is a Result, not an error")
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "broken\n", res.Stderr)
}

func TestExecutor_Run_MissingBinary(t *testing.T) {
	e := shell.NewExecutor(logger.New())

	_, err := e.Run(context.Background(), []string{"definitely-not-a-compiler"}, t.TempDir())
	assert.Error(t, err)
}

func TestExecutor_Run_EmptyCommand(t *testing.T) {
	e := shell.NewExecutor(logger.New())

	_, err := e.Run(context.Background(), nil, t.TempDir())
	assert.Error(t, err)
}

func TestExecutor_Run_RespectsWorkDir(t *testing.T) {
	dir := t.TempDir()
	e := shell.NewExecutor(logger.New())

	res, err := e.Run(context.Background(), []string{"sh", "-c", "pwd"}, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Stdout, dir)
}

func TestExecutor_Run_ContextCancelKillsProcess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	e := shell.NewExecutor(logger.New())
	start := time.Now()
	res, err := e.Run(ctx, []string{"sh", "-c", "sleep 10"}, t.TempDir())

	assert.Less(t, time.Since(start), 5*time.Second)
	if err == nil {
		assert.NotEqual(t, 0, res.ExitCode)
	}
}
