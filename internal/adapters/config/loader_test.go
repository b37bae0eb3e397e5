package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fcomp/internal/adapters/config"
	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/zerr"
)

func TestLoad_JSON(t *testing.T) {
	content := `{
  "solver": {
    "source": "src/solver.f90",
    "args": ["gfortran", "-c", "-o", "build/solver.o"],
    "includes": ["vendor/mods"]
  },
  "main": {
    "source": "src/main.f90",
    "args": ["gfortran", "-c", "-o", "build/main.o"]
  }
}`
	path := filepath.Join(t.TempDir(), "fcompile.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	targets, err := config.NewLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, targets, 2)

	// Name-sorted order.
	assert.Equal(t, "main", targets[0].Name.String())
	assert.Equal(t, "solver", targets[1].Name.String())

	solver := targets[1]
	assert.Equal(t, "src/solver.f90", solver.Source)
	assert.Equal(t, []string{"gfortran", "-c", "-o", "build/solver.o"}, solver.Args)
	assert.Equal(t, []string{"vendor/mods"}, solver.Includes)
}

func TestLoad_YAML(t *testing.T) {
	content := `
solver:
  source: src/solver.f90
  args: [gfortran, -c]
`
	path := filepath.Join(t.TempDir(), "fcompile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	targets, err := config.NewLoader().Load(path)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "solver", targets[0].Name.String())
	assert.Equal(t, []string{"gfortran", "-c"}, targets[0].Args)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.NewLoader().Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSpecMalformed))
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := config.Parse([]byte("{broken"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSpecMalformed))
}

func TestParse_MissingSource(t *testing.T) {
	_, err := config.Parse([]byte(`{"bad": {"args": ["gfortran"]}}`), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSpecMalformed))

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, "bad", zErr.Metadata()["target"])
}

func TestParse_MissingArgs(t *testing.T) {
	_, err := config.Parse([]byte(`{"bad": {"source": "bad.f90"}}`), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSpecMalformed))

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, "bad", zErr.Metadata()["target"])
}

func TestParse_DeterministicOrder(t *testing.T) {
	content := []byte(`{
  "zeta":  {"source": "z.f90", "args": ["fc"]},
  "alpha": {"source": "a.f90", "args": ["fc"]},
  "mid":   {"source": "m.f90", "args": ["fc"]}
}`)

	for range 5 {
		targets, err := config.Parse(content, false)
		require.NoError(t, err)
		require.Len(t, targets, 3)
		assert.Equal(t, "alpha", targets[0].Name.String())
		assert.Equal(t, "mid", targets[1].Name.String())
		assert.Equal(t, "zeta", targets[2].Name.String())
	}
}

func TestLoad_EmptySpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fcompile.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))

	targets, err := config.NewLoader().Load(path)
	require.NoError(t, err)
	assert.Empty(t, targets)
}
