package cas_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fcomp/internal/adapters/cas"
	"go.trai.ch/fcomp/internal/core/domain"
)

func TestStore_LoadMissingFile(t *testing.T) {
	store := cas.NewStore(filepath.Join(t.TempDir(), "state.json"))

	snap, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Empty(t, snap.Sources)
	assert.Empty(t, snap.Modules)
}

func TestStore_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := cas.NewStore(path)

	snap := domain.NewSnapshot()
	snap.Sources["solver"] = "0011aabb"
	snap.Modules["mod_solver"] = "deadbeef"

	require.NoError(t, store.Save(snap))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, snap.Sources, loaded.Sources)
	assert.Equal(t, snap.Modules, loaded.Modules)
}

func TestStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := cas.NewStore(path).Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
}

func TestStore_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	snap, err := cas.NewStore(path).Load()
	require.NoError(t, err)
	assert.Empty(t, snap.Sources)
}

func TestStore_LoadPartialDocument(t *testing.T) {
	// A snapshot written by hand may omit one of the maps; Load must still
	// return usable non-nil maps.
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"sources": {"a": "x"}}`), 0o600))

	snap, err := cas.NewStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "x", snap.Sources["a"])
	require.NotNil(t, snap.Modules)
}

func TestStore_SaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := cas.NewStore(path)

	first := domain.NewSnapshot()
	first.Sources["a"] = "1"
	require.NoError(t, store.Save(first))

	second := domain.NewSnapshot()
	second.Sources["a"] = "2"
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "2", loaded.Sources["a"])

	// No temporary files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestStore_SaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	store := cas.NewStore(path)

	require.NoError(t, store.Save(domain.NewSnapshot()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
