package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/fcomp/internal/core/domain"
)

func TestPruneSatisfied(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mlib.mod"), []byte("x"), 0o600))

	name := domain.NewInternedString("main")
	targets := []domain.Target{{
		Name:     name,
		Source:   "main.f90",
		Includes: []string{dir},
	}}
	ifaces := map[domain.InternedString]domain.ModuleInterface{
		name: {
			Uses: map[domain.InternedString]struct{}{
				domain.NewInternedString("mlib"):  {},
				domain.NewInternedString("mmesh"): {},
			},
		},
	}

	pruneSatisfied(targets, ifaces)

	uses := ifaces[name].Uses
	assert.NotContains(t, uses, domain.NewInternedString("mlib"))
	assert.Contains(t, uses, domain.NewInternedString("mmesh"))
}

func TestPruneSatisfied_NoIncludes(t *testing.T) {
	name := domain.NewInternedString("main")
	targets := []domain.Target{{Name: name, Source: "main.f90"}}
	ifaces := map[domain.InternedString]domain.ModuleInterface{
		name: {
			Uses: map[domain.InternedString]struct{}{
				domain.NewInternedString("mlib"): {},
			},
		},
	}

	pruneSatisfied(targets, ifaces)
	assert.Len(t, ifaces[name].Uses, 1)
}
