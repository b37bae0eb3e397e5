package app

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.trai.ch/fcomp/internal/core/domain"
)

// scanAll extracts the module interface of every target, bounded-parallel.
// Unreadable or partially scanned sources degrade to a best-effort result
// with a warning; the compiler will surface the real error if the target
// is actually built.
func (a *App) scanAll(ctx context.Context, targets []domain.Target) (map[domain.InternedString]domain.ModuleInterface, error) {
	ifaces := make(map[domain.InternedString]domain.ModuleInterface, len(targets))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			iface := a.scanTarget(t)
			mu.Lock()
			ifaces[t.Name] = iface
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ifaces, nil
}

func (a *App) scanTarget(t domain.Target) domain.ModuleInterface {
	f, err := os.Open(t.Source) //nolint:gosec // Path comes from the build spec
	if err != nil {
		a.logger.Warn("cannot read source, skipping scan: " + t.Source)
		return domain.ModuleInterface{Uses: make(map[domain.InternedString]struct{})}
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	iface, err := a.scanner.Scan(f)
	if err != nil {
		a.logger.Warn("partial scan of " + t.Source + ": " + err.Error())
	}
	return iface
}

// pruneSatisfied drops used modules whose precompiled artifact already
// exists in one of the target's include directories. Those modules are
// satisfied outside this build and must carry no edge.
func pruneSatisfied(targets []domain.Target, ifaces map[domain.InternedString]domain.ModuleInterface) {
	for _, t := range targets {
		if len(t.Includes) == 0 {
			continue
		}
		iface := ifaces[t.Name]
		for mod := range iface.Uses {
			for _, inc := range t.Includes {
				if _, err := os.Stat(filepath.Join(inc, mod.String()+".mod")); err == nil {
					delete(iface.Uses, mod)
					break
				}
			}
		}
	}
}
