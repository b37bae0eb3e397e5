package app

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"go.trai.ch/fcomp/internal/core/domain"
)

// clockCount bounds the slowest-targets table.
const clockCount = 20

// clockSink records per-target compile durations for the clocks table.
type clockSink struct {
	mu      sync.Mutex
	entries []clockEntry
}

type clockEntry struct {
	name  string
	dur   time.Duration
	lines int
}

func (c *clockSink) Emit(ev domain.Event) {
	e, ok := ev.(domain.TargetCompiled)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, clockEntry{
		name:  e.Name.String(),
		dur:   e.Duration,
		lines: e.Lines,
	})
}

// logClocks reports the slowest compilations of the finished run.
func (a *App) logClocks() {
	a.clocks.mu.Lock()
	entries := slices.Clone(a.clocks.entries)
	a.clocks.mu.Unlock()

	slices.SortFunc(entries, func(x, y clockEntry) int {
		switch {
		case x.dur > y.dur:
			return -1
		case x.dur < y.dur:
			return 1
		default:
			return 0
		}
	})
	if len(entries) > clockCount {
		entries = entries[:clockCount]
	}
	for _, e := range entries {
		a.logger.Info(fmt.Sprintf("%s: %.2fs, %d lines", e.name, e.dur.Seconds(), e.lines))
	}
}
