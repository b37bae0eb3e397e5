// Package progress implements the periodic progress reporter.
package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/fcomp/internal/core/ports"
)

// DefaultInterval is the tick period between progress lines.
const DefaultInterval = time.Second

var _ ports.EventSink = (*Reporter)(nil)

// Reporter emits a single human-readable summary line per tick: targets
// compiled since the last tick, waiting and scheduled counts, lines
// compiled versus total, and an ETA extrapolated from lines-per-second.
// The ETA is reported as unavailable until the first target completes.
type Reporter struct {
	w        io.Writer
	source   ports.StatsSource
	interval time.Duration

	mu      sync.Mutex
	recent  []string
	started time.Time
}

// NewReporter creates a Reporter sampling the given stats source.
func NewReporter(w io.Writer, source ports.StatsSource, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reporter{
		w:        w,
		source:   source,
		interval: interval,
	}
}

// Emit collects completions so each tick can name what finished since the
// previous one. Other events are ignored.
func (r *Reporter) Emit(ev domain.Event) {
	c, ok := ev.(domain.TargetCompiled)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recent = append(r.recent, c.Name.String())
}

// Run emits progress lines until the context is cancelled. It is meant to
// run in its own goroutine alongside a scheduler run.
func (r *Reporter) Run(ctx context.Context) {
	r.mu.Lock()
	r.started = time.Now()
	r.mu.Unlock()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Reporter) tick() {
	r.mu.Lock()
	compiled := r.recent
	r.recent = nil
	elapsed := time.Since(r.started)
	r.mu.Unlock()

	stats := r.source.Stats()
	if stats.LinesTotal == 0 && len(compiled) == 0 {
		return
	}
	_, _ = fmt.Fprintln(r.w, r.line(stats, compiled, elapsed))
}

func (r *Reporter) line(stats domain.RunStats, compiled []string, elapsed time.Duration) string {
	var b strings.Builder
	if len(compiled) > 0 {
		b.WriteString("compiled " + strings.Join(compiled, ", ") + " | ")
	}
	fmt.Fprintf(&b, "%d waiting, %d scheduled, %d running | ",
		stats.Waiting, stats.Scheduled, stats.Running)

	pct := 0.0
	if stats.LinesTotal > 0 {
		pct = 100 * float64(stats.LinesDone) / float64(stats.LinesTotal)
	}
	fmt.Fprintf(&b, "%d/%d lines (%.1f%%) | elapsed %.1fs, ETA %s",
		stats.LinesDone, stats.LinesTotal, pct, elapsed.Seconds(), eta(stats, elapsed))
	return b.String()
}

// eta extrapolates remaining time from lines compiled per elapsed second.
func eta(stats domain.RunStats, elapsed time.Duration) string {
	if stats.LinesDone == 0 || elapsed <= 0 {
		return "n/a"
	}
	rate := float64(stats.LinesDone) / elapsed.Seconds()
	remaining := float64(stats.LinesTotal - stats.LinesDone)
	return fmt.Sprintf("%.1fs", remaining/rate)
}
