// Package app implements the application layer for fcomp: it wires the
// scan, graph, fingerprint and scheduling phases into a single run.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.trai.ch/fcomp/internal/adapters/progress"
	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/fcomp/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	loader   ports.ConfigLoader
	scanner  ports.Scanner
	store    ports.FingerprintStore
	sched    *scheduler.Scheduler
	logger   ports.Logger
	reporter *progress.Reporter
	clocks   *clockSink
	closers  []io.Closer
}

// RunOptions configures one build invocation.
type RunOptions struct {
	// Spec is the build specification path; empty means the default
	// location, "-" means stdin.
	Spec string
	// Jobs bounds concurrent compiler invocations.
	Jobs int
	// Dry scans and builds the graph only, reporting the would-be dirty
	// set without dispatching any compile command.
	Dry bool
	// Clocks logs the slowest compilations after the run.
	Clocks bool
}

// New creates a new App. The reporter and any extra sinks are subscribed
// to the scheduler's event stream; sinks that implement io.Closer are
// closed when a run finishes.
func New(
	loader ports.ConfigLoader,
	scanner ports.Scanner,
	store ports.FingerprintStore,
	sched *scheduler.Scheduler,
	logger ports.Logger,
	reporter *progress.Reporter,
	sinks ...ports.EventSink,
) *App {
	a := &App{
		loader:   loader,
		scanner:  scanner,
		store:    store,
		sched:    sched,
		logger:   logger,
		reporter: reporter,
		clocks:   &clockSink{},
	}
	sched.Subscribe(&eventLogger{logger: logger})
	sched.Subscribe(a.clocks)
	if reporter != nil {
		sched.Subscribe(reporter)
	}
	for _, sink := range sinks {
		sched.Subscribe(sink)
		if c, ok := sink.(io.Closer); ok {
			a.closers = append(a.closers, c)
		}
	}
	return a
}

// Run executes the build process.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	targets, err := a.loader.Load(opts.Spec)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		a.logger.Info("nothing to build")
		return nil
	}

	a.logger.Info(fmt.Sprintf("scanning %d files...", len(targets)))
	ifaces, err := a.scanAll(ctx, targets)
	if err != nil {
		return err
	}
	pruneSatisfied(targets, ifaces)

	graph, err := domain.BuildGraph(targets, ifaces)
	if err != nil {
		return err
	}

	snap, err := a.store.Load()
	if err != nil {
		return err
	}

	dirty := a.sched.Plan(graph, snap)
	a.logger.Info(fmt.Sprintf("changed targets: %d/%d", len(dirty), graph.TargetCount()))

	if opts.Dry {
		for _, name := range dirty {
			a.logger.Info("would compile " + name.String())
		}
		return nil
	}
	if len(dirty) == 0 {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	if a.reporter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.reporter.Run(runCtx)
		}()
	}

	summary, runErr := a.sched.Run(runCtx, graph, snap, scheduler.Options{Jobs: opts.Jobs})
	cancel()
	wg.Wait()
	for _, c := range a.closers {
		_ = c.Close()
	}

	// Failed and skipped targets kept their previous fingerprints: the
	// snapshot only gained hashes for targets that compiled. Saving is
	// still required after a failed run so successful work is not redone.
	if err := a.store.Save(snap); err != nil {
		runErr = errors.Join(runErr, err)
	}

	a.logger.Info(fmt.Sprintf(
		"compiled %d, failed %d, skipped %d, up-to-date %d (%d lines)",
		summary.Compiled, summary.Failed, summary.Skipped, summary.UpToDate, summary.Lines,
	))
	if opts.Clocks {
		a.logClocks()
	}
	return runErr
}

// eventLogger surfaces lifecycle events through the structured logger.
type eventLogger struct {
	logger ports.Logger
}

func (l *eventLogger) Emit(ev domain.Event) {
	switch e := ev.(type) {
	case domain.TargetCompiled:
		l.logger.Info("compiled " + e.Name.String())
	case domain.TargetFailed:
		err := zerr.With(domain.ErrCompilationFailed, "target", e.Name.String())
		err = zerr.With(err, "exit_code", e.ExitCode)
		if e.StderrTail != "" {
			err = zerr.With(err, "stderr", e.StderrTail)
		}
		l.logger.Error(err)
	case domain.TargetSkipped:
		l.logger.Warn(fmt.Sprintf("skipped %s: %s failed", e.Name, e.Cause))
	}
}
