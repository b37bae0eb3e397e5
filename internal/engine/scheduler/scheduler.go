// Package scheduler implements the priority-driven concurrent execution
// engine. A single scheduling loop owns all build state and reacts to
// completion events from a bounded pool of in-flight compiler processes;
// no state is ever mutated concurrently.
package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/zerr"
)

// Status is the lifecycle status of a target during a run.
type Status string

const (
	// StatusPending indicates dirtiness has not been determined yet.
	StatusPending Status = "Pending"
	// StatusDirty indicates the target is slated for compilation.
	StatusDirty Status = "Dirty"
	// StatusRunning indicates the compile command is in flight.
	StatusRunning Status = "Running"
	// StatusCompiled indicates a successful compilation this run.
	StatusCompiled Status = "Compiled"
	// StatusFailed indicates the compiler exited non-zero.
	StatusFailed Status = "Failed"
	// StatusSkipped indicates an ancestor failed, so the target never ran.
	StatusSkipped Status = "Skipped"
	// StatusUpToDate indicates no input of the target changed.
	StatusUpToDate Status = "UpToDate"
)

// Options configures a run.
type Options struct {
	// Jobs bounds the number of concurrently running compilations.
	Jobs int
	// WorkDir is where compile commands run and module artifacts appear.
	WorkDir string
}

// Summary aggregates per-target outcomes of a finished run.
type Summary struct {
	Compiled int
	Failed   int
	Skipped  int
	UpToDate int
	Lines    int
}

// Scheduler drives builds to completion. It is safe to observe via Stats
// and Status from other goroutines while a run is in progress.
type Scheduler struct {
	executor ports.Executor
	hasher   ports.Hasher
	logger   ports.Logger
	sinks    []ports.EventSink

	mu     sync.RWMutex
	status map[domain.InternedString]Status
	stats  domain.RunStats
}

var _ ports.StatsSource = (*Scheduler)(nil)

// New creates a new Scheduler.
func New(executor ports.Executor, hasher ports.Hasher, logger ports.Logger) *Scheduler {
	return &Scheduler{
		executor: executor,
		hasher:   hasher,
		logger:   logger,
		status:   make(map[domain.InternedString]Status),
	}
}

// Subscribe registers a sink for lifecycle events. Sinks receive events
// from the scheduling loop in order. Not safe to call during a run.
func (s *Scheduler) Subscribe(sink ports.EventSink) {
	s.sinks = append(s.sinks, sink)
}

// Stats returns a point-in-time view of run progress.
func (s *Scheduler) Stats() domain.RunStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Status returns the lifecycle status of a target.
func (s *Scheduler) Status(name domain.InternedString) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status[name]
}

// Plan computes the seeded dirty set without dispatching anything. Used by
// dry runs.
func (s *Scheduler) Plan(graph *domain.Graph, snap *domain.Snapshot) []domain.InternedString {
	_, dirty := s.seed(graph, snap)
	return dirty
}

// seed determines the initial dirty set: targets whose source-plus-args
// hash differs from the recorded one, or that have no record at all.
func (s *Scheduler) seed(graph *domain.Graph, snap *domain.Snapshot) (map[domain.InternedString]string, []domain.InternedString) {
	hashes := make(map[domain.InternedString]string, graph.TargetCount())
	var dirty []domain.InternedString
	for _, t := range graph.Targets() {
		h, err := s.hasher.SourceHash(t.Source, t.Args)
		if err != nil {
			// An unreadable source counts as changed; the compiler will
			// surface the real error.
			s.logger.Warn("cannot hash source, treating as changed: " + t.Source)
			h = ""
		}
		hashes[t.Name] = h
		if prev, ok := snap.SourceHash(t.Name); !ok || prev != h || h == "" {
			dirty = append(dirty, t.Name)
		}
	}
	return hashes, dirty
}

// Run drives the build to completion: seeds dirtiness, dispatches ready
// targets by priority up to the worker budget, and propagates module
// fingerprint changes to decide which dependents actually need
// recompiling. The snapshot is updated in place; persisting it is the
// caller's responsibility.
func (s *Scheduler) Run(ctx context.Context, graph *domain.Graph, snap *domain.Snapshot, opts Options) (Summary, error) {
	st := s.newRunState(ctx, graph, snap, opts)

	for !st.isDone() {
		st.dispatch()

		if st.isDone() {
			break
		}
		if st.ctx.Err() != nil && st.active == 0 {
			break
		}

		select {
		case res := <-st.resultsCh:
			st.handleResult(res)
		case <-st.ctx.Done():
		}
	}

	if st.ctx.Err() != nil {
		st.errs = errors.Join(st.errs, st.ctx.Err())
	}
	return s.summarize(), st.errs
}

type result struct {
	name domain.InternedString
	res  ports.Result
	err  error
	dur  time.Duration
}

type runState struct {
	s       *Scheduler
	ctx     context.Context
	graph   *domain.Graph
	snap    *domain.Snapshot
	jobs    int
	workDir string

	srcHashes map[domain.InternedString]string
	remaining map[domain.InternedString]int
	dirty     map[domain.InternedString]bool
	skipCause map[domain.InternedString]domain.InternedString
	ready     readyQueue
	seq       int
	active    int
	resultsCh chan result
	errs      error
}

func (s *Scheduler) newRunState(ctx context.Context, graph *domain.Graph, snap *domain.Snapshot, opts Options) *runState {
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}

	s.mu.Lock()
	s.status = make(map[domain.InternedString]Status, graph.TargetCount())
	s.stats = domain.RunStats{}
	s.mu.Unlock()

	st := &runState{
		s:         s,
		ctx:       ctx,
		graph:     graph,
		snap:      snap,
		jobs:      jobs,
		workDir:   workDir,
		remaining: make(map[domain.InternedString]int, graph.TargetCount()),
		dirty:     make(map[domain.InternedString]bool),
		skipCause: make(map[domain.InternedString]domain.InternedString),
		resultsCh: make(chan result, jobs),
	}

	hashes, seeds := s.seed(graph, snap)
	st.srcHashes = hashes

	for _, t := range graph.Targets() {
		st.remaining[t.Name] = len(graph.Deps(t.Name))
		s.setStatus(t.Name, StatusPending)
	}
	for _, name := range seeds {
		st.markDirty(name)
	}

	// Targets with no dependencies settle immediately; everything else
	// cascades from them.
	var roots []domain.InternedString
	for _, t := range graph.Targets() {
		if st.remaining[t.Name] == 0 {
			roots = append(roots, t.Name)
		}
	}
	for _, name := range roots {
		st.resolve(name)
	}
	return st
}

func (st *runState) isDone() bool {
	return st.active == 0 && st.ready.Len() == 0
}

// markDirty slates a target for compilation and grows the line total the
// progress reporter extrapolates against.
func (st *runState) markDirty(name domain.InternedString) {
	if st.dirty[name] {
		return
	}
	st.dirty[name] = true
	st.s.setStatus(name, StatusDirty)
	lines := st.graph.Interface(name).Lines
	st.s.updateStats(func(r *domain.RunStats) {
		r.Waiting++
		r.LinesTotal += lines
	})
}

// resolve decides the fate of a target whose dependencies are all settled.
func (st *runState) resolve(name domain.InternedString) {
	switch {
	case !st.skipCause[name].IsZero():
		st.settleSkipped(name, st.skipCause[name])
	case st.dirty[name]:
		st.enqueue(name)
	default:
		st.settleUpToDate(name)
	}
}

func (st *runState) enqueue(name domain.InternedString) {
	st.seq++
	heap.Push(&st.ready, readyItem{
		name:     name,
		priority: st.graph.Priority(name),
		seq:      st.seq,
	})
	st.s.updateStats(func(r *domain.RunStats) {
		r.Waiting--
		r.Scheduled++
	})
}

// dispatch starts queued targets, highest priority first, while workers
// are below budget.
func (st *runState) dispatch() {
	for st.ready.Len() > 0 && st.active < st.jobs && st.ctx.Err() == nil {
		item := heap.Pop(&st.ready).(readyItem)
		target, ok := st.graph.Target(item.name)
		if !ok {
			continue
		}

		st.active++
		st.s.setStatus(item.name, StatusRunning)
		st.s.updateStats(func(r *domain.RunStats) { r.Running++ })

		// Drop the stale source record first: if the run is interrupted
		// mid-compile, the next run must treat this target as dirty.
		delete(st.snap.Sources, item.name.String())

		st.s.emit(domain.TargetStarted{Name: item.name})

		go func(t domain.Target) {
			argv := append(slices.Clone(t.Args), t.Source)
			start := time.Now()
			res, err := st.s.executor.Run(st.ctx, argv, st.workDir)
			st.resultsCh <- result{name: t.Name, res: res, err: err, dur: time.Since(start)}
		}(target)
	}
}

func (st *runState) handleResult(res result) {
	st.active--
	st.s.updateStats(func(r *domain.RunStats) {
		r.Running--
		r.Scheduled--
	})

	if res.err != nil {
		st.fail(res.name, -1, res.err.Error())
		return
	}
	if res.res.ExitCode != 0 {
		st.fail(res.name, res.res.ExitCode, res.res.Stderr)
		return
	}

	changed, err := st.recordArtifacts(res.name)
	if err != nil {
		// A missing or unreadable artifact is a compilation failure for
		// this target.
		st.fail(res.name, -1, err.Error())
		return
	}
	st.snap.Sources[res.name.String()] = st.srcHashes[res.name]

	lines := st.graph.Interface(res.name).Lines
	st.s.updateStats(func(r *domain.RunStats) { r.LinesDone += lines })
	st.s.setStatus(res.name, StatusCompiled)
	st.s.emit(domain.TargetCompiled{Name: res.name, Lines: lines, Duration: res.dur})
	st.propagate(res.name, changed, domain.InternedString{})
}

func (st *runState) fail(name domain.InternedString, exitCode int, stderr string) {
	st.s.setStatus(name, StatusFailed)
	st.s.emit(domain.TargetFailed{Name: name, ExitCode: exitCode, StderrTail: stderrTail(stderr)})

	err := zerr.With(domain.ErrCompilationFailed, "target", name.String())
	err = zerr.With(err, "exit_code", exitCode)
	st.errs = errors.Join(st.errs, err)

	st.propagate(name, nil, name)
}

// recordArtifacts hashes every module artifact the target defines and
// records the new hashes in the snapshot. It returns the set of modules
// whose artifact changed since the previous run or had no prior record.
func (st *runState) recordArtifacts(name domain.InternedString) (map[domain.InternedString]bool, error) {
	changed := make(map[domain.InternedString]bool)
	for _, mod := range st.graph.Interface(name).Defines {
		path := filepath.Join(st.workDir, mod.String()+".mod")
		h, err := st.s.hasher.ArtifactHash(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := st.snap.ModuleHash(mod); !ok || prev != h {
			changed[mod] = true
			st.snap.Modules[mod.String()] = h
		}
	}
	return changed, nil
}

// propagate settles the named target toward its dependents. changed lists
// the modules whose artifact fingerprint moved: only their users are
// dirtied, which is the central incrementality guarantee. cause is
// non-zero when the target failed or was skipped and names the root
// failing ancestor.
func (st *runState) propagate(name domain.InternedString, changed map[domain.InternedString]bool, cause domain.InternedString) {
	for mod := range changed {
		for _, user := range st.graph.Users(mod) {
			// Drop the user's source record now, not at dispatch: if this
			// run never reaches the user (skipped or interrupted), the
			// persisted snapshot must still force it dirty next run, even
			// when the provider's artifact comes out byte-identical then.
			delete(st.snap.Sources, user.String())
			st.markDirty(user)
		}
	}
	for _, dep := range st.graph.Dependents(name) {
		if !cause.IsZero() && st.skipCause[dep].IsZero() {
			st.skipCause[dep] = cause
		}
		st.remaining[dep]--
		if st.remaining[dep] == 0 {
			st.resolve(dep)
		}
	}
}

func (st *runState) settleUpToDate(name domain.InternedString) {
	st.s.setStatus(name, StatusUpToDate)
	st.propagate(name, nil, domain.InternedString{})
}

func (st *runState) settleSkipped(name, cause domain.InternedString) {
	st.s.setStatus(name, StatusSkipped)
	if st.dirty[name] {
		st.s.updateStats(func(r *domain.RunStats) { r.Waiting-- })
	}
	st.s.emit(domain.TargetSkipped{Name: name, Cause: cause})
	st.propagate(name, nil, cause)
}

func (s *Scheduler) setStatus(name domain.InternedString, status Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status[name] = status
}

func (s *Scheduler) updateStats(fn func(*domain.RunStats)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.stats)
}

func (s *Scheduler) emit(ev domain.Event) {
	for _, sink := range s.sinks {
		sink.Emit(ev)
	}
}

func (s *Scheduler) summarize() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := Summary{Lines: s.stats.LinesDone}
	for _, status := range s.status {
		switch status {
		case StatusCompiled:
			sum.Compiled++
		case StatusFailed:
			sum.Failed++
		case StatusSkipped:
			sum.Skipped++
		case StatusUpToDate:
			sum.UpToDate++
		}
	}
	return sum
}

const tailLimit = 512

// stderrTail keeps the most recent chunk of compiler stderr for the
// failure event, cut at a line boundary where possible and never inside a
// multi-byte rune.
func stderrTail(s string) string {
	s = strings.TrimRight(s, "\n")
	if len(s) <= tailLimit {
		return s
	}
	s = s[len(s)-tailLimit:]
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	for i := 0; i < len(s); i++ {
		if utf8.RuneStart(s[i]) {
			return s[i:]
		}
	}
	return s
}
