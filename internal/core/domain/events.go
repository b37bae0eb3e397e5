package domain

import "time"

// Event is a target lifecycle event emitted by the execution engine. Events
// are produced from the single scheduling loop only, so sinks observe them
// in a consistent order.
type Event interface {
	EventName() InternedString
}

// TargetStarted signals that a target's compile command was dispatched.
type TargetStarted struct {
	Name InternedString
}

// TargetCompiled signals that a target finished compiling successfully.
type TargetCompiled struct {
	Name     InternedString
	Lines    int
	Duration time.Duration
}

// TargetFailed signals that a target's compiler exited non-zero.
type TargetFailed struct {
	Name       InternedString
	ExitCode   int
	StderrTail string
}

// TargetSkipped signals that a target was never dispatched because the
// named ancestor failed.
type TargetSkipped struct {
	Name  InternedString
	Cause InternedString
}

func (e TargetStarted) EventName() InternedString  { return e.Name }
func (e TargetCompiled) EventName() InternedString { return e.Name }
func (e TargetFailed) EventName() InternedString   { return e.Name }
func (e TargetSkipped) EventName() InternedString  { return e.Name }

// RunStats is a point-in-time view of run progress, sampled by reporters.
type RunStats struct {
	// Waiting counts dirty targets blocked on unsettled dependencies.
	Waiting int
	// Scheduled counts dirty targets queued or running.
	Scheduled int
	// Running counts in-flight compiler invocations.
	Running int
	// LinesDone is the cumulative line count of compiled targets.
	LinesDone int
	// LinesTotal is the line count of all targets slated for compilation.
	// It grows as change propagation dirties more targets.
	LinesTotal int
}
