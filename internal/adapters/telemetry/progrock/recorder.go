// Package progrock bridges target lifecycle events onto a progrock tape,
// one vertex per target.
package progrock

import (
	"fmt"

	"github.com/opencontainers/go-digest"
	"github.com/vito/progrock"
	"go.trai.ch/fcomp/internal/core/domain"
	"go.trai.ch/fcomp/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.EventSink = (*Recorder)(nil)

// Recorder implements ports.EventSink using the progrock library.
type Recorder struct {
	w        progrock.Writer
	rec      *progrock.Recorder
	vertices map[domain.InternedString]*progrock.VertexRecorder
}

// New creates a Recorder with a default tape.
func New() *Recorder {
	return NewRecorder(progrock.NewTape())
}

// NewRecorder creates a Recorder with the given writer.
func NewRecorder(w progrock.Writer) *Recorder {
	return &Recorder{
		w:        w,
		rec:      progrock.NewRecorder(w),
		vertices: make(map[domain.InternedString]*progrock.VertexRecorder),
	}
}

// Emit records the event on the tape. Events arrive from the scheduling
// loop only, so the vertex map needs no locking.
func (r *Recorder) Emit(ev domain.Event) {
	switch e := ev.(type) {
	case domain.TargetStarted:
		r.vertices[e.Name] = r.vertex(e.Name)
	case domain.TargetCompiled:
		if v, ok := r.vertices[e.Name]; ok {
			_, _ = fmt.Fprintf(v.Stdout(), "%d lines in %s\n", e.Lines, e.Duration)
			v.Done(nil)
		}
	case domain.TargetFailed:
		v, ok := r.vertices[e.Name]
		if !ok {
			v = r.vertex(e.Name)
		}
		if e.StderrTail != "" {
			_, _ = fmt.Fprintln(v.Stderr(), e.StderrTail)
		}
		v.Done(zerr.With(domain.ErrCompilationFailed, "exit_code", e.ExitCode))
	case domain.TargetSkipped:
		v := r.vertex(e.Name)
		v.Done(zerr.With(zerr.New("skipped"), "cause", e.Cause.String()))
	}
}

func (r *Recorder) vertex(name domain.InternedString) *progrock.VertexRecorder {
	return r.rec.Vertex(digest.FromString(name.String()), name.String())
}

// Close flushes and closes the recording session.
func (r *Recorder) Close() error {
	if c, ok := r.w.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
