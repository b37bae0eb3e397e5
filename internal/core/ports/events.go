package ports

import "go.trai.ch/fcomp/internal/core/domain"

// EventSink consumes target lifecycle events. Emit is only ever called from
// the scheduling loop, so implementations need no synchronization against
// concurrent emissions.
//
//go:generate go run go.uber.org/mock/mockgen -source=events.go -destination=mocks/mock_events.go -package=mocks
type EventSink interface {
	Emit(ev domain.Event)
}

// StatsSource exposes a point-in-time view of run progress. Unlike Emit,
// Stats may be called from a reporter's own goroutine.
type StatsSource interface {
	Stats() domain.RunStats
}
