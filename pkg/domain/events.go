package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventRunStart       EventType = "run_start"
	EventRunEnd         EventType = "run_end"
	EventEntityEnter    EventType = "entity_enter"
	EventEntityLeave    EventType = "entity_leave"
	EventConnectionFlow EventType = "connection_flow"
)

// RunKind names the traversal a run performs.
type RunKind string

const (
	RunFlow RunKind = "flow"
	RunAll  RunKind = "all"
	RunPath RunKind = "path"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// RunEvent marks the start or the end of a run.
type RunEvent struct {
	EventBase
	Kind    RunKind `json:"kind"`
	StartID string  `json:"start_id,omitempty"`
	// Err is set on RunEnd when the run was cancelled or faulted.
	Err error `json:"-"`
}

// EntityEvent represents entry into or exit from an entity during a traversal.
type EntityEvent struct {
	EventBase
	EntityID string `json:"entity_id"`
	Depth    int    `json:"depth"`
}

// ConnectionEvent represents one completed flow effect.
type ConnectionEvent struct {
	EventBase
	ConnectionID string         `json:"connection_id"`
	Kind         ConnectionKind `json:"kind"`
	Duration     time.Duration  `json:"duration"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnRunStart       func(context.Context, *RunEvent)
	OnRunEnd         func(context.Context, *RunEvent)
	OnEntityEnter    func(context.Context, *EntityEvent)
	OnEntityLeave    func(context.Context, *EntityEvent)
	OnConnectionFlow func(context.Context, *ConnectionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnRunStart:       chain(h.OnRunStart, other.OnRunStart),
		OnRunEnd:         chain(h.OnRunEnd, other.OnRunEnd),
		OnEntityEnter:    chain(h.OnEntityEnter, other.OnEntityEnter),
		OnEntityLeave:    chain(h.OnEntityLeave, other.OnEntityLeave),
		OnConnectionFlow: chain(h.OnConnectionFlow, other.OnConnectionFlow),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
