package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/ports"
)

// State is the lifecycle state of the engine.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "idle"
}

// Highlight classes applied by the engine.
const (
	ClassActive  = "active"
	ClassVisited = "visited"
	ClassFlowing = "flowing"
)

// snapshot is the read-only graph data a run works on.
type snapshot struct {
	graph   *flow.Graph
	resting map[string]domain.Stroke
	kinds   map[string]domain.ConnectionKind
}

// Engine drives timed traversals of a flow graph through a Renderer.
// Only one run is active at a time; starting a new one stops the previous.
type Engine struct {
	renderer  ports.Renderer
	scheduler Scheduler
	timing    Timing
	hooks     domain.LifecycleHooks
	logger    *slog.Logger

	// launchMu serializes start and stop so a new run never overlaps the old one.
	launchMu sync.Mutex

	mu      sync.Mutex
	state   State
	speed   float64
	snap    snapshot
	current *Run
}

// EngineOption configures the runtime engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithScheduler replaces the timer-based scheduler.
func WithScheduler(s Scheduler) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithTiming overrides the base durations. Zero fields keep their defaults.
func WithTiming(t Timing) EngineOption {
	return func(e *Engine) {
		e.timing = t.normalized()
	}
}

// WithSpeed sets the initial speed factor (clamped).
func WithSpeed(v float64) EngineOption {
	return func(e *Engine) {
		e.speed = ClampSpeed(v)
	}
}

// NewEngine creates an idle engine over an empty graph.
func NewEngine(renderer ports.Renderer, opts ...EngineOption) *Engine {
	e := &Engine{
		renderer:  renderer,
		scheduler: TimerScheduler{},
		timing:    DefaultTiming(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		speed:     DefaultSpeed,
		snap:      newSnapshot(nil),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func newSnapshot(records []domain.Connection) snapshot {
	s := snapshot{
		graph:   flow.Build(records),
		resting: make(map[string]domain.Stroke),
		kinds:   make(map[string]domain.ConnectionKind),
	}
	for _, c := range records {
		if c.IsCommand() {
			continue
		}
		s.resting[c.ID] = c.Weight
		s.kinds[c.ID] = c.Kind
	}
	return s
}

// Initialize rebuilds the flow graph from records and resets the engine to Idle.
// It fails with domain.ErrEngineBusy while a run is active.
func (e *Engine) Initialize(records []domain.Connection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateRunning {
		return domain.ErrEngineBusy
	}
	e.snap = newSnapshot(records)
	e.state = StateIdle
	e.logger.Debug("flow graph initialized", "nodes", len(e.snap.graph.Nodes()), "edges", e.snap.graph.EdgeCount())
	return nil
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Graph returns the current flow graph snapshot.
func (e *Engine) Graph() *flow.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap.graph
}

// SetSpeed clamps and stores the speed factor. Delays already scheduled keep
// the factor they were computed with.
func (e *Engine) SetSpeed(v float64) float64 {
	v = ClampSpeed(v)
	e.mu.Lock()
	e.speed = v
	e.mu.Unlock()
	return v
}

// Speed returns the current speed factor.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// FindPath returns the shortest path between two entities.
func (e *Engine) FindPath(from, to string) ([]string, error) {
	return e.Graph().FindPath(from, to)
}

// PreviewPath lists every entity reachable from id without animating.
func (e *Engine) PreviewPath(id string) []string {
	return e.Graph().Preview(id)
}

// StartFlowAnimation animates a depth-first traversal from startID.
func (e *Engine) StartFlowAnimation(ctx context.Context, startID string) (*Run, error) {
	return e.launch(ctx, domain.RunFlow, startID, func(snap snapshot) error {
		if !e.knows(snap, startID) {
			return fmt.Errorf("%w: %s", domain.ErrEntityNotFound, startID)
		}
		return nil
	}, func(ctx context.Context, r *Run) error {
		return e.animateFlow(ctx, r, startID)
	})
}

// AnimateAllFlows animates a traversal from every source entity in turn.
func (e *Engine) AnimateAllFlows(ctx context.Context) (*Run, error) {
	return e.launch(ctx, domain.RunAll, "", nil, e.animateAll)
}

// HighlightPath walks the shortest path from -> to, highlighting nodes and edges.
func (e *Engine) HighlightPath(ctx context.Context, from, to string) (*Run, error) {
	var path []string
	return e.launch(ctx, domain.RunPath, from, func(snap snapshot) error {
		p, err := snap.graph.FindPath(from, to)
		if err != nil {
			return err
		}
		path = p
		return nil
	}, func(ctx context.Context, r *Run) error {
		return e.animatePath(ctx, r, path)
	})
}

// StopAnimation cancels the active run, waits for it to exit and clears every
// highlight. Calling it with no active run only clears highlights.
func (e *Engine) StopAnimation() {
	e.launchMu.Lock()
	defer e.launchMu.Unlock()

	if r := e.stopCurrent(); r != nil {
		e.mu.Lock()
		e.state = StateStopped
		e.mu.Unlock()
		e.logger.Debug("animation stopped", "run_id", r.id)
	}
	e.safely("clear", e.renderer.ClearAllHighlights)
}

// stopCurrent cancels and waits for the active run. Caller holds launchMu.
func (e *Engine) stopCurrent() *Run {
	e.mu.Lock()
	r := e.current
	e.mu.Unlock()
	if r == nil {
		return nil
	}
	r.cancel()
	<-r.done
	e.clearVisuals(r)
	return r
}

// knows reports whether id can be the start of a traversal.
func (e *Engine) knows(snap snapshot, id string) bool {
	if snap.graph.Has(id) {
		return true
	}
	_, ok := e.renderer.EntityBox(id)
	return ok
}

func (e *Engine) launch(
	ctx context.Context,
	kind domain.RunKind,
	start string,
	validate func(snapshot) error,
	body func(context.Context, *Run) error,
) (*Run, error) {
	e.launchMu.Lock()
	defer e.launchMu.Unlock()

	e.mu.Lock()
	snap := e.snap
	e.mu.Unlock()

	if validate != nil {
		if err := validate(snap); err != nil {
			return nil, err
		}
	}

	e.stopCurrent()
	e.safely("clear", e.renderer.ClearAllHighlights)

	runCtx, cancel := context.WithCancel(ctx)
	r := newRun(kind, start, snap, cancel)
	r.speed = e.Speed

	e.mu.Lock()
	e.current = r
	e.state = StateRunning
	e.mu.Unlock()

	e.logger.Debug("animation run started", "run_id", r.id, "kind", kind, "start", start)
	go e.execute(runCtx, r, body)
	return r, nil
}

// execute is the run boundary: panics from the renderer or hooks end here.
func (e *Engine) execute(ctx context.Context, r *Run, body func(context.Context, *Run) error) {
	defer close(r.done)
	defer r.cancel()
	defer func() {
		if p := recover(); p != nil {
			r.err = fmt.Errorf("%w: %v", domain.ErrRuntimeFault, p)
			e.logger.Error("animation run faulted", "run_id", r.id, "err", r.err)
			e.clearVisuals(r)
		}
		e.finish(ctx, r)
	}()

	if e.hooks.OnRunStart != nil {
		e.hooks.OnRunStart(ctx, e.runEvent(r, domain.EventRunStart))
	}

	r.err = body(ctx, r)
	if r.err != nil && (errors.Is(r.err, context.Canceled) || errors.Is(r.err, context.DeadlineExceeded)) {
		e.clearVisuals(r)
	}
}

// finish settles the engine state once a run has exited.
func (e *Engine) finish(ctx context.Context, r *Run) {
	e.mu.Lock()
	if e.current == r {
		e.current = nil
		switch {
		case r.err == nil, errors.Is(r.err, domain.ErrRuntimeFault):
			e.state = StateIdle
		default:
			e.state = StateStopped
		}
	}
	e.mu.Unlock()

	if r.err != nil && !errors.Is(r.err, domain.ErrRuntimeFault) {
		e.logger.Debug("animation run ended", "run_id", r.id, "err", r.err)
	} else if r.err == nil {
		e.logger.Debug("animation run completed", "run_id", r.id)
	}

	if e.hooks.OnRunEnd != nil {
		ev := e.runEvent(r, domain.EventRunEnd)
		ev.Err = r.err
		e.safely("run end hook", func() { e.hooks.OnRunEnd(context.WithoutCancel(ctx), ev) })
	}
}

// clearVisuals drops highlights and restores the resting stroke of every
// connection the run touched.
func (e *Engine) clearVisuals(r *Run) {
	e.safely("clear", func() {
		e.renderer.ClearAllHighlights()
		for id := range r.touched {
			if s, ok := r.snap.resting[id]; ok {
				e.renderer.StrokeConnection(id, s)
			}
		}
	})
}

// safely runs fn and logs a panic instead of propagating it.
func (e *Engine) safely(op string, fn func()) {
	defer func() {
		if p := recover(); p != nil {
			e.logger.Error("recovered panic", "op", op, "err", fmt.Errorf("%w: %v", domain.ErrRuntimeFault, p))
		}
	}()
	fn()
}

func (e *Engine) runEvent(r *Run, t domain.EventType) *domain.RunEvent {
	return &domain.RunEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: t, RunID: r.id},
		Kind:      r.kind,
		StartID:   r.start,
	}
}
