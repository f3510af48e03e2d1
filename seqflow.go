package seqflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/seqflow/internal/runtime"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/layout"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/aretw0/seqflow/pkg/render"
)

// Default canvas used by Load when none is configured.
const (
	DefaultCanvasWidth  = 1200.0
	DefaultCanvasHeight = 800.0
)

// Engine is the high-level entry point for the seqflow library.
// It owns the current diagram and wraps the internal animation runtime.
type Engine struct {
	runtime     *runtime.Engine
	renderer    ports.Renderer
	table       *render.Table
	store       ports.DiagramStore
	runtimeOpts []runtime.EngineOption
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	width       float64
	height      float64

	// loadMu serializes diagram installs with run launches so the table and
	// the flow graph always describe the same diagram.
	loadMu sync.Mutex

	mu      sync.RWMutex
	diagram *domain.Diagram
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithRenderer replaces the default in-memory visual-state table.
func WithRenderer(r ports.Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStore sets the backend used by Save and Restore.
func WithStore(s ports.DiagramStore) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithCanvas sets the canvas size used to lay diagrams out.
func WithCanvas(width, height float64) Option {
	return func(e *Engine) {
		if width > 0 {
			e.width = width
		}
		if height > 0 {
			e.height = height
		}
	}
}

// WithSpeed sets the initial animation speed (clamped to [0.1, 5]).
func WithSpeed(v float64) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithSpeed(v))
	}
}

// WithTiming overrides the base animation durations.
func WithTiming(t runtime.Timing) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithTiming(t))
	}
}

// WithScheduler replaces the timer-based scheduler, e.g. with a
// runtime.InstantScheduler for dry runs.
func WithScheduler(s runtime.Scheduler) Option {
	return func(e *Engine) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithScheduler(s))
	}
}

// New creates an Engine. Without WithRenderer it draws into a render.Table,
// available through Table.
func New(opts ...Option) *Engine {
	eng := &Engine{
		width:  DefaultCanvasWidth,
		height: DefaultCanvasHeight,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.renderer == nil {
		eng.table = render.NewTable()
		eng.renderer = eng.table
	} else if t, ok := eng.renderer.(*render.Table); ok {
		eng.table = t
	}

	// Ensure logger is initialized (so we don't pass nil to runtime)
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	}
	runtimeOpts = append(runtimeOpts, eng.runtimeOpts...)
	eng.runtime = runtime.NewEngine(eng.renderer, runtimeOpts...)
	return eng
}

// Parse turns diagram text into a model. Unrecognized lines are dropped.
func (e *Engine) Parse(text string) *domain.Diagram {
	return parser.Parse(text)
}

// AutoLayout places entities on a w x h grid. The slice is mutated and returned.
func (e *Engine) AutoLayout(entities []*domain.Entity, w, h float64) []*domain.Entity {
	return layout.AutoLayout(entities, w, h)
}

// Load parses text, lays it out, renders it and initializes the flow graph.
// Any running animation is stopped first. A text without entities yields
// domain.ErrEmptyDiagram and leaves the current diagram untouched.
func (e *Engine) Load(ctx context.Context, text string) (*domain.Diagram, error) {
	d, stats := parser.ParseWithStats(text)
	e.logger.DebugContext(ctx, "diagram parsed",
		"entities", len(d.Entities),
		"connections", stats.Messages,
		"commands", stats.Commands,
		"unmatched", stats.Unmatched,
	)
	if d.IsEmpty() {
		return nil, domain.ErrEmptyDiagram
	}
	layout.AutoLayout(d.Entities, e.width, e.height)
	if err := e.install(d); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadDiagram installs an already built diagram (e.g. restored or built with
// the dsl package). Entities still at the origin are laid out first.
func (e *Engine) LoadDiagram(ctx context.Context, d *domain.Diagram) error {
	if d == nil {
		return domain.ErrNilInput
	}
	if d.IsEmpty() {
		return domain.ErrEmptyDiagram
	}
	d.Reindex()
	if needsLayout(d) {
		layout.AutoLayout(d.Entities, e.width, e.height)
	}
	return e.install(d)
}

// LoadDocument fetches a document from a library and loads its source.
func (e *Engine) LoadDocument(ctx context.Context, src ports.DiagramSource, id string) (*domain.Diagram, error) {
	doc, err := src.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.Load(ctx, doc.Source)
}

func needsLayout(d *domain.Diagram) bool {
	for _, ent := range d.Entities {
		if ent.Position != (domain.Point{}) {
			return false
		}
	}
	return true
}

func (e *Engine) install(d *domain.Diagram) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()

	e.runtime.StopAnimation()
	if err := e.renderer.Render(d); err != nil {
		e.restore()
		return fmt.Errorf("failed to render diagram: %w", err)
	}
	if err := e.runtime.Initialize(d.Connections); err != nil {
		e.restore()
		return err
	}
	e.mu.Lock()
	e.diagram = d
	e.mu.Unlock()
	return nil
}

// restore puts the current diagram back on the renderer after a failed install.
func (e *Engine) restore() {
	if prev := e.Diagram(); prev != nil {
		if err := e.renderer.Render(prev); err != nil {
			e.logger.Error("failed to restore diagram", "err", err)
		}
		return
	}
	e.renderer.Clear()
}

// Initialize rebuilds the flow graph from records without touching the diagram.
func (e *Engine) Initialize(records []domain.Connection) error {
	e.loadMu.Lock()
	defer e.loadMu.Unlock()
	return e.runtime.Initialize(records)
}

// StartFlowAnimation animates the flow reachable from id.
func (e *Engine) StartFlowAnimation(ctx context.Context, id string) (ports.Run, error) {
	e.loadMu.Lock()
	r, err := e.runtime.StartFlowAnimation(ctx, id)
	e.loadMu.Unlock()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// AnimateAllFlows animates the flow of every source entity in turn.
func (e *Engine) AnimateAllFlows(ctx context.Context) (ports.Run, error) {
	e.loadMu.Lock()
	r, err := e.runtime.AnimateAllFlows(ctx)
	e.loadMu.Unlock()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// HighlightPath animates the shortest path between two entities.
func (e *Engine) HighlightPath(ctx context.Context, from, to string) (ports.Run, error) {
	e.loadMu.Lock()
	r, err := e.runtime.HighlightPath(ctx, from, to)
	e.loadMu.Unlock()
	if err != nil {
		return nil, err
	}
	return r, nil
}

// StopAnimation stops the active animation and clears all highlights.
func (e *Engine) StopAnimation() {
	e.runtime.StopAnimation()
}

// SetSpeed sets the animation speed factor and returns the clamped value.
func (e *Engine) SetSpeed(v float64) float64 {
	return e.runtime.SetSpeed(v)
}

// Speed returns the current animation speed factor.
func (e *Engine) Speed() float64 {
	return e.runtime.Speed()
}

// FindPath returns the shortest path between two entities.
func (e *Engine) FindPath(from, to string) ([]string, error) {
	return e.runtime.FindPath(from, to)
}

// PreviewPath lists every entity reachable from id.
func (e *Engine) PreviewPath(id string) []string {
	return e.runtime.PreviewPath(id)
}

// Diagram returns the currently loaded diagram, or nil.
func (e *Engine) Diagram() *domain.Diagram {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.diagram
}

// State returns the lifecycle state of the animation runtime.
func (e *Engine) State() runtime.State {
	return e.runtime.State()
}

// Sources returns the entities a full animation starts from.
func (e *Engine) Sources() []string {
	return e.runtime.Graph().Sources()
}

// Table returns the in-memory visual-state table, or nil when a custom
// renderer that is not a table was injected.
func (e *Engine) Table() *render.Table {
	return e.table
}

// Save persists the current diagram under id.
func (e *Engine) Save(ctx context.Context, id string) error {
	if e.store == nil {
		return fmt.Errorf("no diagram store configured")
	}
	d := e.Diagram()
	if d == nil {
		return domain.ErrEmptyDiagram
	}
	return e.store.Save(ctx, id, d)
}

// Restore loads the diagram stored under id and installs it.
func (e *Engine) Restore(ctx context.Context, id string) (*domain.Diagram, error) {
	if e.store == nil {
		return nil, fmt.Errorf("no diagram store configured")
	}
	d, err := e.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.LoadDiagram(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}
