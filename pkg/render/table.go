package render

import (
	"sort"
	"sync"

	"github.com/aretw0/seqflow/pkg/domain"
)

type entityState struct {
	box     domain.Box
	classes map[string]bool
}

type connectionState struct {
	from, to string
	resting  domain.Stroke
	current  domain.Stroke
	classes  map[string]bool
	ends     [2]domain.Point
}

// Table is a thread-safe visual-state table.
type Table struct {
	mu          sync.RWMutex
	entities    map[string]*entityState
	connections map[string]*connectionState
	entityOrder []string
	connOrder   []string

	seq       uint64
	observers map[int]Observer
	nextObs   int
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		entities:    make(map[string]*entityState),
		connections: make(map[string]*connectionState),
		observers:   make(map[int]Observer),
	}
}

// Subscribe registers fn for every future command. The returned func removes it.
func (t *Table) Subscribe(fn Observer) func() {
	t.mu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// apply runs mutate under the write lock and publishes cmd outside of it.
// mutate returns false to drop the command (unknown target).
func (t *Table) apply(cmd Command, mutate func() bool) {
	t.mu.Lock()
	if mutate != nil && !mutate() {
		t.mu.Unlock()
		return
	}
	t.seq++
	cmd.Seq = t.seq
	observers := make([]Observer, 0, len(t.observers))
	keys := make([]int, 0, len(t.observers))
	for k := range t.observers {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		observers = append(observers, t.observers[k])
	}
	t.mu.Unlock()

	for _, fn := range observers {
		fn(cmd)
	}
}

// Render replaces the table content with d and snapshots resting strokes.
func (t *Table) Render(d *domain.Diagram) error {
	if d == nil {
		return domain.ErrNilInput
	}
	t.apply(Command{Kind: CmdRender}, func() bool {
		t.reset()
		for _, e := range d.Entities {
			if _, dup := t.entities[e.ID]; dup {
				continue
			}
			t.entities[e.ID] = &entityState{box: e.Box(), classes: map[string]bool{}}
			t.entityOrder = append(t.entityOrder, e.ID)
		}
		for _, c := range d.Messages() {
			t.connections[c.ID] = &connectionState{
				from:    c.From,
				to:      c.To,
				resting: c.Weight,
				current: c.Weight,
				classes: map[string]bool{},
			}
			t.connOrder = append(t.connOrder, c.ID)
		}
		t.updateEnds()
		return true
	})
	return nil
}

// Clear removes everything.
func (t *Table) Clear() {
	t.apply(Command{Kind: CmdClear}, func() bool {
		t.reset()
		return true
	})
}

func (t *Table) reset() {
	t.entities = make(map[string]*entityState)
	t.connections = make(map[string]*connectionState)
	t.entityOrder = nil
	t.connOrder = nil
}

func (t *Table) HighlightObject(id, class string) {
	t.apply(Command{Kind: CmdHighlight, Target: id, Class: class}, func() bool {
		e, ok := t.entities[id]
		if ok {
			e.classes[class] = true
		}
		return ok
	})
}

func (t *Table) RemoveHighlight(id, class string) {
	t.apply(Command{Kind: CmdRemoveHighlight, Target: id, Class: class}, func() bool {
		e, ok := t.entities[id]
		if ok {
			delete(e.classes, class)
		}
		return ok
	})
}

func (t *Table) HighlightConnection(id, class string) {
	t.apply(Command{Kind: CmdHighlightConnection, Target: id, Class: class}, func() bool {
		c, ok := t.connections[id]
		if ok {
			c.classes[class] = true
		}
		return ok
	})
}

func (t *Table) RemoveConnectionHighlight(id, class string) {
	t.apply(Command{Kind: CmdRemoveConnHighlight, Target: id, Class: class}, func() bool {
		c, ok := t.connections[id]
		if ok {
			delete(c.classes, class)
		}
		return ok
	})
}

// ClearAllHighlights drops every class and restores every resting stroke.
func (t *Table) ClearAllHighlights() {
	t.apply(Command{Kind: CmdClearAllHighlights}, func() bool {
		for _, e := range t.entities {
			e.classes = map[string]bool{}
		}
		for _, c := range t.connections {
			c.classes = map[string]bool{}
			c.current = c.resting
		}
		return true
	})
}

// RestoreConnection puts a connection back on its resting stroke.
func (t *Table) RestoreConnection(id string) {
	t.mu.RLock()
	c, ok := t.connections[id]
	var s domain.Stroke
	if ok {
		s = c.resting
	}
	t.mu.RUnlock()
	if ok {
		t.StrokeConnection(id, s)
	}
}

func (t *Table) UpdateConnections() {
	t.apply(Command{Kind: CmdUpdateConnections}, func() bool {
		t.updateEnds()
		return true
	})
}

func (t *Table) updateEnds() {
	for _, c := range t.connections {
		if from, ok := t.entities[c.from]; ok {
			c.ends[0] = from.box.Center()
		}
		if to, ok := t.entities[c.to]; ok {
			c.ends[1] = to.box.Center()
		}
	}
}

// MoveEntity repositions an entity. Connection endpoints follow on the next UpdateConnections.
func (t *Table) MoveEntity(id string, p domain.Point) {
	t.apply(Command{Kind: CmdMoveEntity, Target: id, Point: &p}, func() bool {
		e, ok := t.entities[id]
		if ok {
			e.box.X, e.box.Y = p.X, p.Y
		}
		return ok
	})
}

func (t *Table) EntityBox(id string) (domain.Box, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entities[id]
	if !ok {
		return domain.Box{}, false
	}
	return e.box, true
}

func (t *Table) StrokeConnection(id string, s domain.Stroke) {
	t.apply(Command{Kind: CmdStrokeConnection, Target: id, Stroke: &s}, func() bool {
		c, ok := t.connections[id]
		if ok {
			c.current = s
		}
		return ok
	})
}

func (t *Table) Ripple(id string, radius float64) {
	t.apply(Command{Kind: CmdRipple, Target: id, Radius: radius}, func() bool {
		_, ok := t.entities[id]
		return ok
	})
}
