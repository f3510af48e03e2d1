package render

import (
	"sort"

	"github.com/aretw0/seqflow/pkg/domain"
)

// EntityView is a read-only copy of one entity's visual state.
type EntityView struct {
	ID      string     `json:"id"`
	Box     domain.Box `json:"box"`
	Classes []string   `json:"classes,omitempty"`
}

// ConnectionView is a read-only copy of one connection's visual state.
type ConnectionView struct {
	ID      string        `json:"id"`
	From    domain.Point  `json:"from"`
	To      domain.Point  `json:"to"`
	Stroke  domain.Stroke `json:"stroke"`
	Resting domain.Stroke `json:"resting"`
	Classes []string      `json:"classes,omitempty"`
}

// View is a point-in-time copy of the whole table.
type View struct {
	Seq         uint64           `json:"seq"`
	Entities    []EntityView     `json:"entities"`
	Connections []ConnectionView `json:"connections"`
}

func classList(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Snapshot copies the table in render order.
func (t *Table) Snapshot() View {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v := View{
		Seq:         t.seq,
		Entities:    make([]EntityView, 0, len(t.entityOrder)),
		Connections: make([]ConnectionView, 0, len(t.connOrder)),
	}
	for _, id := range t.entityOrder {
		e := t.entities[id]
		v.Entities = append(v.Entities, EntityView{ID: id, Box: e.box, Classes: classList(e.classes)})
	}
	for _, id := range t.connOrder {
		c := t.connections[id]
		v.Connections = append(v.Connections, ConnectionView{
			ID:      id,
			From:    c.ends[0],
			To:      c.ends[1],
			Stroke:  c.current,
			Resting: c.resting,
			Classes: classList(c.classes),
		})
	}
	return v
}

// EntityClasses returns the sorted classes currently on an entity.
func (t *Table) EntityClasses(id string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.entities[id]; ok {
		return classList(e.classes)
	}
	return nil
}

// ConnectionClasses returns the sorted classes currently on a connection.
func (t *Table) ConnectionClasses(id string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.connections[id]; ok {
		return classList(c.classes)
	}
	return nil
}

// ConnectionStroke returns the stroke currently applied to a connection.
func (t *Table) ConnectionStroke(id string) (domain.Stroke, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if c, ok := t.connections[id]; ok {
		return c.current, true
	}
	return domain.Stroke{}, false
}

// IsClean reports whether no class is set and every stroke is at rest.
func (t *Table) IsClean() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, e := range t.entities {
		if len(e.classes) > 0 {
			return false
		}
	}
	for _, c := range t.connections {
		if len(c.classes) > 0 || c.current != c.resting {
			return false
		}
	}
	return true
}
