package domain

// NotePlacement is where a note is anchored relative to its targets.
type NotePlacement string

const (
	NoteLeftOf  NotePlacement = "left of"
	NoteRightOf NotePlacement = "right of"
	NoteOver    NotePlacement = "over"
)

// Note is a free-text annotation attached to one or two entities.
type Note struct {
	Placement NotePlacement `json:"placement" yaml:"placement" msgpack:"placement"`
	Targets   []string      `json:"targets" yaml:"targets" msgpack:"targets"`
	Text      string        `json:"text" yaml:"text" msgpack:"text"`
}

// Diagram is the model produced by one parse.
// Entities and Connections keep insertion order.
type Diagram struct {
	Entities    []*Entity    `json:"entities" yaml:"entities" msgpack:"entities"`
	Connections []Connection `json:"connections" yaml:"connections" msgpack:"connections"`
	Notes       []Note       `json:"notes,omitempty" yaml:"notes,omitempty" msgpack:"notes,omitempty"`

	index map[string]*Entity
}

// NewDiagram creates an empty diagram.
func NewDiagram() *Diagram {
	return &Diagram{
		Entities:    make([]*Entity, 0),
		Connections: make([]Connection, 0),
		index:       make(map[string]*Entity),
	}
}

// Entity looks up an entity by id.
func (d *Diagram) Entity(id string) (*Entity, bool) {
	d.ensureIndex()
	e, ok := d.index[id]
	return e, ok
}

// AddEntity registers the entity unless its id is already taken.
// The first registration wins and is returned either way.
func (d *Diagram) AddEntity(e *Entity) (*Entity, bool) {
	d.ensureIndex()
	if existing, ok := d.index[e.ID]; ok {
		return existing, false
	}
	d.Entities = append(d.Entities, e)
	d.index[e.ID] = e
	return e, true
}

// Ensure returns the entity with the given id, creating an implicit participant if needed.
func (d *Diagram) Ensure(id string) *Entity {
	e, _ := d.AddEntity(NewEntity(id, id, KindParticipant))
	return e
}

// Messages returns the records that are real connections, skipping command markers.
func (d *Diagram) Messages() []Connection {
	out := make([]Connection, 0, len(d.Connections))
	for _, c := range d.Connections {
		if !c.IsCommand() {
			out = append(out, c)
		}
	}
	return out
}

// Commands returns the activation markers in order.
func (d *Diagram) Commands() []Connection {
	var out []Connection
	for _, c := range d.Connections {
		if c.IsCommand() {
			out = append(out, c)
		}
	}
	return out
}

// Connection looks up a record by id.
func (d *Diagram) Connection(id string) (Connection, bool) {
	for _, c := range d.Connections {
		if c.ID == id {
			return c, true
		}
	}
	return Connection{}, false
}

// IsEmpty reports whether the diagram has no entities.
func (d *Diagram) IsEmpty() bool {
	return d == nil || len(d.Entities) == 0
}

// Reindex rebuilds the id index, e.g. after the diagram was decoded from storage.
// Later entities repeating an id are dropped, as AddEntity would have done.
func (d *Diagram) Reindex() {
	d.index = make(map[string]*Entity, len(d.Entities))
	kept := make([]*Entity, 0, len(d.Entities))
	for _, e := range d.Entities {
		if e == nil {
			continue
		}
		if _, dup := d.index[e.ID]; dup {
			continue
		}
		d.index[e.ID] = e
		kept = append(kept, e)
	}
	d.Entities = kept
}

// ensureIndex reindexes when Entities changed outside AddEntity. After a
// Reindex the index and Entities have the same length, so reads never write.
func (d *Diagram) ensureIndex() {
	if d.index == nil || len(d.index) != len(d.Entities) {
		d.Reindex()
	}
}

// Clone returns a deep copy that shares nothing with d.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}
	out := &Diagram{
		Entities:    make([]*Entity, len(d.Entities)),
		Connections: make([]Connection, len(d.Connections)),
	}
	for i, e := range d.Entities {
		cp := *e
		out.Entities[i] = &cp
	}
	copy(out.Connections, d.Connections)
	if len(d.Notes) > 0 {
		out.Notes = make([]Note, len(d.Notes))
		for i, n := range d.Notes {
			n.Targets = append([]string(nil), n.Targets...)
			out.Notes[i] = n
		}
	}
	out.Reindex()
	return out
}
