package domain

import "unicode/utf8"

// EntityKind is the participant type named in a declaration.
type EntityKind string

const (
	KindActor       EntityKind = "actor"
	KindParticipant EntityKind = "participant"
	KindEntity      EntityKind = "entity"
	KindDatabase    EntityKind = "database"
	KindBoundary    EntityKind = "boundary"
	KindControl     EntityKind = "control"
	KindCollections EntityKind = "collections"
	KindQueue       EntityKind = "queue"
)

// EntityKinds lists every kind in declaration-matching priority order.
var EntityKinds = []EntityKind{
	KindActor,
	KindParticipant,
	KindEntity,
	KindDatabase,
	KindBoundary,
	KindControl,
	KindCollections,
	KindQueue,
}

// ParseEntityKind maps a keyword to its kind. Unknown keywords fall back to participant.
func ParseEntityKind(s string) (EntityKind, bool) {
	for _, k := range EntityKinds {
		if string(k) == s {
			return k, true
		}
	}
	return KindParticipant, false
}

// Box sizing used when an entity is created.
const (
	MinEntityWidth = 100.0
	EntityHeight   = 60.0
	CharWidth      = 8.0
	EntityPadding  = 20.0
)

// Point is a position on the canvas.
type Point struct {
	X float64 `json:"x" yaml:"x" msgpack:"x"`
	Y float64 `json:"y" yaml:"y" msgpack:"y"`
}

// Size is the width and height of an entity box.
type Size struct {
	Width  float64 `json:"width" yaml:"width" msgpack:"width"`
	Height float64 `json:"height" yaml:"height" msgpack:"height"`
}

// Box is the rectangle an entity occupies on the canvas.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Center returns the middle of the box.
func (b Box) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Entity is a participant of the diagram.
type Entity struct {
	ID          string     `json:"id" yaml:"id" msgpack:"id"`
	DisplayName string     `json:"display_name" yaml:"display_name" msgpack:"display_name"`
	Kind        EntityKind `json:"kind" yaml:"kind" msgpack:"kind"`
	Position    Point      `json:"position" yaml:"position" msgpack:"position"`
	Size        Size       `json:"size" yaml:"size" msgpack:"size"`
}

// NewEntity creates an entity and computes its size from the display name.
// An empty display name defaults to the id.
func NewEntity(id, displayName string, kind EntityKind) *Entity {
	if displayName == "" {
		displayName = id
	}
	if kind == "" {
		kind = KindParticipant
	}
	return &Entity{
		ID:          id,
		DisplayName: displayName,
		Kind:        kind,
		Size:        SizeFor(displayName),
	}
}

// SizeFor returns the box size for a display name.
func SizeFor(displayName string) Size {
	w := float64(utf8.RuneCountInString(displayName))*CharWidth + 2*EntityPadding
	if w < MinEntityWidth {
		w = MinEntityWidth
	}
	return Size{Width: w, Height: EntityHeight}
}

// Box returns the entity's current rectangle.
func (e *Entity) Box() Box {
	return Box{X: e.Position.X, Y: e.Position.Y, Width: e.Size.Width, Height: e.Size.Height}
}
