package domain

import "fmt"

// ConnectionKind is the normalized semantic category of an arrow marker.
type ConnectionKind string

const (
	ConnSolid         ConnectionKind = "solid"
	ConnDashed        ConnectionKind = "dashed"
	ConnReverseSolid  ConnectionKind = "reverse_solid"
	ConnReverseDashed ConnectionKind = "reverse_dashed"
	ConnDouble        ConnectionKind = "double"
	ConnReverseDouble ConnectionKind = "reverse_double"
	ConnDotted        ConnectionKind = "dotted"
	ConnReverseDotted ConnectionKind = "reverse_dotted"
	ConnDottedLine    ConnectionKind = "dotted_line"
	ConnBreak         ConnectionKind = "break"
	ConnParallel      ConnectionKind = "parallel"
	ConnCircleStart   ConnectionKind = "circle_start"
	ConnCircleEnd     ConnectionKind = "circle_end"
)

// IsReverse reports whether the marker was written right-to-left.
func (k ConnectionKind) IsReverse() bool {
	switch k {
	case ConnReverseSolid, ConnReverseDashed, ConnReverseDouble, ConnReverseDotted:
		return true
	}
	return false
}

// Family groups kinds that share a flow effect.
func (k ConnectionKind) Family() string {
	switch k {
	case ConnDotted, ConnReverseDotted, ConnDottedLine:
		return "dotted"
	case ConnDashed, ConnReverseDashed:
		return "dashed"
	case ConnDouble, ConnReverseDouble, ConnParallel:
		return "double"
	}
	return "solid"
}

// CommandVerb is the verb of an activation marker.
type CommandVerb string

const (
	CommandActivate   CommandVerb = "activate"
	CommandDeactivate CommandVerb = "deactivate"
)

// Connection is one record of the diagram: either a directed message or,
// when Command is set, an activation marker that only names a Target.
type Connection struct {
	ID      string         `json:"id" yaml:"id" msgpack:"id"`
	From    string         `json:"from,omitempty" yaml:"from,omitempty" msgpack:"from,omitempty"`
	To      string         `json:"to,omitempty" yaml:"to,omitempty" msgpack:"to,omitempty"`
	Label   string         `json:"label,omitempty" yaml:"label,omitempty" msgpack:"label,omitempty"`
	Arrow   string         `json:"arrow,omitempty" yaml:"arrow,omitempty" msgpack:"arrow,omitempty"`
	Kind    ConnectionKind `json:"kind,omitempty" yaml:"kind,omitempty" msgpack:"kind,omitempty"`
	Weight  Stroke         `json:"weight" yaml:"weight" msgpack:"weight"`
	Command CommandVerb    `json:"command,omitempty" yaml:"command,omitempty" msgpack:"command,omitempty"`
	Target  string         `json:"target,omitempty" yaml:"target,omitempty" msgpack:"target,omitempty"`
}

// IsCommand reports whether the record is an activation marker.
func (c Connection) IsCommand() bool {
	return c.Command != ""
}

// ConnectionID builds the synthetic id of a message.
func ConnectionID(from, to string, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", from, to, ordinal)
}

// CommandID builds the synthetic id of an activation marker.
func CommandID(verb CommandVerb, target string, ordinal int) string {
	return fmt.Sprintf("%s-%s-%d", verb, target, ordinal)
}

// NewConnection creates a message record and derives its resting stroke.
func NewConnection(from, to, label, arrow string, kind ConnectionKind, ordinal int) Connection {
	return Connection{
		ID:     ConnectionID(from, to, ordinal),
		From:   from,
		To:     to,
		Label:  label,
		Arrow:  arrow,
		Kind:   kind,
		Weight: WeightFor(arrow, kind),
	}
}

// NewCommand creates an activation marker record.
func NewCommand(verb CommandVerb, target string, ordinal int) Connection {
	return Connection{
		ID:      CommandID(verb, target, ordinal),
		Command: verb,
		Target:  target,
	}
}
