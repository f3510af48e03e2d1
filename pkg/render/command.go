package render

import "github.com/aretw0/seqflow/pkg/domain"

// CommandKind names a visual mutation.
type CommandKind string

const (
	CmdRender              CommandKind = "render"
	CmdClear               CommandKind = "clear"
	CmdHighlight           CommandKind = "highlight"
	CmdRemoveHighlight     CommandKind = "remove_highlight"
	CmdHighlightConnection CommandKind = "highlight_connection"
	CmdRemoveConnHighlight CommandKind = "remove_connection_highlight"
	CmdClearAllHighlights  CommandKind = "clear_all_highlights"
	CmdUpdateConnections   CommandKind = "update_connections"
	CmdStrokeConnection    CommandKind = "stroke_connection"
	CmdRipple              CommandKind = "ripple"
	CmdMoveEntity          CommandKind = "move_entity"
)

// Command is one published mutation of the table.
type Command struct {
	Seq    uint64         `json:"seq"`
	Kind   CommandKind    `json:"kind"`
	Target string         `json:"target,omitempty"`
	Class  string         `json:"class,omitempty"`
	Stroke *domain.Stroke `json:"stroke,omitempty"`
	Radius float64        `json:"radius,omitempty"`
	Point  *domain.Point  `json:"point,omitempty"`
}

// Observer receives every command after it was applied.
type Observer func(Command)
