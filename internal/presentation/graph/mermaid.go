package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
)

// Overlay contains animation state to visualize on a flowchart.
type Overlay struct {
	Visited []string
	Current string
	// Path, when set, is drawn as a run of emphasized edges.
	Path []string
}

// sequenceArrows maps connection kinds to Mermaid sequence arrows.
var sequenceArrows = map[domain.ConnectionKind]string{
	domain.ConnSolid:         "->>",
	domain.ConnReverseSolid:  "->>",
	domain.ConnDashed:        "-->>",
	domain.ConnReverseDashed: "-->>",
	domain.ConnDouble:        "-)",
	domain.ConnReverseDouble: "-)",
	domain.ConnParallel:      "-)",
	domain.ConnDotted:        "--)",
	domain.ConnReverseDotted: "--)",
	domain.ConnDottedLine:    "-->",
	domain.ConnBreak:         "-x",
	domain.ConnCircleStart:   "->>",
	domain.ConnCircleEnd:     "->>",
}

// Sequence renders the diagram as a Mermaid sequenceDiagram.
// Records keep their order; notes follow the messages.
func Sequence(d *domain.Diagram) string {
	var sb strings.Builder
	sb.WriteString("sequenceDiagram\n")
	if d == nil {
		return sb.String()
	}

	for _, e := range d.Entities {
		keyword := "participant"
		if e.Kind == domain.KindActor {
			keyword = "actor"
		}
		id := sanitizeMermaidID(e.ID)
		if (e.DisplayName != "" && e.DisplayName != e.ID) || id != e.ID {
			fmt.Fprintf(&sb, "    %s %s as %s\n", keyword, id, escapeText(e.DisplayName))
			continue
		}
		fmt.Fprintf(&sb, "    %s %s\n", keyword, id)
	}

	for _, c := range d.Connections {
		if c.IsCommand() {
			fmt.Fprintf(&sb, "    %s %s\n", c.Command, sanitizeMermaidID(c.Target))
			continue
		}
		arrow, ok := sequenceArrows[c.Kind]
		if !ok {
			arrow = "->>"
		}
		fmt.Fprintf(&sb, "    %s%s%s: %s\n", sanitizeMermaidID(c.From), arrow, sanitizeMermaidID(c.To), escapeText(c.Label))
	}

	for _, n := range d.Notes {
		targets := make([]string, len(n.Targets))
		for i, t := range n.Targets {
			targets[i] = sanitizeMermaidID(t)
		}
		fmt.Fprintf(&sb, "    Note %s %s: %s\n", n.Placement, strings.Join(targets, ","), escapeText(n.Text))
	}
	return sb.String()
}

// Flowchart renders the flow graph as a Mermaid flowchart. Entity shapes
// follow their kind; the overlay, if any, styles visited and current nodes
// and emphasizes the edges of its path.
func Flowchart(d *domain.Diagram, g *flow.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if g == nil {
		return sb.String()
	}

	declared := make(map[string]bool)
	declare := func(id string) {
		if declared[id] {
			return
		}
		declared[id] = true
		name := id
		kind := domain.KindParticipant
		if d != nil {
			if e, ok := d.Entity(id); ok {
				name, kind = e.DisplayName, e.Kind
			}
		}
		opener, closer := shape(kind)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(id), opener, escapeQuotes(name), closer)
	}

	if d != nil {
		for _, e := range d.Entities {
			declare(e.ID)
		}
	}

	type link struct{ from, to string }
	index := make(map[link]int)
	n := 0
	for _, from := range g.Nodes() {
		declare(from)
		for _, edge := range g.Outgoing(from) {
			declare(edge.To)
			arrow := "-->"
			if edge.Label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeQuotes(edge.Label))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(from), arrow, sanitizeMermaidID(edge.To))
			if _, seen := index[link{from, edge.To}]; !seen {
				index[link{from, edge.To}] = n
			}
			n++
		}
	}

	if overlay == nil {
		return sb.String()
	}

	sb.WriteString("\n    %% Overlay Styles\n")
	// Black text keeps contrast on light fills whatever the theme.
	sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
	sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

	seen := make(map[string]bool)
	for _, id := range append(append([]string(nil), overlay.Visited...), overlay.Path...) {
		safe := sanitizeMermaidID(id)
		if safe != "" && !seen[safe] && id != overlay.Current {
			seen[safe] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", safe)
		}
	}
	if overlay.Current != "" {
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.Current))
	}
	for i := 0; i+1 < len(overlay.Path); i++ {
		if at, ok := index[link{overlay.Path[i], overlay.Path[i+1]}]; ok {
			fmt.Fprintf(&sb, "    linkStyle %d stroke:#f57c00,stroke-width:3px;\n", at)
		}
	}
	return sb.String()
}

func shape(kind domain.EntityKind) (string, string) {
	switch kind {
	case domain.KindActor:
		return "((", "))"
	case domain.KindDatabase:
		return "[(", ")]"
	case domain.KindQueue, domain.KindCollections:
		return "[[", "]]"
	case domain.KindBoundary:
		return "[/", "/]"
	case domain.KindControl:
		return "{{", "}}"
	}
	return "[", "]"
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// escapeText keeps free text on one line; ';' and '#' would end or
// escape the statement.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

var textEscaper = strings.NewReplacer("\n", "<br/>", "#", "#35;", ";", "#59;")

var idSanitizer = strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_", ":", "_")

func sanitizeMermaidID(id string) string {
	return idSanitizer.Replace(id)
}
