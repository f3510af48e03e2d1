package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/seqflow/pkg/domain"
)

// Format writes a diagram back as text the parser accepts.
// For diagrams made by the parser or by a Builder without errors, parsing
// the result yields the same entities and records.
func Format(d *domain.Diagram) string {
	var sb strings.Builder
	sb.WriteString("@startuml\n")

	for _, e := range d.Entities {
		switch {
		case e.DisplayName != "" && e.DisplayName != e.ID:
			fmt.Fprintf(&sb, "%s \"%s\" as %s\n", e.Kind, e.DisplayName, e.ID)
		default:
			fmt.Fprintf(&sb, "%s %s\n", e.Kind, e.ID)
		}
	}

	for _, c := range d.Connections {
		if c.IsCommand() {
			fmt.Fprintf(&sb, "%s %s\n", c.Command, c.Target)
			continue
		}
		left, right := c.From, c.To
		if c.Kind.IsReverse() {
			left, right = right, left
		}
		if c.Label != "" {
			fmt.Fprintf(&sb, "%s %s %s: %s\n", left, c.Arrow, right, c.Label)
		} else {
			fmt.Fprintf(&sb, "%s %s %s\n", left, c.Arrow, right)
		}
	}

	for _, n := range d.Notes {
		fmt.Fprintf(&sb, "note %s %s", n.Placement, strings.Join(n.Targets, ", "))
		if strings.Contains(n.Text, "\n") {
			fmt.Fprintf(&sb, "\n%s\nend note\n", n.Text)
		} else {
			fmt.Fprintf(&sb, ": %s\n", n.Text)
		}
	}

	sb.WriteString("@enduml\n")
	return sb.String()
}
