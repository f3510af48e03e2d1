package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/parser"
)

// Summary describes a parsed diagram as markdown: entities, connections,
// animation start points and, when stats are given, skipped lines.
func Summary(title string, d *domain.Diagram, sources []string, stats *parser.Stats) string {
	var sb strings.Builder
	if title == "" {
		title = "Diagram"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if d.IsEmpty() {
		sb.WriteString("_No entities were found._\n")
		return sb.String()
	}

	messages := d.Messages()
	fmt.Fprintf(&sb, "%d entities, %d connections, %d activation markers, %d notes.\n\n",
		len(d.Entities), len(messages), len(d.Commands()), len(d.Notes))

	sb.WriteString("## Entities\n\n| ID | Name | Kind |\n|---|---|---|\n")
	for _, e := range d.Entities {
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", e.ID, cell(e.DisplayName), e.Kind)
	}

	if len(messages) > 0 {
		sb.WriteString("\n## Connections\n\n| ID | From | To | Kind | Label |\n|---|---|---|---|---|\n")
		for _, c := range messages {
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s | %s |\n", c.ID, c.From, c.To, c.Kind, cell(c.Label))
		}
	}

	if len(sources) > 0 {
		sb.WriteString("\n## Start points\n\n")
		for _, s := range sources {
			fmt.Fprintf(&sb, "- `%s`\n", s)
		}
	}

	if stats != nil && stats.Skipped+stats.Unmatched > 0 {
		fmt.Fprintf(&sb, "\n> %d of %d lines were skipped.", stats.Skipped+stats.Unmatched, stats.Lines)
		if len(stats.UnmatchedLines) > 0 {
			fmt.Fprintf(&sb, " Unrecognized lines: %s.", joinInts(stats.UnmatchedLines))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
