package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/seqflow/pkg/domain"
)

// Stats summarizes what a parse recognized.
type Stats struct {
	Lines        int `json:"lines"`
	Skipped      int `json:"skipped"`
	Declarations int `json:"declarations"`
	Messages     int `json:"messages"`
	Commands     int `json:"commands"`
	Notes        int `json:"notes"`
	Unmatched    int `json:"unmatched"`

	// UnmatchedLines holds the 1-based source lines no pattern recognized.
	UnmatchedLines []int `json:"unmatched_lines,omitempty"`
}

// line is a candidate statement with its 1-based source line number.
type line struct {
	num  int
	text string
}

// Parse builds a diagram from text. It never fails: unrecognized lines are dropped.
func Parse(text string) *domain.Diagram {
	d, _ := ParseWithStats(text)
	return d
}

// ParseReader reads all of r and parses it.
// It fails only when r is nil or cannot be read.
func ParseReader(r io.Reader) (*domain.Diagram, error) {
	if r == nil {
		return nil, domain.ErrNilInput
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read diagram source: %w", err)
	}
	return Parse(string(data)), nil
}

// ParseWithStats parses text and reports per-category counts.
func ParseWithStats(text string) (*domain.Diagram, Stats) {
	var stats Stats
	lines := statements(text, &stats)

	d := domain.NewDiagram()
	declare(d, lines, &stats)
	connect(d, lines, &stats)

	return d, stats
}

// statements splits the input into trimmed candidate lines, dropping blanks,
// block markers and comments, and folding multi-line notes into one statement.
func statements(text string, stats *Stats) []line {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	stats.Lines = len(raw)

	out := make([]line, 0, len(raw))
	var note *line
	var body []string

	for i := 0; i < len(raw); i++ {
		t := strings.TrimSpace(raw[i])

		if note != nil {
			if noteCloseRe.MatchString(t) {
				note.text += ": " + strings.Join(body, "\n")
				out = append(out, *note)
				note, body = nil, nil
				continue
			}
			body = append(body, t)
			if i == len(raw)-1 {
				// Unterminated note: drop the opener and reread what followed it.
				stats.Unmatched++
				stats.UnmatchedLines = append(stats.UnmatchedLines, note.num)
				i = note.num - 1
				note, body = nil, nil
			}
			continue
		}

		if isSkippable(t) {
			stats.Skipped++
			continue
		}
		if noteOpenRe.MatchString(t) {
			if i == len(raw)-1 {
				stats.Unmatched++
				stats.UnmatchedLines = append(stats.UnmatchedLines, i+1)
				continue
			}
			note = &line{num: i + 1, text: t}
			continue
		}
		out = append(out, line{num: i + 1, text: t})
	}
	return out
}

// declare is the first pass: it registers entities in order of first mention.
// Each line contributes through at most one pattern.
func declare(d *domain.Diagram, lines []line, stats *Stats) {
	for _, l := range lines {
		if m, ok := matchDeclaration(l.text); ok {
			d.AddEntity(domain.NewEntity(m.id, m.name, m.kind))
			stats.Declarations++
			continue
		}
		if m, ok := matchNote(l.text); ok {
			for _, target := range m.note.Targets {
				d.Ensure(target)
			}
			d.Notes = append(d.Notes, m.note)
			stats.Notes++
			continue
		}
		if m, ok := matchConnection(l.text); ok {
			d.Ensure(m.left)
			d.Ensure(m.right)
			continue
		}
		if _, target, ok := matchActivation(l.text); ok {
			d.Ensure(target)
			continue
		}
		stats.Unmatched++
		stats.UnmatchedLines = append(stats.UnmatchedLines, l.num)
	}
}

// connect is the second pass: it appends messages and activation markers.
func connect(d *domain.Diagram, lines []line, stats *Stats) {
	for _, l := range lines {
		if m, ok := matchConnection(l.text); ok {
			from, to := m.left, m.right
			if m.marker.Kind.IsReverse() {
				from, to = to, from
			}
			d.Ensure(from)
			d.Ensure(to)
			d.Connections = append(d.Connections,
				domain.NewConnection(from, to, m.label, m.marker.Arrow, m.marker.Kind, len(d.Connections)))
			stats.Messages++
			continue
		}
		if verb, target, ok := matchActivation(l.text); ok {
			d.Ensure(target)
			d.Connections = append(d.Connections, domain.NewCommand(verb, target, len(d.Connections)))
			stats.Commands++
		}
	}
}
