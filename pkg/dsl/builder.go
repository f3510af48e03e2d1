package dsl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/parser"
)

// step is one recorded message, activation or note, replayed by Build.
type step struct {
	from, to string
	label    string
	arrow    string
	verb     domain.CommandVerb
	note     *domain.Note
}

// Builder manages the diagram construction.
type Builder struct {
	order    []string
	entities map[string]*EntityBuilder
	steps    []step
	errs     []error
}

// New creates a new diagram builder.
func New() *Builder {
	return &Builder{
		entities: make(map[string]*EntityBuilder),
	}
}

// Add declares an entity. If it already exists, it returns the existing builder.
// Ids must be a single word of letters, digits and underscores; other ids are
// reported by Build.
func (b *Builder) Add(id string) *EntityBuilder {
	if eb, ok := b.entities[id]; ok {
		return eb
	}
	if !parser.ValidID(id) {
		b.errs = append(b.errs, fmt.Errorf("invalid entity id %q", id))
	}
	eb := &EntityBuilder{id: id, kind: domain.KindParticipant, builder: b}
	b.entities[id] = eb
	b.order = append(b.order, id)
	return eb
}

// Note attaches a note to one or two entities. Each line of text is trimmed.
func (b *Builder) Note(placement domain.NotePlacement, text string, targets ...string) *Builder {
	if len(targets) == 0 || len(targets) > 2 {
		b.errs = append(b.errs, fmt.Errorf("note %q needs one or two targets, got %d", text, len(targets)))
		return b
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if isNoteEnd(line) {
			b.errs = append(b.errs, fmt.Errorf("note %q contains an end note line", text))
			return b
		}
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.TrimSpace(strings.Join(lines, "\n"))
	for _, t := range targets {
		b.Add(t)
	}
	b.steps = append(b.steps, step{note: &domain.Note{Placement: placement, Targets: targets, Text: text}})
	return b
}

// Build compiles the recorded steps into a diagram.
func (b *Builder) Build() (*domain.Diagram, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	d := domain.NewDiagram()
	for _, id := range b.order {
		eb := b.entities[id]
		d.AddEntity(domain.NewEntity(eb.id, eb.name, eb.kind))
	}

	for _, s := range b.steps {
		switch {
		case s.note != nil:
			d.Notes = append(d.Notes, *s.note)
		case s.verb != "":
			d.Connections = append(d.Connections, domain.NewCommand(s.verb, s.from, len(d.Connections)))
		default:
			kind, ok := markerKind(s.arrow)
			if !ok {
				return nil, fmt.Errorf("unknown arrow %q in %s -> %s", s.arrow, s.from, s.to)
			}
			from, to := s.from, s.to
			if kind.IsReverse() {
				from, to = to, from
			}
			d.Connections = append(d.Connections,
				domain.NewConnection(from, to, s.label, s.arrow, kind, len(d.Connections)))
		}
	}
	return d, nil
}

func isNoteEnd(line string) bool {
	return strings.EqualFold(strings.Join(strings.Fields(line), ""), "endnote")
}

func markerKind(arrow string) (domain.ConnectionKind, bool) {
	for _, m := range parser.Markers() {
		if m.Arrow == arrow {
			return m.Kind, true
		}
	}
	return "", false
}
