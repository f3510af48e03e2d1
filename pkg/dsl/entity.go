package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/seqflow/pkg/domain"
)

// EntityBuilder provides a fluent API for configuring an entity and the
// messages it sends.
type EntityBuilder struct {
	id      string
	name    string
	kind    domain.EntityKind
	builder *Builder
}

// As sets the entity kind.
func (e *EntityBuilder) As(kind domain.EntityKind) *EntityBuilder {
	e.kind = kind
	return e
}

// Named sets the display name. Names with quotes or line breaks are
// reported by Build.
func (e *EntityBuilder) Named(name string) *EntityBuilder {
	if strings.ContainsAny(name, "\"\r\n") {
		e.builder.errs = append(e.builder.errs, fmt.Errorf("display name %q of %s has quotes or line breaks", name, e.id))
		return e
	}
	e.name = name
	return e
}

// Send adds a solid message to target.
func (e *EntityBuilder) Send(target, label string) *EntityBuilder {
	return e.Message("->", target, label)
}

// Reply adds a dashed message to target.
func (e *EntityBuilder) Reply(target, label string) *EntityBuilder {
	return e.Message("-->", target, label)
}

// Async adds a double-headed message to target.
func (e *EntityBuilder) Async(target, label string) *EntityBuilder {
	return e.Message("->>", target, label)
}

// Message adds a message using any arrow of the marker catalog. Reverse
// arrows are written as in text: the receiver of "A <- B" is A.
// Labels are trimmed and must fit on one line.
func (e *EntityBuilder) Message(arrow, target, label string) *EntityBuilder {
	e.builder.Add(target)
	label = strings.TrimSpace(label)
	if strings.ContainsAny(label, "\r\n") {
		e.builder.errs = append(e.builder.errs, fmt.Errorf("label %q of %s -> %s has line breaks", label, e.id, target))
		return e
	}
	e.builder.steps = append(e.builder.steps, step{from: e.id, to: target, label: label, arrow: arrow})
	return e
}

// Activate records an activation marker for the entity.
func (e *EntityBuilder) Activate() *EntityBuilder {
	e.builder.steps = append(e.builder.steps, step{from: e.id, verb: domain.CommandActivate})
	return e
}

// Deactivate records a deactivation marker for the entity.
func (e *EntityBuilder) Deactivate() *EntityBuilder {
	e.builder.steps = append(e.builder.steps, step{from: e.id, verb: domain.CommandDeactivate})
	return e
}
