package ports

import "github.com/aretw0/seqflow/pkg/domain"

// Renderer is the rendering collaborator driven by the animation engine.
// It owns all per-element visual state; the engine only sends commands and
// reads entity geometry back through EntityBox.
type Renderer interface {
	// Render draws the diagram, replacing whatever was drawn before.
	Render(d *domain.Diagram) error

	// Clear removes everything from the surface.
	Clear()

	HighlightObject(id, class string)
	RemoveHighlight(id, class string)
	HighlightConnection(id, class string)
	RemoveConnectionHighlight(id, class string)

	// ClearAllHighlights drops every highlight and restores every connection
	// to the stroke it had when it was rendered.
	ClearAllHighlights()

	// UpdateConnections recomputes connection endpoints after an entity moved.
	UpdateConnections()

	// EntityBox returns the current rectangle of an entity.
	EntityBox(id string) (domain.Box, bool)

	// StrokeConnection applies one frame of a flow effect.
	StrokeConnection(id string, s domain.Stroke)

	// Ripple draws a transient ring around an entity.
	Ripple(id string, radius float64)
}
