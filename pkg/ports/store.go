package ports

import (
	"context"

	"github.com/aretw0/seqflow/pkg/domain"
)

// DiagramStore defines the interface for persisting parsed diagrams.
type DiagramStore interface {
	// Save persists the diagram under id, replacing any previous value.
	Save(ctx context.Context, id string, d *domain.Diagram) error

	// Load retrieves the diagram for id.
	// Returns domain.ErrDiagramNotFound if it does not exist.
	Load(ctx context.Context, id string) (*domain.Diagram, error)

	// Delete removes the diagram for id. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of every stored diagram.
	List(ctx context.Context) ([]string, error)
}
