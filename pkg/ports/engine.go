package ports

import (
	"context"

	"github.com/aretw0/seqflow/pkg/domain"
)

// Run is a handle on one traversal.
type Run interface {
	ID() string
	Kind() domain.RunKind
	// Wait blocks until the traversal exits and returns why it stopped.
	Wait() error
	Done() <-chan struct{}
}

// Animator is the engine surface consumed by adapters (HTTP, MCP, CLI).
type Animator interface {
	Load(ctx context.Context, text string) (*domain.Diagram, error)
	StartFlowAnimation(ctx context.Context, startID string) (Run, error)
	AnimateAllFlows(ctx context.Context) (Run, error)
	HighlightPath(ctx context.Context, from, to string) (Run, error)
	StopAnimation()
	SetSpeed(v float64) float64
	FindPath(from, to string) ([]string, error)
	PreviewPath(id string) []string
}
