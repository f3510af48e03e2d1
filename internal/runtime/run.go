package runtime

import (
	"context"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/google/uuid"
)

// Run is one traversal executing on its own goroutine.
type Run struct {
	id    string
	kind  domain.RunKind
	start string

	cancel context.CancelFunc
	done   chan struct{}
	err    error

	snap    snapshot
	speed   func() float64
	touched map[string]bool
}

func newRun(kind domain.RunKind, start string, snap snapshot, cancel context.CancelFunc) *Run {
	return &Run{
		id:      uuid.NewString(),
		kind:    kind,
		start:   start,
		cancel:  cancel,
		done:    make(chan struct{}),
		snap:    snap,
		touched: make(map[string]bool),
	}
}

// ID is the unique run identifier.
func (r *Run) ID() string { return r.id }

// Kind reports which traversal the run performs.
func (r *Run) Kind() domain.RunKind { return r.kind }

// Done is closed once the run goroutine has exited.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the run exits. It returns nil on natural completion,
// the context error when cancelled, or an error wrapping domain.ErrRuntimeFault.
func (r *Run) Wait() error {
	<-r.done
	return r.err
}
