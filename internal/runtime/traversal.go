package runtime

import (
	"context"
	"time"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
)

// frame is one entity on the current traversal path. path is owned by the
// frame: it holds the ancestors plus the entity itself and is never shared.
type frame struct {
	node  string
	depth int
	edges []flow.Edge
	next  int
	path  map[string]bool
}

// animateFlow walks the graph depth-first from start. An entity already on
// the current path is not entered again, so cycles terminate while diamonds
// are still animated once per incoming path.
func (e *Engine) animateFlow(ctx context.Context, r *Run, start string) error {
	root, err := e.enter(ctx, r, start, 0, nil)
	if err != nil {
		return err
	}
	stack := []*frame{root}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.edges) {
			if err := e.leave(ctx, r, top); err != nil {
				return err
			}
			stack = stack[:len(stack)-1]
			continue
		}

		edge := top.edges[top.next]
		top.next++
		if top.next > 1 {
			if err := e.sleep(ctx, r, e.timing.BranchPause); err != nil {
				return err
			}
		}

		if err := e.flowConnection(ctx, r, edge.ConnectionID); err != nil {
			return err
		}
		if top.path[edge.To] {
			continue
		}

		child, err := e.enter(ctx, r, edge.To, top.depth+1, top.path)
		if err != nil {
			return err
		}
		stack = append(stack, child)
	}
	return nil
}

// enter highlights an entity, draws its ripple and holds. Leaves hold longer.
func (e *Engine) enter(ctx context.Context, r *Run, id string, depth int, parent map[string]bool) (*frame, error) {
	path := make(map[string]bool, len(parent)+1)
	for k := range parent {
		path[k] = true
	}
	path[id] = true

	f := &frame{node: id, depth: depth, edges: r.snap.graph.Outgoing(id), path: path}

	if err := e.highlightEntity(ctx, r, id, depth); err != nil {
		return nil, err
	}
	if err := e.sleep(ctx, r, e.timing.BaseDelay); err != nil {
		return nil, err
	}
	if len(f.edges) == 0 {
		if err := e.sleep(ctx, r, e.timing.TerminalDelay); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (e *Engine) highlightEntity(ctx context.Context, r *Run, id string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.renderer.HighlightObject(id, ClassActive)
	if box, ok := e.renderer.EntityBox(id); ok {
		e.renderer.Ripple(id, rippleRadius(box, e.timing.RipplePadding))
	}
	if e.hooks.OnEntityEnter != nil {
		e.hooks.OnEntityEnter(ctx, &domain.EntityEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventEntityEnter, RunID: r.id},
			EntityID:  id,
			Depth:     depth,
		})
	}
	return nil
}

// leave marks a finished entity as visited.
func (e *Engine) leave(ctx context.Context, r *Run, f *frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.renderer.RemoveHighlight(f.node, ClassActive)
	e.renderer.HighlightObject(f.node, ClassVisited)
	if e.hooks.OnEntityLeave != nil {
		e.hooks.OnEntityLeave(ctx, &domain.EntityEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventEntityLeave, RunID: r.id},
			EntityID:  f.node,
			Depth:     f.depth,
		})
	}
	return nil
}

// animateAll runs one flow per source entity, resetting visuals between them.
func (e *Engine) animateAll(ctx context.Context, r *Run) error {
	sources := r.snap.graph.Sources()
	for i, src := range sources {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			e.clearVisuals(r)
			if err := e.sleep(ctx, r, e.timing.SourcePause); err != nil {
				return err
			}
		}
		if err := e.animateFlow(ctx, r, src); err != nil {
			return err
		}
	}
	return nil
}

// animatePath highlights each entity of path, then flows the edge to the next one.
func (e *Engine) animatePath(ctx context.Context, r *Run, path []string) error {
	for i, id := range path {
		if err := e.highlightEntity(ctx, r, id, i); err != nil {
			return err
		}
		if err := e.sleep(ctx, r, e.timing.BaseDelay); err != nil {
			return err
		}
		if i+1 == len(path) {
			break
		}
		edge, ok := r.snap.graph.EdgeBetween(id, path[i+1])
		if !ok {
			continue
		}
		if err := e.flowConnection(ctx, r, edge.ConnectionID); err != nil {
			return err
		}
	}
	return nil
}

// sleep suspends the run for d scaled by the speed read right now.
func (e *Engine) sleep(ctx context.Context, r *Run, d time.Duration) error {
	return e.scheduler.Sleep(ctx, scale(d, r.speed()))
}

func rippleRadius(b domain.Box, pad float64) float64 {
	side := b.Width
	if b.Height > side {
		side = b.Height
	}
	return side/2 + pad
}
