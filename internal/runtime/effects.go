package runtime

import (
	"context"
	"math"
	"time"

	"github.com/aretw0/seqflow/pkg/domain"
)

// flowConnection plays the three-phase flow effect on one connection and
// returns once it has fully completed: mark flowing, stroke frames, hold,
// then unmark and restore the connection's own resting stroke.
func (e *Engine) flowConnection(ctx context.Context, r *Run, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	kind := r.snap.kinds[id]
	resting := r.snap.resting[id]
	r.touched[id] = true
	e.renderer.HighlightConnection(id, ClassFlowing)

	var elapsed time.Duration
	frames := e.timing.FlowFrames
	for i := 1; i <= frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.renderer.StrokeConnection(id, FlowFrame(kind, resting, i, frames))

		d := scale(e.timing.FlowDuration/time.Duration(frames), r.speed())
		elapsed += d
		if err := e.scheduler.Sleep(ctx, d); err != nil {
			return err
		}
	}

	hold := scale(e.timing.FlowHold, r.speed())
	elapsed += hold
	if err := e.scheduler.Sleep(ctx, hold); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.renderer.RemoveConnectionHighlight(id, ClassFlowing)
	e.renderer.StrokeConnection(id, resting)

	if e.hooks.OnConnectionFlow != nil {
		e.hooks.OnConnectionFlow(ctx, &domain.ConnectionEvent{
			EventBase:    domain.EventBase{Timestamp: time.Now(), Type: domain.EventConnectionFlow, RunID: r.id},
			ConnectionID: id,
			Kind:         kind,
			Duration:     elapsed,
		})
	}
	return nil
}

// FlowFrame returns frame i of n of the flow effect for a connection kind.
// Dotted and dashed kinds march their dash pattern along the line, double
// kinds pulse their width, everything else swells.
func FlowFrame(kind domain.ConnectionKind, resting domain.Stroke, i, n int) domain.Stroke {
	if n <= 0 {
		return resting
	}
	p := float64(i) / float64(n)
	s := resting

	switch kind.Family() {
	case "dotted":
		s.Dash = domain.DottedPattern
		s.DashOffset = -p * 6 * 4
	case "dashed":
		s.Dash = domain.DashedPattern
		s.DashOffset = -p * 12 * 4
	case "double":
		s.Width = resting.Width * (1 + 0.5*math.Abs(math.Sin(2*math.Pi*p)))
	default:
		s.Width = resting.Width + 2*math.Sin(math.Pi*p)
	}
	return s
}
