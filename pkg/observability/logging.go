package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/seqflow/pkg/domain"
)

// LogHooks returns hooks that log run boundaries at info and traversal
// steps at debug.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run_start",
				"run_id", e.RunID,
				"kind", e.Kind,
				"start_id", e.StartID,
			)
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			attrs := []any{"run_id", e.RunID, "kind", e.Kind, "outcome", Outcome(e.Err)}
			if e.Err != nil && Outcome(e.Err) == OutcomeFault {
				logger.ErrorContext(ctx, "run_end", append(attrs, "err", e.Err)...)
				return
			}
			logger.InfoContext(ctx, "run_end", attrs...)
		},
		OnEntityEnter: func(ctx context.Context, e *domain.EntityEvent) {
			logger.DebugContext(ctx, "entity_enter", "run_id", e.RunID, "entity_id", e.EntityID, "depth", e.Depth)
		},
		OnEntityLeave: func(ctx context.Context, e *domain.EntityEvent) {
			logger.DebugContext(ctx, "entity_leave", "run_id", e.RunID, "entity_id", e.EntityID)
		},
		OnConnectionFlow: func(ctx context.Context, e *domain.ConnectionEvent) {
			logger.DebugContext(ctx, "connection_flow",
				"run_id", e.RunID,
				"connection_id", e.ConnectionID,
				"kind", e.Kind,
				"duration", e.Duration,
			)
		},
	}
}
