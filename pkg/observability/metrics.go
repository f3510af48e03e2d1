package observability

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels of a finished run.
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFault     = "fault"
)

// Metrics holds the collectors fed by the engine hooks.
type Metrics struct {
	Runs            *prometheus.CounterVec
	RunDuration     *prometheus.HistogramVec
	EntityVisits    *prometheus.CounterVec
	ConnectionFlows *prometheus.CounterVec
	ActiveRuns      prometheus.Gauge

	mu     sync.Mutex
	starts map[string]time.Time
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seqflow_runs_total",
				Help: "Animation runs by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		RunDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seqflow_run_duration_seconds",
				Help:    "Wall-clock duration of animation runs",
				Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
			},
			[]string{"kind"},
		),
		EntityVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seqflow_entity_visits_total",
				Help: "Entities highlighted during traversals",
			},
			[]string{"entity_id"},
		),
		ConnectionFlows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seqflow_connection_flows_total",
				Help: "Flow effects played, by connection family",
			},
			[]string{"family"},
		),
		ActiveRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "seqflow_active_runs",
			Help: "Runs currently animating",
		}),
		starts: make(map[string]time.Time),
	}
	if reg != nil {
		reg.MustRegister(m.Runs, m.RunDuration, m.EntityVisits, m.ConnectionFlows, m.ActiveRuns)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(_ context.Context, e *domain.RunEvent) {
			m.mu.Lock()
			m.starts[e.RunID] = e.Timestamp
			m.mu.Unlock()
			m.ActiveRuns.Inc()
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			m.mu.Lock()
			start, ok := m.starts[e.RunID]
			delete(m.starts, e.RunID)
			m.mu.Unlock()

			m.ActiveRuns.Dec()
			m.Runs.WithLabelValues(string(e.Kind), Outcome(e.Err)).Inc()
			if ok {
				m.RunDuration.WithLabelValues(string(e.Kind)).Observe(e.Timestamp.Sub(start).Seconds())
			}
		},
		OnEntityEnter: func(_ context.Context, e *domain.EntityEvent) {
			m.EntityVisits.WithLabelValues(e.EntityID).Inc()
		},
		OnConnectionFlow: func(_ context.Context, e *domain.ConnectionEvent) {
			m.ConnectionFlows.WithLabelValues(e.Kind.Family()).Inc()
		},
	}
}

// Outcome classifies the error a run ended with.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeCompleted
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCancelled
	}
	return OutcomeFault
}
