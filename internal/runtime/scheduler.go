package runtime

import (
	"context"
	goruntime "runtime"
	"sync"
	"time"
)

// Scheduler provides the suspension points of a run.
// Sleep returns early with ctx.Err() once the run is cancelled.
type Scheduler interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// TimerScheduler waits on real timers.
type TimerScheduler struct{}

func (TimerScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// InstantScheduler never waits. It records every requested delay, which makes
// it useful for tests and for dry runs that only need the command stream.
type InstantScheduler struct {
	mu    sync.Mutex
	slept []time.Duration
}

func (s *InstantScheduler) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.slept = append(s.slept, d)
	s.mu.Unlock()
	goruntime.Gosched()
	return ctx.Err()
}

// Slept returns the delays requested so far.
func (s *InstantScheduler) Slept() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.slept))
	copy(out, s.slept)
	return out
}

// Total is the sum of all requested delays.
func (s *InstantScheduler) Total() time.Duration {
	var total time.Duration
	for _, d := range s.Slept() {
		total += d
	}
	return total
}
