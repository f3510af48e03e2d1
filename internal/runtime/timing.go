package runtime

import (
	"math"
	"time"
)

// Speed bounds.
const (
	MinSpeed     = 0.1
	MaxSpeed     = 5.0
	DefaultSpeed = 1.0
)

// Timing holds the base durations of a traversal at speed 1.
type Timing struct {
	BaseDelay     time.Duration `json:"base_delay" yaml:"base_delay"`
	TerminalDelay time.Duration `json:"terminal_delay" yaml:"terminal_delay"`
	BranchPause   time.Duration `json:"branch_pause" yaml:"branch_pause"`
	SourcePause   time.Duration `json:"source_pause" yaml:"source_pause"`
	FlowDuration  time.Duration `json:"flow_duration" yaml:"flow_duration"`
	FlowHold      time.Duration `json:"flow_hold" yaml:"flow_hold"`
	FlowFrames    int           `json:"flow_frames" yaml:"flow_frames"`

	// RipplePadding is added to half the entity's larger side.
	RipplePadding float64 `json:"ripple_padding" yaml:"ripple_padding"`
}

// DefaultTiming returns the stock pacing.
func DefaultTiming() Timing {
	return Timing{
		BaseDelay:     600 * time.Millisecond,
		TerminalDelay: 1000 * time.Millisecond,
		BranchPause:   300 * time.Millisecond,
		SourcePause:   800 * time.Millisecond,
		FlowDuration:  800 * time.Millisecond,
		FlowHold:      200 * time.Millisecond,
		FlowFrames:    8,
		RipplePadding: 12,
	}
}

// normalized fills zero fields from the defaults.
func (t Timing) normalized() Timing {
	def := DefaultTiming()
	if t.BaseDelay <= 0 {
		t.BaseDelay = def.BaseDelay
	}
	if t.TerminalDelay <= 0 {
		t.TerminalDelay = def.TerminalDelay
	}
	if t.BranchPause <= 0 {
		t.BranchPause = def.BranchPause
	}
	if t.SourcePause <= 0 {
		t.SourcePause = def.SourcePause
	}
	if t.FlowDuration <= 0 {
		t.FlowDuration = def.FlowDuration
	}
	if t.FlowHold <= 0 {
		t.FlowHold = def.FlowHold
	}
	if t.FlowFrames <= 0 {
		t.FlowFrames = def.FlowFrames
	}
	if t.RipplePadding <= 0 {
		t.RipplePadding = def.RipplePadding
	}
	return t
}

// ClampSpeed keeps v inside [MinSpeed, MaxSpeed]. NaN maps to DefaultSpeed.
func ClampSpeed(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return DefaultSpeed
	case v < MinSpeed:
		return MinSpeed
	case v > MaxSpeed:
		return MaxSpeed
	}
	return v
}

// scale divides d by speed.
func scale(d time.Duration, speed float64) time.Duration {
	return time.Duration(float64(d) / speed)
}
