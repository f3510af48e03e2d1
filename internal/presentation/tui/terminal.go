package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/seqflow/internal/runtime"
	"github.com/aretw0/seqflow/pkg/render"
	"github.com/muesli/termenv"
)

// Terminal prints the visual commands of a render.Table as colored lines,
// turning an animation into a readable trace.
type Terminal struct {
	out     *termenv.Output
	verbose bool

	mu sync.Mutex
}

// NewTerminal creates a printer writing to w. Verbose also prints stroke
// frames and ripples, which are otherwise omitted.
func NewTerminal(w io.Writer, verbose bool) *Terminal {
	return &Terminal{out: termenv.NewOutput(w), verbose: verbose}
}

// Attach subscribes the printer to t and returns the unsubscribe func.
func (p *Terminal) Attach(t *render.Table) func() {
	return t.Subscribe(p.Print)
}

// Print writes one command.
func (p *Terminal) Print(cmd render.Command) {
	line, color := p.describe(cmd)
	if line == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.out.String(line)
	if color != "" {
		s = s.Foreground(p.out.Color(color))
	}
	if cmd.Class == runtime.ClassActive {
		s = s.Bold()
	}
	fmt.Fprintln(p.out, s)
}

func (p *Terminal) describe(cmd render.Command) (string, string) {
	switch cmd.Kind {
	case render.CmdHighlight:
		switch cmd.Class {
		case runtime.ClassActive:
			return "● " + cmd.Target, "#facc15"
		case runtime.ClassVisited:
			return "○ " + cmd.Target, "#60a5fa"
		}
		return fmt.Sprintf("● %s [%s]", cmd.Target, cmd.Class), ""
	case render.CmdHighlightConnection:
		return "  ⟶ " + cmd.Target, "#34d399"
	case render.CmdClearAllHighlights:
		return "· cleared", "#9ca3af"
	case render.CmdRender:
		return "· rendered", "#9ca3af"
	}

	if !p.verbose {
		return "", ""
	}
	switch cmd.Kind {
	case render.CmdStrokeConnection:
		if cmd.Stroke != nil {
			return fmt.Sprintf("    ~ %s width=%.2f dash=%q offset=%.1f", cmd.Target, cmd.Stroke.Width, cmd.Stroke.Dash, cmd.Stroke.DashOffset), "#6b7280"
		}
	case render.CmdRipple:
		return fmt.Sprintf("    ◌ %s r=%.0f", cmd.Target, cmd.Radius), "#6b7280"
	}
	return fmt.Sprintf("    %s %s %s", cmd.Kind, cmd.Target, cmd.Class), "#6b7280"
}
