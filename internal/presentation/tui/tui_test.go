package tui

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/aretw0/seqflow/internal/runtime"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	d, stats := parser.ParseWithStats("actor U\nU -> S: a|b\nactivate S\n???\nS --> U")
	out := Summary("Login", d, []string{"U"}, &stats)

	assert.True(t, strings.HasPrefix(out, "# Login\n"))
	assert.Contains(t, out, "2 entities, 2 connections, 1 activation markers, 0 notes.")
	assert.Contains(t, out, "| `U` | U | actor |")
	assert.Contains(t, out, `| a\|b |`, "pipes are escaped inside cells")
	assert.Contains(t, out, "| `S-U-")
	assert.Contains(t, out, "- `U`")
	assert.Contains(t, out, "Unrecognized lines: 4.")
}

func TestSummary_Empty(t *testing.T) {
	out := Summary("", domain.NewDiagram(), nil, nil)
	assert.Contains(t, out, "# Diagram")
	assert.Contains(t, out, "No entities")
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer(60)
	require.NoError(t, err)
	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
}

func TestTerminal_PrintsTrace(t *testing.T) {
	var buf bytes.Buffer
	table := render.NewTable()
	p := NewTerminal(&buf, false)
	detach := p.Attach(table)

	d := parser.Parse("A -> B")
	require.NoError(t, table.Render(d))
	table.HighlightObject("A", runtime.ClassActive)
	table.StrokeConnection("A-B-0", domain.Stroke{Width: 4})
	table.HighlightObject("A", runtime.ClassVisited)
	detach()
	table.HighlightObject("B", runtime.ClassActive)

	out := buf.String()
	assert.Contains(t, out, "● A")
	assert.Contains(t, out, "○ A")
	assert.NotContains(t, out, "width=", "stroke frames are verbose only")
	assert.NotContains(t, out, "● B", "detached printers stay quiet")
}

func TestTerminal_Verbose(t *testing.T) {
	var buf bytes.Buffer
	p := NewTerminal(&buf, true)
	p.Print(render.Command{Kind: render.CmdStrokeConnection, Target: "A-B-0", Stroke: &domain.Stroke{Width: 2.5, Dash: "8 4"}})
	p.Print(render.Command{Kind: render.CmdRipple, Target: "A", Radius: 40})
	assert.Contains(t, buf.String(), `~ A-B-0 width=2.50 dash="8 4"`)
	assert.Contains(t, buf.String(), "◌ A r=40")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Contains(t, buf.String(), "|___/")
}

func TestCanvasSize_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	w, h, ok := CanvasSize(f, 1200, 800)
	assert.False(t, ok)
	assert.Equal(t, 1200.0, w)
	assert.Equal(t, 800.0, h)
	assert.Zero(t, Width(f))
}
