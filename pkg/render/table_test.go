package render_test

import (
	"sync"
	"testing"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/layout"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/aretw0/seqflow/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Renderer = (*render.Table)(nil)

func rendered(t *testing.T, src string) (*render.Table, *domain.Diagram) {
	t.Helper()
	d := parser.Parse(src)
	layout.AutoLayout(d.Entities, 800, 600)
	tbl := render.NewTable()
	require.NoError(t, tbl.Render(d))
	return tbl, d
}

func TestTable_RenderSnapshotsRestingStrokes(t *testing.T) {
	tbl, d := rendered(t, "A ->> B: wide\nB ..> A: thin\nactivate A")

	v := tbl.Snapshot()
	require.Len(t, v.Entities, 2)
	require.Len(t, v.Connections, 2, "activation markers are not drawn")
	for i, c := range d.Messages() {
		assert.Equal(t, c.ID, v.Connections[i].ID)
		assert.Equal(t, c.Weight, v.Connections[i].Resting)
		assert.Equal(t, c.Weight, v.Connections[i].Stroke)
	}

	a, _ := d.Entity("A")
	box, ok := tbl.EntityBox("A")
	require.True(t, ok)
	assert.Equal(t, a.Box(), box)
	assert.Equal(t, box.Center(), v.Connections[0].From)
}

func TestTable_RenderNil(t *testing.T) {
	assert.ErrorIs(t, render.NewTable().Render(nil), domain.ErrNilInput)
}

func TestTable_HighlightsAndClear(t *testing.T) {
	tbl, d := rendered(t, "A -> B\nB --> A")
	conn := d.Connections[1]

	tbl.HighlightObject("A", "active")
	tbl.HighlightObject("A", "visited")
	tbl.RemoveHighlight("A", "active")
	tbl.HighlightConnection(conn.ID, "flowing")
	tbl.StrokeConnection(conn.ID, domain.Stroke{Width: 9})

	assert.Equal(t, []string{"visited"}, tbl.EntityClasses("A"))
	assert.Equal(t, []string{"flowing"}, tbl.ConnectionClasses(conn.ID))
	s, _ := tbl.ConnectionStroke(conn.ID)
	assert.Equal(t, 9.0, s.Width)
	assert.False(t, tbl.IsClean())

	tbl.ClearAllHighlights()
	assert.True(t, tbl.IsClean())
	s, _ = tbl.ConnectionStroke(conn.ID)
	assert.Equal(t, conn.Weight, s, "restores the connection's own resting stroke")
}

func TestTable_RestoreConnection(t *testing.T) {
	tbl, d := rendered(t, "A -x B")
	id := d.Connections[0].ID

	tbl.StrokeConnection(id, domain.Stroke{Width: 1})
	tbl.RestoreConnection(id)

	s, ok := tbl.ConnectionStroke(id)
	require.True(t, ok)
	assert.Equal(t, domain.WeightFor("-x", domain.ConnBreak), s)
}

func TestTable_UnknownTargetsAreIgnored(t *testing.T) {
	tbl, _ := rendered(t, "A -> B")
	var got []render.Command
	tbl.Subscribe(func(c render.Command) { got = append(got, c) })

	tbl.HighlightObject("nope", "active")
	tbl.HighlightConnection("nope", "flowing")
	tbl.Ripple("nope", 10)
	_, ok := tbl.EntityBox("nope")

	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestTable_MoveAndUpdateConnections(t *testing.T) {
	tbl, d := rendered(t, "A -> B")
	id := d.Connections[0].ID
	before := tbl.Snapshot().Connections[0].From

	tbl.MoveEntity("A", domain.Point{X: 0, Y: 0})
	assert.Equal(t, before, tbl.Snapshot().Connections[0].From, "endpoints move on update only")

	tbl.UpdateConnections()
	box, _ := tbl.EntityBox("A")
	assert.Equal(t, box.Center(), tbl.Snapshot().Connections[0].From)
	assert.Equal(t, id, tbl.Snapshot().Connections[0].ID)
}

func TestTable_SubscribeOrderAndUnsubscribe(t *testing.T) {
	tbl, _ := rendered(t, "A -> B")

	var mu sync.Mutex
	var kinds []render.CommandKind
	var seqs []uint64
	stop := tbl.Subscribe(func(c render.Command) {
		mu.Lock()
		defer mu.Unlock()
		kinds = append(kinds, c.Kind)
		seqs = append(seqs, c.Seq)
	})

	tbl.HighlightObject("A", "active")
	tbl.Ripple("A", 42)
	tbl.ClearAllHighlights()
	stop()
	tbl.HighlightObject("B", "active")

	assert.Equal(t, []render.CommandKind{render.CmdHighlight, render.CmdRipple, render.CmdClearAllHighlights}, kinds)
	assert.Less(t, seqs[0], seqs[1])
	assert.Less(t, seqs[1], seqs[2])
}

func TestTable_Clear(t *testing.T) {
	tbl, _ := rendered(t, "A -> B")
	tbl.Clear()
	v := tbl.Snapshot()
	assert.Empty(t, v.Entities)
	assert.Empty(t, v.Connections)
}
