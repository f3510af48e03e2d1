package flow_test

import (
	"testing"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphOf(t *testing.T, src string) *flow.Graph {
	t.Helper()
	return flow.Build(parser.Parse(src).Connections)
}

func TestBuild_FiltersCommandsAndCountsEdges(t *testing.T) {
	d := parser.Parse("A -> B: one\nactivate B\nB -> C: two\ndeactivate B\nA -> C: three")
	g := flow.Build(d.Connections)

	assert.Equal(t, len(d.Messages()), g.EdgeCount())
	assert.Equal(t, 3, g.EdgeCount())
	assert.False(t, g.Has(""), "command markers must not create a null-keyed node")

	total := 0
	for _, n := range g.Nodes() {
		total += len(g.Outgoing(n))
	}
	assert.Equal(t, g.EdgeCount(), total)
}

func TestBuild_PreservesInsertionOrder(t *testing.T) {
	g := graphOf(t, "A -> C: first\nA -> B: second\nA -> D: third")

	out := g.Outgoing("A")
	require.Len(t, out, 3)
	assert.Equal(t, []string{"C", "B", "D"}, []string{out[0].To, out[1].To, out[2].To})
	assert.Equal(t, "first", out[0].Label)
	assert.Equal(t, "A-C-0", out[0].ConnectionID)
	assert.Equal(t, []string{"A", "C", "B", "D"}, g.Nodes())
}

func TestBuild_Idempotent(t *testing.T) {
	d := parser.Parse("A -> B\nB -> C\nC -> A")
	g1, g2 := flow.Build(d.Connections), flow.Build(d.Connections)
	assert.Equal(t, g1.Nodes(), g2.Nodes())
	for _, n := range g1.Nodes() {
		assert.Equal(t, g1.Outgoing(n), g2.Outgoing(n))
	}
}

func TestBuild_SkipsRecordsWithoutSender(t *testing.T) {
	g := flow.Build([]domain.Connection{
		{ID: "x", To: "B"},
		domain.NewConnection("A", "B", "", "->", domain.ConnSolid, 1),
	})
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, []string{"A", "B"}, g.Nodes())
}

func TestSources(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"chain", "A -> B\nB -> C", []string{"A"}},
		{"two roots", "A -> C\nB -> C\nC -> D", []string{"A", "B"}},
		{"pure cycle falls back", "A -> B\nB -> C\nC -> A", []string{"A"}},
		{"disconnected", "A -> B\nX -> Y", []string{"A", "X"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, graphOf(t, tt.src).Sources())
		})
	}
}

func TestEdgeBetween(t *testing.T) {
	g := graphOf(t, "A -> B: first\nA -> B: second")
	e, ok := g.EdgeBetween("A", "B")
	require.True(t, ok)
	assert.Equal(t, "first", e.Label)

	_, ok = g.EdgeBetween("B", "A")
	assert.False(t, ok)
}
