package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/seqflow/internal/presentation/graph"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	d := parser.Parse(`
actor User
database "Orders DB" as DB
User -> API: place order
activate API
API ->> DB: insert; commit
DB --> API: ok #1
API <- User: retry
deactivate API
note over API, DB: two-phase
`)

	out := graph.Sequence(d)
	tests := []struct {
		name     string
		contains string
	}{
		{"Header", "sequenceDiagram\n"},
		{"Actor", "    actor User\n"},
		{"Alias", "    participant DB as Orders DB\n"},
		{"Solid", "    User->>API: place order\n"},
		{"Activation", "    activate API\n"},
		{"Double", "    API-)DB: insert#59; commit\n"},
		{"Dashed", "    DB-->>API: ok #35;1\n"},
		{"Reverse is drawn sender first", "    User->>API: retry\n"},
		{"Deactivation", "    deactivate API\n"},
		{"Note", "    Note over API,DB: two-phase\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, out, tt.contains)
		})
	}

	// Implicit participants are declared without an alias.
	assert.Contains(t, out, "    participant API\n")
	assert.Equal(t, "sequenceDiagram\n", graph.Sequence(nil))
}

func TestSequence_SanitizesIDs(t *testing.T) {
	d := domain.NewDiagram()
	d.Ensure("svc.a")
	d.Ensure("svc-b")
	d.Connections = append(d.Connections, domain.NewConnection("svc.a", "svc-b", "call", "->", domain.ConnSolid, 0))

	out := graph.Sequence(d)
	assert.Contains(t, out, "participant svc_a as svc.a")
	assert.Contains(t, out, "svc_a->>svc_b: call")
}

func TestFlowchart(t *testing.T) {
	d := parser.Parse(`
actor U
database DB
U -> S: "login"
S -> DB: query
DB --> S: rows
`)
	g := flow.Build(d.Connections)

	out := graph.Flowchart(d, g, nil)
	assert.True(t, strings.HasPrefix(out, "graph LR\n"))
	assert.Contains(t, out, `U(("U"))`)
	assert.Contains(t, out, `DB[("DB")]`)
	assert.Contains(t, out, `S["S"]`)
	assert.Contains(t, out, `U -- "'login'" --> S`, "quotes are escaped inside labels")
	assert.NotContains(t, out, "Overlay")
}

func TestFlowchart_Overlay(t *testing.T) {
	d := parser.Parse("A -> B: 1\nB -> C: 2\nA -> C: 3")
	g := flow.Build(d.Connections)

	out := graph.Flowchart(d, g, &graph.Overlay{
		Visited: []string{"A", "A"},
		Current: "C",
		Path:    []string{"A", "B", "C"},
	})

	assert.Equal(t, 1, strings.Count(out, "class A visited;"), "visited nodes are deduplicated")
	assert.Contains(t, out, "class B visited;")
	assert.Contains(t, out, "class C current;")
	assert.NotContains(t, out, "class C visited;")
	// Edges are numbered in emission order: A->B, A->C, B->C.
	assert.Contains(t, out, "linkStyle 0 ")
	assert.Contains(t, out, "linkStyle 2 ")
	assert.NotContains(t, out, "linkStyle 1 ")
}

func TestFlowchart_NilGraph(t *testing.T) {
	assert.Equal(t, "graph LR\n", graph.Flowchart(nil, nil, nil))
}
