package parser_test

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_BasicExchange(t *testing.T) {
	d := parser.Parse("A -> B: hi\nB --> A: ok")

	require.Len(t, d.Entities, 2)
	assert.Equal(t, "A", d.Entities[0].ID)
	assert.Equal(t, "B", d.Entities[1].ID)
	for _, e := range d.Entities {
		assert.Equal(t, domain.KindParticipant, e.Kind)
		assert.Equal(t, e.ID, e.DisplayName)
	}

	require.Len(t, d.Connections, 2)
	first, second := d.Connections[0], d.Connections[1]
	assert.Equal(t, "A", first.From)
	assert.Equal(t, "B", first.To)
	assert.Equal(t, domain.ConnSolid, first.Kind)
	assert.Equal(t, "hi", first.Label)

	assert.Equal(t, "B", second.From)
	assert.Equal(t, "A", second.To)
	assert.Equal(t, domain.ConnDashed, second.Kind)
	assert.Equal(t, "ok", second.Label)
	assert.Equal(t, domain.DashedPattern, second.Weight.Dash)
}

func TestParse_ActorAliasAndImplicitEntity(t *testing.T) {
	d := parser.Parse("actor \"User\" as U\nU -> S: go")

	u, ok := d.Entity("U")
	require.True(t, ok)
	assert.Equal(t, domain.KindActor, u.Kind)
	assert.Equal(t, "User", u.DisplayName)

	s, ok := d.Entity("S")
	require.True(t, ok)
	assert.Equal(t, domain.KindParticipant, s.Kind)
	assert.Equal(t, "S", s.DisplayName)

	require.Len(t, d.Connections, 1)
	assert.Equal(t, "U", d.Connections[0].From)
	assert.Equal(t, "S", d.Connections[0].To)
	assert.Equal(t, "go", d.Connections[0].Label)
}

func TestParse_EveryMarker(t *testing.T) {
	tests := []struct {
		line     string
		kind     domain.ConnectionKind
		from, to string
	}{
		{"A -> B: m", domain.ConnSolid, "A", "B"},
		{"A --> B: m", domain.ConnDashed, "A", "B"},
		{"A <- B: m", domain.ConnReverseSolid, "B", "A"},
		{"A <-- B: m", domain.ConnReverseDashed, "B", "A"},
		{"A ->> B: m", domain.ConnDouble, "A", "B"},
		{"A <<- B: m", domain.ConnReverseDouble, "B", "A"},
		{"A ..> B: m", domain.ConnDotted, "A", "B"},
		{"A <.. B: m", domain.ConnReverseDotted, "B", "A"},
		{"A .. B: m", domain.ConnDottedLine, "A", "B"},
		{"A -x B: m", domain.ConnBreak, "A", "B"},
		{"A ->x B: m", domain.ConnBreak, "A", "B"},
		{"A ==> B: m", domain.ConnParallel, "A", "B"},
		{"A o-> B: m", domain.ConnCircleStart, "A", "B"},
		{"A ->o B: m", domain.ConnCircleEnd, "A", "B"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			d := parser.Parse(tt.line)
			require.Len(t, d.Connections, 1)
			c := d.Connections[0]
			assert.Equal(t, tt.kind, c.Kind)
			assert.Equal(t, tt.from, c.From)
			assert.Equal(t, tt.to, c.To)
			assert.Equal(t, "m", c.Label)
			assert.Equal(t, domain.WeightFor(c.Arrow, c.Kind), c.Weight)
		})
	}
}

func TestParse_MarkersWithoutSpacesOrLabel(t *testing.T) {
	d := parser.Parse("A->B\nB-->>C\nC<--A\nA->>B")

	// "B-->>C" is not part of the catalog and is dropped.
	require.Len(t, d.Connections, 3)
	assert.Equal(t, "", d.Connections[0].Label)
	assert.Equal(t, "A", d.Connections[1].From, "reverse marker canonicalizes the sender")
	assert.Equal(t, "C", d.Connections[1].To)
	assert.Equal(t, domain.ConnDouble, d.Connections[2].Kind)
	assert.Equal(t, "->>", d.Connections[2].Arrow)
}

func TestParse_LabelIsTrimmed(t *testing.T) {
	d := parser.Parse("A -> B :    spaced out label   ")
	require.Len(t, d.Connections, 1)
	assert.Equal(t, "spaced out label", d.Connections[0].Label)
}

func TestParse_RedeclarationKeepsFirstKind(t *testing.T) {
	d := parser.Parse(`database DB
A -> DB: query
actor DB
participant "Other Name" as DB`)

	db, ok := d.Entity("DB")
	require.True(t, ok)
	assert.Equal(t, domain.KindDatabase, db.Kind)
	assert.Equal(t, "DB", db.DisplayName)
	assert.Equal(t, domain.SizeFor("DB"), db.Size)
}

func TestParse_FirstReferenceBeforeDeclarationWins(t *testing.T) {
	d := parser.Parse("A -> B\nactor B")
	b, ok := d.Entity("B")
	require.True(t, ok)
	assert.Equal(t, domain.KindParticipant, b.Kind)
}

func TestParse_DeclarationForms(t *testing.T) {
	d := parser.Parse(`actor "Customer Care" as CC
database Orders as "Order Store"
queue LongQueueName as Q
boundary "Gateway"
control Ctl <<service>>
Collections Items`)

	want := []struct {
		id, name string
		kind     domain.EntityKind
	}{
		{"CC", "Customer Care", domain.KindActor},
		{"Orders", "Order Store", domain.KindDatabase},
		{"Q", "LongQueueName", domain.KindQueue},
		{"Gateway", "Gateway", domain.KindBoundary},
		{"Ctl", "Ctl", domain.KindControl},
		{"Items", "Items", domain.KindCollections},
	}
	require.Len(t, d.Entities, len(want))
	for i, w := range want {
		assert.Equal(t, w.id, d.Entities[i].ID)
		assert.Equal(t, w.name, d.Entities[i].DisplayName)
		assert.Equal(t, w.kind, d.Entities[i].Kind)
	}
}

func TestParse_ActivationMarkers(t *testing.T) {
	d := parser.Parse("A -> B: call\nactivate B\nB --> A: done\ndeactivate B\nactivate C")

	require.Len(t, d.Connections, 5)
	assert.Len(t, d.Messages(), 2)

	cmd := d.Connections[1]
	assert.True(t, cmd.IsCommand())
	assert.Equal(t, domain.CommandActivate, cmd.Command)
	assert.Equal(t, "B", cmd.Target)
	assert.Empty(t, cmd.From)
	assert.Empty(t, cmd.To)

	_, ok := d.Entity("C")
	assert.True(t, ok, "activation targets are auto-created")
}

func TestParse_ConnectionIDsAreUnique(t *testing.T) {
	d := parser.Parse("A -> B\nA -> B\nactivate B\nA -> B")
	seen := map[string]bool{}
	for _, c := range d.Connections {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.Equal(t, "A-B-0", d.Connections[0].ID)
	assert.Equal(t, "A-B-3", d.Connections[3].ID)
}

func TestParse_Notes(t *testing.T) {
	d := parser.Parse(`note over A, B: handshake
note left of C
first line
second line
end note
A -> B`)

	require.Len(t, d.Notes, 2)
	assert.Equal(t, domain.NoteOver, d.Notes[0].Placement)
	assert.Equal(t, []string{"A", "B"}, d.Notes[0].Targets)
	assert.Equal(t, "handshake", d.Notes[0].Text)

	assert.Equal(t, domain.NoteLeftOf, d.Notes[1].Placement)
	assert.Equal(t, "first line\nsecond line", d.Notes[1].Text)

	ids := make([]string, 0, len(d.Entities))
	for _, e := range d.Entities {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
	assert.Len(t, d.Connections, 1)
}

func TestParse_UnterminatedNoteRereadsFollowingLines(t *testing.T) {
	d, stats := parser.ParseWithStats("note over A\nA -> B: hi\nB --> A: ok")

	assert.Empty(t, d.Notes)
	require.Len(t, d.Connections, 2)
	assert.Equal(t, "A", d.Connections[0].From)
	assert.Equal(t, "hi", d.Connections[0].Label)
	assert.Len(t, d.Entities, 2)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, []int{1}, stats.UnmatchedLines)

	// The first "end note" closes the open note.
	d = parser.Parse("note over A\nA -> B\nnote right of B\nbody\nend note")
	require.Len(t, d.Notes, 1)
	assert.Equal(t, "A -> B\nnote right of B\nbody", d.Notes[0].Text)

	d, stats = parser.ParseWithStats("A -> B\nnote over A")
	assert.Empty(t, d.Notes)
	assert.Len(t, d.Connections, 1)
	assert.Equal(t, []int{2}, stats.UnmatchedLines)
}

func TestParse_SkipsNoiseAndNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"@startuml\n' comment\n// another\n# hash\n%% mermaid\n@enduml",
		"sequenceDiagram\n    A->>B: mermaid style",
		"-> B: missing sender",
		"A -> : missing receiver",
		"!!! ### ??? <<<>>>",
		"actor",
		"note over",
		"A -> B: label with -> arrow inside",
		strings.Repeat("x", 10_000),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { parser.Parse(in) }, "input %q", in)
	}

	d := parser.Parse("@startuml\n' comment\n@enduml")
	assert.True(t, d.IsEmpty())
	assert.Empty(t, d.Connections)

	d = parser.Parse("A -> B: label with -> arrow inside")
	require.Len(t, d.Connections, 1)
	assert.Equal(t, "label with -> arrow inside", d.Connections[0].Label)
}

func TestParse_Deterministic(t *testing.T) {
	src := "actor U\nU -> S: a\nS ->> DB: b\nDB <-- S: c\nactivate S\nS ..> U"
	first := parser.Parse(src)
	for i := 0; i < 5; i++ {
		again := parser.Parse(src)
		assert.Equal(t, first.Connections, again.Connections)
		require.Len(t, again.Entities, len(first.Entities))
		for j := range first.Entities {
			assert.Equal(t, *first.Entities[j], *again.Entities[j])
		}
	}
}

func TestParseWithStats(t *testing.T) {
	_, stats := parser.ParseWithStats("@startuml\nactor U\nU -> S: go\nactivate S\nwhat is this\n\n@enduml")

	assert.Equal(t, 7, stats.Lines)
	assert.Equal(t, 3, stats.Skipped)
	assert.Equal(t, 1, stats.Declarations)
	assert.Equal(t, 1, stats.Messages)
	assert.Equal(t, 1, stats.Commands)
	assert.Equal(t, 1, stats.Unmatched)
	assert.Equal(t, []int{5}, stats.UnmatchedLines)
}

func TestParseReader(t *testing.T) {
	_, err := parser.ParseReader(nil)
	assert.ErrorIs(t, err, domain.ErrNilInput)

	d, err := parser.ParseReader(strings.NewReader("A -> B"))
	require.NoError(t, err)
	assert.Len(t, d.Entities, 2)

	_, err = parser.ParseReader(iotest.ErrReader(errors.New("boom")))
	assert.Error(t, err)
}

func TestMarkers_Order(t *testing.T) {
	markers := parser.Markers()
	require.NotEmpty(t, markers)

	pos := map[string]int{}
	for i, m := range markers {
		pos[m.Arrow] = i
	}
	// Longer tokens must be tried before their prefixes.
	assert.Less(t, pos["-->"], pos["->"])
	assert.Less(t, pos["->>"], pos["->"])
	assert.Less(t, pos["<--"], pos["<-"])
	assert.Less(t, pos["..>"], pos[".."])
}
