package seqflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/seqflow"
	"github.com/aretw0/seqflow/internal/runtime"
	"github.com/aretw0/seqflow/pkg/adapters/memory"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/aretw0/seqflow/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.Animator = (*seqflow.Engine)(nil)

const basic = `participant U as "User"
participant Browser
participant Server
U -> Browser: open
Browser -> Server: GET /
Server --> Browser: 200
Browser --> U: page`

func newEngine(opts ...seqflow.Option) *seqflow.Engine {
	opts = append([]seqflow.Option{seqflow.WithScheduler(&runtime.InstantScheduler{})}, opts...)
	return seqflow.New(opts...)
}

func TestEngine_Load(t *testing.T) {
	eng := newEngine()
	d, err := eng.Load(context.Background(), basic)
	require.NoError(t, err)

	assert.Len(t, d.Entities, 3)
	assert.Len(t, d.Connections, 4)
	assert.Same(t, d, eng.Diagram())
	assert.Equal(t, []string{"U"}, eng.Sources())
	for _, ent := range d.Entities {
		assert.NotEqual(t, domain.Point{}, ent.Position, "entity %s laid out", ent.ID)
	}

	view := eng.Table().Snapshot()
	assert.Len(t, view.Entities, 3)
	assert.Len(t, view.Connections, 4)
}

func TestEngine_LoadEmptyKeepsCurrent(t *testing.T) {
	eng := newEngine()
	ctx := context.Background()
	d, err := eng.Load(ctx, "A -> B")
	require.NoError(t, err)

	_, err = eng.Load(ctx, "no arrows here")
	assert.ErrorIs(t, err, domain.ErrEmptyDiagram)
	assert.Same(t, d, eng.Diagram())

	assert.ErrorIs(t, eng.LoadDiagram(ctx, nil), domain.ErrNilInput)
	assert.ErrorIs(t, eng.LoadDiagram(ctx, &domain.Diagram{}), domain.ErrEmptyDiagram)
}

func entityIDs(d *domain.Diagram) []string {
	ids := make([]string, 0, len(d.Entities))
	for _, e := range d.Entities {
		ids = append(ids, e.ID)
	}
	return ids
}

func viewIDs(v render.View) []string {
	ids := make([]string, 0, len(v.Entities))
	for _, e := range v.Entities {
		ids = append(ids, e.ID)
	}
	return ids
}

func TestEngine_LoadWhileAnimating(t *testing.T) {
	eng := newEngine()
	ctx := context.Background()
	sources := []string{basic, "X -> Y\nY -> Z\nZ --> X"}
	_, err := eng.Load(ctx, sources[0])
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(src string) {
			defer wg.Done()
			_, err := eng.Load(ctx, src)
			assert.NoError(t, err)
		}(sources[i%2])
		go func() {
			defer wg.Done()
			if run, err := eng.AnimateAllFlows(ctx); err == nil {
				_ = run.Wait()
			}
		}()
	}
	wg.Wait()
	eng.StopAnimation()

	d := eng.Diagram()
	assert.Equal(t, entityIDs(d), viewIDs(eng.Table().Snapshot()))
	assert.Equal(t, flow.Build(d.Connections).Sources(), eng.Sources())
}

type failingRenderer struct {
	*render.Table
	failOn string
}

func (f failingRenderer) Render(d *domain.Diagram) error {
	if _, ok := d.Entity(f.failOn); ok {
		return errors.New("render failed")
	}
	return f.Table.Render(d)
}

func TestEngine_FailedLoadKeepsCurrent(t *testing.T) {
	table := render.NewTable()
	eng := newEngine(seqflow.WithRenderer(failingRenderer{Table: table, failOn: "Bad"}))
	ctx := context.Background()

	d, err := eng.Load(ctx, "A -> B")
	require.NoError(t, err)

	_, err = eng.Load(ctx, "A -> Bad")
	require.Error(t, err)
	assert.Same(t, d, eng.Diagram())
	assert.Equal(t, []string{"A", "B"}, viewIDs(table.Snapshot()))

	path, err := eng.FindPath("A", "B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, path)
}

func TestEngine_AnimateAndPath(t *testing.T) {
	eng := newEngine()
	ctx := context.Background()
	_, err := eng.Load(ctx, basic)
	require.NoError(t, err)

	path, err := eng.FindPath("U", "Server")
	require.NoError(t, err)
	assert.Equal(t, []string{"U", "Browser", "Server"}, path)

	_, err = eng.FindPath("U", "Ghost")
	assert.ErrorIs(t, err, domain.ErrPathNotFound)

	assert.Equal(t, []string{"U", "Browser", "Server"}, eng.PreviewPath("U"))
	assert.Equal(t, []string{"Ghost"}, eng.PreviewPath("Ghost"))

	run, err := eng.AnimateAllFlows(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RunAll, run.Kind())
	require.NoError(t, run.Wait())
	assert.Equal(t, runtime.StateIdle, eng.State())
	assert.True(t, eng.Table().IsClean())

	run, err = eng.HighlightPath(ctx, "U", "Server")
	require.NoError(t, err)
	require.NoError(t, run.Wait())
}

func TestEngine_Speed(t *testing.T) {
	eng := newEngine(seqflow.WithSpeed(2))
	assert.Equal(t, 2.0, eng.Speed())
	assert.Equal(t, 5.0, eng.SetSpeed(40))
	assert.Equal(t, 0.1, eng.SetSpeed(0))
}

func TestEngine_SaveRestore(t *testing.T) {
	ctx := context.Background()

	eng := newEngine()
	assert.Error(t, eng.Save(ctx, "x"), "no store configured")

	store := memory.NewStore()
	eng = newEngine(seqflow.WithStore(store))
	assert.ErrorIs(t, eng.Save(ctx, "x"), domain.ErrEmptyDiagram)

	_, err := eng.Load(ctx, basic)
	require.NoError(t, err)
	require.NoError(t, eng.Save(ctx, "basic"))

	other := newEngine(seqflow.WithStore(store))
	d, err := other.Restore(ctx, "basic")
	require.NoError(t, err)
	assert.Len(t, d.Entities, 3)
	assert.Equal(t, []string{"U"}, other.Sources())

	_, err = other.Restore(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrDiagramNotFound)
}

func TestEngine_LoadDocument(t *testing.T) {
	lib := memory.NewSource(map[string]string{"login": "U -> Auth: login\nAuth --> U: token"})
	eng := newEngine()
	ctx := context.Background()

	d, err := eng.LoadDocument(ctx, lib, "login")
	require.NoError(t, err)
	assert.Len(t, d.Entities, 2)

	_, err = eng.LoadDocument(ctx, lib, "missing")
	assert.ErrorIs(t, err, domain.ErrDiagramNotFound)
}

func TestAdvisory(t *testing.T) {
	assert.Empty(t, seqflow.Advisory(nil))
	assert.Contains(t, seqflow.Advisory(domain.ErrEmptyDiagram), "No entities found")
	assert.Equal(t, seqflow.Advisory(domain.ErrPathNotFound),
		seqflow.Advisory(errors.Join(errors.New("wrapped"), domain.ErrPathNotFound)))
	assert.Contains(t, seqflow.Advisory(errors.New("boom")), "Something went wrong")
}
