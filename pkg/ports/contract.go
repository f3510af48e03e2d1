package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// contractDiagram builds a small diagram touching every record shape.
func contractDiagram() *domain.Diagram {
	d := domain.NewDiagram()
	d.AddEntity(domain.NewEntity("U", "User", domain.KindActor))
	d.AddEntity(domain.NewEntity("S", "", domain.KindParticipant))
	d.AddEntity(domain.NewEntity("DB", "", domain.KindDatabase))
	d.Entities[0].Position = domain.Point{X: 10, Y: 20}
	d.Connections = append(d.Connections,
		domain.NewConnection("U", "S", "login", "->", domain.ConnSolid, 0),
		domain.NewCommand(domain.CommandActivate, "S", 1),
		domain.NewConnection("S", "DB", "query", "-->", domain.ConnDashed, 2),
	)
	d.Notes = append(d.Notes, domain.Note{Placement: domain.NoteOver, Targets: []string{"S"}, Text: "auth"})
	return d
}

// RunDiagramStoreContract runs a suite of tests to verify that a DiagramStore implementation
// adheres to the defined interface contract.
func RunDiagramStoreContract(t *testing.T, store DiagramStore) {
	ctx := context.Background()
	diagramID := "contract-test-diagram-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		d := contractDiagram()

		err := store.Save(ctx, diagramID, d)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, diagramID)
		require.NoError(t, err, "Load should not return error")
		require.Len(t, loaded.Entities, 3)
		assert.Equal(t, "User", loaded.Entities[0].DisplayName)
		assert.Equal(t, domain.KindActor, loaded.Entities[0].Kind)
		assert.Equal(t, domain.Point{X: 10, Y: 20}, loaded.Entities[0].Position)
		assert.Equal(t, d.Connections, loaded.Connections)
		assert.Equal(t, d.Notes, loaded.Notes)

		// The loaded diagram must be usable for lookups.
		db, ok := loaded.Entity("DB")
		require.True(t, ok)
		assert.Equal(t, domain.KindDatabase, db.Kind)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+diagramID)
		assert.ErrorIs(t, err, domain.ErrDiagramNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, diagramID, contractDiagram()))

		replacement := domain.NewDiagram()
		replacement.Ensure("X")
		require.NoError(t, store.Save(ctx, diagramID, replacement))

		loaded, err := store.Load(ctx, diagramID)
		require.NoError(t, err)
		require.Len(t, loaded.Entities, 1)
		assert.Equal(t, "X", loaded.Entities[0].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, diagramID, contractDiagram())
		require.NoError(t, err)

		err = store.Delete(ctx, diagramID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, diagramID)
		assert.ErrorIs(t, err, domain.ErrDiagramNotFound, "Load after Delete should return ErrDiagramNotFound")

		assert.NoError(t, store.Delete(ctx, diagramID), "Delete of a missing id is a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := diagramID + "-1"
		id2 := diagramID + "-2"
		_ = store.Save(ctx, id1, contractDiagram())
		_ = store.Save(ctx, id2, contractDiagram())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
