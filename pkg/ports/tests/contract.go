package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/ports"
)

// DiagramSourceContractTest is a reusable test suite that verifies if an adapter complies with ports.DiagramSource.
// setupData maps document ids to the source text each one must return.
func DiagramSourceContractTest(t *testing.T, source ports.DiagramSource, setupData map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Get_Success", func(t *testing.T) {
		for id, expected := range setupData {
			doc, err := source.Get(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error getting document %s: %v", id, err)
			}
			if doc.ID != id {
				t.Errorf("id mismatch: got %q, want %q", doc.ID, id)
			}
			if doc.Source != expected {
				t.Errorf("source mismatch for %s. got %q, want %q", id, doc.Source, expected)
			}
		}
	})

	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := source.Get(ctx, "non-existent-document")
		if err == nil {
			t.Fatal("expected error for non-existent document, got nil")
		}
		if !errors.Is(err, domain.ErrDiagramNotFound) {
			t.Errorf("expected ErrDiagramNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		docs, err := source.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing documents: %v", err)
		}

		if len(docs) != len(setupData) {
			t.Errorf("expected %d documents, got %d", len(setupData), len(docs))
		}

		lookup := make(map[string]bool)
		for _, d := range docs {
			lookup[d.ID] = true
		}
		for id := range setupData {
			if !lookup[id] {
				t.Errorf("expected document %s not found in list", id)
			}
		}
	})
}
