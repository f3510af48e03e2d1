package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/seqflow/pkg/adapters/file"
	"github.com/aretw0/seqflow/pkg/codec"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ports.DiagramStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	for _, f := range codec.Formats {
		t.Run(string(f), func(t *testing.T) {
			ports.RunDiagramStoreContract(t, file.New(t.TempDir(), file.WithFormat(f)))
		})
	}
}

func TestFileStore_WritesReadableDocument(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir, file.WithFormat(codec.YAML))
	require.NoError(t, store.Save(context.Background(), "auth", parser.Parse("A -> B: login")))

	data, err := os.ReadFile(filepath.Join(dir, "auth.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "label: login")

	// No temp files are left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ListIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", parser.Parse("A -> B")))
	require.NoError(t, store.Save(ctx, "a", parser.Parse("A -> B")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestFileStore_MissingDirectory(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "absent"))
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = store.Load(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrDiagramNotFound)
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()
	d := parser.Parse("A -> B")

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		assert.Error(t, store.Save(ctx, id, d), "id %q", id)
	}
}

func TestFileStore_DefaultDir(t *testing.T) {
	assert.Equal(t, file.DefaultDir, file.New("").BasePath)
}
