package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/seqflow/pkg/adapters/memory"
	"github.com/aretw0/seqflow/pkg/ports"
	contract "github.com/aretw0/seqflow/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySource_Contract(t *testing.T) {
	data := map[string]string{
		"hello": "A -> B: hello",
		"bye":   "B --> A: bye",
	}
	contract.DiagramSourceContractTest(t, memory.NewSource(data), data)
}

func TestNewFromDocuments(t *testing.T) {
	src, err := memory.NewFromDocuments(
		ports.Document{DocumentInfo: ports.DocumentInfo{ID: "b", Tags: []string{"x"}}, Source: "A -> B"},
		ports.Document{DocumentInfo: ports.DocumentInfo{ID: "a", Title: "First"}, Source: "B -> C", Start: "B"},
	)
	require.NoError(t, err)

	docs, err := src.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.Equal(t, "First", docs[0].Title)
	assert.Equal(t, "b", docs[1].Title, "title defaults to the id")

	doc, err := src.Get(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "B", doc.Start)

	_, err = memory.NewFromDocuments(ports.Document{Source: "A -> B"})
	assert.Error(t, err)
}
