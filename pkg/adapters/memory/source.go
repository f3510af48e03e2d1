package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/ports"
)

// Source implements ports.DiagramSource over a fixed set of documents.
type Source struct {
	docs map[string]ports.Document
}

// NewSource creates a source from raw diagram texts keyed by id.
func NewSource(data map[string]string) *Source {
	docs := make(map[string]ports.Document, len(data))
	for id, text := range data {
		docs[id] = ports.Document{
			DocumentInfo: ports.DocumentInfo{ID: id, Title: id},
			Source:       text,
		}
	}
	return &Source{docs: docs}
}

// NewFromDocuments creates a source from complete documents.
func NewFromDocuments(docs ...ports.Document) (*Source, error) {
	s := &Source{docs: make(map[string]ports.Document, len(docs))}
	for _, d := range docs {
		if d.ID == "" {
			return nil, fmt.Errorf("document missing ID")
		}
		if d.Title == "" {
			d.Title = d.ID
		}
		s.docs[d.ID] = d
	}
	return s, nil
}

// Get returns the document for id.
func (s *Source) Get(ctx context.Context, id string) (*ports.Document, error) {
	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDiagramNotFound, id)
	}
	d.Tags = append([]string(nil), d.Tags...)
	return &d, nil
}

// List returns every document sorted by id.
func (s *Source) List(ctx context.Context) ([]ports.DocumentInfo, error) {
	out := make([]ports.DocumentInfo, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d.DocumentInfo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
