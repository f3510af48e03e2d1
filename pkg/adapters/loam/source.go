package loam

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/ports"
)

// WatchPattern selects the files a library reacts to.
const WatchPattern = "**/*.{md,json,yaml,yml}"

// Source adapts a loam repository to ports.DiagramSource.
// Markdown documents carry the diagram in their body, optionally inside a
// ```plantuml fence; json and yaml documents use the "source" field.
type Source struct {
	Repo *loam.TypedRepository[DiagramMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[DiagramMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initializes a strict, read-only loam repository at dir.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve library path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[DiagramMetadata](repo)), nil
}

// Get returns the document for id. The id may omit the file extension.
func (s *Source) Get(ctx context.Context, id string) (*ports.Document, error) {
	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) || isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDiagramNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	meta := doc.Data
	docID := meta.ID
	if docID == "" {
		docID = doc.ID
	}
	docID = trimExtension(docID)

	text := meta.Source
	if text == "" {
		text = extractDiagram(doc.Content)
	}

	title := meta.Title
	if title == "" {
		title = docID
	}

	return &ports.Document{
		DocumentInfo: ports.DocumentInfo{ID: docID, Title: title, Tags: meta.Tags},
		Description:  meta.Description,
		Start:        meta.Start,
		Source:       text,
	}, nil
}

// List returns every document, sorted by id.
func (s *Source) List(ctx context.Context) ([]ports.DocumentInfo, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	out := make([]ports.DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existing, doc.ID)
		}
		seen[id] = doc.ID

		title := doc.Data.Title
		if title == "" {
			title = id
		}
		out = append(out, ports.DocumentInfo{ID: id, Title: title, Tags: doc.Data.Tags})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	events, err := s.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan struct{}, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				// Coalesce bursts: a pending signal already covers this change.
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		}
	}()
	return ch, nil
}

func isNotFound(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// extractDiagram returns the first plantuml/puml fenced block of a markdown
// body, or the whole body when it has none.
func extractDiagram(body string) string {
	lines := strings.Split(body, "\n")
	start := -1
	for i, l := range lines {
		t := strings.TrimSpace(l)
		if start < 0 {
			if t == "```plantuml" || t == "```puml" {
				start = i + 1
			}
			continue
		}
		if t == "```" {
			return strings.Join(lines[start:i], "\n")
		}
	}
	return strings.TrimSpace(body)
}
