package ports

import "context"

// DocumentInfo is the listing entry of a library document.
type DocumentInfo struct {
	ID    string   `json:"id"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Document is a diagram source text with its metadata.
type Document struct {
	DocumentInfo
	Description string `json:"description,omitempty"`
	Start       string `json:"start,omitempty"`
	Source      string `json:"source"`
}

// DiagramSource is a read-only library of diagram documents.
type DiagramSource interface {
	List(ctx context.Context) ([]DocumentInfo, error)

	// Get returns the document for id.
	// Returns domain.ErrDiagramNotFound if it does not exist.
	Get(ctx context.Context, id string) (*Document, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
// This is typically used for hot-reload of a diagram library.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying documents change.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
