package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/seqflow/pkg/codec"
	"github.com/aretw0/seqflow/pkg/domain"
)

// DefaultDir is used when no base path is configured.
var DefaultDir = filepath.Join(".seqflow", "diagrams")

// Store implements ports.DiagramStore on the local filesystem.
// Each diagram is one document in BasePath, encoded with Format.
type Store struct {
	BasePath string
	Format   codec.Format
}

// Option configures the Store.
type Option func(*Store)

// WithFormat selects the on-disk encoding. JSON is the default.
func WithFormat(f codec.Format) Option {
	return func(s *Store) {
		s.Format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to DefaultDir.
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	s := &Store{BasePath: basePath, Format: codec.JSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("diagram id cannot be empty")
	}
	if strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return "", fmt.Errorf("invalid diagram id %q", id)
	}
	return filepath.Join(s.BasePath, id+s.Format.Ext()), nil
}

// Save writes the diagram atomically: temp file, fsync, rename.
func (s *Store) Save(ctx context.Context, id string, d *domain.Diagram) error {
	if d == nil {
		return domain.ErrNilInput
	}
	destPath, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure diagram directory: %w", err)
	}

	data, err := codec.Marshal(d, s.Format)
	if err != nil {
		return fmt.Errorf("failed to marshal diagram: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+id+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Windows' rename fails when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing diagram for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the diagram document for id.
func (s *Store) Load(ctx context.Context, id string) (*domain.Diagram, error) {
	filePath, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrDiagramNotFound
		}
		return nil, fmt.Errorf("failed to read diagram file: %w", err)
	}

	d, _, err := codec.Unmarshal(data, s.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagram: %w", err)
	}
	return d, nil
}

// Delete removes the diagram file.
func (s *Store) Delete(ctx context.Context, id string) error {
	filePath, err := s.path(id)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete diagram file: %w", err)
	}
	return nil
}

// List returns every stored diagram id in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list diagrams: %w", err)
	}

	ext := s.Format.Ext()
	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, "tmp-") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ext))
	}
	sort.Strings(ids)
	return ids, nil
}
