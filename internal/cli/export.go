package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/seqflow/internal/presentation/graph"
	"github.com/aretw0/seqflow/pkg/codec"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
)

// Export formats beyond the codec formats.
const (
	FormatMermaid   = "mermaid"
	FormatFlowchart = "flowchart"
)

// ExportOptions configures Export.
type ExportOptions struct {
	Input
	Format string
	// Path highlights the shortest From -> To path in a flowchart.
	From, To string
}

// Export writes the selected diagram to w in the requested format.
func (a *App) Export(ctx context.Context, w io.Writer, opts ExportOptions) error {
	d, _, err := a.Resolve(ctx, opts.Input)
	if err != nil {
		return err
	}

	switch opts.Format {
	case FormatMermaid:
		_, err := io.WriteString(w, graph.Sequence(d))
		return err

	case FormatFlowchart:
		g := flow.Build(d.Connections)
		var overlay *graph.Overlay
		if opts.From != "" && opts.To != "" {
			path, err := g.FindPath(opts.From, opts.To)
			if err != nil {
				return err
			}
			overlay = &graph.Overlay{Path: path}
		}
		_, err := io.WriteString(w, graph.Flowchart(d, g, overlay))
		return err
	}

	f, err := codec.ParseFormat(opts.Format)
	if err != nil {
		return err
	}
	return codec.Encode(w, d, f)
}

// Save parses the selected diagram and stores it under id.
func (a *App) Save(ctx context.Context, id string, in Input) error {
	d, _, err := a.Resolve(ctx, in)
	if err != nil {
		return err
	}
	if err := a.Workspace.Save(ctx, id, d); err != nil {
		return err
	}
	printSystemMessage(a.Out, "Saved '%s' (%d entities, %d connections).", id, len(d.Entities), len(d.Connections))
	return nil
}

// Import reads a JSON, YAML or msgpack diagram file (format from the
// extension) and stores it under id. Skipped records are reported.
func (a *App) Import(ctx context.Context, id, path string) error {
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	d, warnings, err := codec.Decode(fh, codec.FormatFromPath(path))
	if err != nil {
		return err
	}
	for _, w := range warnings {
		a.Logger.Warn("record skipped", "file", path, "err", w)
		printSystemMessage(a.Out, "Skipped: %v", w)
	}
	if d.IsEmpty() {
		return fmt.Errorf("%s: %w", path, domain.ErrEmptyDiagram)
	}
	if err := a.Workspace.Save(ctx, id, d); err != nil {
		return err
	}
	printSystemMessage(a.Out, "Imported '%s' from %s.", id, path)
	return nil
}
