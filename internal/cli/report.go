package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/seqflow/internal/presentation/tui"
	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/flow"
	"github.com/aretw0/seqflow/pkg/parser"
)

// ReportOptions configures Report.
type ReportOptions struct {
	Input
	// JSON prints the parse result instead of the markdown summary.
	JSON bool
	// Width wraps the rendered markdown; 0 keeps glamour's default.
	Width int
	// Raw prints the markdown without terminal styling.
	Raw bool
}

type report struct {
	Diagram *domain.Diagram `json:"diagram"`
	Stats   *parser.Stats   `json:"stats,omitempty"`
	Sources []string        `json:"sources"`
}

// Report parses the selected diagram and prints a summary of what was
// recognized.
func (a *App) Report(ctx context.Context, opts ReportOptions) error {
	d, stats, err := a.Resolve(ctx, opts.Input)
	if err != nil {
		return err
	}
	sources := flow.Build(d.Connections).Sources()

	if opts.JSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(report{Diagram: d, Stats: stats, Sources: sources})
	}

	md := tui.Summary(title(opts.Input), d, sources, stats)
	return a.printMarkdown(a.Out, md, opts.Width, opts.Raw)
}

func (a *App) printMarkdown(w io.Writer, md string, width int, raw bool) error {
	if raw {
		_, err := io.WriteString(w, md)
		return err
	}
	render, err := tui.NewRenderer(width)
	if err != nil {
		a.Logger.Warn("markdown renderer unavailable", "err", err)
		_, err = io.WriteString(w, md)
		return err
	}
	out, err := render(md)
	if err != nil {
		return fmt.Errorf("failed to render summary: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func title(in Input) string {
	switch {
	case in.File == "-":
		return "stdin"
	case in.File != "":
		return in.File
	case in.Document != "":
		return in.Document
	case in.Diagram != "":
		return in.Diagram
	case in.Sample != "":
		return in.Sample
	}
	return "sample"
}
