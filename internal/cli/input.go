package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/aretw0/seqflow/pkg/layout"
	"github.com/aretw0/seqflow/pkg/parser"
	"github.com/aretw0/seqflow/pkg/samples"
)

// Input selects where a command reads its diagram from. At most one field
// should be set; with none, the default sample is used.
type Input struct {
	// File is a diagram text file; "-" reads Stdin.
	File string
	// Sample is a bundled sample name.
	Sample string
	// Document is a library document id.
	Document string
	// Diagram is a stored diagram id.
	Diagram string

	Stdin io.Reader
}

// Validate rejects ambiguous inputs.
func (in Input) Validate() error {
	n := 0
	for _, v := range []string{in.File, in.Sample, in.Document, in.Diagram} {
		if v != "" {
			n++
		}
	}
	if n > 1 {
		return errors.New("use only one of --file, --sample, --document or --diagram")
	}
	return nil
}

// Source returns the diagram text selected by in. Stored diagrams have no
// text form and yield an error; use Resolve for them.
func (a *App) Source(ctx context.Context, in Input) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}
	switch {
	case in.File == "-":
		r := in.Stdin
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil

	case in.File != "":
		data, err := os.ReadFile(in.File)
		if err != nil {
			return "", err
		}
		return string(data), nil

	case in.Document != "":
		if a.Library == nil {
			return "", errors.New("no library configured (set library in seqflow.yaml or SEQFLOW_LIBRARY)")
		}
		doc, err := a.Library.Get(ctx, in.Document)
		if err != nil {
			return "", err
		}
		return doc.Source, nil

	case in.Diagram != "":
		return "", fmt.Errorf("stored diagram %q has no source text", in.Diagram)
	}

	name := in.Sample
	if name == "" {
		name = samples.Default
	}
	text, ok := samples.Get(name)
	if !ok {
		a.Logger.Warn("unknown sample, using default", "sample", name, "default", samples.Default)
		printSystemMessage(a.Out, "Unknown sample '%s'; showing '%s'.", name, samples.Default)
	}
	return text, nil
}

// Resolve returns the laid-out diagram selected by in. Stats are nil for
// stored diagrams.
func (a *App) Resolve(ctx context.Context, in Input) (*domain.Diagram, *parser.Stats, error) {
	if err := in.Validate(); err != nil {
		return nil, nil, err
	}
	if in.Diagram != "" {
		d, err := a.Workspace.Load(ctx, in.Diagram)
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil
	}

	text, err := a.Source(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	d, stats := parser.ParseWithStats(text)
	if d.IsEmpty() {
		return nil, &stats, domain.ErrEmptyDiagram
	}
	layout.AutoLayout(d.Entities, a.Config.Canvas.Width, a.Config.Canvas.Height)
	return d, &stats, nil
}
