package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/seqflow/pkg/flow"
)

// Path prints the shortest message path between two entities.
func (a *App) Path(ctx context.Context, in Input, from, to string) ([]string, error) {
	d, _, err := a.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	path, err := flow.Build(d.Connections).FindPath(from, to)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(a.Out, strings.Join(path, " -> "))
	return path, nil
}

// Preview prints every entity reachable from id, depth first.
func (a *App) Preview(ctx context.Context, in Input, id string) ([]string, error) {
	d, _, err := a.Resolve(ctx, in)
	if err != nil {
		return nil, err
	}
	reach := flow.Build(d.Connections).Preview(id)
	for i, node := range reach {
		prefix := "  "
		if i == 0 {
			prefix = "* "
		}
		fmt.Fprintln(a.Out, prefix+node)
	}
	return reach, nil
}
