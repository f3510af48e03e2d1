package flow

import (
	"fmt"

	"github.com/aretw0/seqflow/pkg/domain"
)

// FindPath returns the first discovered shortest path from -> to by edge count.
// Ties resolve in adjacency order. from == to yields the single-element path.
func (g *Graph) FindPath(from, to string) ([]string, error) {
	if from == to {
		return []string{from}, nil
	}

	parent := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, e := range g.adjacency[cur] {
			if _, seen := parent[e.To]; seen {
				continue
			}
			parent[e.To] = cur
			if e.To == to {
				return unwind(parent, from, to), nil
			}
			queue = append(queue, e.To)
		}
	}
	return nil, fmt.Errorf("%w: %s -> %s", domain.ErrPathNotFound, from, to)
}

func unwind(parent map[string]string, from, to string) []string {
	var rev []string
	for n := to; n != from; n = parent[n] {
		rev = append(rev, n)
	}
	rev = append(rev, from)

	out := make([]string, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

// EdgesAlong returns the connection ids joining consecutive nodes of path.
func (g *Graph) EdgesAlong(path []string) ([]Edge, error) {
	out := make([]Edge, 0, len(path))
	for i := 0; i+1 < len(path); i++ {
		e, ok := g.EdgeBetween(path[i], path[i+1])
		if !ok {
			return nil, fmt.Errorf("%w: no edge %s -> %s", domain.ErrPathNotFound, path[i], path[i+1])
		}
		out = append(out, e)
	}
	return out, nil
}

// Preview collects every node reachable from id in depth-first preorder.
// A single visited set is shared across the walk, so re-converging branches
// are listed once. Unknown or leaf nodes yield [id].
func (g *Graph) Preview(id string) []string {
	visited := map[string]bool{id: true}
	out := []string{id}

	// Explicit stack of (node, next edge index).
	type frame struct {
		node string
		next int
	}
	stack := []frame{{node: id}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		edges := g.adjacency[top.node]
		if top.next >= len(edges) {
			stack = stack[:len(stack)-1]
			continue
		}
		e := edges[top.next]
		top.next++
		if visited[e.To] {
			continue
		}
		visited[e.To] = true
		out = append(out, e.To)
		stack = append(stack, frame{node: e.To})
	}
	return out
}
