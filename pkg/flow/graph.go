// Package flow projects diagram connections into a directed adjacency graph
// and answers reachability questions over it.
package flow

import (
	"github.com/aretw0/seqflow/pkg/domain"
)

// Edge is one outgoing connection of a node.
type Edge struct {
	To           string `json:"to"`
	ConnectionID string `json:"connection_id"`
	Label        string `json:"label,omitempty"`
}

// Graph is a read-only snapshot of the diagram's message flow.
// Adjacency lists keep connection insertion order.
type Graph struct {
	adjacency map[string][]Edge
	targeted  map[string]bool
	nodes     []string
	edges     int
}

// Build projects records into a graph in one pass.
// Activation markers and any record without a sender are filtered out.
func Build(records []domain.Connection) *Graph {
	g := &Graph{
		adjacency: make(map[string][]Edge),
		targeted:  make(map[string]bool),
	}
	seen := make(map[string]bool)
	discover := func(id string) {
		if !seen[id] {
			seen[id] = true
			g.nodes = append(g.nodes, id)
		}
	}

	for _, c := range records {
		if c.IsCommand() || c.From == "" || c.To == "" {
			continue
		}
		discover(c.From)
		discover(c.To)
		g.adjacency[c.From] = append(g.adjacency[c.From], Edge{To: c.To, ConnectionID: c.ID, Label: c.Label})
		g.targeted[c.To] = true
		g.edges++
	}
	return g
}

// Outgoing returns the edges leaving id in insertion order.
func (g *Graph) Outgoing(id string) []Edge {
	return g.adjacency[id]
}

// Nodes returns every node in discovery order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Has reports whether id takes part in any connection.
func (g *Graph) Has(id string) bool {
	_, ok := g.adjacency[id]
	return ok || g.targeted[id]
}

// EdgeCount is the total length of all adjacency lists.
func (g *Graph) EdgeCount() int {
	return g.edges
}

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool {
	return g == nil || len(g.nodes) == 0
}

// Sources returns the nodes that are never the target of a connection.
// When every node is targeted (a pure cycle) the first discovered node is used.
func (g *Graph) Sources() []string {
	var out []string
	for _, id := range g.nodes {
		if !g.targeted[id] {
			out = append(out, id)
		}
	}
	if len(out) == 0 && len(g.nodes) > 0 {
		out = []string{g.nodes[0]}
	}
	return out
}

// EdgeBetween returns the first edge from -> to in adjacency order.
func (g *Graph) EdgeBetween(from, to string) (Edge, bool) {
	for _, e := range g.adjacency[from] {
		if e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}
