package graph

import "github.com/joshharrison/taskloom/internal/layout"

// LayoutNodes adapts the graph's nodes for the layout engine. Current
// positions ride along as tie-break input only.
func (g *Graph) LayoutNodes() []layout.Node {
	nodes := make([]layout.Node, 0, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		nodes = append(nodes, layout.Node{
			ID:   n.ID,
			X:    n.Pos.X,
			Y:    n.Pos.Y,
			Done: n.Done(),
		})
	}
	return nodes
}

// LayoutEdges adapts the graph's edges for the layout engine.
func (g *Graph) LayoutEdges() []layout.Edge {
	edges := make([]layout.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, layout.Edge{Source: e.Source, Target: e.Target})
	}
	return edges
}
