package graph

import (
	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/index"
)

// Kind discriminates the node variants the graph can hold.
type Kind int

const (
	// KindTask is a checklist line backed by a markdown file.
	KindTask Kind = iota
	// KindText is a free-floating annotation owned by board storage.
	KindText
)

// Node is one renderable graph node. Task is set for KindTask, Text for
// KindText; layout treats both uniformly by id, position and edges.
type Node struct {
	ID     string
	Kind   Kind
	Task   *index.Task
	Text   string
	Pos    board.Position
	Status string // decorative status, board.Status* values
}

// Done reports whether the node counts as finished: a done checklist
// marker or a pinned "finished" status. Text nodes are never done.
func (n *Node) Done() bool {
	if n.Kind == KindText {
		return false
	}
	return n.Task.Marker == index.MarkerDone || n.Status == board.StatusFinished
}

// Graph is the merged, renderable node/edge set for one board.
type Graph struct {
	Nodes  []Node
	Edges  []board.Edge        // only edges whose endpoints resolve
	Adj    map[string][]string // source -> targets
	RevAdj map[string][]string // target -> sources

	byID map[string]int
}

// Node looks up a node by identity.
func (g *Graph) Node(id string) (*Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[i], true
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.Nodes) }
