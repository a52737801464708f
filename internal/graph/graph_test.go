package graph

import (
	"testing"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/index"
)

func task(id, marker string) index.Task {
	return index.Task{ID: id, Marker: marker, Text: id}
}

func emptyBoard() *board.Board {
	return &board.Board{
		ID: "b",
		Data: board.Data{
			Layout:     map[string]board.Position{},
			Edges:      []board.Edge{},
			NodeStatus: map[string]string{},
			TextNodes:  []board.TextNode{},
		},
	}
}

func TestBuild_SavedPositionWinsOverGrid(t *testing.T) {
	b := emptyBoard()
	b.Data.Layout["t1"] = board.Position{X: 777, Y: 42}
	visible := []index.Task{task("t1", " "), task("t2", " ")}

	g := Build(visible, b)

	n1, _ := g.Node("t1")
	if n1.Pos != (board.Position{X: 777, Y: 42}) {
		t.Errorf("saved position lost: %v", n1.Pos)
	}
	// Second task has no saved position: ordinal 1 of the fallback grid.
	n2, _ := g.Node("t2")
	want := board.Position{X: FallbackCellWidth, Y: 0}
	if n2.Pos != want {
		t.Errorf("expected grid fallback %v, got %v", want, n2.Pos)
	}
}

func TestBuild_FallbackGridWraps(t *testing.T) {
	b := emptyBoard()
	visible := []index.Task{
		task("a", " "), task("b", " "), task("c", " "), task("d", " "),
	}

	g := Build(visible, b)

	n, _ := g.Node("d")
	want := board.Position{X: 0, Y: FallbackCellHeight}
	if n.Pos != want {
		t.Errorf("fourth node should start row two at %v, got %v", want, n.Pos)
	}
}

func TestBuild_DoneMarkerForcesFinished(t *testing.T) {
	b := emptyBoard()
	b.Data.NodeStatus["t1"] = board.StatusInProgress // stale
	visible := []index.Task{task("t1", "x")}

	g := Build(visible, b)

	n, _ := g.Node("t1")
	if n.Status != board.StatusFinished {
		t.Errorf("expected finished, got %q", n.Status)
	}
	if !n.Done() {
		t.Error("done marker not reflected in Done()")
	}
}

func TestBuild_StatusDefaultsWhenUnset(t *testing.T) {
	b := emptyBoard()
	visible := []index.Task{task("t1", " ")}

	g := Build(visible, b)

	n, _ := g.Node("t1")
	if n.Status != board.StatusDefault {
		t.Errorf("expected default status, got %q", n.Status)
	}
}

func TestBuild_TextNodesMerged(t *testing.T) {
	b := emptyBoard()
	b.Data.TextNodes = append(b.Data.TextNodes, board.TextNode{ID: "text-1", Text: "milestone", X: 5, Y: 6})
	b.Data.Layout["text-1"] = board.Position{X: 50, Y: 60}

	g := Build(nil, b)

	n, ok := g.Node("text-1")
	if !ok {
		t.Fatal("text node missing from graph")
	}
	if n.Kind != KindText || n.Text != "milestone" {
		t.Errorf("unexpected node %+v", n)
	}
	// Layout overlay beats the text node's own stored coordinates.
	if n.Pos != (board.Position{X: 50, Y: 60}) {
		t.Errorf("expected layout position, got %v", n.Pos)
	}
	if n.Done() {
		t.Error("text nodes are never done")
	}
}

func TestBuild_DanglingEdgeExcludedNotDeleted(t *testing.T) {
	b := emptyBoard()
	b.Data.Edges = append(b.Data.Edges,
		board.Edge{ID: "t1->gone", Source: "t1", Target: "gone"},
		board.Edge{ID: "t1->t2", Source: "t1", Target: "t2"},
	)
	visible := []index.Task{task("t1", " "), task("t2", " ")}

	g := Build(visible, b)

	if len(g.Edges) != 1 || g.Edges[0].ID != "t1->t2" {
		t.Errorf("expected only the resolvable edge, got %v", g.Edges)
	}
	// Storage is untouched; the dangling edge may resolve again later.
	if len(b.Data.Edges) != 2 {
		t.Errorf("merge mutated stored edges: %v", b.Data.Edges)
	}
}

func TestBuild_AdjacencySortedAndDeduped(t *testing.T) {
	b := emptyBoard()
	b.Data.Edges = append(b.Data.Edges,
		board.Edge{ID: "a->c", Source: "a", Target: "c"},
		board.Edge{ID: "a->b", Source: "a", Target: "b"},
		board.Edge{ID: "a->b", Source: "a", Target: "b"},
	)
	visible := []index.Task{task("a", " "), task("b", " "), task("c", " ")}

	g := Build(visible, b)

	if len(g.Edges) != 2 {
		t.Fatalf("expected 2 edges after dedupe, got %d", len(g.Edges))
	}
	adj := g.Adj["a"]
	if len(adj) != 2 || adj[0] != "b" || adj[1] != "c" {
		t.Errorf("adjacency not sorted: %v", adj)
	}
	if len(g.RevAdj["b"]) != 1 {
		t.Errorf("reverse adjacency wrong: %v", g.RevAdj["b"])
	}
}
