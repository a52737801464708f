// Package graph reconciles the filtered task list with a board's persisted
// position/status/edge overlays into the renderable node/edge set. It is
// rebuilt from its inputs on every access and never mutates the index or
// the store.
package graph

import (
	"sort"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/index"
)

// Fallback grid used when a node has no saved position: three columns of
// fixed-size cells keyed by the task's ordinal in the visible list.
const (
	FallbackCols       = 3
	FallbackCellWidth  = 320.0
	FallbackCellHeight = 200.0
)

// Build merges the visible tasks with the board's overlay data.
//
// Saved positions win over the fallback grid. A done checklist marker
// forces the decorative status to "finished", overriding any stale saved
// value. Edges whose endpoints no longer resolve are excluded from the
// result but left in storage; the next explicit edit prunes them.
func Build(visible []index.Task, b *board.Board) *Graph {
	g := &Graph{
		Adj:    make(map[string][]string),
		RevAdj: make(map[string][]string),
		byID:   make(map[string]int),
	}

	for i := range visible {
		t := visible[i]
		pos, ok := b.Data.Layout[t.ID]
		if !ok {
			pos = board.Position{
				X: float64(i%FallbackCols) * FallbackCellWidth,
				Y: float64(i/FallbackCols) * FallbackCellHeight,
			}
		}
		status := b.Data.NodeStatus[t.ID]
		if status == "" {
			status = board.StatusDefault
		}
		if t.Marker == index.MarkerDone {
			status = board.StatusFinished
		}
		g.byID[t.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:     t.ID,
			Kind:   KindTask,
			Task:   &visible[i],
			Pos:    pos,
			Status: status,
		})
	}

	for _, tn := range b.Data.TextNodes {
		pos, ok := b.Data.Layout[tn.ID]
		if !ok {
			pos = board.Position{X: tn.X, Y: tn.Y}
		}
		g.byID[tn.ID] = len(g.Nodes)
		g.Nodes = append(g.Nodes, Node{
			ID:     tn.ID,
			Kind:   KindText,
			Text:   tn.Text,
			Pos:    pos,
			Status: board.StatusDefault,
		})
	}

	// Dedupe edges and drop the ones that no longer resolve.
	edgeSet := make(map[string]bool)
	for _, e := range b.Data.Edges {
		if edgeSet[e.ID] {
			continue
		}
		if _, ok := g.byID[e.Source]; !ok {
			continue
		}
		if _, ok := g.byID[e.Target]; !ok {
			continue
		}
		edgeSet[e.ID] = true
		g.Edges = append(g.Edges, e)
		g.Adj[e.Source] = append(g.Adj[e.Source], e.Target)
		g.RevAdj[e.Target] = append(g.RevAdj[e.Target], e.Source)
	}

	// Deterministic adjacency ordering.
	for k := range g.Adj {
		sort.Strings(g.Adj[k])
	}
	for k := range g.RevAdj {
		sort.Strings(g.RevAdj[k])
	}

	return g
}
