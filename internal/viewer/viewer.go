// Package viewer exposes board graphs over HTTP for external renderers.
// The server never holds graph state of its own; every request rebuilds
// from the live index and settings so responses always reflect the vault.
package viewer

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/editor"
	"github.com/joshharrison/taskloom/internal/graph"
	"github.com/joshharrison/taskloom/internal/index"
	"github.com/joshharrison/taskloom/internal/layout"
	"github.com/joshharrison/taskloom/internal/vault"
)

// --- Wire types (matches the canvas renderer's Graph schema) ---

type GraphNode struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Text   string  `json:"text"`
	Marker string  `json:"marker,omitempty"`
	Status string  `json:"status"`
	File   string  `json:"file,omitempty"`
	Line   int     `json:"line"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type GraphEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

type Graph struct {
	BoardID string      `json:"board_id"`
	Name    string      `json:"name"`
	Nodes   []GraphNode `json:"nodes"`
	Edges   []GraphEdge `json:"edges"`
}

// toGraph converts a materialised board graph into the wire shape.
func toGraph(b *board.Board, g *graph.Graph) *Graph {
	out := &Graph{BoardID: b.ID, Name: b.Name, Nodes: []GraphNode{}, Edges: []GraphEdge{}}
	for i := range g.Nodes {
		n := &g.Nodes[i]
		gn := GraphNode{
			ID:     n.ID,
			Status: n.Status,
			X:      n.Pos.X,
			Y:      n.Pos.Y,
		}
		switch n.Kind {
		case graph.KindTask:
			gn.Kind = "task"
			gn.Text = n.Task.Text
			gn.Marker = n.Task.Marker
			gn.File = n.Task.Path
			gn.Line = n.Task.Line
		case graph.KindText:
			gn.Kind = "text"
			gn.Text = n.Text
		}
		out.Nodes = append(out.Nodes, gn)
	}
	for _, e := range g.Edges {
		out.Edges = append(out.Edges, GraphEdge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return out
}

// --- HTTP server ---

type server struct {
	mu    sync.Mutex
	vault *vault.Vault
	store *board.Store
	index *index.Index
}

// boardFor resolves the ?board query parameter, falling back to the
// active board.
func (s *server) boardFor(r *http.Request) (board.Board, error) {
	if id := r.URL.Query().Get("board"); id != "" {
		return s.store.Board(id)
	}
	return s.store.Active(), nil
}

func (s *server) buildGraph(b *board.Board) *graph.Graph {
	return graph.Build(board.Visible(b, s.index), b)
}

func (s *server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	b, err := s.boardFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.mu.Lock()
	g := s.buildGraph(&b)
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toGraph(&b, g))
}

// handlePostLayout recomputes positions for a board and persists them.
func (s *server) handlePostLayout(w http.ResponseWriter, r *http.Request) {
	b, err := s.boardFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Pin identities first so the persisted positions survive future
	// text edits.
	if err := editor.AnchorTasks(s.vault, s.store, s.index, b.ID, board.Visible(&b, s.index)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	b, err = s.store.Board(b.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	g := s.buildGraph(&b)
	points := layout.Compute(g.LayoutNodes(), g.LayoutEdges())

	merged := make(map[string]board.Position, len(b.Data.Layout)+len(points))
	for id, pos := range b.Data.Layout {
		merged[id] = pos
	}
	for id, p := range points {
		merged[id] = board.Position{X: p.X, Y: p.Y}
	}
	if err := s.store.SetLayout(b.ID, merged); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(points)
}

func (s *server) handleGetBoards(w http.ResponseWriter, r *http.Request) {
	type boardOut struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	active := s.store.Active()
	out := []boardOut{}
	for _, b := range s.store.Boards() {
		out = append(out, boardOut{ID: b.ID, Name: b.Name, Active: b.ID == active.ID})
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Start launches the viewer HTTP server on the given port in the background.
// Returns the base URL (e.g. "http://localhost:7171") or an error.
func Start(port int, v *vault.Vault, st *board.Store, ix *index.Index) (string, error) {
	srv := &server{vault: v, store: st, index: ix}
	mux := http.NewServeMux()

	mux.HandleFunc("/graph", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handleGetGraph(w, r)
	})
	mux.HandleFunc("/layout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handlePostLayout(w, r)
	})
	mux.HandleFunc("/boards", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		srv.handleGetBoards(w, r)
	})

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return "", fmt.Errorf("listen on port %d: %w", port, err)
	}

	go func() {
		if err := http.Serve(ln, mux); err != nil {
			log.Debug("viewer server stopped", "err", err)
		}
	}()

	addr := fmt.Sprintf("http://localhost:%d", port)
	return addr, nil
}

// IsPortOpen checks if something is listening on the given address.
func IsPortOpen(addr string) bool {
	conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
