package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
)

// ErrLastBoard is returned when deleting the only remaining board.
var ErrLastBoard = fmt.Errorf("cannot delete the only board")

// ErrNoBoard is returned when a board id resolves to nothing.
var ErrNoBoard = fmt.Errorf("no such board")

// Store owns the durable copy of all boards. Every mutation persists the
// whole settings blob atomically before returning. Components that need
// board data receive the Store by reference; there is no ambient global.
type Store struct {
	path string

	mu       sync.Mutex
	settings Settings
}

// Load reads the settings blob at path, healing whatever it finds into a
// valid Settings value. A missing file yields the default single board. A
// blob that fails schema validation is salvaged field-by-field rather than
// discarded, so one corrupt entry does not wipe every board.
func Load(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.settings = Settings{Boards: []Board{DefaultBoard()}, LastActiveBoardID: "default"}
			return s, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var doc any
	strict := json.Unmarshal(data, &doc) == nil && compiledSchema.Validate(doc) == nil
	if strict {
		if err := json.Unmarshal(data, &s.settings); err != nil {
			strict = false
		}
	}
	if !strict {
		log.Warn("settings blob failed validation, salvaging", "path", path)
		s.settings = salvageSettings(data)
	}

	heal(&s.settings)
	return s, nil
}

// salvageSettings recovers whatever board data can be read from a blob that
// does not match the schema: legacy shapes, extra presentation fields on
// edges, stray junk. Unrecoverable pieces are dropped.
func salvageSettings(data []byte) Settings {
	var out Settings
	root := gjson.ParseBytes(data)

	root.Get("boards").ForEach(func(_, b gjson.Result) bool {
		id := b.Get("id").String()
		if id == "" {
			return true
		}
		board := Board{
			ID:   id,
			Name: b.Get("name").String(),
			Filters: Filters{
				Tags:        stringList(b.Get("filters.tags")),
				ExcludeTags: stringList(b.Get("filters.excludeTags")),
				Folders:     stringList(b.Get("filters.folders")),
				Status:      stringList(b.Get("filters.status")),
			},
			Data: emptyData(),
		}
		if board.Name == "" {
			board.Name = id
		}

		b.Get("data.layout").ForEach(func(key, pos gjson.Result) bool {
			board.Data.Layout[key.String()] = Position{
				X: pos.Get("x").Float(),
				Y: pos.Get("y").Float(),
			}
			return true
		})
		b.Get("data.edges").ForEach(func(_, e gjson.Result) bool {
			source, target := e.Get("source").String(), e.Get("target").String()
			if source == "" || target == "" {
				return true
			}
			board.Data.Edges = append(board.Data.Edges, Edge{
				ID:       EdgeID(source, target),
				Source:   source,
				Target:   target,
				Animated: e.Get("animated").Bool(),
			})
			return true
		})
		b.Get("data.nodeStatus").ForEach(func(key, val gjson.Result) bool {
			if ValidStatus(val.String()) {
				board.Data.NodeStatus[key.String()] = val.String()
			}
			return true
		})
		b.Get("data.textNodes").ForEach(func(_, tn gjson.Result) bool {
			if tn.Get("id").String() == "" {
				return true
			}
			board.Data.TextNodes = append(board.Data.TextNodes, TextNode{
				ID:   tn.Get("id").String(),
				Text: tn.Get("text").String(),
				X:    tn.Get("x").Float(),
				Y:    tn.Get("y").Float(),
			})
			return true
		})

		out.Boards = append(out.Boards, board)
		return true
	})

	out.LastActiveBoardID = root.Get("lastActiveBoardId").String()
	return out
}

func stringList(r gjson.Result) []string {
	out := []string{}
	r.ForEach(func(_, v gjson.Result) bool {
		out = append(out, v.String())
		return true
	})
	return out
}

// heal enforces the settings invariants: at least one board, nil maps
// replaced, a resolvable active board.
func heal(s *Settings) {
	if len(s.Boards) == 0 {
		s.Boards = []Board{DefaultBoard()}
	}
	for i := range s.Boards {
		d := &s.Boards[i].Data
		if d.Layout == nil {
			d.Layout = make(map[string]Position)
		}
		if d.NodeStatus == nil {
			d.NodeStatus = make(map[string]string)
		}
		if d.Edges == nil {
			d.Edges = []Edge{}
		}
		if d.TextNodes == nil {
			d.TextNodes = []TextNode{}
		}
	}
	for _, b := range s.Boards {
		if b.ID == s.LastActiveBoardID {
			return
		}
	}
	s.LastActiveBoardID = s.Boards[0].ID
}

// saveLocked persists the blob atomically. Caller must hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename settings: %w", err)
	}
	return nil
}

func (s *Store) boardLocked(id string) *Board {
	for i := range s.settings.Boards {
		if s.settings.Boards[i].ID == id {
			return &s.settings.Boards[i]
		}
	}
	return nil
}

// Boards returns a copy of all boards in stored order.
func (s *Store) Boards() []Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Board, len(s.settings.Boards))
	copy(out, s.settings.Boards)
	return out
}

// Board returns a copy of one board by id.
func (s *Store) Board(id string) (Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return Board{}, fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	return *b, nil
}

// Active returns a copy of the active board.
func (s *Store) Active() Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b := s.boardLocked(s.settings.LastActiveBoardID); b != nil {
		return *b
	}
	return s.settings.Boards[0]
}

// SetActive switches the active board and persists.
func (s *Store) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boardLocked(id) == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	s.settings.LastActiveBoardID = id
	return s.saveLocked()
}

// Create adds a new board, makes it active, and persists. An empty name
// gets the next "Board N" auto-name.
func (s *Store) Create(name string) (Board, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name == "" {
		name = fmt.Sprintf("Board %d", len(s.settings.Boards)+1)
	}
	b := NewBoard(name)
	s.settings.Boards = append(s.settings.Boards, b)
	s.settings.LastActiveBoardID = b.ID
	return b, s.saveLocked()
}

// Rename changes a board's display name and persists.
func (s *Store) Rename(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	b.Name = name
	return s.saveLocked()
}

// Delete removes a board. Deleting the last board is forbidden; the
// settings are untouched in that case.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.settings.Boards) <= 1 {
		return ErrLastBoard
	}
	idx := -1
	for i := range s.settings.Boards {
		if s.settings.Boards[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	s.settings.Boards = append(s.settings.Boards[:idx], s.settings.Boards[idx+1:]...)
	if s.settings.LastActiveBoardID == id {
		s.settings.LastActiveBoardID = s.settings.Boards[0].ID
	}
	return s.saveLocked()
}

// SetFilters replaces a board's filter criteria and persists.
func (s *Store) SetFilters(id string, f Filters) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	b.Filters = f
	return s.saveLocked()
}

// SetLayout replaces a board's stored layout map and persists. Callers
// merging a new layout over hidden nodes' saved positions do the merge
// before handing the map over.
func (s *Store) SetLayout(id string, layout map[string]Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	if layout == nil {
		layout = make(map[string]Position)
	}
	b.Data.Layout = layout
	return s.saveLocked()
}

// SetNodePosition stores one node's position and persists.
func (s *Store) SetNodePosition(id, nodeID string, pos Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	b.Data.Layout[nodeID] = pos
	return s.saveLocked()
}

// AddEdge records a user-drawn connection and persists. Re-adding an
// existing pair is a no-op.
func (s *Store) AddEdge(id, source, target string) (Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return Edge{}, fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	eid := EdgeID(source, target)
	for _, e := range b.Data.Edges {
		if e.ID == eid {
			return e, nil
		}
	}
	e := Edge{ID: eid, Source: source, Target: target, Animated: true}
	b.Data.Edges = append(b.Data.Edges, e)
	return e, s.saveLocked()
}

// RemoveEdge deletes a connection by edge id and persists.
func (s *Store) RemoveEdge(id, edgeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	edges := b.Data.Edges[:0]
	for _, e := range b.Data.Edges {
		if e.ID != edgeID {
			edges = append(edges, e)
		}
	}
	b.Data.Edges = edges
	return s.saveLocked()
}

// SetNodeStatus pins a decorative status on a node and persists. The
// "default" status removes the entry instead of storing it.
func (s *Store) SetNodeStatus(id, nodeID, status string) error {
	if !ValidStatus(status) {
		return fmt.Errorf("unknown status: %s", status)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	if status == StatusDefault {
		delete(b.Data.NodeStatus, nodeID)
	} else {
		b.Data.NodeStatus[nodeID] = status
	}
	return s.saveLocked()
}

// AddTextNode creates a free-floating annotation and persists.
func (s *Store) AddTextNode(id string, tn TextNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	b.Data.TextNodes = append(b.Data.TextNodes, tn)
	return s.saveLocked()
}

// RemoveTextNode deletes an annotation and any overlay entries keyed by it,
// then persists.
func (s *Store) RemoveTextNode(id, nodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	nodes := b.Data.TextNodes[:0]
	for _, tn := range b.Data.TextNodes {
		if tn.ID != nodeID {
			nodes = append(nodes, tn)
		}
	}
	b.Data.TextNodes = nodes
	delete(b.Data.Layout, nodeID)
	delete(b.Data.NodeStatus, nodeID)
	pruneEdgesLocked(b, nodeID)
	return s.saveLocked()
}

func pruneEdgesLocked(b *Board, nodeID string) {
	edges := b.Data.Edges[:0]
	for _, e := range b.Data.Edges {
		if e.Source != nodeID && e.Target != nodeID {
			edges = append(edges, e)
		}
	}
	b.Data.Edges = edges
}

// ClearLayout wipes a board's saved positions. Filters, edges and statuses
// survive; the merge falls back to the deterministic grid.
func (s *Store) ClearLayout(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	b.Data.Layout = make(map[string]Position)
	return s.saveLocked()
}

// RewriteNodeID atomically moves every overlay entry keyed by oldID to
// newID: layout, decorative status, and both ends of every edge. Used when
// a node migrates from a text-hash identity to an anchored one.
func (s *Store) RewriteNodeID(id, oldID, newID string) error {
	if oldID == newID {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.boardLocked(id)
	if b == nil {
		return fmt.Errorf("%w: %s", ErrNoBoard, id)
	}
	if pos, ok := b.Data.Layout[oldID]; ok {
		delete(b.Data.Layout, oldID)
		b.Data.Layout[newID] = pos
	}
	if st, ok := b.Data.NodeStatus[oldID]; ok {
		delete(b.Data.NodeStatus, oldID)
		b.Data.NodeStatus[newID] = st
	}
	for i := range b.Data.Edges {
		e := &b.Data.Edges[i]
		if e.Source == oldID {
			e.Source = newID
		}
		if e.Target == oldID {
			e.Target = newID
		}
		e.ID = EdgeID(e.Source, e.Target)
	}
	return s.saveLocked()
}
