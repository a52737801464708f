// Package board holds the named view configurations: filter criteria plus
// the per-board overlay data (positions, edges, decorative statuses, text
// nodes) keyed by stable node identity. The Store is the durable owner of
// this data; the graph model merges it with the live task index.
package board

import "github.com/google/uuid"

// Decorative workflow statuses a user can pin on a node. Distinct from the
// file-derived checklist marker.
const (
	StatusDefault    = "default"
	StatusBacklog    = "backlog"
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusFinished   = "finished"
)

// ValidStatus reports whether s is a known decorative status.
func ValidStatus(s string) bool {
	switch s {
	case StatusDefault, StatusBacklog, StatusPending, StatusInProgress, StatusBlocked, StatusFinished:
		return true
	}
	return false
}

// Position is a 2D node coordinate within a board.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a user-drawn directed dependency link between two node
// identities. Animated is presentation-only.
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Animated bool   `json:"animated"`
}

// EdgeID derives the deterministic edge identity for a source/target pair.
func EdgeID(source, target string) string {
	return source + "->" + target
}

// TextNode is a free-floating annotation owned entirely by board storage.
type TextNode struct {
	ID   string  `json:"id"`
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Filters are a board's declarative visibility criteria. Empty lists mean
// "no restriction" for that dimension.
type Filters struct {
	Tags        []string `json:"tags"`
	ExcludeTags []string `json:"excludeTags"`
	Folders     []string `json:"folders"`
	Status      []string `json:"status"`
}

// Data is the board's overlay bag, keyed by node identity.
type Data struct {
	Layout     map[string]Position `json:"layout"`
	Edges      []Edge              `json:"edges"`
	NodeStatus map[string]string   `json:"nodeStatus"`
	TextNodes  []TextNode          `json:"textNodes"`
}

// Board is one named, independently-configured view.
type Board struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Filters Filters `json:"filters"`
	Data    Data    `json:"data"`
}

// Settings is the full persisted blob, written to the settings store as a
// unit.
type Settings struct {
	Boards            []Board `json:"boards"`
	LastActiveBoardID string  `json:"lastActiveBoardId"`
}

// DefaultBoard is the board every fresh install starts with: todo and
// in-progress tasks, no tag or folder restriction.
func DefaultBoard() Board {
	return Board{
		ID:   "default",
		Name: "Main Board",
		Filters: Filters{
			Tags:        []string{},
			ExcludeTags: []string{},
			Folders:     []string{},
			Status:      []string{" ", "/"},
		},
		Data: emptyData(),
	}
}

func emptyData() Data {
	return Data{
		Layout:     make(map[string]Position),
		Edges:      []Edge{},
		NodeStatus: make(map[string]string),
		TextNodes:  []TextNode{},
	}
}

// NewTextNode creates a text annotation with a fresh id.
func NewTextNode(text string, x, y float64) TextNode {
	return TextNode{
		ID:   "text-" + uuid.NewString(),
		Text: text,
		X:    x,
		Y:    y,
	}
}

// NewBoard creates a board with a fresh id and empty data bag.
func NewBoard(name string) Board {
	return Board{
		ID:   uuid.NewString(),
		Name: name,
		Filters: Filters{
			Tags:        []string{},
			ExcludeTags: []string{},
			Folders:     []string{},
			Status:      []string{" ", "/"},
		},
		Data: emptyData(),
	}
}
