package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/graph"
	"github.com/joshharrison/taskloom/internal/index"
	"github.com/joshharrison/taskloom/internal/ui"
)

// Reporter provides terminal and JSON status output for a board.
type Reporter struct {
	Store *board.Store
	Index *index.Index
}

// New creates a new Reporter.
func New(st *board.Store, ix *index.Index) *Reporter {
	return &Reporter{Store: st, Index: ix}
}

// PrintBoards writes a table of all boards, marking the active one.
func (r *Reporter) PrintBoards(w io.Writer) {
	active := r.Store.Active()

	fmt.Fprintf(w, "%s\n\n", ui.BoldCyan("🧵 Taskloom Boards"))
	for _, b := range r.Store.Boards() {
		marker := " "
		if b.ID == active.ID {
			marker = ui.BoldGreen("●")
		}
		visible := len(board.Visible(&b, r.Index))
		name := b.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(w, "  %s %-30s %s  %s\n",
			marker, name,
			ui.Dim(b.ID),
			ui.Cyan(fmt.Sprintf("%d tasks", visible)))
		if len(b.Filters.Folders) > 0 {
			fmt.Fprintf(w, "      %s %s\n", ui.Dim("folders:"), strings.Join(b.Filters.Folders, ", "))
		}
		if len(b.Filters.Tags) > 0 {
			fmt.Fprintf(w, "      %s %s\n", ui.Dim("tags:"), strings.Join(b.Filters.Tags, ", "))
		}
	}
	fmt.Fprintln(w)
}

// PrintTasks writes a terminal-friendly task table for one board, grouped
// by source file in scan order.
func (r *Reporter) PrintTasks(w io.Writer, b *board.Board) {
	tasks := board.Visible(b, r.Index)

	done := 0
	for _, t := range tasks {
		if t.Marker == index.MarkerDone {
			done++
		}
	}

	fmt.Fprintf(w, "%s %s — %d of %d tasks done\n\n",
		ui.BoldCyan("🧵 Taskloom"),
		ui.BoardPrefix(b.ID, b.Name),
		done, len(tasks))

	var file string
	for _, t := range tasks {
		if t.Path != file {
			file = t.Path
			fmt.Fprintf(w, "  📄 %s\n", ui.BoldWhite(file))
		}
		r.printTask(w, b, t)
	}
	fmt.Fprintln(w)
}

func (r *Reporter) printTask(w io.Writer, b *board.Board, t index.Task) {
	icon := ui.MarkerIcon(t.Marker)

	status := b.Data.NodeStatus[t.ID]
	statusCol := ""
	if status != "" && status != board.StatusDefault {
		statusCol = ui.StatusLabel(status)
	}

	anchored := " "
	if t.Anchored() {
		anchored = ui.Dim("^")
	}

	text := t.Text
	if len(text) > 50 {
		text = text[:47] + "..."
	}

	fmt.Fprintf(w, "    %s %-50s %s %s  %s\n",
		icon, text, anchored, ui.Dim(fmt.Sprintf("L%d", t.Line+1)), statusCol)
}

// PrintTags writes tag usage counts across the vault, most used first.
func (r *Reporter) PrintTags(w io.Writer) {
	counts := r.Index.TagCounts()

	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})

	fmt.Fprintf(w, "%s\n\n", ui.BoldCyan("🧵 Vault Tags"))
	for _, tag := range tags {
		fmt.Fprintf(w, "  %s %s\n", ui.Yellow(tag), ui.Dim(fmt.Sprintf("×%d", counts[tag])))
	}
	fmt.Fprintln(w)
}

// BoardJSON returns machine-readable board status.
func (r *Reporter) BoardJSON(b *board.Board) ([]byte, error) {
	type taskOut struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		Marker   string `json:"marker"`
		File     string `json:"file"`
		Line     int    `json:"line"`
		Anchored bool   `json:"anchored"`
		Status   string `json:"status"`
	}

	type output struct {
		BoardID string    `json:"board_id"`
		Name    string    `json:"name"`
		Filters any       `json:"filters"`
		Tasks   []taskOut `json:"tasks"`
		Edges   int       `json:"edges"`
	}

	o := output{
		BoardID: b.ID,
		Name:    b.Name,
		Filters: b.Filters,
		Edges:   len(b.Data.Edges),
	}

	for _, t := range board.Visible(b, r.Index) {
		status := b.Data.NodeStatus[t.ID]
		if status == "" {
			status = board.StatusDefault
		}
		o.Tasks = append(o.Tasks, taskOut{
			ID:       t.ID,
			Text:     t.Text,
			Marker:   t.Marker,
			File:     t.Path,
			Line:     t.Line,
			Anchored: t.Anchored(),
			Status:   status,
		})
	}

	return json.MarshalIndent(o, "", "  ")
}

// Summary returns a one-shot vault summary string.
func (r *Reporter) Summary(g *graph.Graph) string {
	var b strings.Builder

	all := r.Index.AllTasks()
	done := 0
	anchored := 0
	for _, t := range all {
		if t.Marker == index.MarkerDone {
			done++
		}
		if t.Anchored() {
			anchored++
		}
	}

	fmt.Fprintf(&b, "\n🧵 %s\n", ui.BoldCyan("Taskloom Vault Summary"))
	fmt.Fprintf(&b, "%s\n", ui.Cyan("══════════════════════════"))
	fmt.Fprintf(&b, "Files:     %d\n", len(r.Index.Paths()))
	fmt.Fprintf(&b, "Tasks:     %s, %s, %d total\n",
		ui.Green(fmt.Sprintf("%d done", done)),
		ui.Yellow(fmt.Sprintf("%d open", len(all)-done)),
		len(all))
	fmt.Fprintf(&b, "Anchored:  %d\n", anchored)
	fmt.Fprintf(&b, "Boards:    %d\n", len(r.Store.Boards()))
	if g != nil {
		fmt.Fprintf(&b, "Graph:     %d nodes, %d edges\n", g.NodeCount(), len(g.Edges))
	}

	return b.String()
}
