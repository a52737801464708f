package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/index"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintLogo renders the colored taskloom logo to stderr.
func PrintLogo() {
	w := os.Stderr
	frame := color.New(color.FgCyan)
	boxes := color.New(color.FgYellow)
	threads := color.New(color.FgCyan, color.Faint)
	sep := color.New(color.FgCyan)
	brand := color.New(color.Bold, color.FgMagenta)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	boxes.Fprintln(w, "   |  ☐  ☐  ☐  ☐  ☐  ☐  ☐  ☐  |")
	threads.Fprintln(w, "   |  |  |  |  |  |  |  |  |  |")
	sep.Fprintln(w, "   |==========================|")
	brand.Fprintln(w, "   |  T  A  S  K  L  O  O  M  |")
	sep.Fprintln(w, "   |==========================|")
	threads.Fprintln(w, "   |  |  |  |  |  |  |  |  |  |")
	boxes.Fprintln(w, "   |  ☑  ☑  ☑  ☑  ☑  ☑  ☑  ☑  |")
	frame.Fprintln(w, "   +--------------------------+")
	tag.Fprintf(w, "   %s Task graphs for markdown vaults\n", Dim("🧵"))
	fmt.Fprintln(w)
}

// boardColors is a palette of distinct bold colors for differentiating boards.
var boardColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// boardColorIndex hashes a board ID to a palette index.
func boardColorIndex(boardID string) int {
	var h uint32
	for _, c := range boardID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(boardColors)))
}

// BoardPrefix returns a colored [board-name] prefix string.
// Each board ID gets a distinct color from the palette.
func BoardPrefix(boardID, name string) string {
	c := boardColors[boardColorIndex(boardID)]
	return Dim("[") + c(name) + Dim("]")
}

// MarkerIcon returns a colored icon for a checkbox marker.
func MarkerIcon(marker string) string {
	switch marker {
	case index.MarkerDone:
		return Green("✓")
	case index.MarkerInProgress:
		return Cyan("◐")
	case index.MarkerTodo:
		return Dim("◌")
	default:
		return Yellow(marker)
	}
}

// StatusLabel returns a colored display-status string for table output.
func StatusLabel(status string) string {
	switch status {
	case board.StatusFinished:
		return Green("finished")
	case board.StatusInProgress:
		return BoldCyan("in-progress")
	case board.StatusBlocked:
		return Red("blocked")
	case board.StatusPending:
		return Yellow("pending")
	case board.StatusBacklog:
		return Dim("backlog")
	default:
		return Dim("default")
	}
}
