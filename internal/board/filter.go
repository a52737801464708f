package board

import (
	"strings"

	"github.com/joshharrison/taskloom/internal/index"
)

// Visible applies a board's filter criteria to the task index and returns
// the visible tasks in file/line encounter order.
//
// The status filter has one carve-out: a task that participates in at
// least one edge on the board stays visible regardless of its marker, so a
// finished dependency does not vanish from its dependents' view.
func Visible(b *Board, ix *index.Index) []index.Task {
	connected := make(map[string]bool, len(b.Data.Edges)*2)
	for _, e := range b.Data.Edges {
		connected[e.Source] = true
		connected[e.Target] = true
	}

	statusSet := make(map[string]bool, len(b.Filters.Status))
	for _, st := range b.Filters.Status {
		statusSet[st] = true
	}

	var visible []index.Task
	for _, path := range ix.Paths() {
		if !folderMatch(path, b.Filters.Folders) {
			continue
		}
		for _, t := range ix.TasksFor(path) {
			if len(statusSet) > 0 && !statusSet[t.Marker] && !connected[t.ID] {
				continue
			}
			if len(b.Filters.Tags) > 0 && !containsAny(t.Raw, b.Filters.Tags) {
				continue
			}
			if containsAny(t.Raw, b.Filters.ExcludeTags) {
				continue
			}
			visible = append(visible, t)
		}
	}
	return visible
}

func folderMatch(path string, folders []string) bool {
	if len(folders) == 0 {
		return true
	}
	for _, f := range folders {
		if strings.HasPrefix(path, f) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
