package index

import (
	"regexp"
	"strconv"
	"strings"
)

// Markers this system understands on read. Only ' ', '/' and 'x' are ever
// written back; the rest are tolerated extended vocabulary.
const (
	MarkerTodo       = " "
	MarkerInProgress = "/"
	MarkerDone       = "x"
)

// Task is one checklist line scraped from a markdown file.
type Task struct {
	ID     string // stable identity: path::^anchor or path::#texthash
	Text   string // display text, prefix and anchor stripped
	Raw    string // the full line as it appears in the file
	Marker string // single-character completion marker
	File   string // base name without extension
	Path   string // slash-separated vault path
	Line   int    // zero-based line number
	Anchor string // explicit block anchor token, "" when identity is hash-derived
}

// Anchored reports whether the task carries a durable block anchor.
func (t *Task) Anchored() bool { return t.Anchor != "" }

var (
	checklistRe = regexp.MustCompile(`^\s*[-*] \[(.)\] (.*)$`)
	anchorRe    = regexp.MustCompile(`\s\^([0-9A-Za-z][0-9A-Za-z-]*)\s*$`)
	doneDateRe  = regexp.MustCompile(`\s*✅ \d{4}-\d{2}-\d{2}`)
)

// ParseTasks scans file content for checklist lines and derives a stable
// identity for each. Scanning the same content twice yields identical IDs
// in identical order.
func ParseTasks(path, content string) []Task {
	base := path
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.TrimSuffix(base, ".md")

	seen := make(map[string]bool)
	var tasks []Task
	for lineNo, line := range strings.Split(content, "\n") {
		m := checklistRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		marker, body := m[1], m[2]

		anchor := ""
		text := body
		if am := anchorRe.FindStringSubmatch(body); am != nil {
			anchor = am[1]
			text = strings.TrimSpace(body[:len(body)-len(am[0])])
		}
		text = strings.TrimSpace(text)

		var id string
		if anchor != "" {
			id = path + "::^" + anchor
		} else {
			id = uniqueID(path+"::#"+textHash(text), seen)
		}
		seen[id] = true

		tasks = append(tasks, Task{
			ID:     id,
			Text:   text,
			Raw:    line,
			Marker: marker,
			File:   base,
			Path:   path,
			Line:   lineNo,
			Anchor: anchor,
		})
	}
	return tasks
}

// textHash is the best-effort fallback identity for unanchored lines: the
// first 30 characters of the cleaned text with non-alphanumerics removed.
// It changes when the visible text changes; anchoring on first persisted
// use is the mitigation, not this function.
func textHash(text string) string {
	clean := doneDateRe.ReplaceAllString(text, "")
	runes := []rune(clean)
	if len(runes) > 30 {
		runes = runes[:30]
	}
	var b strings.Builder
	for _, r := range runes {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// uniqueID resolves same-scan collisions deterministically by suffixing _N.
func uniqueID(id string, seen map[string]bool) string {
	if !seen[id] {
		return id
	}
	for n := 1; ; n++ {
		candidate := id + "_" + strconv.Itoa(n)
		if !seen[candidate] {
			return candidate
		}
	}
}
