// Package editor applies user-initiated task edits to the backing markdown:
// completion toggles, text edits, new tasks, and anchor migration. Every
// operation re-reads the file fresh before writing so a concurrent external
// edit is not clobbered, and a target that no longer exists is a silent
// no-op; the next index rebuild reconciles state.
package editor

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/index"
	"github.com/joshharrison/taskloom/internal/vault"
)

// lineRe splits a checklist line into prefix, marker, text and optional
// trailing anchor so rewrites preserve everything around the edited part.
var lineRe = regexp.MustCompile(`^(\s*[-*] \[)(.)(\] )(.*?)(\s+\^[0-9A-Za-z][0-9A-Za-z-]*)?\s*$`)

var (
	doneDateRe   = regexp.MustCompile(`\s*✅ \d{4}-\d{2}-\d{2}`)
	anchorLikeRe = regexp.MustCompile(`\s*\^[0-9A-Za-z][0-9A-Za-z-]*`)
)

// ToggleDone flips a task between todo and done. Any non-done marker
// toggles to done; done toggles back to todo. Marking done appends a
// completion-date annotation; unmarking strips it. The anchor and
// surrounding decoration survive the rewrite.
func ToggleDone(v *vault.Vault, path string, line int, now time.Time) error {
	return rewriteLine(v, path, line, func(marker, text string) (string, string) {
		if marker == index.MarkerDone {
			return index.MarkerTodo, stripDoneDate(text)
		}
		return index.MarkerDone, stripDoneDate(text) + " ✅ " + now.Format("2006-01-02")
	})
}

// SetMarker writes an explicit completion marker. Only the markers this
// system emits are accepted.
func SetMarker(v *vault.Vault, path string, line int, marker string) error {
	switch marker {
	case index.MarkerTodo, index.MarkerInProgress, index.MarkerDone:
	default:
		return fmt.Errorf("unwritable marker %q", marker)
	}
	return rewriteLine(v, path, line, func(_, text string) (string, string) {
		if marker != index.MarkerDone {
			text = stripDoneDate(text)
		}
		return marker, text
	})
}

// EditText replaces a task's visible text, preserving the checklist prefix
// and trailing anchor. Anchor-like tokens inside the replacement are
// stripped so a line never carries two anchors.
func EditText(v *vault.Vault, path string, line int, newText string) error {
	clean := strings.TrimSpace(anchorLikeRe.ReplaceAllString(newText, ""))
	return rewriteLine(v, path, line, func(marker, _ string) (string, string) {
		return marker, clean
	})
}

// rewriteLine applies edit to the marker/text of one checklist line and
// writes the file back. Missing file or line: silent no-op. Malformed
// line: conservative full-line replacement as an unchecked task, logged.
func rewriteLine(v *vault.Vault, path string, line int, edit func(marker, text string) (string, string)) error {
	content, err := v.Read(path)
	if err != nil {
		log.Debug("edit target gone, skipping", "path", path, "err", err)
		return nil
	}
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		log.Debug("edit target line gone, skipping", "path", path, "line", line)
		return nil
	}

	m := lineRe.FindStringSubmatch(lines[line])
	if m == nil {
		log.Warn("malformed checklist line, replacing whole line", "path", path, "line", line)
		marker, text := edit(index.MarkerTodo, strings.TrimSpace(lines[line]))
		lines[line] = "- [" + marker + "] " + text
		return v.Write(path, strings.Join(lines, "\n"))
	}

	prefix, marker, bracket, text, anchor := m[1], m[2], m[3], m[4], m[5]
	marker, text = edit(marker, strings.TrimSpace(text))
	lines[line] = prefix + marker + bracket + text + anchor
	return v.Write(path, strings.Join(lines, "\n"))
}

func stripDoneDate(text string) string {
	return strings.TrimSpace(doneDateRe.ReplaceAllString(text, ""))
}

const anchorAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewAnchor generates a random lowercase base-36 anchor token.
func NewAnchor() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = anchorAlphabet[rand.Intn(len(anchorAlphabet))]
	}
	return string(b)
}

// AppendTask appends a new unchecked task to the end of path, tagged with
// a fresh anchor so it is immediately connectable, and returns the new
// task's identity. A missing file is created.
func AppendTask(v *vault.Vault, path, text string) (string, error) {
	clean := strings.TrimSpace(anchorLikeRe.ReplaceAllString(text, ""))
	anchor := NewAnchor()
	taskLine := "- [ ] " + clean + " ^" + anchor

	content := ""
	if v.Exists(path) {
		var err error
		content, err = v.Read(path)
		if err != nil {
			return "", err
		}
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	if err := v.Write(path, content+taskLine+"\n"); err != nil {
		return "", err
	}
	return path + "::^" + anchor, nil
}

// EnsureAnchor makes a task's identity durable. Anchored tasks come back
// unchanged. Otherwise a fresh anchor is written onto the markdown line
// and the new anchor-based identity returned; callers must rewrite any
// persisted references from the old identity to the returned one before
// using it. If the line has drifted away, the old identity comes back and
// the caller proceeds with it.
func EnsureAnchor(v *vault.Vault, t index.Task) (string, error) {
	if t.Anchored() {
		return t.ID, nil
	}

	content, err := v.Read(t.Path)
	if err != nil {
		log.Debug("anchor target gone, keeping hash identity", "path", t.Path, "err", err)
		return t.ID, nil
	}
	lines := strings.Split(content, "\n")
	if t.Line < 0 || t.Line >= len(lines) {
		log.Debug("anchor target line gone, keeping hash identity", "path", t.Path, "line", t.Line)
		return t.ID, nil
	}
	m := lineRe.FindStringSubmatch(lines[t.Line])
	if m == nil {
		log.Warn("anchor target not a checklist line, keeping hash identity", "path", t.Path, "line", t.Line)
		return t.ID, nil
	}
	if !sameLine(lines[t.Line], t.Raw) {
		log.Debug("anchor target line changed, keeping hash identity", "path", t.Path, "line", t.Line)
		return t.ID, nil
	}
	if m[5] != "" {
		// Someone anchored it since the last scan; adopt that identity.
		return t.Path + "::^" + strings.TrimPrefix(strings.TrimSpace(m[5]), "^"), nil
	}

	anchor := NewAnchor()
	lines[t.Line] = strings.TrimRight(lines[t.Line], " \t") + " ^" + anchor
	if err := v.Write(t.Path, strings.Join(lines, "\n")); err != nil {
		return "", fmt.Errorf("write anchor: %w", err)
	}
	return t.Path + "::^" + anchor, nil
}

// sameLine reports whether a re-read line still holds the task the index
// recorded, ignoring a trailing anchor a concurrent edit may have added.
func sameLine(current, recorded string) bool {
	if current == recorded {
		return true
	}
	stripped := strings.TrimRight(anchorLikeRe.ReplaceAllString(current, ""), " \t")
	return stripped == strings.TrimRight(recorded, " \t")
}

// AnchorTasks pins a durable anchor on every task in the list and migrates
// board overlay entries keyed by the old identities. Touched files are
// rescanned so the index serves the new identities afterwards.
func AnchorTasks(v *vault.Vault, st *board.Store, ix *index.Index, boardID string, tasks []index.Task) error {
	touched := make(map[string]bool)
	for _, t := range tasks {
		newID, err := EnsureAnchor(v, t)
		if err != nil {
			return err
		}
		if newID == t.ID {
			continue
		}
		if err := st.RewriteNodeID(boardID, t.ID, newID); err != nil {
			return err
		}
		touched[t.Path] = true
	}
	for path := range touched {
		content, err := v.Read(path)
		if err != nil {
			ix.RemovePath(path)
			continue
		}
		ix.RebuildFile(path, content)
	}
	return nil
}
