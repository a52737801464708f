package reporter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshharrison/taskloom/internal/board"
	"github.com/joshharrison/taskloom/internal/index"
	"github.com/joshharrison/taskloom/internal/vault"
)

func testReporter(t *testing.T, files map[string]string) (*Reporter, *board.Store) {
	t.Helper()
	root := t.TempDir()
	for path, content := range files {
		full := filepath.Join(root, filepath.FromSlash(path))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	v, err := vault.Open(root)
	if err != nil {
		t.Fatalf("open vault: %v", err)
	}
	ix := index.New()
	if err := ix.RebuildAll(v); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	st, err := board.Load(filepath.Join(root, ".taskloom", "settings.json"))
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	return New(st, ix), st
}

func TestPrintBoards(t *testing.T) {
	r, st := testReporter(t, map[string]string{"a.md": "- [ ] One\n"})
	if _, err := st.Create("Sprint 12"); err != nil {
		t.Fatalf("create: %v", err)
	}

	var buf bytes.Buffer
	r.PrintBoards(&buf)

	out := buf.String()
	if !strings.Contains(out, "Main Board") || !strings.Contains(out, "Sprint 12") {
		t.Errorf("boards missing from output:\n%s", out)
	}
}

func TestPrintTasks_GroupsByFile(t *testing.T) {
	r, st := testReporter(t, map[string]string{
		"a.md": "- [ ] Alpha\n",
		"b.md": "- [ ] Beta\n",
	})
	b := st.Active()

	var buf bytes.Buffer
	r.PrintTasks(&buf, &b)

	out := buf.String()
	if !strings.Contains(out, "a.md") || !strings.Contains(out, "b.md") {
		t.Errorf("file headers missing:\n%s", out)
	}
	if strings.Index(out, "Alpha") > strings.Index(out, "Beta") {
		t.Errorf("tasks out of file order:\n%s", out)
	}
}

func TestBoardJSON(t *testing.T) {
	r, st := testReporter(t, map[string]string{
		"a.md": "- [ ] Open ^o1\n- [x] Closed ^c1\n",
	})
	b := st.Active()

	data, err := r.BoardJSON(&b)
	if err != nil {
		t.Fatalf("json: %v", err)
	}

	var out struct {
		BoardID string `json:"board_id"`
		Tasks   []struct {
			ID       string `json:"id"`
			Status   string `json:"status"`
			Anchored bool   `json:"anchored"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.BoardID != "default" {
		t.Errorf("unexpected board id %q", out.BoardID)
	}
	// Default board filters to open and in-progress markers.
	if len(out.Tasks) != 1 {
		t.Fatalf("expected 1 visible task, got %d", len(out.Tasks))
	}
	if out.Tasks[0].ID != "a.md::^o1" || !out.Tasks[0].Anchored {
		t.Errorf("unexpected task %+v", out.Tasks[0])
	}
}

func TestSummary(t *testing.T) {
	r, _ := testReporter(t, map[string]string{
		"a.md": "- [ ] Open\n- [x] Done\n",
	})

	out := r.Summary(nil)
	if !strings.Contains(out, "1 done") || !strings.Contains(out, "1 open") {
		t.Errorf("counts missing from summary:\n%s", out)
	}
}
