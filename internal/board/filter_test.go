package board

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshharrison/taskloom/internal/index"
	"github.com/joshharrison/taskloom/internal/vault"
)

func testIndex(t *testing.T, files map[string]string) *index.Index {
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
	return ix
}

func texts(tasks []index.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestVisible_NoFiltersShowsEverything(t *testing.T) {
	ix := testIndex(t, map[string]string{
		"a.md": "- [ ] One\n- [x] Two\n",
		"b.md": "- [/] Three\n",
	})
	b := Board{ID: "b", Filters: Filters{}, Data: emptyData()}

	got := Visible(&b, ix)
	if len(got) != 3 {
		t.Errorf("expected 3 visible tasks, got %v", texts(got))
	}
}

func TestVisible_StatusFilter(t *testing.T) {
	ix := testIndex(t, map[string]string{
		"a.md": "- [ ] Open\n- [/] Busy\n- [x] Done\n",
	})
	b := Board{ID: "b", Filters: Filters{Status: []string{" ", "/"}}, Data: emptyData()}

	got := texts(Visible(&b, ix))
	if len(got) != 2 || got[0] != "Open" || got[1] != "Busy" {
		t.Errorf("unexpected visible set %v", got)
	}
}

func TestVisible_EdgeParticipantSurvivesStatusFilter(t *testing.T) {
	// The done prerequisite is filtered by marker but keeps its place in
	// the graph because an edge references it.
	ix := testIndex(t, map[string]string{
		"a.md": "- [x] Done dep ^d1\n- [ ] Blocked work ^w1\n",
	})
	b := Board{
		ID:      "b",
		Filters: Filters{Status: []string{" "}},
		Data:    emptyData(),
	}
	b.Data.Edges = append(b.Data.Edges, Edge{
		ID: EdgeID("a.md::^d1", "a.md::^w1"), Source: "a.md::^d1", Target: "a.md::^w1",
	})

	got := texts(Visible(&b, ix))
	if len(got) != 2 {
		t.Fatalf("expected the connected done task to stay visible, got %v", got)
	}
}

func TestVisible_FolderFilter(t *testing.T) {
	ix := testIndex(t, map[string]string{
		"projects/app.md": "- [ ] In scope\n",
		"archive/old.md":  "- [ ] Out of scope\n",
	})
	b := Board{ID: "b", Filters: Filters{Folders: []string{"projects/"}}, Data: emptyData()}

	got := texts(Visible(&b, ix))
	if len(got) != 1 || got[0] != "In scope" {
		t.Errorf("unexpected visible set %v", got)
	}
}

func TestVisible_TagIncludeAndExclude(t *testing.T) {
	ix := testIndex(t, map[string]string{
		"a.md": "- [ ] Tagged #work\n- [ ] Tagged both #work #someday\n- [ ] Untagged\n",
	})
	b := Board{
		ID: "b",
		Filters: Filters{
			Tags:        []string{"#work"},
			ExcludeTags: []string{"#someday"},
		},
		Data: emptyData(),
	}

	got := texts(Visible(&b, ix))
	if len(got) != 1 || got[0] != "Tagged #work" {
		t.Errorf("unexpected visible set %v", got)
	}
}

func TestVisible_FileThenLineOrder(t *testing.T) {
	ix := testIndex(t, map[string]string{
		"b.md": "- [ ] Third\n",
		"a.md": "- [ ] First\n- [ ] Second\n",
	})
	b := Board{ID: "b", Filters: Filters{}, Data: emptyData()}

	got := texts(Visible(&b, ix))
	want := []string{"First", "Second", "Third"}
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks, got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}
