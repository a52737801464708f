package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshharrison/taskloom/internal/vault"
)

func testVault(t *testing.T, files map[string]string) *vault.Vault {
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
	return v
}

func TestIndex_NotReadyReturnsEmpty(t *testing.T) {
	ix := New()

	if ix.Ready() {
		t.Error("fresh index reported ready")
	}
	if got := ix.Paths(); len(got) != 0 {
		t.Errorf("expected no paths before scan, got %v", got)
	}
	if got := ix.AllTasks(); len(got) != 0 {
		t.Errorf("expected no tasks before scan, got %d", len(got))
	}
	if _, ok := ix.Find("a.md::#x"); ok {
		t.Error("Find succeeded before scan")
	}
}

func TestIndex_RebuildAll(t *testing.T) {
	v := testVault(t, map[string]string{
		"inbox.md":         "- [ ] Triage mail\n",
		"projects/site.md": "- [ ] Design header\n- [x] Buy domain\n",
		"journal.md":       "no tasks here\n",
	})

	ix := New()
	if err := ix.RebuildAll(v); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	if !ix.Ready() {
		t.Fatal("index not ready after full scan")
	}
	paths := ix.Paths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 indexed paths, got %v", paths)
	}
	// Sorted, and the task-less file is absent.
	if paths[0] != "inbox.md" || paths[1] != "projects/site.md" {
		t.Errorf("unexpected paths %v", paths)
	}

	all := ix.AllTasks()
	if len(all) != 3 {
		t.Errorf("expected 3 tasks, got %d", len(all))
	}
}

func TestIndex_RebuildFile(t *testing.T) {
	v := testVault(t, map[string]string{"a.md": "- [ ] Old task\n"})
	ix := New()
	if err := ix.RebuildAll(v); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	ix.RebuildFile("a.md", "- [ ] New task\n- [ ] Another\n")
	if got := len(ix.TasksFor("a.md")); got != 2 {
		t.Errorf("expected 2 tasks after rebuild, got %d", got)
	}

	// A file that loses all its tasks disappears from the index.
	ix.RebuildFile("a.md", "just prose now\n")
	if got := ix.Paths(); len(got) != 0 {
		t.Errorf("expected taskless file dropped, still have %v", got)
	}
}

func TestIndex_FindAndRemove(t *testing.T) {
	v := testVault(t, map[string]string{"a.md": "- [ ] Pay rent ^r1\n"})
	ix := New()
	if err := ix.RebuildAll(v); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	task, ok := ix.Find("a.md::^r1")
	if !ok {
		t.Fatal("anchored task not found")
	}
	if task.Text != "Pay rent" {
		t.Errorf("unexpected text %q", task.Text)
	}

	ix.RemovePath("a.md")
	if _, ok := ix.Find("a.md::^r1"); ok {
		t.Error("task still found after RemovePath")
	}
}

func TestIndex_RenamePath(t *testing.T) {
	v := testVault(t, map[string]string{"old.md": "- [ ] Move me\n"})
	ix := New()
	if err := ix.RebuildAll(v); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	ix.RenamePath("old.md", "new.md")

	if got := len(ix.TasksFor("old.md")); got != 0 {
		t.Errorf("old path still has %d tasks", got)
	}
	if got := len(ix.TasksFor("new.md")); got != 1 {
		t.Errorf("expected 1 task at new path, got %d", got)
	}
}

func TestIndex_TagCounts(t *testing.T) {
	v := testVault(t, map[string]string{
		"a.md": "- [ ] Fix login #urgent #auth\n- [ ] Style page #urgent\n",
		"b.md": "- [ ] Rotate keys #auth/infra\n",
	})
	ix := New()
	if err := ix.RebuildAll(v); err != nil {
		t.Fatalf("rebuild: %v", err)
	}

	counts := ix.TagCounts()
	if counts["#urgent"] != 2 {
		t.Errorf("expected #urgent x2, got %d", counts["#urgent"])
	}
	if counts["#auth/infra"] != 1 {
		t.Errorf("expected #auth/infra x1, got %d", counts["#auth/infra"])
	}
}
