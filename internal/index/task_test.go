package index

import (
	"testing"
)

func TestParseTasks_BasicChecklist(t *testing.T) {
	content := "# Plan\n\n- [ ] Buy milk\n- [x] Ship release ✅ 2026-08-30\nsome prose\n- [/] Write docs ^ab12cd\n"

	tasks := ParseTasks("notes/plan.md", content)

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	if tasks[0].Marker != MarkerTodo || tasks[0].Text != "Buy milk" {
		t.Errorf("task 0: got marker %q text %q", tasks[0].Marker, tasks[0].Text)
	}
	if tasks[0].Line != 2 {
		t.Errorf("task 0: expected line 2, got %d", tasks[0].Line)
	}
	if tasks[0].File != "plan" {
		t.Errorf("task 0: expected file %q, got %q", "plan", tasks[0].File)
	}

	if tasks[1].Marker != MarkerDone {
		t.Errorf("task 1: expected done marker, got %q", tasks[1].Marker)
	}

	if tasks[2].Anchor != "ab12cd" {
		t.Errorf("task 2: expected anchor ab12cd, got %q", tasks[2].Anchor)
	}
	if tasks[2].ID != "notes/plan.md::^ab12cd" {
		t.Errorf("task 2: unexpected id %q", tasks[2].ID)
	}
	if tasks[2].Text != "Write docs" {
		t.Errorf("task 2: anchor leaked into text: %q", tasks[2].Text)
	}
}

func TestParseTasks_ExtendedMarkers(t *testing.T) {
	content := "- [-] dropped\n- [b] bookmarked\n- [!] urgent\n"

	tasks := ParseTasks("a.md", content)

	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	want := []string{"-", "b", "!"}
	for i, marker := range want {
		if tasks[i].Marker != marker {
			t.Errorf("task %d: expected marker %q, got %q", i, marker, tasks[i].Marker)
		}
	}
}

func TestParseTasks_HashIdentity(t *testing.T) {
	tasks := ParseTasks("a.md", "- [ ] Fix the flaky build!\n")

	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	// Non-alphanumerics are stripped from the hash.
	if tasks[0].ID != "a.md::#Fixtheflakybuild" {
		t.Errorf("unexpected id %q", tasks[0].ID)
	}
	if tasks[0].Anchored() {
		t.Error("hash-identified task reported as anchored")
	}
}

func TestParseTasks_HashIgnoresDoneDate(t *testing.T) {
	open := ParseTasks("a.md", "- [ ] Ship it\n")
	done := ParseTasks("a.md", "- [x] Ship it ✅ 2026-08-30\n")

	if open[0].ID != done[0].ID {
		t.Errorf("completion date changed identity: %q vs %q", open[0].ID, done[0].ID)
	}
}

func TestParseTasks_HashTruncatesAt30(t *testing.T) {
	long := "- [ ] aaaaaaaaaabbbbbbbbbbccccccccccDIFFERENT\n"
	other := "- [ ] aaaaaaaaaabbbbbbbbbbccccccccccOTHERTAIL\n"

	a := ParseTasks("a.md", long)
	b := ParseTasks("a.md", other)

	// Both share the same first 30 characters, so within one file the
	// second occurrence would collide; across scans they simply match.
	if a[0].ID != b[0].ID {
		t.Errorf("expected identical truncated ids, got %q vs %q", a[0].ID, b[0].ID)
	}
}

func TestParseTasks_CollisionSuffix(t *testing.T) {
	content := "- [ ] Call mom\n- [ ] Call mom\n- [ ] Call mom\n"

	tasks := ParseTasks("a.md", content)

	if tasks[0].ID != "a.md::#Callmom" {
		t.Errorf("task 0: unexpected id %q", tasks[0].ID)
	}
	if tasks[1].ID != "a.md::#Callmom_1" {
		t.Errorf("task 1: unexpected id %q", tasks[1].ID)
	}
	if tasks[2].ID != "a.md::#Callmom_2" {
		t.Errorf("task 2: unexpected id %q", tasks[2].ID)
	}
}

func TestParseTasks_Idempotent(t *testing.T) {
	content := "- [ ] One\n- [ ] One\n- [x] Two ^zz9\n* [ ] Three\n"

	first := ParseTasks("n.md", content)
	second := ParseTasks("n.md", content)

	if len(first) != len(second) {
		t.Fatalf("scan cardinality changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("task %d: id changed between scans: %q vs %q", i, first[i].ID, second[i].ID)
		}
	}
}

func TestParseTasks_IndentedAndStarBullets(t *testing.T) {
	content := "  - [ ] nested dash\n\t* [x] star bullet\n-[ ] missing space\n"

	tasks := ParseTasks("a.md", content)

	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks (malformed line skipped), got %d", len(tasks))
	}
}
