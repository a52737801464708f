package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// waitFor drains events until one matches or the timeout fires.
func waitFor(t *testing.T, events <-chan Event, want Event) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed while waiting for %+v", want)
			}
			if ev == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %+v", want)
		}
	}
}

func TestWatch_ChangeAndRemove(t *testing.T) {
	v := testVault(t, map[string]string{"seed.md": "- [ ] seed\n"})

	events, err := v.Watch()
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer v.Close()

	target := filepath.Join(v.Root(), "incoming.md")
	if err := os.WriteFile(target, []byte("- [ ] new\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, events, Event{Op: OpChange, Path: "incoming.md"})

	if err := os.Remove(target); err != nil {
		t.Fatalf("remove: %v", err)
	}
	waitFor(t, events, Event{Op: OpRemove, Path: "incoming.md"})
}

func TestWatch_IgnoresNonMarkdown(t *testing.T) {
	v := testVault(t, map[string]string{})

	events, err := v.Watch()
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer v.Close()

	if err := os.WriteFile(filepath.Join(v.Root(), "image.png"), []byte("png"), 0644); err != nil {
		t.Fatalf("write png: %v", err)
	}
	if err := os.WriteFile(filepath.Join(v.Root(), "real.md"), []byte("- [ ] x\n"), 0644); err != nil {
		t.Fatalf("write md: %v", err)
	}

	// The markdown event arrives; the png never produced one before it.
	waitFor(t, events, Event{Op: OpChange, Path: "real.md"})
}
