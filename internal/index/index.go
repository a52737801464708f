// Package index maintains the in-memory map from vault file to the
// checklist tasks found in it, kept current through incremental per-file
// rebuilds. It owns the file-derived truth about a task and is never
// persisted; it is rebuilt from the vault on load.
package index

import (
	"regexp"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/joshharrison/taskloom/internal/vault"
)

// Index maps file paths to their scanned task lists.
type Index struct {
	mu    sync.RWMutex
	files map[string][]Task
	ready bool
}

// New returns an empty, not-yet-ready index.
func New() *Index {
	return &Index{files: make(map[string][]Task)}
}

// RebuildAll scans every markdown file in the vault and marks the index
// ready. Until it completes, queries return empty rather than partial
// results. Intended to run once at startup, typically in a goroutine.
func (ix *Index) RebuildAll(v *vault.Vault) error {
	paths, err := v.MarkdownFiles()
	if err != nil {
		return err
	}

	fresh := make(map[string][]Task)
	for _, path := range paths {
		content, err := v.CachedRead(path)
		if err != nil {
			log.Warn("skip unreadable file", "path", path, "err", err)
			continue
		}
		if tasks := ParseTasks(path, content); len(tasks) > 0 {
			fresh[path] = tasks
		}
	}

	ix.mu.Lock()
	ix.files = fresh
	ix.ready = true
	ix.mu.Unlock()
	return nil
}

// RebuildFile replaces one file's entry from its current content. Files
// with no checklist lines are dropped from the map entirely to bound
// memory on large vaults.
func (ix *Index) RebuildFile(path, content string) {
	tasks := ParseTasks(path, content)
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if len(tasks) == 0 {
		delete(ix.files, path)
		return
	}
	ix.files[path] = tasks
}

// RenamePath moves a file's entry to a new key without rescanning.
// Identities embed the old path and are recomputed on the next rebuild of
// the file; callers relying on identity across a rename should re-scan.
func (ix *Index) RenamePath(oldPath, newPath string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	tasks, ok := ix.files[oldPath]
	if !ok {
		return
	}
	delete(ix.files, oldPath)
	ix.files[newPath] = tasks
}

// RemovePath deletes a file's entry entirely.
func (ix *Index) RemovePath(path string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.files, path)
}

// Ready reports whether the initial full scan has completed.
func (ix *Index) Ready() bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.ready
}

// Paths returns the indexed file paths in sorted order. Empty before the
// initial scan completes.
func (ix *Index) Paths() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.ready {
		return nil
	}
	paths := make([]string, 0, len(ix.files))
	for p := range ix.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// TasksFor returns the tasks of one file in line order. Empty before the
// initial scan completes.
func (ix *Index) TasksFor(path string) []Task {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.ready {
		return nil
	}
	tasks := ix.files[path]
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

// AllTasks returns every indexed task in file-then-line order.
func (ix *Index) AllTasks() []Task {
	var out []Task
	for _, path := range ix.Paths() {
		out = append(out, ix.TasksFor(path)...)
	}
	return out
}

// Find looks up a task by identity.
func (ix *Index) Find(id string) (Task, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.ready {
		return Task{}, false
	}
	for _, tasks := range ix.files {
		for _, t := range tasks {
			if t.ID == id {
				return t, true
			}
		}
	}
	return Task{}, false
}

var tagRe = regexp.MustCompile(`#[\p{L}\d_][\p{L}\d_/-]*`)

// TagCounts aggregates #tag occurrences across all indexed task lines,
// for filter autocomplete.
func (ix *Index) TagCounts() map[string]int {
	counts := make(map[string]int)
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if !ix.ready {
		return counts
	}
	for _, tasks := range ix.files {
		for _, t := range tasks {
			for _, tag := range tagRe.FindAllString(t.Raw, -1) {
				counts[tag]++
			}
		}
	}
	return counts
}
