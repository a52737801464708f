package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// EventOp classifies a vault change notification.
type EventOp int

const (
	// OpChange means the file was created or its content modified.
	OpChange EventOp = iota
	// OpRemove means the file was deleted or renamed away. A rename to a
	// new name surfaces as OpRemove on the old path followed by OpChange
	// on the new one.
	OpRemove
)

// Event is a single file-change notification delivered by Watch.
type Event struct {
	Op   EventOp
	Path string // slash-separated path relative to the vault root
}

type watcher struct {
	fsw    *fsnotify.Watcher
	events chan Event
}

// Watch starts watching the vault for markdown file changes and returns the
// event channel. Events for a given file are delivered in the order the
// filesystem reports them. Close stops the watcher and closes the channel.
func (v *Vault) Watch() (<-chan Event, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := addDirs(fsw, v.root); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch vault directories: %w", err)
	}

	w := &watcher{fsw: fsw, events: make(chan Event, 64)}
	v.watcher = w
	go v.watchLoop(w)
	return w.events, nil
}

// Close stops the file watcher, if one is running.
func (v *Vault) Close() error {
	if v.watcher != nil {
		return v.watcher.fsw.Close()
	}
	return nil
}

// addDirs recursively registers directories, skipping hidden ones.
func addDirs(fsw *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") && path != root {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

func (v *Vault) watchLoop(w *watcher) {
	defer close(w.events)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			v.handleEvent(w, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Warn("vault watcher error", "err", err)
		}
	}
}

func (v *Vault) handleEvent(w *watcher, event fsnotify.Event) {
	// New directories need to be added to the watch set before their
	// contents produce events.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(info.Name(), ".") {
				if err := addDirs(w.fsw, event.Name); err != nil {
					log.Warn("watch new directory", "path", event.Name, "err", err)
				}
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".md") || strings.Contains(event.Name, string(filepath.Separator)+".") {
		return
	}
	rel, err := filepath.Rel(v.root, event.Name)
	if err != nil {
		return
	}
	path := filepath.ToSlash(rel)

	switch {
	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		w.events <- Event{Op: OpChange, Path: path}
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		v.Forget(path)
		w.events <- Event{Op: OpRemove, Path: path}
	}
}
