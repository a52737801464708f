package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrPathEscape is returned when a resolved path escapes the vault boundary.
var ErrPathEscape = fmt.Errorf("path escapes vault boundary")

// Vault is a directory of markdown files addressed by slash-separated
// relative paths. It stands in for the host application's file API:
// enumerate, read (cached and fresh), and overwrite.
type Vault struct {
	root string

	mu    sync.RWMutex
	cache map[string]string // rel path -> last content seen

	watcher *watcher
}

// Open validates the root directory and returns a Vault over it.
func Open(root string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root is not a directory: %s", root)
	}
	return &Vault{root: abs, cache: make(map[string]string)}, nil
}

// Root returns the absolute vault root path.
func (v *Vault) Root() string { return v.root }

// safePath resolves a relative path against the vault root and validates it
// stays within the vault boundary.
func (v *Vault) safePath(relPath string) (string, error) {
	abs, err := filepath.Abs(filepath.Join(v.root, filepath.FromSlash(relPath)))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	if abs != v.root && !strings.HasPrefix(abs, v.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathEscape, relPath)
	}
	return abs, nil
}

// MarkdownFiles enumerates every .md file under the root, skipping hidden
// directories (.obsidian, .git and friends). Paths come back sorted so
// callers iterate in a stable order.
func (v *Vault) MarkdownFiles() ([]string, error) {
	var files []string
	err := filepath.Walk(v.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if info.IsDir() {
			if strings.HasPrefix(info.Name(), ".") && path != v.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(info.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(v.root, path)
		if err != nil {
			return nil
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk vault: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// CachedRead returns the last content seen for path, reading from disk only
// on a cache miss. Good enough for index population; never use before a
// write-back.
func (v *Vault) CachedRead(path string) (string, error) {
	v.mu.RLock()
	content, ok := v.cache[path]
	v.mu.RUnlock()
	if ok {
		return content, nil
	}
	return v.Read(path)
}

// Read fetches fresh content from disk and refreshes the cache. Required
// before any write-back so a concurrent external edit is not clobbered.
func (v *Vault) Read(path string) (string, error) {
	abs, err := v.safePath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	content := string(data)
	v.mu.Lock()
	v.cache[path] = content
	v.mu.Unlock()
	return content, nil
}

// Exists reports whether path resolves to a regular file in the vault.
func (v *Vault) Exists(path string) bool {
	abs, err := v.safePath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(abs)
	return err == nil && info.Mode().IsRegular()
}

// Write overwrites path atomically via a temp-file rename and updates the
// cache. Parent directories are created as needed.
func (v *Vault) Write(path, content string) error {
	abs, err := v.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	tmp := abs + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp, abs); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	v.mu.Lock()
	v.cache[path] = content
	v.mu.Unlock()
	return nil
}

// Forget drops any cached content for path. Called when the file is deleted
// or renamed away.
func (v *Vault) Forget(path string) {
	v.mu.Lock()
	delete(v.cache, path)
	v.mu.Unlock()
}
