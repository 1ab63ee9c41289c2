// Package adapter contains the infrastructure adapters for the a11yscan CLI.
package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// RepoFSAdapter abstracts the filesystem operations the domain layer
// relies on when selecting documents. It hides direct `os` access so the
// selector and pipeline can be tested without touching the disk.
type RepoFSAdapter interface {
	// DiscoverHTML walks root depth-first and returns every HTML document
	// found, in lexicographic path order. Directories whose name is in
	// excludedDirs are never descended into, at any depth.
	DiscoverHTML(root m.Path, excludedDirs map[string]struct{}) ([]m.DocumentRef, error)

	// FileExists reports whether path exists and is a regular file.
	FileExists(path m.Path) bool

	// Abs resolves path to an absolute path.
	Abs(path m.Path) (m.Path, error)
}

// LocalRepoFSAdapter is the concrete implementation backed by the os
// package.
type LocalRepoFSAdapter struct{}

// NewLocalRepoFSAdapter constructs a LocalRepoFSAdapter ready to be
// wired into the workflow.
func NewLocalRepoFSAdapter() *LocalRepoFSAdapter {
	return &LocalRepoFSAdapter{}
}

// IsHTMLPath reports whether path carries an HTML extension,
// case-insensitively.
func IsHTMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}

	return false
}

// DiscoverHTML implements RepoFSAdapter.
func (a *LocalRepoFSAdapter) DiscoverHTML(root m.Path, excludedDirs map[string]struct{}) ([]m.DocumentRef, error) {
	rootStr := string(root)

	rootAbs, err := filepath.Abs(rootStr)
	if err != nil {
		return nil, fmt.Errorf("resolve root %s: %w", rootStr, err)
	}

	if _, err := os.Stat(rootAbs); err != nil {
		return nil, fmt.Errorf("repository root: %w", err)
	}

	// Visited set of resolved directory paths guards against symlink
	// cycles re-entering a directory already on the traversal stack.
	visited := map[string]struct{}{}

	var docs []m.DocumentRef

	if err := a.walkDir(rootAbs, rootAbs, excludedDirs, visited, &docs); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ShortPath < docs[j].ShortPath
	})

	return docs, nil
}

func (a *LocalRepoFSAdapter) walkDir(root, dir string, excludedDirs map[string]struct{}, visited map[string]struct{}, docs *[]m.DocumentRef) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		// Dangling symlink or permission problem: skip the subtree.
		return nil
	}

	if _, seen := visited[resolved]; seen {
		return nil
	}

	visited[resolved] = struct{}{}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		full := filepath.Join(dir, name)

		if entry.IsDir() {
			if _, excluded := excludedDirs[name]; excluded {
				continue
			}

			if err := a.walkDir(root, full, excludedDirs, visited, docs); err != nil {
				return err
			}

			continue
		}

		if !IsHTMLPath(name) {
			continue
		}

		rel, err := filepath.Rel(root, full)
		if err != nil {
			rel = full
		}

		*docs = append(*docs, m.DocumentRef{
			FullPath:  m.Path(full),
			ShortPath: m.Path(filepath.ToSlash(rel)),
		})
	}

	return nil
}

// FileExists implements RepoFSAdapter.
func (a *LocalRepoFSAdapter) FileExists(path m.Path) bool {
	info, err := os.Stat(string(path))
	return err == nil && info.Mode().IsRegular()
}

// Abs implements RepoFSAdapter.
func (a *LocalRepoFSAdapter) Abs(path m.Path) (m.Path, error) {
	abs, err := filepath.Abs(string(path))
	if err != nil {
		return "", err
	}

	return m.Path(abs), nil
}
