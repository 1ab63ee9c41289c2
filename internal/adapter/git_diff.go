package adapter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// DiffAdapter abstracts the version-control collaborator that lists
// paths changed relative to a target ref. A failure here is distinct
// from an empty change-set: callers must treat an error as "tooling
// broke" and fall back, never as "nothing changed".
type DiffAdapter interface {
	// ChangedPaths returns the repo-relative paths changed between
	// origin/targetRef and HEAD, in diff order.
	ChangedPaths(ctx context.Context, repoRoot m.Path, targetRef string) ([]string, error)

	// RepoName returns a friendly owner/repo display name, falling back
	// to the root directory's base name when no remote is configured.
	RepoName(ctx context.Context, repoRoot m.Path) string
}

const (
	gitDiffTimeout   = 30 * time.Second
	gitRemoteTimeout = 10 * time.Second
)

// GitDiffAdapter shells out to git. The diff command and ref layout
// mirror what CI provides: origin/<base>...HEAD.
type GitDiffAdapter struct{}

// NewGitDiffAdapter constructs a GitDiffAdapter.
func NewGitDiffAdapter() *GitDiffAdapter {
	return &GitDiffAdapter{}
}

// ChangedPaths implements DiffAdapter.
func (a *GitDiffAdapter) ChangedPaths(ctx context.Context, repoRoot m.Path, targetRef string) ([]string, error) {
	if strings.TrimSpace(targetRef) == "" {
		return nil, m.SelectionErrorf("no target ref for diff")
	}

	ctx, cancel := context.WithTimeout(ctx, gitDiffTimeout)
	defer cancel()

	rangeSpec := fmt.Sprintf("origin/%s...HEAD", targetRef)
	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", rangeSpec)
	cmd.Dir = string(repoRoot)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, m.SelectionErrorf("git diff %s: %v: %s", rangeSpec, err, strings.TrimSpace(stderr.String()))
	}

	output := strings.TrimSpace(stdout.String())
	if output == "" {
		return nil, nil
	}

	var paths []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paths = append(paths, line)
		}
	}

	return paths, nil
}

// RepoName implements DiffAdapter.
func (a *GitDiffAdapter) RepoName(ctx context.Context, repoRoot m.Path) string {
	ctx, cancel := context.WithTimeout(ctx, gitRemoteTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "remote", "get-url", "origin")
	cmd.Dir = string(repoRoot)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err == nil {
		if name := ownerRepoFromRemote(strings.TrimSpace(stdout.String())); name != "" {
			return name
		}
	}

	return filepath.Base(string(repoRoot))
}

// ownerRepoFromRemote extracts "owner/repo" from a git remote URL,
// handling both https and ssh forms.
func ownerRepoFromRemote(url string) string {
	if url == "" {
		return ""
	}

	url = strings.TrimSuffix(url, ".git")
	url = strings.ReplaceAll(url, ":", "/")

	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return ""
	}

	owner := parts[len(parts)-2]
	repo := parts[len(parts)-1]

	if owner == "" || repo == "" {
		return ""
	}

	return owner + "/" + repo
}
