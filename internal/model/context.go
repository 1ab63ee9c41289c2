package model

import "time"

// Path represents a file system path.
type Path string

// EventKind identifies the CI event that triggered the run.
type EventKind string

const (
	// EventPullRequest is a pull-request build against a target branch.
	EventPullRequest EventKind = "pull_request"

	// EventPush is a direct push build.
	EventPush EventKind = "push"

	// EventOther covers local runs and CI events with no diff context.
	EventOther EventKind = "other"
)

// ScanMode selects how the work-set of documents is determined.
type ScanMode string

const (
	// ModeAuto infers the mode from the CI event: affected for pull
	// requests, all otherwise.
	ModeAuto ScanMode = "auto"

	// ModeAll scans every discovered HTML document in the tree.
	ModeAll ScanMode = "all"

	// ModeAffected scans only documents changed relative to the target ref.
	ModeAffected ScanMode = "affected"
)

// ParseScanMode maps a flag value to a ScanMode, defaulting to auto.
func ParseScanMode(value string) ScanMode {
	switch ScanMode(value) {
	case ModeAll:
		return ModeAll
	case ModeAffected:
		return ModeAffected
	default:
		return ModeAuto
	}
}

// RunContext holds the immutable configuration of one scan run. It is
// built once by the scan command and passed read-only to every component.
type RunContext struct {
	EventKind     EventKind
	TargetRef     string
	RequestedMode ScanMode

	RepoRoot  Path
	RepoName  string
	OutputDir Path

	MaxFiles       int
	PerFileTimeout time.Duration
	Parallel       int

	ExcludedDirs         map[string]struct{}
	ExcludedFilePatterns []string

	Policy VerdictPolicy
}

// DocumentRef is a resolved path believed to be an HTML document.
// Existence is re-checked before render since the tree can change
// between selection and scan.
type DocumentRef struct {
	// FullPath is the absolute on-disk location used for rendering.
	FullPath Path
	// ShortPath is the repo-relative path used for display and reports.
	ShortPath Path
}

// DefaultExcludedDirs returns the directory names never descended into
// during full-tree discovery. Exact name match at any depth.
func DefaultExcludedDirs() []string {
	return []string{
		"node_modules", "dist", "build", "www", ".git",
		"coverage", ".angular", "ios", "android", "platforms",
		"Pods", "DerivedData", ".idea", ".vscode",
	}
}

// ExcludedDirSet builds the lookup set used by discovery.
func ExcludedDirSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}

	return set
}
