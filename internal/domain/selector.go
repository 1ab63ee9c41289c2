// Package domain implements the scan orchestration: work-set selection,
// the per-document pipeline, aggregation and the run workflow.
package domain

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"a11yscan.dev/pkg/a11yscan/internal/adapter"
	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// Selection is the outcome of work-set selection: the ordered documents
// plus how they were chosen. FellBack distinguishes "diff tooling broke,
// scanned everything" from "genuinely nothing changed".
type Selection struct {
	Documents []m.DocumentRef
	Info      m.SelectionInfo
}

// Selector decides which documents a run must scan.
type Selector interface {
	Select(ctx context.Context, runCtx *m.RunContext) (Selection, error)
}

type selector struct {
	fs   adapter.RepoFSAdapter
	diff adapter.DiffAdapter
}

// NewSelector constructs a Selector backed by the provided filesystem
// and diff adapters.
func NewSelector(fs adapter.RepoFSAdapter, diff adapter.DiffAdapter) Selector {
	return &selector{fs: fs, diff: diff}
}

// Select implements Selector. Order is preserved from the underlying
// source (diff order or lexicographic tree-walk order), never re-sorted,
// so runs are reproducible against a given tree state.
func (s *selector) Select(ctx context.Context, runCtx *m.RunContext) (Selection, error) {
	info := m.SelectionInfo{
		RequestedMode: runCtx.RequestedMode,
		EffectiveMode: effectiveMode(runCtx),
	}

	var docs []m.DocumentRef

	if info.EffectiveMode == m.ModeAffected {
		changed, err := s.selectAffected(ctx, runCtx)

		switch {
		case err != nil:
			// Tooling failure, not an empty diff. Fall back to a
			// full-tree scan and record why.
			slog.Warn("Affected-file detection failed, falling back to full scan", "error", err)

			info.EffectiveMode = m.ModeAll
			info.FellBack = true
			info.FallbackReason = err.Error()
		case len(changed) == 0:
			slog.Info("Diff returned no existing HTML changes, falling back to full scan")

			info.EffectiveMode = m.ModeAll
			info.FellBack = true
			info.FallbackReason = "diff returned no scannable HTML changes"
		default:
			docs = changed
		}
	}

	if info.EffectiveMode == m.ModeAll {
		discovered, err := s.fs.DiscoverHTML(runCtx.RepoRoot, runCtx.ExcludedDirs)
		if err != nil {
			return Selection{}, m.SelectionErrorf("discover documents: %v", err)
		}

		docs = discovered
	}

	docs = filterPatterns(docs, runCtx.ExcludedFilePatterns)

	if runCtx.MaxFiles > 0 && len(docs) > runCtx.MaxFiles {
		slog.Warn("Candidate list truncated", "candidates", len(docs), "max_files", runCtx.MaxFiles)

		docs = docs[:runCtx.MaxFiles]
		info.Truncated = true
	}

	return Selection{Documents: docs, Info: info}, nil
}

// effectiveMode resolves Auto from the CI event; explicit modes win.
func effectiveMode(runCtx *m.RunContext) m.ScanMode {
	if runCtx.RequestedMode != m.ModeAuto {
		return runCtx.RequestedMode
	}

	if runCtx.EventKind == m.EventPullRequest {
		return m.ModeAffected
	}

	return m.ModeAll
}

// selectAffected asks the diff collaborator for changed paths and keeps
// the HTML documents that still exist (deleted files appear in diffs
// too). An error here means the tooling failed, not that nothing
// changed.
func (s *selector) selectAffected(ctx context.Context, runCtx *m.RunContext) ([]m.DocumentRef, error) {
	changed, err := s.diff.ChangedPaths(ctx, runCtx.RepoRoot, runCtx.TargetRef)
	if err != nil {
		return nil, err
	}

	var docs []m.DocumentRef

	for _, rel := range changed {
		if !adapter.IsHTMLPath(rel) {
			continue
		}

		full := m.Path(filepath.Join(string(runCtx.RepoRoot), filepath.FromSlash(rel)))
		if !s.fs.FileExists(full) {
			continue
		}

		docs = append(docs, m.DocumentRef{
			FullPath:  full,
			ShortPath: m.Path(rel),
		})
	}

	return docs, nil
}

// filterPatterns drops documents whose base name or short path matches
// any of the exclusion globs.
func filterPatterns(docs []m.DocumentRef, patterns []string) []m.DocumentRef {
	if len(patterns) == 0 {
		return docs
	}

	kept := docs[:0:0]

	for _, doc := range docs {
		if matchesAny(doc, patterns) {
			continue
		}

		kept = append(kept, doc)
	}

	return kept
}

func matchesAny(doc m.DocumentRef, patterns []string) bool {
	base := filepath.Base(string(doc.ShortPath))

	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}

		if ok, err := filepath.Match(pattern, string(doc.ShortPath)); err == nil && ok {
			return true
		}
	}

	return false
}

// DescribeSelection renders a one-line selection summary for console
// output.
func DescribeSelection(selection Selection) string {
	line := fmt.Sprintf("%d document(s) selected (%s mode)", len(selection.Documents), selection.Info.EffectiveMode)

	if selection.Info.FellBack {
		line += " [fell back from affected: " + selection.Info.FallbackReason + "]"
	}

	if selection.Info.Truncated {
		line += " [truncated]"
	}

	return line
}
