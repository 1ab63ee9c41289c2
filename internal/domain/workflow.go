package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"a11yscan.dev/pkg/a11yscan/internal/adapter"
	"a11yscan.dev/pkg/a11yscan/internal/controller"
	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// ErrComplianceFailure signals a completed run whose verdict is fail.
// The CLI maps it to a non-zero exit without the usage noise a bad flag
// would produce.
var ErrComplianceFailure = errors.New("accessibility compliance check failed")

// Workflow sequences the run: selection, pipeline, aggregation,
// persistence, verdict.
type Workflow interface {
	// Scan runs the full scan and returns ErrComplianceFailure on a
	// failing verdict, or a fatal error for selection/persistence
	// failures.
	Scan(ctx context.Context, runCtx *m.RunContext) error

	// List prints the selected work-set without scanning.
	List(ctx context.Context, runCtx *m.RunContext) error

	// CompareReports diffs two saved reports and returns
	// ErrComplianceFailure when the newer one introduces violations.
	CompareReports(oldPath, newPath m.Path) error
}

type workflow struct {
	selector  Selector
	fs        adapter.RepoFSAdapter
	diff      adapter.DiffAdapter
	browser   adapter.Browser
	evaluator adapter.RuleEvaluator
	store     adapter.ReportStore
	ui        controller.UI
}

// NewWorkflow wires the run controller. The browser handle is owned
// here: acquired before the pipeline runs and released after every
// worker has finished. browser and evaluator may be nil for workflows
// that only select (List) or only compare reports.
func NewWorkflow(
	fs adapter.RepoFSAdapter,
	diff adapter.DiffAdapter,
	browser adapter.Browser,
	evaluator adapter.RuleEvaluator,
	store adapter.ReportStore,
	ui controller.UI,
) Workflow {
	return &workflow{
		selector:  NewSelector(fs, diff),
		fs:        fs,
		diff:      diff,
		browser:   browser,
		evaluator: evaluator,
		store:     store,
		ui:        ui,
	}
}

// Scan implements Workflow.
func (w *workflow) Scan(ctx context.Context, runCtx *m.RunContext) error {
	repoName := runCtx.RepoName
	if repoName == "" {
		repoName = w.diff.RepoName(ctx, runCtx.RepoRoot)
	}

	selection, err := w.selector.Select(ctx, runCtx)
	if err != nil {
		return fmt.Errorf("select work-set: %w", err)
	}

	w.ui.DisplaySelection(DescribeSelection(selection))

	waivers, err := LoadWaivers(m.Path(filepath.Join(string(runCtx.RepoRoot), DefaultWaiverFile)))
	if err != nil {
		return fmt.Errorf("load waivers: %w", err)
	}

	aggregator := NewAggregator(repoName, selection.Info, runCtx.Policy, waivers)

	if err := w.ui.Start(len(selection.Documents)); err != nil {
		slog.Error("Failed to start UI", "error", err)
	}

	results := w.scanDocuments(ctx, selection.Documents, runCtx)
	aggregator.AppendAll(results)

	report := aggregator.Finalize()

	if err := w.store.Save(runCtx.OutputDir, report); err != nil {
		w.ui.Close()

		return fmt.Errorf("persist reports: %w", err)
	}

	w.ui.DisplaySummary(report)
	w.ui.Close()

	if !report.Passed() {
		return ErrComplianceFailure
	}

	return nil
}

// scanDocuments brackets the browser around the pipeline. A launch
// failure marks every document Failed instead of aborting: the report
// still gets written and the verdict still reflects reality.
func (w *workflow) scanDocuments(ctx context.Context, docs []m.DocumentRef, runCtx *m.RunContext) []m.DocumentResult {
	if len(docs) == 0 {
		return nil
	}

	if err := w.browser.Launch(ctx); err != nil {
		slog.Error("Rendering engine failed to launch", "error", err)

		results := make([]m.DocumentResult, len(docs))
		for i, doc := range docs {
			outcome := outcomeForError(err)
			results[i] = m.DocumentResult{Path: doc.ShortPath, Outcome: outcome}
			w.ui.DocumentScanned(doc, outcome)
		}

		return results
	}

	defer w.browser.Shutdown()

	pipeline := NewPipeline(w.fs, w.browser, w.evaluator)

	return pipeline.RunAll(ctx, docs, runCtx, func(_ int, doc m.DocumentRef, outcome m.ScanOutcome) {
		w.ui.DocumentScanned(doc, outcome)
	})
}

// List implements Workflow.
func (w *workflow) List(ctx context.Context, runCtx *m.RunContext) error {
	selection, err := w.selector.Select(ctx, runCtx)
	if err != nil {
		return fmt.Errorf("select work-set: %w", err)
	}

	w.ui.DisplaySelection(DescribeSelection(selection))

	for _, doc := range selection.Documents {
		w.ui.DisplaySelection(string(doc.ShortPath))
	}

	return nil
}

// CompareReports implements Workflow.
func (w *workflow) CompareReports(oldPath, newPath m.Path) error {
	oldReport, err := w.store.Load(oldPath)
	if err != nil {
		return fmt.Errorf("load baseline report: %w", err)
	}

	newReport, err := w.store.Load(newPath)
	if err != nil {
		return fmt.Errorf("load current report: %w", err)
	}

	comparison := CompareReports(oldReport, newReport)

	w.ui.DisplaySelection(comparison.Describe())

	if comparison.Text != "" {
		w.ui.DisplaySelection(comparison.Text)
	}

	if len(comparison.Introduced) > 0 {
		return ErrComplianceFailure
	}

	return nil
}
