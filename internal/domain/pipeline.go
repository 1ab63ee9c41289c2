package domain

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"a11yscan.dev/pkg/a11yscan/internal/adapter"
	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// ProgressFunc is notified once per document as it finishes, in
// completion order. Reported results stay in input order regardless.
type ProgressFunc func(index int, doc m.DocumentRef, outcome m.ScanOutcome)

// Pipeline scans an ordered document list and returns one outcome per
// document, in input order.
type Pipeline interface {
	RunAll(ctx context.Context, docs []m.DocumentRef, runCtx *m.RunContext, progress ProgressFunc) []m.DocumentResult
}

type pipeline struct {
	fs        adapter.RepoFSAdapter
	browser   adapter.Browser
	evaluator adapter.RuleEvaluator
}

// NewPipeline constructs a Pipeline around the shared browser handle and
// the rule evaluator. The pipeline never closes the browser; that is the
// run controller's job.
func NewPipeline(fs adapter.RepoFSAdapter, browser adapter.Browser, evaluator adapter.RuleEvaluator) Pipeline {
	return &pipeline{fs: fs, browser: browser, evaluator: evaluator}
}

// RunAll implements Pipeline. Documents are scanned by a bounded worker
// pool sharing the one browser process; each result is written into the
// slot matching its input position, so the recorded order is the
// selection order independent of completion order. One document's
// failure or timeout never aborts the rest.
func (p *pipeline) RunAll(ctx context.Context, docs []m.DocumentRef, runCtx *m.RunContext, progress ProgressFunc) []m.DocumentResult {
	results := make([]m.DocumentResult, len(docs))

	var group errgroup.Group

	workers := runCtx.Parallel
	if workers < 1 {
		workers = 1
	}

	group.SetLimit(workers)

	for i, doc := range docs {
		index, currentDoc := i, doc

		group.Go(func() error {
			outcome := p.scanOne(ctx, currentDoc, runCtx)
			results[index] = m.DocumentResult{Path: currentDoc.ShortPath, Outcome: outcome}

			if progress != nil {
				progress(index, currentDoc, outcome)
			}

			return nil
		})
	}

	// Workers never return errors; failures live in the outcomes.
	_ = group.Wait()

	return results
}

// scanOne renders and evaluates a single document under its timeout and
// maps every failure mode onto a ScanOutcome variant.
func (p *pipeline) scanOne(ctx context.Context, doc m.DocumentRef, runCtx *m.RunContext) m.ScanOutcome {
	started := time.Now()

	outcome := p.attempt(ctx, doc, runCtx)
	outcome.DurationMs = time.Since(started).Milliseconds()

	slog.Debug("Document scanned",
		"path", doc.ShortPath,
		"outcome", outcome.Kind,
		"violations", outcome.ViolationCount(),
		"duration_ms", outcome.DurationMs,
	)

	return outcome
}

func (p *pipeline) attempt(ctx context.Context, doc m.DocumentRef, runCtx *m.RunContext) m.ScanOutcome {
	// The tree can change between selection and scan; re-check before
	// handing the path to the renderer.
	if !p.fs.FileExists(doc.FullPath) {
		return m.FailedOutcome(string(m.ErrKindRender), "document no longer exists: "+string(doc.ShortPath))
	}

	var result m.EvaluationResult

	err := p.browser.WithDocument(ctx, doc, runCtx.PerFileTimeout, func(ctx context.Context, exec adapter.ScriptExecutor) error {
		evaluated, err := p.evaluator.Evaluate(ctx, exec)
		if err != nil {
			return err
		}

		result = evaluated

		return nil
	})
	if err != nil {
		return outcomeForError(err)
	}

	return m.CompletedOutcome(result)
}

// outcomeForError converts the error taxonomy into outcome variants:
// timeouts become TimedOut, everything else becomes Failed with the
// error's kind and message.
func outcomeForError(err error) m.ScanOutcome {
	var scanErr *m.ScanError
	if errors.As(err, &scanErr) {
		if scanErr.Kind == m.ErrKindTimeout {
			return m.TimedOutOutcome()
		}

		return m.FailedOutcome(string(scanErr.Kind), scanErr.Err.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return m.TimedOutOutcome()
	}

	return m.FailedOutcome(string(m.ErrKindRender), err.Error())
}
