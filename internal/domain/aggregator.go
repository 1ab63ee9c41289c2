package domain

import (
	"sync"
	"time"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// Aggregator accumulates per-document results into the run-level report.
// It owns the RunReport exclusively until Finalize, which may be called
// once; after that the report is read-only.
type Aggregator struct {
	mu        sync.Mutex
	report    m.RunReport
	policy    m.VerdictPolicy
	waivers   *WaiverSet
	finalized bool
}

// NewAggregator creates an empty report for the run.
func NewAggregator(repo string, selection m.SelectionInfo, policy m.VerdictPolicy, waivers *WaiverSet) *Aggregator {
	return &Aggregator{
		report: m.RunReport{
			Repo:      repo,
			StartedAt: time.Now().UTC(),
			Selection: selection,
		},
		policy:  policy,
		waivers: waivers,
	}
}

// Append records one document's outcome, applying waivers and updating
// the aggregate counts. One append per document, in scan order.
func (a *Aggregator) Append(path m.Path, outcome m.ScanOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return
	}

	outcome = a.waivers.Apply(path, outcome)

	a.report.Documents = append(a.report.Documents, m.DocumentResult{Path: path, Outcome: outcome})

	summary := &a.report.Summary
	summary.Documents++
	summary.Waived += outcome.Waived

	switch outcome.Kind {
	case m.OutcomeCompleted:
		summary.Completed++

		if outcome.Result != nil {
			summary.Violations += len(outcome.Result.Violations)
			summary.Incomplete += len(outcome.Result.Incomplete)
			summary.Passes += outcome.Result.Passes
		}
	case m.OutcomeFailed:
		summary.Failed++
	case m.OutcomeTimedOut:
		summary.TimedOut++
	}
}

// AppendAll records results in slice order.
func (a *Aggregator) AppendAll(results []m.DocumentResult) {
	for _, result := range results {
		a.Append(result.Path, result.Outcome)
	}
}

// Finalize stamps the end time, computes the verdict under the
// configured policy and returns the completed report. Subsequent calls
// return the same report unchanged.
func (a *Aggregator) Finalize() *m.RunReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finalized {
		return &a.report
	}

	a.finalized = true
	a.report.EndedAt = time.Now().UTC()
	a.report.Verdict = verdictFor(&a.report, a.policy)

	return &a.report
}

// verdictFor applies the severity policy. Failed and TimedOut documents
// fail under either policy: a document whose compliance is unknown
// cannot pass a compliance gate. Zero documents is a pass, since no
// violations are possible.
func verdictFor(report *m.RunReport, policy m.VerdictPolicy) m.Verdict {
	if report.Summary.Failed > 0 || report.Summary.TimedOut > 0 {
		return m.VerdictFail
	}

	switch policy {
	case m.PolicyLenient:
		for _, doc := range report.Documents {
			if max, ok := doc.Outcome.MaxImpact(); ok && max.AtLeast(m.ImpactSerious) {
				return m.VerdictFail
			}
		}
	default:
		if report.Summary.Violations > 0 {
			return m.VerdictFail
		}
	}

	return m.VerdictPass
}
