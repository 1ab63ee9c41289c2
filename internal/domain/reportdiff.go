package domain

import (
	"fmt"
	"sort"

	"github.com/pmezard/go-difflib/difflib"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// FindingKey identifies a violation class within one document.
type FindingKey struct {
	Path   m.Path
	RuleID string
}

// Finding is a violation class with its occurrence count.
type Finding struct {
	Key    FindingKey
	Impact m.Impact
	Count  int
}

// Comparison is the regression view of two reports: violation classes
// introduced or resolved between a baseline run and a current run, plus
// a unified text diff of the flattened listings.
type Comparison struct {
	Introduced []Finding
	Resolved   []Finding
	Text       string
}

// Describe renders a one-line comparison summary.
func (c Comparison) Describe() string {
	return fmt.Sprintf("%d violation class(es) introduced, %d resolved", len(c.Introduced), len(c.Resolved))
}

// CompareReports diffs the violation sets of two runs. A class counts
// as introduced when it is absent from the baseline or its occurrence
// count grew.
func CompareReports(baseline, current *m.RunReport) Comparison {
	oldFindings := collectFindings(baseline)
	newFindings := collectFindings(current)

	var comparison Comparison

	for key, finding := range newFindings {
		if old, ok := oldFindings[key]; !ok || finding.Count > old.Count {
			comparison.Introduced = append(comparison.Introduced, finding)
		}
	}

	for key, finding := range oldFindings {
		if cur, ok := newFindings[key]; !ok || cur.Count < finding.Count {
			comparison.Resolved = append(comparison.Resolved, finding)
		}
	}

	sortFindings(comparison.Introduced)
	sortFindings(comparison.Resolved)

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        findingLines(oldFindings),
		B:        findingLines(newFindings),
		FromFile: "baseline",
		ToFile:   "current",
		Context:  2,
	})
	if err == nil {
		comparison.Text = diff
	}

	return comparison
}

func collectFindings(report *m.RunReport) map[FindingKey]Finding {
	findings := map[FindingKey]Finding{}

	if report == nil {
		return findings
	}

	for _, doc := range report.Documents {
		if doc.Outcome.Kind != m.OutcomeCompleted || doc.Outcome.Result == nil {
			continue
		}

		for _, violation := range doc.Outcome.Result.Violations {
			key := FindingKey{Path: doc.Path, RuleID: violation.RuleID}

			finding := findings[key]
			finding.Key = key
			finding.Impact = violation.Impact
			finding.Count++
			findings[key] = finding
		}
	}

	return findings
}

func sortFindings(findings []Finding) {
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].Key.Path != findings[j].Key.Path {
			return findings[i].Key.Path < findings[j].Key.Path
		}

		return findings[i].Key.RuleID < findings[j].Key.RuleID
	})
}

func findingLines(findings map[FindingKey]Finding) []string {
	list := make([]Finding, 0, len(findings))
	for _, finding := range findings {
		list = append(list, finding)
	}

	sortFindings(list)

	lines := make([]string, 0, len(list))
	for _, finding := range list {
		lines = append(lines, fmt.Sprintf("%s  %s (%s) x%d\n", finding.Key.Path, finding.Key.RuleID, finding.Impact, finding.Count))
	}

	return lines
}
