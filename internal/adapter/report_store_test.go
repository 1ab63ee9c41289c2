package adapter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

func sampleReport() *m.RunReport {
	started := time.Date(2026, 5, 2, 11, 0, 0, 0, time.UTC)

	return &m.RunReport{
		Repo:      "acme/storefront",
		StartedAt: started,
		EndedAt:   started.Add(time.Minute),
		Selection: m.SelectionInfo{
			RequestedMode: m.ModeAuto,
			EffectiveMode: m.ModeAffected,
		},
		Documents: []m.DocumentResult{
			{
				Path: "pages/index.html",
				Outcome: m.CompletedOutcome(m.EvaluationResult{
					Violations: []m.Violation{{
						RuleID: "image-alt",
						Impact: m.ImpactCritical,
						Help:   "Images must have alternate text",
						Nodes:  []m.ViolationNode{{Target: "img", HTML: `<img src="a.png">`}},
					}},
					Passes:      3,
					PassedRules: []string{"document-title"},
				}),
			},
			{Path: "pages/legal.html", Outcome: m.TimedOutOutcome()},
		},
		Summary: m.Summary{Documents: 2, Completed: 1, TimedOut: 1, Violations: 1, Passes: 3},
		Verdict: m.VerdictFail,
	}
}

func TestReportStore_SaveAndLoad(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "reports")
	store := NewLocalReportStore()
	report := sampleReport()

	require.NoError(t, store.Save(m.Path(outputDir), report))

	loaded, err := store.Load(m.Path(filepath.Join(outputDir, JSONReportName)))
	require.NoError(t, err)

	assert.Equal(t, report.Summary, loaded.Summary)
	assert.Equal(t, report.Verdict, loaded.Verdict)
	require.Len(t, loaded.Documents, 2)
	assert.Equal(t, report.Documents[0].Outcome.ViolationCount(), loaded.Documents[0].Outcome.ViolationCount())
}

// TestReportStore_NoStagingLeftovers verifies the atomic write leaves
// only the final artifacts behind.
func TestReportStore_NoStagingLeftovers(t *testing.T) {
	outputDir := filepath.Join(t.TempDir(), "reports")
	store := NewLocalReportStore()

	require.NoError(t, store.Save(m.Path(outputDir), sampleReport()))

	entries, err := os.ReadDir(outputDir)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}

	assert.ElementsMatch(t, []string{JSONReportName, HTMLReportName}, names)
}

func TestReportStore_LoadErrors(t *testing.T) {
	store := NewLocalReportStore()

	_, err := store.Load(m.Path(filepath.Join(t.TempDir(), "missing.json")))
	require.Error(t, err)

	var scanErr *m.ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, m.ErrKindIO, scanErr.Kind)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))

	_, err = store.Load(m.Path(bad))
	assert.Error(t, err)
}

func TestRenderHTMLReport(t *testing.T) {
	html, err := RenderHTMLReport(sampleReport())
	require.NoError(t, err)

	page := string(html)

	assert.Contains(t, page, "acme/storefront")
	assert.Contains(t, page, "image-alt")
	assert.Contains(t, page, "pages/legal.html")
	assert.Contains(t, page, "scan timed out")
	// The snippet must be escaped, not emitted as live markup.
	assert.Contains(t, page, "&lt;img")
	assert.NotContains(t, page, `<img src="a.png">`)
}

func TestRenderHTMLReport_EmptyRun(t *testing.T) {
	report := &m.RunReport{
		Repo:      "acme/empty",
		Selection: m.SelectionInfo{RequestedMode: m.ModeAll, EffectiveMode: m.ModeAll},
		Summary:   m.Summary{},
		Verdict:   m.VerdictPass,
	}

	html, err := RenderHTMLReport(report)
	require.NoError(t, err)
	assert.Contains(t, string(html), "No documents scanned")
}

func TestCollectRuleSets(t *testing.T) {
	report := sampleReport()

	failed, passed, inapplicable := collectRuleSets(report)
	assert.Equal(t, []string{"image-alt"}, failed)
	assert.Equal(t, []string{"document-title"}, passed)
	assert.Empty(t, inapplicable)
	assert.True(t, strings.HasPrefix("image-alt", failed[0]))
}
