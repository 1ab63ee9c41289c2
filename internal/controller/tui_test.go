package controller

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

func TestScanModel_TracksProgress(t *testing.T) {
	model := newScanModel(2)

	next, cmd := model.Update(documentMsg{
		doc:     m.DocumentRef{ShortPath: "index.html"},
		outcome: m.CompletedOutcome(m.EvaluationResult{}),
	})
	sm, ok := next.(scanModel)
	require.True(t, ok)
	assert.Equal(t, 1, sm.done)
	assert.Nil(t, cmd)

	next, cmd = sm.Update(documentMsg{
		doc:     m.DocumentRef{ShortPath: "about.html"},
		outcome: m.TimedOutOutcome(),
	})
	sm = next.(scanModel)
	assert.Equal(t, 2, sm.done)

	// Completing the last document quits the program.
	require.NotNil(t, cmd)
	assert.IsType(t, tea.Quit(), cmd())
}

func TestScanModel_RecentWindowIsBounded(t *testing.T) {
	model := newScanModel(recentLines + 5)

	var current tea.Model = model
	for i := 0; i < recentLines+4; i++ {
		current, _ = current.(scanModel).Update(documentMsg{
			doc:     m.DocumentRef{ShortPath: "page.html"},
			outcome: m.CompletedOutcome(m.EvaluationResult{}),
		})
	}

	assert.Len(t, current.(scanModel).recent, recentLines)
}

func TestScanModel_QuitKeys(t *testing.T) {
	model := newScanModel(10)

	keys := []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	}

	for _, key := range keys {
		_, cmd := model.Update(key)

		require.NotNil(t, cmd, key.String())
		assert.IsType(t, tea.Quit(), cmd())
	}
}

func TestScanModel_ViewShowsSelectionAndCounts(t *testing.T) {
	model := newScanModel(3)

	next, _ := model.Update(selectionMsg("scanning 3 changed documents"))
	sm := next.(scanModel)

	view := sm.View()
	assert.Contains(t, view, "scanning 3 changed documents")
	assert.Contains(t, view, "0/3")
}

func TestFormatDocumentLine(t *testing.T) {
	doc := m.DocumentRef{ShortPath: "index.html"}

	clean := formatDocumentLine(doc, m.CompletedOutcome(m.EvaluationResult{}))
	assert.Contains(t, clean, "✓ index.html")

	violated := formatDocumentLine(doc, m.CompletedOutcome(m.EvaluationResult{
		Violations: []m.Violation{{RuleID: "image-alt"}},
	}))
	assert.Contains(t, violated, "✗ index.html")
	assert.Contains(t, violated, "1 violation(s)")

	timedOut := formatDocumentLine(doc, m.TimedOutOutcome())
	assert.Contains(t, timedOut, "⏱ index.html")

	failed := formatDocumentLine(doc, m.FailedOutcome("render", "tab crashed"))
	assert.Contains(t, failed, "! index.html")
	assert.Contains(t, failed, "tab crashed")
}
