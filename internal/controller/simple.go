package controller

import (
	"bytes"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/olekukonko/tablewriter"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// SimpleUI prints one line per document as it finishes, then a summary
// table. This is the CI mode: no cursor movement, stable output.
type SimpleUI struct {
	mu  sync.Mutex
	out io.Writer
}

// NewSimpleUI creates a SimpleUI writing to out.
func NewSimpleUI(out io.Writer) *SimpleUI {
	return &SimpleUI{out: out}
}

// Start implements UI.
func (s *SimpleUI) Start(total int) error {
	s.printf("Scanning %d document(s)\n", total)
	return nil
}

// DisplaySelection implements UI.
func (s *SimpleUI) DisplaySelection(line string) {
	s.printf("%s\n", line)
}

// DocumentScanned implements UI.
func (s *SimpleUI) DocumentScanned(doc m.DocumentRef, outcome m.ScanOutcome) {
	duration := time.Duration(outcome.DurationMs) * time.Millisecond

	switch outcome.Kind {
	case m.OutcomeCompleted:
		if count := outcome.ViolationCount(); count > 0 {
			s.printf("FAIL  %s  %d violation(s)  %s\n", doc.ShortPath, count, duration)
		} else {
			s.printf("ok    %s  %s\n", doc.ShortPath, duration)
		}
	case m.OutcomeTimedOut:
		s.printf("TIME  %s  exceeded per-document timeout\n", doc.ShortPath)
	default:
		s.printf("ERR   %s  %s: %s\n", doc.ShortPath, outcome.ErrorKind, outcome.ErrorMessage)
	}
}

// DisplaySummary implements UI.
func (s *SimpleUI) DisplaySummary(report *m.RunReport) {
	s.printf("\n%s", RenderSummaryTable(report))

	if report.Selection.FellBack {
		s.printf("note: affected-file detection unavailable, scanned full tree (%s)\n", report.Selection.FallbackReason)
	}

	if report.Selection.Truncated {
		s.printf("note: candidate list truncated to the file limit\n")
	}

	s.printf("Verdict: %s\n", report.Verdict)
}

// Close implements UI.
func (s *SimpleUI) Close() {}

func (s *SimpleUI) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = fmt.Fprintf(s.out, format, args...)
}

// RenderSummaryTable renders the aggregate counts as a table, shared by
// both UI implementations.
func RenderSummaryTable(report *m.RunReport) string {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Documents", "Completed", "Failed", "Timed Out", "Violations", "Incomplete", "Waived"})
	table.SetBorder(false)
	table.SetCenterSeparator("")

	summary := report.Summary
	table.Append([]string{
		fmt.Sprintf("%d", summary.Documents),
		fmt.Sprintf("%d", summary.Completed),
		fmt.Sprintf("%d", summary.Failed),
		fmt.Sprintf("%d", summary.TimedOut),
		fmt.Sprintf("%d", summary.Violations),
		fmt.Sprintf("%d", summary.Incomplete),
		fmt.Sprintf("%d", summary.Waived),
	})

	table.Render()

	return buf.String()
}
