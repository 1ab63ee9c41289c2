// Package controller provides the console output adapters for scan
// progress and summaries.
package controller

import (
	"os"

	"golang.org/x/term"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// UI is the display surface for a scan run. Implementations are plain
// line output for CI and a live TUI for interactive terminals.
type UI interface {
	// Start begins progress display for total documents.
	Start(total int) error

	// DisplaySelection prints how the work-set was chosen.
	DisplaySelection(line string)

	// DocumentScanned reports one finished document. Called from worker
	// goroutines; implementations must be safe for concurrent use.
	DocumentScanned(doc m.DocumentRef, outcome m.ScanOutcome)

	// DisplaySummary renders the final run summary.
	DisplaySummary(report *m.RunReport)

	// Close releases the display.
	Close()
}

// NewUI picks the TUI when stdout is an interactive terminal, plain
// line output otherwise.
func NewUI(out *os.File, tty bool) UI {
	if tty {
		return NewTUI(out)
	}

	return NewSimpleUI(out)
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
