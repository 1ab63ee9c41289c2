package controller

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

var (
	cleanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	violatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	erroredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// recentLines caps the scrolling result window of the live view.
const recentLines = 8

// TUI renders a live progress view on an interactive terminal.
type TUI struct {
	out     io.Writer
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a TUI writing to out.
func NewTUI(out io.Writer) *TUI {
	return &TUI{out: out}
}

// Start implements UI.
func (t *TUI) Start(total int) error {
	model := newScanModel(total)
	t.program = tea.NewProgram(model, tea.WithOutput(t.out))
	t.done = make(chan struct{})

	go func() {
		defer close(t.done)

		_, _ = t.program.Run()
	}()

	return nil
}

// DisplaySelection implements UI.
func (t *TUI) DisplaySelection(line string) {
	if t.program == nil {
		_, _ = fmt.Fprintln(t.out, line)
		return
	}

	t.program.Send(selectionMsg(line))
}

// DocumentScanned implements UI. Safe from worker goroutines: bubbletea
// serializes messages.
func (t *TUI) DocumentScanned(doc m.DocumentRef, outcome m.ScanOutcome) {
	if t.program == nil {
		return
	}

	t.program.Send(documentMsg{doc: doc, outcome: outcome})
}

// DisplaySummary implements UI. Stops the live view first so the
// summary lands below it as plain scrollback.
func (t *TUI) DisplaySummary(report *m.RunReport) {
	t.Close()

	_, _ = fmt.Fprintf(t.out, "\n%s", RenderSummaryTable(report))

	if report.Selection.FellBack {
		_, _ = fmt.Fprintf(t.out, "note: affected-file detection unavailable, scanned full tree (%s)\n", report.Selection.FallbackReason)
	}

	verdict := cleanStyle.Render(string(report.Verdict))
	if !report.Passed() {
		verdict = violatedStyle.Render(string(report.Verdict))
	}

	_, _ = fmt.Fprintf(t.out, "Verdict: %s\n", verdict)
}

// Close implements UI.
func (t *TUI) Close() {
	if t.program == nil {
		return
	}

	t.program.Quit()
	<-t.done
	t.program = nil
}

type selectionMsg string

type documentMsg struct {
	doc     m.DocumentRef
	outcome m.ScanOutcome
}

// scanModel is the bubbletea model for the live view.
type scanModel struct {
	total int
	done  int

	selection string
	recent    []string

	spinner  spinner.Model
	progress progress.Model
}

func newScanModel(total int) scanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot

	return scanModel{
		total:    total,
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (sm scanModel) Init() tea.Cmd {
	return sm.spinner.Tick
}

// Update implements tea.Model.
func (sm scanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case selectionMsg:
		sm.selection = string(msg)
		return sm, nil

	case documentMsg:
		sm.done++
		sm.recent = append(sm.recent, formatDocumentLine(msg.doc, msg.outcome))

		if len(sm.recent) > recentLines {
			sm.recent = sm.recent[len(sm.recent)-recentLines:]
		}

		if sm.done >= sm.total {
			return sm, tea.Quit
		}

		return sm, nil

	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return sm, tea.Quit
		}

		return sm, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		sm.spinner, cmd = sm.spinner.Update(msg)

		return sm, cmd
	}

	return sm, nil
}

// View implements tea.Model.
func (sm scanModel) View() string {
	view := ""

	if sm.selection != "" {
		view += dimStyle.Render(sm.selection) + "\n"
	}

	ratio := 0.0
	if sm.total > 0 {
		ratio = float64(sm.done) / float64(sm.total)
	}

	view += fmt.Sprintf("%s scanning %d/%d\n%s\n",
		sm.spinner.View(), sm.done, sm.total, sm.progress.ViewAs(ratio))

	for _, line := range sm.recent {
		view += line + "\n"
	}

	return view
}

func formatDocumentLine(doc m.DocumentRef, outcome m.ScanOutcome) string {
	duration := time.Duration(outcome.DurationMs) * time.Millisecond

	switch outcome.Kind {
	case m.OutcomeCompleted:
		if count := outcome.ViolationCount(); count > 0 {
			return violatedStyle.Render(fmt.Sprintf("✗ %s  %d violation(s)  %s", doc.ShortPath, count, duration))
		}

		return cleanStyle.Render(fmt.Sprintf("✓ %s  %s", doc.ShortPath, duration))
	case m.OutcomeTimedOut:
		return erroredStyle.Render(fmt.Sprintf("⏱ %s  timed out", doc.ShortPath))
	default:
		return erroredStyle.Render(fmt.Sprintf("! %s  %s", doc.ShortPath, outcome.ErrorMessage))
	}
}
