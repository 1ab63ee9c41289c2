package domain

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"a11yscan.dev/pkg/a11yscan/internal/adapter"
	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// fakeFS serves a canned document list and existence set.
type fakeFS struct {
	docs        []m.DocumentRef
	discoverErr error
	missing     map[m.Path]bool
}

func (f *fakeFS) DiscoverHTML(_ m.Path, _ map[string]struct{}) ([]m.DocumentRef, error) {
	if f.discoverErr != nil {
		return nil, f.discoverErr
	}

	return f.docs, nil
}

func (f *fakeFS) FileExists(path m.Path) bool {
	return !f.missing[path]
}

func (f *fakeFS) Abs(path m.Path) (m.Path, error) {
	return path, nil
}

// fakeDiff serves a canned changed-path list or failure.
type fakeDiff struct {
	paths []string
	err   error
	calls int
}

func (f *fakeDiff) ChangedPaths(_ context.Context, _ m.Path, _ string) ([]string, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	return f.paths, nil
}

func (f *fakeDiff) RepoName(_ context.Context, _ m.Path) string {
	return "acme/fixture"
}

// fakeBrowser runs bodies against a no-op executor, with optional
// per-document delay and scripted failures.
type fakeBrowser struct {
	mu        sync.Mutex
	launched  bool
	shutdown  bool
	launchErr error

	delays map[m.Path]time.Duration
	errs   map[m.Path]error

	active    int
	maxActive int
}

func (f *fakeBrowser) Launch(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.launchErr != nil {
		return f.launchErr
	}

	f.launched = true

	return nil
}

func (f *fakeBrowser) WithDocument(ctx context.Context, doc m.DocumentRef, timeout time.Duration, body func(ctx context.Context, exec adapter.ScriptExecutor) error) error {
	f.mu.Lock()
	f.active++
	if f.active > f.maxActive {
		f.maxActive = f.active
	}
	delay := f.delays[doc.ShortPath]
	scripted := f.errs[doc.ShortPath]
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.active--
		f.mu.Unlock()
	}()

	if delay > 0 {
		if delay >= timeout {
			time.Sleep(timeout)
			return m.NewScanError(m.ErrKindTimeout, context.DeadlineExceeded)
		}

		time.Sleep(delay)
	}

	if scripted != nil {
		return scripted
	}

	return body(ctx, nopExecutor{})
}

func (f *fakeBrowser) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.shutdown = true
}

type nopExecutor struct{}

func (nopExecutor) Inject(context.Context, string) error { return nil }

func (nopExecutor) Evaluate(context.Context, string, any) error { return nil }

// fakeEvaluator returns a canned result per document path, keyed by the
// order of calls when no per-path result exists.
type fakeEvaluator struct {
	mu      sync.Mutex
	result  m.EvaluationResult
	err     error
	perCall []m.EvaluationResult
	calls   int
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _ adapter.ScriptExecutor) (m.EvaluationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	if f.err != nil {
		return m.EvaluationResult{}, f.err
	}

	if len(f.perCall) > 0 {
		result := f.perCall[0]
		f.perCall = f.perCall[1:]

		return result, nil
	}

	return f.result, nil
}

// fakeStore captures saved reports in memory.
type fakeStore struct {
	mu      sync.Mutex
	saved   *m.RunReport
	saveErr error
	loads   map[m.Path]*m.RunReport
}

func (f *fakeStore) Save(_ m.Path, report *m.RunReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return f.saveErr
	}

	f.saved = report

	return nil
}

func (f *fakeStore) Load(path m.Path) (*m.RunReport, error) {
	if report, ok := f.loads[path]; ok {
		return report, nil
	}

	return nil, m.NewScanError(m.ErrKindIO, context.Canceled)
}

// fakeUI records display calls.
type fakeUI struct {
	mu      sync.Mutex
	lines   []string
	scanned []m.Path
	summary *m.RunReport
	started int
	closed  bool
}

func (f *fakeUI) Start(total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.started = total

	return nil
}

func (f *fakeUI) DisplaySelection(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lines = append(f.lines, line)
}

func (f *fakeUI) DocumentScanned(doc m.DocumentRef, _ m.ScanOutcome) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.scanned = append(f.scanned, doc.ShortPath)
}

func (f *fakeUI) DisplaySummary(report *m.RunReport) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.summary = report
}

func (f *fakeUI) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()

	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func docRefs(paths ...string) []m.DocumentRef {
	docs := make([]m.DocumentRef, 0, len(paths))
	for _, path := range paths {
		docs = append(docs, m.DocumentRef{FullPath: m.Path("/repo/" + path), ShortPath: m.Path(path)})
	}

	return docs
}

func testRunContext() *m.RunContext {
	return &m.RunContext{
		EventKind:      m.EventOther,
		RequestedMode:  m.ModeAll,
		RepoRoot:       "/repo",
		OutputDir:      "/repo/reports",
		MaxFiles:       1000,
		PerFileTimeout: 2 * time.Second,
		Parallel:       2,
		Policy:         m.PolicyStrict,
	}
}
