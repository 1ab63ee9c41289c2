package adapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	cdpruntime "github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	m "a11yscan.dev/pkg/a11yscan/internal/model"
)

// ScriptExecutor runs JavaScript inside a rendered document's execution
// context.
type ScriptExecutor interface {
	// Inject evaluates a script blob for its side effects.
	Inject(ctx context.Context, script string) error

	// Evaluate evaluates an expression, awaiting its promise, and
	// unmarshals the resolved value into out.
	Evaluate(ctx context.Context, expression string, out any) error
}

// Browser owns one rendering-engine process for the duration of a run
// and opens an isolated browsing context per document. Workers share the
// process but never the context; only the run controller shuts the
// process down.
type Browser interface {
	// Launch starts the rendering-engine process.
	Launch(ctx context.Context) error

	// WithDocument opens an isolated context, loads doc by file URL,
	// yields an executor to body, and closes the context on every exit
	// path. The timeout is a hard ceiling on load+body combined.
	WithDocument(ctx context.Context, doc m.DocumentRef, timeout time.Duration, body func(ctx context.Context, exec ScriptExecutor) error) error

	// Shutdown terminates the process. Safe to call once after all
	// WithDocument calls have returned.
	Shutdown()
}

// ChromeBrowser drives headless Chrome over the DevTools protocol. Each
// document gets its own tab so script execution and DOM state cannot
// leak across documents. A crashed process is relaunched transparently
// before the next document.
type ChromeBrowser struct {
	mu sync.Mutex

	allocCtx    context.Context
	allocCancel context.CancelFunc

	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeBrowser constructs an unlaunched ChromeBrowser.
func NewChromeBrowser() *ChromeBrowser {
	return &ChromeBrowser{}
}

// chromeFlags are the allocator options for CI containers: headless, no
// sandbox, and local file access for file:// documents.
func chromeFlags() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.NoSandbox,
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("allow-file-access-from-files", true),
	)
}

// Launch implements Browser.
func (b *ChromeBrowser) Launch(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.launchLocked(ctx)
}

func (b *ChromeBrowser) launchLocked(ctx context.Context) error {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, chromeFlags()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Run with no actions starts the process eagerly so launch failures
	// surface here instead of on the first document.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()

		return m.RenderErrorf("launch chrome: %v", err)
	}

	b.allocCtx = allocCtx
	b.allocCancel = allocCancel
	b.browserCtx = browserCtx
	b.browserCancel = browserCancel

	return nil
}

// session returns a live browser context, relaunching the process if the
// previous one died.
func (b *ChromeBrowser) session(ctx context.Context) (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		return nil, m.RenderErrorf("browser not launched")
	}

	if b.browserCtx.Err() != nil {
		slog.Warn("Rendering engine died, relaunching")

		b.browserCancel()
		b.allocCancel()

		if err := b.launchLocked(ctx); err != nil {
			return nil, err
		}
	}

	return b.browserCtx, nil
}

// WithDocument implements Browser.
func (b *ChromeBrowser) WithDocument(ctx context.Context, doc m.DocumentRef, timeout time.Duration, body func(ctx context.Context, exec ScriptExecutor) error) error {
	browserCtx, err := b.session(ctx)
	if err != nil {
		return err
	}

	// New tab in the shared process; cancel closes the tab on every
	// exit path.
	tabCtx, closeTab := chromedp.NewContext(browserCtx)
	defer closeTab()

	runCtx, cancel := context.WithTimeout(tabCtx, timeout)
	defer cancel()

	fileURL := &url.URL{Scheme: "file", Path: string(doc.FullPath)}

	err = chromedp.Run(runCtx,
		chromedp.Navigate(fileURL.String()),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return classifyRunErr(runCtx, err, "load %s", doc.ShortPath)
	}

	if err := body(runCtx, &tabExecutor{ctx: runCtx}); err != nil {
		if runCtx.Err() != nil {
			return m.NewScanError(m.ErrKindTimeout, runCtx.Err())
		}

		return err
	}

	return nil
}

// Shutdown implements Browser.
func (b *ChromeBrowser) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCancel != nil {
		b.browserCancel()
		b.browserCancel = nil
	}

	if b.allocCancel != nil {
		b.allocCancel()
		b.allocCancel = nil
	}

	b.browserCtx = nil
	b.allocCtx = nil
}

func classifyRunErr(ctx context.Context, err error, format string, args ...any) error {
	prefix := fmt.Sprintf(format, args...)

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return m.NewScanError(m.ErrKindTimeout, fmt.Errorf("%s: %w", prefix, err))
	}

	return m.RenderErrorf("%s: %v", prefix, err)
}

// tabExecutor is the ScriptExecutor bound to one tab.
type tabExecutor struct {
	ctx context.Context
}

// Inject implements ScriptExecutor.
func (e *tabExecutor) Inject(ctx context.Context, script string) error {
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		return classifyRunErr(ctx, err, "inject script")
	}

	return nil
}

// Evaluate implements ScriptExecutor.
func (e *tabExecutor) Evaluate(ctx context.Context, expression string, out any) error {
	action := chromedp.Evaluate(expression, out, func(p *cdpruntime.EvaluateParams) *cdpruntime.EvaluateParams {
		return p.WithAwaitPromise(true).WithReturnByValue(true)
	})

	if err := chromedp.Run(ctx, action); err != nil {
		return classifyRunErr(ctx, err, "evaluate expression")
	}

	return nil
}
