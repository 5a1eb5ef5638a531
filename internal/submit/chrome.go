package submit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// navigateTimeout bounds a single page load.
const navigateTimeout = 30 * time.Second

// browserSession owns one headless browser for one marketplace. It is created
// when the engine starts and released on every exit path.
type browserSession struct {
	ctx          context.Context
	cancelAlloc  context.CancelFunc
	cancelBrowse context.CancelFunc
}

// newBrowserSession starts a headless browser and installs the session cookies.
func newBrowserSession(ctx context.Context, state *SessionState) (*browserSession, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	browserCtx, cancelBrowse := chromedp.NewContext(allocCtx)

	// Starting the browser and applying cookies happen together; a failure in
	// either means no usable session exists.
	if err := chromedp.Run(browserCtx, state.apply()); err != nil {
		cancelBrowse()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser session: %w", err)
	}

	return &browserSession{
		ctx:          browserCtx,
		cancelAlloc:  cancelAlloc,
		cancelBrowse: cancelBrowse,
	}, nil
}

// newPage opens a fresh tab in the session.
func (b *browserSession) newPage() page {
	tabCtx, cancel := chromedp.NewContext(b.ctx)
	return &chromePage{ctx: tabCtx, cancel: cancel}
}

// close shuts the browser down.
func (b *browserSession) close() {
	if b.cancelBrowse != nil {
		b.cancelBrowse()
	}
	if b.cancelAlloc != nil {
		b.cancelAlloc()
	}
}

// chromePage implements page over one chromedp tab.
type chromePage struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func (p *chromePage) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := context.WithTimeout(p.ctx, navigateTimeout)
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (p *chromePage) Exists(_ context.Context, selector string) (bool, error) {
	var exists bool
	script := fmt.Sprintf(`document.querySelector(%q) !== null`, selector)
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &exists)); err != nil {
		return false, err
	}
	return exists, nil
}

func (p *chromePage) Text(_ context.Context, selector string) (string, error) {
	var text string
	err := chromedp.Run(p.ctx, chromedp.Text(selector, &text, chromedp.ByQuery, chromedp.AtLeast(0)))
	if err != nil {
		return "", err
	}
	return text, nil
}

func (p *chromePage) HTML(_ context.Context) (string, error) {
	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) Click(_ context.Context, selector string) error {
	return chromedp.Run(p.ctx, chromedp.Click(selector, chromedp.ByQuery))
}

func (p *chromePage) Fill(_ context.Context, selector, value string) error {
	return chromedp.Run(p.ctx, chromedp.SetValue(selector, value, chromedp.ByQuery))
}

func (p *chromePage) WaitVisible(_ context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(p.ctx, timeout)
	defer cancel()

	err := chromedp.Run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if errors.Is(err, context.DeadlineExceeded) {
		return errWaitTimeout
	}
	return err
}

func (p *chromePage) Close() {
	if p.cancel != nil {
		p.cancel()
	}
}
