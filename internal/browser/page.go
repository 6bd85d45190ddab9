// internal/browser/page.go

package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// Page is one browser tab with request interception active. Media URLs
// observed on the wire accumulate in the page's observer; image requests
// are aborted at the fetch layer to keep page loads light.
type Page struct {
	ctx      context.Context
	cancel   context.CancelFunc
	observer *MediaObserver
	timeout  func(context.Context) (context.Context, context.CancelFunc)
}

// NewPage opens a tab in the session, enables interception, and applies the
// session fingerprint: viewport, timezone override, and search referer.
func (s *Session) NewPage() (*Page, error) {
	ctx, cancel := chromedp.NewContext(s.browserCtx)
	observer := NewMediaObserver()

	chromedp.ListenTarget(ctx, func(ev interface{}) {
		e, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		// Interception callbacks must not block the event loop, and
		// fetch commands need the target's own executor.
		go func() {
			c := chromedp.FromContext(ctx)
			ectx := cdp.WithExecutor(ctx, c.Target)
			if e.ResourceType == network.ResourceTypeImage {
				_ = fetch.FailRequest(e.RequestID, network.ErrorReasonBlockedByClient).Do(ectx)
				return
			}
			observer.Record(e.Request.URL)
			_ = fetch.ContinueRequest(e.RequestID).Do(ectx)
		}()
	})

	fp := s.fingerprint
	err := chromedp.Run(ctx,
		fetch.Enable(),
		network.Enable(),
		chromedp.EmulateViewport(int64(fp.ViewportWidth), int64(fp.ViewportHeight)),
		emulation.SetTimezoneOverride(fp.Timezone),
		network.SetExtraHTTPHeaders(network.Headers{"Referer": fp.Referer}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to prepare page: %w", err)
	}

	p := &Page{
		ctx:      ctx,
		cancel:   cancel,
		observer: observer,
	}
	if timeout := s.cfg.NavigationTimeout.Std(); timeout > 0 {
		p.timeout = func(parent context.Context) (context.Context, context.CancelFunc) {
			return context.WithTimeout(parent, timeout)
		}
	}
	return p, nil
}

// Navigate loads url and waits for the document body. The origin servers
// are slow, so no load timeout is applied unless one is configured.
func (p *Page) Navigate(ctx context.Context, url string) error {
	runCtx, done := p.runContext(ctx)
	defer done()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// HTML returns the current serialized document.
func (p *Page) HTML(ctx context.Context) (string, error) {
	runCtx, done := p.runContext(ctx)
	defer done()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML: %w", err)
	}
	return html, nil
}

// Scroll moves the viewport to vertical offset y, nudging lazy content and
// the media player into loading.
func (p *Page) Scroll(ctx context.Context, y int) error {
	runCtx, done := p.runContext(ctx)
	defer done()
	return chromedp.Run(runCtx,
		chromedp.Evaluate(fmt.Sprintf("window.scrollTo(0, %d)", y), nil),
	)
}

// cookieBannerSelectors cover the consent dialogs seen on the target sites.
var cookieBannerSelectors = []string{
	"#as-oil .as-js-optin",
	"button.as-oil__btn-optin",
	"#onetrust-accept-btn-handler",
	"button.iubenda-cs-accept-btn",
}

// DismissCookieBanner clicks through a consent dialog when one is present.
// Absence of a banner is not an error.
func (p *Page) DismissCookieBanner(ctx context.Context) {
	runCtx, done := p.runContext(ctx)
	defer done()

	for _, sel := range cookieBannerSelectors {
		var clicked bool
		script := fmt.Sprintf(
			`(function() { var b = document.querySelector(%q); if (b) { b.click(); return true; } return false; })()`,
			sel,
		)
		if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &clicked)); err != nil {
			return
		}
		if clicked {
			utils.Debugf("dismissed cookie banner via %q", sel)
			return
		}
	}
}

// MediaURLs returns the media URLs observed on this page so far.
func (p *Page) MediaURLs() []string {
	return p.observer.URLs()
}

// Close discards the tab. Observed URLs remain readable afterwards.
func (p *Page) Close() {
	p.cancel()
}

// runContext derives the context chromedp actions run on. Actions must use
// the page context, so caller cancellation is bridged onto it for the
// duration of the call.
func (p *Page) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx := p.ctx
	var cancelTimeout context.CancelFunc = func() {}
	if p.timeout != nil {
		runCtx, cancelTimeout = p.timeout(runCtx)
	}
	if ctx == nil {
		return runCtx, cancelTimeout
	}

	stop := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.cancel()
		case <-stop:
		case <-runCtx.Done():
		}
	}()
	return runCtx, func() {
		close(stop)
		cancelTimeout()
	}
}
