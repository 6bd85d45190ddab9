// internal/browser/session.go

// Package browser drives headless Chrome through chromedp. A Session wraps
// one browser process configured with a generated fingerprint; pages opened
// from it intercept network traffic to harvest media URLs while suppressing
// image loads.
package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/valpere/MediaScrapexter/internal/antidetect"
	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// ErrLaunch marks a failure to start the browser process. Callers treat it
// as fatal for the current scraping cycle rather than for a single URL.
var ErrLaunch = errors.New("browser launch failed")

// Session owns one headless Chrome process and its allocator.
type Session struct {
	cfg         config.BrowserConfig
	fingerprint antidetect.Fingerprint

	allocCtx    context.Context
	allocCancel context.CancelFunc
	browserCtx  context.Context
	cancel      context.CancelFunc
}

// Launch starts a Chrome process configured with fp. The returned session
// must be closed by the caller.
func Launch(ctx context.Context, cfg config.BrowserConfig, fp antidetect.Fingerprint) (*Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-web-security", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("lang", fp.Locale),
		chromedp.UserAgent(fp.UserAgent),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// Run with no actions forces the process to start now, so launch
	// failures surface here instead of on the first navigation.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", ErrLaunch, err)
	}

	utils.Debugf("browser session started (tz=%s viewport=%dx%d)", fp.Timezone, fp.ViewportWidth, fp.ViewportHeight)

	return &Session{
		cfg:         cfg,
		fingerprint: fp,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		browserCtx:  browserCtx,
		cancel:      cancel,
	}, nil
}

// Fingerprint returns the identity this session presents.
func (s *Session) Fingerprint() antidetect.Fingerprint {
	return s.fingerprint
}

// Close terminates the browser process and releases the allocator.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}
