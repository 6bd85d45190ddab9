// internal/worker/launcher.go

package worker

import (
	"context"
	"sync"

	"github.com/valpere/MediaScrapexter/internal/antidetect"
	"github.com/valpere/MediaScrapexter/internal/browser"
	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/internal/monitoring"
	"github.com/valpere/MediaScrapexter/internal/scraper"
)

// browserLauncher adapts browser sessions to the scraper's Launcher
// interface, drawing a fresh fingerprint per session and tracking the
// active-session gauge.
type browserLauncher struct {
	cfg     config.BrowserConfig
	gen     *antidetect.Generator
	metrics *monitoring.Metrics
}

func (b *browserLauncher) Launch(ctx context.Context) (scraper.Session, error) {
	s, err := browser.Launch(ctx, b.cfg, b.gen.Generate())
	if err != nil {
		return nil, err
	}
	if b.metrics != nil {
		b.metrics.SessionsActive.Inc()
	}
	return &sessionHandle{session: s, metrics: b.metrics}, nil
}

// sessionHandle narrows *browser.Session to the scraper.Session interface
// and decrements the gauge exactly once on close.
type sessionHandle struct {
	session *browser.Session
	metrics *monitoring.Metrics
	once    sync.Once
}

func (h *sessionHandle) NewPage() (scraper.Page, error) {
	p, err := h.session.NewPage()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (h *sessionHandle) Close() {
	h.once.Do(func() {
		if h.metrics != nil {
			h.metrics.SessionsActive.Dec()
		}
	})
	h.session.Close()
}
