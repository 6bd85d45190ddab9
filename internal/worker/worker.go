// internal/worker/worker.go

// Package worker runs the scraping service: it schedules cycles within the
// permitted hours, drives discovery and extraction, and hands accepted
// segments to the download pipeline.
package worker

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/valpere/MediaScrapexter/internal/antidetect"
	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/internal/monitoring"
	"github.com/valpere/MediaScrapexter/internal/output"
	"github.com/valpere/MediaScrapexter/internal/scraper"
	"github.com/valpere/MediaScrapexter/internal/utils"
)

// State describes what the worker is doing.
type State int32

const (
	// StateIdle means the worker is waiting for a permitted hour or the
	// next cycle
	StateIdle State = iota

	// StateLaunching means a cycle is bringing up a browser session
	StateLaunching

	// StateRunning means a cycle is in progress
	StateRunning

	// StateDegraded means the last cycle failed and the worker is
	// backing off before retrying
	StateDegraded
)

// String returns the state name for logs and health output.
func (s State) String() string {
	switch s {
	case StateLaunching:
		return "launching"
	case StateRunning:
		return "running"
	case StateDegraded:
		return "degraded"
	default:
		return "idle"
	}
}

// Worker owns the scraping service loop.
type Worker struct {
	cfg *config.Config

	resolver   *scraper.Resolver
	launcher   scraper.Launcher
	extractor  *scraper.Extractor
	ledger     *output.Ledger
	downloader *output.Downloader
	metrics    *monitoring.Metrics

	state atomic.Int32

	// scheduling intervals, shortened in tests
	tick          time.Duration
	idleAfterPass time.Duration
	idleWhenIdle  time.Duration
}

// Option customizes a Worker.
type Option func(*Worker)

// WithMetrics attaches the instrument set.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithLauncher replaces the browser launcher, used in tests.
func WithLauncher(l scraper.Launcher) Option {
	return func(w *Worker) { w.launcher = l }
}

// WithIntervals overrides the scheduling intervals, used in tests.
func WithIntervals(tick, afterPass, whenIdle time.Duration) Option {
	return func(w *Worker) {
		w.tick = tick
		w.idleAfterPass = afterPass
		w.idleWhenIdle = whenIdle
	}
}

// New assembles a Worker from cfg. The ledger file is loaded immediately
// so a corrupt path fails startup rather than the first download.
func New(cfg *config.Config, opts ...Option) (*Worker, error) {
	w := &Worker{
		cfg:           cfg,
		tick:          time.Minute,
		idleAfterPass: 6 * time.Hour,
		idleWhenIdle:  time.Hour,
	}
	for _, opt := range opts {
		opt(w)
	}

	if cfg.LedgerFilePath != "" {
		ledger, err := output.LoadLedger(cfg.LedgerFilePath)
		if err != nil {
			return nil, err
		}
		w.ledger = ledger
	}

	from, to := cfg.Window()
	w.resolver = scraper.NewResolver(&http.Client{Timeout: 60 * time.Second}, scraper.DateWindow{From: from, To: to})

	if w.launcher == nil {
		w.launcher = &browserLauncher{
			cfg:     cfg.Browser,
			gen:     antidetect.NewGenerator(),
			metrics: w.metrics,
		}
	}

	w.extractor = scraper.NewExtractor(
		scraper.MediaPolicy{
			AudioToken: cfg.Media.AudioToken,
			VideoToken: cfg.Media.VideoToken,
		},
		cfg.Browser.SettleDelayMin.Std(),
		cfg.Browser.SettleDelayMax.Std(),
	)

	w.downloader = output.NewDownloader(output.DownloaderOptions{
		FFmpegPath:   cfg.Download.FFmpegPath,
		FFprobePath:  cfg.Download.FFprobePath,
		AudioBitrate: cfg.Download.AudioBitrate,
		AudioToken:   cfg.Media.AudioToken,
	})

	return w, nil
}

// State returns the worker's current state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// Run loops until ctx is canceled: it waits for a permitted hour, runs a
// cycle, and sleeps long after a productive pass, shorter when nothing was
// found, and only briefly after a failure.
func (w *Worker) Run(ctx context.Context) error {
	for {
		if !w.cfg.HourPermitted(time.Now().Hour()) {
			w.setState(StateIdle)
			if err := sleepCtx(ctx, w.tick); err != nil {
				return err
			}
			continue
		}

		w.setState(StateRunning)
		candidates, err := w.RunCycle(ctx)

		var wait time.Duration
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			w.setState(StateDegraded)
			utils.Errorf("cycle failed: %v", err)
			wait = w.tick
		case candidates == 0:
			w.setState(StateIdle)
			utils.Infof("no candidates found, waiting %s", w.idleWhenIdle)
			wait = w.idleWhenIdle
		default:
			w.setState(StateIdle)
			utils.Infof("cycle complete, next pass in %s", w.idleAfterPass)
			wait = w.idleAfterPass
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
}

// RunCycle performs one full pass. Source addresses are served strictly in
// order: each source's candidates are fully extracted and downloaded before
// the next source begins. It returns the total number of candidate URLs
// discovered. A browser launch failure aborts the cycle; a failing source
// merely yields zero candidates.
func (w *Worker) RunCycle(ctx context.Context) (int, error) {
	engine := w.buildEngine()

	var discovery scraper.Session
	defer func() {
		if discovery != nil {
			discovery.Close()
		}
	}()

	seen := make(map[string]struct{})
	total := 0
	for _, source := range w.cfg.SourceAddresses {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}

		if needsBrowser(source) && discovery == nil {
			w.setState(StateLaunching)
			s, err := w.launcher.Launch(ctx)
			if err != nil {
				return total, err
			}
			discovery = s
			w.setState(StateRunning)
		}

		urls, err := w.resolver.Resolve(ctx, source, discovery)
		if err != nil {
			utils.Errorf("source %s failed: %v", source, err)
			continue
		}

		candidates := urls[:0]
		for _, u := range urls {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			candidates = append(candidates, u)
		}
		total += len(candidates)
		if w.metrics != nil {
			w.metrics.CandidatesResolved.Add(float64(len(candidates)))
		}
		if len(candidates) == 0 {
			continue
		}

		records, err := engine.Run(ctx, candidates)
		if err != nil {
			return total, err
		}
		utils.Infof("source %s: extracted %d segments from %d candidates", source, len(records), len(candidates))
		w.download(ctx, records)
	}

	if w.metrics != nil {
		w.metrics.CyclesTotal.Inc()
	}
	return total, ctx.Err()
}

func (w *Worker) buildEngine() *scraper.Engine {
	opts := []scraper.EngineOption{
		scraper.WithNavigationRate(w.cfg.Concurrency.NavigationsPerSecond),
	}
	if w.ledger != nil {
		opts = append(opts, scraper.WithSkip(w.ledger.IsDownloaded))
	}
	if w.metrics != nil {
		opts = append(opts, scraper.WithExtractionObserver(func(_ *scraper.SegmentRecord, accepted bool) {
			w.metrics.ObserveExtraction(accepted)
		}))
	}
	return scraper.NewEngine(
		w.launcher,
		w.extractor,
		w.cfg.Concurrency.GroupSize,
		w.cfg.Concurrency.MaxSessions,
		opts...,
	)
}

// download materializes every record that has a planned destination and
// records successes in the ledger. Failures are logged and skipped so one
// bad segment never stalls the rest.
func (w *Worker) download(ctx context.Context, records []*scraper.SegmentRecord) {
	if w.ledger == nil {
		utils.Warnf("no ledger configured, skipping %d downloads", len(records))
		return
	}

	for _, rec := range records {
		if ctx.Err() != nil {
			return
		}
		if w.ledger.IsDownloaded(rec.SourceURL) {
			continue
		}
		dest, err := output.PlanPath(rec, w.cfg.OutputFolderPath)
		if err != nil {
			utils.Errorf("planning path for %s: %v", rec.SourceURL, err)
			continue
		}
		if dest == "" {
			utils.Debugf("no output root configured, skipping %s", rec.SourceURL)
			continue
		}

		err = w.downloader.Download(ctx, rec, dest)
		if w.metrics != nil {
			w.metrics.ObserveDownload(err)
		}
		if err != nil {
			utils.Errorf("downloading %s: %v", rec.SourceURL, err)
			continue
		}
		if err := w.ledger.Append(rec.SourceURL); err != nil {
			utils.Errorf("recording %s in ledger: %v", rec.SourceURL, err)
		}
	}
}

// needsBrowser reports whether source must be rendered rather than fetched.
func needsBrowser(source string) bool {
	return !isSitemap(source)
}

func isSitemap(source string) bool {
	return strings.HasSuffix(utils.PathWithoutQuery(source), ".xml")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
