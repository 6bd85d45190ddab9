// internal/scraper/engine.go

package scraper

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// Engine orchestrates batch extraction: it partitions candidate URLs into
// fixed-size groups, runs each group in its own browser session under a
// concurrency gate, and collects the records that pass the media policy.
type Engine struct {
	launcher  Launcher
	extractor *Extractor

	groupSize   int
	maxSessions int

	// limiter throttles navigations across all sessions; nil disables
	limiter *rate.Limiter

	// skip short-circuits URLs that are already accounted for, such as
	// entries in the download ledger
	skip func(string) bool

	// observers are notified as extraction progresses
	onExtracted func(*SegmentRecord, bool)
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithNavigationRate throttles page navigations to perSecond across all
// sessions. Zero or negative disables throttling.
func WithNavigationRate(perSecond float64) EngineOption {
	return func(e *Engine) {
		if perSecond > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithSkip installs a predicate that excludes URLs before navigation.
func WithSkip(skip func(string) bool) EngineOption {
	return func(e *Engine) { e.skip = skip }
}

// WithExtractionObserver installs a callback invoked after every
// extraction with the record and whether it passed the media policy.
func WithExtractionObserver(fn func(*SegmentRecord, bool)) EngineOption {
	return func(e *Engine) { e.onExtracted = fn }
}

// NewEngine builds an Engine. groupSize is the number of URLs served by
// one browser session; maxSessions bounds how many sessions run at once.
func NewEngine(launcher Launcher, extractor *Extractor, groupSize, maxSessions int, opts ...EngineOption) *Engine {
	if groupSize <= 0 {
		groupSize = 20
	}
	if maxSessions <= 0 {
		maxSessions = 1
	}
	e := &Engine{
		launcher:    launcher,
		extractor:   extractor,
		groupSize:   groupSize,
		maxSessions: maxSessions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Partition splits urls into stable, order-preserving chunks of at most
// size elements. The final chunk holds the remainder.
func Partition(urls []string, size int) [][]string {
	if size <= 0 || len(urls) == 0 {
		if len(urls) == 0 {
			return nil
		}
		return [][]string{urls}
	}
	groups := make([][]string, 0, (len(urls)+size-1)/size)
	for start := 0; start < len(urls); start += size {
		end := start + size
		if end > len(urls) {
			end = len(urls)
		}
		groups = append(groups, urls[start:end])
	}
	return groups
}

// Run extracts every candidate URL and returns the records that pass the
// media policy. A browser launch failure aborts the whole batch; any other
// per-URL failure is contained to that URL.
func (e *Engine) Run(ctx context.Context, urls []string) ([]*SegmentRecord, error) {
	groups := Partition(urls, e.groupSize)
	if len(groups) == 0 {
		return nil, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		records []*SegmentRecord
		runErr  error
	)
	gate := make(chan struct{}, e.maxSessions)

	for _, group := range groups {
		wg.Add(1)
		go func(group []string) {
			defer wg.Done()
			select {
			case gate <- struct{}{}:
			case <-runCtx.Done():
				return
			}
			defer func() { <-gate }()

			recs, err := e.runGroup(runCtx, group)
			mu.Lock()
			defer mu.Unlock()
			records = append(records, recs...)
			if err != nil && runErr == nil {
				runErr = err
				cancel()
			}
		}(group)
	}
	wg.Wait()

	if runErr != nil {
		return records, runErr
	}
	return records, ctx.Err()
}

// runGroup serves one URL group with a dedicated browser session. Launch
// failures propagate; extraction failures are contained per URL.
func (e *Engine) runGroup(ctx context.Context, group []string) ([]*SegmentRecord, error) {
	session, err := e.launcher.Launch(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	var out []*SegmentRecord
	for _, candidate := range group {
		if ctx.Err() != nil {
			return out, nil
		}
		if e.skip != nil && e.skip(candidate) {
			utils.Debugf("skipping %s: already downloaded", candidate)
			continue
		}
		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return out, nil
			}
		}

		page, err := session.NewPage()
		if err != nil {
			utils.Warnf("failed to open page for %s: %v", candidate, err)
			continue
		}
		rec := e.extractor.Extract(ctx, page, candidate)
		page.Close()

		accepted := e.extractor.Policy().Accepts(rec)
		if e.onExtracted != nil {
			e.onExtracted(rec, accepted)
		}
		if accepted {
			out = append(out, rec)
		}
	}
	return out, nil
}
