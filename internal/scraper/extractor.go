// internal/scraper/extractor.go

package scraper

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// playerSourceSelector finds the media element the embedded player renders,
// used as a fallback when no audio request was intercepted.
const playerSourceSelector = "#vjs_video_3_THEOplayerAqt video"

// Extractor turns one candidate page into a SegmentRecord. It navigates,
// waits a randomized settle delay while the player issues media requests,
// then assembles the record from the URL, the intercepted traffic, and the
// rendered page.
type Extractor struct {
	policy MediaPolicy

	settleMin time.Duration
	settleMax time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewExtractor builds an Extractor with the given media policy and settle
// delay bounds.
func NewExtractor(policy MediaPolicy, settleMin, settleMax time.Duration) *Extractor {
	if settleMin <= 0 {
		settleMin = 6 * time.Second
	}
	if settleMax <= settleMin {
		settleMax = settleMin + 4*time.Second
	}
	return &Extractor{
		policy:    policy,
		settleMin: settleMin,
		settleMax: settleMax,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Policy returns the media policy the extractor validates records against.
func (e *Extractor) Policy() MediaPolicy {
	return e.policy
}

// Extract processes candidateURL on page. It always returns a record; a
// record that fails the media policy is reported by Accepts, not by an
// error, so one broken page never aborts its group.
func (e *Extractor) Extract(ctx context.Context, page Page, candidateURL string) *SegmentRecord {
	rec := &SegmentRecord{SourceURL: candidateURL}
	parts := splitURL(candidateURL)
	format := DetectFormat(candidateURL)

	rec.Region, rec.Channel = regionChannel(parts, format)

	if err := page.Navigate(ctx, candidateURL); err != nil {
		utils.Warnf("extract %s: %v", candidateURL, err)
		return rec
	}
	page.DismissCookieBanner(ctx)

	// Nudge the player into view so it starts requesting media, then
	// give the page time to issue those requests.
	if err := page.Scroll(ctx, 400); err != nil {
		utils.Debugf("extract %s: scroll failed: %v", candidateURL, err)
	}
	if err := e.settle(ctx); err != nil {
		return rec
	}

	// The document is fetched lazily: pages whose URL carries a full
	// timestamp never need it for the date.
	var (
		html       string
		htmlErr    error
		htmlLoaded bool
	)
	loadHTML := func() (string, error) {
		if !htmlLoaded {
			html, htmlErr = page.HTML(ctx)
			htmlLoaded = true
		}
		return html, htmlErr
	}

	bt := ResolveBroadcastTime(parts, format, loadHTML)
	rec.Year, rec.Month, rec.Day = bt.Year, bt.Month, bt.Day
	rec.Hour, rec.Minute = bt.Hour, bt.Minute

	for _, u := range page.MediaURLs() {
		if strings.Contains(u, e.policy.audioToken()) {
			if rec.AudioURL == "" {
				rec.AudioURL = u
			}
		} else if rec.VideoURL == "" {
			rec.VideoURL = u
		}
	}

	rec.Title = e.resolveTitle(parts, format, loadHTML)

	if rec.AudioURL == "" {
		if src, ok := playerElementSource(loadHTML); ok && strings.Contains(src, e.policy.audioToken()) {
			rec.AudioURL = src
		}
	}

	if !e.policy.Accepts(rec) {
		utils.Warnf("extract %s: no usable media URL (audio=%q video=%q)", candidateURL, rec.AudioURL, rec.VideoURL)
	}
	return rec
}

// resolveTitle prefers the page headline and falls back to the URL slug.
func (e *Extractor) resolveTitle(parts []string, format SiteFormat, loadHTML func() (string, error)) string {
	if html, err := loadHTML(); err == nil {
		if doc, derr := goquery.NewDocumentFromReader(strings.NewReader(html)); derr == nil {
			if title := strings.TrimSpace(doc.Find("h1").First().Text()); title != "" {
				return title
			}
		}
	}
	return urlTitle(parts, format)
}

// playerElementSource reads the src attribute off the rendered player
// element.
func playerElementSource(loadHTML func() (string, error)) (string, bool) {
	html, err := loadHTML()
	if err != nil {
		return "", false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}
	src, ok := doc.Find(playerSourceSelector).First().Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", false
	}
	return strings.TrimSpace(src), true
}

// settle waits a randomized duration within the configured bounds.
func (e *Extractor) settle(ctx context.Context) error {
	e.mu.Lock()
	d := e.settleMin + time.Duration(e.rng.Int63n(int64(e.settleMax-e.settleMin)))
	e.mu.Unlock()
	return sleepCtx(ctx, d)
}
