// internal/scraper/resolver.go

package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// DateWindow bounds discovery to a month range. The zero window matches
// every URL.
type DateWindow struct {
	From time.Time
	To   time.Time
}

// Active reports whether both bounds are set.
func (w DateWindow) Active() bool {
	return !w.From.IsZero() && !w.To.IsZero()
}

// Contains reports whether rawURL's year/month path segments fall inside
// the window, inclusive at both ends. URLs without a recognizable
// year/month pair are excluded once a window is active.
func (w DateWindow) Contains(rawURL string) bool {
	if !w.Active() {
		return true
	}
	year, month, ok := yearMonthSegments(rawURL)
	if !ok {
		return false
	}
	stamp := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	lo := time.Date(w.From.Year(), w.From.Month(), 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(w.To.Year(), w.To.Month(), 1, 0, 0, 0, 0, time.UTC)
	return !stamp.Before(lo) && !stamp.After(hi)
}

// yearMonthSegments finds the first adjacent pair of path segments that
// read as a four-digit year followed by a month.
func yearMonthSegments(rawURL string) (year, month int, ok bool) {
	parts := strings.Split(utils.PathWithoutQuery(rawURL), "/")
	for i := 0; i+1 < len(parts); i++ {
		if len(parts[i]) != 4 {
			continue
		}
		y, err := strconv.Atoi(parts[i])
		if err != nil || y < 1990 {
			continue
		}
		m, err := strconv.Atoi(parts[i+1])
		if err != nil || m < 1 || m > 12 {
			continue
		}
		return y, m, true
	}
	return 0, 0, false
}

// Resolver turns configured source addresses into candidate segment page
// URLs. Sitemap sources are fetched directly over HTTP; listing pages are
// rendered in a browser so client-side markup is present.
type Resolver struct {
	client *http.Client
	window DateWindow

	// listingSettle is how long a listing page is given to render
	// before its links are read
	listingSettle time.Duration
}

// NewResolver builds a Resolver filtered by window.
func NewResolver(client *http.Client, window DateWindow) *Resolver {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Resolver{
		client:        client,
		window:        window,
		listingSettle: 2 * time.Second,
	}
}

// Resolve expands one source address into filtered candidate URLs. XML
// addresses are treated as sitemaps; anything else as an HTML listing page
// rendered through session.
func (r *Resolver) Resolve(ctx context.Context, address string, session Session) ([]string, error) {
	var urls []string
	var err error
	if strings.HasSuffix(utils.PathWithoutQuery(address), ".xml") {
		urls, err = r.resolveSitemap(ctx, address)
	} else {
		urls, err = r.resolveListing(ctx, address, session)
	}
	if err != nil {
		return nil, err
	}

	filtered := filterMediaPages(urls)
	if r.window.Active() {
		kept := filtered[:0]
		for _, u := range filtered {
			if r.window.Contains(u) {
				kept = append(kept, u)
			}
		}
		filtered = kept
	}
	utils.Debugf("source %s resolved to %d candidates", address, len(filtered))
	return filtered, nil
}

// sitemapURLSet mirrors the <urlset><url><loc> structure of a sitemap.
type sitemapURLSet struct {
	Locs []string `xml:"url>loc"`
}

func (r *Resolver) resolveSitemap(ctx context.Context, address string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build sitemap request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap %s: %w", address, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap %s returned status %d", address, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sitemap body: %w", err)
	}

	var set sitemapURLSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap %s: %w", address, err)
	}

	urls := make([]string, 0, len(set.Locs))
	for _, loc := range set.Locs {
		if loc = strings.TrimSpace(loc); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// listingLinkSelector picks segment links out of a rendered listing page.
const listingLinkSelector = "div[role='listitem'] > article.relative > a.relative.group.block"

func (r *Resolver) resolveListing(ctx context.Context, address string, session Session) ([]string, error) {
	if session == nil {
		return nil, fmt.Errorf("listing source %s requires a browser session", address)
	}
	page, err := session.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to open listing page: %w", err)
	}
	defer page.Close()

	if err := page.Navigate(ctx, address); err != nil {
		return nil, err
	}
	page.DismissCookieBanner(ctx)
	if err := sleepCtx(ctx, r.listingSettle); err != nil {
		return nil, err
	}

	html, err := page.HTML(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing %s: %w", address, err)
	}

	origin := originOf(address)
	var urls []string
	doc.Find(listingLinkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}
		if strings.HasPrefix(href, "/") {
			href = origin + href
		}
		urls = append(urls, href)
	})
	return urls, nil
}

// filterMediaPages keeps URLs under an /audio/ or /video/ path segment.
func filterMediaPages(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		path := utils.PathWithoutQuery(u)
		if strings.Contains(path, "/audio/") || strings.Contains(path, "/video/") {
			out = append(out, u)
		}
	}
	return out
}

func originOf(rawURL string) string {
	parts := strings.SplitN(rawURL, "/", 4)
	if len(parts) < 3 {
		return ""
	}
	return parts[0] + "//" + parts[2]
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if ctx == nil {
		time.Sleep(d)
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
