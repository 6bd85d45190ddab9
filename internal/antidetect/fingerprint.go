// internal/antidetect/fingerprint.go

// Package antidetect generates randomized but internally consistent browser
// fingerprints so that scraping sessions resemble ordinary visitor traffic.
package antidetect

import (
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Fingerprint describes one browser session identity: the user agent,
// viewport, locale, timezone, and the search referer the first navigation
// claims to arrive from.
type Fingerprint struct {
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	Timezone       string
	Referer        string
}

// Generator produces fingerprints from fixed identity pools. A Generator is
// safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator seeded from the clock.
func NewGenerator() *Generator {
	return NewGeneratorWithSeed(time.Now().UnixNano())
}

// NewGeneratorWithSeed returns a Generator with a deterministic sequence,
// used in tests.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
}

var viewports = []struct{ width, height int }{
	{1920, 1080},
	{1680, 1050},
	{1536, 864},
	{1440, 900},
	{1366, 768},
}

// Europe/Rome appears twice so the majority of sessions present as Italian.
var timezones = []struct{ tz, locale string }{
	{"Europe/Rome", "it-IT"},
	{"Europe/Rome", "it-IT"},
	{"Europe/London", "en-GB"},
}

var italianPhrases = []string{
	"notiziario regionale %s",
	"ultime notizie %s oggi",
	"giornale radio %s",
	"tg regionale %s edizione",
	"%s notizie locali",
	"rassegna stampa %s",
	"cronaca regionale %s",
	"edizione del giorno %s",
	"radiogiornale %s ascolta",
	"telegiornale %s di oggi",
	"%s notiziario ore 12",
}

var englishPhrases = []string{
	"%s regional news today",
	"%s radio news bulletin",
	"listen %s news edition",
	"%s local broadcast news",
}

const searchHost = "https://www.google.com/search?q="

// Generate draws one fingerprint. The referer phrase pool follows the drawn
// timezone: Italian sessions search in Italian, others in English.
func (g *Generator) Generate() Fingerprint {
	g.mu.Lock()
	defer g.mu.Unlock()

	zone := timezones[g.rng.Intn(len(timezones))]
	vp := viewports[g.rng.Intn(len(viewports))]

	phrases := englishPhrases
	if strings.HasPrefix(zone.locale, "it") {
		phrases = italianPhrases
	}
	query := fmt.Sprintf(phrases[g.rng.Intn(len(phrases))], "rai")

	return Fingerprint{
		UserAgent:      userAgents[g.rng.Intn(len(userAgents))],
		ViewportWidth:  vp.width,
		ViewportHeight: vp.height,
		Locale:         zone.locale,
		Timezone:       zone.tz,
		Referer:        searchHost + url.QueryEscape(query),
	}
}
