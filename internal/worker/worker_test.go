// internal/worker/worker_test.go

package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/internal/scraper"
)

// stubPage serves fixed media URLs for whatever URL it is asked to load.
type stubPage struct {
	media []string
}

func (p *stubPage) Navigate(context.Context, string) error { return nil }
func (p *stubPage) HTML(context.Context) (string, error) {
	return "<html><body><h1>GR Basilicata</h1></body></html>", nil
}
func (p *stubPage) Scroll(context.Context, int) error   { return nil }
func (p *stubPage) DismissCookieBanner(context.Context) {}
func (p *stubPage) MediaURLs() []string                 { return p.media }
func (p *stubPage) Close()                              {}

type stubSession struct {
	media []string
}

func (s *stubSession) NewPage() (scraper.Page, error) {
	return &stubPage{media: s.media}, nil
}
func (s *stubSession) Close() {}

type stubLauncher struct {
	mu       sync.Mutex
	media    []string
	err      error
	launches int
}

func (l *stubLauncher) Launch(context.Context) (scraper.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.launches++
	return &stubSession{media: l.media}, nil
}

func (l *stubLauncher) launchCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.launches
}

func sitemapFor(urls ...string) string {
	doc := `<?xml version="1.0" encoding="UTF-8"?><urlset>`
	for _, u := range urls {
		doc += fmt.Sprintf("<url><loc>%s</loc></url>", u)
	}
	return doc + `</urlset>`
}

func testConfig(t *testing.T, sitemapURL string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Name:             "test",
		SourceAddresses:  []string{sitemapURL},
		OutputFolderPath: filepath.Join(dir, "out"),
		LedgerFilePath:   filepath.Join(dir, "ledger.txt"),
		Concurrency: config.ConcurrencyConfig{
			MaxSessions: 1,
			GroupSize:   10,
		},
		Browser: config.BrowserConfig{
			SettleDelayMin: config.Duration(time.Millisecond),
			SettleDelayMax: config.Duration(2 * time.Millisecond),
		},
		Media: config.MediaConfig{AudioToken: ".mp3"},
	}
}

func TestRunCycleEndToEnd(t *testing.T) {
	audio := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3 bytes"))
	}))
	defer audio.Close()

	const (
		segOne = "https://www.raiplaysound.it/audio/2023/04/gr-basilicata-del-30042023-ore-1210.html"
		segTwo = "https://www.raiplaysound.it/audio/2023/04/gr-basilicata-del-30042023-ore-1940.html"
	)
	sitemap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sitemapFor(segOne, segTwo, "https://www.raiplaysound.it/programmi/gr")))
	}))
	defer sitemap.Close()

	cfg := testConfig(t, sitemap.URL+"/sitemap.xml")
	launcher := &stubLauncher{media: []string{audio.URL + "/gr.mp3"}}
	w, err := New(cfg, WithLauncher(launcher))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	candidates, err := w.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}
	if candidates != 2 {
		t.Errorf("discovered %d candidates, want 2", candidates)
	}

	// The two editions differ only by broadcast hour, so both land in
	// the same month directory under distinct names.
	matches, err := filepath.Glob(filepath.Join(cfg.OutputFolderPath, "basilicata", "gr", "2023-4", "*.mp3"))
	if err != nil || len(matches) != 2 {
		t.Fatalf("expected 2 downloads, got %v (err %v)", matches, err)
	}

	ledger, err := os.ReadFile(cfg.LedgerFilePath)
	if err != nil {
		t.Fatalf("ledger not written: %v", err)
	}
	for _, seg := range []string{segOne, segTwo} {
		if !containsLine(string(ledger), seg) {
			t.Errorf("ledger missing %s", seg)
		}
	}
}

func TestRunCycleSkipsLedgeredCandidates(t *testing.T) {
	const seg = "https://www.raiplaysound.it/audio/2023/04/gr-basilicata-del-30042023-ore-1210.html"
	sitemap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sitemapFor(seg)))
	}))
	defer sitemap.Close()

	cfg := testConfig(t, sitemap.URL+"/sitemap.xml")
	if err := os.WriteFile(cfg.LedgerFilePath, []byte(seg+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	launcher := &stubLauncher{media: []string{"https://media.example.it/gr.mp3"}}
	w, err := New(cfg, WithLauncher(launcher))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := w.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle failed: %v", err)
	}

	// The only candidate was already in the ledger, so nothing should
	// have been written under the output root.
	matches, _ := filepath.Glob(filepath.Join(cfg.OutputFolderPath, "*", "*", "*", "*.mp3"))
	if len(matches) != 0 {
		t.Errorf("ledgered candidate was downloaded again: %v", matches)
	}
}

func TestRunCycleLaunchFailure(t *testing.T) {
	const seg = "https://www.raiplaysound.it/audio/2023/04/gr-basilicata-del-30042023-ore-1210.html"
	sitemap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sitemapFor(seg)))
	}))
	defer sitemap.Close()

	cfg := testConfig(t, sitemap.URL+"/sitemap.xml")
	launchErr := errors.New("browser launch failed")
	w, err := New(cfg, WithLauncher(&stubLauncher{err: launchErr}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if _, err := w.RunCycle(context.Background()); !errors.Is(err, launchErr) {
		t.Fatalf("RunCycle error = %v, want launch failure", err)
	}
}

func TestRunRespectsParsingHours(t *testing.T) {
	cfg := testConfig(t, "https://www.raiplaysound.it/sitemap.xml")
	cfg.ParsingHours = []int{(time.Now().Hour() + 12) % 24}

	launcher := &stubLauncher{}
	w, err := New(cfg, WithLauncher(launcher), WithIntervals(time.Millisecond, time.Millisecond, time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Run returned %v, want deadline exceeded", err)
	}

	if launcher.launchCount() != 0 {
		t.Errorf("worker launched %d sessions outside permitted hours", launcher.launchCount())
	}
	if w.State() != StateIdle {
		t.Errorf("state = %v, want idle", w.State())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	sitemap := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sitemapFor()))
	}))
	defer sitemap.Close()

	cfg := testConfig(t, sitemap.URL+"/sitemap.xml")
	w, err := New(cfg, WithLauncher(&stubLauncher{}), WithIntervals(time.Millisecond, time.Millisecond, time.Millisecond))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func containsLine(haystack, needle string) bool {
	for _, line := range strings.Split(haystack, "\n") {
		if line == needle {
			return true
		}
	}
	return false
}
