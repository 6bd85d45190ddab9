// internal/output/ledger_test.go

package output

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLedgerMissingFile(t *testing.T) {
	l, err := LoadLedger(filepath.Join(t.TempDir(), "ledger.txt"))
	if err != nil {
		t.Fatalf("LoadLedger on a missing file failed: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("missing file produced %d entries", l.Len())
	}
	if l.IsDownloaded("https://www.raitgr.it/tgr/basilicata/del-30042023-ore-1210-news.html") {
		t.Error("empty ledger reported a URL as downloaded")
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	l, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}

	urls := []string{
		"https://www.raitgr.it/tgr/basilicata/del-30042023-ore-1210-news.html",
		"https://www.raiplaysound.it/audio/2023/04/gr-basilicata-del-30042023-ore-1940.html",
		"https://www.raiplaysound.it/audio/2023/05/gr-molise-del-01052023-ore-0710.html",
	}
	for _, u := range urls {
		if err := l.Append(u); err != nil {
			t.Fatalf("Append(%q) failed: %v", u, err)
		}
	}

	reloaded, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Len() != len(urls) {
		t.Fatalf("reloaded ledger has %d entries, want %d", reloaded.Len(), len(urls))
	}
	for _, u := range urls {
		if !reloaded.IsDownloaded(u) {
			t.Errorf("reloaded ledger lost %q", u)
		}
	}
}

func TestLedgerAppendIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	l, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}

	url := "https://www.raitgr.it/tgr/basilicata/del-30042023-ore-1210-news.html"
	for i := 0; i < 3; i++ {
		if err := l.Append(url); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	if l.Len() != 1 {
		t.Errorf("ledger has %d entries after repeated appends, want 1", l.Len())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading ledger file: %v", err)
	}
	if want := url + "\n"; string(data) != want {
		t.Errorf("ledger file contains %q, want a single line", data)
	}
}

func TestLedgerKeyMatching(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	l, _ := LoadLedger(path)
	if err := l.Append("https://www.raitgr.it/tgr/basilicata/del-30042023-ore-1210-news.html"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{
			name: "same file under a different path",
			url:  "https://mirror.example.it/archive/del-30042023-ore-1210-news.html",
			want: true,
		},
		{
			name: "case differs",
			url:  "https://www.raitgr.it/tgr/basilicata/DEL-30042023-ORE-1210-NEWS.html",
			want: false,
		},
		{
			name: "different file",
			url:  "https://www.raitgr.it/tgr/basilicata/del-30042023-ore-1940-news.html",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.IsDownloaded(tt.url); got != tt.want {
				t.Errorf("IsDownloaded(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestLoadLedgerSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	content := "https://a.example.it/one.html\n\n  \nhttps://a.example.it/two.html\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("LoadLedger failed: %v", err)
	}
	if l.Len() != 2 {
		t.Errorf("ledger has %d entries, want 2", l.Len())
	}
}
