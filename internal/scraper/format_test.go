// internal/scraper/format_test.go

package scraper

import "testing"

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want SiteFormat
	}{
		{"player host", playerSegmentURL, FormatPlayer},
		{"regional host", legacySegmentURL, FormatLegacy},
		{"unknown host", "https://example.com/a.html", FormatLegacy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.url); got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRegionChannel(t *testing.T) {
	tests := []struct {
		name        string
		url         string
		format      SiteFormat
		wantRegion  string
		wantChannel string
	}{
		{
			name:        "player tokens",
			url:         playerSegmentURL,
			format:      FormatPlayer,
			wantRegion:  "basilicata",
			wantChannel: "gr",
		},
		{
			name:        "legacy segments",
			url:         legacySegmentURL,
			format:      FormatLegacy,
			wantRegion:  "basilicata",
			wantChannel: "tgr",
		},
		{
			name:        "player too short",
			url:         "https://www.raiplaysound.it/audio",
			format:      FormatPlayer,
			wantRegion:  "",
			wantChannel: "",
		},
		{
			name:        "legacy too short",
			url:         "https://www.raitgr.it/tgr",
			format:      FormatLegacy,
			wantRegion:  "",
			wantChannel: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			region, channel := regionChannel(splitURL(tt.url), tt.format)
			if region != tt.wantRegion || channel != tt.wantChannel {
				t.Errorf("regionChannel = (%q, %q), want (%q, %q)",
					region, channel, tt.wantRegion, tt.wantChannel)
			}
		})
	}
}

func TestURLTitle(t *testing.T) {
	if got := urlTitle(splitURL(playerSegmentURL), FormatPlayer); got != "gr basilicata del 30042023 ore 1210" {
		t.Errorf("player title = %q", got)
	}
	// Short legacy URLs fall back to the final slug.
	if got := urlTitle(splitURL(legacySegmentURL), FormatLegacy); got != "del-30042023-ore-1210-news" {
		t.Errorf("legacy title = %q", got)
	}
	// Longer legacy URLs compose channel, region, and section with the
	// year and month segments.
	long := "https://www.raitgr.it/tgr/basilicata/notiziari/2023/04/edizione.html"
	if got := urlTitle(splitURL(long), FormatLegacy); got != "tgr - basilicata - notiziari / 2023/04" {
		t.Errorf("composed legacy title = %q", got)
	}
}
