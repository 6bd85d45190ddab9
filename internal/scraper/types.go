// internal/scraper/types.go

// Package scraper implements segment discovery and extraction for the RAI
// regional news sites. It resolves candidate page URLs from sitemaps and
// listing pages, drives browser pages through extraction, and assembles
// segment records carrying media URLs and broadcast timestamps.
package scraper

import (
	"context"
	"strings"
)

// SegmentRecord is the outcome of extracting one candidate page: the
// broadcast's identity, its timestamp components, and the media URLs
// observed while the page loaded.
type SegmentRecord struct {
	// SourceURL is the candidate page the record was extracted from
	SourceURL string `json:"source_url"`

	// Title is the human-readable segment title
	Title string `json:"title"`

	// Region and Channel locate the broadcast within the network
	Region  string `json:"region"`
	Channel string `json:"channel"`

	// AudioURL and VideoURL are the intercepted media addresses; either
	// may be empty when the page exposed no matching request
	AudioURL string `json:"audio_url,omitempty"`
	VideoURL string `json:"video_url,omitempty"`

	// Broadcast timestamp components. Zero values mean the component
	// could not be recovered from any source.
	Year   int `json:"year"`
	Month  int `json:"month"`
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// MediaPolicy decides whether a record's media URLs make it actionable.
type MediaPolicy struct {
	// AudioToken must appear in AudioURL for direct audio download
	AudioToken string

	// VideoToken, when set, must appear in VideoURL for audio extraction;
	// empty accepts any non-empty video URL
	VideoToken string
}

func (p MediaPolicy) audioToken() string {
	if p.AudioToken == "" {
		return ".mp3"
	}
	return p.AudioToken
}

// Accepts reports whether rec carries at least one usable media URL.
func (p MediaPolicy) Accepts(rec *SegmentRecord) bool {
	if rec == nil || rec.SourceURL == "" {
		return false
	}
	if rec.AudioURL != "" && strings.Contains(rec.AudioURL, p.audioToken()) {
		return true
	}
	if rec.VideoURL == "" {
		return false
	}
	return p.VideoToken == "" || strings.Contains(rec.VideoURL, p.VideoToken)
}

// Page is one navigable browser tab with network observation.
type Page interface {
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	Scroll(ctx context.Context, y int) error
	DismissCookieBanner(ctx context.Context)
	MediaURLs() []string
	Close()
}

// Session opens pages within one browser process.
type Session interface {
	NewPage() (Page, error)
	Close()
}

// Launcher starts browser sessions, one per URL group.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}
