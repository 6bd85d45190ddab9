// internal/browser/observer.go

package browser

import (
	"strings"
	"sync"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// mediaTokens identify network requests worth recording: direct audio
// files, MP4 video, and HLS playlists.
var mediaTokens = []string{".mp3", ".mp4", ".m3u8"}

// MediaObserver accumulates media URLs seen on the network layer of a single
// page. Interception callbacks record into it concurrently while the scraper
// reads results after the settle delay.
type MediaObserver struct {
	mu   sync.Mutex
	seen map[string]struct{}
	urls []string
}

// NewMediaObserver returns an empty observer.
func NewMediaObserver() *MediaObserver {
	return &MediaObserver{seen: make(map[string]struct{})}
}

// Record stores rawURL if it refers to a media resource. Duplicate URLs are
// recorded once; the query string does not participate in matching.
func (o *MediaObserver) Record(rawURL string) {
	if !IsMediaURL(rawURL) {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, dup := o.seen[rawURL]; dup {
		return
	}
	o.seen[rawURL] = struct{}{}
	o.urls = append(o.urls, rawURL)
}

// URLs returns the recorded media URLs in observation order.
func (o *MediaObserver) URLs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, len(o.urls))
	copy(out, o.urls)
	return out
}

// IsMediaURL reports whether rawURL points at an audio file, a video file,
// or a streaming playlist.
func IsMediaURL(rawURL string) bool {
	path := strings.ToLower(utils.PathWithoutQuery(rawURL))
	for _, tok := range mediaTokens {
		if strings.Contains(path, tok) {
			return true
		}
	}
	return false
}
