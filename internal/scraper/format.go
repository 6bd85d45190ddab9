// internal/scraper/format.go

package scraper

import (
	"fmt"
	"strings"

	"github.com/valpere/MediaScrapexter/internal/utils"
)

// SiteFormat distinguishes the two generations of segment page URLs the
// broadcaster serves.
type SiteFormat int

const (
	// FormatLegacy covers the regional news sites, where region and
	// channel are plain path segments
	FormatLegacy SiteFormat = iota

	// FormatPlayer covers the unified player platform, where the final
	// path segment encodes channel, region, and timestamp as dash-joined
	// tokens
	FormatPlayer
)

// String returns a short name for the format, used in logs.
func (f SiteFormat) String() string {
	if f == FormatPlayer {
		return "player"
	}
	return "legacy"
}

// DetectFormat classifies rawURL by its host.
func DetectFormat(rawURL string) SiteFormat {
	if strings.Contains(utils.HostOf(rawURL), "raiplaysound") {
		return FormatPlayer
	}
	return FormatLegacy
}

// splitURL renders the URL as slash-separated parts. For an absolute URL,
// part 0 is the scheme marker and part 2 the host, so path segments start
// at index 3.
func splitURL(rawURL string) []string {
	return strings.Split(utils.PathWithoutQuery(rawURL), "/")
}

// regionChannel recovers the broadcast region and channel from URL parts.
// Unrecoverable components come back empty rather than failing the record.
func regionChannel(parts []string, format SiteFormat) (region, channel string) {
	switch format {
	case FormatPlayer:
		if len(parts) <= 6 {
			return "", ""
		}
		tokens := strings.Split(strings.TrimSuffix(parts[6], ".html"), "-")
		if len(tokens) < 2 {
			return "", ""
		}
		return tokens[1], tokens[0]
	default:
		if len(parts) <= 4 {
			return "", ""
		}
		return parts[4], parts[3]
	}
}

// urlTitle derives a fallback title from the URL when the page itself
// yields none. Player URLs read as their final slug; legacy URLs compose
// the channel, region, and section segments with the year/month.
func urlTitle(parts []string, format SiteFormat) string {
	if len(parts) == 0 {
		return ""
	}
	last := strings.TrimSuffix(parts[len(parts)-1], ".html")
	if format == FormatPlayer {
		return strings.ReplaceAll(last, "-", " ")
	}
	if len(parts) > 7 {
		return fmt.Sprintf("%s - %s - %s / %s/%s", parts[3], parts[4], parts[5], parts[6], parts[7])
	}
	return last
}
