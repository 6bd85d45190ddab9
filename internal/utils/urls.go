// internal/utils/urls.go

package utils

import (
	"net/url"
	"strings"
)

// HostOf returns the host component of rawURL, or an empty string when the
// URL cannot be parsed.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// LastPathSegment returns the final path segment of rawURL with any query
// string removed. Inputs that are already bare names are returned trimmed.
func LastPathSegment(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// PathWithoutQuery strips the query string and fragment from rawURL without
// otherwise normalizing it.
func PathWithoutQuery(rawURL string) string {
	s := rawURL
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	return s
}
