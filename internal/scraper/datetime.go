// internal/scraper/datetime.go

package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// BroadcastTime holds the recovered timestamp components of a segment.
// Components that no source could supply stay zero; a record with only
// Year and Month set is still usable for path planning.
type BroadcastTime struct {
	Year   int
	Month  int
	Day    int
	Hour   int
	Minute int
}

// IsZero reports whether no component was recovered.
func (b BroadcastTime) IsZero() bool {
	return b == BroadcastTime{}
}

// ResolveBroadcastTime recovers the timestamp through a fallback chain:
// the URL's embedded date token first, then the rendered page, then the
// coarse year/month path segments. loadHTML is invoked only when the URL
// token is missing or malformed, so pages with well-formed URLs never pay
// for a DOM read.
func ResolveBroadcastTime(parts []string, format SiteFormat, loadHTML func() (string, error)) BroadcastTime {
	if bt, ok := timeFromURL(parts, format); ok {
		return bt
	}
	if html, err := loadHTML(); err == nil {
		if bt, ok := timeFromDOM(html, format); ok {
			return bt
		}
	}
	if bt, ok := yearMonthFromURL(parts, format); ok {
		return bt
	}
	return BroadcastTime{}
}

// timeFromURL parses the full timestamp embedded in the URL.
func timeFromURL(parts []string, format SiteFormat) (BroadcastTime, bool) {
	if format == FormatPlayer {
		if len(parts) <= 6 {
			return BroadcastTime{}, false
		}
		tokens := strings.Split(strings.TrimSuffix(parts[6], ".html"), "-")
		if len(tokens) < 6 {
			return BroadcastTime{}, false
		}
		return decodeStamp(tokens[3], tokens[5])
	}

	for _, part := range parts {
		if !strings.Contains(part, "del-") || !strings.Contains(part, "-ore-") {
			continue
		}
		rest := part[strings.Index(part, "del-")+len("del-"):]
		i := strings.Index(rest, "-ore-")
		if i < 0 {
			continue
		}
		date := rest[:i]
		clock := rest[i+len("-ore-"):]
		if j := strings.IndexByte(clock, '-'); j >= 0 {
			clock = clock[:j]
		}
		clock = strings.TrimSuffix(clock, ".html")
		if bt, ok := decodeStamp(date, clock); ok {
			return bt, true
		}
	}
	return BroadcastTime{}, false
}

// decodeStamp decomposes DDMMYYYY and HHMM strings and validates them by a
// strict calendar round trip, rejecting stamps like the 31st of February.
func decodeStamp(date, clock string) (BroadcastTime, bool) {
	if len(date) < 8 || len(clock) < 4 {
		return BroadcastTime{}, false
	}
	fields := []string{date[4:8], date[2:4], date[0:2], clock[0:2], clock[2:4]}
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return BroadcastTime{}, false
		}
		nums[i] = n
	}
	joined := fmt.Sprintf("%s %s %s %s %s", fields[0], fields[1], fields[2], fields[3], fields[4])
	if _, err := time.Parse("2006 01 02 15 04", joined); err != nil {
		return BroadcastTime{}, false
	}
	return BroadcastTime{
		Year:   nums[0],
		Month:  nums[1],
		Day:    nums[2],
		Hour:   nums[3],
		Minute: nums[4],
	}, true
}

// playerHeadlinePattern matches the "DD/MM/YYYY ore HH:MM" stamp shown in
// player page headlines.
var playerHeadlinePattern = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4} ore \d{2}:\d{2}\b`)

// legacyDateLayouts are tried in order against the datetime attribute on
// legacy article pages.
var legacyDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeFromDOM scrapes the rendered page for a broadcast stamp.
func timeFromDOM(html string, format SiteFormat) (BroadcastTime, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return BroadcastTime{}, false
	}

	if format == FormatPlayer {
		stamp := playerHeadlinePattern.FindString(doc.Find("h1").First().Text())
		if stamp == "" {
			return BroadcastTime{}, false
		}
		t, err := time.Parse("02/01/2006 15:04", strings.Replace(stamp, " ore ", " ", 1))
		if err != nil {
			return BroadcastTime{}, false
		}
		return fromTime(t), true
	}

	attr, ok := doc.Find("div.article__date time").First().Attr("datetime")
	if !ok {
		return BroadcastTime{}, false
	}
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(attr)); err == nil {
			return fromTime(t), true
		}
	}
	return BroadcastTime{}, false
}

// yearMonthFromURL recovers the coarse year and month from path segments,
// leaving day and time zero.
func yearMonthFromURL(parts []string, format SiteFormat) (BroadcastTime, bool) {
	var yearIdx, monthIdx int
	if format == FormatPlayer {
		yearIdx, monthIdx = 4, 5
	} else {
		yearIdx, monthIdx = 6, 7
	}
	if len(parts) <= monthIdx {
		return BroadcastTime{}, false
	}
	if len(parts[yearIdx]) != 4 {
		return BroadcastTime{}, false
	}
	year, err := strconv.Atoi(parts[yearIdx])
	if err != nil {
		return BroadcastTime{}, false
	}
	month, err := strconv.Atoi(parts[monthIdx])
	if err != nil || month < 1 || month > 12 {
		return BroadcastTime{}, false
	}
	return BroadcastTime{Year: year, Month: month}, true
}

func fromTime(t time.Time) BroadcastTime {
	return BroadcastTime{
		Year:   t.Year(),
		Month:  int(t.Month()),
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}
