// internal/output/pathplanner.go

package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/valpere/MediaScrapexter/internal/scraper"
)

// diacriticFolder strips combining marks so Italian region names like
// "Valle d'Aosta" or accented channel labels produce portable path
// components.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// PlanPath computes the destination file for rec under outputRoot and
// creates the containing directory. The layout is
// root/region/channel/year-month/channel_region_year_month[_day_time].mp3;
// the day/time suffix appears only when both components were recovered.
// An unset outputRoot yields an empty path, which callers treat as "do not
// download".
func PlanPath(rec *scraper.SegmentRecord, outputRoot string) (string, error) {
	if outputRoot == "" {
		return "", nil
	}

	region := foldComponent(rec.Region)
	channel := foldComponent(rec.Channel)

	regionDir := strings.ReplaceAll(region, " ", "-")
	channelDir := strings.ReplaceAll(channel, " ", "-")
	monthDir := fmt.Sprintf("%d-%d", rec.Year, rec.Month)

	suffix := ""
	if rec.Day != 0 && rec.Hour != 0 {
		suffix = fmt.Sprintf("_%02d_%02d%02d", rec.Day, rec.Hour, rec.Minute)
	}
	fileName := fmt.Sprintf("%s_%s_%d_%d%s.mp3", channel, region, rec.Year, rec.Month, suffix)
	fileName = strings.ToLower(strings.ReplaceAll(fileName, " ", "_"))

	dir := filepath.Join(outputRoot, regionDir, channelDir, monthDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return filepath.Join(dir, fileName), nil
}

// foldComponent removes diacritics from a path component. Folding failures
// fall back to the raw value rather than losing the download.
func foldComponent(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		return s
	}
	return folded
}
