package derive

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/anivibe/anivibe/internal/media"
)

// DefaultCopyLimit is the spotlight description length.
const DefaultCopyLimit = 160

const fallbackCopy = "Dive into crisp storytelling powered by AniVibe."

// StripHTML returns the text content of an HTML fragment, trimmed.
func StripHTML(value string) string {
	if !strings.ContainsAny(value, "<&") {
		return strings.TrimSpace(value)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return strings.TrimSpace(value)
	}
	return strings.TrimSpace(doc.Text())
}

// CleanCopy strips markup and shortens text to limit runes, adding an
// ellipsis when cut. Empty input yields a stock tagline.
func CleanCopy(text string, limit int) string {
	if strings.TrimSpace(text) == "" {
		return fallbackCopy
	}
	stripped := StripHTML(text)
	r := []rune(stripped)
	if limit <= 0 || len(r) <= limit {
		return stripped
	}
	return strings.TrimSpace(string(r[:limit])) + "…"
}

// Synopsis prefers the HTML description, then the plain synopsis.
func Synopsis(a media.Anime) string {
	if cleaned := StripHTML(a.DescriptionHTML); cleaned != "" {
		return cleaned
	}
	return media.FirstNonEmpty(StripHTML(a.Synopsis), "Details coming soon.")
}

// FormatRating renders a score with one decimal, or "NR" when absent.
func FormatRating(r media.Rating) string {
	v, ok := r.Value()
	if !ok {
		return "NR"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// FormatScore renders a score with the given precision, or "" when absent.
func FormatScore(r media.Rating, digits int) string {
	v, ok := r.Value()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', digits, 64)
}

var titleCaser = cases.Title(language.English)

// FormatSeasonLabel renders "Fall 2024", "Fall", "2024" or "" when neither
// part is known.
func FormatSeasonLabel(season string, year int) string {
	var parts []string
	if season != "" {
		parts = append(parts, titleCaser.String(strings.ToLower(season)))
	}
	if year > 0 {
		parts = append(parts, strconv.Itoa(year))
	}
	return strings.Join(parts, " ")
}

// FormatDate renders a timestamp as "Oct 5, 2024" in loc, or "TBA".
func FormatDate(ts media.Timestamp, loc *time.Location) string {
	if !ts.Valid() {
		return "TBA"
	}
	if loc == nil {
		loc = time.Local
	}
	return ts.In(loc).Format("Jan 2, 2006")
}

// HumanizeStatus turns RELEASING_SOON style enums into words.
func HumanizeStatus(status string) string {
	if status == "" {
		return "Unknown"
	}
	return strings.ReplaceAll(status, "_", " ")
}

// CompactCount renders 1234567 as "1.2M". Absent counts render as "".
func CompactCount(c media.Count) string {
	v, ok := c.Value()
	if !ok {
		return ""
	}
	if math.Abs(float64(v)) < 1000 {
		return strconv.FormatInt(v, 10)
	}
	s := humanize.SIWithDigits(float64(v), 1, "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.NewReplacer("k", "K", "G", "B").Replace(s)
}

// ThousandsFollowers renders a follower count as "12K followers".
func ThousandsFollowers(c media.Count) string {
	v, _ := c.Value()
	return fmt.Sprintf("%dK followers", int64(math.Round(float64(v)/1000)))
}

// CommaCount renders 1234567 as "1,234,567", or "—" when absent.
func CommaCount(c media.Count) string {
	v, ok := c.Value()
	if !ok {
		return "—"
	}
	return humanize.Comma(v)
}
