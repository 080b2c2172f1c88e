package headline

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/text/unicode/norm"
)

// Record is a raw headline as produced by a source scraper.
type Record struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Date   string `json:"date,omitempty"`   // ISO-8601 timestamp or empty
	Source string `json:"source,omitempty"` // section or site name, may be empty
}

// Drop reasons reported by Classify.
const (
	ReasonEmptyTitle = "empty title"
)

// Drop records an input row that was excluded from the batch.
type Drop struct {
	Index  int
	Title  string
	Reason string
}

// sourceTrailerRE matches a trailing attribution such as " — Reuters" or " - Bloomberg News".
var sourceTrailerRE = regexp.MustCompile(`\s*[–—-]\s+[A-Z][\p{L}\p{N}_ .&’'-]{2,}$`)

// tokenRE matches LM tokens: ASCII alphanumeric runs of two or more characters.
var tokenRE = regexp.MustCompile(`[A-Za-z0-9]{2,}`)

// Normalize cleans a headline for frequency analysis: HTML entities are decoded,
// the text is NFC-composed, whitespace is collapsed, a trailing source
// attribution is removed and the result is lowercased.
func Normalize(raw string) string {
	// Decoding can expose further entities ("&amp;amp;"), so repeat until stable.
	// Every pass after the first that changes s decodes an entity or strips
	// text, so the passes are bounded by the input length.
	s := raw
	for i := 0; i <= len(raw); i++ {
		next := normalizeOnce(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func normalizeOnce(s string) string {
	s = html.UnescapeString(s)
	s = norm.NFC.String(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(sourceTrailerRE.ReplaceAllString(s, ""))
	return strings.ToLower(s)
}

// Tokenize splits a title into upper-cased tokens for lexicon matching.
// Anything outside [A-Za-z0-9] is a separator; single characters are dropped.
func Tokenize(raw string) []string {
	matches := tokenRE.FindAllString(raw, -1)
	tokens := make([]string, len(matches))
	for i, m := range matches {
		tokens[i] = strings.ToUpper(m)
	}
	return tokens
}

// Classify splits records into the usable batch and the rows dropped with a reason.
// Input order is preserved in both outputs.
func Classify(records []Record) (usable []Record, dropped []Drop) {
	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			dropped = append(dropped, Drop{Index: i, Title: r.Title, Reason: ReasonEmptyTitle})
			continue
		}
		usable = append(usable, r)
	}
	return usable, dropped
}

// PublishedIn parses the record date in loc. ok is false when the record has no
// date or it cannot be parsed.
func (r Record) PublishedIn(loc *time.Location) (t time.Time, ok bool) {
	if strings.TrimSpace(r.Date) == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(r.Date, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc), true
}

// SameDay reports whether t falls on the calendar day of day in loc.
func SameDay(t, day time.Time, loc *time.Location) bool {
	y1, m1, d1 := t.In(loc).Date()
	y2, m2, d2 := day.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
