package collect

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/TobiSchelling/NewsTone/internal/headline"
)

// ageRE matches relative age tags such as [19m], [1h] or [3d].
var ageRE = regexp.MustCompile(`\[(\d+)\s*([mhd])\]`)

// Brutalist scrapes a brutalist.report topic page.
type Brutalist struct {
	client    *http.Client
	userAgent string
	url       string
	limit     int
	loc       *time.Location
}

// NewBrutalist creates a brutalist.report source.
func NewBrutalist(client *http.Client, userAgent, pageURL string, limit int, loc *time.Location) *Brutalist {
	return &Brutalist{client: client, userAgent: userAgent, url: pageURL, limit: limit, loc: loc}
}

func (s *Brutalist) Name() string { return "Brutalist" }

func (s *Brutalist) Fetch(ctx context.Context, now time.Time) ([]headline.Record, error) {
	pageURL := s.url
	if s.limit > 0 {
		if u, err := url.Parse(s.url); err == nil {
			q := u.Query()
			q.Set("limit", strconv.Itoa(s.limit))
			u.RawQuery = q.Encode()
			pageURL = u.String()
		}
	}
	doc, err := fetchDocument(ctx, s.client, s.userAgent, pageURL)
	if err != nil {
		return nil, err
	}
	return parseBrutalist(doc, hostOf(s.url), now.In(s.loc)), nil
}

// ParseAge converts an age tag to a duration. ok is false when text has none.
func ParseAge(text string) (d time.Duration, ok bool) {
	m := ageRE.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	switch m[2] {
	case "m":
		return time.Duration(n) * time.Minute, true
	case "h":
		return time.Duration(n) * time.Hour, true
	default:
		return time.Duration(n) * 24 * time.Hour, true
	}
}

func parseBrutalist(doc *goquery.Document, own string, now time.Time) []headline.Record {
	var out []headline.Record
	seen := dedupe{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if !isExternal(href, own) {
			return
		}
		title := strings.TrimSpace(a.Text())
		if title == "" {
			return
		}

		age, ok := ParseAge(a.Parent().Text())
		if !ok {
			return
		}
		published := now.Add(-age)
		if !headline.SameDay(published, now, now.Location()) {
			return
		}
		if seen.add(title, href) {
			out = append(out, headline.Record{Title: title, URL: href, Date: published.Format(time.RFC3339)})
		}
	})
	return out
}
