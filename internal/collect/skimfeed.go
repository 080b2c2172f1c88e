package collect

import (
	"context"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"

	"github.com/TobiSchelling/NewsTone/internal/headline"
)

var (
	ellipsisRE = regexp.MustCompile(`(\x{2026}|\.\.\.)$`)
	isoDateRE  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(?:[ T]\d{2}:\d{2}(?::\d{2})?)?`)
	spaceRE    = regexp.MustCompile(`\s+`)
)

var dateAttrs = []string{"data-time", "data-ts", "data-timestamp", "data-pubdate", "datetime", "title"}

// TitleResolver looks up the full title of an article page.
type TitleResolver interface {
	Resolve(ctx context.Context, pageURL string) (string, error)
}

// Skimfeed scrapes a skimfeed.com custom page. Links are grouped under the
// nearest preceding heading, which becomes the record source.
type Skimfeed struct {
	client    *http.Client
	userAgent string
	url       string
	loc       *time.Location

	Resolver    TitleResolver // optional, for truncated titles
	MaxResolves int
}

// NewSkimfeed creates a skimfeed.com source.
func NewSkimfeed(client *http.Client, userAgent, pageURL string, loc *time.Location) *Skimfeed {
	return &Skimfeed{client: client, userAgent: userAgent, url: pageURL, loc: loc}
}

func (s *Skimfeed) Name() string { return "Skimfeed" }

func (s *Skimfeed) Fetch(ctx context.Context, now time.Time) ([]headline.Record, error) {
	doc, err := fetchDocument(ctx, s.client, s.userAgent, s.url)
	if err != nil {
		return nil, err
	}
	items := parseSkimfeed(doc, s.loc)
	items = filterToday(items, now, s.loc)
	s.resolveTruncated(ctx, items)
	return items, nil
}

func parseSkimfeed(doc *goquery.Document, loc *time.Location) []headline.Record {
	var out []headline.Record
	seen := dedupe{}
	section := "Uncategorized"

	doc.Find("h1, h2, h3, h4, li > a[href]").Each(func(_ int, sel *goquery.Selection) {
		if goquery.NodeName(sel) != "a" {
			section = sectionName(sel.Text())
			return
		}
		title := preferFullTitle(sel)
		if title == "" || !seen.add(section, title) {
			return
		}
		href, _ := sel.Attr("href")
		rec := headline.Record{Title: title, URL: strings.TrimSpace(href)}
		if section != "Latest" {
			rec.Source = section
		}
		if t, ok := extractTime(sel, loc); ok {
			rec.Date = t.Format(time.RFC3339)
		}
		out = append(out, rec)
	})
	return out
}

// sectionName trims headings like "Economist Business + www.economist.com".
func sectionName(raw string) string {
	txt := strings.TrimSpace(spaceRE.ReplaceAllString(raw, " "))
	if i := strings.Index(txt, " +"); i >= 0 {
		txt = txt[:i]
	}
	return txt
}

func preferFullTitle(a *goquery.Selection) string {
	visible := strings.TrimSpace(spaceRE.ReplaceAllString(a.Text(), " "))
	attr := strings.TrimSpace(a.AttrOr("title", ""))
	if len(attr) > len(visible) {
		return attr
	}
	return visible
}

// extractTime looks for a timestamp in a following <time> element, in date
// attributes of the link or its parent, or in the surrounding text.
func extractTime(a *goquery.Selection, loc *time.Location) (time.Time, bool) {
	if tt := a.NextAllFiltered("time").First(); tt.Length() > 0 {
		for _, c := range []string{tt.AttrOr("datetime", ""), tt.AttrOr("title", ""), strings.TrimSpace(tt.Text())} {
			if t, ok := parseTime(c, loc); ok {
				return t, true
			}
		}
	}
	for _, node := range []*goquery.Selection{a, a.Parent()} {
		for _, key := range dateAttrs {
			if t, ok := parseTime(node.AttrOr(key, ""), loc); ok {
				return t, true
			}
		}
	}
	if m := isoDateRE.FindString(a.Parent().Text()); m != "" {
		return parseTime(m, loc)
	}
	return time.Time{}, false
}

func parseTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t.In(loc), true
}

// filterToday keeps today's items when any item is dated. When nothing dated
// survives the filter, every item is kept.
func filterToday(items []headline.Record, now time.Time, loc *time.Location) []headline.Record {
	anyDated := false
	var today []headline.Record
	for _, it := range items {
		t, ok := it.PublishedIn(loc)
		if !ok {
			continue
		}
		anyDated = true
		if headline.SameDay(t, now, loc) {
			today = append(today, it)
		}
	}
	if !anyDated || len(today) == 0 {
		if anyDated {
			log.Printf("Skimfeed: no items dated today, keeping all %d items", len(items))
		}
		return items
	}
	return today
}

func (s *Skimfeed) resolveTruncated(ctx context.Context, items []headline.Record) {
	if s.Resolver == nil {
		return
	}
	resolved := 0
	for i := range items {
		if resolved >= s.MaxResolves {
			return
		}
		if !ellipsisRE.MatchString(items[i].Title) || items[i].URL == "" {
			continue
		}
		resolved++
		title, err := s.Resolver.Resolve(ctx, items[i].URL)
		if err != nil || title == "" {
			continue
		}
		items[i].Title = title
	}
}
