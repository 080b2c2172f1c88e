package collect

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/TobiSchelling/NewsTone/internal/headline"
)

var (
	timefStampRE = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\s+\d{2}:\d{2}:\d{2}\b`)
	domainLikeRE = regexp.MustCompile(`^[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
)

// maxAncestorUp bounds the climb from a timestamp to its headline container.
const maxAncestorUp = 4

// TimeF scrapes the timef.com business page. Items carry a
// "YYYY-MM-DD HH:MM:SS" stamp near an external headline link.
type TimeF struct {
	client    *http.Client
	userAgent string
	url       string
	loc       *time.Location
}

// NewTimeF creates a timef.com source.
func NewTimeF(client *http.Client, userAgent, pageURL string, loc *time.Location) *TimeF {
	return &TimeF{client: client, userAgent: userAgent, url: pageURL, loc: loc}
}

func (s *TimeF) Name() string { return "TimeF" }

func (s *TimeF) Fetch(ctx context.Context, now time.Time) ([]headline.Record, error) {
	doc, err := fetchDocument(ctx, s.client, s.userAgent, s.url)
	if err != nil {
		return nil, err
	}
	return parseTimeF(doc, hostOf(s.url), now.In(s.loc).Format("2006-01-02")), nil
}

func parseTimeF(doc *goquery.Document, own, today string) []headline.Record {
	var out []headline.Record
	seen := dedupe{}

	// Elements whose own text carries a timestamp.
	doc.Find("body *").Each(func(_ int, sel *goquery.Selection) {
		m := timefStampRE.FindStringSubmatch(ownText(sel))
		if m == nil || m[1] != today {
			return
		}
		node := sel
		for i := 0; i < maxAncestorUp && node.Length() > 0; i++ {
			if a := pickTitleAnchor(node, own); a != nil {
				title := strings.TrimSpace(a.Text())
				href, _ := a.Attr("href")
				if seen.add(title, href) {
					out = append(out, headline.Record{Title: title, URL: href, Date: m[0]})
				}
				return
			}
			node = node.Parent()
		}
	})
	return out
}

// pickTitleAnchor returns the first external link in sel that is not a bare
// domain label.
func pickTitleAnchor(sel *goquery.Selection, own string) *goquery.Selection {
	var found *goquery.Selection
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if own != "" && strings.Contains(href, own) {
			return true
		}
		text := strings.TrimSpace(a.Text())
		if text == "" || domainLikeRE.MatchString(text) {
			return true
		}
		found = a
		return false
	})
	return found
}

// ownText returns the text of sel's direct text children.
func ownText(sel *goquery.Selection) string {
	var b strings.Builder
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}
