package collect

import (
	"context"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/TobiSchelling/NewsTone/internal/headline"
)

const maxPerFeed = 50

// FeedConfig represents a single feed configuration.
type FeedConfig struct {
	URL  string
	Name string
}

// FeedParser collects today's items from RSS/Atom feeds.
type FeedParser struct {
	feeds []FeedConfig
	loc   *time.Location
}

// NewFeedParser creates a new FeedParser.
func NewFeedParser(feeds []FeedConfig, loc *time.Location) *FeedParser {
	return &FeedParser{feeds: feeds, loc: loc}
}

func (fp *FeedParser) Name() string { return "Feeds" }

// Fetch parses every feed. A feed that fails is logged and skipped.
func (fp *FeedParser) Fetch(ctx context.Context, now time.Time) ([]headline.Record, error) {
	var all []headline.Record

	parser := gofeed.NewParser()
	for _, fc := range fp.feeds {
		name := fc.Name
		if name == "" {
			name = extractSourceName(fc.URL)
		}

		records, err := fp.parseFeed(ctx, parser, fc.URL, name, now)
		if err != nil {
			log.Printf("Failed to parse feed %s: %v", fc.URL, err)
			continue
		}
		all = append(all, records...)
		log.Printf("Parsed %d entries from %s for today", len(records), name)
	}

	return all, nil
}

func (fp *FeedParser) parseFeed(ctx context.Context, parser *gofeed.Parser, feedURL, sourceName string, now time.Time) ([]headline.Record, error) {
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	var records []headline.Record
	for _, item := range feed.Items {
		if len(records) >= maxPerFeed {
			break
		}
		rec, published := parseItem(item, sourceName)
		if rec == nil {
			continue
		}
		// Undated items get the benefit of the doubt.
		if published != nil && !headline.SameDay(*published, now, fp.loc) {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

func parseItem(item *gofeed.Item, source string) (*headline.Record, *time.Time) {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	title := strings.TrimSpace(item.Title)
	if itemURL == "" || title == "" {
		return nil, nil
	}

	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	rec := &headline.Record{Title: title, URL: itemURL, Source: source}
	if published != nil {
		rec.Date = published.Format(time.RFC3339)
	}
	return rec, published
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return feedURL
	}

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
