package collect

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/TobiSchelling/NewsTone/internal/config"
	"github.com/TobiSchelling/NewsTone/internal/database"
	"github.com/TobiSchelling/NewsTone/internal/fetch"
	"github.com/TobiSchelling/NewsTone/internal/headline"
)

// Source produces today's raw headlines from one site.
type Source interface {
	Name() string
	Fetch(ctx context.Context, now time.Time) ([]headline.Record, error)
}

// Result holds the results of a collection run.
type Result struct {
	TotalFound   int
	NewHeadlines int
	Duplicates   int
	Failed       []string // sources that returned an error
	Sources      map[string]int
}

// Collector runs every enabled source and stores the headlines.
type Collector struct {
	db      *database.DB
	sources []Source
	loc     *time.Location
}

// NewCollector creates a collector for the sources enabled in cfg.
func NewCollector(cfg *config.Config, db *database.DB) *Collector {
	loc := cfg.Location()
	client := newHTTPClient(cfg.Timeout())
	ua := cfg.Sources.UserAgent
	src := cfg.Sources

	var sources []Source
	if src.TimeF.Enabled {
		sources = append(sources, NewTimeF(client, ua, src.TimeF.URL, loc))
	}
	if src.Brutalist.Enabled {
		sources = append(sources, NewBrutalist(client, ua, src.Brutalist.URL, src.Brutalist.Limit, loc))
	}
	if src.Skimfeed.Enabled {
		sf := NewSkimfeed(client, ua, src.Skimfeed.URL, loc)
		if src.Skimfeed.ResolveTitles {
			sf.Resolver = fetch.NewTitleResolver(cfg.Timeout(), ua)
			sf.MaxResolves = src.Skimfeed.MaxResolves
		}
		sources = append(sources, sf)
	}
	if len(src.Feeds) > 0 {
		feeds := make([]FeedConfig, len(src.Feeds))
		for i, f := range src.Feeds {
			feeds[i] = FeedConfig{URL: f.URL, Name: f.Name}
		}
		sources = append(sources, NewFeedParser(feeds, loc))
	}
	if api := src.APIs.NewsAPI; api.Enabled {
		nc := NewNewsAPIClient(api.APIKeyEnv, api.Category, api.Country, loc)
		if nc.IsConfigured() {
			sources = append(sources, nc)
		} else {
			log.Printf("NewsAPI enabled but %s is not set, skipping", api.APIKeyEnv)
		}
	}

	return &Collector{db: db, sources: sources, loc: loc}
}

// NewCollectorWithSources creates a collector for an explicit source list.
func NewCollectorWithSources(db *database.DB, loc *time.Location, sources ...Source) *Collector {
	return &Collector{db: db, sources: sources, loc: loc}
}

// Sources returns the names of the configured sources.
func (c *Collector) Sources() []string {
	names := make([]string, len(c.sources))
	for i, s := range c.sources {
		names[i] = s.Name()
	}
	return names
}

// Collect fetches every source and stores the headlines under date. A failing
// source is logged and skipped.
func (c *Collector) Collect(ctx context.Context, date string) *Result {
	r := &Result{Sources: make(map[string]int)}
	now := time.Now().In(c.loc)

	for _, src := range c.sources {
		if ctx.Err() != nil {
			break
		}
		log.Printf("Collecting from %s...", src.Name())
		records, err := src.Fetch(ctx, now)
		if err != nil {
			log.Printf("Failed to collect from %s: %v", src.Name(), err)
			r.Failed = append(r.Failed, src.Name())
			continue
		}
		r.TotalFound += len(records)

		for _, rec := range records {
			source := rec.Source
			if source == "" {
				source = src.Name()
			}
			var published *string
			if rec.Date != "" {
				published = &rec.Date
			}

			id, err := c.db.InsertHeadline(date, rec.URL, rec.Title, &source, published)
			if err != nil {
				log.Printf("Failed to store headline %q: %v", rec.Title, err)
				continue
			}
			if id > 0 {
				r.NewHeadlines++
				r.Sources[src.Name()]++
			} else {
				r.Duplicates++
			}
		}
	}

	log.Printf("Collection complete: %d found, %d new, %d duplicates", r.TotalFound, r.NewHeadlines, r.Duplicates)
	return r
}

// Records converts stored headlines back into raw records.
func Records(headlines []database.Headline) []headline.Record {
	out := make([]headline.Record, len(headlines))
	for i, h := range headlines {
		out[i] = headline.Record{Title: h.Title, URL: h.URL}
		if h.Published != nil {
			out[i].Date = *h.Published
		}
		if h.Source != nil {
			out[i].Source = *h.Source
		}
	}
	return out
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}
