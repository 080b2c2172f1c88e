package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/TobiSchelling/NewsTone/internal/headline"
)

const newsAPIBaseURL = "https://newsapi.org/v2/top-headlines"

// NewsAPIClient fetches top headlines for a category from NewsAPI.
type NewsAPIClient struct {
	apiKey   string
	category string
	country  string
	baseURL  string
	loc      *time.Location
	client   *http.Client
}

// NewNewsAPIClient creates a new NewsAPI client.
func NewNewsAPIClient(apiKeyEnv, category, country string, loc *time.Location) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:   os.Getenv(apiKeyEnv),
		category: category,
		country:  country,
		baseURL:  newsAPIBaseURL,
		loc:      loc,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// IsConfigured returns whether the API key is available.
func (c *NewsAPIClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *NewsAPIClient) Name() string { return "NewsAPI" }

// Fetch returns today's top headlines.
func (c *NewsAPIClient) Fetch(ctx context.Context, now time.Time) ([]headline.Record, error) {
	params := url.Values{
		"category": {c.category},
		"pageSize": {"100"},
	}
	if c.country != "" {
		params.Set("country", c.country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NewsAPI HTTP error: %d", resp.StatusCode)
	}

	var result struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Articles []struct {
			URL         string `json:"url"`
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding NewsAPI response: %w", err)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("NewsAPI status %s: %s", result.Status, result.Message)
	}

	var records []headline.Record
	for _, a := range result.Articles {
		if a.URL == "" || a.Title == "" || a.Title == "[Removed]" {
			continue
		}
		rec := headline.Record{Title: strings.TrimSpace(a.Title), URL: a.URL, Source: a.Source.Name}
		if a.PublishedAt != "" {
			t, err := time.Parse(time.RFC3339, a.PublishedAt)
			if err == nil {
				if !headline.SameDay(t, now, c.loc) {
					continue
				}
				rec.Date = a.PublishedAt
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
