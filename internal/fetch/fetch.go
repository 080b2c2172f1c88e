package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	readability "github.com/go-shiori/go-readability"
)

const maxBodyBytes = 5 << 20

// TitleResolver fetches article pages and extracts their full title via
// readability. Domains that fail once are skipped for the rest of the run.
type TitleResolver struct {
	client    *http.Client
	userAgent string

	mu            sync.Mutex
	failedDomains map[string]struct{}
}

// NewTitleResolver creates a title resolver.
func NewTitleResolver(timeout time.Duration, userAgent string) *TitleResolver {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = "NewsTone/1.0 (headline collector)"
	}
	return &TitleResolver{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		userAgent:     userAgent,
		failedDomains: make(map[string]struct{}),
	}
}

// Resolve returns the article title of pageURL.
func (r *TitleResolver) Resolve(ctx context.Context, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid url %q", pageURL)
	}
	domain := strings.ToLower(u.Host)
	if r.failed(domain) {
		return "", fmt.Errorf("skipping %s: domain failed earlier", domain)
	}

	title, err := r.fetchTitle(ctx, u)
	if err != nil {
		r.markFailed(domain)
		log.Printf("Title lookup failed for %s: %v (skipping remaining from %s)", pageURL, err, domain)
		return "", err
	}
	return title, nil
}

func (r *TitleResolver) fetchTitle(ctx context.Context, u *url.URL) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	article, err := readability.FromReader(io.LimitReader(resp.Body, maxBodyBytes), u)
	if err != nil {
		return "", fmt.Errorf("extracting article: %w", err)
	}
	title := strings.Join(strings.Fields(article.Title), " ")
	if title == "" {
		return "", fmt.Errorf("no title found")
	}
	return title, nil
}

func (r *TitleResolver) failed(domain string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.failedDomains[domain]
	return ok
}

func (r *TitleResolver) markFailed(domain string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failedDomains[domain] = struct{}{}
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.code, http.StatusText(e.code))
}
