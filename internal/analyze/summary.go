package analyze

import (
	"encoding/json"
	"fmt"

	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/termfreq"
)

// Summary is the daily record produced by Aggregate. It is not modified after
// it is returned.
type Summary struct {
	Date        string            `json:"date"`
	Items       int               `json:"n_items"`
	Diagnostics Diagnostics       `json:"diagnostics"`
	TopUnigrams []termfreq.Term   `json:"top_unigrams"`
	TopBigrams  []termfreq.Term   `json:"top_bigrams"`
	VaderMean   float64           `json:"vader_mean"`
	Categories  []CategorySummary `json:"categories"`
}

// Diagnostics counts the input rows that did not make it into the analysis.
type Diagnostics struct {
	Received            int `json:"received"`
	EmptyTitle          int `json:"empty_title"`
	EmptyAfterNormalize int `json:"empty_after_normalize"`
}

// CategorySummary holds the batch metrics for one lexicon category.
type CategorySummary struct {
	Category    string      `json:"category"`
	Most        Extreme     `json:"most"`
	HeadlinePct float64     `json:"headline_pct"` // % of headlines with at least one token
	ShareMean   float64     `json:"share_mean"`   // mean per-headline token share
	TopTerms    []TermCount `json:"top_terms"`
}

// Extreme is the headline with the highest count for a category.
type Extreme struct {
	Title      string  `json:"title"`
	URL        string  `json:"url,omitempty"`
	Source     string  `json:"source,omitempty"`
	LMScore    int     `json:"lm_score"`
	VaderScore float64 `json:"vader_score"`
}

// TermCount is an observed lexicon word and its occurrences.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Category returns the metrics for cat, or nil if the summary has none.
func (s *Summary) Category(cat lexicon.Category) *CategorySummary {
	name := cat.String()
	for i := range s.Categories {
		if s.Categories[i].Category == name {
			return &s.Categories[i]
		}
	}
	return nil
}

// HeadlinePct returns the percentage of headlines with a cat token, 0 if absent.
func (s *Summary) HeadlinePct(cat lexicon.Category) float64 {
	if c := s.Category(cat); c != nil {
		return c.HeadlinePct
	}
	return 0
}

// Marshal encodes the summary as a single line of JSON.
func (s *Summary) Marshal() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding summary for %s: %w", s.Date, err)
	}
	return data, nil
}

// Unmarshal decodes a summary produced by Marshal.
func Unmarshal(data []byte) (*Summary, error) {
	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	return &s, nil
}
