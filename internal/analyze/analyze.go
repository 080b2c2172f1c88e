package analyze

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/TobiSchelling/NewsTone/internal/headline"
	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/termfreq"
	"github.com/TobiSchelling/NewsTone/internal/tone"
)

// ErrEmptyBatch matches any *EmptyBatchError.
var ErrEmptyBatch = errors.New("no usable headlines")

// EmptyBatchError is returned when no headline survives filtering.
type EmptyBatchError struct {
	Date     string
	Received int
	Dropped  int
}

func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("%s for %s: %d received, %d dropped", ErrEmptyBatch, e.Date, e.Received, e.Dropped)
}

// Is reports whether target is ErrEmptyBatch.
func (e *EmptyBatchError) Is(target error) bool {
	return target == ErrEmptyBatch
}

// Options controls the aggregation.
type Options struct {
	TopN       int // rows kept from the full term table
	SummaryTop int // rows persisted per term table
	LexiconTop int // observed lexicon terms kept per category
	TermFreq   termfreq.Options
}

// DefaultOptions returns the settings used for daily runs.
func DefaultOptions() Options {
	return Options{TopN: 30, SummaryTop: 10, LexiconTop: 10, TermFreq: termfreq.DefaultOptions()}
}

// Aggregator turns a batch of raw headlines into a daily Summary.
type Aggregator struct {
	lex    *lexicon.Lexicon
	scorer *tone.Scorer
	opts   Options
}

// NewAggregator creates an aggregator. The lexicon and polarity scorer are
// shared read-only across calls.
func NewAggregator(lex *lexicon.Lexicon, pol tone.PolarityScorer, opts Options) *Aggregator {
	return &Aggregator{lex: lex, scorer: tone.NewScorer(lex, pol), opts: opts}
}

// Aggregate builds the summary for date from records.
func (a *Aggregator) Aggregate(date string, records []headline.Record) (*Summary, error) {
	usable, dropped := headline.Classify(records)
	if len(usable) == 0 {
		return nil, &EmptyBatchError{Date: date, Received: len(records), Dropped: len(dropped)}
	}

	s := &Summary{
		Date:        date,
		Items:       len(usable),
		Diagnostics: Diagnostics{Received: len(records), EmptyTitle: len(dropped)},
	}

	// Term frequencies over normalized titles.
	normalized := make([]string, 0, len(usable))
	for _, r := range usable {
		n := headline.Normalize(r.Title)
		if n == "" {
			s.Diagnostics.EmptyAfterNormalize++
			continue
		}
		normalized = append(normalized, n)
	}
	table := termfreq.Build(normalized, a.opts.TermFreq)
	terms := termfreq.Summarize(table, a.opts.TopN)
	s.TopUnigrams = truncate(terms.TopUnigrams, a.opts.SummaryTop)
	s.TopBigrams = truncate(terms.TopBigrams, a.opts.SummaryTop)

	// Tone over the original titles.
	scores := make([]tone.Score, len(usable))
	var compoundSum float64
	for i, r := range usable {
		scores[i] = a.scorer.Score(r.Title)
		compoundSum += scores[i].Polarity.Compound
	}
	n := float64(len(scores))
	s.VaderMean = compoundSum / n

	for _, cat := range lexicon.Categories {
		best := 0
		var withAny int
		var shareSum float64
		observed := make(map[string]int)
		for i, sc := range scores {
			c := sc.Category(cat)
			if c.Count > scores[best].Category(cat).Count {
				best = i
			}
			if c.HasAny {
				withAny++
			}
			shareSum += c.Share
			for _, tok := range sc.Matches[cat] {
				observed[tok]++
			}
		}

		r := usable[best]
		s.Categories = append(s.Categories, CategorySummary{
			Category: cat.String(),
			Most: Extreme{
				Title:      r.Title,
				URL:        r.URL,
				Source:     r.Source,
				LMScore:    scores[best].Category(cat).Count,
				VaderScore: scores[best].Polarity.Compound,
			},
			HeadlinePct: float64(withAny) / n * 100,
			ShareMean:   shareSum / n,
			TopTerms:    topCounts(observed, a.opts.LexiconTop),
		})
	}

	log.Printf("Aggregated %d headlines for %s (%d dropped, %d terms)",
		s.Items, date, len(dropped), len(table.Terms))
	return s, nil
}

func truncate(ts []termfreq.Term, n int) []termfreq.Term {
	out := make([]termfreq.Term, 0, min(len(ts), n))
	for i := 0; i < len(ts) && i < n; i++ {
		out = append(out, ts[i])
	}
	return out
}

func topCounts(counts map[string]int, n int) []TermCount {
	out := make([]TermCount, 0, len(counts))
	for term, c := range counts {
		out = append(out, TermCount{Term: term, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Term < out[j].Term
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
