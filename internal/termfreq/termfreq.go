package termfreq

import (
	"regexp"
	"sort"
	"strings"
)

// Options controls vocabulary filtering.
type Options struct {
	MinDF       int     // drop terms seen in fewer documents
	MaxDF       float64 // drop terms seen in more than this fraction of documents
	MaxFeatures int     // keep at most this many terms; 0 means no cap
}

// DefaultOptions returns the filtering used for daily summaries.
func DefaultOptions() Options {
	return Options{MinDF: 2, MaxDF: 0.7, MaxFeatures: 20000}
}

// N-gram labels used in tidy output.
const (
	Unigram    = "unigram"
	BigramPlus = "bigram+"
)

// Term is one vocabulary entry with its total count across the batch.
type Term struct {
	Term  string  `json:"term"`
	Count int     `json:"count"`
	Share float64 `json:"share"`
}

// NGram reports whether the term is a unigram or a bigram+.
func (t Term) NGram() string {
	if strings.Contains(t.Term, " ") {
		return BigramPlus
	}
	return Unigram
}

// Table holds every surviving term ordered by count desc, then term asc.
type Table struct {
	Terms     []Term
	Documents int // non-empty documents vectorized
	Total     int // sum of all surviving term counts
}

// Summary splits a table into ranked unigram and bigram views.
type Summary struct {
	TopUnigrams []Term
	TopBigrams  []Term
	All         []TidyTerm
}

// TidyTerm is a table row annotated with its n-gram label.
type TidyTerm struct {
	Term
	NGram string `json:"ngram"`
}

var wordRE = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// Build counts unigrams and contiguous bigrams over the titles. Stop words are
// removed before bigrams are formed. Empty titles are not documents.
func Build(titles []string, opts Options) *Table {
	counts := make(map[string]int)
	docFreq := make(map[string]int)
	docs := 0

	for _, title := range titles {
		if strings.TrimSpace(title) == "" {
			continue
		}
		docs++
		seen := make(map[string]struct{})
		for _, term := range terms(title) {
			counts[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	t := &Table{Documents: docs}
	if docs == 0 {
		return t
	}

	maxDocs := opts.MaxDF * float64(docs)
	for term, c := range counts {
		df := docFreq[term]
		if df < opts.MinDF {
			continue
		}
		if opts.MaxDF > 0 && float64(df) > maxDocs {
			continue
		}
		t.Terms = append(t.Terms, Term{Term: term, Count: c})
	}
	sortTerms(t.Terms)

	if opts.MaxFeatures > 0 && len(t.Terms) > opts.MaxFeatures {
		t.Terms = t.Terms[:opts.MaxFeatures]
	}

	for _, term := range t.Terms {
		t.Total += term.Count
	}
	denom := float64(max(1, t.Total))
	for i := range t.Terms {
		t.Terms[i].Share = float64(t.Terms[i].Count) / denom
	}
	return t
}

// terms returns the unigrams followed by the bigrams of a title.
func terms(title string) []string {
	var words []string
	for _, w := range wordRE.FindAllString(title, -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

func sortTerms(ts []Term) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Count != ts[j].Count {
			return ts[i].Count > ts[j].Count
		}
		return ts[i].Term < ts[j].Term
	})
}

// Summarize returns the topN unigrams and bigrams plus the full tidy table.
func Summarize(t *Table, topN int) Summary {
	var s Summary
	if t == nil {
		return s
	}
	for _, term := range t.Terms {
		ngram := term.NGram()
		s.All = append(s.All, TidyTerm{Term: term, NGram: ngram})
		if ngram == Unigram {
			if len(s.TopUnigrams) < topN {
				s.TopUnigrams = append(s.TopUnigrams, term)
			}
		} else if len(s.TopBigrams) < topN {
			s.TopBigrams = append(s.TopBigrams, term)
		}
	}
	return s
}
