package analyze

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/TobiSchelling/NewsTone/internal/headline"
	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/polarity"
)

const testLexicon = `word,negative,positive,uncertainty,litigious,constraining
losses,1,0,0,0,0
litigation,0,0,0,1,0
rally,0,1,0,0,0
strong,0,1,0,0,0
uncertainty,0,0,1,0,0
clouds,0,0,1,0,0
`

var scenario = []headline.Record{
	{Title: "Bank Posts Record Losses Amid Litigation Risk", URL: "https://example.com/1"},
	{Title: "Markets Rally on Strong Earnings", URL: "https://example.com/2"},
	{Title: "Uncertainty Clouds Rate Decision", URL: "https://example.com/3"},
}

func newAggregator(t *testing.T) *Aggregator {
	t.Helper()
	lex, err := lexicon.Load(strings.NewReader(testLexicon))
	if err != nil {
		t.Fatalf("failed to load lexicon: %v", err)
	}
	pol, err := polarity.New()
	if err != nil {
		t.Fatalf("failed to load polarity lexicon: %v", err)
	}
	return NewAggregator(lex, pol, DefaultOptions())
}

func TestAggregateScenario(t *testing.T) {
	agg := newAggregator(t)
	s, err := agg.Aggregate("2026-02-06", scenario)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Items != 3 {
		t.Errorf("expected 3 items, got %d", s.Items)
	}
	checks := map[lexicon.Category]string{
		lexicon.Negative:    scenario[0].Title,
		lexicon.Litigious:   scenario[0].Title,
		lexicon.Positive:    scenario[1].Title,
		lexicon.Uncertainty: scenario[2].Title,
	}
	for cat, want := range checks {
		if got := s.Category(cat).Most.Title; got != want {
			t.Errorf("most %s: expected %q, got %q", cat, want, got)
		}
	}
	if got := s.Category(lexicon.Positive).Most.LMScore; got != 2 {
		t.Errorf("expected positive LM score 2, got %d", got)
	}
	if got := s.Category(lexicon.Positive).Most.URL; got != "https://example.com/2" {
		t.Errorf("expected URL carried through, got %q", got)
	}

	if got := s.HeadlinePct(lexicon.Negative); math.Abs(got-100.0/3) > 1e-9 {
		t.Errorf("expected 33.3%% negative headlines, got %v", got)
	}
	if got := s.HeadlinePct(lexicon.Constraining); got != 0 {
		t.Errorf("expected 0%% constraining headlines, got %v", got)
	}

	wantShare := (1.0/7 + 0 + 0) / 3
	if got := s.Category(lexicon.Negative).ShareMean; math.Abs(got-wantShare) > 1e-12 {
		t.Errorf("expected negative share mean %v, got %v", wantShare, got)
	}

	top := s.Category(lexicon.Uncertainty).TopTerms
	if len(top) != 2 || top[0].Term != "CLOUDS" || top[1].Term != "UNCERTAINTY" {
		t.Errorf("unexpected uncertainty terms %+v", top)
	}

	// Three distinct headlines leave nothing above min_df.
	if len(s.TopUnigrams) != 0 || len(s.TopBigrams) != 0 {
		t.Errorf("expected empty term tables, got %v / %v", s.TopUnigrams, s.TopBigrams)
	}
}

func TestAggregateTiesResolveToFirst(t *testing.T) {
	agg := newAggregator(t)
	records := []headline.Record{
		{Title: "Quiet Day"},
		{Title: "Losses Mount"},
		{Title: "More Losses"},
	}
	s, err := agg.Aggregate("2026-02-06", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := s.Category(lexicon.Negative).Most.Title; got != "Losses Mount" {
		t.Errorf("expected first maximum, got %q", got)
	}
	// No litigious hits at all: the first headline is selected.
	if got := s.Category(lexicon.Litigious).Most; got.Title != "Quiet Day" || got.LMScore != 0 {
		t.Errorf("expected first headline with score 0, got %+v", got)
	}
	if got := s.Category(lexicon.Negative).TopTerms; len(got) != 1 || got[0].Count != 2 {
		t.Errorf("expected LOSSES counted twice, got %+v", got)
	}
}

func TestAggregateTermTables(t *testing.T) {
	agg := newAggregator(t)
	records := []headline.Record{
		{Title: "Fed Hikes Rates — Reuters"},
		{Title: "Fed hikes rates again"},
		{Title: "Oil prices fall"},
		{Title: "Oil prices rise - Bloomberg News"},
		{Title: "Markets calm"},
		{Title: "— Reuters"},
	}
	s, err := agg.Aggregate("2026-02-06", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Diagnostics.EmptyAfterNormalize != 1 {
		t.Errorf("expected 1 title empty after normalization, got %d", s.Diagnostics.EmptyAfterNormalize)
	}
	if s.Items != 6 {
		t.Errorf("expected all 6 titles scored, got %d", s.Items)
	}
	if len(s.TopUnigrams) != 5 || s.TopUnigrams[0].Term != "fed" {
		t.Errorf("unexpected unigrams %+v", s.TopUnigrams)
	}
	if len(s.TopBigrams) != 3 || s.TopBigrams[0].Term != "fed hikes" {
		t.Errorf("unexpected bigrams %+v", s.TopBigrams)
	}
}

func TestAggregateSummaryTop(t *testing.T) {
	lex, _ := lexicon.Load(strings.NewReader(testLexicon))
	opts := DefaultOptions()
	opts.SummaryTop = 2
	agg := NewAggregator(lex, nil, opts)
	records := []headline.Record{
		{Title: "fed hikes rates"}, {Title: "fed hikes rates"},
		{Title: "oil prices"}, {Title: "oil prices"}, {Title: "calm"},
	}
	s, err := agg.Aggregate("2026-02-06", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.TopUnigrams) != 2 || len(s.TopBigrams) != 2 {
		t.Errorf("expected truncation to 2 rows, got %d / %d", len(s.TopUnigrams), len(s.TopBigrams))
	}
}

func TestAggregateDeterministic(t *testing.T) {
	agg := newAggregator(t)
	records := append([]headline.Record{}, scenario...)
	records = append(records, scenario...)

	a, err := agg.Aggregate("2026-02-06", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := agg.Aggregate("2026-02-06", records)

	ja, err := a.Marshal()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	jb, _ := b.Marshal()
	if !bytes.Equal(ja, jb) {
		t.Errorf("expected identical output:\n%s\n%s", ja, jb)
	}

	back, err := Unmarshal(ja)
	if err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.Category(lexicon.Negative).Most.Title != scenario[0].Title {
		t.Errorf("round trip lost data: %+v", back)
	}
}

func TestAggregateEmptyBatch(t *testing.T) {
	agg := newAggregator(t)
	for _, records := range [][]headline.Record{nil, {{Title: "  "}, {Title: ""}}} {
		_, err := agg.Aggregate("2026-02-06", records)
		if !errors.Is(err, ErrEmptyBatch) {
			t.Fatalf("expected ErrEmptyBatch, got %v", err)
		}
		var emptyErr *EmptyBatchError
		if !errors.As(err, &emptyErr) {
			t.Fatalf("expected *EmptyBatchError, got %T", err)
		}
		if emptyErr.Dropped != len(records) {
			t.Errorf("expected %d dropped, got %d", len(records), emptyErr.Dropped)
		}
	}
}

func TestAggregateDropsEmptyTitles(t *testing.T) {
	agg := newAggregator(t)
	records := []headline.Record{{Title: ""}, scenario[1], {Title: "\t"}}
	s, err := agg.Aggregate("2026-02-06", records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Items != 1 || s.Diagnostics.EmptyTitle != 2 || s.Diagnostics.Received != 3 {
		t.Errorf("unexpected counts: items=%d diagnostics=%+v", s.Items, s.Diagnostics)
	}
	if s.HeadlinePct(lexicon.Positive) != 100 {
		t.Errorf("expected 100%% positive, got %v", s.HeadlinePct(lexicon.Positive))
	}
}
