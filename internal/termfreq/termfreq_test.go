package termfreq

import (
	"math"
	"reflect"
	"testing"
)

var sampleTitles = []string{
	"fed hikes rates again",
	"fed hikes rates",
	"oil prices fall",
	"oil prices rise",
	"markets calm",
}

func termNames(ts []Term) []string {
	var out []string
	for _, t := range ts {
		out = append(out, t.Term)
	}
	return out
}

func TestBuildCountsAndFilters(t *testing.T) {
	table := Build(sampleTitles, DefaultOptions())

	want := []string{"fed", "fed hikes", "hikes", "hikes rates", "oil", "oil prices", "prices", "rates"}
	if got := termNames(table.Terms); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected terms %v, got %v", want, got)
	}
	if table.Documents != 5 {
		t.Errorf("expected 5 documents, got %d", table.Documents)
	}
	if table.Total != 16 {
		t.Errorf("expected total 16, got %d", table.Total)
	}
	for _, term := range table.Terms {
		if term.Count != 2 || term.Share != 0.125 {
			t.Errorf("unexpected row %+v", term)
		}
	}
}

func TestBuildSharesSumToOne(t *testing.T) {
	titles := append([]string{}, sampleTitles...)
	titles = append(titles, "oil oil prices", "fed rates", "rates rates rise")
	table := Build(titles, DefaultOptions())
	if len(table.Terms) == 0 {
		t.Fatal("expected a non-empty table")
	}
	var sum float64
	for _, term := range table.Terms {
		sum += term.Share
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Errorf("expected shares to sum to 1, got %v", sum)
	}
}

func TestBuildMaxDFDropsBoilerplate(t *testing.T) {
	titles := []string{
		"stocks news today",
		"bonds news today",
		"stocks news",
		"bonds news",
		"gold rally",
	}
	table := Build(titles, DefaultOptions())
	for _, term := range table.Terms {
		if term.Term == "news" {
			t.Errorf("expected 'news' (4 of 5 documents) to be dropped")
		}
	}
	got := termNames(table.Terms)
	want := []string{"bonds", "bonds news", "news today", "stocks", "stocks news", "today"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuildStopWordsRemovedBeforeBigrams(t *testing.T) {
	titles := []string{"rates of inflation", "rates and inflation"}
	table := Build(titles, Options{MinDF: 2, MaxDF: 1})
	got := termNames(table.Terms)
	want := []string{"inflation", "rates", "rates inflation"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBuildMaxFeatures(t *testing.T) {
	table := Build(sampleTitles, Options{MinDF: 2, MaxDF: 0.7, MaxFeatures: 3})
	want := []string{"fed", "fed hikes", "hikes"}
	if got := termNames(table.Terms); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if table.Total != 6 {
		t.Errorf("expected total over capped vocabulary, got %d", table.Total)
	}
}

func TestBuildEmpty(t *testing.T) {
	for _, titles := range [][]string{nil, {""}, {"  ", ""}} {
		table := Build(titles, DefaultOptions())
		if len(table.Terms) != 0 || table.Documents != 0 {
			t.Errorf("expected empty table for %q, got %+v", titles, table)
		}
		s := Summarize(table, 30)
		if len(s.TopUnigrams) != 0 || len(s.TopBigrams) != 0 || len(s.All) != 0 {
			t.Errorf("expected empty summary, got %+v", s)
		}
	}
}

func TestSummarize(t *testing.T) {
	table := Build(sampleTitles, DefaultOptions())
	s := Summarize(table, 2)

	if got := termNames(s.TopUnigrams); !reflect.DeepEqual(got, []string{"fed", "hikes"}) {
		t.Errorf("unexpected unigrams %v", got)
	}
	if got := termNames(s.TopBigrams); !reflect.DeepEqual(got, []string{"fed hikes", "hikes rates"}) {
		t.Errorf("unexpected bigrams %v", got)
	}
	if len(s.All) != len(table.Terms) {
		t.Fatalf("expected tidy table of %d rows, got %d", len(table.Terms), len(s.All))
	}
	if s.All[1].NGram != BigramPlus || s.All[0].NGram != Unigram {
		t.Errorf("unexpected n-gram labels: %+v", s.All[:2])
	}
}

func TestBuildUnicodeWords(t *testing.T) {
	titles := []string{"café chain grows", "café chain slows", "日本 株"}
	table := Build(titles, Options{MinDF: 2, MaxDF: 1})
	want := []string{"café", "café chain", "chain"}
	if got := termNames(table.Terms); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
