package report

import (
	"strings"
	"testing"

	"github.com/TobiSchelling/NewsTone/internal/analyze"
	"github.com/TobiSchelling/NewsTone/internal/termfreq"
)

func sampleSummary() *analyze.Summary {
	return &analyze.Summary{
		Date:      "2026-02-06",
		Items:     3,
		VaderMean: -0.12,
		TopUnigrams: []termfreq.Term{
			{Term: "fed", Count: 4, Share: 0.25},
		},
		Categories: []analyze.CategorySummary{
			{
				Category: "negative",
				Most: analyze.Extreme{
					Title: "Bank Posts Record Losses", URL: "https://a.com/1",
					Source: "Reuters", LMScore: 1, VaderScore: -0.4,
				},
				HeadlinePct: 33.3333,
				ShareMean:   0.05,
				TopTerms:    []analyze.TermCount{{Term: "LOSSES", Count: 1}},
			},
			{Category: "positive", Most: analyze.Extreme{Title: "Quiet Day"}},
		},
		Diagnostics: analyze.Diagnostics{Received: 4, EmptyTitle: 1},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleSummary())

	checks := []string{
		"**3 headlines**",
		"-0.120 (negative)",
		"| negative | 33.3% | 5.00% |",
		"[Bank Posts Record Losses](https://a.com/1)",
		"· Reuters",
		"**Most positive:** none today",
		"| fed | 4 | 25.0% |",
		"Not enough repeated terms today.",
		"LOSSES (1)",
		"1 of 4 records dropped",
	}
	for _, want := range checks {
		if !strings.Contains(md, want) {
			t.Errorf("expected %q in report:\n%s", want, md)
		}
	}
}

func TestMarkdownNil(t *testing.T) {
	if got := Markdown(nil); got == "" {
		t.Error("expected placeholder text")
	}
}

func TestMood(t *testing.T) {
	cases := map[float64]string{0.3: "positive", -0.3: "negative", 0.01: "neutral", 0.05: "positive"}
	for in, want := range cases {
		if got := Mood(in); got != want {
			t.Errorf("Mood(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestEscape(t *testing.T) {
	if got := escape("a|b [c]"); got != `a\|b \[c\]` {
		t.Errorf("unexpected escape %q", got)
	}
}
