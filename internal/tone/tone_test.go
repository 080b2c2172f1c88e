package tone

import (
	"strings"
	"testing"

	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/polarity"
)

const testLexicon = `word,negative,positive,uncertainty,litigious,constraining
losses,1,0,0,0,0
litigation,1,0,0,1,0
rally,0,1,0,0,0
strong,0,1,0,0,0
uncertainty,0,0,1,0,0
clouds,0,0,1,0,0
`

type fixedPolarity struct{ compound float64 }

func (f fixedPolarity) PolarityScores(string) polarity.Scores {
	return polarity.Scores{Neutral: 1, Compound: f.compound}
}

func newScorer(t *testing.T, pol PolarityScorer) *Scorer {
	t.Helper()
	lex, err := lexicon.Load(strings.NewReader(testLexicon))
	if err != nil {
		t.Fatalf("failed to load lexicon: %v", err)
	}
	return NewScorer(lex, pol)
}

func TestScoreCounts(t *testing.T) {
	s := newScorer(t, fixedPolarity{compound: -0.5})
	got := s.Score("Bank Posts Record Losses Amid Litigation Risk")

	if got.Tokens != 7 {
		t.Errorf("expected 7 tokens, got %d", got.Tokens)
	}
	neg := got.Category(lexicon.Negative)
	if neg.Count != 2 || !neg.HasAny || neg.Share != 2.0/7 {
		t.Errorf("unexpected negative score %+v", neg)
	}
	lit := got.Category(lexicon.Litigious)
	if lit.Count != 1 || !lit.HasAny {
		t.Errorf("unexpected litigious score %+v", lit)
	}
	if pos := got.Category(lexicon.Positive); pos.Count != 0 || pos.HasAny || pos.Share != 0 {
		t.Errorf("unexpected positive score %+v", pos)
	}
	if got.Polarity.Compound != -0.5 {
		t.Errorf("expected injected polarity, got %+v", got.Polarity)
	}
	if m := got.Matches[lexicon.Negative]; len(m) != 2 || m[0] != "LOSSES" || m[1] != "LITIGATION" {
		t.Errorf("unexpected matches %v", m)
	}
}

func TestCategoriesIndependent(t *testing.T) {
	s := newScorer(t, nil)
	got := s.Score("Losses and uncertainty")
	neg := got.Category(lexicon.Negative)
	unc := got.Category(lexicon.Uncertainty)
	if !neg.HasAny || !unc.HasAny || neg.Count != 1 || unc.Count != 1 {
		t.Errorf("expected both categories hit, got neg=%+v unc=%+v", neg, unc)
	}
}

func TestScoreNoTokens(t *testing.T) {
	s := newScorer(t, nil)
	for _, title := range []string{"", "?!", "a b c", "日本"} {
		got := s.Score(title)
		if got.Tokens != 1 {
			t.Errorf("expected token floor of 1 for %q, got %d", title, got.Tokens)
		}
		for _, cat := range lexicon.Categories {
			if c := got.Category(cat); c.Count != 0 || c.Share != 0 || c.HasAny {
				t.Errorf("expected zero score for %q/%s, got %+v", title, cat, c)
			}
		}
	}
}

func TestScoreDeterministic(t *testing.T) {
	pol, err := polarity.New()
	if err != nil {
		t.Fatalf("failed to load polarity lexicon: %v", err)
	}
	s := newScorer(t, pol)
	title := "Markets Rally on Strong Earnings"
	a, b := s.Score(title), s.Score(title)
	if a.Categories != b.Categories || a.Polarity != b.Polarity {
		t.Errorf("expected identical scores, got %+v and %+v", a, b)
	}
	if a.Category(lexicon.Positive).Count != 2 {
		t.Errorf("expected 2 positive tokens, got %+v", a.Category(lexicon.Positive))
	}
	if a.Polarity.Compound <= 0 {
		t.Errorf("expected positive polarity, got %v", a.Polarity.Compound)
	}
}
