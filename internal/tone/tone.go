package tone

import (
	"github.com/TobiSchelling/NewsTone/internal/headline"
	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/polarity"
)

// PolarityScorer computes general-purpose sentiment for a text.
type PolarityScorer interface {
	PolarityScores(text string) polarity.Scores
}

// CategoryScore is the lexicon hit summary for one category.
type CategoryScore struct {
	Count  int     `json:"count"`
	Share  float64 `json:"share"`
	HasAny bool    `json:"has_any"`
}

// Score is the tone of one headline.
type Score struct {
	Title      string                               `json:"title"`
	Tokens     int                                  `json:"tokens"` // max(1, token count)
	Categories [lexicon.NumCategories]CategoryScore `json:"categories"`
	Matches    [lexicon.NumCategories][]string      `json:"-"` // matched tokens in title order
	Polarity   polarity.Scores                      `json:"polarity"`
}

// Category returns the score for cat.
func (s Score) Category(cat lexicon.Category) CategoryScore {
	return s.Categories[cat]
}

// Scorer applies the lexicon and the polarity scorer to headlines.
type Scorer struct {
	lex *lexicon.Lexicon
	pol PolarityScorer
}

// NewScorer creates a tone scorer.
func NewScorer(lex *lexicon.Lexicon, pol PolarityScorer) *Scorer {
	return &Scorer{lex: lex, pol: pol}
}

// Score scores a single title. Categories are evaluated independently, so one
// token may count toward several of them.
func (s *Scorer) Score(title string) Score {
	tokens := headline.Tokenize(title)
	out := Score{Title: title, Tokens: max(1, len(tokens))}

	for _, cat := range lexicon.Categories {
		for _, tok := range tokens {
			if s.lex.Contains(cat, tok) {
				out.Matches[cat] = append(out.Matches[cat], tok)
			}
		}
		n := len(out.Matches[cat])
		out.Categories[cat] = CategoryScore{
			Count:  n,
			Share:  float64(n) / float64(out.Tokens),
			HasAny: n > 0,
		}
	}

	if s.pol != nil {
		out.Polarity = s.pol.PolarityScores(title)
	}
	return out
}
