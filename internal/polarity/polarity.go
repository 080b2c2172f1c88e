// Package polarity scores general-purpose sentiment with VADER.
package polarity

import (
	"math"

	"github.com/jonreiter/govader"
)

// Scores is the polarity of a text. Negative, Neutral and Positive are
// non-negative and sum to 1; Compound is in [-1, 1].
type Scores struct {
	Negative float64 `json:"neg"`
	Neutral  float64 `json:"neu"`
	Positive float64 `json:"pos"`
	Compound float64 `json:"compound"`
}

// Analyzer computes polarity scores. The underlying lexicon is only read after
// construction, so an Analyzer is safe for concurrent use.
type Analyzer struct {
	sia *govader.SentimentIntensityAnalyzer
}

// New returns an Analyzer backed by the bundled VADER lexicon and emoji table.
func New() (*Analyzer, error) {
	return &Analyzer{sia: govader.NewSentimentIntensityAnalyzer()}, nil
}

// Size returns the number of lexicon entries.
func (a *Analyzer) Size() int {
	return len(a.sia.Lexicon)
}

// PolarityScores scores text. Text without a scorable word is fully neutral.
func (a *Analyzer) PolarityScores(text string) Scores {
	s := a.sia.PolarityScores(text)
	if s.Negative == 0 && s.Neutral == 0 && s.Positive == 0 {
		return Scores{Neutral: 1}
	}
	return Scores{
		Negative: s.Negative,
		Neutral:  s.Neutral,
		Positive: s.Positive,
		Compound: math.Round(s.Compound*1e4) / 1e4,
	}
}
