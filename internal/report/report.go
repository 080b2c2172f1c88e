package report

import (
	"fmt"
	"strings"

	"github.com/TobiSchelling/NewsTone/internal/analyze"
	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/termfreq"
)

var superlatives = map[string]string{
	"negative":     "Most negative",
	"positive":     "Most positive",
	"uncertainty":  "Most uncertain",
	"litigious":    "Most litigious",
	"constraining": "Most constraining",
}

// Markdown renders a daily summary as a markdown report.
func Markdown(s *analyze.Summary) string {
	if s == nil {
		return "No summary available for this date."
	}

	sections := []string{
		fmt.Sprintf("**%d headlines** analysed. Mean polarity: **%+.3f** (%s).",
			s.Items, s.VaderMean, Mood(s.VaderMean)),
		toneSection(s),
		headlineSection(s),
		termSection("Top keywords", s.TopUnigrams),
		termSection("Top phrases", s.TopBigrams),
		lexiconSection(s),
	}
	if d := s.Diagnostics; d.EmptyTitle > 0 || d.EmptyAfterNormalize > 0 {
		sections = append(sections, fmt.Sprintf(
			"_%d of %d records dropped for empty titles; %d titles empty after cleanup._",
			d.EmptyTitle, d.Received, d.EmptyAfterNormalize))
	}
	return strings.Join(sections, "\n\n")
}

// Mood labels a compound polarity score.
func Mood(compound float64) string {
	switch {
	case compound >= 0.05:
		return "positive"
	case compound <= -0.05:
		return "negative"
	default:
		return "neutral"
	}
}

func toneSection(s *analyze.Summary) string {
	var b strings.Builder
	b.WriteString("## Tone snapshot\n\n")
	b.WriteString("| Category | Headlines with a hit | Mean token share |\n|---|---:|---:|\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "| %s | %.1f%% | %.2f%% |\n", c.Category, c.HeadlinePct, c.ShareMean*100)
	}
	return strings.TrimRight(b.String(), "\n")
}

func headlineSection(s *analyze.Summary) string {
	var lines []string
	for _, cat := range lexicon.Categories {
		c := s.Category(cat)
		if c == nil {
			continue
		}
		label := superlatives[c.Category]
		if c.Most.LMScore == 0 {
			lines = append(lines, fmt.Sprintf("- **%s:** none today", label))
			continue
		}
		title := escape(c.Most.Title)
		if c.Most.URL != "" {
			title = fmt.Sprintf("[%s](%s)", title, c.Most.URL)
		}
		line := fmt.Sprintf("- **%s:** %s (%d %s words, polarity %+.3f)",
			label, title, c.Most.LMScore, c.Category, c.Most.VaderScore)
		if c.Most.Source != "" {
			line += " · " + escape(c.Most.Source)
		}
		lines = append(lines, line)
	}
	return "## Headlines of the day\n\n" + strings.Join(lines, "\n")
}

func termSection(title string, terms []termfreq.Term) string {
	if len(terms) == 0 {
		return fmt.Sprintf("## %s\n\nNot enough repeated terms today.", title)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n| Term | Count | Share |\n|---|---:|---:|\n", title)
	for _, t := range terms {
		fmt.Fprintf(&b, "| %s | %d | %.1f%% |\n", escape(t.Term), t.Count, t.Share*100)
	}
	return strings.TrimRight(b.String(), "\n")
}

func lexiconSection(s *analyze.Summary) string {
	var lines []string
	for _, c := range s.Categories {
		if len(c.TopTerms) == 0 {
			continue
		}
		words := make([]string, len(c.TopTerms))
		for i, t := range c.TopTerms {
			words[i] = fmt.Sprintf("%s (%d)", t.Term, t.Count)
		}
		lines = append(lines, fmt.Sprintf("- **%s:** %s", c.Category, strings.Join(words, ", ")))
	}
	if len(lines) == 0 {
		return "## Lexicon hits\n\nNo lexicon words matched today."
	}
	return "## Lexicon hits\n\n" + strings.Join(lines, "\n")
}

var mdEscaper = strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`, "*", `\*`, "_", `\_`, "<", `\<`, ">", `\>`, "`", "\\`")

func escape(s string) string {
	return mdEscaper.Replace(s)
}
