package lexicon

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Category is a Loughran-McDonald sentiment category.
type Category int

const (
	Negative Category = iota
	Positive
	Uncertainty
	Litigious
	Constraining
)

// Categories lists every category in a fixed order.
var Categories = []Category{Negative, Positive, Uncertainty, Litigious, Constraining}

var categoryNames = [...]string{"negative", "positive", "uncertainty", "litigious", "constraining"}

// NumCategories is the number of categories.
const NumCategories = len(categoryNames)

// String returns the lowercase category name, which is also its CSV column.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// ParseCategory maps a category name back to its Category.
func ParseCategory(name string) (Category, bool) {
	for i, n := range categoryNames {
		if strings.EqualFold(n, name) {
			return Category(i), true
		}
	}
	return 0, false
}

const wordColumn = "word"

// SchemaError reports required columns missing from a lexicon file.
type SchemaError struct {
	Missing []string
	Found   []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("lexicon column missing: %s (found columns: %s)",
		strings.Join(e.Missing, ", "), strings.Join(e.Found, ", "))
}

// Stats describes a lexicon load.
type Stats struct {
	Rows    int // data rows read
	Skipped int // rows without a word
}

// Lexicon holds the upper-cased member words of each category. It is immutable after Load.
type Lexicon struct {
	sets  [NumCategories]map[string]struct{}
	stats Stats
}

// LoadFile loads a lexicon CSV from disk.
func LoadFile(path string) (*Lexicon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lexicon: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads a lexicon CSV with a header row. Column names are matched
// case-insensitively; a word belongs to a category when its column value is > 0.
func Load(r io.Reader) (*Lexicon, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &SchemaError{Missing: requiredColumns()}
		}
		return nil, fmt.Errorf("reading lexicon header: %w", err)
	}

	found := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		found[i] = h
		key := strings.ToLower(h)
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns() {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing, Found: found}
	}

	lex := &Lexicon{}
	for i := range lex.sets {
		lex.sets[i] = make(map[string]struct{})
	}
	wordIdx := index[wordColumn]

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading lexicon row %d: %w", lex.stats.Rows+2, err)
		}
		lex.stats.Rows++

		word := strings.ToUpper(strings.TrimSpace(field(rec, wordIdx)))
		if word == "" {
			lex.stats.Skipped++
			continue
		}
		for _, cat := range Categories {
			if positive(field(rec, index[cat.String()])) {
				lex.sets[cat][word] = struct{}{}
			}
		}
	}
	return lex, nil
}

func requiredColumns() []string {
	cols := []string{wordColumn}
	for _, cat := range Categories {
		cols = append(cols, cat.String())
	}
	return cols
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func positive(v string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && f > 0
}

// Contains reports whether the upper-cased word is a member of cat.
func (l *Lexicon) Contains(cat Category, word string) bool {
	_, ok := l.sets[cat][word]
	return ok
}

// Size returns the number of words in cat.
func (l *Lexicon) Size(cat Category) int {
	return len(l.sets[cat])
}

// Words returns the members of cat in ascending order.
func (l *Lexicon) Words(cat Category) []string {
	words := make([]string, 0, len(l.sets[cat]))
	for w := range l.sets[cat] {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Stats returns row counts from the load.
func (l *Lexicon) Stats() Stats {
	return l.stats
}
