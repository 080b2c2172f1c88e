// Package dailylog keeps the daily summaries as one JSON object per line,
// with at most one line per date.
package dailylog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/TobiSchelling/NewsTone/internal/analyze"
)

const maxLineSize = 4 << 20

// Entry is one well-formed log line.
type Entry struct {
	Date string
	Line []byte
}

// Summary decodes the entry.
func (e Entry) Summary() (*analyze.Summary, error) {
	return analyze.Unmarshal(e.Line)
}

// Scan reads log lines. Blank lines are ignored; lines that are not a JSON
// object with a YYYY-MM-DD "date" are skipped and counted. Only read errors
// are returned.
func Scan(r io.Reader) (entries []Entry, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var head struct {
			Date string `json:"date"`
		}
		if err := json.Unmarshal(line, &head); err != nil || !validDate(head.Date) {
			skipped++
			continue
		}
		entries = append(entries, Entry{Date: head.Date, Line: append([]byte(nil), line...)})
	}
	if err := sc.Err(); err != nil {
		return nil, skipped, fmt.Errorf("reading daily log: %w", err)
	}
	return entries, skipped, nil
}

func validDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Log is a JSON-lines file of daily summaries.
type Log struct {
	path string
}

// Open returns a Log for path. The file is created on the first Upsert.
func Open(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Entries returns the well-formed lines and the number of skipped lines.
// A missing file is an empty log.
func (l *Log) Entries() ([]Entry, int, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("opening daily log: %w", err)
	}
	defer f.Close()
	return Scan(f)
}

// Upsert writes s, replacing any line for the same date in place. Other lines
// are kept verbatim; malformed lines are dropped. It reports whether a line was replaced.
func (l *Log) Upsert(s *analyze.Summary) (bool, error) {
	line, err := s.Marshal()
	if err != nil {
		return false, err
	}
	entries, skipped, err := l.Entries()
	if err != nil {
		return false, err
	}
	if skipped > 0 {
		log.Printf("Dropping %d malformed line(s) from %s", skipped, l.path)
	}

	replaced := false
	var out []Entry
	for _, e := range entries {
		if e.Date != s.Date {
			out = append(out, e)
			continue
		}
		if !replaced {
			out = append(out, Entry{Date: s.Date, Line: line})
			replaced = true
		}
	}
	if !replaced {
		out = append(out, Entry{Date: s.Date, Line: line})
	}
	return replaced, l.write(out)
}

// Delete removes every line for date, keeping other lines verbatim. It
// reports whether a line was removed; the file is left untouched otherwise.
func (l *Log) Delete(date string) (bool, error) {
	entries, _, err := l.Entries()
	if err != nil {
		return false, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Date != date {
			out = append(out, e)
		}
	}
	if len(out) == len(entries) {
		return false, nil
	}
	return true, l.write(out)
}

// Replace rewrites the log with summaries, one line per date in date order.
// Later summaries win over earlier ones for the same date.
func (l *Log) Replace(summaries []*analyze.Summary) error {
	byDate := make(map[string][]byte, len(summaries))
	for _, s := range summaries {
		line, err := s.Marshal()
		if err != nil {
			return err
		}
		byDate[s.Date] = line
	}
	out := make([]Entry, 0, len(byDate))
	for date, line := range byDate {
		out = append(out, Entry{Date: date, Line: line})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return l.write(out)
}

func (l *Log) write(entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".dailylog-*")
	if err != nil {
		return fmt.Errorf("creating temp log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, e := range entries {
		w.Write(e.Line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing daily log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp log: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replacing daily log: %w", err)
	}
	return nil
}

// Get returns the summary for date, or nil if the log has none.
func (l *Log) Get(date string) (*analyze.Summary, error) {
	entries, _, err := l.Entries()
	if err != nil {
		return nil, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Date == date {
			return entries[i].Summary()
		}
	}
	return nil, nil
}

// All returns every decodable summary ordered by date. When a date appears
// more than once the last line wins.
func (l *Log) All() ([]analyze.Summary, error) {
	entries, _, err := l.Entries()
	if err != nil {
		return nil, err
	}
	byDate := make(map[string]analyze.Summary)
	for _, e := range entries {
		s, err := e.Summary()
		if err != nil {
			continue
		}
		byDate[e.Date] = *s
	}
	out := make([]analyze.Summary, 0, len(byDate))
	for _, s := range byDate {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}
