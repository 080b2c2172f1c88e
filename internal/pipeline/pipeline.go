package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/TobiSchelling/NewsTone/internal/analyze"
	"github.com/TobiSchelling/NewsTone/internal/collect"
	"github.com/TobiSchelling/NewsTone/internal/config"
	"github.com/TobiSchelling/NewsTone/internal/dailylog"
	"github.com/TobiSchelling/NewsTone/internal/database"
	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/polarity"
	"github.com/TobiSchelling/NewsTone/internal/report"
	"github.com/TobiSchelling/NewsTone/internal/termfreq"
)

// StepResult holds the result of a single pipeline step.
type StepResult struct {
	Name    string
	Summary string
	Err     error
}

// Result holds the results of a full pipeline run.
type Result struct {
	Date    string
	Steps   []StepResult
	Summary *analyze.Summary // nil when the run failed before analysis
	Report  string           // markdown report for Summary
	Reused  bool             // an existing summary was returned without a new run
}

// Err returns the first step error.
func (r *Result) Err() error {
	for _, s := range r.Steps {
		if s.Err != nil {
			return s.Err
		}
	}
	return nil
}

// HeadlineCollector stores the day's headlines.
type HeadlineCollector interface {
	Collect(ctx context.Context, date string) *collect.Result
}

// Pipeline orchestrates collect -> analyze -> persist -> report for one date.
type Pipeline struct {
	cfg       *config.Config
	db        *database.DB
	daily     *dailylog.Log
	collector HeadlineCollector

	once sync.Once
	agg  *analyze.Aggregator
	err  error
}

// New creates a pipeline using the sources enabled in cfg.
func New(cfg *config.Config, db *database.DB) *Pipeline {
	return NewWithCollector(cfg, db, collect.NewCollector(cfg, db))
}

// NewWithCollector creates a pipeline with an explicit collector.
func NewWithCollector(cfg *config.Config, db *database.DB, c HeadlineCollector) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		db:        db,
		daily:     dailylog.Open(cfg.DailyLogPath()),
		collector: c,
	}
}

// DailyLog returns the JSON-lines history written by the pipeline.
func (p *Pipeline) DailyLog() *dailylog.Log {
	return p.daily
}

// Aggregator loads the lexicon and polarity scorer on first use. Both are
// reused by every later call.
func (p *Pipeline) Aggregator() (*analyze.Aggregator, error) {
	p.once.Do(func() {
		path := p.cfg.LexiconPath()
		lex, err := lexicon.LoadFile(path)
		if err != nil {
			p.err = fmt.Errorf("loading lexicon %s: %w", path, err)
			return
		}
		pol, err := polarity.New()
		if err != nil {
			p.err = fmt.Errorf("loading polarity lexicon: %w", err)
			return
		}
		st := lex.Stats()
		log.Printf("Loaded lexicon %s: %d rows (%d skipped)", path, st.Rows, st.Skipped)
		p.agg = analyze.NewAggregator(lex, pol, Options(p.cfg.Analysis))
	})
	return p.agg, p.err
}

// Options converts the analysis config into aggregator options.
func Options(a config.Analysis) analyze.Options {
	return analyze.Options{
		TopN:       a.TopN,
		SummaryTop: a.SummaryTop,
		LexiconTop: a.LexiconTop,
		TermFreq: termfreq.Options{
			MinDF:       a.MinDF,
			MaxDF:       a.MaxDF,
			MaxFeatures: a.MaxFeatures,
		},
	}
}

// Run collects and analyzes date. Without force an existing summary for the
// date is returned as is; with force it is rebuilt and replaced.
func (p *Pipeline) Run(ctx context.Context, date string, force bool) *Result {
	r := &Result{Date: date}

	if !force {
		existing, err := p.Load(date)
		if err != nil {
			r.Steps = append(r.Steps, StepResult{Name: "Load", Err: err})
			return r
		}
		if existing != nil {
			r.Summary = existing
			r.Report = report.Markdown(existing)
			r.Reused = true
			r.Steps = append(r.Steps, StepResult{
				Name:    "Load",
				Summary: fmt.Sprintf("Summary for %s already exists (%d headlines); use --force to rebuild", date, existing.Items),
			})
			return r
		}
	}

	// Step 1: Collect
	step := p.runCollect(ctx, date)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 2: Analyze
	s, step := p.runAnalyze(date)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}
	r.Summary = s

	// Step 3: Persist
	step = p.runPersist(s)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}

	// Step 4: Report
	r.Report = report.Markdown(s)
	r.Steps = append(r.Steps, StepResult{
		Name:    "Report",
		Summary: fmt.Sprintf("Mood %s (%+.3f)%s", report.Mood(s.VaderMean), s.VaderMean, negativeLead(s)),
	})
	return r
}

// Analyze aggregates the headlines already stored for date and persists the
// summary, replacing any previous one.
func (p *Pipeline) Analyze(date string) *Result {
	r := &Result{Date: date}
	s, step := p.runAnalyze(date)
	r.Steps = append(r.Steps, step)
	if step.Err != nil {
		return r
	}
	r.Summary = s
	step = p.runPersist(s)
	r.Steps = append(r.Steps, step)
	if step.Err == nil {
		r.Report = report.Markdown(s)
	}
	return r
}

// DryRun shows what would be done without executing.
func (p *Pipeline) DryRun(date string) *Result {
	r := &Result{Date: date}

	if n, err := p.db.CountHeadlinesForDate(date); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Collect", Err: fmt.Errorf("counting headlines: %w", err)})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Collect",
			Summary: fmt.Sprintf("[dry-run] %d headlines already in DB for %s", n, date),
		})
	}

	if _, err := p.Aggregator(); err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Analyze", Err: err})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Analyze",
			Summary: "[dry-run] Lexicon loaded, would aggregate stored headlines",
		})
	}

	existing, err := p.db.GetSummary(date)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Name: "Persist", Err: fmt.Errorf("reading summary for %s: %w", date, err)})
	} else if existing != nil {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Persist",
			Summary: fmt.Sprintf("[dry-run] Summary already exists for %s (would be kept unless forced)", date),
		})
	} else {
		r.Steps = append(r.Steps, StepResult{
			Name:    "Persist",
			Summary: fmt.Sprintf("[dry-run] Would store summary for %s", date),
		})
	}
	return r
}

// Load returns the stored summary for date, or nil if there is none.
func (p *Pipeline) Load(date string) (*analyze.Summary, error) {
	row, err := p.db.GetSummary(date)
	if err != nil {
		return nil, fmt.Errorf("reading summary for %s: %w", date, err)
	}
	if row == nil {
		return nil, nil
	}
	return analyze.Unmarshal([]byte(row.Payload))
}

// Save stores s in the database and the daily log, replacing the record for
// the same date.
func (p *Pipeline) Save(s *analyze.Summary) error {
	if err := p.SaveToDB(s); err != nil {
		return err
	}
	if _, err := p.daily.Upsert(s); err != nil {
		return fmt.Errorf("writing daily log: %w", err)
	}
	return nil
}

// Forgotten reports what Forget removed.
type Forgotten struct {
	Summary   bool
	LogLine   bool
	Headlines int64
}

// Forget removes the summary for date from the database and the daily log.
// With headlines set, the collected headlines for date are removed as well, so
// the next run starts that day from scratch.
func (p *Pipeline) Forget(date string, headlines bool) (Forgotten, error) {
	var f Forgotten
	var err error
	if f.Summary, err = p.db.DeleteSummary(date); err != nil {
		return f, fmt.Errorf("deleting summary for %s: %w", date, err)
	}
	if f.LogLine, err = p.daily.Delete(date); err != nil {
		return f, fmt.Errorf("writing daily log: %w", err)
	}
	if headlines {
		if f.Headlines, err = p.db.ClearHeadlinesForDate(date); err != nil {
			return f, fmt.Errorf("deleting headlines for %s: %w", date, err)
		}
	}
	return f, nil
}

// SaveToDB stores s in the database only.
func (p *Pipeline) SaveToDB(s *analyze.Summary) error {
	row, err := SummaryRow(s)
	if err != nil {
		return err
	}
	if err := p.db.UpsertSummary(row); err != nil {
		return fmt.Errorf("storing summary for %s: %w", s.Date, err)
	}
	return nil
}

// SummaryRow converts a summary into its database row.
func SummaryRow(s *analyze.Summary) (database.DailySummary, error) {
	payload, err := s.Marshal()
	if err != nil {
		return database.DailySummary{}, err
	}
	return database.DailySummary{
		Date:        s.Date,
		Payload:     string(payload),
		Items:       s.Items,
		VaderMean:   s.VaderMean,
		HeadWithNeg: s.HeadlinePct(lexicon.Negative),
		HeadWithUnc: s.HeadlinePct(lexicon.Uncertainty),
		HeadWithPos: s.HeadlinePct(lexicon.Positive),
	}, nil
}

func (p *Pipeline) runCollect(ctx context.Context, date string) StepResult {
	log.Println("Step 1/4: Collecting headlines...")
	result := p.collector.Collect(ctx, date)
	if err := ctx.Err(); err != nil {
		return StepResult{Name: "Collect", Err: err}
	}
	summary := fmt.Sprintf("Found %d new headlines (%d total, %d duplicates)",
		result.NewHeadlines, result.TotalFound, result.Duplicates)
	if len(result.Failed) > 0 {
		summary += fmt.Sprintf("; %d source(s) failed: %v", len(result.Failed), result.Failed)
	}
	return StepResult{Name: "Collect", Summary: summary}
}

func (p *Pipeline) runAnalyze(date string) (*analyze.Summary, StepResult) {
	log.Println("Step 2/4: Analyzing headlines...")
	agg, err := p.Aggregator()
	if err != nil {
		return nil, StepResult{Name: "Analyze", Err: err}
	}
	stored, err := p.db.GetHeadlinesForDate(date)
	if err != nil {
		return nil, StepResult{Name: "Analyze", Err: fmt.Errorf("reading headlines: %w", err)}
	}

	s, err := agg.Aggregate(date, collect.Records(stored))
	if err != nil {
		var empty *analyze.EmptyBatchError
		if errors.As(err, &empty) {
			if _, rerr := p.db.InsertReport(date, empty.Received, empty.Dropped); rerr != nil {
				log.Printf("Warning: recording run report for %s: %v", date, rerr)
			}
		}
		return nil, StepResult{Name: "Analyze", Err: err}
	}
	return s, StepResult{
		Name: "Analyze",
		Summary: fmt.Sprintf("Scored %d headlines (%d dropped), mean polarity %+.3f",
			s.Items, s.Diagnostics.EmptyTitle, s.VaderMean),
	}
}

func (p *Pipeline) runPersist(s *analyze.Summary) StepResult {
	log.Println("Step 3/4: Storing summary...")
	if err := p.Save(s); err != nil {
		return StepResult{Name: "Persist", Err: err}
	}
	if _, err := p.db.InsertReport(s.Date, s.Diagnostics.Received, s.Diagnostics.EmptyTitle); err != nil {
		return StepResult{Name: "Persist", Err: fmt.Errorf("recording run report: %w", err)}
	}
	return StepResult{
		Name:    "Persist",
		Summary: fmt.Sprintf("Summary for %s stored in database and %s", s.Date, p.daily.Path()),
	}
}

func negativeLead(s *analyze.Summary) string {
	c := s.Category(lexicon.Negative)
	if c == nil || c.Most.LMScore == 0 {
		return ""
	}
	return fmt.Sprintf("; most negative: %q", c.Most.Title)
}
