package main

import (
	"fmt"

	"github.com/TobiSchelling/NewsTone/internal/analyze"
	"github.com/TobiSchelling/NewsTone/internal/dailylog"
	"github.com/TobiSchelling/NewsTone/internal/lexicon"
	"github.com/TobiSchelling/NewsTone/internal/pipeline"
	"github.com/TobiSchelling/NewsTone/internal/polarity"
	"github.com/TobiSchelling/NewsTone/internal/report"
	"github.com/spf13/cobra"
)

// --- show command ---

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Print the report for a date (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var date string
		if len(args) == 1 {
			if date, err = dateArg(args[0]); err != nil {
				return err
			}
		} else {
			all, err := db.GetAllSummaries()
			if err != nil {
				return err
			}
			if len(all) == 0 {
				fmt.Println("No summaries yet. Run 'newstone run' first.")
				return nil
			}
			date = all[0].Date
		}

		pipe := pipeline.New(cfg, db)
		s, err := pipe.Load(date)
		if err != nil {
			return err
		}
		if s == nil {
			// Fall back to the daily log, which may hold dates never imported.
			if s, err = pipe.DailyLog().Get(date); err != nil {
				return err
			}
		}
		if s == nil {
			return fmt.Errorf("no summary for %s", date)
		}

		fmt.Printf("# News tone for %s\n\n%s\n", date, report.Markdown(s))
		return nil
	},
}

// --- export / import commands ---

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Write every stored summary to a JSON-lines file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		rows, err := db.GetAllSummaries()
		if err != nil {
			return err
		}
		summaries := make([]*analyze.Summary, 0, len(rows))
		for _, row := range rows {
			s, err := analyze.Unmarshal([]byte(row.Payload))
			if err != nil {
				return fmt.Errorf("summary %s: %w", row.Date, err)
			}
			summaries = append(summaries, s)
		}

		if err := dailylog.Open(args[0]).Replace(summaries); err != nil {
			return err
		}
		fmt.Printf("Exported %d summaries to %s\n", len(summaries), args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Load summaries from a JSON-lines file into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, skipped, err := dailylog.Open(args[0]).Entries()
		if err != nil {
			return err
		}

		pipe := pipeline.New(cfg, db)
		imported := 0
		for _, e := range entries {
			s, err := e.Summary()
			if err != nil {
				skipped++
				continue
			}
			if err := pipe.SaveToDB(s); err != nil {
				return err
			}
			imported++
		}

		fmt.Printf("Imported %d summaries from %s\n", imported, args[0])
		if skipped > 0 {
			fmt.Printf("Skipped %d malformed line(s)\n", skipped)
		}
		return nil
	},
}

// --- forget command ---

var forgetHeadlines bool

var forgetCmd = &cobra.Command{
	Use:   "forget <date>",
	Short: "Remove the stored summary for a date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args[0])
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		f, err := pipeline.New(cfg, db).Forget(date, forgetHeadlines)
		if err != nil {
			return err
		}
		if !f.Summary && !f.LogLine && f.Headlines == 0 {
			fmt.Printf("Nothing stored for %s\n", date)
			return nil
		}
		fmt.Printf("Forgot %s:\n", date)
		fmt.Printf("  Database summary: %s\n", removed(f.Summary))
		fmt.Printf("  Daily log line: %s\n", removed(f.LogLine))
		if forgetHeadlines {
			fmt.Printf("  Headlines deleted: %d\n", f.Headlines)
		}
		return nil
	},
}

func init() {
	forgetCmd.Flags().BoolVar(&forgetHeadlines, "headlines", false, "Also delete the headlines collected for the date")
}

func removed(ok bool) string {
	if ok {
		return "removed"
	}
	return "none"
}

// --- lexicon command ---

var lexiconWords string

var lexiconCmd = &cobra.Command{
	Use:   "lexicon",
	Short: "Check the configured lexicon and show category sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.LexiconPath()
		lex, err := lexicon.LoadFile(path)
		if err != nil {
			return err
		}

		if lexiconWords != "" {
			cat, ok := lexicon.ParseCategory(lexiconWords)
			if !ok {
				return fmt.Errorf("unknown category %q (one of %v)", lexiconWords, lexicon.Categories)
			}
			for _, w := range lex.Words(cat) {
				fmt.Println(w)
			}
			return nil
		}

		st := lex.Stats()
		fmt.Printf("Lexicon: %s\n", path)
		fmt.Printf("  Rows: %d (%d without a word)\n\n", st.Rows, st.Skipped)
		for _, cat := range lexicon.Categories {
			fmt.Printf("  %-13s %5d words\n", cat, lex.Size(cat))
		}

		pol, err := polarity.New()
		if err != nil {
			return err
		}
		fmt.Printf("\nPolarity lexicon: %d entries\n", pol.Size())
		return nil
	},
}

func init() {
	lexiconCmd.Flags().StringVar(&lexiconWords, "words", "", "List the words of one category (e.g. negative)")
}
