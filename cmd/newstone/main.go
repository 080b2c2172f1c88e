package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	_ "time/tzdata"

	"github.com/TobiSchelling/NewsTone/internal/collect"
	"github.com/TobiSchelling/NewsTone/internal/config"
	"github.com/TobiSchelling/NewsTone/internal/database"
	"github.com/TobiSchelling/NewsTone/internal/pipeline"
	"github.com/TobiSchelling/NewsTone/internal/scheduler"
	"github.com/TobiSchelling/NewsTone/internal/server"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "newstone",
	Short:   "Daily business news tone",
	Long:    "NewsTone collects business headlines, scores them against the Loughran-McDonald lexicon and a polarity model, and tracks the daily tone.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(lexiconCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("newstone", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/newstone/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Printf("Place the Loughran-McDonald master dictionary CSV in %s\n", config.DataDir())
		fmt.Println("or point analysis.lexicon_path at it.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}

		today := today()
		fmt.Printf("Today: %s (%s)\n\n", today, cfg.Timezone)
		fmt.Println("Headlines:")
		fmt.Printf("  Total collected: %d\n", stats.TotalHeadlines)
		fmt.Printf("  Days with headlines: %d\n", stats.DaysWithHeadlines)
		if n, err := db.CountHeadlinesForDate(today); err == nil {
			fmt.Printf("  Collected today: %d\n", n)
		}
		fmt.Println("\nSummaries:")
		fmt.Printf("  Stored: %d\n", stats.Summaries)
		if stats.Summaries > 0 {
			fmt.Printf("  Range: %s to %s\n", stats.FirstSummary, stats.LastSummary)
		}
		fmt.Printf("  Runs: %d\n", stats.Runs)
		if last, _ := db.GetLastRunDate(); last != "" {
			fmt.Printf("  Last run: %s\n", last)
		}
		fmt.Println("\nFiles:")
		fmt.Printf("  Database: %s\n", db.Path())
		fmt.Printf("  Daily log: %s\n", cfg.DailyLogPath())
		lexState := "ok"
		if _, err := os.Stat(cfg.LexiconPath()); err != nil {
			lexState = "missing"
		}
		fmt.Printf("  Lexicon: %s (%s)\n", cfg.LexiconPath(), lexState)
		return nil
	},
}

// --- collect command ---

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect today's headlines from configured sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signalContext()
		defer stop()

		date := today()
		fmt.Printf("Collecting headlines for %s...\n", date)

		collector := collect.NewCollector(cfg, db)
		result := collector.Collect(ctx, date)

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New headlines: %d\n", result.NewHeadlines)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

		if len(result.Sources) > 0 {
			fmt.Println("\nHeadlines by source:")
			// Sort sources by count descending
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool {
				if sorted[i].val != sorted[j].val {
					return sorted[i].val > sorted[j].val
				}
				return sorted[i].key < sorted[j].key
			})
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}
		if len(result.Failed) > 0 {
			fmt.Printf("\nFailed sources: %v\n", result.Failed)
		}
		return nil
	},
}

// --- analyze command ---

var analyzeDate string

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the headlines already collected for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(analyzeDate)
		if err != nil {
			return err
		}
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		result := pipeline.New(cfg, db).Analyze(date)
		printSteps(result)
		if result.Report != "" {
			fmt.Printf("\n%s\n", result.Report)
		}
		return result.Err()
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "Date to analyze (YYYY-MM-DD, default today)")
}

// --- run command ---

var (
	dryRun   bool
	forceRun bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: collect -> analyze -> persist -> report",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, stop := signalContext()
		defer stop()

		date := today()
		pipe := pipeline.New(cfg, db)

		var result *pipeline.Result
		if dryRun {
			result = pipe.DryRun(date)
		} else {
			result = pipe.Run(ctx, date, forceRun)
		}
		printSteps(result)

		if err := result.Err(); err != nil {
			return err
		}
		if dryRun {
			return nil
		}
		fmt.Printf("\n%s\n", result.Report)
		fmt.Println("\nPipeline complete! Run 'newstone serve' to view the dashboard.")
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without executing")
	runCmd.Flags().BoolVar(&forceRun, "force", false, "Rebuild today's summary even if one exists")
}

// --- serve command ---

var (
	servePort     int
	serveSchedule bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		ctx, stop := signalContext()
		defer stop()

		if serveSchedule {
			if cfg.Schedule.Time == "" {
				return fmt.Errorf("--schedule needs schedule.time in the config")
			}
			sched := scheduler.New(cfg.Location())
			pipe := pipeline.New(cfg, db)
			err := sched.Daily(cfg.Schedule.Time, func() {
				r := pipe.Run(ctx, today(), false)
				for _, step := range r.Steps {
					if step.Err != nil {
						log.Printf("Scheduled run %s failed at %s: %v", r.Date, step.Name, step.Err)
						return
					}
				}
				log.Printf("Scheduled run %s complete", r.Date)
			})
			if err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()
			fmt.Printf("Daily run scheduled at %s %s (next: %s)\n",
				cfg.Schedule.Time, cfg.Timezone, sched.Next().Format("2006-01-02 15:04 MST"))
		}

		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(ctx, db, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on (default from config)")
	serveCmd.Flags().BoolVar(&serveSchedule, "schedule", false, "Run the pipeline daily at schedule.time")
}

func printSteps(result *pipeline.Result) {
	for i, step := range result.Steps {
		fmt.Printf("\nStep %d/%d: %s\n", i+1, len(result.Steps), step.Name)
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		} else {
			fmt.Printf("  %s\n", step.Summary)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func today() string {
	return database.GetToday(cfg.Location())
}

// dateArg returns date, or today when it is empty.
func dateArg(date string) (string, error) {
	if date == "" {
		return today(), nil
	}
	if !database.ValidDate(date) {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}
	return date, nil
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "newstone.db")
	return database.Open(dbPath)
}
