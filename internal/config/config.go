package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Timezone string   `yaml:"timezone"`
	Sources  Sources  `yaml:"sources"`
	Analysis Analysis `yaml:"analysis"`
	Output   Output   `yaml:"output"`
	Server   Server   `yaml:"server"`
	Schedule Schedule `yaml:"schedule"`
	Logging  Logging  `yaml:"logging"`
}

type Sources struct {
	UserAgent      string          `yaml:"user_agent"`
	TimeoutSeconds int             `yaml:"timeout_seconds"`
	TimeF          PageSource      `yaml:"timef"`
	Brutalist      BrutalistSource `yaml:"brutalist"`
	Skimfeed       SkimfeedSource  `yaml:"skimfeed"`
	Feeds          []Feed          `yaml:"feeds"`
	APIs           APIsConfig      `yaml:"apis"`
}

type PageSource struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

type BrutalistSource struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Limit   int    `yaml:"limit"`
}

type SkimfeedSource struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	ResolveTitles bool   `yaml:"resolve_titles"`
	MaxResolves   int    `yaml:"max_resolves"`
}

type Feed struct {
	URL  string `yaml:"url"`
	Name string `yaml:"name"`
}

type APIsConfig struct {
	NewsAPI NewsAPIConfig `yaml:"newsapi"`
}

type NewsAPIConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
	Category  string `yaml:"category"`
	Country   string `yaml:"country"`
}

type Analysis struct {
	LexiconPath string  `yaml:"lexicon_path"`
	TopN        int     `yaml:"top_n"`
	SummaryTop  int     `yaml:"summary_top"`
	LexiconTop  int     `yaml:"lexicon_top"`
	MinDF       int     `yaml:"min_df"`
	MaxDF       float64 `yaml:"max_df"`
	MaxFeatures int     `yaml:"max_features"`
}

type Output struct {
	DataDir  string `yaml:"data_dir"`
	DailyLog string `yaml:"daily_log"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Schedule struct {
	Time string `yaml:"time"`
}

type Logging struct {
	Level string `yaml:"level"`
}

var scheduleRE = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// ConfigDir returns the XDG config directory for newstone.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "newstone")
}

// DataDir returns the XDG data directory for newstone.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "newstone")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/newstone/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'newstone init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Timezone: "Europe/Paris",
		Sources: Sources{
			TimeoutSeconds: 20,
			TimeF:          PageSource{Enabled: true, URL: "https://timef.com/business/"},
			Brutalist: BrutalistSource{
				Enabled: true,
				URL:     "https://brutalist.report/topic/business",
				Limit:   10,
			},
			Skimfeed: SkimfeedSource{
				Enabled:       true,
				URL:           "https://skimfeed.com/custom.php?f=l%2Cp%2C119%2C121%2C122%2C123%2C124%2C125%2C126%2C127%2C156",
				ResolveTitles: true,
				MaxResolves:   10,
			},
			APIs: APIsConfig{
				NewsAPI: NewsAPIConfig{
					APIKeyEnv: "NEWSAPI_KEY",
					Category:  "business",
					Country:   "us",
				},
			},
		},
		Analysis: Analysis{
			LexiconPath: "Loughran-McDonald_MasterDictionary_1993-2024.csv",
			TopN:        30,
			SummaryTop:  10,
			LexiconTop:  10,
			MinDF:       2,
			MaxDF:       0.7,
			MaxFeatures: 20000,
		},
		Output:   Output{DailyLog: "daily.jsonl"},
		Server:   Server{Port: 8000},
		Schedule: Schedule{Time: "07:30"},
		Logging:  Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	a := c.Analysis
	if a.TopN < 1 || a.SummaryTop < 1 || a.LexiconTop < 1 {
		return fmt.Errorf("analysis top_n, summary_top and lexicon_top must be positive")
	}
	if a.MinDF < 1 {
		return fmt.Errorf("analysis min_df must be at least 1, got %d", a.MinDF)
	}
	if a.MaxDF <= 0 || a.MaxDF > 1 {
		return fmt.Errorf("analysis max_df must be in (0, 1], got %v", a.MaxDF)
	}
	if a.MaxFeatures < 0 {
		return fmt.Errorf("analysis max_features must not be negative, got %d", a.MaxFeatures)
	}
	if c.Schedule.Time != "" && !scheduleRE.MatchString(c.Schedule.Time) {
		return fmt.Errorf("invalid schedule time %q (expected HH:MM)", c.Schedule.Time)
	}
	return nil
}

// Location returns the configured timezone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Timeout returns the HTTP timeout for source requests.
func (c *Config) Timeout() time.Duration {
	if c.Sources.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// LexiconPath returns the lexicon path, resolved against the data directory.
func (c *Config) LexiconPath() string {
	return c.resolve(c.Analysis.LexiconPath)
}

// DailyLogPath returns the JSON-lines history path.
func (c *Config) DailyLogPath() string {
	name := c.Output.DailyLog
	if name == "" {
		name = "daily.jsonl"
	}
	return c.resolve(name)
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.GetDataDir(), p)
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
