// Package config loads and validates pipeline configuration from YAML files
// with environment-variable overrides. It provides typed structs for every
// tool (Tokenizer, Indexer, Search, StemSearch) plus the shared Logging and
// Metrics sections. Command-line flags take precedence over config values.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level pipeline configuration.
type Config struct {
	Tokenizer  TokenizerConfig  `yaml:"tokenizer"`
	Indexer    IndexerConfig    `yaml:"indexer"`
	Search     SearchConfig     `yaml:"search"`
	StemSearch StemSearchConfig `yaml:"stemSearch"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// TokenizerConfig holds JSON field-tokenizer settings.
type TokenizerConfig struct {
	Field    string `yaml:"field"`
	LogEvery int    `yaml:"logEvery"`
}

// IndexerConfig controls the index builder's sort parallelism.
type IndexerConfig struct {
	SortParallelism int `yaml:"sortParallelism"`
}

// SearchConfig controls boolean query evaluation limits and reporting.
type SearchConfig struct {
	ResultLimit  int `yaml:"resultLimit"`
	SlowQueryTop int `yaml:"slowQueryTop"`
	ReportTopRes int `yaml:"reportTopRes"`
}

// StemSearchConfig controls the stemmed TF-IDF searcher.
type StemSearchConfig struct {
	TopK       int     `yaml:"topK"`
	ExactBonus float64 `yaml:"exactBonus"`
	Stemming   bool    `yaml:"stemming"`
	CachePath  string  `yaml:"cachePath"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig controls Prometheus textfile export.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Load reads a YAML config file (if provided) and applies environment-variable
// overrides. It returns a Config populated with sensible defaults for any
// missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Tokenizer: TokenizerConfig{
			Field:    "parsed_text",
			LogEvery: 0,
		},
		Indexer: IndexerConfig{
			SortParallelism: 1,
		},
		Search: SearchConfig{
			ResultLimit:  0,
			SlowQueryTop: 10,
			ReportTopRes: 50,
		},
		StemSearch: StemSearchConfig{
			TopK:       10,
			ExactBonus: 0.5,
			Stemming:   true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PIPELINE_TOKENIZER_FIELD"); v != "" {
		cfg.Tokenizer.Field = v
	}
	if v := os.Getenv("PIPELINE_INDEXER_SORT_PARALLELISM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.SortParallelism = n
		}
	}
	if v := os.Getenv("PIPELINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PIPELINE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("PIPELINE_METRICS_PATH"); v != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Path = v
	}
}

func (c *Config) validate() error {
	if c.Tokenizer.Field == "" {
		return fmt.Errorf("tokenizer.field must not be empty")
	}
	if c.Indexer.SortParallelism < 1 {
		return fmt.Errorf("indexer.sortParallelism must be >= 1, got %d", c.Indexer.SortParallelism)
	}
	if c.Search.SlowQueryTop < 0 || c.Search.ReportTopRes < 0 {
		return fmt.Errorf("search limits must not be negative")
	}
	if c.StemSearch.TopK < 1 {
		return fmt.Errorf("stemSearch.topK must be >= 1, got %d", c.StemSearch.TopK)
	}
	return nil
}
