// Package config provides configuration management for dscribe.
//
// A Config value is built once at the process boundary (defaults, then an
// optional file, then DSCRIBE_* environment variables, then flags) and
// threaded explicitly into the reader, inferencer and dispatcher. There is
// no process-wide configuration state.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the parsing and execution configuration for one invocation
type Config struct {
	// Input Configuration
	Format     string `json:"format" yaml:"format"`           // Input container format; only "csv" is read by the core
	Delimiter  string `json:"delimiter" yaml:"delimiter"`     // Single-byte field delimiter
	Header     bool   `json:"header" yaml:"header"`           // First row holds column names
	SampleSize int    `json:"sample_size" yaml:"sample_size"` // Rows inspected by type inference

	// Output Configuration
	Output    string `json:"output" yaml:"output"`         // table, csv or json
	NullToken string `json:"null_token" yaml:"null_token"` // Literal printed for null cells

	// Execution Configuration
	ParallelThreshold int   `json:"parallel_threshold" yaml:"parallel_threshold"` // Minimum rows to reduce columns in parallel (0 = never)
	WorkerPoolSize    int   `json:"worker_pool_size" yaml:"worker_pool_size"`     // Number of worker goroutines (0 = auto-detect)
	SampleSeed        int64 `json:"sample_seed" yaml:"sample_seed"`               // Seed for the sample operation

	// Debugging Configuration
	LogLevel          string `json:"log_level" yaml:"log_level"`                   // debug, info, warn, error
	VerboseLogging    bool   `json:"verbose_logging" yaml:"verbose_logging"`       // Force debug logging
	MetricsCollection bool   `json:"metrics_collection" yaml:"metrics_collection"` // Record per-stage timings
}

// Default configuration values
const (
	DefaultFormat            = "csv"
	DefaultDelimiter         = ","
	DefaultSampleSize        = 1000
	DefaultOutput            = "table"
	DefaultNullToken         = "null"
	DefaultParallelThreshold = 1000
	DefaultSampleSeed        = 42
	DefaultLogLevel          = "warn"
)

// Output formats accepted by Validate.
var outputFormats = map[string]bool{
	"table": true,
	"csv":   true,
	"json":  true,
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		Format:     DefaultFormat,
		Delimiter:  DefaultDelimiter,
		Header:     true,
		SampleSize: DefaultSampleSize,

		Output:    DefaultOutput,
		NullToken: DefaultNullToken,

		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect
		SampleSeed:        DefaultSampleSeed,

		LogLevel:          DefaultLogLevel,
		VerboseLogging:    false,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.Format == "" {
		return fmt.Errorf("Format must not be empty")
	}

	if len(c.Delimiter) != 1 {
		return fmt.Errorf("Delimiter must be a single byte, got %q", c.Delimiter)
	}

	if c.Delimiter == "\n" || c.Delimiter == "\r" || c.Delimiter == "\"" {
		return fmt.Errorf("Delimiter %q is not allowed", c.Delimiter)
	}

	if c.SampleSize <= 0 {
		return fmt.Errorf("SampleSize must be positive, got %d", c.SampleSize)
	}

	if !outputFormats[c.Output] {
		return fmt.Errorf("Output must be one of table, csv, json, got %q", c.Output)
	}

	if c.ParallelThreshold < 0 {
		return fmt.Errorf("ParallelThreshold must be non-negative, got %d", c.ParallelThreshold)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must be non-negative, got %d", c.WorkerPoolSize)
	}

	return nil
}

// DelimiterRune returns the delimiter as the rune encoding/csv expects.
func (c Config) DelimiterRune() rune {
	if c.Delimiter == "" {
		return ','
	}
	return rune(c.Delimiter[0])
}

// WithDefaults returns a new configuration with default values filled in for zero values
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.Format == "" {
		c.Format = defaults.Format
	}
	if c.Delimiter == "" {
		c.Delimiter = defaults.Delimiter
	}
	if c.SampleSize == 0 {
		c.SampleSize = defaults.SampleSize
	}
	if c.Output == "" {
		c.Output = defaults.Output
	}
	if c.NullToken == "" {
		c.NullToken = defaults.NullToken
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}

	// Header, ParallelThreshold and SampleSeed are not defaulted here: their
	// zero values are valid settings. Files are decoded over NewConfig() instead.

	return c
}

// LoadFromFile loads configuration from a file (supports JSON, YAML).
// Keys missing from the file keep their default values.
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv loads configuration from environment variables over the defaults
func LoadFromEnv() Config {
	return NewConfig().ApplyEnv()
}

// ApplyEnv returns a copy of c with DSCRIBE_* environment overrides applied.
// Unparsable values are ignored.
func (c Config) ApplyEnv() Config {
	if val, ok := os.LookupEnv("DSCRIBE_FORMAT"); ok && val != "" {
		c.Format = val
	}

	if val, ok := os.LookupEnv("DSCRIBE_DELIMITER"); ok && val != "" {
		c.Delimiter = val
	}

	if val := os.Getenv("DSCRIBE_HEADER"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			c.Header = parsed
		}
	}

	if val := os.Getenv("DSCRIBE_SAMPLE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.SampleSize = parsed
		}
	}

	if val := os.Getenv("DSCRIBE_OUTPUT"); val != "" {
		c.Output = val
	}

	if val, ok := os.LookupEnv("DSCRIBE_NULL_TOKEN"); ok && val != "" {
		c.NullToken = val
	}

	if val := os.Getenv("DSCRIBE_PARALLEL_THRESHOLD"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.ParallelThreshold = parsed
		}
	}

	if val := os.Getenv("DSCRIBE_WORKERS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.WorkerPoolSize = parsed
		}
	}

	if val := os.Getenv("DSCRIBE_SAMPLE_SEED"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.SampleSeed = parsed
		}
	}

	if val := os.Getenv("DSCRIBE_LOG_LEVEL"); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv("DSCRIBE_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			c.MetricsCollection = parsed
		}
	}

	return c
}
