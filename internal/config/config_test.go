package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paveg/dscribe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_DefaultValues(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, "csv", cfg.Format)
	assert.Equal(t, ",", cfg.Delimiter)
	assert.True(t, cfg.Header)
	assert.Equal(t, 1000, cfg.SampleSize)
	assert.Equal(t, "table", cfg.Output)
	assert.Equal(t, "null", cfg.NullToken)
	assert.Equal(t, 1000, cfg.ParallelThreshold)
	assert.Equal(t, 0, cfg.WorkerPoolSize) // 0 means auto-detect
	assert.Equal(t, int64(42), cfg.SampleSeed)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.VerboseLogging)
	assert.False(t, cfg.MetricsCollection)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:          "valid config",
			mutate:        func(c *config.Config) { c.Delimiter = ";" },
			expectedError: "",
		},
		{
			name:          "multi-byte delimiter",
			mutate:        func(c *config.Config) { c.Delimiter = "::" },
			expectedError: `Delimiter must be a single byte, got "::"`,
		},
		{
			name:          "quote delimiter",
			mutate:        func(c *config.Config) { c.Delimiter = `"` },
			expectedError: `Delimiter "\"" is not allowed`,
		},
		{
			name:          "zero sample size",
			mutate:        func(c *config.Config) { c.SampleSize = 0 },
			expectedError: "SampleSize must be positive, got 0",
		},
		{
			name:          "unknown output",
			mutate:        func(c *config.Config) { c.Output = "xml" },
			expectedError: `Output must be one of table, csv, json, got "xml"`,
		},
		{
			name:          "negative parallel threshold",
			mutate:        func(c *config.Config) { c.ParallelThreshold = -1 },
			expectedError: "ParallelThreshold must be non-negative, got -1",
		},
		{
			name:   "zero parallel threshold disables parallelism",
			mutate: func(c *config.Config) { c.ParallelThreshold = 0 },
		},
		{
			name:          "negative worker pool size",
			mutate:        func(c *config.Config) { c.WorkerPoolSize = -1 },
			expectedError: "WorkerPoolSize must be non-negative, got -1",
		},
		{
			name:          "empty format",
			mutate:        func(c *config.Config) { c.Format = "" },
			expectedError: "Format must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectedError == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expectedError)
			}
		})
	}
}

func TestConfig_DelimiterRune(t *testing.T) {
	cfg := config.NewConfig()
	assert.Equal(t, ',', cfg.DelimiterRune())

	cfg.Delimiter = "\t"
	assert.Equal(t, '\t', cfg.DelimiterRune())

	assert.Equal(t, ',', config.Config{}.DelimiterRune())
}

func TestConfig_LoadFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml keeps defaults for missing keys", func(t *testing.T) {
		path := filepath.Join(dir, "dscribe.yaml")
		require.NoError(t, os.WriteFile(path, []byte("delimiter: \";\"\nsample_size: 50\n"), 0o600))

		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)

		assert.Equal(t, ";", cfg.Delimiter)
		assert.Equal(t, 50, cfg.SampleSize)
		assert.True(t, cfg.Header)
		assert.Equal(t, "table", cfg.Output)
	})

	t.Run("json can disable header", func(t *testing.T) {
		path := filepath.Join(dir, "dscribe.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"header": false, "output": "json"}`), 0o600))

		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)

		assert.False(t, cfg.Header)
		assert.Equal(t, "json", cfg.Output)
	})

	t.Run("explicit zeros are kept", func(t *testing.T) {
		path := filepath.Join(dir, "zeros.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sample_seed: 0\nparallel_threshold: 0\n"), 0o600))

		cfg, err := config.LoadFromFile(path)
		require.NoError(t, err)

		assert.Zero(t, cfg.SampleSeed)
		assert.Zero(t, cfg.ParallelThreshold)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "dscribe.toml")
		require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o600))

		_, err := config.LoadFromFile(path)
		assert.EqualError(t, err, "unsupported config file format: .toml")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFromFile(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("DSCRIBE_DELIMITER", "|")
	t.Setenv("DSCRIBE_HEADER", "false")
	t.Setenv("DSCRIBE_SAMPLE_SIZE", "10")
	t.Setenv("DSCRIBE_WORKERS", "3")
	t.Setenv("DSCRIBE_PARALLEL_THRESHOLD", "not-a-number")

	cfg := config.LoadFromEnv()

	assert.Equal(t, "|", cfg.Delimiter)
	assert.False(t, cfg.Header)
	assert.Equal(t, 10, cfg.SampleSize)
	assert.Equal(t, 3, cfg.WorkerPoolSize)
	assert.Equal(t, 1000, cfg.ParallelThreshold) // unparsable value ignored
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := config.Config{
		SampleSize: 20,
	}

	withDefaults := cfg.WithDefaults()

	assert.Equal(t, 20, withDefaults.SampleSize)
	assert.Equal(t, ",", withDefaults.Delimiter)
	assert.Equal(t, "null", withDefaults.NullToken)
	assert.Zero(t, withDefaults.ParallelThreshold)
	assert.Zero(t, withDefaults.SampleSeed)
	assert.False(t, withDefaults.Header) // booleans are not defaulted
}
