package main

import (
	"bytes"
	"context"

	"github.com/paveg/dscribe/internal/config"
	"github.com/paveg/dscribe/internal/dataframe"
	"github.com/paveg/dscribe/internal/dispatch"
	dserrors "github.com/paveg/dscribe/internal/errors"
	dsio "github.com/paveg/dscribe/internal/io"
	"github.com/paveg/dscribe/internal/logging"
	"github.com/paveg/dscribe/internal/monitoring"
	"github.com/paveg/dscribe/internal/output"
	"github.com/paveg/dscribe/internal/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// flagValues holds the raw flag values; only flags the user set override
// the file and environment configuration.
type flagValues struct {
	configPath string
	format     string
	delimiter  string
	header     bool
	sampleSize int
	output     string
	nullToken  string
	workers    int
	seed       int64
	logLevel   string
	verbose    bool
	metrics    bool
}

func newRootCmd() *cobra.Command {
	flags := &flagValues{}

	cmd := &cobra.Command{
		Use:   "dscribe <path> [operation] [argument]",
		Short: "Describe a delimited data file",
		Long: `dscribe loads a delimited text file, infers a typed schema and answers
descriptive questions about it.

Operations:
  head                 first 5 rows (default)
  show [N]             first N rows (default 5)
  sample [N]           N random rows in file order (default 5)
  columns              column names
  count | nan | not_nan
  sum | mean | median | mode
  summary | basic_statistics
  sql "<query>"        run a query against the relation "data"`,
		Example: `  dscribe people.csv
  dscribe people.csv show 20
  dscribe people.csv summary -o csv
  dscribe people.tsv mean -d $'\t'
  dscribe people.csv sql "SELECT city, count(*) FROM data GROUP BY city"`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(1, 3)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		Version:       version.Info().Short(),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, args)
		},
	}
	cmd.SetVersionTemplate(version.Info().String())
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "configuration file (.yaml, .yml or .json)")
	f.StringVarP(&flags.format, "format", "f", config.DefaultFormat, "input format")
	f.StringVarP(&flags.delimiter, "delimiter", "d", config.DefaultDelimiter, "field delimiter (single byte)")
	f.BoolVar(&flags.header, "header", true, "first row holds column names")
	f.IntVar(&flags.sampleSize, "sample-size", config.DefaultSampleSize, "rows inspected by type inference")
	f.StringVarP(&flags.output, "output", "o", config.DefaultOutput, "output format: table, csv or json")
	f.StringVar(&flags.nullToken, "null-token", config.DefaultNullToken, "text printed for null cells in table output")
	f.IntVar(&flags.workers, "workers", 0, "worker goroutines for parallel reductions (0 = number of CPUs)")
	f.Int64Var(&flags.seed, "seed", config.DefaultSampleSeed, "seed for the sample operation")
	f.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	f.BoolVar(&flags.verbose, "verbose", false, "debug logging")
	f.BoolVar(&flags.metrics, "metrics", false, "log per-stage timings at debug level")

	return cmd
}

// usageError marks a command-line mistake; execute follows it with the
// usage text on stderr.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

// resolveConfig layers defaults, the config file, the environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command, flags *flagValues) (config.Config, error) {
	cfg := config.NewConfig()
	if flags.configPath != "" {
		loaded, err := config.LoadFromFile(flags.configPath)
		if err != nil {
			return config.Config{}, dserrors.NewInvalidInputError("Config", err.Error())
		}
		cfg = loaded
	}
	cfg = cfg.ApplyEnv()

	set := cmd.Flags().Changed
	if set("format") {
		cfg.Format = flags.format
	}
	if set("delimiter") {
		cfg.Delimiter = flags.delimiter
	}
	if set("header") {
		cfg.Header = flags.header
	}
	if set("sample-size") {
		cfg.SampleSize = flags.sampleSize
	}
	if set("output") {
		cfg.Output = flags.output
	}
	if set("null-token") {
		cfg.NullToken = flags.nullToken
	}
	if set("workers") {
		cfg.WorkerPoolSize = flags.workers
	}
	if set("seed") {
		cfg.SampleSeed = flags.seed
	}
	if set("log-level") {
		cfg.LogLevel = flags.logLevel
	}
	if set("verbose") {
		cfg.VerboseLogging = flags.verbose
	}
	if set("metrics") {
		cfg.MetricsCollection = flags.metrics
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, dserrors.NewInvalidInputError("Config", err.Error())
	}
	return cfg, nil
}

// run executes Load, Dispatch and Format. Output is rendered into a buffer
// and written only after every stage succeeded.
func run(cmd *cobra.Command, flags *flagValues, args []string) error {
	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.OptionsFromConfig(cfg), cmd.ErrOrStderr())
	if err != nil {
		return dserrors.NewInvalidInputError("Config", err.Error())
	}
	defer func() { _ = logger.Sync() }()

	path := args[0]
	opName := ""
	if len(args) > 1 {
		opName = args[1]
	}
	op, err := dispatch.Parse(opName, args[min(len(args), 2):])
	if err != nil {
		return err
	}

	metrics := monitoring.NewMetricsCollector(cfg.MetricsCollection)
	defer metrics.LogSummary(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var table *dataframe.Table
	err = metrics.RecordStage("load", func() (int, error) {
		var err error
		table, err = dsio.Load(ctx, path, cfg, nil, logger)
		if err != nil {
			return 0, err
		}
		return table.Len(), nil
	})
	if err != nil {
		return err
	}
	defer table.Release()

	result, err := dispatch.NewDispatcher(table, cfg).
		WithLogger(logger).
		WithMetrics(metrics).
		Dispatch(ctx, op)
	if err != nil {
		return err
	}
	defer result.Release()

	var buf bytes.Buffer
	formatter, err := output.New(cfg.Output, &buf, cfg.NullToken)
	if err != nil {
		return err
	}
	err = metrics.RecordStage("format", func() (int, error) {
		return result.Len(), formatter.Format(result)
	})
	if err != nil {
		return err
	}

	logger.Debug("writing result", zap.String("output", cfg.Output), zap.Int("bytes", buf.Len()))
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}
