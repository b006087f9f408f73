// Package logging builds the zap logger used by every stage.
//
// Log output goes to the diagnostic stream (stderr in the CLI) so stdout
// carries nothing but results. There is no global logger: the CLI builds
// one per invocation and passes it down.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/paveg/dscribe/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls logger construction
type Options struct {
	// Level is a zap level name (debug, info, warn, error)
	Level string
	// Verbose forces debug level
	Verbose bool
	// Encoding is "console" (default) or "json"
	Encoding string
}

// OptionsFromConfig derives logger options from the invocation config
func OptionsFromConfig(cfg config.Config) Options {
	return Options{Level: cfg.LogLevel, Verbose: cfg.VerboseLogging}
}

// New creates a logger writing to w
func New(opts Options, w io.Writer) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = parsed
	}
	if opts.Verbose {
		level = zapcore.DebugLevel
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}

	var encoder zapcore.Encoder
	switch opts.Encoding {
	case "", "console":
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("invalid log encoding: %q", opts.Encoding)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), zap.NewAtomicLevelAt(level))
	return zap.New(core).Named("dscribe"), nil
}
