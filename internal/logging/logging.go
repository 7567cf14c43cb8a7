// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel overrides the log level when set, e.g. IKDRIVE_LOG_LEVEL=warn.
const EnvLevel = "IKDRIVE_LOG_LEVEL"

type Options struct {
	Verbose bool
	// Format is "console" or "json". Empty means console.
	Format string
}

func New(opts Options) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableStacktrace = true
	config.Sampling = nil

	switch strings.ToLower(opts.Format) {
	case "", "console":
	case "json":
		config.Encoding = "json"
		config.EncoderConfig = zap.NewProductionEncoderConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", opts.Format)
	}

	if opts.Verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if env := os.Getenv(EnvLevel); env != "" {
		level, err := zapcore.ParseLevel(env)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvLevel, err)
		}
		config.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
