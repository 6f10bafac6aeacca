// Package logging configures the bridge's zerolog sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/beeves/speech-bridge/internal/config"
)

// Setup creates a zerolog logger according to the provided
// configuration.  Logs go to stderr; stdout stays free in case the
// bridge's own output is ever piped.
func Setup(cfg config.LoggingConfig) (zerolog.Logger, error) {
	return setup(cfg, os.Stderr)
}

func setup(cfg config.LoggingConfig, sink io.Writer) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if cfg.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}

	var out io.Writer = sink
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		out = zerolog.ConsoleWriter{Out: sink, TimeFormat: time.RFC3339}
	case "json":
	default:
		return zerolog.Logger{}, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return zerolog.New(out).With().Timestamp().Logger().Level(level), nil
}
