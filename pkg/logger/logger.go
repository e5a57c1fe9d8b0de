// Package logger wires zerolog for the service. Handlers and pipelines take a
// *zerolog.Logger and attach request-scoped fields with .With().
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger construction options.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // "console" or "json"
	Output io.Writer
}

// New creates a zerolog logger with the given configuration.
func New(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	var zl zerolog.Logger
	if cfg.Format == "console" {
		zl = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		})
	} else {
		zl = zerolog.New(output)
	}

	return zl.Level(parseLevel(cfg.Level)).With().
		Timestamp().
		Str("service", "swiftconvert").
		Logger()
}

// Default returns a console logger at info level.
func Default() zerolog.Logger {
	return New(Config{Level: "info", Format: "console"})
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
