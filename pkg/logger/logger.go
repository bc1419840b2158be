// Package logger configures the application-wide zerolog logger.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls log level and output format.
type Config struct {
	Level  string // "debug", "info", "warn", "error"
	Pretty bool   // human-readable console output instead of JSON
}

// New creates a zerolog logger from the given config. Unknown levels
// default to info.
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	var level zerolog.Level
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).
			With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// SetGlobalLogger replaces the zerolog global logger so package-level
// log calls share the configured output.
func SetGlobalLogger(l zerolog.Logger) {
	log.Logger = l
}
