package logger

import (
	"io"
	"os"
	"time"

	"mdnotes-server/internal/config"

	"github.com/rs/zerolog"
)

// New builds the process logger. Development defaults to a human readable
// console writer, every other environment to JSON lines.
func New(cfg config.LoggingConfig, env string) zerolog.Logger {
	return NewWithWriter(os.Stderr, cfg, env)
}

func NewWithWriter(w io.Writer, cfg config.LoggingConfig, env string) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	format := cfg.Format
	if format == "" {
		format = "json"
		if env == "development" {
			format = "console"
		}
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
