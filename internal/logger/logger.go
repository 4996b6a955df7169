// internal/logger/logger.go
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options controls the global logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
}

func Init(opts Options) {
	log.Logger = New(os.Stderr, opts)
	zerolog.SetGlobalLevel(ParseLevel(opts.Level))
}

// New builds a logger writing to w. Console output is human-readable and
// colorized for development; json is meant for log collectors.
func New(w io.Writer, opts Options) zerolog.Logger {
	if strings.ToLower(opts.Format) != "json" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	// Add a hook to include the caller's file and line number
	return zerolog.New(w).With().Timestamp().Caller().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
