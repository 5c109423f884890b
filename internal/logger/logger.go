package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the application logger. Pretty output goes to a console writer,
// otherwise JSON lines are written to w.
func New(w io.Writer, level string, pretty bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// Default is a pretty stderr logger at info level
func Default() zerolog.Logger {
	return New(os.Stderr, "info", true)
}
