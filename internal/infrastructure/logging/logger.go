package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a console logger writing to stderr at the given level.
// Unknown levels fall back to warn.
func New(level string) zerolog.Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter builds a console logger writing to out
func NewWithWriter(level string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// ParseLevel parses a level name, defaulting to warn
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.WarnLevel
	}
	return lvl
}
