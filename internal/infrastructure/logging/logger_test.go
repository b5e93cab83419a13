package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	is := is.New(t)
	is.Equal(ParseLevel("DEBUG"), zerolog.DebugLevel)
	is.Equal(ParseLevel(""), zerolog.WarnLevel)
	is.Equal(ParseLevel("loud"), zerolog.WarnLevel)
}

func TestNewWithWriter_FiltersByLevel(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	logger := NewWithWriter("warn", &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("task_id", "t1").Msg("shown")

	out := buf.String()
	is.True(!strings.Contains(out, "hidden"))
	is.True(strings.Contains(out, "shown"))
	is.True(strings.Contains(out, "t1"))
}
