// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats accepted by Setup.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Setup sets the global level and writer. Logs go to out, not stdout, so
// command output stays machine readable.
func Setup(level, format string, out io.Writer) error {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if logLevel == zerolog.NoLevel {
		logLevel = zerolog.InfoLevel
	}

	switch format {
	case FormatJSON, "":
	case FormatConsole:
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	default:
		return fmt.Errorf("invalid log format %q (expected %s or %s)", format, FormatJSON, FormatConsole)
	}

	zerolog.SetGlobalLevel(logLevel)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// With returns a child of the global logger carrying fields.
func With(fields map[string]any) zerolog.Logger {
	ctx := log.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
