// Package logging configures the structured diagnostic log. Human-facing
// progress lines go through internal/ui instead.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Log formats.
const (
	FormatPretty = "pretty"
	FormatJSON   = "json"
)

// Logger wraps zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

// Options configures a logger.
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a logger. Unknown levels fall back to warn so the default run
// only shows progress lines.
func New(opts Options) *Logger {
	var output io.Writer = os.Stderr
	if opts.Output != nil {
		output = opts.Output
	}

	if opts.Format != FormatJSON {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.Kitchen,
		}
	}

	logger := zerolog.New(output).
		Level(ParseLevel(opts.Level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// WithComponent returns a logger with a component field.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("component", component).Logger()}
}

// WithUnit returns a logger with a unit field.
func (l *Logger) WithUnit(name string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("unit", name).Logger()}
}

// WithRunID returns a logger with a run_id field.
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{Logger: l.Logger.With().Str("run_id", id).Logger()}
}
