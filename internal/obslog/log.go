// Package obslog provides the structured logger used across the oram
// module and its CLI, wrapping zerolog the way the wider ecosystem does.
package obslog

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the process-wide logger instance. cmd/oram calls Init once at
// startup; library code that doesn't go through cmd/oram (e.g. package
// oram used directly as a library) never touches this package at all —
// backend.Log records are returned to the caller, not logged here.
var Logger zerolog.Logger

// Level names a logging verbosity, mirroring the small fixed set the
// wider corpus uses rather than exposing zerolog's full level range.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

// Config configures Init.
type Config struct {
	Level      Level
	JSONOutput bool
	Output     io.Writer // defaults to os.Stderr
}

// Init sets up the global Logger per cfg.
func Init(cfg Config) {
	var level zerolog.Level
	switch cfg.Level {
	case DebugLevel:
		level = zerolog.DebugLevel
	case WarnLevel:
		level = zerolog.WarnLevel
	case ErrorLevel:
		level = zerolog.ErrorLevel
	default:
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	output := cfg.Output
	if output == nil {
		output = os.Stderr
	}

	if cfg.JSONOutput {
		Logger = zerolog.New(output).With().Timestamp().Logger()
	} else {
		Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	}
}

// WithComponent returns a child logger tagged with component, e.g.
// "engine", "backend", "cli".
func WithComponent(component string) zerolog.Logger {
	return Logger.With().Str("component", component).Logger()
}

// BackendEvent logs one backend.Log-shaped record. It never logs block
// contents, keys, or plaintext — only the verb, object name, and a short
// detail string, matching the "Log has no payload" rule for backend
// observability (spec.md §4.A).
func BackendEvent(component, verb, name, detail string) {
	ev := Logger.Debug().Str("component", component).Str("verb", verb).Str("name", name)
	if detail != "" {
		ev = ev.Str("detail", detail)
	}
	ev.Msg("backend op")
}

// BackendEventFor logs one backend.Log-shaped record tagged with the
// originating Engine's instance ID, so log lines from concurrent CLI
// invocations against the same backend can be told apart.
func BackendEventFor(engineID, component, verb, name, detail string) {
	ev := Logger.Debug().Str("engine_id", engineID).Str("component", component).Str("verb", verb).Str("name", name)
	if detail != "" {
		ev = ev.Str("detail", detail)
	}
	ev.Msg("backend op")
}

func Info(msg string)  { Logger.Info().Msg(msg) }
func Warn(msg string)  { Logger.Warn().Msg(msg) }
func Error(msg string) { Logger.Error().Msg(msg) }

func Errorf(msg string, err error) {
	Logger.Error().Err(err).Msg(msg)
}
