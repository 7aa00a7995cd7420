package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

const (
	FieldChain     = "chain"
	FieldModule    = "module"
	FieldConnector = "connector"
	FieldAddress   = "address"
	FieldAttempt   = "attempt_id"
)

func New(writer io.Writer, level zerolog.Level, jsonOutput bool) zerolog.Logger {
	if !jsonOutput {
		writer = zerolog.ConsoleWriter{
			Out:        writer,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).Level(level).With().Timestamp().Caller().Logger()
}

// ParseLevel maps a flag value onto a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
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
