// Package logtest provides loggers for tests.
package logtest

import (
	"testing"

	"github.com/rs/zerolog"
)

// New returns a debug logger that writes through t.Log.
func New(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
