package cli

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console logger at info level
func NewLogger(w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339Nano,
	}).With().Timestamp().Logger()
}

// SetDebug enables debug logging for every logger
func SetDebug(debug bool) {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
