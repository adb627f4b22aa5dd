package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"mtest/internal/config"
)

func TestToConfigFlags(t *testing.T) {
	flags := Flags{
		MCC:            "./mcc",
		BaseFolder:     "tests",
		Quiet:          true,
		Interactive:    true,
		Processors:     3,
		NameFilter:     "*lex*",
		Timeout:        time.Second,
		History:        true,
		SkipSmokeCheck: true,
		ShowCommands:   true,
		Stats:          true,
		Debug:          true,
	}

	assert.Equal(t, config.Flags{
		MCC:            "./mcc",
		BaseFolder:     "tests",
		Quiet:          true,
		Interactive:    true,
		Processors:     3,
		NameFilter:     "*lex*",
		Timeout:        time.Second,
		History:        true,
		SkipSmokeCheck: true,
		ShowCommands:   true,
		Stats:          true,
		Debug:          true,
	}, flags.ToConfigFlags())
}

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	logger.Debug().Msg("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	SetDebug(true)
	logger.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	SetDebug(false)
	logger.Debug().Msg("hidden again")
	assert.NotContains(t, buf.String(), "hidden again")
}
