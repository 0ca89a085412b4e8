package utils

import (
	"os"

	"github.com/rs/zerolog"
)

// NewLogger creates a configured logger. An unparseable level falls
// back to info.
func NewLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}

	return zerolog.New(os.Stdout).
		Level(parsed).
		With().
		Timestamp().
		Logger()
}
