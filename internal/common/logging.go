// Package common provides shared utilities for Portfoliology
package common

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog.Logger to provide a consistent interface
type Logger struct {
	zerolog.Logger
}

// parseLevel maps a config level string onto a zerolog level.
// Unknown values fall back to info.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new console logger with the specified level
func NewLogger(level string) *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	logger := zerolog.New(output).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewLoggerWithOutput creates a logger writing JSON to a specific output
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	logger := zerolog.New(w).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewLoggerFromConfig creates a logger from the logging section of the config.
// Format "json" writes structured lines to stderr, anything else uses the console writer.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	if cfg.Format == "json" {
		return NewLoggerWithOutput(cfg.Level, os.Stderr)
	}
	return NewLogger(cfg.Level)
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	logger := zerolog.New(io.Discard)
	return &Logger{Logger: logger}
}
