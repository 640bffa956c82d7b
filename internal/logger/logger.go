// Package logger provides structured logging for DraftStore
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with DraftStore-specific functionality
type Logger struct {
	zlog zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string // debug, info, warn, error
	Pretty     bool   // pretty-print for development
	Output     io.Writer
	WithCaller bool
}

// NewLogger creates a new structured logger
func NewLogger(cfg Config) *Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Pretty printing for development
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	zlog := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Str("service", "draftstore").
		Logger()

	if cfg.WithCaller {
		zlog = zlog.With().Caller().Logger()
	}

	return &Logger{zlog: zlog}
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// GetZerolog returns the underlying zerolog logger
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zlog
}

// Info logs an info message
func (l *Logger) Info(msg string) *zerolog.Event {
	return l.zlog.Info().Str("msg", msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) *zerolog.Event {
	return l.zlog.Debug().Str("msg", msg)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) *zerolog.Event {
	return l.zlog.Warn().Str("msg", msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) *zerolog.Event {
	return l.zlog.Error().Str("msg", msg)
}

// EngineLogger returns a logger for engine operations
func (l *Logger) EngineLogger(operation string) *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "engine").
			Str("operation", operation).
			Logger(),
	}
}

// PersistLogger returns a logger for persistence operations
func (l *Logger) PersistLogger() *Logger {
	return &Logger{
		zlog: l.zlog.With().
			Str("component", "persist").
			Logger(),
	}
}

// LogOperation logs a completed engine operation with structured fields
func (l *Logger) LogOperation(operation, documentID string, duration time.Duration, err error) {
	event := l.zlog.Debug().
		Str("component", "engine").
		Str("operation", operation).
		Str("document_id", documentID).
		Dur("duration_ms", duration)

	if err != nil {
		event = l.zlog.Error().
			Str("component", "engine").
			Str("operation", operation).
			Str("document_id", documentID).
			Dur("duration_ms", duration).
			Err(err)
	}

	event.Msg("Engine operation completed")
}

// LogPersistFailure logs a non-fatal snapshot save failure
func (l *Logger) LogPersistFailure(operation string, err error) {
	l.zlog.Warn().
		Str("component", "persist").
		Str("operation", operation).
		Err(err).
		Msg("Snapshot save failed, continuing in memory")
}
