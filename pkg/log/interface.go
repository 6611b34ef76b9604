// Package log provides a structured logging interface for pMPO model building.
//
// The interface is slog-compatible (key/value field lists) and backed by
// zerolog by default. Components obtain a named logger once and attach
// model context with With:
//
//	logger := log.GetLoggerWithName("pmpo.builder").With(
//	    log.ModelNameKey, "CNS pMPO",
//	    log.BuildIDKey, buildID,
//	)
//	logger.Info("Descriptor statistics computed",
//	    log.DescriptorsKey, 12,
//	    log.SignificantKey, 5,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. When the first field passed to
// Error is an error value, implementations attach it (and its stack trace,
// if any) under the "error" key.
type Logger interface {
	// Debug logs detailed diagnostic information such as per-descriptor statistics.
	Debug(msg string, fields ...any)

	// Info logs pipeline progress.
	Info(msg string, fields ...any)

	// Warn logs recoverable conditions, e.g. a descriptor excluded for undefined statistics.
	Warn(msg string, fields ...any)

	// Error logs failures. An error may be passed as the first field.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider creates and configures loggers. It allows tests to swap the
// zerolog backend for a capturing TestLoggerProvider.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
