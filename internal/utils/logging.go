// Package utils holds shared logging helpers for the daemon and clients.
package utils

import (
	"log/slog"
	"os"

	"github.com/jmylchreest/colorlightd/internal/config"
)

// LogLevel defines log level types
type LogLevel string

// Log level constants - using values from config package
const (
	LogLevelDebug LogLevel = LogLevel(config.LogLevelDebug)
	LogLevelInfo  LogLevel = LogLevel(config.LogLevelInfo)
	LogLevelWarn  LogLevel = LogLevel(config.LogLevelWarn)
	LogLevelError LogLevel = LogLevel(config.LogLevelError)
)

// LogFormat defines log format types
type LogFormat string

// Log format constants - using values from config package
const (
	LogFormatText LogFormat = LogFormat(config.LogFormatText)
	LogFormatJSON LogFormat = LogFormat(config.LogFormatJSON)
)

// levelVar is the process-wide log level. Handlers created by SetupLogger
// share it, so SetLevel takes effect immediately on all loggers.
var levelVar = new(slog.LevelVar)

// GetLogLevel converts a string log level to slog.Level
func GetLogLevel(level string) slog.Level {
	switch level {
	case string(LogLevelDebug):
		return slog.LevelDebug
	case string(LogLevelWarn):
		return slog.LevelWarn
	case string(LogLevelError):
		return slog.LevelError
	case string(LogLevelInfo):
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// LevelToString converts an slog.Level back to its config string.
func LevelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return string(LogLevelDebug)
	case slog.LevelWarn:
		return string(LogLevelWarn)
	case slog.LevelError:
		return string(LogLevelError)
	default:
		return string(LogLevelInfo)
	}
}

// ValidateLogLevel ensures the provided level is valid, returning a default if not
func ValidateLogLevel(level string) string {
	switch level {
	case string(LogLevelDebug), string(LogLevelInfo), string(LogLevelWarn), string(LogLevelError):
		return level
	default:
		return string(LogLevelInfo)
	}
}

// IsValidLogLevel reports whether level names a known log level.
func IsValidLogLevel(level string) bool {
	return ValidateLogLevel(level) == level
}

// ValidateLogFormat ensures the provided format is valid, returning a default if not
func ValidateLogFormat(format string) string {
	switch format {
	case string(LogFormatText), string(LogFormatJSON):
		return format
	default:
		return string(LogFormatText)
	}
}

// SetLevel changes the process-wide log level at runtime.
func SetLevel(level slog.Level) {
	levelVar.Set(level)
}

// Level returns the current process-wide log level.
func Level() slog.Level {
	return levelVar.Level()
}

// SetupLogger creates a logger writing to stderr in the requested format.
// The returned logger's level follows the shared LevelVar, so later calls
// to SetLevel apply to it without recreating the handler.
func SetupLogger(level string, format string) *slog.Logger {
	levelVar.Set(GetLogLevel(ValidateLogLevel(level)))

	opts := &slog.HandlerOptions{Level: levelVar}
	var handler slog.Handler
	if ValidateLogFormat(format) == string(LogFormatJSON) {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// SetupErrorLogger creates a simple text logger for reporting errors during startup.
func SetupErrorLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// SetAsDefaultLogger sets a logger as the default logger
func SetAsDefaultLogger(logger *slog.Logger) {
	slog.SetDefault(logger)
}
