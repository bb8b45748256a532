// Package log provides structured logging for the newswaters services.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output encoding.
type Format string

// Supported log formats.
const (
	FormatTerminal Format = "terminal"
	FormatJSON     Format = "json"
)

// Logger wraps slog.Logger with convenience constructors.
type Logger struct {
	handler slog.Handler
	logger  *slog.Logger
}

// NewLogger creates a Logger writing to stdout.
func NewLogger(format Format, level string) *Logger {
	return NewLoggerWithWriter(os.Stdout, format, level)
}

// NewLoggerWithWriter creates a Logger that writes to the specified writer.
func NewLoggerWithWriter(w io.Writer, format Format, level string) *Logger {
	lvl := parseLevel(level)

	var handler slog.Handler
	switch format {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		handler = newTerminalHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return &Logger{
		handler: handler,
		logger:  slog.New(handler),
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Handler returns the underlying slog.Handler.
func (l *Logger) Handler() slog.Handler {
	return l.handler
}

// Slog returns the underlying slog.Logger.
func (l *Logger) Slog() *slog.Logger {
	return l.logger
}

// With returns a new Logger with additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		handler: l.handler,
		logger:  l.logger.With(args...),
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// SetDefault sets the global default slog logger.
func (l *Logger) SetDefault() {
	slog.SetDefault(l.logger)
}

// Configure builds a logger from the LOG_FORMAT / LOG_LEVEL settings and
// installs it as the process default.
func Configure(format Format, level string) *Logger {
	l := NewLogger(format, level)
	l.SetDefault()
	return l
}
