package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	// Logger is the global slog logger instance. It falls back to slog's
	// default until Init is called so packages can log from tests and init code.
	Logger = slog.Default()
)

// ParseLevel maps a LOG_LEVEL style string to a slog level.
// Unknown values fall back to info.
func ParseLevel(levelStr string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug", "trace":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Init initializes the global JSON logger on stdout at the given level.
// An empty level reads LOG_LEVEL from the environment.
func Init(levelStr ...string) {
	lvl := os.Getenv("LOG_LEVEL")
	if len(levelStr) > 0 && levelStr[0] != "" {
		lvl = levelStr[0]
	}
	if lvl == "" {
		lvl = "info"
	}
	InitWriter(os.Stdout, lvl)
}

// InitWriter initializes the global logger writing JSON records to w.
func InitWriter(w io.Writer, levelStr string) {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(levelStr),
	})

	Logger = slog.New(handler).With("service", "scorebored")
	slog.SetDefault(Logger)

	Logger.Info("Logger initialized", "level", levelStr)
}

// With returns a child logger carrying the given attributes.
func With(args ...any) *slog.Logger {
	return Logger.With(args...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger.Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger.Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger.Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger.Error(msg, args...)
}
