// Package logger provides structured logging configuration using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvLevel names the environment variable that overrides the log level.
const EnvLevel = "QTUNES_LOG_LEVEL"

// Config holds logger configuration.
type Config struct {
	Level  slog.Level
	Format string // "text" or "json"

	// Output defaults to os.Stderr
	Output io.Writer
}

// NewLogger creates a configured slog.Logger.
func NewLogger(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.Level <= slog.LevelDebug,
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}
	return slog.New(handler)
}

// ParseLevel converts DEBUG, INFO, WARN (or WARNING) and ERROR, in any case,
// to a slog level. The boolean is false for anything else.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// DefaultConfig returns INFO-level text logging, unless QTUNES_LOG_LEVEL says otherwise.
func DefaultConfig() Config {
	level := slog.LevelInfo
	if parsed, ok := ParseLevel(os.Getenv(EnvLevel)); ok {
		level = parsed
	}
	return Config{
		Level:  level,
		Format: "text",
	}
}

// FromSettings builds a Config from configuration file values.
// The environment variable still wins over the file level.
func FromSettings(level, format string) Config {
	cfg := DefaultConfig()
	if os.Getenv(EnvLevel) == "" {
		if parsed, ok := ParseLevel(level); ok {
			cfg.Level = parsed
		}
	}
	if format != "" {
		cfg.Format = format
	}
	return cfg
}
