// Package xlog is a thin wrapper around log/slog used for every
// log-and-skip path in the pipeline: stderr by default, with an optional
// JSON handler.
package xlog

import (
	"log/slog"
	"os"
)

// Logger wraps a *slog.Logger with the leveled methods callers use
// throughout the pipeline.
type Logger struct {
	slog *slog.Logger
}

// Config controls how a Logger is built.
type Config struct {
	JSON  bool
	Debug bool
}

// New returns a Logger writing to stderr per cfg.
func New(cfg Config) *Logger {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return &Logger{slog: slog.New(handler)}
}

var def = New(Config{})

// Default returns the package-level stderr/text logger.
func Default() *Logger { return def }

// SetDefault replaces the package-level logger, e.g. once the CLI parses
// --log-json.
func SetDefault(l *Logger) { def = l }

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }
