// Copyright 2026 The kigali-sim-sub006 Authors
// This file is part of the kigali-sim-sub006 library.
//
// The kigali-sim-sub006 library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The kigali-sim-sub006 library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the kigali-sim-sub006 library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides structured logging for the simulator: a log/slog
// wrapper with per-scenario child loggers, colorized TTY output, and
// optional rotating file output for long Monte Carlo batches.
package log

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog.Logger with scenario/trial context.
type Logger struct {
	inner *slog.Logger
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(Config{Level: slog.LevelInfo})
}

// Config controls New's output destination and format.
type Config struct {
	Level slog.Level
	// JSON forces the JSON handler even on a TTY; otherwise a TTY gets a
	// colorized text handler and a non-TTY gets JSON, matching the
	// terminal-vs-pipe convention `--log.json` encodes.
	JSON bool
	// FilePath, when set, writes JSON lines to a rotating log file instead
	// of stderr; nothing is written to stderr then.
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a Logger per cfg, writing to stderr unless cfg.FilePath is set.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stderr
	useColor := !cfg.JSON && isatty.IsTerminal(os.Stderr.Fd())
	if useColor {
		w = colorable.NewColorableStderr()
	}
	if cfg.FilePath != "" {
		w = &uncolorWriter{inner: &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    orDefault(cfg.MaxSizeMB, 100),
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}}
		useColor = false
	}

	var h slog.Handler
	if useColor {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: cfg.Level})
	}
	return &Logger{inner: slog.New(h)}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// NewWithHandler wraps an arbitrary slog.Handler, for tests that want to
// capture output.
func NewWithHandler(h slog.Handler) *Logger { return &Logger{inner: slog.New(h)} }

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger { return defaultLogger }

// Scenario returns a child logger tagged with a scenario name and trial
// index, the primary way the runner attributes log lines back to a
// particular Monte Carlo trial.
func (l *Logger) Scenario(name string, trial int) *Logger {
	return &Logger{inner: l.inner.With("scenario", name, "trial", trial)}
}

// With returns a child logger with additional key-value context.
func (l *Logger) With(args ...any) *Logger { return &Logger{inner: l.inner.With(args...)} }

func (l *Logger) Debug(msg string, args ...any) { l.inner.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.inner.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.inner.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.inner.Error(msg, args...) }

// Debug logs at LevelDebug using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at LevelInfo using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at LevelWarn using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at LevelError using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
