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

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	h := slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level})
	return NewWithHandler(h)
}

func TestLoggerScenarioTagsEveryLine(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	child := l.Scenario("BAU", 3)

	child.Info("year advanced")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "BAU", entry["scenario"])
	assert.Equal(t, float64(3), entry["trial"])
	assert.Equal(t, "year advanced", entry["msg"])
}

func TestLoggerWithChainsKeyValues(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	child := l.Scenario("Permit", 0).With("year", 2026)

	child.Info("snapshot")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Permit", entry["scenario"])
	assert.Equal(t, float64(2026), entry["year"])
}

func TestLoggerLevelsFilter(t *testing.T) {
	tests := []struct {
		level  slog.Level
		logFn  func(l *Logger)
		expect bool
	}{
		{slog.LevelInfo, func(l *Logger) { l.Debug("nope") }, false},
		{slog.LevelInfo, func(l *Logger) { l.Info("yes") }, true},
		{slog.LevelWarn, func(l *Logger) { l.Info("nope") }, false},
		{slog.LevelWarn, func(l *Logger) { l.Warn("yes") }, true},
		{slog.LevelDebug, func(l *Logger) { l.Debug("yes") }, true},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		l := newTestLogger(&buf, tt.level)
		tt.logFn(l)
		assert.Equal(t, tt.expect, buf.Len() > 0)
	}
}

func TestDefaultLoggerSetDefaultNilIsNoop(t *testing.T) {
	require.NotNil(t, Default())

	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelInfo)
	SetDefault(l)
	defer SetDefault(New(Config{Level: slog.LevelInfo}))

	Info("test info")
	assert.Contains(t, buf.String(), "test info")

	SetDefault(nil)
	assert.Same(t, l, Default())
}

func TestPackageLevelFunctionsDelegateToDefault(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf, slog.LevelDebug)
	SetDefault(l)
	defer SetDefault(New(Config{Level: slog.LevelInfo}))

	Debug("d")
	Info("i")
	Warn("w")
	Error("e")

	out := buf.String()
	for _, msg := range []string{"d", "i", "w", "e"} {
		assert.Contains(t, out, msg)
	}
}

func TestUncolorStripsAnsiEscapes(t *testing.T) {
	colored := "\x1b[31merror\x1b[0m: out of range"
	assert.Equal(t, "error: out of range", Uncolor(colored))
}

func TestUncolorWriterStripsBeforeForwarding(t *testing.T) {
	var buf bytes.Buffer
	w := &uncolorWriter{inner: &buf}
	n, err := w.Write([]byte("\x1b[32mok\x1b[0m"))
	require.NoError(t, err)
	assert.Equal(t, len("\x1b[32mok\x1b[0m"), n)
	assert.Equal(t, "ok", buf.String())
}

func TestNewHonorsJSONFlag(t *testing.T) {
	l := New(Config{Level: slog.LevelWarn, JSON: true})
	require.NotNil(t, l)
	_, isJSON := l.inner.Handler().(*slog.JSONHandler)
	assert.True(t, isJSON)
}
