// Menucast - Restaurant Menu Catalog Sync and Serving
// Copyright 2026 Tablewise Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tablewise/menucast

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandlerLevels(t *testing.T) {
	tests := []struct {
		name     string
		logFunc  func(*slog.Logger)
		expected string
	}{
		{"Debug", func(l *slog.Logger) { l.Debug("debug msg") }, `"level":"debug"`},
		{"Info", func(l *slog.Logger) { l.Info("info msg") }, `"level":"info"`},
		{"Warn", func(l *slog.Logger) { l.Warn("warn msg") }, `"level":"warn"`},
		{"Error", func(l *slog.Logger) { l.Error("error msg") }, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			zl := zerolog.New(&buf).Level(zerolog.DebugLevel)
			logger := slog.New(NewSlogHandlerWithLogger(zl))

			tt.logFunc(logger)

			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %s in output: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestSlogHandlerAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := slog.New(NewSlogHandlerWithLogger(zl))

	logger.Info("attrs test",
		slog.String("service", "sync-scheduler"),
		slog.Int64("items", 42),
		slog.Bool("ok", true),
		slog.Duration("took", 250*time.Millisecond),
	)

	output := buf.String()
	for _, want := range []string{
		`"service":"sync-scheduler"`,
		`"items":42`,
		`"ok":true`,
		"took",
		"attrs test",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := slog.New(NewSlogHandlerWithLogger(zl)).With(
		slog.String("supervisor", "menucast"),
	)

	logger.Info("child logger")

	output := buf.String()
	if !strings.Contains(output, `"supervisor":"menucast"`) {
		t.Errorf("expected pre-configured attr in output: %s", output)
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	logger := slog.New(NewSlogHandlerWithLogger(zl)).WithGroup("sync")

	logger.Info("grouped", slog.String("state", "running"))

	output := buf.String()
	if !strings.Contains(output, `"sync.state":"running"`) {
		t.Errorf("expected group-prefixed key in output: %s", output)
	}
}

func TestSlogHandlerWithEmptyGroup(t *testing.T) {
	t.Parallel()

	h := NewSlogHandler()
	if h.WithGroup("") != h {
		t.Error("expected empty group name to return the same handler")
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	t.Parallel()

	zl := zerolog.New(nil).Level(zerolog.WarnLevel)
	h := NewSlogHandlerWithLogger(zl)

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("expected info to be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelWarn) {
		t.Error("expected warn to be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("expected error to be enabled at warn level")
	}
}

func TestSlogToZerologLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    slog.Level
		expected zerolog.Level
	}{
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelDebug - 4, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		if got := slogToZerologLevel(tt.input); got != tt.expected {
			t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	logger := NewSlogLogger()
	logger.Info("global backed")

	if !strings.Contains(buf.String(), "global backed") {
		t.Errorf("expected slog output via global zerolog: %s", buf.String())
	}
}

func TestNewSlogLoggerWithLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))

	logger := NewSlogLoggerWithLevel("error")
	logger.Info("should be dropped")
	logger.Error("should appear")

	output := buf.String()
	if strings.Contains(output, "should be dropped") {
		t.Errorf("expected info to be filtered: %s", output)
	}
	if !strings.Contains(output, "should appear") {
		t.Errorf("expected error to pass through: %s", output)
	}
}
