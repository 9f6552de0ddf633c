// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

const (
	// FormatText selects the plain slog text handler
	FormatText = "text"
	// FormatColor selects the colorized tint handler for interactive terminals
	FormatColor = "color"
)

// Logger is a thin wrapper around slog.Logger
type Logger struct {
	*slog.Logger
}

// New returns a new Logger that writes text formatted logs to stderr
func New(level slog.Level) *Logger {
	return NewLogger(level, os.Stderr)
}

// NewLogger returns a new Logger that writes text formatted logs to the given io.Writer
func NewLogger(level slog.Level, output io.Writer) *Logger {
	return &Logger{slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))}
}

// NewColorLogger returns a new Logger that writes colorized logs to the given io.Writer
func NewColorLogger(level slog.Level, output io.Writer) *Logger {
	return &Logger{slog.New(tint.NewHandler(output, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))}
}

// NewWithFormat returns a stderr Logger for the given format. Unknown formats fall back to text.
func NewWithFormat(level slog.Level, format string) *Logger {
	if format == FormatColor {
		return NewColorLogger(level, os.Stderr)
	}
	return New(level)
}

// Err returns a slog.Attr for the given error
func Err(err error) slog.Attr {
	return slog.Any("error", err)
}
