// Copyright 2025 The Kori Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides the structured logging abstraction the framework
// core writes through.
//
// The core never writes to a transport directly: it only calls [Logger]
// methods on the logger the application supplied, deriving a "system"
// channel for its own internal diagnostics. The default implementation wraps
// log/slog; applications that already manage their own slog setup can adopt
// it with [FromSlog].
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// HandlerType selects the output format of the default logger.
type HandlerType string

const (
	// JSONHandler outputs structured JSON logs.
	JSONHandler HandlerType = "json"
	// TextHandler outputs key=value text logs.
	TextHandler HandlerType = "text"
)

// Level aliases slog.Level.
type Level = slog.Level

// Log levels re-exported for option construction.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// channelKey is the attribute key carrying the channel name.
const channelKey = "channel"

// Logger is the structured logging contract consumed by the framework.
//
// Channel derives a child logger tagged with a channel name, used to
// separate framework diagnostics ("system") from application logs. With
// accumulates bindings: key-value pairs attached to every subsequent entry
// of the derived logger.
type Logger interface {
	// Debug logs a debug message with structured attributes.
	Debug(msg string, args ...any)

	// Info logs an informational message with structured attributes.
	Info(msg string, args ...any)

	// Warn logs a warning message with structured attributes.
	Warn(msg string, args ...any)

	// Error logs an error message with structured attributes.
	Error(msg string, args ...any)

	// Channel derives a child logger tagged with the given channel name.
	Channel(name string) Logger

	// With derives a child logger with the given bindings accumulated.
	With(args ...any) Logger
}

// config holds the default logger configuration.
type config struct {
	handlerType HandlerType
	output      io.Writer
	level       Level
	serviceName string
	addSource   bool
}

// Option is a functional option for configuring the default logger.
type Option func(*config)

// WithHandlerType selects the output format. Default is JSON.
func WithHandlerType(t HandlerType) Option {
	return func(c *config) { c.handlerType = t }
}

// WithOutput sets the output writer. Default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithLevel sets the minimum level. Default is Info.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithServiceName attaches a service attribute to every entry.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithSource includes source file and line in every entry.
func WithSource() Option {
	return func(c *config) { c.addSource = true }
}

func defaultConfig() *config {
	return &config{
		handlerType: JSONHandler,
		output:      os.Stdout,
		level:       LevelInfo,
	}
}

// New creates the default slog-backed [Logger].
//
// Example:
//
//	log, err := logging.New(
//	    logging.WithServiceName("orders"),
//	    logging.WithLevel(logging.LevelDebug),
//	)
func New(opts ...Option) (Logger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.output == nil {
		return nil, errors.New("output writer cannot be nil")
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}

	var handler slog.Handler
	switch cfg.handlerType {
	case JSONHandler:
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	case TextHandler:
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown handler type: %q", cfg.handlerType)
	}

	sl := slog.New(handler)
	if cfg.serviceName != "" {
		sl = sl.With(slog.String("service", cfg.serviceName))
	}

	return &slogLogger{sl: sl}, nil
}

// MustNew creates the default logger or panics on configuration error.
func MustNew(opts ...Option) Logger {
	l, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("logging.MustNew: %v", err))
	}

	return l
}

// FromSlog adapts an existing *slog.Logger to the [Logger] contract.
func FromSlog(sl *slog.Logger) Logger {
	return &slogLogger{sl: sl}
}

// noop is the singleton no-op logger used when no logging is configured.
var noop = &slogLogger{sl: slog.New(slog.NewTextHandler(io.Discard, nil))}

// Noop returns the singleton no-op logger. It discards all entries.
func Noop() Logger {
	return noop
}

// slogLogger is the slog-backed Logger implementation. Derivation methods
// return new values; a slogLogger is immutable and safe for concurrent use.
type slogLogger struct {
	sl *slog.Logger
}

func (l *slogLogger) Debug(msg string, args ...any) { l.sl.Debug(msg, args...) }
func (l *slogLogger) Info(msg string, args ...any)  { l.sl.Info(msg, args...) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.sl.Warn(msg, args...) }
func (l *slogLogger) Error(msg string, args ...any) { l.sl.Error(msg, args...) }

func (l *slogLogger) Channel(name string) Logger {
	return &slogLogger{sl: l.sl.With(slog.String(channelKey, name))}
}

func (l *slogLogger) With(args ...any) Logger {
	if len(args) == 0 {
		return l
	}

	return &slogLogger{sl: l.sl.With(args...)}
}
