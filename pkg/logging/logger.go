// Copyright (C) 2026 Apex Studio (tools@apexstudio.dev)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for SceneDoctor components.
//
// The logger wraps the standard library slog package with a layered
// output model:
//
//   - Default: stderr output for CLI compatibility
//   - Optional: file logging with automatic directory creation
//
// # Basic Usage
//
//	logger := logging.Default()
//	logger.Info("scan complete", "findings", len(findings))
//	logger.Error("fix failed", "object", obj.Name, "error", err)
//
// # File Logging
//
//	logger := logging.New(logging.Config{
//	    Level:   logging.LevelInfo,
//	    LogDir:  "~/.scenedoctor/logs",
//	    Service: "cli",
//	})
//	defer logger.Close()
//
// This creates log files named `{service}_{date}.log` in JSON format.
//
// # Thread Safety
//
// Logger is safe for concurrent use; the underlying slog.Logger is
// thread-safe and mutable state is protected by a mutex.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level represents log severity, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations.
	LevelWarn

	// LevelError is for operation failures the system survives.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level, defaulting to Info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures the Logger. A zero-value Config creates a logger that
// writes Info+ messages to stderr in text format.
type Config struct {
	// Level sets the minimum log level. Default: LevelInfo.
	Level Level

	// LogDir enables file logging to the given directory. Files are
	// named "{Service}_{YYYY-MM-DD}.log" and always JSON. Supports ~
	// for home directory expansion. Default: disabled.
	LogDir string

	// Service identifies the component generating logs and is attached
	// to every entry as the "service" attribute.
	Service string

	// JSON switches stderr output to JSON format.
	JSON bool

	// Quiet disables stderr output; logs go only to the file, if any.
	Quiet bool
}

// Logger provides structured logging with multi-destination output.
type Logger struct {
	slog   *slog.Logger
	config Config
	file   *os.File
	mu     sync.Mutex
}

// New creates a Logger for the given configuration. The returned Logger
// should be closed with Close() when file logging is enabled.
func New(config Config) *Logger {
	var handlers []slog.Handler

	opts := &slog.HandlerOptions{Level: config.Level.toSlogLevel()}

	if !config.Quiet {
		if config.JSON {
			handlers = append(handlers, slog.NewJSONHandler(os.Stderr, opts))
		} else {
			handlers = append(handlers, slog.NewTextHandler(os.Stderr, opts))
		}
	}

	logger := &Logger{config: config}

	if config.LogDir != "" {
		logDir := expandPath(config.LogDir)
		if err := os.MkdirAll(logDir, 0750); err == nil {
			service := config.Service
			if service == "" {
				service = "scenedoctor"
			}
			filename := fmt.Sprintf("%s_%s.log", service, time.Now().Format("2006-01-02"))
			file, err := os.OpenFile(filepath.Join(logDir, filename),
				os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0640)
			if err == nil {
				logger.file = file
				handlers = append(handlers, slog.NewJSONHandler(file, opts))
			}
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(os.Stderr, opts)
	case 1:
		handler = handlers[0]
	default:
		handler = &multiHandler{handlers: handlers}
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", config.Service)})
	}

	logger.slog = slog.New(handler)
	return logger
}

// Default returns a stderr-only logger at Info level.
func Default() *Logger {
	return New(Config{Level: LevelInfo, Service: "scenedoctor"})
}

// Discard returns a logger that drops everything, for tests.
func Discard() *Logger {
	return New(Config{Level: LevelError, Quiet: true})
}

// Debug logs a message at Debug level with key-value attributes.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args...) }

// Info logs a message at Info level with key-value attributes.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args...) }

// Warn logs a message at Warn level with key-value attributes.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args...) }

// Error logs a message at Error level with key-value attributes.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args...) }

// With returns a child Logger carrying additional attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		slog:   l.slog.With(args...),
		config: l.config,
	}
}

// Close flushes and closes the log file, if any. The parent logger owns
// the file; child loggers from With() must not be closed.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

func (l *Logger) log(level Level, msg string, args ...any) {
	l.slog.Log(context.Background(), level.toSlogLevel(), msg, args...)
}

// expandPath resolves a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// multiHandler fans one record out to several slog handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if h.Enabled(ctx, record.Level) {
			if err := h.Handle(ctx, record.Clone()); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: out}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	out := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		out[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: out}
}
