// Package logging provides structured logging for pagekit built on log/slog,
// with per-component child loggers and lightweight operation timing.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
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

// ParseLevel maps a config string to a LogLevel, defaulting to info.
func ParseLevel(s string) LogLevel {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger interface for structured logging
type Logger interface {
	Debug(ctx context.Context, msg string, fields ...interface{})
	Info(ctx context.Context, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
	Error(ctx context.Context, err error, msg string, fields ...interface{})

	With(fields ...interface{}) Logger
	WithComponent(component string) Logger
}

// PageKitLogger implements structured logging for pagekit
type PageKitLogger struct {
	logger    *slog.Logger
	level     LogLevel
	component string
	fields    map[string]interface{}
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level     LogLevel
	Format    string // "json" or "text"
	Output    io.Writer
	AddSource bool
	Component string
}

// DefaultConfig returns default logger configuration
func DefaultConfig() *LoggerConfig {
	return &LoggerConfig{
		Level:  LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// NewLogger creates a new structured logger
func NewLogger(config *LoggerConfig) *PageKitLogger {
	if config == nil {
		config = DefaultConfig()
	}

	output := config.Output
	if output == nil {
		output = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     slogLevel(config.Level),
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, opts)
	} else {
		handler = slog.NewTextHandler(output, opts)
	}

	return &PageKitLogger{
		logger:    slog.New(handler),
		level:     config.Level,
		component: config.Component,
		fields:    make(map[string]interface{}),
	}
}

func slogLevel(l LogLevel) slog.Level {
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

// Debug logs a debug message
func (l *PageKitLogger) Debug(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelDebug {
		return
	}
	l.log(ctx, slog.LevelDebug, nil, msg, fields...)
}

// Info logs an info message
func (l *PageKitLogger) Info(ctx context.Context, msg string, fields ...interface{}) {
	if l.level > LevelInfo {
		return
	}
	l.log(ctx, slog.LevelInfo, nil, msg, fields...)
}

// Warn logs a warning message
func (l *PageKitLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{}) {
	if l.level > LevelWarn {
		return
	}
	l.log(ctx, slog.LevelWarn, err, msg, fields...)
}

// Error logs an error message
func (l *PageKitLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {
	l.log(ctx, slog.LevelError, err, msg, fields...)
}

// With creates a new logger with additional fields
func (l *PageKitLogger) With(fields ...interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields)/2)
	for k, v := range l.fields {
		newFields[k] = v
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			newFields[key] = fields[i+1]
		}
	}

	return &PageKitLogger{
		logger:    l.logger,
		level:     l.level,
		component: l.component,
		fields:    newFields,
	}
}

// WithComponent creates a new logger with component context
func (l *PageKitLogger) WithComponent(component string) Logger {
	return &PageKitLogger{
		logger:    l.logger,
		level:     l.level,
		component: component,
		fields:    l.fields,
	}
}

func (l *PageKitLogger) log(ctx context.Context, level slog.Level, err error, msg string, fields ...interface{}) {
	attrs := make([]slog.Attr, 0, len(l.fields)+len(fields)/2+2)

	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	for k, v := range l.fields {
		attrs = append(attrs, slog.Any(k, v))
	}
	for i := 0; i+1 < len(fields); i += 2 {
		if key, ok := fields[i].(string); ok {
			attrs = append(attrs, slog.Any(key, fields[i+1]))
		}
	}

	record := slog.NewRecord(time.Now(), level, msg, 0)
	record.AddAttrs(attrs...)

	l.logger.Handler().Handle(ctx, record)
}

// NopLogger discards all log output. Useful as a default collaborator in
// code paths where the caller did not wire a logger.
type NopLogger struct{}

func (NopLogger) Debug(ctx context.Context, msg string, fields ...interface{})            {}
func (NopLogger) Info(ctx context.Context, msg string, fields ...interface{})             {}
func (NopLogger) Warn(ctx context.Context, err error, msg string, fields ...interface{})  {}
func (NopLogger) Error(ctx context.Context, err error, msg string, fields ...interface{}) {}
func (n NopLogger) With(fields ...interface{}) Logger                                     { return n }
func (n NopLogger) WithComponent(component string) Logger                                 { return n }

// PerfLogger tracks the duration of a single named operation
type PerfLogger struct {
	Logger
	startTime time.Time
	operation string
}

// StartOperation begins performance tracking
func (l *PageKitLogger) StartOperation(operation string) *PerfLogger {
	return &PerfLogger{
		Logger:    l.With("operation", operation),
		startTime: time.Now(),
		operation: operation,
	}
}

// End completes performance tracking and logs the duration
func (p *PerfLogger) End(ctx context.Context) {
	duration := time.Since(p.startTime)
	p.Info(ctx, "Operation completed",
		"duration_ms", duration.Milliseconds(),
	)
}

// EndWithError completes performance tracking and logs an error
func (p *PerfLogger) EndWithError(ctx context.Context, err error) {
	duration := time.Since(p.startTime)
	p.Error(ctx, err, "Operation failed",
		"duration_ms", duration.Milliseconds(),
	)
}
