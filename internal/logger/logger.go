// Package logger provides structured logging utilities for the application.
// It wraps log/slog with JSON formatting, adds the request ID from the
// context to every record and can ship logs to Better Stack.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogbetterstack "github.com/samber/slog-betterstack"
)

// Logger is the application logger
type Logger struct {
	*slog.Logger
	level  *slog.LevelVar
	remote *AsyncHandler
}

// Options configures optional log sinks.
type Options struct {
	// BetterStackToken enables Better Stack shipping when non-empty.
	BetterStackToken    string
	BetterStackEndpoint string
	Async               AsyncOptions
}

// New creates a new logger instance with JSON formatting
func New(level string) *Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a new logger instance with JSON formatting writing to the provided writer
func NewWithWriter(level string, w io.Writer) *Logger {
	return NewWithOptions(level, w, Options{})
}

// NewWithOptions creates a logger writing JSON to w and, when a token is
// configured, to Better Stack through an asynchronous handler.
func NewWithOptions(level string, w io.Writer, opts Options) *Logger {
	lv := new(slog.LevelVar)
	lv.Set(parseLevel(level))

	local := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lv,
		ReplaceAttr: renameAttrs,
	})

	var remote *AsyncHandler
	var handler slog.Handler = local
	if opts.BetterStackToken != "" {
		bs := slogbetterstack.Option{
			Level:    lv,
			Token:    opts.BetterStackToken,
			Endpoint: opts.BetterStackEndpoint,
		}.NewBetterstackHandler()
		remote = NewAsyncHandler(bs, opts.Async)
		handler = NewMultiHandler(local, remote)
	}

	return &Logger{
		Logger: slog.New(NewContextHandler(handler)),
		level:  lv,
		remote: remote,
	}
}

// renameAttrs maps slog's built-in keys to the field names the log pipeline expects.
func renameAttrs(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.TimeKey:
		a.Key = "timestamp"
	case slog.LevelKey:
		a.Key = "level"
		a.Value = slog.StringValue(levelName(a.Value.String()))
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

func levelName(s string) string {
	if s == "WARN" {
		return "warning"
	}
	return strings.ToLower(s)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// SetLevel changes the minimum level of this logger and every logger derived from it.
func (l *Logger) SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "warning", "error":
		l.level.Set(parseLevel(level))
		return nil
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
}

// Shutdown flushes logs queued for Better Stack. It is a no-op without a remote sink.
func (l *Logger) Shutdown(ctx context.Context) error {
	return l.remote.Shutdown(ctx)
}

func (l *Logger) derive(sl *slog.Logger) *Logger {
	return &Logger{Logger: sl, level: l.level, remote: l.remote}
}

// WithModule creates a new entry with module field
func (l *Logger) WithModule(module string) *Logger {
	return l.derive(l.With("module", module))
}

// WithError creates a new entry with error field
func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.With("error", err))
}

// WithField creates a new entry with a single field
func (l *Logger) WithField(key string, value any) *Logger {
	return l.derive(l.With(key, value))
}

// WithFields creates a new entry with multiple fields
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return l.derive(l.With(args...))
}

// Infof logs a formatted message at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// Warnf logs a formatted message at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Errorf logs a formatted message at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

// Debugf logs a formatted message at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.Debug(fmt.Sprintf(format, args...))
}
