// Package logger is the request-scoped JSON logger of the HTTP layer.
// Entries carry typed fields and travel with the request context.
// rollbar.go adds an slog.Handler that reports errors to Rollbar.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Field is one structured key/value pair.
type Field = slog.Attr

func String(key, value string) Field  { return slog.String(key, value) }
func Int(key string, value int) Field { return slog.Int(key, value) }
func Any(key string, value any) Field { return slog.Any(key, value) }

// Err records err as a string under "error"; nil is recorded as null.
func Err(err error) Field {
	if err == nil {
		return slog.Any("error", nil)
	}
	return slog.String("error", err.Error())
}

// ParseLevel maps debug/info/warn/error (any case) to a level; anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Options configures New. Handler, when set, replaces Output and Level.
type Options struct {
	Output  io.Writer
	Level   slog.Level
	Handler slog.Handler
}

func DefaultOptions() Options {
	return Options{Output: os.Stdout, Level: slog.LevelInfo}
}

// Logger writes one JSON object per entry with "timestamp", "level" and
// "message" keys followed by the fields.
type Logger struct {
	s *slog.Logger
}

func New(opts Options) *Logger {
	h := opts.Handler
	if h == nil {
		out := opts.Output
		if out == nil {
			out = os.Stdout
		}
		h = slog.NewJSONHandler(out, &slog.HandlerOptions{
			Level:       opts.Level,
			ReplaceAttr: renameBuiltins,
		})
	}
	return &Logger{s: slog.New(h)}
}

func Default() *Logger { return New(DefaultOptions()) }

func renameBuiltins(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		return slog.String("timestamp", a.Value.Time().UTC().Format(time.RFC3339Nano))
	case slog.MessageKey:
		a.Key = "message"
	}
	return a
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields ...Field) *Logger {
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return &Logger{s: l.s.With(args...)}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return l.With(String(RequestIDKey, requestID))
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *Logger) log(level slog.Level, msg string, fields []Field) {
	l.s.LogAttrs(context.Background(), level, msg, fields...)
}

// ── context ─────────────────────────────────────────────────────────────────

type ctxKey struct{}

func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or a default one outside requests.
func FromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return Default()
}

// ── schedule fields ─────────────────────────────────────────────────────────

const RequestIDKey = "request_id"

func CourseID(id int64) Field        { return slog.Int64("course_id", id) }
func CourseTaskID(id int64) Field    { return slog.Int64("course_task_id", id) }
func Component(name string) Field    { return slog.String("component", name) }
func HTTPMethod(method string) Field { return slog.String("method", method) }
func HTTPPath(path string) Field     { return slog.String("path", path) }
func HTTPStatus(code int) Field      { return slog.Int("status", code) }
func Latency(d time.Duration) Field  { return slog.String("latency", d.String()) }
