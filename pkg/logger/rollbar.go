package logger

import (
	"context"
	"log/slog"

	"github.com/rollbar/rollbar-go"
	rollbarerrors "github.com/rollbar/rollbar-go/errors"
)

// Reporter is the part of *rollbar.Client used by RollbarHandler.
type Reporter interface {
	ErrorWithExtras(level string, err error, extras map[string]interface{})
	MessageWithExtras(level string, msg string, extras map[string]interface{})
}

// RollbarOptions configures the Rollbar client.
type RollbarOptions struct {
	Token       string
	Environment string
	CodeVersion string
	ServerHost  string
}

// NewRollbarClient creates a Rollbar client that extracts stack traces
// from wrapped errors.
func NewRollbarClient(opts RollbarOptions) *rollbar.Client {
	client := rollbar.New(opts.Token, opts.Environment, opts.CodeVersion, opts.ServerHost, "")
	client.SetStackTracer(rollbarerrors.StackTracer)
	return client
}

// RollbarHandler wraps an slog.Handler and forwards records at Error level
// and above to a Reporter. Every record still reaches the wrapped handler.
type RollbarHandler struct {
	next     slog.Handler
	reporter Reporter
	attrs    []slog.Attr
	group    string
}

// NewRollbarHandler wraps next. A nil reporter disables forwarding.
func NewRollbarHandler(next slog.Handler, reporter Reporter) *RollbarHandler {
	return &RollbarHandler{next: next, reporter: reporter}
}

// Enabled implements slog.Handler.
func (h *RollbarHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RollbarHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.reporter != nil && r.Level >= slog.LevelError {
		h.report(r)
	}
	return h.next.Handle(ctx, r)
}

func (h *RollbarHandler) report(r slog.Record) {
	extras := make(map[string]interface{}, len(h.attrs)+r.NumAttrs())
	var cause error

	add := func(a slog.Attr) {
		if err, ok := a.Value.Any().(error); ok && cause == nil {
			cause = err
			return
		}
		extras[h.key(a.Key)] = a.Value.Resolve().Any()
	}
	for _, a := range h.attrs {
		add(a)
	}
	r.Attrs(func(a slog.Attr) bool {
		add(a)
		return true
	})

	level := rollbar.ERR
	if r.Level > slog.LevelError {
		level = rollbar.CRIT
	}

	if cause != nil {
		extras["message"] = r.Message
		h.reporter.ErrorWithExtras(level, cause, extras)
		return
	}
	h.reporter.MessageWithExtras(level, r.Message, extras)
}

func (h *RollbarHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

// WithAttrs implements slog.Handler.
func (h *RollbarHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cp := *h
	cp.next = h.next.WithAttrs(attrs)
	cp.attrs = append(append([]slog.Attr(nil), h.attrs...), attrs...)
	return &cp
}

// WithGroup implements slog.Handler.
func (h *RollbarHandler) WithGroup(name string) slog.Handler {
	cp := *h
	cp.next = h.next.WithGroup(name)
	cp.group = h.key(name)
	return &cp
}

var _ slog.Handler = (*RollbarHandler)(nil)
