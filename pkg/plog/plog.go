// Package plog provides the process-wide logger for the scenario harness.
// Informational records go to stdout, warnings and errors to stderr, so that
// harness chatter can be separated from real problems when the runner is
// driven from scripts or CI.
package plog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

var quietMode atomic.Bool

// quietAwareHandler drops INFO and below while quiet mode is active. It
// wraps every handler the package installs, so derived loggers (Scenario)
// honor quiet mode too.
type quietAwareHandler struct {
	inner slog.Handler
}

func (h quietAwareHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if quietMode.Load() && level < slog.LevelWarn {
		return false
	}
	return h.inner.Enabled(ctx, level)
}

func (h quietAwareHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h quietAwareHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return quietAwareHandler{inner: h.inner.WithAttrs(attrs)}
}

func (h quietAwareHandler) WithGroup(name string) slog.Handler {
	return quietAwareHandler{inner: h.inner.WithGroup(name)}
}

// levelDispatchHandler routes records by level: INFO and below to one
// handler, WARNING and above to another.
type levelDispatchHandler struct {
	lowHandler  slog.Handler
	highHandler slog.Handler
}

func (h *levelDispatchHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.lowHandler.Enabled(ctx, level) || h.highHandler.Enabled(ctx, level)
}

func (h *levelDispatchHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		return h.highHandler.Handle(ctx, r)
	}
	return h.lowHandler.Handle(ctx, r)
}

func (h *levelDispatchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelDispatchHandler{
		lowHandler:  h.lowHandler.WithAttrs(attrs),
		highHandler: h.highHandler.WithAttrs(attrs),
	}
}

func (h *levelDispatchHandler) WithGroup(name string) slog.Handler {
	return &levelDispatchHandler{
		lowHandler:  h.lowHandler.WithGroup(name),
		highHandler: h.highHandler.WithGroup(name),
	}
}

var defaultLogger atomic.Pointer[slog.Logger]

func init() {
	lowHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	highHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})
	defaultLogger.Store(slog.New(quietAwareHandler{inner: &levelDispatchHandler{
		lowHandler:  lowHandler,
		highHandler: highHandler,
	}}))
}

// SetOutput redirects all log output to the given writer, primarily for
// tests. Quiet mode is switched off so every level reaches the writer.
func SetOutput(w io.Writer) {
	quietMode.Store(false)
	defaultLogger.Store(slog.New(quietAwareHandler{inner: slog.NewTextHandler(w, nil)}))
}

// SetQuiet enables or disables quiet mode. In quiet mode INFO level records
// are suppressed; warnings and errors are always emitted.
func SetQuiet(quiet bool) {
	quietMode.Store(quiet)
}

// Scenario returns a logger carrying the scenario name on every record.
func Scenario(name string) *slog.Logger {
	return defaultLogger.Load().With("scenario", name)
}

// Info logs an informational message.
func Info(msg string, args ...any) {
	defaultLogger.Load().Info(msg, args...)
}

// Warn logs a warning message.
func Warn(msg string, args ...any) {
	defaultLogger.Load().Warn(msg, args...)
}

// Error logs an error message.
func Error(msg string, args ...any) {
	defaultLogger.Load().Error(msg, args...)
}
