package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

var (
	defLog = Make(os.Stderr)
	defMu  sync.RWMutex
)

// Config layers the given options over the package-level logger's current
// configuration. Successive calls accumulate.
func Config(opts ...Option) {
	defMu.Lock()
	defer defMu.Unlock()

	defLog = defLog.Wrap(opts...)
}

// Default returns the package-level logger.
func Default() Logger {
	defMu.RLock()
	defer defMu.RUnlock()

	return defLog
}

// With returns a copy of the package-level logger carrying the given
// attributes on every record.
func With(attrs ...slog.Attr) Logger { return Default().With(attrs...) }

func Trace(msg string, attrs ...slog.Attr) { Default().Trace(msg, attrs...) }
func Debug(msg string, attrs ...slog.Attr) { Default().Debug(msg, attrs...) }
func Info(msg string, attrs ...slog.Attr)  { Default().Info(msg, attrs...) }
func Warn(msg string, attrs ...slog.Attr)  { Default().Warn(msg, attrs...) }
func Error(msg string, attrs ...slog.Attr) { Default().Error(msg, attrs...) }

func TraceContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().TraceContext(ctx, msg, attrs...)
}

func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().DebugContext(ctx, msg, attrs...)
}

func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().InfoContext(ctx, msg, attrs...)
}

func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().WarnContext(ctx, msg, attrs...)
}

func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	Default().ErrorContext(ctx, msg, attrs...)
}
