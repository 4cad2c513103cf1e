// Package log is a context aware facade over the process logger.
// Fields attached with WithFields travel with the context and are added to
// every entry written with that context.
package log

import (
	"context"

	"github.com/ragzy-ai/ragzy-api/pkg/ctxval"
	"github.com/ragzy-ai/ragzy-api/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type fieldsKey struct{}

// WithFields attaches key/value pairs to ctx. The context is wrapped so that
// fields added further down the call chain are visible to callers holding the
// same context (the request logger, for example).
func WithFields(ctx context.Context, keysAndValues ...any) context.Context {
	ctx = ctxval.Wrap(ctx)
	ctxval.Update(ctx, fieldsKey{}, func(fields []any) []any {
		merged := make([]any, 0, len(fields)+len(keysAndValues))
		merged = append(merged, fields...)
		return append(merged, keysAndValues...)
	})
	return ctx
}

// Fields returns the key/value pairs attached to ctx.
func Fields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctxval.Get[fieldsKey, []any](ctx, fieldsKey{})
	return fields
}

func sugar(ctx context.Context) *zap.SugaredLogger {
	l := logger.L().WithOptions(zap.AddCallerSkip(1)).Sugar()
	if fields := Fields(ctx); len(fields) > 0 {
		l = l.With(fields...)
	}
	return l
}

func Logw(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	sugar(ctx).Logw(level, msg, keysAndValues...)
}

func Debugw(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Debugw(msg, keysAndValues...)
}

func Infow(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Infow(msg, keysAndValues...)
}

func Warnw(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Warnw(msg, keysAndValues...)
}

func Errorw(ctx context.Context, msg string, keysAndValues ...any) {
	sugar(ctx).Errorw(msg, keysAndValues...)
}
