package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxLoggerKey struct{}

// WithLogger returns a copy of ctx carrying logger. Tests use it to observe log output.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxLoggerKey{}, logger)
}

// LoggerFromContext returns the logger stored by RequestLogger or WithLogger,
// or the process logger when ctx carries none.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, _ := ctx.Value(ctxLoggerKey{}).(*zap.Logger); l != nil {
			return l
		}
	}
	return Logger()
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Info(msg, fields...)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Warn(msg, fields...)
}

// LogError appends err as the "error" field when it is non-nil.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	LoggerFromContext(ctx).Error(msg, fields...)
}
