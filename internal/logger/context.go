package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	callerSubKey ctxKey = "caller_sub"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// WithCallerSub tags the context with the authenticated subject so that
// every log line written further down the request carries it.
func WithCallerSub(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, callerSubKey, sub)
}

func CallerSubFrom(ctx context.Context) string {
	if v, ok := ctx.Value(callerSubKey).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger with request_id and caller_sub attached
// when present.
func FromCtx(ctx context.Context) *zap.Logger {
	l := L()
	if reqID := RequestIDFrom(ctx); reqID != "" {
		l = l.With(zap.String("request_id", reqID))
	}
	if sub := CallerSubFrom(ctx); sub != "" {
		l = l.With(zap.String("caller_sub", sub))
	}
	return l
}
