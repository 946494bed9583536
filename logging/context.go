package logging

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	// InvocationIDKey is the context key for a compression invocation id.
	InvocationIDKey ctxKey = "invocation_id"
	// FileNameKey is the context key for the caller-side file name.
	FileNameKey ctxKey = "file_name"
)

// WithContext creates a child logger carrying the invocation id and file
// name stored in ctx, if any.
func WithContext(logger Logger, ctx context.Context) Logger {
	if ctx == nil {
		return logger
	}

	var fields []zap.Field
	if id := GetInvocationID(ctx); id != "" {
		fields = append(fields, zap.String(string(InvocationIDKey), id))
	}
	if name := GetFileName(ctx); name != "" {
		fields = append(fields, zap.String(string(FileNameKey), name))
	}

	if len(fields) == 0 {
		return logger
	}
	return logger.With(fields...)
}

func GetInvocationID(ctx context.Context) string {
	return stringValue(ctx, InvocationIDKey)
}

func SetInvocationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, InvocationIDKey, id)
}

func GetFileName(ctx context.Context) string {
	return stringValue(ctx, FileNameKey)
}

func SetFileName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, FileNameKey, name)
}

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	if s, ok := ctx.Value(key).(string); ok {
		return s
	}
	return ""
}

type loggerKey struct{}

// FromContext returns the Logger stored in the context, or the global logger if none.
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return Global()
	}
	if l, ok := ctx.Value(loggerKey{}).(Logger); ok {
		return l
	}
	return Global()
}

// ToContext stores the Logger in the context.
func ToContext(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
