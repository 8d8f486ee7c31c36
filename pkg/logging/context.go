package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = &defaultLogger
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context. A context without one
// yields a logger configured from LOG_LEVEL and LOG_FORMAT.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &defaultLogger
	}

	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}

	return &defaultLogger
}

// withField adds a single field to the logger in the context.
func withField(ctx context.Context, key, value string) context.Context {
	newLogger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &newLogger)
}

// WithPanel binds the panel address to the context logger.
func WithPanel(ctx context.Context, panel string) context.Context {
	return withField(ctx, "panel", panel)
}

// WithOperation binds the running operation (sync, add, clear, count).
func WithOperation(ctx context.Context, operation string) context.Context {
	return withField(ctx, "operation", operation)
}

// WithEmployee binds an employee number to the context logger.
func WithEmployee(ctx context.Context, employeeID string) context.Context {
	return withField(ctx, "employee", employeeID)
}

// addFieldToContext adds a field to the logger context based on its type.
func addFieldToContext(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case uint64:
		return ctx.Uint64(key, v)
	case float64:
		return ctx.Float64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case []string:
		return ctx.Strs(key, v)
	case error:
		if key == "error" || key == "err" {
			return ctx.Err(v)
		}
		return ctx.Str(key, v.Error())
	default:
		return ctx.Interface(key, v)
	}
}
