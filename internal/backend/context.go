package backend

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "backend_request_id"
	originKey    contextKey = "backend_origin"
)

// WithRequestID attaches a request id that is sent as X-Request-ID and
// recorded in the request log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id on the context, or a fresh one.
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

// WithOrigin labels the calling surface ("tui", "cli", "sync") for the request log.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey, origin)
}

// OriginFrom extracts the origin label from the context.
func OriginFrom(ctx context.Context) string {
	if v, ok := ctx.Value(originKey).(string); ok {
		return v
	}
	return "unknown"
}
