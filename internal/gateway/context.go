package gateway

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "gateway_request_id"

// WithRequestID attaches a request id that is sent as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id on ctx, minting one if absent.
func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}
