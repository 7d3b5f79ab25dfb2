package core

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request-id"
	clientKeyKey contextKey = "client-key"
)

// WithRequestID returns a new context with the request ID attached.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns empty string if not found.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// WithClientKey attaches the rate limit key of the caller.
func WithClientKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, clientKeyKey, key)
}

// GetClientKey retrieves the caller's rate limit key, or "" if unset.
func GetClientKey(ctx context.Context) string {
	if key, ok := ctx.Value(clientKeyKey).(string); ok {
		return key
	}
	return ""
}
