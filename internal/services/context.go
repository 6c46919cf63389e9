package services

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	backendKey   contextKey = "backend"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// EnsureRequestID returns ctx unchanged when it already carries a correlation
// identifier, otherwise it stamps a fresh random one.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id, ok := RequestIDFromContext(ctx); ok {
		return ctx, id
	}
	id := uuid.NewString()
	return WithRequestID(ctx, id), id
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithBackend annotates context with the search backend currently consulted.
func WithBackend(ctx context.Context, backend string) context.Context {
	if backend == "" {
		return ctx
	}
	return context.WithValue(ctx, backendKey, backend)
}

// BackendFromContext returns the backend name if present.
func BackendFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(backendKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
