// Package requestctx carries per-request identity through contexts.
package requestctx

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// requestIDContextKey is the context key for the request identifier.
type requestIDContextKey struct{}

// NewRequestID returns a fresh random request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// RequestIDOrNew returns candidate when it is a well-formed identifier
// supplied by a caller, or a fresh one otherwise.
func RequestIDOrNew(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return NewRequestID()
	}
	if _, err := uuid.Parse(candidate); err != nil {
		return NewRequestID()
	}
	return candidate
}

// WithRequestID stores a request identifier in context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// RequestIDFromContext returns the request identifier stored in context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(requestIDContextKey{}).(string)
	return value
}
