// Package context carries request-scoped identifiers through a
// context.Context so they don't need to be threaded as explicit
// parameters through every call in a chain.
package context

import (
	"context"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// WithCorrelationID returns a copy of ctx carrying id, retrievable later
// with CorrelationIDFromContext.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationIDFromContext returns the correlation ID stored in ctx, or
// the empty string if none was set.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}
