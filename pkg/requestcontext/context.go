// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing net/http.
// Tests inject them directly:
//
//	ctx = requestcontext.WithActorID(ctx, "reviewer-1")
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	actorIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyActorID     = actorIDKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// ActorID retrieves the authenticated actor (approver) ID from the context.
// Returns "" if not set.
func ActorID(ctx context.Context) string {
	if actorID, ok := ctx.Value(ContextKeyActorID).(string); ok {
		return actorID
	}
	return ""
}

// WithActorID injects an actor ID into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context. Falls back to
// time.Now() for non-HTTP contexts like workers and tests that don't set it.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that need deterministic timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
