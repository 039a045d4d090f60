package services

import "context"

type contextKey string

const (
	videoIDKey   contextKey = "video_id"
	sessionIDKey contextKey = "session_id"
	actorIDKey   contextKey = "actor_id"
	requestIDKey contextKey = "request_id"
)

// WithVideoID annotates context with the video asset identifier.
func WithVideoID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, videoIDKey, id)
}

// VideoIDFromContext extracts the video asset identifier if present.
func VideoIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, videoIDKey)
}

// WithSessionID annotates context with the review session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the review session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, sessionIDKey)
}

// WithActorID annotates context with the user performing the operation.
func WithActorID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, actorIDKey, id)
}

// ActorIDFromContext returns the acting user identifier if present.
func ActorIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, actorIDKey)
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	return stringValue(ctx, requestIDKey)
}

func stringValue(ctx context.Context, key contextKey) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(key).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
