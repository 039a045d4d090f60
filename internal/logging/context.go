package logging

import (
	"context"
	"log/slog"

	"reelreview/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldVideoID identifies the video asset a record concerns.
	FieldVideoID = "video_id"
	// FieldCommentID identifies a comment.
	FieldCommentID = "comment_id"
	// FieldSessionID identifies a review session.
	FieldSessionID = "session_id"
	// FieldParticipantID identifies a review participant.
	FieldParticipantID = "participant_id"
	// FieldActorID identifies the user performing an operation.
	FieldActorID = "actor_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
	// FieldEventType classifies a record for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells an operator what to do next.
	FieldErrorHint = "error_hint"
	// FieldError carries the error value.
	FieldError = "error"
	// FieldDecision is a participant's review verdict.
	FieldDecision = "decision"
	// FieldSessionStatus is the session status after a transition.
	FieldSessionStatus = "session_status"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.VideoIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldVideoID, id))
	}
	if id, ok := services.SessionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	if id, ok := services.ActorIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldActorID, id))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
