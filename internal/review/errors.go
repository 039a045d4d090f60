package review

import (
	"errors"
	"fmt"

	"reelreview/internal/services"
)

var (
	// ErrAlreadyDecided marks a second decision from the same participant.
	ErrAlreadyDecided = errors.New("participant already decided")
	// ErrSessionClosed marks a change to an approved or rejected session.
	ErrSessionClosed = errors.New("review session closed")
	// ErrChangesRequested marks a decision while the session awaits the
	// owner's acknowledgement of requested changes.
	ErrChangesRequested = errors.New("review session awaiting changes")
	// ErrSessionOpen marks a supersede of a session that has not closed.
	ErrSessionOpen = errors.New("review session still open")
	// ErrAlreadySuperseded marks a second supersede of the same session.
	ErrAlreadySuperseded = errors.New("review session already superseded")
)

func conflict(operation, message string, cause error) error {
	return services.Wrap(services.ErrConflict, "review", operation, message, cause)
}

func invalid(operation, message string) error {
	return services.Wrap(services.ErrValidation, "review", operation, message, nil)
}

func participantNotFound(operation, id string) error {
	return services.Wrap(services.ErrNotFound, "review", operation, fmt.Sprintf("participant %s", id), nil)
}

func requireOpen(s Session, operation string) error {
	if s.Status.IsTerminal() {
		return conflict(operation, fmt.Sprintf("session %s is %s", s.ID, s.Status), ErrSessionClosed)
	}
	return nil
}
