package api

import (
	"context"
	"fmt"

	"reelreview/internal/logging"
	"reelreview/internal/review"
	"reelreview/internal/services"
)

// CreateSession opens a review session on a video and invites the listed
// participants.
func (s *Service) CreateSession(ctx context.Context, videoID string, req CreateSessionRequest) (Session, error) {
	ctx = services.WithVideoID(ctx, videoID)
	if err := validateRequest("create session", req); err != nil {
		return Session{}, s.fail(ctx, "create_session", err)
	}
	required := req.RequiredApprovers
	if required == 0 {
		required = s.cfg.Review.DefaultRequiredApprovers
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadVideo(ctx, videoID); err != nil {
		return Session{}, s.fail(ctx, "create_session", err)
	}
	now := s.now()
	state, err := review.NewSession(review.SessionDraft{
		ID:                req.ID,
		VideoID:           videoID,
		OwnerID:           req.OwnerID,
		Title:             req.Title,
		Description:       req.Description,
		DueDate:           req.DueDate,
		RequiredApprovers: required,
		IsPublic:          req.IsPublic,
		Password:          req.Password,
	}, now)
	if err != nil {
		return Session{}, s.fail(ctx, "create_session", err)
	}
	if existing, err := s.repo.GetReview(ctx, state.Session.ID); err != nil {
		return Session{}, s.fail(ctx, "create_session", err)
	} else if existing != nil {
		err = services.Wrap(services.ErrConflict, "api", "create session", fmt.Sprintf("session %s already exists", state.Session.ID), nil)
		return Session{}, s.fail(ctx, "create_session", err)
	}
	for _, in := range req.Participants {
		if state, err = s.invite(state, in); err != nil {
			return Session{}, s.fail(ctx, "create_session", err)
		}
	}
	if err := s.repo.SaveReview(ctx, state); err != nil {
		return Session{}, s.fail(ctx, "create_session", err)
	}
	s.metrics.SessionCreated()
	ctx = services.WithSessionID(ctx, state.Session.ID)
	logging.WithContext(ctx, s.logger).Info("review session created",
		logging.String(logging.FieldEventType, "session_created"),
		logging.Int("participants", len(state.Participants)),
		logging.Int("required_approvers", state.Session.RequiredApprovers),
	)
	return FromState(state, now), nil
}

// Session returns a session with its participants.
func (s *Service) Session(ctx context.Context, id string) (Session, error) {
	state, err := s.loadState(ctx, id)
	if err != nil {
		return Session{}, s.fail(ctx, "session", err)
	}
	return FromState(state, s.now()), nil
}

// Sessions lists a video's sessions, oldest first.
func (s *Service) Sessions(ctx context.Context, videoID string) ([]Session, error) {
	return s.listSessions(ctx, "sessions", videoID, nil)
}

// VisibleSessions lists a video's sessions as seen by a caller presenting
// password. Sessions the password does not unlock are reduced to their
// summary: no participants, no progress.
func (s *Service) VisibleSessions(ctx context.Context, videoID, password string) ([]Session, error) {
	return s.listSessions(ctx, "visible_sessions", videoID, func(sess review.Session) bool {
		return review.CheckAccess(sess, password) == nil
	})
}

func (s *Service) listSessions(ctx context.Context, operation, videoID string, unlocked func(review.Session) bool) ([]Session, error) {
	ctx = services.WithVideoID(ctx, videoID)
	if _, err := s.loadVideo(ctx, videoID); err != nil {
		return nil, s.fail(ctx, operation, err)
	}
	list, err := s.repo.SessionsByVideo(ctx, videoID)
	if err != nil {
		return nil, s.fail(ctx, operation, err)
	}
	now := s.now()
	out := make([]Session, 0, len(list))
	for _, sess := range list {
		if unlocked != nil && !unlocked(sess) {
			out = append(out, LockedSession(sess, now))
			continue
		}
		state, err := s.loadState(ctx, sess.ID)
		if err != nil {
			return nil, s.fail(ctx, operation, err)
		}
		out = append(out, FromState(state, now))
	}
	return out, nil
}

// AuthorizeSession gates public sessions behind their password.
func (s *Service) AuthorizeSession(ctx context.Context, id, password string) error {
	state, err := s.loadState(ctx, id)
	if err != nil {
		return s.fail(ctx, "authorize_session", err)
	}
	if err := review.CheckAccess(state.Session, password); err != nil {
		return s.fail(services.WithSessionID(ctx, id), "authorize_session", err)
	}
	return nil
}

// InviteParticipant adds a participant to a session.
func (s *Service) InviteParticipant(ctx context.Context, sessionID string, req InviteRequest) (Session, error) {
	if err := validateRequest("invite participant", req); err != nil {
		return Session{}, s.fail(ctx, "invite_participant", err)
	}
	return s.mutateSession(ctx, sessionID, "invite_participant", "participant invited", func(state review.State) (review.State, error) {
		return s.invite(state, req)
	})
}

// RemoveParticipant drops a participant from an open session.
func (s *Service) RemoveParticipant(ctx context.Context, sessionID, participantID string) (Session, error) {
	return s.mutateSession(ctx, sessionID, "remove_participant", "participant removed", func(state review.State) (review.State, error) {
		return review.Remove(state, participantID, s.now())
	})
}

// MarkViewed records that a participant opened the review.
func (s *Service) MarkViewed(ctx context.Context, sessionID, participantID string) (Session, error) {
	return s.mutateSession(ctx, sessionID, "mark_viewed", "participant viewed", func(state review.State) (review.State, error) {
		next, _, err := review.MarkViewed(state, participantID, s.now())
		return next, err
	})
}

// Decide records a participant's verdict.
func (s *Service) Decide(ctx context.Context, sessionID, participantID string, req DecisionRequest) (Session, error) {
	if err := validateRequest("decide", req); err != nil {
		return Session{}, s.fail(ctx, "decide", err)
	}
	decision, err := review.ParseDecision(req.Decision)
	if err != nil {
		return Session{}, s.fail(ctx, "decide", err)
	}
	dto, err := s.mutateSession(ctx, sessionID, "decide", "decision recorded", func(state review.State) (review.State, error) {
		next, p, err := review.Decide(state, participantID, decision, req.Note, s.now())
		if err != nil {
			return review.State{}, err
		}
		logging.WithContext(services.WithSessionID(ctx, sessionID), s.logger).Info("participant decided",
			logging.Args(logging.DecisionAttrs(p.ID, string(decision), string(next.Session.Status))...)...)
		return next, nil
	})
	if err == nil {
		s.metrics.Decision(string(decision), dto.Status)
	}
	return dto, err
}

// AcknowledgeChanges returns a changes_requested session to pending.
func (s *Service) AcknowledgeChanges(ctx context.Context, sessionID string) (Session, error) {
	return s.mutateSession(ctx, sessionID, "acknowledge_changes", "changes acknowledged", func(state review.State) (review.State, error) {
		return review.Acknowledge(state, s.now())
	})
}

// ResetParticipant clears a participant's decision.
func (s *Service) ResetParticipant(ctx context.Context, sessionID, participantID string) (Session, error) {
	return s.mutateSession(ctx, sessionID, "reset_participant", "participant reset", func(state review.State) (review.State, error) {
		next, _, err := review.ResetParticipant(state, participantID, s.now())
		return next, err
	})
}

// SupersedeSession opens a new pending session that replaces the closed
// session sessionID and returns the new session. A session is replaced at
// most once.
func (s *Service) SupersedeSession(ctx context.Context, sessionID string) (Session, error) {
	ctx = services.WithSessionID(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return Session{}, s.fail(ctx, "supersede_session", err)
	}
	ctx = services.WithVideoID(ctx, state.Session.VideoID)
	siblings, err := s.repo.SessionsByVideo(ctx, state.Session.VideoID)
	if err != nil {
		return Session{}, s.fail(ctx, "supersede_session", err)
	}
	if err := review.CheckSupersede(state.Session, siblings); err != nil {
		return Session{}, s.fail(ctx, "supersede_session", err)
	}
	now := s.now()
	next, err := review.Supersede(state, "", now)
	if err != nil {
		return Session{}, s.fail(ctx, "supersede_session", err)
	}
	if err := s.repo.SaveReview(ctx, next); err != nil {
		return Session{}, s.fail(ctx, "supersede_session", err)
	}
	s.metrics.SessionCreated()
	logging.WithContext(ctx, s.logger).Info("review session superseded",
		logging.String(logging.FieldEventType, "session_superseded"),
		logging.String("new_session_id", next.Session.ID),
		logging.String("previous_status", string(state.Session.Status)),
	)
	return FromState(next, now), nil
}

type sessionMutation func(state review.State) (review.State, error)

func (s *Service) mutateSession(ctx context.Context, sessionID, operation, message string, apply sessionMutation) (Session, error) {
	ctx = services.WithSessionID(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.loadState(ctx, sessionID)
	if err != nil {
		return Session{}, s.fail(ctx, operation, err)
	}
	ctx = services.WithVideoID(ctx, state.Session.VideoID)
	next, err := apply(state)
	if err != nil {
		return Session{}, s.fail(ctx, operation, err)
	}
	if err := s.repo.SaveReview(ctx, next); err != nil {
		return Session{}, s.fail(ctx, operation, err)
	}
	logging.WithContext(ctx, s.logger).Info(message,
		logging.String(logging.FieldEventType, operation),
		logging.String(logging.FieldSessionStatus, string(next.Session.Status)),
	)
	return FromState(next, s.now()), nil
}

func (s *Service) invite(state review.State, req InviteRequest) (review.State, error) {
	role, err := review.ParseRole(req.Role)
	if err != nil {
		return review.State{}, err
	}
	next, _, err := review.Invite(state, review.Invitee{
		ID:     req.ID,
		UserID: req.UserID,
		Email:  req.Email,
		Name:   req.Name,
		Role:   role,
	}, s.now())
	return next, err
}

func (s *Service) loadState(ctx context.Context, id string) (review.State, error) {
	state, err := s.repo.GetReview(ctx, id)
	if err != nil {
		return review.State{}, err
	}
	if state == nil {
		return review.State{}, services.Wrap(services.ErrNotFound, "api", "load session", fmt.Sprintf("session %s not found", id), nil)
	}
	return *state, nil
}
