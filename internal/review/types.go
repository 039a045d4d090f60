package review

import (
	"fmt"
	"strings"
	"time"

	"reelreview/internal/services"
)

// Status is the session outcome.
type Status string

const (
	StatusPending          Status = "pending"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusChangesRequested Status = "changes_requested"
)

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Role decides what a participant may do.
type Role string

const (
	RoleReviewer Role = "reviewer"
	RoleApprover Role = "approver"
	RoleViewer   Role = "viewer"
)

// ParseRole normalizes a role name. Empty input means reviewer.
func ParseRole(value string) (Role, error) {
	switch role := Role(strings.ToLower(strings.TrimSpace(value))); role {
	case "":
		return RoleReviewer, nil
	case RoleReviewer, RoleApprover, RoleViewer:
		return role, nil
	default:
		return "", services.Wrap(services.ErrValidation, "review", "parse role", fmt.Sprintf("unknown role %q", value), nil)
	}
}

// ParticipantStatus tracks one participant's progress through a review.
type ParticipantStatus string

const (
	ParticipantPending          ParticipantStatus = "pending"
	ParticipantViewed           ParticipantStatus = "viewed"
	ParticipantCommented        ParticipantStatus = "commented"
	ParticipantApproved         ParticipantStatus = "approved"
	ParticipantRejected         ParticipantStatus = "rejected"
	ParticipantChangesRequested ParticipantStatus = "changes_requested"
)

// HasDecided reports whether the status is a recorded decision.
func (s ParticipantStatus) HasDecided() bool {
	switch s {
	case ParticipantApproved, ParticipantRejected, ParticipantChangesRequested:
		return true
	default:
		return false
	}
}

// Decision is a participant verdict.
type Decision string

const (
	DecisionApprove        Decision = "approve"
	DecisionReject         Decision = "reject"
	DecisionRequestChanges Decision = "request_changes"
)

// ParseDecision normalizes a decision name.
func ParseDecision(value string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "approve", "approved":
		return DecisionApprove, nil
	case "reject", "rejected":
		return DecisionReject, nil
	case "request_changes", "request-changes", "changes_requested", "changes":
		return DecisionRequestChanges, nil
	default:
		return "", services.Wrap(services.ErrValidation, "review", "parse decision", fmt.Sprintf("unknown decision %q", value), nil)
	}
}

func (d Decision) participantStatus() ParticipantStatus {
	switch d {
	case DecisionApprove:
		return ParticipantApproved
	case DecisionReject:
		return ParticipantRejected
	default:
		return ParticipantChangesRequested
	}
}

// Session is one review cycle of a video.
type Session struct {
	ID                string
	VideoID           string
	OwnerID           string
	Title             string
	Description       string
	DueDate           *time.Time
	RequiredApprovers int
	IsPublic          bool
	Password          string
	Status            Status
	SupersedesID      string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Participant is an invited reviewer, approver or viewer.
type Participant struct {
	ID        string
	SessionID string
	UserID    string
	Email     string
	Name      string
	Role      Role
	Status    ParticipantStatus
	Note      string
	InvitedAt time.Time
	DecidedAt *time.Time
}

// Label returns the best human identifier of the participant.
func (p Participant) Label() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Email != "":
		return p.Email
	default:
		return p.UserID
	}
}

// State is a session together with its participants.
type State struct {
	Session      Session
	Participants []Participant
}

// Participant returns the participant with id.
func (s State) Participant(id string) (Participant, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Participants[i], true
	}
	return Participant{}, false
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := State{Session: s.Session}
	if s.Session.DueDate != nil {
		due := *s.Session.DueDate
		out.Session.DueDate = &due
	}
	if s.Participants != nil {
		out.Participants = make([]Participant, len(s.Participants))
		for i, p := range s.Participants {
			if p.DecidedAt != nil {
				decided := *p.DecidedAt
				p.DecidedAt = &decided
			}
			out.Participants[i] = p
		}
	}
	return out
}

func (s State) indexOf(id string) int {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return i
		}
	}
	return -1
}
