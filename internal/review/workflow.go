package review

import (
	"crypto/subtle"
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelreview/internal/services"
)

// SessionDraft holds the caller-supplied fields of a new session.
type SessionDraft struct {
	ID                string
	VideoID           string
	OwnerID           string
	Title             string
	Description       string
	DueDate           *time.Time
	RequiredApprovers int
	IsPublic          bool
	Password          string
}

// Invitee describes a participant to add.
type Invitee struct {
	ID     string
	UserID string
	Email  string
	Name   string
	Role   Role
}

// NewSession validates d and returns a pending session with no participants.
func NewSession(d SessionDraft, now time.Time) (State, error) {
	title := strings.TrimSpace(d.Title)
	switch {
	case strings.TrimSpace(d.VideoID) == "":
		return State{}, invalid("create", "video id is required")
	case title == "":
		return State{}, invalid("create", "title is required")
	case d.RequiredApprovers < 1:
		return State{}, invalid("create", fmt.Sprintf("required approvers must be >= 1, got %d", d.RequiredApprovers))
	case d.Password != "" && !d.IsPublic:
		return State{}, invalid("create", "password is only allowed on public sessions")
	}
	id := strings.TrimSpace(d.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now = now.UTC()
	session := Session{
		ID:                id,
		VideoID:           strings.TrimSpace(d.VideoID),
		OwnerID:           strings.TrimSpace(d.OwnerID),
		Title:             title,
		Description:       strings.TrimSpace(d.Description),
		RequiredApprovers: d.RequiredApprovers,
		IsPublic:          d.IsPublic,
		Password:          d.Password,
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if d.DueDate != nil {
		due := d.DueDate.UTC()
		session.DueDate = &due
	}
	return State{Session: session}, nil
}

// Invite adds a participant. Private sessions require a user id; public
// sessions also accept email-only invitees. Inviting the same user or email
// twice is a conflict.
func Invite(s State, in Invitee, now time.Time) (State, Participant, error) {
	if err := requireOpen(s.Session, "invite"); err != nil {
		return State{}, Participant{}, err
	}
	userID := strings.TrimSpace(in.UserID)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if userID == "" && email == "" {
		return State{}, Participant{}, invalid("invite", "user id or email is required")
	}
	if userID == "" && !s.Session.IsPublic {
		return State{}, Participant{}, invalid("invite", "email-only participants require a public session")
	}
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return State{}, Participant{}, invalid("invite", fmt.Sprintf("invalid email %q", in.Email))
		}
	}
	role := in.Role
	if role == "" {
		role = RoleReviewer
	}
	if _, err := ParseRole(string(role)); err != nil {
		return State{}, Participant{}, err
	}
	for _, p := range s.Participants {
		if (userID != "" && p.UserID == userID) || (email != "" && p.Email == email) {
			return State{}, Participant{}, conflict("invite", fmt.Sprintf("%s is already a participant", firstNonEmpty(userID, email)), nil)
		}
	}
	id := strings.TrimSpace(in.ID)
	if id == "" {
		id = uuid.NewString()
	}
	now = now.UTC()
	p := Participant{
		ID:        id,
		SessionID: s.Session.ID,
		UserID:    userID,
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Role:      role,
		Status:    ParticipantPending,
		InvitedAt: now,
	}
	out := s.Clone()
	out.Participants = append(out.Participants, p)
	out.Session.UpdatedAt = now
	return out, p, nil
}

// Remove drops participant id. Removal never changes the session status.
func Remove(s State, id string, now time.Time) (State, error) {
	if err := requireOpen(s.Session, "remove"); err != nil {
		return State{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return State{}, participantNotFound("remove", id)
	}
	out := s.Clone()
	out.Participants = append(out.Participants[:i], out.Participants[i+1:]...)
	out.Session.UpdatedAt = now.UTC()
	return out, nil
}

// MarkViewed records that participant id opened the review. Only a pending
// participant moves; later statuses are kept.
func MarkViewed(s State, id string, now time.Time) (State, Participant, error) {
	return advance(s, id, "view", now, ParticipantViewed, ParticipantPending)
}

// MarkCommented records that participant id left a comment.
func MarkCommented(s State, id string, now time.Time) (State, Participant, error) {
	return advance(s, id, "comment", now, ParticipantCommented, ParticipantPending, ParticipantViewed)
}

func advance(s State, id, operation string, now time.Time, to ParticipantStatus, from ...ParticipantStatus) (State, Participant, error) {
	i := s.indexOf(id)
	if i < 0 {
		return State{}, Participant{}, participantNotFound(operation, id)
	}
	out := s.Clone()
	p := &out.Participants[i]
	for _, status := range from {
		if p.Status == status {
			p.Status = to
			out.Session.UpdatedAt = now.UTC()
			break
		}
	}
	return out, *p, nil
}

// Decide records participant id's decision and applies its effect on the
// session. Decisions are accepted only while the session is pending.
func Decide(s State, id string, decision Decision, note string, now time.Time) (State, Participant, error) {
	if err := requireOpen(s.Session, "decide"); err != nil {
		return State{}, Participant{}, err
	}
	if s.Session.Status == StatusChangesRequested {
		return State{}, Participant{}, conflict("decide", fmt.Sprintf("session %s awaits acknowledgement", s.Session.ID), ErrChangesRequested)
	}
	if _, err := ParseDecision(string(decision)); err != nil {
		return State{}, Participant{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return State{}, Participant{}, participantNotFound("decide", id)
	}
	current := s.Participants[i]
	if current.Role == RoleViewer {
		return State{}, Participant{}, invalid("decide", fmt.Sprintf("participant %s is a viewer", id))
	}
	if current.Status.HasDecided() {
		return State{}, Participant{}, conflict("decide", fmt.Sprintf("participant %s already %s", id, current.Status), ErrAlreadyDecided)
	}

	now = now.UTC()
	out := s.Clone()
	p := &out.Participants[i]
	p.Status = decision.participantStatus()
	p.Note = strings.TrimSpace(note)
	p.DecidedAt = &now
	out.Session.UpdatedAt = now
	out.Session.Status = outcome(out)
	return out, *p, nil
}

// outcome derives the session status from approver decisions. Rejection wins
// over a change request, which wins over approval.
func outcome(s State) Status {
	approved := 0
	changes := false
	for _, p := range s.Participants {
		if p.Role != RoleApprover {
			continue
		}
		switch p.Status {
		case ParticipantRejected:
			return StatusRejected
		case ParticipantChangesRequested:
			changes = true
		case ParticipantApproved:
			approved++
		}
	}
	switch {
	case changes:
		return StatusChangesRequested
	case approved >= s.Session.RequiredApprovers:
		return StatusApproved
	default:
		return StatusPending
	}
}

// Acknowledge returns a changes_requested session to pending. Participants
// who requested changes go back to pending so they can decide again; other
// decisions stand.
func Acknowledge(s State, now time.Time) (State, error) {
	if s.Session.Status != StatusChangesRequested {
		return State{}, conflict("acknowledge", fmt.Sprintf("session %s is %s, not %s", s.Session.ID, s.Session.Status, StatusChangesRequested), nil)
	}
	out := s.Clone()
	for i := range out.Participants {
		if out.Participants[i].Status == ParticipantChangesRequested {
			out.Participants[i].Status = ParticipantPending
			out.Participants[i].DecidedAt = nil
		}
	}
	// Approvals recorded before the request may already satisfy the quorum.
	out.Session.Status = outcome(out)
	out.Session.UpdatedAt = now.UTC()
	return out, nil
}

// ResetParticipant clears participant id's decision so they may vote again.
func ResetParticipant(s State, id string, now time.Time) (State, Participant, error) {
	if err := requireOpen(s.Session, "reset"); err != nil {
		return State{}, Participant{}, err
	}
	i := s.indexOf(id)
	if i < 0 {
		return State{}, Participant{}, participantNotFound("reset", id)
	}
	out := s.Clone()
	p := &out.Participants[i]
	p.Status = ParticipantPending
	p.Note = ""
	p.DecidedAt = nil
	out.Session.UpdatedAt = now.UTC()
	if out.Session.Status == StatusPending {
		out.Session.Status = outcome(out)
	}
	return out, *p, nil
}

// Supersede opens a new pending session for the same video that replaces s.
// Only approved or rejected sessions can be superseded. Every participant is
// re-invited as pending. s itself is left unchanged.
func Supersede(s State, newID string, now time.Time) (State, error) {
	if !s.Session.Status.IsTerminal() {
		return State{}, conflict("supersede", fmt.Sprintf("session %s is %s", s.Session.ID, s.Session.Status), ErrSessionOpen)
	}
	d := SessionDraft{
		ID:                newID,
		VideoID:           s.Session.VideoID,
		OwnerID:           s.Session.OwnerID,
		Title:             s.Session.Title,
		Description:       s.Session.Description,
		DueDate:           s.Session.DueDate,
		RequiredApprovers: s.Session.RequiredApprovers,
		IsPublic:          s.Session.IsPublic,
		Password:          s.Session.Password,
	}
	out, err := NewSession(d, now)
	if err != nil {
		return State{}, err
	}
	if out.Session.ID == s.Session.ID {
		return State{}, invalid("supersede", "new session id must differ")
	}
	out.Session.SupersedesID = s.Session.ID
	for _, p := range s.Participants {
		out.Participants = append(out.Participants, Participant{
			ID:        uuid.NewString(),
			SessionID: out.Session.ID,
			UserID:    p.UserID,
			Email:     p.Email,
			Name:      p.Name,
			Role:      p.Role,
			Status:    ParticipantPending,
			InvitedAt: out.Session.CreatedAt,
		})
	}
	return out, nil
}

// CheckSupersede fails when another session in siblings already replaced s.
func CheckSupersede(s Session, siblings []Session) error {
	for _, other := range siblings {
		if other.SupersedesID == s.ID && other.ID != s.ID {
			return conflict("supersede", fmt.Sprintf("session %s was superseded by %s", s.ID, other.ID), ErrAlreadySuperseded)
		}
	}
	return nil
}

// Progress summarizes approver decisions.
type Progress struct {
	Approved         int
	Required         int
	Percent          float64
	Rejected         int
	ChangesRequested int
	Pending          int
}

// ProgressOf reports min(100, approved/required*100) over approvers, plus
// decision counts across every deciding participant.
func ProgressOf(s State) Progress {
	p := Progress{Required: s.Session.RequiredApprovers}
	for _, participant := range s.Participants {
		if participant.Role == RoleViewer {
			continue
		}
		switch participant.Status {
		case ParticipantApproved:
			if participant.Role == RoleApprover {
				p.Approved++
			}
		case ParticipantRejected:
			p.Rejected++
		case ParticipantChangesRequested:
			p.ChangesRequested++
		default:
			p.Pending++
		}
	}
	if p.Required > 0 {
		p.Percent = math.Min(100, float64(p.Approved)/float64(p.Required)*100)
	}
	return p
}

// IsOverdue reports whether an undecided session is past its due date.
func IsOverdue(s Session, now time.Time) bool {
	if s.DueDate == nil || s.Status.IsTerminal() {
		return false
	}
	return now.After(*s.DueDate)
}

// CheckAccess gates a public session behind its password. It is a boundary
// check for the hosting layer; no workflow operation calls it.
func CheckAccess(s Session, password string) error {
	if !s.IsPublic || s.Password == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(s.Password), []byte(password)) == 1 {
		return nil
	}
	return services.Wrap(services.ErrForbidden, "review", "access", fmt.Sprintf("session %s requires a password", s.ID), nil)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
