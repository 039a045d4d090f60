package review_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"reelreview/internal/review"
	"reelreview/internal/services"
)

var now = time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

func newState(t *testing.T, required int) review.State {
	t.Helper()
	s, err := review.NewSession(review.SessionDraft{
		ID:                "sess-1",
		VideoID:           "vid-1",
		OwnerID:           "owner",
		Title:             "Cut 3 sign-off",
		RequiredApprovers: required,
	}, now)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func invite(t *testing.T, s review.State, id string, role review.Role) review.State {
	t.Helper()
	out, _, err := review.Invite(s, review.Invitee{ID: id, UserID: "user-" + id, Role: role}, now)
	if err != nil {
		t.Fatalf("invite %s: %v", id, err)
	}
	return out
}

func decide(t *testing.T, s review.State, id string, d review.Decision) review.State {
	t.Helper()
	out, _, err := review.Decide(s, id, d, "", now)
	if err != nil {
		t.Fatalf("decide %s: %v", id, err)
	}
	return out
}

func TestNewSessionValidation(t *testing.T) {
	cases := map[string]review.SessionDraft{
		"no video":         {Title: "x", RequiredApprovers: 1},
		"no title":         {VideoID: "v", RequiredApprovers: 1},
		"zero approvers":   {VideoID: "v", Title: "x"},
		"private password": {VideoID: "v", Title: "x", RequiredApprovers: 1, Password: "secret"},
	}
	for name, d := range cases {
		if _, err := review.NewSession(d, now); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
	s := newState(t, 2)
	if s.Session.Status != review.StatusPending || len(s.Participants) != 0 {
		t.Fatalf("unexpected new session %+v", s)
	}
}

func TestQuorumApproves(t *testing.T) {
	s := newState(t, 3)
	for i := 1; i <= 3; i++ {
		s = invite(t, s, fmt.Sprintf("a%d", i), review.RoleApprover)
	}
	s = decide(t, s, "a1", review.DecisionApprove)
	s = decide(t, s, "a2", review.DecisionApprove)
	if s.Session.Status != review.StatusPending {
		t.Fatalf("expected pending after 2 approvals, got %s", s.Session.Status)
	}
	if got := review.ProgressOf(s).Percent; got < 66.6 || got > 66.7 {
		t.Fatalf("unexpected progress %v", got)
	}
	s = decide(t, s, "a3", review.DecisionApprove)
	if s.Session.Status != review.StatusApproved {
		t.Fatalf("expected approved, got %s", s.Session.Status)
	}
	if review.ProgressOf(s).Percent != 100 {
		t.Fatalf("expected 100%% progress, got %v", review.ProgressOf(s).Percent)
	}
}

func TestApproverRejectWins(t *testing.T) {
	s := newState(t, 3)
	for i := 1; i <= 3; i++ {
		s = invite(t, s, fmt.Sprintf("a%d", i), review.RoleApprover)
	}
	s = decide(t, s, "a1", review.DecisionApprove)
	s = decide(t, s, "a2", review.DecisionApprove)
	s = decide(t, s, "a3", review.DecisionReject)
	if s.Session.Status != review.StatusRejected {
		t.Fatalf("expected rejected, got %s", s.Session.Status)
	}
}

func TestReviewerDecisionsDoNotGate(t *testing.T) {
	s := newState(t, 1)
	s = invite(t, s, "r1", review.RoleReviewer)
	s = invite(t, s, "r2", review.RoleReviewer)
	s = invite(t, s, "a1", review.RoleApprover)

	s = decide(t, s, "r1", review.DecisionReject)
	if s.Session.Status != review.StatusPending {
		t.Fatalf("reviewer reject must not move the session, got %s", s.Session.Status)
	}
	if p, _ := s.Participant("r1"); p.Status != review.ParticipantRejected {
		t.Fatalf("reviewer status not recorded: %s", p.Status)
	}
	s = decide(t, s, "r2", review.DecisionApprove)
	if s.Session.Status != review.StatusPending {
		t.Fatalf("reviewer approval must not count toward quorum, got %s", s.Session.Status)
	}
	s = decide(t, s, "a1", review.DecisionApprove)
	if s.Session.Status != review.StatusApproved {
		t.Fatalf("expected approved, got %s", s.Session.Status)
	}
}

func TestDecisionConflicts(t *testing.T) {
	s := newState(t, 2)
	s = invite(t, s, "a1", review.RoleApprover)
	s = invite(t, s, "a2", review.RoleApprover)
	s = invite(t, s, "v1", review.RoleViewer)
	s = decide(t, s, "a1", review.DecisionApprove)

	_, _, err := review.Decide(s, "a1", review.DecisionReject, "", now)
	if !errors.Is(err, review.ErrAlreadyDecided) || !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected already decided conflict, got %v", err)
	}
	if _, _, err := review.Decide(s, "v1", review.DecisionApprove, "", now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected viewer decision to be rejected, got %v", err)
	}
	if _, _, err := review.Decide(s, "ghost", review.DecisionApprove, "", now); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, _, err := review.Decide(s, "a2", review.Decision("maybe"), "", now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown decision, got %v", err)
	}

	s = decide(t, s, "a2", review.DecisionReject)
	if _, _, err := review.Invite(s, review.Invitee{UserID: "late"}, now); !errors.Is(err, review.ErrSessionClosed) {
		t.Fatalf("expected closed session on invite, got %v", err)
	}
	if _, _, err := review.ResetParticipant(s, "a2", now); !errors.Is(err, review.ErrSessionClosed) {
		t.Fatalf("expected closed session on reset, got %v", err)
	}
}

func TestApprovedIsTerminal(t *testing.T) {
	s := newState(t, 1)
	s = invite(t, s, "a1", review.RoleApprover)
	s = invite(t, s, "a2", review.RoleApprover)
	s = decide(t, s, "a1", review.DecisionApprove)
	if s.Session.Status != review.StatusApproved {
		t.Fatalf("expected approved, got %s", s.Session.Status)
	}
	_, _, err := review.Decide(s, "a2", review.DecisionReject, "late", now)
	if !errors.Is(err, review.ErrSessionClosed) {
		t.Fatalf("late vote should hit a closed session, got %v", err)
	}
}

func TestChangesRequestedCycle(t *testing.T) {
	s := newState(t, 2)
	s = invite(t, s, "a1", review.RoleApprover)
	s = invite(t, s, "a2", review.RoleApprover)
	s = decide(t, s, "a1", review.DecisionApprove)
	s, p, err := review.Decide(s, "a2", review.DecisionRequestChanges, "trim the intro", now)
	if err != nil {
		t.Fatalf("request changes: %v", err)
	}
	if s.Session.Status != review.StatusChangesRequested || p.Note != "trim the intro" {
		t.Fatalf("unexpected state %s %q", s.Session.Status, p.Note)
	}
	if _, _, err := review.Decide(s, "a1", review.DecisionApprove, "", now); !errors.Is(err, review.ErrChangesRequested) {
		t.Fatalf("expected decisions blocked while changes requested, got %v", err)
	}

	s, err = review.Acknowledge(s, now)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if s.Session.Status != review.StatusPending {
		t.Fatalf("expected pending after acknowledge, got %s", s.Session.Status)
	}
	if p, _ := s.Participant("a2"); p.Status != review.ParticipantPending {
		t.Fatalf("requester should be able to decide again, got %s", p.Status)
	}
	if p, _ := s.Participant("a1"); p.Status != review.ParticipantApproved {
		t.Fatalf("prior approval should stand, got %s", p.Status)
	}
	s = decide(t, s, "a2", review.DecisionApprove)
	if s.Session.Status != review.StatusApproved {
		t.Fatalf("expected approved, got %s", s.Session.Status)
	}
	if _, err := review.Acknowledge(s, now); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected conflict acknowledging an approved session, got %v", err)
	}
}

func TestReviewerRequestChangesOnlyRecords(t *testing.T) {
	s := newState(t, 1)
	s = invite(t, s, "r1", review.RoleReviewer)
	s = decide(t, s, "r1", review.DecisionRequestChanges)
	if s.Session.Status != review.StatusPending {
		t.Fatalf("reviewer change request must not move the session, got %s", s.Session.Status)
	}
}

func TestResetParticipantAllowsRevote(t *testing.T) {
	s := newState(t, 2)
	s = invite(t, s, "a1", review.RoleApprover)
	s = decide(t, s, "a1", review.DecisionApprove)
	s, p, err := review.ResetParticipant(s, "a1", now)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if p.Status != review.ParticipantPending || p.DecidedAt != nil {
		t.Fatalf("unexpected participant after reset %+v", p)
	}
	if _, _, err := review.Decide(s, "a1", review.DecisionReject, "", now); err != nil {
		t.Fatalf("revote after reset: %v", err)
	}
}

func TestInviteRules(t *testing.T) {
	s := newState(t, 1)
	if _, _, err := review.Invite(s, review.Invitee{Email: "guest@example.com"}, now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("email-only invite on private session should fail, got %v", err)
	}
	if _, _, err := review.Invite(s, review.Invitee{}, now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty invitee should fail, got %v", err)
	}
	if _, _, err := review.Invite(s, review.Invitee{UserID: "u", Role: "boss"}, now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("unknown role should fail, got %v", err)
	}
	s = invite(t, s, "r1", review.RoleReviewer)
	if _, _, err := review.Invite(s, review.Invitee{UserID: "user-r1"}, now); !errors.Is(err, services.ErrConflict) {
		t.Fatalf("duplicate invite should conflict, got %v", err)
	}

	public, err := review.NewSession(review.SessionDraft{VideoID: "v", Title: "Client review", RequiredApprovers: 1, IsPublic: true, Password: "s3cret"}, now)
	if err != nil {
		t.Fatalf("public session: %v", err)
	}
	public, p, err := review.Invite(public, review.Invitee{Email: " Guest@Example.com "}, now)
	if err != nil {
		t.Fatalf("email invite on public session: %v", err)
	}
	if p.Email != "guest@example.com" || p.Role != review.RoleReviewer || p.ID == "" {
		t.Fatalf("unexpected participant %+v", p)
	}
	if _, _, err := review.Invite(public, review.Invitee{Email: "not-an-email"}, now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("malformed email should fail, got %v", err)
	}
}

func TestRemoveAndMarkProgress(t *testing.T) {
	s := newState(t, 1)
	s = invite(t, s, "r1", review.RoleReviewer)
	s = invite(t, s, "r2", review.RoleReviewer)

	s, p, err := review.MarkViewed(s, "r1", now)
	if err != nil || p.Status != review.ParticipantViewed {
		t.Fatalf("mark viewed: %v %s", err, p.Status)
	}
	s, p, _ = review.MarkCommented(s, "r1", now)
	if p.Status != review.ParticipantCommented {
		t.Fatalf("expected commented, got %s", p.Status)
	}
	s, p, _ = review.MarkViewed(s, "r1", now)
	if p.Status != review.ParticipantCommented {
		t.Fatalf("viewing again must not regress status, got %s", p.Status)
	}

	before := len(s.Participants)
	out, err := review.Remove(s, "r2", now)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(out.Participants) != before-1 || len(s.Participants) != before {
		t.Fatal("remove must return a new state and leave the input untouched")
	}
	if _, err := review.Remove(out, "r2", now); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSupersede(t *testing.T) {
	s := newState(t, 1)
	s = invite(t, s, "a1", review.RoleApprover)
	s = decide(t, s, "a1", review.DecisionReject)

	next, err := review.Supersede(s, "sess-2", now.Add(time.Hour))
	if err != nil {
		t.Fatalf("supersede: %v", err)
	}
	if next.Session.Status != review.StatusPending || next.Session.SupersedesID != "sess-1" {
		t.Fatalf("unexpected superseding session %+v", next.Session)
	}
	if len(next.Participants) != 1 || next.Participants[0].Status != review.ParticipantPending ||
		next.Participants[0].SessionID != "sess-2" || next.Participants[0].UserID != "user-a1" {
		t.Fatalf("participants not re-invited: %+v", next.Participants)
	}
	if s.Session.Status != review.StatusRejected {
		t.Fatal("supersede must leave the old session untouched")
	}
	if _, err := review.Supersede(s, "sess-1", now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error reusing the id, got %v", err)
	}
}

func TestSupersedeRequiresClosedSession(t *testing.T) {
	s := newState(t, 1)
	s = invite(t, s, "a1", review.RoleApprover)
	s = invite(t, s, "a2", review.RoleApprover)

	if _, err := review.Supersede(s, "sess-2", now); !errors.Is(err, review.ErrSessionOpen) || !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected open session conflict, got %v", err)
	}
	paused := decide(t, s, "a2", review.DecisionRequestChanges)
	if paused.Session.Status != review.StatusChangesRequested {
		t.Fatalf("expected changes requested, got %s", paused.Session.Status)
	}
	if _, err := review.Supersede(paused, "sess-2", now); !errors.Is(err, review.ErrSessionOpen) {
		t.Fatalf("expected open session conflict while awaiting changes, got %v", err)
	}

	closed := decide(t, s, "a1", review.DecisionApprove)
	next, err := review.Supersede(closed, "sess-2", now)
	if err != nil {
		t.Fatalf("supersede approved session: %v", err)
	}
	if err := review.CheckSupersede(closed.Session, []review.Session{closed.Session}); err != nil {
		t.Fatalf("no replacement yet, got %v", err)
	}
	err = review.CheckSupersede(closed.Session, []review.Session{closed.Session, next.Session})
	if !errors.Is(err, review.ErrAlreadySuperseded) || !errors.Is(err, services.ErrConflict) {
		t.Fatalf("expected already superseded conflict, got %v", err)
	}
}

func TestOverdueAndAccess(t *testing.T) {
	due := now.Add(-time.Hour)
	s := review.Session{Status: review.StatusPending, DueDate: &due}
	if !review.IsOverdue(s, now) {
		t.Fatal("expected overdue")
	}
	s.Status = review.StatusApproved
	if review.IsOverdue(s, now) {
		t.Fatal("closed sessions are never overdue")
	}

	public := review.Session{ID: "p", IsPublic: true, Password: "s3cret"}
	if err := review.CheckAccess(public, "s3cret"); err != nil {
		t.Fatalf("expected access, got %v", err)
	}
	if err := review.CheckAccess(public, "guess"); !errors.Is(err, services.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := review.CheckAccess(review.Session{ID: "private"}, ""); err != nil {
		t.Fatalf("private sessions are not password gated, got %v", err)
	}
}

func TestParseHelpers(t *testing.T) {
	if d, err := review.ParseDecision("Request-Changes"); err != nil || d != review.DecisionRequestChanges {
		t.Fatalf("unexpected decision %q %v", d, err)
	}
	if r, err := review.ParseRole(""); err != nil || r != review.RoleReviewer {
		t.Fatalf("unexpected role %q %v", r, err)
	}
}
