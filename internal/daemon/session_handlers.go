package daemon

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"reelreview/internal/api"
)

func (s *apiServer) handleListSessions(w http.ResponseWriter, r *http.Request) {
	id := videoID(r)
	sessions, err := s.svc.VisibleSessions(r.Context(), id, r.Header.Get(PasswordHeader))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.SessionList{VideoID: id, Sessions: sessions})
}

func (s *apiServer) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req api.CreateSessionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	session, err := s.svc.CreateSession(r.Context(), videoID(r), req)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, session)
}

func (s *apiServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, http.StatusOK)(s.svc.Session(r.Context(), sessionID(r)))
}

func (s *apiServer) handleInviteParticipant(w http.ResponseWriter, r *http.Request) {
	var req api.InviteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondSession(w, http.StatusCreated)(s.svc.InviteParticipant(r.Context(), sessionID(r), req))
}

func (s *apiServer) handleRemoveParticipant(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, http.StatusOK)(s.svc.RemoveParticipant(r.Context(), sessionID(r), participantID(r)))
}

func (s *apiServer) handleMarkViewed(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, http.StatusOK)(s.svc.MarkViewed(r.Context(), sessionID(r), participantID(r)))
}

func (s *apiServer) handleDecide(w http.ResponseWriter, r *http.Request) {
	var req api.DecisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.respondSession(w, http.StatusOK)(s.svc.Decide(r.Context(), sessionID(r), participantID(r), req))
}

func (s *apiServer) handleResetParticipant(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, http.StatusOK)(s.svc.ResetParticipant(r.Context(), sessionID(r), participantID(r)))
}

func (s *apiServer) handleAcknowledge(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, http.StatusOK)(s.svc.AcknowledgeChanges(r.Context(), sessionID(r)))
}

func (s *apiServer) handleSupersede(w http.ResponseWriter, r *http.Request) {
	s.respondSession(w, http.StatusCreated)(s.svc.SupersedeSession(r.Context(), sessionID(r)))
}

func (s *apiServer) respondSession(w http.ResponseWriter, status int) func(api.Session, error) {
	return func(session api.Session, err error) {
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, status, session)
	}
}

func sessionID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "sessionID"))
}

func participantID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "participantID"))
}
